package views

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/MrSnakeDoc/tabshell/internal/domain"
)

func TestSuggestions(t *testing.T) {
	settings := domain.DefaultSettings()
	history := sampleHistory()

	assert.Equal(t, []string{"https://go.dev", "https://pkg.go.dev"}, Suggestions(history, "Go", settings, false))
	assert.Equal(t, []string{"https://example.com", "https://old.example", "https://news.example"},
		Suggestions(history, "example", settings, false))
}

func TestSuggestionsSuppressed(t *testing.T) {
	history := sampleHistory()
	settings := domain.DefaultSettings()

	assert.Empty(t, Suggestions(history, "g", settings, false))
	assert.Empty(t, Suggestions(history, "", settings, false))
	assert.Empty(t, Suggestions(history, "go", settings, true))

	settings.ShowSuggestions = false
	assert.Empty(t, Suggestions(history, "go", settings, false))
}

func TestSuggestionsCappedAndUnique(t *testing.T) {
	var history []domain.HistoryEntry
	for i := range 8 {
		history = append(history, entry(fmt.Sprint(i), fmt.Sprintf("https://site%d.example", i), "Site", now, 1))
	}
	history = append([]domain.HistoryEntry{history[0]}, history...)

	got := Suggestions(history, "site", domain.DefaultSettings(), false)
	assert.Len(t, got, MaxSuggestions)
	assert.Equal(t, "https://site0.example", got[0])
	assert.Equal(t, "https://site1.example", got[1])
}
