package views

import (
	"strings"

	"github.com/MrSnakeDoc/tabshell/internal/domain"
)

// MaxSuggestions caps the URL suggestion list.
const MaxSuggestions = 5

// Suggestions returns up to MaxSuggestions distinct history URLs matching
// query, in history order. Nothing is suggested for queries of one
// character or less, when suggestions are disabled, or in private mode.
func Suggestions(history []domain.HistoryEntry, query string, settings domain.Settings, private bool) []string {
	if !settings.ShowSuggestions || private || len([]rune(query)) <= 1 {
		return nil
	}

	q := strings.ToLower(query)
	seen := make(map[string]bool)
	var out []string
	for _, e := range history {
		if len(out) == MaxSuggestions {
			break
		}
		if seen[e.URL] || !matches(e, q) {
			continue
		}
		seen[e.URL] = true
		out = append(out, e.URL)
	}
	return out
}
