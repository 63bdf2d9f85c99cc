package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTabPatchApply(t *testing.T) {
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	tab := NewTab("t1", "", true, created)

	got := TabPatch{
		URL:       Ptr("https://example.com"),
		Title:     Ptr("Example"),
		Loading:   Ptr(true),
		Progress:  Ptr(1.7),
		ZoomLevel: Ptr(9999),
	}.Apply(tab)

	assert.Equal(t, "t1", got.ID)
	assert.True(t, got.IsPrivate)
	assert.Equal(t, created, got.CreatedAt)
	assert.Equal(t, "https://example.com", got.URL)
	assert.Equal(t, "Example", got.Title)
	assert.True(t, got.Loading)
	assert.Equal(t, 1.0, got.Progress)
	assert.Equal(t, MaxZoom, got.ZoomLevel)
	assert.False(t, got.DesktopMode)
}

func TestNewTabDefaults(t *testing.T) {
	tab := NewTab("id", "", false, time.Now())
	assert.Equal(t, BlankURL, tab.URL)
	assert.Equal(t, NewTabTitle, tab.Title)
	assert.Equal(t, DefaultZoom, tab.ZoomLevel)
	assert.True(t, tab.IsBlank())
	assert.True(t, TabPatch{}.IsEmpty())
}

func TestClampZoom(t *testing.T) {
	assert.Equal(t, 25, ClampZoom(1))
	assert.Equal(t, 150, ClampZoom(9999))
	assert.Equal(t, 75, ClampZoom(75))
}

func TestSettingsPatchApply(t *testing.T) {
	got := SettingsPatch{
		Theme:           Ptr(ThemeLight),
		ShowSuggestions: Ptr(false),
	}.Apply(DefaultSettings())

	assert.Equal(t, ThemeLight, got.Theme)
	assert.False(t, got.ShowSuggestions)
	assert.Equal(t, SearchGoogle, got.DefaultSearchEngine)
	assert.True(t, got.BlockPopups)
}
