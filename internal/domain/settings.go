package domain

import (
	"fmt"
	"net/url"
	"strings"
)

// Theme is the UI colour scheme.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// ParseTheme validates a theme name.
func ParseTheme(s string) (Theme, error) {
	switch Theme(strings.ToLower(strings.TrimSpace(s))) {
	case ThemeLight:
		return ThemeLight, nil
	case ThemeDark:
		return ThemeDark, nil
	default:
		return "", fmt.Errorf("unknown theme: %q", s)
	}
}

// SearchEngine is a supported search provider.
type SearchEngine string

const (
	SearchGoogle     SearchEngine = "google"
	SearchBing       SearchEngine = "bing"
	SearchDuckDuckGo SearchEngine = "duckduckgo"
)

// ParseSearchEngine validates a search engine name.
func ParseSearchEngine(s string) (SearchEngine, error) {
	switch SearchEngine(strings.ToLower(strings.TrimSpace(s))) {
	case SearchGoogle:
		return SearchGoogle, nil
	case SearchBing:
		return SearchBing, nil
	case SearchDuckDuckGo:
		return SearchDuckDuckGo, nil
	default:
		return "", fmt.Errorf("unknown search engine: %q", s)
	}
}

// SearchURL builds the provider's results URL for a free-text query.
// Unknown engines fall back to Google.
func (e SearchEngine) SearchURL(query string) string {
	q := url.QueryEscape(query)
	switch e {
	case SearchBing:
		return "https://www.bing.com/search?q=" + q
	case SearchDuckDuckGo:
		return "https://duckduckgo.com/?q=" + q
	default:
		return "https://www.google.com/search?q=" + q
	}
}

// Settings is the process-wide settings singleton.
type Settings struct {
	Theme               Theme
	DefaultSearchEngine SearchEngine
	ClearHistoryOnExit  bool
	ShowSuggestions     bool
	BlockPopups         bool
}

// DefaultSettings returns the settings used on first launch and on reset.
func DefaultSettings() Settings {
	return Settings{
		Theme:               ThemeDark,
		DefaultSearchEngine: SearchGoogle,
		ClearHistoryOnExit:  false,
		ShowSuggestions:     true,
		BlockPopups:         true,
	}
}

// SettingsPatch carries a partial settings update. Nil means unchanged.
type SettingsPatch struct {
	Theme               *Theme
	DefaultSearchEngine *SearchEngine
	ClearHistoryOnExit  *bool
	ShowSuggestions     *bool
	BlockPopups         *bool
}

// Apply merges the patch into s.
func (p SettingsPatch) Apply(s Settings) Settings {
	if p.Theme != nil {
		s.Theme = *p.Theme
	}
	if p.DefaultSearchEngine != nil {
		s.DefaultSearchEngine = *p.DefaultSearchEngine
	}
	if p.ClearHistoryOnExit != nil {
		s.ClearHistoryOnExit = *p.ClearHistoryOnExit
	}
	if p.ShowSuggestions != nil {
		s.ShowSuggestions = *p.ShowSuggestions
	}
	if p.BlockPopups != nil {
		s.BlockPopups = *p.BlockPopups
	}
	return s
}
