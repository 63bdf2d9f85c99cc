package domain

import (
	"net/url"
	"strings"
)

// knownSchemes are accepted as explicit URLs even without "//".
var knownSchemes = map[string]bool{
	"http":  true,
	"https": true,
	"about": true,
	"file":  true,
	"data":  true,
	"ftp":   true,
}

// ResolveInput turns what the user typed into the URL to load.
//
// Examples:
//   - "https://go.dev"  -> "https://go.dev"
//   - "go.dev/doc"      -> "https://go.dev/doc"
//   - "golang tutorial" -> search URL of the configured engine
//   - "about:blank"     -> "about:blank"
func ResolveInput(input string, engine SearchEngine) string {
	input = strings.TrimSpace(input)
	if input == "" {
		return BlankURL
	}

	if hasScheme(input) {
		return input
	}

	if strings.Contains(input, ".") && !strings.ContainsAny(input, " \t") {
		return "https://" + input
	}

	return engine.SearchURL(input)
}

// IsSearchQuery reports whether ResolveInput would build a search URL.
func IsSearchQuery(input string) bool {
	input = strings.TrimSpace(input)
	if input == "" || hasScheme(input) {
		return false
	}
	return !strings.Contains(input, ".") || strings.ContainsAny(input, " \t")
}

func hasScheme(input string) bool {
	if strings.ContainsAny(input, " \t") {
		return false
	}
	if i := strings.Index(input, "://"); i > 0 {
		return true
	}
	u, err := url.Parse(input)
	if err != nil {
		return false
	}
	return knownSchemes[strings.ToLower(u.Scheme)]
}
