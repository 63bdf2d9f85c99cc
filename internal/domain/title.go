package domain

import (
	"net/url"
	"strings"

	"golang.org/x/net/idna"
)

// DisplayTitle resolves the title shown for a tab.
//
// A usable reported title wins. Blank tabs read "New Tab". Otherwise the
// URL's host is shown (IDN hosts decoded for display), or the raw URL when
// it has no host.
func DisplayTitle(title, rawURL string) string {
	if UsableTitle(title) {
		return title
	}
	if rawURL == BlankURL {
		return NewTabTitle
	}
	host := hostname(rawURL)
	if host == "" {
		return rawURL
	}
	if display, err := idna.Display.ToUnicode(host); err == nil && display != "" {
		return display
	}
	return host
}

// UsableTitle reports whether a surface-reported title can be shown as is.
func UsableTitle(title string) bool {
	return strings.TrimSpace(title) != "" && title != LoadingTitle
}

// FaviconURL guesses the conventional favicon location for a page URL.
// Returns "" when the URL has no scheme or host.
func FaviconURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Hostname() == "" {
		return ""
	}
	return u.Scheme + "://" + u.Hostname() + "/favicon.ico"
}

func hostname(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
