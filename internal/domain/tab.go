package domain

import "time"

const (
	// BlankURL is the sentinel URL of a tab that has not navigated anywhere.
	BlankURL = "about:blank"
	// NewTabTitle is displayed for blank tabs.
	NewTabTitle = "New Tab"
	// LoadingTitle is the placeholder some surfaces report while a page loads.
	LoadingTitle = "Loading..."

	MinZoom     = 25
	MaxZoom     = 150
	DefaultZoom = 100
	ZoomStep    = 25
)

// DesktopUserAgent is pushed to the render surface when a tab is in desktop mode.
const DesktopUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Tab represents one browsing session.
//
// A Tab is a plain value: it never carries a handle to the live render
// surface. The bridge keeps that association in its own side-table.
type Tab struct {
	// ─────────────────────────────
	// Identity (immutable)
	// ─────────────────────────────

	// ID is assigned once at creation.
	ID string

	// CreatedAt is the creation time.
	CreatedAt time.Time

	// IsPrivate suppresses history recording. Fixed at creation.
	IsPrivate bool

	// ─────────────────────────────
	// Navigation (written by the bridge)
	// ─────────────────────────────

	URL          string
	Title        string
	Favicon      string
	Thumbnail    string
	Loading      bool
	Progress     float64 // 0.0 – 1.0
	CanGoBack    bool
	CanGoForward bool

	// ─────────────────────────────
	// View settings (explicit toggles)
	// ─────────────────────────────

	DesktopMode bool
	ZoomLevel   int // percent, [MinZoom, MaxZoom]
}

// NewTab builds a tab with the creation defaults applied.
func NewTab(id, url string, private bool, now time.Time) Tab {
	if url == "" {
		url = BlankURL
	}
	return Tab{
		ID:        id,
		CreatedAt: now,
		IsPrivate: private,
		URL:       url,
		Title:     NewTabTitle,
		ZoomLevel: DefaultZoom,
	}
}

// IsBlank reports whether the tab shows the homepage instead of a page.
func (t Tab) IsBlank() bool {
	return t.URL == "" || t.URL == BlankURL
}

// ClampZoom bounds a zoom percentage to [MinZoom, MaxZoom].
func ClampZoom(level int) int {
	if level < MinZoom {
		return MinZoom
	}
	if level > MaxZoom {
		return MaxZoom
	}
	return level
}

// ClampProgress bounds a load progress value to [0, 1].
func ClampProgress(p float64) float64 {
	if p < 0 || p != p {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}
