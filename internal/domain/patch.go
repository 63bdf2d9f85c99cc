package domain

// TabPatch carries the mutable fields of a Tab for a partial update.
// Nil pointers leave the field unchanged.
//
// ID, CreatedAt and IsPrivate have no counterpart here: they cannot be
// changed once the tab exists.
type TabPatch struct {
	URL          *string
	Title        *string
	Favicon      *string
	Thumbnail    *string
	Loading      *bool
	Progress     *float64
	CanGoBack    *bool
	CanGoForward *bool
	DesktopMode  *bool
	ZoomLevel    *int
}

// Apply merges the patch into t. Zoom and progress are clamped.
func (p TabPatch) Apply(t Tab) Tab {
	if p.URL != nil {
		t.URL = *p.URL
	}
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Favicon != nil {
		t.Favicon = *p.Favicon
	}
	if p.Thumbnail != nil {
		t.Thumbnail = *p.Thumbnail
	}
	if p.Loading != nil {
		t.Loading = *p.Loading
	}
	if p.Progress != nil {
		t.Progress = ClampProgress(*p.Progress)
	}
	if p.CanGoBack != nil {
		t.CanGoBack = *p.CanGoBack
	}
	if p.CanGoForward != nil {
		t.CanGoForward = *p.CanGoForward
	}
	if p.DesktopMode != nil {
		t.DesktopMode = *p.DesktopMode
	}
	if p.ZoomLevel != nil {
		t.ZoomLevel = ClampZoom(*p.ZoomLevel)
	}
	return t
}

// IsEmpty reports whether the patch changes nothing.
func (p TabPatch) IsEmpty() bool {
	return p == TabPatch{}
}

// Ptr returns a pointer to v. Handy for building patches.
func Ptr[T any](v T) *T {
	return &v
}
