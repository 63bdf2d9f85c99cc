package domain

import "time"

// Bookmark is a saved URL reference.
type Bookmark struct {
	// ─────────────────────────────
	// Identity (immutable)
	// ─────────────────────────────

	// ID is the canonical unique identifier.
	ID string

	// URL is the saved address.
	// Example: https://example.com/
	URL string

	// ─────────────────────────────
	// Display
	// ─────────────────────────────

	Title   string
	Favicon string

	// FolderID optionally references a BookmarkFolder.
	// It is a weak reference: the folder does not own the bookmark,
	// but deleting the folder deletes every bookmark pointing at it.
	// Empty means root level.
	FolderID string

	// ─────────────────────────────
	// Metadata
	// ─────────────────────────────

	// CreatedAt is the time the bookmark was added.
	CreatedAt time.Time
}

// BookmarkFolder groups bookmarks. Folders do not nest.
type BookmarkFolder struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// BookmarkPatch carries the mutable bookmark fields. Nil means unchanged.
type BookmarkPatch struct {
	URL      *string
	Title    *string
	Favicon  *string
	FolderID *string
}

// Apply merges the patch into b.
func (p BookmarkPatch) Apply(b Bookmark) Bookmark {
	if p.URL != nil {
		b.URL = *p.URL
	}
	if p.Title != nil {
		b.Title = *p.Title
	}
	if p.Favicon != nil {
		b.Favicon = *p.Favicon
	}
	if p.FolderID != nil {
		b.FolderID = *p.FolderID
	}
	return b
}
