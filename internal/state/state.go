package state

import (
	"slices"

	"github.com/MrSnakeDoc/tabshell/internal/domain"
)

// State is the authoritative browser state.
//
// A State is treated as immutable once published by the Store: the reducer
// never writes into the slices of the state it receives. Readers holding a
// State must not modify its slices either.
type State struct {
	Tabs        []domain.Tab
	ActiveTabID string // "" when no tab exists

	Bookmarks []domain.Bookmark
	Folders   []domain.BookmarkFolder
	History   History

	Settings domain.Settings
	Theme    domain.Theme

	// PrivateMode mirrors the IsPrivate flag of the active tab.
	PrivateMode bool

	// Initialized is set once persisted state has been loaded (or the load
	// gave up). Saves are gated on it.
	Initialized bool

	// Revision increases on every effective transition. It is never persisted.
	Revision uint64
}

// Initial returns the pre-load state: no tabs, default settings.
func Initial() State {
	settings := domain.DefaultSettings()
	return State{
		History:  NewHistory(domain.HistoryCapacity),
		Settings: settings,
		Theme:    settings.Theme,
	}
}

// Tab returns the tab with the given id.
func (s State) Tab(id string) (domain.Tab, bool) {
	if i := s.tabIndex(id); i >= 0 {
		return s.Tabs[i], true
	}
	return domain.Tab{}, false
}

// ActiveTab returns the active tab, if any.
func (s State) ActiveTab() (domain.Tab, bool) {
	if s.ActiveTabID == "" {
		return domain.Tab{}, false
	}
	return s.Tab(s.ActiveTabID)
}

// Folder returns the folder with the given id.
func (s State) Folder(id string) (domain.BookmarkFolder, bool) {
	for _, f := range s.Folders {
		if f.ID == id {
			return f, true
		}
	}
	return domain.BookmarkFolder{}, false
}

// IsBookmarked reports whether some bookmark points at url.
func (s State) IsBookmarked(url string) bool {
	return slices.ContainsFunc(s.Bookmarks, func(b domain.Bookmark) bool { return b.URL == url })
}

func (s State) tabIndex(id string) int {
	if id == "" {
		return -1
	}
	return slices.IndexFunc(s.Tabs, func(t domain.Tab) bool { return t.ID == id })
}

// withActive points the state at tab id (or none) and keeps the private
// mode flag consistent with it.
func (s State) withActive(id string) State {
	s.ActiveTabID = ""
	s.PrivateMode = false
	if t, ok := s.Tab(id); ok {
		s.ActiveTabID = t.ID
		s.PrivateMode = t.IsPrivate
	}
	return s
}
