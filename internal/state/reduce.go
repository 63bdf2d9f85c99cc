package state

import (
	"slices"
	"strings"

	"github.com/MrSnakeDoc/tabshell/internal/domain"
)

// Reduce applies a to s and returns the next state.
//
// Reduce is total and pure: references to unknown ids, blank folder names
// and similar inputs leave the state as it was, and nothing outside s and a
// is consulted. Revision is bumped only when something changed.
func Reduce(s State, a Action) State {
	next, changed := reduce(s, a)
	if !changed {
		return s
	}
	next.Revision = s.Revision + 1
	return next
}

func reduce(s State, a Action) (State, bool) {
	switch a := a.(type) {
	case CreateTab:
		return createTab(s, a)
	case CloseTab:
		return closeTab(s, a.ID)
	case SetActiveTab:
		if s.tabIndex(a.ID) < 0 || s.ActiveTabID == a.ID {
			return s, false
		}
		return s.withActive(a.ID), true
	case UpdateTab:
		if a.Patch.IsEmpty() {
			return s, false
		}
		return mapTab(s, a.ID, a.Patch.Apply)
	case ToggleDesktopMode:
		return mapTab(s, a.ID, func(t domain.Tab) domain.Tab {
			t.DesktopMode = !t.DesktopMode
			return t
		})
	case SetTabZoom:
		return mapTab(s, a.ID, func(t domain.Tab) domain.Tab {
			t.ZoomLevel = domain.ClampZoom(a.Level)
			return t
		})
	case CloseAllPrivateTabs:
		return closeAllPrivateTabs(s)

	case AddBookmark:
		return addBookmark(s, a)
	case RemoveBookmark:
		i := slices.IndexFunc(s.Bookmarks, func(b domain.Bookmark) bool { return b.ID == a.ID })
		if i < 0 {
			return s, false
		}
		s.Bookmarks = slices.Delete(slices.Clone(s.Bookmarks), i, i+1)
		return s, true
	case UpdateBookmark:
		return updateBookmark(s, a)
	case CreateFolder:
		name := strings.TrimSpace(a.Name)
		if name == "" || a.ID == "" {
			return s, false
		}
		s.Folders = append(slices.Clip(s.Folders), domain.BookmarkFolder{ID: a.ID, Name: name, CreatedAt: a.At})
		return s, true
	case DeleteFolder:
		return deleteFolder(s, a.ID)

	case AddHistoryEntry:
		if a.URL == "" {
			return s, false
		}
		if active, ok := s.ActiveTab(); ok && active.IsPrivate {
			return s, false
		}
		s.History = s.History.Upsert(a.ID, a.URL, a.Title, a.Favicon, a.At)
		return s, true
	case RemoveHistoryEntry:
		before := s.History.Len()
		s.History = s.History.Remove(a.ID)
		return s, s.History.Len() != before
	case ClearHistory:
		before := s.History.Len()
		if a.IDs == nil {
			s.History = s.History.Clear()
		} else {
			s.History = s.History.Remove(a.IDs...)
		}
		return s, s.History.Len() != before

	case UpdateSettings:
		s.Settings = a.Patch.Apply(s.Settings)
		if a.Patch.Theme != nil {
			s.Theme = *a.Patch.Theme
		}
		return s, true
	case SetTheme:
		if a.Theme != domain.ThemeLight && a.Theme != domain.ThemeDark {
			return s, false
		}
		s.Theme = a.Theme
		s.Settings.Theme = a.Theme
		return s, true
	case ResetSettings:
		s.Settings = domain.DefaultSettings()
		s.Theme = s.Settings.Theme
		return s, true

	case Hydrate:
		return hydrate(s, a.Loaded), true
	case Bootstrap:
		return bootstrap(s, a)
	}
	return s, false
}

func createTab(s State, a CreateTab) (State, bool) {
	if a.ID == "" || s.tabIndex(a.ID) >= 0 {
		return s, false
	}
	s.Tabs = append(slices.Clip(s.Tabs), domain.NewTab(a.ID, a.URL, a.Private, a.At))
	return s.withActive(a.ID), true
}

// closeTab removes the tab. When it was active, the tab preceding it takes
// over, else the first remaining one, else none.
func closeTab(s State, id string) (State, bool) {
	i := s.tabIndex(id)
	if i < 0 {
		return s, false
	}
	s.Tabs = slices.Delete(slices.Clone(s.Tabs), i, i+1)

	if s.ActiveTabID != id {
		return s.withActive(s.ActiveTabID), true
	}
	switch {
	case len(s.Tabs) == 0:
		return s.withActive(""), true
	case i > 0:
		return s.withActive(s.Tabs[i-1].ID), true
	default:
		return s.withActive(s.Tabs[0].ID), true
	}
}

func closeAllPrivateTabs(s State) (State, bool) {
	regular := make([]domain.Tab, 0, len(s.Tabs))
	for _, t := range s.Tabs {
		if !t.IsPrivate {
			regular = append(regular, t)
		}
	}
	if len(regular) == len(s.Tabs) {
		return s, false
	}

	active, hadActive := s.ActiveTab()
	s.Tabs = regular
	if hadActive && active.IsPrivate {
		if len(regular) > 0 {
			return s.withActive(regular[0].ID), true
		}
		return s.withActive(""), true
	}
	return s.withActive(s.ActiveTabID), true
}

func mapTab(s State, id string, fn func(domain.Tab) domain.Tab) (State, bool) {
	i := s.tabIndex(id)
	if i < 0 {
		return s, false
	}
	updated := fn(s.Tabs[i])
	// identity is fixed at creation
	updated.ID = s.Tabs[i].ID
	updated.IsPrivate = s.Tabs[i].IsPrivate
	updated.CreatedAt = s.Tabs[i].CreatedAt
	if updated == s.Tabs[i] {
		return s, false
	}
	s.Tabs = slices.Clone(s.Tabs)
	s.Tabs[i] = updated
	return s, true
}

func addBookmark(s State, a AddBookmark) (State, bool) {
	if a.ID == "" || a.URL == "" {
		return s, false
	}
	folderID := a.FolderID
	if _, ok := s.Folder(folderID); !ok {
		folderID = ""
	}
	s.Bookmarks = append(slices.Clip(s.Bookmarks), domain.Bookmark{
		ID:        a.ID,
		URL:       a.URL,
		Title:     a.Title,
		Favicon:   a.Favicon,
		FolderID:  folderID,
		CreatedAt: a.At,
	})
	return s, true
}

func updateBookmark(s State, a UpdateBookmark) (State, bool) {
	i := slices.IndexFunc(s.Bookmarks, func(b domain.Bookmark) bool { return b.ID == a.ID })
	if i < 0 {
		return s, false
	}
	updated := a.Patch.Apply(s.Bookmarks[i])
	if _, ok := s.Folder(updated.FolderID); !ok {
		updated.FolderID = ""
	}
	if updated == s.Bookmarks[i] {
		return s, false
	}
	s.Bookmarks = slices.Clone(s.Bookmarks)
	s.Bookmarks[i] = updated
	return s, true
}

// deleteFolder removes the folder and every bookmark filed under it.
func deleteFolder(s State, id string) (State, bool) {
	i := slices.IndexFunc(s.Folders, func(f domain.BookmarkFolder) bool { return f.ID == id })
	if i < 0 {
		return s, false
	}
	s.Folders = slices.Delete(slices.Clone(s.Folders), i, i+1)

	kept := make([]domain.Bookmark, 0, len(s.Bookmarks))
	for _, b := range s.Bookmarks {
		if b.FolderID != id {
			kept = append(kept, b)
		}
	}
	s.Bookmarks = kept
	return s, true
}

func hydrate(s State, loaded State) State {
	s.Tabs = slices.Clone(loaded.Tabs)
	s.Bookmarks = slices.Clone(loaded.Bookmarks)
	s.Folders = slices.Clone(loaded.Folders)
	s.History = HistoryFrom(loaded.History.Entries(), s.History.Cap())
	s.Settings = loaded.Settings
	s.Theme = loaded.Theme
	if s.Theme != domain.ThemeLight && s.Theme != domain.ThemeDark {
		s.Theme = s.Settings.Theme
	}

	active := loaded.ActiveTabID
	if s.tabIndex(active) < 0 && len(s.Tabs) > 0 {
		active = s.Tabs[0].ID
	}
	return s.withActive(active)
}

func bootstrap(s State, a Bootstrap) (State, bool) {
	changed := !s.Initialized
	s.Initialized = true
	if len(s.Tabs) == 0 && a.TabID != "" {
		s.Tabs = []domain.Tab{domain.NewTab(a.TabID, domain.BlankURL, false, a.At)}
		return s.withActive(a.TabID), true
	}
	return s, changed
}
