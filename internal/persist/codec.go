package persist

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/MrSnakeDoc/tabshell/internal/domain"
	"github.com/MrSnakeDoc/tabshell/internal/state"
)

// ErrUnsupportedVersion is returned by Decode for blobs written by a newer
// schema than this build understands.
var ErrUnsupportedVersion = errors.New("persist: unsupported snapshot version")

// Encode serializes the save projection of st: transient load status is
// reset on every tab, and history is left out entirely when the settings ask
// for it to be cleared on exit.
func Encode(st state.State) ([]byte, error) {
	snap := snapshot{
		Version:         SchemaVersion,
		Tabs:            make([]tabRecord, 0, len(st.Tabs)),
		Bookmarks:       make([]bookmarkRecord, 0, len(st.Bookmarks)),
		BookmarkFolders: make([]folderRecord, 0, len(st.Folders)),
		History:         []historyRecord{},
		Settings:        encodeSettings(st.Settings),
		Theme:           string(st.Theme),
		IsPrivateMode:   st.PrivateMode,
	}
	if st.ActiveTabID != "" {
		id := st.ActiveTabID
		snap.ActiveTabID = &id
	}

	for _, t := range st.Tabs {
		zoom := t.ZoomLevel
		snap.Tabs = append(snap.Tabs, tabRecord{
			ID:           t.ID,
			URL:          t.URL,
			Title:        t.Title,
			Favicon:      t.Favicon,
			Thumbnail:    t.Thumbnail,
			Loading:      false,
			CanGoBack:    t.CanGoBack,
			CanGoForward: t.CanGoForward,
			Progress:     0,
			CreatedAt:    timestamp(t.CreatedAt),
			IsPrivate:    t.IsPrivate,
			DesktopMode:  t.DesktopMode,
			ZoomLevel:    &zoom,
		})
	}
	for _, b := range st.Bookmarks {
		snap.Bookmarks = append(snap.Bookmarks, bookmarkRecord{
			ID:        b.ID,
			URL:       b.URL,
			Title:     b.Title,
			Favicon:   b.Favicon,
			FolderID:  b.FolderID,
			CreatedAt: timestamp(b.CreatedAt),
		})
	}
	for _, f := range st.Folders {
		snap.BookmarkFolders = append(snap.BookmarkFolders, folderRecord{
			ID:        f.ID,
			Name:      f.Name,
			CreatedAt: timestamp(f.CreatedAt),
		})
	}
	if !st.Settings.ClearHistoryOnExit {
		for _, e := range st.History.Entries() {
			snap.History = append(snap.History, historyRecord{
				ID:         e.ID,
				URL:        e.URL,
				Title:      e.Title,
				Favicon:    e.Favicon,
				VisitedAt:  timestamp(e.VisitedAt),
				VisitCount: e.VisitCount,
			})
		}
	}

	data, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	return data, nil
}

// Decode parses a persisted blob into a loadable state.
//
// Unversioned blobs are migrated by filling in defaults for anything
// missing. History is discarded when the loaded settings clear it on exit.
// The returned state still needs the active tab resolved, which
// state.Hydrate does.
func Decode(data []byte) (state.State, error) {
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return state.State{}, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	if snap.Version > SchemaVersion {
		return state.State{}, fmt.Errorf("%w: %d (max %d)", ErrUnsupportedVersion, snap.Version, SchemaVersion)
	}

	st := state.Initial()
	st.Settings = decodeSettings(snap.Settings)
	st.Theme = st.Settings.Theme
	if theme, err := domain.ParseTheme(snap.Theme); err == nil {
		st.Theme = theme
	}

	seen := make(map[string]bool, len(snap.Tabs))
	for _, r := range snap.Tabs {
		if r.ID == "" || seen[r.ID] {
			continue
		}
		seen[r.ID] = true
		st.Tabs = append(st.Tabs, decodeTab(r))
	}

	for _, r := range snap.BookmarkFolders {
		if r.ID == "" {
			continue
		}
		st.Folders = append(st.Folders, domain.BookmarkFolder{
			ID:        r.ID,
			Name:      r.Name,
			CreatedAt: time.Time(r.CreatedAt),
		})
	}
	for _, r := range snap.Bookmarks {
		if r.ID == "" || r.URL == "" {
			continue
		}
		b := domain.Bookmark{
			ID:        r.ID,
			URL:       r.URL,
			Title:     r.Title,
			Favicon:   r.Favicon,
			FolderID:  r.FolderID,
			CreatedAt: time.Time(r.CreatedAt),
		}
		if _, ok := st.Folder(b.FolderID); !ok {
			b.FolderID = ""
		}
		st.Bookmarks = append(st.Bookmarks, b)
	}

	if !st.Settings.ClearHistoryOnExit {
		entries := make([]domain.HistoryEntry, 0, len(snap.History))
		for _, r := range snap.History {
			entries = append(entries, domain.HistoryEntry{
				ID:         r.ID,
				URL:        r.URL,
				Title:      r.Title,
				Favicon:    r.Favicon,
				VisitedAt:  time.Time(r.VisitedAt),
				VisitCount: r.VisitCount,
			})
		}
		st.History = state.HistoryFrom(entries, domain.HistoryCapacity)
	}

	if snap.ActiveTabID != nil {
		st.ActiveTabID = *snap.ActiveTabID
	}
	st.PrivateMode = snap.IsPrivateMode

	return st, nil
}

func decodeTab(r tabRecord) domain.Tab {
	t := domain.Tab{
		ID:           r.ID,
		CreatedAt:    time.Time(r.CreatedAt),
		IsPrivate:    r.IsPrivate,
		URL:          r.URL,
		Title:        r.Title,
		Favicon:      r.Favicon,
		Thumbnail:    r.Thumbnail,
		CanGoBack:    r.CanGoBack,
		CanGoForward: r.CanGoForward,
		DesktopMode:  r.DesktopMode,
		ZoomLevel:    domain.DefaultZoom,
	}
	if t.URL == "" {
		t.URL = domain.BlankURL
	}
	if t.Title == "" {
		t.Title = domain.DisplayTitle("", t.URL)
	}
	if r.ZoomLevel != nil {
		t.ZoomLevel = domain.ClampZoom(*r.ZoomLevel)
	}
	return t
}

func encodeSettings(s domain.Settings) *settingsRecord {
	theme := string(s.Theme)
	engine := string(s.DefaultSearchEngine)
	return &settingsRecord{
		Theme:               &theme,
		DefaultSearchEngine: &engine,
		ClearHistoryOnExit:  domain.Ptr(s.ClearHistoryOnExit),
		ShowSuggestions:     domain.Ptr(s.ShowSuggestions),
		BlockPopups:         domain.Ptr(s.BlockPopups),
	}
}

// decodeSettings fills every missing or unknown field from the defaults.
func decodeSettings(r *settingsRecord) domain.Settings {
	s := domain.DefaultSettings()
	if r == nil {
		return s
	}
	if r.Theme != nil {
		if theme, err := domain.ParseTheme(*r.Theme); err == nil {
			s.Theme = theme
		}
	}
	if r.DefaultSearchEngine != nil {
		if engine, err := domain.ParseSearchEngine(*r.DefaultSearchEngine); err == nil {
			s.DefaultSearchEngine = engine
		}
	}
	if r.ClearHistoryOnExit != nil {
		s.ClearHistoryOnExit = *r.ClearHistoryOnExit
	}
	if r.ShowSuggestions != nil {
		s.ShowSuggestions = *r.ShowSuggestions
	}
	if r.BlockPopups != nil {
		s.BlockPopups = *r.BlockPopups
	}
	return s
}
