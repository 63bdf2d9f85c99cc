package handlers

import (
	"time"

	"github.com/MrSnakeDoc/tabshell/internal/bridge"
	"github.com/MrSnakeDoc/tabshell/internal/domain"
	"github.com/MrSnakeDoc/tabshell/internal/state"
	"github.com/MrSnakeDoc/tabshell/internal/views"
)

type tabJSON struct {
	ID           string    `json:"id"`
	URL          string    `json:"url"`
	Title        string    `json:"title"`
	Favicon      string    `json:"favicon,omitempty"`
	Thumbnail    string    `json:"thumbnail,omitempty"`
	Loading      bool      `json:"loading"`
	Progress     float64   `json:"progress"`
	CanGoBack    bool      `json:"canGoBack"`
	CanGoForward bool      `json:"canGoForward"`
	CreatedAt    time.Time `json:"createdAt"`
	IsPrivate    bool      `json:"isPrivate"`
	DesktopMode  bool      `json:"desktopMode"`
	ZoomLevel    int       `json:"zoomLevel"`
	Surface      string    `json:"surface"`
}

type bookmarkJSON struct {
	ID        string    `json:"id"`
	URL       string    `json:"url"`
	Title     string    `json:"title"`
	Favicon   string    `json:"favicon,omitempty"`
	FolderID  string    `json:"folderId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type folderJSON struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

type historyJSON struct {
	ID         string    `json:"id"`
	URL        string    `json:"url"`
	Title      string    `json:"title"`
	Favicon    string    `json:"favicon,omitempty"`
	VisitedAt  time.Time `json:"visitedAt"`
	VisitCount int       `json:"visitCount"`
}

type settingsJSON struct {
	Theme               string `json:"theme"`
	DefaultSearchEngine string `json:"defaultSearchEngine"`
	ClearHistoryOnExit  bool   `json:"clearHistoryOnExit"`
	ShowSuggestions     bool   `json:"showSuggestions"`
	BlockPopups         bool   `json:"blockPopups"`
}

type tabsJSON struct {
	Tabs          []tabJSON `json:"tabs"`
	ActiveTabID   string    `json:"activeTabId"`
	IsPrivateMode bool      `json:"isPrivateMode"`
	Regular       int       `json:"regularCount"`
	Private       int       `json:"privateCount"`
}

type stateJSON struct {
	tabsJSON
	Bookmarks   []bookmarkJSON `json:"bookmarks"`
	Folders     []folderJSON   `json:"folders"`
	History     []historyJSON  `json:"history"`
	Settings    settingsJSON   `json:"settings"`
	Theme       string         `json:"theme"`
	Initialized bool           `json:"initialized"`
	Revision    uint64         `json:"revision"`
}

func toTab(t domain.Tab, lifecycle bridge.Lifecycle) tabJSON {
	return tabJSON{
		ID:           t.ID,
		URL:          t.URL,
		Title:        t.Title,
		Favicon:      t.Favicon,
		Thumbnail:    t.Thumbnail,
		Loading:      t.Loading,
		Progress:     t.Progress,
		CanGoBack:    t.CanGoBack,
		CanGoForward: t.CanGoForward,
		CreatedAt:    t.CreatedAt,
		IsPrivate:    t.IsPrivate,
		DesktopMode:  t.DesktopMode,
		ZoomLevel:    t.ZoomLevel,
		Surface:      lifecycle.String(),
	}
}

func toTabs(st state.State, br *bridge.Bridge) tabsJSON {
	counts := views.CountTabs(st.Tabs)
	out := tabsJSON{
		Tabs:          make([]tabJSON, 0, len(st.Tabs)),
		ActiveTabID:   st.ActiveTabID,
		IsPrivateMode: st.PrivateMode,
		Regular:       counts.Regular,
		Private:       counts.Private,
	}
	for _, t := range st.Tabs {
		lifecycle := bridge.Unbound
		if br != nil {
			lifecycle = br.State(t.ID)
		}
		out.Tabs = append(out.Tabs, toTab(t, lifecycle))
	}
	return out
}

func toBookmarks(in []domain.Bookmark) []bookmarkJSON {
	out := make([]bookmarkJSON, 0, len(in))
	for _, b := range in {
		out = append(out, bookmarkJSON{
			ID:        b.ID,
			URL:       b.URL,
			Title:     b.Title,
			Favicon:   b.Favicon,
			FolderID:  b.FolderID,
			CreatedAt: b.CreatedAt,
		})
	}
	return out
}

func toFolders(in []domain.BookmarkFolder) []folderJSON {
	out := make([]folderJSON, 0, len(in))
	for _, f := range in {
		out = append(out, folderJSON{ID: f.ID, Name: f.Name, CreatedAt: f.CreatedAt})
	}
	return out
}

func toHistory(in []domain.HistoryEntry) []historyJSON {
	out := make([]historyJSON, 0, len(in))
	for _, e := range in {
		out = append(out, historyJSON{
			ID:         e.ID,
			URL:        e.URL,
			Title:      e.Title,
			Favicon:    e.Favicon,
			VisitedAt:  e.VisitedAt,
			VisitCount: e.VisitCount,
		})
	}
	return out
}

func toSettings(s domain.Settings) settingsJSON {
	return settingsJSON{
		Theme:               string(s.Theme),
		DefaultSearchEngine: string(s.DefaultSearchEngine),
		ClearHistoryOnExit:  s.ClearHistoryOnExit,
		ShowSuggestions:     s.ShowSuggestions,
		BlockPopups:         s.BlockPopups,
	}
}

func toState(st state.State, br *bridge.Bridge) stateJSON {
	return stateJSON{
		tabsJSON:    toTabs(st, br),
		Bookmarks:   toBookmarks(st.Bookmarks),
		Folders:     toFolders(st.Folders),
		History:     toHistory(st.History.Entries()),
		Settings:    toSettings(st.Settings),
		Theme:       string(st.Theme),
		Initialized: st.Initialized,
		Revision:    st.Revision,
	}
}
