package state

import (
	"time"

	"github.com/MrSnakeDoc/tabshell/internal/domain"
)

// Action is a state transition request. The set of actions is closed:
// only the types in this file implement it.
//
// Actions carry every id and timestamp they need so that Reduce stays a
// pure function of its inputs.
type Action interface {
	isAction()
}

// Tabs

type CreateTab struct {
	ID      string
	URL     string
	Private bool
	At      time.Time
}

type CloseTab struct{ ID string }

type SetActiveTab struct{ ID string }

type UpdateTab struct {
	ID    string
	Patch domain.TabPatch
}

type ToggleDesktopMode struct{ ID string }

type SetTabZoom struct {
	ID    string
	Level int
}

type CloseAllPrivateTabs struct{}

// Bookmarks

type AddBookmark struct {
	ID       string
	URL      string
	Title    string
	Favicon  string
	FolderID string
	At       time.Time
}

type RemoveBookmark struct{ ID string }

type UpdateBookmark struct {
	ID    string
	Patch domain.BookmarkPatch
}

type CreateFolder struct {
	ID   string
	Name string
	At   time.Time
}

type DeleteFolder struct{ ID string }

// History

type AddHistoryEntry struct {
	ID      string // used only when the URL is new
	URL     string
	Title   string
	Favicon string
	At      time.Time
}

type RemoveHistoryEntry struct{ ID string }

// ClearHistory removes the listed entries, or everything when IDs is nil.
type ClearHistory struct{ IDs []string }

// Settings

type UpdateSettings struct{ Patch domain.SettingsPatch }

type SetTheme struct{ Theme domain.Theme }

type ResetSettings struct{}

// Lifecycle

// Hydrate replaces the collections with loaded data. The active tab and
// private mode are re-resolved against the loaded tabs.
type Hydrate struct{ Loaded State }

// Bootstrap marks the state initialized and, when no tab exists, opens a
// blank one.
type Bootstrap struct {
	TabID string
	At    time.Time
}

func (CreateTab) isAction()           {}
func (CloseTab) isAction()            {}
func (SetActiveTab) isAction()        {}
func (UpdateTab) isAction()           {}
func (ToggleDesktopMode) isAction()   {}
func (SetTabZoom) isAction()          {}
func (CloseAllPrivateTabs) isAction() {}
func (AddBookmark) isAction()         {}
func (RemoveBookmark) isAction()      {}
func (UpdateBookmark) isAction()      {}
func (CreateFolder) isAction()        {}
func (DeleteFolder) isAction()        {}
func (AddHistoryEntry) isAction()     {}
func (RemoveHistoryEntry) isAction()  {}
func (ClearHistory) isAction()        {}
func (UpdateSettings) isAction()      {}
func (SetTheme) isAction()            {}
func (ResetSettings) isAction()       {}
func (Hydrate) isAction()             {}
func (Bootstrap) isAction()           {}
