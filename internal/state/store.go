package state

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MrSnakeDoc/tabshell/internal/domain"
	"github.com/MrSnakeDoc/tabshell/internal/logger"
)

// Listener observes transitions. It is called after the store lock has been
// released, with the state before and after the action. Listeners may run
// concurrently when several goroutines dispatch at once; compare Revision to
// order what they see.
type Listener func(prev, next State)

// Store is the single writer of State. Every operation is applied atomically
// through Reduce.
type Store struct {
	mu    sync.RWMutex
	state State

	listenersMu sync.RWMutex
	listeners   map[int]Listener
	nextID      int

	now    func() time.Time
	newID  func() string
	logger logger.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source used to stamp new entities.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator overrides the id source used for new entities.
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) { s.newID = gen }
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(log logger.Logger) Option {
	return func(s *Store) { s.logger = log }
}

// WithInitialState seeds the store. Mostly useful in tests.
func WithInitialState(st State) Option {
	return func(s *Store) { s.state = st }
}

// New creates a Store holding the pre-load state.
func New(opts ...Option) *Store {
	s := &Store{
		state:     Initial(),
		listeners: make(map[int]Listener),
		now:       time.Now,
		newID:     uuid.NewString,
		logger:    logger.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Subscribe registers fn and returns a function that removes it.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	s.listenersMu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.listenersMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.listenersMu.Lock()
			delete(s.listeners, id)
			s.listenersMu.Unlock()
		})
	}
}

// Dispatch applies a and returns the resulting state. Listeners are only
// notified when the action changed something.
func (s *Store) Dispatch(a Action) State {
	s.mu.Lock()
	prev := s.state
	next := Reduce(prev, a)
	s.state = next
	s.mu.Unlock()

	if next.Revision == prev.Revision {
		s.logger.Debug("action had no effect", logger.String("action", actionName(a)))
		return next
	}

	s.listenersMu.RLock()
	fns := make([]Listener, 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.listenersMu.RUnlock()

	for _, fn := range fns {
		fn(prev, next)
	}
	return next
}

// Now returns the store clock's current time.
func (s *Store) Now() time.Time { return s.now() }

// NewID returns a fresh entity id from the store's generator.
func (s *Store) NewID() string { return s.newID() }

// ─────────────────────────────
// Accessors
// ─────────────────────────────

// Snapshot returns the current state. Its slices must be treated as read-only.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Store) Tab(id string) (domain.Tab, bool) { return s.Snapshot().Tab(id) }

func (s *Store) Tabs() []domain.Tab { return slices.Clone(s.Snapshot().Tabs) }

func (s *Store) ActiveTab() (domain.Tab, bool) { return s.Snapshot().ActiveTab() }

func (s *Store) ActiveTabID() string { return s.Snapshot().ActiveTabID }

func (s *Store) IsPrivateMode() bool { return s.Snapshot().PrivateMode }

func (s *Store) Bookmarks() []domain.Bookmark { return slices.Clone(s.Snapshot().Bookmarks) }

func (s *Store) Folders() []domain.BookmarkFolder { return slices.Clone(s.Snapshot().Folders) }

func (s *Store) History() []domain.HistoryEntry { return s.Snapshot().History.Entries() }

func (s *Store) Settings() domain.Settings { return s.Snapshot().Settings }

func (s *Store) Theme() domain.Theme { return s.Snapshot().Theme }

func (s *Store) Initialized() bool { return s.Snapshot().Initialized }

func (s *Store) IsBookmarked(url string) bool { return s.Snapshot().IsBookmarked(url) }

// SearchHistory returns history entries whose title or URL contains query.
func (s *Store) SearchHistory(query string) []domain.HistoryEntry {
	return s.Snapshot().History.Search(query)
}

// ─────────────────────────────
// Operations
// ─────────────────────────────

// CreateTab opens a tab, makes it active and returns its id.
// An empty url opens a blank tab.
func (s *Store) CreateTab(url string, private bool) string {
	id := s.newID()
	s.Dispatch(CreateTab{ID: id, URL: url, Private: private, At: s.now()})
	return id
}

func (s *Store) CloseTab(id string) { s.Dispatch(CloseTab{ID: id}) }

func (s *Store) SetActiveTab(id string) { s.Dispatch(SetActiveTab{ID: id}) }

func (s *Store) UpdateTab(id string, patch domain.TabPatch) {
	s.Dispatch(UpdateTab{ID: id, Patch: patch})
}

func (s *Store) ToggleDesktopMode(id string) { s.Dispatch(ToggleDesktopMode{ID: id}) }

// SetTabZoom stores level clamped to the supported zoom range.
func (s *Store) SetTabZoom(id string, level int) {
	s.Dispatch(SetTabZoom{ID: id, Level: level})
}

func (s *Store) CloseAllPrivateTabs() { s.Dispatch(CloseAllPrivateTabs{}) }

// AddBookmark saves url and returns the new bookmark id. A folderID that
// names no folder files the bookmark at root level.
func (s *Store) AddBookmark(url, title, folderID string) string {
	id := s.newID()
	st := s.Dispatch(AddBookmark{ID: id, URL: url, Title: title, FolderID: folderID, At: s.now()})
	if !slices.ContainsFunc(st.Bookmarks, func(b domain.Bookmark) bool { return b.ID == id }) {
		return ""
	}
	return id
}

func (s *Store) RemoveBookmark(id string) { s.Dispatch(RemoveBookmark{ID: id}) }

func (s *Store) UpdateBookmark(id string, patch domain.BookmarkPatch) {
	s.Dispatch(UpdateBookmark{ID: id, Patch: patch})
}

// CreateBookmarkFolder returns the new folder id, or "" when name is blank.
func (s *Store) CreateBookmarkFolder(name string) string {
	id := s.newID()
	st := s.Dispatch(CreateFolder{ID: id, Name: name, At: s.now()})
	if _, ok := st.Folder(id); !ok {
		return ""
	}
	return id
}

// DeleteBookmarkFolder removes the folder and the bookmarks filed under it.
func (s *Store) DeleteBookmarkFolder(id string) { s.Dispatch(DeleteFolder{ID: id}) }

// AddHistoryEntry records a visit unless the active tab is private.
func (s *Store) AddHistoryEntry(url, title, favicon string) {
	s.Dispatch(AddHistoryEntry{ID: s.newID(), URL: url, Title: title, Favicon: favicon, At: s.now()})
}

func (s *Store) RemoveHistoryEntry(id string) { s.Dispatch(RemoveHistoryEntry{ID: id}) }

// ClearHistory removes the given entries, or every entry when called
// without ids.
func (s *Store) ClearHistory(ids ...string) {
	if len(ids) == 0 {
		s.Dispatch(ClearHistory{})
		return
	}
	s.Dispatch(ClearHistory{IDs: ids})
}

func (s *Store) UpdateSettings(patch domain.SettingsPatch) {
	s.Dispatch(UpdateSettings{Patch: patch})
}

func (s *Store) SetTheme(theme domain.Theme) { s.Dispatch(SetTheme{Theme: theme}) }

func (s *Store) ResetSettings() { s.Dispatch(ResetSettings{}) }

// Hydrate replaces the store content with loaded state.
func (s *Store) Hydrate(loaded State) { s.Dispatch(Hydrate{Loaded: loaded}) }

// Bootstrap marks the store initialized, opening a blank tab if none exists.
func (s *Store) Bootstrap() {
	s.Dispatch(Bootstrap{TabID: s.newID(), At: s.now()})
}

func actionName(a Action) string {
	return fmt.Sprintf("%T", a)
}
