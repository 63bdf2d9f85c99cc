package state

import (
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/tabshell/internal/domain"
)

func TestCreateTabDefaults(t *testing.T) {
	s := newTestStore()

	id := s.CreateTab("", false)

	tab, ok := s.Tab(id)
	require.True(t, ok)
	assert.Equal(t, domain.BlankURL, tab.URL)
	assert.Equal(t, domain.NewTabTitle, tab.Title)
	assert.Equal(t, domain.DefaultZoom, tab.ZoomLevel)
	assert.False(t, tab.Loading)
	assert.Equal(t, id, s.ActiveTabID())
	assert.False(t, s.IsPrivateMode())
}

func TestCreatePrivateTabSetsPrivateMode(t *testing.T) {
	s := newTestStore()
	s.CreateTab("https://a.test", false)
	id := s.CreateTab("https://b.test", true)

	assert.Equal(t, id, s.ActiveTabID())
	assert.True(t, s.IsPrivateMode())
}

func TestCloseActiveTabSelectsPreceding(t *testing.T) {
	s := newTestStore()
	a := s.CreateTab("", false)
	b := s.CreateTab("", false)
	c := s.CreateTab("", true)

	s.SetActiveTab(c)
	s.CloseTab(c)
	assert.Equal(t, b, s.ActiveTabID())
	assert.False(t, s.IsPrivateMode())

	s.SetActiveTab(a)
	s.CloseTab(a)
	assert.Equal(t, b, s.ActiveTabID(), "first remaining tab when nothing precedes")

	s.CloseTab(b)
	assert.Empty(t, s.ActiveTabID())
	assert.False(t, s.IsPrivateMode())
}

func TestCloseActiveFirstTabSelectsNext(t *testing.T) {
	s := newTestStore()
	a := s.CreateTab("", false)
	b := s.CreateTab("", false)
	s.SetActiveTab(a)

	s.CloseTab(a)

	assert.Equal(t, b, s.ActiveTabID())
}

func TestCloseInactiveTabKeepsActive(t *testing.T) {
	s := newTestStore()
	a := s.CreateTab("", false)
	b := s.CreateTab("", true)

	s.CloseTab(a)

	assert.Equal(t, b, s.ActiveTabID())
	assert.True(t, s.IsPrivateMode())
}

func TestUnknownIDsAreNoOps(t *testing.T) {
	s := newTestStore()
	s.CreateTab("", false)
	before := s.Snapshot()

	s.CloseTab("missing")
	s.SetActiveTab("missing")
	s.UpdateTab("missing", domain.TabPatch{Title: domain.Ptr("x")})
	s.ToggleDesktopMode("missing")
	s.SetTabZoom("missing", 50)
	s.RemoveBookmark("missing")
	s.DeleteBookmarkFolder("missing")
	s.RemoveHistoryEntry("missing")
	s.UpdateBookmark("missing", domain.BookmarkPatch{Title: domain.Ptr("x")})

	assert.Equal(t, before, s.Snapshot())
}

func TestActiveTabAlwaysReferencesExistingTab(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	s := newTestStore()
	var ids []string

	for i := 0; i < 500; i++ {
		switch op := rng.Intn(4); {
		case op == 0 || len(ids) == 0:
			ids = append(ids, s.CreateTab("", rng.Intn(2) == 0))
		case op == 1:
			s.CloseTab(ids[rng.Intn(len(ids))])
		case op == 2:
			s.SetActiveTab(ids[rng.Intn(len(ids))])
		default:
			s.CloseAllPrivateTabs()
		}

		st := s.Snapshot()
		if len(st.Tabs) == 0 {
			require.Empty(t, st.ActiveTabID)
			require.False(t, st.PrivateMode)
			continue
		}
		active, ok := st.ActiveTab()
		require.True(t, ok, "active tab %q must exist", st.ActiveTabID)
		require.Equal(t, active.IsPrivate, st.PrivateMode)
	}
}

func TestUpdateTabCannotChangeIdentity(t *testing.T) {
	s := newTestStore()
	id := s.CreateTab("", true)
	created, _ := s.Tab(id)

	s.UpdateTab(id, domain.TabPatch{URL: domain.Ptr("https://a.test"), Loading: domain.Ptr(true)})

	tab, _ := s.Tab(id)
	assert.Equal(t, created.ID, tab.ID)
	assert.Equal(t, created.CreatedAt, tab.CreatedAt)
	assert.True(t, tab.IsPrivate)
	assert.Equal(t, "https://a.test", tab.URL)
	assert.True(t, tab.Loading)
}

func TestSetTabZoomClamps(t *testing.T) {
	s := newTestStore()
	id := s.CreateTab("", false)

	s.SetTabZoom(id, 9999)
	tab, _ := s.Tab(id)
	assert.Equal(t, 150, tab.ZoomLevel)

	s.SetTabZoom(id, 1)
	tab, _ = s.Tab(id)
	assert.Equal(t, 25, tab.ZoomLevel)
}

func TestToggleDesktopMode(t *testing.T) {
	s := newTestStore()
	id := s.CreateTab("", false)

	s.ToggleDesktopMode(id)
	tab, _ := s.Tab(id)
	assert.True(t, tab.DesktopMode)

	s.ToggleDesktopMode(id)
	tab, _ = s.Tab(id)
	assert.False(t, tab.DesktopMode)
}

func TestCloseAllPrivateTabs(t *testing.T) {
	s := newTestStore()
	a := s.CreateTab("", false)
	s.CreateTab("", true)
	b := s.CreateTab("", false)
	s.CreateTab("", true)

	s.CloseAllPrivateTabs()

	tabs := s.Tabs()
	require.Len(t, tabs, 2)
	assert.Equal(t, a, tabs[0].ID)
	assert.Equal(t, b, tabs[1].ID)
	assert.Equal(t, a, s.ActiveTabID(), "first regular tab becomes active")
	assert.False(t, s.IsPrivateMode())
}

func TestCloseAllPrivateTabsKeepsRegularActive(t *testing.T) {
	s := newTestStore()
	s.CreateTab("", false)
	b := s.CreateTab("", false)
	s.CreateTab("", true)
	s.SetActiveTab(b)

	s.CloseAllPrivateTabs()

	assert.Equal(t, b, s.ActiveTabID())
}

func TestCloseAllPrivateTabsLeavesNone(t *testing.T) {
	s := newTestStore()
	s.CreateTab("", true)

	s.CloseAllPrivateTabs()

	assert.Empty(t, s.Tabs())
	assert.Empty(t, s.ActiveTabID())
}

func TestCloseActiveTabScenario(t *testing.T) {
	s := newTestStore()
	a := s.CreateTab("", false)
	b := s.CreateTab("", false)
	s.SetActiveTab(a)

	s.CloseTab(a)

	assert.Equal(t, b, s.ActiveTabID())
}

func TestAddHistoryEntryIdempotentPerURL(t *testing.T) {
	s := newTestStore()
	s.CreateTab("", false)

	s.AddHistoryEntry("https://example.com", "Example", "")
	s.AddHistoryEntry("https://example.com", "Example", "")

	history := s.History()
	require.Len(t, history, 1)
	assert.Equal(t, 2, history[0].VisitCount)
}

func TestAddHistoryEntrySkippedWhilePrivate(t *testing.T) {
	s := newTestStore()
	s.CreateTab("", true)

	s.AddHistoryEntry("https://example.com", "Example", "")

	assert.Empty(t, s.History())
}

func TestClearHistory(t *testing.T) {
	s := newTestStore()
	s.CreateTab("", false)
	s.AddHistoryEntry("https://a.test", "A", "")
	s.AddHistoryEntry("https://b.test", "B", "")
	s.AddHistoryEntry("https://c.test", "C", "")

	byURL := map[string]string{}
	for _, e := range s.History() {
		byURL[e.URL] = e.ID
	}

	s.ClearHistory(byURL["https://a.test"], byURL["https://c.test"])
	history := s.History()
	require.Len(t, history, 1)
	assert.Equal(t, "https://b.test", history[0].URL)

	s.ClearHistory()
	assert.Empty(t, s.History())
}

func TestDeleteFolderCascades(t *testing.T) {
	s := newTestStore()
	f := s.CreateBookmarkFolder("Work")
	other := s.CreateBookmarkFolder("Play")
	require.NotEmpty(t, f)

	s.AddBookmark("https://a.test", "A", f)
	keptRoot := s.AddBookmark("https://b.test", "B", "")
	keptOther := s.AddBookmark("https://c.test", "C", other)

	s.DeleteBookmarkFolder(f)

	folders := s.Folders()
	require.Len(t, folders, 1)
	assert.Equal(t, other, folders[0].ID)

	var ids []string
	for _, b := range s.Bookmarks() {
		ids = append(ids, b.ID)
	}
	assert.ElementsMatch(t, []string{keptRoot, keptOther}, ids)
}

func TestCreateFolderRejectsBlankName(t *testing.T) {
	s := newTestStore()

	assert.Empty(t, s.CreateBookmarkFolder("   "))
	assert.Empty(t, s.Folders())
}

func TestAddBookmarkUnknownFolderGoesToRoot(t *testing.T) {
	s := newTestStore()

	id := s.AddBookmark("https://a.test", "A", "nope")

	require.NotEmpty(t, id)
	bookmarks := s.Bookmarks()
	require.Len(t, bookmarks, 1)
	assert.Empty(t, bookmarks[0].FolderID)
	assert.True(t, s.IsBookmarked("https://a.test"))
}

func TestUpdateBookmark(t *testing.T) {
	s := newTestStore()
	f := s.CreateBookmarkFolder("Docs")
	id := s.AddBookmark("https://a.test", "A", "")

	s.UpdateBookmark(id, domain.BookmarkPatch{Title: domain.Ptr("Renamed"), FolderID: domain.Ptr(f)})

	b := s.Bookmarks()[0]
	assert.Equal(t, "Renamed", b.Title)
	assert.Equal(t, f, b.FolderID)
}

func TestSettingsOperations(t *testing.T) {
	s := newTestStore()

	s.UpdateSettings(domain.SettingsPatch{
		Theme:               domain.Ptr(domain.ThemeLight),
		DefaultSearchEngine: domain.Ptr(domain.SearchBing),
	})
	assert.Equal(t, domain.ThemeLight, s.Theme())
	assert.Equal(t, domain.SearchBing, s.Settings().DefaultSearchEngine)

	s.SetTheme(domain.ThemeDark)
	assert.Equal(t, domain.ThemeDark, s.Theme())
	assert.Equal(t, domain.ThemeDark, s.Settings().Theme)

	s.SetTheme(domain.Theme("sepia"))
	assert.Equal(t, domain.ThemeDark, s.Theme())

	s.ResetSettings()
	assert.Equal(t, domain.DefaultSettings(), s.Settings())
}

func TestHydrateResolvesActiveTab(t *testing.T) {
	s := newTestStore()
	loaded := Initial()
	loaded.Tabs = []domain.Tab{
		domain.NewTab("p", "https://a.test", true, epoch),
		domain.NewTab("r", "https://b.test", false, epoch),
	}
	loaded.ActiveTabID = "gone"
	loaded.PrivateMode = false

	s.Hydrate(loaded)

	assert.Equal(t, "p", s.ActiveTabID())
	assert.True(t, s.IsPrivateMode())
	assert.False(t, s.Initialized())
}

func TestBootstrapCreatesBlankTabOnce(t *testing.T) {
	s := newTestStore()

	s.Bootstrap()
	s.Bootstrap()

	tabs := s.Tabs()
	require.Len(t, tabs, 1)
	assert.Equal(t, domain.BlankURL, tabs[0].URL)
	assert.Equal(t, tabs[0].ID, s.ActiveTabID())
	assert.True(t, s.Initialized())
}

func TestSubscribeReceivesTransitions(t *testing.T) {
	s := newTestStore()
	var mu sync.Mutex
	var revisions []uint64

	unsubscribe := s.Subscribe(func(prev, next State) {
		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, prev.Revision+1, next.Revision)
		revisions = append(revisions, next.Revision)
	})

	s.CreateTab("", false)
	s.CloseTab("missing") // no-op, no notification
	s.SetTheme(domain.ThemeLight)
	unsubscribe()
	s.SetTheme(domain.ThemeDark)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []uint64{1, 2}, revisions)
}

func TestConcurrentDispatch(t *testing.T) {
	s := New()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := s.CreateTab("", false)
			s.SetTabZoom(id, 50)
			s.AddHistoryEntry("https://example.com", "Example", "")
		}()
	}
	wg.Wait()

	assert.Len(t, s.Tabs(), 20)
	history := s.History()
	require.Len(t, history, 1)
	assert.Equal(t, 20, history[0].VisitCount)
}
