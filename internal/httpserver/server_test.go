package httpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/tabshell/internal/bridge"
	"github.com/MrSnakeDoc/tabshell/internal/emulation"
	"github.com/MrSnakeDoc/tabshell/internal/httpserver/deps"
	"github.com/MrSnakeDoc/tabshell/internal/logger"
	"github.com/MrSnakeDoc/tabshell/internal/state"
)

var testNow = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

type stubSurface struct {
	mu    sync.Mutex
	loads []string
}

func (s *stubSurface) Load(_ context.Context, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loads = append(s.loads, url)
	return nil
}
func (s *stubSurface) GoBack(context.Context) error               { return nil }
func (s *stubSurface) GoForward(context.Context) error            { return nil }
func (s *stubSurface) Reload(context.Context) error               { return nil }
func (s *stubSurface) InjectScript(context.Context, string) error { return nil }

type emulateCall struct {
	tabID         string
	width, height int
	mobile        bool
}

type stubEmulator struct {
	mu    sync.Mutex
	calls []emulateCall
}

func (s *stubEmulator) EmulateDevice(_ context.Context, tabID string, width, height int, mobile bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, emulateCall{tabID, width, height, mobile})
	return nil
}

type fixture struct {
	store    *state.Store
	bridge   *bridge.Bridge
	surfaces *stubEmulator
	trigger  chan struct{}
	handler  http.Handler
}

func newFixture(t *testing.T, edit ...func(*deps.Deps)) *fixture {
	t.Helper()
	n := 0
	store := state.New(
		state.WithClock(func() time.Time { return testNow }),
		state.WithIDGenerator(func() string { n++; return fmt.Sprintf("id-%d", n) }),
	)
	store.Bootstrap()

	br := bridge.New(store, logger.NewNop(), bridge.WithThumbnailDelay(time.Hour))
	t.Cleanup(br.Close)

	f := &fixture{
		store:    store,
		bridge:   br,
		surfaces: &stubEmulator{},
		trigger:  make(chan struct{}, 1),
	}
	d := deps.Deps{
		Logger:              logger.NewNop(),
		StartTime:           testNow,
		Version:             "test",
		TimeNow:             func() time.Time { return testNow },
		Location:            time.UTC,
		Store:               store,
		Bridge:              br,
		Emulator:            emulation.NewEmulator(emulation.NewCatalog(nil), 1000, 1400),
		Surfaces:            f.surfaces,
		StorageBackend:      "memory",
		PresetReloadTrigger: f.trigger,
	}
	for _, fn := range edit {
		fn(&d)
	}
	f.handler = NewRouter(logger.NewNop(), d, 5*time.Second)
	return f
}

func (f *fixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	req.RemoteAddr = "127.0.0.1:40000"
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestHealthAndReadiness(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	health := decode[map[string]any](t, rec)
	assert.Equal(t, "ok", health["status"])
	assert.EqualValues(t, f.store.Snapshot().Revision, health["state_revision"])

	rec = f.do(t, http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ready":true}`, rec.Body.String())
}

func TestReadyzBeforeLoad(t *testing.T) {
	f := newFixture(t, func(d *deps.Deps) { d.Store = state.New() })

	rec := f.do(t, http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"ready":false}`, rec.Body.String())
}

func TestInfra(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/api/infra", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Mode       string `json:"mode"`
		Components map[string]struct {
			OK   bool `json:"ok"`
			Tabs *int `json:"tabs"`
		} `json:"components"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "operational", body.Mode)
	assert.True(t, body.Components["store"].OK)
	require.NotNil(t, body.Components["store"].Tabs)
	assert.Equal(t, 1, *body.Components["store"].Tabs)
	assert.True(t, body.Components["emulation"].OK)
}

func TestTabLifecycle(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/tabs", `{"url":"https://go.dev"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	id := decode[map[string]string](t, rec)["id"]
	require.NotEmpty(t, id)

	rec = f.do(t, http.MethodGet, "/api/tabs", "")
	require.Equal(t, http.StatusOK, rec.Code)
	tabs := decode[struct {
		Tabs        []map[string]any `json:"tabs"`
		ActiveTabID string           `json:"activeTabId"`
		Regular     int              `json:"regularCount"`
	}](t, rec)
	assert.Len(t, tabs.Tabs, 2)
	assert.Equal(t, id, tabs.ActiveTabID)
	assert.Equal(t, 2, tabs.Regular)
	assert.Equal(t, "unbound", tabs.Tabs[1]["surface"])

	rec = f.do(t, http.MethodPost, "/api/tabs/"+id+"/activate", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = f.do(t, http.MethodDelete, "/api/tabs/"+id, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Len(t, f.store.Tabs(), 1)
}

func TestCreateTabWithoutBodyOpensBlankTab(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/tabs", "")
	require.Equal(t, http.StatusCreated, rec.Code)

	tab, ok := f.store.ActiveTab()
	require.True(t, ok)
	assert.True(t, tab.IsBlank())
}

func TestPrivateTabsClose(t *testing.T) {
	f := newFixture(t)

	f.do(t, http.MethodPost, "/api/tabs", `{"private":true}`)
	f.do(t, http.MethodPost, "/api/tabs", `{"private":true}`)
	assert.True(t, f.store.IsPrivateMode())

	rec := f.do(t, http.MethodPost, "/api/tabs/private/close", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Len(t, f.store.Tabs(), 1)
	assert.False(t, f.store.IsPrivateMode())
}

func TestUnknownIDsAreNoOps(t *testing.T) {
	f := newFixture(t)
	before := f.store.Snapshot().Revision

	for _, tc := range []struct{ method, path, body string }{
		{http.MethodDelete, "/api/tabs/missing", ""},
		{http.MethodPost, "/api/tabs/missing/activate", ""},
		{http.MethodPatch, "/api/tabs/missing/desktop", ""},
		{http.MethodDelete, "/api/bookmarks/missing", ""},
		{http.MethodDelete, "/api/folders/missing", ""},
		{http.MethodDelete, "/api/history/missing", ""},
	} {
		rec := f.do(t, tc.method, tc.path, tc.body)
		assert.Equal(t, http.StatusNoContent, rec.Code, tc.path)
	}
	assert.Equal(t, before, f.store.Snapshot().Revision)
}

func TestMalformedBody(t *testing.T) {
	f := newFixture(t)

	for _, tc := range []struct{ method, path string }{
		{http.MethodPost, "/api/tabs"},
		{http.MethodPost, "/api/bookmarks"},
		{http.MethodPatch, "/api/settings"},
		{http.MethodPost, "/api/emulation/transform"},
	} {
		rec := f.do(t, tc.method, tc.path, `{"broken"`)
		assert.Equal(t, http.StatusBadRequest, rec.Code, tc.path)
	}
}

func TestNavigate(t *testing.T) {
	f := newFixture(t)
	tabID := f.store.ActiveTabID()

	// no surface mounted
	rec := f.do(t, http.MethodPost, "/api/tabs/"+tabID+"/navigate", `{"input":"go.dev"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"dispatched":false}`, rec.Body.String())

	surface := &stubSurface{}
	_, err := f.bridge.Mount(context.Background(), tabID, surface)
	require.NoError(t, err)

	rec = f.do(t, http.MethodPost, "/api/tabs/"+tabID+"/navigate", `{"input":"go.dev"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"dispatched":true}`, rec.Body.String())
	assert.Equal(t, []string{"https://go.dev"}, surface.loads)

	tab, _ := f.store.Tab(tabID)
	assert.Equal(t, "https://go.dev", tab.URL)
	assert.True(t, tab.Loading)

	rec = f.do(t, http.MethodPost, "/api/tabs/"+tabID+"/navigate", `{"input":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTabZoomAndDesktop(t *testing.T) {
	f := newFixture(t)
	tabID := f.do(t, http.MethodPost, "/api/tabs", `{"url":"https://go.dev"}`)
	id := decode[map[string]string](t, tabID)["id"]

	rec := f.do(t, http.MethodPut, "/api/tabs/"+id+"/zoom", `{"level":400}`)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = f.do(t, http.MethodPatch, "/api/tabs/"+id+"/desktop", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	tab, _ := f.store.Tab(id)
	assert.Equal(t, 150, tab.ZoomLevel)
	assert.True(t, tab.DesktopMode)
}

func TestBookmarks(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/folders", `{"name":"Work"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	folderID := decode[map[string]string](t, rec)["id"]

	rec = f.do(t, http.MethodPost, "/api/bookmarks", `{"url":"https://go.dev","title":"Go","folderId":"`+folderID+`"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = f.do(t, http.MethodPost, "/api/bookmarks", `{"url":"https://example.com","title":"Example"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	exampleID := decode[map[string]string](t, rec)["id"]

	rec = f.do(t, http.MethodPost, "/api/bookmarks", `{"url":"","title":"nothing"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":""}`, rec.Body.String())

	rec = f.do(t, http.MethodGet, "/api/bookmarks", "")
	require.Equal(t, http.StatusOK, rec.Code)
	view := decode[struct {
		Folders []struct {
			Folder    struct{ Name string } `json:"folder"`
			Bookmarks []struct{ URL string } `json:"bookmarks"`
		} `json:"folders"`
		Root struct {
			Bookmarks []struct{ URL string } `json:"bookmarks"`
		} `json:"root"`
	}](t, rec)
	require.Len(t, view.Folders, 1)
	assert.Equal(t, "Work", view.Folders[0].Folder.Name)
	require.Len(t, view.Folders[0].Bookmarks, 1)
	assert.Equal(t, "https://go.dev", view.Folders[0].Bookmarks[0].URL)
	require.Len(t, view.Root.Bookmarks, 1)

	rec = f.do(t, http.MethodGet, "/api/bookmarks/check?url=https://example.com", "")
	assert.JSONEq(t, `{"bookmarked":true}`, rec.Body.String())

	rec = f.do(t, http.MethodPatch, "/api/bookmarks/"+exampleID, `{"title":"Renamed"}`)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "Renamed", f.store.Bookmarks()[1].Title)

	rec = f.do(t, http.MethodDelete, "/api/folders/"+folderID, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Len(t, f.store.Bookmarks(), 1)
	assert.Empty(t, f.store.Folders())
}

func TestImportBookmarks(t *testing.T) {
	f := newFixture(t)
	f.store.AddBookmark("https://go.dev/", "Go", "")

	body := `- Developer:
    - Go:
        - href: https://go.dev/
    - Chi:
        - href: https://go-chi.io/
`
	rec := f.do(t, http.MethodPost, "/api/bookmarks/import", body)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"folders":1,"added":1,"skipped":1}`, rec.Body.String())
	assert.True(t, f.store.IsBookmarked("https://go-chi.io/"))

	rec = f.do(t, http.MethodPost, "/api/bookmarks/import", "- [broken")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHistoryAndSuggestions(t *testing.T) {
	f := newFixture(t)
	f.store.AddHistoryEntry("https://go.dev/doc", "Documentation", "")
	f.store.AddHistoryEntry("https://golang.org", "Golang", "")
	f.store.AddHistoryEntry("https://example.com", "Example", "")

	rec := f.do(t, http.MethodGet, "/api/history?q=go", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]map[string]any](t, rec), 2)

	rec = f.do(t, http.MethodGet, "/api/history?limit=1", "")
	assert.Len(t, decode[[]map[string]any](t, rec), 1)

	rec = f.do(t, http.MethodGet, "/api/history/grouped", "")
	groups := decode[[]struct {
		Title   string           `json:"title"`
		Entries []map[string]any `json:"entries"`
	}](t, rec)
	require.Len(t, groups, 1)
	assert.Equal(t, "Today", groups[0].Title)
	assert.Len(t, groups[0].Entries, 3)

	rec = f.do(t, http.MethodGet, "/api/suggestions?q=go", "")
	sugg := decode[struct {
		Suggestions []string `json:"suggestions"`
	}](t, rec)
	assert.ElementsMatch(t, []string{"https://go.dev/doc", "https://golang.org"}, sugg.Suggestions)

	rec = f.do(t, http.MethodGet, "/api/suggestions?q=g", "")
	assert.JSONEq(t, `{"suggestions":[]}`, rec.Body.String())

	rec = f.do(t, http.MethodDelete, "/api/history", `{"ids":[]}`)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Len(t, f.store.History(), 3)

	rec = f.do(t, http.MethodDelete, "/api/history", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, f.store.History())
}

func TestSettings(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPatch, "/api/settings", `{"theme":"neon"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPatch, "/api/settings", `{"defaultSearchEngine":"duckduckgo","showSuggestions":false}`)
	require.Equal(t, http.StatusOK, rec.Code)
	settings := decode[map[string]any](t, rec)
	assert.Equal(t, "duckduckgo", settings["defaultSearchEngine"])
	assert.Equal(t, false, settings["showSuggestions"])

	rec = f.do(t, http.MethodPut, "/api/settings/theme", `{"theme":"light"}`)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "light", string(f.store.Theme()))

	rec = f.do(t, http.MethodPost, "/api/settings/reset", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "dark", decode[map[string]any](t, rec)["theme"])
}

func TestEmulation(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/emulation/transform",
		`{"targetWidth":1920,"targetHeight":1080,"zoom":100,"availableWidth":960,"availableHeight":2000}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"scale":0.5,"width":960,"height":540,"zoom":100}`, rec.Body.String())

	rec = f.do(t, http.MethodPut, "/api/emulation/device", `{"id":"nope"}`)
	assert.JSONEq(t, `{"selected":false}`, rec.Body.String())
	assert.Empty(t, f.surfaces.calls)

	rec = f.do(t, http.MethodPost, "/api/emulation/activate", "")
	require.Equal(t, http.StatusOK, rec.Code)
	rec = f.do(t, http.MethodPut, "/api/emulation/device", `{"id":"iphone-14"}`)
	assert.JSONEq(t, `{"selected":true}`, rec.Body.String())

	rec = f.do(t, http.MethodPost, "/api/emulation/rotate", "")
	require.Equal(t, http.StatusOK, rec.Code)
	em := decode[map[string]any](t, rec)
	assert.Equal(t, "iphone-14", em["selectedDevice"])
	assert.Equal(t, true, em["rotated"])

	active := f.store.ActiveTabID()
	require.Len(t, f.surfaces.calls, 3)
	assert.Equal(t, emulateCall{active, 390, 844, true}, f.surfaces.calls[1])
	assert.Equal(t, emulateCall{active, 844, 390, true}, f.surfaces.calls[2])

	rec = f.do(t, http.MethodPost, "/api/emulation/deactivate", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, emulateCall{active, 0, 0, false}, f.surfaces.calls[3])

	rec = f.do(t, http.MethodGet, "/api/emulation/presets", "")
	assert.Len(t, decode[[]map[string]any](t, rec), 12)
}

func TestPresetsReload(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/emulation/presets/reload", "")
	assert.Equal(t, http.StatusAccepted, rec.Code)
	rec = f.do(t, http.MethodPost, "/api/emulation/presets/reload", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	<-f.trigger
	rec = f.do(t, http.MethodPost, "/api/emulation/presets/reload", "")
	assert.Equal(t, http.StatusAccepted, rec.Code)
}

func TestCIDRGuard(t *testing.T) {
	f := newFixture(t, func(d *deps.Deps) { d.AllowedCIDRS = []string{"10.0.0.0/8"} })

	rec := f.do(t, http.MethodGet, "/api/state", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// liveness stays reachable
	rec = f.do(t, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestState(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/api/state", "")
	require.Equal(t, http.StatusOK, rec.Code)
	st := decode[map[string]any](t, rec)
	assert.Equal(t, true, st["initialized"])
	assert.Equal(t, "dark", st["theme"])
	assert.Len(t, st["tabs"], 1)
}
