package integration

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/MrSnakeDoc/tabshell/internal/bridge"
	"github.com/MrSnakeDoc/tabshell/internal/domain"
	"github.com/MrSnakeDoc/tabshell/internal/emulation"
	"github.com/MrSnakeDoc/tabshell/internal/httpserver"
	"github.com/MrSnakeDoc/tabshell/internal/httpserver/deps"
	"github.com/MrSnakeDoc/tabshell/internal/logger"
	"github.com/MrSnakeDoc/tabshell/internal/persist"
	"github.com/MrSnakeDoc/tabshell/internal/scheduler"
	"github.com/MrSnakeDoc/tabshell/internal/state"
	"github.com/MrSnakeDoc/tabshell/internal/store/memory"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type surface struct {
	mu    sync.Mutex
	loads []string
}

func (s *surface) Load(_ context.Context, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loads = append(s.loads, url)
	return nil
}
func (s *surface) GoBack(context.Context) error               { return nil }
func (s *surface) GoForward(context.Context) error            { return nil }
func (s *surface) Reload(context.Context) error               { return nil }
func (s *surface) InjectScript(context.Context, string) error { return nil }

// shell is one process lifetime: store, persistence, saver and bridge over a
// shared KV.
type shell struct {
	store  *state.Store
	saver  *scheduler.Saver
	bridge *bridge.Bridge
}

func boot(t *testing.T, kv persist.KV) *shell {
	t.Helper()
	n := 0
	store := state.New(state.WithIDGenerator(func() string {
		n++
		return fmt.Sprintf("id-%d-%d", time.Now().UnixNano(), n)
	}))
	adapter := persist.NewAdapter(kv, persist.DefaultKey, logger.NewNop())
	if err := adapter.Load(context.Background(), store); err != nil {
		t.Logf("starting from defaults: %v", err)
	}

	saver := scheduler.NewSaver(store, adapter, logger.NewNop(), 10*time.Millisecond)
	require.NoError(t, saver.Start(context.Background()))

	br := bridge.New(store, logger.NewNop(),
		bridge.WithThumbnailDelay(time.Hour),
		bridge.WithZoomReapplyDelay(time.Hour))

	return &shell{store: store, saver: saver, bridge: br}
}

// exit mirrors the app shutdown order.
func (s *shell) exit(t *testing.T) {
	t.Helper()
	s.saver.Stop()
	require.NoError(t, s.saver.Flush(context.Background()))
	s.bridge.Close()
}

func visit(t *testing.T, s *shell, tabID, url, title string) {
	t.Helper()
	binding, ok := s.bridge.Binding(tabID)
	require.True(t, ok)
	require.True(t, s.bridge.Navigate(context.Background(), tabID, url))
	binding.Deliver(bridge.LoadStarted{URL: url})
	binding.Deliver(bridge.NavigationStateChanged{URL: url, Title: title, Loading: false, CanGoBack: true})
	binding.Deliver(bridge.LoadEnded{URL: url})
}

func TestSessionSurvivesRestart(t *testing.T) {
	kv := memory.New()

	first := boot(t, kv)
	tabID := first.store.ActiveTabID()
	_, err := first.bridge.Mount(context.Background(), tabID, &surface{})
	require.NoError(t, err)

	visit(t, first, tabID, "https://go.dev", "The Go Programming Language")
	first.store.SetTabZoom(tabID, 125)
	first.store.AddBookmark("https://go.dev", "Go", "")
	second := first.store.CreateTab("https://example.com", false)
	first.store.SetActiveTab(tabID)
	first.exit(t)

	restarted := boot(t, kv)
	defer restarted.exit(t)

	tabs := restarted.store.Tabs()
	require.Len(t, tabs, 2)
	assert.Equal(t, tabID, restarted.store.ActiveTabID())
	assert.Equal(t, second, tabs[1].ID)

	tab := tabs[0]
	assert.Equal(t, "https://go.dev", tab.URL)
	assert.Equal(t, "The Go Programming Language", tab.Title)
	assert.Equal(t, 125, tab.ZoomLevel)
	assert.False(t, tab.Loading)
	assert.Zero(t, tab.Progress)

	assert.True(t, restarted.store.IsBookmarked("https://go.dev"))
	history := restarted.store.History()
	require.Len(t, history, 1)
	assert.Equal(t, "https://go.dev", history[0].URL)
	assert.Equal(t, 1, history[0].VisitCount)
}

func TestClearHistoryOnExit(t *testing.T) {
	kv := memory.New()

	first := boot(t, kv)
	tabID := first.store.ActiveTabID()
	_, err := first.bridge.Mount(context.Background(), tabID, &surface{})
	require.NoError(t, err)

	visit(t, first, tabID, "https://go.dev", "Go")
	first.store.UpdateSettings(domain.SettingsPatch{ClearHistoryOnExit: domain.Ptr(true)})
	require.Len(t, first.store.History(), 1)
	first.exit(t)

	restarted := boot(t, kv)
	defer restarted.exit(t)

	assert.Empty(t, restarted.store.History())
	assert.True(t, restarted.store.Settings().ClearHistoryOnExit)
	assert.Equal(t, "https://go.dev", restarted.store.Tabs()[0].URL)
}

func TestPrivateBrowsingLeavesNoHistory(t *testing.T) {
	kv := memory.New()

	s := boot(t, kv)
	defer s.exit(t)

	privateID := s.store.CreateTab(domain.BlankURL, true)
	_, err := s.bridge.Mount(context.Background(), privateID, &surface{})
	require.NoError(t, err)

	visit(t, s, privateID, "https://secret.example", "Secret")
	assert.Empty(t, s.store.History())

	tab, ok := s.store.Tab(privateID)
	require.True(t, ok)
	assert.Equal(t, "https://secret.example", tab.URL)

	s.store.CloseAllPrivateTabs()
	assert.False(t, s.store.IsPrivateMode())
	_, bound := s.bridge.Binding(privateID)
	assert.False(t, bound)
}

func TestCorruptSnapshotFallsBackToDefaults(t *testing.T) {
	kv := memory.New()
	require.NoError(t, kv.Set(context.Background(), persist.DefaultKey, []byte("{not json")))

	s := boot(t, kv)
	defer s.exit(t)

	assert.True(t, s.store.Initialized())
	require.Len(t, s.store.Tabs(), 1)
	assert.True(t, s.store.Tabs()[0].IsBlank())
	assert.Equal(t, domain.DefaultSettings(), s.store.Settings())
}

func TestControlAPIDrivesSession(t *testing.T) {
	kv := memory.New()
	s := boot(t, kv)
	defer s.exit(t)

	handler := httpserver.NewRouter(logger.NewNop(), deps.Deps{
		Logger:   logger.NewNop(),
		Store:    s.store,
		Bridge:   s.bridge,
		Emulator: emulation.NewEmulator(emulation.NewCatalog(nil), 390, 844),
	}, time.Second)

	call := func(method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	rec := call(http.MethodPost, "/api/tabs", `{"url":"about:blank"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	tabID := s.store.ActiveTabID()

	page := &surface{}
	_, err := s.bridge.Mount(context.Background(), tabID, page)
	require.NoError(t, err)

	rec = call(http.MethodPost, "/api/tabs/"+tabID+"/navigate", `{"input":"golang tutorial"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"https://www.google.com/search?q=golang+tutorial"}, page.loads)

	rec = call(http.MethodPut, "/api/settings/theme", `{"theme":"light"}`)
	require.Equal(t, http.StatusNoContent, rec.Code)

	require.Eventually(t, func() bool {
		data, err := kv.Get(context.Background(), persist.DefaultKey)
		return err == nil && strings.Contains(string(data), `"theme":"light"`)
	}, time.Second, 5*time.Millisecond)
}
