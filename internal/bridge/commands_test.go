package bridge

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/tabshell/internal/domain"
)

func TestSetZoomOnBlankTabNotifies(t *testing.T) {
	store := newTestStore()
	id := store.CreateTab("", false)
	notifier := &recordingNotifier{}
	br := newTestBridge(t, store, WithNotifier(notifier))
	_, surface := mount(t, br, id)

	br.SetZoom(context.Background(), id, 150)

	tab, _ := store.Tab(id)
	assert.Equal(t, domain.DefaultZoom, tab.ZoomLevel)
	assert.Equal(t, 1, surface.scriptCount())
	assert.Equal(t, []notice{{"Zoom", "Zoom can only be used on loaded web pages."}}, notifier.all())
}

func TestSetZoomClampsAndApplies(t *testing.T) {
	store := newTestStore()
	id := store.CreateTab("https://example.com", false)
	notifier := &recordingNotifier{}
	br := newTestBridge(t, store, WithNotifier(notifier))
	_, surface := mount(t, br, id)

	br.SetZoom(context.Background(), id, 9999)

	tab, _ := store.Tab(id)
	assert.Equal(t, domain.MaxZoom, tab.ZoomLevel)
	assert.Contains(t, surface.lastScript(), "var level = 150;")
	assert.Equal(t, []notice{{"Zoom Level", "Page zoom set to 150%"}}, notifier.all())
}

func TestSetZoomWithoutSurface(t *testing.T) {
	store := newTestStore()
	id := store.CreateTab("https://example.com", false)
	notifier := &recordingNotifier{}
	br := newTestBridge(t, store, WithNotifier(notifier))

	br.SetZoom(context.Background(), id, 50)

	tab, _ := store.Tab(id)
	assert.Equal(t, 50, tab.ZoomLevel)
	assert.Equal(t, []notice{{"Zoom", "Zoom is not available for this page."}}, notifier.all())
}

func TestZoomSteps(t *testing.T) {
	store := newTestStore()
	id := store.CreateTab("https://example.com", false)
	br := newTestBridge(t, store)
	_, surface := mount(t, br, id)
	ctx := context.Background()

	br.ZoomIn(ctx, id)
	br.ZoomIn(ctx, id)
	br.ZoomIn(ctx, id)
	tab, _ := store.Tab(id)
	assert.Equal(t, domain.MaxZoom, tab.ZoomLevel)

	br.ZoomOut(ctx, "")
	br.ZoomOut(ctx, "")
	tab, _ = store.Tab(id)
	assert.Equal(t, domain.DefaultZoom, tab.ZoomLevel)
	assert.Contains(t, surface.lastScript(), "zoomReset")

	for range 10 {
		br.ZoomOut(ctx, id)
	}
	tab, _ = store.Tab(id)
	assert.Equal(t, domain.MinZoom, tab.ZoomLevel)
}

func TestToggleDesktopModePushesUserAgent(t *testing.T) {
	store := newTestStore()
	id := store.CreateTab("https://example.com", false)
	br := newTestBridge(t, store)
	_, surface := mount(t, br, id)
	ctx := context.Background()

	br.ToggleDesktopMode(ctx, id)
	tab, _ := store.Tab(id)
	assert.True(t, tab.DesktopMode)

	br.ToggleDesktopMode(ctx, id)
	tab, _ = store.Tab(id)
	assert.False(t, tab.DesktopMode)

	assert.Equal(t, []string{domain.DesktopUserAgent, ""}, surface.agents)
	assert.Equal(t, 2, surface.reloads)
}

func TestToggleDesktopModeUnboundStillToggles(t *testing.T) {
	store := newTestStore()
	id := store.CreateTab("", false)
	br := newTestBridge(t, store)

	br.ToggleDesktopMode(context.Background(), id)

	tab, _ := store.Tab(id)
	assert.True(t, tab.DesktopMode)
}

func TestMountPushesDesktopUserAgent(t *testing.T) {
	store := newTestStore()
	id := store.CreateTab("", false)
	store.ToggleDesktopMode(id)
	br := newTestBridge(t, store)

	_, surface := mount(t, br, id)

	assert.Equal(t, []string{domain.DesktopUserAgent}, surface.agents)
}

func TestShare(t *testing.T) {
	store := newTestStore()
	blank := store.CreateTab("", false)
	id := store.CreateTab("https://example.com", false)
	store.UpdateTab(id, domain.TabPatch{Title: domain.Ptr("Example")})
	sharer := &recordingSharer{}
	br := newTestBridge(t, store, WithSharer(sharer))

	require.NoError(t, br.Share(blank))
	assert.Empty(t, sharer.url)

	require.NoError(t, br.Share(id))
	assert.Equal(t, "https://example.com", sharer.url)
	assert.Equal(t, "Example", sharer.title)
}

func TestScriptMessagesUpdateTab(t *testing.T) {
	store := newTestStore()
	id := store.CreateTab("https://example.com", false)
	notifier := &recordingNotifier{}
	br := newTestBridge(t, store, WithNotifier(notifier))
	binding, _ := mount(t, br, id)

	binding.Deliver(ScriptMessage{Data: []byte(`{"type":"backgroundColor","color":"rgb(1, 2, 3)"}`)})
	assert.Equal(t, "rgb(1, 2, 3)", binding.BackgroundColor())

	binding.Deliver(ScriptMessage{Data: []byte(`{"type":"navigationState","canGoBack":true,"url":"https://example.com/a","title":"A"}`)})
	tab, _ := store.Tab(id)
	assert.True(t, tab.CanGoBack)
	assert.Equal(t, "https://example.com/a", tab.URL)
	assert.Equal(t, "A", tab.Title)

	binding.Deliver(ScriptMessage{Data: []byte(`{"type":"titleUpdate","title":"","url":""}`)})
	tab, _ = store.Tab(id)
	assert.Equal(t, "example.com", tab.Title)
	assert.Equal(t, "https://example.com/a", tab.URL)

	binding.Deliver(ScriptMessage{Data: []byte(`{"type":"popupBlocked","url":"https://ads.example"}`)})
	assert.Equal(t, []notice{{"Popup blocked", "https://ads.example"}}, notifier.all())

	before := store.Snapshot().Revision
	binding.Deliver(ScriptMessage{Data: []byte(`{"type":"zoomApplied","zoomLevel":125,"zoomFactor":1.25,"method":"css-zoom"}`)})
	binding.Deliver(ScriptMessage{Data: []byte(`{"type":"zoomError","error":"boom"}`)})
	binding.Deliver(ScriptMessage{Data: []byte(`{"type":"zoomReset"}`)})
	binding.Deliver(ScriptMessage{Data: []byte(`{"type":"mystery"}`)})
	binding.Deliver(ScriptMessage{Data: []byte(`not json`)})
	assert.Equal(t, before, store.Snapshot().Revision)
}
