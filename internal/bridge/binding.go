package bridge

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/MrSnakeDoc/tabshell/internal/domain"
	"github.com/MrSnakeDoc/tabshell/internal/logger"
)

// Binding ties one tab to one mounted render surface.
//
// A binding is invalidated, never torn down synchronously: once Valid
// reports false every late event and deferred task for it is dropped.
type Binding struct {
	bridge  *Bridge
	tabID   string
	gen     uint64
	surface Surface

	ctx    context.Context
	cancel context.CancelFunc
	valid  atomic.Bool

	// evMu serializes Deliver. Store listeners must never take it.
	evMu sync.Mutex

	// taskMu guards the context deferred tasks run under. It is replaced
	// whenever the tab stops being the active one.
	taskMu     sync.Mutex
	taskCtx    context.Context
	taskCancel context.CancelFunc

	mu           sync.Mutex
	loading      bool
	visitPending bool
	lastRecorded string
	background   string
}

func newBinding(br *Bridge, tabID string, gen uint64, surface Surface) *Binding {
	ctx, cancel := context.WithCancel(br.ctx)
	b := &Binding{
		bridge:  br,
		tabID:   tabID,
		gen:     gen,
		surface: surface,
		ctx:     ctx,
		cancel:  cancel,
	}
	b.taskCtx, b.taskCancel = context.WithCancel(ctx)
	b.valid.Store(true)
	return b
}

// TabID returns the id of the bound tab.
func (b *Binding) TabID() string { return b.tabID }

// Generation increases with every mount on the bridge.
func (b *Binding) Generation() uint64 { return b.gen }

// Valid reports whether the binding is still the current one for its tab.
func (b *Binding) Valid() bool { return b.valid.Load() }

// BackgroundColor returns the last page background colour reported by the
// content script.
func (b *Binding) BackgroundColor() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.background
}

func (b *Binding) isLoading() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.loading
}

func (b *Binding) invalidate() {
	if b.valid.CompareAndSwap(true, false) {
		b.cancel()
	}
}

// resetTasks cancels pending deferred work without invalidating the binding.
func (b *Binding) resetTasks() {
	b.taskMu.Lock()
	defer b.taskMu.Unlock()
	b.taskCancel()
	b.taskCtx, b.taskCancel = context.WithCancel(b.ctx)
}

func (b *Binding) tasks() context.Context {
	b.taskMu.Lock()
	defer b.taskMu.Unlock()
	return b.taskCtx
}

// Deliver applies a surface event to the store. Events for an invalidated
// binding are dropped.
func (b *Binding) Deliver(ev Event) {
	b.evMu.Lock()
	defer b.evMu.Unlock()

	if !b.Valid() {
		b.bridge.logger.Debug("dropping event for stale binding",
			logger.String("tab_id", b.tabID),
			logger.Uint64("generation", b.gen),
		)
		return
	}

	switch ev := ev.(type) {
	case NavigationStateChanged:
		b.onNavigationState(ev)
	case LoadStarted:
		b.onLoadStarted(ev)
	case LoadProgress:
		b.bridge.store.UpdateTab(b.tabID, domain.TabPatch{
			Progress: domain.Ptr(domain.ClampProgress(ev.Progress)),
		})
	case LoadEnded:
		b.onLoadEnded(ev)
	case LoadFailed:
		b.onLoadFailed(ev)
	case ScriptMessage:
		b.onScriptMessage(ev)
	}
}

func (b *Binding) onNavigationState(ev NavigationStateChanged) {
	title := domain.DisplayTitle(ev.Title, ev.URL)
	patch := domain.TabPatch{
		Title:        &title,
		Loading:      domain.Ptr(ev.Loading),
		CanGoBack:    domain.Ptr(ev.CanGoBack),
		CanGoForward: domain.Ptr(ev.CanGoForward),
	}
	if ev.URL != "" {
		patch.URL = domain.Ptr(ev.URL)
	}
	favicon := domain.FaviconURL(ev.URL)
	if favicon != "" {
		patch.Favicon = &favicon
	}
	b.bridge.store.UpdateTab(b.tabID, patch)

	b.mu.Lock()
	b.loading = ev.Loading
	if ev.Loading {
		b.visitPending = true
	}
	record := !ev.Loading && ev.URL != "" && ev.URL != domain.BlankURL &&
		(b.visitPending || ev.URL != b.lastRecorded)
	if record {
		b.visitPending = false
		b.lastRecorded = ev.URL
	}
	b.mu.Unlock()

	if !record {
		return
	}
	tab, ok := b.bridge.store.Tab(b.tabID)
	if !ok || tab.IsPrivate {
		return
	}
	historyTitle := title
	if domain.UsableTitle(ev.Title) {
		historyTitle = ev.Title
	}
	b.bridge.store.AddHistoryEntry(ev.URL, historyTitle, favicon)
}

func (b *Binding) onLoadStarted(ev LoadStarted) {
	patch := domain.TabPatch{
		Loading:  domain.Ptr(true),
		Progress: domain.Ptr(0.0),
	}
	if ev.URL != "" {
		patch.URL = domain.Ptr(ev.URL)
		patch.Title = domain.Ptr(domain.DisplayTitle("", ev.URL))
	}
	b.bridge.store.UpdateTab(b.tabID, patch)

	b.mu.Lock()
	b.loading = true
	b.visitPending = true
	b.mu.Unlock()
}

func (b *Binding) onLoadEnded(ev LoadEnded) {
	patch := domain.TabPatch{
		Loading:  domain.Ptr(false),
		Progress: domain.Ptr(1.0),
	}
	if ev.URL != "" {
		patch.URL = domain.Ptr(ev.URL)
	}
	b.bridge.store.UpdateTab(b.tabID, patch)

	b.mu.Lock()
	b.loading = false
	b.mu.Unlock()

	// A fresh document has lost the content script and any applied zoom.
	b.bridge.injectBootstrap(b.ctx, b)

	tab, ok := b.bridge.store.Tab(b.tabID)
	if !ok || b.bridge.store.ActiveTabID() != b.tabID {
		return
	}
	if tab.ZoomLevel != domain.DefaultZoom {
		b.bridge.schedule(b, b.bridge.zoomReapplyDelay, "zoom", func(ctx context.Context) error {
			current, ok := b.bridge.store.Tab(b.tabID)
			if !ok || current.ZoomLevel == domain.DefaultZoom {
				return nil
			}
			return b.applyZoom(ctx, current.ZoomLevel)
		})
	}
	if !tab.IsBlank() {
		b.bridge.schedule(b, b.bridge.thumbnailDelay, "thumbnail", b.captureThumbnail)
	}
}

func (b *Binding) onLoadFailed(ev LoadFailed) {
	b.bridge.store.UpdateTab(b.tabID, domain.TabPatch{
		Loading:  domain.Ptr(false),
		Progress: domain.Ptr(0.0),
	})

	b.mu.Lock()
	b.loading = false
	b.visitPending = false
	b.mu.Unlock()

	b.bridge.logger.Warn("page failed to load",
		logger.String("tab_id", b.tabID),
		logger.String("url", ev.URL),
		logger.String("description", ev.Description),
	)
}

func (b *Binding) onScriptMessage(ev ScriptMessage) {
	msg, err := ParseMessage(ev.Data)
	if err != nil {
		b.bridge.logger.Debug("ignoring content script message",
			logger.String("tab_id", b.tabID),
			logger.Error(err),
		)
		return
	}

	switch m := msg.(type) {
	case BackgroundColorMessage:
		b.mu.Lock()
		b.background = m.Color
		b.mu.Unlock()
	case NavigationStateMessage:
		b.bridge.store.UpdateTab(b.tabID, domain.TabPatch{
			CanGoBack: domain.Ptr(m.CanGoBack),
			URL:       nonEmpty(m.URL),
			Title:     domain.Ptr(domain.DisplayTitle(m.Title, b.urlOr(m.URL))),
		})
	case TitleUpdateMessage:
		b.bridge.store.UpdateTab(b.tabID, domain.TabPatch{
			Title: domain.Ptr(domain.DisplayTitle(m.Title, b.urlOr(m.URL))),
			URL:   nonEmpty(m.URL),
		})
	case PopupBlockedMessage:
		b.bridge.logger.Info("popup blocked",
			logger.String("tab_id", b.tabID),
			logger.String("url", m.URL),
			logger.String("method", m.Method),
		)
		b.bridge.notifier.Show("Popup blocked", m.URL)
	case ZoomAppliedMessage:
		b.bridge.logger.Debug("zoom applied",
			logger.String("tab_id", b.tabID),
			logger.Float64("zoom_level", m.ZoomLevel),
			logger.String("method", m.Method),
		)
	case ZoomErrorMessage:
		b.bridge.logger.Warn("zoom failed in page",
			logger.String("tab_id", b.tabID),
			logger.String("error", m.Error),
		)
	case ZoomResetMessage:
		b.bridge.logger.Debug("zoom reset", logger.String("tab_id", b.tabID))
	}
}

// urlOr returns u, or the tab's current url when u is empty.
func (b *Binding) urlOr(u string) string {
	if u != "" {
		return u
	}
	if tab, ok := b.bridge.store.Tab(b.tabID); ok {
		return tab.URL
	}
	return ""
}

func (b *Binding) applyZoom(ctx context.Context, level int) error {
	src, err := ZoomScript(level)
	if err != nil {
		return err
	}
	return b.surface.InjectScript(ctx, src)
}

func (b *Binding) captureThumbnail(ctx context.Context) error {
	capturer, ok := b.surface.(Capturer)
	if !ok {
		return ErrNotSupported
	}
	thumb, err := capturer.Capture(ctx)
	if err != nil {
		return err
	}
	if !b.bridge.live(b) {
		return nil
	}
	b.bridge.store.UpdateTab(b.tabID, domain.TabPatch{Thumbnail: &thumb})
	return nil
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
