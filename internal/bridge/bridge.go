package bridge

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/MrSnakeDoc/tabshell/internal/logger"
	"github.com/MrSnakeDoc/tabshell/internal/state"
)

const (
	DefaultThumbnailDelay   = time.Second
	DefaultZoomReapplyDelay = 500 * time.Millisecond
)

var (
	// ErrUnbound is returned when a tab has no mounted surface.
	ErrUnbound = errors.New("bridge: no surface bound to tab")
	// ErrNotSupported is returned when the surface lacks a capability.
	ErrNotSupported = errors.New("bridge: surface does not support operation")
	// ErrClosed is returned by Mount after Close.
	ErrClosed = errors.New("bridge: closed")
)

// Lifecycle is the surface state of a tab as seen by the bridge.
type Lifecycle int

const (
	Unbound Lifecycle = iota
	Loading
	Idle
)

func (l Lifecycle) String() string {
	switch l {
	case Loading:
		return "loading"
	case Idle:
		return "idle"
	default:
		return "unbound"
	}
}

// Bridge keeps live render surfaces and the store in sync.
type Bridge struct {
	store    *state.Store
	logger   logger.Logger
	notifier Notifier
	sharer   Sharer

	thumbnailDelay   time.Duration
	zoomReapplyDelay time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu       sync.Mutex
	bindings map[string]*Binding
	gen      uint64
	closed   bool

	unsubscribe func()
}

type Option func(*Bridge)

func WithNotifier(n Notifier) Option {
	return func(b *Bridge) { b.notifier = n }
}

func WithSharer(s Sharer) Option {
	return func(b *Bridge) { b.sharer = s }
}

// WithThumbnailDelay sets how long after load-end the thumbnail is captured.
func WithThumbnailDelay(d time.Duration) Option {
	return func(b *Bridge) { b.thumbnailDelay = d }
}

// WithZoomReapplyDelay sets how long after load-end a non-default zoom is
// re-applied.
func WithZoomReapplyDelay(d time.Duration) Option {
	return func(b *Bridge) { b.zoomReapplyDelay = d }
}

// New creates a bridge subscribed to store. Call Close to release it.
func New(store *state.Store, log logger.Logger, opts ...Option) *Bridge {
	ctx, cancel := context.WithCancel(context.Background())
	b := &Bridge{
		store:            store,
		logger:           log,
		notifier:         nopNotifier{},
		sharer:           nopSharer{},
		thumbnailDelay:   DefaultThumbnailDelay,
		zoomReapplyDelay: DefaultZoomReapplyDelay,
		ctx:              ctx,
		cancel:           cancel,
		bindings:         make(map[string]*Binding),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.unsubscribe = store.Subscribe(b.onStateChange)
	return b
}

// Mount binds surface to tabID, replacing and invalidating any previous
// binding, and installs the content script.
func (b *Bridge) Mount(ctx context.Context, tabID string, surface Surface) (*Binding, error) {
	tab, ok := b.store.Tab(tabID)
	if !ok {
		return nil, errors.New("bridge: unknown tab " + tabID)
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil, ErrClosed
	}
	b.gen++
	binding := newBinding(b, tabID, b.gen, surface)
	prev := b.bindings[tabID]
	b.bindings[tabID] = binding
	b.mu.Unlock()

	if prev != nil {
		prev.invalidate()
	}

	b.logger.Debug("surface mounted",
		logger.String("tab_id", tabID),
		logger.Uint64("generation", binding.gen),
	)

	if tab.DesktopMode {
		if err := b.pushUserAgent(ctx, binding, true); err != nil && !errors.Is(err, ErrNotSupported) {
			b.logger.Warn("failed to set desktop user agent", logger.String("tab_id", tabID), logger.Error(err))
		}
	}
	b.injectBootstrap(ctx, binding)
	return binding, nil
}

// Unmount invalidates the binding of tabID, if any.
func (b *Bridge) Unmount(tabID string) {
	b.mu.Lock()
	binding := b.bindings[tabID]
	delete(b.bindings, tabID)
	b.mu.Unlock()

	if binding != nil {
		binding.invalidate()
		b.logger.Debug("surface unmounted", logger.String("tab_id", tabID))
	}
}

// Binding returns the current binding of tabID.
func (b *Bridge) Binding(tabID string) (*Binding, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	binding, ok := b.bindings[tabID]
	return binding, ok
}

// State reports the surface lifecycle of tabID.
func (b *Bridge) State(tabID string) Lifecycle {
	binding, ok := b.Binding(tabID)
	if !ok {
		return Unbound
	}
	if binding.isLoading() {
		return Loading
	}
	return Idle
}

// Close invalidates every binding and waits for deferred tasks to finish.
func (b *Bridge) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	bindings := b.bindings
	b.bindings = make(map[string]*Binding)
	b.mu.Unlock()

	b.unsubscribe()
	for _, binding := range bindings {
		binding.invalidate()
	}
	b.cancel()
	b.wg.Wait()
}

// onStateChange unmounts closed tabs and cancels deferred work of a tab
// that stopped being active.
func (b *Bridge) onStateChange(prev, next state.State) {
	b.mu.Lock()
	var stale []string
	for id := range b.bindings {
		if _, ok := next.Tab(id); !ok {
			stale = append(stale, id)
		}
	}
	var deactivated *Binding
	if prev.ActiveTabID != next.ActiveTabID && prev.ActiveTabID != "" {
		deactivated = b.bindings[prev.ActiveTabID]
	}
	b.mu.Unlock()

	for _, id := range stale {
		b.Unmount(id)
	}
	if deactivated != nil {
		deactivated.resetTasks()
	}
}

// live reports whether binding is still current and its tab still active.
func (b *Bridge) live(binding *Binding) bool {
	if !binding.Valid() {
		return false
	}
	current, ok := b.Binding(binding.tabID)
	return ok && current == binding && b.store.ActiveTabID() == binding.tabID
}

// schedule runs fn after delay unless the binding is invalidated or its tab
// deactivated first.
func (b *Bridge) schedule(binding *Binding, delay time.Duration, name string, fn func(context.Context) error) {
	ctx := binding.tasks()

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.wg.Add(1)
	b.mu.Unlock()

	go func() {
		defer b.wg.Done()

		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		if !b.live(binding) {
			return
		}
		if err := fn(ctx); err != nil && ctx.Err() == nil {
			b.logger.Debug("deferred task failed",
				logger.String("task", name),
				logger.String("tab_id", binding.tabID),
				logger.Error(err),
			)
		}
	}()
}

func (b *Bridge) injectBootstrap(ctx context.Context, binding *Binding) {
	settings := b.store.Settings()
	src, err := BootstrapScript(b.store.Theme(), settings.BlockPopups)
	if err != nil {
		b.logger.Error("failed to render bootstrap script", logger.Error(err))
		return
	}
	if err := binding.surface.InjectScript(ctx, src); err != nil {
		b.logger.Warn("failed to inject bootstrap script",
			logger.String("tab_id", binding.tabID),
			logger.Error(err),
		)
	}
}
