package rod

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/MrSnakeDoc/tabshell/internal/bridge"
	"github.com/MrSnakeDoc/tabshell/internal/logger"
	"github.com/MrSnakeDoc/tabshell/internal/state"
)

// ErrNotMounted is returned for tabs without an open page.
var ErrNotMounted = errors.New("surface: tab has no page")

// PageHandle is an open page as the manager drives it.
type PageHandle interface {
	bridge.Surface
	Listen(ctx context.Context, sink func(bridge.Event)) error
	Emulate(ctx context.Context, width, height int, mobile bool) error
	ClearEmulation(ctx context.Context) error
	Close() error
}

// Opener opens pages. *Browser is the production implementation.
type Opener interface {
	Open(ctx context.Context, private bool) (PageHandle, error)
}

type mounted struct {
	page   PageHandle
	cancel context.CancelFunc
}

// Manager keeps one page per tab: the active tab is mounted on demand and
// pages of closed tabs are closed.
type Manager struct {
	opener Opener
	bridge *bridge.Bridge
	store  *state.Store
	logger logger.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu    sync.Mutex
	pages map[string]*mounted

	trigger     chan struct{}
	unsubscribe func()
}

func NewManager(opener Opener, br *bridge.Bridge, store *state.Store, log logger.Logger) *Manager {
	return &Manager{
		opener:  opener,
		bridge:  br,
		store:   store,
		logger:  log,
		pages:   make(map[string]*mounted),
		trigger: make(chan struct{}, 1),
	}
}

// Start mounts the active tab and keeps pages in step with the store.
func (m *Manager) Start(ctx context.Context) {
	m.ctx, m.cancel = context.WithCancel(ctx)
	m.unsubscribe = m.store.Subscribe(func(prev, next state.State) {
		if prev.ActiveTabID != next.ActiveTabID || len(prev.Tabs) != len(next.Tabs) {
			m.poke()
		}
	})

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		m.reconcile()
		for {
			select {
			case <-m.trigger:
				m.reconcile()
			case <-m.ctx.Done():
				return
			}
		}
	}()
}

func (m *Manager) poke() {
	select {
	case m.trigger <- struct{}{}:
	default:
	}
}

func (m *Manager) reconcile() {
	st := m.store.Snapshot()

	m.mu.Lock()
	var stale []string
	for id := range m.pages {
		if _, ok := st.Tab(id); !ok {
			stale = append(stale, id)
		}
	}
	_, activeMounted := m.pages[st.ActiveTabID]
	m.mu.Unlock()

	for _, id := range stale {
		m.closePage(id)
	}
	if st.ActiveTabID != "" && !activeMounted {
		if err := m.Mount(m.ctx, st.ActiveTabID); err != nil && m.ctx.Err() == nil {
			m.logger.Error("failed to mount tab",
				logger.String("tab_id", st.ActiveTabID),
				logger.Error(err),
			)
		}
	}
}

// Mount opens a page for tabID, binds it and restores the tab's URL.
func (m *Manager) Mount(ctx context.Context, tabID string) error {
	tab, ok := m.store.Tab(tabID)
	if !ok {
		return fmt.Errorf("unknown tab %s", tabID)
	}

	page, err := m.opener.Open(m.ctx, tab.IsPrivate)
	if err != nil {
		return err
	}

	binding, err := m.bridge.Mount(ctx, tabID, page)
	if err != nil {
		_ = page.Close()
		return err
	}

	pageCtx, cancel := context.WithCancel(m.ctx)
	m.mu.Lock()
	prev := m.pages[tabID]
	m.pages[tabID] = &mounted{page: page, cancel: cancel}
	m.mu.Unlock()
	if prev != nil {
		prev.cancel()
		_ = prev.page.Close()
	}

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		if err := page.Listen(pageCtx, binding.Deliver); err != nil {
			m.logger.Warn("page event stream stopped",
				logger.String("tab_id", tabID),
				logger.Error(err),
			)
		}
	}()

	m.logger.Info("tab mounted",
		logger.String("tab_id", tabID),
		logger.Bool("private", tab.IsPrivate),
	)

	if !tab.IsBlank() {
		m.bridge.Navigate(ctx, tabID, tab.URL)
	}
	return nil
}

// Mounted reports whether tabID has an open page.
func (m *Manager) Mounted(tabID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.pages[tabID]
	return ok
}

// EmulateDevice resizes the page of tabID to an emulated viewport. A zero
// size restores the native viewport.
func (m *Manager) EmulateDevice(ctx context.Context, tabID string, width, height int, mobile bool) error {
	m.mu.Lock()
	mp, ok := m.pages[tabID]
	m.mu.Unlock()
	if !ok {
		return ErrNotMounted
	}
	if width <= 0 || height <= 0 {
		return mp.page.ClearEmulation(ctx)
	}
	return mp.page.Emulate(ctx, width, height, mobile)
}

func (m *Manager) closePage(tabID string) {
	m.mu.Lock()
	mp, ok := m.pages[tabID]
	delete(m.pages, tabID)
	m.mu.Unlock()
	if !ok {
		return
	}

	mp.cancel()
	if err := mp.page.Close(); err != nil {
		m.logger.Debug("failed to close page", logger.String("tab_id", tabID), logger.Error(err))
	}
}

// Close stops reconciliation and closes every page.
func (m *Manager) Close() {
	if m.cancel == nil {
		return
	}
	m.unsubscribe()
	m.cancel()
	m.wg.Wait()

	m.mu.Lock()
	ids := make([]string, 0, len(m.pages))
	for id := range m.pages {
		ids = append(ids, id)
	}
	m.mu.Unlock()
	for _, id := range ids {
		m.closePage(id)
	}
}
