package bridge

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/tabshell/internal/logger"
	"github.com/MrSnakeDoc/tabshell/internal/state"
)

const fakeThumbnail = "data:image/jpeg;base64,AAAA"

type fakeSurface struct {
	mu        sync.Mutex
	loads     []string
	scripts   []string
	backs     int
	forwards  int
	reloads   int
	agents    []string
	captures  int
	loadErr   error
	captureFn func() (string, error)
}

func (f *fakeSurface) Load(_ context.Context, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loads = append(f.loads, url)
	return f.loadErr
}

func (f *fakeSurface) GoBack(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.backs++
	return nil
}

func (f *fakeSurface) GoForward(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.forwards++
	return nil
}

func (f *fakeSurface) Reload(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reloads++
	return nil
}

func (f *fakeSurface) InjectScript(_ context.Context, src string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scripts = append(f.scripts, src)
	return nil
}

func (f *fakeSurface) Capture(context.Context) (string, error) {
	f.mu.Lock()
	f.captures++
	fn := f.captureFn
	f.mu.Unlock()
	if fn != nil {
		return fn()
	}
	return fakeThumbnail, nil
}

func (f *fakeSurface) SetUserAgent(_ context.Context, ua string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.agents = append(f.agents, ua)
	return nil
}

func (f *fakeSurface) scriptCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.scripts)
}

func (f *fakeSurface) lastScript() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.scripts) == 0 {
		return ""
	}
	return f.scripts[len(f.scripts)-1]
}

func (f *fakeSurface) captureCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.captures
}

// plainSurface has no optional capabilities.
type plainSurface struct{}

func (plainSurface) Load(context.Context, string) error         { return nil }
func (plainSurface) GoBack(context.Context) error               { return nil }
func (plainSurface) GoForward(context.Context) error            { return nil }
func (plainSurface) Reload(context.Context) error               { return nil }
func (plainSurface) InjectScript(context.Context, string) error { return nil }

type notice struct{ title, message string }

type recordingNotifier struct {
	mu      sync.Mutex
	notices []notice
}

func (n *recordingNotifier) Show(title, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notices = append(n.notices, notice{title, message})
}

func (n *recordingNotifier) all() []notice {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notice(nil), n.notices...)
}

type recordingSharer struct {
	url, title string
}

func (s *recordingSharer) ShareURL(url, title string) error {
	s.url, s.title = url, title
	return nil
}

func newTestStore() *state.Store {
	n := 0
	return state.New(state.WithIDGenerator(func() string {
		n++
		return fmt.Sprintf("tab-%d", n)
	}))
}

// newTestBridge returns a bridge whose deferred tasks never fire unless the
// caller overrides the delays.
func newTestBridge(t *testing.T, store *state.Store, opts ...Option) *Bridge {
	t.Helper()
	base := []Option{WithThumbnailDelay(time.Hour), WithZoomReapplyDelay(time.Hour)}
	br := New(store, logger.NewNop(), append(base, opts...)...)
	t.Cleanup(br.Close)
	return br
}

func mount(t *testing.T, br *Bridge, tabID string) (*Binding, *fakeSurface) {
	t.Helper()
	surface := &fakeSurface{}
	binding, err := br.Mount(context.Background(), tabID, surface)
	require.NoError(t, err)
	return binding, surface
}
