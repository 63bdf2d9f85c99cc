package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/MrSnakeDoc/tabshell/internal/logger"
	"github.com/MrSnakeDoc/tabshell/internal/state"
)

// DefaultSaveDebounce is used when the configured debounce is not positive.
const DefaultSaveDebounce = 250 * time.Millisecond

// SnapshotWriter persists a state snapshot.
type SnapshotWriter interface {
	Save(ctx context.Context, st state.State) error
}

// Saver persists the store in the background. Store mutations only send a
// non-blocking trigger; the worker waits for the debounce window to pass and
// then writes whatever the latest state is, so bursts of mutations coalesce
// into one write. A failed write is retried on the next trigger.
type Saver struct {
	store    *state.Store
	writer   SnapshotWriter
	logger   logger.Logger
	debounce time.Duration

	trigger chan struct{}
	stopCh  chan struct{}
	done    chan struct{}

	unsubscribe func()
	started     bool
	stopOnce    sync.Once

	saveMu   sync.Mutex // serializes writes between the worker and Flush
	savedRev uint64
	saved    bool
	dirty    bool
	writes   int
}

// NewSaver creates a saver for store.
func NewSaver(store *state.Store, writer SnapshotWriter, log logger.Logger, debounce time.Duration) *Saver {
	if debounce <= 0 {
		debounce = DefaultSaveDebounce
	}
	return &Saver{
		store:    store,
		writer:   writer,
		logger:   log,
		debounce: debounce,
		trigger:  make(chan struct{}, 1),
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start subscribes to the store and starts the worker.
func (s *Saver) Start(ctx context.Context) error {
	s.unsubscribe = s.store.Subscribe(func(_, next state.State) {
		if next.Initialized {
			s.Trigger()
		}
	})

	s.started = true
	go s.run(ctx)
	return nil
}

// Trigger requests a save without blocking.
func (s *Saver) Trigger() {
	select {
	case s.trigger <- struct{}{}:
	default:
	}
}

// Stop unsubscribes and waits for the worker to exit. Pending changes are
// not written; call Flush for that.
func (s *Saver) Stop() {
	s.stopOnce.Do(func() {
		if s.unsubscribe != nil {
			s.unsubscribe()
		}
		close(s.stopCh)
	})
	if s.started {
		<-s.done
	}
}

// Flush synchronously writes the latest state if it has not been written yet.
func (s *Saver) Flush(ctx context.Context) error {
	return s.save(ctx)
}

// Writes returns the number of successful writes.
func (s *Saver) Writes() int {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()
	return s.writes
}

func (s *Saver) run(ctx context.Context) {
	defer close(s.done)

	for {
		select {
		case <-s.trigger:
		case <-s.stopCh:
			return
		case <-ctx.Done():
			return
		}

		timer := time.NewTimer(s.debounce)
		select {
		case <-timer.C:
		case <-s.stopCh:
			timer.Stop()
			return
		case <-ctx.Done():
			timer.Stop()
			return
		}

		if err := s.save(ctx); err != nil {
			s.logger.Warn("background save failed, will retry on next change",
				logger.Error(err))
		}
	}
}

func (s *Saver) save(ctx context.Context) error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	st := s.store.Snapshot()
	if !st.Initialized {
		return nil
	}
	if s.saved && !s.dirty && st.Revision == s.savedRev {
		return nil
	}

	if err := s.writer.Save(ctx, st); err != nil {
		s.dirty = true
		return err
	}
	s.saved = true
	s.dirty = false
	s.savedRev = st.Revision
	s.writes++
	return nil
}
