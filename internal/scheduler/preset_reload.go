package scheduler

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/MrSnakeDoc/tabshell/internal/emulation"
	"github.com/MrSnakeDoc/tabshell/internal/logger"
)

// watchSettle coalesces the burst of events an editor save produces.
const watchSettle = 200 * time.Millisecond

// PresetReloader reloads device presets from a YAML file periodically, on
// a manual trigger, and shortly after the file changes on disk.
type PresetReloader struct {
	path          string
	loader        *emulation.Loader
	catalog       *emulation.Catalog
	logger        logger.Logger
	interval      time.Duration
	stopCh        chan struct{}
	done          chan struct{}
	manualTrigger chan struct{}
}

// NewPresetReloader creates a reloader feeding catalog. manualTrigger may be
// nil when reloads are only periodic.
func NewPresetReloader(
	presetsFile string,
	catalog *emulation.Catalog,
	log logger.Logger,
	interval time.Duration,
	manualTrigger chan struct{},
) *PresetReloader {
	return &PresetReloader{
		path:          filepath.Clean(presetsFile),
		loader:        emulation.NewLoader(presetsFile),
		catalog:       catalog,
		logger:        log,
		interval:      interval,
		stopCh:        make(chan struct{}),
		done:          make(chan struct{}),
		manualTrigger: manualTrigger,
	}
}

// Start loads the presets once, then keeps reloading them in the background
func (pr *PresetReloader) Start(ctx context.Context) error {
	if err := pr.Reload(); err != nil {
		close(pr.done)
		return fmt.Errorf("initial preset reload failed: %w", err)
	}

	watcher := pr.watch()
	var events <-chan fsnotify.Event
	var watchErrs <-chan error
	if watcher != nil {
		events, watchErrs = watcher.Events, watcher.Errors
	}

	// A non-positive interval disables periodic reloads.
	var ticker *time.Ticker
	var tick <-chan time.Time
	if pr.interval > 0 {
		ticker = time.NewTicker(pr.interval)
		tick = ticker.C
	}

	go func() {
		defer close(pr.done)
		if ticker != nil {
			defer ticker.Stop()
		}
		if watcher != nil {
			defer func() { _ = watcher.Close() }()
		}

		var settle <-chan time.Time
		for {
			select {
			case <-tick:
				if err := pr.Reload(); err != nil {
					pr.logger.Error("failed to reload presets", logger.Error(err))
				}
			case ev, ok := <-events:
				if !ok {
					events = nil
					continue
				}
				if filepath.Clean(ev.Name) == pr.path && ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
					settle = time.After(watchSettle)
				}
			case err, ok := <-watchErrs:
				if !ok {
					watchErrs = nil
					continue
				}
				pr.logger.Warn("presets watcher error", logger.Error(err))
			case <-settle:
				settle = nil
				pr.logger.Info("presets file changed")
				if err := pr.Reload(); err != nil {
					pr.logger.Error("failed to reload presets", logger.Error(err))
				}
			case <-pr.manualTrigger:
				pr.logger.Info("manual preset reload triggered")
				if err := pr.Reload(); err != nil {
					pr.logger.Error("failed to reload presets", logger.Error(err))
				}
			case <-pr.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// watch observes the file's directory, which survives editors that save by
// rename. Nil when watching is unavailable; the ticker still runs.
func (pr *PresetReloader) watch() *fsnotify.Watcher {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		pr.logger.Warn("presets file watching disabled", logger.Error(err))
		return nil
	}
	if err := watcher.Add(filepath.Dir(pr.path)); err != nil {
		_ = watcher.Close()
		pr.logger.Warn("presets file watching disabled",
			logger.String("dir", filepath.Dir(pr.path)),
			logger.Error(err))
		return nil
	}
	return watcher
}

// Stop stops the reloader and waits for it to exit
func (pr *PresetReloader) Stop() {
	close(pr.stopCh)
	<-pr.done
}

// Reload replaces the catalog with the file content. A broken file keeps
// the current presets.
func (pr *PresetReloader) Reload() error {
	presets, err := pr.loader.Load()
	if err != nil {
		return err
	}
	pr.catalog.Replace(presets)
	pr.logger.Info("loaded device presets", logger.Int("count", len(presets)))
	return nil
}
