package scheduler

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/tabshell/internal/logger"
)

// ActiveCapturer recaptures the thumbnail of the active tab.
type ActiveCapturer interface {
	CaptureActiveThumbnail(ctx context.Context) error
}

// ThumbnailRefresher periodically recaptures the active tab thumbnail.
type ThumbnailRefresher struct {
	capturer ActiveCapturer
	logger   logger.Logger
	interval time.Duration
	stopCh   chan struct{}
	done     chan struct{}
}

// NewThumbnailRefresher creates a refresher ticking every interval.
func NewThumbnailRefresher(capturer ActiveCapturer, log logger.Logger, interval time.Duration) *ThumbnailRefresher {
	return &ThumbnailRefresher{
		capturer: capturer,
		logger:   log,
		interval: interval,
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start begins the periodic refresh.
func (tr *ThumbnailRefresher) Start(ctx context.Context) error {
	ticker := time.NewTicker(tr.interval)
	go func() {
		defer close(tr.done)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := tr.capturer.CaptureActiveThumbnail(ctx); err != nil {
					tr.logger.Debug("thumbnail refresh skipped", logger.Error(err))
				}
			case <-tr.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
	return nil
}

// Stop stops the refresher and waits for it to exit.
func (tr *ThumbnailRefresher) Stop() {
	close(tr.stopCh)
	<-tr.done
}
