package rod

import (
	"context"
	"encoding/base64"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"github.com/MrSnakeDoc/tabshell/internal/bridge"
	"github.com/MrSnakeDoc/tabshell/internal/logger"
)

// Thumbnail geometry and encoding.
const (
	ThumbnailWidth   = 300
	ThumbnailHeight  = 200
	ThumbnailQuality = 60
)

// Page is a Chrome page driven as a bridge surface.
type Page struct {
	page      *rod.Page
	defaultUA string
	timeout   time.Duration
	logger    logger.Logger

	bindOnce sync.Once
	bindErr  error
}

var (
	_ bridge.Surface         = (*Page)(nil)
	_ bridge.Capturer        = (*Page)(nil)
	_ bridge.UserAgentSetter = (*Page)(nil)
)

func newPage(p *rod.Page, defaultUA string, timeout time.Duration, log logger.Logger) *Page {
	return &Page{page: p, defaultUA: defaultUA, timeout: timeout, logger: log}
}

func (p *Page) with(ctx context.Context) *rod.Page {
	return p.page.Context(ctx)
}

func (p *Page) Load(ctx context.Context, url string) error {
	page := p.with(ctx)
	if p.timeout > 0 {
		page = page.Timeout(p.timeout)
	}
	if err := page.Navigate(url); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	return nil
}

func (p *Page) GoBack(ctx context.Context) error {
	return p.with(ctx).NavigateBack()
}

func (p *Page) GoForward(ctx context.Context) error {
	return p.with(ctx).NavigateForward()
}

func (p *Page) Reload(ctx context.Context) error {
	return p.with(ctx).Reload()
}

// InjectScript evaluates src in the page's main world.
func (p *Page) InjectScript(ctx context.Context, src string) error {
	if err := p.ensureBinding(); err != nil {
		return err
	}
	_, err := p.with(ctx).Evaluate(&rod.EvalOptions{
		JS:      "() => {\n" + src + "\n}",
		ByValue: true,
	})
	if err != nil {
		return fmt.Errorf("failed to evaluate script: %w", err)
	}
	return nil
}

// ensureBinding exposes the post-message function on every document.
func (p *Page) ensureBinding() error {
	p.bindOnce.Do(func() {
		p.bindErr = proto.RuntimeAddBinding{Name: bridge.PostMessageBinding}.Call(p.page)
	})
	return p.bindErr
}

// Capture screenshots the viewport into a small JPEG data URI.
func (p *Page) Capture(ctx context.Context) (string, error) {
	page := p.with(ctx)

	req := proto.PageCaptureScreenshot{
		Format:  proto.PageCaptureScreenshotFormatJpeg,
		Quality: intPtr(ThumbnailQuality),
	}
	if metrics, err := (proto.PageGetLayoutMetrics{}).Call(page); err == nil && metrics.CSSVisualViewport != nil {
		vp := metrics.CSSVisualViewport
		if vp.ClientWidth > 0 && vp.ClientHeight > 0 {
			req.Clip = &proto.PageViewport{
				X:      vp.PageX,
				Y:      vp.PageY,
				Width:  vp.ClientWidth,
				Height: vp.ClientHeight,
				Scale:  math.Min(ThumbnailWidth/vp.ClientWidth, ThumbnailHeight/vp.ClientHeight),
			}
		}
	}

	res, err := req.Call(page)
	if err != nil {
		return "", fmt.Errorf("failed to capture screenshot: %w", err)
	}
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(res.Data), nil
}

// SetUserAgent overrides the user agent. An empty ua restores the
// browser default.
func (p *Page) SetUserAgent(ctx context.Context, ua string) error {
	if ua == "" {
		ua = p.defaultUA
	}
	return proto.NetworkSetUserAgentOverride{UserAgent: ua}.Call(p.with(ctx))
}

// Emulate resizes the page viewport to an emulated device.
func (p *Page) Emulate(ctx context.Context, width, height int, mobile bool) error {
	return proto.EmulationSetDeviceMetricsOverride{
		Width:             width,
		Height:            height,
		DeviceScaleFactor: 1,
		Mobile:            mobile,
	}.Call(p.with(ctx))
}

// ClearEmulation restores the native viewport.
func (p *Page) ClearEmulation(ctx context.Context) error {
	return proto.EmulationClearDeviceMetricsOverride{}.Call(p.with(ctx))
}

func (p *Page) Close() error {
	return p.page.Close()
}

// Listen pumps CDP events into sink until ctx is cancelled.
func (p *Page) Listen(ctx context.Context, sink func(bridge.Event)) error {
	if err := p.ensureBinding(); err != nil {
		return fmt.Errorf("failed to add message binding: %w", err)
	}

	page := p.with(ctx)
	mainFrame := page.FrameID

	wait := page.EachEvent(
		func(ev *proto.PageFrameStartedLoading) {
			if ev.FrameID == mainFrame {
				sink(bridge.LoadStarted{})
			}
		},
		func(ev *proto.PageFrameNavigated) {
			if ev.Frame != nil && ev.Frame.ParentID == "" {
				p.emitNavigationState(page, sink, ev.Frame.URL, true)
			}
		},
		func(*proto.PageDomContentEventFired) {
			sink(bridge.LoadProgress{Progress: 0.5})
		},
		func(*proto.PageLoadEventFired) {
			url := p.emitNavigationState(page, sink, "", false)
			sink(bridge.LoadEnded{URL: url})
		},
		func(ev *proto.PageNavigatedWithinDocument) {
			if ev.FrameID == mainFrame {
				p.emitNavigationState(page, sink, ev.URL, false)
			}
		},
		func(ev *proto.RuntimeBindingCalled) {
			if ev.Name == bridge.PostMessageBinding {
				sink(bridge.ScriptMessage{Data: []byte(ev.Payload)})
			}
		},
	)
	wait()
	return nil
}

// emitNavigationState reads title and history from the page and reports
// them. It returns the URL it reported.
func (p *Page) emitNavigationState(page *rod.Page, sink func(bridge.Event), url string, loading bool) string {
	ev := bridge.NavigationStateChanged{URL: url, Loading: loading}

	if info, err := page.Info(); err == nil {
		ev.Title = info.Title
		if ev.URL == "" {
			ev.URL = info.URL
		}
	} else {
		p.logger.Debug("failed to read page info", logger.Error(err))
	}

	if hist, err := (proto.PageGetNavigationHistory{}).Call(page); err == nil {
		ev.CanGoBack = hist.CurrentIndex > 0
		ev.CanGoForward = hist.CurrentIndex < len(hist.Entries)-1
	}

	sink(ev)
	return ev.URL
}

func intPtr(v int) *int { return &v }
