package bridge

import (
	"context"
	"fmt"

	"github.com/MrSnakeDoc/tabshell/internal/domain"
	"github.com/MrSnakeDoc/tabshell/internal/logger"
)

// Commands target tabID, or the active tab when tabID is empty. Surface
// commands report whether they reached a bound surface; an unbound tab is
// a silent no-op.

func (b *Bridge) resolve(tabID string) string {
	if tabID == "" {
		return b.store.ActiveTabID()
	}
	return tabID
}

func (b *Bridge) bound(tabID string) (*Binding, bool) {
	binding, ok := b.Binding(tabID)
	if !ok || !binding.Valid() {
		return nil, false
	}
	return binding, true
}

// Navigate resolves input to a URL or a search and loads it.
func (b *Bridge) Navigate(ctx context.Context, tabID, input string) bool {
	tabID = b.resolve(tabID)
	binding, ok := b.bound(tabID)
	if !ok {
		return false
	}

	target := domain.ResolveInput(input, b.store.Settings().DefaultSearchEngine)

	b.store.UpdateTab(tabID, domain.TabPatch{
		URL:          &target,
		Title:        domain.Ptr(domain.DisplayTitle("", target)),
		Loading:      domain.Ptr(true),
		CanGoBack:    domain.Ptr(false),
		CanGoForward: domain.Ptr(false),
	})

	if err := binding.surface.Load(ctx, target); err != nil {
		b.logger.Warn("navigation failed",
			logger.String("tab_id", tabID),
			logger.String("url", target),
			logger.Error(err),
		)
		binding.Deliver(LoadFailed{URL: target, Description: err.Error()})
	}
	return true
}

// GoBack steps back when the tab reports it can.
func (b *Bridge) GoBack(ctx context.Context, tabID string) bool {
	tabID = b.resolve(tabID)
	tab, ok := b.store.Tab(tabID)
	if !ok || !tab.CanGoBack {
		return false
	}
	return b.run(ctx, tabID, "go back", func(ctx context.Context, s Surface) error {
		return s.GoBack(ctx)
	})
}

// GoForward steps forward when the tab reports it can.
func (b *Bridge) GoForward(ctx context.Context, tabID string) bool {
	tabID = b.resolve(tabID)
	tab, ok := b.store.Tab(tabID)
	if !ok || !tab.CanGoForward {
		return false
	}
	return b.run(ctx, tabID, "go forward", func(ctx context.Context, s Surface) error {
		return s.GoForward(ctx)
	})
}

func (b *Bridge) Reload(ctx context.Context, tabID string) bool {
	return b.run(ctx, b.resolve(tabID), "reload", func(ctx context.Context, s Surface) error {
		return s.Reload(ctx)
	})
}

// ApplyZoom applies percent to the page without touching the stored zoom.
func (b *Bridge) ApplyZoom(ctx context.Context, tabID string, percent int) bool {
	src, err := ZoomScript(percent)
	if err != nil {
		b.logger.Error("failed to render zoom script", logger.Error(err))
		return false
	}
	return b.InjectScript(ctx, tabID, src)
}

func (b *Bridge) ResetZoom(ctx context.Context, tabID string) bool {
	src, err := ResetZoomScript()
	if err != nil {
		b.logger.Error("failed to render zoom reset script", logger.Error(err))
		return false
	}
	return b.InjectScript(ctx, tabID, src)
}

func (b *Bridge) InjectScript(ctx context.Context, tabID, src string) bool {
	return b.run(ctx, b.resolve(tabID), "inject script", func(ctx context.Context, s Surface) error {
		return s.InjectScript(ctx, src)
	})
}

// SetZoom stores the clamped zoom level and applies it to the page.
func (b *Bridge) SetZoom(ctx context.Context, tabID string, level int) {
	tabID = b.resolve(tabID)
	tab, ok := b.store.Tab(tabID)
	if !ok {
		return
	}
	if tab.IsBlank() {
		b.notifier.Show("Zoom", "Zoom can only be used on loaded web pages.")
		return
	}

	level = domain.ClampZoom(level)
	b.store.SetTabZoom(tabID, level)

	var applied bool
	if level == domain.DefaultZoom {
		applied = b.ResetZoom(ctx, tabID)
	} else {
		applied = b.ApplyZoom(ctx, tabID, level)
	}
	if !applied {
		b.notifier.Show("Zoom", "Zoom is not available for this page.")
		return
	}
	b.notifier.Show("Zoom Level", fmt.Sprintf("Page zoom set to %d%%", level))
}

func (b *Bridge) ZoomIn(ctx context.Context, tabID string) {
	b.stepZoom(ctx, tabID, domain.ZoomStep)
}

func (b *Bridge) ZoomOut(ctx context.Context, tabID string) {
	b.stepZoom(ctx, tabID, -domain.ZoomStep)
}

func (b *Bridge) stepZoom(ctx context.Context, tabID string, delta int) {
	tabID = b.resolve(tabID)
	tab, ok := b.store.Tab(tabID)
	if !ok {
		return
	}
	b.SetZoom(ctx, tabID, tab.ZoomLevel+delta)
}

// ToggleDesktopMode flips the tab's desktop mode, then pushes the matching
// user agent and reloads when a surface is bound.
func (b *Bridge) ToggleDesktopMode(ctx context.Context, tabID string) {
	tabID = b.resolve(tabID)
	b.store.ToggleDesktopMode(tabID)

	tab, ok := b.store.Tab(tabID)
	if !ok {
		return
	}
	binding, ok := b.bound(tabID)
	if !ok {
		return
	}
	if err := b.pushUserAgent(ctx, binding, tab.DesktopMode); err != nil {
		b.logger.Warn("failed to switch user agent",
			logger.String("tab_id", tabID),
			logger.Bool("desktop_mode", tab.DesktopMode),
			logger.Error(err),
		)
		return
	}
	b.Reload(ctx, tabID)
}

func (b *Bridge) pushUserAgent(ctx context.Context, binding *Binding, desktop bool) error {
	setter, ok := binding.surface.(UserAgentSetter)
	if !ok {
		return ErrNotSupported
	}
	ua := ""
	if desktop {
		ua = domain.DesktopUserAgent
	}
	return setter.SetUserAgent(ctx, ua)
}

// Share hands the tab's page to the platform share sheet. Blank tabs are
// not shared.
func (b *Bridge) Share(tabID string) error {
	tab, ok := b.store.Tab(b.resolve(tabID))
	if !ok || tab.IsBlank() {
		return nil
	}
	if err := b.sharer.ShareURL(tab.URL, tab.Title); err != nil {
		return fmt.Errorf("failed to share %s: %w", tab.URL, err)
	}
	return nil
}

// CaptureThumbnail recaptures the thumbnail of tabID now. Only the active,
// non-blank tab is captured.
func (b *Bridge) CaptureThumbnail(ctx context.Context, tabID string) error {
	tabID = b.resolve(tabID)
	binding, ok := b.bound(tabID)
	if !ok {
		return ErrUnbound
	}
	tab, ok := b.store.Tab(tabID)
	if !ok || tab.IsBlank() || !b.live(binding) {
		return nil
	}
	return binding.captureThumbnail(ctx)
}

// CaptureActiveThumbnail recaptures the active tab thumbnail.
func (b *Bridge) CaptureActiveThumbnail(ctx context.Context) error {
	return b.CaptureThumbnail(ctx, "")
}

func (b *Bridge) run(ctx context.Context, tabID, name string, fn func(context.Context, Surface) error) bool {
	binding, ok := b.bound(tabID)
	if !ok {
		return false
	}
	if err := fn(ctx, binding.surface); err != nil {
		b.logger.Warn("surface command failed",
			logger.String("command", name),
			logger.String("tab_id", tabID),
			logger.Error(err),
		)
	}
	return true
}
