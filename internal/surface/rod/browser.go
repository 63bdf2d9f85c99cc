package rod

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/MrSnakeDoc/tabshell/internal/logger"
)

// Options configures how the browser is reached.
type Options struct {
	// ControlURL connects to an already running Chrome. When empty a
	// browser is launched.
	ControlURL string
	// Bin is the Chrome binary to launch. Empty lets rod find one.
	Bin      string
	Headless bool
	// NavigationTimeout bounds a single Load call.
	NavigationTimeout time.Duration
}

// Browser owns the Chrome connection and opens one page per tab.
type Browser struct {
	browser   *rod.Browser
	launched  *launcher.Launcher
	defaultUA string
	opts      Options
	logger    logger.Logger
}

// Connect launches or attaches to Chrome.
func Connect(ctx context.Context, opts Options, log logger.Logger) (*Browser, error) {
	controlURL := opts.ControlURL
	var l *launcher.Launcher
	if controlURL == "" {
		l = launcher.New().Headless(opts.Headless)
		if opts.Bin != "" {
			l = l.Bin(opts.Bin)
		}
		u, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("failed to launch chrome: %w", err)
		}
		controlURL = u
	}

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		if l != nil {
			l.Kill()
		}
		return nil, fmt.Errorf("failed to connect to chrome: %w", err)
	}

	version, err := proto.BrowserGetVersion{}.Call(browser)
	if err != nil {
		_ = browser.Close()
		if l != nil {
			l.Kill()
		}
		return nil, fmt.Errorf("failed to read browser version: %w", err)
	}

	log.Info("connected to chrome",
		logger.String("product", version.Product),
		logger.Bool("launched", l != nil),
	)

	return &Browser{
		browser:   browser,
		launched:  l,
		defaultUA: version.UserAgent,
		opts:      opts,
		logger:    log,
	}, nil
}

// Open creates a blank page. Private pages live in their own incognito
// context so they share no cookies or storage with regular tabs.
func (b *Browser) Open(ctx context.Context, private bool) (PageHandle, error) {
	target := b.browser
	if private {
		incognito, err := b.browser.Incognito()
		if err != nil {
			return nil, fmt.Errorf("failed to create incognito context: %w", err)
		}
		target = incognito
	}

	page, err := target.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return nil, fmt.Errorf("failed to create page: %w", err)
	}
	return newPage(page.Context(ctx), b.defaultUA, b.opts.NavigationTimeout, b.logger), nil
}

// Close disconnects and, when the browser was launched by us, stops it.
func (b *Browser) Close() error {
	err := b.browser.Close()
	if b.launched != nil {
		b.launched.Kill()
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("failed to close browser: %w", err)
	}
	return nil
}
