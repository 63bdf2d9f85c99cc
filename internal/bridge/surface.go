package bridge

import "context"

// Surface is the command side of a live render surface bound to one tab.
type Surface interface {
	Load(ctx context.Context, url string) error
	GoBack(ctx context.Context) error
	GoForward(ctx context.Context) error
	Reload(ctx context.Context) error
	InjectScript(ctx context.Context, src string) error
}

// Capturer is implemented by surfaces that can screenshot the page.
// Capture returns an image data URI.
type Capturer interface {
	Capture(ctx context.Context) (string, error)
}

// UserAgentSetter is implemented by surfaces that can override the user
// agent. An empty ua restores the surface default.
type UserAgentSetter interface {
	SetUserAgent(ctx context.Context, ua string) error
}

// Notifier presents short user-facing messages.
type Notifier interface {
	Show(title, message string)
}

// Sharer hands a page off to the platform share sheet.
type Sharer interface {
	ShareURL(url, title string) error
}

type nopNotifier struct{}

func (nopNotifier) Show(string, string) {}

type nopSharer struct{}

func (nopSharer) ShareURL(string, string) error { return nil }
