package bridge

// Event is something the render surface reports about its page.
type Event interface {
	isEvent()
}

// NavigationStateChanged reports the surface's view of the current page.
type NavigationStateChanged struct {
	URL          string
	Title        string
	Loading      bool
	CanGoBack    bool
	CanGoForward bool
}

// LoadStarted reports that the surface began loading URL.
type LoadStarted struct {
	URL string
}

// LoadProgress reports load progress in [0, 1].
type LoadProgress struct {
	Progress float64
}

// LoadEnded reports that the current load finished.
type LoadEnded struct {
	URL string
}

// LoadFailed reports that the current load was aborted.
type LoadFailed struct {
	URL         string
	Description string
}

// ScriptMessage carries a raw message posted by the content script.
type ScriptMessage struct {
	Data []byte
}

func (NavigationStateChanged) isEvent() {}
func (LoadStarted) isEvent()            {}
func (LoadProgress) isEvent()           {}
func (LoadEnded) isEvent()              {}
func (LoadFailed) isEvent()             {}
func (ScriptMessage) isEvent()          {}
