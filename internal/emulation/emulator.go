package emulation

import (
	"sync"

	"github.com/MrSnakeDoc/tabshell/internal/domain"
)

// Settings is a snapshot of the emulator state.
type Settings struct {
	Active         bool   `json:"active"`
	SelectedDevice string `json:"selectedDevice"`
	Rotated        bool   `json:"rotated"`
	Zoom           int    `json:"zoom"`
	Width          int    `json:"width"`
	Height         int    `json:"height"`
}

// Emulator holds the device emulation state of the shell. It never touches
// tab state; the zoom it carries is forwarded to the bridge by the caller.
type Emulator struct {
	catalog      *Catalog
	screenWidth  int
	screenHeight int

	mu       sync.Mutex
	settings Settings
}

// NewEmulator starts in responsive mode sized to the screen.
func NewEmulator(catalog *Catalog, screenWidth, screenHeight int) *Emulator {
	return &Emulator{
		catalog:      catalog,
		screenWidth:  screenWidth,
		screenHeight: screenHeight,
		settings: Settings{
			SelectedDevice: ResponsiveID,
			Zoom:           domain.DefaultZoom,
			Width:          screenWidth,
			Height:         screenHeight,
		},
	}
}

func (e *Emulator) Settings() Settings {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.settings
}

func (e *Emulator) Catalog() *Catalog { return e.catalog }

func (e *Emulator) Activate() {
	e.mu.Lock()
	e.settings.Active = true
	e.mu.Unlock()
}

func (e *Emulator) Deactivate() {
	e.mu.Lock()
	e.settings.Active = false
	e.mu.Unlock()
}

// SelectDevice switches to a preset or back to responsive mode. Unknown
// ids are ignored and reported as false.
func (e *Emulator) SelectDevice(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if id == ResponsiveID {
		e.settings.SelectedDevice = id
		e.settings.Width, e.settings.Height = e.screenWidth, e.screenHeight
		return true
	}

	p, ok := e.catalog.Get(id)
	if !ok {
		return false
	}
	e.settings.SelectedDevice = id
	e.settings.Width, e.settings.Height = p.Width, p.Height
	if e.settings.Rotated {
		e.settings.Width, e.settings.Height = p.Height, p.Width
	}
	return true
}

// ToggleRotation flips orientation. In responsive mode the free-form size
// is swapped too.
func (e *Emulator) ToggleRotation() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.settings.Rotated = !e.settings.Rotated
	if e.settings.SelectedDevice == ResponsiveID {
		e.settings.Width, e.settings.Height = e.settings.Height, e.settings.Width
	}
}

// SetZoom stores the zoom clamped to the page zoom range.
func (e *Emulator) SetZoom(zoom int) {
	e.mu.Lock()
	e.settings.Zoom = domain.ClampZoom(zoom)
	e.mu.Unlock()
}

// SetResponsiveSize sets the free-form viewport. It is stored as given and
// clamped when read.
func (e *Emulator) SetResponsiveSize(width, height int) {
	e.mu.Lock()
	e.settings.Width, e.settings.Height = width, height
	e.mu.Unlock()
}

// Dimensions returns the emulated viewport size, already oriented.
func (e *Emulator) Dimensions() (width, height int) {
	e.mu.Lock()
	s := e.settings
	e.mu.Unlock()

	if s.SelectedDevice == ResponsiveID {
		return ClampResponsive(s.Width, s.Height)
	}
	p, ok := e.catalog.Get(s.SelectedDevice)
	if !ok {
		return e.screenWidth, e.screenHeight
	}
	if s.Rotated {
		return p.Height, p.Width
	}
	return p.Width, p.Height
}

// Frame fits the current device into the screen.
func (e *Emulator) Frame() Frame {
	w, h := e.Dimensions()
	aw, ah := AvailableViewport(float64(e.screenWidth), float64(e.screenHeight))
	return Transform(Input{
		TargetWidth:     w,
		TargetHeight:    h,
		Zoom:            e.Settings().Zoom,
		AvailableWidth:  aw,
		AvailableHeight: ah,
	})
}
