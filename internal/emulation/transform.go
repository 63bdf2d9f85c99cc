package emulation

import (
	"math"

	"github.com/MrSnakeDoc/tabshell/internal/domain"
)

// Space the browser UI takes around an emulated frame.
const (
	HorizontalPadding = 20
	VerticalPadding   = 20
	ToolbarHeight     = 160
	NavigationHeight  = 180
)

// MinScale is the smallest scale a frame is ever rendered at.
const MinScale = 0.2

// Input describes the device to emulate and the room available for it.
type Input struct {
	TargetWidth     int
	TargetHeight    int
	Zoom            int
	Rotated         bool
	AvailableWidth  float64
	AvailableHeight float64
}

// Frame is the rendered size of an emulated device.
type Frame struct {
	Scale  float64
	Width  float64
	Height float64
	// Zoom is the clamped page zoom to forward to the bridge.
	Zoom int
}

// Transform fits the target device into the available viewport without
// ever scaling it up.
func Transform(in Input) Frame {
	w, h := float64(in.TargetWidth), float64(in.TargetHeight)
	if in.Rotated {
		w, h = h, w
	}
	if w <= 0 {
		w = in.AvailableWidth
	}
	if h <= 0 {
		h = in.AvailableHeight
	}

	zoom := domain.ClampZoom(in.Zoom)
	if w <= 0 || h <= 0 {
		return Frame{Scale: 1, Zoom: zoom}
	}

	scale := math.Min(math.Min(in.AvailableWidth/w, in.AvailableHeight/h), 1)
	scale = math.Max(scale, MinScale)

	return Frame{
		Scale:  scale,
		Width:  w * scale,
		Height: h * scale,
		Zoom:   zoom,
	}
}

// AvailableViewport returns the room left for an emulated frame on a screen
// of the given size once the browser UI is laid out.
func AvailableViewport(screenWidth, screenHeight float64) (width, height float64) {
	width = screenWidth - HorizontalPadding*2
	height = screenHeight - VerticalPadding - ToolbarHeight - NavigationHeight
	return width, height
}
