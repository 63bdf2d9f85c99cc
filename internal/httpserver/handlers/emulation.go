package handlers

import (
	"context"
	"net/http"

	"github.com/MrSnakeDoc/tabshell/internal/emulation"
	"github.com/MrSnakeDoc/tabshell/internal/httpserver/deps"
	"github.com/MrSnakeDoc/tabshell/internal/logger"
)

type transformRequest struct {
	TargetWidth     int     `json:"targetWidth"`
	TargetHeight    int     `json:"targetHeight"`
	Zoom            int     `json:"zoom"`
	Rotated         bool    `json:"rotated"`
	AvailableWidth  float64 `json:"availableWidth"`
	AvailableHeight float64 `json:"availableHeight"`
}

type frameJSON struct {
	Scale  float64 `json:"scale"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Zoom   int     `json:"zoom"`
}

type emulationResponse struct {
	emulation.Settings
	Frame frameJSON `json:"frame"`
}

type selectDeviceRequest struct {
	ID string `json:"id"`
}

type selectDeviceResponse struct {
	Selected bool `json:"selected"`
}

type emulationZoomRequest struct {
	Zoom int `json:"zoom"`
}

type responsiveSizeRequest struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

func toFrame(f emulation.Frame) frameJSON {
	return frameJSON{Scale: f.Scale, Width: f.Width, Height: f.Height, Zoom: f.Zoom}
}

// Transform computes the scaled frame for an arbitrary device and viewport.
func Transform(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req transformRequest
		if err := decodeBody(w, r, &req, false); err != nil {
			badRequest(w, d.Logger, err)
			return
		}
		frame := emulation.Transform(emulation.Input{
			TargetWidth:     req.TargetWidth,
			TargetHeight:    req.TargetHeight,
			Zoom:            req.Zoom,
			Rotated:         req.Rotated,
			AvailableWidth:  req.AvailableWidth,
			AvailableHeight: req.AvailableHeight,
		})
		writeJSON(w, d.Logger, http.StatusOK, toFrame(frame))
	}
}

func GetEmulation(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeEmulation(w, d)
	}
}

func ListPresets(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, d.Logger, http.StatusOK, d.Emulator.Catalog().All())
	}
}

func ActivateEmulation(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d.Emulator.Activate()
		syncSurface(r.Context(), d)
		writeEmulation(w, d)
	}
}

func DeactivateEmulation(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d.Emulator.Deactivate()
		syncSurface(r.Context(), d)
		writeEmulation(w, d)
	}
}

// SelectDevice switches to a preset, or to "responsive".
func SelectDevice(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req selectDeviceRequest
		if err := decodeBody(w, r, &req, false); err != nil {
			badRequest(w, d.Logger, err)
			return
		}
		ok := d.Emulator.SelectDevice(req.ID)
		if ok {
			syncSurface(r.Context(), d)
		}
		writeJSON(w, d.Logger, http.StatusOK, selectDeviceResponse{Selected: ok})
	}
}

func RotateDevice(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d.Emulator.ToggleRotation()
		syncSurface(r.Context(), d)
		writeEmulation(w, d)
	}
}

func ResizeResponsive(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req responsiveSizeRequest
		if err := decodeBody(w, r, &req, false); err != nil {
			badRequest(w, d.Logger, err)
			return
		}
		d.Emulator.SetResponsiveSize(req.Width, req.Height)
		syncSurface(r.Context(), d)
		writeEmulation(w, d)
	}
}

// SetEmulationZoom stores the emulator zoom and applies it to the active page.
func SetEmulationZoom(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req emulationZoomRequest
		if err := decodeBody(w, r, &req, false); err != nil {
			badRequest(w, d.Logger, err)
			return
		}
		d.Emulator.SetZoom(req.Zoom)
		if d.Bridge != nil {
			d.Bridge.ApplyZoom(r.Context(), "", d.Emulator.Frame().Zoom)
		}
		writeEmulation(w, d)
	}
}

func writeEmulation(w http.ResponseWriter, d deps.Deps) {
	writeJSON(w, d.Logger, http.StatusOK, emulationResponse{
		Settings: d.Emulator.Settings(),
		Frame:    toFrame(d.Emulator.Frame()),
	})
}

// syncSurface pushes the emulated viewport to the active tab's surface.
func syncSurface(ctx context.Context, d deps.Deps) {
	if d.Surfaces == nil {
		return
	}
	tabID := d.Store.ActiveTabID()
	if tabID == "" {
		return
	}

	settings := d.Emulator.Settings()
	width, height, mobile := 0, 0, false
	if settings.Active {
		width, height = d.Emulator.Dimensions()
		mobile = true
		if p, ok := d.Emulator.Catalog().Get(settings.SelectedDevice); ok {
			mobile = p.Category != emulation.CategoryDesktop
		}
	}

	if err := d.Surfaces.EmulateDevice(ctx, tabID, width, height, mobile); err != nil {
		d.Logger.Warn("failed to apply device emulation",
			logger.String("tab_id", tabID),
			logger.Error(err))
	}
}
