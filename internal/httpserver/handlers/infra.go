package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/tabshell/internal/bridge"
	"github.com/MrSnakeDoc/tabshell/internal/httpserver/deps"
)

type componentStatus struct {
	OK      bool   `json:"ok"`
	Tabs    *int   `json:"tabs,omitempty"`
	Presets *int   `json:"presets,omitempty"`
	Mode    string `json:"mode,omitempty"`
	Impact  string `json:"impact,omitempty"`
	Error   string `json:"error,omitempty"`
}

type infraResponse struct {
	Mode       string                     `json:"mode"`
	Components map[string]componentStatus `json:"components"`
}

// Infra reports the state of every component the shell depends on.
func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tabs := len(d.Store.Tabs())
		components := map[string]componentStatus{
			"store": {
				OK:   d.Store.Initialized(),
				Tabs: &tabs,
			},
			"storage": checkStorage(r.Context(), d),
			"surface": checkSurface(d),
		}
		if d.Emulator != nil {
			presets := d.Emulator.Catalog().Len()
			components["emulation"] = componentStatus{OK: presets > 0, Presets: &presets}
		}

		writeJSON(w, d.Logger, http.StatusOK, infraResponse{
			Mode:       determineMode(components),
			Components: components,
		})
	}
}

func determineMode(components map[string]componentStatus) string {
	if store, ok := components["store"]; ok && !store.OK {
		return "starting"
	}
	if storage, ok := components["storage"]; ok && !storage.OK {
		return "degraded" // state changes are not being persisted
	}
	if surface, ok := components["surface"]; ok && !surface.OK {
		return "headless"
	}
	return "operational"
}

func checkStorage(ctx context.Context, d deps.Deps) componentStatus {
	if d.StoragePing == nil {
		return componentStatus{
			OK:     true,
			Mode:   d.StorageBackend,
			Impact: "state-not-durable",
		}
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := d.StoragePing.Ping(ctx); err != nil {
		return componentStatus{
			OK:     false,
			Mode:   d.StorageBackend,
			Impact: "saves-failing",
			Error:  err.Error(),
		}
	}
	return componentStatus{OK: true, Mode: d.StorageBackend}
}

func checkSurface(d deps.Deps) componentStatus {
	if d.Surfaces == nil || d.Bridge == nil {
		return componentStatus{
			OK:     false,
			Mode:   "none",
			Impact: "navigation-state-only",
		}
	}
	active := d.Store.ActiveTabID()
	if active == "" || d.Bridge.State(active) == bridge.Unbound {
		return componentStatus{OK: true, Mode: "rod", Impact: "active-tab-unbound"}
	}
	return componentStatus{OK: true, Mode: "rod"}
}
