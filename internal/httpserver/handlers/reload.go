package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/tabshell/internal/httpserver/deps"
	"github.com/MrSnakeDoc/tabshell/internal/logger"
)

type reloadResponse struct {
	Triggered bool   `json:"triggered"`
	Message   string `json:"message"`
}

// ReloadPresets triggers a manual reload of the device presets file.
func ReloadPresets(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if d.PresetReloadTrigger == nil {
			writeJSON(w, d.Logger, http.StatusNotFound, reloadResponse{
				Message: "no presets file configured",
			})
			return
		}

		select {
		case d.PresetReloadTrigger <- struct{}{}:
			d.Logger.Info("manual presets reload triggered via endpoint",
				logger.String("remote_ip", r.RemoteAddr))
			writeJSON(w, d.Logger, http.StatusAccepted, reloadResponse{
				Triggered: true,
				Message:   "reload triggered",
			})
		default:
			d.Logger.Warn("presets reload already in progress",
				logger.String("remote_ip", r.RemoteAddr))
			writeJSON(w, d.Logger, http.StatusTooManyRequests, reloadResponse{
				Message: "reload already in progress, please wait",
			})
		}
	}
}
