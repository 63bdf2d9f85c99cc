package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/tabshell/internal/httpserver/deps"
	"github.com/MrSnakeDoc/tabshell/internal/httpserver/handlers"
)

func init() { Register(registerEmulation) }

func registerEmulation(r chi.Router, d deps.Deps) {
	api := r.With(guarded(d)...)

	api.Route("/api/emulation", func(r chi.Router) {
		r.Post("/transform", handlers.Transform(d))
		if d.Emulator == nil {
			return
		}

		r.Get("/", handlers.GetEmulation(d))
		r.Post("/activate", handlers.ActivateEmulation(d))
		r.Post("/deactivate", handlers.DeactivateEmulation(d))
		r.Put("/device", handlers.SelectDevice(d))
		r.Post("/rotate", handlers.RotateDevice(d))
		r.Put("/size", handlers.ResizeResponsive(d))
		r.Put("/zoom", handlers.SetEmulationZoom(d))
		r.Get("/presets", handlers.ListPresets(d))
		r.Post("/presets/reload", handlers.ReloadPresets(d))
	})
}
