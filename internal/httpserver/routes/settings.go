package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/tabshell/internal/httpserver/deps"
	"github.com/MrSnakeDoc/tabshell/internal/httpserver/handlers"
)

func init() { Register(registerSettings) }

func registerSettings(r chi.Router, d deps.Deps) {
	api := r.With(guarded(d)...)

	api.Route("/api/settings", func(r chi.Router) {
		r.Get("/", handlers.GetSettings(d))
		r.Patch("/", handlers.PatchSettings(d))
		r.Put("/theme", handlers.SetTheme(d))
		r.Post("/reset", handlers.ResetSettings(d))
	})
}
