package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/tabshell/internal/httpserver/deps"
	"github.com/MrSnakeDoc/tabshell/internal/httpserver/handlers"
)

func init() { Register(registerTabs) }

func registerTabs(r chi.Router, d deps.Deps) {
	api := r.With(guarded(d)...)

	api.Get("/api/state", handlers.State(d))

	api.Route("/api/tabs", func(r chi.Router) {
		r.Get("/", handlers.ListTabs(d))
		r.Post("/", handlers.CreateTab(d))
		r.Post("/private/close", handlers.CloseAllPrivateTabs(d))

		r.Route("/{id}", func(r chi.Router) {
			r.Delete("/", handlers.CloseTab(d))
			r.Post("/activate", handlers.ActivateTab(d))
			r.Patch("/desktop", handlers.ToggleDesktopMode(d))
			r.Put("/zoom", handlers.SetZoom(d))
			r.Post("/navigate", handlers.Navigate(d))
			r.Post("/back", handlers.GoBack(d))
			r.Post("/forward", handlers.GoForward(d))
			r.Post("/reload", handlers.Reload(d))
			r.Post("/share", handlers.Share(d))
			r.Post("/thumbnail", handlers.CaptureThumbnail(d))
		})
	})
}
