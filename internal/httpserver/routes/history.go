package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/tabshell/internal/httpserver/deps"
	"github.com/MrSnakeDoc/tabshell/internal/httpserver/handlers"
)

func init() { Register(registerHistory) }

func registerHistory(r chi.Router, d deps.Deps) {
	api := r.With(guarded(d)...)

	api.Route("/api/history", func(r chi.Router) {
		r.Get("/", handlers.ListHistory(d))
		r.Delete("/", handlers.ClearHistory(d))
		r.Get("/grouped", handlers.GroupedHistory(d))
		r.Get("/most-visited", handlers.MostVisited(d))
		r.Delete("/{id}", handlers.RemoveHistoryEntry(d))
	})

	api.Get("/api/suggestions", handlers.Suggestions(d))
}
