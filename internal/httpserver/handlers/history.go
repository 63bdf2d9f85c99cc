package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/tabshell/internal/httpserver/deps"
	"github.com/MrSnakeDoc/tabshell/internal/views"
)

const defaultHistoryLimit = 100

type clearHistoryRequest struct {
	IDs []string `json:"ids"`
}

type historyGroupJSON struct {
	Title   string        `json:"title"`
	Entries []historyJSON `json:"entries"`
}

type suggestionsResponse struct {
	Suggestions []string `json:"suggestions"`
}

// ListHistory returns the most recent entries, or the entries matching ?q=.
func ListHistory(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entries := d.Store.History()
		if q := r.URL.Query().Get("q"); q != "" {
			writeJSON(w, d.Logger, http.StatusOK, toHistory(views.SearchHistory(entries, q)))
			return
		}
		limit := queryInt(r, "limit", defaultHistoryLimit)
		writeJSON(w, d.Logger, http.StatusOK, toHistory(views.RecentHistory(entries, limit)))
	}
}

// GroupedHistory returns the history bucketed by day, newest first.
func GroupedHistory(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		groups := views.GroupHistoryByDate(d.Store.History(), d.Now(), d.Loc())
		out := make([]historyGroupJSON, 0, len(groups))
		for _, g := range groups {
			out = append(out, historyGroupJSON{Title: g.Title, Entries: toHistory(g.Entries)})
		}
		writeJSON(w, d.Logger, http.StatusOK, out)
	}
}

func MostVisited(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := queryInt(r, "limit", 10)
		writeJSON(w, d.Logger, http.StatusOK, toHistory(views.MostVisited(d.Store.History(), limit)))
	}
}

// ClearHistory removes the listed entries, or everything when no ids are given.
func ClearHistory(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req clearHistoryRequest
		if err := decodeBody(w, r, &req, true); err != nil {
			badRequest(w, d.Logger, err)
			return
		}
		// an explicit empty list selects nothing
		if req.IDs != nil && len(req.IDs) == 0 {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		d.Store.ClearHistory(req.IDs...)
		w.WriteHeader(http.StatusNoContent)
	}
}

func RemoveHistoryEntry(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d.Store.RemoveHistoryEntry(chi.URLParam(r, "id"))
		w.WriteHeader(http.StatusNoContent)
	}
}

// Suggestions returns address-bar completions for ?q=.
func Suggestions(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st := d.Store.Snapshot()
		out := views.Suggestions(st.History.Entries(), r.URL.Query().Get("q"), st.Settings, st.PrivateMode)
		if out == nil {
			out = []string{}
		}
		writeJSON(w, d.Logger, http.StatusOK, suggestionsResponse{Suggestions: out})
	}
}

func queryInt(r *http.Request, key string, def int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil && i > 0 {
			return i
		}
	}
	return def
}
