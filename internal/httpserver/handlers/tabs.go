package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/tabshell/internal/bridge"
	"github.com/MrSnakeDoc/tabshell/internal/domain"
	"github.com/MrSnakeDoc/tabshell/internal/httpserver/deps"
)

type createTabRequest struct {
	URL     string `json:"url"`
	Private bool   `json:"private"`
}

type createdResponse struct {
	ID string `json:"id"`
}

type zoomRequest struct {
	Level int `json:"level"`
}

type navigateRequest struct {
	Input string `json:"input"`
}

type dispatchResponse struct {
	Dispatched bool `json:"dispatched"`
}

// State returns the whole browser state.
func State(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, d.Logger, http.StatusOK, toState(d.Store.Snapshot(), d.Bridge))
	}
}

// ListTabs returns the tab list, the active tab and the tab counts.
func ListTabs(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, d.Logger, http.StatusOK, toTabs(d.Store.Snapshot(), d.Bridge))
	}
}

// CreateTab opens a tab and makes it active. An empty url opens a blank tab.
func CreateTab(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createTabRequest
		if err := decodeBody(w, r, &req, true); err != nil {
			badRequest(w, d.Logger, err)
			return
		}
		url := req.URL
		if url == "" {
			url = domain.BlankURL
		}
		id := d.Store.CreateTab(url, req.Private)
		writeJSON(w, d.Logger, http.StatusCreated, createdResponse{ID: id})
	}
}

func CloseTab(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d.Store.CloseTab(chi.URLParam(r, "id"))
		w.WriteHeader(http.StatusNoContent)
	}
}

func ActivateTab(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d.Store.SetActiveTab(chi.URLParam(r, "id"))
		w.WriteHeader(http.StatusNoContent)
	}
}

func CloseAllPrivateTabs(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d.Store.CloseAllPrivateTabs()
		w.WriteHeader(http.StatusNoContent)
	}
}

// ToggleDesktopMode flips the tab's desktop flag and reloads its surface.
func ToggleDesktopMode(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d.Bridge.ToggleDesktopMode(r.Context(), chi.URLParam(r, "id"))
		w.WriteHeader(http.StatusNoContent)
	}
}

// SetZoom stores the clamped zoom level and applies it to the page.
func SetZoom(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req zoomRequest
		if err := decodeBody(w, r, &req, false); err != nil {
			badRequest(w, d.Logger, err)
			return
		}
		d.Bridge.SetZoom(r.Context(), chi.URLParam(r, "id"), req.Level)
		w.WriteHeader(http.StatusNoContent)
	}
}

// Navigate resolves free-form input and loads it in the tab.
func Navigate(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req navigateRequest
		if err := decodeBody(w, r, &req, false); err != nil {
			badRequest(w, d.Logger, err)
			return
		}
		if req.Input == "" {
			badRequest(w, d.Logger, errors.New("input is required"))
			return
		}
		ok := d.Bridge.Navigate(r.Context(), chi.URLParam(r, "id"), req.Input)
		writeJSON(w, d.Logger, http.StatusOK, dispatchResponse{Dispatched: ok})
	}
}

func GoBack(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ok := d.Bridge.GoBack(r.Context(), chi.URLParam(r, "id"))
		writeJSON(w, d.Logger, http.StatusOK, dispatchResponse{Dispatched: ok})
	}
}

func GoForward(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ok := d.Bridge.GoForward(r.Context(), chi.URLParam(r, "id"))
		writeJSON(w, d.Logger, http.StatusOK, dispatchResponse{Dispatched: ok})
	}
}

func Reload(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ok := d.Bridge.Reload(r.Context(), chi.URLParam(r, "id"))
		writeJSON(w, d.Logger, http.StatusOK, dispatchResponse{Dispatched: ok})
	}
}

// Share hands the tab's title and URL to the configured sharer.
func Share(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := d.Bridge.Share(chi.URLParam(r, "id")); err != nil {
			writeJSON(w, d.Logger, http.StatusServiceUnavailable, errorResponse{Error: err.Error()})
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// CaptureThumbnail recaptures the tab thumbnail now.
func CaptureThumbnail(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := d.Bridge.CaptureThumbnail(r.Context(), chi.URLParam(r, "id"))
		switch {
		case errors.Is(err, bridge.ErrUnbound):
			writeJSON(w, d.Logger, http.StatusOK, dispatchResponse{Dispatched: false})
		case err != nil:
			writeJSON(w, d.Logger, http.StatusBadGateway, errorResponse{Error: err.Error()})
		default:
			writeJSON(w, d.Logger, http.StatusOK, dispatchResponse{Dispatched: true})
		}
	}
}
