package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/tabshell/internal/domain"
	"github.com/MrSnakeDoc/tabshell/internal/httpserver/deps"
)

type settingsPatchRequest struct {
	Theme               *string `json:"theme"`
	DefaultSearchEngine *string `json:"defaultSearchEngine"`
	ClearHistoryOnExit  *bool   `json:"clearHistoryOnExit"`
	ShowSuggestions     *bool   `json:"showSuggestions"`
	BlockPopups         *bool   `json:"blockPopups"`
}

type themeRequest struct {
	Theme string `json:"theme"`
}

func GetSettings(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, d.Logger, http.StatusOK, toSettings(d.Store.Settings()))
	}
}

// PatchSettings merges the given fields into the settings. Unknown theme or
// search engine names are rejected before anything is applied.
func PatchSettings(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req settingsPatchRequest
		if err := decodeBody(w, r, &req, false); err != nil {
			badRequest(w, d.Logger, err)
			return
		}

		patch := domain.SettingsPatch{
			ClearHistoryOnExit: req.ClearHistoryOnExit,
			ShowSuggestions:    req.ShowSuggestions,
			BlockPopups:        req.BlockPopups,
		}
		if req.Theme != nil {
			theme, err := domain.ParseTheme(*req.Theme)
			if err != nil {
				badRequest(w, d.Logger, err)
				return
			}
			patch.Theme = &theme
		}
		if req.DefaultSearchEngine != nil {
			engine, err := domain.ParseSearchEngine(*req.DefaultSearchEngine)
			if err != nil {
				badRequest(w, d.Logger, err)
				return
			}
			patch.DefaultSearchEngine = &engine
		}

		d.Store.UpdateSettings(patch)
		writeJSON(w, d.Logger, http.StatusOK, toSettings(d.Store.Settings()))
	}
}

func SetTheme(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req themeRequest
		if err := decodeBody(w, r, &req, false); err != nil {
			badRequest(w, d.Logger, err)
			return
		}
		theme, err := domain.ParseTheme(req.Theme)
		if err != nil {
			badRequest(w, d.Logger, err)
			return
		}
		d.Store.SetTheme(theme)
		w.WriteHeader(http.StatusNoContent)
	}
}

func ResetSettings(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d.Store.ResetSettings()
		writeJSON(w, d.Logger, http.StatusOK, toSettings(d.Store.Settings()))
	}
}
