package handlers

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/tabshell/internal/domain"
	"github.com/MrSnakeDoc/tabshell/internal/httpserver/deps"
	"github.com/MrSnakeDoc/tabshell/internal/logger"
	"github.com/MrSnakeDoc/tabshell/internal/sources/homepage"
	"github.com/MrSnakeDoc/tabshell/internal/views"
)

type addBookmarkRequest struct {
	URL      string `json:"url"`
	Title    string `json:"title"`
	FolderID string `json:"folderId"`
}

type updateBookmarkRequest struct {
	URL      *string `json:"url"`
	Title    *string `json:"title"`
	FolderID *string `json:"folderId"`
}

type createFolderRequest struct {
	Name string `json:"name"`
}

type folderGroupJSON struct {
	Folder    *folderJSON    `json:"folder,omitempty"`
	Bookmarks []bookmarkJSON `json:"bookmarks"`
}

type bookmarksResponse struct {
	Folders []folderGroupJSON `json:"folders"`
	Root    folderGroupJSON   `json:"root"`
}

type bookmarkedResponse struct {
	Bookmarked bool `json:"bookmarked"`
}

// ListBookmarks returns the bookmarks grouped by folder, root level last.
// With ?folder=<id> only that folder's bookmarks are listed.
func ListBookmarks(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st := d.Store.Snapshot()
		if r.URL.Query().Has("folder") {
			in := views.BookmarksInFolder(st.Bookmarks, r.URL.Query().Get("folder"))
			writeJSON(w, d.Logger, http.StatusOK, toBookmarks(in))
			return
		}

		groups, root := views.FolderView(st.Folders, st.Bookmarks)
		resp := bookmarksResponse{
			Folders: make([]folderGroupJSON, 0, len(groups)),
			Root:    folderGroupJSON{Bookmarks: toBookmarks(root.Bookmarks)},
		}
		for _, g := range groups {
			f := toFolders([]domain.BookmarkFolder{g.Folder})[0]
			resp.Folders = append(resp.Folders, folderGroupJSON{
				Folder:    &f,
				Bookmarks: toBookmarks(g.Bookmarks),
			})
		}
		writeJSON(w, d.Logger, http.StatusOK, resp)
	}
}

// IsBookmarked reports whether ?url= is bookmarked.
func IsBookmarked(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ok := d.Store.IsBookmarked(r.URL.Query().Get("url"))
		writeJSON(w, d.Logger, http.StatusOK, bookmarkedResponse{Bookmarked: ok})
	}
}

// AddBookmark saves a bookmark. The returned id is empty when the store
// rejected it (empty url).
func AddBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req addBookmarkRequest
		if err := decodeBody(w, r, &req, false); err != nil {
			badRequest(w, d.Logger, err)
			return
		}
		id := d.Store.AddBookmark(req.URL, req.Title, req.FolderID)
		status := http.StatusCreated
		if id == "" {
			status = http.StatusOK
		}
		writeJSON(w, d.Logger, status, createdResponse{ID: id})
	}
}

func UpdateBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req updateBookmarkRequest
		if err := decodeBody(w, r, &req, false); err != nil {
			badRequest(w, d.Logger, err)
			return
		}
		d.Store.UpdateBookmark(chi.URLParam(r, "id"), domain.BookmarkPatch{
			URL:      req.URL,
			Title:    req.Title,
			FolderID: req.FolderID,
		})
		w.WriteHeader(http.StatusNoContent)
	}
}

func RemoveBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d.Store.RemoveBookmark(chi.URLParam(r, "id"))
		w.WriteHeader(http.StatusNoContent)
	}
}

func ListFolders(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, d.Logger, http.StatusOK, toFolders(d.Store.Folders()))
	}
}

func CreateFolder(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createFolderRequest
		if err := decodeBody(w, r, &req, false); err != nil {
			badRequest(w, d.Logger, err)
			return
		}
		id := d.Store.CreateBookmarkFolder(req.Name)
		status := http.StatusCreated
		if id == "" {
			status = http.StatusOK
		}
		writeJSON(w, d.Logger, status, createdResponse{ID: id})
	}
}

// DeleteFolder removes the folder and every bookmark in it.
func DeleteFolder(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d.Store.DeleteBookmarkFolder(chi.URLParam(r, "id"))
		w.WriteHeader(http.StatusNoContent)
	}
}

// ImportBookmarks merges a Homepage bookmarks.yaml request body into the
// bookmarks. Already bookmarked URLs are skipped.
func ImportBookmarks(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err != nil {
			badRequest(w, d.Logger, err)
			return
		}
		config, err := homepage.Parse(data)
		if err != nil {
			badRequest(w, d.Logger, err)
			return
		}

		res := homepage.Import(d.Store, homepage.Entries(config))
		d.Logger.Info("bookmarks imported",
			logger.Int("added", res.Added),
			logger.Int("folders", res.Folders),
			logger.Int("skipped", res.Skipped))
		writeJSON(w, d.Logger, http.StatusOK, res)
	}
}
