package views

import (
	"github.com/MrSnakeDoc/tabshell/internal/domain"
)

// FolderGroup is a folder with the bookmarks filed under it. The root group
// has a zero Folder.
type FolderGroup struct {
	Folder    domain.BookmarkFolder `json:"folder"`
	Bookmarks []domain.Bookmark     `json:"bookmarks"`
}

// FolderView lists every folder with its bookmarks, in folder order, then
// the root group. Bookmarks pointing at a missing folder show at root.
func FolderView(folders []domain.BookmarkFolder, bookmarks []domain.Bookmark) (groups []FolderGroup, root FolderGroup) {
	index := make(map[string]int, len(folders))
	groups = make([]FolderGroup, len(folders))
	for i, f := range folders {
		index[f.ID] = i
		groups[i] = FolderGroup{Folder: f, Bookmarks: []domain.Bookmark{}}
	}

	root.Bookmarks = []domain.Bookmark{}
	for _, b := range bookmarks {
		if i, ok := index[b.FolderID]; ok && b.FolderID != "" {
			groups[i].Bookmarks = append(groups[i].Bookmarks, b)
			continue
		}
		root.Bookmarks = append(root.Bookmarks, b)
	}
	return groups, root
}

// BookmarksInFolder returns the bookmarks filed under folderID. An empty
// folderID selects root-level bookmarks.
func BookmarksInFolder(bookmarks []domain.Bookmark, folderID string) []domain.Bookmark {
	var out []domain.Bookmark
	for _, b := range bookmarks {
		if b.FolderID == folderID {
			out = append(out, b)
		}
	}
	return out
}

// IsBookmarked reports whether url is saved.
func IsBookmarked(bookmarks []domain.Bookmark, url string) bool {
	for _, b := range bookmarks {
		if b.URL == url {
			return true
		}
	}
	return false
}
