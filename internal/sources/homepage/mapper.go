package homepage

import (
	"net/url"
	"slices"
	"strings"

	"github.com/MrSnakeDoc/tabshell/internal/domain"
)

// Store is the part of the session store an import writes to.
type Store interface {
	Folders() []domain.BookmarkFolder
	CreateBookmarkFolder(name string) string
	IsBookmarked(url string) bool
	AddBookmark(url, title, folderID string) string
}

// Result summarizes an import.
type Result struct {
	Folders int `json:"folders"`
	Added   int `json:"added"`
	Skipped int `json:"skipped"`
}

// Entries flattens config in file order. Entries without an absolute
// http(s) href are dropped.
func Entries(config BookmarksConfig) []Entry {
	var out []Entry
	for _, category := range config {
		for _, folder := range sortedKeys(category) {
			for _, bookmarkMap := range category[folder] {
				for _, name := range sortedKeys(bookmarkMap) {
					list := bookmarkMap[name]
					if len(list) == 0 || !webURL(list[0].Href) {
						continue
					}
					title := name
					if title == "" {
						title = list[0].Abbr
					}
					out = append(out, Entry{
						Folder: strings.TrimSpace(folder),
						Title:  title,
						URL:    list[0].Href,
					})
				}
			}
		}
	}
	return out
}

// Import files entries into folders named after their category, reusing an
// existing folder with the same name. URLs that are already bookmarked are
// skipped.
func Import(store Store, entries []Entry) Result {
	var res Result
	folders := make(map[string]string)
	for _, f := range store.Folders() {
		folders[strings.ToLower(f.Name)] = f.ID
	}

	for _, e := range entries {
		if store.IsBookmarked(e.URL) {
			res.Skipped++
			continue
		}

		folderID := ""
		if e.Folder != "" {
			key := strings.ToLower(e.Folder)
			id, ok := folders[key]
			if !ok {
				id = store.CreateBookmarkFolder(e.Folder)
				if id != "" {
					folders[key] = id
					res.Folders++
				}
			}
			folderID = id
		}

		if store.AddBookmark(e.URL, e.Title, folderID) == "" {
			res.Skipped++
			continue
		}
		res.Added++
	}
	return res
}

func webURL(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// Single-key maps are the norm; sorting only matters for hand-merged files.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
