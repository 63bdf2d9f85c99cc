package persist

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// SchemaVersion is the version written by Encode. Blobs without a version
// field are version 0 and are migrated on load.
const SchemaVersion = 1

type snapshot struct {
	Version         int              `json:"version"`
	Tabs            []tabRecord      `json:"tabs"`
	ActiveTabID     *string          `json:"activeTabId"`
	Bookmarks       []bookmarkRecord `json:"bookmarks"`
	BookmarkFolders []folderRecord   `json:"bookmarkFolders"`
	History         []historyRecord  `json:"history"`
	Settings        *settingsRecord  `json:"settings,omitempty"`
	Theme           string           `json:"theme,omitempty"`
	IsPrivateMode   bool             `json:"isPrivateMode"`
}

type tabRecord struct {
	ID           string    `json:"id"`
	URL          string    `json:"url"`
	Title        string    `json:"title"`
	Favicon      string    `json:"favicon,omitempty"`
	Thumbnail    string    `json:"thumbnail,omitempty"`
	Loading      bool      `json:"loading"`
	CanGoBack    bool      `json:"canGoBack"`
	CanGoForward bool      `json:"canGoForward"`
	Progress     float64   `json:"progress"`
	CreatedAt    timestamp `json:"createdAt"`
	IsPrivate    bool      `json:"isPrivate"`
	DesktopMode  bool      `json:"desktopMode"`
	ZoomLevel    *int      `json:"zoomLevel,omitempty"`
}

type bookmarkRecord struct {
	ID        string    `json:"id"`
	URL       string    `json:"url"`
	Title     string    `json:"title"`
	Favicon   string    `json:"favicon,omitempty"`
	FolderID  string    `json:"folderId,omitempty"`
	CreatedAt timestamp `json:"createdAt"`
}

type folderRecord struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt timestamp `json:"createdAt"`
}

type historyRecord struct {
	ID         string    `json:"id"`
	URL        string    `json:"url"`
	Title      string    `json:"title"`
	Favicon    string    `json:"favicon,omitempty"`
	VisitedAt  timestamp `json:"visitedAt"`
	VisitCount int       `json:"visitCount"`
}

type settingsRecord struct {
	Theme               *string `json:"theme,omitempty"`
	DefaultSearchEngine *string `json:"defaultSearchEngine,omitempty"`
	ClearHistoryOnExit  *bool   `json:"clearHistoryOnExit,omitempty"`
	ShowSuggestions     *bool   `json:"showSuggestions,omitempty"`
	BlockPopups         *bool   `json:"blockPopups,omitempty"`
}

// timestamp is written as an RFC 3339 string. On read it also accepts epoch
// milliseconds; anything it cannot parse becomes the zero time instead of
// failing the whole blob.
type timestamp time.Time

func (t timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Time(t).UTC().Format(time.RFC3339Nano))
}

func (t *timestamp) UnmarshalJSON(b []byte) error {
	raw := strings.TrimSpace(string(b))
	if raw == "null" || raw == "" {
		*t = timestamp{}
		return nil
	}

	if !strings.HasPrefix(raw, `"`) {
		if ms, err := strconv.ParseInt(raw, 10, 64); err == nil {
			*t = timestamp(time.UnixMilli(ms).UTC())
			return nil
		}
		*t = timestamp{}
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		*t = timestamp{}
		return nil
	}
	parsed, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		*t = timestamp{}
		return nil
	}
	*t = timestamp(parsed)
	return nil
}
