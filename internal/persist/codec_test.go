package persist

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/tabshell/internal/domain"
	"github.com/MrSnakeDoc/tabshell/internal/state"
)

var epoch = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

func sampleState() state.State {
	st := state.Initial()
	st = state.Reduce(st, state.CreateTab{ID: "a", URL: "https://example.com", At: epoch})
	st = state.Reduce(st, state.UpdateTab{ID: "a", Patch: domain.TabPatch{
		Title:     domain.Ptr("Example"),
		Loading:   domain.Ptr(true),
		Progress:  domain.Ptr(0.4),
		CanGoBack: domain.Ptr(true),
		ZoomLevel: domain.Ptr(75),
	}})
	st = state.Reduce(st, state.AddHistoryEntry{ID: "h1", URL: "https://example.com", Title: "Example", At: epoch.Add(time.Minute)})
	st = state.Reduce(st, state.CreateFolder{ID: "f", Name: "Work", At: epoch})
	st = state.Reduce(st, state.AddBookmark{ID: "b1", URL: "https://go.dev", Title: "Go", FolderID: "f", At: epoch})
	st = state.Reduce(st, state.AddBookmark{ID: "b2", URL: "https://pkg.go.dev", Title: "Pkg", At: epoch})
	st = state.Reduce(st, state.CreateTab{ID: "p", Private: true, At: epoch.Add(time.Second)})
	return st
}

func TestRoundTrip(t *testing.T) {
	st := sampleState()

	data, err := Encode(st)
	require.NoError(t, err)
	loaded, err := Decode(data)
	require.NoError(t, err)

	wantTabs := make([]domain.Tab, len(st.Tabs))
	for i, tab := range st.Tabs {
		tab.Loading = false
		tab.Progress = 0
		wantTabs[i] = tab
	}
	assert.Equal(t, wantTabs, loaded.Tabs)
	assert.Equal(t, st.Bookmarks, loaded.Bookmarks)
	assert.Equal(t, st.Folders, loaded.Folders)
	assert.Equal(t, st.History.Entries(), loaded.History.Entries())
	assert.Equal(t, st.Settings, loaded.Settings)
	assert.Equal(t, "p", loaded.ActiveTabID)
	assert.True(t, loaded.PrivateMode)
}

func TestEncodeProjection(t *testing.T) {
	st := sampleState()
	st = state.Reduce(st, state.UpdateSettings{Patch: domain.SettingsPatch{ClearHistoryOnExit: domain.Ptr(true)}})

	data, err := Encode(st)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.EqualValues(t, SchemaVersion, raw["version"])
	assert.Empty(t, raw["history"])

	tabs := raw["tabs"].([]any)
	first := tabs[0].(map[string]any)
	assert.Equal(t, false, first["loading"])
	assert.EqualValues(t, 0, first["progress"])
	assert.Equal(t, "2024-03-10T12:00:00Z", first["createdAt"])
}

func TestEncodeNoActiveTab(t *testing.T) {
	data, err := Encode(state.Initial())
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Nil(t, raw["activeTabId"])
	assert.Equal(t, []any{}, raw["tabs"])
}

func TestDecodeDiscardsHistoryWhenClearOnExit(t *testing.T) {
	blob := `{
		"version": 1,
		"tabs": [],
		"activeTabId": null,
		"history": [{"id":"h","url":"https://a.test","title":"A","visitedAt":"2024-01-01T00:00:00Z","visitCount":3}],
		"settings": {"theme":"light","defaultSearchEngine":"bing","clearHistoryOnExit":true,"showSuggestions":true,"blockPopups":true},
		"theme": "light",
		"isPrivateMode": false
	}`

	st, err := Decode([]byte(blob))

	require.NoError(t, err)
	assert.Equal(t, 0, st.History.Len())
	assert.Equal(t, domain.SearchBing, st.Settings.DefaultSearchEngine)
	assert.Equal(t, domain.ThemeLight, st.Theme)
}

func TestDecodeUnversionedBlob(t *testing.T) {
	// shape written before the schema carried a version
	blob := `{
		"tabs": [
			{"id":"1","url":"https://a.test","title":"","loading":true,"progress":0.7,
			 "canGoBack":false,"canGoForward":false,"createdAt":"2024-01-01T10:00:00.000Z","isPrivate":false}
		],
		"activeTabId": "1",
		"bookmarks": [{"id":"b","url":"https://b.test","title":"B","folderId":"missing","createdAt":1704103200000}],
		"history": [{"id":"h","url":"https://a.test","title":"A","visitedAt":"garbage","visitCount":0}],
		"settings": {"theme":"sepia","defaultSearchEngine":"altavista"},
		"isPrivateMode": false
	}`

	st, err := Decode([]byte(blob))
	require.NoError(t, err)

	require.Len(t, st.Tabs, 1)
	tab := st.Tabs[0]
	assert.Equal(t, domain.DefaultZoom, tab.ZoomLevel)
	assert.False(t, tab.Loading)
	assert.Zero(t, tab.Progress)
	assert.Equal(t, "a.test", tab.Title)
	assert.Equal(t, time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC), tab.CreatedAt)

	require.Len(t, st.Bookmarks, 1)
	assert.Empty(t, st.Bookmarks[0].FolderID)
	assert.Equal(t, time.UnixMilli(1704103200000).UTC(), st.Bookmarks[0].CreatedAt)

	entries := st.History.Entries()
	require.Len(t, entries, 1)
	assert.True(t, entries[0].VisitedAt.IsZero())
	assert.Equal(t, 1, entries[0].VisitCount)

	assert.Equal(t, domain.DefaultSettings(), st.Settings)
	assert.Equal(t, domain.ThemeDark, st.Theme)
}

func TestDecodeRejectsNewerVersion(t *testing.T) {
	_, err := Decode([]byte(`{"version": 99}`))

	assert.ErrorIs(t, err, ErrUnsupportedVersion)
}

func TestDecodeMalformed(t *testing.T) {
	_, err := Decode([]byte(`{"tabs": [`))

	assert.Error(t, err)
}
