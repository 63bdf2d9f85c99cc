package state

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/tabshell/internal/domain"
)

func TestHistoryUpsertDeduplicatesByURL(t *testing.T) {
	h := NewHistory(10)
	h = h.Upsert("a", "https://example.com", "Example", "", epoch)
	h = h.Upsert("b", "https://go.dev", "Go", "", epoch.Add(time.Minute))
	h = h.Upsert("c", "https://example.com", "Example Domain", "https://example.com/favicon.ico", epoch.Add(2*time.Minute))

	require.Equal(t, 2, h.Len())
	entries := h.Entries()
	assert.Equal(t, "https://example.com", entries[0].URL, "revisited entry moves to the front")
	assert.Equal(t, "a", entries[0].ID, "id of the first visit is kept")
	assert.Equal(t, 2, entries[0].VisitCount)
	assert.Equal(t, "Example Domain", entries[0].Title)
	assert.Equal(t, "https://example.com/favicon.ico", entries[0].Favicon)
	assert.Equal(t, epoch.Add(2*time.Minute), entries[0].VisitedAt)
}

func TestHistoryUpsertKeepsFaviconWhenMissing(t *testing.T) {
	h := NewHistory(10).
		Upsert("a", "https://example.com", "Example", "fav", epoch).
		Upsert("b", "https://example.com", "Example", "", epoch.Add(time.Second))

	e, ok := h.Lookup("https://example.com")
	require.True(t, ok)
	assert.Equal(t, "fav", e.Favicon)
}

func TestHistoryEvictsOldestByVisitedAt(t *testing.T) {
	h := NewHistory(3)
	for i := 0; i < 3; i++ {
		h = h.Upsert(fmt.Sprint(i), fmt.Sprintf("https://site%d.test", i), "", "", epoch.Add(time.Duration(i)*time.Minute))
	}
	// a backdated visit is itself the oldest and is evicted at once
	h = h.Upsert("old", "https://old.test", "", "", epoch.Add(-time.Hour))
	require.Equal(t, 3, h.Len())
	_, ok := h.Lookup("https://old.test")
	assert.False(t, ok)

	h = h.Upsert("new", "https://new.test", "", "", epoch.Add(time.Hour))
	require.Equal(t, 3, h.Len())
	_, ok = h.Lookup("https://site0.test")
	assert.False(t, ok, "oldest entry evicted")
	_, ok = h.Lookup("https://new.test")
	assert.True(t, ok)
}

func TestHistoryNeverExceedsCapacity(t *testing.T) {
	h := NewHistory(domain.HistoryCapacity)
	for i := 0; i < domain.HistoryCapacity+250; i++ {
		h = h.Upsert(fmt.Sprint(i), fmt.Sprintf("https://site%d.test", i), "", "", epoch.Add(time.Duration(i)*time.Second))
		require.LessOrEqual(t, h.Len(), domain.HistoryCapacity)
	}
	entries := h.Entries()
	assert.Equal(t, "https://site1249.test", entries[0].URL)
	assert.Equal(t, "https://site250.test", entries[len(entries)-1].URL)
}

func TestHistoryIsImmutable(t *testing.T) {
	h1 := NewHistory(5).Upsert("a", "https://a.test", "A", "", epoch)
	h2 := h1.Upsert("b", "https://b.test", "B", "", epoch.Add(time.Second))
	h3 := h2.Remove("a")

	assert.Equal(t, 1, h1.Len())
	assert.Equal(t, 2, h2.Len())
	assert.Equal(t, 1, h3.Len())
}

func TestHistoryFrom(t *testing.T) {
	loaded := []domain.HistoryEntry{
		{ID: "1", URL: "https://a.test", VisitedAt: epoch, VisitCount: 1},
		{ID: "2", URL: "https://b.test", VisitedAt: epoch.Add(time.Hour), VisitCount: 0},
		{ID: "3", URL: "https://a.test", VisitedAt: epoch.Add(-time.Hour), VisitCount: 4},
		{ID: "4", URL: "https://c.test", VisitedAt: epoch.Add(2 * time.Hour), VisitCount: 2},
	}
	h := HistoryFrom(loaded, 2)

	entries := h.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "4", entries[0].ID)
	assert.Equal(t, "2", entries[1].ID)
	assert.Equal(t, 1, entries[1].VisitCount, "visit count floored at one")
}

func TestHistorySearch(t *testing.T) {
	h := NewHistory(10).
		Upsert("a", "https://go.dev/doc", "Documentation", "", epoch).
		Upsert("b", "https://example.com", "Example GO page", "", epoch.Add(time.Second)).
		Upsert("c", "https://rust-lang.org", "Rust", "", epoch.Add(2*time.Second))

	got := h.Search("go")
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].ID)
	assert.Equal(t, "a", got[1].ID)
	assert.Empty(t, h.Search("  "))
}
