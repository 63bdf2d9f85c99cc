package state

import (
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/MrSnakeDoc/tabshell/internal/domain"
)

// History is a bounded, newest-first list of history entries keyed by URL.
//
// History values are immutable: every mutating method returns a new History
// and leaves the receiver untouched, so a State can be shared with readers
// while the reducer builds the next one.
type History struct {
	entries  []domain.HistoryEntry
	capacity int
}

// NewHistory returns an empty history holding at most capacity entries.
// A non-positive capacity selects domain.HistoryCapacity.
func NewHistory(capacity int) History {
	if capacity <= 0 {
		capacity = domain.HistoryCapacity
	}
	return History{capacity: capacity}
}

// HistoryFrom rebuilds a history from loaded entries. Entries are ordered
// newest first, duplicate URLs keep their most recent visit and anything
// beyond capacity is dropped.
func HistoryFrom(entries []domain.HistoryEntry, capacity int) History {
	h := NewHistory(capacity)

	sorted := slices.Clone(entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].VisitedAt.After(sorted[j].VisitedAt)
	})

	seen := make(map[string]bool, len(sorted))
	out := make([]domain.HistoryEntry, 0, min(len(sorted), h.capacity))
	for _, e := range sorted {
		if e.URL == "" || seen[e.URL] {
			continue
		}
		if e.VisitCount < 1 {
			e.VisitCount = 1
		}
		seen[e.URL] = true
		out = append(out, e)
		if len(out) == h.capacity {
			break
		}
	}
	h.entries = out
	return h
}

// Upsert records a visit. A known URL has its visit time, count, title and
// favicon refreshed and moves to the front; an unknown URL becomes a new
// entry with the given id. When the list grows past capacity, the entry
// with the oldest visit is evicted.
func (h History) Upsert(id, url, title, favicon string, at time.Time) History {
	if h.capacity <= 0 {
		h.capacity = domain.HistoryCapacity
	}

	entry := domain.HistoryEntry{
		ID:         id,
		URL:        url,
		Title:      title,
		Favicon:    favicon,
		VisitedAt:  at,
		VisitCount: 1,
	}

	rest := make([]domain.HistoryEntry, 0, len(h.entries)+1)
	for _, e := range h.entries {
		if e.URL != url {
			rest = append(rest, e)
			continue
		}
		entry.ID = e.ID
		entry.VisitCount = e.VisitCount + 1
		if title == "" {
			entry.Title = e.Title
		}
		if favicon == "" {
			entry.Favicon = e.Favicon
		}
	}

	next := make([]domain.HistoryEntry, 0, len(rest)+1)
	next = append(next, entry)
	next = append(next, rest...)

	for len(next) > h.capacity {
		i := oldest(next)
		next = slices.Delete(next, i, i+1)
	}

	return History{entries: next, capacity: h.capacity}
}

// Remove drops the entries whose ids are listed. Unknown ids are ignored.
func (h History) Remove(ids ...string) History {
	if len(ids) == 0 || len(h.entries) == 0 {
		return h
	}
	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	next := make([]domain.HistoryEntry, 0, len(h.entries))
	for _, e := range h.entries {
		if !drop[e.ID] {
			next = append(next, e)
		}
	}
	return History{entries: next, capacity: h.capacity}
}

// Clear returns an empty history with the same capacity.
func (h History) Clear() History {
	return History{capacity: h.capacity}
}

// Entries returns a copy of the entries, newest first.
func (h History) Entries() []domain.HistoryEntry {
	return slices.Clone(h.entries)
}

// Len reports the number of entries.
func (h History) Len() int { return len(h.entries) }

// Cap reports the capacity.
func (h History) Cap() int {
	if h.capacity <= 0 {
		return domain.HistoryCapacity
	}
	return h.capacity
}

// Lookup returns the entry recorded for url.
func (h History) Lookup(url string) (domain.HistoryEntry, bool) {
	for _, e := range h.entries {
		if e.URL == url {
			return e, true
		}
	}
	return domain.HistoryEntry{}, false
}

// Search returns the entries whose title or URL contains query,
// case-insensitively. An empty query matches nothing.
func (h History) Search(query string) []domain.HistoryEntry {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}
	var out []domain.HistoryEntry
	for _, e := range h.entries {
		if strings.Contains(strings.ToLower(e.Title), q) || strings.Contains(strings.ToLower(e.URL), q) {
			out = append(out, e)
		}
	}
	return out
}

// oldest returns the index of the least recently visited entry. Ties go to
// the entry nearest the tail.
func oldest(entries []domain.HistoryEntry) int {
	idx := len(entries) - 1
	for i := len(entries) - 2; i >= 0; i-- {
		if entries[i].VisitedAt.Before(entries[idx].VisitedAt) {
			idx = i
		}
	}
	return idx
}
