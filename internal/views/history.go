package views

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"github.com/MrSnakeDoc/tabshell/internal/domain"
)

const (
	TodayLabel     = "Today"
	YesterdayLabel = "Yesterday"
)

// HistoryGroup is one calendar day of history.
type HistoryGroup struct {
	Title   string                `json:"title"`
	Entries []domain.HistoryEntry `json:"entries"`
}

// GroupHistoryByDate buckets entries by calendar day in loc. Days read
// "Today", "Yesterday" or M/D/YYYY. Groups and their entries are ordered
// newest first.
func GroupHistoryByDate(entries []domain.HistoryEntry, now time.Time, loc *time.Location) []HistoryGroup {
	if loc == nil {
		loc = time.Local
	}
	today := dayOf(now, loc)
	yesterday := today.AddDate(0, 0, -1)

	sorted := slices.Clone(entries)
	slices.SortStableFunc(sorted, newestFirst)

	var groups []HistoryGroup
	index := make(map[time.Time]int)
	for _, e := range sorted {
		day := dayOf(e.VisitedAt, loc)
		i, ok := index[day]
		if !ok {
			i = len(groups)
			index[day] = i
			groups = append(groups, HistoryGroup{Title: dayLabel(day, today, yesterday)})
		}
		groups[i].Entries = append(groups[i].Entries, e)
	}
	return groups
}

// HistoryOnDate returns the entries last visited on the calendar day of
// date in loc.
func HistoryOnDate(entries []domain.HistoryEntry, date time.Time, loc *time.Location) []domain.HistoryEntry {
	if loc == nil {
		loc = time.Local
	}
	day := dayOf(date, loc)
	var out []domain.HistoryEntry
	for _, e := range entries {
		if dayOf(e.VisitedAt, loc).Equal(day) {
			out = append(out, e)
		}
	}
	return out
}

// RecentHistory returns at most limit entries, newest first.
func RecentHistory(entries []domain.HistoryEntry, limit int) []domain.HistoryEntry {
	sorted := slices.Clone(entries)
	slices.SortStableFunc(sorted, newestFirst)
	return head(sorted, limit)
}

// MostVisited returns at most limit entries by descending visit count.
// Equal counts keep the most recent first.
func MostVisited(entries []domain.HistoryEntry, limit int) []domain.HistoryEntry {
	sorted := slices.Clone(entries)
	slices.SortStableFunc(sorted, func(a, b domain.HistoryEntry) int {
		if c := cmp.Compare(b.VisitCount, a.VisitCount); c != 0 {
			return c
		}
		return newestFirst(a, b)
	})
	return head(sorted, limit)
}

// SearchHistory filters entries whose title or URL contains query,
// case-insensitively. A blank query matches nothing.
func SearchHistory(entries []domain.HistoryEntry, query string) []domain.HistoryEntry {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}
	var out []domain.HistoryEntry
	for _, e := range entries {
		if matches(e, q) {
			out = append(out, e)
		}
	}
	return out
}

func matches(e domain.HistoryEntry, lowerQuery string) bool {
	return strings.Contains(strings.ToLower(e.URL), lowerQuery) ||
		strings.Contains(strings.ToLower(e.Title), lowerQuery)
}

func newestFirst(a, b domain.HistoryEntry) int {
	return b.VisitedAt.Compare(a.VisitedAt)
}

func dayOf(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

func dayLabel(day, today, yesterday time.Time) string {
	switch {
	case day.Equal(today):
		return TodayLabel
	case day.Equal(yesterday):
		return YesterdayLabel
	default:
		return day.Format("1/2/2006")
	}
}

func head[T any](s []T, limit int) []T {
	if limit >= 0 && len(s) > limit {
		return s[:limit]
	}
	return s
}
