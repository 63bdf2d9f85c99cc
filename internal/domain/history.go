package domain

import "time"

// HistoryCapacity is the maximum number of retained history entries.
const HistoryCapacity = 1000

// HistoryEntry records visits to one distinct URL.
// URL is the unique key within the history collection.
type HistoryEntry struct {
	ID         string
	URL        string
	Title      string
	Favicon    string
	VisitedAt  time.Time // last visit
	VisitCount int       // >= 1
}
