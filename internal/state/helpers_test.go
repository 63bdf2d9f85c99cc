package state

import (
	"fmt"
	"time"
)

// seqIDs returns an id generator yielding id-1, id-2, ...
func seqIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

// tickingClock advances one second on every call.
func tickingClock(start time.Time) func() time.Time {
	cur := start
	return func() time.Time {
		cur = cur.Add(time.Second)
		return cur
	}
}

var epoch = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

func newTestStore(opts ...Option) *Store {
	base := []Option{WithIDGenerator(seqIDs()), WithClock(tickingClock(epoch))}
	return New(append(base, opts...)...)
}
