package realtime

import (
	"sort"

	"github.com/comalice/fsmx"
)

// EventWithMeta adds sequencing metadata for deterministic ordering.
type EventWithMeta struct {
	Event       fsmx.Event
	SequenceNum uint64
	Priority    int
}

// sortEvents orders higher priorities first and keeps submission order
// within a priority.
func sortEvents(events []EventWithMeta) {
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].Priority != events[j].Priority {
			return events[i].Priority > events[j].Priority
		}
		return events[i].SequenceNum < events[j].SequenceNum
	})
}
