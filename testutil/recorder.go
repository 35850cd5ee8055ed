// Package testutil provides helpers shared by tests of fsmx and its runners.
package testutil

import (
	"sync"

	"github.com/comalice/fsmx"
)

// Recorder is an fsmx.Observer that keeps every record it sees.
type Recorder struct {
	mu      sync.Mutex
	records []fsmx.Record
}

func (r *Recorder) Observe(rec fsmx.Record) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, rec)
}

// Records returns a copy of everything observed so far.
func (r *Recorder) Records() []fsmx.Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]fsmx.Record, len(r.records))
	copy(out, r.records)
	return out
}

// Kinds returns the kind of each record, in order.
func (r *Recorder) Kinds() []fsmx.RecordKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	kinds := make([]fsmx.RecordKind, len(r.records))
	for i, rec := range r.records {
		kinds[i] = rec.Kind
	}
	return kinds
}

// Count returns how many records of kind were observed.
func (r *Recorder) Count(kind fsmx.RecordKind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, rec := range r.records {
		if rec.Kind == kind {
			n++
		}
	}
	return n
}

// Reset discards all records.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = nil
}
