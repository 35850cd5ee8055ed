// Package packet stores events of differing concrete types behind one
// value type so they can share a queue.
package packet

import (
	"errors"
	"fmt"
	"slices"

	"github.com/comalice/fsmx"
)

// ErrUnsupported is returned when packing an event kind outside the Set.
var ErrUnsupported = errors.New("packet: unsupported event kind")

// Packet holds one event by value. The zero Packet is empty.
type Packet struct {
	ev fsmx.Event
}

// Event returns the stored event, or nil for an empty packet.
func (p Packet) Event() fsmx.Event { return p.ev }

// ID returns the stored event's id, or fsmx.NoEvent when empty.
func (p Packet) ID() fsmx.EventID {
	if p.ev == nil {
		return fsmx.NoEvent
	}
	return p.ev.EventID()
}

// Valid reports whether the packet holds an event.
func (p Packet) Valid() bool { return p.ev != nil }

// As returns the stored event as T.
func As[T fsmx.Event](p Packet) (T, bool) {
	v, ok := p.ev.(T)
	return v, ok
}

// Set is the bounded collection of event kinds a Packet may carry.
type Set struct {
	ids []fsmx.EventID // sorted
}

// NewSet builds a set from sample values, one per kind (zero values will do).
func NewSet(kinds ...fsmx.Event) *Set {
	s := &Set{}
	for _, k := range kinds {
		id := k.EventID()
		i, found := slices.BinarySearch(s.ids, id)
		if !found {
			s.ids = slices.Insert(s.ids, i, id)
		}
	}
	return s
}

// Accepts reports whether id is one of the set's kinds.
func (s *Set) Accepts(id fsmx.EventID) bool {
	_, found := slices.BinarySearch(s.ids, id)
	return found
}

// IDs returns the kinds in ascending order.
func (s *Set) IDs() []fsmx.EventID { return slices.Clone(s.ids) }

// Pack copies e into a Packet.
func (s *Set) Pack(e fsmx.Event) (Packet, error) {
	if e == nil {
		return Packet{}, fmt.Errorf("%w: nil event", ErrUnsupported)
	}
	if !s.Accepts(e.EventID()) {
		return Packet{}, fmt.Errorf("%w: %d", ErrUnsupported, e.EventID())
	}
	return Packet{ev: e}, nil
}
