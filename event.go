package fsmx

import (
	"fmt"
	"strings"
	"sync"

	"golang.org/x/text/unicode/norm"
)

// Event is an immutable value of a concrete kind. Each kind reports the same
// stable id for every value, so EventID must not depend on payload fields and
// must be callable on the zero value.
type Event interface {
	EventID() EventID
}

// Catalog maps event ids to human readable names. It is used for logs,
// observers and for decoding events by name; dispatch never consults it.
type Catalog struct {
	mu    sync.RWMutex
	names map[EventID]string
	ids   map[string]EventID
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		names: make(map[EventID]string),
		ids:   make(map[string]EventID),
	}
}

// Register binds name to id. Names are NFC normalised and trimmed; both the id
// and the normalised name must be unused.
func (c *Catalog) Register(id EventID, name string) error {
	key := canonicalName(name)
	if key == "" {
		return fmt.Errorf("fsmx: empty name for event %d", id)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if prev, ok := c.names[id]; ok {
		return fmt.Errorf("fsmx: event %d already registered as %q", id, prev)
	}
	if prev, ok := c.ids[key]; ok {
		return fmt.Errorf("fsmx: name %q already registered for event %d", key, prev)
	}
	c.names[id] = key
	c.ids[key] = id
	return nil
}

// MustRegister is Register for package-level catalogs; it panics on error.
func (c *Catalog) MustRegister(id EventID, name string) *Catalog {
	if err := c.Register(id, name); err != nil {
		panic(err)
	}
	return c
}

// Name returns the registered name of id, or "event(<id>)".
func (c *Catalog) Name(id EventID) string {
	if c == nil {
		return fmt.Sprintf("event(%d)", id)
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	if name, ok := c.names[id]; ok {
		return name
	}
	return fmt.Sprintf("event(%d)", id)
}

// Lookup resolves a name to its id.
func (c *Catalog) Lookup(name string) (EventID, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	id, ok := c.ids[canonicalName(name)]
	return id, ok
}

// Len returns the number of registered events.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.names)
}

func canonicalName(name string) string {
	return strings.TrimSpace(norm.NFC.String(name))
}
