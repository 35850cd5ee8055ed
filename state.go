package fsmx

import (
	"fmt"
	"slices"
)

// handler is the type-erased form of a typed On handler. ok is false when the
// event's dynamic type does not match the kind the handler was built for.
type handler[C any] func(ctx C, e Event) (d Directive, ok bool)

// State is the behaviour definition for one machine state. It holds no
// per-machine data: every hook receives the machine context C, so one State
// value may back any number of machines.
type State[C any] struct {
	id   StateID
	name string

	accepts  []EventID // sorted, unique
	handlers map[EventID]handler[C]

	onEnter   func(ctx C) Directive
	onExit    func(ctx C)
	onUnknown func(ctx C, e Event) Directive
}

// StateOption configures a State at construction.
type StateOption[C any] func(*State[C])

// NewState builds the state with the given table index and display name.
func NewState[C any](id StateID, name string, opts ...StateOption[C]) *State[C] {
	s := &State[C]{
		id:       id,
		name:     name,
		handlers: make(map[EventID]handler[C]),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// On registers fn as the handler for events of kind E and adds E's id to the
// state's accept set. E must report its id from the zero value.
func On[C any, E Event](fn func(ctx C, e E) Directive) StateOption[C] {
	var zero E
	id := zero.EventID()
	return func(s *State[C]) {
		s.addAccept(id)
		s.handlers[id] = func(ctx C, e Event) (Directive, bool) {
			typed, ok := e.(E)
			if !ok {
				return Stay(), false
			}
			return fn(ctx, typed), true
		}
	}
}

// Accepting declares ids in the accept set without attaching handlers.
// Such events still dispatch to the unknown handler.
func Accepting[C any](ids ...EventID) StateOption[C] {
	return func(s *State[C]) {
		for _, id := range ids {
			s.addAccept(id)
		}
	}
}

// OnEnter sets the entry hook. Its directive is interpreted like a handler's.
func OnEnter[C any](fn func(ctx C) Directive) StateOption[C] {
	return func(s *State[C]) {
		s.onEnter = fn
	}
}

// OnExit sets the exit hook.
func OnExit[C any](fn func(ctx C)) StateOption[C] {
	return func(s *State[C]) {
		s.onExit = fn
	}
}

// OnUnknown sets the fallback for events without a matching handler.
// Without one, such events are ignored.
func OnUnknown[C any](fn func(ctx C, e Event) Directive) StateOption[C] {
	return func(s *State[C]) {
		s.onUnknown = fn
	}
}

// ID returns the state's table index.
func (s *State[C]) ID() StateID { return s.id }

// Name returns the display name, or "state(<id>)" when none was given.
func (s *State[C]) Name() string {
	if s.name == "" {
		return fmt.Sprintf("state(%d)", s.id)
	}
	return s.name
}

// Accepts reports whether id is in the declared accept set.
func (s *State[C]) Accepts(id EventID) bool {
	_, found := slices.BinarySearch(s.accepts, id)
	return found
}

// AcceptSet returns a copy of the declared ids in ascending order.
func (s *State[C]) AcceptSet() []EventID {
	return slices.Clone(s.accepts)
}

// HasHandler reports whether a typed handler is registered for id.
func (s *State[C]) HasHandler(id EventID) bool {
	_, ok := s.handlers[id]
	return ok
}

func (s *State[C]) addAccept(id EventID) {
	i, found := slices.BinarySearch(s.accepts, id)
	if !found {
		s.accepts = slices.Insert(s.accepts, i, id)
	}
}

// dispatch resolves and runs the handler for e. handled is false when the
// unknown fallback (or its default) produced the directive.
func (s *State[C]) dispatch(ctx C, e Event) (d Directive, handled bool) {
	if h, ok := s.handlers[e.EventID()]; ok {
		if d, ok := h(ctx, e); ok {
			return d, true
		}
	}
	if s.onUnknown == nil {
		return Stay(), false
	}
	return s.onUnknown(ctx, e), false
}

func (s *State[C]) enter(ctx C) Directive {
	if s.onEnter == nil {
		return Stay()
	}
	return s.onEnter(ctx)
}

func (s *State[C]) exit(ctx C) {
	if s.onExit != nil {
		s.onExit(ctx)
	}
}

// StateInfo is a read-only description of a configured state.
type StateInfo struct {
	ID       StateID   `json:"id" yaml:"id"`
	Name     string    `json:"name" yaml:"name"`
	Accepts  []EventID `json:"accepts,omitempty" yaml:"accepts,omitempty"`
	Handled  []EventID `json:"handled,omitempty" yaml:"handled,omitempty"`
	HasEnter bool      `json:"hasEnter" yaml:"hasEnter"`
	HasExit  bool      `json:"hasExit" yaml:"hasExit"`
}

func (s *State[C]) info() StateInfo {
	handled := make([]EventID, 0, len(s.handlers))
	for id := range s.handlers {
		handled = append(handled, id)
	}
	slices.Sort(handled)
	return StateInfo{
		ID:       s.id,
		Name:     s.Name(),
		Accepts:  s.AcceptSet(),
		Handled:  handled,
		HasEnter: s.onEnter != nil,
		HasExit:  s.onExit != nil,
	}
}
