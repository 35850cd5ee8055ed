package fsmx

import (
	"fmt"
	"slices"

	"github.com/sirupsen/logrus"
)

// Machine routes events to the active state of a fixed state table and
// applies the directives its hooks return.
//
// A Machine is not safe for concurrent use. Start, Receive, Reset and
// Configure must not overlap; run one machine per goroutine or serialise
// access externally.
type Machine[C any] struct {
	config

	id      RouterID
	ctx     C
	states  []*State[C]
	current StateID
	started bool
}

// NewMachine creates an unconfigured machine. ctx is handed to every hook.
func NewMachine[C any](id RouterID, ctx C, opts ...Option) *Machine[C] {
	m := &Machine[C]{
		id:      id,
		ctx:     ctx,
		current: NoState,
	}
	m.logger = logrus.StandardLogger()
	for _, opt := range opts {
		opt(&m.config)
	}
	return m
}

// ID returns the router id given to NewMachine.
func (m *Machine[C]) ID() RouterID { return m.id }

// Context returns the value passed to every hook.
func (m *Machine[C]) Context() C { return m.ctx }

// Configure installs the state table. Entry i must report id i. The machine
// is left stopped whether or not the table is accepted, and a rejected table
// leaves it unconfigured.
func (m *Machine[C]) Configure(states []*State[C]) error {
	m.states = nil
	m.started = false
	m.current = NoState

	if err := validateTable(states); err != nil {
		m.logger.WithField("router", m.id).WithError(err).Warn("rejected state table")
		return err
	}
	m.states = slices.Clone(states)
	m.logger.WithFields(logrus.Fields{"router": m.id, "states": len(states)}).Debug("configured state table")
	return nil
}

// IsConfigured reports whether a valid table is installed.
func (m *Machine[C]) IsConfigured() bool { return m.states != nil }

// Start activates the initial state (0 unless AtState is given) and, unless
// SkipEnter is given, runs its enter hook and follows the directive it
// returns. If that chain fails the machine is left stopped. A started machine
// must be Reset before it can be started again.
func (m *Machine[C]) Start(opts ...StartOption) error {
	sc := startConfig{initial: 0, enter: true}
	for _, opt := range opts {
		opt(&sc)
	}

	if m.states == nil {
		return ErrNotConfigured
	}
	if m.started {
		return ErrAlreadyStarted
	}
	if !m.valid(sc.initial) {
		return fmt.Errorf("%w: initial state %d", ErrInvalidState, sc.initial)
	}

	m.started = true
	m.current = sc.initial
	initial := m.states[m.current]
	m.logger.WithFields(logrus.Fields{"router": m.id, "state": initial.Name()}).Debug("machine started")
	m.notify(Record{Kind: RecordStart, Event: NoEvent, From: NoState, To: initial.id, ToName: initial.Name()})

	if !sc.enter {
		return nil
	}

	d := initial.enter(m.ctx)
	m.notify(Record{Kind: RecordEnter, Event: NoEvent, From: NoState, To: initial.id, ToName: initial.Name(), Directive: d})
	if err := m.interpret(NoEvent, d); err != nil {
		m.started = false
		m.current = NoState
		return fmt.Errorf("start: %w", err)
	}
	return nil
}

// Reset stops the machine without running exit hooks. The table is kept.
func (m *Machine[C]) Reset() {
	if m.started {
		m.notify(Record{Kind: RecordReset, Event: NoEvent, From: m.current, FromName: m.states[m.current].Name(), To: NoState})
	}
	m.started = false
	m.current = NoState
}

// IsStarted reports whether Start has succeeded since the last Configure or Reset.
func (m *Machine[C]) IsStarted() bool { return m.started }

// CurrentStateID returns the active state, or NoState before Start.
func (m *Machine[C]) CurrentStateID() StateID {
	if !m.started {
		return NoState
	}
	return m.current
}

// CurrentState returns the active state, or nil before Start.
func (m *Machine[C]) CurrentState() *State[C] {
	if !m.started {
		return nil
	}
	return m.states[m.current]
}

// Accepts reports whether the current state declares id in its accept set.
// The answer is informational: dispatch does not consult it.
func (m *Machine[C]) Accepts(id EventID) bool {
	if !m.started {
		return false
	}
	return m.states[m.current].Accepts(id)
}

// AcceptsEvent is Accepts for the id of e.
func (m *Machine[C]) AcceptsEvent(e Event) bool {
	if e == nil {
		return false
	}
	return m.Accepts(e.EventID())
}

// Describe returns a description of the configured table.
func (m *Machine[C]) Describe() []StateInfo {
	infos := make([]StateInfo, len(m.states))
	for i, s := range m.states {
		infos[i] = s.info()
	}
	return infos
}

// StateName returns the display name of id.
func (m *Machine[C]) StateName(id StateID) string {
	if !m.valid(id) {
		return fmt.Sprintf("state(%d)", id)
	}
	return m.states[id].Name()
}

// EventName returns the catalog name of id.
func (m *Machine[C]) EventName(id EventID) string {
	return m.catalog.Name(id)
}

// Receive delivers e to the current state and applies the resulting
// directive, including any transitions requested by enter hooks along the
// way. Events queued by hooks are left for the caller to deliver.
func (m *Machine[C]) Receive(e Event) error {
	if !m.started {
		return ErrNotStarted
	}
	if e == nil {
		return ErrNilEvent
	}

	id := e.EventID()
	state := m.states[m.current]
	log := m.logger.WithFields(logrus.Fields{
		"router": m.id,
		"state":  state.Name(),
		"event":  m.catalog.Name(id),
	})
	log.Debug("dispatching event")

	d, handled := state.dispatch(m.ctx, e)
	kind := RecordDispatch
	if !handled {
		kind = RecordUnknown
		log.Debug("no handler for event")
	}
	m.notify(Record{
		Kind:      kind,
		Event:     id,
		EventName: m.catalog.Name(id),
		From:      state.id,
		FromName:  state.Name(),
		To:        state.id,
		ToName:    state.Name(),
		Directive: d,
	})

	return m.interpret(id, d)
}

// interpret applies d and every directive returned by the enter hooks it
// triggers, up to the chain limit.
func (m *Machine[C]) interpret(ev EventID, d Directive) error {
	limit := m.chainLimit()
	for steps := 0; ; steps++ {
		switch d.Kind {
		case DirectiveStay:
			return nil
		case DirectiveFail:
			if d.Err == nil {
				return nil
			}
			return fmt.Errorf("state %s: %w", m.states[m.current].Name(), d.Err)
		case DirectiveGoTo:
			if d.Target == m.current {
				return nil
			}
			if !m.valid(d.Target) {
				return fmt.Errorf("%w: %d requested by state %s", ErrInvalidState, d.Target, m.states[m.current].Name())
			}
		case DirectiveSelf:
		default:
			return fmt.Errorf("fsmx: unknown directive kind %d", d.Kind)
		}

		if steps == limit {
			err := &ChainError{State: m.current, Limit: limit}
			m.logger.WithField("router", m.id).WithError(err).Error("transition chain aborted")
			return err
		}
		d = m.step(ev, d)
	}
}

// step runs one exit/enter pair and returns the new state's enter directive.
func (m *Machine[C]) step(ev EventID, d Directive) Directive {
	from := m.states[m.current]
	to := from
	kind := RecordSelf
	if d.Kind == DirectiveGoTo {
		to = m.states[d.Target]
		kind = RecordTransition
	}
	evName := ""
	if ev != NoEvent {
		evName = m.catalog.Name(ev)
	}

	m.logger.WithFields(logrus.Fields{"router": m.id, "state": from.Name()}).Debug("exiting state")
	from.exit(m.ctx)
	m.notify(Record{Kind: RecordExit, Event: ev, EventName: evName, From: from.id, FromName: from.Name(), To: to.id, ToName: to.Name()})

	m.current = to.id
	m.notify(Record{Kind: kind, Event: ev, EventName: evName, From: from.id, FromName: from.Name(), To: to.id, ToName: to.Name(), Directive: d})

	m.logger.WithFields(logrus.Fields{"router": m.id, "state": to.Name()}).Debug("entering state")
	next := to.enter(m.ctx)
	m.notify(Record{Kind: RecordEnter, Event: ev, EventName: evName, From: from.id, FromName: from.Name(), To: to.id, ToName: to.Name(), Directive: next})
	return next
}

func (m *Machine[C]) chainLimit() int {
	if m.maxChain > 0 {
		return m.maxChain
	}
	return len(m.states)
}

func (m *Machine[C]) valid(id StateID) bool {
	return id >= 0 && int(id) < len(m.states)
}

func (m *Machine[C]) notify(rec Record) {
	rec.Router = m.id
	for _, o := range m.observers {
		o.Observe(rec)
	}
}
