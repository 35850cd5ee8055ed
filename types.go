package fsmx

import "fmt"

// StateID is a dense, zero-based index into a machine's state table.
type StateID int

// EventID identifies the concrete kind of an event.
type EventID int

// RouterID identifies a machine instance. It is carried through to observers
// and logs but never interpreted by the engine.
type RouterID int

// NoState is reported by a machine that has not been started.
const NoState StateID = -1

// NoEvent marks records that were not caused by an incoming event, such as
// the enter chain run by Start.
const NoEvent EventID = -1

// DirectiveKind enumerates the outcomes a handler may request.
type DirectiveKind uint8

const (
	// DirectiveStay keeps the current state; no exit or enter hook runs.
	DirectiveStay DirectiveKind = iota
	// DirectiveSelf re-runs the exit then enter hooks of the current state.
	DirectiveSelf
	// DirectiveGoTo moves to Directive.Target.
	DirectiveGoTo
	// DirectiveFail aborts the chain and surfaces Directive.Err to the caller.
	DirectiveFail
)

func (k DirectiveKind) String() string {
	switch k {
	case DirectiveStay:
		return "stay"
	case DirectiveSelf:
		return "self"
	case DirectiveGoTo:
		return "goto"
	case DirectiveFail:
		return "fail"
	default:
		return fmt.Sprintf("directive(%d)", uint8(k))
	}
}

// Directive is the result of a handler or enter hook.
type Directive struct {
	Kind   DirectiveKind
	Target StateID
	Err    error
}

// Stay keeps the machine in its current state.
func Stay() Directive { return Directive{Kind: DirectiveStay, Target: NoState} }

// SelfTransition exits and re-enters the current state.
func SelfTransition() Directive { return Directive{Kind: DirectiveSelf, Target: NoState} }

// GoTo requests a transition to id. Returning the current state's own id is
// the same as Stay.
func GoTo(id StateID) Directive { return Directive{Kind: DirectiveGoTo, Target: id} }

// Fail stops interpretation and makes Receive (or Start) return err.
// The machine stays in whatever state it had reached. Fail(nil) is Stay.
func Fail(err error) Directive { return Directive{Kind: DirectiveFail, Target: NoState, Err: err} }

func (d Directive) String() string {
	switch d.Kind {
	case DirectiveGoTo:
		return fmt.Sprintf("goto(%d)", d.Target)
	case DirectiveFail:
		return fmt.Sprintf("fail(%v)", d.Err)
	default:
		return d.Kind.String()
	}
}
