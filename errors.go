package fsmx

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyTable is returned by Configure for a nil or zero-length table.
	ErrEmptyTable = errors.New("fsmx: state table is empty")
	// ErrNilState is returned by Configure when a table entry is nil.
	ErrNilState = errors.New("fsmx: state table contains a nil state")
	// ErrStateOrder is returned by Configure when entry i does not have id i.
	ErrStateOrder = errors.New("fsmx: state table is out of order")

	// ErrNotConfigured is returned by Start before a table has been accepted.
	ErrNotConfigured = errors.New("fsmx: machine has no state table")
	// ErrNotStarted is returned by Receive before Start or after Reset.
	ErrNotStarted = errors.New("fsmx: machine not started")
	// ErrAlreadyStarted is returned by Start on a running machine; Reset first.
	ErrAlreadyStarted = errors.New("fsmx: machine already started")
	// ErrNilEvent is returned when a nil Event is delivered.
	ErrNilEvent = errors.New("fsmx: nil event")
	// ErrInvalidState reports a start or GoTo target outside the table.
	ErrInvalidState = errors.New("fsmx: state id out of range")
	// ErrTransitionLoop is wrapped by ChainError.
	ErrTransitionLoop = errors.New("fsmx: transition chain exceeded limit")
)

// ConfigErrorCode categorises table validation failures.
type ConfigErrorCode string

const (
	// ConfigEmpty: the table is nil or has no entries.
	ConfigEmpty ConfigErrorCode = "EMPTY"
	// ConfigNullEntry: an entry is nil.
	ConfigNullEntry ConfigErrorCode = "NULL_ENTRY"
	// ConfigOrderMismatch: entry i does not report id i.
	ConfigOrderMismatch ConfigErrorCode = "ORDER_MISMATCH"
)

// ConfigError describes why Configure rejected a state table.
type ConfigError struct {
	Code ConfigErrorCode

	// Index is the offending table position, or -1 for ConfigEmpty.
	Index int

	// Got is the id reported by the entry at Index (ConfigOrderMismatch only).
	Got StateID
}

func (e *ConfigError) Error() string {
	switch e.Code {
	case ConfigNullEntry:
		return fmt.Sprintf("%v (index %d)", ErrNilState, e.Index)
	case ConfigOrderMismatch:
		return fmt.Sprintf("%v (index %d holds state %d)", ErrStateOrder, e.Index, e.Got)
	default:
		return ErrEmptyTable.Error()
	}
}

// Unwrap maps the code onto its sentinel so callers can use errors.Is.
func (e *ConfigError) Unwrap() error {
	switch e.Code {
	case ConfigNullEntry:
		return ErrNilState
	case ConfigOrderMismatch:
		return ErrStateOrder
	default:
		return ErrEmptyTable
	}
}

// IsConfigError reports whether err came from table validation.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

// ChainError is returned when enter hooks keep requesting transitions
// beyond the machine's chain limit.
type ChainError struct {
	State StateID // state whose enter hook asked for one more step
	Limit int
}

func (e *ChainError) Error() string {
	return fmt.Sprintf("%v: %d steps, last state %d", ErrTransitionLoop, e.Limit, e.State)
}

func (e *ChainError) Unwrap() error { return ErrTransitionLoop }
