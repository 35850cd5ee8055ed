package scenario

import (
	"errors"
	"fmt"
	"strings"

	"github.com/comalice/fsmx"
	"github.com/comalice/fsmx/realtime"
)

// MaxDrain bounds the number of queued events delivered for one step.
const MaxDrain = 64

// ErrUnknownState is returned when a scenario names a state the machine
// does not have.
var ErrUnknownState = errors.New("scenario: unknown state")

// Machine is what Run drives. *fsmx.Machine satisfies it for any context.
type Machine interface {
	Start(opts ...fsmx.StartOption) error
	Receive(e fsmx.Event) error
	CurrentStateID() fsmx.StateID
	StateName(id fsmx.StateID) string
	EventName(id fsmx.EventID) string
	Describe() []fsmx.StateInfo
}

// Decoder builds an event from its catalog name and parameters.
type Decoder func(name string, params map[string]any) (fsmx.Event, error)

// Result is the trace of a run.
type Result struct {
	Name     string       `json:"name" yaml:"name"`
	Steps    []StepResult `json:"steps" yaml:"steps"`
	Final    string       `json:"final" yaml:"final"`
	Failures []string     `json:"failures,omitempty" yaml:"failures,omitempty"`
}

// StepResult records one delivery. Drained events appear as their own
// entries with Drained set.
type StepResult struct {
	Step    int    `json:"step" yaml:"step"`
	Event   string `json:"event" yaml:"event"`
	From    string `json:"from" yaml:"from"`
	To      string `json:"to" yaml:"to"`
	Drained bool   `json:"drained,omitempty" yaml:"drained,omitempty"`
	Error   string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Passed reports whether every expectation held.
func (r *Result) Passed() bool { return len(r.Failures) == 0 }

// Run starts m and plays s against it. A step's expectations are checked
// after its drain, if any. Receive errors and unmet expectations are
// collected in the result; decode and start failures abort the run. drain
// may be nil when no step sets drain.
func Run(s *Scenario, m Machine, decode Decoder, drain realtime.Source) (*Result, error) {
	opts, err := startOptions(s.Start, m)
	if err != nil {
		return nil, err
	}
	if err := m.Start(opts...); err != nil {
		return nil, fmt.Errorf("start: %w", err)
	}

	res := &Result{Name: s.Name}
	for i, step := range s.Steps {
		n := i + 1
		ev, err := decode(step.Event, step.Params)
		if err != nil {
			return res, fmt.Errorf("step %d: %w", n, err)
		}

		sr, recvErr := deliver(m, n, step.Event, ev)
		res.Steps = append(res.Steps, sr)
		errs := []stepError{{event: step.Event, err: recvErr}}

		if step.Drain {
			if drain == nil {
				return res, fmt.Errorf("step %d: drain requested without a source", n)
			}
			drained := 0
			for {
				if drained == MaxDrain {
					res.fail("step %d: drain limit %d reached", n, MaxDrain)
					break
				}
				next, ok := drain.Next()
				if !ok {
					break
				}
				dr, err := deliver(m, n, m.EventName(next.EventID()), next)
				dr.Drained = true
				res.Steps = append(res.Steps, dr)
				errs = append(errs, stepError{event: dr.Event, drained: true, err: err})
				drained++
			}
		}

		res.check(n, step.Expect, m, errs)
	}

	res.Final = m.StateName(m.CurrentStateID())
	if s.Expect != nil && s.Expect.State != "" && s.Expect.State != res.Final {
		res.fail("final state: got %q, want %q", res.Final, s.Expect.State)
	}
	return res, nil
}

func deliver(m Machine, n int, name string, ev fsmx.Event) (StepResult, error) {
	sr := StepResult{Step: n, Event: name, From: m.StateName(m.CurrentStateID())}
	err := m.Receive(ev)
	if err != nil {
		sr.Error = err.Error()
	}
	sr.To = m.StateName(m.CurrentStateID())
	return sr, err
}

// stepError is the outcome of one delivery within a step.
type stepError struct {
	event   string
	drained bool
	err     error
}

// check applies a step's expectations once the step and its drain are done.
// An expected error may come from any delivery of the step; without one,
// every error is a failure.
func (r *Result) check(n int, want *Expect, m Machine, errs []stepError) {
	if want != nil && want.Error != "" {
		matched := false
		var got []string
		for _, e := range errs {
			if e.err == nil {
				continue
			}
			got = append(got, e.err.Error())
			if strings.Contains(e.err.Error(), want.Error) {
				matched = true
			}
		}
		switch {
		case matched:
		case len(got) == 0:
			r.fail("step %d: expected error containing %q", n, want.Error)
		default:
			r.fail("step %d: error %q does not contain %q", n, strings.Join(got, "; "), want.Error)
		}
	} else {
		for _, e := range errs {
			switch {
			case e.err == nil:
			case e.drained:
				r.fail("step %d: drained %s: %v", n, e.event, e.err)
			default:
				r.fail("step %d: %v", n, e.err)
			}
		}
	}
	if want != nil && want.State != "" {
		if got := m.StateName(m.CurrentStateID()); got != want.State {
			r.fail("step %d: state %q, want %q", n, got, want.State)
		}
	}
}

func (r *Result) fail(format string, args ...any) {
	r.Failures = append(r.Failures, fmt.Sprintf(format, args...))
}

func startOptions(sc StartClause, m Machine) ([]fsmx.StartOption, error) {
	var opts []fsmx.StartOption
	if sc.State != "" {
		id, err := StateByName(m.Describe(), sc.State)
		if err != nil {
			return nil, err
		}
		opts = append(opts, fsmx.AtState(id))
	}
	if !sc.EnterOnStart() {
		opts = append(opts, fsmx.SkipEnter())
	}
	return opts, nil
}

// StateByName resolves a state name against a table description.
func StateByName(table []fsmx.StateInfo, name string) (fsmx.StateID, error) {
	for _, info := range table {
		if info.Name == name {
			return info.ID, nil
		}
	}
	return fsmx.NoState, fmt.Errorf("%w: %q", ErrUnknownState, name)
}
