// Package benchmarks provides shared helpers for benchmark tests.
package benchmarks

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/comalice/fsmx"
	"github.com/comalice/fsmx/internal/scenario"
)

// Event ids used by the generated tables.
const (
	TickID fsmx.EventID = iota
	NoiseID
)

// Tick advances a ring machine to the next state.
type Tick struct{}

func (Tick) EventID() fsmx.EventID { return TickID }

// Noise is accepted by no generated state.
type Noise struct{}

func (Noise) EventID() fsmx.EventID { return NoiseID }

// Counter is the hook context of generated machines.
type Counter struct {
	Ticks   int
	Unknown int
	Enters  int
	Exits   int
}

// Ring creates n states where Tick moves state i to (i+1) mod n. With n == 1
// every Tick is a self-transition.
func Ring(n int) []*fsmx.State[*Counter] {
	if n < 1 {
		n = 1
	}
	states := make([]*fsmx.State[*Counter], n)
	for i := range states {
		next := fsmx.StateID((i + 1) % n)
		states[i] = fsmx.NewState[*Counter](fsmx.StateID(i), fmt.Sprintf("s%d", i),
			fsmx.On(func(c *Counter, _ Tick) fsmx.Directive {
				c.Ticks++
				if n == 1 {
					return fsmx.SelfTransition()
				}
				return fsmx.GoTo(next)
			}),
			fsmx.OnUnknown(func(c *Counter, _ fsmx.Event) fsmx.Directive {
				c.Unknown++
				return fsmx.Stay()
			}),
			fsmx.OnEnter(func(c *Counter) fsmx.Directive {
				c.Enters++
				return fsmx.Stay()
			}),
			fsmx.OnExit(func(c *Counter) {
				c.Exits++
			}),
		)
	}
	return states
}

// Chain creates n states whose enter hooks forward to the next state, so one
// Tick in state 0 walks the whole table before settling in the last state. A
// Tick in the last state returns to state 0.
func Chain(n int) []*fsmx.State[*Counter] {
	if n < 2 {
		n = 2
	}
	states := make([]*fsmx.State[*Counter], n)
	for i := range states {
		next := fsmx.StateID(i + 1)
		forward := i > 0 && i < n-1
		target := fsmx.StateID(1)
		if i == n-1 {
			target = 0
		}
		opts := []fsmx.StateOption[*Counter]{
			fsmx.OnEnter(func(c *Counter) fsmx.Directive {
				c.Enters++
				if forward {
					return fsmx.GoTo(next)
				}
				return fsmx.Stay()
			}),
		}
		if i == 0 || i == n-1 {
			opts = append(opts, fsmx.On(func(c *Counter, _ Tick) fsmx.Directive {
				c.Ticks++
				return fsmx.GoTo(target)
			}))
		}
		states[i] = fsmx.NewState[*Counter](fsmx.StateID(i), fmt.Sprintf("c%d", i), opts...)
	}
	return states
}

// NewMachine configures and starts a machine over states.
func NewMachine(states []*fsmx.State[*Counter], opts ...fsmx.Option) (*fsmx.Machine[*Counter], error) {
	m := fsmx.NewMachine(0, &Counter{}, opts...)
	if err := m.Configure(states); err != nil {
		return nil, err
	}
	if err := m.Start(fsmx.SkipEnter()); err != nil {
		return nil, err
	}
	return m, nil
}

// GenScenarioYAML generates a motor scenario document: a Start followed by
// steps-1 speed changes.
func GenScenarioYAML(steps int) []byte {
	enter := false
	s := scenario.Scenario{
		Name:  fmt.Sprintf("gen_%d", steps),
		Start: scenario.StartClause{State: "Idle", Enter: &enter},
		Steps: []scenario.Step{{Event: "Start"}},
	}
	for i := 1; i < steps; i++ {
		s.Steps = append(s.Steps, scenario.Step{
			Event:  "Set Speed",
			Params: map[string]any{"speed": i},
		})
	}
	data, err := yaml.Marshal(s)
	if err != nil {
		panic(err)
	}
	return data
}
