package cli

import (
	"sort"

	"github.com/comalice/fsmx"
	"github.com/comalice/fsmx/examples/motor"
	"github.com/comalice/fsmx/internal/scenario"
	"github.com/comalice/fsmx/realtime"
)

// machineDef describes a machine the CLI can build by name.
type machineDef struct {
	Catalog *fsmx.Catalog
	Decode  scenario.Decoder
	// New returns a configured machine and the source of its queued events.
	New func(opts ...fsmx.Option) (scenario.Machine, realtime.Source, error)
}

var machines = map[string]machineDef{
	"motor": {
		Catalog: motor.Catalog(),
		Decode:  motor.Decode,
		New: func(opts ...fsmx.Option) (scenario.Machine, realtime.Source, error) {
			m, err := motor.New(opts...)
			if err != nil {
				return nil, nil, err
			}
			return m, m.Context(), nil
		},
	},
}

func lookupMachine(name string) (machineDef, bool) {
	def, ok := machines[name]
	return def, ok
}

func machineNames() []string {
	names := make([]string, 0, len(machines))
	for name := range machines {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
