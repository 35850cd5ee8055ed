package fsmx

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics is an Observer that counts dispatches and transitions.
//
//   - fsmx_events_total{router,state,result}: result is "handled" or "unknown"
//   - fsmx_transitions_total{router,from,to,kind}: kind is "transition" or "self"
type Metrics struct {
	events      *prometheus.CounterVec
	transitions *prometheus.CounterVec
}

// NewMetrics creates unregistered collectors; see Register.
func NewMetrics() *Metrics {
	return &Metrics{
		events: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fsmx_events_total",
				Help: "Events delivered to a machine, by state and result.",
			},
			[]string{"router", "state", "result"},
		),
		transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fsmx_transitions_total",
				Help: "State changes performed, including self transitions.",
			},
			[]string{"router", "from", "to", "kind"},
		),
	}
}

// Register adds the collectors to reg.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	if err := reg.Register(m.events); err != nil {
		return err
	}
	return reg.Register(m.transitions)
}

// Events exposes the event counter, mainly for tests.
func (m *Metrics) Events() *prometheus.CounterVec { return m.events }

// Transitions exposes the transition counter, mainly for tests.
func (m *Metrics) Transitions() *prometheus.CounterVec { return m.transitions }

func (m *Metrics) Observe(rec Record) {
	router := strconv.Itoa(int(rec.Router))
	switch rec.Kind {
	case RecordDispatch:
		m.events.WithLabelValues(router, rec.FromName, "handled").Inc()
	case RecordUnknown:
		m.events.WithLabelValues(router, rec.FromName, "unknown").Inc()
	case RecordTransition, RecordSelf:
		m.transitions.WithLabelValues(router, rec.FromName, rec.ToName, string(rec.Kind)).Inc()
	}
}
