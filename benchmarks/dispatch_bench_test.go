package benchmarks

import (
	"fmt"
	"io"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/comalice/fsmx"
	"github.com/comalice/fsmx/examples/motor"
	"github.com/comalice/fsmx/internal/scenario"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func benchmarkRing(b *testing.B, n int, opts ...fsmx.Option) {
	opts = append([]fsmx.Option{fsmx.WithLogger(quietLogger())}, opts...)
	m, err := NewMachine(Ring(n), opts...)
	if err != nil {
		b.Fatal(err)
	}
	e := Tick{}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := m.Receive(e); err != nil {
			b.Fatal(err)
		}
	}
	b.StopTimer()
	if m.Context().Ticks != b.N {
		b.Fatalf("ticks = %d, want %d", m.Context().Ticks, b.N)
	}
}

func BenchmarkTransitionRing1(b *testing.B)   { benchmarkRing(b, 1) }
func BenchmarkTransitionRing10(b *testing.B)  { benchmarkRing(b, 10) }
func BenchmarkTransitionRing100(b *testing.B) { benchmarkRing(b, 100) }

func BenchmarkTransitionWithObserver(b *testing.B) {
	var n int
	benchmarkRing(b, 10, fsmx.WithObserver(fsmx.ObserverFunc(func(fsmx.Record) { n++ })))
	if n == 0 {
		b.Fatal("observer never called")
	}
}

func BenchmarkTransitionWithMetrics(b *testing.B) {
	metrics := fsmx.NewMetrics()
	if err := metrics.Register(prometheus.NewRegistry()); err != nil {
		b.Fatal(err)
	}
	benchmarkRing(b, 10, fsmx.WithObserver(metrics))
}

func BenchmarkUnknownEvent(b *testing.B) {
	m, err := NewMachine(Ring(10), fsmx.WithLogger(quietLogger()))
	if err != nil {
		b.Fatal(err)
	}
	e := Noise{}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := m.Receive(e); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkEnterChain(b *testing.B) {
	for _, n := range []int{2, 16, 64} {
		b.Run(fmt.Sprintf("n=%d", n), func(b *testing.B) {
			m, err := NewMachine(Chain(n), fsmx.WithLogger(quietLogger()))
			if err != nil {
				b.Fatal(err)
			}
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if err := m.Receive(Tick{}); err != nil {
					b.Fatal(err)
				}
				if err := m.Receive(Tick{}); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkAccepts(b *testing.B) {
	m, err := NewMachine(Ring(10), fsmx.WithLogger(quietLogger()))
	if err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = m.Accepts(fsmx.EventID(i & 1))
	}
}

func BenchmarkScenarioParse(b *testing.B) {
	data := GenScenarioYAML(100)
	b.SetBytes(int64(len(data)))
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := scenario.Parse(data); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkScenarioRun(b *testing.B) {
	s, err := scenario.Parse(GenScenarioYAML(100))
	if err != nil {
		b.Fatal(err)
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		m, err := motor.New(fsmx.WithLogger(quietLogger()))
		if err != nil {
			b.Fatal(err)
		}
		if _, err := scenario.Run(s, m, motor.Decode, m.Context()); err != nil {
			b.Fatal(err)
		}
	}
}
