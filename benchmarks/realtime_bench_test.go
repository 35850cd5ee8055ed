package benchmarks

import (
	"fmt"
	"testing"

	"github.com/comalice/fsmx"
	"github.com/comalice/fsmx/realtime"
)

// BenchmarkRealtimeTick measures one tick delivering a full batch.
func BenchmarkRealtimeTick(b *testing.B) {
	for _, batch := range []int{1, 100, 1000} {
		b.Run(fmt.Sprintf("batch=%d", batch), func(b *testing.B) {
			m, err := NewMachine(Ring(10), fsmx.WithLogger(quietLogger()))
			if err != nil {
				b.Fatal(err)
			}
			rt := realtime.NewRuntime(m, nil, realtime.Config{
				MaxEventsPerTick: batch,
				Logger:           quietLogger(),
			})
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				for j := 0; j < batch; j++ {
					if err := rt.SendEventWithPriority(Tick{}, j%3); err != nil {
						b.Fatal(err)
					}
				}
				if got := rt.Tick(); got != batch {
					b.Fatalf("delivered %d, want %d", got, batch)
				}
			}
		})
	}
}

func BenchmarkRealtimeSendParallel(b *testing.B) {
	m, err := NewMachine(Ring(10), fsmx.WithLogger(quietLogger()))
	if err != nil {
		b.Fatal(err)
	}
	rt := realtime.NewRuntime(m, nil, realtime.Config{
		MaxEventsPerTick: 1 << 20,
		Logger:           quietLogger(),
	})
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			if err := rt.SendEvent(Tick{}); err == realtime.ErrBatchFull {
				rt.Tick()
			}
		}
	})
	b.StopTimer()
	rt.Tick()
}
