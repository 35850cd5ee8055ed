package realtime

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comalice/fsmx"
	"github.com/comalice/fsmx/examples/motor"
)

type tagged struct {
	id  fsmx.EventID
	tag string
}

func (e tagged) EventID() fsmx.EventID { return e.id }

// recorder is a Receiver that remembers delivery order.
type recorder struct {
	mu   sync.Mutex
	got  []string
	fail map[string]error
}

func (r *recorder) Receive(e fsmx.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	tag := e.(tagged).tag
	r.got = append(r.got, tag)
	return r.fail[tag]
}

func (r *recorder) delivered() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.got...)
}

// sliceSource hands out a fixed list of follow-ups.
type sliceSource struct{ events []fsmx.Event }

func (s *sliceSource) Next() (fsmx.Event, bool) {
	if len(s.events) == 0 {
		return nil, false
	}
	e := s.events[0]
	s.events = s.events[1:]
	return e, true
}

func TestTickOrdersByPriorityThenSequence(t *testing.T) {
	rec := &recorder{}
	rt := NewRuntime(rec, nil, Config{})

	require.NoError(t, rt.SendEvent(tagged{tag: "a"}))
	require.NoError(t, rt.SendEventWithPriority(tagged{tag: "b"}, 5))
	require.NoError(t, rt.SendEvent(tagged{tag: "c"}))
	require.NoError(t, rt.SendEventWithPriority(tagged{tag: "d"}, 5))
	require.NoError(t, rt.SendEventWithPriority(tagged{tag: "e"}, -1))
	assert.Equal(t, 5, rt.Pending())

	assert.Equal(t, 5, rt.Tick())
	assert.Equal(t, []string{"b", "d", "a", "c", "e"}, rec.delivered())
	assert.Equal(t, 0, rt.Pending())
	assert.Equal(t, uint64(1), rt.GetTickNumber())
}

func TestSendEventRejectsWhenBatchFull(t *testing.T) {
	rt := NewRuntime(&recorder{}, nil, Config{MaxEventsPerTick: 2})

	require.NoError(t, rt.SendEvent(tagged{tag: "a"}))
	require.NoError(t, rt.SendEvent(tagged{tag: "b"}))
	assert.ErrorIs(t, rt.SendEvent(tagged{tag: "c"}), ErrBatchFull)

	rt.Tick()
	assert.NoError(t, rt.SendEvent(tagged{tag: "c"}))
}

func TestSendEventRejectsNil(t *testing.T) {
	rt := NewRuntime(&recorder{}, nil, Config{})
	assert.ErrorIs(t, rt.SendEvent(nil), fsmx.ErrNilEvent)
}

func TestFollowUpsDeliveredAfterEachEvent(t *testing.T) {
	rec := &recorder{}
	src := &sliceSource{events: []fsmx.Event{tagged{tag: "f1"}, tagged{tag: "f2"}}}
	rt := NewRuntime(rec, src, Config{})

	require.NoError(t, rt.SendEvent(tagged{tag: "a"}))
	require.NoError(t, rt.SendEvent(tagged{tag: "b"}))

	assert.Equal(t, 4, rt.Tick())
	assert.Equal(t, []string{"a", "f1", "f2", "b"}, rec.delivered())
}

func TestFollowUpLimit(t *testing.T) {
	rec := &recorder{}
	src := &sliceSource{events: []fsmx.Event{tagged{tag: "f1"}, tagged{tag: "f2"}, tagged{tag: "f3"}}}
	rt := NewRuntime(rec, src, Config{MaxFollowUps: 2})

	require.NoError(t, rt.SendEvent(tagged{tag: "a"}))
	require.NoError(t, rt.SendEvent(tagged{tag: "b"}))

	rt.Tick()
	assert.Equal(t, []string{"a", "f1", "f2", "b", "f3"}, rec.delivered())
}

func TestReceiveErrorsReachCallback(t *testing.T) {
	boom := errors.New("boom")
	rec := &recorder{fail: map[string]error{"bad": boom}}

	var failed []string
	rt := NewRuntime(rec, nil, Config{
		OnError: func(e fsmx.Event, err error) {
			assert.ErrorIs(t, err, boom)
			failed = append(failed, e.(tagged).tag)
		},
	})

	require.NoError(t, rt.SendEvent(tagged{tag: "ok"}))
	require.NoError(t, rt.SendEvent(tagged{tag: "bad"}))
	require.NoError(t, rt.SendEvent(tagged{tag: "ok2"}))

	assert.Equal(t, 3, rt.Tick())
	assert.Equal(t, []string{"bad"}, failed)
	assert.Equal(t, []string{"ok", "bad", "ok2"}, rec.delivered())
}

func TestMotorRecursiveEventDrained(t *testing.T) {
	m, err := motor.New()
	require.NoError(t, err)
	require.NoError(t, m.Start(fsmx.SkipEnter()))

	rt := NewRuntime(m, m.Context(), Config{})
	require.NoError(t, rt.SendEvent(motor.Recursive{}))

	assert.Equal(t, 2, rt.Tick())
	assert.Equal(t, motor.RunningID, m.CurrentStateID())
	assert.Equal(t, 1, m.Context().StartCount)
	assert.Zero(t, m.Context().Queue.Len())
}

func TestMotorPriorityDelivery(t *testing.T) {
	m, err := motor.New()
	require.NoError(t, err)
	require.NoError(t, m.Start(fsmx.SkipEnter()))

	rt := NewRuntime(m, m.Context(), Config{})
	require.NoError(t, rt.SendEvent(motor.Stop{}))
	require.NoError(t, rt.SendEventWithPriority(motor.Start{}, 1))

	rt.Tick()
	assert.Equal(t, motor.WindingDownID, m.CurrentStateID())
	assert.Equal(t, 1, m.Context().StartCount)
	assert.Equal(t, 1, m.Context().StopCount)
}

func TestStartStop(t *testing.T) {
	rec := &recorder{}
	rt := NewRuntime(rec, nil, Config{TickRate: time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, rt.Start(ctx))
	assert.ErrorIs(t, rt.Start(ctx), ErrRunning)

	require.NoError(t, rt.SendEvent(tagged{tag: "a"}))
	require.Eventually(t, func() bool {
		return len(rec.delivered()) == 1
	}, time.Second, time.Millisecond)

	require.NoError(t, rt.Stop())
	require.NoError(t, rt.Stop())

	ticks := rt.GetTickNumber()
	assert.Positive(t, ticks)

	require.NoError(t, rt.SendEvent(tagged{tag: "b"}))
	time.Sleep(5 * time.Millisecond)
	assert.Equal(t, ticks, rt.GetTickNumber())
	assert.Equal(t, 1, rt.Pending())

	require.NoError(t, rt.Start(ctx))
	defer rt.Stop()
	require.Eventually(t, func() bool {
		return len(rec.delivered()) == 2
	}, time.Second, time.Millisecond)
}
