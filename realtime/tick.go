package realtime

import (
	"github.com/comalice/fsmx"
)

// Tick delivers every batched event and the follow-ups each one queues. It
// returns the number of Receive calls made.
func (rt *Runtime) Tick() int {
	rt.runMu.Lock()
	defer rt.runMu.Unlock()

	events := rt.collectEvents()
	sortEvents(events)

	delivered := 0
	for _, meta := range events {
		rt.deliver(meta.Event)
		delivered++
		delivered += rt.drainFollowUps()
	}
	rt.tickNum++
	return delivered
}

// collectEvents takes the current batch and leaves an empty one behind.
func (rt *Runtime) collectEvents() []EventWithMeta {
	rt.batchMu.Lock()
	defer rt.batchMu.Unlock()

	events := rt.eventBatch
	rt.eventBatch = make([]EventWithMeta, 0, cap(events))
	return events
}

// drainFollowUps submits queued events one Receive at a time, up to the
// follow-up limit. Anything left stays in the source for the next event or
// tick.
func (rt *Runtime) drainFollowUps() int {
	if rt.drain == nil {
		return 0
	}
	n := 0
	for n < rt.maxFollowUps {
		e, ok := rt.drain.Next()
		if !ok {
			break
		}
		rt.deliver(e)
		n++
	}
	if n == rt.maxFollowUps {
		rt.logger.WithField("limit", n).Warn("follow-up limit reached")
	}
	return n
}

func (rt *Runtime) deliver(e fsmx.Event) {
	if err := rt.target.Receive(e); err != nil {
		rt.logger.WithError(err).WithField("event", e.EventID()).Warn("receive failed")
		if rt.onError != nil {
			rt.onError(e, err)
		}
	}
}
