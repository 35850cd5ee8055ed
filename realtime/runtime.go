package realtime

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/comalice/fsmx"
)

var (
	// ErrBatchFull is returned by SendEvent when the pending batch is at capacity.
	ErrBatchFull = errors.New("realtime: event batch full")
	// ErrRunning is returned by Start on a runtime that is already ticking.
	ErrRunning = errors.New("realtime: runtime already started")
)

// Receiver is the part of an fsmx.Machine the runtime drives.
type Receiver interface {
	Receive(e fsmx.Event) error
}

// Source yields events queued by state hooks, oldest first.
type Source interface {
	Next() (fsmx.Event, bool)
}

// Config configures the runtime.
type Config struct {
	TickRate         time.Duration // default 10ms
	MaxEventsPerTick int           // batch capacity, default 1000
	MaxFollowUps     int           // drained events per delivered event, default 64

	Logger  logrus.FieldLogger // default logrus.StandardLogger()
	OnError func(e fsmx.Event, err error)
}

// Runtime owns delivery to one machine.
type Runtime struct {
	target Receiver
	drain  Source

	tickRate     time.Duration
	maxFollowUps int
	logger       logrus.FieldLogger
	onError      func(fsmx.Event, error)

	// runMu serialises deliveries.
	runMu   sync.Mutex
	tickNum uint64

	batchMu     sync.Mutex
	eventBatch  []EventWithMeta
	sequenceNum uint64

	ctlMu      sync.Mutex
	ticker     *time.Ticker
	tickCancel context.CancelFunc
	stopped    chan struct{}
}

// NewRuntime creates a runtime for target. drain may be nil.
func NewRuntime(target Receiver, drain Source, cfg Config) *Runtime {
	if cfg.MaxEventsPerTick <= 0 {
		cfg.MaxEventsPerTick = 1000
	}
	if cfg.TickRate <= 0 {
		cfg.TickRate = 10 * time.Millisecond
	}
	if cfg.MaxFollowUps <= 0 {
		cfg.MaxFollowUps = 64
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.StandardLogger()
	}

	return &Runtime{
		target:       target,
		drain:        drain,
		tickRate:     cfg.TickRate,
		maxFollowUps: cfg.MaxFollowUps,
		logger:       cfg.Logger,
		onError:      cfg.OnError,
		eventBatch:   make([]EventWithMeta, 0, cfg.MaxEventsPerTick),
	}
}

// Start begins ticking until ctx is done or Stop is called.
func (rt *Runtime) Start(ctx context.Context) error {
	rt.ctlMu.Lock()
	defer rt.ctlMu.Unlock()
	if rt.stopped != nil {
		return ErrRunning
	}

	tickCtx, cancel := context.WithCancel(ctx)
	rt.tickCancel = cancel
	rt.ticker = time.NewTicker(rt.tickRate)
	rt.stopped = make(chan struct{})

	go rt.tickLoop(tickCtx, rt.ticker, rt.stopped)
	return nil
}

// Stop halts the tick loop and waits for it to exit. Pending events stay
// batched and can still be delivered with Tick.
func (rt *Runtime) Stop() error {
	rt.ctlMu.Lock()
	defer rt.ctlMu.Unlock()
	if rt.stopped == nil {
		return nil
	}

	rt.tickCancel()
	rt.ticker.Stop()
	<-rt.stopped

	rt.stopped = nil
	rt.ticker = nil
	rt.tickCancel = nil
	return nil
}

func (rt *Runtime) tickLoop(ctx context.Context, ticker *time.Ticker, stopped chan struct{}) {
	defer close(stopped)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rt.safeTick()
		}
	}
}

func (rt *Runtime) safeTick() {
	defer func() {
		if r := recover(); r != nil {
			rt.logger.WithField("panic", r).Error("tick panicked")
		}
	}()
	rt.Tick()
}

// SendEvent queues e for the next tick. Safe for concurrent use.
func (rt *Runtime) SendEvent(e fsmx.Event) error {
	return rt.SendEventWithPriority(e, 0)
}

// SendEventWithPriority queues e; higher priorities are delivered first
// within a tick.
func (rt *Runtime) SendEventWithPriority(e fsmx.Event, priority int) error {
	if e == nil {
		return fsmx.ErrNilEvent
	}

	rt.batchMu.Lock()
	defer rt.batchMu.Unlock()

	if len(rt.eventBatch) >= cap(rt.eventBatch) {
		return ErrBatchFull
	}
	rt.eventBatch = append(rt.eventBatch, EventWithMeta{
		Event:       e,
		SequenceNum: rt.sequenceNum,
		Priority:    priority,
	})
	rt.sequenceNum++
	return nil
}

// Pending returns the number of batched events.
func (rt *Runtime) Pending() int {
	rt.batchMu.Lock()
	defer rt.batchMu.Unlock()
	return len(rt.eventBatch)
}

// GetTickNumber returns how many ticks have completed.
func (rt *Runtime) GetTickNumber() uint64 {
	rt.runMu.Lock()
	defer rt.runMu.Unlock()
	return rt.tickNum
}
