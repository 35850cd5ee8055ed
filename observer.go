package fsmx

import "context"

// RecordKind labels what a Record describes.
type RecordKind string

const (
	RecordStart      RecordKind = "start"
	RecordDispatch   RecordKind = "dispatch"
	RecordUnknown    RecordKind = "unknown"
	RecordExit       RecordKind = "exit"
	RecordEnter      RecordKind = "enter"
	RecordTransition RecordKind = "transition"
	RecordSelf       RecordKind = "self"
	RecordReset      RecordKind = "reset"
)

// Record is one step of machine activity, delivered to observers in the
// order it happened.
type Record struct {
	Router    RouterID   `json:"router" yaml:"router"`
	Kind      RecordKind `json:"kind" yaml:"kind"`
	Event     EventID    `json:"event" yaml:"event"`
	EventName string     `json:"eventName,omitempty" yaml:"eventName,omitempty"`
	From      StateID    `json:"from" yaml:"from"`
	FromName  string     `json:"fromName,omitempty" yaml:"fromName,omitempty"`
	To        StateID    `json:"to" yaml:"to"`
	ToName    string     `json:"toName,omitempty" yaml:"toName,omitempty"`
	Directive Directive  `json:"-" yaml:"-"`
}

// Observer receives records synchronously from inside Start, Receive and
// Reset. Implementations must not call back into the machine.
type Observer interface {
	Observe(rec Record)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(rec Record)

func (f ObserverFunc) Observe(rec Record) { f(rec) }

// ChannelObserver forwards records to a channel without blocking; records
// are dropped when the channel is full.
type ChannelObserver struct {
	ctx context.Context
	ch  chan<- Record
}

// NewChannelObserver creates a ChannelObserver. Once ctx is done, records
// are no longer forwarded.
func NewChannelObserver(ctx context.Context, ch chan<- Record) *ChannelObserver {
	return &ChannelObserver{ctx: ctx, ch: ch}
}

func (o *ChannelObserver) Observe(rec Record) {
	if o.ctx.Err() != nil {
		return
	}
	select {
	case o.ch <- rec:
	default:
	}
}
