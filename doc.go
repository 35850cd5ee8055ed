// Package fsmx is a finite state machine engine for event driven control
// logic.
//
// A Machine owns a fixed table of states indexed by a dense StateID. Each
// State declares typed handlers for the event kinds it understands; Receive
// routes an event to the current state's handler (or its unknown-event
// fallback) and applies the Directive it returns:
//
//   - Stay: nothing further happens.
//   - SelfTransition: the state's exit hook runs, then its enter hook.
//   - GoTo(id): exit the current state, switch, enter the new one.
//
// The directive returned by an enter hook is applied the same way, so a
// state can redirect immediately on entry. Chains are bounded by the table
// size unless WithMaxChain says otherwise.
//
// Hooks may queue further events for later delivery (see the queue and
// packet packages) but the machine never drains such queues itself: every
// delivery is a separate call to Receive made by the caller.
//
// Example:
//
//	idle := fsmx.NewState[*Lamp](0, "idle",
//		fsmx.On(func(l *Lamp, _ Switch) fsmx.Directive { return fsmx.GoTo(1) }),
//	)
//	lit := fsmx.NewState[*Lamp](1, "lit",
//		fsmx.OnEnter(func(l *Lamp) fsmx.Directive { l.On = true; return fsmx.Stay() }),
//	)
//	m := fsmx.NewMachine(0, &Lamp{})
//	_ = m.Configure([]*fsmx.State[*Lamp]{idle, lit})
//	_ = m.Start()
//	_ = m.Receive(Switch{})
package fsmx
