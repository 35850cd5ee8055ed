// Package realtime drives a single fsmx machine from a fixed-rate tick loop.
//
// Producers on any goroutine call SendEvent; the events are batched and
// delivered at the next tick, in priority order and then submission order.
// Delivery happens on one goroutine only, which is what a Machine requires.
//
// After each delivered event the runtime drains the optional Source of
// events that hooks queued during that delivery, submitting each one by its
// own Receive call. The machine itself never drains anything.
//
// Example:
//
//	m, _ := motor.New()
//	_ = m.Start()
//	rt := realtime.NewRuntime(m, m.Context(), realtime.Config{TickRate: 10 * time.Millisecond})
//	_ = rt.Start(ctx)
//	defer rt.Stop()
//	_ = rt.SendEvent(motor.Start{})
//
// Tests and simulations can skip Start and call Tick directly.
package realtime
