package sink

import (
	"context"
	"sync"
	"sync/atomic"

	"sentinel/core"
)

// Capture is an in-memory sink recording every delivered event in arrival
// order. It backs tests and the shared client's introspectable buffer.
type Capture struct {
	mu     sync.Mutex
	events []*core.Event
}

// NewCapture creates an empty capture sink.
func NewCapture() *Capture {
	return &Capture{}
}

// Deliver appends the event to the capture buffer.
func (c *Capture) Deliver(_ context.Context, event *core.Event) (Outcome, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
	return OutcomeDelivered, nil
}

// Events returns a snapshot copy of the captured events.
func (c *Capture) Events() []*core.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*core.Event, len(c.events))
	copy(out, c.events)
	return out
}

// Len returns the number of captured events.
func (c *Capture) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.events)
}

// Failing is a sink whose Deliver always returns the configured error.
type Failing struct {
	Err   error
	calls atomic.Int64
}

// NewFailing creates a sink that fails every delivery with err.
func NewFailing(err error) *Failing {
	return &Failing{Err: err}
}

// Deliver counts the call and fails.
func (f *Failing) Deliver(context.Context, *core.Event) (Outcome, error) {
	f.calls.Add(1)
	return OutcomeDelivered, f.Err
}

// Calls returns how many deliveries were attempted.
func (f *Failing) Calls() int64 {
	return f.calls.Load()
}

// CountingDial wraps a DialFunc and counts constructions, for asserting
// that lazy transports are built exactly once.
type CountingDial struct {
	count atomic.Int64
	dial  DialFunc
}

// NewCountingDial wraps dial with a construction counter.
func NewCountingDial(dial DialFunc) *CountingDial {
	return &CountingDial{dial: dial}
}

// Dial is the DialFunc to hand to NewGuarded.
func (c *CountingDial) Dial(ctx context.Context, endpoint, token string) (Sink, error) {
	c.count.Add(1)
	return c.dial(ctx, endpoint, token)
}

// Count returns the number of construction attempts.
func (c *CountingDial) Count() int64 {
	return c.count.Load()
}
