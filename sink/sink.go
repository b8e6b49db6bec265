// Package sink implements the composable delivery tree for security
// events: leaf transports, ordered fan-out composites, severity/kind
// filtering, and a guarded wrapper enforcing credentials and a rate
// budget in front of a lazily constructed transport.
package sink

import (
	"context"

	"sentinel/core"
)

// Outcome classifies what a sink did with an event when Deliver returned
// without error.
type Outcome int

const (
	// OutcomeDelivered means the event was accepted for delivery
	OutcomeDelivered Outcome = iota
	// OutcomeDropped means the event was discarded by rate limiting.
	// Dropping is an observable no-op, not a failure.
	OutcomeDropped
	// OutcomeFiltered means a filter gate rejected the event before any
	// child saw it. Filtering is silent, not a failure.
	OutcomeFiltered
)

// String returns the outcome label used in logs and metrics.
func (o Outcome) String() string {
	switch o {
	case OutcomeDelivered:
		return "delivered"
	case OutcomeDropped:
		return "dropped"
	case OutcomeFiltered:
		return "filtered"
	default:
		return "unknown"
	}
}

// Sink is the delivery capability: accept one event and attempt delivery.
// Implementations must not mutate the event. Delivery is best-effort and
// synchronous; there is no retry at this layer. The outcome is meaningful
// only when the returned error is nil.
type Sink interface {
	Deliver(ctx context.Context, event *core.Event) (Outcome, error)
}
