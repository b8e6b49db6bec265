package sink

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"sentinel/core"
	"sentinel/metrics"
)

// DialFunc builds the wrapped transport for a guarded sink. Construction
// is the expensive step the laziness exists to defer (sessions, pools).
type DialFunc func(ctx context.Context, endpoint, token string) (Sink, error)

// Guarded wraps a lazily constructed transport with access control and a
// fixed-window rate budget. Checks run in a fixed order on every Deliver:
//
//  1. credential presence — missing credential fails with
//     core.ErrUnauthorized and performs no rate accounting
//  2. rate budget — an over-budget event is dropped (OutcomeDropped, nil),
//     and no construction or delegation happens
//  3. lazy construction — the transport is dialed on the first call that
//     passes both checks, successfully at most once for the sink's lifetime
//  4. delegation to the transport
type Guarded struct {
	name     string
	endpoint string
	token    string
	dial     DialFunc
	window   *core.RateWindow
	logger   *zap.SugaredLogger

	mu        sync.Mutex
	transport Sink
}

// NewGuarded creates a guarded sink. budget is events per one-second
// window. The transport is not dialed until the first admitted event.
func NewGuarded(name, endpoint, token string, budget int, dial DialFunc, logger *zap.SugaredLogger) *Guarded {
	return &Guarded{
		name:     name,
		endpoint: endpoint,
		token:    token,
		dial:     dial,
		window:   core.NewRateWindow(budget),
		logger:   logger,
	}
}

// InWindow returns the number of events admitted in the current rate
// window.
func (g *Guarded) InWindow() int {
	return g.window.InWindow()
}

// Ready reports whether the wrapped transport has been constructed.
func (g *Guarded) Ready() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.transport != nil
}

// ensureTransport dials the wrapped transport exactly once under the sink
// mutex. Concurrent first callers serialize here; a failed dial leaves the
// slot empty so a later call can retry.
func (g *Guarded) ensureTransport(ctx context.Context) (Sink, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.transport != nil {
		return g.transport, nil
	}
	t, err := g.dial(ctx, g.endpoint, g.token)
	if err != nil {
		return nil, fmt.Errorf("guarded %q: dialing transport: %w", g.name, err)
	}
	g.transport = t
	g.logger.Infow("Guarded sink transport ready", "sink", g.name, "endpoint", g.endpoint)
	return t, nil
}

// Deliver runs the guard checks, then hands the event to the transport.
func (g *Guarded) Deliver(ctx context.Context, event *core.Event) (Outcome, error) {
	if g.token == "" {
		return OutcomeDelivered, fmt.Errorf("guarded %q: %w", g.name, core.ErrUnauthorized)
	}

	if !g.window.Allow() {
		g.logger.Warnw("Rate limit exceeded, dropping event",
			"sink", g.name, "budget", g.window.Limit(), "message", event.Message)
		metrics.EventsDropped.WithLabelValues(g.name).Inc()
		return OutcomeDropped, nil
	}

	transport, err := g.ensureTransport(ctx)
	if err != nil {
		return OutcomeDelivered, err
	}
	return transport.Deliver(ctx, event)
}
