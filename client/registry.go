// Package client provides the process-wide shared SIEM client: one
// configured delivery handle with an introspectable buffer of everything
// it has sent.
package client

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"sentinel/config"
	"sentinel/core"
	"sentinel/sink"
)

// SIEMClient is a shared delivery handle. It stamps outgoing events with
// its configured source tag, appends each one to an in-memory buffer, and
// forwards it to its delivery sink.
//
// The buffer is append-only and unbounded: the core never evicts. Callers
// keeping a client alive for a long-running process own that growth and
// must snapshot/reset externally if it matters.
type SIEMClient struct {
	source string
	sink   sink.Sink
	logger *zap.SugaredLogger

	mu     sync.Mutex
	buffer []*core.Event
}

// New creates an independent client instance. Tests and dependency-
// injected wiring use this; the process-wide instance comes from Default.
func New(cfg *config.Config, s sink.Sink, logger *zap.SugaredLogger) *SIEMClient {
	return &SIEMClient{
		source: cfg.Source,
		sink:   s,
		logger: logger,
	}
}

var (
	defaultClient *SIEMClient
	defaultErr    error
	defaultOnce   sync.Once
)

// Default returns the process-wide client, constructing it on first
// access. Configuration is loaded once, from environment and defaults;
// the delivery path is the console sink. Every call returns the same
// instance.
func Default() (*SIEMClient, error) {
	defaultOnce.Do(func() {
		cfg, err := config.Load("")
		if err != nil {
			defaultErr = fmt.Errorf("failed to initialize shared siem client: %w", err)
			return
		}
		logger := zap.NewNop().Sugar()
		defaultClient = New(cfg, sink.NewStdout(), logger)
	})
	return defaultClient, defaultErr
}

// Source returns the tag stamped onto outgoing events.
func (c *SIEMClient) Source() string {
	return c.source
}

// Send builds an event from the given fields, buffers it, and forwards it
// to the client's sink. fields may be nil.
func (c *SIEMClient) Send(ctx context.Context, kind string, severity core.Severity, message string, fields map[string]string) error {
	event := core.NewEvent(kind, severity, message)
	event.Source = c.source
	for k, v := range fields {
		event.Fields[k] = v
	}

	c.mu.Lock()
	c.buffer = append(c.buffer, event)
	c.mu.Unlock()

	outcome, err := c.sink.Deliver(ctx, event)
	if err != nil {
		return fmt.Errorf("shared client delivery: %w", err)
	}
	if outcome != sink.OutcomeDelivered {
		c.logger.Debugw("Shared client event not delivered", "outcome", outcome.String(), "event_id", event.EventID)
	}
	return nil
}

// Events returns a snapshot copy of every event the client has sent.
func (c *SIEMClient) Events() []*core.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*core.Event, len(c.buffer))
	copy(out, c.buffer)
	return out
}

// Len returns the number of buffered events.
func (c *SIEMClient) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.buffer)
}
