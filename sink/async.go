package sink

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"sentinel/core"
)

// Async offloads delivery to a single background worker so the producer's
// call returns without waiting on transport I/O. One worker drains one
// FIFO queue, so events are delivered in enqueue order. Delivery failures
// are logged, not returned to the producer; this layer stays best-effort.
type Async struct {
	inner  Sink
	queue  chan *core.Event
	logger *zap.SugaredLogger

	wg       sync.WaitGroup
	mu       sync.RWMutex
	closed   bool
	delivCtx context.Context
	cancel   context.CancelFunc
}

// NewAsync wraps inner with a background delivery queue of the given size.
// The worker starts immediately; call Close to drain and stop it.
func NewAsync(inner Sink, queueSize int, logger *zap.SugaredLogger) *Async {
	if queueSize <= 0 {
		queueSize = 256
	}
	ctx, cancel := context.WithCancel(context.Background())
	a := &Async{
		inner:    inner,
		queue:    make(chan *core.Event, queueSize),
		logger:   logger,
		delivCtx: ctx,
		cancel:   cancel,
	}
	a.wg.Add(1)
	go a.run()
	return a
}

func (a *Async) run() {
	defer a.wg.Done()
	for event := range a.queue {
		if _, err := a.inner.Deliver(a.delivCtx, event); err != nil {
			a.logger.Errorw("Background delivery failed",
				"event_id", event.EventID, "error", err)
		}
	}
}

// Deliver enqueues the event and returns. A full queue blocks the caller
// rather than dropping: backpressure, not silent loss. Delivering to a
// closed Async fails.
func (a *Async) Deliver(ctx context.Context, event *core.Event) (Outcome, error) {
	// The read lock spans the enqueue so Close cannot close the channel
	// mid-send. The worker keeps draining, so a blocked send still makes
	// progress and releases the lock.
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return OutcomeDelivered, fmt.Errorf("async sink is closed")
	}

	// A cancelled context always refuses the event, even when the queue
	// has room; the select below would pick between the two at random.
	if err := ctx.Err(); err != nil {
		return OutcomeDelivered, err
	}

	select {
	case a.queue <- event:
		return OutcomeDelivered, nil
	case <-ctx.Done():
		return OutcomeDelivered, ctx.Err()
	}
}

// Close stops accepting events, drains the queue, and waits for the
// worker to finish. Safe to call once.
func (a *Async) Close() {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return
	}
	a.closed = true
	close(a.queue)
	a.mu.Unlock()

	a.wg.Wait()
	a.cancel()
}
