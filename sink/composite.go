package sink

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"sentinel/core"
	"sentinel/metrics"
)

// Composite fans one event out to an ordered list of child sinks.
// Registration order is delivery order.
//
// By default a child error aborts the fan-out: children after the failing
// one are not visited and the error propagates. That mirrors the original
// routing contract but means one bad destination can starve the siblings
// behind it; WithIsolation switches the composite to visit every child and
// aggregate failures instead (config flag: fanout_isolation).
type Composite struct {
	name    string
	isolate bool

	mu       sync.RWMutex
	children []Sink
}

// NewComposite creates an empty fan-out group.
func NewComposite(name string, children ...Sink) *Composite {
	return &Composite{name: name, children: children}
}

// WithIsolation makes child failures independent: every child is visited
// and the errors are joined into one aggregate result.
func (c *Composite) WithIsolation() *Composite {
	c.isolate = true
	return c
}

// Name returns the group name used in logs.
func (c *Composite) Name() string {
	return c.name
}

// Add appends a child; it becomes the last delivery target.
func (c *Composite) Add(child Sink) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.children = append(c.children, child)
}

// Remove drops the first registered occurrence of child.
func (c *Composite) Remove(child Sink) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, s := range c.children {
		if s == child {
			c.children = append(c.children[:i], c.children[i+1:]...)
			return
		}
	}
}

// Len returns the number of registered children.
func (c *Composite) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.children)
}

// snapshot returns the current child list without holding the lock during
// delivery, so a slow child cannot block Add/Remove.
func (c *Composite) snapshot() []Sink {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Sink, len(c.children))
	copy(out, c.children)
	return out
}

// Deliver fans the event out to all children in registration order.
func (c *Composite) Deliver(ctx context.Context, event *core.Event) (Outcome, error) {
	children := c.snapshot()
	if c.isolate {
		var errs []error
		for _, child := range children {
			if _, err := child.Deliver(ctx, event); err != nil {
				errs = append(errs, fmt.Errorf("composite %q child delivery: %w", c.name, err))
			}
		}
		if len(errs) > 0 {
			return OutcomeDelivered, errors.Join(errs...)
		}
		return OutcomeDelivered, nil
	}

	for _, child := range children {
		if _, err := child.Deliver(ctx, event); err != nil {
			// Fast-fail: remaining children are not visited.
			return OutcomeDelivered, fmt.Errorf("composite %q child delivery: %w", c.name, err)
		}
	}
	return OutcomeDelivered, nil
}

// FilteredComposite is a Composite that forwards only events matching its
// severity and kind allow-sets. A nil set allows everything; an event
// rejected by either gate is silently filtered and no child sees it.
type FilteredComposite struct {
	*Composite
	allowedSeverities map[core.Severity]struct{}
	allowedKinds      map[string]struct{}
}

// NewFilteredComposite creates a filtering fan-out group. Pass nil for
// severities or kinds to leave that gate open.
func NewFilteredComposite(name string, severities []core.Severity, kinds []string, children ...Sink) *FilteredComposite {
	f := &FilteredComposite{Composite: NewComposite(name, children...)}
	if severities != nil {
		f.allowedSeverities = make(map[core.Severity]struct{}, len(severities))
		for _, s := range severities {
			f.allowedSeverities[s] = struct{}{}
		}
	}
	if kinds != nil {
		f.allowedKinds = make(map[string]struct{}, len(kinds))
		for _, k := range kinds {
			f.allowedKinds[k] = struct{}{}
		}
	}
	return f
}

// Allows reports whether the event would pass the filter gates.
func (f *FilteredComposite) Allows(event *core.Event) bool {
	if f.allowedSeverities != nil {
		if _, ok := f.allowedSeverities[event.Severity]; !ok {
			return false
		}
	}
	if f.allowedKinds != nil {
		if _, ok := f.allowedKinds[event.Kind]; !ok {
			return false
		}
	}
	return true
}

// Deliver applies the filter gates, then fans out like a Composite.
func (f *FilteredComposite) Deliver(ctx context.Context, event *core.Event) (Outcome, error) {
	if !f.Allows(event) {
		metrics.EventsFiltered.WithLabelValues(f.Name()).Inc()
		return OutcomeFiltered, nil
	}
	return f.Composite.Deliver(ctx, event)
}
