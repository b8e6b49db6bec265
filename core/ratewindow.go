package core

import (
	"sync"
	"time"
)

// DefaultRateWindow is the fixed window length for rate accounting.
const DefaultRateWindow = time.Second

// RateWindow is a fixed-window admission counter: up to Limit events are
// admitted per window, and the counter resets when a full window has
// elapsed since the window start. This is intentionally a hard window, not
// a token bucket: the contract is "exactly N admits per window", with the
// over-budget remainder observable as drops.
type RateWindow struct {
	limit  int
	window time.Duration

	mu    sync.Mutex
	start time.Time
	count int
	now   func() time.Time
}

// NewRateWindow creates a limiter admitting limit events per one-second
// window. A limit <= 0 admits nothing.
func NewRateWindow(limit int) *RateWindow {
	return newRateWindow(limit, DefaultRateWindow, time.Now)
}

func newRateWindow(limit int, window time.Duration, now func() time.Time) *RateWindow {
	return &RateWindow{
		limit:  limit,
		window: window,
		start:  now(),
		now:    now,
	}
}

// Allow reports whether one more event fits in the current window, and
// counts it if so. Safe for concurrent callers; the counter never under-
// or over-counts under racing increments.
func (w *RateWindow) Allow() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.now()
	if now.Sub(w.start) >= w.window {
		w.start = now
		w.count = 0
	}
	if w.count < w.limit {
		w.count++
		return true
	}
	return false
}

// Limit returns the per-window budget.
func (w *RateWindow) Limit() int {
	return w.limit
}

// InWindow returns the number of events admitted in the current window.
func (w *RateWindow) InWindow() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.count
}
