package sink

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"sentinel/core"
)

func captureDial(capture *Capture) DialFunc {
	return func(context.Context, string, string) (Sink, error) {
		return capture, nil
	}
}

func TestGuardedWithoutCredentialFailsEveryCall(t *testing.T) {
	capture := NewCapture()
	dial := NewCountingDial(captureDial(capture))
	g := NewGuarded("proxy", "https://siem.example/api/events", "", 5, dial.Dial, zap.NewNop().Sugar())

	for i := 0; i < 3; i++ {
		_, err := g.Deliver(context.Background(), core.NewEvent("auth", core.SeverityMedium, "m"))
		require.Error(t, err)
		assert.ErrorIs(t, err, core.ErrUnauthorized)
	}

	assert.Equal(t, int64(0), dial.Count(), "no construction without a credential")
	assert.Equal(t, 0, g.InWindow(), "auth failures perform no rate accounting")
	assert.False(t, g.Ready())
	assert.Equal(t, 0, capture.Len())
}

func TestGuardedEnforcesRateBudget(t *testing.T) {
	capture := NewCapture()
	dial := NewCountingDial(captureDial(capture))
	g := NewGuarded("proxy", "https://siem.example/api/events", "token", 2, dial.Dial, zap.NewNop().Sugar())

	ctx := context.Background()

	// Budget 2: first two succeed, third drops
	outcome, err := g.Deliver(ctx, core.NewEvent("auth", core.SeverityMedium, "one"))
	require.NoError(t, err)
	assert.Equal(t, OutcomeDelivered, outcome)

	outcome, err = g.Deliver(ctx, core.NewEvent("network", core.SeverityHigh, "two"))
	require.NoError(t, err)
	assert.Equal(t, OutcomeDelivered, outcome)

	outcome, err = g.Deliver(ctx, core.NewEvent("auth", core.SeverityMedium, "three"))
	require.NoError(t, err, "a drop is an outcome, not an error")
	assert.Equal(t, OutcomeDropped, outcome)

	assert.Equal(t, 2, capture.Len())
	assert.Equal(t, int64(1), dial.Count(), "transport constructed exactly once across admitted sends")
	assert.True(t, g.Ready())
}

func TestGuardedDroppedEventSkipsConstruction(t *testing.T) {
	dial := NewCountingDial(captureDial(NewCapture()))
	g := NewGuarded("proxy", "https://siem.example/api/events", "token", 0, dial.Dial, zap.NewNop().Sugar())

	outcome, err := g.Deliver(context.Background(), core.NewEvent("auth", core.SeverityMedium, "m"))
	require.NoError(t, err)
	assert.Equal(t, OutcomeDropped, outcome)
	assert.Equal(t, int64(0), dial.Count(), "a dropped event must not trigger lazy construction")
}

func TestGuardedDialFailureIsRetriable(t *testing.T) {
	dialErr := errors.New("tls handshake failed")
	capture := NewCapture()
	failures := 1
	dial := NewCountingDial(func(ctx context.Context, endpoint, token string) (Sink, error) {
		if failures > 0 {
			failures--
			return nil, dialErr
		}
		return capture, nil
	})
	g := NewGuarded("proxy", "https://siem.example/api/events", "token", 10, dial.Dial, zap.NewNop().Sugar())

	_, err := g.Deliver(context.Background(), core.NewEvent("auth", core.SeverityMedium, "m"))
	require.Error(t, err)
	assert.ErrorIs(t, err, dialErr)
	assert.False(t, g.Ready())

	outcome, err := g.Deliver(context.Background(), core.NewEvent("auth", core.SeverityMedium, "m"))
	require.NoError(t, err)
	assert.Equal(t, OutcomeDelivered, outcome)
	assert.Equal(t, int64(2), dial.Count())
	assert.True(t, g.Ready())
}

func TestGuardedConcurrentFirstCallsConstructOnce(t *testing.T) {
	const callers = 32

	capture := NewCapture()
	dial := NewCountingDial(captureDial(capture))
	g := NewGuarded("proxy", "https://siem.example/api/events", "token", callers, dial.Dial, zap.NewNop().Sugar())

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := g.Deliver(context.Background(), core.NewEvent("auth", core.SeverityMedium, "m"))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), dial.Count(), "racing first calls must construct the transport exactly once")
	assert.Equal(t, callers, capture.Len())
}
