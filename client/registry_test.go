package client

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"sentinel/config"
	"sentinel/core"
	"sentinel/sink"
)

func newTestClient(t *testing.T) (*SIEMClient, *sink.Capture) {
	t.Helper()
	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Source = "test-agent"

	capture := sink.NewCapture()
	return New(cfg, capture, zap.NewNop().Sugar()), capture
}

func TestDefaultReturnsSameInstance(t *testing.T) {
	first, err := Default()
	require.NoError(t, err)
	second, err := Default()
	require.NoError(t, err)

	assert.Same(t, first, second, "Default must hand out one process-wide instance")

	// Sending via either handle appends to the one shared buffer, in
	// call order.
	base := first.Len()
	require.NoError(t, first.Send(context.Background(), "auth", core.SeverityLow, "via-first", nil))
	require.NoError(t, second.Send(context.Background(), "auth", core.SeverityLow, "via-second", nil))

	events := second.Events()
	require.Len(t, events, base+2)
	assert.Equal(t, "via-first", events[base].Message)
	assert.Equal(t, "via-second", events[base+1].Message)
}

func TestSendStampsSourceAndBuffers(t *testing.T) {
	c, capture := newTestClient(t)

	err := c.Send(context.Background(), "auth", core.SeverityMedium, "Failed login detected",
		map[string]string{core.FieldUsername: "alice", core.FieldIP: "203.0.113.25"})
	require.NoError(t, err)

	require.Equal(t, 1, c.Len())
	ev := c.Events()[0]
	assert.Equal(t, "test-agent", ev.Source)
	assert.Equal(t, "auth", ev.Kind)
	assert.Equal(t, core.SeverityMedium, ev.Severity)
	assert.Equal(t, "alice", ev.Field(core.FieldUsername))
	assert.False(t, ev.Timestamp.IsZero())

	// The buffered event and the delivered event are the same record
	require.Equal(t, 1, capture.Len())
	assert.Same(t, ev, capture.Events()[0])
}

func TestSendAppendsInCallOrder(t *testing.T) {
	c, _ := newTestClient(t)

	for i := 0; i < 5; i++ {
		err := c.Send(context.Background(), "auth", core.SeverityLow, fmt.Sprintf("event-%d", i), nil)
		require.NoError(t, err)
	}

	events := c.Events()
	require.Len(t, events, 5)
	for i, ev := range events {
		assert.Equal(t, fmt.Sprintf("event-%d", i), ev.Message)
	}
}

func TestSendPropagatesDeliveryFailure(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	failing := sink.NewFailing(fmt.Errorf("siem down"))
	c := New(cfg, failing, zap.NewNop().Sugar())

	err = c.Send(context.Background(), "auth", core.SeverityLow, "m", nil)
	require.Error(t, err)

	// The event is buffered even when delivery fails: the buffer records
	// everything the client attempted to send.
	assert.Equal(t, 1, c.Len())
}

func TestConcurrentSendsAllLandInBuffer(t *testing.T) {
	c, capture := newTestClient(t)

	const callers = 16
	const perCaller = 25

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < perCaller; j++ {
				err := c.Send(context.Background(), "auth", core.SeverityLow,
					fmt.Sprintf("caller-%d-event-%d", id, j), nil)
				assert.NoError(t, err)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, callers*perCaller, c.Len())
	assert.Equal(t, callers*perCaller, capture.Len())
}

func TestIndependentClientsDoNotShareBuffers(t *testing.T) {
	a, _ := newTestClient(t)
	b, _ := newTestClient(t)

	require.NoError(t, a.Send(context.Background(), "auth", core.SeverityLow, "m", nil))
	assert.Equal(t, 1, a.Len())
	assert.Equal(t, 0, b.Len())
}
