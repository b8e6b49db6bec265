package sink

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sentinel/core"
)

func TestCompositeFansOutInRegistrationOrder(t *testing.T) {
	first := NewCapture()
	second := NewCapture()
	third := NewCapture()

	root := NewComposite("root", first, second)
	root.Add(third)

	ev := core.NewEvent("auth", core.SeverityMedium, "Failed login detected")
	outcome, err := root.Deliver(context.Background(), ev)
	require.NoError(t, err)
	assert.Equal(t, OutcomeDelivered, outcome)

	for _, c := range []*Capture{first, second, third} {
		require.Equal(t, 1, c.Len())
		assert.Same(t, ev, c.Events()[0], "children must observe the identical event")
	}
}

func TestCompositeAbortsFanOutOnChildError(t *testing.T) {
	transportErr := errors.New("connection refused")
	before := NewCapture()
	failing := NewFailing(transportErr)
	after := NewCapture()

	root := NewComposite("root", before, failing, after)

	_, err := root.Deliver(context.Background(), core.NewEvent("auth", core.SeverityLow, "probe"))
	require.Error(t, err)
	assert.ErrorIs(t, err, transportErr)

	assert.Equal(t, 1, before.Len(), "children before the failure are visited")
	assert.Equal(t, int64(1), failing.Calls())
	assert.Equal(t, 0, after.Len(), "children after the failure must not be visited")
}

func TestCompositeIsolationVisitsAllChildren(t *testing.T) {
	errA := errors.New("siem a down")
	errB := errors.New("siem b down")
	failA := NewFailing(errA)
	ok := NewCapture()
	failB := NewFailing(errB)

	root := NewComposite("root", failA, ok, failB).WithIsolation()

	_, err := root.Deliver(context.Background(), core.NewEvent("auth", core.SeverityLow, "probe"))
	require.Error(t, err)
	assert.ErrorIs(t, err, errA)
	assert.ErrorIs(t, err, errB)
	assert.Equal(t, 1, ok.Len(), "isolation mode keeps delivering past failures")
}

func TestCompositeRemove(t *testing.T) {
	a := NewCapture()
	b := NewCapture()
	root := NewComposite("root", a, b)

	root.Remove(a)
	require.Equal(t, 1, root.Len())

	_, err := root.Deliver(context.Background(), core.NewEvent("auth", core.SeverityLow, "probe"))
	require.NoError(t, err)
	assert.Equal(t, 0, a.Len())
	assert.Equal(t, 1, b.Len())
}

func TestFilteredCompositeSeverityAndKindGates(t *testing.T) {
	tests := []struct {
		name       string
		severities []core.Severity
		kinds      []string
		event      *core.Event
		allowed    bool
	}{
		{
			name:    "both gates unset allows all",
			event:   core.NewEvent("anything", core.SeverityInfo, "m"),
			allowed: true,
		},
		{
			name:       "severity in set",
			severities: []core.Severity{core.SeverityHigh},
			event:      core.NewEvent("auth", core.SeverityHigh, "m"),
			allowed:    true,
		},
		{
			name:       "severity not in set",
			severities: []core.Severity{core.SeverityHigh},
			event:      core.NewEvent("auth", core.SeverityMedium, "m"),
			allowed:    false,
		},
		{
			name:    "kind in set",
			kinds:   []string{"auth", "network"},
			event:   core.NewEvent("network", core.SeverityLow, "m"),
			allowed: true,
		},
		{
			name:    "kind not in set",
			kinds:   []string{"auth"},
			event:   core.NewEvent("file", core.SeverityCritical, "m"),
			allowed: false,
		},
		{
			name:       "severity passes but kind fails",
			severities: []core.Severity{core.SeverityHigh},
			kinds:      []string{"auth"},
			event:      core.NewEvent("network", core.SeverityHigh, "m"),
			allowed:    false,
		},
		{
			name:       "empty severity set blocks everything",
			severities: []core.Severity{},
			event:      core.NewEvent("auth", core.SeverityCritical, "m"),
			allowed:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			child := NewCapture()
			f := NewFilteredComposite("f", tt.severities, tt.kinds, child)

			outcome, err := f.Deliver(context.Background(), tt.event)
			require.NoError(t, err, "filtering is silent, never an error")

			if tt.allowed {
				assert.Equal(t, OutcomeDelivered, outcome)
				assert.Equal(t, 1, child.Len())
			} else {
				assert.Equal(t, OutcomeFiltered, outcome)
				assert.Equal(t, 0, child.Len(), "zero children observe a filtered event")
			}
		})
	}
}
