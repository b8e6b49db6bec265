// Package monitor holds example producers that report security events
// into a sink tree. Producers depend only on the Sink capability, never
// on concrete transports.
package monitor

import (
	"context"

	"sentinel/core"
	"sentinel/sink"
)

// AuthMonitor reports authentication events.
type AuthMonitor struct {
	sink sink.Sink
}

// NewAuthMonitor creates an auth producer targeting s.
func NewAuthMonitor(s sink.Sink) *AuthMonitor {
	return &AuthMonitor{sink: s}
}

// RecordFailedLogin reports a failed login attempt.
func (m *AuthMonitor) RecordFailedLogin(ctx context.Context, username, ip string) error {
	event := core.NewEvent("auth", core.SeverityMedium, "Failed login detected").
		WithField(core.FieldUsername, username).
		WithField(core.FieldIP, ip)
	_, err := m.sink.Deliver(ctx, event)
	return err
}

// FirewallMonitor reports network events.
type FirewallMonitor struct {
	sink sink.Sink
}

// NewFirewallMonitor creates a firewall producer targeting s.
func NewFirewallMonitor(s sink.Sink) *FirewallMonitor {
	return &FirewallMonitor{sink: s}
}

// RecordPortScan reports a detected port scan from src to dst.
func (m *FirewallMonitor) RecordPortScan(ctx context.Context, srcIP, dstIP string) error {
	event := core.NewEvent("network", core.SeverityHigh, "Port scan detected").
		WithField(core.FieldSrcIP, srcIP).
		WithField(core.FieldDstIP, dstIP)
	_, err := m.sink.Deliver(ctx, event)
	return err
}
