// Package core defines the event schema and shared primitives for the
// Sentinel event delivery pipeline.
package core

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Status represents the outcome of the operation that produced an event.
type Status string

const (
	// StatusOK means the producing operation completed normally
	StatusOK Status = "ok"
	// StatusError means the producing operation failed
	StatusError Status = "error"
)

// Severity is the ordered severity scale used for routing decisions.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// severityOrder ranks severities for threshold comparisons
var severityOrder = map[Severity]int{
	SeverityInfo:     1,
	SeverityLow:      2,
	SeverityMedium:   3,
	SeverityHigh:     4,
	SeverityCritical: 5,
}

// Rank returns the numeric rank of a severity. Unknown severities rank
// lowest so they are never promoted past a configured threshold.
func (s Severity) Rank() int {
	if r, ok := severityOrder[s]; ok {
		return r
	}
	return 0
}

// AtLeast reports whether s is at or above min on the severity scale.
func (s Severity) AtLeast(min Severity) bool {
	return s.Rank() >= min.Rank()
}

// Correlation field keys recognized by the wire format. Values under these
// keys are serialized as top-level keys; everything else in Event.Fields is
// carried opaquely after them.
const (
	FieldUsername = "username"
	FieldIP       = "ip"
	FieldSrcIP    = "src_ip"
	FieldDstIP    = "dst_ip"
)

// Event is the immutable value flowing through the sink tree. Sinks read
// events but never mutate them; producers hand over ownership on send.
type Event struct {
	EventID   string
	Timestamp time.Time
	Source    string
	Status    Status
	Duration  time.Duration
	Kind      string
	Severity  Severity
	Message   string
	// Fields carries open-ended correlation attributes (username, ip,
	// src_ip, dst_ip, ...). The core never interprets the values.
	Fields map[string]string
}

// NewEvent creates an event with a generated ID and a UTC timestamp.
func NewEvent(kind string, severity Severity, message string) *Event {
	return &Event{
		EventID:   uuid.New().String(),
		Timestamp: time.Now().UTC(),
		Status:    StatusOK,
		Kind:      kind,
		Severity:  severity,
		Message:   message,
		Fields:    make(map[string]string),
	}
}

// WithField returns a shallow copy of the event with one correlation field
// added. The receiver is left untouched.
func (e *Event) WithField(key, value string) *Event {
	clone := *e
	clone.Fields = make(map[string]string, len(e.Fields)+1)
	for k, v := range e.Fields {
		clone.Fields[k] = v
	}
	clone.Fields[key] = value
	return &clone
}

// Field returns the correlation field for key, or "" when absent.
func (e *Event) Field(key string) string {
	if e.Fields == nil {
		return ""
	}
	return e.Fields[key]
}

// MarshalJSON emits the compact wire record: ts at second precision (UTC),
// the producing source under "func", status, integer duration_ms, and
// every correlation field present on the event — recognized keys
// (username, ip, src_ip, dst_ip) and open-ended ones alike. Key names and
// the second-precision timestamp are a log contract other tooling depends
// on.
func (e *Event) MarshalJSON() ([]byte, error) {
	record := map[string]interface{}{
		"ts":          e.Timestamp.UTC().Format("2006-01-02T15:04:05Z"),
		"status":      e.Status,
		"duration_ms": e.Duration.Milliseconds(),
	}
	if e.EventID != "" {
		record["event_id"] = e.EventID
	}
	if e.Source != "" {
		record["func"] = e.Source
	}
	if e.Kind != "" {
		record["kind"] = e.Kind
	}
	if e.Severity != "" {
		record["severity"] = string(e.Severity)
	}
	if e.Message != "" {
		record["message"] = e.Message
	}
	for k, v := range e.Fields {
		if v == "" {
			continue
		}
		// Correlation fields are carried opaquely but never allowed to
		// shadow the fixed record keys.
		if _, taken := record[k]; taken {
			continue
		}
		record[k] = v
	}
	return json.Marshal(record)
}
