// Package metrics exposes prometheus instrumentation for the delivery core.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	EventsDelivered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentinel_events_delivered_total",
			Help: "Total number of events delivered, by destination",
		},
		[]string{"destination"},
	)

	EventsDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentinel_events_dropped_total",
			Help: "Total number of events dropped by rate limiting, by destination",
		},
		[]string{"destination"},
	)

	EventsFiltered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentinel_events_filtered_total",
			Help: "Total number of events rejected by a filter gate, by group",
		},
		[]string{"group"},
	)

	DeliveryFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentinel_delivery_failures_total",
			Help: "Total number of transport delivery failures, by destination",
		},
		[]string{"destination"},
	)

	AuditEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentinel_audit_events_total",
			Help: "Total number of audit events emitted, by status",
		},
		[]string{"status"},
	)

	DeliveryDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sentinel_delivery_duration_seconds",
			Help:    "Time taken to deliver an event to a leaf transport",
			Buckets: prometheus.DefBuckets,
		},
	)
)
