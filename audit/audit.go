// Package audit instruments arbitrary operations: each wrapped invocation
// emits exactly one event describing its outcome, on every exit path,
// without ever masking the operation's own result.
package audit

import (
	"context"
	"time"

	"go.uber.org/zap"

	"sentinel/core"
	"sentinel/metrics"
	"sentinel/sink"
)

// Fields carries the correlation attributes a caller wants recorded on
// the audit event. Zero-value fields are omitted.
type Fields struct {
	Kind     string
	Severity core.Severity
	Message  string
	Username string
	IP       string
	SrcIP    string
	DstIP    string
}

// Observe runs op and emits exactly one audit event to emitter describing
// its outcome: status ok on normal return, status error when op fails or
// panics. The operation's error (or panic) is propagated unchanged; a
// failure to emit the audit event is logged and never surfaces to the
// caller.
func Observe[T any](ctx context.Context, emitter sink.Sink, logger *zap.SugaredLogger, source string, fields Fields, op func(context.Context) (T, error)) (T, error) {
	start := time.Now()
	status := core.StatusError

	defer func() {
		emit(ctx, emitter, logger, source, fields, status, time.Since(start))
	}()

	result, err := op(ctx)
	if err == nil {
		status = core.StatusOK
	}
	return result, err
}

// Run is the result-free variant of Observe.
func Run(ctx context.Context, emitter sink.Sink, logger *zap.SugaredLogger, source string, fields Fields, op func(context.Context) error) error {
	_, err := Observe(ctx, emitter, logger, source, fields, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	})
	return err
}

// emit builds and delivers the audit event. It must not fail the caller:
// delivery errors are logged and a panicking emitter is recovered.
func emit(ctx context.Context, emitter sink.Sink, logger *zap.SugaredLogger, source string, fields Fields, status core.Status, elapsed time.Duration) {
	defer func() {
		if r := recover(); r != nil {
			logger.Errorw("Audit emission panicked", "source", source, "panic", r)
		}
	}()

	event := core.NewEvent(fields.Kind, fields.Severity, fields.Message)
	event.Source = source
	event.Status = status
	event.Duration = elapsed
	if fields.Username != "" {
		event.Fields[core.FieldUsername] = fields.Username
	}
	if fields.IP != "" {
		event.Fields[core.FieldIP] = fields.IP
	}
	if fields.SrcIP != "" {
		event.Fields[core.FieldSrcIP] = fields.SrcIP
	}
	if fields.DstIP != "" {
		event.Fields[core.FieldDstIP] = fields.DstIP
	}

	metrics.AuditEvents.WithLabelValues(string(status)).Inc()
	if _, err := emitter.Deliver(ctx, event); err != nil {
		logger.Errorw("Failed to emit audit event", "source", source, "error", err)
	}
}
