package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"sentinel/core"
)

// Splunk delivers events to a Splunk HTTP Event Collector.
type Splunk struct {
	hecURL   string
	hecToken string
	client   *http.Client
	logger   *zap.SugaredLogger
}

// NewSplunk creates a Splunk HEC leaf sink.
func NewSplunk(hecURL, hecToken string, logger *zap.SugaredLogger) *Splunk {
	return &Splunk{
		hecURL:   hecURL,
		hecToken: hecToken,
		client:   newHTTPClient(),
		logger:   logger,
	}
}

// Deliver posts the event wrapped in the HEC envelope.
func (s *Splunk) Deliver(ctx context.Context, event *core.Event) (Outcome, error) {
	start := time.Now()
	envelope := map[string]interface{}{
		"event":      event,
		"sourcetype": "sentinel:event",
		"time":       event.Timestamp.Unix(),
	}
	body, err := json.Marshal(envelope)
	if err != nil {
		return OutcomeDelivered, fmt.Errorf("failed to marshal HEC envelope: %w", err)
	}

	err = postJSON(ctx, s.client, s.hecURL, "Authorization", "Splunk "+s.hecToken, body)
	observeDelivery("splunk", start, err)
	if err != nil {
		return OutcomeDelivered, err
	}

	s.logger.Debugw("Delivered event to Splunk", "hec_url", s.hecURL, "event_id", event.EventID)
	return OutcomeDelivered, nil
}
