package sink

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"sentinel/core"
)

// Elastic delivers events to an Elasticsearch bulk endpoint.
type Elastic struct {
	endpoint string
	token    string
	client   *http.Client
	logger   *zap.SugaredLogger
}

// NewElastic creates an Elasticsearch leaf sink.
func NewElastic(endpoint, token string, logger *zap.SugaredLogger) *Elastic {
	return &Elastic{
		endpoint: endpoint,
		token:    token,
		client:   newHTTPClient(),
		logger:   logger,
	}
}

// Deliver posts the event to the bulk endpoint with an ApiKey header.
func (e *Elastic) Deliver(ctx context.Context, event *core.Event) (Outcome, error) {
	start := time.Now()
	body, err := encodeEvent(event)
	if err != nil {
		return OutcomeDelivered, err
	}

	err = postJSON(ctx, e.client, e.endpoint, "Authorization", "ApiKey "+e.token, body)
	observeDelivery("elastic", start, err)
	if err != nil {
		return OutcomeDelivered, err
	}

	e.logger.Debugw("Delivered event to Elastic", "endpoint", e.endpoint, "event_id", event.EventID)
	return OutcomeDelivered, nil
}
