package sink

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"time"

	"sentinel/core"
	"sentinel/metrics"
)

// httpTimeout bounds a single transport POST. A hung backend is the
// transport's failure mode, not the core's; the timeout keeps it finite.
const httpTimeout = 10 * time.Second

// newHTTPClient builds the outbound client shared by the HTTP transports.
// Certificate validation stays enabled; TLS 1.2 is the floor.
func newHTTPClient() *http.Client {
	return &http.Client{
		Timeout: httpTimeout,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
		},
	}
}

// postJSON sends one serialized event to url with the given auth header
// and treats any non-2xx response as a transport failure.
func postJSON(ctx context.Context, client *http.Client, url, authHeader, authValue string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "Sentinel/1.0")
	if authValue != "" {
		req.Header.Set(authHeader, authValue)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send event: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("endpoint returned non-2xx status: %d", resp.StatusCode)
	}
	return nil
}

// observeDelivery records the per-leaf delivery metrics.
func observeDelivery(destination string, start time.Time, err error) {
	metrics.DeliveryDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.DeliveryFailures.WithLabelValues(destination).Inc()
		return
	}
	metrics.EventsDelivered.WithLabelValues(destination).Inc()
}

// encodeEvent serializes an event into its compact wire form.
func encodeEvent(event *core.Event) ([]byte, error) {
	data, err := event.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event: %w", err)
	}
	return data, nil
}
