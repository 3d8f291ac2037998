package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mco-dev/mco/internal/iox"
)

// WebhookDefaultTimeout bounds how long a single completion POST may
// take before it's abandoned.
const WebhookDefaultTimeout = 10 * time.Second

// WebhookConfig configures the webhook notifier.
type WebhookConfig struct {
	URL     string
	Headers map[string]string
	Timeout time.Duration
}

// Webhook POSTs a run-completed event once, best-effort. The dispatch
// path that calls Notify discards its error, so there is nothing to
// gain from an internal retry loop; callers wanting resilience can wrap
// Notifier with their own policy.
type Webhook struct {
	config WebhookConfig
	client *http.Client
}

// NewWebhook creates a webhook notifier. Returns an error if URL is empty.
func NewWebhook(cfg WebhookConfig) (*Webhook, error) {
	if cfg.URL == "" {
		return nil, errors.New("webhook notifier requires a URL")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = WebhookDefaultTimeout
	}
	return &Webhook{config: cfg, client: &http.Client{Timeout: cfg.Timeout}}, nil
}

// Notify implements Notifier.
func (w *Webhook) Notify(ctx context.Context, event RunCompletedEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("webhook: marshal event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.config.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("webhook: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range w.config.Headers {
		req.Header.Set(k, v)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook: request failed: %w", err)
	}
	defer iox.DiscardClose(resp.Body)
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{Code: resp.StatusCode}
	}
	return nil
}

// StatusError is returned for non-2xx HTTP responses.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.Code)
}

// Close implements Notifier.
func (w *Webhook) Close() error {
	w.client.CloseIdleConnections()
	return nil
}

var _ Notifier = (*Webhook)(nil)
