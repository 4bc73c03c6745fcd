package revalidate

import (
	"bytes"
	"context"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/segmentio/encoding/json"
)

const SecretHeader = "X-Revalidate-Secret"

// WebhookInvalidator posts an Event to the rendering layer's revalidation
// endpoint.
type WebhookInvalidator struct {
	url        string
	secret     string
	httpClient *http.Client
}

func NewWebhookInvalidator(url, secret string, timeout time.Duration) *WebhookInvalidator {
	return &WebhookInvalidator{
		url:        url,
		secret:     secret,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (w *WebhookInvalidator) Invalidate(ctx context.Context, paths []string) error {
	body, err := json.Marshal(Event{Paths: paths, Timestamp: time.Now().UTC()})
	if err != nil {
		return errors.WithStack(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return errors.WithStack(err)
	}
	req.Header.Set("Content-Type", "application/json")
	if w.secret != "" {
		req.Header.Set(SecretHeader, w.secret)
	}

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return errors.WithStack(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errors.Errorf("revalidation webhook responded with %d", resp.StatusCode)
	}
	return nil
}
