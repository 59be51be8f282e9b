package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/eansearch/eansearch-go/internal/metrics"
)

// WebhookNotifier implements Notifier by POSTing alerts as JSON to an
// arbitrary HTTP endpoint.
type WebhookNotifier struct {
	url     string
	headers map[string]string
	client  *http.Client
}

// NewWebhookNotifier creates a new WebhookNotifier.
func NewWebhookNotifier(url string, opts ...WebhookOption) *WebhookNotifier {
	w := &WebhookNotifier{
		url:    url,
		client: &http.Client{Timeout: defaultWebhookTimeout},
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// WebhookOption configures a WebhookNotifier.
type WebhookOption func(*WebhookNotifier)

// WithWebhookHTTPClient sets a custom HTTP client.
func WithWebhookHTTPClient(c *http.Client) WebhookOption {
	return func(w *WebhookNotifier) {
		w.client = c
	}
}

// WithWebhookHeaders sets extra headers sent with every request, such as
// authorization tokens.
func WithWebhookHeaders(headers map[string]string) WebhookOption {
	return func(w *WebhookNotifier) {
		w.headers = headers
	}
}

// webhookAlert is the wire shape of one alert in a webhook payload.
type webhookAlert struct {
	Kind        string `json:"kind"`
	WatchLabel  string `json:"watch_label,omitempty"`
	Barcode     string `json:"barcode,omitempty"`
	ProductName string `json:"product_name,omitempty"`
	Quality     int    `json:"quality,omitempty"`
	Message     string `json:"message"`
}

// webhookPayload is the JSON body POSTed to the endpoint.
type webhookPayload struct {
	Title  string         `json:"title,omitempty"`
	Alerts []webhookAlert `json:"alerts"`
}

func toWebhookAlert(alert *AlertPayload) webhookAlert {
	return webhookAlert{
		Kind:        alert.Kind,
		WatchLabel:  alert.WatchLabel,
		Barcode:     alert.Barcode,
		ProductName: alert.ProductName,
		Quality:     alert.Quality,
		Message:     alert.Message,
	}
}

// SendAlert POSTs a single alert.
func (w *WebhookNotifier) SendAlert(ctx context.Context, alert AlertPayload) error {
	payload := webhookPayload{
		Alerts: []webhookAlert{toWebhookAlert(&alert)},
	}
	return w.post(ctx, payload)
}

// SendBatchAlert POSTs multiple alerts as a single request.
func (w *WebhookNotifier) SendBatchAlert(
	ctx context.Context,
	alerts []AlertPayload,
	title string,
) error {
	out := make([]webhookAlert, 0, len(alerts))
	for i := range alerts {
		out = append(out, toWebhookAlert(&alerts[i]))
	}

	payload := webhookPayload{Title: title, Alerts: out}
	return w.post(ctx, payload)
}

func (w *WebhookNotifier) post(ctx context.Context, payload webhookPayload) error {
	start := time.Now()
	defer func() {
		metrics.NotificationDuration.Observe(time.Since(start).Seconds())
	}()

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		w.url,
		bytes.NewReader(body),
	)
	if err != nil {
		return fmt.Errorf("creating webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range w.headers {
		req.Header.Set(k, v)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("sending webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return fmt.Errorf("webhook returned %d (body unreadable)", resp.StatusCode)
		}
		return fmt.Errorf("webhook returned %d: %s", resp.StatusCode, respBody)
	}

	return nil
}
