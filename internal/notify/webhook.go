package notify

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
)

// placeholder is substituted for the rendered alert message in both the
// URL and (for methods with a body) the body template.
const placeholder = "{notif_msg}"

// WebhookNotifier delivers a message via an HTTP request whose URL and
// body may reference the rendered message through a placeholder token.
type WebhookNotifier struct {
	Client *http.Client
}

func (w *WebhookNotifier) client() *http.Client {
	if w.Client != nil {
		return w.Client
	}
	return http.DefaultClient
}

func (w *WebhookNotifier) Notify(ctx context.Context, cfg WebhookConfig, message string) error {
	url := strings.ReplaceAll(cfg.URL, placeholder, message)
	method := strings.ToUpper(cfg.Method)
	if method == "" {
		method = http.MethodPost
	}

	var body *bytes.Reader
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		body = bytes.NewReader([]byte(strings.ReplaceAll(cfg.Body, placeholder, message)))
	default:
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("notify: webhook: build request: %w", err)
	}
	for k, v := range cfg.Headers {
		req.Header.Set(k, v)
	}

	resp, err := w.client().Do(req)
	if err != nil {
		return fmt.Errorf("notify: webhook: do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("notify: webhook: unexpected status %d", resp.StatusCode)
	}
	return nil
}
