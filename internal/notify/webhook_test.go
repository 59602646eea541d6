package notify

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestWebhookNotifierSubstitutesPlaceholderInURLAndBody(t *testing.T) {
	var gotURL, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotURL = r.URL.RawQuery
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	cfg := WebhookConfig{
		URL:    srv.URL + "?msg=" + placeholder,
		Method: http.MethodPost,
		Body:   `{"text":"` + placeholder + `"}`,
	}
	n := &WebhookNotifier{}
	if err := n.Notify(context.Background(), cfg, "diskusagehigh"); err != nil {
		t.Fatalf("notify: %v", err)
	}

	if !strings.Contains(gotURL, "diskusagehigh") {
		t.Errorf("request URL query %q should contain the substituted message", gotURL)
	}
	if !strings.Contains(gotBody, "diskusagehigh") {
		t.Errorf("request body %q should contain the substituted message", gotBody)
	}
}

func TestWebhookNotifierGetHasNoBodySubstitution(t *testing.T) {
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	cfg := WebhookConfig{URL: srv.URL, Method: http.MethodGet, Body: placeholder}
	n := &WebhookNotifier{}
	if err := n.Notify(context.Background(), cfg, "hello"); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if len(gotBody) != 0 {
		t.Errorf("GET request should carry no body, got %q", gotBody)
	}
}

func TestWebhookNotifierNonSuccessStatusIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	n := &WebhookNotifier{}
	cfg := WebhookConfig{URL: srv.URL, Method: http.MethodPost}
	if err := n.Notify(context.Background(), cfg, "x"); err == nil {
		t.Errorf("expected an error for a 500 response")
	}
}
