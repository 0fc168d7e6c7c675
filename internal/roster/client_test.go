package roster

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"automailer/internal/config"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func TestGetClientsScrollAllWithRetry(t *testing.T) {
	attempt := 0

	cfg, _ := config.Load()
	cfg.CRMAPIToken = "test"
	cfg.CRMAPIBaseURL = "https://example.test/api/v1"
	cfg.CRMRateLimitRPS = 1000

	client := NewClient(cfg)
	client.httpClient = &http.Client{
		Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			if r.URL.Path != "/api/v1/contact/scroll" {
				t.Fatalf("unexpected path %s", r.URL.Path)
			}
			if got := r.Header.Get("Authorization"); got != "Bearer test" {
				t.Fatalf("unexpected auth header %q", got)
			}
			attempt++
			if attempt == 1 {
				return &http.Response{
					StatusCode: http.StatusTooManyRequests,
					Body:       io.NopCloser(strings.NewReader(`{"error":"slow down"}`)),
					Header:     make(http.Header),
				}, nil
			}

			payload := map[string]any{"success": true, "data": map[string]any{"contacts": []map[string]any{}, "scrollId": nil}}
			if attempt == 2 {
				payload = map[string]any{"success": true, "data": map[string]any{
					"contacts": []map[string]any{{"id": "c-1", "name": "John Smith", "mailingAddress": "123 Main St"}},
					"scrollId": "abc",
				}}
			}
			if attempt == 3 {
				payload = map[string]any{"success": true, "data": map[string]any{
					"contacts": []map[string]any{{"id": "c-2", "name": "Jane Doe", "address": "44 Palm Ct"}},
					"scrollId": nil,
				}}
			}
			blob, _ := json.Marshal(payload)
			return &http.Response{
				StatusCode: http.StatusOK,
				Body:       io.NopCloser(strings.NewReader(string(blob))),
				Header:     make(http.Header),
			}, nil
		}),
	}

	clients, err := client.GetClientsScrollAll(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(clients) != 2 {
		t.Fatalf("len=%d", len(clients))
	}
	if clients[0].ExternalID == nil || *clients[0].ExternalID != "c-1" {
		t.Fatalf("unexpected external id: %+v", clients[0])
	}
	if clients[1].MailingAddress != "44 Palm Ct" {
		t.Fatalf("address fallback not applied: %+v", clients[1])
	}
}

func TestGetClientsMissingToken(t *testing.T) {
	cfg, _ := config.Load()
	cfg.CRMAPIToken = ""
	client := NewClient(cfg)
	if _, err := client.GetClientsScrollAll(context.Background()); err == nil {
		t.Fatal("expected error without token")
	}
}
