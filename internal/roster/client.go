package roster

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"automailer/internal"
	"automailer/internal/config"
	"automailer/internal/util"
)

// Client talks to the agency management system's contact API. Responses use
// the vendor's {success, errors, data} envelope; large result sets page
// through an opaque scrollId.
type Client struct {
	cfg        config.Config
	httpClient *http.Client
	pace       *pacer
}

type apiResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Errors  json.RawMessage `json:"errors"`
	Data    json.RawMessage `json:"data"`
}

type scrollPayload struct {
	Contacts []map[string]any `json:"contacts"`
	ScrollID *string          `json:"scrollId"`
	Total    *int             `json:"total"`
}

func NewClient(cfg config.Config) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: time.Duration(cfg.CRMTimeoutMs) * time.Millisecond},
		pace:       newPacer(cfg.CRMRateLimitRPS),
	}
}

func (c *Client) GetClientsScrollAll(ctx context.Context) ([]internal.ClientRecord, error) {
	return c.getClientsScroll(ctx, map[string]string{})
}

func (c *Client) GetClientsUpdatedSince(ctx context.Context, days int) ([]internal.ClientRecord, error) {
	if days <= 0 {
		return nil, fmt.Errorf("lookback days must be positive, got %d", days)
	}
	return c.getClientsScroll(ctx, map[string]string{"updatedDays": strconv.Itoa(days)})
}

func (c *Client) getClientsScroll(ctx context.Context, params map[string]string) ([]internal.ClientRecord, error) {
	all := make([]internal.ClientRecord, 0)
	seen := map[string]struct{}{}
	var scrollID string

	for {
		query := map[string]string{}
		for k, v := range params {
			query[k] = v
		}
		if scrollID != "" {
			query["scrollId"] = scrollID
		}

		body, err := c.fetchJSON(ctx, "contact/scroll", query)
		if err != nil {
			return nil, err
		}

		var payload scrollPayload
		if err := json.Unmarshal(body, &payload); err != nil {
			return nil, err
		}

		for _, raw := range payload.Contacts {
			client, err := toClientRecord(raw)
			if err != nil {
				continue
			}
			all = append(all, client)
		}

		if payload.ScrollID == nil || *payload.ScrollID == "" || len(payload.Contacts) == 0 {
			break
		}
		if _, ok := seen[*payload.ScrollID]; ok {
			break
		}
		seen[*payload.ScrollID] = struct{}{}
		scrollID = *payload.ScrollID
	}

	return all, nil
}

func (c *Client) fetchJSON(ctx context.Context, endpoint string, params map[string]string) ([]byte, error) {
	if strings.TrimSpace(c.cfg.CRMAPIToken) == "" {
		return nil, errors.New("missing CRM_API_TOKEN")
	}

	baseURL := strings.TrimRight(c.cfg.CRMAPIBaseURL, "/") + "/"
	u, err := url.Parse(baseURL + endpoint)
	if err != nil {
		return nil, err
	}

	q := u.Query()
	for k, v := range params {
		if strings.TrimSpace(v) != "" {
			q.Set(k, v)
		}
	}
	u.RawQuery = q.Encode()

	var lastErr error
	for attempt := 1; attempt <= 5; attempt++ {
		if err := c.pace.wait(ctx); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+c.cfg.CRMAPIToken)
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if readErr != nil {
			lastErr = readErr
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			if isRetryableStatus(resp.StatusCode) && attempt < 5 {
				backoff := time.Duration(250*(1<<(attempt-1))+rand.Intn(100)) * time.Millisecond
				time.Sleep(backoff)
				lastErr = fmt.Errorf("crm status %d", resp.StatusCode)
				continue
			}
			return nil, fmt.Errorf("crm api error: status=%d body=%s", resp.StatusCode, string(body))
		}

		var apiResp apiResponse
		if err := json.Unmarshal(body, &apiResp); err != nil {
			return nil, err
		}
		if !apiResp.Success {
			return nil, fmt.Errorf("crm api unsuccessful: %s", string(apiResp.Errors))
		}
		return apiResp.Data, nil
	}

	if lastErr == nil {
		lastErr = errors.New("crm request failed")
	}
	return nil, lastErr
}

func isRetryableStatus(status int) bool {
	switch status {
	case 429, 500, 502, 503, 504:
		return true
	default:
		return false
	}
}

func toClientRecord(raw map[string]any) (internal.ClientRecord, error) {
	name := strings.TrimSpace(stringField(raw, "name"))
	if name == "" {
		return internal.ClientRecord{}, errors.New("empty name")
	}

	address := strings.TrimSpace(stringField(raw, "mailingAddress"))
	if address == "" {
		address = strings.TrimSpace(stringField(raw, "address"))
	}
	if address == "" {
		return internal.ClientRecord{}, errors.New("empty address")
	}

	client := internal.ClientRecord{Name: name, MailingAddress: address}
	client.ExternalID = toStringPtr(raw["id"])
	if client.ExternalID == nil {
		client.ExternalID = toStringPtr(raw["contactId"])
	}
	client.UpdatedAt = toStringPtr(raw["updatedAt"])
	return client, nil
}

func stringField(raw map[string]any, key string) string {
	s, _ := raw[key].(string)
	return s
}

func toStringPtr(v any) *string {
	switch t := v.(type) {
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return nil
		}
		return util.StringPtr(s)
	case float64:
		return util.StringPtr(strconv.FormatFloat(t, 'f', -1, 64))
	case json.Number:
		return util.StringPtr(t.String())
	default:
		return nil
	}
}
