package cloud

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/heimdex/heimdex-editor/internal/timeline"
)

// RequestError represents a non-2xx response from the sync endpoint.
type RequestError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("cloud %s failed: HTTP %d: %s", e.Op, e.StatusCode, e.Body)
}

// IsRetryable returns true for server errors (5xx) and rate limiting.
// Other client errors (4xx) are considered permanent.
func (e *RequestError) IsRetryable() bool {
	return e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests
}

// HTTPClient mirrors timeline edits to the Heimdex SaaS project API.
type HTTPClient struct {
	baseURL    string
	token      string
	projectID  string
	sessionID  string
	httpClient *http.Client
	logger     *slog.Logger
}

func NewHTTPClient(baseURL, token, projectID string, logger *slog.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL:   baseURL,
		token:     token,
		projectID: projectID,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

func (c *HTTPClient) ProjectID() string {
	return c.projectID
}

// SetSessionID tags every request with the local editing session so the
// server can correlate a burst of edits.
func (c *HTTPClient) SetSessionID(id string) {
	c.sessionID = id
}

func (c *HTTPClient) SetItemFields(ctx context.Context, items []timeline.Item) error {
	batch := NewItemBatch(items)
	if batch.Len() == 0 {
		return nil
	}
	return c.send(ctx, "set_item_fields", http.MethodPatch, "items", batch)
}

func (c *HTTPClient) DeleteItems(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	return c.send(ctx, "delete_items", http.MethodPost, "items/delete", DeleteRequest{IDs: ids})
}

func (c *HTTPClient) Reorder(ctx context.Context, orders []timeline.SegmentOrder) error {
	return c.send(ctx, "reorder", http.MethodPut, "video/order", ReorderRequest{Orders: orders})
}

func (c *HTTPClient) SetTransitions(ctx context.Context, ts []timeline.Transition) error {
	if ts == nil {
		ts = []timeline.Transition{}
	}
	return c.send(ctx, "set_transitions", http.MethodPut, "transitions", TransitionsRequest{Transitions: ts})
}

func (c *HTTPClient) send(ctx context.Context, op, method, path string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", op, err)
	}

	endpoint := fmt.Sprintf("%s/api/projects/%s/%s", c.baseURL, url.PathEscape(c.projectID), path)
	req, err := http.NewRequestWithContext(ctx, method, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("X-Heimdex-Request-Id", requestID)
	if c.sessionID != "" {
		req.Header.Set("X-Heimdex-Session-Id", c.sessionID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		var result SyncResponse
		if err := json.Unmarshal(respBody, &result); err == nil && result.Revision > 0 {
			c.logger.Debug("cloud sync succeeded",
				"op", op,
				"request_id", requestID,
				"revision", result.Revision,
			)
		}
		return nil
	}

	return &RequestError{Op: op, StatusCode: resp.StatusCode, Body: string(respBody)}
}
