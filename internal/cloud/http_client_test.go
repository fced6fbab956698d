package cloud

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/heimdex/heimdex-editor/internal/syncbridge"
	"github.com/heimdex/heimdex-editor/internal/timeline"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestHTTPClient_SetItemFields(t *testing.T) {
	var received ItemBatch
	var receivedAuth, receivedPath, receivedMethod string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		receivedAuth = r.Header.Get("Authorization")
		receivedPath = r.URL.Path
		receivedMethod = r.Method
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &received)
		json.NewEncoder(w).Encode(SyncResponse{ProjectID: "proj-1", Revision: 3})
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, "test-token", "proj-1", testLogger())

	items := []timeline.Item{
		timeline.VideoSegment{ID: "a", SourceDuration: 10},
		timeline.SfxCue{ID: "s", Start: 1, Duration: 2},
		timeline.Subtitle{Cue: timeline.Cue{ID: "c", Start: 0, End: 1, Text: "hi"}},
		timeline.Overlay{Cue: timeline.Cue{ID: "o", Start: 2, End: 3}},
	}
	if err := client.SetItemFields(context.Background(), items); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if receivedAuth != "Bearer test-token" {
		t.Errorf("auth = %q, want %q", receivedAuth, "Bearer test-token")
	}
	if receivedMethod != http.MethodPatch || receivedPath != "/api/projects/proj-1/items" {
		t.Errorf("request = %s %s", receivedMethod, receivedPath)
	}
	if received.Len() != 4 {
		t.Fatalf("batch len = %d, want 4", received.Len())
	}
	if received.Subtitles[0].Text != "hi" || received.Overlays[0].ID != "o" {
		t.Errorf("cues = %+v / %+v", received.Subtitles, received.Overlays)
	}
}

func TestHTTPClient_Routes(t *testing.T) {
	tests := []struct {
		name   string
		call   func(*HTTPClient) error
		method string
		path   string
	}{
		{
			"delete",
			func(c *HTTPClient) error { return c.DeleteItems(context.Background(), []string{"a"}) },
			http.MethodPost, "/api/projects/p/items/delete",
		},
		{
			"reorder",
			func(c *HTTPClient) error {
				return c.Reorder(context.Background(), []timeline.SegmentOrder{{ID: "a", Order: 1}})
			},
			http.MethodPut, "/api/projects/p/video/order",
		},
		{
			"transitions",
			func(c *HTTPClient) error { return c.SetTransitions(context.Background(), nil) },
			http.MethodPut, "/api/projects/p/transitions",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var method, path, body string
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				method, path = r.Method, r.URL.Path
				b, _ := io.ReadAll(r.Body)
				body = string(b)
				w.WriteHeader(http.StatusNoContent)
			}))
			defer server.Close()

			if err := tt.call(NewHTTPClient(server.URL, "tok", "p", testLogger())); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if method != tt.method || path != tt.path {
				t.Errorf("request = %s %s, want %s %s", method, path, tt.method, tt.path)
			}
			if tt.name == "transitions" && !strings.Contains(body, `"transitions":[]`) {
				t.Errorf("body = %s, want an empty transitions array", body)
			}
		})
	}
}

func TestHTTPClient_EmptyBatchSkipsRequest(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, "tok", "p", testLogger())
	if err := client.SetItemFields(context.Background(), nil); err != nil {
		t.Fatal(err)
	}
	if err := client.DeleteItems(context.Background(), nil); err != nil {
		t.Fatal(err)
	}
	if called {
		t.Error("expected no request for empty input")
	}
}

func TestHTTPClient_ReturnsRequestError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"detail":"unknown segment"}`))
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, "tok", "p", testLogger())
	err := client.DeleteItems(context.Background(), []string{"x"})

	var reqErr *RequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("expected RequestError, got %T", err)
	}
	if reqErr.StatusCode != http.StatusBadRequest || reqErr.Op != "delete_items" {
		t.Fatalf("error = %+v", reqErr)
	}
	if !strings.Contains(reqErr.Body, "unknown segment") {
		t.Fatalf("body = %q", reqErr.Body)
	}
}

func TestRequestError_IsRetryable(t *testing.T) {
	tests := []struct {
		status int
		want   bool
	}{
		{http.StatusInternalServerError, true},
		{http.StatusBadGateway, true},
		{http.StatusTooManyRequests, true},
		{http.StatusBadRequest, false},
		{http.StatusUnauthorized, false},
	}
	for _, tt := range tests {
		if got := (&RequestError{StatusCode: tt.status}).IsRetryable(); got != tt.want {
			t.Errorf("IsRetryable(%d) = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestSyncError_RetryableFromRequestError(t *testing.T) {
	err := &syncbridge.SyncError{Target: "cloud", Op: "reorder", Err: &RequestError{StatusCode: 503}}
	if !err.IsRetryable() {
		t.Error("expected 503 to surface as retryable through SyncError")
	}
	err = &syncbridge.SyncError{Target: "cloud", Op: "reorder", Err: &RequestError{StatusCode: 403}}
	if err.IsRetryable() {
		t.Error("expected 403 to surface as permanent through SyncError")
	}
}

func TestHTTPClient_SendsCorrelationHeaders(t *testing.T) {
	var requestID, sessionID string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID = r.Header.Get("X-Heimdex-Request-Id")
		sessionID = r.Header.Get("X-Heimdex-Session-Id")
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, "tok", "p", testLogger())
	client.SetSessionID("sess-9")
	if err := client.DeleteItems(context.Background(), []string{"a"}); err != nil {
		t.Fatal(err)
	}
	if requestID == "" {
		t.Error("expected X-Heimdex-Request-Id header")
	}
	if sessionID != "sess-9" {
		t.Errorf("session header = %q, want sess-9", sessionID)
	}
}

func TestHTTPClient_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewHTTPClient(server.URL, "tok", "p", testLogger())
	if err := client.Reorder(ctx, nil); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}

func TestClientsImplementInterface(t *testing.T) {
	var _ Client = (*HTTPClient)(nil)
	var _ Client = (*StubClient)(nil)
}

func TestStubClient_NoOp(t *testing.T) {
	stub := NewStubClient("p", testLogger())
	if err := stub.SetItemFields(context.Background(), []timeline.Item{timeline.SfxCue{ID: "s"}}); err != nil {
		t.Fatalf("stub should not error: %v", err)
	}
}
