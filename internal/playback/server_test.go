package playback

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func newMediaServer(t *testing.T) *Server {
	t.Helper()
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "clip.mp4"), []byte("0123456789"), 0o644); err != nil {
		t.Fatal(err)
	}
	return NewServer(root, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestServeMedia(t *testing.T) {
	tests := []struct {
		name       string
		ref        string
		rangeHdr   string
		wantStatus int
		wantBody   string
	}{
		{"whole file", "clip.mp4", "", http.StatusOK, "0123456789"},
		{"partial", "clip.mp4", "bytes=2-4", http.StatusPartialContent, "234"},
		{"malformed range ignored", "clip.mp4", "frames=1-2", http.StatusOK, "0123456789"},
		{"unsatisfiable", "clip.mp4", "bytes=50-", http.StatusRequestedRangeNotSatisfiable, ""},
		{"missing", "nope.mp4", "", http.StatusNotFound, ""},
		{"traversal", "../secret.mp4", "", http.StatusBadRequest, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newMediaServer(t)
			req := httptest.NewRequest(http.MethodGet, "/media", nil)
			if tt.rangeHdr != "" {
				req.Header.Set("Range", tt.rangeHdr)
			}
			rr := httptest.NewRecorder()

			if err := s.ServeMedia(rr, req, tt.ref); err != nil {
				t.Fatalf("ServeMedia() error = %v", err)
			}
			if rr.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rr.Code, tt.wantStatus)
			}
			if tt.wantBody != "" && rr.Body.String() != tt.wantBody {
				t.Errorf("body = %q, want %q", rr.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestServeMedia_ContentType(t *testing.T) {
	s := newMediaServer(t)
	rr := httptest.NewRecorder()
	s.ServeMedia(rr, httptest.NewRequest(http.MethodGet, "/media", nil), "clip.mp4")
	if got := rr.Header().Get("Content-Type"); got != "video/mp4" {
		t.Errorf("Content-Type = %q, want video/mp4", got)
	}
	if got := rr.Header().Get("Accept-Ranges"); got != "bytes" {
		t.Errorf("Accept-Ranges = %q, want bytes", got)
	}
}
