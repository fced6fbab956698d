package suggest

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestFileSource_Load(t *testing.T) {
	path := filepath.Join(t.TempDir(), "suggestions.json")
	writeFile(t, path, `{"markers":[
		{"id":"m2","time":12.5,"kind":"transition"},
		{"id":"m1","time":3,"kind":"sfx","label":"whoosh","confidence":0.8},
		{"id":"bad","time":-1,"kind":"sfx"}
	]}`)

	s := NewFileSource(path, testLogger())
	if err := s.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	got := s.Markers()
	if len(got) != 2 {
		t.Fatalf("len(Markers()) = %d, want 2", len(got))
	}
	if got[0].ID != "m1" || got[1].ID != "m2" {
		t.Errorf("markers not sorted by time: %+v", got)
	}
	if got[0].Label != "whoosh" || got[0].Kind != KindSfx {
		t.Errorf("marker = %+v", got[0])
	}
}

func TestFileSource_MissingFile(t *testing.T) {
	s := NewFileSource(filepath.Join(t.TempDir(), "none.json"), testLogger())
	if err := s.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(s.Markers()) != 0 {
		t.Error("expected no markers for a missing file")
	}
}

func TestFileSource_BadJSONKeepsPrevious(t *testing.T) {
	path := filepath.Join(t.TempDir(), "suggestions.json")
	writeFile(t, path, `{"markers":[{"id":"m1","time":1,"kind":"sfx"}]}`)
	s := NewFileSource(path, testLogger())
	if err := s.Load(); err != nil {
		t.Fatal(err)
	}

	writeFile(t, path, `{"markers":[`)
	if err := s.Load(); err == nil {
		t.Fatal("expected parse error")
	}
	if got := s.Markers(); len(got) != 1 || got[0].ID != "m1" {
		t.Errorf("Markers() = %+v, want previous markers", got)
	}
}

func TestFileSource_WatchReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "suggestions.json")
	writeFile(t, path, `{"markers":[]}`)

	s := NewFileSource(path, testLogger())
	if err := s.Load(); err != nil {
		t.Fatal(err)
	}
	changed := make(chan []Marker, 8)
	s.OnChange(func(m []Marker) { changed <- m })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- s.Watch(ctx) }()

	deadline := time.After(5 * time.Second)
	for {
		writeFile(t, path, `{"markers":[{"id":"new","time":4,"kind":"caption"}]}`)
		select {
		case m := <-changed:
			if len(m) == 1 && m[0].ID == "new" {
				cancel()
				if err := <-done; err != nil {
					t.Fatalf("Watch() error = %v", err)
				}
				return
			}
		case <-time.After(100 * time.Millisecond):
		case <-deadline:
			t.Fatal("timed out waiting for reload")
		}
	}
}

func TestBetween(t *testing.T) {
	markers := []Marker{{ID: "a", Time: 0}, {ID: "b", Time: 5}, {ID: "c", Time: 10}}
	got := Between(markers, 0, 10)
	if len(got) != 2 || got[1].ID != "b" {
		t.Errorf("Between(0, 10) = %+v", got)
	}
}
