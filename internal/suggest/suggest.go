// Package suggest exposes externally generated annotation markers, such as
// suggested sfx or transition points. Markers are read-only: they are drawn
// over the timeline but never become part of the editable model.
package suggest

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/heimdex/heimdex-editor/internal/logging"
)

type Kind string

const (
	KindSfx        Kind = "sfx"
	KindTransition Kind = "transition"
	KindCaption    Kind = "caption"
	KindScene      Kind = "scene"
)

type Marker struct {
	ID         string  `json:"id"`
	Time       float64 `json:"time"`
	Kind       Kind    `json:"kind"`
	Label      string  `json:"label,omitempty"`
	Confidence float64 `json:"confidence,omitempty"`
	// Ref points at the suggested asset, e.g. an sfx file.
	Ref string `json:"ref,omitempty"`
}

// Source supplies the current markers.
type Source interface {
	Markers() []Marker
}

type document struct {
	Markers []Marker `json:"markers"`
}

// FileSource serves markers from a JSON file and reloads it when it changes
// on disk. A missing file means no suggestions.
type FileSource struct {
	path   string
	logger *slog.Logger

	mu       sync.RWMutex
	markers  []Marker
	onChange func([]Marker)
}

func NewFileSource(path string, logger *slog.Logger) *FileSource {
	return &FileSource{path: path, logger: logging.WithComponent(logger, "suggest")}
}

// Markers returns the markers sorted by time.
func (s *FileSource) Markers() []Marker {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.markers)
}

// OnChange registers a callback invoked after every successful reload.
func (s *FileSource) OnChange(fn func([]Marker)) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

// Load reads the file once. On a parse error the previous markers are kept.
func (s *FileSource) Load() error {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		s.set(nil)
		return nil
	}
	if err != nil {
		return fmt.Errorf("read suggestions: %w", err)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parse suggestions %s: %w", s.path, err)
	}
	markers := slices.DeleteFunc(doc.Markers, func(m Marker) bool {
		return m.Time < 0
	})
	slices.SortStableFunc(markers, func(a, b Marker) int { return cmp.Compare(a.Time, b.Time) })
	s.set(markers)
	return nil
}

func (s *FileSource) set(markers []Marker) {
	s.mu.Lock()
	s.markers = markers
	fn := s.onChange
	s.mu.Unlock()
	if fn != nil {
		fn(slices.Clone(markers))
	}
}

// Watch reloads the file on every change until ctx is cancelled. The parent
// directory is watched so atomic replace-by-rename is seen.
func (s *FileSource) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	name := filepath.Clean(s.path)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != name {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			if err := s.Load(); err != nil {
				s.logger.Warn("suggestions reload failed", "path", s.path, "error", err)
				continue
			}
			s.logger.Debug("suggestions reloaded", "count", len(s.Markers()))

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn("suggestions watcher error", "error", err)
		}
	}
}

// Between returns the markers with from <= time < to.
func Between(markers []Marker, from, to float64) []Marker {
	var out []Marker
	for _, m := range markers {
		if m.Time >= from && m.Time < to {
			out = append(out, m)
		}
	}
	return out
}
