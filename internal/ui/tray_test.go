package ui

import (
	"testing"

	"github.com/heimdex/heimdex-editor/internal/editor"
	"github.com/heimdex/heimdex-editor/internal/history"
	"github.com/heimdex/heimdex-editor/internal/store"
	"github.com/heimdex/heimdex-editor/internal/suggest"
	"github.com/heimdex/heimdex-editor/internal/syncbridge"
)

func TestStepTitle(t *testing.T) {
	tests := []struct {
		verb   string
		labels []string
		want   string
	}{
		{"Undo", nil, "Undo"},
		{"Undo", []string{"Split video", "Add video"}, "Undo Split video"},
		{"Redo", []string{"Reorder clips"}, "Redo Reorder clips"},
	}
	for _, tt := range tests {
		if got := StepTitle(tt.verb, tt.labels); got != tt.want {
			t.Errorf("StepTitle(%q, %v) = %q, want %q", tt.verb, tt.labels, got, tt.want)
		}
	}
}

func TestSyncTitle(t *testing.T) {
	tests := []struct {
		name string
		st   editor.SyncStatus
		want string
	}{
		{"idle", editor.SyncStatus{}, "Sync: up to date"},
		{
			"pending",
			editor.SyncStatus{Targets: map[string]syncbridge.Stats{
				"sqlite": {Pending: 1},
				"cloud":  {Pending: 2},
			}},
			"Sync: 3 pending",
		},
		{"retrying", editor.SyncStatus{LastError: "503", Retryable: true}, "Sync: retrying"},
		{"failed", editor.SyncStatus{LastError: "400"}, "Sync: error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SyncTitle(tt.st); got != tt.want {
				t.Errorf("SyncTitle() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewTray_RegistersCommitListener(t *testing.T) {
	ed := &stubEditor{}
	tr := NewTray(TrayConfig{Editor: ed})
	if ed.listener == nil {
		t.Fatal("NewTray did not register a commit listener")
	}

	ed.listener(history.Event{})
	ed.listener(history.Event{})
	select {
	case <-tr.refresh:
	default:
		t.Fatal("commit did not request a refresh")
	}
	select {
	case <-tr.refresh:
		t.Fatal("refresh requests were not coalesced")
	default:
	}
}

type stubEditor struct {
	listener func(history.Event)
}

func (s *stubEditor) Undo() (bool, error)                  { return false, nil }
func (s *stubEditor) Redo() (bool, error)                  { return false, nil }
func (s *stubEditor) History() ([]string, []string, error) { return nil, nil, nil }
func (s *stubEditor) OnCommit(fn func(history.Event))      { s.listener = fn }
func (s *stubEditor) Project() *store.Project              { return nil }
func (s *stubEditor) SyncStatus() editor.SyncStatus        { return editor.SyncStatus{} }

func TestSuggestionsTitle(t *testing.T) {
	for n, want := range map[int]string{0: "Suggestions: none", 1: "Suggestions: 1 marker", 4: "Suggestions: 4 markers"} {
		if got := SuggestionsTitle(n); got != want {
			t.Errorf("SuggestionsTitle(%d) = %q, want %q", n, got, want)
		}
	}
}

func TestNewTray_TracksSuggestionReloads(t *testing.T) {
	src := &stubSuggestions{markers: []suggest.Marker{{Time: 1}}}
	tr := NewTray(TrayConfig{Editor: &stubEditor{}, Suggestions: src})
	if tr.suggestions != 1 {
		t.Errorf("initial count = %d, want 1", tr.suggestions)
	}
	if src.onChange == nil {
		t.Fatal("NewTray did not subscribe to suggestion reloads")
	}

	src.onChange([]suggest.Marker{{Time: 1}, {Time: 2}, {Time: 3}})
	if tr.suggestions != 3 {
		t.Errorf("count after reload = %d, want 3", tr.suggestions)
	}
	select {
	case <-tr.refresh:
	default:
		t.Fatal("reload did not request a refresh")
	}
}

type stubSuggestions struct {
	markers  []suggest.Marker
	onChange func([]suggest.Marker)
}

func (s *stubSuggestions) Markers() []suggest.Marker                  { return s.markers }
func (s *stubSuggestions) OnChange(fn func(markers []suggest.Marker)) { s.onChange = fn }
