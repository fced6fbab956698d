package interact

import (
	"errors"
	"testing"

	"github.com/heimdex/heimdex-editor/internal/timeline"
)

func TestKeyEvent_String(t *testing.T) {
	tests := []struct {
		ev   KeyEvent
		want string
	}{
		{KeyEvent{Key: "left"}, "left"},
		{KeyEvent{Key: "Left", Shift: true}, "shift+left"},
		{KeyEvent{Key: "z", Ctrl: true, Shift: true}, "ctrl+shift+z"},
	}
	for _, tt := range tests {
		if got := tt.ev.String(); got != tt.want {
			t.Errorf("%+v.String() = %q, want %q", tt.ev, got, tt.want)
		}
	}
}

func TestKeyPress_Nudge(t *testing.T) {
	tests := []struct {
		name      string
		ev        KeyEvent
		wantStart float64
	}{
		{"right", KeyEvent{Key: "right"}, 1.1},
		{"left", KeyEvent{Key: "left"}, 0.9},
		{"shift right", KeyEvent{Key: "right", Shift: true}, 2},
		{"shift left", KeyEvent{Key: "left", Shift: true}, 0},
		{"unbound", KeyEvent{Key: "q"}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, true, sub("s", 1, 2))
			f.ctrl.Select("s")

			if err := f.ctrl.KeyPress(tt.ev); err != nil {
				t.Fatalf("KeyPress() error = %v", err)
			}
			start, end := f.span(t, "s")
			if !near(start, tt.wantStart) || !near(end-start, 1) {
				t.Errorf("s = [%v, %v], want start %v", start, end, tt.wantStart)
			}
		})
	}
}

func TestKeyPress_EachNudgeIsACommand(t *testing.T) {
	f := newFixture(t, true, timeline.SfxCue{ID: "x", Start: 2, Duration: 1})
	f.ctrl.Select("x")

	for range 3 {
		f.ctrl.KeyPress(KeyEvent{Key: "right"})
	}
	undo, _ := f.history.Labels()
	if len(undo) != 3 {
		t.Fatalf("undo stack = %v, want 3 nudges", undo)
	}

	f.history.Undo()
	if start, _ := f.span(t, "x"); !near(start, 2.2) {
		t.Errorf("after one undo x starts at %v, want 2.2", start)
	}
}

func TestKeyPress_NudgeAtZeroRecordsNothing(t *testing.T) {
	f := newFixture(t, true, sub("s", 0, 1))
	f.ctrl.Select("s")

	f.ctrl.KeyPress(KeyEvent{Key: "left"})
	if f.history.CanUndo() {
		t.Error("a clamped no-op nudge was recorded")
	}
}

func TestKeyPress_NudgeIgnoresVideo(t *testing.T) {
	f := newFixture(t, true, clips()...)
	f.ctrl.Select("b")
	if err := f.ctrl.KeyPress(KeyEvent{Key: "right"}); err != nil {
		t.Fatalf("KeyPress() error = %v", err)
	}
	if f.history.CanUndo() {
		t.Error("nudging a video segment recorded a command")
	}
}

func TestKeyPress_DeleteRipples(t *testing.T) {
	f := newFixture(t, true, sub("a", 0, 2), sub("b", 2, 5), sub("c", 5, 6))
	f.ctrl.Select("a")

	if err := f.ctrl.KeyPress(KeyEvent{Key: "backspace"}); err != nil {
		t.Fatalf("KeyPress() error = %v", err)
	}
	if _, ok := f.model.Item("a"); ok {
		t.Error("a still present")
	}
	if start, _ := f.span(t, "b"); start != 0 {
		t.Errorf("b starts at %v, want 0", start)
	}
	if start, _ := f.span(t, "c"); start != 3 {
		t.Errorf("c starts at %v, want 3", start)
	}
	if _, ok := f.ctrl.Selection(); ok {
		t.Error("selection survived deleting its item")
	}

	f.history.Undo()
	if start, _ := f.span(t, "c"); start != 5 {
		t.Errorf("after undo c starts at %v, want 5", start)
	}
}

func TestKeyPress_DeleteOnLockedTrack(t *testing.T) {
	f := newFixture(t, true, sub("a", 0, 2))
	f.ctrl.Select("a")
	f.ctrl.SetLocked(timeline.TrackSubtitle, true)

	if err := f.ctrl.KeyPress(KeyEvent{Key: "delete"}); !errors.Is(err, ErrLockedTrack) {
		t.Fatalf("KeyPress() error = %v, want ErrLockedTrack", err)
	}
	if _, ok := f.model.Item("a"); !ok {
		t.Error("locked item deleted")
	}
}

func TestKeyPress_IgnoredWhileTyping(t *testing.T) {
	f := newFixture(t, true, sub("a", 0, 2))
	f.ctrl.Select("a")
	f.ctrl.SetTextInputFocus(true)

	f.ctrl.KeyPress(KeyEvent{Key: "delete"})
	f.ctrl.KeyPress(KeyEvent{Key: "esc"})
	if _, ok := f.model.Item("a"); !ok {
		t.Error("delete ran while a text input had focus")
	}
	if _, ok := f.ctrl.Selection(); !ok {
		t.Error("escape ran while a text input had focus")
	}
}

func TestKeyPress_EscapeCancelsDrag(t *testing.T) {
	f := newFixture(t, false, sub("a", 1, 2))
	f.ctrl.BeginDrag("a", HandleBody, 100)
	f.ctrl.UpdateDrag(300)

	if err := f.ctrl.KeyPress(KeyEvent{Key: "esc"}); err != nil {
		t.Fatalf("KeyPress() error = %v", err)
	}
	if _, ok := f.ctrl.Drag(); ok {
		t.Error("drag still active")
	}
	if _, ok := f.ctrl.Selection(); ok {
		t.Error("selection not cleared")
	}
	if start, _ := f.span(t, "a"); start != 1 {
		t.Errorf("a starts at %v, want 1", start)
	}
	if f.history.CanUndo() {
		t.Error("escape recorded a command")
	}
}

func TestKeyPress_SfxNudgeStopsAtTimelineEnd(t *testing.T) {
	items := append(clips(), timeline.SfxCue{ID: "x", Start: 28.5, Duration: 1})
	f := newFixture(t, true, items...)
	f.ctrl.Select("x")

	f.ctrl.KeyPress(KeyEvent{Key: "right", Shift: true})
	if start, end := f.span(t, "x"); !near(start, 29) || !near(end, 30) {
		t.Errorf("x = [%v, %v], want [29, 30]", start, end)
	}

	f.ctrl.KeyPress(KeyEvent{Key: "right"})
	if undo, _ := f.history.Labels(); len(undo) != 1 {
		t.Errorf("undo stack = %v, want only the first nudge", undo)
	}
}
