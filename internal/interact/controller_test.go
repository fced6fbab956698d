package interact

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/heimdex/heimdex-editor/internal/history"
	"github.com/heimdex/heimdex-editor/internal/timeline"
)

type fakePlayback struct {
	playhead float64
	seeks    []float64
}

func (f *fakePlayback) Playhead() float64 { return f.playhead }
func (f *fakePlayback) Seek(t float64) {
	f.playhead = t
	f.seeks = append(f.seeks, t)
}

type fixture struct {
	model    *timeline.Model
	history  *history.History
	playback *fakePlayback
	ctrl     *Controller
}

func newFixture(t *testing.T, snap bool, items ...timeline.Item) *fixture {
	t.Helper()
	m := timeline.NewModel()
	for _, it := range items {
		if err := m.InsertItem(it); err != nil {
			t.Fatalf("InsertItem(%s) error = %v", it.ItemID(), err)
		}
	}
	h := history.New(m, 0)
	pb := &fakePlayback{}
	return &fixture{
		model:    m,
		history:  h,
		playback: pb,
		ctrl:     New(m, h, pb, Options{PixelsPerSecond: 50, SnapEnabled: snap}),
	}
}

func sub(id string, start, end float64) timeline.Subtitle {
	return timeline.Subtitle{Cue: timeline.Cue{ID: id, Start: start, End: end}}
}

func clips() []timeline.Item {
	return []timeline.Item{
		timeline.VideoSegment{ID: "a", Order: 0, SourceDuration: 10},
		timeline.VideoSegment{ID: "b", Order: 1, SourceDuration: 10},
		timeline.VideoSegment{ID: "c", Order: 2, SourceDuration: 10},
	}
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func (f *fixture) span(t *testing.T, id string) (float64, float64) {
	t.Helper()
	start, end, ok := f.model.Span(id)
	if !ok {
		t.Fatalf("item %s missing", id)
	}
	return start, end
}

func TestClickRuler(t *testing.T) {
	tests := []struct {
		name string
		x    float64
		want float64
	}{
		{"inside", 250, 5},
		{"before start", -10, 0},
		{"past end", 99999, 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, true, clips()...)
			got, err := f.ctrl.ClickRuler(tt.x)
			if err != nil {
				t.Fatalf("ClickRuler() error = %v", err)
			}
			if got != tt.want || f.playback.playhead != tt.want {
				t.Errorf("ClickRuler(%v) = %v, playhead %v; want %v", tt.x, got, f.playback.playhead, tt.want)
			}
		})
	}
}

func TestSetZoom(t *testing.T) {
	f := newFixture(t, true)

	if err := f.ctrl.SetZoom(0); !errors.Is(err, timeline.ErrInvalidRange) {
		t.Errorf("SetZoom(0) error = %v, want ErrInvalidRange", err)
	}
	if err := f.ctrl.SetZoom(math.NaN()); !errors.Is(err, timeline.ErrInvalidRange) {
		t.Errorf("SetZoom(NaN) error = %v, want ErrInvalidRange", err)
	}
	if err := f.ctrl.SetZoom(5000); err != nil {
		t.Fatalf("SetZoom() error = %v", err)
	}
	if got := f.ctrl.PixelsPerSecond(); got != MaxPixelsPerSecond {
		t.Errorf("PixelsPerSecond() = %v, want %v", got, MaxPixelsPerSecond)
	}
}

func TestSelection_DroppedWhenItemDisappears(t *testing.T) {
	f := newFixture(t, true, sub("s", 0, 1))
	if err := f.ctrl.Select("s"); err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	f.model.RemoveItem("s")

	if _, ok := f.ctrl.Selection(); ok {
		t.Error("Selection() still reports a removed item")
	}
	if err := f.ctrl.Select("nope"); !errors.Is(err, timeline.ErrNotFound) {
		t.Errorf("Select() error = %v, want ErrNotFound", err)
	}
}

func TestSplit_Locked(t *testing.T) {
	f := newFixture(t, true, sub("s", 0, 2))
	f.ctrl.SetLocked(timeline.TrackSubtitle, true)
	before := f.model.Snapshot()

	if err := f.ctrl.Split("s", 1); !errors.Is(err, ErrLockedTrack) {
		t.Fatalf("Split() error = %v, want ErrLockedTrack", err)
	}
	if !reflect.DeepEqual(before, f.model.Snapshot()) || f.history.CanUndo() {
		t.Error("locked split changed something")
	}

	f.ctrl.SetLocked(timeline.TrackSubtitle, false)
	if err := f.ctrl.Split("s", 1); err != nil {
		t.Fatalf("Split() error = %v", err)
	}
	if f.model.Len(timeline.TrackSubtitle) != 2 {
		t.Errorf("Len(subtitle) = %d, want 2", f.model.Len(timeline.TrackSubtitle))
	}
}

func TestDropReorder(t *testing.T) {
	tests := []struct {
		name     string
		dragged  string
		target   string
		pointerX float64
		want     []string
	}{
		{"after target", "a", "c", 180, []string{"b", "c", "a"}},
		{"before target", "a", "c", 120, []string{"b", "a", "c"}},
		{"onto itself", "b", "b", 100, []string{"a", "b", "c"}},
		{"no move", "a", "b", 110, []string{"a", "b", "c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, true, clips()...)
			// Target occupies [100, 200) on screen.
			if err := f.ctrl.DropReorder(tt.dragged, tt.target, tt.pointerX, 100, 100); err != nil {
				t.Fatalf("DropReorder() error = %v", err)
			}
			var got []string
			for _, p := range f.model.Layout() {
				got = append(got, p.Segment.ID)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("order = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDropReorder_UndoRestoresOrder(t *testing.T) {
	f := newFixture(t, true, clips()...)
	before := f.model.Snapshot()

	if err := f.ctrl.DropReorder("c", "a", 0, 0, 100); err != nil {
		t.Fatalf("DropReorder() error = %v", err)
	}
	if _, err := f.history.Undo(); err != nil {
		t.Fatalf("Undo() error = %v", err)
	}
	if !reflect.DeepEqual(before, f.model.Snapshot()) {
		t.Error("undo did not restore the original order")
	}
}

func TestDropReorder_Rejects(t *testing.T) {
	f := newFixture(t, true, append(clips(), sub("s", 0, 1))...)

	if err := f.ctrl.DropReorder("s", "a", 0, 0, 10); !errors.Is(err, timeline.ErrNotFound) {
		t.Errorf("DropReorder(subtitle) error = %v, want ErrNotFound", err)
	}
	f.ctrl.SetLocked(timeline.TrackVideo, true)
	if err := f.ctrl.DropReorder("a", "c", 100, 0, 10); !errors.Is(err, ErrLockedTrack) {
		t.Errorf("DropReorder(locked) error = %v, want ErrLockedTrack", err)
	}
}
