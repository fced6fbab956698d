package timeline

import (
	"errors"
	"testing"
)

func threeClips(t *testing.T) *Model {
	t.Helper()
	m := NewModel()
	for i, id := range []string{"a", "b", "c"} {
		if err := m.InsertItem(VideoSegment{ID: id, Order: i, SourceDuration: 10}); err != nil {
			t.Fatalf("InsertItem(%s) error = %v", id, err)
		}
	}
	return m
}

func TestLayout_PrefixSum(t *testing.T) {
	m := threeClips(t)

	layout := m.Layout()
	if len(layout) != 3 {
		t.Fatalf("len(Layout()) = %d, want 3", len(layout))
	}

	wantStarts := []float64{0, 10, 20}
	wantEnds := []float64{10, 20, 30}
	for i, p := range layout {
		if p.Start != wantStarts[i] || p.End != wantEnds[i] {
			t.Errorf("layout[%d] = [%v, %v), want [%v, %v)", i, p.Start, p.End, wantStarts[i], wantEnds[i])
		}
	}
	if got := m.TotalDuration(); got != 30 {
		t.Errorf("TotalDuration() = %v, want 30", got)
	}
}

func TestLayout_FollowsOrderNotStorage(t *testing.T) {
	m := NewModel()
	m.InsertItem(VideoSegment{ID: "late", Order: 5, SourceDuration: 4})
	m.InsertItem(VideoSegment{ID: "early", Order: 1, SourceDuration: 6, StartTrim: 1})

	layout := m.Layout()
	if layout[0].Segment.ID != "early" || layout[1].Segment.ID != "late" {
		t.Fatalf("layout order = %s, %s; want early, late", layout[0].Segment.ID, layout[1].Segment.ID)
	}
	if layout[1].Start != 5 || layout[1].End != 9 {
		t.Errorf("late placed at [%v, %v), want [5, 9)", layout[1].Start, layout[1].End)
	}
}

func TestLayout_RecomputedAfterTrim(t *testing.T) {
	m := threeClips(t)

	if err := m.SetTrim("a", TrimPatch{EndTrim: Float(4)}); err != nil {
		t.Fatalf("SetTrim() error = %v", err)
	}

	start, end, ok := m.Span("c")
	if !ok || start != 16 || end != 26 {
		t.Errorf("Span(c) = %v, %v, %v; want 16, 26, true", start, end, ok)
	}
}

func TestItemAt(t *testing.T) {
	m := threeClips(t)
	m.InsertItem(Subtitle{Cue{ID: "s1", Start: 2, End: 4, Text: "hi"}})

	tests := []struct {
		name   string
		kind   TrackKind
		at     float64
		wantID string
	}{
		{"first clip start", TrackVideo, 0, "a"},
		{"boundary belongs to next", TrackVideo, 10, "b"},
		{"last clip", TrackVideo, 29.9, "c"},
		{"past end", TrackVideo, 30, ""},
		{"inside cue", TrackSubtitle, 3, "s1"},
		{"cue end exclusive", TrackSubtitle, 4, ""},
		{"empty track", TrackOverlay, 3, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			it, ok := m.ItemAt(tt.kind, tt.at)
			if tt.wantID == "" {
				if ok {
					t.Errorf("ItemAt() = %s, want none", it.ItemID())
				}
				return
			}
			if !ok || it.ItemID() != tt.wantID {
				t.Errorf("ItemAt() = %v, %v; want %s", it, ok, tt.wantID)
			}
		})
	}
}

func TestEdges_ExcludesItem(t *testing.T) {
	m := NewModel()
	m.InsertItem(VideoSegment{ID: "v", SourceDuration: 10})
	m.InsertItem(Subtitle{Cue{ID: "s", Start: 2, End: 3}})
	m.InsertItem(SfxCue{ID: "x", Start: 4, Duration: 1})

	got := m.Edges("s")
	want := []float64{0, 10, 4, 5}
	if len(got) != len(want) {
		t.Fatalf("Edges() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Edges()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestInsertItem_Rejects(t *testing.T) {
	m := threeClips(t)

	tests := []struct {
		name string
		item Item
	}{
		{"duplicate id", Subtitle{Cue{ID: "a", Start: 0, End: 1}}},
		{"duplicate order", VideoSegment{ID: "d", Order: 1, SourceDuration: 3}},
		{"degenerate cue", Overlay{Cue{ID: "o", Start: 1, End: 1.05}}},
		{"over-trimmed clip", VideoSegment{ID: "e", Order: 9, SourceDuration: 3, StartTrim: 2, EndTrim: 1}},
		{"short sfx", SfxCue{ID: "x", Start: 0, Duration: 0.01}},
		{"missing id", Subtitle{Cue{Start: 0, End: 1}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := m.Snapshot()
			err := m.InsertItem(tt.item)
			if !errors.Is(err, ErrInvalidRange) {
				t.Fatalf("InsertItem() error = %v, want ErrInvalidRange", err)
			}
			if m.Len(tt.item.Track()) != len(itemsOf(before, tt.item.Track())) {
				t.Error("model changed after rejected insert")
			}
		})
	}
}

func itemsOf(s Snapshot, kind TrackKind) []any {
	var out []any
	switch kind {
	case TrackVideo:
		for _, v := range s.Video {
			out = append(out, v)
		}
	case TrackSfx:
		for _, v := range s.Sfx {
			out = append(out, v)
		}
	case TrackSubtitle:
		for _, v := range s.Subtitles {
			out = append(out, v)
		}
	case TrackOverlay:
		for _, v := range s.Overlays {
			out = append(out, v)
		}
	}
	return out
}

func TestParseTrackKind(t *testing.T) {
	tests := []struct {
		in   string
		want TrackKind
		err  bool
	}{
		{"video", TrackVideo, false},
		{"audio/sfx", TrackSfx, false},
		{"SFX", TrackSfx, false},
		{"subtitle", TrackSubtitle, false},
		{"overlay", TrackOverlay, false},
		{"music", "", true},
	}
	for _, tt := range tests {
		got, err := ParseTrackKind(tt.in)
		if (err != nil) != tt.err || got != tt.want {
			t.Errorf("ParseTrackKind(%q) = %q, %v; want %q, err=%v", tt.in, got, err, tt.want, tt.err)
		}
	}
}
