package timeline

import (
	"cmp"
	"slices"
)

// Layout returns the video segments sorted by order with their derived
// positions. It is recomputed on every call.
func (m *Model) Layout() []Placement {
	segs := slices.Clone(m.video)
	slices.SortStableFunc(segs, func(a, b VideoSegment) int { return cmp.Compare(a.Order, b.Order) })

	out := make([]Placement, 0, len(segs))
	t := 0.0
	for _, s := range segs {
		d := s.EffectiveDuration()
		out = append(out, Placement{Segment: s, Start: t, End: t + d})
		t += d
	}
	return out
}

// TotalDuration is the end of the video layout.
func (m *Model) TotalDuration() float64 {
	total := 0.0
	for _, s := range m.video {
		total += s.EffectiveDuration()
	}
	return total
}

// ItemAt returns the item on a track whose [start, end) contains t.
func (m *Model) ItemAt(kind TrackKind, t float64) (Item, bool) {
	if kind == TrackVideo {
		for _, p := range m.Layout() {
			if t >= p.Start && t < p.End {
				return p.Segment, true
			}
		}
		return nil, false
	}
	for _, it := range m.Items(kind) {
		start, end, _ := Bounds(it)
		if t >= start && t < end {
			return it, true
		}
	}
	return nil, false
}

// Edges returns the start and end of every item except excludeID, across
// all tracks, in track order.
func (m *Model) Edges(excludeID string) []float64 {
	var out []float64
	for _, p := range m.Layout() {
		if p.Segment.ID != excludeID {
			out = append(out, p.Start, p.End)
		}
	}
	for _, kind := range []TrackKind{TrackSfx, TrackSubtitle, TrackOverlay} {
		for _, it := range m.Items(kind) {
			if it.ItemID() == excludeID {
				continue
			}
			start, end, _ := Bounds(it)
			out = append(out, start, end)
		}
	}
	return out
}

// NextOrder returns an order value after every existing segment.
func (m *Model) NextOrder() int {
	next := 0
	for _, s := range m.video {
		if s.Order >= next {
			next = s.Order + 1
		}
	}
	return next
}

// SegmentOrder records one segment's order value.
type SegmentOrder struct {
	ID    string `json:"id"`
	Order int    `json:"order"`
}

// Orders returns the order value of every segment in storage order.
func (m *Model) Orders() []SegmentOrder {
	out := make([]SegmentOrder, len(m.video))
	for i, s := range m.video {
		out[i] = SegmentOrder{ID: s.ID, Order: s.Order}
	}
	return out
}

func (m *Model) adjacent(fromID, toID string) bool {
	layout := m.Layout()
	for i := 0; i+1 < len(layout); i++ {
		if layout[i].Segment.ID == fromID && layout[i+1].Segment.ID == toID {
			return true
		}
	}
	return false
}
