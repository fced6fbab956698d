package timeline

import (
	"fmt"
	"math"
	"slices"

	"github.com/heimdex/heimdex-editor/internal/geometry"
)

type TrimPatch struct {
	StartTrim *float64
	EndTrim   *float64
}

type RangePatch struct {
	Start *float64
	End   *float64
}

type SfxPatch struct {
	Start            *float64
	Duration         *float64
	SourceTrimOffset *float64
}

// Float returns a pointer to v, for building patches.
func Float(v float64) *float64 { return &v }

func finite(v ...float64) bool { return geometry.IsFinite(v...) }

func patchFinite(ps ...*float64) bool {
	for _, p := range ps {
		if p != nil && !finite(*p) {
			return false
		}
	}
	return true
}

// SetTrim updates a segment's trims, clamping each to
// [0, sourceDuration - otherTrim - Epsilon].
func (m *Model) SetTrim(id string, p TrimPatch) error {
	kind, i := m.locate(id)
	if i < 0 || kind != TrackVideo {
		return fmt.Errorf("segment %s: %w", id, ErrNotFound)
	}
	if !patchFinite(p.StartTrim, p.EndTrim) {
		return fmt.Errorf("segment %s trim: %w", id, ErrInvalidRange)
	}
	s := m.video[i]
	st, en := s.StartTrim, s.EndTrim
	if p.StartTrim != nil {
		st = *p.StartTrim
	}
	if p.EndTrim != nil {
		en = *p.EndTrim
	}
	en = math.Max(0, en)
	st = geometry.ClampRange(st, 0, s.SourceDuration-en-Epsilon)
	en = geometry.ClampRange(en, 0, s.SourceDuration-st-Epsilon)
	s.StartTrim, s.EndTrim = st, en
	if err := validateItem(s); err != nil {
		return err
	}
	m.video[i] = s
	return nil
}

// SetCueRange moves either edge of a subtitle or overlay, or both at once
// (a move that keeps the duration). Edges clamp to [0, TotalDuration]; with
// no video on the timeline there is no upper bound. The edge being moved
// stops Epsilon short of the other one.
func (m *Model) SetCueRange(id string, p RangePatch) error {
	kind, i := m.locate(id)
	if i < 0 || (kind != TrackSubtitle && kind != TrackOverlay) {
		return fmt.Errorf("cue %s: %w", id, ErrNotFound)
	}
	if !patchFinite(p.Start, p.End) {
		return fmt.Errorf("cue %s range: %w", id, ErrInvalidRange)
	}
	cues := m.cues(kind)
	c := (*cues)[i]

	upper := math.Inf(1)
	if total := m.TotalDuration(); total > 0 {
		upper = total
	}

	switch {
	case p.Start != nil && p.End != nil:
		d := *p.End - *p.Start
		if d < Epsilon-tolerance || d > upper+tolerance {
			return fmt.Errorf("cue %s duration %.3f: %w", id, d, ErrInvalidRange)
		}
		start := geometry.ClampRange(*p.Start, 0, upper-d)
		c.Start, c.End = start, start+d
	case p.Start != nil:
		c.Start = geometry.ClampRange(*p.Start, 0, math.Min(c.End-Epsilon, upper))
	case p.End != nil:
		c.End = geometry.ClampRange(*p.End, c.Start+Epsilon, upper)
		if c.End > upper+tolerance {
			return fmt.Errorf("cue %s end beyond timeline: %w", id, ErrInvalidRange)
		}
	default:
		return nil
	}
	if err := validateCue(c); err != nil {
		return err
	}
	(*cues)[i] = c
	return nil
}

// SetSfxPlacement updates an sfx cue. Duration clamps to at least Epsilon
// and, when the source length is known, to what remains of the source after
// SourceTrimOffset. A start-only patch is a move: like SetCueRange it keeps
// the whole cue inside [0, TotalDuration] when there is video to bound it.
func (m *Model) SetSfxPlacement(id string, p SfxPatch) error {
	kind, i := m.locate(id)
	if i < 0 || kind != TrackSfx {
		return fmt.Errorf("sfx %s: %w", id, ErrNotFound)
	}
	if !patchFinite(p.Start, p.Duration, p.SourceTrimOffset) {
		return fmt.Errorf("sfx %s placement: %w", id, ErrInvalidRange)
	}
	if p.Start == nil && p.Duration == nil && p.SourceTrimOffset == nil {
		return nil
	}
	c := m.sfx[i]
	if p.SourceTrimOffset != nil {
		off := math.Max(0, *p.SourceTrimOffset)
		if c.SourceDuration > 0 {
			off = geometry.ClampRange(off, 0, c.SourceDuration-Epsilon)
		}
		c.SourceTrimOffset = off
	}
	switch {
	case p.Start != nil && p.Duration == nil:
		hi := math.Inf(1)
		if total := m.TotalDuration(); total > 0 {
			hi = math.Max(0, total-c.Duration)
		}
		c.Start = geometry.ClampRange(*p.Start, 0, hi)
	case p.Start != nil:
		c.Start = math.Max(0, *p.Start)
	}
	if p.Duration != nil {
		c.Duration = *p.Duration
	}
	c.Duration = math.Max(c.Duration, Epsilon)
	if c.SourceDuration > 0 {
		remaining := c.SourceDuration - c.SourceTrimOffset
		if remaining < Epsilon-tolerance {
			return fmt.Errorf("sfx %s has no source left: %w", id, ErrInvalidRange)
		}
		c.Duration = math.Min(c.Duration, remaining)
	}
	if err := validateItem(c); err != nil {
		return err
	}
	m.sfx[i] = c
	return nil
}

// ReorderSegments assigns order = index for the given permutation of segment
// ids. Transitions whose segments are no longer adjacent are dropped.
func (m *Model) ReorderSegments(ids []string) error {
	if len(ids) != len(m.video) {
		return fmt.Errorf("reorder lists %d of %d segments: %w", len(ids), len(m.video), ErrInvalidRange)
	}
	pos := make(map[string]int, len(ids))
	for i, id := range ids {
		if _, dup := pos[id]; dup {
			return fmt.Errorf("reorder repeats segment %s: %w", id, ErrInvalidRange)
		}
		if kind, j := m.locate(id); j < 0 || kind != TrackVideo {
			return fmt.Errorf("segment %s: %w", id, ErrNotFound)
		}
		pos[id] = i
	}
	for i := range m.video {
		m.video[i].Order = pos[m.video[i].ID]
	}
	m.pruneTransitions()
	return nil
}

// RestoreOrders sets exact order values, e.g. to undo a reorder.
func (m *Model) RestoreOrders(orders []SegmentOrder) error {
	if len(orders) != len(m.video) {
		return fmt.Errorf("restore lists %d of %d segments: %w", len(orders), len(m.video), ErrInvalidRange)
	}
	byID := make(map[string]int, len(orders))
	used := make(map[int]bool, len(orders))
	for _, o := range orders {
		if kind, j := m.locate(o.ID); j < 0 || kind != TrackVideo {
			return fmt.Errorf("segment %s: %w", o.ID, ErrNotFound)
		}
		if used[o.Order] {
			return fmt.Errorf("order %d repeated: %w", o.Order, ErrInvalidRange)
		}
		used[o.Order] = true
		byID[o.ID] = o.Order
	}
	for i := range m.video {
		m.video[i].Order = byID[m.video[i].ID]
	}
	return nil
}

// InsertItem appends a new item to its track.
func (m *Model) InsertItem(it Item) error {
	return m.RestoreItem(it, m.Len(it.Track()))
}

// RestoreItem inserts an item at a storage index, e.g. to undo a removal.
func (m *Model) RestoreItem(it Item, index int) error {
	if it == nil || it.ItemID() == "" {
		return fmt.Errorf("item without id: %w", ErrInvalidRange)
	}
	if _, i := m.locate(it.ItemID()); i >= 0 {
		return fmt.Errorf("item %s already exists: %w", it.ItemID(), ErrInvalidRange)
	}
	if err := validateItem(it); err != nil {
		return err
	}
	if seg, ok := it.(VideoSegment); ok && m.orderTaken(seg.Order, "") {
		return fmt.Errorf("order %d already used: %w", seg.Order, ErrInvalidRange)
	}
	index = max(0, min(index, m.Len(it.Track())))
	switch v := it.(type) {
	case VideoSegment:
		m.video = slices.Insert(m.video, index, v)
	case SfxCue:
		m.sfx = slices.Insert(m.sfx, index, v)
	case Subtitle:
		m.subtitles = slices.Insert(m.subtitles, index, v.Cue)
	case Overlay:
		m.overlays = slices.Insert(m.overlays, index, v.Cue)
	}
	return nil
}

// Removed describes an item taken out of the model.
type Removed struct {
	Item  Item
	Index int
	// Transitions that referenced the item and were dropped with it.
	Transitions []Transition
}

// RemoveItem deletes an item without closing the gap it leaves.
func (m *Model) RemoveItem(id string) (Removed, error) {
	kind, i := m.locate(id)
	if i < 0 {
		return Removed{}, fmt.Errorf("item %s: %w", id, ErrNotFound)
	}
	r := Removed{Item: m.itemAt(kind, i), Index: i}
	switch kind {
	case TrackVideo:
		m.video = slices.Delete(m.video, i, i+1)
		kept := m.transitions[:0:0]
		for _, t := range m.transitions {
			if t.FromID == id || t.ToID == id {
				r.Transitions = append(r.Transitions, t)
				continue
			}
			kept = append(kept, t)
		}
		m.transitions = kept
	case TrackSfx:
		m.sfx = slices.Delete(m.sfx, i, i+1)
	case TrackSubtitle, TrackOverlay:
		cues := m.cues(kind)
		*cues = slices.Delete(*cues, i, i+1)
	}
	return r, nil
}

// ReplaceItem overwrites an existing item with exact values. Commands use it
// to restore captured geometry.
func (m *Model) ReplaceItem(it Item) error {
	if it == nil {
		return fmt.Errorf("nil item: %w", ErrInvalidRange)
	}
	kind, i := m.locate(it.ItemID())
	if i < 0 || kind != it.Track() {
		return fmt.Errorf("item %s: %w", it.ItemID(), ErrNotFound)
	}
	if err := validateItem(it); err != nil {
		return err
	}
	if seg, ok := it.(VideoSegment); ok && m.orderTaken(seg.Order, seg.ID) {
		return fmt.Errorf("order %d already used: %w", seg.Order, ErrInvalidRange)
	}
	m.store(i, it)
	return nil
}

func (m *Model) orderTaken(order int, exceptID string) bool {
	for _, s := range m.video {
		if s.Order == order && s.ID != exceptID {
			return true
		}
	}
	return false
}
