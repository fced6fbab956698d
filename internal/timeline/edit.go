package timeline

import (
	"fmt"
	"math"
	"slices"

	"github.com/google/uuid"
)

// SplitResult describes a split. Right is nil for video segments, which are
// split by trimming rather than duplicated.
type SplitResult struct {
	Before     Item
	Left       Item
	Right      Item
	RightIndex int
}

// Split cuts an item at t, which must lie strictly inside it.
//
// A video segment keeps only its left part: its end trim grows until its
// derived end equals t. Cues and sfx cues become two items; the right half
// gets a new id and, for sfx, a source offset advanced by the split point.
func (m *Model) Split(id string, t float64) (SplitResult, error) {
	kind, i := m.locate(id)
	if i < 0 {
		return SplitResult{}, fmt.Errorf("item %s: %w", id, ErrNotFound)
	}
	start, end, _ := m.Span(id)
	if !finite(t) || t <= start || t >= end {
		return SplitResult{}, fmt.Errorf("split at %.3f outside (%.3f, %.3f): %w", t, start, end, ErrInvalidRange)
	}
	if t-start < Epsilon-tolerance {
		return SplitResult{}, fmt.Errorf("left part shorter than %.1fs: %w", Epsilon, ErrInvalidRange)
	}
	if kind != TrackVideo && end-t < Epsilon-tolerance {
		return SplitResult{}, fmt.Errorf("right part shorter than %.1fs: %w", Epsilon, ErrInvalidRange)
	}

	before := m.itemAt(kind, i)
	res := SplitResult{Before: before, RightIndex: i + 1}

	switch v := before.(type) {
	case VideoSegment:
		v.EndTrim = v.SourceDuration - v.StartTrim - (t - start)
		res.Left = v
	case SfxCue:
		right := v
		right.ID = uuid.NewString()
		right.Start = t
		right.Duration = end - t
		right.SourceTrimOffset = v.SourceTrimOffset + (t - v.Start)
		v.Duration = t - v.Start
		res.Left, res.Right = v, right
	case Subtitle:
		right := v
		right.ID = uuid.NewString()
		right.Start = t
		v.End = t
		res.Left, res.Right = v, right
	case Overlay:
		right := v
		right.ID = uuid.NewString()
		right.Start = t
		v.End = t
		res.Left, res.Right = v, right
	}

	if err := validateItem(res.Left); err != nil {
		return SplitResult{}, err
	}
	if res.Right != nil {
		if err := validateItem(res.Right); err != nil {
			return SplitResult{}, err
		}
	}
	m.store(i, res.Left)
	if res.Right != nil {
		if err := m.RestoreItem(res.Right, res.RightIndex); err != nil {
			m.store(i, before)
			return SplitResult{}, err
		}
	}
	return res, nil
}

// Shift records an item moved by a ripple.
type Shift struct {
	Before Item
	After  Item
}

type RippleResult struct {
	Removed           Removed
	Duration          float64
	Shifted           []Shift
	TransitionsBefore []Transition
	TransitionsAfter  []Transition
}

// RippleDelete removes an item and closes the gap it leaves on every track:
// each cue, overlay and sfx cue starting at or after the deleted item's end
// moves earlier by its duration. Later video segments follow implicitly
// through the derived layout.
func (m *Model) RippleDelete(id string) (RippleResult, error) {
	start, end, ok := m.Span(id)
	if !ok {
		return RippleResult{}, fmt.Errorf("item %s: %w", id, ErrNotFound)
	}
	d := end - start
	res := RippleResult{Duration: d, TransitionsBefore: slices.Clone(m.transitions)}

	removed, err := m.RemoveItem(id)
	if err != nil {
		return RippleResult{}, err
	}
	res.Removed = removed

	for _, kind := range []TrackKind{TrackSfx, TrackSubtitle, TrackOverlay} {
		for i, it := range m.Items(kind) {
			s, _, _ := Bounds(it)
			if s < end-tolerance {
				continue
			}
			moved := WithStart(it, math.Max(0, s-d))
			m.store(i, moved)
			res.Shifted = append(res.Shifted, Shift{Before: it, After: moved})
		}
	}
	res.TransitionsAfter = slices.Clone(m.transitions)
	return res, nil
}
