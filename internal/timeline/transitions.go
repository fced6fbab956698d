package timeline

import (
	"fmt"
	"math"
	"slices"
)

type TransitionSpec struct {
	Type     TransitionType
	Duration float64
}

// UpsertTransition sets the transition between two adjacent segments. A cut
// always has zero duration; other types may not outlast either segment.
func (m *Model) UpsertTransition(fromID, toID string, spec TransitionSpec) error {
	t := Transition{FromID: fromID, ToID: toID, Type: spec.Type, Duration: spec.Duration}
	if t.Type == TransitionCut {
		t.Duration = 0
	}
	if err := m.validateTransition(t); err != nil {
		return err
	}
	from, _ := m.Item(fromID)
	to, _ := m.Item(toID)
	longest := math.Min(from.(VideoSegment).EffectiveDuration(), to.(VideoSegment).EffectiveDuration())
	if t.Duration > longest+tolerance {
		return fmt.Errorf("transition outlasts its segments: %w", ErrInvalidRange)
	}
	if i := m.transitionIndex(fromID, toID); i >= 0 {
		m.transitions[i] = t
		return nil
	}
	m.transitions = append(m.transitions, t)
	return nil
}

func (m *Model) RemoveTransition(fromID, toID string) error {
	i := m.transitionIndex(fromID, toID)
	if i < 0 {
		return fmt.Errorf("transition %s->%s: %w", fromID, toID, ErrNotFound)
	}
	m.transitions = slices.Delete(m.transitions, i, i+1)
	return nil
}

// ReplaceTransitions sets the whole transition list, e.g. to undo a change.
func (m *Model) ReplaceTransitions(ts []Transition) error {
	pairs := make(map[[2]string]bool, len(ts))
	for _, t := range ts {
		key := [2]string{t.FromID, t.ToID}
		if pairs[key] {
			return fmt.Errorf("transition %s->%s repeated: %w", t.FromID, t.ToID, ErrInvalidRange)
		}
		pairs[key] = true
		if err := m.validateTransition(t); err != nil {
			return err
		}
	}
	m.transitions = slices.Clone(ts)
	return nil
}

// Transition returns the transition between two segments, if any.
func (m *Model) Transition(fromID, toID string) (Transition, bool) {
	if i := m.transitionIndex(fromID, toID); i >= 0 {
		return m.transitions[i], true
	}
	return Transition{}, false
}

func (m *Model) transitionIndex(fromID, toID string) int {
	return slices.IndexFunc(m.transitions, func(t Transition) bool {
		return t.FromID == fromID && t.ToID == toID
	})
}

func (m *Model) validateTransition(t Transition) error {
	from, fi := m.locate(t.FromID)
	to, ti := m.locate(t.ToID)
	if fi < 0 || ti < 0 || from != TrackVideo || to != TrackVideo {
		return fmt.Errorf("transition %s->%s: %w", t.FromID, t.ToID, ErrNotFound)
	}
	if !t.Type.Valid() {
		return fmt.Errorf("transition type %q: %w", t.Type, ErrInvalidRange)
	}
	if !finite(t.Duration) || t.Duration < 0 || (t.Type == TransitionCut && t.Duration != 0) {
		return fmt.Errorf("transition duration %v: %w", t.Duration, ErrInvalidRange)
	}
	if !m.adjacent(t.FromID, t.ToID) {
		return fmt.Errorf("segments %s and %s are not adjacent: %w", t.FromID, t.ToID, ErrInvalidRange)
	}
	return nil
}

// pruneTransitions drops transitions whose pair is no longer adjacent.
func (m *Model) pruneTransitions() {
	m.transitions = slices.DeleteFunc(m.transitions, func(t Transition) bool {
		return !m.adjacent(t.FromID, t.ToID)
	})
}
