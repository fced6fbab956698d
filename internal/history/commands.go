package history

import (
	"errors"
	"fmt"
	"slices"

	"github.com/heimdex/heimdex-editor/internal/timeline"
)

// Replace sets items to captured values. It backs drags, nudges and
// field edits: anything that changes an item without adding or removing one.
type Replace struct {
	Name   string
	Before []timeline.Item
	After  []timeline.Item
}

func (c *Replace) Apply(m *timeline.Model) error  { return replaceAll(m, c.After) }
func (c *Replace) Invert(m *timeline.Model) error { return replaceAll(m, c.Before) }
func (c *Replace) Label() string                  { return c.Name }

func (c *Replace) Effect() Effect {
	return Effect{IDs: itemIDs(c.After)}
}

func replaceAll(m *timeline.Model, items []timeline.Item) error {
	for _, it := range items {
		if err := m.ReplaceItem(it); err != nil {
			return err
		}
	}
	return nil
}

// Insert adds one item at a storage index.
type Insert struct {
	Item  timeline.Item
	Index int
}

func NewInsert(m *timeline.Model, it timeline.Item) *Insert {
	return &Insert{Item: it, Index: m.Len(it.Track())}
}

func (c *Insert) Apply(m *timeline.Model) error { return m.RestoreItem(c.Item, c.Index) }

func (c *Insert) Invert(m *timeline.Model) error {
	_, err := m.RemoveItem(c.Item.ItemID())
	return err
}

func (c *Insert) Label() string { return "Add " + string(c.Item.Track()) }

func (c *Insert) Effect() Effect {
	return Effect{IDs: []string{c.Item.ItemID()}, Tracks: []timeline.TrackKind{c.Item.Track()}}
}

// Remove deletes one item without closing the gap.
type Remove struct {
	Removed           timeline.Removed
	TransitionsBefore []timeline.Transition
}

// PlanRemove captures a removal without changing m.
func PlanRemove(m *timeline.Model, id string) (*Remove, error) {
	before := m.Transitions()
	r, err := m.Clone().RemoveItem(id)
	if err != nil {
		return nil, err
	}
	return &Remove{Removed: r, TransitionsBefore: before}, nil
}

func (c *Remove) Apply(m *timeline.Model) error {
	_, err := m.RemoveItem(c.Removed.Item.ItemID())
	return err
}

func (c *Remove) Invert(m *timeline.Model) error {
	if err := m.RestoreItem(c.Removed.Item, c.Removed.Index); err != nil {
		return err
	}
	return m.ReplaceTransitions(c.TransitionsBefore)
}

func (c *Remove) Label() string { return "Delete " + string(c.Removed.Item.Track()) }

func (c *Remove) Effect() Effect {
	return Effect{
		IDs:         []string{c.Removed.Item.ItemID()},
		Transitions: len(c.Removed.Transitions) > 0,
		Tracks:      []timeline.TrackKind{c.Removed.Item.Track()},
	}
}

// RippleDelete removes an item and shifts every later item back.
type RippleDelete struct {
	Result timeline.RippleResult
}

// PlanRippleDelete computes a ripple delete on a copy of m.
func PlanRippleDelete(m *timeline.Model, id string) (*RippleDelete, error) {
	res, err := m.Clone().RippleDelete(id)
	if err != nil {
		return nil, err
	}
	return &RippleDelete{Result: res}, nil
}

func (c *RippleDelete) Apply(m *timeline.Model) error {
	if _, err := m.RemoveItem(c.Result.Removed.Item.ItemID()); err != nil {
		return err
	}
	for _, s := range c.Result.Shifted {
		if err := m.ReplaceItem(s.After); err != nil {
			return err
		}
	}
	return m.ReplaceTransitions(c.Result.TransitionsAfter)
}

func (c *RippleDelete) Invert(m *timeline.Model) error {
	r := c.Result.Removed
	if err := m.RestoreItem(r.Item, r.Index); err != nil {
		return err
	}
	for _, s := range c.Result.Shifted {
		if err := m.ReplaceItem(s.Before); err != nil {
			return err
		}
	}
	return m.ReplaceTransitions(c.Result.TransitionsBefore)
}

func (c *RippleDelete) Label() string {
	return "Ripple delete " + string(c.Result.Removed.Item.Track())
}

func (c *RippleDelete) Effect() Effect {
	ids := []string{c.Result.Removed.Item.ItemID()}
	for _, s := range c.Result.Shifted {
		ids = append(ids, s.After.ItemID())
	}
	changed := !slices.Equal(c.Result.TransitionsBefore, c.Result.TransitionsAfter)
	return Effect{IDs: ids, Transitions: changed, Tracks: []timeline.TrackKind{c.Result.Removed.Item.Track()}}
}

// Split cuts an item in two, or trims a video segment at the cut.
type Split struct {
	Result timeline.SplitResult
}

// PlanSplit computes a split on a copy of m. The right half's id is fixed
// here so redo recreates the same item.
func PlanSplit(m *timeline.Model, id string, t float64) (*Split, error) {
	res, err := m.Clone().Split(id, t)
	if err != nil {
		return nil, err
	}
	return &Split{Result: res}, nil
}

func (c *Split) Apply(m *timeline.Model) error {
	if err := m.ReplaceItem(c.Result.Left); err != nil {
		return err
	}
	if c.Result.Right == nil {
		return nil
	}
	return m.RestoreItem(c.Result.Right, c.Result.RightIndex)
}

func (c *Split) Invert(m *timeline.Model) error {
	if c.Result.Right != nil {
		if _, err := m.RemoveItem(c.Result.Right.ItemID()); err != nil {
			return err
		}
	}
	return m.ReplaceItem(c.Result.Before)
}

func (c *Split) Label() string { return "Split " + string(c.Result.Before.Track()) }

func (c *Split) Effect() Effect {
	if c.Result.Right == nil {
		return Effect{IDs: []string{c.Result.Left.ItemID()}}
	}
	return Effect{
		IDs:    []string{c.Result.Left.ItemID(), c.Result.Right.ItemID()},
		Tracks: []timeline.TrackKind{c.Result.Right.Track()},
	}
}

// Reorder sets segment order values and the transitions that survive them.
type Reorder struct {
	Before            []timeline.SegmentOrder
	After             []timeline.SegmentOrder
	TransitionsBefore []timeline.Transition
	TransitionsAfter  []timeline.Transition
}

// ErrUnchanged is returned by planners when the edit would be a no-op.
var ErrUnchanged = errors.New("edit changes nothing")

// PlanReorder computes a reorder to the given id permutation.
func PlanReorder(m *timeline.Model, ids []string) (*Reorder, error) {
	next := m.Clone()
	if err := next.ReorderSegments(ids); err != nil {
		return nil, err
	}
	c := &Reorder{
		Before:            m.Orders(),
		After:             next.Orders(),
		TransitionsBefore: m.Transitions(),
		TransitionsAfter:  next.Transitions(),
	}
	if slices.Equal(c.Before, c.After) {
		return nil, ErrUnchanged
	}
	return c, nil
}

func (c *Reorder) Apply(m *timeline.Model) error {
	return setOrders(m, c.After, c.TransitionsAfter)
}

func (c *Reorder) Invert(m *timeline.Model) error {
	return setOrders(m, c.Before, c.TransitionsBefore)
}

func setOrders(m *timeline.Model, orders []timeline.SegmentOrder, ts []timeline.Transition) error {
	if err := m.RestoreOrders(orders); err != nil {
		return err
	}
	if err := m.ReplaceTransitions(ts); err != nil {
		return fmt.Errorf("restore transitions: %w", err)
	}
	return nil
}

func (c *Reorder) Label() string { return "Reorder clips" }

func (c *Reorder) Effect() Effect {
	return Effect{Orders: true, Transitions: !slices.Equal(c.TransitionsBefore, c.TransitionsAfter)}
}

// SetTransitions replaces the transition list.
type SetTransitions struct {
	Before []timeline.Transition
	After  []timeline.Transition
}

// PlanUpsertTransition computes adding or changing one transition.
func PlanUpsertTransition(m *timeline.Model, from, to string, spec timeline.TransitionSpec) (*SetTransitions, error) {
	next := m.Clone()
	if err := next.UpsertTransition(from, to, spec); err != nil {
		return nil, err
	}
	return &SetTransitions{Before: m.Transitions(), After: next.Transitions()}, nil
}

// PlanRemoveTransition computes removing one transition.
func PlanRemoveTransition(m *timeline.Model, from, to string) (*SetTransitions, error) {
	next := m.Clone()
	if err := next.RemoveTransition(from, to); err != nil {
		return nil, err
	}
	return &SetTransitions{Before: m.Transitions(), After: next.Transitions()}, nil
}

func (c *SetTransitions) Apply(m *timeline.Model) error  { return m.ReplaceTransitions(c.After) }
func (c *SetTransitions) Invert(m *timeline.Model) error { return m.ReplaceTransitions(c.Before) }
func (c *SetTransitions) Label() string                  { return "Edit transition" }
func (c *SetTransitions) Effect() Effect                 { return Effect{Transitions: true} }

func itemIDs(items []timeline.Item) []string {
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.ItemID()
	}
	return ids
}
