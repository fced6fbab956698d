package syncbridge

import (
	"slices"

	"github.com/heimdex/heimdex-editor/internal/history"
	"github.com/heimdex/heimdex-editor/internal/timeline"
)

// Mutation is the persisted effect of one committed command, captured on the
// editing goroutine so the worker never reads the live model.
type Mutation struct {
	Op    history.Op
	Label string

	Upserts []timeline.Item
	Deletes []string
	// Orders is nil when no segment order changed.
	Orders []timeline.SegmentOrder
	// Transitions holds the full list when TransitionsChanged is set.
	Transitions        []timeline.Transition
	TransitionsChanged bool
	// Sequences holds the storage order of every track that gained or lost
	// an item.
	Sequences []Sequence
}

// Sequence is the storage order of the items on one track.
type Sequence struct {
	Kind timeline.TrackKind
	IDs  []string
}

// Capture reads the post-operation state of every item the event's command
// touched. Items that no longer exist become deletes.
func Capture(ev history.Event) Mutation {
	eff := ev.Command.Effect()
	m := Mutation{Op: ev.Op, Label: ev.Command.Label()}
	for _, id := range eff.IDs {
		if it, ok := ev.Model.Item(id); ok {
			m.Upserts = append(m.Upserts, it)
			continue
		}
		if !slices.Contains(m.Deletes, id) {
			m.Deletes = append(m.Deletes, id)
		}
	}
	if eff.Orders {
		m.Orders = ev.Model.Orders()
	}
	if eff.Transitions {
		m.Transitions = ev.Model.Transitions()
		m.TransitionsChanged = true
	}
	for _, kind := range eff.Tracks {
		m.Sequences = append(m.Sequences, Sequence{Kind: kind, IDs: ev.Model.IDs(kind)})
	}
	return m
}

// IDs returns every item id the mutation writes or deletes.
func (m Mutation) IDs() []string {
	ids := slices.Clone(m.Deletes)
	for _, it := range m.Upserts {
		ids = append(ids, it.ItemID())
	}
	for _, o := range m.Orders {
		ids = append(ids, o.ID)
	}
	return ids
}

func (m Mutation) Empty() bool {
	return len(m.Upserts) == 0 && len(m.Deletes) == 0 && m.Orders == nil && !m.TransitionsChanged
}
