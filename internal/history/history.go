package history

import (
	"fmt"

	"github.com/heimdex/heimdex-editor/internal/timeline"
)

// DefaultLimit is the number of undoable commands kept.
const DefaultLimit = 50

// History runs commands against one model and keeps the bounded undo and
// redo stacks. Like the model it is not safe for concurrent use.
type History struct {
	model     *timeline.Model
	limit     int
	undo      []Command
	redo      []Command
	listeners []Listener
}

// New returns an empty history for m. A limit <= 0 selects DefaultLimit.
func New(m *timeline.Model, limit int) *History {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &History{model: m, limit: limit}
}

// OnCommit registers l for every successful execute, undo and redo.
func (h *History) OnCommit(l Listener) {
	h.listeners = append(h.listeners, l)
}

// Execute applies cmd, pushes it on the undo stack and discards the redo
// stack. When Apply fails nothing is recorded.
func (h *History) Execute(cmd Command) error {
	if err := cmd.Apply(h.model); err != nil {
		return fmt.Errorf("%s: %w", cmd.Label(), err)
	}
	h.undo = append(h.undo, cmd)
	h.redo = nil
	if over := len(h.undo) - h.limit; over > 0 {
		clear(h.undo[:over])
		h.undo = h.undo[over:]
	}
	h.notify(OpExecute, cmd)
	return nil
}

// Undo inverts the most recent command. It reports false when there was
// nothing to undo.
func (h *History) Undo() (bool, error) {
	if len(h.undo) == 0 {
		return false, nil
	}
	cmd := h.undo[len(h.undo)-1]
	if err := cmd.Invert(h.model); err != nil {
		return false, fmt.Errorf("undo %s: %w", cmd.Label(), err)
	}
	h.undo = h.undo[:len(h.undo)-1]
	h.redo = append(h.redo, cmd)
	h.notify(OpUndo, cmd)
	return true, nil
}

// Redo re-applies the most recently undone command.
func (h *History) Redo() (bool, error) {
	if len(h.redo) == 0 {
		return false, nil
	}
	cmd := h.redo[len(h.redo)-1]
	if err := cmd.Apply(h.model); err != nil {
		return false, fmt.Errorf("redo %s: %w", cmd.Label(), err)
	}
	h.redo = h.redo[:len(h.redo)-1]
	h.undo = append(h.undo, cmd)
	h.notify(OpRedo, cmd)
	return true, nil
}

func (h *History) CanUndo() bool { return len(h.undo) > 0 }
func (h *History) CanRedo() bool { return len(h.redo) > 0 }

// Clear drops both stacks, e.g. after a project reload.
func (h *History) Clear() {
	h.undo = nil
	h.redo = nil
}

// Labels returns the undo and redo stacks, most recent first.
func (h *History) Labels() (undo, redo []string) {
	for i := len(h.undo) - 1; i >= 0; i-- {
		undo = append(undo, h.undo[i].Label())
	}
	for i := len(h.redo) - 1; i >= 0; i-- {
		redo = append(redo, h.redo[i].Label())
	}
	return undo, redo
}

func (h *History) notify(op Op, cmd Command) {
	ev := Event{Op: op, Command: cmd, Model: h.model}
	for _, l := range h.listeners {
		l(ev)
	}
}
