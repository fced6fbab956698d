// Package history implements reversible edits over a timeline model and the
// bounded undo/redo stacks that replay them.
package history

import (
	"github.com/heimdex/heimdex-editor/internal/timeline"
)

// Command is one committed, reversible mutation. Implementations capture the
// absolute values before and after the edit, so Apply and Invert do not
// depend on the model's state at call time beyond the ids they name.
type Command interface {
	Apply(m *timeline.Model) error
	Invert(m *timeline.Model) error
	// Label is a short human description, e.g. "Move subtitle".
	Label() string
	// Effect reports what the command touches, in either direction.
	Effect() Effect
}

// Effect lists what a command touches so collaborators can mirror it.
type Effect struct {
	// IDs of items whose fields changed, were created or were removed.
	IDs []string
	// Orders is set when segment order values changed.
	Orders bool
	// Transitions is set when the transition list changed.
	Transitions bool
	// Tracks lists the tracks that gained or lost an item, so their
	// storage order has to be written again.
	Tracks []timeline.TrackKind
}

// Op identifies which History operation ran a command.
type Op string

const (
	OpExecute Op = "execute"
	OpUndo    Op = "undo"
	OpRedo    Op = "redo"
)

// Event is delivered to listeners after a command has been applied or
// inverted. Model is already in its post-operation state.
type Event struct {
	Op      Op
	Command Command
	Model   *timeline.Model
}

// Listener is notified synchronously on the caller's goroutine.
type Listener func(Event)
