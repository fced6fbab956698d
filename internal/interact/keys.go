package interact

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"

	"github.com/heimdex/heimdex-editor/internal/history"
	"github.com/heimdex/heimdex-editor/internal/timeline"
)

const (
	NudgeStep       = 0.1
	NudgeStepCoarse = 1.0
)

// KeyEvent is one key press from the host UI. Key uses the names bubbles
// understands ("left", "delete", "esc", ...).
type KeyEvent struct {
	Key   string `json:"key"`
	Shift bool   `json:"shift"`
	Ctrl  bool   `json:"ctrl"`
	Alt   bool   `json:"alt"`
}

// String renders the event the way bindings are written, e.g. "shift+left".
func (e KeyEvent) String() string {
	var b strings.Builder
	if e.Ctrl {
		b.WriteString("ctrl+")
	}
	if e.Alt {
		b.WriteString("alt+")
	}
	if e.Shift {
		b.WriteString("shift+")
	}
	b.WriteString(strings.ToLower(e.Key))
	return b.String()
}

type KeyMap struct {
	Delete           key.Binding
	NudgeLeft        key.Binding
	NudgeRight       key.Binding
	NudgeLeftCoarse  key.Binding
	NudgeRightCoarse key.Binding
	Deselect         key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Delete: key.NewBinding(
			key.WithKeys("delete", "backspace"),
			key.WithHelp("del", "ripple delete"),
		),
		NudgeLeft: key.NewBinding(
			key.WithKeys("left"),
			key.WithHelp("←", "nudge 0.1s earlier"),
		),
		NudgeRight: key.NewBinding(
			key.WithKeys("right"),
			key.WithHelp("→", "nudge 0.1s later"),
		),
		NudgeLeftCoarse: key.NewBinding(
			key.WithKeys("shift+left"),
			key.WithHelp("shift+←", "nudge 1s earlier"),
		),
		NudgeRightCoarse: key.NewBinding(
			key.WithKeys("shift+right"),
			key.WithHelp("shift+→", "nudge 1s later"),
		),
		Deselect: key.NewBinding(
			key.WithKeys("esc", "escape"),
			key.WithHelp("esc", "clear selection"),
		),
	}
}

// Bindings lists every binding, for help output.
func (k KeyMap) Bindings() []key.Binding {
	return []key.Binding{k.Delete, k.NudgeLeft, k.NudgeRight, k.NudgeLeftCoarse, k.NudgeRightCoarse, k.Deselect}
}

// KeyPress runs the shortcut bound to ev. Keys are ignored while a text input
// has focus, and unbound keys do nothing.
func (c *Controller) KeyPress(ev KeyEvent) error {
	if c.textFocus {
		return nil
	}
	switch {
	case key.Matches(ev, c.keys.Deselect):
		if c.drag != nil {
			if err := c.CancelDrag(); err != nil {
				return err
			}
		}
		c.selection = nil
		return nil
	case key.Matches(ev, c.keys.Delete):
		sel, ok := c.Selection()
		if !ok {
			return nil
		}
		return c.Delete(sel.ID)
	case key.Matches(ev, c.keys.NudgeLeft):
		return c.Nudge(-NudgeStep)
	case key.Matches(ev, c.keys.NudgeRight):
		return c.Nudge(NudgeStep)
	case key.Matches(ev, c.keys.NudgeLeftCoarse):
		return c.Nudge(-NudgeStepCoarse)
	case key.Matches(ev, c.keys.NudgeRightCoarse):
		return c.Nudge(NudgeStepCoarse)
	}
	return nil
}

// Nudge shifts the selected cue or sfx by delta seconds, clamped, as its own
// command. Video segments have no free position and are left alone.
func (c *Controller) Nudge(delta float64) error {
	sel, ok := c.Selection()
	if !ok || sel.Kind == timeline.TrackVideo {
		return nil
	}
	if c.locks[sel.Kind] {
		return ErrLockedTrack
	}
	if err := c.Idle(); err != nil {
		return err
	}
	before, _ := c.model.Item(sel.ID)
	start, end, _ := timeline.Bounds(before)

	next := c.model.Clone()
	var err error
	if sel.Kind == timeline.TrackSfx {
		err = next.SetSfxPlacement(sel.ID, timeline.SfxPatch{Start: timeline.Float(start + delta)})
	} else {
		err = next.SetCueRange(sel.ID, timeline.RangePatch{Start: timeline.Float(start + delta), End: timeline.Float(end + delta)})
	}
	if err != nil {
		return err
	}
	after, _ := next.Item(sel.ID)
	if after == before {
		return nil
	}
	return c.history.Execute(&history.Replace{
		Name:   fmt.Sprintf("Nudge %s", sel.Kind),
		Before: []timeline.Item{before},
		After:  []timeline.Item{after},
	})
}
