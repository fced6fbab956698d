// Package interact turns pointer and keyboard input into timeline edits:
// selection, drag sessions with snapping, reorder drops and shortcuts.
package interact

import (
	"errors"
	"fmt"

	"github.com/heimdex/heimdex-editor/internal/geometry"
	"github.com/heimdex/heimdex-editor/internal/history"
	"github.com/heimdex/heimdex-editor/internal/timeline"
)

var (
	// ErrLockedTrack is returned when an edit targets a locked track. Hosts
	// treat it as a no-op rather than a failure.
	ErrLockedTrack = errors.New("track is locked")
	ErrDragActive  = errors.New("a drag is in progress")
	ErrNoDrag      = errors.New("no drag in progress")
)

const (
	DefaultPixelsPerSecond = 50.0
	MinPixelsPerSecond     = 1.0
	MaxPixelsPerSecond     = 1000.0
)

// Playback is the transport the ruler seeks.
type Playback interface {
	Playhead() float64
	Seek(t float64)
}

// Selection names the single selected item.
type Selection struct {
	ID   string             `json:"id"`
	Kind timeline.TrackKind `json:"kind"`
}

type Options struct {
	PixelsPerSecond float64
	SnapEnabled     bool
	Keys            KeyMap
}

// Controller owns selection, drag state and track locks. It is driven from
// a single goroutine; the editor session serializes calls.
type Controller struct {
	model    *timeline.Model
	history  *history.History
	playback Playback

	pps       float64
	snap      bool
	keys      KeyMap
	locks     map[timeline.TrackKind]bool
	selection *Selection
	drag      *DragSession
	textFocus bool
}

func New(m *timeline.Model, h *history.History, pb Playback, opts Options) *Controller {
	pps := opts.PixelsPerSecond
	if pps <= 0 {
		pps = DefaultPixelsPerSecond
	}
	keys := opts.Keys
	if len(keys.Delete.Keys()) == 0 {
		keys = DefaultKeyMap()
	}
	return &Controller{
		model:    m,
		history:  h,
		playback: pb,
		pps:      pps,
		snap:     opts.SnapEnabled,
		keys:     keys,
		locks:    make(map[timeline.TrackKind]bool),
	}
}

// Selection returns the selected item, dropping a selection whose item no
// longer exists (e.g. after an undo removed it).
func (c *Controller) Selection() (Selection, bool) {
	if c.selection == nil {
		return Selection{}, false
	}
	if _, ok := c.model.Item(c.selection.ID); !ok {
		c.selection = nil
		return Selection{}, false
	}
	return *c.selection, true
}

func (c *Controller) Select(id string) error {
	it, ok := c.model.Item(id)
	if !ok {
		return fmt.Errorf("item %s: %w", id, timeline.ErrNotFound)
	}
	c.selection = &Selection{ID: id, Kind: it.Track()}
	return nil
}

func (c *Controller) ClearSelection() { c.selection = nil }

func (c *Controller) SetLocked(kind timeline.TrackKind, locked bool) {
	c.locks[kind] = locked
}

func (c *Controller) Locked(kind timeline.TrackKind) bool { return c.locks[kind] }

// Locks returns the lock state of every track.
func (c *Controller) Locks() map[timeline.TrackKind]bool {
	out := make(map[timeline.TrackKind]bool, len(timeline.TrackKinds))
	for _, k := range timeline.TrackKinds {
		out[k] = c.locks[k]
	}
	return out
}

func (c *Controller) PixelsPerSecond() float64 { return c.pps }

// SetZoom sets the pixels-per-second scale, clamped to the supported range.
func (c *Controller) SetZoom(pps float64) error {
	if !geometry.IsFinite(pps) || pps <= 0 {
		return fmt.Errorf("zoom %v: %w", pps, timeline.ErrInvalidRange)
	}
	c.pps = geometry.ClampRange(pps, MinPixelsPerSecond, MaxPixelsPerSecond)
	return nil
}

func (c *Controller) SnapEnabled() bool      { return c.snap }
func (c *Controller) SetSnapEnabled(on bool) { c.snap = on }

// SetTextInputFocus suspends keyboard shortcuts while a text field is edited.
func (c *Controller) SetTextInputFocus(focused bool) { c.textFocus = focused }

// ClickRuler seeks playback to the time under x and returns it.
func (c *Controller) ClickRuler(x float64) (float64, error) {
	if !geometry.IsFinite(x) {
		return 0, fmt.Errorf("ruler position %v: %w", x, timeline.ErrInvalidRange)
	}
	t := geometry.ClampRange(geometry.ToTime(x, c.pps), 0, c.model.TotalDuration())
	if c.playback != nil {
		c.playback.Seek(t)
	}
	return t, nil
}

// Idle returns ErrDragActive while a drag is in progress. Nothing may be
// recorded in history until the drag ends or is cancelled, since the drag
// commits against the geometry it captured when it began.
func (c *Controller) Idle() error {
	if c.drag != nil {
		return ErrDragActive
	}
	return nil
}

// Split cuts an item at t as one undoable command.
func (c *Controller) Split(id string, t float64) error {
	it, ok := c.model.Item(id)
	if !ok {
		return fmt.Errorf("item %s: %w", id, timeline.ErrNotFound)
	}
	if c.locks[it.Track()] {
		return ErrLockedTrack
	}
	if err := c.Idle(); err != nil {
		return err
	}
	cmd, err := history.PlanSplit(c.model, id, t)
	if err != nil {
		return err
	}
	return c.history.Execute(cmd)
}

// Delete ripple-deletes an item as one undoable command.
func (c *Controller) Delete(id string) error {
	it, ok := c.model.Item(id)
	if !ok {
		return fmt.Errorf("item %s: %w", id, timeline.ErrNotFound)
	}
	if c.locks[it.Track()] {
		return ErrLockedTrack
	}
	if err := c.Idle(); err != nil {
		return err
	}
	cmd, err := history.PlanRippleDelete(c.model, id)
	if err != nil {
		return err
	}
	if err := c.history.Execute(cmd); err != nil {
		return err
	}
	if c.selection != nil && c.selection.ID == id {
		c.selection = nil
	}
	return nil
}

// snapPoints lists the times a dragged edge is attracted to, in priority
// order.
func (c *Controller) snapPoints(excludeID string) []float64 {
	pts := []float64{0, c.model.TotalDuration()}
	if c.playback != nil {
		pts = append(pts, c.playback.Playhead())
	}
	return append(pts, c.model.Edges(excludeID)...)
}
