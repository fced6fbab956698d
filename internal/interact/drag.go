package interact

import (
	"fmt"
	"math"

	"github.com/heimdex/heimdex-editor/internal/geometry"
	"github.com/heimdex/heimdex-editor/internal/history"
	"github.com/heimdex/heimdex-editor/internal/timeline"
)

// Handle is the part of an item the pointer grabbed.
type Handle string

const (
	HandleBody  Handle = "body"
	HandleLeft  Handle = "left"
	HandleRight Handle = "right"
)

func ParseHandle(s string) (Handle, error) {
	switch h := Handle(s); h {
	case HandleBody, HandleLeft, HandleRight:
		return h, nil
	}
	return "", fmt.Errorf("unknown handle %q", s)
}

type Mode string

const (
	ModeMove        Mode = "move"
	ModeResizeStart Mode = "resizeStart"
	ModeResizeEnd   Mode = "resizeEnd"
	ModeTrimStart   Mode = "trimStart"
	ModeTrimEnd     Mode = "trimEnd"
)

// DragSession is the state of the one active pointer drag.
type DragSession struct {
	ID   string             `json:"id"`
	Kind timeline.TrackKind `json:"kind"`
	Mode Mode               `json:"mode"`

	AnchorX  float64 `json:"anchor_x"`
	LastX    float64 `json:"last_x"`
	Snapped  bool    `json:"snapped"`
	SnapTime float64 `json:"snap_time,omitempty"`

	OriginalStart            float64 `json:"original_start"`
	OriginalEnd              float64 `json:"original_end"`
	OriginalStartTrim        float64 `json:"original_start_trim"`
	OriginalEndTrim          float64 `json:"original_end_trim"`
	OriginalSourceTrimOffset float64 `json:"original_source_trim_offset"`

	original timeline.Item
	points   []float64
}

func modeFor(kind timeline.TrackKind, h Handle) (Mode, bool) {
	video := kind == timeline.TrackVideo
	switch h {
	case HandleBody:
		if video {
			return "", false
		}
		return ModeMove, true
	case HandleLeft:
		if video {
			return ModeTrimStart, true
		}
		return ModeResizeStart, true
	case HandleRight:
		if video {
			return ModeTrimEnd, true
		}
		return ModeResizeEnd, true
	}
	return "", false
}

// Drag returns the active drag session, if any.
func (c *Controller) Drag() (DragSession, bool) {
	if c.drag == nil {
		return DragSession{}, false
	}
	return *c.drag, true
}

// BeginDrag starts a drag on id and selects it. Grabbing the body of a video
// segment only selects it; segments are reordered with DropReorder.
func (c *Controller) BeginDrag(id string, h Handle, pointerX float64) error {
	if err := c.Idle(); err != nil {
		return err
	}
	if !geometry.IsFinite(pointerX) {
		return fmt.Errorf("pointer %v: %w", pointerX, timeline.ErrInvalidRange)
	}
	it, ok := c.model.Item(id)
	if !ok {
		return fmt.Errorf("item %s: %w", id, timeline.ErrNotFound)
	}
	if c.locks[it.Track()] {
		return ErrLockedTrack
	}
	c.selection = &Selection{ID: id, Kind: it.Track()}

	mode, ok := modeFor(it.Track(), h)
	if !ok {
		return nil
	}
	start, end, _ := c.model.Span(id)
	d := &DragSession{
		ID:            id,
		Kind:          it.Track(),
		Mode:          mode,
		AnchorX:       pointerX,
		LastX:         pointerX,
		OriginalStart: start,
		OriginalEnd:   end,
		original:      it,
		points:        c.snapPoints(id),
	}
	switch v := it.(type) {
	case timeline.VideoSegment:
		d.OriginalStartTrim, d.OriginalEndTrim = v.StartTrim, v.EndTrim
	case timeline.SfxCue:
		d.OriginalSourceTrimOffset = v.SourceTrimOffset
	}
	c.drag = d
	return nil
}

// UpdateDrag moves the grabbed edge or body to follow the pointer, snapping
// when enabled. The model changes live; nothing is recorded until EndDrag.
func (c *Controller) UpdateDrag(pointerX float64) error {
	d := c.drag
	if d == nil {
		return ErrNoDrag
	}
	if !geometry.IsFinite(pointerX) {
		return fmt.Errorf("pointer %v: %w", pointerX, timeline.ErrInvalidRange)
	}
	d.LastX = pointerX
	dt := geometry.ToTime(pointerX-d.AnchorX, c.pps)
	d.Snapped = false

	switch d.Mode {
	case ModeMove:
		return c.dragMove(d, dt)
	case ModeResizeStart:
		return c.dragResizeStart(d, dt)
	case ModeResizeEnd:
		return c.dragResizeEnd(d, dt)
	case ModeTrimStart:
		return c.model.SetTrim(d.ID, timeline.TrimPatch{StartTrim: timeline.Float(d.OriginalStartTrim + dt)})
	case ModeTrimEnd:
		end := c.snapTo(d, d.OriginalEnd+dt)
		return c.model.SetTrim(d.ID, timeline.TrimPatch{EndTrim: timeline.Float(d.OriginalEndTrim - (end - d.OriginalEnd))})
	}
	return nil
}

func (c *Controller) snapTo(d *DragSession, t float64) float64 {
	s := geometry.Snap(t, d.points, c.pps, c.snap)
	if s != t {
		d.Snapped, d.SnapTime = true, s
	}
	return s
}

// dragMove keeps the duration. The start edge snaps first; if it does not,
// the end edge may pull the item into place.
func (c *Controller) dragMove(d *DragSession, dt float64) error {
	dur := d.OriginalEnd - d.OriginalStart
	start := c.snapTo(d, d.OriginalStart+dt)
	if !d.Snapped {
		end := c.snapTo(d, d.OriginalEnd+dt)
		start = end - dur
	}
	if d.Kind == timeline.TrackSfx {
		return c.model.SetSfxPlacement(d.ID, timeline.SfxPatch{Start: timeline.Float(start)})
	}
	return c.model.SetCueRange(d.ID, timeline.RangePatch{Start: timeline.Float(start), End: timeline.Float(start + dur)})
}

// dragResizeStart moves the start edge. For sfx the source offset advances
// with it so the audio under the end edge does not move.
func (c *Controller) dragResizeStart(d *DragSession, dt float64) error {
	start := c.snapTo(d, d.OriginalStart+dt)
	if d.Kind != timeline.TrackSfx {
		return c.model.SetCueRange(d.ID, timeline.RangePatch{Start: timeline.Float(start)})
	}
	lo := math.Max(0, d.OriginalStart-d.OriginalSourceTrimOffset)
	start = geometry.ClampRange(start, lo, d.OriginalEnd-timeline.Epsilon)
	delta := start - d.OriginalStart
	return c.model.SetSfxPlacement(d.ID, timeline.SfxPatch{
		Start:            timeline.Float(start),
		Duration:         timeline.Float(d.OriginalEnd - start),
		SourceTrimOffset: timeline.Float(d.OriginalSourceTrimOffset + delta),
	})
}

func (c *Controller) dragResizeEnd(d *DragSession, dt float64) error {
	end := c.snapTo(d, d.OriginalEnd+dt)
	if d.Kind != timeline.TrackSfx {
		return c.model.SetCueRange(d.ID, timeline.RangePatch{End: timeline.Float(end)})
	}
	return c.model.SetSfxPlacement(d.ID, timeline.SfxPatch{Duration: timeline.Float(end - d.OriginalStart)})
}

// EndDrag commits the drag as one command holding the original and final
// values. A drag that changed nothing records nothing.
func (c *Controller) EndDrag() error {
	d := c.drag
	if d == nil {
		return ErrNoDrag
	}
	c.drag = nil
	final, ok := c.model.Item(d.ID)
	if !ok {
		return fmt.Errorf("item %s: %w", d.ID, timeline.ErrNotFound)
	}
	if final == d.original {
		return nil
	}
	return c.history.Execute(&history.Replace{
		Name:   dragLabel(d.Mode, d.Kind),
		Before: []timeline.Item{d.original},
		After:  []timeline.Item{final},
	})
}

// CancelDrag restores the geometry captured at BeginDrag without recording
// anything.
func (c *Controller) CancelDrag() error {
	d := c.drag
	if d == nil {
		return ErrNoDrag
	}
	c.drag = nil
	return c.model.ReplaceItem(d.original)
}

func dragLabel(m Mode, kind timeline.TrackKind) string {
	switch m {
	case ModeMove:
		return "Move " + string(kind)
	case ModeTrimStart, ModeTrimEnd:
		return "Trim " + string(kind)
	}
	return "Resize " + string(kind)
}
