package interact

import (
	"errors"
	"fmt"
	"slices"

	"github.com/heimdex/heimdex-editor/internal/history"
	"github.com/heimdex/heimdex-editor/internal/timeline"
)

// DropReorder moves the dragged segment before or after the target depending
// on which half of the target the pointer was released over.
func (c *Controller) DropReorder(draggedID, targetID string, pointerX, targetLeftX, targetWidth float64) error {
	for _, id := range []string{draggedID, targetID} {
		it, ok := c.model.Item(id)
		if !ok || it.Track() != timeline.TrackVideo {
			return fmt.Errorf("segment %s: %w", id, timeline.ErrNotFound)
		}
	}
	if c.locks[timeline.TrackVideo] {
		return ErrLockedTrack
	}
	if err := c.Idle(); err != nil {
		return err
	}
	if draggedID == targetID {
		return nil
	}

	var ids []string
	for _, p := range c.model.Layout() {
		if p.Segment.ID != draggedID {
			ids = append(ids, p.Segment.ID)
		}
	}
	at := slices.Index(ids, targetID)
	if pointerX >= targetLeftX+targetWidth/2 {
		at++
	}
	ids = slices.Insert(ids, at, draggedID)

	cmd, err := history.PlanReorder(c.model, ids)
	if errors.Is(err, history.ErrUnchanged) {
		return nil
	}
	if err != nil {
		return err
	}
	return c.history.Execute(cmd)
}
