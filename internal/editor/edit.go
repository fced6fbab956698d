package editor

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"github.com/heimdex/heimdex-editor/internal/export"
	"github.com/heimdex/heimdex-editor/internal/history"
	"github.com/heimdex/heimdex-editor/internal/interact"
	"github.com/heimdex/heimdex-editor/internal/timeline"
)

// State is what a front end needs to draw everything except the items.
type State struct {
	ProjectID       string                      `json:"project_id"`
	PixelsPerSecond float64                     `json:"pixels_per_second"`
	SnapEnabled     bool                        `json:"snap_enabled"`
	Locks           map[timeline.TrackKind]bool `json:"locks"`
	Selection       *interact.Selection         `json:"selection,omitempty"`
	Drag            *interact.DragSession       `json:"drag,omitempty"`
	Playhead        float64                     `json:"playhead"`
	Playing         bool                        `json:"playing"`
	Duration        float64                     `json:"duration"`
	CanUndo         bool                        `json:"can_undo"`
	CanRedo         bool                        `json:"can_redo"`
}

// locked runs fn with the session locked and a project open.
func (s *Session) locked(fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.project == nil {
		return ErrNoProject
	}
	return fn()
}

func (s *Session) Snapshot() (snap timeline.Snapshot, err error) {
	err = s.locked(func() error {
		snap = s.model.Snapshot()
		return nil
	})
	return snap, err
}

func (s *Session) Layout() (layout []timeline.Placement, err error) {
	err = s.locked(func() error {
		layout = s.model.Layout()
		return nil
	})
	return layout, err
}

func (s *Session) State() (st State, err error) {
	err = s.locked(func() error {
		st = State{
			ProjectID:       s.project.ID,
			PixelsPerSecond: s.ctrl.PixelsPerSecond(),
			SnapEnabled:     s.ctrl.SnapEnabled(),
			Locks:           s.ctrl.Locks(),
			Playhead:        s.clock.Playhead(),
			Playing:         s.clock.Playing(),
			Duration:        s.model.TotalDuration(),
			CanUndo:         s.history.CanUndo(),
			CanRedo:         s.history.CanRedo(),
		}
		if sel, ok := s.ctrl.Selection(); ok {
			st.Selection = &sel
		}
		if d, ok := s.ctrl.Drag(); ok {
			st.Drag = &d
		}
		return nil
	})
	return st, err
}

func (s *Session) PointerDown(id string, handle interact.Handle, x float64) error {
	return s.locked(func() error { return s.ctrl.BeginDrag(id, handle, x) })
}

func (s *Session) PointerMove(x float64) error {
	return s.locked(func() error { return s.ctrl.UpdateDrag(x) })
}

func (s *Session) PointerUp() error {
	return s.locked(func() error { return s.ctrl.EndDrag() })
}

func (s *Session) PointerCancel() error {
	return s.locked(func() error { return s.ctrl.CancelDrag() })
}

func (s *Session) DropReorder(draggedID, targetID string, pointerX, targetLeftX, targetWidth float64) error {
	return s.locked(func() error {
		return s.ctrl.DropReorder(draggedID, targetID, pointerX, targetLeftX, targetWidth)
	})
}

// Reorder sets the full clip order in one command.
func (s *Session) Reorder(ids []string) error {
	return s.locked(func() error {
		if s.ctrl.Locked(timeline.TrackVideo) {
			return interact.ErrLockedTrack
		}
		if err := s.ctrl.Idle(); err != nil {
			return err
		}
		cmd, err := history.PlanReorder(s.model, ids)
		if err != nil {
			return err
		}
		return s.history.Execute(cmd)
	})
}

func (s *Session) KeyPress(ev interact.KeyEvent) error {
	return s.locked(func() error { return s.ctrl.KeyPress(ev) })
}

func (s *Session) Split(id string, t float64) error {
	return s.locked(func() error { return s.ctrl.Split(id, t) })
}

// Delete removes an item. A ripple delete also closes the gap it leaves.
func (s *Session) Delete(id string, ripple bool) error {
	return s.locked(func() error {
		if ripple {
			return s.ctrl.Delete(id)
		}
		it, ok := s.model.Item(id)
		if !ok {
			return fmt.Errorf("item %s: %w", id, timeline.ErrNotFound)
		}
		if s.ctrl.Locked(it.Track()) {
			return interact.ErrLockedTrack
		}
		if err := s.ctrl.Idle(); err != nil {
			return err
		}
		cmd, err := history.PlanRemove(s.model, id)
		if err != nil {
			return err
		}
		return s.history.Execute(cmd)
	})
}

// Insert adds an item as one command. Items without an id get a new one;
// video segments are appended after the last clip.
func (s *Session) Insert(it timeline.Item) (added timeline.Item, err error) {
	err = s.locked(func() error {
		if s.ctrl.Locked(it.Track()) {
			return interact.ErrLockedTrack
		}
		if err := s.ctrl.Idle(); err != nil {
			return err
		}
		it = prepareInsert(s.model, it)
		if err := s.history.Execute(history.NewInsert(s.model, it)); err != nil {
			return err
		}
		added = it
		return nil
	})
	return added, err
}

func prepareInsert(m *timeline.Model, it timeline.Item) timeline.Item {
	id := it.ItemID()
	if id == "" {
		id = uuid.NewString()
	}
	switch v := it.(type) {
	case timeline.VideoSegment:
		v.ID = id
		v.Order = m.NextOrder()
		return v
	case timeline.SfxCue:
		v.ID = id
		return v
	case timeline.Subtitle:
		v.ID = id
		return v
	case timeline.Overlay:
		v.ID = id
		return v
	}
	return it
}

func (s *Session) SetTransition(fromID, toID string, spec timeline.TransitionSpec) error {
	return s.locked(func() error {
		if s.ctrl.Locked(timeline.TrackVideo) {
			return interact.ErrLockedTrack
		}
		if err := s.ctrl.Idle(); err != nil {
			return err
		}
		cmd, err := history.PlanUpsertTransition(s.model, fromID, toID, spec)
		if err != nil {
			return err
		}
		return s.history.Execute(cmd)
	})
}

func (s *Session) RemoveTransition(fromID, toID string) error {
	return s.locked(func() error {
		if s.ctrl.Locked(timeline.TrackVideo) {
			return interact.ErrLockedTrack
		}
		if err := s.ctrl.Idle(); err != nil {
			return err
		}
		cmd, err := history.PlanRemoveTransition(s.model, fromID, toID)
		if err != nil {
			return err
		}
		return s.history.Execute(cmd)
	})
}

// Undo reverts the last command. It reports false when there was nothing to
// undo. Undo is refused while a drag is in progress.
func (s *Session) Undo() (done bool, err error) {
	err = s.locked(func() error {
		if err := s.ctrl.Idle(); err != nil {
			return err
		}
		done, err = s.history.Undo()
		return err
	})
	return done, err
}

func (s *Session) Redo() (done bool, err error) {
	err = s.locked(func() error {
		if err := s.ctrl.Idle(); err != nil {
			return err
		}
		done, err = s.history.Redo()
		return err
	})
	return done, err
}

// History returns the undo and redo labels, most recent first.
func (s *Session) History() (undo, redo []string, err error) {
	err = s.locked(func() error {
		undo, redo = s.history.Labels()
		return nil
	})
	return undo, redo, err
}

func (s *Session) Select(id string) error {
	return s.locked(func() error {
		if id == "" {
			s.ctrl.ClearSelection()
			return nil
		}
		return s.ctrl.Select(id)
	})
}

func (s *Session) SetTextInputFocus(focused bool) error {
	return s.locked(func() error {
		s.ctrl.SetTextInputFocus(focused)
		return nil
	})
}

func (s *Session) SetLocked(ctx context.Context, kind timeline.TrackKind, locked bool) error {
	return s.locked(func() error {
		s.ctrl.SetLocked(kind, locked)
		s.view.Locks[kind] = locked
		s.saveSetting(ctx, keyLocks, encodeLocks(s.view.Locks))
		return nil
	})
}

func (s *Session) SetZoom(ctx context.Context, pps float64) error {
	return s.locked(func() error {
		if err := s.ctrl.SetZoom(pps); err != nil {
			return err
		}
		s.view.PixelsPerSecond = s.ctrl.PixelsPerSecond()
		s.saveSetting(ctx, keyZoom, strconv.FormatFloat(s.view.PixelsPerSecond, 'f', -1, 64))
		return nil
	})
}

func (s *Session) SetSnapEnabled(ctx context.Context, on bool) error {
	return s.locked(func() error {
		s.ctrl.SetSnapEnabled(on)
		s.view.SnapEnabled = on
		s.saveSetting(ctx, keySnap, strconv.FormatBool(on))
		return nil
	})
}

// ClickRuler seeks to the time under x and returns it.
func (s *Session) ClickRuler(x float64) (t float64, err error) {
	err = s.locked(func() error {
		t, err = s.ctrl.ClickRuler(x)
		return err
	})
	return t, err
}

func (s *Session) Seek(t float64) error {
	return s.locked(func() error {
		s.clock.Seek(t)
		return nil
	})
}

func (s *Session) Play() error {
	return s.locked(func() error {
		s.clock.Play()
		return nil
	})
}

func (s *Session) Pause() error {
	return s.locked(func() error {
		s.clock.Pause()
		return nil
	})
}

// Export writes the current cut as an edit decision list.
func (s *Session) Export(req export.Request) (resp export.Response, err error) {
	err = s.locked(func() error {
		if req.ProjectName == "" {
			req.ProjectName = s.project.Name
		}
		resp, err = export.Write(s.model, req)
		return err
	})
	return resp, err
}
