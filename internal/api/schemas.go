package api

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/heimdex/heimdex-editor/internal/editor"
	"github.com/heimdex/heimdex-editor/internal/geometry"
	"github.com/heimdex/heimdex-editor/internal/store"
	"github.com/heimdex/heimdex-editor/internal/suggest"
	"github.com/heimdex/heimdex-editor/internal/timeline"
)

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	UptimeS int64  `json:"uptime_s"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

type StatusResponse struct {
	Project *ProjectResponse  `json:"project,omitempty"`
	Editor  *editor.State     `json:"editor,omitempty"`
	Sync    editor.SyncStatus `json:"sync"`
}

type ProjectResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func ProjectToResponse(p *store.Project) ProjectResponse {
	return ProjectResponse{
		ID:        p.ID,
		Name:      p.Name,
		CreatedAt: p.CreatedAt.Format(time.RFC3339),
		UpdatedAt: p.UpdatedAt.Format(time.RFC3339),
	}
}

type ProjectsResponse struct {
	Projects []ProjectResponse `json:"projects"`
}

type OpenProjectRequest struct {
	ProjectID string `json:"project_id"`
	Name      string `json:"name,omitempty"`
}

type TimelineResponse struct {
	Snapshot timeline.Snapshot   `json:"snapshot"`
	Layout   []PlacementResponse `json:"layout"`
	State    editor.State        `json:"state"`
}

type PlacementResponse struct {
	ID    string  `json:"id"`
	Order int     `json:"order"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Name  string  `json:"name,omitempty"`
	// X and Width place the clip on screen at the current zoom.
	X     float64 `json:"x"`
	Width float64 `json:"width"`
}

func LayoutToResponse(layout []timeline.Placement, pixelsPerSecond float64) []PlacementResponse {
	out := make([]PlacementResponse, len(layout))
	for i, p := range layout {
		x := geometry.ToPixels(p.Start, pixelsPerSecond)
		out[i] = PlacementResponse{
			ID:    p.Segment.ID,
			Order: p.Segment.Order,
			Start: p.Start,
			End:   p.End,
			Name:  p.Segment.Name,
			X:     x,
			Width: geometry.ToPixels(p.End, pixelsPerSecond) - x,
		}
	}
	return out
}

// EditResponse answers every edit. Status is "ignored" when the edit was a
// no-op, e.g. on a locked track; Code then says why.
type EditResponse struct {
	Status string        `json:"status"`
	Code   string        `json:"code,omitempty"`
	State  *editor.State `json:"state,omitempty"`
}

type PointerDownRequest struct {
	ID     string  `json:"id"`
	Handle string  `json:"handle"`
	X      float64 `json:"x"`
}

type PointerMoveRequest struct {
	X float64 `json:"x"`
}

type DropReorderRequest struct {
	DraggedID   string  `json:"dragged_id"`
	TargetID    string  `json:"target_id"`
	PointerX    float64 `json:"pointer_x"`
	TargetLeftX float64 `json:"target_left_x"`
	TargetWidth float64 `json:"target_width"`
}

type ReorderRequest struct {
	IDs []string `json:"ids"`
}

type SplitRequest struct {
	ID   string  `json:"id"`
	Time float64 `json:"time"`
}

// InsertItemRequest carries one item; Item is decoded according to Track.
type InsertItemRequest struct {
	Track string          `json:"track"`
	Item  json.RawMessage `json:"item"`
}

func (req InsertItemRequest) Decode() (timeline.Item, error) {
	kind, err := timeline.ParseTrackKind(req.Track)
	if err != nil {
		return nil, err
	}
	if len(req.Item) == 0 {
		return nil, fmt.Errorf("item is required")
	}
	switch kind {
	case timeline.TrackVideo:
		var v timeline.VideoSegment
		err = json.Unmarshal(req.Item, &v)
		return v, err
	case timeline.TrackSfx:
		var v timeline.SfxCue
		err = json.Unmarshal(req.Item, &v)
		return v, err
	case timeline.TrackSubtitle:
		var c timeline.Cue
		err = json.Unmarshal(req.Item, &c)
		return timeline.Subtitle{Cue: c}, err
	default:
		var c timeline.Cue
		err = json.Unmarshal(req.Item, &c)
		return timeline.Overlay{Cue: c}, err
	}
}

type InsertItemResponse struct {
	ID    string             `json:"id"`
	Track timeline.TrackKind `json:"track"`
	State editor.State       `json:"state"`
}

type TransitionRequest struct {
	FromID   string  `json:"from_id"`
	ToID     string  `json:"to_id"`
	Type     string  `json:"type"`
	Duration float64 `json:"duration"`
}

type HistoryResponse struct {
	Undo []string `json:"undo"`
	Redo []string `json:"redo"`
}

type UndoResponse struct {
	Applied bool         `json:"applied"`
	State   editor.State `json:"state"`
}

type LockRequest struct {
	Locked bool `json:"locked"`
}

type ZoomRequest struct {
	PixelsPerSecond float64 `json:"pixels_per_second"`
}

type SnapRequest struct {
	Enabled bool `json:"enabled"`
}

type FocusRequest struct {
	TextInput bool `json:"text_input"`
}

type SelectRequest struct {
	ID string `json:"id"`
}

type RulerClickRequest struct {
	X float64 `json:"x"`
}

type SeekRequest struct {
	Time float64 `json:"time"`
}

type PlayheadResponse struct {
	Time float64 `json:"time"`
}

type SuggestionsResponse struct {
	Markers []suggest.Marker `json:"markers"`
}
