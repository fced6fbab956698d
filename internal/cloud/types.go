package cloud

import "github.com/heimdex/heimdex-editor/internal/timeline"

// ItemBatch groups changed items by track so the wire form needs no
// discriminator field.
type ItemBatch struct {
	Video     []timeline.VideoSegment `json:"video,omitempty"`
	Sfx       []timeline.SfxCue       `json:"sfx,omitempty"`
	Subtitles []timeline.Cue          `json:"subtitles,omitempty"`
	Overlays  []timeline.Cue          `json:"overlays,omitempty"`
}

func NewItemBatch(items []timeline.Item) ItemBatch {
	var b ItemBatch
	for _, it := range items {
		switch v := it.(type) {
		case timeline.VideoSegment:
			b.Video = append(b.Video, v)
		case timeline.SfxCue:
			b.Sfx = append(b.Sfx, v)
		case timeline.Subtitle:
			b.Subtitles = append(b.Subtitles, v.Cue)
		case timeline.Overlay:
			b.Overlays = append(b.Overlays, v.Cue)
		}
	}
	return b
}

func (b ItemBatch) Len() int {
	return len(b.Video) + len(b.Sfx) + len(b.Subtitles) + len(b.Overlays)
}

type DeleteRequest struct {
	IDs []string `json:"ids"`
}

type ReorderRequest struct {
	Orders []timeline.SegmentOrder `json:"orders"`
}

// TransitionsRequest replaces the project's full transition set.
type TransitionsRequest struct {
	Transitions []timeline.Transition `json:"transitions"`
}

type SyncResponse struct {
	ProjectID string `json:"project_id"`
	Revision  int64  `json:"revision"`
}
