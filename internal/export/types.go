package export

import "github.com/heimdex/heimdex-editor/internal/timeline"

type Request struct {
	ProjectName string  `json:"project_name"`
	Format      string  `json:"format"`
	FrameRate   float64 `json:"frame_rate"`
	OutputDir   string  `json:"output_dir"`
}

// Event is one record of the edit list: a video segment placed on the
// record timeline, optionally entered through a transition.
type Event struct {
	Number     int
	Reel       string
	ClipName   string
	MediaPath  string
	SourceIn   float64
	SourceOut  float64
	RecordIn   float64
	RecordOut  float64
	Transition *timeline.Transition
	// PrevReel and PrevSourceOut describe the outgoing clip of a transition.
	PrevReel      string
	PrevSourceOut float64
}

type Response struct {
	Status     string `json:"status"`
	Format     string `json:"format"`
	OutputPath string `json:"output_path"`
	EventCount int    `json:"event_count"`
	Duration   string `json:"duration"`
}
