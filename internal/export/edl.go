package export

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/heimdex/heimdex-editor/internal/timeline"
)

const DefaultFrameRate = 30.0

var ErrEmptyTimeline = errors.New("timeline has no video segments")

// BuildEvents converts the video layout into edit events. Source in/out
// come from the trims; record in/out follow the derived layout.
func BuildEvents(m *timeline.Model) []Event {
	layout := m.Layout()
	events := make([]Event, 0, len(layout))
	for i, p := range layout {
		seg := p.Segment
		name := SanitizeName(seg.Name, 160)
		if name == "" {
			name = seg.ID
		}
		ev := Event{
			Number:    i + 1,
			Reel:      ReelName(seg.SourceRef),
			ClipName:  name,
			MediaPath: seg.SourceRef,
			SourceIn:  seg.StartTrim,
			SourceOut: seg.SourceDuration - seg.EndTrim,
			RecordIn:  p.Start,
			RecordOut: p.End,
		}
		if i > 0 {
			prev := layout[i-1].Segment
			if tr, ok := m.Transition(prev.ID, seg.ID); ok && tr.Type != timeline.TransitionCut {
				ev.Transition = &tr
				ev.PrevReel = ReelName(prev.SourceRef)
				ev.PrevSourceOut = prev.SourceDuration - prev.EndTrim
			}
		}
		events = append(events, ev)
	}
	return events
}

// GenerateEDL renders events as a CMX3600 edit decision list.
func GenerateEDL(events []Event, title string, frameRate float64) string {
	fps := int(math.Round(frameRate))
	if fps <= 0 {
		fps = int(DefaultFrameRate)
	}

	isDropFrame := math.Abs(frameRate-29.97) < 0.01 || math.Abs(frameRate-59.94) < 0.01

	lines := []string{fmt.Sprintf("TITLE: %s", title)}
	if isDropFrame {
		lines = append(lines, "FCM: DROP FRAME")
	} else {
		lines = append(lines, "FCM: NON-DROP FRAME")
	}
	lines = append(lines, "")

	for _, ev := range events {
		recIn := Timecode(ev.RecordIn, fps)
		recOut := Timecode(ev.RecordOut, fps)
		srcIn := Timecode(ev.SourceIn, fps)
		srcOut := Timecode(ev.SourceOut, fps)

		if ev.Transition == nil {
			lines = append(lines,
				fmt.Sprintf("%03d  %-8s %-5s C        %s %s %s %s", ev.Number, ev.Reel, "V", srcIn, srcOut, recIn, recOut))
		} else {
			prevOut := Timecode(ev.PrevSourceOut, fps)
			frames := int(math.Round(ev.Transition.Duration * float64(fps)))
			lines = append(lines,
				fmt.Sprintf("%03d  %-8s %-5s C        %s %s %s %s", ev.Number, ev.PrevReel, "V", prevOut, prevOut, recIn, recIn),
				fmt.Sprintf("%03d  %-8s %-5s %-4s %03d %s %s %s %s", ev.Number, ev.Reel, "V", transitionCode(ev.Transition.Type), frames, srcIn, srcOut, recIn, recOut),
				fmt.Sprintf("* EFFECT NAME: %s", strings.ToUpper(string(ev.Transition.Type))),
			)
		}
		lines = append(lines, fmt.Sprintf("* FROM CLIP NAME:  %s", ev.ClipName))
		if ev.MediaPath != "" {
			lines = append(lines, fmt.Sprintf("* MEDIA PATH:  %s", ev.MediaPath))
		}
	}

	lines = append(lines, "")
	return strings.Join(lines, "\n")
}

// Write renders the model's timeline and writes <dir>/<name>.edl.
func Write(m *timeline.Model, req Request) (Response, error) {
	if err := ValidateOutputDir(req.OutputDir); err != nil {
		return Response{}, err
	}
	events := BuildEvents(m)
	if len(events) == 0 {
		return Response{}, ErrEmptyTimeline
	}

	name := SanitizeName(req.ProjectName, 120)
	if name == "" {
		name = "heimdex_timeline"
	}
	rate := req.FrameRate
	if rate <= 0 {
		rate = DefaultFrameRate
	}

	path := filepath.Join(req.OutputDir, name+".edl")
	if err := os.WriteFile(path, []byte(GenerateEDL(events, name, rate)), 0o644); err != nil {
		return Response{}, fmt.Errorf("write edl: %w", err)
	}
	return Response{
		Status:     "ok",
		Format:     "edl",
		OutputPath: path,
		EventCount: len(events),
		Duration:   Timecode(m.TotalDuration(), int(math.Round(rate))),
	}, nil
}

func transitionCode(t timeline.TransitionType) string {
	switch t {
	case timeline.TransitionWipe:
		return "W001"
	default:
		return "D"
	}
}

// Timecode formats seconds as HH:MM:SS:FF at fps frames per second.
func Timecode(seconds float64, fps int) string {
	if fps <= 0 {
		fps = int(DefaultFrameRate)
	}
	totalFrames := int(math.Round(seconds * float64(fps)))
	frames := totalFrames % fps
	totalSeconds := totalFrames / fps
	secs := totalSeconds % 60
	totalMinutes := totalSeconds / 60
	minutes := totalMinutes % 60
	hours := totalMinutes / 60
	return fmt.Sprintf("%02d:%02d:%02d:%02d", hours, minutes, secs, frames)
}
