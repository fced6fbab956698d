// Package timeline holds the authoritative in-memory model of a project's
// tracks and items. Video segments are laid out sequentially from their trim
// values; every other item is positioned explicitly.
//
// All mutators validate before they commit: when a mutator returns an error
// the model is unchanged.
package timeline

import (
	"fmt"
	"strings"
)

// Epsilon is the minimum duration, in seconds, of any item on the timeline.
const Epsilon = 0.1

// tolerance absorbs float rounding when checking invariants.
const tolerance = 1e-9

type TrackKind string

const (
	TrackVideo    TrackKind = "video"
	TrackSfx      TrackKind = "sfx"
	TrackSubtitle TrackKind = "subtitle"
	TrackOverlay  TrackKind = "overlay"
)

// TrackKinds lists every track in display order.
var TrackKinds = []TrackKind{TrackVideo, TrackSfx, TrackSubtitle, TrackOverlay}

func ParseTrackKind(s string) (TrackKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "video":
		return TrackVideo, nil
	case "sfx", "audio", "audio/sfx":
		return TrackSfx, nil
	case "subtitle", "subtitles", "caption":
		return TrackSubtitle, nil
	case "overlay", "overlays":
		return TrackOverlay, nil
	}
	return "", fmt.Errorf("unknown track kind %q", s)
}

// Item is the closed set of things that live on a track: VideoSegment,
// SfxCue, Subtitle and Overlay, always passed by value.
type Item interface {
	ItemID() string
	Track() TrackKind
	isItem()
}

type VideoSegment struct {
	ID             string  `json:"id"`
	Order          int     `json:"order"`
	SourceDuration float64 `json:"source_duration"`
	StartTrim      float64 `json:"start_trim"`
	EndTrim        float64 `json:"end_trim"`
	SourceRef      string  `json:"source_ref,omitempty"`
	Name           string  `json:"name,omitempty"`
}

func (s VideoSegment) ItemID() string   { return s.ID }
func (s VideoSegment) Track() TrackKind { return TrackVideo }
func (VideoSegment) isItem()            {}

// EffectiveDuration is the span the segment occupies on the timeline.
func (s VideoSegment) EffectiveDuration() float64 {
	return s.SourceDuration - s.StartTrim - s.EndTrim
}

// Cue is the shared shape of subtitle and overlay items.
type Cue struct {
	ID    string  `json:"id"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
	Style string  `json:"style,omitempty"`
}

func (c Cue) Duration() float64 { return c.End - c.Start }

type Subtitle struct{ Cue }

func (s Subtitle) ItemID() string   { return s.ID }
func (s Subtitle) Track() TrackKind { return TrackSubtitle }
func (Subtitle) isItem()            {}

type Overlay struct{ Cue }

func (o Overlay) ItemID() string   { return o.ID }
func (o Overlay) Track() TrackKind { return TrackOverlay }
func (Overlay) isItem()            {}

// SfxCue places a sub-range of an audio asset on the sfx track.
// SourceTrimOffset is the offset into the asset where playback begins, so a
// split cue still references the right part of its source. SourceDuration is
// zero when the asset length is unknown.
type SfxCue struct {
	ID               string  `json:"id"`
	Start            float64 `json:"start"`
	Duration         float64 `json:"duration"`
	SourceRef        string  `json:"source_ref"`
	SourceTrimOffset float64 `json:"source_trim_offset"`
	SourceDuration   float64 `json:"source_duration,omitempty"`
}

func (c SfxCue) ItemID() string   { return c.ID }
func (c SfxCue) Track() TrackKind { return TrackSfx }
func (SfxCue) isItem()            {}

func (c SfxCue) End() float64 { return c.Start + c.Duration }

type TransitionType string

const (
	TransitionCut      TransitionType = "cut"
	TransitionDissolve TransitionType = "dissolve"
	TransitionWipe     TransitionType = "wipe"
	TransitionFade     TransitionType = "fade"
)

func (t TransitionType) Valid() bool {
	switch t {
	case TransitionCut, TransitionDissolve, TransitionWipe, TransitionFade:
		return true
	}
	return false
}

// Transition joins two adjacent video segments.
type Transition struct {
	FromID   string         `json:"from_id"`
	ToID     string         `json:"to_id"`
	Type     TransitionType `json:"type"`
	Duration float64        `json:"duration"`
}

// Placement is a video segment with its derived timeline position.
type Placement struct {
	Segment VideoSegment `json:"segment"`
	Start   float64      `json:"start"`
	End     float64      `json:"end"`
}

// Bounds returns the timeline span of an explicitly positioned item. Video
// segments have no stored position; use Model.Span for them.
func Bounds(it Item) (start, end float64, ok bool) {
	switch v := it.(type) {
	case SfxCue:
		return v.Start, v.End(), true
	case Subtitle:
		return v.Start, v.End, true
	case Overlay:
		return v.Start, v.End, true
	case VideoSegment:
		return 0, 0, false
	}
	return 0, 0, false
}

// WithStart returns a copy of an explicitly positioned item moved to start,
// keeping its duration. Video segments are returned unchanged.
func WithStart(it Item, start float64) Item {
	switch v := it.(type) {
	case SfxCue:
		v.Start = start
		return v
	case Subtitle:
		d := v.Duration()
		v.Start, v.End = start, start+d
		return v
	case Overlay:
		d := v.Duration()
		v.Start, v.End = start, start+d
		return v
	}
	return it
}
