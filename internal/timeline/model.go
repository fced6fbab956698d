package timeline

import (
	"fmt"
	"slices"
)

// Model holds the item collections of one project. It is not safe for
// concurrent use; the owning session serializes access.
type Model struct {
	video       []VideoSegment
	sfx         []SfxCue
	subtitles   []Cue
	overlays    []Cue
	transitions []Transition
}

// Snapshot is the persisted projection of a model.
type Snapshot struct {
	Video       []VideoSegment `json:"video"`
	Sfx         []SfxCue       `json:"sfx"`
	Subtitles   []Cue          `json:"subtitles"`
	Overlays    []Cue          `json:"overlays"`
	Transitions []Transition   `json:"transitions"`
}

func NewModel() *Model {
	return &Model{}
}

// FromSnapshot builds a model after validating every invariant of s.
func FromSnapshot(s Snapshot) (*Model, error) {
	m := &Model{
		video:       slices.Clone(s.Video),
		sfx:         slices.Clone(s.Sfx),
		subtitles:   slices.Clone(s.Subtitles),
		overlays:    slices.Clone(s.Overlays),
		transitions: slices.Clone(s.Transitions),
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// Snapshot returns a deep copy. Empty collections are reported as nil so two
// equal models always produce deeply equal snapshots.
func (m *Model) Snapshot() Snapshot {
	return Snapshot{
		Video:       cloneOrNil(m.video),
		Sfx:         cloneOrNil(m.sfx),
		Subtitles:   cloneOrNil(m.subtitles),
		Overlays:    cloneOrNil(m.overlays),
		Transitions: cloneOrNil(m.transitions),
	}
}

func (m *Model) Clone() *Model {
	s := m.Snapshot()
	return &Model{video: s.Video, sfx: s.Sfx, subtitles: s.Subtitles, overlays: s.Overlays, transitions: s.Transitions}
}

func cloneOrNil[T any](s []T) []T {
	if len(s) == 0 {
		return nil
	}
	return slices.Clone(s)
}

// Len returns the number of items on a track.
func (m *Model) Len(kind TrackKind) int {
	switch kind {
	case TrackVideo:
		return len(m.video)
	case TrackSfx:
		return len(m.sfx)
	case TrackSubtitle:
		return len(m.subtitles)
	case TrackOverlay:
		return len(m.overlays)
	}
	return 0
}

// Items returns copies of every item on a track in storage order.
func (m *Model) Items(kind TrackKind) []Item {
	var out []Item
	switch kind {
	case TrackVideo:
		for _, s := range m.video {
			out = append(out, s)
		}
	case TrackSfx:
		for _, c := range m.sfx {
			out = append(out, c)
		}
	case TrackSubtitle:
		for _, c := range m.subtitles {
			out = append(out, Subtitle{c})
		}
	case TrackOverlay:
		for _, c := range m.overlays {
			out = append(out, Overlay{c})
		}
	}
	return out
}

// IDs returns the ids on a track in storage order.
func (m *Model) IDs(kind TrackKind) []string {
	items := m.Items(kind)
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.ItemID()
	}
	return ids
}

func (m *Model) Transitions() []Transition {
	return slices.Clone(m.transitions)
}

// Item looks an id up across all tracks.
func (m *Model) Item(id string) (Item, bool) {
	kind, i := m.locate(id)
	if i < 0 {
		return nil, false
	}
	return m.itemAt(kind, i), true
}

// Span returns the timeline bounds of any item, deriving video positions
// from the layout.
func (m *Model) Span(id string) (start, end float64, ok bool) {
	kind, i := m.locate(id)
	if i < 0 {
		return 0, 0, false
	}
	if kind == TrackVideo {
		for _, p := range m.Layout() {
			if p.Segment.ID == id {
				return p.Start, p.End, true
			}
		}
		return 0, 0, false
	}
	return Bounds(m.itemAt(kind, i))
}

func (m *Model) locate(id string) (TrackKind, int) {
	if i := slices.IndexFunc(m.video, func(s VideoSegment) bool { return s.ID == id }); i >= 0 {
		return TrackVideo, i
	}
	if i := slices.IndexFunc(m.sfx, func(c SfxCue) bool { return c.ID == id }); i >= 0 {
		return TrackSfx, i
	}
	if i := slices.IndexFunc(m.subtitles, func(c Cue) bool { return c.ID == id }); i >= 0 {
		return TrackSubtitle, i
	}
	if i := slices.IndexFunc(m.overlays, func(c Cue) bool { return c.ID == id }); i >= 0 {
		return TrackOverlay, i
	}
	return "", -1
}

func (m *Model) itemAt(kind TrackKind, i int) Item {
	switch kind {
	case TrackVideo:
		return m.video[i]
	case TrackSfx:
		return m.sfx[i]
	case TrackSubtitle:
		return Subtitle{m.subtitles[i]}
	case TrackOverlay:
		return Overlay{m.overlays[i]}
	}
	return nil
}

func (m *Model) cues(kind TrackKind) *[]Cue {
	if kind == TrackSubtitle {
		return &m.subtitles
	}
	return &m.overlays
}

// store overwrites the item at position i of its track.
func (m *Model) store(i int, it Item) {
	switch v := it.(type) {
	case VideoSegment:
		m.video[i] = v
	case SfxCue:
		m.sfx[i] = v
	case Subtitle:
		m.subtitles[i] = v.Cue
	case Overlay:
		m.overlays[i] = v.Cue
	}
}

// Validate checks every invariant of the model.
func (m *Model) Validate() error {
	seen := make(map[string]bool)
	orders := make(map[int]string)
	check := func(it Item) error {
		if it.ItemID() == "" {
			return fmt.Errorf("%s item without id: %w", it.Track(), ErrInvalidRange)
		}
		if seen[it.ItemID()] {
			return fmt.Errorf("duplicate id %s: %w", it.ItemID(), ErrInvalidRange)
		}
		seen[it.ItemID()] = true
		return validateItem(it)
	}
	for _, s := range m.video {
		if err := check(s); err != nil {
			return err
		}
		if other, dup := orders[s.Order]; dup {
			return fmt.Errorf("segments %s and %s share order %d: %w", other, s.ID, s.Order, ErrInvalidRange)
		}
		orders[s.Order] = s.ID
	}
	for _, kind := range []TrackKind{TrackSfx, TrackSubtitle, TrackOverlay} {
		for _, it := range m.Items(kind) {
			if err := check(it); err != nil {
				return err
			}
		}
	}
	for _, t := range m.transitions {
		if err := m.validateTransition(t); err != nil {
			return err
		}
	}
	return nil
}

func validateItem(it Item) error {
	switch v := it.(type) {
	case VideoSegment:
		if !finite(v.SourceDuration, v.StartTrim, v.EndTrim) || v.StartTrim < 0 || v.EndTrim < 0 {
			return fmt.Errorf("segment %s trims: %w", v.ID, ErrInvalidRange)
		}
		if v.StartTrim+v.EndTrim > v.SourceDuration-Epsilon+tolerance {
			return fmt.Errorf("segment %s shorter than %.1fs: %w", v.ID, Epsilon, ErrInvalidRange)
		}
	case SfxCue:
		if !finite(v.Start, v.Duration, v.SourceTrimOffset, v.SourceDuration) || v.Start < 0 || v.SourceTrimOffset < 0 {
			return fmt.Errorf("sfx %s placement: %w", v.ID, ErrInvalidRange)
		}
		if v.Duration < Epsilon-tolerance {
			return fmt.Errorf("sfx %s shorter than %.1fs: %w", v.ID, Epsilon, ErrInvalidRange)
		}
		if v.SourceDuration > 0 && v.SourceTrimOffset+v.Duration > v.SourceDuration+tolerance {
			return fmt.Errorf("sfx %s exceeds its source: %w", v.ID, ErrInvalidRange)
		}
	case Subtitle:
		return validateCue(v.Cue)
	case Overlay:
		return validateCue(v.Cue)
	default:
		return fmt.Errorf("unsupported item %T: %w", it, ErrInvalidRange)
	}
	return nil
}

func validateCue(c Cue) error {
	if !finite(c.Start, c.End) || c.Start < 0 {
		return fmt.Errorf("cue %s range: %w", c.ID, ErrInvalidRange)
	}
	if c.End-c.Start < Epsilon-tolerance {
		return fmt.Errorf("cue %s shorter than %.1fs: %w", c.ID, Epsilon, ErrInvalidRange)
	}
	return nil
}
