package playback

import (
	"sync"
	"time"

	"github.com/heimdex/heimdex-editor/internal/geometry"
)

// Clock is the playhead. While playing it advances with wall time and stops
// at the end of the timeline.
type Clock struct {
	mu        sync.Mutex
	position  float64
	playing   bool
	startedAt time.Time
	duration  func() float64
	now       func() time.Time
}

// NewClock returns a paused clock at 0. duration reports the current
// timeline length and bounds seeking and playback.
func NewClock(duration func() float64) *Clock {
	return &Clock{duration: duration, now: time.Now}
}

func (c *Clock) Playhead() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current()
}

// Seek moves the playhead to t, clamped to the timeline.
func (c *Clock) Seek(t float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !geometry.IsFinite(t) {
		return
	}
	c.position = geometry.ClampRange(t, 0, c.duration())
	c.startedAt = c.now()
}

func (c *Clock) Play() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.playing {
		return
	}
	c.playing = true
	c.startedAt = c.now()
}

func (c *Clock) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.position = c.current()
	c.playing = false
}

func (c *Clock) Playing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.playing && c.current() < c.duration()
}

func (c *Clock) current() float64 {
	total := c.duration()
	if !c.playing {
		return geometry.ClampRange(c.position, 0, total)
	}
	t := c.position + c.now().Sub(c.startedAt).Seconds()
	return geometry.ClampRange(t, 0, total)
}
