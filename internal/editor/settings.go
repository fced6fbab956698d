package editor

import (
	"context"
	"strconv"
	"strings"

	"github.com/heimdex/heimdex-editor/internal/interact"
	"github.com/heimdex/heimdex-editor/internal/timeline"
)

// View settings survive restarts in the config table.
const (
	keyZoom  = "view.pixels_per_second"
	keySnap  = "view.snap_enabled"
	keyLocks = "view.locked_tracks"
)

type settings struct {
	PixelsPerSecond float64
	SnapEnabled     bool
	Locks           map[timeline.TrackKind]bool
}

func defaultSettings(opts Options) settings {
	pps := opts.PixelsPerSecond
	if pps <= 0 {
		pps = interact.DefaultPixelsPerSecond
	}
	return settings{
		PixelsPerSecond: pps,
		SnapEnabled:     opts.SnapEnabled,
		Locks:           make(map[timeline.TrackKind]bool),
	}
}

// loadSettings overlays stored values on the configured defaults. Unreadable
// values are ignored.
func (s *Session) loadSettings(ctx context.Context) settings {
	v := defaultSettings(s.opts)

	if raw, err := s.store.GetConfig(ctx, keyZoom); err == nil && raw != "" {
		if pps, err := strconv.ParseFloat(raw, 64); err == nil && pps > 0 {
			v.PixelsPerSecond = pps
		}
	}
	if raw, err := s.store.GetConfig(ctx, keySnap); err == nil && raw != "" {
		if on, err := strconv.ParseBool(raw); err == nil {
			v.SnapEnabled = on
		}
	}
	if raw, err := s.store.GetConfig(ctx, keyLocks); err == nil && raw != "" {
		for _, name := range strings.Split(raw, ",") {
			if kind, err := timeline.ParseTrackKind(name); err == nil {
				v.Locks[kind] = true
			}
		}
	}
	return v
}

func (s *Session) saveSetting(ctx context.Context, key, value string) {
	if err := s.store.SetConfig(ctx, key, value); err != nil {
		s.logger.Warn("failed to persist view setting", "key", key, "error", err)
	}
}

func encodeLocks(locks map[timeline.TrackKind]bool) string {
	var names []string
	for _, kind := range timeline.TrackKinds {
		if locks[kind] {
			names = append(names, string(kind))
		}
	}
	return strings.Join(names, ",")
}
