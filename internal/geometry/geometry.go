// Package geometry converts between timeline seconds and screen pixels and
// resolves snapping. Every function is pure.
package geometry

import "math"

// SnapThresholdPx is the screen tolerance within which a dragged edge is
// attracted to a snap point.
const SnapThresholdPx = 5.0

func ToPixels(t, pixelsPerSecond float64) float64 {
	return pixelsPerSecond * t
}

func ToTime(x, pixelsPerSecond float64) float64 {
	return x / pixelsPerSecond
}

// Snap returns the first snap point within SnapThresholdPx of candidate, or
// candidate itself when snapping is disabled or nothing is close enough.
// Callers order points by priority.
func Snap(candidate float64, points []float64, pixelsPerSecond float64, enabled bool) float64 {
	if !enabled {
		return candidate
	}
	threshold := SnapThreshold(pixelsPerSecond)
	for _, p := range points {
		if math.Abs(candidate-p) < threshold {
			return p
		}
	}
	return candidate
}

// SnapThreshold converts the pixel tolerance into seconds at the given zoom.
func SnapThreshold(pixelsPerSecond float64) float64 {
	return SnapThresholdPx / pixelsPerSecond
}

func ClampRange(value, min, max float64) float64 {
	return math.Max(min, math.Min(max, value))
}

// IsFinite reports whether every value is neither NaN nor infinite.
func IsFinite(values ...float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
