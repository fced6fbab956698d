package timeline

import "errors"

var (
	// ErrNotFound reports a mutation on an unknown or stale id.
	ErrNotFound = errors.New("item not found")
	// ErrInvalidRange reports a mutation that would break a temporal invariant.
	ErrInvalidRange = errors.New("invalid range")
)
