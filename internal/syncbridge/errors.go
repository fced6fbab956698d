package syncbridge

import (
	"errors"
	"fmt"
	"strings"
)

// ErrQueueFull is the cause of a SyncError raised when a mutation could not
// be queued without blocking.
var ErrQueueFull = errors.New("sync queue full")

// SyncError reports a mutation that did not reach a persistence
// collaborator. The in-memory model is never rolled back for it.
type SyncError struct {
	Target string
	Op     string
	IDs    []string
	Err    error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("sync %s %s [%s]: %v", e.Target, e.Op, strings.Join(e.IDs, ","), e.Err)
}

func (e *SyncError) Unwrap() error { return e.Err }

// IsRetryable defers to the cause when it knows, e.g. an HTTP 5xx. A full
// queue is retryable; anything else is not.
func (e *SyncError) IsRetryable() bool {
	var r interface{ IsRetryable() bool }
	if errors.As(e.Err, &r) {
		return r.IsRetryable()
	}
	return errors.Is(e.Err, ErrQueueFull)
}
