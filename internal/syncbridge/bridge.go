// Package syncbridge mirrors committed timeline edits to persistence
// collaborators without blocking the editing goroutine.
package syncbridge

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/heimdex/heimdex-editor/internal/logging"
	"github.com/heimdex/heimdex-editor/internal/timeline"
)

// Persister is a persistence collaborator. Every call is keyed by id and
// must be idempotent.
type Persister interface {
	SetItemFields(ctx context.Context, items []timeline.Item) error
	DeleteItems(ctx context.Context, ids []string) error
	Reorder(ctx context.Context, orders []timeline.SegmentOrder) error
	SetTransitions(ctx context.Context, ts []timeline.Transition) error
}

// Sequencer is implemented by persisters that keep each track's items in a
// stored order. Resequence rewrites that order to match ids.
type Sequencer interface {
	Resequence(ctx context.Context, kind timeline.TrackKind, ids []string) error
}

const (
	DefaultQueueSize = 256
	DefaultTimeout   = 10 * time.Second
)

type Options struct {
	QueueSize int
	Timeout   time.Duration
	// OnError is called from the worker goroutine, or from Publish for a
	// full queue.
	OnError func(*SyncError)
}

type Stats struct {
	Sent    uint64 `json:"sent"`
	Failed  uint64 `json:"failed"`
	Dropped uint64 `json:"dropped"`
	Pending int    `json:"pending"`
}

// Bridge feeds one Persister from a buffered queue drained by a single
// worker, so mutations reach it in commit order.
type Bridge struct {
	name    string
	target  Persister
	logger  *slog.Logger
	timeout time.Duration
	onError func(*SyncError)

	mu     sync.Mutex
	queue  chan Mutation
	closed bool
	done   chan struct{}

	running atomic.Bool
	sent    atomic.Uint64
	failed  atomic.Uint64
	dropped atomic.Uint64
}

func New(name string, target Persister, logger *slog.Logger, opts Options) *Bridge {
	size := opts.QueueSize
	if size <= 0 {
		size = DefaultQueueSize
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Bridge{
		name:    name,
		target:  target,
		logger:  logging.WithComponent(logger, "syncbridge").With("target", name),
		timeout: timeout,
		onError: opts.OnError,
		queue:   make(chan Mutation, size),
		done:    make(chan struct{}),
	}
}

// Start runs the worker until Close drains the queue. It returns
// immediately; calling it twice has no effect.
func (b *Bridge) Start(ctx context.Context) {
	if b.running.Swap(true) {
		return
	}
	go b.run(ctx)
}

func (b *Bridge) run(ctx context.Context) {
	defer close(b.done)
	b.logger.Info("sync bridge started")
	for m := range b.queue {
		b.deliver(ctx, m)
	}
	b.logger.Info("sync bridge stopped")
}

// Publish queues m without blocking. A full or closed queue is reported as
// a SyncError and the mutation is dropped.
func (b *Bridge) Publish(m Mutation) {
	if m.Empty() {
		return
	}
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		b.fail(&SyncError{Target: b.name, Op: "enqueue", IDs: m.IDs(), Err: errors.New("bridge closed")})
		return
	}
	select {
	case b.queue <- m:
		b.mu.Unlock()
	default:
		b.mu.Unlock()
		b.dropped.Add(1)
		b.fail(&SyncError{Target: b.name, Op: "enqueue", IDs: m.IDs(), Err: ErrQueueFull})
	}
}

// Close stops accepting mutations and waits for queued ones to be delivered
// or for ctx to expire.
func (b *Bridge) Close(ctx context.Context) error {
	b.mu.Lock()
	if !b.closed {
		b.closed = true
		close(b.queue)
	}
	b.mu.Unlock()
	if !b.running.Load() {
		return nil
	}
	select {
	case <-b.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *Bridge) Stats() Stats {
	return Stats{
		Sent:    b.sent.Load(),
		Failed:  b.failed.Load(),
		Dropped: b.dropped.Load(),
		Pending: len(b.queue),
	}
}

// deliver writes deletes first, then field updates, orders and transitions,
// so a target with foreign keys never sees a dangling reference. Storage
// order goes last, once every item it names exists.
func (b *Bridge) deliver(ctx context.Context, m Mutation) {
	type step struct {
		op  string
		ids []string
		run func(context.Context) error
		on  bool
	}
	steps := []step{
		{"delete", m.Deletes, func(ctx context.Context) error { return b.target.DeleteItems(ctx, m.Deletes) }, len(m.Deletes) > 0},
		{"set_fields", itemIDs(m.Upserts), func(ctx context.Context) error { return b.target.SetItemFields(ctx, m.Upserts) }, len(m.Upserts) > 0},
		{"reorder", orderIDs(m.Orders), func(ctx context.Context) error { return b.target.Reorder(ctx, m.Orders) }, m.Orders != nil},
		{"set_transitions", nil, func(ctx context.Context) error { return b.target.SetTransitions(ctx, m.Transitions) }, m.TransitionsChanged},
	}
	if seq, ok := b.target.(Sequencer); ok {
		for _, s := range m.Sequences {
			steps = append(steps, step{"resequence", s.IDs, func(ctx context.Context) error { return seq.Resequence(ctx, s.Kind, s.IDs) }, true})
		}
	}

	ok := true
	for _, s := range steps {
		if !s.on {
			continue
		}
		callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), b.timeout)
		err := s.run(callCtx)
		cancel()
		if err != nil {
			ok = false
			b.failed.Add(1)
			b.fail(&SyncError{Target: b.name, Op: s.op, IDs: s.ids, Err: err})
		}
	}
	if ok {
		b.sent.Add(1)
		b.logger.Debug("mutation synced", "op", m.Op, "label", m.Label)
	}
}

func (b *Bridge) fail(err *SyncError) {
	b.logger.Error("sync failed", "op", err.Op, "ids", err.IDs, "retryable", err.IsRetryable(), "error", err.Err)
	if b.onError != nil {
		b.onError(err)
	}
}

func itemIDs(items []timeline.Item) []string {
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.ItemID()
	}
	return ids
}

func orderIDs(orders []timeline.SegmentOrder) []string {
	ids := make([]string, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
	}
	return ids
}
