// Package editor hosts one open project: its model, undo history,
// interaction controller, playhead and sync bridges. Every entry point takes
// the session lock, so callers on any goroutine see a single logical editing
// thread.
package editor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/heimdex/heimdex-editor/internal/history"
	"github.com/heimdex/heimdex-editor/internal/interact"
	"github.com/heimdex/heimdex-editor/internal/logging"
	"github.com/heimdex/heimdex-editor/internal/playback"
	"github.com/heimdex/heimdex-editor/internal/store"
	"github.com/heimdex/heimdex-editor/internal/syncbridge"
	"github.com/heimdex/heimdex-editor/internal/timeline"
)

var ErrNoProject = errors.New("no project open")

// ProjectStore is the local persistence the session loads from and mirrors
// edits to.
type ProjectStore interface {
	store.Repository
	Persister(projectID string) *store.ProjectPersister
}

// RemoteFactory builds the remote persistence collaborator for a project.
// Returning nil disables remote sync for it.
type RemoteFactory func(projectID string) syncbridge.Persister

type Options struct {
	UndoLimit       int
	PixelsPerSecond float64
	SnapEnabled     bool
	Sync            syncbridge.Options
	Remote          RemoteFactory
}

type target struct {
	name   string
	bridge *syncbridge.Bridge
}

type Session struct {
	store  ProjectStore
	logger *slog.Logger
	opts   Options

	mu        sync.Mutex
	project   *store.Project
	sessionID string
	model     *timeline.Model
	history   *history.History
	ctrl      *interact.Controller
	clock     *playback.Clock
	targets   []target
	view      settings
	listeners []func(history.Event)

	syncMu   sync.Mutex
	lastSync *syncbridge.SyncError
}

func New(st ProjectStore, logger *slog.Logger, opts Options) *Session {
	s := &Session{
		store:  st,
		logger: logging.WithComponent(logger, "editor"),
		opts:   opts,
		view:   defaultSettings(opts),
	}
	s.clock = playback.NewClock(s.totalDuration)
	return s
}

// totalDuration is read by the clock, which is only used under s.mu.
func (s *Session) totalDuration() float64 {
	if s.model == nil {
		return 0
	}
	return s.model.TotalDuration()
}

// OnCommit registers fn for every committed edit, undo and redo of any
// project opened later or now. fn runs with the session locked and must not
// call back into the session.
func (s *Session) OnCommit(fn func(history.Event)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Open loads a project, creating it when missing, and makes it current. A
// previously open project is closed first.
func (s *Session) Open(ctx context.Context, projectID, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.project != nil {
		if err := s.closeLocked(ctx); err != nil {
			s.logger.Warn("closing previous project failed", "error", err)
		}
	}

	if name == "" {
		name = projectID
	}
	project, err := s.store.EnsureProject(ctx, projectID, name)
	if err != nil {
		return err
	}
	snap, err := s.store.LoadProject(ctx, projectID)
	if err != nil {
		return fmt.Errorf("load project %s: %w", projectID, err)
	}
	m, err := timeline.FromSnapshot(snap)
	if err != nil {
		return fmt.Errorf("stored project %s is invalid: %w", projectID, err)
	}

	s.view = s.loadSettings(ctx)
	sessionID, err := s.store.OpenSession(ctx, projectID)
	if err != nil {
		return fmt.Errorf("open session: %w", err)
	}

	s.project = project
	s.sessionID = sessionID
	s.attach(m)
	s.startBridges(ctx)

	logging.WithProject(s.logger, projectID).Info("project opened",
		"session_id", sessionID,
		"segments", m.Len(timeline.TrackVideo),
		"duration", m.TotalDuration(),
	)
	return nil
}

// attach builds a fresh history and controller around m.
func (s *Session) attach(m *timeline.Model) {
	s.model = m
	s.history = history.New(m, s.opts.UndoLimit)
	s.history.OnCommit(s.dispatch)
	s.ctrl = interact.New(m, s.history, s.clock, interact.Options{
		PixelsPerSecond: s.view.PixelsPerSecond,
		SnapEnabled:     s.view.SnapEnabled,
	})
	for kind, locked := range s.view.Locks {
		s.ctrl.SetLocked(kind, locked)
	}
	s.clock.Pause()
	s.clock.Seek(0)
}

// dispatch runs on the editing goroutine for every commit. The mutation is
// captured here, before the next edit can change the model.
func (s *Session) dispatch(ev history.Event) {
	mut := syncbridge.Capture(ev)
	for _, t := range s.targets {
		t.bridge.Publish(mut)
	}
	for _, fn := range s.listeners {
		fn(ev)
	}
}

func (s *Session) startBridges(ctx context.Context) {
	opts := s.opts.Sync
	onError := opts.OnError
	opts.OnError = func(err *syncbridge.SyncError) {
		s.syncMu.Lock()
		s.lastSync = err
		s.syncMu.Unlock()
		if onError != nil {
			onError(err)
		}
	}

	persisters := []struct {
		name string
		p    syncbridge.Persister
	}{{"sqlite", s.store.Persister(s.project.ID)}}
	if s.opts.Remote != nil {
		if p := s.opts.Remote(s.project.ID); p != nil {
			persisters = append(persisters, struct {
				name string
				p    syncbridge.Persister
			}{"cloud", p})
		}
	}

	// Workers outlive the request that opened the project.
	workerCtx := context.WithoutCancel(ctx)
	s.targets = nil
	for _, p := range persisters {
		b := syncbridge.New(p.name, p.p, s.logger, opts)
		b.Start(workerCtx)
		s.targets = append(s.targets, target{name: p.name, bridge: b})
	}
}

func (s *Session) drain(ctx context.Context) error {
	var errs []error
	for _, t := range s.targets {
		if err := t.bridge.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("drain %s bridge: %w", t.name, err))
		}
	}
	s.targets = nil
	return errors.Join(errs...)
}

// Close drains the sync bridges and ends the session record.
func (s *Session) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.project == nil {
		return nil
	}
	return s.closeLocked(ctx)
}

func (s *Session) closeLocked(ctx context.Context) error {
	var errs []error
	if _, active := s.ctrl.Drag(); active {
		errs = append(errs, s.ctrl.CancelDrag())
	}
	errs = append(errs, s.drain(ctx))
	if err := s.store.CloseSession(ctx, s.sessionID); err != nil {
		errs = append(errs, fmt.Errorf("close session: %w", err))
	}
	logging.WithProject(s.logger, s.project.ID).Info("project closed", "session_id", s.sessionID)
	s.project = nil
	s.sessionID = ""
	s.model = nil
	s.history = nil
	s.ctrl = nil
	return errors.Join(errs...)
}

// Flush blocks until every queued mutation has been delivered.
func (s *Session) Flush(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.project == nil {
		return ErrNoProject
	}
	err := s.drain(ctx)
	s.startBridges(ctx)
	return err
}

// Import replaces the open project's timeline with snap. The stored project
// is rewritten and the undo history starts over.
func (s *Session) Import(ctx context.Context, snap timeline.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.project == nil {
		return ErrNoProject
	}
	m, err := timeline.FromSnapshot(snap)
	if err != nil {
		return err
	}
	if err := s.ctrl.Idle(); err != nil {
		return err
	}

	// Queued incremental writes must land before the full rewrite.
	if err := s.drain(ctx); err != nil {
		s.logger.Warn("sync bridge did not drain before import", "error", err)
	}
	defer s.startBridges(ctx)
	if err := s.store.SaveProject(ctx, s.project.ID, m.Snapshot()); err != nil {
		return fmt.Errorf("save project: %w", err)
	}
	s.attach(m)
	s.logger.Info("project imported", "project_id", s.project.ID, "segments", m.Len(timeline.TrackVideo))
	return nil
}

// Project returns the open project, or nil.
func (s *Session) Project() *store.Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.project == nil {
		return nil
	}
	p := *s.project
	return &p
}

type SyncStatus struct {
	Targets   map[string]syncbridge.Stats `json:"targets"`
	LastError string                      `json:"last_error,omitempty"`
	Retryable bool                        `json:"retryable,omitempty"`
}

func (s *Session) SyncStatus() SyncStatus {
	s.mu.Lock()
	st := SyncStatus{Targets: make(map[string]syncbridge.Stats, len(s.targets))}
	for _, t := range s.targets {
		st.Targets[t.name] = t.bridge.Stats()
	}
	s.mu.Unlock()

	s.syncMu.Lock()
	defer s.syncMu.Unlock()
	if s.lastSync != nil {
		st.LastError = s.lastSync.Error()
		st.Retryable = s.lastSync.IsRetryable()
	}
	return st
}
