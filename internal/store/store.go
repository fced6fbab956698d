// Package store persists projects in SQLite. It loads and saves whole
// timeline snapshots and implements the sync bridge's Persister for
// incremental writes.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/heimdex/heimdex-editor/internal/timeline"
)

// ErrProjectNotFound is returned when a project id has no row.
var ErrProjectNotFound = errors.New("project not found")

type Project struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Repository interface {
	EnsureProject(ctx context.Context, id, name string) (*Project, error)
	GetProject(ctx context.Context, id string) (*Project, error)
	ListProjects(ctx context.Context) ([]*Project, error)
	LoadProject(ctx context.Context, projectID string) (timeline.Snapshot, error)
	SaveProject(ctx context.Context, projectID string, snap timeline.Snapshot) error

	OpenSession(ctx context.Context, projectID string) (string, error)
	CloseSession(ctx context.Context, sessionID string) error

	GetConfig(ctx context.Context, key string) (string, error)
	SetConfig(ctx context.Context, key, value string) error
}

type SQLiteRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewRepository(db *sql.DB, logger *slog.Logger) *SQLiteRepository {
	return &SQLiteRepository{db: db, logger: logger}
}

// EnsureProject returns the project, creating it when missing.
func (r *SQLiteRepository) EnsureProject(ctx context.Context, id, name string) (*Project, error) {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO projects (id, name, created_at, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, id, name, now, now)
	if err != nil {
		return nil, fmt.Errorf("create project %s: %w", id, err)
	}
	return r.GetProject(ctx, id)
}

func (r *SQLiteRepository) GetProject(ctx context.Context, id string) (*Project, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, name, created_at, updated_at FROM projects WHERE id = ?`, id)
	var p Project
	var created, updated string
	err := row.Scan(&p.ID, &p.Name, &created, &updated)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	p.CreatedAt, _ = time.Parse(time.RFC3339, created)
	p.UpdatedAt, _ = time.Parse(time.RFC3339, updated)
	return &p, nil
}

func (r *SQLiteRepository) ListProjects(ctx context.Context) ([]*Project, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, created_at, updated_at FROM projects ORDER BY updated_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []*Project
	for rows.Next() {
		var p Project
		var created, updated string
		if err := rows.Scan(&p.ID, &p.Name, &created, &updated); err != nil {
			return nil, err
		}
		p.CreatedAt, _ = time.Parse(time.RFC3339, created)
		p.UpdatedAt, _ = time.Parse(time.RFC3339, updated)
		projects = append(projects, &p)
	}
	return projects, rows.Err()
}

// LoadProject reads every track of a project in storage order.
func (r *SQLiteRepository) LoadProject(ctx context.Context, projectID string) (timeline.Snapshot, error) {
	var snap timeline.Snapshot
	p, err := r.GetProject(ctx, projectID)
	if err != nil {
		return snap, err
	}
	if p == nil {
		return snap, fmt.Errorf("%s: %w", projectID, ErrProjectNotFound)
	}

	if snap.Video, err = r.loadVideo(ctx, projectID); err != nil {
		return snap, fmt.Errorf("load video: %w", err)
	}
	if snap.Sfx, err = r.loadSfx(ctx, projectID); err != nil {
		return snap, fmt.Errorf("load sfx: %w", err)
	}
	if snap.Subtitles, err = r.loadCues(ctx, projectID, timeline.TrackSubtitle); err != nil {
		return snap, fmt.Errorf("load subtitles: %w", err)
	}
	if snap.Overlays, err = r.loadCues(ctx, projectID, timeline.TrackOverlay); err != nil {
		return snap, fmt.Errorf("load overlays: %w", err)
	}
	if snap.Transitions, err = r.loadTransitions(ctx, projectID); err != nil {
		return snap, fmt.Errorf("load transitions: %w", err)
	}
	return snap, nil
}

func (r *SQLiteRepository) loadVideo(ctx context.Context, projectID string) ([]timeline.VideoSegment, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, order_index, source_duration, start_trim, end_trim, source_ref, name
		FROM video_segments WHERE project_id = ? ORDER BY seq
	`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []timeline.VideoSegment
	for rows.Next() {
		var s timeline.VideoSegment
		var ref, name sql.NullString
		if err := rows.Scan(&s.ID, &s.Order, &s.SourceDuration, &s.StartTrim, &s.EndTrim, &ref, &name); err != nil {
			return nil, err
		}
		s.SourceRef, s.Name = ref.String, name.String
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) loadSfx(ctx context.Context, projectID string) ([]timeline.SfxCue, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, start, duration, source_ref, source_trim_offset, source_duration
		FROM sfx_cues WHERE project_id = ? ORDER BY seq
	`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []timeline.SfxCue
	for rows.Next() {
		var c timeline.SfxCue
		if err := rows.Scan(&c.ID, &c.Start, &c.Duration, &c.SourceRef, &c.SourceTrimOffset, &c.SourceDuration); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) loadCues(ctx context.Context, projectID string, kind timeline.TrackKind) ([]timeline.Cue, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, start, end_time, text, style
		FROM cues WHERE project_id = ? AND track = ? ORDER BY seq
	`, projectID, string(kind))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []timeline.Cue
	for rows.Next() {
		var c timeline.Cue
		var style sql.NullString
		if err := rows.Scan(&c.ID, &c.Start, &c.End, &c.Text, &style); err != nil {
			return nil, err
		}
		c.Style = style.String
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) loadTransitions(ctx context.Context, projectID string) ([]timeline.Transition, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT from_id, to_id, type, duration
		FROM transitions WHERE project_id = ? ORDER BY rowid
	`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []timeline.Transition
	for rows.Next() {
		var t timeline.Transition
		if err := rows.Scan(&t.FromID, &t.ToID, &t.Type, &t.Duration); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// SaveProject replaces a project's stored timeline with snap in one
// transaction.
func (r *SQLiteRepository) SaveProject(ctx context.Context, projectID string, snap timeline.Snapshot) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{"transitions", "video_segments", "sfx_cues", "cues"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE project_id = ?", projectID); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	for i, s := range snap.Video {
		if err := upsertVideo(ctx, tx, projectID, i, s); err != nil {
			return err
		}
	}
	for i, c := range snap.Sfx {
		if err := upsertSfx(ctx, tx, projectID, i, c); err != nil {
			return err
		}
	}
	for i, c := range snap.Subtitles {
		if err := upsertCue(ctx, tx, projectID, timeline.TrackSubtitle, i, c); err != nil {
			return err
		}
	}
	for i, c := range snap.Overlays {
		if err := upsertCue(ctx, tx, projectID, timeline.TrackOverlay, i, c); err != nil {
			return err
		}
	}
	if err := insertTransitions(ctx, tx, projectID, snap.Transitions); err != nil {
		return err
	}
	if err := touchProject(ctx, tx, projectID); err != nil {
		return err
	}
	return tx.Commit()
}

// OpenSession records a running editor so a crash can be detected on the
// next start.
func (r *SQLiteRepository) OpenSession(ctx context.Context, projectID string) (string, error) {
	id := uuid.NewString()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO sessions (id, project_id, status, started_at) VALUES (?, ?, 'open', ?)
	`, id, projectID, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return "", err
	}
	return id, nil
}

func (r *SQLiteRepository) CloseSession(ctx context.Context, sessionID string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE sessions SET status = 'closed', ended_at = ? WHERE id = ?
	`, time.Now().UTC().Format(time.RFC3339), sessionID)
	return err
}

func (r *SQLiteRepository) GetConfig(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM config WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

func (r *SQLiteRepository) SetConfig(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO config (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
