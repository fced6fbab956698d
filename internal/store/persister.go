package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/heimdex/heimdex-editor/internal/timeline"
)

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// ProjectPersister writes incremental edits for one project. Every call
// runs in its own transaction and is idempotent.
type ProjectPersister struct {
	db        *sql.DB
	projectID string
}

func (r *SQLiteRepository) Persister(projectID string) *ProjectPersister {
	return &ProjectPersister{db: r.db, projectID: projectID}
}

func (p *ProjectPersister) SetItemFields(ctx context.Context, items []timeline.Item) error {
	return p.inTx(ctx, func(tx *sql.Tx) error {
		for _, it := range items {
			var err error
			switch v := it.(type) {
			case timeline.VideoSegment:
				err = upsertVideo(ctx, tx, p.projectID, -1, v)
			case timeline.SfxCue:
				err = upsertSfx(ctx, tx, p.projectID, -1, v)
			case timeline.Subtitle:
				err = upsertCue(ctx, tx, p.projectID, timeline.TrackSubtitle, -1, v.Cue)
			case timeline.Overlay:
				err = upsertCue(ctx, tx, p.projectID, timeline.TrackOverlay, -1, v.Cue)
			default:
				err = fmt.Errorf("unsupported item %T", it)
			}
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (p *ProjectPersister) DeleteItems(ctx context.Context, ids []string) error {
	return p.inTx(ctx, func(tx *sql.Tx) error {
		for _, id := range ids {
			for _, table := range []string{"video_segments", "sfx_cues", "cues"} {
				if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE project_id = ? AND id = ?", p.projectID, id); err != nil {
					return fmt.Errorf("delete %s from %s: %w", id, table, err)
				}
			}
		}
		return nil
	})
}

func (p *ProjectPersister) Reorder(ctx context.Context, orders []timeline.SegmentOrder) error {
	return p.inTx(ctx, func(tx *sql.Tx) error {
		for _, o := range orders {
			if _, err := tx.ExecContext(ctx, `
				UPDATE video_segments SET order_index = ? WHERE project_id = ? AND id = ?
			`, o.Order, p.projectID, o.ID); err != nil {
				return fmt.Errorf("reorder %s: %w", o.ID, err)
			}
		}
		return nil
	})
}

func (p *ProjectPersister) SetTransitions(ctx context.Context, ts []timeline.Transition) error {
	return p.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM transitions WHERE project_id = ?`, p.projectID); err != nil {
			return err
		}
		return insertTransitions(ctx, tx, p.projectID, ts)
	})
}

// Resequence rewrites the stored position of every item on a track to its
// index in ids. Items inserted mid-track are appended on write, so without
// this they would load back in a different order.
func (p *ProjectPersister) Resequence(ctx context.Context, kind timeline.TrackKind, ids []string) error {
	var query string
	args := func(seq int, id string) []any { return []any{seq, p.projectID, id} }
	switch kind {
	case timeline.TrackVideo:
		query = `UPDATE video_segments SET seq = ? WHERE project_id = ? AND id = ?`
	case timeline.TrackSfx:
		query = `UPDATE sfx_cues SET seq = ? WHERE project_id = ? AND id = ?`
	case timeline.TrackSubtitle, timeline.TrackOverlay:
		query = `UPDATE cues SET seq = ? WHERE project_id = ? AND track = ? AND id = ?`
		args = func(seq int, id string) []any { return []any{seq, p.projectID, string(kind), id} }
	default:
		return fmt.Errorf("resequence: unknown track %q", kind)
	}
	return p.inTx(ctx, func(tx *sql.Tx) error {
		for i, id := range ids {
			if _, err := tx.ExecContext(ctx, query, args(i, id)...); err != nil {
				return fmt.Errorf("resequence %s %s: %w", kind, id, err)
			}
		}
		return nil
	})
}

func (p *ProjectPersister) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if err := fn(tx); err != nil {
		return err
	}
	if err := touchProject(ctx, tx, p.projectID); err != nil {
		return err
	}
	return tx.Commit()
}

// seqArg binds an explicit storage position, or NULL so the insert takes the
// next free one. Existing rows keep their position on update.
func seqArg(seq int) any {
	if seq < 0 {
		return nil
	}
	return seq
}

func upsertVideo(ctx context.Context, db execer, projectID string, seq int, s timeline.VideoSegment) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO video_segments (id, project_id, seq, order_index, source_duration, start_trim, end_trim, source_ref, name)
		VALUES (?, ?, COALESCE(?, (SELECT COALESCE(MAX(seq), -1) + 1 FROM video_segments WHERE project_id = ?)), ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			order_index = excluded.order_index,
			source_duration = excluded.source_duration,
			start_trim = excluded.start_trim,
			end_trim = excluded.end_trim,
			source_ref = excluded.source_ref,
			name = excluded.name
	`, s.ID, projectID, seqArg(seq), projectID, s.Order, s.SourceDuration, s.StartTrim, s.EndTrim, nullString(s.SourceRef), nullString(s.Name))
	if err != nil {
		return fmt.Errorf("upsert segment %s: %w", s.ID, err)
	}
	return nil
}

func upsertSfx(ctx context.Context, db execer, projectID string, seq int, c timeline.SfxCue) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO sfx_cues (id, project_id, seq, start, duration, source_ref, source_trim_offset, source_duration)
		VALUES (?, ?, COALESCE(?, (SELECT COALESCE(MAX(seq), -1) + 1 FROM sfx_cues WHERE project_id = ?)), ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			start = excluded.start,
			duration = excluded.duration,
			source_ref = excluded.source_ref,
			source_trim_offset = excluded.source_trim_offset,
			source_duration = excluded.source_duration
	`, c.ID, projectID, seqArg(seq), projectID, c.Start, c.Duration, c.SourceRef, c.SourceTrimOffset, c.SourceDuration)
	if err != nil {
		return fmt.Errorf("upsert sfx %s: %w", c.ID, err)
	}
	return nil
}

func upsertCue(ctx context.Context, db execer, projectID string, kind timeline.TrackKind, seq int, c timeline.Cue) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO cues (id, project_id, track, seq, start, end_time, text, style)
		VALUES (?, ?, ?, COALESCE(?, (SELECT COALESCE(MAX(seq), -1) + 1 FROM cues WHERE project_id = ? AND track = ?)), ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			start = excluded.start,
			end_time = excluded.end_time,
			text = excluded.text,
			style = excluded.style
	`, c.ID, projectID, string(kind), seqArg(seq), projectID, string(kind), c.Start, c.End, c.Text, nullString(c.Style))
	if err != nil {
		return fmt.Errorf("upsert %s %s: %w", kind, c.ID, err)
	}
	return nil
}

func insertTransitions(ctx context.Context, db execer, projectID string, ts []timeline.Transition) error {
	for _, t := range ts {
		if _, err := db.ExecContext(ctx, `
			INSERT INTO transitions (project_id, from_id, to_id, type, duration) VALUES (?, ?, ?, ?, ?)
		`, projectID, t.FromID, t.ToID, string(t.Type), t.Duration); err != nil {
			return fmt.Errorf("insert transition %s->%s: %w", t.FromID, t.ToID, err)
		}
	}
	return nil
}

func touchProject(ctx context.Context, db execer, projectID string) error {
	_, err := db.ExecContext(ctx, `UPDATE projects SET updated_at = ? WHERE id = ?`,
		time.Now().UTC().Format(time.RFC3339), projectID)
	return err
}
