package db

import (
	"path/filepath"
	"testing"
)

func openAt(t *testing.T, path string) *DB {
	t.Helper()
	database, err := New(path, nil)
	if err != nil {
		t.Fatalf("New(%s) error = %v", path, err)
	}
	return database
}

func TestNew_Schema(t *testing.T) {
	database := openAt(t, filepath.Join(t.TempDir(), "nested", "editor.db"))
	defer database.Close()

	for _, table := range []string{"projects", "video_segments", "sfx_cues", "cues", "transitions", "config", "sessions", "_migrations"} {
		var name string
		if err := database.Conn().QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name); err != nil {
			t.Errorf("table %s missing: %v", table, err)
		}
	}

	var journalMode string
	if err := database.Conn().QueryRow("PRAGMA journal_mode").Scan(&journalMode); err != nil {
		t.Fatalf("PRAGMA journal_mode error = %v", err)
	}
	if journalMode != "wal" {
		t.Errorf("journal_mode = %s, want wal", journalMode)
	}
}

func TestNew_ReopenAppliesMigrationsOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "editor.db")
	openAt(t, path).Close()

	database := openAt(t, path)
	defer database.Close()

	var count int
	if err := database.Conn().QueryRow("SELECT COUNT(*) FROM _migrations").Scan(&count); err != nil {
		t.Fatalf("count migrations error = %v", err)
	}
	if count != 2 {
		t.Errorf("migration count = %d, want 2", count)
	}
}

func TestDeletingProjectCascades(t *testing.T) {
	database := openAt(t, filepath.Join(t.TempDir(), "editor.db"))
	defer database.Close()
	conn := database.Conn()

	stmts := []string{
		`INSERT INTO projects (id, name, created_at, updated_at) VALUES ('p', 'P', datetime('now'), datetime('now'))`,
		`INSERT INTO video_segments (id, project_id, seq, order_index, source_duration) VALUES ('a', 'p', 0, 0, 5), ('b', 'p', 1, 1, 5)`,
		`INSERT INTO transitions (project_id, from_id, to_id, type, duration) VALUES ('p', 'a', 'b', 'crossfade', 0.5)`,
		`INSERT INTO cues (id, project_id, track, seq, start, end_time) VALUES ('s', 'p', 'subtitle', 0, 1, 2)`,
	}
	for _, stmt := range stmts {
		if _, err := conn.Exec(stmt); err != nil {
			t.Fatalf("exec %q: %v", stmt, err)
		}
	}

	if _, err := conn.Exec(`DELETE FROM projects WHERE id = 'p'`); err != nil {
		t.Fatalf("delete project: %v", err)
	}
	for _, table := range []string{"video_segments", "transitions", "cues"} {
		var n int
		if err := conn.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
			t.Fatalf("count %s: %v", table, err)
		}
		if n != 0 {
			t.Errorf("%s has %d rows after project delete, want 0", table, n)
		}
	}
}

func TestCuesRejectUnknownTrack(t *testing.T) {
	database := openAt(t, filepath.Join(t.TempDir(), "editor.db"))
	defer database.Close()
	conn := database.Conn()

	if _, err := conn.Exec(`INSERT INTO projects (id, created_at, updated_at) VALUES ('p', datetime('now'), datetime('now'))`); err != nil {
		t.Fatal(err)
	}
	_, err := conn.Exec(`INSERT INTO cues (id, project_id, track, seq, start, end_time) VALUES ('x', 'p', 'video', 0, 0, 1)`)
	if err == nil {
		t.Error("insert of cue on video track succeeded, want CHECK failure")
	}
}

func TestNew_MarksInterruptedSessions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "editor.db")

	first := openAt(t, path)
	if _, err := first.Conn().Exec(`
		INSERT INTO sessions (id, project_id, status, started_at)
		VALUES ('open', 'demo', 'open', datetime('now')),
		       ('done', 'demo', 'closed', datetime('now'))
	`); err != nil {
		t.Fatalf("insert sessions error = %v", err)
	}
	first.Close()

	second := openAt(t, path)
	defer second.Close()

	want := map[string]string{"open": "interrupted", "done": "closed"}
	for id, status := range want {
		var got string
		if err := second.Conn().QueryRow("SELECT status FROM sessions WHERE id = ?", id).Scan(&got); err != nil {
			t.Fatalf("query session %s: %v", id, err)
		}
		if got != status {
			t.Errorf("session %s status = %s, want %s", id, got, status)
		}
	}
}
