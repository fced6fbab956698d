package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/heimdex/heimdex-editor/internal/config"
	"github.com/heimdex/heimdex-editor/internal/db"
	"github.com/heimdex/heimdex-editor/internal/store"
	"github.com/heimdex/heimdex-editor/internal/timeline"
)

func seedProject(t *testing.T) string {
	t.Helper()
	dataDir := t.TempDir()
	t.Setenv(config.EnvDataDir, dataDir)
	t.Setenv(config.EnvConfigFile, "")

	database, err := db.New(filepath.Join(dataDir, config.DBFilename), nil)
	if err != nil {
		t.Fatalf("db.New() error = %v", err)
	}
	defer database.Close()

	ctx := context.Background()
	repo := store.NewRepository(database.Conn(), nil)
	if _, err := repo.EnsureProject(ctx, "demo", "Beach Day"); err != nil {
		t.Fatalf("EnsureProject() error = %v", err)
	}
	snap := timeline.Snapshot{
		Video: []timeline.VideoSegment{
			{ID: "v2", Order: 1, SourceDuration: 4, SourceRef: "b.mp4", Name: "second"},
			{ID: "v1", Order: 0, SourceDuration: 6, SourceRef: "a.mp4", Name: "first"},
		},
		Subtitles: []timeline.Cue{{ID: "s1", Start: 1, End: 2.5, Text: "hello"}},
	}
	if err := repo.SaveProject(ctx, "demo", snap); err != nil {
		t.Fatalf("SaveProject() error = %v", err)
	}
	return dataDir
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := runCLI(t, "version")
	if err != nil {
		t.Fatalf("version error = %v", err)
	}
	if !strings.Contains(out, Version) {
		t.Errorf("output = %q, want version %s", out, Version)
	}
}

func TestLayoutCommand(t *testing.T) {
	seedProject(t)

	out, err := runCLI(t, "layout", "--project", "demo")
	if err != nil {
		t.Fatalf("layout error = %v", err)
	}

	for _, want := range []string{"Beach Day (demo), 10.00s total", "Video", "Subtitle", "hello", "6.00s", "10.00s"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Index(out, "first") > strings.Index(out, "second") {
		t.Errorf("clips not in playback order:\n%s", out)
	}
}

func TestLayoutCommand_UnknownProject(t *testing.T) {
	seedProject(t)

	if _, err := runCLI(t, "layout", "-p", "missing"); err == nil {
		t.Fatal("layout of unknown project succeeded")
	}
}

func TestExportCommand(t *testing.T) {
	seedProject(t)
	outDir := t.TempDir()

	out, err := runCLI(t, "export", "-p", "demo", "-o", outDir, "--name", "beach cut")
	if err != nil {
		t.Fatalf("export error = %v", err)
	}
	if !strings.Contains(out, "wrote 2 events") {
		t.Errorf("output = %q", out)
	}

	entries, err := os.ReadDir(outDir)
	if err != nil || len(entries) != 1 || filepath.Ext(entries[0].Name()) != ".edl" {
		t.Fatalf("output dir = %v, %v", entries, err)
	}
	data, _ := os.ReadFile(filepath.Join(outDir, entries[0].Name()))
	if !strings.Contains(string(data), "TITLE:") {
		t.Errorf("edl missing title:\n%s", data)
	}
}

func TestExportCommand_RequiresOutput(t *testing.T) {
	seedProject(t)

	if _, err := runCLI(t, "export", "-p", "demo"); err == nil {
		t.Fatal("export without --output succeeded")
	}
}

func TestRenderTable(t *testing.T) {
	if got := renderTable(nil, nil, nil); got != "" {
		t.Errorf("renderTable(nil) = %q, want empty", got)
	}

	out := renderTable([]string{"A", "B"}, [][]string{{"x"}, {"y", "z"}}, []columnAlignment{alignLeft, alignRight})
	for _, want := range []string{"A", "B", "x", "y", "z"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
}
