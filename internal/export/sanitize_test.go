package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		maxLen int
		want   string
	}{
		{"control chars", " A\nB\rC\tD\x00 ", 100, "ABCD"},
		{"allowed chars", "Az09 -_.,()", 100, "Az09 -_.,()"},
		{"disallowed", "bad<>|\"name", 100, "bad____name"},
		{"truncates runes", "abcdefghijklmnopqrstuvwxyz", 10, "abcdefghij"},
		{"unicode letters", "장면 1", 100, "장면 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizeName(tt.in, tt.maxLen)
			if strings.ContainsAny(got, "\n\r\t\x00") || got != tt.want {
				t.Fatalf("SanitizeName(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestReelName(t *testing.T) {
	tests := []struct {
		ref  string
		want string
	}{
		{"clips/interview.mp4", "INTERVIE"},
		{"b-roll_01.mov", "BROLL01"},
		{"", "AX"},
		{"__.wav", "AX"},
		{`C:\media\take3.mp4`, "TAKE3"},
	}
	for _, tt := range tests {
		if got := ReelName(tt.ref); got != tt.want {
			t.Errorf("ReelName(%q) = %q, want %q", tt.ref, got, tt.want)
		}
	}
}

func TestValidateOutputDir(t *testing.T) {
	tmp := t.TempDir()
	file := filepath.Join(tmp, "file.txt")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatalf("failed to create file: %v", err)
	}

	tests := []struct {
		name    string
		dir     string
		wantErr bool
	}{
		{"valid", tmp, false},
		{"empty", "  ", true},
		{"missing", filepath.Join(tmp, "missing"), true},
		{"traversal", "/tmp/../etc", true},
		{"unclean", tmp + "/./", true},
		{"not a dir", file, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateOutputDir(tt.dir)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateOutputDir(%q) error = %v, wantErr %v", tt.dir, err, tt.wantErr)
			}
		})
	}
}
