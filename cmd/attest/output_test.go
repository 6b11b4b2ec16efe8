package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jamesainslie/attest/pkg/attest/journal"
	"github.com/jamesainslie/attest/pkg/attest/report"
	"github.com/spf13/viper"
)

func TestSelectOutput(t *testing.T) {
	viper.Reset()

	tests := []struct {
		format        string
		wantRenderer  bool
		wantFormatter bool
		wantErr       bool
	}{
		{"plain", true, false, false},
		{"pretty", true, false, false},
		{"", true, false, false},
		{"json", false, true, false},
		{"yaml", false, true, false},
		{"xml", false, false, true},
	}

	for _, tt := range tests {
		t.Run("format "+tt.format, func(t *testing.T) {
			renderer, formatter, err := selectOutput(tt.format)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("selectOutput(%q) expected error, got nil", tt.format)
				}
				return
			}
			if err != nil {
				t.Fatalf("selectOutput(%q) unexpected error: %v", tt.format, err)
			}
			if (renderer != nil) != tt.wantRenderer {
				t.Errorf("selectOutput(%q) renderer = %v, want present=%v", tt.format, renderer, tt.wantRenderer)
			}
			if (formatter != nil) != tt.wantFormatter {
				t.Errorf("selectOutput(%q) formatter = %v, want present=%v", tt.format, formatter, tt.wantFormatter)
			}
		})
	}
}

func TestSelectOutputPrettyFallsBackWithoutTTY(t *testing.T) {
	viper.Reset()
	viper.Set("no_color", true)

	renderer, _, err := selectOutput("pretty")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := renderer.(*report.PlainRenderer); !ok {
		t.Errorf("expected plain renderer when color is disabled, got %T", renderer)
	}
}

func TestResolveDir(t *testing.T) {
	dir := t.TempDir()

	got, err := resolveDir(dir)
	if err != nil {
		t.Fatalf("resolveDir(%q) unexpected error: %v", dir, err)
	}
	if !filepath.IsAbs(got) {
		t.Errorf("resolveDir(%q) = %q, want absolute path", dir, got)
	}

	if _, err := resolveDir(filepath.Join(dir, "absent")); err == nil {
		t.Error("expected error for nonexistent directory")
	}

	file := filepath.Join(dir, "f.txt")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := resolveDir(file); err == nil {
		t.Error("expected error for regular file")
	}
}

func TestSummaryLine(t *testing.T) {
	build := journal.Entry{
		Operation: journal.OpBuild,
		Counts:    journal.Counts{TotalFiles: 3, TotalBytes: 1024},
	}
	if got := summaryLine(build); got != "3 files (1.0 KiB)" {
		t.Errorf("build summary = %q", got)
	}

	build.Counts.Failures = 2
	if got := summaryLine(build); got != "3 files (1.0 KiB), 2 failures" {
		t.Errorf("build summary with failures = %q", got)
	}

	verify := journal.Entry{
		Operation: journal.OpVerify,
		Counts:    journal.Counts{Verified: 8, Failed: 1, Missing: 1},
	}
	if got := summaryLine(verify); got != "8 verified, 1 failed, 1 missing" {
		t.Errorf("verify summary = %q", got)
	}
}

func TestPlural(t *testing.T) {
	if got := plural(1, "entry", "entries"); got != "entry" {
		t.Errorf("plural(1) = %q", got)
	}
	if got := plural(2, "entry", "entries"); got != "entries" {
		t.Errorf("plural(2) = %q", got)
	}
	if got := plural(0, "entry", "entries"); got != "entries" {
		t.Errorf("plural(0) = %q", got)
	}
}
