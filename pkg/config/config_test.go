package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), DefaultFileName)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
images:
  - tag: app:latest
    name: web frontend
    dockerfile: ./Dockerfile
  - tag: worker:latest
output: GRADE.md
format: md
fail_below: 60
top_critical: 3
skip_scan: true
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(cfg.Images) != 2 {
		t.Fatalf("got %d images, want 2", len(cfg.Images))
	}
	if got := cfg.Images[0].DisplayName(); got != "web frontend" {
		t.Errorf("DisplayName() = %q, want web frontend", got)
	}
	if got := cfg.Images[1].DisplayName(); got != "worker:latest" {
		t.Errorf("DisplayName() = %q, want the tag when no name is set", got)
	}
	if cfg.FailBelow != 60 || cfg.TopCritical != 3 || !cfg.SkipScan {
		t.Errorf("unexpected options: %+v", cfg)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"no images", "format: md\n", "no images configured"},
		{"missing tag", "images:\n  - name: oops\n", "tag is required"},
		{"bad format", "images:\n  - tag: a:1\nformat: xml\n", "unknown format"},
		{"gate out of range", "images:\n  - tag: a:1\nfail_below: 250\n", "fail_below"},
		{"not yaml", "images: [unclosed\n", "failed to parse"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.content)
			_, err := Load(path)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}
