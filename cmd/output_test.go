package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dockgrade/dockgrade/pkg/grade"
	"github.com/dockgrade/dockgrade/pkg/render"
	"github.com/dockgrade/dockgrade/pkg/types"
)

func TestResolveOutputPath(t *testing.T) {
	tests := []struct {
		name   string
		output string
		format string
		want   string
	}{
		{"stdout stays stdout", "", "json", ""},
		{"default path follows format", defaultReportFile, "json", "GRADE.json"},
		{"default path csv", defaultReportFile, "csv", "GRADE.csv"},
		{"default path md unchanged", defaultReportFile, "md", "GRADE.md"},
		{"term keeps default path", defaultReportFile, "term", "GRADE.md"},
		{"explicit path is kept", "out/custom.txt", "json", "out/custom.txt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := resolveOutputPath(tt.output, tt.format); got != tt.want {
				t.Errorf("resolveOutputPath(%q, %q) = %q, want %q", tt.output, tt.format, got, tt.want)
			}
		})
	}
}

func sampleReport() *render.Report {
	meta := &types.ImageMetadata{
		Image:     "app:latest",
		SizeBytes: 100 * 1024 * 1024,
		Layers:    []types.Layer{{Command: "FROM alpine AS base"}, {Command: "USER app"}},
		Features:  types.Features{MultiStage: true, NonRootUser: true, HealthCheck: true, CacheCleanup: true},
	}
	report, err := render.BuildReport(meta, nil, grade.DefaultTopCritical)
	if err != nil {
		panic(err)
	}
	return report
}

func TestFormatReport(t *testing.T) {
	report := sampleReport()

	for _, format := range []string{"", "term", "md", "json", "csv"} {
		out, err := formatReport(report, format)
		if err != nil {
			t.Errorf("formatReport(%q) error = %v", format, err)
		}
		if out == "" {
			t.Errorf("formatReport(%q) returned empty output", format)
		}
	}

	if _, err := formatReport(report, "xml"); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestFormatComparison(t *testing.T) {
	baseline := grade.Run{Image: "a:1", Score: 70}
	candidate := grade.Run{Image: "a:2", Score: 90}

	for _, format := range []string{"", "term", "md", "json"} {
		out, err := formatComparison(baseline, candidate, format)
		if err != nil {
			t.Errorf("formatComparison(%q) error = %v", format, err)
		}
		if out == "" {
			t.Errorf("formatComparison(%q) returned empty output", format)
		}
	}

	if _, err := formatComparison(baseline, candidate, "csv"); err == nil {
		t.Error("expected error for unsupported comparison format")
	}
}

func TestWriteOutput(t *testing.T) {
	var buf bytes.Buffer
	orig := stdout
	stdout = &buf
	defer func() { stdout = orig }()

	if err := writeOutput("", "hello\n"); err != nil {
		t.Fatalf("writeOutput() error = %v", err)
	}
	if buf.String() != "hello\n" {
		t.Errorf("stdout = %q, want hello", buf.String())
	}

	path := filepath.Join(t.TempDir(), "report.md")
	if err := writeOutput(path, "# report\n"); err != nil {
		t.Fatalf("writeOutput(file) error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "# report\n" {
		t.Errorf("file content = %q", data)
	}
}

func TestValidateSeverity(t *testing.T) {
	for _, ok := range []string{"", "CRITICAL", "high", "Medium", "LOW"} {
		if err := validateSeverity(ok); err != nil {
			t.Errorf("validateSeverity(%q) = %v, want nil", ok, err)
		}
	}
	if err := validateSeverity("SEVERE"); err == nil {
		t.Error("expected error for unknown severity")
	}
}

func TestGateError(t *testing.T) {
	report := sampleReport()

	if err := gateError(report, 0); err != nil {
		t.Errorf("no gate and no scan should pass, got %v", err)
	}
	if err := gateError(report, report.Optimization.Score+1); err == nil {
		t.Error("expected error when the score falls under the gate")
	} else if !strings.Contains(err.Error(), "below the gate") {
		t.Errorf("unexpected gate error: %v", err)
	}

	report.Security = &render.SecuritySection{
		Verdict: grade.VerdictFail,
		Counts:  grade.SeverityCounts{Critical: 2},
	}
	if err := gateError(report, 0); err == nil {
		t.Error("expected error for a failing security verdict")
	}
}
