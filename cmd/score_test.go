package cmd

import (
	"errors"
	"testing"

	"github.com/dockgrade/dockgrade/pkg/collect"
	"github.com/dockgrade/dockgrade/pkg/config"
	"github.com/dockgrade/dockgrade/pkg/grade"
	"github.com/dockgrade/dockgrade/pkg/types"
)

func TestPickFormat(t *testing.T) {
	tests := []struct {
		name      string
		flagValue string
		flagSet   bool
		cfgFormat string
		want      string
	}{
		{"config wins over flag default", "term", false, "json", "json"},
		{"explicit flag wins over config", "term", true, "json", "term"},
		{"explicit non-default flag wins", "csv", true, "json", "csv"},
		{"flag default with empty config", "term", false, "", "term"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := pickFormat(tt.flagValue, tt.flagSet, tt.cfgFormat); got != tt.want {
				t.Errorf("pickFormat(%q, %v, %q) = %q, want %q", tt.flagValue, tt.flagSet, tt.cfgFormat, got, tt.want)
			}
		})
	}
}

func TestBuildImageReport(t *testing.T) {
	result := &collect.Result{
		Metadata: &types.ImageMetadata{
			Image:     "app:latest",
			SizeBytes: 100 * 1024 * 1024,
			Layers:    []types.Layer{{Command: "FROM alpine AS base"}},
			Features:  types.Features{MultiStage: true, NonRootUser: true, HealthCheck: true, CacheCleanup: true},
		},
	}

	report, err := buildImageReport(config.ImageEntry{Tag: "app:latest", Name: "frontend"}, result, 0)
	if err != nil {
		t.Fatalf("buildImageReport() error = %v", err)
	}
	if report.Image != "frontend" {
		t.Errorf("Image = %q, want the display-name override", report.Image)
	}
	if report.Security != nil {
		t.Error("no scan ran, security section must be absent")
	}
}

func TestBuildImageReport_MissingMetadata(t *testing.T) {
	if _, err := buildImageReport(config.ImageEntry{Tag: "a:1"}, nil, 0); !errors.Is(err, grade.ErrNoMetadata) {
		t.Errorf("nil result: got %v, want ErrNoMetadata", err)
	}
	if _, err := buildImageReport(config.ImageEntry{Tag: "a:1"}, &collect.Result{}, 0); !errors.Is(err, grade.ErrNoMetadata) {
		t.Errorf("empty result: got %v, want ErrNoMetadata", err)
	}
}

func TestBuildImageReport_SeverityFloor(t *testing.T) {
	orig := scoreSeverity
	scoreSeverity = "high"
	defer func() { scoreSeverity = orig }()

	result := &collect.Result{
		Metadata: &types.ImageMetadata{Image: "app:latest"},
		Report: &types.VulnerabilityReport{
			Image: "app:latest",
			Vulnerabilities: []types.Vulnerability{
				{ID: "CVE-1", Severity: types.SeverityHigh},
				{ID: "CVE-2", Severity: types.SeverityLow},
			},
		},
	}

	report, err := buildImageReport(config.ImageEntry{Tag: "app:latest"}, result, 0)
	if err != nil {
		t.Fatalf("buildImageReport() error = %v", err)
	}
	if report.Security == nil {
		t.Fatal("expected a security section")
	}
	if got := report.Security.Counts.Total(); got != 1 {
		t.Errorf("counted %d vulnerabilities, want 1 after the HIGH floor", got)
	}
}
