package collect

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"time"

	"github.com/dockgrade/dockgrade/pkg/types"
)

// TrivyCollector runs 'trivy image -q --format json <image>' and normalizes
// the report. A completed scan always yields a non-nil report, even when
// zero vulnerabilities were found.
type TrivyCollector struct {
	binary string
}

// Name returns the display name for this collector.
func (c *TrivyCollector) Name() string { return "trivy" }

// IsAvailable checks whether the trivy binary is installed.
func (c *TrivyCollector) IsAvailable() bool {
	path, err := exec.LookPath("trivy")
	if err != nil {
		return false
	}
	c.binary = path
	return true
}

// Collect scans the image and parses the result.
func (c *TrivyCollector) Collect(ctx context.Context, image string, verbose bool) (*Result, error) {
	if c.binary == "" {
		if !c.IsAvailable() {
			return nil, fmt.Errorf("trivy not found in PATH")
		}
	}

	runCtx, cancel := context.WithTimeout(ctx, TimeoutScan)
	defer cancel()
	cmd := exec.CommandContext(runCtx, c.binary, "image", "-q", "--format", "json", image)
	output, err := runCommand(cmd, verbose)
	if err != nil {
		return nil, err
	}

	report, err := parseTrivyOutput(output, image)
	if err != nil {
		return nil, err
	}
	return &Result{Report: report}, nil
}

// trivyOutput is the subset of the trivy JSON report we read. Results is a
// pointer so an absent section (a scan that produced no parseable target
// data) is distinguishable from an empty one.
type trivyOutput struct {
	CreatedAt time.Time `json:"CreatedAt"`
	Results   *[]struct {
		Target          string `json:"Target"`
		Vulnerabilities []struct {
			VulnerabilityID  string `json:"VulnerabilityID"`
			PkgName          string `json:"PkgName"`
			InstalledVersion string `json:"InstalledVersion"`
			FixedVersion     string `json:"FixedVersion"`
			Severity         string `json:"Severity"`
			Title            string `json:"Title"`
		} `json:"Vulnerabilities"`
	} `json:"Results"`
}

// parseTrivyOutput flattens all result targets into a single report,
// preserving scanner order.
func parseTrivyOutput(output []byte, image string) (*types.VulnerabilityReport, error) {
	var raw trivyOutput
	if err := json.Unmarshal(output, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse trivy output: %w", err)
	}
	if raw.Results == nil {
		return nil, fmt.Errorf("trivy output for %s has no results section", image)
	}

	scannedAt := raw.CreatedAt
	if scannedAt.IsZero() {
		scannedAt = time.Now()
	}

	report := &types.VulnerabilityReport{
		Image:           image,
		ScannedAt:       scannedAt,
		Vulnerabilities: make([]types.Vulnerability, 0),
	}
	for _, res := range *raw.Results {
		for _, v := range res.Vulnerabilities {
			report.Vulnerabilities = append(report.Vulnerabilities, types.Vulnerability{
				ID:               v.VulnerabilityID,
				Severity:         v.Severity,
				Package:          v.PkgName,
				InstalledVersion: v.InstalledVersion,
				FixedVersion:     v.FixedVersion,
				Title:            v.Title,
			})
		}
	}
	return report, nil
}
