// Package render formats findings and scores for humans (markdown,
// terminal) and machines (JSON, CSV). It owns no scoring logic; it accepts
// the grade package's outputs as plain data and acts as a sink.
package render

import (
	"time"

	"github.com/dockgrade/dockgrade/pkg/grade"
	"github.com/dockgrade/dockgrade/pkg/types"
)

// SecuritySection holds the scored security outputs for one image. It is
// absent from a report when no vulnerability scan ran. Worst lists the
// most severe remaining entries when the scan found no criticals, so a
// WARNING report still names its offenders.
type SecuritySection struct {
	Result  grade.ScoreResult     `json:"result"`
	Verdict grade.Verdict         `json:"verdict"`
	Counts  grade.SeverityCounts  `json:"counts"`
	Top     grade.CriticalSample  `json:"top_critical"`
	Worst   []types.Vulnerability `json:"worst,omitempty"`
}

// Report is the full renderable payload for one image.
type Report struct {
	Image           string               `json:"image"`
	GeneratedAt     time.Time            `json:"generated_at"`
	Metadata        *types.ImageMetadata `json:"metadata"`
	Optimization    grade.ScoreResult    `json:"optimization"`
	Recommendations int                  `json:"recommendations"`
	Security        *SecuritySection     `json:"security,omitempty"`
}

// BuildReport evaluates both rule sets over the collected inputs and
// assembles the payload. vulnReport may be nil to skip the security
// section; metadata may not.
func BuildReport(meta *types.ImageMetadata, vulnReport *types.VulnerabilityReport, topN int) (*Report, error) {
	optFindings, err := grade.EvaluateOptimization(meta)
	if err != nil {
		return nil, err
	}

	report := &Report{
		Image:           meta.Image,
		GeneratedAt:     time.Now(),
		Metadata:        meta,
		Optimization:    grade.Aggregate(optFindings, grade.OptimizationBands),
		Recommendations: grade.Recommendations(optFindings),
	}

	if vulnReport != nil {
		secFindings, err := grade.EvaluateSecurity(vulnReport)
		if err != nil {
			return nil, err
		}
		counts, err := grade.CountBySeverity(vulnReport)
		if err != nil {
			return nil, err
		}
		top, err := grade.TopCritical(vulnReport, topN)
		if err != nil {
			return nil, err
		}
		report.Security = &SecuritySection{
			Result:  grade.Aggregate(secFindings, grade.SecurityBands),
			Verdict: grade.SecurityVerdict(counts),
			Counts:  counts,
			Top:     top,
			Worst:   worstRemaining(vulnReport, top, topN),
		}
	}
	return report, nil
}

// worstRemaining sorts the scanned vulnerabilities most-critical first and
// returns the top of that order, but only when there are no criticals; the
// critical sample already covers the other case.
func worstRemaining(report *types.VulnerabilityReport, top grade.CriticalSample, n int) []types.Vulnerability {
	if top.Found || len(report.Vulnerabilities) == 0 {
		return nil
	}
	if n <= 0 {
		n = grade.DefaultTopCritical
	}
	worst := make([]types.Vulnerability, len(report.Vulnerabilities))
	copy(worst, report.Vulnerabilities)
	types.SortBySeverity(worst)
	if len(worst) > n {
		worst = worst[:n]
	}
	return worst
}

// Run projects a report into the comparable tuple used for diffs.
func (r *Report) Run() grade.Run {
	run := grade.Run{
		Image:           r.Image,
		Score:           r.Optimization.Score,
		Recommendations: r.Recommendations,
	}
	if r.Metadata != nil {
		run.SizeBytes = r.Metadata.SizeBytes
		run.Layers = r.Metadata.LayerCount()
	}
	if r.Security != nil {
		run.Counts = r.Security.Counts
	}
	return run
}
