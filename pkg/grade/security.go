package grade

import (
	"fmt"
	"strings"

	"github.com/dockgrade/dockgrade/pkg/types"
)

// Verdict is the pass/fail outcome of a security evaluation, derived from
// severity counts independently of the numeric score.
type Verdict string

const (
	VerdictPass    Verdict = "PASS"
	VerdictWarning Verdict = "WARNING"
	VerdictFail    Verdict = "FAIL"
)

// Per-vulnerability penalty weights.
const (
	weightCritical = 10
	weightHigh     = 5
	weightMedium   = 2
	weightLow      = 1
)

// DefaultTopCritical is the number of critical vulnerabilities sampled for
// display when the caller does not ask for a specific count.
const DefaultTopCritical = 5

// SeverityCounts tallies vulnerabilities per severity from raw scanner
// output. Duplicates are counted, not deduplicated.
type SeverityCounts struct {
	Critical int `json:"critical"`
	High     int `json:"high"`
	Medium   int `json:"medium"`
	Low      int `json:"low"`
	Unknown  int `json:"unknown"`
}

// Total returns the total number of findings across all severities.
func (c SeverityCounts) Total() int {
	return c.Critical + c.High + c.Medium + c.Low + c.Unknown
}

// CountBySeverity tallies a completed scan. A nil report is an error; only
// a present, possibly empty, report may be counted.
func CountBySeverity(report *types.VulnerabilityReport) (SeverityCounts, error) {
	if report == nil {
		return SeverityCounts{}, ErrNotScanned
	}
	var c SeverityCounts
	for _, v := range report.Vulnerabilities {
		switch v.Severity {
		case types.SeverityCritical:
			c.Critical++
		case types.SeverityHigh:
			c.High++
		case types.SeverityMedium:
			c.Medium++
		case types.SeverityLow:
			c.Low++
		default:
			c.Unknown++
		}
	}
	return c, nil
}

// EvaluateSecurity applies the vulnerability rule set to a completed scan
// and returns the ordered finding sequence: one finding per severity level
// that has at least one hit, most critical first.
func EvaluateSecurity(report *types.VulnerabilityReport) ([]Finding, error) {
	counts, err := CountBySeverity(report)
	if err != nil {
		return nil, err
	}

	classes := []struct {
		severity string
		count    int
		weight   int
	}{
		{types.SeverityCritical, counts.Critical, weightCritical},
		{types.SeverityHigh, counts.High, weightHigh},
		{types.SeverityMedium, counts.Medium, weightMedium},
		{types.SeverityLow, counts.Low, weightLow},
		{types.SeverityUnknown, counts.Unknown, 0},
	}

	findings := make([]Finding, 0, len(classes))
	for _, cl := range classes {
		if cl.count == 0 {
			continue
		}
		noun := "vulnerabilities"
		if cl.count == 1 {
			noun = "vulnerability"
		}
		findings = append(findings, Finding{
			Category: CategoryVulnerability,
			Status:   cl.severity,
			Message:  fmt.Sprintf("%d %s %s", cl.count, strings.ToLower(cl.severity), noun),
			Penalty:  cl.count * cl.weight,
		})
	}
	return findings, nil
}

// SecurityVerdict derives the pass/fail outcome: FAIL on any critical,
// WARNING on highs without criticals, PASS otherwise. Medium and below
// never change the verdict.
func SecurityVerdict(c SeverityCounts) Verdict {
	switch {
	case c.Critical > 0:
		return VerdictFail
	case c.High > 0:
		return VerdictWarning
	default:
		return VerdictPass
	}
}

// CriticalSample is the top-N critical extraction. Found distinguishes
// "scanned, zero criticals" from an empty slice a caller might otherwise
// misread; renderers show different messages for the two cases.
type CriticalSample struct {
	Found           bool                  `json:"found"`
	Vulnerabilities []types.Vulnerability `json:"vulnerabilities,omitempty"`
}

// TopCritical selects the critical-severity entries from a completed scan,
// preserving original scan order, truncated to the first n (DefaultTopCritical
// when n <= 0). A nil report is an error.
func TopCritical(report *types.VulnerabilityReport, n int) (CriticalSample, error) {
	if report == nil {
		return CriticalSample{}, ErrNotScanned
	}
	if n <= 0 {
		n = DefaultTopCritical
	}

	var sample CriticalSample
	for _, v := range report.Vulnerabilities {
		if v.Severity != types.SeverityCritical {
			continue
		}
		sample.Found = true
		if len(sample.Vulnerabilities) < n {
			sample.Vulnerabilities = append(sample.Vulnerabilities, v)
		}
	}
	return sample, nil
}
