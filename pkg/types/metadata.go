package types

import (
	"sort"
	"time"
)

// Severity levels as reported by the vulnerability scanner.
const (
	SeverityCritical = "CRITICAL"
	SeverityHigh     = "HIGH"
	SeverityMedium   = "MEDIUM"
	SeverityLow      = "LOW"
	SeverityUnknown  = "UNKNOWN"
)

// severityRank orders severities from most to least critical.
var severityRank = map[string]int{
	SeverityCritical: 4,
	SeverityHigh:     3,
	SeverityMedium:   2,
	SeverityLow:      1,
	SeverityUnknown:  0,
}

// SeverityRank returns the ordering weight for a severity label.
// Unrecognized labels rank alongside UNKNOWN.
func SeverityRank(severity string) int {
	return severityRank[severity]
}

// Layer is one filesystem diff produced by a single build instruction.
// Command holds the full originating instruction text; it may be truncated
// for display but never before feature detection runs over it.
type Layer struct {
	SizeBytes int64  `json:"size_bytes"`
	Command   string `json:"command"`
}

// Features are build-practice signals detected for an image. They are
// heuristic: a false negative is possible when the triggering instruction
// text is absent from the recorded layer commands.
type Features struct {
	MultiStage   bool `json:"multi_stage"`
	NonRootUser  bool `json:"non_root_user"`
	HealthCheck  bool `json:"health_check"`
	CacheCleanup bool `json:"cache_cleanup"`
}

// Merge combines two detection results, keeping any positive signal.
func (f Features) Merge(other Features) Features {
	return Features{
		MultiStage:   f.MultiStage || other.MultiStage,
		NonRootUser:  f.NonRootUser || other.NonRootUser,
		HealthCheck:  f.HealthCheck || other.HealthCheck,
		CacheCleanup: f.CacheCleanup || other.CacheCleanup,
	}
}

// ImageMetadata is an immutable snapshot of one image, created once per
// collection run. Layers are in build order, earliest first.
type ImageMetadata struct {
	Image     string   `json:"image"`
	SizeBytes int64    `json:"size_bytes"`
	Layers    []Layer  `json:"layers"`
	Features  Features `json:"features"`
}

// LayerCount returns the number of recorded layers.
func (m *ImageMetadata) LayerCount() int {
	return len(m.Layers)
}

// Vulnerability represents a single scanner finding. Duplicates (same ID and
// package reported twice) are kept as-is; counts reflect raw scanner output.
type Vulnerability struct {
	ID               string `json:"id"`
	Severity         string `json:"severity"`
	Package          string `json:"package"`
	InstalledVersion string `json:"installed_version"`
	FixedVersion     string `json:"fixed_version,omitempty"`
	Title            string `json:"title,omitempty"`
}

// VulnerabilityReport holds the outcome of one completed scan. A nil report
// means the image was never scanned, which is distinct from a report with an
// empty vulnerability list (a verified clean scan).
type VulnerabilityReport struct {
	Image           string          `json:"image"`
	ScannedAt       time.Time       `json:"scanned_at"`
	Vulnerabilities []Vulnerability `json:"vulnerabilities"`
}

// FilterMinSeverity returns a copy of the report keeping only entries at or
// above the given severity. A nil report stays nil; an unrecognized minimum
// keeps everything, since unknown ranks lowest.
func FilterMinSeverity(report *VulnerabilityReport, min string) *VulnerabilityReport {
	if report == nil {
		return nil
	}
	floor := SeverityRank(min)
	filtered := &VulnerabilityReport{
		Image:           report.Image,
		ScannedAt:       report.ScannedAt,
		Vulnerabilities: make([]Vulnerability, 0, len(report.Vulnerabilities)),
	}
	for _, v := range report.Vulnerabilities {
		if SeverityRank(v.Severity) >= floor {
			filtered.Vulnerabilities = append(filtered.Vulnerabilities, v)
		}
	}
	return filtered
}

// SortBySeverity orders vulnerabilities most-critical first, breaking ties
// by ID for stable output.
func SortBySeverity(vulns []Vulnerability) {
	sort.SliceStable(vulns, func(i, j int) bool {
		ri, rj := SeverityRank(vulns[i].Severity), SeverityRank(vulns[j].Severity)
		if ri != rj {
			return ri > rj
		}
		return vulns[i].ID < vulns[j].ID
	})
}
