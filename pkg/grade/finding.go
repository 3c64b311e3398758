// Package grade turns collected image metadata and vulnerability reports
// into findings, a bounded 0-100 score with a qualitative band, and a
// pass/fail verdict. All functions are pure: immutable inputs in, fresh
// values out, safe for any number of concurrent callers.
package grade

import "errors"

// ErrNoMetadata is returned when scoring is attempted without a collected
// metadata snapshot. An absent snapshot must never score as a perfect image.
var ErrNoMetadata = errors.New("no image metadata collected")

// ErrNotScanned is returned when a security evaluation is attempted without
// a completed vulnerability scan. A missing scan is distinct from a scan
// that found zero vulnerabilities.
var ErrNotScanned = errors.New("image was not scanned for vulnerabilities")

// Category identifies which rule produced a finding.
type Category string

const (
	CategorySize          Category = "size"
	CategoryLayerCount    Category = "layers"
	CategoryMultiStage    Category = "multistage"
	CategoryCacheCleanup  Category = "cache-cleanup"
	CategoryNonRootUser   Category = "nonroot"
	CategoryHealthCheck   Category = "healthcheck"
	CategoryVulnerability Category = "vulnerability"
)

// Finding is one rule-evaluation outcome. Findings never mutate after
// creation; every evaluation run builds a fresh ordered sequence.
type Finding struct {
	Category Category `json:"category"`
	Status   string   `json:"status"`
	Message  string   `json:"message"`
	Penalty  int      `json:"penalty"`

	// Advisory findings count toward the recommendation tally but carry no
	// point weight. Keeping the flag explicit makes the split between
	// "number of recommendations" and "score" deliberate instead of two
	// call sites disagreeing about weights.
	Advisory bool `json:"advisory,omitempty"`
}

// Actionable reports whether a finding represents something to fix, i.e.
// it carries a penalty or is an explicit advisory.
func (f Finding) Actionable() bool {
	return f.Penalty > 0 || f.Advisory
}

// Recommendations counts the actionable findings in a sequence. Zero means
// the image already follows every checked practice.
func Recommendations(findings []Finding) int {
	n := 0
	for _, f := range findings {
		if f.Actionable() {
			n++
		}
	}
	return n
}

// Statuses used across both rule sets.
const (
	StatusOK       = "ok"
	StatusLarge    = "large"
	StatusMedium   = "medium"
	StatusHigh     = "high"
	StatusModerate = "moderate"
	StatusMissing  = "missing"
)
