package grade

import "fmt"

// Run bundles the scored outputs for one image so two independent runs can
// be diffed. Counts is zero-valued when the run had no security scan.
type Run struct {
	Image           string         `json:"image"`
	Score           int            `json:"score"`
	SizeBytes       int64          `json:"size_bytes"`
	Layers          int            `json:"layers"`
	Recommendations int            `json:"recommendations"`
	Counts          SeverityCounts `json:"counts"`
}

// Delta is the structural diff of two runs, computed candidate minus
// baseline. The baseline is always the first operand and is named first in
// any rendered output.
type Delta struct {
	Baseline  string `json:"baseline"`
	Candidate string `json:"candidate"`

	Score           int   `json:"score"`
	SizeBytes       int64 `json:"size_bytes"`
	Layers          int   `json:"layers"`
	Recommendations int   `json:"recommendations"`

	Critical int `json:"critical"`
	High     int `json:"high"`
	Medium   int `json:"medium"`
	Low      int `json:"low"`
	Unknown  int `json:"unknown"`
}

// Compare diffs two independent runs. It is a pure function and
// antisymmetric: swapping operands flips the sign of every delta.
func Compare(baseline, candidate Run) Delta {
	return Delta{
		Baseline:        baseline.Image,
		Candidate:       candidate.Image,
		Score:           candidate.Score - baseline.Score,
		SizeBytes:       candidate.SizeBytes - baseline.SizeBytes,
		Layers:          candidate.Layers - baseline.Layers,
		Recommendations: candidate.Recommendations - baseline.Recommendations,
		Critical:        candidate.Counts.Critical - baseline.Counts.Critical,
		High:            candidate.Counts.High - baseline.Counts.High,
		Medium:          candidate.Counts.Medium - baseline.Counts.Medium,
		Low:             candidate.Counts.Low - baseline.Counts.Low,
		Unknown:         candidate.Counts.Unknown - baseline.Counts.Unknown,
	}
}

// TotalFindings is the candidate-minus-baseline difference in total
// vulnerability count.
func (d Delta) TotalFindings() int {
	return d.Critical + d.High + d.Medium + d.Low + d.Unknown
}

// Verdict renders the single-sentence summary of the diff.
func (d Delta) Verdict() string {
	diff := d.TotalFindings()
	switch {
	case diff < 0:
		return fmt.Sprintf("%s has %d fewer findings than %s", d.Candidate, -diff, d.Baseline)
	case diff > 0:
		return fmt.Sprintf("%s has %d more findings than %s", d.Candidate, diff, d.Baseline)
	default:
		return fmt.Sprintf("%s and %s have an equal number of findings", d.Baseline, d.Candidate)
	}
}
