package grade

// Band is a qualitative label derived from a numeric score.
type Band string

const (
	BandExcellent        Band = "Excellent"
	BandGood             Band = "Good"
	BandFair             Band = "Fair"
	BandPoor             Band = "Poor"
	BandCritical         Band = "Critical"
	BandNeedsImprovement Band = "Needs Improvement"
)

// bandCut maps a minimum score to its band. Tables are evaluated from the
// highest threshold down, first match wins.
type bandCut struct {
	min  int
	band Band
}

// BandTable is an ordered score-to-band lookup.
type BandTable []bandCut

// OptimizationBands grades build-hygiene scores.
var OptimizationBands = BandTable{
	{90, BandExcellent},
	{75, BandGood},
	{60, BandFair},
	{0, BandNeedsImprovement},
}

// SecurityBands grades vulnerability scores.
var SecurityBands = BandTable{
	{90, BandExcellent},
	{75, BandGood},
	{60, BandFair},
	{40, BandPoor},
	{0, BandCritical},
}

// Lookup returns the band for a clamped score.
func (t BandTable) Lookup(score int) Band {
	for _, cut := range t {
		if score >= cut.min {
			return cut.band
		}
	}
	return t[len(t)-1].band
}

// ScoreResult is the outcome of folding one finding sequence.
type ScoreResult struct {
	// Raw is the pre-clamp value and may be negative.
	Raw int `json:"raw"`
	// Score is Raw clamped to [0,100].
	Score int  `json:"score"`
	Band  Band `json:"band"`
	// Findings preserves evaluation order for audit and display.
	Findings []Finding `json:"findings"`
}

const startingScore = 100

// Aggregate folds a finding sequence into a ScoreResult against the given
// band table. The scheme is monotonically non-increasing: no finding can
// award points, so no upper clamp beyond the starting 100 is needed.
func Aggregate(findings []Finding, bands BandTable) ScoreResult {
	raw := startingScore
	for _, f := range findings {
		raw -= f.Penalty
	}
	score := raw
	if score < 0 {
		score = 0
	}
	return ScoreResult{
		Raw:      raw,
		Score:    score,
		Band:     bands.Lookup(score),
		Findings: findings,
	}
}
