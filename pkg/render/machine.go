package render

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/dockgrade/dockgrade/pkg/grade"
)

// JSON renders a report as indented JSON for machine consumption.
func JSON(report *Report) (string, error) {
	raw, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", err
	}
	return string(raw) + "\n", nil
}

// JSONComparison renders a baseline/candidate diff as indented JSON.
func JSONComparison(baseline, candidate grade.Run) (string, error) {
	payload := struct {
		Baseline  grade.Run   `json:"baseline"`
		Candidate grade.Run   `json:"candidate"`
		Delta     grade.Delta `json:"delta"`
		Verdict   string      `json:"verdict"`
	}{
		Baseline:  baseline,
		Candidate: candidate,
		Delta:     grade.Compare(baseline, candidate),
	}
	payload.Verdict = payload.Delta.Verdict()

	raw, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", err
	}
	return string(raw) + "\n", nil
}

// CSV renders the finding sequences of a report, one finding per row.
func CSV(report *Report) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"rule_set", "category", "status", "penalty", "message"}); err != nil {
		return "", err
	}
	for _, f := range report.Optimization.Findings {
		if err := writeFindingRow(w, "optimization", f); err != nil {
			return "", err
		}
	}
	if report.Security != nil {
		for _, f := range report.Security.Result.Findings {
			if err := writeFindingRow(w, "security", f); err != nil {
				return "", err
			}
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("writing csv: %w", err)
	}
	return buf.String(), nil
}

func writeFindingRow(w *csv.Writer, ruleSet string, f grade.Finding) error {
	return w.Write([]string{
		ruleSet,
		string(f.Category),
		f.Status,
		strconv.Itoa(f.Penalty),
		f.Message,
	})
}
