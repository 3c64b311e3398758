package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dockgrade/dockgrade/pkg/grade"
	"github.com/dockgrade/dockgrade/pkg/types"
)

var (
	accent  = lipgloss.Color("#0EA5E9") // sky blue
	fg      = lipgloss.Color("#E8E6E3")
	dim     = lipgloss.Color("#6B7280")
	success = lipgloss.Color("#22C55E")
	danger  = lipgloss.Color("#EF4444")
	warning = lipgloss.Color("#F59E0B")

	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(accent)
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(fg)
	dimStyle    = lipgloss.NewStyle().Foreground(dim)
	okStyle     = lipgloss.NewStyle().Foreground(success)
	failStyle   = lipgloss.NewStyle().Foreground(danger)
	warnStyle   = lipgloss.NewStyle().Foreground(warning)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(0, 2)

	bandColors = map[grade.Band]lipgloss.Color{
		grade.BandExcellent:        success,
		grade.BandGood:             lipgloss.Color("#A3E635"),
		grade.BandFair:             warning,
		grade.BandPoor:             lipgloss.Color("#FB923C"),
		grade.BandNeedsImprovement: lipgloss.Color("#FB923C"),
		grade.BandCritical:         danger,
	}
)

func bandStyle(band grade.Band) lipgloss.Style {
	color, ok := bandColors[band]
	if !ok {
		color = dim
	}
	return lipgloss.NewStyle().Bold(true).Foreground(color)
}

func verdictStyle(v grade.Verdict) lipgloss.Style {
	switch v {
	case grade.VerdictPass:
		return okStyle
	case grade.VerdictWarning:
		return warnStyle
	default:
		return failStyle
	}
}

// Terminal renders one image report for an interactive session.
func Terminal(report *Report) string {
	var b strings.Builder

	header := headerStyle.Render("dockgrade") + "  " + dimStyle.Render(report.Image)
	b.WriteString(boxStyle.Render(header))
	b.WriteString("\n\n")

	renderScoreLine(&b, "Optimization", report.Optimization)
	if report.Metadata != nil {
		fmt.Fprintf(&b, "  %s %s in %d layers\n",
			dimStyle.Render("image:"),
			types.FormatSize(report.Metadata.SizeBytes),
			report.Metadata.LayerCount())
	}
	b.WriteString("\n")
	for _, f := range report.Optimization.Findings {
		renderFinding(&b, f)
	}

	if report.Recommendations == 0 {
		b.WriteString("\n  " + okStyle.Render("No outstanding recommendations.") + "\n")
	} else {
		fmt.Fprintf(&b, "\n  %s\n", warnStyle.Render(fmt.Sprintf("%d outstanding recommendation(s)", report.Recommendations)))
	}

	if sec := report.Security; sec != nil {
		b.WriteString("\n")
		renderScoreLine(&b, "Security", sec.Result)
		fmt.Fprintf(&b, "  %s %s\n", dimStyle.Render("verdict:"), verdictStyle(sec.Verdict).Render(string(sec.Verdict)))
		fmt.Fprintf(&b, "  critical %d  high %d  medium %d  low %d  unknown %d\n",
			sec.Counts.Critical, sec.Counts.High, sec.Counts.Medium, sec.Counts.Low, sec.Counts.Unknown)

		if sec.Top.Found {
			b.WriteString("\n  " + titleStyle.Render("Top critical vulnerabilities") + "\n")
			for _, v := range sec.Top.Vulnerabilities {
				fixed := v.FixedVersion
				if fixed == "" {
					fixed = "no fix available"
				}
				fmt.Fprintf(&b, "    %s %s %s (%s -> %s)\n",
					failStyle.Render("!"), v.ID, v.Package, v.InstalledVersion, fixed)
			}
		} else {
			b.WriteString("\n  " + okStyle.Render("No critical vulnerabilities found.") + "\n")
		}

		if len(sec.Worst) > 0 {
			b.WriteString("\n  " + titleStyle.Render("Worst remaining vulnerabilities") + "\n")
			for _, v := range sec.Worst {
				fmt.Fprintf(&b, "    %s %s %s %s\n",
					warnStyle.Render("!"), v.Severity, v.ID, v.Package)
			}
		}
	}

	return b.String()
}

// TerminalComparison renders a baseline/candidate diff.
func TerminalComparison(baseline, candidate grade.Run) string {
	delta := grade.Compare(baseline, candidate)

	var b strings.Builder
	header := headerStyle.Render("dockgrade compare") + "  " +
		dimStyle.Render(baseline.Image+" vs "+candidate.Image)
	b.WriteString(boxStyle.Render(header))
	b.WriteString("\n\n")

	sizeDelta := types.FormatSize(delta.SizeBytes)
	if delta.SizeBytes < 0 {
		sizeDelta = "-" + types.FormatSize(-delta.SizeBytes)
	} else {
		sizeDelta = "+" + sizeDelta
	}

	rows := []struct {
		name  string
		base  string
		cand  string
		delta int64
		show  string
	}{
		{"score", fmt.Sprintf("%d", baseline.Score), fmt.Sprintf("%d", candidate.Score), int64(delta.Score), fmt.Sprintf("%+d", delta.Score)},
		{"size", types.FormatSize(baseline.SizeBytes), types.FormatSize(candidate.SizeBytes), delta.SizeBytes, sizeDelta},
		{"layers", fmt.Sprintf("%d", baseline.Layers), fmt.Sprintf("%d", candidate.Layers), int64(delta.Layers), fmt.Sprintf("%+d", delta.Layers)},
		{"recommendations", fmt.Sprintf("%d", baseline.Recommendations), fmt.Sprintf("%d", candidate.Recommendations), int64(delta.Recommendations), fmt.Sprintf("%+d", delta.Recommendations)},
		{"critical", fmt.Sprintf("%d", baseline.Counts.Critical), fmt.Sprintf("%d", candidate.Counts.Critical), int64(delta.Critical), fmt.Sprintf("%+d", delta.Critical)},
		{"high", fmt.Sprintf("%d", baseline.Counts.High), fmt.Sprintf("%d", candidate.Counts.High), int64(delta.High), fmt.Sprintf("%+d", delta.High)},
		{"medium", fmt.Sprintf("%d", baseline.Counts.Medium), fmt.Sprintf("%d", candidate.Counts.Medium), int64(delta.Medium), fmt.Sprintf("%+d", delta.Medium)},
		{"low", fmt.Sprintf("%d", baseline.Counts.Low), fmt.Sprintf("%d", candidate.Counts.Low), int64(delta.Low), fmt.Sprintf("%+d", delta.Low)},
	}
	for _, row := range rows {
		style := dimStyle
		if row.delta < 0 {
			style = okStyle
		} else if row.delta > 0 {
			style = warnStyle
		}
		// For score, a positive delta is the improvement.
		if row.name == "score" {
			if row.delta > 0 {
				style = okStyle
			} else if row.delta < 0 {
				style = warnStyle
			}
		}
		fmt.Fprintf(&b, "  %-16s %12s  %12s  %s\n",
			row.name, row.base, row.cand, style.Render(row.show))
	}

	b.WriteString("\n  " + titleStyle.Render(delta.Verdict()) + "\n")
	return b.String()
}

func renderScoreLine(b *strings.Builder, label string, result grade.ScoreResult) {
	score := bandStyle(result.Band).Render(fmt.Sprintf("%d/100", result.Score))
	band := bandStyle(result.Band).Render(string(result.Band))
	fmt.Fprintf(b, "%s  %s  %s\n", titleStyle.Render(label), score, band)
}

func renderFinding(b *strings.Builder, f grade.Finding) {
	switch {
	case f.Penalty > 0:
		fmt.Fprintf(b, "  %s %-14s %s %s\n", failStyle.Render("✗"), f.Category, f.Message,
			dimStyle.Render(fmt.Sprintf("(-%d)", f.Penalty)))
	case f.Advisory:
		fmt.Fprintf(b, "  %s %-14s %s\n", warnStyle.Render("•"), f.Category, f.Message)
	default:
		fmt.Fprintf(b, "  %s %-14s %s\n", okStyle.Render("✓"), f.Category, f.Message)
	}
}
