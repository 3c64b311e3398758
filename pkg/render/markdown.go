package render

import (
	"bytes"
	"strconv"
	"text/template"

	"github.com/dockgrade/dockgrade/pkg/grade"
	"github.com/dockgrade/dockgrade/pkg/types"
)

const reportTemplate = `# Image Grade: {{ .Image }}

## Optimization — {{ .Optimization.Score }}/100 ({{ .Optimization.Band }})

{{- if .Metadata }}

| Metric | Value |
|--------|-------|
| Size | {{ humanSize .Metadata.SizeBytes }} |
| Layers | {{ .Metadata.LayerCount }} |
{{- end }}

| Check | Status | Penalty | Detail |
|-------|--------|---------|--------|
{{- range .Optimization.Findings }}
| {{ .Category }} | {{ .Status }} | {{ .Penalty }} | {{ .Message }} |
{{- end }}

{{ if eq .Recommendations 0 -}}
Excellent: no outstanding recommendations.
{{- else -}}
{{ .Recommendations }} outstanding recommendation(s).
{{- end }}

{{- if .Security }}

## Security — {{ .Security.Result.Score }}/100 ({{ .Security.Result.Band }}) — {{ .Security.Verdict }}

Critical: {{ .Security.Counts.Critical }} | High: {{ .Security.Counts.High }} | Medium: {{ .Security.Counts.Medium }} | Low: {{ .Security.Counts.Low }} | Unknown: {{ .Security.Counts.Unknown }}

{{ if .Security.Top.Found -}}
### Top Critical Vulnerabilities

| ID | Package | Installed | Fixed In |
|----|---------|-----------|----------|
{{- range .Security.Top.Vulnerabilities }}
| {{ .ID }} | {{ .Package }} | {{ .InstalledVersion }} | {{ if .FixedVersion }}{{ .FixedVersion }}{{ else }}none{{ end }} |
{{- end }}
{{- else -}}
No critical vulnerabilities found.
{{- end }}

{{- if .Security.Worst }}

### Worst Remaining Vulnerabilities

| ID | Severity | Package | Installed | Fixed In |
|----|----------|---------|-----------|----------|
{{- range .Security.Worst }}
| {{ .ID }} | {{ .Severity }} | {{ .Package }} | {{ .InstalledVersion }} | {{ if .FixedVersion }}{{ .FixedVersion }}{{ else }}none{{ end }} |
{{- end }}
{{- end }}
{{- end }}
`

const comparisonTemplate = `# Image Comparison: {{ .Delta.Baseline }} vs {{ .Delta.Candidate }}

| Metric | {{ .Baseline.Image }} | {{ .Candidate.Image }} | Delta |
|--------|------|------|-------|
| Optimization score | {{ .Baseline.Score }} | {{ .Candidate.Score }} | {{ signed .Delta.Score }} |
| Size | {{ humanSize .Baseline.SizeBytes }} | {{ humanSize .Candidate.SizeBytes }} | {{ humanDelta .Delta.SizeBytes }} |
| Layers | {{ .Baseline.Layers }} | {{ .Candidate.Layers }} | {{ signed .Delta.Layers }} |
| Recommendations | {{ .Baseline.Recommendations }} | {{ .Candidate.Recommendations }} | {{ signed .Delta.Recommendations }} |
| Critical | {{ .Baseline.Counts.Critical }} | {{ .Candidate.Counts.Critical }} | {{ signed .Delta.Critical }} |
| High | {{ .Baseline.Counts.High }} | {{ .Candidate.Counts.High }} | {{ signed .Delta.High }} |
| Medium | {{ .Baseline.Counts.Medium }} | {{ .Candidate.Counts.Medium }} | {{ signed .Delta.Medium }} |
| Low | {{ .Baseline.Counts.Low }} | {{ .Candidate.Counts.Low }} | {{ signed .Delta.Low }} |

{{ .Delta.Verdict }}
`

var templateFuncs = template.FuncMap{
	"humanSize": func(n int64) string { return types.FormatSize(n) },
	"signed": func(n int) string {
		if n > 0 {
			return "+" + strconv.Itoa(n)
		}
		return strconv.Itoa(n)
	},
	"humanDelta": func(n int64) string {
		if n < 0 {
			return "-" + types.FormatSize(-n)
		}
		return "+" + types.FormatSize(n)
	},
}

// Markdown renders one image report.
func Markdown(report *Report) (string, error) {
	return execTemplate("report", reportTemplate, report)
}

// comparisonContext bundles two runs with their diff.
type comparisonContext struct {
	Baseline  grade.Run
	Candidate grade.Run
	Delta     grade.Delta
}

// MarkdownComparison renders a baseline/candidate diff.
func MarkdownComparison(baseline, candidate grade.Run) (string, error) {
	return execTemplate("comparison", comparisonTemplate, comparisonContext{
		Baseline:  baseline,
		Candidate: candidate,
		Delta:     grade.Compare(baseline, candidate),
	})
}

func execTemplate(name, text string, data any) (string, error) {
	tmpl, err := template.New(name).Funcs(templateFuncs).Parse(text)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
