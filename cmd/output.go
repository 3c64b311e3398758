package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dockgrade/dockgrade/pkg/grade"
	"github.com/dockgrade/dockgrade/pkg/render"
)

// stdout is swapped out by tests to capture command output.
var stdout io.Writer = os.Stdout

// formatReport dispatches a report to the renderer for the chosen format.
func formatReport(report *render.Report, format string) (string, error) {
	switch format {
	case "", "term":
		return render.Terminal(report), nil
	case "md":
		return render.Markdown(report)
	case "json":
		return render.JSON(report)
	case "csv":
		return render.CSV(report)
	default:
		return "", fmt.Errorf("unknown format %q (want md, json, csv or term)", format)
	}
}

// formatComparison dispatches a diff to the renderer for the chosen format.
func formatComparison(baseline, candidate grade.Run, format string) (string, error) {
	switch format {
	case "", "term":
		return render.TerminalComparison(baseline, candidate), nil
	case "md":
		return render.MarkdownComparison(baseline, candidate)
	case "json":
		return render.JSONComparison(baseline, candidate)
	default:
		return "", fmt.Errorf("unknown comparison format %q (want md, json or term)", format)
	}
}

// writeOutput writes content to path, or to stdout when path is empty.
func writeOutput(path, content string) error {
	if path == "" {
		fmt.Fprint(stdout, content)
		return nil
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}

// resolveOutputPath swaps the extension of a report path to match the
// requested format. An explicitly non-default path is kept as-is.
func resolveOutputPath(currentOutput, format string) string {
	if currentOutput == "" || currentOutput != defaultReportFile {
		return currentOutput
	}
	ext := map[string]string{
		"md":   ".md",
		"json": ".json",
		"csv":  ".csv",
	}[format]
	if ext == "" {
		return currentOutput
	}
	return strings.TrimSuffix(currentOutput, filepath.Ext(currentOutput)) + ext
}

const defaultReportFile = "GRADE.md"
