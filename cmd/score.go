package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dockgrade/dockgrade/pkg/collect"
	"github.com/dockgrade/dockgrade/pkg/config"
	"github.com/dockgrade/dockgrade/pkg/dockerfile"
	"github.com/dockgrade/dockgrade/pkg/grade"
	"github.com/dockgrade/dockgrade/pkg/render"
	"github.com/dockgrade/dockgrade/pkg/types"
)

var (
	scoreDockerfile string
	scoreOutput     string
	scoreFormat     string
	scoreConfig     string
	scoreSeverity   string
	scoreTop        int
	scoreFailBelow  int
	scoreSkipScan   bool
	scorePull       bool
)

var scoreCmd = &cobra.Command{
	Use:   "score [image]",
	Short: "Grade one image (or every image from a config file)",
	Long: `Grade an image: inspect its size and layers, scan it for
vulnerabilities, and report scores, bands, verdict and recommendations.

With --config (or a dockgrade.yaml in the working directory) the image
argument is omitted and every configured image is graded.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := validateSeverity(scoreSeverity); err != nil {
			return err
		}
		cfgPath := scoreConfig
		if cfgPath == "" && len(args) == 0 {
			if _, err := os.Stat(config.DefaultFileName); err == nil {
				cfgPath = config.DefaultFileName
			}
		}
		if cfgPath != "" {
			return runConfigMode(cmd, cfgPath)
		}
		if len(args) == 0 {
			return fmt.Errorf("an image tag or a config file is required")
		}

		entry := config.ImageEntry{Tag: args[0], Dockerfile: scoreDockerfile}
		report, err := gradeImage(cmd.Context(), entry, scoreSkipScan, scoreTop)
		if err != nil {
			return err
		}

		content, err := formatReport(report, scoreFormat)
		if err != nil {
			return err
		}
		if err := writeOutput(resolveOutputPath(scoreOutput, scoreFormat), content); err != nil {
			return err
		}
		return gateError(report, scoreFailBelow)
	},
}

func runConfigMode(cmd *cobra.Command, path string) error {
	ctx := cmd.Context()
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	slog.Info("using config file", "path", path, "images", len(cfg.Images))

	format := pickFormat(scoreFormat, cmd.Flags().Changed("format"), cfg.Format)
	skipScan := cfg.SkipScan || scoreSkipScan

	tags := make([]string, len(cfg.Images))
	for i, entry := range cfg.Images {
		tags[i] = entry.Tag
	}
	if scorePull {
		for _, tag := range tags {
			if err := collect.EnsureImage(ctx, tag, verbose); err != nil {
				return err
			}
		}
	}

	results, err := collect.CollectImages(ctx, tags, func() []collect.Collector {
		return imageCollectors(skipScan)
	}, verbose)
	if err != nil {
		return err
	}

	var gateErr error
	var combined string
	for i, entry := range cfg.Images {
		report, err := buildImageReport(entry, results[i], cfg.TopCritical)
		if err != nil {
			return fmt.Errorf("grading %s: %w", entry.DisplayName(), err)
		}

		content, err := formatReport(report, format)
		if err != nil {
			return err
		}
		combined += content + "\n"

		if err := gateError(report, cfg.FailBelow); err != nil && gateErr == nil {
			gateErr = err
		}
	}

	output := cfg.Output
	if scoreOutput != "" {
		output = scoreOutput
	}
	if err := writeOutput(output, combined); err != nil {
		return err
	}
	return gateErr
}

// pickFormat resolves the output format for config mode: an explicitly set
// --format flag wins over the config file, but the flag's default does not.
func pickFormat(flagValue string, flagSet bool, cfgFormat string) string {
	if flagSet || cfgFormat == "" {
		return flagValue
	}
	return cfgFormat
}

// imageCollectors returns a fresh collector set for one image.
func imageCollectors(skipScan bool) []collect.Collector {
	collectors := []collect.Collector{&collect.InspectCollector{}}
	if !skipScan {
		collectors = append(collectors, &collect.TrivyCollector{})
	}
	return collectors
}

// gradeImage runs collection and evaluation for one image.
func gradeImage(ctx context.Context, entry config.ImageEntry, skipScan bool, topN int) (*render.Report, error) {
	if scorePull {
		if err := collect.EnsureImage(ctx, entry.Tag, verbose); err != nil {
			return nil, err
		}
	}

	slog.Info("analyzing image", "image", entry.Tag)
	result, err := collect.CollectImage(ctx, entry.Tag, imageCollectors(skipScan), verbose)
	if err != nil {
		return nil, err
	}
	return buildImageReport(entry, result, topN)
}

// buildImageReport turns one collection result into a rendered report,
// applying the per-entry Dockerfile merge, the severity floor, and the
// display-name override.
func buildImageReport(entry config.ImageEntry, result *collect.Result, topN int) (*render.Report, error) {
	if result == nil || result.Metadata == nil {
		return nil, grade.ErrNoMetadata
	}

	if entry.Dockerfile != "" {
		features, err := dockerfile.DetectFeatures(entry.Dockerfile)
		if err != nil {
			return nil, err
		}
		result.Metadata.Features = result.Metadata.Features.Merge(features)
	}

	if scoreSeverity != "" {
		result.Report = types.FilterMinSeverity(result.Report, strings.ToUpper(scoreSeverity))
	}

	report, err := render.BuildReport(result.Metadata, result.Report, topN)
	if err != nil {
		return nil, err
	}
	if entry.Name != "" {
		report.Image = entry.Name
	}
	return report, nil
}

// validateSeverity rejects an unknown --severity floor before any image is
// pulled or scanned.
func validateSeverity(severity string) error {
	switch strings.ToUpper(severity) {
	case "", types.SeverityCritical, types.SeverityHigh, types.SeverityMedium, types.SeverityLow, types.SeverityUnknown:
		return nil
	default:
		return fmt.Errorf("unknown severity %q (want CRITICAL, HIGH, MEDIUM or LOW)", severity)
	}
}

// gateError turns a failing verdict or a score under the gate into a
// non-zero exit, so CI runs cannot silently pass a broken image.
func gateError(report *render.Report, failBelow int) error {
	if report.Security != nil && report.Security.Verdict == grade.VerdictFail {
		return fmt.Errorf("security verdict %s for %s: %d critical vulnerabilities",
			grade.VerdictFail, report.Image, report.Security.Counts.Critical)
	}
	if failBelow > 0 && report.Optimization.Score < failBelow {
		return fmt.Errorf("optimization score %d for %s is below the gate (%d)",
			report.Optimization.Score, report.Image, failBelow)
	}
	return nil
}

func init() {
	scoreCmd.Flags().StringVarP(&scoreDockerfile, "dockerfile", "f", "", "Path to the Dockerfile for authoritative practice detection")
	scoreCmd.Flags().StringVarP(&scoreOutput, "output", "o", "", "Write the report to a file instead of stdout")
	scoreCmd.Flags().StringVar(&scoreFormat, "format", "term", "Report format: term, md, json or csv")
	scoreCmd.Flags().StringVar(&scoreConfig, "config", "", "Path to config file (default: dockgrade.yaml if present)")
	scoreCmd.Flags().StringVar(&scoreSeverity, "severity", "", "Only count vulnerabilities at or above this severity (e.g. HIGH)")
	scoreCmd.Flags().IntVar(&scoreTop, "top", grade.DefaultTopCritical, "Number of critical vulnerabilities to list")
	scoreCmd.Flags().IntVar(&scoreFailBelow, "fail-below", 0, "Exit non-zero when the optimization score falls under this gate")
	scoreCmd.Flags().BoolVar(&scoreSkipScan, "skip-scan", false, "Skip the vulnerability scan")
	scoreCmd.Flags().BoolVar(&scorePull, "pull", false, "Pull the image if it is not present locally")

	rootCmd.AddCommand(scoreCmd)
}
