package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/dockgrade/dockgrade/pkg/collect"
	"github.com/dockgrade/dockgrade/pkg/config"
	"github.com/dockgrade/dockgrade/pkg/history"
	"github.com/dockgrade/dockgrade/pkg/types"
)

var (
	historyFile   string
	historyCommit string
	historyLimit  int

	buildFile       string
	buildDockerfile string
	buildContext    string
	buildNoCache    bool
	exportBuilds    bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Track image size and score across builds",
}

var historyRecordCmd = &cobra.Command{
	Use:   "record <image>",
	Short: "Grade an image and append the result to the history file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		// The vulnerability scan is skipped here: history tracks the
		// size/hygiene trajectory, and scan results drift with the
		// vulnerability database rather than with the build.
		report, err := gradeImage(cmd.Context(), config.ImageEntry{Tag: args[0]}, true, 0)
		if err != nil {
			return err
		}

		entry := history.Entry{
			Image:     report.Image,
			Commit:    historyCommit,
			SizeBytes: report.Metadata.SizeBytes,
			Layers:    report.Metadata.LayerCount(),
			Score:     report.Optimization.Score,
			Band:      string(report.Optimization.Band),
		}
		trend, err := history.Record(historyFile, entry)
		if err != nil {
			return err
		}

		fmt.Fprintf(stdout, "Recorded %s: %s, %d layers, score %d (%s)\n",
			report.Image, types.FormatSize(entry.SizeBytes), entry.Layers, entry.Score, entry.Band)
		if trend.Label == "FIRST_RUN" {
			fmt.Fprintln(stdout, "Trend: first recorded run")
		} else {
			fmt.Fprintf(stdout, "Trend: %s (%+d, %+.1f%% from previous score %d)\n",
				trend.Label, trend.Delta, trend.Percent, trend.Previous)
		}
		return nil
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show [image]",
	Short: "Print recent history entries",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		idx, err := history.Load(historyFile)
		if err != nil {
			return err
		}

		image := ""
		if len(args) > 0 {
			image = args[0]
		}
		entries := idx.Recent(image, historyLimit)
		if len(entries) == 0 {
			fmt.Fprintln(stdout, "No history recorded yet.")
			return nil
		}

		fmt.Fprintf(stdout, "%-20s %-30s %-10s %-7s %-6s %s\n", "DATE", "IMAGE", "SIZE", "LAYERS", "SCORE", "BAND")
		for _, e := range entries {
			ts := e.TimestampUTC
			if len(ts) > 19 {
				ts = ts[:19]
			}
			fmt.Fprintf(stdout, "%-20s %-30s %-10s %-7d %-6d %s\n",
				ts, e.Image, e.SizeHuman, e.Layers, e.Score, e.Band)
		}
		return nil
	},
}

var historyBuildCmd = &cobra.Command{
	Use:   "build <image>",
	Short: "Build an image, timing the run, and record duration and cache hits",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		image := args[0]
		stats, err := collect.BuildImage(cmd.Context(), collect.BuildOptions{
			Dockerfile: buildDockerfile,
			Context:    buildContext,
			Image:      image,
			NoCache:    buildNoCache,
		}, verbose)
		if err != nil {
			return err
		}

		// Size is best effort: the build already succeeded, a failed
		// inspect should not lose the timing data.
		var sizeBytes int64
		if result, err := collect.CollectImage(cmd.Context(),
			image, []collect.Collector{&collect.InspectCollector{}}, verbose); err != nil {
			slog.Warn("could not read image size", "image", image, "error", err)
		} else {
			sizeBytes = result.Metadata.SizeBytes
		}

		entry := history.BuildEntry{
			Image:           image,
			Commit:          historyCommit,
			NoCache:         buildNoCache,
			DurationSeconds: stats.Duration.Seconds(),
			CacheHits:       stats.CacheHits,
			TotalSteps:      stats.TotalSteps,
			SizeBytes:       sizeBytes,
		}
		trend, err := history.RecordBuild(buildFile, entry)
		if err != nil {
			return err
		}

		rate := 0.0
		if stats.TotalSteps > 0 {
			rate = float64(stats.CacheHits) / float64(stats.TotalSteps) * 100
		}
		fmt.Fprintf(stdout, "Built %s in %s (cache hits %d/%d, %.1f%%)\n",
			image, history.FormatDuration(stats.Duration.Seconds()), stats.CacheHits, stats.TotalSteps, rate)
		if trend.Label == "FIRST_RUN" {
			fmt.Fprintln(stdout, "Trend: first recorded build")
		} else {
			fmt.Fprintf(stdout, "Trend: %s (%+.2fs from previous %s)\n",
				trend.Label, trend.DeltaSeconds, history.FormatDuration(trend.PreviousSeconds))
		}
		return nil
	},
}

var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the history file as CSV",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if exportBuilds {
			idx, err := history.LoadBuilds(buildFile)
			if err != nil {
				return err
			}
			return idx.ExportCSV(stdout)
		}
		idx, err := history.Load(historyFile)
		if err != nil {
			return err
		}
		return idx.ExportCSV(stdout)
	},
}

func init() {
	historyCmd.PersistentFlags().StringVar(&historyFile, "file", "dockgrade-history.json", "Path to the history file")
	historyCmd.PersistentFlags().StringVar(&buildFile, "build-file", "dockgrade-builds.json", "Path to the build history file")
	historyRecordCmd.Flags().StringVar(&historyCommit, "commit", "", "Commit SHA to associate with this run")
	historyShowCmd.Flags().IntVar(&historyLimit, "limit", 10, "Number of recent entries to show")

	historyBuildCmd.Flags().StringVarP(&buildDockerfile, "dockerfile", "f", "Dockerfile", "Path to the Dockerfile to build")
	historyBuildCmd.Flags().StringVar(&buildContext, "context", ".", "Build context directory")
	historyBuildCmd.Flags().BoolVar(&buildNoCache, "no-cache", false, "Build without the layer cache")
	historyBuildCmd.Flags().StringVar(&historyCommit, "commit", "", "Commit SHA to associate with this build")
	historyExportCmd.Flags().BoolVar(&exportBuilds, "builds", false, "Export the build history instead of the run history")

	historyCmd.AddCommand(historyRecordCmd, historyShowCmd, historyBuildCmd, historyExportCmd)
	rootCmd.AddCommand(historyCmd)
}
