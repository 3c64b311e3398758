package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	verbose bool
	noColor bool
)

var rootCmd = &cobra.Command{
	Use:   "dockgrade",
	Short: "Grade Docker images for size, build hygiene and vulnerabilities",
	Long: `Grade Docker images for size, layer composition and vulnerability posture.

dockgrade inspects an image through the local container runtime, scans it
with Trivy, and folds the collected facts into a 0-100 score with a
qualitative band, a pass/fail security verdict, and a ranked list of
recommendations. Two images can be diffed, and repeated runs can be
recorded to track size and score trends over time.`,
	Example: `  # Grade a single image
  dockgrade score my-app:latest

  # Grade with the Dockerfile as the authoritative practice source
  dockgrade score my-app:latest --dockerfile ./Dockerfile

  # Diff two builds
  dockgrade compare my-app:v1 my-app:v2

  # Record a run and show the trend
  dockgrade history record my-app:latest`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			slog.SetLogLoggerLevel(slog.LevelDebug)
		}
		if noColor {
			os.Setenv("NO_COLOR", "1")
		}
	},
}

// Execute runs the root cobra command and exits on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Dynamically append tool status to the help description
	rootCmd.Long += "\n" + checkToolStatus()

	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Enable verbose logging")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored terminal output")

	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("dockgrade {{.Version}}\n")
}
