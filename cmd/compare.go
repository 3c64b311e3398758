package cmd

import (
	"github.com/spf13/cobra"

	"github.com/dockgrade/dockgrade/pkg/config"
	"github.com/dockgrade/dockgrade/pkg/grade"
)

var (
	compareOutput   string
	compareFormat   string
	compareSkipScan bool
)

var compareCmd = &cobra.Command{
	Use:   "compare <baseline> <candidate>",
	Short: "Diff two images' grades",
	Long: `Grade two images independently and print the structural diff:
per-category deltas (candidate minus baseline) and a one-sentence verdict.
The first argument is the baseline and is always named first in output.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		reports := make([]grade.Run, 2)
		for i, tag := range args {
			report, err := gradeImage(cmd.Context(), config.ImageEntry{Tag: tag}, compareSkipScan, 0)
			if err != nil {
				return err
			}
			reports[i] = report.Run()
		}

		content, err := formatComparison(reports[0], reports[1], compareFormat)
		if err != nil {
			return err
		}
		return writeOutput(compareOutput, content)
	},
}

func init() {
	compareCmd.Flags().StringVarP(&compareOutput, "output", "o", "", "Write the comparison to a file instead of stdout")
	compareCmd.Flags().StringVar(&compareFormat, "format", "term", "Comparison format: term, md or json")
	compareCmd.Flags().BoolVar(&compareSkipScan, "skip-scan", false, "Skip the vulnerability scans")

	rootCmd.AddCommand(compareCmd)
}
