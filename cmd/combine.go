package cmd

import (
	"fmt"

	"docweave/pkg/combine"
	"docweave/pkg/config"
	"docweave/pkg/metrics"
	"docweave/pkg/project"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var combineCmd = &cobra.Command{
	Use:   "combine <structure.json>",
	Short: "Concatenate the files listed in a structure file into one document",
	Long: `Read a structure file produced by scan and write
<results-dir>/<name>_combined.md: a header, a table of contents, the list of
skipped large files and one block per file. Unreadable files are reported and
left out without failing the run.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		m := metrics.New()
		defer writeMetrics(cfg, m)

		doc, err := runCombine(cfg, args[0], m)
		if err != nil {
			return err
		}
		printCombineSummary(cmd.OutOrStdout(), doc)
		return nil
	},
}

func init() {
	config.InitCombineFlags(combineCmd)
	RootCmd.AddCommand(combineCmd)
}

// runCombine combines the structure file into the results directory.
func runCombine(cfg *config.Config, structurePath string, m *metrics.Metrics) (*combine.Document, error) {
	combiner, err := combine.New(cfg, logger, combine.WithMetrics(m))
	if err != nil {
		return nil, err
	}
	if err := project.EnsureDir(cfg.ResultsDir); err != nil {
		return nil, err
	}

	outputPath := project.CombinedPath(cfg.ResultsDir, structurePath)
	doc, err := combiner.CombineFile(structurePath, outputPath)
	if err != nil {
		logger.Error("Failed to execute combine process", zap.Error(err))
		return nil, fmt.Errorf("combine execution failed: %w", err)
	}
	return doc, nil
}
