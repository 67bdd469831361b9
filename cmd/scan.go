package cmd

import (
	"fmt"

	"docweave/pkg/config"
	"docweave/pkg/metrics"
	"docweave/pkg/project"
	"docweave/pkg/scan"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var scanCmd = &cobra.Command{
	Use:   "scan <root>",
	Short: "Record the text files under a directory in a structure file",
	Long: `Walk <root>, keep files with an allowed extension that are not ignored,
and write the resulting tree to <results-dir>/<project>.json. Files above the
size threshold are listed separately and never embedded.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		m := metrics.New()
		defer writeMetrics(cfg, m)

		res, structurePath, err := runScan(cfg, args[0], m)
		if err != nil {
			return err
		}
		printScanSummary(cmd.OutOrStdout(), res, structurePath)
		return nil
	},
}

func init() {
	config.InitScanFlags(scanCmd)
	RootCmd.AddCommand(scanCmd)
}

// runScan scans root and saves the structure file in the results directory.
func runScan(cfg *config.Config, root string, m *metrics.Metrics) (*scan.Result, string, error) {
	scanner := scan.New(cfg, logger, scan.WithMetrics(m), scan.WithExcludedDirs(cfg.ResultsDir))
	res, err := scanner.Scan(root)
	if err != nil {
		logger.Error("Scan failed", zap.String("root", root), zap.Error(err))
		return nil, "", fmt.Errorf("scan failed: %w", err)
	}

	if err := project.EnsureDir(cfg.ResultsDir); err != nil {
		return nil, "", err
	}
	name := project.Name(res.Root, cfg.IgnoredSegments, cfg.NameSegments)
	structurePath := project.StructurePath(cfg.ResultsDir, name)
	if err := res.Structure.Save(structurePath); err != nil {
		logger.Error("Failed to save structure file", zap.String("file", structurePath), zap.Error(err))
		return nil, "", err
	}
	logger.Info("Structure saved", zap.String("file", structurePath))
	return res, structurePath, nil
}
