package cmd

import (
	"docweave/pkg/config"
	"docweave/pkg/metrics"

	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run <root>",
	Short: "Scan a directory and combine it in one step",
	Args:  cobra.ExactArgs(1),
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

		doc, err := runCombine(cfg, structurePath, m)
		if err != nil {
			return err
		}
		printCombineSummary(cmd.OutOrStdout(), doc)
		return nil
	},
}

func init() {
	config.InitScanFlags(runCmd)
	config.InitCombineFlags(runCmd)
	RootCmd.AddCommand(runCmd)
}
