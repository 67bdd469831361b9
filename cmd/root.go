package cmd

import (
	"fmt"
	"os"

	"docweave/pkg/config"
	"docweave/pkg/logging"
	"docweave/pkg/metrics"
	"docweave/pkg/version"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// logger is replaced by Execute and, when debug is enabled, by loadConfig.
var logger = zap.NewNop()

// RootCmd is the base command when called without any subcommands.
var RootCmd = &cobra.Command{
	Use:   "docweave",
	Short: "docweave scans a directory tree and weaves its text files into one document",
	Long: `docweave records which text files live under a directory (scan), then
concatenates them into a single Markdown document with a table of contents,
separators and per-file metadata (combine). The result is ready for
single-document readers and language models.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command with the given logger.
func Execute(l *zap.Logger) error {
	if l != nil {
		logger = l
	}
	return RootCmd.Execute()
}

func init() {
	config.InitFlags(RootCmd)
}

// loadConfig resolves the configuration for cmd and switches to development
// logging when debug is set.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get current directory: %w", err)
	}
	cfg, err := config.Load(cmd, cwd)
	if err != nil {
		return nil, err
	}
	if cfg.Debug {
		debugLogger, err := logging.Setup(true, "docweave", version.Version)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize debug logger: %w", err)
		}
		logger = debugLogger
	}
	logger.Debug("Configuration loaded", zap.String("configFile", config.ConfigFile()), zap.Any("config", cfg))
	return cfg, nil
}

// writeMetrics exports the run metrics when a metrics file is configured.
func writeMetrics(cfg *config.Config, m *metrics.Metrics) {
	if cfg.MetricsFile == "" {
		return
	}
	if err := m.WriteTextfile(cfg.MetricsFile); err != nil {
		logger.Warn("Failed to write metrics file", zap.String("file", cfg.MetricsFile), zap.Error(err))
		return
	}
	logger.Debug("Wrote metrics file", zap.String("file", cfg.MetricsFile))
}
