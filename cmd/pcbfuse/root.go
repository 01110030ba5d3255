package main

import (
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"pcbfuse/internal/config"
	"pcbfuse/internal/logging"
	"pcbfuse/internal/version"
)

var (
	// logLevelFlag is the CLI --log-level flag value
	logLevelFlag string
	// logFormatFlag is the CLI --log-format flag value
	logFormatFlag string
)

var rootCmd = &cobra.Command{
	Use:   "pcbfuse",
	Short: "pcbfuse - PCB artifact fusion for AI analysis",
	Long: `pcbfuse fuses three PCB design exports (bill of materials, pick and
place, netlist) into one normalized YAML document sized to fit a
language model's context window. Electrical connectivity is preserved
through every reduction pass; only verbosity is sacrificed.`,
	Version: version.Version,
}

func init() {
	rootCmd.SetVersionTemplate("pcbfuse version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "",
		"Log level: debug, info, warn, error (default from config)")
	rootCmd.PersistentFlags().StringVar(&logFormatFlag, "log-format", "",
		"Log format: human or json (default from config)")
}

// newLogger builds the run logger from CLI flags and config, tagging
// every entry with a run id so concurrent invocations stay separable
// in shared log streams.
func newLogger(cfg *config.Config) *logging.Logger {
	level := cfg.Logging.Level
	if logLevelFlag != "" {
		level = logLevelFlag
	}
	format := cfg.Logging.Format
	if logFormatFlag != "" {
		format = logFormatFlag
	}

	logger := logging.NewLogger(logging.Config{
		Format: logging.Format(format),
		Level:  logging.LogLevel(level),
	})
	return logger.WithFields(map[string]interface{}{
		"runId": uuid.NewString(),
	})
}
