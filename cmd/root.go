package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kamusis/courserec/internal/config"
	"github.com/kamusis/courserec/internal/logging"
)

var (
	flagLogLevel  string
	flagLogFormat string
)

var rootCmd = &cobra.Command{
	Use:          "courserec",
	Short:        "courserec — course recommendations from a local catalog",
	SilenceUsage: true, // don't print usage on operational errors
	Long: `courserec ranks the courses of a CSV catalog against a free-text query.

The catalog is indexed once (TF-IDF over title, expanded skills and
description) into ~/.courserec/index/, then queried from the command line,
in batch, or over HTTP.`,
	PersistentPreRunE: setupLogging,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: trace, debug, info, warn, error, disabled")
	rootCmd.PersistentFlags().StringVar(&flagLogFormat, "log-format", "", "Log format: console or json")
}

// setupLogging applies config and flag log settings before any command runs.
func setupLogging(cmd *cobra.Command, _ []string) error {
	lc := logging.DefaultConfig()
	lc.Output = cmd.ErrOrStderr()
	// An unreadable config is reported by the command itself.
	if cfg, err := config.LoadOrDefault(); err == nil {
		lc.Level = cfg.LogLevel
		lc.Format = cfg.LogFormat
	}
	if flagLogLevel != "" {
		lc.Level = flagLogLevel
	}
	if flagLogFormat != "" {
		lc.Format = flagLogFormat
	}
	logging.Init(lc)
	return nil
}

// Execute is called by main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
