package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/deusflow/trenddigest/internal/config"
	"github.com/deusflow/trenddigest/internal/logger"
)

var (
	cfg   *config.Config
	log   *slog.Logger
	debug bool
)

var rootCmd = &cobra.Command{
	Use:   "trenddigest",
	Short: "Cross-platform trending news digests",
	Long: `trenddigest clusters the trending lists of Chinese news platforms into
stories, ranks them by cross-platform coverage and publishes a bilingual
digest four times a day (Beijing time).`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: initConfig,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(scheduleCmd)
}

func initConfig(cmd *cobra.Command, args []string) error {
	c, err := config.Load()
	if err != nil {
		return err
	}
	if debug {
		c.Debug = true
	}
	cfg = c
	log = logger.Init(cfg.Debug)
	return nil
}
