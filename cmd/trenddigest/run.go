package main

import (
	"github.com/spf13/cobra"

	"github.com/deusflow/trenddigest/internal/app"
	"github.com/deusflow/trenddigest/internal/digest"
)

var (
	runType   string
	runDryRun bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Generate the digest for the current slot",
	Long: `Run generates one digest if the current Beijing time falls inside a
digest window (07, 12, 19 or 23 o'clock, first 30 minutes). Outside a window
it exits successfully without doing anything. --type forces a digest type.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := app.RunOptions{DryRun: runDryRun, Output: cmd.OutOrStdout()}
		if runType != "" {
			t, err := digest.ParseType(runType)
			if err != nil {
				return err
			}
			opts.Type = t
		}

		if cfg.EnableHTTPMonitoring {
			srv := startMonitoringServer(cfg.MonitoringPort, log)
			defer shutdownMonitoringServer(srv, log)
		}

		ctx := cmd.Context()
		runner, cleanup, err := buildRunner(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer cleanup()

		res, err := runner.Run(ctx, opts)
		if err != nil {
			return err
		}
		if res.Skipped {
			log.Info("run skipped", "reason", res.Reason)
		}
		return nil
	},
}

func init() {
	runCmd.Flags().StringVarP(&runType, "type", "t", "", "force digest type (morning, noon, evening, final)")
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "print the digest as JSON instead of writing it")
}
