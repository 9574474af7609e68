package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/deusflow/trenddigest/internal/app"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run continuously and produce each digest once per slot",
	Long: `Serve checks the schedule every SERVE_INTERVAL and generates each slot's
digest once. The monitoring server (/health, /stats, /metrics) is always on.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		srv := startMonitoringServer(cfg.MonitoringPort, log)
		defer shutdownMonitoringServer(srv, log)

		runner, cleanup, err := buildRunner(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer cleanup()
		runner.Dedupe = true

		log.Info("scheduler started", "interval", cfg.ServeInterval)
		tick := func() {
			runCtx, cancel := context.WithTimeout(ctx, 10*time.Minute)
			defer cancel()
			if _, err := runner.Run(runCtx, app.RunOptions{}); err != nil {
				log.Error("digest run failed", "error", err)
			}
		}

		tick()
		ticker := time.NewTicker(cfg.ServeInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				log.Info("shutting down")
				return nil
			case <-ticker.C:
				tick()
			}
		}
	},
}
