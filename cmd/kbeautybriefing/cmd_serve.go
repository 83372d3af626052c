package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"KBeautyBriefing/internal/app"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API and run the daily scheduler",
	Long: `Starts the status and trigger API. When scheduler.autoRun is set the daily
loop starts too. SIGINT or SIGTERM shut both down gracefully.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, logger := loadConfig()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer application.Close()

	return application.Serve(ctx)
}
