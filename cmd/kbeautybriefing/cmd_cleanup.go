package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"KBeautyBriefing/internal/app"
	"KBeautyBriefing/internal/usecase"
)

var cleanupFlags struct {
	days int
}

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete briefings older than the retention window",
	RunE:  runCleanup,
}

func init() {
	cleanupCmd.Flags().IntVar(&cleanupFlags.days, "days", 0, "Retention window in days (default retention.days)")
}

func runCleanup(cmd *cobra.Command, _ []string) error {
	if cleanupFlags.days > usecase.MaxRetentionDays {
		return fmt.Errorf("--days %d: %w", cleanupFlags.days, usecase.ErrRetentionTooLong)
	}
	cfg, logger := loadConfig()

	application, err := app.New(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer application.Close()

	report, err := application.Cleanup(cmd.Context(), cleanupFlags.days)
	if errors.Is(err, usecase.ErrRetentionTooLong) {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Removed %d file(s) and %d archived briefing(s) older than %s\n",
		report.FilesRemoved, report.ArchiveRemoved, report.Cutoff.Format("2006-01-02"))
	return err
}
