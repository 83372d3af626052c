package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"KBeautyBriefing/internal/app"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the briefing archive schema",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, _ := loadConfig()
		version, err := app.Migrate(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Archive schema at version %d\n", version)
		return nil
	},
}
