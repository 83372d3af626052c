package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"KBeautyBriefing/internal/config"
	"KBeautyBriefing/internal/logging"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootFlags struct {
	configPath string
	logLevel   string
}

var rootCmd = &cobra.Command{
	Use:           "kbeautybriefing",
	Short:         "Daily K-beauty trend briefings",
	Long:          "Scrapes Korean beauty sources, extracts trends with an LLM and publishes\nthe briefing as Markdown, JSON, Notion pages and other configured sinks.",
	SilenceUsage:  true,
	SilenceErrors: true,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
}

func init() {
	f := rootCmd.PersistentFlags()
	f.StringVar(&rootFlags.configPath, "config", "", "YAML config path (default $KBEAUTY_CONFIG)")
	f.StringVar(&rootFlags.logLevel, "log-level", "", "log level: debug, info, warn, error")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(cleanupCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.Version = version
}

// loadConfig resolves configuration and a logger from the global flags.
func loadConfig() (config.Config, *slog.Logger) {
	var cfg config.Config
	if rootFlags.configPath != "" {
		cfg = config.LoadFile(rootFlags.configPath)
	} else {
		cfg = config.Load()
	}
	if rootFlags.logLevel != "" {
		cfg.Logging.Level = rootFlags.logLevel
	}
	return cfg, logging.New(cfg.Logging.Level)
}
