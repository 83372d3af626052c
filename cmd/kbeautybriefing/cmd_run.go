package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"KBeautyBriefing/internal/app"
	"KBeautyBriefing/internal/config"
	"KBeautyBriefing/internal/usecase"
)

var runFlags struct {
	dryRun  bool
	format  string
	fixture bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the briefing pipeline once and print a summary",
	RunE:  runOnce,
}

func init() {
	f := runCmd.Flags()
	f.BoolVar(&runFlags.dryRun, "dry-run", false, "Assemble the briefing without writing to any sink")
	f.StringVar(&runFlags.format, "format", "all", "Sink to write: all, markdown, json or notion")
	f.BoolVar(&runFlags.fixture, "fixture", false, "Use the bundled fixture posts instead of scraping")
}

// sinksForFormat maps --format to a sink subset; nil means every registered sink.
func sinksForFormat(format string) ([]string, error) {
	switch format {
	case "", "all":
		return nil, nil
	case "markdown", "json", "notion":
		return []string{format}, nil
	default:
		return nil, fmt.Errorf("unknown format %q: want all, markdown, json or notion", format)
	}
}

func runOnce(cmd *cobra.Command, _ []string) error {
	sinks, err := sinksForFormat(runFlags.format)
	if err != nil {
		return err
	}

	cfg, logger := loadConfig()
	if runFlags.fixture {
		cfg.Content.Mode = config.ContentModeFixture
	}

	application, err := app.New(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer application.Close()

	if runFlags.format == "notion" && !cfg.Notion.Enabled() {
		logger.Warn("notion is not configured, nothing will be written")
	}

	result, err := application.RunOnce(cmd.Context(), usecase.RunOptions{DryRun: runFlags.dryRun, Sinks: sinks})
	if err != nil {
		return fmt.Errorf("pipeline failed: %w", err)
	}

	printSummary(cmd, result)
	return nil
}

func printSummary(cmd *cobra.Command, result usecase.RunResult) {
	out := cmd.OutOrStdout()
	b := result.Briefing
	fmt.Fprintf(out, "Briefing:  %s\n", b.ID)
	fmt.Fprintf(out, "Date:      %s\n", b.Date.Format("2006-01-02 15:04"))
	fmt.Fprintf(out, "Posts:     %d scraped, %d relevant\n", result.ScrapedPosts, result.RelevantPosts)
	fmt.Fprintf(out, "Trends:    %d\n", len(b.TrendAnalysis.Trends))
	if b.Degraded {
		fmt.Fprintf(out, "Degraded:  analysis incomplete, check the LLM configuration\n")
	}

	if len(result.SinkResults) == 0 {
		fmt.Fprintf(out, "Sinks:     none written\n")
		return
	}
	names := make([]string, 0, len(result.SinkResults))
	for name := range result.SinkResults {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Fprintf(out, "Sinks:\n")
	for _, name := range names {
		state := "ok"
		if !result.SinkResults[name] {
			state = "failed"
		}
		fmt.Fprintf(out, "  %-9s %s\n", name, state)
	}
}
