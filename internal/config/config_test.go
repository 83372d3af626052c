package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadFileDefaults(t *testing.T) {
	cfg := LoadFile("")

	if cfg.LLM.Model != "gpt-4" || cfg.LLM.MaxTokens != 2000 || cfg.LLM.Temperature != 0.3 {
		t.Fatalf("unexpected llm defaults: %+v", cfg.LLM)
	}
	if cfg.Scheduler.RunTime != "06:00" || cfg.Scheduler.PollInterval != time.Minute {
		t.Fatalf("unexpected scheduler defaults: %+v", cfg.Scheduler)
	}
	if cfg.Retention.Days != 30 || !cfg.Output.Markdown || !cfg.Output.JSON {
		t.Fatalf("unexpected output defaults: %+v / %+v", cfg.Output, cfg.Retention)
	}
	if cfg.Notion.Enabled() {
		t.Fatalf("notion must be disabled without credentials")
	}
	enabled := cfg.EnabledSources()
	if len(enabled) != 1 || enabled[0].Name != "naver_beauty" {
		t.Fatalf("expected only naver_beauty enabled, got %+v", enabled)
	}
}

func TestLoadFileOverlaysYAML(t *testing.T) {
	path := writeConfig(t, `
llm:
  model: gpt-4o-mini
  timeout: 15s
output:
  json: false
scheduler:
  runTime: "07:30"
  timezone: Asia/Seoul
sources:
  - name: blog
    urls: ["https://example.com/blog"]
  - name: feed
    scanner: rss
    urls: ["https://example.com/feed.xml"]
`)

	cfg := LoadFile(path)

	if cfg.LLM.Model != "gpt-4o-mini" || cfg.LLM.Timeout != 15*time.Second {
		t.Fatalf("yaml values not applied: %+v", cfg.LLM)
	}
	if cfg.LLM.MaxTokens != 2000 {
		t.Fatalf("omitted keys must keep defaults, got max tokens %d", cfg.LLM.MaxTokens)
	}
	if cfg.Output.JSON || !cfg.Output.Markdown {
		t.Fatalf("unexpected output flags: %+v", cfg.Output)
	}
	if cfg.Scheduler.Location().String() != "Asia/Seoul" {
		t.Fatalf("timezone not bound: %s", cfg.Scheduler.Location())
	}
	if len(cfg.Sources) != 2 {
		t.Fatalf("expected yaml sources to replace defaults, got %d", len(cfg.Sources))
	}
	if cfg.Sources[0].Scanner != "selector" || cfg.Sources[0].Selectors.Posts == "" {
		t.Fatalf("selector defaults not filled: %+v", cfg.Sources[0])
	}
	if cfg.Sources[1].Selectors.Posts != "" {
		t.Fatalf("rss source must not receive selectors: %+v", cfg.Sources[1].Selectors)
	}
}

func TestLoadFileEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "llm:\n  model: from-file\n")

	t.Setenv(analysisModelEnv, "from-env")
	t.Setenv(openAIKeyEnv, "sk-test")
	t.Setenv(scrapingDelayEnv, "2.5")
	t.Setenv(maxTokensEnv, "not-a-number")
	t.Setenv(autoRunEnv, "true")
	t.Setenv(notionTokenEnv, "secret")
	t.Setenv(notionDatabaseEnv, "db")
	t.Setenv(readOnlyDeployEnv, "1")

	cfg := LoadFile(path)

	if cfg.LLM.Model != "from-env" || cfg.LLM.APIKey != "sk-test" {
		t.Fatalf("env did not override: %+v", cfg.LLM)
	}
	if cfg.Scraping.Delay != 2500*time.Millisecond {
		t.Fatalf("expected 2.5s delay, got %s", cfg.Scraping.Delay)
	}
	if cfg.LLM.MaxTokens != 2000 {
		t.Fatalf("invalid env value must be ignored, got %d", cfg.LLM.MaxTokens)
	}
	if !cfg.Scheduler.AutoRun || !cfg.Notion.Enabled() || !cfg.ReadOnlyDeploy {
		t.Fatalf("bool/env flags not applied: %+v", cfg)
	}
}

func TestLoadFileFallsBackOnBadYAML(t *testing.T) {
	path := writeConfig(t, "llm: [unclosed")

	cfg := LoadFile(path)
	if cfg.LLM.Model != "gpt-4" {
		t.Fatalf("expected defaults on parse failure, got %q", cfg.LLM.Model)
	}
}

func TestBindTimezoneFallsBack(t *testing.T) {
	t.Setenv(schedulerTimezoneEnv, "Mars/Olympus")

	cfg := LoadFile("")
	if cfg.Scheduler.Location().String() != "UTC" {
		t.Fatalf("expected UTC fallback, got %s", cfg.Scheduler.Location())
	}
}
