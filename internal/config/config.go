package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"KBeautyBriefing/pkg/logger"
)

var bootLog = logger.New("config")

const (
	defaultTimezone = "UTC"
	configPathEnv   = "KBEAUTY_CONFIG"

	openAIKeyEnv         = "OPENAI_API_KEY"
	analysisModelEnv     = "ANALYSIS_MODEL"
	maxTokensEnv         = "MAX_TOKENS"
	temperatureEnv       = "TEMPERATURE"
	llmEndpointEnv       = "LLM_ENDPOINT"
	llmTimeoutEnv        = "LLM_TIMEOUT"
	notionTokenEnv       = "NOTION_TOKEN"
	notionDatabaseEnv    = "NOTION_DATABASE_ID"
	scrapingDelayEnv     = "SCRAPING_DELAY"
	maxPostsEnv          = "MAX_POSTS_PER_SOURCE"
	scheduleTimeEnv      = "SCHEDULE_TIME"
	autoRunEnv           = "AUTO_RUN"
	retentionDaysEnv     = "RETENTION_DAYS"
	markdownEnabledEnv   = "MARKDOWN_ENABLED"
	jsonEnabledEnv       = "JSON_ENABLED"
	outputDirEnv         = "OUTPUT_DIR"
	contentModeEnv       = "CONTENT_MODE"
	databaseDSNEnv       = "DATABASE_DSN"
	archiveDriverEnv     = "ARCHIVE_DRIVER"
	telegramTokenEnv     = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv    = "TELEGRAM_CHAT_ID"
	httpAddrEnv          = "HTTP_ADDR"
	cronSecretEnv        = "CRON_SECRET"
	logLevelEnv          = "LOG_LEVEL"
	readOnlyDeployEnv    = "VERCEL"
	schedulerTimezoneEnv = "SCHEDULE_TIMEZONE"
)

// Content modes select the content source variant.
const (
	ContentModeLive    = "live"
	ContentModeFixture = "fixture"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging       LoggingConfig      `yaml:"logging"`
	Server        ServerConfig       `yaml:"server"`
	LLM           LLMConfig          `yaml:"llm"`
	Content       ContentConfig      `yaml:"content"`
	Scraping      ScrapingConfig     `yaml:"scraping"`
	Sources       []SourceConfig     `yaml:"sources"`
	Output        OutputConfig       `yaml:"output"`
	Notion        NotionConfig       `yaml:"notion"`
	Archive       ArchiveConfig      `yaml:"archive"`
	Notifications NotificationConfig `yaml:"notifications"`
	Scheduler     SchedulerConfig    `yaml:"scheduler"`
	Retention     RetentionConfig    `yaml:"retention"`
	Cron          CronConfig         `yaml:"cron"`

	// ReadOnlyDeploy is set on serverless targets where only the temp dir is writable.
	ReadOnlyDeploy bool `yaml:"-"`
}

// LoggingConfig sets the slog level.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// ServerConfig describes the HTTP status surface.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
}

// LLMConfig defines how to contact an OpenAI-compatible chat completions API.
type LLMConfig struct {
	Endpoint    string        `yaml:"endpoint"`
	Model       string        `yaml:"model"`
	APIKey      string        `yaml:"apiKey"`
	MaxTokens   int           `yaml:"maxTokens"`
	Temperature float64       `yaml:"temperature"`
	Timeout     time.Duration `yaml:"timeout"`
	// Optional prompt overrides; see usecase prompt templates for the fields available.
	TrendPrompt     string `yaml:"trendPrompt"`
	SynthesisPrompt string `yaml:"synthesisPrompt"`
}

// ContentConfig picks the content source variant and relevance vocabulary.
type ContentConfig struct {
	Mode     string   `yaml:"mode"`
	Keywords []string `yaml:"keywords"`
}

// ScrapingConfig tunes the live scanners.
type ScrapingConfig struct {
	Delay             time.Duration `yaml:"delay"`
	MaxPostsPerSource int           `yaml:"maxPostsPerSource"`
	Concurrency       int           `yaml:"concurrency"`
	UserAgent         string        `yaml:"userAgent"`
	Timeout           time.Duration `yaml:"timeout"`
	SafeFetch         bool          `yaml:"safeFetch"`
}

// SourceConfig describes one origin and the scanner strategy that reads it.
type SourceConfig struct {
	Name      string            `yaml:"name"`
	Scanner   string            `yaml:"scanner"`
	Disabled  bool              `yaml:"disabled"`
	URLs      []string          `yaml:"urls"`
	Selectors SelectorConfig    `yaml:"selectors"`
	MaxPosts  int               `yaml:"maxPosts"`
	Options   map[string]string `yaml:"options"`
}

// SelectorConfig lists CSS selectors used by HTML-based scanners.
type SelectorConfig struct {
	Posts   string `yaml:"posts"`
	Title   string `yaml:"title"`
	Content string `yaml:"content"`
	Date    string `yaml:"date"`
	Author  string `yaml:"author"`
	Link    string `yaml:"link"`
}

// OutputConfig controls the file sinks.
type OutputConfig struct {
	Dir      string `yaml:"dir"`
	Markdown bool   `yaml:"markdown"`
	JSON     bool   `yaml:"json"`
}

// NotionConfig wires the Notion sink. It is active only when Token and DatabaseID are set.
type NotionConfig struct {
	Token      string `yaml:"token"`
	DatabaseID string `yaml:"databaseId"`
	Endpoint   string `yaml:"endpoint"`
	Version    string `yaml:"version"`
	TrendPages bool   `yaml:"trendPages"`
}

// Enabled reports whether both credentials are present.
func (n NotionConfig) Enabled() bool {
	return n.Token != "" && n.DatabaseID != ""
}

// ArchiveConfig describes the SQL briefing archive. Driver is "postgres" or "sqlite".
type ArchiveConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// Enabled reports whether an archive database is configured.
func (a ArchiveConfig) Enabled() bool {
	return a.DSN != ""
}

// NotificationConfig encapsulates outbound chat channels.
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
}

// Enabled reports whether the bot can post.
func (t TelegramConfig) Enabled() bool {
	return t.BotToken != "" && t.ChatID != ""
}

// SchedulerConfig defines when the daily run fires.
type SchedulerConfig struct {
	RunTime      string         `yaml:"runTime"`
	Timezone     string         `yaml:"timezone"`
	AutoRun      bool           `yaml:"autoRun"`
	PollInterval time.Duration  `yaml:"pollInterval"`
	ErrorBackoff time.Duration  `yaml:"errorBackoff"`
	location     *time.Location `yaml:"-"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// RetentionConfig bounds how long briefing files are kept.
type RetentionConfig struct {
	Days int `yaml:"days"`
}

// CronConfig guards the cron endpoints. An empty secret leaves them open.
type CronConfig struct {
	Secret string `yaml:"secret"`
}

// Load reads YAML configuration from $KBEAUTY_CONFIG (if present) and applies environment overrides.
func Load() Config {
	return LoadFile(os.Getenv(configPathEnv))
}

// LoadFile is Load with an explicit YAML path; an empty path skips the file.
func LoadFile(path string) Config {
	cfg := defaultConfig()

	if path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			bootLog.Printf("cannot read %s: %v (falling back to defaults)", path, err)
		} else if fileCfg, err := parse(raw); err != nil {
			bootLog.Printf("cannot parse %s: %v (falling back to defaults)", path, err)
		} else {
			cfg = fileCfg
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()
	cfg.fillSourceDefaults()

	return cfg
}

// parse overlays YAML onto the defaults so omitted keys keep their default values.
func parse(raw []byte) (Config, error) {
	cfg := defaultConfig()
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal yaml: %w", err)
	}
	if len(cfg.Sources) == 0 {
		cfg.Sources = defaultSources()
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	setString(&c.LLM.APIKey, openAIKeyEnv)
	setString(&c.LLM.Model, analysisModelEnv)
	setString(&c.LLM.Endpoint, llmEndpointEnv)
	setInt(&c.LLM.MaxTokens, maxTokensEnv)
	setFloat(&c.LLM.Temperature, temperatureEnv)
	setDuration(&c.LLM.Timeout, llmTimeoutEnv)

	setString(&c.Notion.Token, notionTokenEnv)
	setString(&c.Notion.DatabaseID, notionDatabaseEnv)

	setDuration(&c.Scraping.Delay, scrapingDelayEnv)
	setInt(&c.Scraping.MaxPostsPerSource, maxPostsEnv)

	setString(&c.Scheduler.RunTime, scheduleTimeEnv)
	setString(&c.Scheduler.Timezone, schedulerTimezoneEnv)
	setBool(&c.Scheduler.AutoRun, autoRunEnv)
	setInt(&c.Retention.Days, retentionDaysEnv)

	setBool(&c.Output.Markdown, markdownEnabledEnv)
	setBool(&c.Output.JSON, jsonEnabledEnv)
	setString(&c.Output.Dir, outputDirEnv)

	setString(&c.Content.Mode, contentModeEnv)
	setString(&c.Archive.DSN, databaseDSNEnv)
	setString(&c.Archive.Driver, archiveDriverEnv)

	setString(&c.Notifications.Telegram.BotToken, telegramTokenEnv)
	setString(&c.Notifications.Telegram.ChatID, telegramChatIDEnv)

	setString(&c.Server.Addr, httpAddrEnv)
	setString(&c.Cron.Secret, cronSecretEnv)
	setString(&c.Logging.Level, logLevelEnv)

	if os.Getenv(readOnlyDeployEnv) != "" {
		c.ReadOnlyDeploy = true
	}
}

func (c *Config) bindTimezone() {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		bootLog.Printf("unknown timezone %s, reverting to %s", tz, defaultTimezone)
		loc, _ = time.LoadLocation(defaultTimezone)
	}
	c.Scheduler.location = loc
}

// fillSourceDefaults gives selector-based sources the naver selector set when none is configured.
func (c *Config) fillSourceDefaults() {
	fallback := naverSelectors()
	for i := range c.Sources {
		s := &c.Sources[i]
		if s.Scanner == "" {
			s.Scanner = "selector"
		}
		if s.Selectors.Posts == "" && (s.Scanner == "selector" || s.Scanner == "browser") {
			s.Selectors = fallback
		}
	}
}

// EnabledSources returns sources not marked disabled.
func (c Config) EnabledSources() []SourceConfig {
	out := make([]SourceConfig, 0, len(c.Sources))
	for _, s := range c.Sources {
		if !s.Disabled {
			out = append(out, s)
		}
	}
	return out
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		bootLog.Printf("%s=%q is not an integer, keeping %d", key, v, *dst)
		return
	}
	*dst = n
}

func setFloat(dst *float64, key string) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		bootLog.Printf("%s=%q is not a number, keeping %v", key, v, *dst)
		return
	}
	*dst = f
}

func setBool(dst *bool, key string) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		bootLog.Printf("%s=%q is not a boolean, keeping %t", key, v, *dst)
		return
	}
	*dst = b
}

// setDuration accepts Go durations ("90s") or bare seconds ("2", "0.5").
func setDuration(dst *time.Duration, key string) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return
	}
	if d, err := time.ParseDuration(v); err == nil {
		*dst = d
		return
	}
	secs, err := strconv.ParseFloat(v, 64)
	if err != nil {
		bootLog.Printf("%s=%q is not a duration, keeping %s", key, v, *dst)
		return
	}
	*dst = time.Duration(secs * float64(time.Second))
}

func naverSelectors() SelectorConfig {
	return SelectorConfig{
		Posts:   "li.bx, div.total_wrap, div.thumb",
		Title:   "a.title_link, h3.title, a.link_tit",
		Content: "div.dsc, div.content, p.content",
		Date:    "span.date, time, span.time",
		Author:  "span.author, a.author, span.writer",
		Link:    "a.title_link, a.link_tit, a",
	}
}

func defaultSources() []SourceConfig {
	return []SourceConfig{
		{
			Name:    "naver_beauty",
			Scanner: "selector",
			URLs: []string{
				"https://search.naver.com/search.naver?where=view&query=K뷰티+트렌드",
				"https://search.naver.com/search.naver?where=view&query=한국화장품+리뷰",
				"https://search.naver.com/search.naver?where=view&query=K뷰티+신상품",
			},
			Selectors: naverSelectors(),
		},
		{
			Name:     "youtube_beauty",
			Scanner:  "browser",
			Disabled: true,
			URLs: []string{
				"https://www.youtube.com/results?search_query=korean+beauty+trends",
				"https://www.youtube.com/results?search_query=korean+skincare+reviews",
				"https://www.youtube.com/results?search_query=kbeauty+new+products",
			},
			Selectors: SelectorConfig{
				Posts:   "ytd-video-renderer",
				Title:   "a#video-title",
				Content: "#description-text, yt-formatted-string.metadata-snippet-text",
				Author:  "ytd-channel-name a",
				Link:    "a#video-title",
			},
			MaxPosts: 15,
		},
		{
			Name:     "instagram_beauty",
			Scanner:  "browser",
			Disabled: true,
			URLs: []string{
				"https://www.instagram.com/explore/tags/kbeauty/",
				"https://www.instagram.com/explore/tags/koreanskincare/",
				"https://www.instagram.com/explore/tags/koreanmakeup/",
			},
			Selectors: SelectorConfig{
				Posts:   "article a",
				Title:   "img",
				Content: "img",
				Link:    "a",
			},
			MaxPosts: 10,
			Options:  map[string]string{"titleAttr": "alt", "contentAttr": "alt"},
		},
	}
}

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Logging: LoggingConfig{Level: "info"},
		Server:  ServerConfig{Addr: ":8000", ShutdownTimeout: 10 * time.Second},
		LLM: LLMConfig{
			Endpoint:    "https://api.openai.com/v1/chat/completions",
			Model:       "gpt-4",
			MaxTokens:   2000,
			Temperature: 0.3,
			Timeout:     60 * time.Second,
		},
		Content: ContentConfig{Mode: ContentModeLive},
		Scraping: ScrapingConfig{
			Delay:             2 * time.Second,
			MaxPostsPerSource: 50,
			Concurrency:       3,
			UserAgent:         "Mozilla/5.0 (compatible; KBeautyBriefing/1.0)",
			Timeout:           30 * time.Second,
		},
		Sources: defaultSources(),
		Output:  OutputConfig{Dir: "output", Markdown: true, JSON: true},
		Notion: NotionConfig{
			Endpoint:   "https://api.notion.com/v1",
			Version:    "2022-06-28",
			TrendPages: true,
		},
		Archive: ArchiveConfig{Driver: "postgres"},
		Scheduler: SchedulerConfig{
			RunTime:      "06:00",
			Timezone:     defaultTimezone,
			PollInterval: time.Minute,
			ErrorBackoff: 5 * time.Minute,
			location:     tz,
		},
		Retention: RetentionConfig{Days: 30},
	}
}
