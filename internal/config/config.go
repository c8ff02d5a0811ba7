package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"EvidenceCollector/internal/domain"
	"EvidenceCollector/internal/search"
)

const (
	defaultTimezone   = "UTC"
	configPathEnv     = "EVIDENCE_COLLECTOR_CONFIG"
	databaseDSNEnv    = "DATABASE_DSN"
	tavilyAPIKeyEnv   = "TAVILY_API_KEY"
	openAIAPIKeyEnv   = "OPENAI_API_KEY"
	openAIModelEnv    = "OPENAI_MODEL"
	telegramTokenEnv  = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv = "TELEGRAM_CHAT_ID"
	logLevelEnv       = "LOG_LEVEL"
)

// Search provider names accepted in search.provider.
const (
	ProviderTavily = "tavily"
	ProviderHTML   = "html"
)

// Classifier backends accepted in classifier.provider.
const (
	ClassifierOpenAI    = "openai"
	ClassifierInference = "inference"
	ClassifierNone      = "none"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging       LoggingConfig           `yaml:"logging"`
	Profile       domain.ThresholdProfile `yaml:"profile"`
	Search        SearchConfig            `yaml:"search"`
	Tavily        TavilyConfig            `yaml:"tavily"`
	HTMLSearch    HTMLSearchConfig        `yaml:"htmlSearch"`
	Classifier    ClassifierConfig        `yaml:"classifier"`
	ChatGPT       ChatGPTConfig           `yaml:"chatgpt"`
	ML            MLConfig                `yaml:"ml"`
	Database      DatabaseConfig          `yaml:"database"`
	Notifications NotificationConfig      `yaml:"notifications"`
	Scheduler     SchedulerConfig         `yaml:"scheduler"`
	HTTP          HTTPConfig              `yaml:"http"`
	Targets       []domain.Target         `yaml:"targets"`
}

// LoggingConfig selects the slog level.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// SearchConfig picks the provider and bounds dispatch cost.
type SearchConfig struct {
	Provider string        `yaml:"provider"`
	Dispatch search.Config `yaml:"dispatch"`
}

// TavilyConfig describes the Tavily search API.
type TavilyConfig struct {
	Endpoint string        `yaml:"endpoint"`
	APIKey   string        `yaml:"apiKey"`
	Timeout  time.Duration `yaml:"timeout"`
}

// HTMLSearchConfig points the scraping provider at an HTML results page.
type HTMLSearchConfig struct {
	BaseURL string        `yaml:"baseUrl"`
	Timeout time.Duration `yaml:"timeout"`
}

// ClassifierConfig selects the provenance classifier backend.
type ClassifierConfig struct {
	Provider  string        `yaml:"provider"`
	Workers   int           `yaml:"workers"`
	Timeout   time.Duration `yaml:"timeout"`
	Summaries bool          `yaml:"summaries"`
}

// ChatGPTConfig defines how to contact an OpenAI-compatible chat API.
type ChatGPTConfig struct {
	Endpoint string        `yaml:"endpoint"`
	Model    string        `yaml:"model"`
	APIKey   string        `yaml:"apiKey"`
	Timeout  time.Duration `yaml:"timeout"`
}

// MLConfig describes inference-service integration parameters.
type MLConfig struct {
	InferenceURL string `yaml:"inferenceUrl"`
	APIKey       string `yaml:"apiKey"`
}

// DatabaseConfig describes Postgres connection details. An empty DSN keeps
// results in memory.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// NotificationConfig encapsulates outbound channels (Telegram, etc.).
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
}

// Enabled reports whether both credentials are present.
func (t TelegramConfig) Enabled() bool {
	return t.BotToken != "" && t.ChatID != ""
}

// SchedulerConfig defines how often watch mode re-collects targets.
type SchedulerConfig struct {
	Interval time.Duration  `yaml:"interval"`
	Timezone string         `yaml:"timezone"`
	location *time.Location `yaml:"-"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// HTTPConfig configures the API server.
type HTTPConfig struct {
	Addr string `yaml:"addr"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		loaded, err := LoadFile(path)
		if err != nil {
			log.Printf("config: %v (falling back to defaults)", err)
		} else {
			cfg = loaded
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()

	return cfg
}

// LoadFile reads one YAML file on top of the defaults without consulting the
// environment.
func LoadFile(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("cannot read %s: %w", path, err)
	}
	cfg, err := mergeConfig(defaultConfig(), raw)
	if err != nil {
		return Config{}, fmt.Errorf("cannot parse %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Database.DSN = v
	}

	if v := os.Getenv(tavilyAPIKeyEnv); v != "" {
		c.Tavily.APIKey = v
	}

	if v := os.Getenv(openAIAPIKeyEnv); v != "" {
		c.ChatGPT.APIKey = v
	}

	if v := os.Getenv(openAIModelEnv); v != "" {
		c.ChatGPT.Model = v
	}

	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Notifications.Telegram.BotToken = v
	}

	if v := os.Getenv(telegramChatIDEnv); v != "" {
		c.Notifications.Telegram.ChatID = v
	}

	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}
}

func (c *Config) bindTimezone() {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to %s", tz, defaultTimezone)
		loc, _ = time.LoadLocation(defaultTimezone)
	}
	c.Scheduler.location = loc
}

// mergeConfig decodes raw on top of base: keys present in the file win,
// absent keys keep their base value. Lists are replaced, not appended.
func mergeConfig(base Config, raw []byte) (Config, error) {
	merged := base
	merged.Targets = nil
	if err := yaml.Unmarshal(raw, &merged); err != nil {
		return base, err
	}
	if merged.Targets == nil {
		merged.Targets = base.Targets
	}
	return merged, nil
}

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Logging: LoggingConfig{Level: "info"},
		Profile: domain.DefaultThresholdProfile(),
		Search: SearchConfig{
			Provider: ProviderTavily,
			Dispatch: search.DefaultConfig(),
		},
		Tavily: TavilyConfig{
			Endpoint: "https://api.tavily.com/search",
			Timeout:  30 * time.Second,
		},
		HTMLSearch: HTMLSearchConfig{
			BaseURL: "https://html.duckduckgo.com/html/",
			Timeout: 20 * time.Second,
		},
		Classifier: ClassifierConfig{
			Provider:  ClassifierOpenAI,
			Workers:   4,
			Timeout:   30 * time.Second,
			Summaries: true,
		},
		ChatGPT: ChatGPTConfig{
			Endpoint: "https://api.openai.com/v1/chat/completions",
			Model:    "gpt-4o-mini",
			Timeout:  30 * time.Second,
		},
		ML:        MLConfig{InferenceURL: "http://localhost:8000"},
		Scheduler: SchedulerConfig{Interval: 24 * time.Hour, Timezone: defaultTimezone, location: tz},
		HTTP:      HTTPConfig{Addr: ":8080"},
	}
}
