package config

import (
	"log"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone  = "UTC"
	configPathEnv    = "DEVTO_MIRROR_CONFIG"
	usernameEnv      = "DEVTO_MIRROR_USERNAME"
	apiKeyEnv        = "DEVTO_MIRROR_API_KEY"
	databaseDSNEnv   = "DATABASE_DSN"
	telegramTokenEnv = "TELEGRAM_BOT_TOKEN"
	telegramChatEnv  = "TELEGRAM_CHAT_ID"
	forceEmptyEnv    = "DEVTO_MIRROR_FORCE_EMPTY_FEED"
	validationNoEnv  = "VALIDATION_NO_POSTS"
)

// Config holds high-level settings required across the application.
type Config struct {
	Mirror        MirrorConfig       `yaml:"mirror"`
	API           APIConfig          `yaml:"api"`
	Fetch         FetchConfig        `yaml:"fetch"`
	Scheduler     SchedulerConfig    `yaml:"scheduler"`
	Database      DatabaseConfig     `yaml:"database"`
	Notifications NotificationConfig `yaml:"notifications"`
	Logging       LoggingConfig      `yaml:"logging"`
}

// MirrorConfig identifies whose articles are mirrored and where the local
// dataset lives.
type MirrorConfig struct {
	Username      string `yaml:"username"`
	PostsDataPath string `yaml:"postsDataPath"`
	LastRunPath   string `yaml:"lastRunPath"`
}

// APIConfig describes the remote article API endpoint and fetch tuning.
type APIConfig struct {
	BaseURL           string `yaml:"baseUrl"`
	APIKey            string `yaml:"apiKey"`
	TimeoutSeconds    int    `yaml:"timeoutSeconds"`
	PerPage           int    `yaml:"perPage"`
	MaxPages          int    `yaml:"maxPages"`
	MaxRetries        int    `yaml:"maxRetries"`
	RetryDelaySeconds int    `yaml:"retryDelaySeconds"`
}

// Timeout converts the configured request timeout to a duration.
func (a APIConfig) Timeout() time.Duration {
	return time.Duration(a.TimeoutSeconds) * time.Second
}

// RetryDelay converts the configured initial retry delay to a duration.
func (a APIConfig) RetryDelay() time.Duration {
	return time.Duration(a.RetryDelaySeconds) * time.Second
}

// FetchConfig carries the operational overrides for the fetch orchestrator.
// ForceEmptyFeed and ValidationNoPosts also answer to environment toggles;
// ValidationMode is an explicit setting only.
type FetchConfig struct {
	ForceEmptyFeed    bool `yaml:"forceEmptyFeed"`
	ValidationNoPosts bool `yaml:"validationNoPosts"`
	ValidationMode    bool `yaml:"validationMode"`
}

// SchedulerConfig defines when the mirror should run. An empty cron
// expression means a single immediate run.
type SchedulerConfig struct {
	CronExpression string         `yaml:"cronExpression"`
	Timezone       string         `yaml:"timezone"`
	location       *time.Location `yaml:"-"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// DatabaseConfig describes the optional Postgres audit store.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// NotificationConfig encapsulates outbound alert channels.
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
}

// LoggingConfig controls slog verbosity.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Load reads YAML configuration (if present) and applies environment
// overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()

	return cfg
}

// TruthyFlag maps the closed set of accepted boolean-ish literals to true;
// everything else is false.
func TruthyFlag(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "1", "yes":
		return true
	default:
		return false
	}
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(usernameEnv); v != "" {
		c.Mirror.Username = v
	}

	if v := os.Getenv(apiKeyEnv); v != "" {
		c.API.APIKey = v
	}

	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Database.DSN = v
	}

	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Notifications.Telegram.BotToken = v
	}

	if v := os.Getenv(telegramChatEnv); v != "" {
		c.Notifications.Telegram.ChatID = v
	}

	if v, ok := os.LookupEnv(forceEmptyEnv); ok {
		c.Fetch.ForceEmptyFeed = TruthyFlag(v)
	}

	if v, ok := os.LookupEnv(validationNoEnv); ok {
		c.Fetch.ValidationNoPosts = TruthyFlag(v)
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

func mergeConfig(base, override Config) Config {
	if override.Mirror.Username != "" {
		base.Mirror.Username = override.Mirror.Username
	}
	if override.Mirror.PostsDataPath != "" {
		base.Mirror.PostsDataPath = override.Mirror.PostsDataPath
	}
	if override.Mirror.LastRunPath != "" {
		base.Mirror.LastRunPath = override.Mirror.LastRunPath
	}

	if override.API.BaseURL != "" {
		base.API.BaseURL = override.API.BaseURL
	}
	if override.API.APIKey != "" {
		base.API.APIKey = override.API.APIKey
	}
	if override.API.TimeoutSeconds > 0 {
		base.API.TimeoutSeconds = override.API.TimeoutSeconds
	}
	if override.API.PerPage > 0 {
		base.API.PerPage = override.API.PerPage
	}
	if override.API.MaxPages > 0 {
		base.API.MaxPages = override.API.MaxPages
	}
	if override.API.MaxRetries > 0 {
		base.API.MaxRetries = override.API.MaxRetries
	}
	if override.API.RetryDelaySeconds > 0 {
		base.API.RetryDelaySeconds = override.API.RetryDelaySeconds
	}

	if override.Fetch.ForceEmptyFeed {
		base.Fetch.ForceEmptyFeed = true
	}
	if override.Fetch.ValidationNoPosts {
		base.Fetch.ValidationNoPosts = true
	}
	if override.Fetch.ValidationMode {
		base.Fetch.ValidationMode = true
	}

	if override.Scheduler.CronExpression != "" {
		base.Scheduler.CronExpression = override.Scheduler.CronExpression
	}
	if override.Scheduler.Timezone != "" {
		base.Scheduler.Timezone = override.Scheduler.Timezone
	}

	if override.Database.DSN != "" {
		base.Database.DSN = override.Database.DSN
	}

	if override.Notifications.Telegram.BotToken != "" {
		base.Notifications.Telegram.BotToken = override.Notifications.Telegram.BotToken
	}
	if override.Notifications.Telegram.ChatID != "" {
		base.Notifications.Telegram.ChatID = override.Notifications.Telegram.ChatID
	}

	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}

	return base
}

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Mirror: MirrorConfig{
			PostsDataPath: "posts_data.json",
			LastRunPath:   ".last_run",
		},
		API: APIConfig{
			BaseURL:           "https://dev.to/api",
			TimeoutSeconds:    30,
			PerPage:           50,
			MaxPages:          20,
			MaxRetries:        3,
			RetryDelaySeconds: 1,
		},
		Scheduler: SchedulerConfig{Timezone: defaultTimezone, location: tz},
		Logging:   LoggingConfig{Level: "info"},
	}
}
