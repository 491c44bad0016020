package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"
	_ "time/tzdata" // zone database for feed.timezone on hosts without one

	"gopkg.in/yaml.v3"
)

//go:generate go run ../../cmd/schema/main.go schema.json

// Config holds the application configuration
type Config struct {
	Server struct {
		Listen  string        `yaml:"listen" json:"listen" jsonschema:"default=:8080,description=HTTP server listen address"`
		Timeout time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=30s,description=HTTP server timeout"`
		BaseURL string        `yaml:"base_url" json:"base_url" jsonschema:"description=Public URL of the service used in RSS links"`
	} `yaml:"server" json:"server" jsonschema:"description=Server configuration"`

	Cache CacheConfig `yaml:"cache" json:"cache" jsonschema:"description=Feed cache storage"`

	HomeAssistant HomeAssistantConfig `yaml:"homeassistant" json:"homeassistant" jsonschema:"description=Home Assistant connection"`

	Schedule ScheduleConfig `yaml:"schedule" json:"schedule" jsonschema:"description=Refresh schedule"`

	Feed Feed `yaml:"feed" json:"feed" jsonschema:"description=Feed composition"`
}

// CacheConfig defines where feed caches are persisted
type CacheConfig struct {
	Type string `yaml:"type" json:"type" jsonschema:"default=sqlite,enum=sqlite,enum=memory,description=Cache backend"`
	DSN  string `yaml:"dsn" json:"dsn" jsonschema:"default=file:homefeed.db?cache=shared&mode=rwc,description=SQLite connection string"`
}

// HomeAssistantConfig holds Home Assistant API access settings
type HomeAssistantConfig struct {
	URL       string        `yaml:"url" json:"url" jsonschema:"required,description=Home Assistant base URL"`
	Token     string        `yaml:"token" json:"token" jsonschema:"description=Long-lived access token (can use environment variable)"`
	Timeout   time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=10s,description=HTTP request timeout"`
	RateLimit float64       `yaml:"rate_limit" json:"rate_limit" jsonschema:"default=0,minimum=0,description=Maximum API requests per second, 0 disables limiting"`
}

// ScheduleConfig holds refresh intervals
type ScheduleConfig struct {
	StatePoll       time.Duration `yaml:"state_poll" json:"state_poll" jsonschema:"default=10s,description=Interval of entity state polling"`
	HistoryDebounce time.Duration `yaml:"history_debounce" json:"history_debounce" jsonschema:"default=2s,description=Delay before history refresh after a state change"`
	CalendarTTL     time.Duration `yaml:"calendar_ttl" json:"calendar_ttl" jsonschema:"default=15m,description=Lifetime of cached calendar events"`
}

// Feed holds the composition of a single feed instance
type Feed struct {
	CardID   string `yaml:"card_id" json:"card_id" jsonschema:"description=Explicit cache identity"`
	Title    string `yaml:"title" json:"title" jsonschema:"description=Feed title, part of cache identity"`
	Page     string `yaml:"page" json:"page" jsonschema:"description=Page path the feed is shown on, part of cache identity"`
	Preview  bool   `yaml:"preview" json:"preview" jsonschema:"default=false,description=Preview mode, cache is kept on configuration changes"`
	Debug    bool   `yaml:"debug" json:"debug" jsonschema:"default=false,description=Add debug item to the feed"`
	Locale   string `yaml:"locale" json:"locale" jsonschema:"default=en_US,description=Locale for calendar date formatting"`
	Timezone string `yaml:"timezone" json:"timezone" jsonschema:"description=IANA time zone for day boundaries, local if empty"`

	Entities  EntityList `yaml:"entities" json:"entities" jsonschema:"description=Entities shown in the feed"`
	Calendars []string   `yaml:"calendars" json:"calendars" jsonschema:"description=Calendar entity ids"`

	HistoryDaysBack     int    `yaml:"history_days_back" json:"history_days_back" jsonschema:"default=0,minimum=0,description=Days of history to include"`
	CalendarDaysBack    int    `yaml:"calendar_days_back" json:"calendar_days_back" jsonschema:"default=0,minimum=0,description=Days of past calendar events"`
	CalendarDaysForward *int   `yaml:"calendar_days_forward" json:"calendar_days_forward,omitempty" jsonschema:"default=1,minimum=0,description=Days of upcoming calendar events"`
	CalendarTimeFormat  string `yaml:"calendar_time_format" json:"calendar_time_format" jsonschema:"default=relative,description=Timestamp format of calendar items"`
	IDFilter            string `yaml:"id_filter" json:"id_filter" jsonschema:"description=Regular expression notification ids must match"`
	MaxItemCount        int    `yaml:"max_item_count" json:"max_item_count" jsonschema:"default=0,minimum=0,description=Maximum feed size, 0 is unlimited"`

	StrictTemplates       bool  `yaml:"strict_templates" json:"strict_templates" jsonschema:"default=false,description=Abort the whole build on a template failure"`
	SanitizeNotifications *bool `yaml:"sanitize_notifications" json:"sanitize_notifications,omitempty" jsonschema:"default=true,description=Sanitize HTML in notification messages"`
}

// Load reads configuration from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // file path comes from CLI flag
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes configuration, applies defaults and validates it
func Parse(data []byte) (*Config, error) {
	// expand environment variables
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	setDefaults(&cfg)

	// validate configuration
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	// verify against embedded schema
	if err := VerifyAgainstEmbeddedSchema(&cfg); err != nil {
		// log warning but don't fail - schema validation is supplementary
		fmt.Printf("warning: schema validation failed: %v\n", err)
	}

	return &cfg, nil
}

func setDefaults(cfg *Config) {
	// set defaults for server
	if cfg.Server.Listen == "" {
		cfg.Server.Listen = ":8080"
	}
	if cfg.Server.Timeout == 0 {
		cfg.Server.Timeout = 30 * time.Second
	}
	if cfg.Server.BaseURL == "" {
		cfg.Server.BaseURL = "http://" + cfg.Server.Listen
		if strings.HasPrefix(cfg.Server.Listen, ":") {
			cfg.Server.BaseURL = "http://localhost" + cfg.Server.Listen
		}
	}
	cfg.Server.BaseURL = strings.TrimRight(cfg.Server.BaseURL, "/")

	// set defaults for cache
	if cfg.Cache.Type == "" {
		cfg.Cache.Type = "sqlite"
	}
	if cfg.Cache.DSN == "" {
		cfg.Cache.DSN = "file:homefeed.db?cache=shared&mode=rwc&_txlock=immediate"
	}

	// set defaults for home assistant
	cfg.HomeAssistant.URL = strings.TrimRight(cfg.HomeAssistant.URL, "/")
	if cfg.HomeAssistant.Timeout == 0 {
		cfg.HomeAssistant.Timeout = 10 * time.Second
	}

	// set defaults for schedule
	if cfg.Schedule.StatePoll == 0 {
		cfg.Schedule.StatePoll = 10 * time.Second
	}
	if cfg.Schedule.HistoryDebounce == 0 {
		cfg.Schedule.HistoryDebounce = 2 * time.Second
	}
	if cfg.Schedule.CalendarTTL == 0 {
		cfg.Schedule.CalendarTTL = 15 * time.Minute
	}

	// set defaults for feed
	if cfg.Feed.Locale == "" {
		cfg.Feed.Locale = "en_US"
	}
	if cfg.Feed.CalendarTimeFormat == "" {
		cfg.Feed.CalendarTimeFormat = "relative"
	}
}

// validate checks configuration for correctness
func validate(cfg *Config) error {
	if cfg.HomeAssistant.URL == "" {
		return fmt.Errorf("homeassistant.url is required")
	}
	if cfg.HomeAssistant.RateLimit < 0 {
		return fmt.Errorf("homeassistant.rate_limit must be non-negative")
	}
	if cfg.Cache.Type != "sqlite" && cfg.Cache.Type != "memory" {
		return fmt.Errorf("cache.type must be sqlite or memory, got %q", cfg.Cache.Type)
	}
	if cfg.Server.Timeout < time.Second {
		return fmt.Errorf("server timeout must be at least 1 second")
	}
	if cfg.Schedule.StatePoll < time.Second {
		return fmt.Errorf("schedule.state_poll must be at least 1 second")
	}

	f := cfg.Feed
	if f.HistoryDaysBack < 0 || f.CalendarDaysBack < 0 || (f.CalendarDaysForward != nil && *f.CalendarDaysForward < 0) {
		return fmt.Errorf("feed day ranges must be non-negative")
	}
	if f.MaxItemCount < 0 {
		return fmt.Errorf("feed.max_item_count must be non-negative")
	}
	if f.IDFilter != "" {
		if _, err := regexp.Compile(f.IDFilter); err != nil {
			return fmt.Errorf("feed.id_filter: %w", err)
		}
	}
	if _, err := f.Location(); err != nil {
		return fmt.Errorf("feed.timezone: %w", err)
	}
	return nil
}

// GetServerConfig returns server configuration
func (c *Config) GetServerConfig() (listen string, timeout time.Duration) {
	return c.Server.Listen, c.Server.Timeout
}

// GetURLs returns public base URL of the service and Home Assistant URL
func (c *Config) GetURLs() (baseURL, haURL string) {
	return c.Server.BaseURL, c.HomeAssistant.URL
}

// CacheID returns identity scoping all cache keys of this feed
func (f *Feed) CacheID() string {
	if f.CardID != "" {
		return f.CardID
	}
	return f.PageID() + f.Title
}

// PageID returns page path with slashes replaced, "/lovelace/0" becomes "_lovelace_0"
func (f *Feed) PageID() string {
	return strings.ReplaceAll(f.Page, "/", "_")
}

// IsPreviewContext reports whether the feed runs in a non-live editing context
func (f *Feed) IsPreviewContext() bool {
	return f.Preview
}

// DaysForward returns calendar_days_forward, 1 if not set
func (f *Feed) DaysForward() int {
	if f.CalendarDaysForward == nil {
		return 1
	}
	return *f.CalendarDaysForward
}

// SanitizeEnabled returns sanitize_notifications, true if not set
func (f *Feed) SanitizeEnabled() bool {
	return f.SanitizeNotifications == nil || *f.SanitizeNotifications
}

// Location returns configured time zone, local if not set
func (f *Feed) Location() (*time.Location, error) {
	if f.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(f.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load location %q: %w", f.Timezone, err)
	}
	return loc, nil
}
