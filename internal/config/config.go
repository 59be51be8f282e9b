// Package config handles loading and validating the application configuration
// from YAML files with environment variable substitution.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Database      DatabaseConfig      `yaml:"database"`
	EANSearch     EANSearchConfig     `yaml:"eansearch"`
	Refresh       RefreshConfig       `yaml:"refresh"`
	Quality       QualityConfig       `yaml:"quality"`
	Alerts        AlertsConfig        `yaml:"alerts"`
	Notifications NotificationsConfig `yaml:"notifications"`
	Logging       LoggingConfig       `yaml:"logging"`
}

// ServerConfig defines the Echo HTTP server settings.
type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// DatabaseConfig defines PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
	PoolSize int    `yaml:"pool_size"`
}

// DSN returns a PostgreSQL connection string. PoolSize travels as the
// pool_max_conns keyword so pgxpool picks it up directly.
func (d *DatabaseConfig) DSN() string {
	dsn := fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		d.Host, d.Port, d.Name, d.User, d.Password, d.SSLMode,
	)
	if d.PoolSize > 0 {
		dsn += fmt.Sprintf(" pool_max_conns=%d", d.PoolSize)
	}
	return dsn
}

// EANSearchConfig defines EAN-Search API settings.
type EANSearchConfig struct {
	Token       string          `yaml:"token"`
	BaseURL     string          `yaml:"base_url"`
	Language    int             `yaml:"language"`
	Timeout     time.Duration   `yaml:"timeout"`
	MaxAttempts int             `yaml:"max_attempts"`
	RetryWait   time.Duration   `yaml:"retry_wait"`
	RateLimit   RateLimitConfig `yaml:"rate_limit"`
}

// RateLimitConfig defines client-side API rate limiting settings.
type RateLimitConfig struct {
	PerSecond  float64 `yaml:"per_second"`
	Burst      int     `yaml:"burst"`
	DailyLimit int64   `yaml:"daily_limit"`
}

// RefreshConfig defines how watched barcodes are re-checked.
type RefreshConfig struct {
	Interval      time.Duration `yaml:"interval"`
	Stagger       time.Duration `yaml:"stagger"`
	CallBudget    int           `yaml:"call_budget"`
	StaleAfter    time.Duration `yaml:"stale_after"`
	PruneInterval time.Duration `yaml:"prune_interval"`
	RetentionDays int           `yaml:"retention_days"`
}

// QualityConfig defines the data quality scoring weights.
type QualityConfig struct {
	Weights QualityWeights `yaml:"weights"`
}

// QualityWeights defines the relative weight of each scoring factor.
type QualityWeights struct {
	Name     float64 `yaml:"name"`
	Category float64 `yaml:"category"`
	Country  float64 `yaml:"country"`
	Checksum float64 `yaml:"checksum"`
}

// AlertsConfig defines alert behavior.
type AlertsConfig struct {
	CreditFloor      int64         `yaml:"credit_floor"`       // alert when credits drop below
	ReAlertsCooldown time.Duration `yaml:"re_alerts_cooldown"` // default: 24h
}

// NotificationsConfig defines notification targets.
type NotificationsConfig struct {
	Discord DiscordConfig `yaml:"discord"`
	Webhook WebhookConfig `yaml:"webhook"`
}

// DiscordConfig defines Discord webhook settings.
type DiscordConfig struct {
	Enabled    bool   `yaml:"enabled"`
	WebhookURL string `yaml:"webhook_url"`
}

// WebhookConfig defines generic webhook settings.
type WebhookConfig struct {
	Enabled bool              `yaml:"enabled"`
	URL     string            `yaml:"url"`
	Headers map[string]string `yaml:"headers"`
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// Load reads and parses a YAML config file, performing environment variable
// substitution and validation.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // config path from trusted CLI flag
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables in the YAML content.
	expanded := os.ExpandEnv(string(data))

	cfg := &Config{}
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}

	applyDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	applyServerDefaults(&cfg.Server)
	applyDatabaseDefaults(&cfg.Database)
	applyEANSearchDefaults(&cfg.EANSearch)
	applyRefreshDefaults(&cfg.Refresh)
	applyQualityDefaults(&cfg.Quality)
	applyAlertsDefaults(&cfg.Alerts)
	applyLoggingDefaults(&cfg.Logging)
}

func applyServerDefaults(s *ServerConfig) {
	if s.Host == "" {
		s.Host = "0.0.0.0"
	}
	if s.Port == 0 {
		s.Port = 8080
	}
	if s.ReadTimeout == 0 {
		s.ReadTimeout = 30 * time.Second
	}
	if s.WriteTimeout == 0 {
		s.WriteTimeout = 30 * time.Second
	}
}

func applyDatabaseDefaults(d *DatabaseConfig) {
	if d.Port == 0 {
		d.Port = 5432
	}
	if d.SSLMode == "" {
		d.SSLMode = "disable"
	}
	if d.PoolSize == 0 {
		d.PoolSize = 10
	}
}

func applyEANSearchDefaults(e *EANSearchConfig) {
	if e.BaseURL == "" {
		e.BaseURL = "https://api.ean-search.org/api"
	}
	if e.Language == 0 {
		e.Language = 1
	}
	if e.Timeout == 0 {
		e.Timeout = 180 * time.Second
	}
	if e.MaxAttempts == 0 {
		e.MaxAttempts = 3
	}
	if e.RetryWait == 0 {
		e.RetryWait = time.Second
	}
	applyRateLimitDefaults(&e.RateLimit)
}

func applyRateLimitDefaults(r *RateLimitConfig) {
	if r.PerSecond == 0 {
		r.PerSecond = 2.0
	}
	if r.Burst == 0 {
		r.Burst = 5
	}
	if r.DailyLimit == 0 {
		r.DailyLimit = 10000
	}
}

func applyRefreshDefaults(r *RefreshConfig) {
	if r.Interval == 0 {
		r.Interval = 6 * time.Hour
	}
	if r.Stagger == 0 {
		r.Stagger = 2 * time.Second
	}
	if r.CallBudget == 0 {
		r.CallBudget = 500
	}
	if r.StaleAfter == 0 {
		r.StaleAfter = 48 * time.Hour
	}
	if r.PruneInterval == 0 {
		r.PruneInterval = 24 * time.Hour
	}
	if r.RetentionDays == 0 {
		r.RetentionDays = 180
	}
}

func applyQualityDefaults(q *QualityConfig) {
	w := &q.Weights
	if w.Name == 0 && w.Category == 0 && w.Country == 0 && w.Checksum == 0 {
		w.Name = 0.40
		w.Category = 0.25
		w.Country = 0.20
		w.Checksum = 0.15
	}
}

func applyAlertsDefaults(a *AlertsConfig) {
	if a.CreditFloor == 0 {
		a.CreditFloor = 100
	}
	if a.ReAlertsCooldown == 0 {
		a.ReAlertsCooldown = 24 * time.Hour
	}
}

func applyLoggingDefaults(l *LoggingConfig) {
	if l.Level == "" {
		l.Level = "info"
	}
	if l.Format == "" {
		l.Format = "text"
	}
}

func validate(cfg *Config) error {
	var errs []error

	if cfg.Database.Host == "" {
		errs = append(errs, fmt.Errorf("database.host is required"))
	}
	if cfg.Database.Name == "" {
		errs = append(errs, fmt.Errorf("database.name is required"))
	}
	if cfg.Database.User == "" {
		errs = append(errs, fmt.Errorf("database.user is required"))
	}

	if cfg.EANSearch.Token == "" {
		errs = append(errs, fmt.Errorf("eansearch.token is required"))
	}

	w := cfg.Quality.Weights
	sum := w.Name + w.Category + w.Country + w.Checksum
	if sum < 0.99 || sum > 1.01 {
		errs = append(
			errs,
			fmt.Errorf("quality.weights must sum to 1.0 (got %.2f)", sum),
		)
	}

	if cfg.Notifications.Discord.Enabled && cfg.Notifications.Discord.WebhookURL == "" {
		errs = append(
			errs,
			fmt.Errorf("notifications.discord.webhook_url is required when discord is enabled"),
		)
	}
	if cfg.Notifications.Webhook.Enabled && cfg.Notifications.Webhook.URL == "" {
		errs = append(
			errs,
			fmt.Errorf("notifications.webhook.url is required when webhook is enabled"),
		)
	}

	return errors.Join(errs...)
}
