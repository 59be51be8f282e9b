package main

import "errors"

// KnownMetrics is the set of metric names exported by ean-watch plus
// recording rule names referenced in dashboards and alerts.
var KnownMetrics = map[string]bool{
	// HTTP metrics.
	"eanwatch_http_request_duration_seconds": true,
	"eanwatch_http_requests_total":           true,

	// Health metrics.
	"eanwatch_healthz_up": true,
	"eanwatch_readyz_up":  true,

	// Refresh metrics.
	"eanwatch_refresh_watches_total":    true,
	"eanwatch_refresh_errors_total":     true,
	"eanwatch_refresh_duration_seconds": true,
	"eanwatch_changes_detected_total":   true,

	// Quality metrics.
	"eanwatch_quality_distribution": true,

	// EAN-Search API metrics.
	"eanwatch_api_calls_total":            true,
	"eanwatch_api_daily_usage":            true,
	"eanwatch_api_daily_limit_hits_total": true,
	"eanwatch_credits_remaining":          true,

	// Alert metrics.
	"eanwatch_alerts_fired_total":            true,
	"eanwatch_notification_failures_total":   true,
	"eanwatch_notification_duration_seconds": true,

	// Scheduler metrics.
	"eanwatch_scheduler_next_refresh_timestamp_seconds": true,
	"eanwatch_scheduler_next_prune_timestamp_seconds":   true,

	// Recording rules.
	"eanwatch:http_requests:rate5m":   true,
	"eanwatch:http_errors:rate5m":     true,
	"eanwatch:refresh_watches:rate5m": true,
	"eanwatch:refresh_errors:rate5m":  true,
	"eanwatch:api_calls:rate5m":       true,

	// Standard Prometheus metrics referenced in dashboards.
	"up":                         true,
	"process_start_time_seconds": true,
}

// Config controls which artifacts the generator produces and where they go.
type Config struct {
	OutputDir        string
	DashboardEnabled bool
	RulesEnabled     bool
}

// DefaultConfig returns a Config that generates all artifacts into ../../deploy
// (relative to tools/dashgen/).
func DefaultConfig() Config {
	return Config{
		OutputDir:        "../../deploy",
		DashboardEnabled: true,
		RulesEnabled:     true,
	}
}

// Validate checks that the config is usable.
func (c Config) Validate() error {
	if c.OutputDir == "" {
		return errors.New("output directory must be set")
	}
	if !c.DashboardEnabled && !c.RulesEnabled {
		return errors.New("at least one of dashboard or rules must be enabled")
	}
	return nil
}
