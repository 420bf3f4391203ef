// Package config defines service configuration and its loading.
//
// Values are layered: defaults from New, then an optional YAML file named by
// MATCHDAY_CONFIG, then MATCHDAY_* environment variables.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// MinuteIntervalMS is the real-time length of one simulated minute.
	MinuteIntervalMS int `koanf:"minute_interval_ms"`

	// FrameIntervalMS is the positional frame period.
	FrameIntervalMS int `koanf:"frame_interval_ms"`

	// VARDelayMS is how long a VAR review stays open before it resolves.
	VARDelayMS int `koanf:"var_delay_ms"`

	// HandoffQueueSize bounds the post-match result queue.
	HandoffQueueSize int `koanf:"handoff_queue_size"`

	// HandoffWorkers sets the number of result handoff workers.
	HandoffWorkers int `koanf:"handoff_workers"`

	// ResultsDSN is a sqlite file path for finished results. Empty keeps them in memory.
	ResultsDSN string `koanf:"results_dsn"`

	// Seed feeds the default event generator and the engine rolls. Zero picks a time-based seed.
	Seed int64 `koanf:"seed"`

	// ManagerSide is the side the human manager controls: home or away.
	ManagerSide string `koanf:"manager_side"`

	// CORSOrigins lists origins allowed to call the HTTP API.
	CORSOrigins []string `koanf:"cors_origins"`

	// OTelEndpoint enables OTLP/HTTP trace export when set.
	OTelEndpoint string `koanf:"otel_endpoint"`

	// MetricsEnabled toggles match simulation metrics.
	MetricsEnabled bool `koanf:"metrics_enabled"`

	// MetricsNamespace and MetricsSubsystem name the exported series.
	MetricsNamespace string `koanf:"metrics_namespace"`
	MetricsSubsystem string `koanf:"metrics_subsystem"`

	// MetricsRefreshMS is how often system gauges are sampled.
	MetricsRefreshMS int `koanf:"metrics_refresh_ms"`

	// MetricsLabels are constant key=value labels added to every series.
	MetricsLabels []string `koanf:"metrics_labels"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:         "info",
		LogFormat:        "text",
		Addr:             ":9080",
		MinuteIntervalMS: 1000,
		FrameIntervalMS:  50,
		VARDelayMS:       3000,
		HandoffQueueSize: 64,
		HandoffWorkers:   2,
		ManagerSide:      "home",
		CORSOrigins:      []string{"*"},
		MetricsEnabled:   true,
		MetricsNamespace: "matchday",
		MetricsSubsystem: "engine",
		MetricsRefreshMS: 10000,
	}
}

// MinuteInterval returns MinuteIntervalMS as a duration.
func (c *Config) MinuteInterval() time.Duration {
	return time.Duration(c.MinuteIntervalMS) * time.Millisecond
}

// FrameInterval returns FrameIntervalMS as a duration.
func (c *Config) FrameInterval() time.Duration {
	return time.Duration(c.FrameIntervalMS) * time.Millisecond
}

// VARDelay returns VARDelayMS as a duration.
func (c *Config) VARDelay() time.Duration {
	return time.Duration(c.VARDelayMS) * time.Millisecond
}

// MetricsRefresh returns MetricsRefreshMS as a duration.
func (c *Config) MetricsRefresh() time.Duration {
	return time.Duration(c.MetricsRefreshMS) * time.Millisecond
}

// Validate reports the first invalid field wrapped in ErrInvalidConfig.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.MinuteIntervalMS <= 0:
		return fmt.Errorf("%w: minute_interval_ms must be positive", ErrInvalidConfig)
	case c.FrameIntervalMS <= 0:
		return fmt.Errorf("%w: frame_interval_ms must be positive", ErrInvalidConfig)
	case c.VARDelayMS < 0:
		return fmt.Errorf("%w: var_delay_ms must not be negative", ErrInvalidConfig)
	case c.HandoffQueueSize <= 0:
		return fmt.Errorf("%w: handoff_queue_size must be positive", ErrInvalidConfig)
	case c.HandoffWorkers <= 0:
		return fmt.Errorf("%w: handoff_workers must be positive", ErrInvalidConfig)
	case c.MetricsRefreshMS <= 0:
		return fmt.Errorf("%w: metrics_refresh_ms must be positive", ErrInvalidConfig)
	}
	for _, l := range c.MetricsLabels {
		if k, _, ok := strings.Cut(l, "="); !ok || strings.TrimSpace(k) == "" {
			return fmt.Errorf("%w: metrics_labels entry %q is not key=value", ErrInvalidConfig, l)
		}
	}
	switch strings.ToLower(c.ManagerSide) {
	case "home", "away":
	default:
		return fmt.Errorf("%w: manager_side must be home or away, got %q", ErrInvalidConfig, c.ManagerSide)
	}
	return nil
}
