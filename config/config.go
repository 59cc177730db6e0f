package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/c360/travelstreams/errors"
)

// Duration wraps time.Duration for JSON configs, accepting either a
// duration string ("2s") or a number of nanoseconds.
type Duration time.Duration

// UnmarshalJSON implements json.Unmarshaler
func (d *Duration) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", value, err)
		}
		*d = Duration(parsed)
		return nil
	default:
		return fmt.Errorf("invalid duration value: %v", v)
	}
}

// MarshalJSON implements json.Marshaler
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config represents the full process configuration
type Config struct {
	Platform PlatformConfig `json:"platform"`
	NATS     NATSConfig     `json:"nats"`
	Catalog  CatalogConfig  `json:"catalog"`
	Engine   EngineConfig   `json:"engine"`
	Gateway  GatewayConfig  `json:"gateway"`
	Metrics  MetricsConfig  `json:"metrics"`
}

// PlatformConfig defines process identity
type PlatformConfig struct {
	Org         string `json:"org"`                   // Organization namespace (e.g., "c360")
	ID          string `json:"id"`                    // Process identifier (e.g., "travel1")
	Environment string `json:"environment,omitempty"` // "prod", "dev", "test"
}

// NATSConfig defines NATS connection settings
type NATSConfig struct {
	URLs          []string `json:"urls,omitempty"`
	MaxReconnects int      `json:"max_reconnects,omitempty"`
	ReconnectWait Duration `json:"reconnect_wait,omitempty"`
	Username      string   `json:"username,omitempty"`
	Password      string   `json:"password,omitempty"`
	Token         string   `json:"token,omitempty"`
}

// CatalogConfig controls synthetic catalog generation
type CatalogConfig struct {
	Seed         int64 `json:"seed,omitempty"`           // 0 means time-based
	Total        int   `json:"total,omitempty"`          // total flights to generate
	NearTermDays int   `json:"near_term_days,omitempty"` // days guaranteed fully bookable
}

// EngineConfig controls call pacing. Zero values fall back to the
// engine defaults; delays can be disabled per environment for tests
// and load drills.
type EngineConfig struct {
	QueryDelayMin   Duration `json:"query_delay_min,omitempty"`
	QueryDelayMax   Duration `json:"query_delay_max,omitempty"`
	MonitorInterval Duration `json:"monitor_interval,omitempty"`
	CheckoutDelay   Duration `json:"checkout_delay,omitempty"`
	ChatDelay       Duration `json:"chat_delay,omitempty"`
	DisableDelays   bool     `json:"disable_delays,omitempty"`
}

// GatewayConfig controls the NATS gateway and the chat bridge
type GatewayConfig struct {
	SubjectPrefix string `json:"subject_prefix,omitempty"` // default "travel"
	ChatAddr      string `json:"chat_addr,omitempty"`      // websocket bridge listen address
}

// MetricsConfig controls the Prometheus endpoint
type MetricsConfig struct {
	Enabled bool   `json:"enabled"`
	Port    int    `json:"port,omitempty"`
	Path    string `json:"path,omitempty"`
}

// Default returns a runnable local configuration.
func Default() *Config {
	return &Config{
		Platform: PlatformConfig{
			Org:         "c360",
			ID:          "travel1",
			Environment: "dev",
		},
		NATS: NATSConfig{
			URLs:          []string{"nats://localhost:4222"},
			MaxReconnects: -1,
			ReconnectWait: Duration(2 * time.Second),
		},
		Catalog: CatalogConfig{
			Total:        5000,
			NearTermDays: 10,
		},
		Gateway: GatewayConfig{
			SubjectPrefix: "travel",
			ChatAddr:      ":8085",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Port:    9090,
			Path:    "/metrics",
		},
	}
}

// Validate checks if the config is valid
func (c *Config) Validate() error {
	if c.Platform.Org == "" {
		return errors.WrapInvalid(
			fmt.Errorf("%w: platform.org is required", errors.ErrMissingConfig),
			"config", "Validate", "platform identity")
	}

	c.Platform.Org = strings.ToLower(c.Platform.Org)
	if !isValidSubjectPart(c.Platform.Org) {
		return errors.WrapInvalid(
			fmt.Errorf("%w: platform.org %q is not valid for NATS subjects", errors.ErrInvalidConfig, c.Platform.Org),
			"config", "Validate", "platform identity")
	}

	if c.Platform.ID == "" {
		return errors.WrapInvalid(
			fmt.Errorf("%w: platform.id is required", errors.ErrMissingConfig),
			"config", "Validate", "platform identity")
	}

	if len(c.NATS.URLs) == 0 {
		return errors.WrapInvalid(
			fmt.Errorf("%w: nats.urls is required", errors.ErrMissingConfig),
			"config", "Validate", "nats settings")
	}

	if c.Catalog.Total < 0 {
		return errors.WrapInvalid(
			fmt.Errorf("%w: catalog.total cannot be negative", errors.ErrInvalidConfig),
			"config", "Validate", "catalog settings")
	}

	if c.Gateway.SubjectPrefix != "" && !isValidSubjectPart(c.Gateway.SubjectPrefix) {
		return errors.WrapInvalid(
			fmt.Errorf("%w: gateway.subject_prefix %q is not valid for NATS subjects",
				errors.ErrInvalidConfig, c.Gateway.SubjectPrefix),
			"config", "Validate", "gateway settings")
	}

	min, max := c.Engine.QueryDelayMin.Std(), c.Engine.QueryDelayMax.Std()
	if min < 0 || max < 0 || (max > 0 && min > max) {
		return errors.WrapInvalid(
			fmt.Errorf("%w: engine query delay bounds min=%s max=%s", errors.ErrInvalidConfig, min, max),
			"config", "Validate", "engine settings")
	}

	return nil
}

// Load reads, parses, and validates a config file. An empty path
// returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := safeReadFile(path)
		if err != nil {
			return nil, errors.WrapInvalid(err, "config", "Load", "read config file")
		}
		if err := validateJSONDepth(data); err != nil {
			return nil, errors.WrapInvalid(err, "config", "Load", "check JSON structure")
		}
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, errors.WrapInvalid(err, "config", "Load", "parse config file")
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides lets deployment environments override the file.
func (c *Config) applyEnvOverrides() error {
	overrides := []struct {
		key   string
		apply func(string)
	}{
		{"TRAVELSTREAMS_NATS_URL", func(v string) { c.NATS.URLs = strings.Split(v, ",") }},
		{"TRAVELSTREAMS_NATS_TOKEN", func(v string) { c.NATS.Token = v }},
		{"TRAVELSTREAMS_ENV", func(v string) { c.Platform.Environment = v }},
	}

	for _, o := range overrides {
		value := os.Getenv(o.key)
		if value == "" {
			continue
		}
		if err := validateEnvVar(o.key, value); err != nil {
			return errors.WrapInvalid(err, "config", "applyEnvOverrides", "check environment")
		}
		o.apply(value)
	}
	return nil
}

// ToJSON converts config to JSON string for debugging
func (c *Config) ToJSON() (string, error) {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// isValidSubjectPart checks if a string is valid for use in NATS
// subjects: alphanumeric, dots, dashes, and underscores.
func isValidSubjectPart(s string) bool {
	if len(s) == 0 {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '.' || r == '-' || r == '_':
		default:
			return false
		}
	}
	return true
}
