package authgraph

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/MrEthical07/authgraph/graphs"
)

// Config is the engine configuration. The zero value is not valid; start
// from the Builder defaults or a YAML file decoded over them.
type Config struct {
	Graph     GraphConfig     `yaml:"graph"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Audit     AuditConfig     `yaml:"audit"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Logging   LoggingConfig   `yaml:"logging"`
}

/*
====================================
GRAPH CONFIG
====================================
*/

// GraphConfig controls graph selection and the settings handed to every
// attempt.
type GraphConfig struct {
	// DefaultGraph runs when a request names no graph.
	DefaultGraph string `yaml:"default_graph"`
	// CrossPlatformProvider names the provider attached to attempts that do
	// not pick one. Empty runs without a provider.
	CrossPlatformProvider string `yaml:"cross_platform_provider"`
	// PreferredPlatform is the platform graph the Default resolver picks when
	// it is registered.
	PreferredPlatform           string `yaml:"preferred_platform"`
	RequireCrossPlatformAccount bool   `yaml:"require_cross_platform_account"`
	PersistentLogin             bool   `yaml:"persistent_login"`
	DeveloperToolAddress        string `yaml:"developer_tool_address"`
	DeveloperToolCredentialName string `yaml:"developer_tool_credential_name"`
	// FirstPartyLoginURL enables the first-party provider when set.
	FirstPartyLoginURL string        `yaml:"first_party_login_url"`
	FirstPartyTimeout  time.Duration `yaml:"first_party_timeout"`
	AutomatedTesting   bool          `yaml:"automated_testing"`
	// MaxTransientRetries caps node-local retries. Zero is unbounded.
	MaxTransientRetries int `yaml:"max_transient_retries"`
	// FanOutLimit bounds concurrent credential exchanges. Zero is unbounded.
	FanOutLimit int `yaml:"fan_out_limit"`
}

/*
====================================
RATE LIMIT CONFIG
====================================
*/

// RateLimitConfig throttles failed credential exchanges. It requires a Redis
// client on the Builder.
type RateLimitConfig struct {
	Enabled             bool          `yaml:"enabled"`
	MaxExchangeAttempts int           `yaml:"max_exchange_attempts"`
	Cooldown            time.Duration `yaml:"cooldown"`
	EnableIPThrottle    bool          `yaml:"enable_ip_throttle"`
	RedisPrefix         string        `yaml:"redis_prefix"`
}

/*
====================================
AUDIT / METRICS / LOGGING
====================================
*/

type AuditConfig struct {
	Enabled    bool `yaml:"enabled"`
	BufferSize int  `yaml:"buffer_size"`
	DropIfFull bool `yaml:"drop_if_full"`
}

type MetricsConfig struct {
	Enabled                 bool `yaml:"enabled"`
	EnableLatencyHistograms bool `yaml:"enable_latency_histograms"`
}

// LoggingConfig configures the default logger. It is ignored when the
// Builder is given a logger.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`
	// Format is json or text.
	Format string `yaml:"format"`
}

/*
====================================
DEFAULT CONFIG
====================================
*/

// DefaultConfig returns the configuration a new Builder starts from.
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		Graph: GraphConfig{
			DefaultGraph:      graphs.Default,
			FirstPartyTimeout: 10 * time.Second,
		},
		RateLimit: RateLimitConfig{
			Enabled:             false,
			MaxExchangeAttempts: 10,
			Cooldown:            15 * time.Minute,
			RedisPrefix:         "ag:x",
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: false,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

func cloneConfig(cfg Config) Config {
	return cfg
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}

// Validate reports the first configuration problem found. Every returned
// error wraps ErrInvalidConfig.
func (c *Config) Validate() error {
	// Graph
	if strings.TrimSpace(c.Graph.DefaultGraph) == "" {
		return invalid("Graph DefaultGraph must not be empty")
	}
	if c.Graph.MaxTransientRetries < 0 {
		return invalid("Graph MaxTransientRetries must be >= 0")
	}
	if c.Graph.FanOutLimit < 0 {
		return invalid("Graph FanOutLimit must be >= 0")
	}
	if c.Graph.FirstPartyLoginURL != "" {
		u, err := url.Parse(c.Graph.FirstPartyLoginURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return invalid("Graph FirstPartyLoginURL must be an absolute http(s) URL")
		}
		if c.Graph.FirstPartyTimeout <= 0 {
			return invalid("Graph FirstPartyTimeout must be > 0")
		}
	}
	if c.Graph.DeveloperToolCredentialName != "" && c.Graph.DeveloperToolAddress == "" {
		return invalid("Graph DeveloperToolCredentialName requires DeveloperToolAddress")
	}

	// Rate limit
	if c.RateLimit.Enabled {
		if c.RateLimit.MaxExchangeAttempts <= 0 {
			return invalid("RateLimit MaxExchangeAttempts must be > 0")
		}
		if c.RateLimit.Cooldown <= 0 {
			return invalid("RateLimit Cooldown must be > 0")
		}
		if strings.TrimSpace(c.RateLimit.RedisPrefix) == "" {
			return invalid("RateLimit RedisPrefix must not be empty")
		}
	}

	// Audit
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return invalid("Audit BufferSize must be > 0 when audit is enabled")
	}

	// Metrics
	if c.Metrics.EnableLatencyHistograms && !c.Metrics.Enabled {
		return invalid("Metrics EnableLatencyHistograms requires Metrics Enabled")
	}

	// Logging
	if _, err := parseLevel(c.Logging.Level); err != nil {
		return invalid("Logging Level: %v", err)
	}
	switch c.Logging.Format {
	case "", "json", "text":
	default:
		return invalid("Logging Format must be 'json' or 'text'")
	}

	return nil
}

func parseLevel(s string) (slog.Level, error) {
	if s == "" {
		return slog.LevelInfo, nil
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, err
	}
	return level, nil
}

/*
====================================
YAML LOADING
====================================
*/

// LoadConfig decodes YAML from r over DefaultConfig and validates the result.
// Unknown keys are rejected. Durations use Go syntax, for example "15m".
func LoadConfig(r io.Reader) (Config, error) {
	cfg := defaultConfig()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("%w: decode yaml: %w", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfigFile reads the YAML file at path.
func LoadConfigFile(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer f.Close()
	return LoadConfig(f)
}
