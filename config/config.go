package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode"

	"gopkg.in/yaml.v3"

	"github.com/c360/ringwindow/errors"
)

// EnvPrefix prefixes every environment override
const EnvPrefix = "RINGWINDOW"

// Supported file formats
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Config represents the complete service configuration
type Config struct {
	Buffer  BufferConfig  `json:"buffer" yaml:"buffer"`
	NATS    NATSConfig    `json:"nats" yaml:"nats"`
	Metrics MetricsConfig `json:"metrics" yaml:"metrics"`
	Log     LogConfig     `json:"log" yaml:"log"`
}

// BufferConfig configures the sample window and its ring
type BufferConfig struct {
	Name                 string  `json:"name" yaml:"name"`
	Capacity             int     `json:"capacity" yaml:"capacity"`
	AllowOverwrite       bool    `json:"allow_overwrite" yaml:"allow_overwrite"`
	ValidateSchema       bool    `json:"validate_schema" yaml:"validate_schema"`
	DegradedEvictionRate float64 `json:"degraded_eviction_rate" yaml:"degraded_eviction_rate"`

	// IngestWorkers > 0 ingests NATS payloads on a worker pool with an
	// IngestQueue-sized queue; 0 ingests on the delivery goroutine.
	IngestWorkers int `json:"ingest_workers" yaml:"ingest_workers"`
	IngestQueue   int `json:"ingest_queue" yaml:"ingest_queue"`
}

// NATSConfig defines the NATS connection and the subject samples arrive on.
// An empty URL disables NATS ingestion.
type NATSConfig struct {
	URL           string   `json:"url" yaml:"url"`
	Subject       string   `json:"subject" yaml:"subject"`
	Name          string   `json:"name,omitempty" yaml:"name,omitempty"`
	Timeout       Duration `json:"timeout" yaml:"timeout"`
	MaxReconnects int      `json:"max_reconnects" yaml:"max_reconnects"`
	ReconnectWait Duration `json:"reconnect_wait" yaml:"reconnect_wait"`
}

// MetricsConfig defines the HTTP server exposing metrics, health and the window
type MetricsConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Port    int    `json:"port" yaml:"port"`
	Path    string `json:"path" yaml:"path"`
}

// LogConfig defines logging output
type LogConfig struct {
	Level  string `json:"level" yaml:"level"`   // debug, info, warn, error
	Format string `json:"format" yaml:"format"` // json, text
}

// Default returns the configuration used when no file is given
func Default() *Config {
	return &Config{
		Buffer: BufferConfig{
			Name:                 "samples",
			Capacity:             1024,
			AllowOverwrite:       true,
			DegradedEvictionRate: 0.5,
			IngestWorkers:        2,
			IngestQueue:          4096,
		},
		NATS: NATSConfig{
			Subject:       "samples.>",
			Name:          "ringwindow",
			Timeout:       Duration(5 * time.Second),
			MaxReconnects: -1,
			ReconnectWait: Duration(2 * time.Second),
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Port:    9090,
			Path:    "/metrics",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load reads a JSON or YAML file (chosen by extension) over the defaults,
// applies environment overrides and validates the result.
func Load(path string) (*Config, error) {
	data, err := safeReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.WrapInvalid(
				fmt.Errorf("%w: %s", errors.ErrConfigNotFound, path), "config", "Load", "read file")
		}
		return nil, errors.WrapInvalid(
			fmt.Errorf("%w: %w", errors.ErrInvalidConfig, err), "config", "Load", "read file")
	}

	cfg, err := Parse(data, formatFromPath(path))
	if err != nil {
		return nil, err
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes data in the given format over the defaults. It does not
// validate.
func Parse(data []byte, format string) (*Config, error) {
	cfg := Default()

	switch format {
	case FormatJSON:
		if err := validateJSONDepth(data); err != nil {
			return nil, errors.WrapInvalid(
				fmt.Errorf("%w: %w", errors.ErrInvalidConfig, err), "config", "Parse", "check JSON structure")
		}
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, errors.WrapInvalid(
				fmt.Errorf("%w: %w", errors.ErrInvalidConfig, err), "config", "Parse", "decode JSON")
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.WrapInvalid(
				fmt.Errorf("%w: %w", errors.ErrInvalidConfig, err), "config", "Parse", "decode YAML")
		}
	default:
		return nil, errors.WrapInvalid(
			fmt.Errorf("%w: unsupported format %q", errors.ErrInvalidConfig, format), "config", "Parse", "select decoder")
	}

	return cfg, nil
}

func formatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// ApplyEnv overrides fields from RINGWINDOW_* environment variables
func (c *Config) ApplyEnv() error {
	var parseErr error
	lookup := func(key string) (string, bool) {
		name := EnvPrefix + "_" + key
		val := os.Getenv(name)
		if val == "" {
			return "", false
		}
		if err := validateEnvVar(name, val); err != nil {
			parseErr = err
			return "", false
		}
		return val, true
	}
	setInt := func(key string, dst *int) {
		if val, ok := lookup(key); ok {
			n, err := strconv.Atoi(val)
			if err != nil {
				parseErr = fmt.Errorf("%s_%s: %w", EnvPrefix, key, err)
				return
			}
			*dst = n
		}
	}
	setBool := func(key string, dst *bool) {
		if val, ok := lookup(key); ok {
			b, err := strconv.ParseBool(val)
			if err != nil {
				parseErr = fmt.Errorf("%s_%s: %w", EnvPrefix, key, err)
				return
			}
			*dst = b
		}
	}
	setString := func(key string, dst *string) {
		if val, ok := lookup(key); ok {
			*dst = val
		}
	}

	setString("BUFFER_NAME", &c.Buffer.Name)
	setInt("BUFFER_CAPACITY", &c.Buffer.Capacity)
	setBool("BUFFER_ALLOW_OVERWRITE", &c.Buffer.AllowOverwrite)
	setBool("BUFFER_VALIDATE_SCHEMA", &c.Buffer.ValidateSchema)
	setInt("BUFFER_INGEST_WORKERS", &c.Buffer.IngestWorkers)
	setString("NATS_URL", &c.NATS.URL)
	setString("NATS_SUBJECT", &c.NATS.Subject)
	setBool("METRICS_ENABLED", &c.Metrics.Enabled)
	setInt("METRICS_PORT", &c.Metrics.Port)
	setString("LOG_LEVEL", &c.Log.Level)
	setString("LOG_FORMAT", &c.Log.Format)

	if parseErr != nil {
		return errors.WrapInvalid(
			fmt.Errorf("%w: %w", errors.ErrInvalidConfig, parseErr), "config", "ApplyEnv", "parse environment")
	}
	return nil
}

// Validate checks if the config is valid
func (c *Config) Validate() error {
	if err := c.validate(); err != nil {
		return errors.WrapInvalid(
			fmt.Errorf("%w: %w", errors.ErrInvalidConfig, err), "config", "Validate", "check fields")
	}
	return nil
}

func (c *Config) validate() error {
	if c.Buffer.Name == "" {
		return fmt.Errorf("buffer.name is required")
	}
	if c.Buffer.Capacity < 1 {
		return fmt.Errorf("buffer.capacity must be at least 1, got %d", c.Buffer.Capacity)
	}
	if c.Buffer.DegradedEvictionRate < 0 || c.Buffer.DegradedEvictionRate > 1 {
		return fmt.Errorf("buffer.degraded_eviction_rate must be within [0, 1], got %v", c.Buffer.DegradedEvictionRate)
	}
	if c.Buffer.IngestWorkers < 0 || c.Buffer.IngestQueue < 0 {
		return fmt.Errorf("buffer.ingest_workers and buffer.ingest_queue cannot be negative")
	}

	if c.NATS.URL != "" {
		if !isValidNATSSubject(c.NATS.Subject) {
			return fmt.Errorf("nats.subject %q is not a valid NATS subject", c.NATS.Subject)
		}
		if c.NATS.Timeout <= 0 {
			return fmt.Errorf("nats.timeout must be positive")
		}
		if c.NATS.ReconnectWait < 0 {
			return fmt.Errorf("nats.reconnect_wait cannot be negative")
		}
	}

	if c.Metrics.Enabled {
		if c.Metrics.Port < 1 || c.Metrics.Port > 65535 {
			return fmt.Errorf("metrics.port must be within [1, 65535], got %d", c.Metrics.Port)
		}
		if !strings.HasPrefix(c.Metrics.Path, "/") {
			return fmt.Errorf("metrics.path must start with '/', got %q", c.Metrics.Path)
		}
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level %q must be one of debug, info, warn, error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "text":
	default:
		return fmt.Errorf("log.format %q must be json or text", c.Log.Format)
	}

	return nil
}

// isValidNATSSubject checks dot-separated tokens of letters, digits, '-' and
// '_', with '*' as a whole token and '>' only as the last token.
func isValidNATSSubject(subject string) bool {
	if subject == "" {
		return false
	}

	tokens := strings.Split(subject, ".")
	for i, tok := range tokens {
		switch {
		case tok == "":
			return false
		case tok == "*":
			continue
		case tok == ">":
			if i != len(tokens)-1 {
				return false
			}
			continue
		}
		for _, r := range tok {
			if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-' && r != '_' {
				return false
			}
		}
	}
	return true
}

// String returns a JSON representation of the config
func (c *Config) String() string {
	data, _ := json.MarshalIndent(c, "", "  ")
	return string(data)
}

// Duration is a time.Duration that reads "5s"-style strings or nanosecond
// integers from JSON and YAML.
type Duration time.Duration

// Std returns the value as a time.Duration
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// MarshalJSON writes the duration as a string
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// UnmarshalJSON accepts a duration string or a number of nanoseconds
func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return err
		}
		*d = Duration(parsed)
		return nil
	}

	var n int64
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("duration must be a string or integer: %w", err)
	}
	*d = Duration(n)
	return nil
}

// MarshalYAML writes the duration as a string
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// UnmarshalYAML accepts a duration string or a number of nanoseconds
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	if node.Tag == "!!int" {
		var n int64
		if err := node.Decode(&n); err != nil {
			return err
		}
		*d = Duration(n)
		return nil
	}

	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}
