// Package config loads the settings shared by the toolkit primitives from a
// YAML or JSON file.
//
// Both formats are decoded strictly: unknown keys and trailing data are
// errors. Zero values take defaults, negative values are rejected.
//
//	observe:
//	  service_name: importer
//	  logging: {enabled: true, level: info}
//	retry:
//	  schedule: ["100ms", "1s", "5s"]
//	fanout:
//	  concurrency: 8
//	  rate_per_sec: 20
//	batch:
//	  size: 500
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/jonwraymond/toolkit/fanout"
	"github.com/jonwraymond/toolkit/observe"
	"github.com/jonwraymond/toolkit/resilience"
)

// DefaultBatchSize is used when batch.size is unset.
const DefaultBatchSize = 100

var (
	// ErrInvalid is wrapped by every validation failure.
	ErrInvalid = errors.New("config: invalid configuration")

	// ErrUnknownFormat is returned for a format other than json or yaml.
	ErrUnknownFormat = errors.New("config: unknown format")
)

// Format names a configuration file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks YAML for .yaml and .yml files and JSON otherwise.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Config is the top-level configuration document.
type Config struct {
	Observe observe.Config `json:"observe"`
	Retry   RetryConfig    `json:"retry"`
	FanOut  FanOutConfig   `json:"fanout"`
	Batch   BatchConfig    `json:"batch"`
}

// RetryConfig configures retried calls.
type RetryConfig struct {
	// Schedule lists the waits between attempts, e.g. ["100ms", "1s"].
	Schedule []string `json:"schedule,omitempty"`

	// AttemptTimeout bounds each attempt, e.g. "2s". Empty means unbounded.
	AttemptTimeout string `json:"attempt_timeout,omitempty"`
}

// FanOutConfig configures bounded fan-out runs.
type FanOutConfig struct {
	// Concurrency caps in-flight worker calls. Default: runtime.GOMAXPROCS(0)
	Concurrency int `json:"concurrency,omitempty"`

	// RatePerSec throttles dispatch. Zero disables throttling.
	RatePerSec float64 `json:"rate_per_sec,omitempty"`

	// Burst is the limiter bucket size. Default: 1 when RatePerSec is set.
	Burst int `json:"burst,omitempty"`

	StopOnError bool `json:"stop_on_error,omitempty"`
}

// BatchConfig configures batch processing.
type BatchConfig struct {
	// Size is the number of items per batch. Default: 100
	Size int `json:"size,omitempty"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads the file at path, expands ${VAR} references with ExpandEnv,
// then decodes and validates it.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	data, err = ExpandEnv(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	cfg, err := Parse(data, FormatFromPath(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes and validates a configuration document.
func Parse(data []byte, format Format) (*Config, error) {
	switch format {
	case FormatYAML:
		j, err := yamlToJSON(data)
		if err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
		data = j
	case FormatJSON:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	var cfg Config
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	// reject trailing tokens (e.g. concatenated JSON)
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			return nil, errors.New("config: trailing data")
		}
		return nil, fmt.Errorf("config: decode: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.FanOut.Concurrency == 0 {
		c.FanOut.Concurrency = runtime.GOMAXPROCS(0)
	}
	if c.FanOut.RatePerSec > 0 && c.FanOut.Burst == 0 {
		c.FanOut.Burst = 1
	}
	if c.Batch.Size == 0 {
		c.Batch.Size = DefaultBatchSize
	}
}

// ObserveEnabled reports whether the observe section is configured.
func (c *Config) ObserveEnabled() bool {
	o := c.Observe
	return o.ServiceName != "" || o.Tracing.Enabled || o.Metrics.Enabled || o.Logging.Enabled
}

// Validate checks every section and returns the first problem found.
func (c *Config) Validate() error {
	if c.ObserveEnabled() {
		if err := c.Observe.Validate(); err != nil {
			return fmt.Errorf("%w: observe: %w", ErrInvalid, err)
		}
	}
	if _, err := c.RetrySchedule(); err != nil {
		return fmt.Errorf("%w: retry.schedule: %w", ErrInvalid, err)
	}
	if _, err := c.AttemptTimeout(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if c.FanOut.Concurrency < 0 {
		return fmt.Errorf("%w: fanout.concurrency must be >= 0, got %d", ErrInvalid, c.FanOut.Concurrency)
	}
	if c.FanOut.RatePerSec < 0 {
		return fmt.Errorf("%w: fanout.rate_per_sec must be >= 0, got %g", ErrInvalid, c.FanOut.RatePerSec)
	}
	if c.FanOut.Burst < 0 {
		return fmt.Errorf("%w: fanout.burst must be >= 0, got %d", ErrInvalid, c.FanOut.Burst)
	}
	if c.Batch.Size < 0 {
		return fmt.Errorf("%w: batch.size must be >= 0, got %d", ErrInvalid, c.Batch.Size)
	}
	return nil
}

// RetrySchedule parses the configured retry waits.
func (c *Config) RetrySchedule() (resilience.Schedule, error) {
	return resilience.ParseSchedule(c.Retry.Schedule)
}

// AttemptTimeout parses retry.attempt_timeout. Empty yields 0.
func (c *Config) AttemptTimeout() (time.Duration, error) {
	s := strings.TrimSpace(c.Retry.AttemptTimeout)
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("retry.attempt_timeout: invalid duration %q: %w", c.Retry.AttemptTimeout, err)
	}
	if d < 0 {
		return 0, errors.New("retry.attempt_timeout: duration must be >= 0")
	}
	return d, nil
}

// FanOutOptions translates the fanout section into fanout options.
func (c *Config) FanOutOptions() []fanout.Option {
	var opts []fanout.Option
	if c.FanOut.RatePerSec > 0 {
		opts = append(opts, fanout.WithRateLimit(rate.Limit(c.FanOut.RatePerSec), c.FanOut.Burst))
	}
	if c.FanOut.StopOnError {
		opts = append(opts, fanout.WithStopOnError())
	}
	return opts
}

// RetryFor builds a retry configuration from the retry section.
func RetryFor[T any](c *Config) (resilience.RetryConfig[T], error) {
	schedule, err := c.RetrySchedule()
	if err != nil {
		return resilience.RetryConfig[T]{}, err
	}
	timeout, err := c.AttemptTimeout()
	if err != nil {
		return resilience.RetryConfig[T]{}, err
	}
	return resilience.RetryConfig[T]{Schedule: schedule, AttemptTimeout: timeout}, nil
}
