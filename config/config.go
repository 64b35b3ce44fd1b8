package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix namespaces every environment variable read by Load.
const EnvPrefix = "BARGAINS"

// Config holds catalog browser configuration.
type Config struct {
	DatasetURL      string        `envconfig:"DATASET_URL" validate:"omitempty,url"`
	DatasetFile     string        `envconfig:"DATASET_FILE"`
	PageSize        int           `envconfig:"PAGE_SIZE" validate:"gt=0"`
	AdvanceDelay    time.Duration `envconfig:"ADVANCE_DELAY"`
	TopN            int           `envconfig:"TOP_N" validate:"gt=0"`
	CacheSize       int           `envconfig:"CACHE_SIZE" validate:"gte=0"`
	Locale          string        `envconfig:"LOCALE" validate:"required"`
	Timeout         time.Duration `envconfig:"TIMEOUT"`
	MaxRetries      int           `envconfig:"MAX_RETRIES" validate:"gte=0"`
	RetryBackoff    time.Duration `envconfig:"RETRY_BACKOFF"`
	RetryBackoffMax time.Duration `envconfig:"RETRY_BACKOFF_MAX"`
	MaxBodySize     int           `envconfig:"MAX_BODY_SIZE" validate:"gt=0"`
	UserAgent       string        `envconfig:"USER_AGENT" validate:"required"`
	OutputFile      string        `envconfig:"OUTPUT"`
	OutputFormat    string        `envconfig:"FORMAT" validate:"omitempty,oneof=csv json dual"`
	MetricsAddr     string        `envconfig:"METRICS_ADDR"`
	Verbose         bool          `envconfig:"VERBOSE"`
}

// DefaultConfig returns defaults matching the browser's behaviour.
func DefaultConfig() *Config {
	return &Config{
		DatasetURL:      "http://localhost:3000/products.csv",
		PageSize:        30,
		AdvanceDelay:    300 * time.Millisecond,
		TopN:            12,
		CacheSize:       64,
		Locale:          "en-NZ",
		Timeout:         10 * time.Second,
		MaxRetries:      2,
		RetryBackoff:    200 * time.Millisecond,
		RetryBackoffMax: 2 * time.Second,
		MaxBodySize:     32 << 20,
		UserAgent:       "go-bargains/1.0",
		OutputFormat:    "csv",
	}
}

// Load starts from DefaultConfig and applies BARGAINS_* environment
// variables on top.
func Load() (*Config, error) {
	cfg := DefaultConfig()
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}
	return cfg, nil
}

var validate = validator.New()

// Validate ensures all configuration values are coherent.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			if fe.Param() != "" {
				return fmt.Errorf("invalid %s: must satisfy %s=%s", fe.Field(), fe.Tag(), fe.Param())
			}
			return fmt.Errorf("invalid %s: must satisfy %s", fe.Field(), fe.Tag())
		}
		return fmt.Errorf("validate config: %w", err)
	}

	if c.DatasetURL == "" && c.DatasetFile == "" {
		return fmt.Errorf("dataset URL or dataset file must be set")
	}
	if c.DatasetFile == "" {
		parsedURL, err := url.Parse(c.DatasetURL)
		if err != nil {
			return fmt.Errorf("invalid dataset URL: %w", err)
		}
		if parsedURL.Host == "" {
			return fmt.Errorf("dataset URL must include a host")
		}
	}

	if c.AdvanceDelay < 0 {
		return fmt.Errorf("advance delay cannot be negative")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.RetryBackoff < 0 {
		return fmt.Errorf("retry backoff cannot be negative")
	}
	if c.RetryBackoffMax < 0 {
		return fmt.Errorf("retry backoff max cannot be negative")
	}
	if c.RetryBackoffMax > 0 && c.RetryBackoff > c.RetryBackoffMax {
		return fmt.Errorf("retry backoff (%s) cannot exceed retry backoff max (%s)", c.RetryBackoff, c.RetryBackoffMax)
	}
	if c.OutputFile != "" && c.OutputFormat == "" {
		return fmt.Errorf("output format is required when an output file is set")
	}

	return nil
}
