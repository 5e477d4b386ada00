package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v2"
)

const (
	defaultSessionTTL      = 24 * time.Hour
	defaultWaitInterval    = 3 * time.Second
	defaultWaitMaxAttempts = 20
)

type Config struct {
	Server struct {
		Address        string   `yaml:"address"`
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"server"`
	Platform struct {
		URL    string `yaml:"url"`
		APIKey string `yaml:"api_key"`
	} `yaml:"platform"`
	Polar struct {
		URL           string `yaml:"url"`
		AccessToken   string `yaml:"access_token"`
		WebhookSecret string `yaml:"webhook_secret"`
		ProProductID  string `yaml:"pro_product_id"`
		SuccessURL    string `yaml:"success_url"`
	} `yaml:"polar"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Session struct {
		TTLSeconds int `yaml:"ttl_seconds"`
	} `yaml:"session"`
	LicenseWait struct {
		IntervalSeconds int `yaml:"interval_seconds"`
		MaxAttempts     int `yaml:"max_attempts"`
	} `yaml:"license_wait"`
}

// LoadConfig reads the yaml config and applies environment overrides for the
// secrets that never belong in the file. The path comes from CONFIG_PATH and
// defaults to config/config.yaml.
func LoadConfig() (Config, error) {
	var cfg Config

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config/config.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("unmarshal config: %w", err)
	}

	if v := os.Getenv("PLATFORM_API_KEY"); v != "" {
		cfg.Platform.APIKey = v
	}
	if v := os.Getenv("PLATFORM_API_URL"); v != "" {
		cfg.Platform.URL = v
	}
	if v := os.Getenv("POLAR_ACCESS_TOKEN"); v != "" {
		cfg.Polar.AccessToken = v
	}
	if v := os.Getenv("POLAR_WEBHOOK_SECRET"); v != "" {
		cfg.Polar.WebhookSecret = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("LICENSE_WAIT_INTERVAL_SECONDS"); v != "" {
		secs, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("parse LICENSE_WAIT_INTERVAL_SECONDS: %w", err)
		}
		cfg.LicenseWait.IntervalSeconds = secs
	}

	return cfg, nil
}

// SessionTTL returns the configured session lifetime.
func (c Config) SessionTTL() time.Duration {
	if c.Session.TTLSeconds <= 0 {
		return defaultSessionTTL
	}
	return time.Duration(c.Session.TTLSeconds) * time.Second
}

// WaitInterval returns the license watcher poll interval.
func (c Config) WaitInterval() time.Duration {
	if c.LicenseWait.IntervalSeconds <= 0 {
		return defaultWaitInterval
	}
	return time.Duration(c.LicenseWait.IntervalSeconds) * time.Second
}

// WaitMaxAttempts returns the license watcher attempt budget.
func (c Config) WaitMaxAttempts() int {
	if c.LicenseWait.MaxAttempts <= 0 {
		return defaultWaitMaxAttempts
	}
	return c.LicenseWait.MaxAttempts
}

// ServerAddress returns the listen address, defaulting like the PORT handling
// in main used to.
func (c Config) ServerAddress() string {
	if c.Server.Address == "" {
		return ":4001"
	}
	return c.Server.Address
}

// PolarURL returns the Polar API base, defaulting to production.
func (c Config) PolarURL() string {
	if c.Polar.URL == "" {
		return "https://api.polar.sh"
	}
	return c.Polar.URL
}

// Validate checks the settings without which the service cannot do anything
// useful. Redis is optional: without it the in-memory stores are used.
func (c Config) Validate() error {
	if c.Platform.URL == "" {
		return fmt.Errorf("config: platform.url is required")
	}
	if c.Platform.APIKey == "" {
		return fmt.Errorf("config: platform.api_key is required")
	}
	if c.Polar.WebhookSecret == "" {
		return fmt.Errorf("config: polar.webhook_secret is required")
	}
	return nil
}
