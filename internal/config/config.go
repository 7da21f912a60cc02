package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config represents the browser configuration
type Config struct {
	// Archive settings
	BaseURL   string `mapstructure:"base_url" yaml:"base_url"`     // server root, e.g. https://myrient.erista.me
	StartPath string `mapstructure:"start_path" yaml:"start_path"` // directory opened first
	PathFloor int    `mapstructure:"path_floor" yaml:"path_floor"` // segments "up" never goes above

	// Fetch settings
	ProxyURL          string  `mapstructure:"proxy_url" yaml:"proxy_url"`                     // allorigins-style relay prefix, empty for direct
	Timeout           int     `mapstructure:"timeout" yaml:"timeout"`                         // seconds per listing request
	Retries           int     `mapstructure:"retries" yaml:"retries"`                         // extra attempts per listing request
	RequestsPerSecond float64 `mapstructure:"requests_per_second" yaml:"requests_per_second"` // listing throttle, 0 disables
	UserAgent         string  `mapstructure:"user_agent" yaml:"user_agent"`

	// Download settings
	DownloadDir      string `mapstructure:"download_dir" yaml:"download_dir"`           // local target root
	Concurrency      int    `mapstructure:"concurrency" yaml:"concurrency"`             // parallel downloads
	DownloadAttempts int    `mapstructure:"download_attempts" yaml:"download_attempts"` // tries per file
	ExtractZip       bool   `mapstructure:"extract_zip" yaml:"extract_zip"`             // unzip .zip files in place
}

// LoadConfig loads configuration from an optional file, environment variables
// and defaults. An empty path skips the file.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("base_url", "https://myrient.erista.me")
	v.SetDefault("start_path", "/files/No-Intro/")
	v.SetDefault("path_floor", 2)
	v.SetDefault("proxy_url", "")
	v.SetDefault("timeout", 30)
	v.SetDefault("retries", 2)
	v.SetDefault("requests_per_second", 0)
	v.SetDefault("user_agent", "myrient-browser")
	v.SetDefault("download_dir", "downloads")
	v.SetDefault("concurrency", 4)
	v.SetDefault("download_attempts", 3)
	v.SetDefault("extract_zip", false)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	// Read environment variables
	v.SetEnvPrefix("MYRIENT")
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if !strings.HasPrefix(c.BaseURL, "http://") && !strings.HasPrefix(c.BaseURL, "https://") {
		return fmt.Errorf("base_url must be an http(s) URL, got %q", c.BaseURL)
	}
	if c.PathFloor < 0 {
		return fmt.Errorf("path_floor must be >= 0, got %d", c.PathFloor)
	}
	if c.Retries < 0 {
		return fmt.Errorf("retries must be >= 0, got %d", c.Retries)
	}
	if c.Concurrency < 1 || c.Concurrency > 100 {
		return fmt.Errorf("concurrency must be between 1 and 100, got %d", c.Concurrency)
	}
	if c.DownloadAttempts < 1 {
		return fmt.Errorf("download_attempts must be >= 1, got %d", c.DownloadAttempts)
	}
	return nil
}

// RequestTimeout returns the listing timeout as a duration
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

// YAML renders the configuration in the config file format.
func (c *Config) YAML() ([]byte, error) {
	return yaml.Marshal(c)
}
