package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// FireflyConfig holds the API and token service settings
type FireflyConfig struct {
	BaseURL     string        `yaml:"base_url" env:"FIREFLY_BASE_URL" env-default:"https://firefly-api.adobe.io"`
	TokenURL    string        `yaml:"token_url" env:"FIREFLY_TOKEN_URL"`
	AccessToken string        `yaml:"access_token" env:"FIREFLY_ACCESS_TOKEN"`
	APIKey      string        `yaml:"api_key" env:"FIREFLY_API_KEY"`
	Timeout     time.Duration `yaml:"timeout" env:"FIREFLY_TIMEOUT" env-default:"60s"`
}

// HTTPConfig holds the web front-end settings
type HTTPConfig struct {
	Addr           string `yaml:"addr" env:"HTTP_ADDR" env-default:":8080"`
	MaxUploadBytes int64  `yaml:"max_upload_bytes" env:"HTTP_MAX_UPLOAD_BYTES" env-default:"10485760"`
}

// ScheduleConfig holds the scheduled text to image job settings
type ScheduleConfig struct {
	Spec      string `yaml:"spec" env:"SCHEDULE_SPEC" env-default:"0 */5 * * * *"`
	Prompt    string `yaml:"prompt" env:"SCHEDULE_PROMPT"`
	OutputDir string `yaml:"output_dir" env:"SCHEDULE_OUTPUT_DIR"`
}

// Config holds all configuration for the application
type Config struct {
	Env      string         `yaml:"env" env:"APP_ENV" env-default:"local"`
	Firefly  FireflyConfig  `yaml:"firefly"`
	HTTP     HTTPConfig     `yaml:"http"`
	Schedule ScheduleConfig `yaml:"schedule"`
}

// Load loads the configuration from an optional .env file, the YAML file at
// path when it is not empty, and environment variables
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	cfg := &Config{}
	if path != "" {
		if err := cleanenv.ReadConfig(path, cfg); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	} else {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("error reading environment: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks required fields
func (c *Config) Validate() error {
	if c.Firefly.APIKey == "" {
		return fmt.Errorf("FIREFLY_API_KEY is required")
	}
	if c.Firefly.TokenURL == "" && c.Firefly.AccessToken == "" {
		return fmt.Errorf("one of FIREFLY_TOKEN_URL or FIREFLY_ACCESS_TOKEN is required")
	}
	if err := checkURL(c.Firefly.BaseURL); err != nil {
		return fmt.Errorf("FIREFLY_BASE_URL: %w", err)
	}
	if c.Firefly.TokenURL != "" {
		if err := checkURL(c.Firefly.TokenURL); err != nil {
			return fmt.Errorf("FIREFLY_TOKEN_URL: %w", err)
		}
	}
	if c.Firefly.Timeout <= 0 {
		return fmt.Errorf("FIREFLY_TIMEOUT must be positive")
	}
	if c.HTTP.MaxUploadBytes <= 0 {
		return fmt.Errorf("HTTP_MAX_UPLOAD_BYTES must be positive")
	}
	return nil
}

func checkURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("missing host")
	}
	return nil
}
