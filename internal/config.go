package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds the client configuration. Values come from defaults, then the
// YAML config file, then NEGOKART_* environment variables (a .env file is
// honored), in that order of precedence.
type Config struct {
	APIBase        string
	PollInterval   time.Duration
	RequestTimeout time.Duration
	LogLevel       string
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		APIBase:        "http://localhost:8000",
		PollInterval:   DefaultPollInterval,
		RequestTimeout: 30 * time.Second,
		LogLevel:       "info",
	}
}

// DefaultConfigPath returns the config file inside the user config
// directory.
func DefaultConfigPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve config directory: %w", err)
	}
	return filepath.Join(dir, "negokart", "config.yaml"), nil
}

// fileConfig is the YAML shape of the config file. Durations are strings in
// Go duration syntax ("10s", "1m").
type fileConfig struct {
	APIBase        string `yaml:"api_base"`
	PollInterval   string `yaml:"poll_interval"`
	RequestTimeout string `yaml:"request_timeout"`
	LogLevel       string `yaml:"log_level"`
}

// LoadConfig loads configuration from the given path. An empty path means
// the default location; a missing file just yields defaults.
func LoadConfig(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := DefaultConfig()

	if path == "" {
		var err error
		if path, err = DefaultConfigPath(); err != nil {
			return nil, err
		}
	}

	raw, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		LogDebug("no config file at %s, using defaults", path)
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	default:
		var fc fileConfig
		if err := yaml.Unmarshal(raw, &fc); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
		if err := cfg.apply(fc); err != nil {
			return nil, fmt.Errorf("invalid config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) apply(fc fileConfig) error {
	if fc.APIBase != "" {
		c.APIBase = fc.APIBase
	}
	if fc.LogLevel != "" {
		c.LogLevel = fc.LogLevel
	}
	if fc.PollInterval != "" {
		d, err := time.ParseDuration(fc.PollInterval)
		if err != nil {
			return fmt.Errorf("poll_interval: %w", err)
		}
		c.PollInterval = d
	}
	if fc.RequestTimeout != "" {
		d, err := time.ParseDuration(fc.RequestTimeout)
		if err != nil {
			return fmt.Errorf("request_timeout: %w", err)
		}
		c.RequestTimeout = d
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("NEGOKART_API_BASE"); v != "" {
		c.APIBase = v
	}
	if v := os.Getenv("NEGOKART_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("NEGOKART_POLL_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("NEGOKART_POLL_INTERVAL: %w", err)
		}
		c.PollInterval = d
	}
	if v := os.Getenv("NEGOKART_REQUEST_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("NEGOKART_REQUEST_TIMEOUT: %w", err)
		}
		c.RequestTimeout = d
	}
	return nil
}
