package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultAPIBaseURL is the trade service host.
	DefaultAPIBaseURL = "https://trade-service.wealthsimple.com"

	// DefaultHomeCurrency is the currency foreign quotes are converted into.
	DefaultHomeCurrency = "CAD"

	// DefaultLogLevel keeps the CLI quiet unless something goes wrong.
	DefaultLogLevel = "warn"

	appName  = "wst"
	fileName = "config.yaml"
)

// Environment variables that override values from the config file.
const (
	EnvEmail          = "WST_EMAIL"
	EnvAPIBaseURL     = "WST_API_BASE_URL"
	EnvDefaultAccount = "WST_DEFAULT_ACCOUNT"
	EnvLogLevel       = "WST_LOG_LEVEL"
	EnvTradingEnabled = "WST_TRADING_ENABLED"
)

// ErrTradingDisabled is returned when an order command runs while trading is off.
var ErrTradingDisabled = errors.New("trading is disabled: set trading_enabled: true in the config file or WST_TRADING_ENABLED=true")

// Config holds the CLI configuration.
type Config struct {
	Email          string `yaml:"email,omitempty"`
	DefaultAccount string `yaml:"default_account,omitempty"`
	APIBaseURL     string `yaml:"api_base_url"`
	HomeCurrency   string `yaml:"home_currency"`
	TradingEnabled bool   `yaml:"trading_enabled"`
	LogLevel       string `yaml:"log_level"`
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	return &Config{
		APIBaseURL:   DefaultAPIBaseURL,
		HomeCurrency: DefaultHomeCurrency,
		LogLevel:     DefaultLogLevel,
	}
}

// ConfigDir returns the directory holding the config file. It honours
// XDG_CONFIG_HOME and falls back to ~/.config.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appName)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", appName)
}

// ConfigPath returns the full path of the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), fileName)
}

// Load reads the config file at path. A missing file yields the defaults;
// fields absent from the file keep their default values.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.fillDefaults()
	return cfg, nil
}

// LoadWithEnv loads the config file at path and applies environment overrides.
func LoadWithEnv(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes cfg to path, creating the directory if needed. The file is
// only readable by the current user.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// LoadDotenv loads variables from the given .env files, or ./.env when none
// are named, into the process environment. Missing files are skipped and
// variables already set are left alone.
func LoadDotenv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

// ApplyEnv overrides config values with the WST_* environment variables that
// are set and non-empty.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv(EnvEmail); v != "" {
		c.Email = v
	}
	if v := os.Getenv(EnvAPIBaseURL); v != "" {
		c.APIBaseURL = v
	}
	if v := os.Getenv(EnvDefaultAccount); v != "" {
		c.DefaultAccount = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv(EnvTradingEnabled); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s value %q: %w", EnvTradingEnabled, v, err)
		}
		c.TradingEnabled = enabled
	}
	return nil
}

// CheckTrading returns ErrTradingDisabled unless trading is enabled.
func (c *Config) CheckTrading() error {
	if !c.TradingEnabled {
		return ErrTradingDisabled
	}
	return nil
}

func (c *Config) fillDefaults() {
	if c.APIBaseURL == "" {
		c.APIBaseURL = DefaultAPIBaseURL
	}
	if c.HomeCurrency == "" {
		c.HomeCurrency = DefaultHomeCurrency
	}
	c.HomeCurrency = strings.ToUpper(c.HomeCurrency)
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
}
