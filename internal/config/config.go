package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvAPIURL overrides the configured backend URL.
const EnvAPIURL = "SPARES_API_URL"

// Config represents the spares configuration
type Config struct {
	APIURL                string  `yaml:"api_url"`
	Category              string  `yaml:"category,omitempty"`
	DebounceMS            int     `yaml:"debounce_ms"`
	MinQueryLength        int     `yaml:"min_query_length"`
	FetchTimeoutMS        int     `yaml:"fetch_timeout_ms"`
	RateLimit             float64 `yaml:"rate_limit"`
	CacheTTLSeconds       int     `yaml:"cache_ttl_seconds"`
	PopularRefreshSeconds int     `yaml:"popular_refresh_seconds"`
	HistoryLocation       string  `yaml:"history_location,omitempty"`
	LogFile               string  `yaml:"log_file,omitempty"`
	Debug                 bool    `yaml:"debug"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		APIURL:                "http://localhost:8080",
		DebounceMS:            300,
		MinQueryLength:        2,
		FetchTimeoutMS:        5000,
		RateLimit:             5,
		CacheTTLSeconds:       60,
		PopularRefreshSeconds: 300,
	}
}

// Debounce is the quiet period before a lookup.
func (c *Config) Debounce() time.Duration {
	return time.Duration(c.DebounceMS) * time.Millisecond
}

// FetchTimeout bounds each backend request.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutMS) * time.Millisecond
}

// CacheTTL is how long lookups are reused. Zero disables the cache, which
// the fetcher spells as a negative TTL.
func (c *Config) CacheTTL() time.Duration {
	if c.CacheTTLSeconds == 0 {
		return -1
	}
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// PopularRefresh is the popular-search refresh interval.
func (c *Config) PopularRefresh() time.Duration {
	return time.Duration(c.PopularRefreshSeconds) * time.Second
}

// ApplyEnv overrides file values with environment variables.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv(EnvAPIURL); v != "" {
		c.APIURL = v
	}
}

// LoadEnvFile loads KEY=VALUE pairs from path into the process environment.
// A missing file is not an error. Variables already set are kept.
func LoadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// DefaultDir is ~/.config/spares.
func DefaultDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "spares"), nil
}

// ConfigManager manages configuration persistence
type ConfigManager struct {
	configPath string
}

// NewConfigManager creates a new configuration manager
func NewConfigManager() (*ConfigManager, error) {
	configDir, err := DefaultDir()
	if err != nil {
		return nil, err
	}

	return &ConfigManager{
		configPath: filepath.Join(configDir, "config.yaml"),
	}, nil
}

// NewConfigManagerWithPath creates a config manager with custom config path
func NewConfigManagerWithPath(configPath string) *ConfigManager {
	return &ConfigManager{
		configPath: configPath,
	}
}

// Load reads and validates the configuration, or returns the defaults if the
// file doesn't exist.
func (cm *ConfigManager) Load() (*Config, error) {
	config, err := cm.Read()
	if err != nil {
		return nil, err
	}

	if err := Validate(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// Read parses the configuration file without validating it. Keys missing
// from the file keep their defaults.
func (cm *ConfigManager) Read() (*Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(cm.configPath)
	if errors.Is(err, fs.ErrNotExist) {
		return config, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// Save writes the configuration to file
func (cm *ConfigManager) Save(config *Config) error {
	if err := Validate(config); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	configDir := filepath.Dir(cm.configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(cm.configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks ranges and the backend URL.
func Validate(config *Config) error {
	u, err := url.Parse(config.APIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("api_url must be an http or https URL")
	}
	if config.DebounceMS <= 0 {
		return fmt.Errorf("debounce_ms must be greater than 0")
	}
	if config.MinQueryLength < 1 || config.MinQueryLength > 10 {
		return fmt.Errorf("min_query_length must be between 1 and 10")
	}
	if config.FetchTimeoutMS <= 0 {
		return fmt.Errorf("fetch_timeout_ms must be greater than 0")
	}
	if config.RateLimit <= 0 {
		return fmt.Errorf("rate_limit must be greater than 0")
	}
	if config.CacheTTLSeconds < 0 {
		return fmt.Errorf("cache_ttl_seconds cannot be negative")
	}
	if config.PopularRefreshSeconds <= 0 {
		return fmt.Errorf("popular_refresh_seconds must be greater than 0")
	}
	return nil
}

// GetConfigPath returns the path to the config file
func (cm *ConfigManager) GetConfigPath() string {
	return cm.configPath
}

// Update modifies a specific configuration value
func (cm *ConfigManager) Update(key, value string) error {
	config, err := cm.Read()
	if err != nil {
		return err
	}

	switch key {
	case "api-url":
		config.APIURL = value
	case "category":
		config.Category = value
	case "debounce-ms":
		config.DebounceMS, err = parseInt(key, value)
	case "min-query-length":
		config.MinQueryLength, err = parseInt(key, value)
	case "fetch-timeout-ms":
		config.FetchTimeoutMS, err = parseInt(key, value)
	case "rate-limit":
		config.RateLimit, err = strconv.ParseFloat(value, 64)
		if err != nil {
			err = fmt.Errorf("invalid number for rate-limit: %s", value)
		}
	case "cache-ttl-seconds":
		config.CacheTTLSeconds, err = parseInt(key, value)
	case "popular-refresh-seconds":
		config.PopularRefreshSeconds, err = parseInt(key, value)
	case "history-location":
		config.HistoryLocation = value
	case "log-file":
		config.LogFile = value
	case "debug":
		switch value {
		case "true":
			config.Debug = true
		case "false":
			config.Debug = false
		default:
			return fmt.Errorf("invalid boolean value for debug: %s (must be 'true' or 'false')", value)
		}
	default:
		return fmt.Errorf("unknown configuration key: %s", key)
	}
	if err != nil {
		return err
	}

	return cm.Save(config)
}

// Get returns the value for a specific configuration key
func (cm *ConfigManager) Get(key string) (string, error) {
	values, err := cm.List()
	if err != nil {
		return "", err
	}

	value, ok := values[key]
	if !ok {
		return "", fmt.Errorf("unknown configuration key: %s", key)
	}
	return value, nil
}

// List returns all configuration keys and values
func (cm *ConfigManager) List() (map[string]string, error) {
	config, err := cm.Read()
	if err != nil {
		return nil, err
	}
	return values(config), nil
}

// Keys returns every configuration key in sorted order.
func Keys() []string {
	all := values(DefaultConfig())
	keys := make([]string, 0, len(all))
	for k := range all {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func values(config *Config) map[string]string {
	return map[string]string{
		"api-url":                 config.APIURL,
		"category":                orDefault(config.Category, "[all]"),
		"debounce-ms":             strconv.Itoa(config.DebounceMS),
		"min-query-length":        strconv.Itoa(config.MinQueryLength),
		"fetch-timeout-ms":        strconv.Itoa(config.FetchTimeoutMS),
		"rate-limit":              strconv.FormatFloat(config.RateLimit, 'g', -1, 64),
		"cache-ttl-seconds":       strconv.Itoa(config.CacheTTLSeconds),
		"popular-refresh-seconds": strconv.Itoa(config.PopularRefreshSeconds),
		"history-location":        orDefault(config.HistoryLocation, "[default]"),
		"log-file":                orDefault(config.LogFile, "[none]"),
		"debug":                   strconv.FormatBool(config.Debug),
	}
}

func parseInt(key, value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid integer value for %s: %s", key, value)
	}
	return n, nil
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
