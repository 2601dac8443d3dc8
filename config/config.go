// ABOUTME: Configuration for the backend connection and client behaviour
// ABOUTME: Reads config.yaml under the XDG config dir, .env files and SALESCRM_* environment overrides
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	// AppName names the config and data directories.
	AppName = "salescrm"

	// EnvPrefix prefixes every environment override, e.g. SALESCRM_API_URL.
	EnvPrefix = "SALESCRM"

	DefaultAPIURL      = "http://localhost:8000"
	DefaultPageSize    = 10
	DefaultSearchDelay = 400 * time.Millisecond
	DefaultOrdering    = "id"
	DefaultLogLevel    = "info"
	DefaultTokenStore  = "file"
	DefaultRateLimit   = 10.0
	DefaultBurst       = 5
	DefaultTimeout     = 30 * time.Second
)

// Keys accepted by Set and shown by Keys.
const (
	KeyAPIURL         = "api_url"
	KeyPageSize       = "page_size"
	KeySearchDelay    = "search_delay"
	KeyOrdering       = "ordering"
	KeyLogLevel       = "log_level"
	KeyLogFile        = "log_file"
	KeyTokenStore     = "token_store"
	KeyRateLimit      = "rate_limit"
	KeyBurst          = "burst"
	KeyTimeout        = "timeout"
	KeyConfirmDeletes = "confirm_deletes"
)

// Config holds client settings.
type Config struct {
	APIURL      string
	PageSize    int
	SearchDelay time.Duration
	Ordering    string
	LogLevel    string
	// LogFile receives logs while the TUI owns the terminal. Empty means
	// $XDG_STATE_HOME/salescrm/salescrm.log.
	LogFile    string
	TokenStore string
	// RateLimit is requests per second; zero disables pacing.
	RateLimit float64
	Burst     int
	Timeout   time.Duration
	// ConfirmDeletes asks before every delete, not just on the entities that always ask.
	ConfirmDeletes bool

	// Path is the file the config was read from, or would be saved to.
	Path string

	v *viper.Viper
}

// DefaultPath returns the XDG-compliant config file path.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, AppName, "config.yaml")
}

// DefaultLogPath returns where the TUI writes logs.
func DefaultLogPath() string {
	return filepath.Join(xdg.StateHome, AppName, AppName+".log")
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetDefault(KeyAPIURL, DefaultAPIURL)
	v.SetDefault(KeyPageSize, DefaultPageSize)
	v.SetDefault(KeySearchDelay, DefaultSearchDelay)
	v.SetDefault(KeyOrdering, DefaultOrdering)
	v.SetDefault(KeyLogLevel, DefaultLogLevel)
	v.SetDefault(KeyLogFile, "")
	v.SetDefault(KeyTokenStore, DefaultTokenStore)
	v.SetDefault(KeyRateLimit, DefaultRateLimit)
	v.SetDefault(KeyBurst, DefaultBurst)
	v.SetDefault(KeyTimeout, DefaultTimeout)
	v.SetDefault(KeyConfirmDeletes, false)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the config file at path (DefaultPath when empty). A missing
// file is not an error. A .env file in the working directory is loaded into
// the environment first, without overriding variables already set.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	if path == "" {
		path = DefaultPath()
	}

	v := newViper()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	cfg := &Config{Path: path, v: v}
	cfg.refresh()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the built-in defaults plus environment overrides.
func Default() *Config {
	cfg := &Config{Path: DefaultPath(), v: newViper()}
	cfg.refresh()
	return cfg
}

func (c *Config) refresh() {
	c.APIURL = strings.TrimRight(c.v.GetString(KeyAPIURL), "/")
	c.PageSize = c.v.GetInt(KeyPageSize)
	c.SearchDelay = c.v.GetDuration(KeySearchDelay)
	c.Ordering = c.v.GetString(KeyOrdering)
	c.LogLevel = c.v.GetString(KeyLogLevel)
	c.LogFile = c.v.GetString(KeyLogFile)
	c.TokenStore = c.v.GetString(KeyTokenStore)
	c.RateLimit = c.v.GetFloat64(KeyRateLimit)
	c.Burst = c.v.GetInt(KeyBurst)
	c.Timeout = c.v.GetDuration(KeyTimeout)
	c.ConfirmDeletes = c.v.GetBool(KeyConfirmDeletes)
}

// Validate rejects settings the client cannot run with.
func (c *Config) Validate() error {
	if !strings.HasPrefix(c.APIURL, "http://") && !strings.HasPrefix(c.APIURL, "https://") {
		return fmt.Errorf("%s must be an http(s) URL, got %q", KeyAPIURL, c.APIURL)
	}
	if c.PageSize < 1 {
		return fmt.Errorf("%s must be positive, got %d", KeyPageSize, c.PageSize)
	}
	if c.SearchDelay < 0 {
		return fmt.Errorf("%s must not be negative", KeySearchDelay)
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("%s must not be negative", KeyRateLimit)
	}
	switch c.TokenStore {
	case "file", "keyring":
	default:
		return fmt.Errorf("%s must be file or keyring, got %q", KeyTokenStore, c.TokenStore)
	}
	return nil
}

// Set changes one key in memory. Call Save to persist it.
func (c *Config) Set(key, value string) error {
	if !isKey(key) {
		return fmt.Errorf("unknown config key %q (want one of %s)", key, strings.Join(Keys(), ", "))
	}

	prev := c.v.Get(key)
	c.v.Set(key, value)
	c.refresh()
	if err := c.Validate(); err != nil {
		c.v.Set(key, prev)
		c.refresh()
		return err
	}
	return nil
}

// SetAPIURL overrides the backend URL for this run, e.g. from a flag.
func (c *Config) SetAPIURL(url string) error {
	return c.Set(KeyAPIURL, url)
}

// Get returns the effective value of key as text.
func (c *Config) Get(key string) (string, error) {
	if !isKey(key) {
		return "", fmt.Errorf("unknown config key %q", key)
	}
	return fmt.Sprint(c.v.Get(key)), nil
}

// Save writes the config file with 0600 permissions.
func (c *Config) Save() error {
	if err := os.MkdirAll(filepath.Dir(c.Path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := c.v.WriteConfigAs(c.Path); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return os.Chmod(c.Path, 0600)
}

// Keys lists every config key, sorted.
func Keys() []string {
	keys := []string{
		KeyAPIURL, KeyPageSize, KeySearchDelay, KeyOrdering, KeyLogLevel, KeyLogFile,
		KeyTokenStore, KeyRateLimit, KeyBurst, KeyTimeout, KeyConfirmDeletes,
	}
	sort.Strings(keys)
	return keys
}

func isKey(key string) bool {
	for _, k := range Keys() {
		if k == key {
			return true
		}
	}
	return false
}
