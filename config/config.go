// ABOUTME: Application configuration stored at XDG paths
// ABOUTME: Loads JSON settings, a local .env file, and PROSPECT_* environment overrides
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/adrg/xdg"
	"github.com/harperreed/prospect/charm"
	"github.com/joho/godotenv"
)

const (
	AppName = "prospect"

	BackendSQLite = "sqlite"
	BackendCharm  = "charm"

	DefaultLocale   = "pt-BR"
	DefaultTagLimit = 20
	DefaultScreen   = "crm"
	DefaultLogLevel = "info"
	DefaultWebPort  = 10666
)

// Config is the persisted application configuration.
type Config struct {
	Backend       string `json:"backend"`
	DBPath        string `json:"db_path"`
	CharmHost     string `json:"charm_host,omitempty"`
	CharmAutoSync bool   `json:"charm_auto_sync"`
	Locale        string `json:"locale"`
	TagLimit      int    `json:"tag_limit"`
	Screen        string `json:"screen"`
	LogLevel      string `json:"log_level"`
	WebPort       int    `json:"web_port"`
	UserID        string `json:"user_id,omitempty"`
}

// Dir returns the XDG config directory for the application.
func Dir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Path returns the XDG config file path.
func Path() string {
	return filepath.Join(Dir(), "config.json")
}

// DefaultDBPath returns the XDG data path for the SQLite database.
func DefaultDBPath() string {
	return filepath.Join(xdg.DataHome, AppName, "prospect.db")
}

// Default returns a config with every field at its default.
func Default() *Config {
	return &Config{
		Backend:       BackendSQLite,
		DBPath:        DefaultDBPath(),
		CharmHost:     charm.DefaultCharmHost,
		CharmAutoSync: true,
		Locale:        DefaultLocale,
		TagLimit:      DefaultTagLimit,
		Screen:        DefaultScreen,
		LogLevel:      DefaultLogLevel,
		WebPort:       DefaultWebPort,
	}
}

// Load reads the config file at Path, then applies .env and environment
// overrides.
func Load() (*Config, error) {
	return LoadFrom(Path())
}

// LoadFrom reads the config file at path. A missing file yields defaults.
// Environment variables override file values:
// - PROSPECT_BACKEND
// - PROSPECT_DB_PATH
// - PROSPECT_CHARM_HOST
// - PROSPECT_CHARM_AUTO_SYNC
// - PROSPECT_LOCALE
// - PROSPECT_TAG_LIMIT
// - PROSPECT_SCREEN
// - PROSPECT_LOG_LEVEL
// - PROSPECT_WEB_PORT
// - PROSPECT_USER_ID
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to decode config %s: %w", path, err)
		}
	case os.IsNotExist(err):
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// .env only fills variables that are not already set
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	cfg.fillDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("PROSPECT_BACKEND"); v != "" {
		cfg.Backend = v
	}
	if v := os.Getenv("PROSPECT_DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("PROSPECT_CHARM_HOST"); v != "" {
		cfg.CharmHost = v
	}
	if v := os.Getenv("PROSPECT_CHARM_AUTO_SYNC"); v != "" {
		cfg.CharmAutoSync = v == "true" || v == "1"
	}
	if v := os.Getenv("PROSPECT_LOCALE"); v != "" {
		cfg.Locale = v
	}
	if v := os.Getenv("PROSPECT_TAG_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PROSPECT_TAG_LIMIT %q: %w", v, err)
		}
		cfg.TagLimit = n
	}
	if v := os.Getenv("PROSPECT_SCREEN"); v != "" {
		cfg.Screen = v
	}
	if v := os.Getenv("PROSPECT_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("PROSPECT_WEB_PORT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PROSPECT_WEB_PORT %q: %w", v, err)
		}
		cfg.WebPort = n
	}
	if v := os.Getenv("PROSPECT_USER_ID"); v != "" {
		cfg.UserID = v
	}
	return nil
}

func (c *Config) fillDefaults() {
	d := Default()
	c.Backend = strings.ToLower(strings.TrimSpace(c.Backend))
	if c.Backend == "" {
		c.Backend = d.Backend
	}
	if c.DBPath == "" {
		c.DBPath = d.DBPath
	}
	if c.CharmHost == "" {
		c.CharmHost = d.CharmHost
	}
	if c.Locale == "" {
		c.Locale = d.Locale
	}
	if c.Screen == "" {
		c.Screen = d.Screen
	}
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
	if c.WebPort == 0 {
		c.WebPort = d.WebPort
	}
}

// Validate checks enumerated and numeric fields.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendSQLite, BackendCharm:
	default:
		return fmt.Errorf("unknown backend %q (want %s or %s)", c.Backend, BackendSQLite, BackendCharm)
	}
	if c.TagLimit < 0 {
		return fmt.Errorf("tag_limit must not be negative")
	}
	if c.WebPort <= 0 || c.WebPort > 65535 {
		return fmt.Errorf("web_port %d out of range", c.WebPort)
	}
	return nil
}

// Charm returns the charm connection settings.
func (c *Config) Charm() *charm.Config {
	cfg := charm.DefaultConfig()
	cfg.Host = c.CharmHost
	cfg.AutoSync = c.CharmAutoSync
	return cfg
}

// Save writes the config to Path.
func (c *Config) Save() error {
	return c.SaveTo(Path())
}

// SaveTo writes the config to path with restricted permissions.
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
