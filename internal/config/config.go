package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/rs/zerolog"
)

// SearchConfig holds search and suggestion settings
type SearchConfig struct {
	DefaultItemSort  string  `toml:"default_item_sort"` // name, az, za, recent
	SuggestThreshold float64 `toml:"suggest_threshold"`
	MaxSuggestions   int     `toml:"max_suggestions"`
}

// StoreConfig holds catalog store settings
type StoreConfig struct {
	DeletePolicy string `toml:"delete_policy"` // remove_references, delete_recipes
}

// DisplayConfig holds display settings
type DisplayConfig struct {
	ShowIDs  bool `toml:"show_ids"`
	ShowDesc bool `toml:"show_desc"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level string `toml:"level"`
}

// IconsConfig holds icon blob settings
type IconsConfig struct {
	Dir string `toml:"dir"`
}

// UserConfig holds user-configurable settings loaded from TOML
type UserConfig struct {
	Search  SearchConfig  `toml:"search"`
	Store   StoreConfig   `toml:"store"`
	Display DisplayConfig `toml:"display"`
	Log     LogConfig     `toml:"log"`
	Icons   IconsConfig   `toml:"icons"`
}

// Config holds application configuration
type Config struct {
	DatabasePath string
	ConfigPath   string
	User         *UserConfig
}

// DefaultUserConfig returns the default user configuration
func DefaultUserConfig() *UserConfig {
	return &UserConfig{
		Search: SearchConfig{
			DefaultItemSort:  "name",
			SuggestThreshold: 0.3, // Low enough to catch transposed letters
			MaxSuggestions:   3,
		},
		Store: StoreConfig{
			DeletePolicy: "remove_references",
		},
		Display: DisplayConfig{
			ShowIDs:  false,
			ShowDesc: true,
		},
		Log: LogConfig{
			Level: "warn",
		},
	}
}

// Load returns the configuration with resolved paths
func Load() (*Config, error) {
	dbPath, err := getDatabasePath()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		DatabasePath: dbPath,
		ConfigPath:   filepath.Join(filepath.Dir(dbPath), "config.toml"),
		User:         DefaultUserConfig(),
	}

	// Try to load user config from file
	if err := cfg.loadUserConfig(); err != nil {
		// Only return error if it's not a "file not found" error
		if !os.IsNotExist(err) {
			return nil, err
		}
	}

	return cfg, nil
}

// loadUserConfig loads user configuration from TOML file
func (c *Config) loadUserConfig() error {
	data, err := os.ReadFile(c.ConfigPath)
	if err != nil {
		return err
	}

	// Start with defaults
	userCfg := DefaultUserConfig()

	// Decode TOML over defaults (missing values keep defaults)
	if _, err := toml.Decode(string(data), userCfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}

	c.User = userCfg
	return nil
}

// LogLevel resolves the log level: $CRAFTBOOK_LOG wins over the config
// file. Unknown names fall back to warn.
func (c *Config) LogLevel() zerolog.Level {
	name := c.User.Log.Level
	if env := os.Getenv("CRAFTBOOK_LOG"); env != "" {
		name = env
	}
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(name)))
	if err != nil || level == zerolog.NoLevel {
		return zerolog.WarnLevel
	}
	return level
}

// IconDir returns the icon blob directory with ~ and variables expanded,
// or "" when none is configured.
func (c *Config) IconDir() (string, error) {
	if c.User.Icons.Dir == "" {
		return "", nil
	}
	return ExpandPath(c.User.Icons.Dir)
}

// CreateDefaultConfigFile creates the config file with default values if it doesn't exist
func (c *Config) CreateDefaultConfigFile() error {
	// Check if file already exists
	if _, err := os.Stat(c.ConfigPath); err == nil {
		return nil // File exists, don't overwrite
	}

	// Ensure directory exists
	if err := c.EnsureConfigDir(); err != nil {
		return err
	}

	defaultConfig := `[search]
default_item_sort = "name"  # name, az, za, recent
suggest_threshold = 0.3
max_suggestions = 3

[store]
delete_policy = "remove_references"  # remove_references, delete_recipes

[display]
show_ids = false
show_desc = true

[log]
level = "warn"

[icons]
dir = ""
`

	return os.WriteFile(c.ConfigPath, []byte(defaultConfig), 0644)
}

// FormatConfig returns the current configuration as a formatted string
func (c *Config) FormatConfig() string {
	return fmt.Sprintf(`Configuration file: %s
Catalog file: %s.toml

[search]
default_item_sort = "%s"
suggest_threshold = %.1f
max_suggestions = %d

[store]
delete_policy = "%s"

[display]
show_ids = %t
show_desc = %t

[log]
level = "%s"

[icons]
dir = "%s"
`, c.ConfigPath, c.DatabasePath,
		c.User.Search.DefaultItemSort, c.User.Search.SuggestThreshold, c.User.Search.MaxSuggestions,
		c.User.Store.DeletePolicy,
		c.User.Display.ShowIDs, c.User.Display.ShowDesc,
		c.User.Log.Level,
		c.User.Icons.Dir)
}

// getDatabasePath returns the catalog base path based on priority:
// 1. $CRAFTBOOK_DB environment variable
// 2. $XDG_CONFIG_HOME/craftbook/catalog
// 3. ~/.config/craftbook/catalog
func getDatabasePath() (string, error) {
	// Check CRAFTBOOK_DB env var first
	if envPath := os.Getenv("CRAFTBOOK_DB"); envPath != "" {
		return envPath, nil
	}

	// Check XDG_CONFIG_HOME
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "craftbook", "catalog"), nil
	}

	// Default to ~/.config/craftbook/catalog
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(home, ".config", "craftbook", "catalog"), nil
}

// EnsureConfigDir creates the config directory if it doesn't exist
func (c *Config) EnsureConfigDir() error {
	dir := filepath.Dir(c.DatabasePath)
	return os.MkdirAll(dir, 0755)
}

// ExpandPath expands ~, ., and environment variables in a path
func ExpandPath(path string) (string, error) {
	// Expand ~ to home directory
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		path = filepath.Join(home, path[1:])
	}

	// Expand environment variables
	path = os.ExpandEnv(path)

	// Convert to absolute path (handles . and ..)
	return filepath.Abs(path)
}
