package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all kitman configuration.
type Config struct {
	// Core settings
	Name string `yaml:"name"`

	// Storage paths
	Storage StorageConfig `yaml:"storage"`

	// Preview rendering limits
	Preview PreviewConfig `yaml:"preview"`

	// Known game servers for assignment
	Servers []string `yaml:"servers"`

	// Console appearance
	UI UIConfig `yaml:"ui"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// StorageConfig locates the two sqlite files. The announcement database is
// owned by this tool; the warehouse is written by the shop backend and only
// read here.
type StorageConfig struct {
	DatabasePath  string `yaml:"database_path"`
	WarehousePath string `yaml:"warehouse_path"`
}

// PreviewConfig bounds the preview surfaces.
type PreviewConfig struct {
	ListLines     int    `yaml:"list_lines"`     // lines shown per row in the list view
	ListWidth     int    `yaml:"list_width"`     // display-width clamp for list previews
	MaxNesting    int    `yaml:"max_nesting"`    // parser nesting bound
	CacheSize     int    `yaml:"cache_size"`     // parse cache entries
	WatchDebounce string `yaml:"watch_debounce"` // settle time before re-render in --watch
}

// UIConfig configures the console appearance.
type UIConfig struct {
	Theme string `yaml:"theme"` // dark, light
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
	Dir   string `yaml:"dir"`   // per-category log files land here
}

// DefaultConfig returns the default configuration. The defaults make the
// tool runnable with no config file present.
func DefaultConfig() *Config {
	return &Config{
		Name: "kitman",

		Storage: StorageConfig{
			DatabasePath:  "data/kitman.db",
			WarehousePath: "data/warehouse.db",
		},

		Preview: PreviewConfig{
			ListLines:     1,
			ListWidth:     60,
			MaxNesting:    64,
			CacheSize:     256,
			WatchDebounce: "200ms",
		},

		Servers: []string{},

		UI: UIConfig{
			Theme: "dark",
		},

		Logging: LoggingConfig{
			Level: "info",
			Dir:   "logs",
		},
	}
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	cwd, err := os.Getwd()
	if err != nil {
		return "kitman.yaml"
	}
	return filepath.Join(cwd, "kitman.yaml")
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults; environment overrides apply either way.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if path := os.Getenv("KITMAN_DB"); path != "" {
		c.Storage.DatabasePath = path
	}
	if path := os.Getenv("KITMAN_WAREHOUSE"); path != "" {
		c.Storage.WarehousePath = path
	}
	if theme := os.Getenv("KITMAN_THEME"); theme != "" {
		c.UI.Theme = theme
	}
	if level := os.Getenv("KITMAN_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
}

// GetWatchDebounce returns the watch settle time as a duration.
func (c *Config) GetWatchDebounce() time.Duration {
	d, err := time.ParseDuration(c.Preview.WatchDebounce)
	if err != nil || d <= 0 {
		return 200 * time.Millisecond
	}
	return d
}

// GetListLines returns the list preview line limit, floored to one line.
func (c *Config) GetListLines() int {
	if c.Preview.ListLines < 1 {
		return 1
	}
	return c.Preview.ListLines
}

// GetListWidth returns the list preview width clamp, floored to a usable
// minimum.
func (c *Config) GetListWidth() int {
	if c.Preview.ListWidth < 10 {
		return 10
	}
	return c.Preview.ListWidth
}

// GetMaxNesting returns the parser nesting bound.
func (c *Config) GetMaxNesting() int {
	if c.Preview.MaxNesting < 1 {
		return 64
	}
	return c.Preview.MaxNesting
}

// GetCacheSize returns the parse cache capacity.
func (c *Config) GetCacheSize() int {
	if c.Preview.CacheSize < 1 {
		return 256
	}
	return c.Preview.CacheSize
}

// ValidThemes lists all supported console themes.
var ValidThemes = []string{"dark", "light"}

// ValidLogLevels lists all supported logging levels.
var ValidLogLevels = []string{"debug", "info", "warn", "error"}

// Validate validates the configuration.
func (c *Config) Validate() error {
	validTheme := false
	for _, t := range ValidThemes {
		if c.UI.Theme == t {
			validTheme = true
			break
		}
	}
	if !validTheme {
		return fmt.Errorf("invalid theme: %s (valid: %v)", c.UI.Theme, ValidThemes)
	}

	validLevel := false
	for _, l := range ValidLogLevels {
		if c.Logging.Level == l {
			validLevel = true
			break
		}
	}
	if !validLevel {
		return fmt.Errorf("invalid log level: %s (valid: %v)", c.Logging.Level, ValidLogLevels)
	}

	if c.Storage.DatabasePath == "" {
		return fmt.Errorf("storage.database_path must not be empty")
	}

	return nil
}
