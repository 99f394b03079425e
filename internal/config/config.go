package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/mmcdole/shelf/internal/domain"
	"github.com/mmcdole/shelf/internal/prefs"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Library LibraryConfig `mapstructure:"library"`
	History HistoryConfig `mapstructure:"history"`
	UI      UIConfig      `mapstructure:"ui"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// LibraryConfig holds storage configuration
type LibraryConfig struct {
	DataDir string `mapstructure:"data_dir"` // Directory holding shelf.db
}

// HistoryConfig seeds history preferences that have never been set in the app
type HistoryConfig struct {
	ScopeMode          string `mapstructure:"scope_mode"`           // "category", "source", "status", "ungrouped"
	NavigationMode     string `mapstructure:"navigation_mode"`      // "dropdown" or "tabs"
	SectionNavigation  bool   `mapstructure:"section_navigation"`   // Scope history to the active section
	ShowHiddenSections bool   `mapstructure:"show_hidden_sections"` // Include hidden categories
}

// UIConfig holds UI configuration
type UIConfig struct {
	Theme      string `mapstructure:"theme"`
	DateFormat string `mapstructure:"date_format"`
	Timezone   string `mapstructure:"timezone"` // IANA name; empty uses the local zone
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Library: LibraryConfig{
			DataDir: defaultDataPath(),
		},
		History: HistoryConfig{
			ScopeMode:         "category",
			NavigationMode:    string(domain.NavigationDropdown),
			SectionNavigation: true,
		},
		UI: UIConfig{
			Theme:      "default",
			DateFormat: "Monday, Jan 2 2006",
		},
		Logging: LoggingConfig{
			File:  defaultLogPath(),
			Level: "INFO",
		},
	}
}

// PreferenceDefaults converts the history section into preference defaults.
func (c *Config) PreferenceDefaults() (prefs.Defaults, error) {
	mode, ok := domain.ParseScopeMode(c.History.ScopeMode)
	if !ok {
		return prefs.Defaults{}, fmt.Errorf("invalid history.scope_mode %q", c.History.ScopeMode)
	}
	nav := domain.NavigationMode(c.History.NavigationMode)
	switch nav {
	case domain.NavigationDropdown, domain.NavigationTabs:
	case "":
		nav = domain.NavigationDropdown
	default:
		return prefs.Defaults{}, fmt.Errorf("invalid history.navigation_mode %q", c.History.NavigationMode)
	}
	return prefs.Defaults{
		ScopeMode:         mode,
		NavigationMode:    nav,
		SectionNavigation: c.History.SectionNavigation,
		ShowHidden:        c.History.ShowHiddenSections,
	}, nil
}

// defaultLogPath returns the default log file path for the current OS
func defaultLogPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "shelf", "shelf.log")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "shelf", "shelf.log")
	}
}

// defaultDataPath returns the default data directory for the current OS
func defaultDataPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("LOCALAPPDATA"), "shelf")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "shelf")
	}
}

// defaultConfigPath returns the default config file path for the current OS
func defaultConfigPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "shelf")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "shelf")
	}
}

// LoadConfig loads configuration from file and environment
func LoadConfig() (*Config, error) {
	return load(viper.New(), defaultConfigPath())
}

// LoadConfigFrom loads configuration from the config.yaml in dir
func LoadConfigFrom(dir string) (*Config, error) {
	return load(viper.New(), dir)
}

func load(v *viper.Viper, dir string) (*Config, error) {
	cfg := DefaultConfig()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)

	// Environment variable overrides (SHELF_LOGGING_LEVEL etc.)
	v.SetEnvPrefix("SHELF")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindDefaults(v, cfg)

	// Read config file if it exists
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	var err error
	if cfg.Library.DataDir, err = ExpandPath(cfg.Library.DataDir); err != nil {
		return nil, fmt.Errorf("invalid library.data_dir: %w", err)
	}
	if cfg.Logging.File, err = ExpandPath(cfg.Logging.File); err != nil {
		return nil, fmt.Errorf("invalid logging.file: %w", err)
	}

	return cfg, nil
}

// ExpandPath replaces a leading ~ with the user's home directory. Other
// paths, including ~user forms, are returned unchanged.
func ExpandPath(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") && !strings.HasPrefix(path, `~\`) {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, path[1:]), nil
}

// bindDefaults registers every key so AutomaticEnv can override it.
func bindDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("library.data_dir", cfg.Library.DataDir)
	v.SetDefault("history.scope_mode", cfg.History.ScopeMode)
	v.SetDefault("history.navigation_mode", cfg.History.NavigationMode)
	v.SetDefault("history.section_navigation", cfg.History.SectionNavigation)
	v.SetDefault("history.show_hidden_sections", cfg.History.ShowHiddenSections)
	v.SetDefault("ui.theme", cfg.UI.Theme)
	v.SetDefault("ui.date_format", cfg.UI.DateFormat)
	v.SetDefault("ui.timezone", cfg.UI.Timezone)
	v.SetDefault("logging.file", cfg.Logging.File)
	v.SetDefault("logging.level", cfg.Logging.Level)
}

// SaveConfig saves the configuration to config.yaml in the default config directory
func SaveConfig(cfg *Config) error {
	return SaveConfigTo(cfg, defaultConfigPath())
}

// SaveConfigTo saves the configuration to config.yaml in dir
func SaveConfigTo(cfg *Config, dir string) error {
	// Ensure config directory exists
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	v := viper.New()

	// Set fields individually to ensure correct key names (snake_case)
	v.Set("library.data_dir", cfg.Library.DataDir)

	v.Set("history.scope_mode", cfg.History.ScopeMode)
	v.Set("history.navigation_mode", cfg.History.NavigationMode)
	v.Set("history.section_navigation", cfg.History.SectionNavigation)
	v.Set("history.show_hidden_sections", cfg.History.ShowHiddenSections)

	v.Set("ui.theme", cfg.UI.Theme)
	v.Set("ui.date_format", cfg.UI.DateFormat)
	v.Set("ui.timezone", cfg.UI.Timezone)

	v.Set("logging.file", cfg.Logging.File)
	v.Set("logging.level", cfg.Logging.Level)

	configFile := filepath.Join(dir, "config.yaml")
	if err := v.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Location resolves the configured timezone used for day headers.
func (c *Config) Location() (*time.Location, error) {
	if c.UI.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.UI.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid ui.timezone %q: %w", c.UI.Timezone, err)
	}
	return loc, nil
}
