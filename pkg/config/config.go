package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration options for bedownloader
type Config struct {
	// Behance session settings
	Behance BehanceConfig `yaml:"behance" json:"behance"`

	// Browser automation settings
	Browser BrowserConfig `yaml:"browser" json:"browser"`

	// Download behaviour
	Download DownloadConfig `yaml:"download" json:"download"`

	// Download history location
	History HistoryConfig `yaml:"history" json:"history"`

	// Notification preferences
	Notifications NotificationConfig `yaml:"notifications" json:"notifications"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`

	// Warnings collected while reading config sources. Never fatal.
	Warnings []string `yaml:"-" json:"-"`
}

// BehanceConfig holds site-specific settings
type BehanceConfig struct {
	LocalStorageToken string        `yaml:"local_storage_token" json:"local_storage_token"`
	UserAgent         string        `yaml:"user_agent" json:"user_agent"`
	AuthSettleDelay   time.Duration `yaml:"auth_settle_delay" json:"auth_settle_delay"`
}

// BrowserConfig holds headless browser settings
type BrowserConfig struct {
	ShowBrowser              bool          `yaml:"show_browser" json:"show_browser"`
	UseSystemInstalledChrome bool          `yaml:"use_system_installed_chrome" json:"use_system_installed_chrome"`
	ExecPath                 string        `yaml:"exec_path" json:"exec_path"`
	NavigationTimeout        time.Duration `yaml:"navigation_timeout" json:"navigation_timeout"`
	ScrollStep               int           `yaml:"scroll_step" json:"scroll_step"`
	ScrollDelay              time.Duration `yaml:"scroll_delay" json:"scroll_delay"`
	ScrollStableChecks       int           `yaml:"scroll_stable_checks" json:"scroll_stable_checks"`
	MaxScrolls               int           `yaml:"max_scrolls" json:"max_scrolls"`
}

// DownloadConfig holds download-specific configuration
type DownloadConfig struct {
	Folder                         string        `yaml:"folder" json:"folder"`
	SkipProjectsByHistory          bool          `yaml:"skip_projects_by_history" json:"skip_projects_by_history"`
	ModulesAsGalleries             bool          `yaml:"modules_as_galleries" json:"modules_as_galleries"`
	TurboMode                      bool          `yaml:"turbo_mode" json:"turbo_mode"`
	TimeoutBetweenPagesInTurboMode time.Duration `yaml:"timeout_between_pages_in_turbo_mode" json:"timeout_between_pages_in_turbo_mode"`
	BetweenImagesDelay             time.Duration `yaml:"between_images_delay" json:"between_images_delay"`
	BetweenProjectsDelay           time.Duration `yaml:"between_projects_delay" json:"between_projects_delay"`
	DownloadTimeout                time.Duration `yaml:"download_timeout" json:"download_timeout"`
	RetryAttempts                  int           `yaml:"retry_attempts" json:"retry_attempts"`
	RetryDelay                     time.Duration `yaml:"retry_delay" json:"retry_delay"`
	ValidateImages                 bool          `yaml:"validate_images" json:"validate_images"`
}

// HistoryConfig holds the download history location
type HistoryConfig struct {
	File string `yaml:"file" json:"file"`
}

// NotificationConfig holds notification preferences
type NotificationConfig struct {
	Enabled          bool   `yaml:"enabled" json:"enabled"`
	NotificationType string `yaml:"notification_type" json:"notification_type"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultSettingsDir is where the config and history files live by default
const DefaultSettingsDir = "settings"

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Behance: BehanceConfig{
			UserAgent:       "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
			AuthSettleDelay: 20 * time.Second,
		},
		Browser: BrowserConfig{
			UseSystemInstalledChrome: true,
			NavigationTimeout:        60 * time.Second,
			ScrollStep:               500,
			ScrollDelay:              200 * time.Millisecond,
			ScrollStableChecks:       50,
			MaxScrolls:               5000,
		},
		Download: DownloadConfig{
			Folder:                         "./downloads",
			SkipProjectsByHistory:          true,
			TimeoutBetweenPagesInTurboMode: 10 * time.Second,
			BetweenImagesDelay:             500 * time.Millisecond,
			BetweenProjectsDelay:           2 * time.Second,
			DownloadTimeout:                60 * time.Second,
			RetryAttempts:                  3,
			RetryDelay:                     time.Second,
			ValidateImages:                 true,
		},
		History: HistoryConfig{
			File: filepath.Join(DefaultSettingsDir, "history.txt"),
		},
		Notifications: NotificationConfig{
			Enabled:          true,
			NotificationType: "terminal",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	if folder := os.Getenv("BEDOWNLOADER_DOWNLOAD_FOLDER"); folder != "" {
		c.Download.Folder = folder
	}
	if token := os.Getenv("BEDOWNLOADER_TOKEN"); token != "" {
		c.Behance.LocalStorageToken = token
	}
	if history := os.Getenv("BEDOWNLOADER_HISTORY_FILE"); history != "" {
		c.History.File = history
	}
	if chrome := os.Getenv("BEDOWNLOADER_CHROME_PATH"); chrome != "" {
		c.Browser.ExecPath = chrome
	}
	if logLevel := os.Getenv("BEDOWNLOADER_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}

	boolVars := map[string]*bool{
		"BEDOWNLOADER_SKIP_HISTORY":          &c.Download.SkipProjectsByHistory,
		"BEDOWNLOADER_MODULES_AS_GALLERIES":  &c.Download.ModulesAsGalleries,
		"BEDOWNLOADER_SHOW_BROWSER":          &c.Browser.ShowBrowser,
		"BEDOWNLOADER_TURBO":                 &c.Download.TurboMode,
		"BEDOWNLOADER_NOTIFICATIONS_ENABLED": &c.Notifications.Enabled,
	}
	for name, target := range boolVars {
		raw := os.Getenv(name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseBool(raw)
		if err != nil {
			c.Warnings = append(c.Warnings, fmt.Sprintf("ignoring %s: %v", name, err))
			continue
		}
		*target = v
	}

	return nil
}

// LoadFromFile loads configuration from an INI or YAML file. An empty path
// searches the default locations.
func (c *Config) LoadFromFile(path string) error {
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil
		}
	}

	if isINI(path) {
		return c.loadINI(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

func isINI(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".ini")
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	home := os.Getenv("HOME")
	locations := []string{
		filepath.Join(DefaultSettingsDir, "config.ini"),
		".bedownloader.yaml",
		".bedownloader.yml",
		filepath.Join(home, ".config", "bedownloader", "config.ini"),
		filepath.Join(home, ".config", "bedownloader", "config.yaml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if c.Download.Folder == "" {
		errs = append(errs, errors.New("download folder is required"))
	}
	if c.History.File == "" {
		errs = append(errs, errors.New("history file is required"))
	}
	if c.Download.TimeoutBetweenPagesInTurboMode <= 0 {
		errs = append(errs, errors.New("turbo mode page timeout must be positive"))
	}
	if c.Download.DownloadTimeout <= 0 {
		errs = append(errs, errors.New("download timeout must be positive"))
	}
	if c.Download.RetryAttempts < 0 {
		errs = append(errs, errors.New("retry attempts cannot be negative"))
	}
	if c.Download.RetryDelay < 0 {
		errs = append(errs, errors.New("retry delay cannot be negative"))
	}
	if c.Download.BetweenImagesDelay < 0 || c.Download.BetweenProjectsDelay < 0 {
		errs = append(errs, errors.New("delays cannot be negative"))
	}
	if c.Browser.NavigationTimeout <= 0 {
		errs = append(errs, errors.New("navigation timeout must be positive"))
	}
	if c.Browser.ScrollStep <= 0 {
		errs = append(errs, errors.New("scroll step must be positive"))
	}
	if c.Browser.ScrollStableChecks <= 0 {
		errs = append(errs, errors.New("scroll stable checks must be positive"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	validNotifTypes := map[string]bool{
		"terminal": true, "desktop": true, "none": true,
	}
	if !validNotifTypes[strings.ToLower(c.Notifications.NotificationType)] {
		errs = append(errs, errors.New("invalid notification type"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Save writes the configuration as YAML, or as INI when path ends in .ini
func (c *Config) Save(path string) error {
	if isINI(path) {
		return c.SaveINI(path)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration.
// Only flags the user actually set should be present in the map.
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if output, ok := flags["output"].(string); ok && output != "" {
		c.Download.Folder = output
	}
	if token, ok := flags["token"].(string); ok && token != "" {
		c.Behance.LocalStorageToken = token
	}
	if history, ok := flags["history-file"].(string); ok && history != "" {
		c.History.File = history
	}
	if v, ok := flags["skip-history"].(bool); ok {
		c.Download.SkipProjectsByHistory = v
	}
	if v, ok := flags["modules-as-galleries"].(bool); ok {
		c.Download.ModulesAsGalleries = v
	}
	if v, ok := flags["show-browser"].(bool); ok {
		c.Browser.ShowBrowser = v
	}
	if v, ok := flags["turbo"].(bool); ok {
		c.Download.TurboMode = v
	}
	if chrome, ok := flags["chrome-path"].(string); ok && chrome != "" {
		c.Browser.ExecPath = chrome
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
}

// Load loads configuration from all sources with proper precedence.
// Precedence order: command line flags > environment > .env file > config file > defaults.
// A config file that cannot be read or parsed is recorded in Warnings and
// the remaining sources still apply.
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".bedownloader.env"))

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		fresh := DefaultConfig()
		fresh.Warnings = append(config.Warnings, fmt.Sprintf("using defaults: %v", err))
		config = fresh
	}

	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	config.MergeCommandLineFlags(flags)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
