package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	LogLevel  string          `toml:"log_level"`
	Injection InjectionConfig `toml:"injection"`
	Clipboard ClipboardConfig `toml:"clipboard"`
	Web       WebConfig       `toml:"web"`
	Storage   StorageConfig   `toml:"storage"`
	Tray      TrayConfig      `toml:"tray"`

	path string
}

type InjectionConfig struct {
	SettleDelayMs int `toml:"settle_delay_ms"`
}

type ClipboardConfig struct {
	PollAttempts   int  `toml:"poll_attempts"`
	PollIntervalMs int  `toml:"poll_interval_ms"`
	UpdateDelayMs  int  `toml:"update_delay_ms"`
	PasteDelayMs   int  `toml:"paste_delay_ms"`
	Restore        bool `toml:"restore"`
}

type WebConfig struct {
	Enabled bool `toml:"enabled"`
	Port    int  `toml:"port"`
}

type StorageConfig struct {
	Enabled bool `toml:"enabled"`
}

type TrayConfig struct {
	Enabled bool `toml:"enabled"`
}

// Default configuration
func defaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		Injection: InjectionConfig{
			SettleDelayMs: 20,
		},
		Clipboard: ClipboardConfig{
			PollAttempts:   20,
			PollIntervalMs: 100,
			UpdateDelayMs:  50,
			PasteDelayMs:   100,
			Restore:        true,
		},
		Web: WebConfig{
			Enabled: true,
			Port:    8765,
		},
		Storage: StorageConfig{
			Enabled: true,
		},
		Tray: TrayConfig{
			Enabled: false,
		},
	}
}

// ConfigDir returns the directory holding the config file and database
func ConfigDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate user config directory: %w", err)
	}

	dir := filepath.Join(base, "autolib")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return dir, nil
}

// ConfigPath returns the path to the configuration file
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load loads the configuration from the default location
func Load() (*Config, error) {
	configPath, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(configPath)
}

// LoadFrom loads the configuration from path.
// If the file doesn't exist, it creates it with default values
func LoadFrom(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := defaultConfig()
		cfg.path = path
		if err := cfg.Save(); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
		return cfg, nil
	}

	cfg := defaultConfig()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.path = path

	cfg.Validate()
	return cfg, nil
}

// Path returns the file the configuration was loaded from
func (c *Config) Path() string {
	return c.path
}

// Dir returns the directory of the configuration file
func (c *Config) Dir() string {
	return filepath.Dir(c.path)
}

// Save writes the configuration to its TOML file
func (c *Config) Save() error {
	if err := os.MkdirAll(filepath.Dir(c.path), 0755); err != nil {
		return err
	}

	f, err := os.Create(c.path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(c)
}

// Validate replaces out-of-range values with defaults
func (c *Config) Validate() {
	def := defaultConfig()

	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		slog.Warn("Invalid log level, using default", "value", c.LogLevel)
		c.LogLevel = def.LogLevel
	}

	// settle delay must stay below 50ms
	if c.Injection.SettleDelayMs <= 0 || c.Injection.SettleDelayMs >= 50 {
		c.Injection.SettleDelayMs = def.Injection.SettleDelayMs
	}

	if c.Clipboard.PollAttempts <= 0 {
		c.Clipboard.PollAttempts = def.Clipboard.PollAttempts
	}
	if c.Clipboard.PollIntervalMs <= 0 {
		c.Clipboard.PollIntervalMs = def.Clipboard.PollIntervalMs
	}
	if c.Clipboard.UpdateDelayMs < 0 {
		c.Clipboard.UpdateDelayMs = def.Clipboard.UpdateDelayMs
	}
	if c.Clipboard.PasteDelayMs < 0 {
		c.Clipboard.PasteDelayMs = def.Clipboard.PasteDelayMs
	}

	if c.Web.Port <= 0 || c.Web.Port > 65535 {
		c.Web.Port = def.Web.Port
	}
}

// SettleDelay returns the injection settle delay as a duration
func (c *Config) SettleDelay() time.Duration {
	return time.Duration(c.Injection.SettleDelayMs) * time.Millisecond
}

// ParseLogLevel maps a level name to a slog level
func ParseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level: %s", level)
	}
}
