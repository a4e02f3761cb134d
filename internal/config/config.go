// Package config handles configuration and cookie management for dagchat.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Environment variables that override the config file
const (
	EnvHome          = "DAGCHAT_HOME"
	EnvServerURL     = "DAGCHAT_SERVER_URL"
	EnvTimeout       = "DAGCHAT_TIMEOUT"
	EnvVerbose       = "DAGCHAT_VERBOSE"
	EnvSessionCookie = "DAGCHAT_SESSION_COOKIE"
)

// MarkdownConfig configures glamour rendering of prompt bodies
type MarkdownConfig struct {
	Style            string `json:"style"`
	EnableEmoji      bool   `json:"enable_emoji"`
	PreserveNewLines bool   `json:"preserve_newlines"`
	TableWrap        bool   `json:"table_wrap"`
}

// Config represents the user configuration
type Config struct {
	// ServerURL is the Airflow webserver base URL hosting the plugin.
	ServerURL string `json:"server_url"`
	// TimeoutSeconds bounds every HTTP request. 0 disables the timeout.
	TimeoutSeconds     int  `json:"timeout_seconds"`
	InsecureSkipVerify bool `json:"insecure_skip_verify"`
	// TypingIntervalMS is the typing indicator frame period.
	TypingIntervalMS int            `json:"typing_interval_ms"`
	Verbose          bool           `json:"verbose"`
	CopyToClipboard  bool           `json:"copy_to_clipboard"`
	TUITheme         string         `json:"tui_theme,omitempty"`
	LogDir           string         `json:"log_dir,omitempty"`
	Markdown         MarkdownConfig `json:"markdown"`
}

// DefaultMarkdownConfig returns the default markdown configuration
func DefaultMarkdownConfig() MarkdownConfig {
	return MarkdownConfig{
		Style:            "dark",
		EnableEmoji:      false,
		PreserveNewLines: true,
		TableWrap:        true,
	}
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		ServerURL:        "http://localhost:8080",
		TimeoutSeconds:   300,
		TypingIntervalMS: 300,
		TUITheme:         "tokyonight",
		Markdown:         DefaultMarkdownConfig(),
	}
}

// Timeout returns the request timeout as a duration.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// TypingInterval returns the typing indicator period, never below 50ms.
func (c Config) TypingInterval() time.Duration {
	if c.TypingIntervalMS < 50 {
		return 300 * time.Millisecond
	}
	return time.Duration(c.TypingIntervalMS) * time.Millisecond
}

// GetConfigDir returns the configuration directory path. DAGCHAT_HOME
// overrides the default ~/.dagchat.
func GetConfigDir() (string, error) {
	if dir := os.Getenv(EnvHome); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".dagchat"), nil
}

// EnsureConfigDir creates the configuration directory if it doesn't exist
func EnsureConfigDir() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}

	// 0o700: the directory holds the web session cookie
	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}
	return configDir, nil
}

// GetConfigPath returns the path to the config file
func GetConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.json"), nil
}

// GetCookiesPath returns the path to the cookies file
func GetCookiesPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "cookies.json"), nil
}

// GetLogDir returns the directory for log files, creating it if necessary
func GetLogDir(cfg Config) (string, error) {
	dir := cfg.LogDir
	if dir == "" {
		configDir, err := GetConfigDir()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(configDir, "logs")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create log directory: %w", err)
	}
	return dir, nil
}

// LoadConfig loads the configuration file only. Missing file means defaults.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()

	configPath, err := GetConfigPath()
	if err != nil {
		return cfg, err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}

// Load returns the effective configuration: config file, then a .env file
// in the working directory, then DAGCHAT_* environment variables.
func Load() (Config, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return cfg, err
	}

	// .env is optional
	_ = godotenv.Load()

	if err := ApplyEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// ApplyEnv overlays DAGCHAT_* environment variables onto cfg.
func ApplyEnv(cfg *Config) error {
	if v := os.Getenv(EnvServerURL); v != "" {
		cfg.ServerURL = v
	}
	if v := os.Getenv(EnvTimeout); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return fmt.Errorf("invalid %s %q: expected seconds", EnvTimeout, v)
		}
		cfg.TimeoutSeconds = n
	}
	if v := os.Getenv(EnvVerbose); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvVerbose, v, err)
		}
		cfg.Verbose = b
	}
	return nil
}

// SaveConfig saves the configuration to disk
func SaveConfig(cfg Config) error {
	configDir, err := EnsureConfigDir()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filepath.Join(configDir, "config.json"), data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

var setters = map[string]func(*Config, string) error{
	"server_url": func(c *Config, v string) error {
		v = strings.TrimRight(strings.TrimSpace(v), "/")
		if !strings.HasPrefix(v, "http://") && !strings.HasPrefix(v, "https://") {
			return fmt.Errorf("server_url must start with http:// or https://")
		}
		c.ServerURL = v
		return nil
	},
	"timeout_seconds":      intSetter(func(c *Config, n int) { c.TimeoutSeconds = n }),
	"typing_interval_ms":   intSetter(func(c *Config, n int) { c.TypingIntervalMS = n }),
	"insecure_skip_verify": boolSetter(func(c *Config, b bool) { c.InsecureSkipVerify = b }),
	"verbose":              boolSetter(func(c *Config, b bool) { c.Verbose = b }),
	"copy_to_clipboard":    boolSetter(func(c *Config, b bool) { c.CopyToClipboard = b }),
	"tui_theme":            func(c *Config, v string) error { c.TUITheme = v; return nil },
	"log_dir":              func(c *Config, v string) error { c.LogDir = v; return nil },
	"markdown.style":       func(c *Config, v string) error { c.Markdown.Style = v; return nil },
	"markdown.enable_emoji": boolSetter(func(c *Config, b bool) { c.Markdown.EnableEmoji = b }),
	"markdown.preserve_newlines": boolSetter(func(c *Config, b bool) {
		c.Markdown.PreserveNewLines = b
	}),
	"markdown.table_wrap": boolSetter(func(c *Config, b bool) { c.Markdown.TableWrap = b }),
}

func intSetter(set func(*Config, int)) func(*Config, string) error {
	return func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return fmt.Errorf("expected a non-negative integer, got %q", v)
		}
		set(c, n)
		return nil
	}
}

func boolSetter(set func(*Config, bool)) func(*Config, string) error {
	return func(c *Config, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("expected true or false, got %q", v)
		}
		set(c, b)
		return nil
	}
}

// SetValue assigns a config key from its string form.
func SetValue(cfg *Config, key, value string) error {
	set, ok := setters[key]
	if !ok {
		return fmt.Errorf("unknown config key %q (available: %s)", key, strings.Join(Keys(), ", "))
	}
	if err := set(cfg, value); err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	return nil
}

// Keys lists the settable config keys.
func Keys() []string {
	keys := make([]string, 0, len(setters))
	for k := range setters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
