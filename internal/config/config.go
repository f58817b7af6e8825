// Package config provides configuration types and defaults for markpad.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/zjrosen/markpad/internal/log"
	"github.com/zjrosen/markpad/internal/tracing"
)

// Config holds all configuration options for markpad.
type Config struct {
	// AutoReload watches the opened file and prompts to reload when it
	// changes on disk.
	AutoReload bool `mapstructure:"auto_reload"`

	// DatabasePath is the sqlite database used for documents and
	// revision history. Empty uses DefaultDatabasePath().
	DatabasePath string `mapstructure:"database_path"`

	UI     UIConfig     `mapstructure:"ui"`
	Theme  ThemeConfig  `mapstructure:"theme"`
	Assist AssistConfig `mapstructure:"assist"`
	Serve  ServeConfig  `mapstructure:"serve"`
}

// UIConfig holds user interface configuration options.
type UIConfig struct {
	ShowStatusBar bool   `mapstructure:"show_status_bar"`
	MarkdownStyle string `mapstructure:"markdown_style"` // "dark" (default), "light", or "auto"
	DiffMode      string `mapstructure:"diff_mode"`      // "unified" (default) or "split"
}

// ThemeConfig holds theme customization options.
type ThemeConfig struct {
	// Mode forces light or dark mode. If empty, uses terminal detection.
	// Valid values: "light", "dark", ""
	Mode string `mapstructure:"mode"`

	// Colors allows overriding individual color tokens.
	// Supports both nested YAML structure and dot notation.
	// Example YAML:
	//   colors:
	//     diff:
	//       added: "#00FF00"
	// Or quoted dot notation:
	//   colors:
	//     "diff.added": "#00FF00"
	Colors map[string]any `mapstructure:"colors"`
}

// FlattenedColors returns the Colors map flattened to dot-notation keys.
// This handles both nested YAML structures and already-flat keys.
func (t ThemeConfig) FlattenedColors() map[string]string {
	result := make(map[string]string)
	flattenColors("", t.Colors, result)
	return result
}

// flattenColors recursively flattens a nested map into dot-notation keys.
func flattenColors(prefix string, m map[string]any, result map[string]string) {
	for k, v := range m {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}

		switch val := v.(type) {
		case string:
			result[key] = val
		case map[string]any:
			flattenColors(key, val, result)
		case map[any]any:
			// YAML sometimes produces map[any]any instead of map[string]any
			converted := make(map[string]any)
			for mk, mv := range val {
				if strKey, ok := mk.(string); ok {
					converted[strKey] = mv
				}
			}
			flattenColors(key, converted, result)
		}
	}
}

// AssistConfig holds AI revision settings.
type AssistConfig struct {
	// Model is the chat model used for revisions.
	Model string `mapstructure:"model"`

	// BaseURL overrides the API endpoint. Empty uses the provider
	// default. The API key always comes from OPENAI_API_KEY.
	BaseURL string `mapstructure:"base_url"`

	// TimeoutSeconds bounds a single revision request.
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
}

// Timeout returns the request timeout as a duration.
func (a AssistConfig) Timeout() time.Duration {
	if a.TimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.TimeoutSeconds) * time.Second
}

// ServeConfig holds settings for the assist HTTP daemon.
type ServeConfig struct {
	// Addr is the listen address, e.g. "127.0.0.1:8787".
	Addr string `mapstructure:"addr"`

	// RateLimit is the allowed analyze requests per client per hour.
	RateLimit int `mapstructure:"rate_limit"`

	// AllowedOrigins is the CORS allow-list for browser clients.
	AllowedOrigins []string `mapstructure:"allowed_origins"`

	// Tracing configures request tracing for the daemon.
	Tracing tracing.Config `mapstructure:"tracing"`
}

// DefaultDatabasePath returns the default sqlite database location.
// Returns ~/.config/markpad/markpad.db or empty string if home dir unavailable.
func DefaultDatabasePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "markpad", "markpad.db")
}

// DefaultTracesFilePath returns the default path for trace file export.
// Returns ~/.config/markpad/traces/traces.jsonl or empty string if home dir unavailable.
func DefaultTracesFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "markpad", "traces", "traces.jsonl")
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		AutoReload:   true,
		DatabasePath: "", // Derived from config dir at runtime
		UI: UIConfig{
			ShowStatusBar: true,
			MarkdownStyle: "dark",
			DiffMode:      "unified",
		},
		Theme: ThemeConfig{},
		Assist: AssistConfig{
			Model:          "gpt-5-mini",
			TimeoutSeconds: 120,
		},
		Serve: ServeConfig{
			Addr:      "127.0.0.1:8787",
			RateLimit: 30,
			AllowedOrigins: []string{
				"http://localhost:5173",
				"http://127.0.0.1:5173",
			},
			Tracing: tracing.DefaultConfig(),
		},
	}
}

// ValidateUI checks UI configuration for errors.
// Returns nil if the configuration is valid (empty values use defaults).
func ValidateUI(ui UIConfig) error {
	switch ui.MarkdownStyle {
	case "", "dark", "light", "auto":
		// Valid
	default:
		return fmt.Errorf("ui.markdown_style must be \"dark\", \"light\", or \"auto\", got %q", ui.MarkdownStyle)
	}

	switch ui.DiffMode {
	case "", "unified", "split":
		// Valid
	default:
		return fmt.Errorf("ui.diff_mode must be \"unified\" or \"split\", got %q", ui.DiffMode)
	}

	return nil
}

// ValidateTheme checks theme configuration for errors.
func ValidateTheme(theme ThemeConfig) error {
	switch theme.Mode {
	case "", "light", "dark":
		// Valid
	default:
		return fmt.Errorf("theme.mode must be \"light\" or \"dark\", got %q", theme.Mode)
	}
	return nil
}

// ValidateServe checks daemon configuration for errors.
// Returns nil if the configuration is valid (empty values use defaults).
func ValidateServe(serve ServeConfig) error {
	if serve.RateLimit < 0 {
		return fmt.Errorf("serve.rate_limit must not be negative, got %d", serve.RateLimit)
	}
	if err := ValidateTracing(serve.Tracing); err != nil {
		return err
	}
	return nil
}

// ValidateTracing checks tracing configuration for errors.
// Returns nil if the configuration is valid (empty values use defaults).
func ValidateTracing(cfg tracing.Config) error {
	if cfg.SampleRate < 0.0 || cfg.SampleRate > 1.0 {
		return fmt.Errorf("serve.tracing.sample_rate must be between 0.0 and 1.0, got %v", cfg.SampleRate)
	}

	if cfg.Exporter != "" {
		switch cfg.Exporter {
		case "none", "file", "stdout", "otlp":
			// Valid
		default:
			return fmt.Errorf("serve.tracing.exporter must be \"none\", \"file\", \"stdout\", or \"otlp\", got %q", cfg.Exporter)
		}
	}

	// Only validate path requirements when tracing is enabled
	if cfg.Enabled {
		if cfg.Exporter == "file" && cfg.FilePath == "" {
			return fmt.Errorf("serve.tracing.file_path is required when exporter is \"file\"")
		}
		if cfg.Exporter == "otlp" && cfg.OTLPEndpoint == "" {
			return fmt.Errorf("serve.tracing.otlp_endpoint is required when exporter is \"otlp\"")
		}
	}

	return nil
}

// Validate checks the full configuration for errors.
func (c Config) Validate() error {
	if err := ValidateUI(c.UI); err != nil {
		return err
	}
	if err := ValidateTheme(c.Theme); err != nil {
		return err
	}
	if err := ValidateServe(c.Serve); err != nil {
		return err
	}
	return nil
}

// DefaultConfigTemplate returns the default config as a YAML string with comments.
func DefaultConfigTemplate() string {
	return `# Markpad Configuration

# Reload prompt when the opened file changes on disk
auto_reload: true

# Sqlite database for documents and revision history
# database_path: ~/.config/markpad/markpad.db

# UI settings
ui:
  show_status_bar: true   # Show status bar at bottom
  # markdown_style: dark  # Preview style: "dark" (default), "light", or "auto"
  # diff_mode: unified    # Diff layout: "unified" (default) or "split"

# Theme configuration
theme:
  # Force light or dark mode (default: detect from terminal)
  # mode: dark
  #
  # Override specific colors:
  # colors:
  #   diff.added: "#73F59F"
  #   diff.removed: "#FF8787"
  #   text.muted: "#888888"

# AI revision settings
# The API key is read from the OPENAI_API_KEY environment variable.
assist:
  model: gpt-5-mini
  timeout_seconds: 120
  # base_url: https://api.openai.com/v1

# Assist daemon settings (markpad serve)
serve:
  addr: 127.0.0.1:8787
  rate_limit: 30          # Analyze requests per client per hour
  allowed_origins:
    - http://localhost:5173
    - http://127.0.0.1:5173

  # Request tracing
  # tracing:
  #   enabled: false                 # Enable/disable tracing (default: false)
  #   exporter: file                 # Export backend: none, file, stdout, otlp (default: file)
  #   file_path: ~/.config/markpad/traces/traces.jsonl
  #   otlp_endpoint: localhost:4317  # OTLP collector endpoint (for otlp exporter)
  #   sample_rate: 1.0               # Trace sampling rate 0.0-1.0 (default: 1.0)
`
}

// WriteDefaultConfig creates a config file at the given path with default settings and comments.
// Creates the parent directory if it doesn't exist.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}
