package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/markpad/internal/tracing"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	assert.True(t, cfg.AutoReload)
	assert.True(t, cfg.UI.ShowStatusBar)
	assert.Equal(t, "dark", cfg.UI.MarkdownStyle)
	assert.Equal(t, "unified", cfg.UI.DiffMode)
	assert.Equal(t, "gpt-5-mini", cfg.Assist.Model)
	assert.Equal(t, 120, cfg.Assist.TimeoutSeconds)
	assert.Equal(t, "127.0.0.1:8787", cfg.Serve.Addr)
	assert.Equal(t, 30, cfg.Serve.RateLimit)
	assert.False(t, cfg.Serve.Tracing.Enabled)

	require.NoError(t, cfg.Validate())
}

func TestAssistTimeout(t *testing.T) {
	assert.Equal(t, 2*time.Minute, AssistConfig{TimeoutSeconds: 120}.Timeout())
	assert.Zero(t, AssistConfig{}.Timeout())
	assert.Zero(t, AssistConfig{TimeoutSeconds: -5}.Timeout())
}

func TestValidateUI(t *testing.T) {
	tests := []struct {
		name    string
		ui      UIConfig
		wantErr string
	}{
		{name: "empty is valid", ui: UIConfig{}},
		{name: "dark style", ui: UIConfig{MarkdownStyle: "dark"}},
		{name: "auto style", ui: UIConfig{MarkdownStyle: "auto"}},
		{name: "split diff", ui: UIConfig{DiffMode: "split"}},
		{name: "bad style", ui: UIConfig{MarkdownStyle: "solarized"}, wantErr: "ui.markdown_style"},
		{name: "bad diff mode", ui: UIConfig{DiffMode: "inline"}, wantErr: "ui.diff_mode"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUI(tt.ui)
			if tt.wantErr == "" {
				require.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestValidateTheme(t *testing.T) {
	require.NoError(t, ValidateTheme(ThemeConfig{}))
	require.NoError(t, ValidateTheme(ThemeConfig{Mode: "light"}))

	err := ValidateTheme(ThemeConfig{Mode: "sepia"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "theme.mode")
}

func TestValidateServe(t *testing.T) {
	require.NoError(t, ValidateServe(ServeConfig{}))

	err := ValidateServe(ServeConfig{RateLimit: -1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate_limit")
}

func TestValidateTracing(t *testing.T) {
	tests := []struct {
		name    string
		cfg     tracing.Config
		wantErr string
	}{
		{name: "empty is valid", cfg: tracing.Config{SampleRate: 1.0}},
		{name: "sample rate too high", cfg: tracing.Config{SampleRate: 1.5}, wantErr: "sample_rate"},
		{name: "sample rate negative", cfg: tracing.Config{SampleRate: -0.1}, wantErr: "sample_rate"},
		{name: "bad exporter", cfg: tracing.Config{Exporter: "kafka", SampleRate: 1.0}, wantErr: "exporter"},
		{
			name:    "enabled file exporter needs path",
			cfg:     tracing.Config{Enabled: true, Exporter: "file", SampleRate: 1.0},
			wantErr: "file_path",
		},
		{
			name:    "enabled otlp exporter needs endpoint",
			cfg:     tracing.Config{Enabled: true, Exporter: "otlp", SampleRate: 1.0},
			wantErr: "otlp_endpoint",
		},
		{
			name: "enabled file exporter with path",
			cfg:  tracing.Config{Enabled: true, Exporter: "file", FilePath: "/tmp/t.jsonl", SampleRate: 1.0},
		},
		{
			name: "disabled file exporter without path is fine",
			cfg:  tracing.Config{Enabled: false, Exporter: "file", SampleRate: 1.0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTracing(tt.cfg)
			if tt.wantErr == "" {
				require.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestFlattenedColors(t *testing.T) {
	theme := ThemeConfig{
		Colors: map[string]any{
			"diff": map[string]any{
				"added":   "#73F59F",
				"removed": "#FF8787",
			},
			"text.muted": "#888888",
		},
	}

	flat := theme.FlattenedColors()
	assert.Equal(t, "#73F59F", flat["diff.added"])
	assert.Equal(t, "#FF8787", flat["diff.removed"])
	assert.Equal(t, "#888888", flat["text.muted"])
}

func TestFlattenedColors_MapAnyAny(t *testing.T) {
	// YAML v3 can decode nested maps as map[any]any
	theme := ThemeConfig{
		Colors: map[string]any{
			"diff": map[any]any{
				"added": "#00FF00",
			},
		},
	}

	flat := theme.FlattenedColors()
	assert.Equal(t, "#00FF00", flat["diff.added"])
}

func TestWriteDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	require.NoError(t, WriteDefaultConfig(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)
	assert.True(t, strings.HasPrefix(content, "# Markpad Configuration"))
	assert.Contains(t, content, "auto_reload: true")
	assert.Contains(t, content, "model: gpt-5-mini")
}
