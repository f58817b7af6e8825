package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func writeTestConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func readYAML(t *testing.T, path string) map[string]any {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, yaml.Unmarshal(data, &out))
	return out
}

func TestSaveUI_NewFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	err := SaveUI(path, UIConfig{ShowStatusBar: true, MarkdownStyle: "light", DiffMode: "split"})
	require.NoError(t, err)

	out := readYAML(t, path)
	ui, ok := out["ui"].(map[string]any)
	require.True(t, ok, "expected ui mapping, got %T", out["ui"])
	assert.Equal(t, true, ui["show_status_bar"])
	assert.Equal(t, "light", ui["markdown_style"])
	assert.Equal(t, "split", ui["diff_mode"])
}

func TestSaveUI_PreservesOtherSections(t *testing.T) {
	path := writeTestConfig(t, `# My config
auto_reload: false

ui:
  markdown_style: dark

assist:
  model: gpt-5-mini
`)

	err := SaveUI(path, UIConfig{ShowStatusBar: false, MarkdownStyle: "auto"})
	require.NoError(t, err)

	out := readYAML(t, path)
	assert.Equal(t, false, out["auto_reload"])

	assist, ok := out["assist"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "gpt-5-mini", assist["model"])

	ui, ok := out["ui"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "auto", ui["markdown_style"])

	// Comments outside the replaced section survive
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# My config")
}

func TestSaveThemeMode_NewFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	require.NoError(t, SaveThemeMode(path, "dark"))

	out := readYAML(t, path)
	theme, ok := out["theme"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "dark", theme["mode"])
}

func TestSaveThemeMode_PreservesColors(t *testing.T) {
	path := writeTestConfig(t, `theme:
  mode: light
  colors:
    diff.added: "#00FF00"
`)

	require.NoError(t, SaveThemeMode(path, "dark"))

	out := readYAML(t, path)
	theme, ok := out["theme"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "dark", theme["mode"])

	colors, ok := theme["colors"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "#00FF00", colors["diff.added"])
}
