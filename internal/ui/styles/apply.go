// Package styles contains Lip Gloss style definitions.
package styles

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ThemeConfig mirrors config.ThemeConfig to avoid circular imports.
type ThemeConfig struct {
	Mode   string
	Colors map[string]string
}

// ApplyTheme applies a theme configuration.
// Order of application:
// 1. Force light/dark mode if requested
// 2. Apply individual color overrides
// 3. Rebuild all Style objects
func ApplyTheme(cfg ThemeConfig) error {
	switch cfg.Mode {
	case "light":
		lipgloss.SetHasDarkBackground(false)
	case "dark":
		lipgloss.SetHasDarkBackground(true)
	case "":
		// Use terminal detection
	default:
		return fmt.Errorf("unknown theme mode: %s", cfg.Mode)
	}

	for key, value := range cfg.Colors {
		token := ColorToken(key)
		if !isValidToken(token) {
			return fmt.Errorf("unknown color token: %s", key)
		}
		if !isValidHexColor(value) {
			return fmt.Errorf("invalid hex color for %s: %s", key, value)
		}
		applyColor(token, value)
	}

	rebuildStyles()

	return nil
}

// applyColor sets the variable behind a single token.
func applyColor(token ColorToken, hex string) {
	// Overrides use the same color for both modes
	color := lipgloss.AdaptiveColor{Light: hex, Dark: hex}

	switch token {
	case TokenTextPrimary:
		TextPrimaryColor = color
	case TokenTextSecondary:
		TextSecondaryColor = color
	case TokenTextMuted:
		TextMutedColor = color
	case TokenTextPlaceholder:
		TextPlaceholderColor = color
	case TokenBorderDefault:
		BorderDefaultColor = color
	case TokenBorderFocus:
		BorderFocusColor = color
	case TokenStatusSuccess:
		StatusSuccessColor = color
	case TokenStatusWarning:
		StatusWarningColor = color
	case TokenStatusError:
		StatusErrorColor = color
	case TokenDiffAdded:
		DiffAddedColor = color
	case TokenDiffRemoved:
		DiffRemovedColor = color
	case TokenDiffContext:
		DiffContextColor = color
	case TokenDiffGutter:
		DiffGutterColor = color
	case TokenSpinner:
		SpinnerColor = color
	}
}

// rebuildStyles recreates all Style objects with updated colors.
// This is necessary because lipgloss.Style objects capture colors at creation time.
func rebuildStyles() {
	DiffAddedStyle = lipgloss.NewStyle().Foreground(DiffAddedColor)
	DiffRemovedStyle = lipgloss.NewStyle().Foreground(DiffRemovedColor)
	DiffContextStyle = lipgloss.NewStyle().Foreground(DiffContextColor)
	DiffGutterStyle = lipgloss.NewStyle().Foreground(DiffGutterColor)

	PaneBorderStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(BorderDefaultColor)

	PaneBorderFocusedStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(BorderFocusColor)

	PaneTitleStyle = lipgloss.NewStyle().
		Foreground(TextSecondaryColor).
		Bold(true).
		Padding(0, 1)

	StatusBarStyle = lipgloss.NewStyle().
		Foreground(TextSecondaryColor).
		Padding(0, 1)

	ErrorStyle = lipgloss.NewStyle().
		Foreground(StatusErrorColor).
		Bold(true).
		Padding(1, 2)

	HelpStyle = lipgloss.NewStyle().
		Foreground(TextMutedColor).
		Padding(0, 1)
}

func isValidToken(token ColorToken) bool {
	return slices.Contains(AllTokens(), token)
}

func isValidHexColor(s string) bool {
	if !strings.HasPrefix(s, "#") {
		return false
	}
	hex := s[1:]
	if len(hex) != 3 && len(hex) != 6 {
		return false
	}
	_, err := strconv.ParseUint(hex, 16, 64)
	return err == nil
}
