package diffview

import (
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModel_SetRowsAndView(t *testing.T) {
	m := New(ModeUnified)
	m = m.SetSize(60, 10)
	m = m.SetRows(sampleRows())

	view := ansi.Strip(m.View())
	assert.Contains(t, view, "Old line")
	assert.Contains(t, view, "New line")
	assert.Equal(t, Stats{Added: 1, Removed: 1}, m.Stats())
}

func TestModel_ToggleMode(t *testing.T) {
	m := New(ModeUnified)
	m = m.SetSize(120, 10)
	m = m.SetRows(sampleRows())

	m, cmd := m.ToggleMode()
	require.Nil(t, cmd)
	assert.Equal(t, ModeSplit, m.Mode())

	m, cmd = m.ToggleMode()
	require.Nil(t, cmd)
	assert.Equal(t, ModeUnified, m.Mode())
}

func TestModel_ToggleModeConstrainedByWidth(t *testing.T) {
	m := New(ModeUnified)
	m = m.SetSize(40, 10)
	m = m.SetRows(sampleRows())

	m, cmd := m.ToggleMode()
	require.NotNil(t, cmd)

	msg, ok := cmd().(ModeConstrainedMsg)
	require.True(t, ok, "expected ModeConstrainedMsg")
	assert.Equal(t, minSplitWidth, msg.MinWidth)
	assert.Equal(t, 40, msg.CurrentWidth)
	assert.Equal(t, ModeUnified, m.Mode())
}

func TestModel_SplitFallsBackWhenNarrow(t *testing.T) {
	m := New(ModeSplit)
	m = m.SetSize(120, 10)
	assert.Equal(t, ModeSplit, m.Mode())

	// Shrinking below the threshold constrains to unified
	m = m.SetSize(40, 10)
	assert.Equal(t, ModeUnified, m.Mode())

	// Growing back restores the preferred mode
	m = m.SetSize(120, 10)
	assert.Equal(t, ModeSplit, m.Mode())
}

func TestModel_ScrollIndicator(t *testing.T) {
	m := New(ModeUnified)
	m = m.SetSize(60, 50)
	m = m.SetRows(sampleRows())

	// Content fits: no indicator
	assert.Empty(t, m.ScrollIndicator())
}
