// Package diffview renders document diffs as a scrollable pane.
package diffview

import (
	"fmt"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/zjrosen/markpad/internal/diff"
)

// minSplitWidth is the minimum pane width for split view.
// Below this width, only unified view is available.
const minSplitWidth = 80

// ModeConstrainedMsg is returned when the user tries to switch to
// split view but the pane is too narrow. The app should show a status
// message.
type ModeConstrainedMsg struct {
	MinWidth     int
	CurrentWidth int
}

// Model is the diff pane component state.
type Model struct {
	viewport viewport.Model

	rows  []diff.Row
	stats Stats

	// Current effective mode (may be constrained by width) and the
	// user's preferred mode.
	mode          ViewMode
	preferredMode ViewMode

	width, height int
}

// New creates a diff pane in the given mode.
func New(mode ViewMode) Model {
	return Model{
		viewport:      viewport.New(0, 0),
		mode:          mode,
		preferredMode: mode,
	}
}

// SetSize resizes the pane and re-renders content.
func (m Model) SetSize(width, height int) Model {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
	m.applyModeConstraint()
	m.refresh()
	return m
}

// SetRows replaces the diff content, preserving scroll position when
// possible.
func (m Model) SetRows(rows []diff.Row) Model {
	m.rows = rows
	m.stats = Count(rows)
	m.refresh()
	if m.viewport.YOffset > 0 && m.viewport.TotalLineCount() <= m.viewport.YOffset {
		m.viewport.GotoBottom()
	}
	return m
}

// Rows returns the current diff content.
func (m Model) Rows() []diff.Row {
	return m.rows
}

// Stats returns the add/remove tallies for the current content.
func (m Model) Stats() Stats {
	return m.stats
}

// Mode returns the effective view mode.
func (m Model) Mode() ViewMode {
	return m.mode
}

// ToggleMode switches between unified and split view. Returns a
// ModeConstrainedMsg command when the pane is too narrow for split.
func (m Model) ToggleMode() (Model, tea.Cmd) {
	if m.mode == ModeUnified {
		if m.width < minSplitWidth {
			width := m.width
			return m, func() tea.Msg {
				return ModeConstrainedMsg{MinWidth: minSplitWidth, CurrentWidth: width}
			}
		}
		m.mode = ModeSplit
	} else {
		m.mode = ModeUnified
	}
	m.preferredMode = m.mode
	m.refresh()
	return m, nil
}

// applyModeConstraint falls back to unified when the pane is too
// narrow, and restores the preferred mode when it fits again.
func (m *Model) applyModeConstraint() {
	if m.preferredMode == ModeSplit && m.width < minSplitWidth {
		m.mode = ModeUnified
		return
	}
	m.mode = m.preferredMode
}

// refresh re-renders the rows into the viewport.
func (m *Model) refresh() {
	m.viewport.SetContent(Render(m.rows, m.mode, m.width))
}

// Update handles scrolling input.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// ScrollIndicator returns a position hint for the pane footer, empty
// when at the top or the content fits.
func (m Model) ScrollIndicator() string {
	if m.viewport.TotalLineCount() <= m.viewport.Height {
		return ""
	}
	if m.viewport.AtBottom() {
		return "end"
	}
	if m.viewport.YOffset == 0 {
		return ""
	}
	return fmt.Sprintf("%d%%", int(m.viewport.ScrollPercent()*100))
}

// View renders the pane content.
func (m Model) View() string {
	return m.viewport.View()
}
