package diffview

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/truncate"

	"github.com/zjrosen/markpad/internal/diff"
	"github.com/zjrosen/markpad/internal/ui/styles"
)

// ViewMode selects the diff layout.
type ViewMode int

const (
	// ModeUnified interleaves old and new lines in a single column.
	ModeUnified ViewMode = iota
	// ModeSplit shows old and new side by side.
	ModeSplit
)

// String returns a human-readable mode name.
func (m ViewMode) String() string {
	switch m {
	case ModeUnified:
		return "unified"
	case ModeSplit:
		return "split"
	default:
		return "unknown"
	}
}

// ParseMode maps a config value to a ViewMode, defaulting to unified.
func ParseMode(s string) ViewMode {
	if s == "split" {
		return ModeSplit
	}
	return ModeUnified
}

// Stats summarizes a diff for the status bar.
type Stats struct {
	Added   int
	Removed int
}

// Count tallies added and removed rows.
func Count(rows []diff.Row) Stats {
	var s Stats
	for _, row := range rows {
		switch row.Kind {
		case diff.KindAdded:
			s.Added++
		case diff.KindRemoved:
			s.Removed++
		}
	}
	return s
}

// String formats stats as "+3 -1".
func (s Stats) String() string {
	return fmt.Sprintf("+%d -%d", s.Added, s.Removed)
}

// gutterWidth returns the digit width needed for the largest line number.
func gutterWidth(rows []diff.Row) int {
	maxIndex := 1
	for _, row := range rows {
		if row.OldIndex > maxIndex {
			maxIndex = row.OldIndex
		}
		if row.NewIndex > maxIndex {
			maxIndex = row.NewIndex
		}
	}
	return len(fmt.Sprintf("%d", maxIndex))
}

// gutterCell formats a single line number, blank when the side is absent.
func gutterCell(index, width int) string {
	if index == 0 {
		return strings.Repeat(" ", width)
	}
	return fmt.Sprintf("%*d", width, index)
}

// rowStyle returns the text style for a row kind.
func rowStyle(kind diff.Kind) lipgloss.Style {
	switch kind {
	case diff.KindAdded:
		return styles.DiffAddedStyle
	case diff.KindRemoved:
		return styles.DiffRemovedStyle
	default:
		return styles.DiffContextStyle
	}
}

// marker returns the classic diff prefix for a row kind.
func marker(kind diff.Kind) string {
	switch kind {
	case diff.KindAdded:
		return "+"
	case diff.KindRemoved:
		return "-"
	default:
		return " "
	}
}

// RenderUnified renders rows as a single column with dual gutters and
// +/- markers, one output line per row, truncated to width.
func RenderUnified(rows []diff.Row, width int) []string {
	if len(rows) == 0 {
		return nil
	}

	gutter := gutterWidth(rows)
	// "old new M text": two gutters, two separators, marker, space
	textWidth := width - 2*gutter - 4
	if textWidth < 1 {
		textWidth = 1
	}

	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		prefix := styles.DiffGutterStyle.Render(
			gutterCell(row.OldIndex, gutter) + " " + gutterCell(row.NewIndex, gutter) + " ",
		)
		body := marker(row.Kind) + " " + truncate.StringWithTail(row.Text, uint(textWidth), "…")
		lines = append(lines, prefix+rowStyle(row.Kind).Render(body))
	}
	return lines
}

// RenderSplit renders rows as two columns, old on the left and new on
// the right, separated by a vertical rule.
func RenderSplit(rows []diff.Row, width int) []string {
	if len(rows) == 0 {
		return nil
	}

	gutter := gutterWidth(rows)
	// Each half: gutter, space, text. Separator: " │ ".
	half := (width - 3) / 2
	textWidth := half - gutter - 1
	if textWidth < 1 {
		textWidth = 1
	}

	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		var left, right string
		switch row.Kind {
		case diff.KindRemoved:
			left = splitCell(row.OldIndex, row.Text, gutter, textWidth, styles.DiffRemovedStyle)
			right = splitCell(0, "", gutter, textWidth, styles.DiffContextStyle)
		case diff.KindAdded:
			left = splitCell(0, "", gutter, textWidth, styles.DiffContextStyle)
			right = splitCell(row.NewIndex, row.Text, gutter, textWidth, styles.DiffAddedStyle)
		default:
			left = splitCell(row.OldIndex, row.Text, gutter, textWidth, styles.DiffContextStyle)
			right = splitCell(row.NewIndex, row.Text, gutter, textWidth, styles.DiffContextStyle)
		}
		sep := styles.DiffGutterStyle.Render(" │ ")
		lines = append(lines, left+sep+right)
	}
	return lines
}

// splitCell renders one half of a split row, padded to a fixed width so
// the separator stays aligned.
func splitCell(index int, text string, gutter, textWidth int, style lipgloss.Style) string {
	number := styles.DiffGutterStyle.Render(gutterCell(index, gutter))
	truncated := truncate.StringWithTail(text, uint(textWidth), "…")
	padding := textWidth - runewidth.StringWidth(truncated)
	if padding < 0 {
		padding = 0
	}
	return number + " " + style.Render(truncated) + strings.Repeat(" ", padding)
}

// Render renders rows in the given mode, joined into one string for a
// viewport.
func Render(rows []diff.Row, mode ViewMode, width int) string {
	var lines []string
	if mode == ModeSplit {
		lines = RenderSplit(rows, width)
	} else {
		lines = RenderUnified(rows, width)
	}
	return strings.Join(lines, "\n")
}
