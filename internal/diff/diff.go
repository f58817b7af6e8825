// Package diff turns two texts into renderable line rows for the
// comparison view. The line-level edit script itself comes from
// go-diff's line mode; this package only classifies and numbers the
// resulting lines.
package diff

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Kind classifies a row or part relative to the old text.
type Kind int

const (
	// KindUnchanged marks a line present in both texts.
	KindUnchanged Kind = iota
	// KindAdded marks a line present only in the new text.
	KindAdded
	// KindRemoved marks a line present only in the old text.
	KindRemoved
)

// String returns a human-readable name for the kind.
func (k Kind) String() string {
	switch k {
	case KindUnchanged:
		return "unchanged"
	case KindAdded:
		return "added"
	case KindRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// Part is one contiguous run of lines emitted by the line-diff
// primitive. Text holds the concatenated lines of the run, delimited
// by '\n' (a trailing '\n' is an artifact of the final line, not an
// extra blank line).
type Part struct {
	Kind Kind
	Text string
}

// Row is one logical line of the comparison view.
// OldIndex and NewIndex are 1-based gutter line numbers; 0 means the
// row has no counterpart on that side. Exactly one side is 0 for
// added/removed rows, neither for unchanged rows.
type Row struct {
	OldIndex int
	NewIndex int
	Kind     Kind
	Text     string
}

// normalize converts CRLF and bare CR line endings to LF so that
// texts with mixed conventions compare line-for-line.
func normalize(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

// LineCount returns the number of lines in s after line-ending
// normalization. The empty string has zero lines; a trailing newline
// does not start a phantom final line.
func LineCount(s string) int {
	s = normalize(s)
	if s == "" {
		return 0
	}
	n := strings.Count(s, "\n") + 1
	if strings.HasSuffix(s, "\n") {
		n--
	}
	return n
}

// Lines computes the line-level edit script between oldText and
// newText. Line endings are normalized before diffing, so CRLF/LF
// differences alone never produce a change; any other whitespace
// difference does. The returned parts preserve the primitive's order.
func Lines(oldText, newText string) []Part {
	dmp := diffmatchpatch.New()
	c1, c2, lineArray := dmp.DiffLinesToChars(normalize(oldText), normalize(newText))
	diffs := dmp.DiffMain(c1, c2, false)
	diffs = dmp.DiffCharsToLines(diffs, lineArray)

	parts := make([]Part, 0, len(diffs))
	for _, d := range diffs {
		if d.Text == "" {
			continue
		}
		parts = append(parts, Part{Kind: kindFor(d.Type), Text: d.Text})
	}
	return parts
}

// kindFor maps a go-diff operation onto a row kind.
func kindFor(op diffmatchpatch.Operation) Kind {
	switch op {
	case diffmatchpatch.DiffInsert:
		return KindAdded
	case diffmatchpatch.DiffDelete:
		return KindRemoved
	default:
		return KindUnchanged
	}
}

// BuildRows flattens diff parts into ordered rows with per-side line
// numbers. Two independent 1-based counters advance as lines are
// consumed: removed lines advance only the old counter, added lines
// only the new one, unchanged lines both. Rows come out in part
// order; nothing is merged or reordered.
func BuildRows(parts []Part) []Row {
	oldIndex, newIndex := 1, 1
	var rows []Row

	for _, part := range parts {
		lines := strings.Split(part.Text, "\n")
		// A run ending in '\n' splits into a trailing empty element
		// that is not a real line.
		if len(lines) > 0 && lines[len(lines)-1] == "" {
			lines = lines[:len(lines)-1]
		}

		for _, line := range lines {
			switch part.Kind {
			case KindAdded:
				rows = append(rows, Row{NewIndex: newIndex, Kind: KindAdded, Text: line})
				newIndex++
			case KindRemoved:
				rows = append(rows, Row{OldIndex: oldIndex, Kind: KindRemoved, Text: line})
				oldIndex++
			default:
				rows = append(rows, Row{OldIndex: oldIndex, NewIndex: newIndex, Kind: KindUnchanged, Text: line})
				oldIndex++
				newIndex++
			}
		}
	}
	return rows
}

// Rows is the full pipeline: diff oldText against newText and build
// the row sequence. Pure: identical inputs always yield an identical
// sequence.
func Rows(oldText, newText string) []Row {
	return BuildRows(Lines(oldText, newText))
}
