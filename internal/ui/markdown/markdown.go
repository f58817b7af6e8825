// Package markdown provides styled markdown rendering for the preview pane.
package markdown

import (
	"github.com/charmbracelet/glamour"
)

// noMarginStyle is a JSON style that removes document margins.
const noMarginStyle = `{
	"document": {
		"margin": 0,
		"block_prefix": "",
		"block_suffix": ""
	}
}`

// Renderer wraps glamour with markpad-specific configuration.
type Renderer struct {
	renderer *glamour.TermRenderer
	width    int
	style    string
}

// ResolveStyle maps the configured style name to a glamour style path.
// "auto" resolves against the detected terminal background; the caller
// passes the detection result so this package never queries the
// terminal itself. WithAutoStyle() would query mid-render, which leaks
// escape sequence responses into the bubbletea input stream.
func ResolveStyle(style string, darkBackground bool) string {
	switch style {
	case "", "auto":
		if darkBackground {
			return "dark"
		}
		return "light"
	default:
		return style
	}
}

// New creates a markdown renderer with the given width and style.
// style should be "dark" or "light"; use ResolveStyle for "auto".
func New(width int, style string) (*Renderer, error) {
	if style == "" {
		style = "dark"
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStylePath(style),
		glamour.WithStylesFromJSONBytes([]byte(noMarginStyle)),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, err
	}
	return &Renderer{renderer: r, width: width, style: style}, nil
}

// Width returns the configured word wrap width.
func (r *Renderer) Width() int {
	return r.width
}

// Style returns the glamour style the renderer was built with.
func (r *Renderer) Style() string {
	return r.style
}

// Render transforms markdown to styled terminal output.
func (r *Renderer) Render(markdown string) (string, error) {
	return r.renderer.Render(markdown)
}
