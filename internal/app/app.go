// Package app contains the root application model.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zjrosen/markpad/internal/assist"
	"github.com/zjrosen/markpad/internal/config"
	"github.com/zjrosen/markpad/internal/diff"
	"github.com/zjrosen/markpad/internal/document"
	"github.com/zjrosen/markpad/internal/log"
	"github.com/zjrosen/markpad/internal/ui/diffview"
	"github.com/zjrosen/markpad/internal/ui/markdown"
	"github.com/zjrosen/markpad/internal/ui/styles"
	"github.com/zjrosen/markpad/internal/watcher"
)

// focusPane indicates which pane has keyboard focus.
type focusPane int

const (
	focusEditor focusPane = iota
	focusRight
	focusInstructions
)

// rightPane selects what the right pane shows.
type rightPane int

const (
	rightPreview rightPane = iota
	rightDiff
	rightSummary
	rightLogs
)

// maxLogLines bounds the in-memory log overlay buffer.
const maxLogLines = 200

const (
	statusBarHeight = 1
	helpBarHeight   = 1
	promptHeight    = 3
	statusDuration  = 3 * time.Second
)

// Reviser is the assist capability the app depends on. Nil disables
// AI revisions.
type Reviser interface {
	Revise(ctx context.Context, req assist.Request) (*assist.Result, error)
}

// Services holds the dependencies passed to the application model.
type Services struct {
	Config  config.Config
	Repo    document.Repository
	Reviser Reviser
	Path    string
	// ConfigPath is where UI preference changes are persisted; empty
	// disables persistence.
	ConfigPath string
}

// Messages.
type (
	// fileChangedMsg signals the watched file changed on disk.
	fileChangedMsg struct{}

	// savedMsg carries the result of a save.
	savedMsg struct {
		doc *document.Document
		err error
	}

	// assistResultMsg carries the result of an AI revision.
	assistResultMsg struct {
		result *assist.Result
		err    error
	}

	// revisionRecordedMsg carries the result of persisting a revision.
	revisionRecordedMsg struct{ err error }

	// clearStatusMsg expires the status message.
	clearStatusMsg struct{}
)

// Model is the root application state.
type Model struct {
	services Services
	keys     KeyMap

	// Panes
	editor       textarea.Model
	preview      viewport.Model
	summaryView  viewport.Model
	logsView     viewport.Model
	diff         diffview.Model
	instructions textinput.Model
	spinner      spinner.Model

	renderer *markdown.Renderer

	focus focusPane
	right rightPane

	// Document state
	doc      *document.Document
	baseline string // content at last save, the diff's old side
	summary  string

	assistPending bool

	// Status bar
	statusMsg   string
	statusIsErr bool

	// Log overlay
	logListener *log.LogListener
	logCancel   context.CancelFunc
	logLines    []string

	// File watcher
	watcherHandle *watcher.Watcher
	onChange      <-chan struct{}

	width, height int
}

// New creates the application model for editing the file at
// services.Path with the given initial content.
func New(services Services, content string) Model {
	editor := textarea.New()
	editor.SetValue(content)
	editor.CharLimit = 0
	editor.ShowLineNumbers = true
	editor.Focus()

	instructions := textinput.New()
	instructions.Placeholder = "What should change?"
	instructions.CharLimit = 500

	sp := spinner.New(
		spinner.WithSpinner(spinner.MiniDot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(styles.SpinnerColor)),
	)

	m := Model{
		services:     services,
		keys:         DefaultKeyMap(),
		editor:       editor,
		preview:      viewport.New(0, 0),
		summaryView:  viewport.New(0, 0),
		diff:         diffview.New(diffview.ParseMode(services.Config.UI.DiffMode)),
		logsView:     viewport.New(0, 0),
		instructions: instructions,
		spinner:      sp,
		focus:        focusEditor,
		right:        rightPreview,
		baseline:     content,
	}

	if services.Repo != nil {
		m.doc = m.lookupDocument()
	}

	// Nil when debug logging is off; the logs pane just stays empty
	logCtx, logCancel := context.WithCancel(context.Background())
	m.logListener = log.NewListener(logCtx)
	m.logCancel = logCancel

	if services.Config.AutoReload && services.Path != "" {
		w, err := watcher.New(watcher.DefaultConfig(services.Path))
		if err == nil {
			if ch, err := w.Start(); err == nil {
				m.watcherHandle = w
				m.onChange = ch
			} else {
				_ = w.Stop()
			}
		}
		// The app works fine without auto-reload
	}

	return m
}

// lookupDocument finds the existing document record for the path.
func (m Model) lookupDocument() *document.Document {
	doc, err := m.services.Repo.FindByPath(m.services.Path)
	if err != nil {
		var notFound *document.NotFoundError
		if !errors.As(err, &notFound) {
			log.Warn(log.CatUI, "Document lookup failed", "path", m.services.Path, "error", err)
		}
		return nil
	}
	return doc
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textarea.Blink}
	if m.onChange != nil {
		cmds = append(cmds, m.waitForFileChange())
	}
	if m.logListener != nil {
		cmds = append(cmds, m.logListener.Listen())
	}
	return tea.Batch(cmds...)
}

// waitForFileChange blocks on the watcher channel and re-arms after
// each notification.
func (m Model) waitForFileChange() tea.Cmd {
	ch := m.onChange
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return fileChangedMsg{}
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		m.refreshRight()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case fileChangedMsg:
		return m.handleFileChanged()

	case savedMsg:
		if msg.err != nil {
			log.ErrorErr(log.CatUI, "Save failed", msg.err, "path", m.services.Path)
			return m.showError(fmt.Sprintf("Save failed: %v", msg.err))
		}
		m.doc = msg.doc
		m.baseline = m.editor.Value()
		m.diff = m.diff.SetRows(nil)
		return m.showStatus("Saved " + filepath.Base(m.services.Path))

	case assistResultMsg:
		return m.handleAssistResult(msg)

	case revisionRecordedMsg:
		if msg.err != nil {
			log.Warn(log.CatUI, "Failed to record revision", "error", msg.err)
		}
		return m, nil

	case diffview.ModeConstrainedMsg:
		return m.showError(fmt.Sprintf("Terminal too narrow for split view (need %d cols)", msg.MinWidth))

	case log.LogEvent:
		m.logLines = append(m.logLines, msg.Payload)
		if len(m.logLines) > maxLogLines {
			m.logLines = m.logLines[len(m.logLines)-maxLogLines:]
		}
		if m.right == rightLogs {
			m.refreshRight()
		}
		if m.logListener == nil {
			return m, nil
		}
		return m, m.logListener.Listen()

	case clearStatusMsg:
		m.statusMsg = ""
		m.statusIsErr = false
		return m, nil

	case spinner.TickMsg:
		if !m.assistPending {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m.updateFocused(msg)
}

// handleKey routes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// The instructions prompt captures input while open
	if m.focus == focusInstructions {
		switch {
		case key.Matches(msg, m.keys.Cancel):
			m.focus = focusEditor
			m.instructions.Blur()
			m.editor.Focus()
			return m, nil
		case key.Matches(msg, m.keys.Submit):
			return m.submitAssist()
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		}
		var cmd tea.Cmd
		m.instructions, cmd = m.instructions.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Save):
		return m, m.saveCmd()

	case key.Matches(msg, m.keys.Assist):
		if m.services.Reviser == nil {
			return m.showError("AI revisions unavailable: set OPENAI_API_KEY")
		}
		if m.assistPending {
			return m.showStatus("Revision already in progress")
		}
		m.focus = focusInstructions
		m.editor.Blur()
		m.instructions.SetValue("")
		return m, m.instructions.Focus()

	case key.Matches(msg, m.keys.Reload):
		return m.reloadFromDisk()

	case key.Matches(msg, m.keys.FocusNext):
		if m.focus == focusEditor {
			m.focus = focusRight
			m.editor.Blur()
		} else {
			m.focus = focusEditor
			m.editor.Focus()
		}
		return m, nil

	case key.Matches(msg, m.keys.ShowPreview):
		m.right = rightPreview
		m.refreshRight()
		return m, nil

	case key.Matches(msg, m.keys.ShowDiff):
		m.right = rightDiff
		m.refreshRight()
		return m, nil

	case key.Matches(msg, m.keys.ShowSummary):
		m.right = rightSummary
		m.refreshRight()
		return m, nil

	case key.Matches(msg, m.keys.ShowLogs):
		m.right = rightLogs
		m.refreshRight()
		return m, nil

	case key.Matches(msg, m.keys.ToggleLayout):
		var cmd tea.Cmd
		m.diff, cmd = m.diff.ToggleMode()
		if cmd != nil {
			return m, cmd
		}
		m.services.Config.UI.DiffMode = m.diff.Mode().String()
		return m, m.persistUICmd()
	}

	return m.updateFocused(msg)
}

// updateFocused forwards a message to the focused component.
func (m Model) updateFocused(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.focus {
	case focusEditor:
		before := m.editor.Value()
		m.editor, cmd = m.editor.Update(msg)
		if m.editor.Value() != before {
			m.refreshRight()
		}
	case focusRight:
		switch m.right {
		case rightPreview:
			m.preview, cmd = m.preview.Update(msg)
		case rightDiff:
			m.diff, cmd = m.diff.Update(msg)
		case rightSummary:
			m.summaryView, cmd = m.summaryView.Update(msg)
		case rightLogs:
			m.logsView, cmd = m.logsView.Update(msg)
		}
	case focusInstructions:
		m.instructions, cmd = m.instructions.Update(msg)
	}
	return m, cmd
}

// submitAssist launches an AI revision with the entered instructions.
func (m Model) submitAssist() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.instructions.Value())
	if text == "" {
		return m.showError("Instructions required")
	}

	m.focus = focusEditor
	m.instructions.Blur()
	m.editor.Focus()
	m.assistPending = true

	markdownText := m.editor.Value()
	reviser := m.services.Reviser
	timeout := m.services.Config.Assist.Timeout()

	log.Info(log.CatUI, "Requesting revision", "instructions", text)

	reviseCmd := func() tea.Msg {
		ctx := context.Background()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		result, err := reviser.Revise(ctx, assist.Request{
			Markdown:     markdownText,
			Instructions: text,
		})
		return assistResultMsg{result: result, err: err}
	}

	return m, tea.Batch(reviseCmd, m.spinner.Tick)
}

// handleAssistResult applies a completed revision.
func (m Model) handleAssistResult(msg assistResultMsg) (tea.Model, tea.Cmd) {
	m.assistPending = false

	if msg.err != nil {
		log.ErrorErr(log.CatUI, "Revision failed", msg.err)
		kind := assist.ErrOther
		var assistErr *assist.Error
		if errors.As(msg.err, &assistErr) {
			kind = assistErr.Kind
		}
		return m.showError(kind.UserMessage())
	}

	// Diff against the content the revision replaced
	m.baseline = m.editor.Value()
	m.editor.SetValue(msg.result.Markdown)
	m.summary = msg.result.Summary
	m.right = rightDiff
	m.refreshRight()

	var record tea.Cmd
	if m.services.Repo != nil && m.doc != nil {
		guid := m.doc.GUID
		repo := m.services.Repo
		body := msg.result.Markdown
		summary := msg.result.Summary
		record = func() tea.Msg {
			err := repo.SaveRevision(&document.Revision{
				DocumentGUID: guid,
				Body:         body,
				Summary:      summary,
				Source:       document.SourceAssist,
			})
			return revisionRecordedMsg{err: err}
		}
	}

	model, statusCmd := m.showStatus("Revision applied (ctrl+g for notes)")
	return model, tea.Batch(statusCmd, record)
}

// persistUICmd writes the current UI preferences back to the config
// file, keeping comments in other sections intact.
func (m Model) persistUICmd() tea.Cmd {
	if m.services.ConfigPath == "" {
		return nil
	}
	path := m.services.ConfigPath
	ui := m.services.Config.UI
	return func() tea.Msg {
		if err := config.SaveUI(path, ui); err != nil {
			log.Warn(log.CatConfig, "Failed to persist UI preferences", "path", path, "error", err)
		}
		return nil
	}
}

// saveCmd writes the editor content to disk and records the document.
func (m Model) saveCmd() tea.Cmd {
	content := m.editor.Value()
	path := m.services.Path
	repo := m.services.Repo
	doc := m.doc

	return func() tea.Msg {
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return savedMsg{err: fmt.Errorf("writing %s: %w", path, err)}
		}

		if repo == nil {
			return savedMsg{}
		}

		if doc == nil {
			doc = document.New(filepath.Base(path), path, content)
		} else {
			doc.Body = content
		}
		if err := repo.Save(doc); err != nil {
			return savedMsg{err: fmt.Errorf("saving document: %w", err)}
		}
		if err := repo.SaveRevision(&document.Revision{
			DocumentGUID: doc.GUID,
			Body:         content,
			Source:       document.SourceManual,
		}); err != nil {
			return savedMsg{err: fmt.Errorf("recording revision: %w", err)}
		}
		return savedMsg{doc: doc}
	}
}

// handleFileChanged reacts to external edits of the watched file.
func (m Model) handleFileChanged() (tea.Model, tea.Cmd) {
	rearm := m.waitForFileChange()

	if m.dirty() {
		model, cmd := m.showError("File changed on disk (ctrl+r to reload)")
		return model, tea.Batch(cmd, rearm)
	}

	model, cmd := m.reloadFromDisk()
	return model, tea.Batch(cmd, rearm)
}

// reloadFromDisk replaces the editor content with the file's current
// content.
func (m Model) reloadFromDisk() (tea.Model, tea.Cmd) {
	data, err := os.ReadFile(m.services.Path)
	if err != nil {
		return m.showError(fmt.Sprintf("Reload failed: %v", err))
	}
	m.editor.SetValue(string(data))
	m.baseline = string(data)
	m.refreshRight()
	return m.showStatus("Reloaded from disk")
}

// dirty reports whether the editor differs from the last saved state.
func (m Model) dirty() bool {
	return m.editor.Value() != m.baseline
}

// layout resizes all panes for the current window.
func (m *Model) layout() {
	contentHeight := m.height - statusBarHeight - helpBarHeight
	if m.focus == focusInstructions {
		contentHeight -= promptHeight
	}
	// Borders take 2 columns and 2 rows per pane
	paneHeight := max(contentHeight-2, 1)
	editorWidth := max(m.width/2-2, 1)
	rightWidth := max(m.width-m.width/2-2, 1)

	m.editor.SetWidth(editorWidth)
	m.editor.SetHeight(paneHeight)

	m.preview.Width = rightWidth
	m.preview.Height = paneHeight
	m.summaryView.Width = rightWidth
	m.summaryView.Height = paneHeight
	m.logsView.Width = rightWidth
	m.logsView.Height = paneHeight
	m.diff = m.diff.SetSize(rightWidth, paneHeight)

	m.instructions.Width = max(m.width-6, 10)

	// Renderer width tracks the preview pane
	if r, err := markdown.New(rightWidth, m.previewStyle()); err == nil {
		m.renderer = r
	}
}

// previewStyle resolves the configured markdown style.
func (m Model) previewStyle() string {
	return markdown.ResolveStyle(m.services.Config.UI.MarkdownStyle, styles.HasDarkBackground())
}

// refreshRight re-renders the visible right pane.
func (m *Model) refreshRight() {
	switch m.right {
	case rightPreview:
		if m.renderer == nil {
			return
		}
		rendered, err := m.renderer.Render(m.editor.Value())
		if err != nil {
			rendered = m.editor.Value()
		}
		m.preview.SetContent(rendered)
	case rightDiff:
		m.diff = m.diff.SetRows(diff.Rows(m.baseline, m.editor.Value()))
	case rightSummary:
		if m.summary == "" {
			m.summaryView.SetContent(styles.HelpStyle.Render("No revision notes yet"))
		} else if m.renderer != nil {
			rendered, err := m.renderer.Render(m.summary)
			if err != nil {
				rendered = m.summary
			}
			m.summaryView.SetContent(rendered)
		} else {
			m.summaryView.SetContent(m.summary)
		}
	case rightLogs:
		if len(m.logLines) == 0 {
			m.logsView.SetContent(styles.HelpStyle.Render("No log output (run with --debug)"))
			return
		}
		m.logsView.SetContent(strings.TrimRight(strings.Join(m.logLines, ""), "\n"))
		m.logsView.GotoBottom()
	}
}

// showStatus sets a transient status message.
func (m Model) showStatus(text string) (Model, tea.Cmd) {
	m.statusMsg = text
	m.statusIsErr = false
	return m, tea.Tick(statusDuration, func(time.Time) tea.Msg { return clearStatusMsg{} })
}

// showError sets a transient error message.
func (m Model) showError(text string) (Model, tea.Cmd) {
	m.statusMsg = text
	m.statusIsErr = true
	return m, tea.Tick(statusDuration, func(time.Time) tea.Msg { return clearStatusMsg{} })
}

// View implements tea.Model.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	editorPane := m.renderPane("Editor", m.editor.View(), m.focus == focusEditor)

	var rightTitle, rightContent string
	switch m.right {
	case rightPreview:
		rightTitle = "Preview"
		rightContent = m.preview.View()
	case rightDiff:
		rightTitle = "Diff (" + m.diff.Mode().String() + ")"
		rightContent = m.diff.View()
	case rightSummary:
		rightTitle = "Notes"
		rightContent = m.summaryView.View()
	case rightLogs:
		rightTitle = "Logs"
		rightContent = m.logsView.View()
	}
	rightPaneView := m.renderPane(rightTitle, rightContent, m.focus == focusRight)

	body := lipgloss.JoinHorizontal(lipgloss.Top, editorPane, rightPaneView)

	sections := []string{body}
	if m.focus == focusInstructions {
		sections = append(sections, m.renderPrompt())
	}
	sections = append(sections, m.renderStatusBar(), m.renderHelp())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderPane wraps content in a titled, bordered pane.
func (m Model) renderPane(title, content string, focused bool) string {
	border := styles.PaneBorderStyle
	if focused {
		border = styles.PaneBorderFocusedStyle
	}
	return border.Render(
		lipgloss.JoinVertical(lipgloss.Left, styles.PaneTitleStyle.Render(title), content),
	)
}

// renderPrompt renders the assist instructions input.
func (m Model) renderPrompt() string {
	return styles.PaneBorderFocusedStyle.Render(
		lipgloss.JoinVertical(lipgloss.Left,
			styles.PaneTitleStyle.Render("Revise"),
			m.instructions.View(),
		),
	)
}

// renderStatusBar renders path, dirty marker, diff stats, and status.
func (m Model) renderStatusBar() string {
	parts := []string{filepath.Base(m.services.Path)}
	if m.dirty() {
		parts = append(parts, "[+]")
	}
	if stats := m.diff.Stats(); stats.Added > 0 || stats.Removed > 0 {
		parts = append(parts, stats.String())
	}
	if m.assistPending {
		parts = append(parts, m.spinner.View()+" revising")
	}
	if m.statusMsg != "" {
		if m.statusIsErr {
			parts = append(parts, styles.ErrorStyle.UnsetPadding().Render(m.statusMsg))
		} else {
			parts = append(parts, m.statusMsg)
		}
	}
	return styles.StatusBarStyle.Render(strings.Join(parts, "  "))
}

// renderHelp renders the key hint footer.
func (m Model) renderHelp() string {
	hints := []string{
		"[tab] pane", "[ctrl+s] save", "[ctrl+a] revise",
		"[ctrl+p] preview", "[ctrl+d] diff", "[ctrl+v] layout", "[ctrl+q] quit",
	}
	return styles.HelpStyle.Render(strings.Join(hints, "  "))
}

// Close releases resources held by the application.
func (m *Model) Close() error {
	if m.logCancel != nil {
		m.logCancel()
	}
	if m.watcherHandle != nil {
		return m.watcherHandle.Stop()
	}
	return nil
}
