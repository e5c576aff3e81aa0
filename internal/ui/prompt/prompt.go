// Package prompt implements the input component of the chat surface: a
// multi-line text area whose keys route through the modal editing engine
// when it is enabled, with plain editing as the fallback.
package prompt

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/quillcli/quill/internal/editor/buffer"
	"github.com/quillcli/quill/internal/editor/vim"
	"github.com/quillcli/quill/internal/keys"
	"github.com/quillcli/quill/internal/log"
	"github.com/quillcli/quill/internal/ui/styles"
)

// Config defines prompt configuration with optional callbacks.
type Config struct {
	// VimEnabled routes keys through the modal engine. When false the
	// prompt behaves as a plain textarea.
	VimEnabled bool

	// DefaultMode is the starting mode when vim is enabled.
	DefaultMode vim.Mode

	// Placeholder is the text shown when the prompt is empty.
	Placeholder string

	// OnSubmit produces a custom message when content is submitted.
	// If nil, the prompt produces SubmitMsg{Content: content}.
	OnSubmit func(content string) tea.Msg

	// OnModeChange produces a custom message when the editing mode
	// changes. If nil, ModeChangeMsg is emitted.
	OnModeChange func(mode, previous vim.Mode) tea.Msg
}

// SubmitMsg is sent when the user submits content (Enter).
type SubmitMsg struct {
	Content string
}

// ModeChangeMsg is sent when the editing mode changes.
type ModeChangeMsg struct {
	Mode     vim.Mode
	Previous vim.Mode
}

// DeferredKeyMsg re-emits a key the prompt deliberately does not own
// (tab, up, down) so the hosting surface can apply completion or
// history recall.
type DeferredKeyMsg struct {
	Event keys.Event
}

// submitSink captures a submission from the engine's synchronous
// callback so Update can turn it into a message.
type submitSink struct {
	content string
	fired   bool
}

// Model holds the prompt state.
type Model struct {
	config  Config
	buf     *buffer.Buffer
	engine  *vim.Engine
	sink    *submitSink
	width   int
	focused bool
}

// New creates a prompt with the given configuration.
func New(cfg Config) Model {
	buf := buffer.New()
	engine := vim.New(buf)
	engine.SetEnabled(cfg.VimEnabled)
	if cfg.VimEnabled {
		engine.SetMode(cfg.DefaultMode)
	}

	sink := &submitSink{}
	engine.SetOnSubmit(func(content string) {
		sink.content = content
		sink.fired = true
	})

	return Model{
		config: cfg,
		buf:    buf,
		engine: engine,
		sink:   sink,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok || !m.focused {
		return m, nil
	}

	ev := keys.FromTea(keyMsg)
	if ev.IsZero() {
		return m, nil
	}

	previous := m.engine.Mode()
	handled := m.engine.HandleKey(ev)

	var cmds []tea.Cmd
	if m.sink.fired {
		m.sink.fired = false
		cmds = append(cmds, m.submitCmd(m.sink.content))
	}
	if now := m.engine.Mode(); now != previous {
		cmds = append(cmds, m.modeChangeCmd(now, previous))
	}

	if !handled {
		cmd := m.handleDeferredKey(ev)
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
	}

	return m, tea.Batch(cmds...)
}

// handleDeferredKey deals with keys the engine reported unhandled:
// plain editing when the engine is off, submission on bare return, and
// re-emission of the keys the hosting surface owns.
func (m Model) handleDeferredKey(ev keys.Event) tea.Cmd {
	switch ev.Name {
	case "tab", "up", "down":
		return func() tea.Msg { return DeferredKeyMsg{Event: ev} }
	}
	if ev.Ctrl && ev.Sequence == "v" {
		return func() tea.Msg { return DeferredKeyMsg{Event: ev} }
	}

	if ev.Name == "return" && !ev.Ctrl && !ev.Meta {
		content := m.buf.Text()
		if content == "" {
			return nil
		}
		m.buf.SetText("")
		m.buf.MoveToOffset(0)
		return m.submitCmd(content)
	}

	if m.buf.HandleKey(ev) {
		return nil
	}
	log.Debug(log.CatUI, "Key ignored by prompt", "name", ev.Name, "seq", ev.Sequence)
	return nil
}

func (m Model) submitCmd(content string) tea.Cmd {
	if m.config.OnSubmit != nil {
		return func() tea.Msg { return m.config.OnSubmit(content) }
	}
	return func() tea.Msg { return SubmitMsg{Content: content} }
}

func (m Model) modeChangeCmd(mode, previous vim.Mode) tea.Cmd {
	if m.config.OnModeChange != nil {
		return func() tea.Msg { return m.config.OnModeChange(mode, previous) }
	}
	return func() tea.Msg { return ModeChangeMsg{Mode: mode, Previous: previous} }
}

// SetSize sets the render width.
func (m *Model) SetSize(w int) {
	m.width = w
}

// Focus focuses the prompt.
func (m *Model) Focus() {
	m.focused = true
}

// Blur removes focus.
func (m *Model) Blur() {
	m.focused = false
}

// Focused returns whether the prompt is focused.
func (m Model) Focused() bool {
	return m.focused
}

// Value returns the full content as a single string with newlines.
func (m Model) Value() string {
	return m.buf.Text()
}

// SetValue replaces the content, e.g. when recalling a past prompt.
func (m *Model) SetValue(s string) {
	m.buf.SetText(s)
	m.buf.MoveToOffset(len([]rune(s)))
}

// Mode returns the current editing mode.
func (m Model) Mode() vim.Mode {
	return m.engine.Mode()
}

// VimEnabled returns whether the modal engine is active.
func (m Model) VimEnabled() bool {
	return m.engine.Enabled()
}

// SetVimEnabled toggles the modal engine. Disabling drops back to plain
// editing; enabling starts in NORMAL mode.
func (m *Model) SetVimEnabled(enabled bool) {
	m.engine.SetEnabled(enabled)
	if enabled {
		m.engine.SetMode(vim.ModeNormal)
	}
}

// ModeIndicator returns a styled mode indicator, e.g. "[NORMAL]".
// Returns empty string when the modal engine is disabled.
func (m Model) ModeIndicator() string {
	if !m.engine.Enabled() {
		return ""
	}

	var color lipgloss.AdaptiveColor
	switch m.engine.Mode() {
	case vim.ModeNormal:
		color = styles.VimNormalModeColor
	case vim.ModeInsert:
		color = styles.VimInsertModeColor
	default:
		color = styles.TextMutedColor
	}

	indicator := "[" + m.engine.Mode().String() + "]"
	if pending := m.engine.Pending(); pending != vim.OpNone {
		indicator += " " + pending.String()
	}
	return lipgloss.NewStyle().Foreground(color).Render(indicator)
}
