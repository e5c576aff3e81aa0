// Package app contains the root application model: the transcript, the
// prompt, and the status bar, wired to history persistence, the agent
// runner, and the config watcher.
package app

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/quillcli/quill/internal/agent"
	"github.com/quillcli/quill/internal/config"
	"github.com/quillcli/quill/internal/editor/vim"
	"github.com/quillcli/quill/internal/flags"
	"github.com/quillcli/quill/internal/history"
	"github.com/quillcli/quill/internal/keys"
	"github.com/quillcli/quill/internal/log"
	"github.com/quillcli/quill/internal/ui/prompt"
	"github.com/quillcli/quill/internal/watcher"
)

// Services are the shared collaborators the app is wired with at
// startup. Repo is nil when history persistence is disabled.
type Services struct {
	Config     *config.Config
	ConfigPath string
	Repo       *history.Repository
	Runner     agent.Runner
	Flags      *flags.Registry

	// ReloadConfig re-reads the config file. The app calls it when the
	// watcher reports an external change.
	ReloadConfig func() (config.Config, error)
}

// transcriptEntry is one prompt/response exchange shown in the transcript.
type transcriptEntry struct {
	guid     string
	prompt   string
	response string
	err      error
	pending  bool
}

// Model is the root application state.
type Model struct {
	services Services
	keymap   keys.KeyMap
	prompt   prompt.Model

	transcript []transcriptEntry

	// History recall state driven by up/down in the prompt.
	recall    []history.Entry
	recallIdx int
	draft     string

	watcherHandle *watcher.Watcher
	watcherCh     <-chan struct{}

	width  int
	height int
}

// responseMsg carries the agent's answer (or error) for a submission.
type responseMsg struct {
	guid     string
	response string
	err      error
}

// configChangedMsg signals that the config file changed on disk.
type configChangedMsg struct{}

// New creates the application model. A config watcher is started on a
// best-effort basis; the app works without one.
func New(services Services) Model {
	vimEnabled := services.Config.UI.VimMode && services.Flags.Enabled(flags.FlagVimInput)

	p := prompt.New(prompt.Config{
		VimEnabled:  vimEnabled,
		DefaultMode: vim.ModeInsert,
		Placeholder: services.Config.UI.Placeholder,
	})
	p.Focus()

	m := Model{
		services:  services,
		keymap:    keys.DefaultKeyMap(),
		prompt:    p,
		recallIdx: -1,
	}

	if services.ConfigPath != "" && services.ReloadConfig != nil {
		w, err := watcher.New(watcher.DefaultConfig(services.ConfigPath))
		if err == nil {
			if ch, err := w.Start(); err == nil {
				m.watcherHandle = w
				m.watcherCh = ch
			} else {
				_ = w.Stop()
			}
		}
	}

	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return m.listenWatcher()
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.prompt.SetSize(msg.Width)
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keymap.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keymap.ToggleVim):
			return m.toggleVim()
		}
		var cmd tea.Cmd
		m.prompt, cmd = m.prompt.Update(msg)
		return m, cmd

	case prompt.SubmitMsg:
		return m.handleSubmit(msg.Content)

	case prompt.ModeChangeMsg:
		log.Debug(log.CatUI, "Mode changed", "from", msg.Previous.String(), "to", msg.Mode.String())
		return m, nil

	case prompt.DeferredKeyMsg:
		return m.handleDeferredKey(msg.Event)

	case responseMsg:
		return m.handleResponse(msg)

	case configChangedMsg:
		return m.handleConfigChanged()
	}

	return m, nil
}

// handleSubmit records the prompt, appends a pending transcript entry,
// and kicks off the agent run.
func (m Model) handleSubmit(content string) (tea.Model, tea.Cmd) {
	entry := transcriptEntry{prompt: content, pending: true}

	if m.services.Repo != nil && m.services.Flags.Enabled(flags.FlagHistoryPersistence) {
		stored, err := m.services.Repo.Append(content)
		if err != nil {
			log.ErrorErr(log.CatDB, "Failed to persist prompt", err)
		} else {
			entry.guid = stored.GUID
		}
	}

	m.transcript = append(m.transcript, entry)
	m.resetRecall()

	runner := m.services.Runner
	guid := entry.guid
	return m, func() tea.Msg {
		response, err := runner.Run(context.Background(), content)
		return responseMsg{guid: guid, response: response, err: err}
	}
}

// handleResponse resolves the matching pending transcript entry and
// stores the response alongside the prompt.
func (m Model) handleResponse(msg responseMsg) (tea.Model, tea.Cmd) {
	for i := len(m.transcript) - 1; i >= 0; i-- {
		if !m.transcript[i].pending {
			continue
		}
		if m.transcript[i].guid != msg.guid {
			continue
		}
		m.transcript[i].pending = false
		m.transcript[i].response = msg.response
		m.transcript[i].err = msg.err
		break
	}

	if msg.err == nil && msg.guid != "" && m.services.Repo != nil {
		if err := m.services.Repo.SetResponse(msg.guid, msg.response); err != nil {
			log.ErrorErr(log.CatDB, "Failed to persist response", err)
		}
	}
	return m, nil
}

// handleDeferredKey applies the keys the prompt does not own: up/down
// recall past prompts into the input.
func (m Model) handleDeferredKey(ev keys.Event) (tea.Model, tea.Cmd) {
	switch ev.Name {
	case "up":
		return m.recallOlder()
	case "down":
		return m.recallNewer()
	}
	// tab and ctrl+v are reserved for completion/paste integrations.
	log.Debug(log.CatUI, "Deferred key ignored", "name", ev.Name, "seq", ev.Sequence)
	return m, nil
}

func (m Model) recallOlder() (tea.Model, tea.Cmd) {
	if m.services.Repo == nil {
		return m, nil
	}
	if m.recall == nil {
		entries, err := m.services.Repo.Recent(m.services.Config.History.RecentLimit)
		if err != nil {
			log.ErrorErr(log.CatDB, "Failed to load recent prompts", err)
			return m, nil
		}
		m.recall = entries
		m.draft = m.prompt.Value()
	}
	if m.recallIdx+1 >= len(m.recall) {
		return m, nil
	}
	m.recallIdx++
	m.prompt.SetValue(m.recall[m.recallIdx].Text)
	return m, nil
}

func (m Model) recallNewer() (tea.Model, tea.Cmd) {
	if m.recallIdx < 0 {
		return m, nil
	}
	m.recallIdx--
	if m.recallIdx < 0 {
		m.prompt.SetValue(m.draft)
		return m, nil
	}
	m.prompt.SetValue(m.recall[m.recallIdx].Text)
	return m, nil
}

func (m *Model) resetRecall() {
	m.recall = nil
	m.recallIdx = -1
	m.draft = ""
}

// toggleVim flips the modal engine and persists the choice so it
// survives restarts.
func (m Model) toggleVim() (tea.Model, tea.Cmd) {
	if !m.services.Flags.Enabled(flags.FlagVimInput) {
		log.Debug(log.CatUI, "Vim toggle ignored, flag disabled")
		return m, nil
	}

	enabled := !m.prompt.VimEnabled()
	m.prompt.SetVimEnabled(enabled)
	m.services.Config.UI.VimMode = enabled
	log.Info(log.CatUI, "Vim input toggled", "enabled", enabled)

	if m.services.ConfigPath != "" {
		if err := config.SaveVimMode(m.services.ConfigPath, enabled); err != nil {
			log.ErrorErr(log.CatConfig, "Failed to save vim_mode", err)
		}
	}
	return m, nil
}

// handleConfigChanged re-reads the config file and applies the settings
// that can change at runtime.
func (m Model) handleConfigChanged() (tea.Model, tea.Cmd) {
	cfg, err := m.services.ReloadConfig()
	if err != nil {
		log.ErrorErr(log.CatConfig, "Failed to reload config", err)
		return m, m.listenWatcher()
	}

	log.Info(log.CatConfig, "Config reloaded", "vimMode", cfg.UI.VimMode)
	*m.services.Config = cfg

	wantVim := cfg.UI.VimMode && m.services.Flags.Enabled(flags.FlagVimInput)
	if wantVim != m.prompt.VimEnabled() {
		m.prompt.SetVimEnabled(wantVim)
	}
	return m, m.listenWatcher()
}

// listenWatcher waits for the next config change notification.
func (m Model) listenWatcher() tea.Cmd {
	if m.watcherCh == nil {
		return nil
	}
	ch := m.watcherCh
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return configChangedMsg{}
	}
}

// Close releases resources held by the application.
func (m *Model) Close() error {
	if m.watcherHandle != nil {
		return m.watcherHandle.Stop()
	}
	return nil
}
