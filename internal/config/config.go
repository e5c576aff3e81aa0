// Package config provides configuration types and defaults for quill.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/quillcli/quill/internal/log"
)

// Config holds all configuration options for quill.
type Config struct {
	UI      UIConfig        `mapstructure:"ui"`
	History HistoryConfig   `mapstructure:"history"`
	Agent   AgentConfig     `mapstructure:"agent"`
	Flags   map[string]bool `mapstructure:"flags"`
}

// UIConfig holds user interface configuration options.
type UIConfig struct {
	VimMode       bool   `mapstructure:"vim_mode"`        // Enable modal (vim-style) editing in the prompt
	ShowStatusBar bool   `mapstructure:"show_status_bar"` // Show the mode/status bar at the bottom
	Placeholder   string `mapstructure:"placeholder"`     // Placeholder text shown in the empty prompt
}

// HistoryConfig holds prompt history persistence options.
type HistoryConfig struct {
	// Path is the SQLite database file holding prompt history.
	// Default: ~/.config/quill/history.db
	Path string `mapstructure:"path"`

	// RecentLimit is how many past prompts the recall list shows.
	RecentLimit int `mapstructure:"recent_limit"`
}

// AgentConfig selects the agent backend the prompt submits to.
type AgentConfig struct {
	// Runner names the backend. "echo" (default) answers locally, which
	// keeps the CLI usable without provider credentials.
	Runner string `mapstructure:"runner"`
}

// DefaultHistoryPath returns the default history database location, or
// empty string if the home directory is unavailable.
func DefaultHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "quill", "history.db")
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		UI: UIConfig{
			VimMode:       false, // Disabled by default for non-vim users
			ShowStatusBar: true,
			Placeholder:   "Ask anything...",
		},
		History: HistoryConfig{
			Path:        DefaultHistoryPath(),
			RecentLimit: 50,
		},
		Agent: AgentConfig{
			Runner: "echo",
		},
		Flags: map[string]bool{
			"vim-input":           true,
			"history-persistence": true,
		},
	}
}

// Validate checks configuration values for errors. Empty values fall
// back to defaults and are valid.
func Validate(cfg Config) error {
	if cfg.History.RecentLimit < 0 {
		return fmt.Errorf("history.recent_limit must be >= 0, got %d", cfg.History.RecentLimit)
	}
	if cfg.History.Path != "" && !filepath.IsAbs(cfg.History.Path) {
		return fmt.Errorf("history.path must be an absolute path, got %q", cfg.History.Path)
	}
	switch cfg.Agent.Runner {
	case "", "echo":
	default:
		return fmt.Errorf("agent.runner must be \"echo\", got %q", cfg.Agent.Runner)
	}
	return nil
}

// DefaultConfigTemplate returns the default config as a YAML string with comments.
func DefaultConfigTemplate() string {
	return `# Quill Configuration

# UI settings
ui:
  vim_mode: false         # Enable modal (vim-style) editing in the prompt
  show_status_bar: true   # Show the mode/status bar at the bottom
  # placeholder: "Ask anything..."

# Prompt history
history:
  # path: ~/.config/quill/history.db  # SQLite file holding past prompts
  recent_limit: 50        # How many past prompts the recall list shows

# Agent backend
agent:
  runner: echo            # "echo" answers locally without credentials

# Feature flags
flags:
  vim-input: true             # Route prompt keys through the modal engine
  history-persistence: true   # Persist submitted prompts to SQLite
`
}

// WriteDefaultConfig creates a config file at the given path with default settings and comments.
// Creates the parent directory if it doesn't exist.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}
