package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/quillcli/quill/internal/agent"
	"github.com/quillcli/quill/internal/app"
	"github.com/quillcli/quill/internal/config"
	"github.com/quillcli/quill/internal/flags"
	"github.com/quillcli/quill/internal/history"
	"github.com/quillcli/quill/internal/log"
)

func init() {
	// Force lipgloss/termenv to query terminal background color BEFORE
	// any Bubble Tea program starts. This prevents the terminal's OSC 11
	// response from racing with Bubble Tea's input loop and appearing as
	// garbage text in input fields.
	//
	// See: https://github.com/charmbracelet/bubbletea/issues/1036
	_ = lipgloss.HasDarkBackground()
}

var (
	version   = "dev"
	cfgFile   string
	debugMode bool
	noVim     bool
	cfg       config.Config
)

var rootCmd = &cobra.Command{
	Use:     "quill",
	Short:   "An AI-assisted coding CLI with modal prompt editing",
	Long:    `A terminal chat interface for AI-assisted coding, with a vim-style modal editing engine for the prompt, persistent prompt history, and pluggable agent backends.`,
	Version: version,
	RunE:    runApp,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: ~/.config/quill/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false,
		"write debug logs to ~/.config/quill/quill.log")
	rootCmd.Flags().BoolVar(&noVim, "no-vim", false,
		"start with modal (vim-style) editing disabled")
}

func initConfig() {
	defaults := config.Defaults()
	viper.SetDefault("ui.vim_mode", defaults.UI.VimMode)
	viper.SetDefault("ui.show_status_bar", defaults.UI.ShowStatusBar)
	viper.SetDefault("ui.placeholder", defaults.UI.Placeholder)
	viper.SetDefault("history.path", defaults.History.Path)
	viper.SetDefault("history.recent_limit", defaults.History.RecentLimit)
	viper.SetDefault("agent.runner", defaults.Agent.Runner)
	viper.SetDefault("flags", defaults.Flags)

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Config lookup order:
		// 1. .quill/config.yaml (current directory)
		// 2. ~/.config/quill/config.yaml (user config)
		if _, err := os.Stat(".quill/config.yaml"); err == nil {
			viper.SetConfigFile(".quill/config.yaml")
		} else {
			home, _ := os.UserHomeDir()
			viper.AddConfigPath(filepath.Join(home, ".config", "quill"))
			viper.SetConfigName("config")
			viper.SetConfigType("yaml")
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		// No config file found anywhere - create a default user config
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			home, homeErr := os.UserHomeDir()
			if homeErr == nil {
				defaultPath := filepath.Join(home, ".config", "quill", "config.yaml")
				if writeErr := config.WriteDefaultConfig(defaultPath); writeErr == nil {
					viper.SetConfigFile(defaultPath)
					_ = viper.ReadInConfig()
				}
			}
			// If write fails, just continue with defaults (no config file)
		}
	}

	_ = viper.Unmarshal(&cfg)
}

// reloadConfig re-reads the config file for the running app.
func reloadConfig() (config.Config, error) {
	if err := viper.ReadInConfig(); err != nil {
		return config.Config{}, fmt.Errorf("re-reading config: %w", err)
	}
	var fresh config.Config
	if err := viper.Unmarshal(&fresh); err != nil {
		return config.Config{}, fmt.Errorf("parsing config: %w", err)
	}
	return fresh, nil
}

// initLogging sets up the debug log when requested via flag or env.
// Returns a cleanup function (possibly a no-op).
func initLogging() func() {
	if !debugMode && os.Getenv("QUILL_DEBUG") == "" {
		return func() {}
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return func() {}
	}
	logPath := filepath.Join(home, ".config", "quill", "quill.log")
	if err := os.MkdirAll(filepath.Dir(logPath), 0o750); err != nil {
		return func() {}
	}
	cleanup, err := log.Init(logPath)
	if err != nil {
		return func() {}
	}
	return cleanup
}

func runApp(cmd *cobra.Command, args []string) error {
	cleanup := initLogging()
	defer cleanup()

	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if noVim {
		cfg.UI.VimMode = false
	}

	registry := flags.New(cfg.Flags)

	var repo *history.Repository
	var db *history.DB
	if registry.Enabled(flags.FlagHistoryPersistence) {
		path := cfg.History.Path
		if path == "" {
			path = config.DefaultHistoryPath()
		}
		var err error
		db, err = history.NewDB(path)
		if err != nil {
			// History is a convenience; the chat still works without it.
			log.ErrorErr(log.CatDB, "History unavailable", err, "path", path)
		} else {
			repo = db.Repository()
			defer func() { _ = db.Close() }()
		}
	}

	model := app.New(app.Services{
		Config:       &cfg,
		ConfigPath:   viper.ConfigFileUsed(),
		Repo:         repo,
		Runner:       agent.ForName(cfg.Agent.Runner),
		Flags:        registry,
		ReloadConfig: reloadConfig,
	})

	p := tea.NewProgram(
		&model,
		tea.WithAltScreen(),
	)

	_, err := p.Run()

	if closeErr := model.Close(); closeErr != nil && err == nil {
		err = closeErr
	}

	if err != nil {
		return fmt.Errorf("running program: %w", err)
	}
	return nil
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
