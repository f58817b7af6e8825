// Package cmd wires the CLI commands.
package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zjrosen/markpad/internal/app"
	"github.com/zjrosen/markpad/internal/assist"
	"github.com/zjrosen/markpad/internal/config"
	"github.com/zjrosen/markpad/internal/infrastructure/sqlite"
	"github.com/zjrosen/markpad/internal/log"
	"github.com/zjrosen/markpad/internal/ui/styles"
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
	debugFlag bool
	cfg       config.Config
)

var rootCmd = &cobra.Command{
	Use:   "markpad [file]",
	Short: "A terminal markdown workbench",
	Long: `A terminal editor for markdown with live preview, revision history,
and AI-assisted rewrites shown as reviewable diffs.`,
	Version: version,
	Args:    cobra.MaximumNArgs(1),
	RunE:    runApp,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: ~/.config/markpad/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false,
		"enable debug logging")
	rootCmd.Flags().String("db", "",
		"path to the document database")
	rootCmd.Flags().Bool("no-watch", false,
		"disable automatic reload when the file changes on disk")

	_ = viper.BindPFlag("database_path", rootCmd.Flags().Lookup("db"))
}

func initConfig() {
	defaults := config.Defaults()
	viper.SetDefault("auto_reload", defaults.AutoReload)
	viper.SetDefault("ui.show_status_bar", defaults.UI.ShowStatusBar)
	viper.SetDefault("ui.markdown_style", defaults.UI.MarkdownStyle)
	viper.SetDefault("ui.diff_mode", defaults.UI.DiffMode)
	viper.SetDefault("assist.model", defaults.Assist.Model)
	viper.SetDefault("assist.timeout_seconds", defaults.Assist.TimeoutSeconds)
	viper.SetDefault("serve.addr", defaults.Serve.Addr)
	viper.SetDefault("serve.rate_limit", defaults.Serve.RateLimit)
	viper.SetDefault("serve.allowed_origins", defaults.Serve.AllowedOrigins)

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Config lookup order:
		// 1. .markpad/config.yaml (current directory)
		// 2. ~/.config/markpad/config.yaml (user config)
		if _, err := os.Stat(".markpad/config.yaml"); err == nil {
			viper.SetConfigFile(".markpad/config.yaml")
		} else {
			home, _ := os.UserHomeDir()
			viper.AddConfigPath(filepath.Join(home, ".config", "markpad"))
			viper.SetConfigName("config")
			viper.SetConfigType("yaml")
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		// No config file found anywhere - create a commented default
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			home, homeErr := os.UserHomeDir()
			if homeErr == nil {
				defaultPath := filepath.Join(home, ".config", "markpad", "config.yaml")
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

func runApp(cmd *cobra.Command, args []string) error {
	if debugFlag || os.Getenv("MARKPAD_DEBUG") != "" {
		logPath := os.Getenv("MARKPAD_LOG")
		if logPath == "" {
			logPath = "debug.log"
		}
		cleanup, err := log.InitWithTeaLog(logPath, "markpad")
		if err != nil {
			return fmt.Errorf("initializing logging: %w", err)
		}
		defer cleanup()
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if err := styles.ApplyTheme(styles.ThemeConfig{
		Mode:   cfg.Theme.Mode,
		Colors: cfg.Theme.FlattenedColors(),
	}); err != nil {
		return fmt.Errorf("applying theme: %w", err)
	}

	if noWatch, _ := cmd.Flags().GetBool("no-watch"); noWatch {
		cfg.AutoReload = false
	}

	path, content, err := resolveDocument(args)
	if err != nil {
		return err
	}

	// Where layout preference changes get written back
	configFilePath := viper.ConfigFileUsed()
	if configFilePath == "" {
		if home, err := os.UserHomeDir(); err == nil {
			configFilePath = filepath.Join(home, ".config", "markpad", "config.yaml")
		}
	}

	services := app.Services{
		Config:     cfg,
		Path:       path,
		ConfigPath: configFilePath,
	}

	dbPath := cfg.DatabasePath
	if dbPath == "" {
		dbPath = config.DefaultDatabasePath()
	}
	store, err := sqlite.Open(dbPath)
	if err != nil {
		// Revision history is an enhancement; the editor works without it
		log.Warn(log.CatStore, "Store unavailable, revision history disabled",
			"path", dbPath, "error", err)
	} else {
		defer func() { _ = store.Close() }()
		services.Repo = store.Documents()
	}

	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		services.Reviser = assist.NewService(assist.Config{
			APIKey:  apiKey,
			BaseURL: cfg.Assist.BaseURL,
			Model:   cfg.Assist.Model,
			Timeout: cfg.Assist.Timeout(),
		})
	}

	model := app.New(services, content)
	p := tea.NewProgram(model, tea.WithAltScreen())

	_, err = p.Run()

	if closeErr := model.Close(); closeErr != nil && err == nil {
		err = closeErr
	}

	if err != nil {
		return fmt.Errorf("running program: %w", err)
	}
	return nil
}

// resolveDocument determines the file to edit and loads it. With no
// argument a persistent scratch document is used; a named file that
// does not exist yet starts empty and is created on first save.
func resolveDocument(args []string) (string, string, error) {
	var path string
	if len(args) > 0 {
		path = args[0]
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", "", fmt.Errorf("resolving home directory: %w", err)
		}
		path = filepath.Join(home, ".config", "markpad", "scratch.md")
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", "", fmt.Errorf("resolving %s: %w", path, err)
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return abs, "", nil
		}
		return "", "", fmt.Errorf("reading %s: %w", abs, err)
	}
	return abs, string(data), nil
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
