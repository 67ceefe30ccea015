// Package cli wires the fokus commands: the TUI by default, plus task,
// export, stats and config subcommands for scripting.
package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/sadopc/fokus/internal/config"
	"github.com/sadopc/fokus/internal/session"
	"github.com/sadopc/fokus/internal/store"
	"github.com/sadopc/fokus/internal/tasks"
	"github.com/sadopc/fokus/internal/tui"
)

// options holds the persistent flags shared by every subcommand.
type options struct {
	configPath string
	dbPath     string
}

func newRootCmd(version string) *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "fokus",
		Short: "fokus - a task list with a focus timer",
		Long: `fokus keeps a list of tasks and runs pomodoro style focus sessions for them.

Run without arguments to open the terminal UI.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd.Context(), opts)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version,
	}

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default ~/.config/fokus/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&opts.dbPath, "db", "", "database path, overrides the config file")

	rootCmd.AddCommand(newTasksCmd(opts))
	rootCmd.AddCommand(newExportCmd(opts))
	rootCmd.AddCommand(newStatsCmd(opts))
	rootCmd.AddCommand(newConfigCmd(opts))
	rootCmd.AddCommand(newVersionCmd(version))
	return rootCmd
}

// Execute runs the root command
func Execute(version string) error {
	if err := newRootCmd(version).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

func (o *options) path() string {
	if o.configPath != "" {
		return o.configPath
	}
	return config.DefaultPath()
}

func (o *options) load() (*config.Config, error) {
	cfg, err := config.Load(o.path())
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if o.dbPath != "" {
		cfg.DBPath = o.dbPath
	}
	return cfg, nil
}

func (o *options) openStore() (*store.Store, *config.Config, error) {
	cfg, err := o.load()
	if err != nil {
		return nil, nil, err
	}
	s, err := store.New(cfg.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	return s, cfg, nil
}

// openTasks opens the store and loads the task list from it.
func (o *options) openTasks(ctx context.Context) (*store.Store, *tasks.Store, error) {
	s, _, err := o.openStore()
	if err != nil {
		return nil, nil, err
	}
	ts := tasks.NewStore(s)
	ts.Load(ctx)
	return s, ts, nil
}

func runTUI(ctx context.Context, o *options) error {
	s, cfg, err := o.openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	if cfg.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0o755); err != nil {
			return fmt.Errorf("create log directory: %w", err)
		}
		f, err := tea.LogToFile(cfg.LogFile, "fokus")
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
	}

	term := tui.NewTerminal(tui.TerminalOptions{
		Notifications: cfg.Notifications,
		Sounds:        cfg.Sounds,
		Bell:          os.Stderr,
	})
	timer := session.New(session.Options{
		Durations:   tui.LoadDurations(s),
		SettleDelay: cfg.SettleDelay,
		Notifier:    term,
		Player:      term,
		Haptics:     term,
		History:     s,
	})
	timer.Mount(ctx)
	defer timer.Unmount()

	app := tui.NewApp(tui.Options{
		Store:  s,
		Tasks:  tasks.NewStore(s),
		Timer:  timer,
		Events: term.Events(),
	})
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithReportFocus(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}

func newVersionCmd(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "fokus %s\n", version)
		},
	}
}
