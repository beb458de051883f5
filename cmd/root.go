package cmd

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/sadopc/drivetheory/internal/tui"
)

var rootCmd = &cobra.Command{
	Use:          "drivetheory",
	Short:        "Driving theory practice in the terminal",
	Long:         "drivetheory: practice UK driving theory questions, earn XP, keep a streak and track progress.",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides DRIVETHEORY_DB env var)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error (overrides DRIVETHEORY_LOG_LEVEL)")

	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(versionCmd)
}

func runApp(cmd *cobra.Command) error {
	e, err := openEnv(cmd, true)
	if err != nil {
		return err
	}
	defer e.Close()

	if n, err := e.db.AbandonStaleSessions(); err != nil {
		e.logger.Warn("close stale sessions", "error", err)
	} else if n > 0 {
		e.logger.Info("closed stale sessions", "count", n)
	}

	app := tui.NewApp(tui.Deps{
		Progress:  e.progress,
		DB:        e.db,
		Persister: e.persister,
		Logger:    e.logger,
	})
	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}

	// Background saves may still be in flight when the program exits.
	return e.save(cmd.Context())
}
