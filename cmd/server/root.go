package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/warp/timesheet-engine/config"
	"github.com/warp/timesheet-engine/store/sqlite"
)

var rootCmd = &cobra.Command{
	Use:   "server",
	Short: "Multi-tenant timesheet engine",
	Long: `server runs the timesheet API and its maintenance tasks.
Entries crossing midnight are split per local day and summarized into
total, evening and night hours for payroll.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(tokenCmd)
	rootCmd.AddCommand(seedCmd)
}

// bootstrap loads the configuration and sets up the default logger.
func bootstrap() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	return cfg, NewLogger(cfg.Log, os.Stderr), nil
}

// openStore opens and migrates the configured database, creating its
// directory when needed.
func openStore(cfg config.DatabaseConfig) (*sqlite.Store, error) {
	if cfg.Path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}
	store, err := sqlite.New(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", cfg.Path, err)
	}
	return store, nil
}
