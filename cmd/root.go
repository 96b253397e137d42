package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/socratiz/internal/config"
	"github.com/abhisek/socratiz/internal/logger"
	"github.com/abhisek/socratiz/internal/store"
)

var rootCmd = &cobra.Command{
	Use:          "socratiz",
	Short:        "Socratic tutor for kids",
	Long:         "Socratiz turns curriculum documents into Socratic conversation flows and walks students through them in the terminal.",
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides SOCRATIZ_DB env var)")
	rootCmd.PersistentFlags().String("config", "", "Path to YAML config file (overrides SOCRATIZ_CONFIG env var)")
	rootCmd.PersistentFlags().String("backend", "", "Document backend: sqlite or redis (overrides SOCRATIZ_BACKEND env var)")
	rootCmd.PersistentFlags().String("log", "", "Log mode: dev, prod or off (overrides SOCRATIZ_LOG env var)")

	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(flowCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig layers the config file, environment and command-line flags,
// flags winning.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		cfg.DBPath = p
	}
	if b, _ := cmd.Flags().GetString("backend"); b != "" {
		cfg.Backend = strings.ToLower(b)
	}
	if l, _ := cmd.Flags().GetString("log"); l != "" {
		cfg.Log.Mode = l
	}
	return cfg, cfg.Validate()
}

// resolveDBPath returns the configured database path (--db flag, then
// SOCRATIZ_DB or the config file), falling back to the default XDG path.
func resolveDBPath(cfg config.Config) (string, error) {
	if cfg.DBPath != "" {
		return cfg.DBPath, store.EnsureDir(cfg.DBPath)
	}
	return store.DefaultDBPath()
}

func newLogger(cfg config.Config) (*logger.Logger, error) {
	if cfg.Log.File != "" {
		return logger.New(cfg.Log.Mode, cfg.Log.File)
	}
	return logger.New(cfg.Log.Mode)
}

// env holds what every storage-backed command needs.
type env struct {
	cfg     config.Config
	log     *logger.Logger
	backend *store.Backend
}

func openEnv(cmd *cobra.Command) (*env, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	log, err := newLogger(cfg)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	dbPath, err := resolveDBPath(cfg)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	b, err := store.OpenBackend(cmd.Context(), cfg, dbPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	log.Debug("store opened", "backend", cfg.Backend, "db", dbPath)
	return &env{cfg: cfg, log: log, backend: b}, nil
}

func (e *env) Close() {
	if err := e.backend.Close(); err != nil {
		e.log.Warn("close store", "error", err)
	}
	e.log.Sync()
}
