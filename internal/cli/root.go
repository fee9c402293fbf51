// Package cli implements the expert-dx CLI commands.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rcliao/expert-dx/internal/config"
	"github.com/rcliao/expert-dx/internal/engine"
	"github.com/rcliao/expert-dx/internal/logging"
	"github.com/rcliao/expert-dx/internal/store"
)

var (
	dbPath     string
	formatFlag string
	configPath string
	verbose    bool

	cfg    = config.Default()
	logger = zap.NewNop()
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "expert-dx",
	Short: "Dengue vs. COVID-19 triage with three reasoning engines",
	Long: "Diagnose a patient fact vector with a rule-based, Bayesian or fuzzy engine,\n" +
		"compare the engines, and keep a SQLite log of clinician feedback.",
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Database path (default: $EXPERT_DX_DB or ~/.expert-dx/learning.db)")
	RootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", "", "Output format: json or text (default json)")
	RootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.expert-dx/config.yaml)")
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging to stderr")
}

func setup(cmd *cobra.Command, args []string) error {
	path := configPath
	if path == "" {
		path = config.DefaultPath()
	}

	loaded, err := config.Load(path)
	if err != nil {
		return err
	}
	if dbPath != "" {
		loaded.DBPath = dbPath
	}
	if formatFlag != "" {
		loaded.Format = formatFlag
	}
	if err := loaded.Validate(); err != nil {
		return err
	}
	cfg = loaded

	l, err := logging.New(cfg.LogLevel, verbose)
	if err != nil {
		return err
	}
	logger = l
	logger.Debug("config loaded",
		zap.String("path", path),
		zap.String("db", cfg.DBPath),
		zap.String("engine", cfg.DefaultEngine),
		zap.String("format", cfg.Format))
	return nil
}

func getDBPath() string {
	return cfg.DBPath
}

func openStore() (*store.SQLiteStore, error) {
	return store.NewSQLiteStore(getDBPath(), logger)
}

func newRegistry() *engine.Registry {
	reg, err := engine.NewRegistry(logger)
	if err != nil {
		exitErr("build engines", err)
	}
	return reg
}

func textOutput() bool {
	return cfg.Format == config.FormatText
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
