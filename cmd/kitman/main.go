// Package main provides the kitman CLI entry point.
package main

import (
	"fmt"
	"os"
	"os/user"

	"kitman/internal/config"
	"kitman/internal/logging"
	"kitman/internal/markup"
	"kitman/internal/store"
	"kitman/internal/types"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Global flags
	configPath string
	dbPath     string
	verbose    bool

	// Loaded by PersistentPreRunE, shared by every command
	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "kitman",
	Short: "kitman - announcement console for game servers",
	Long: `kitman manages the announcements a game-server fleet shows its players.

Announcements are written in the client's markup dialect (<color=...>, <b>,
<i> and the \n line break) and stored exactly as typed. kitman parses and
styles them the same way the game client does, so the preview in this
console is what players will see in game.

Run without arguments to open the interactive console.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if dbPath != "" {
			cfg.Storage.DatabasePath = dbPath
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		level := cfg.Logging.Level
		if verbose {
			level = "debug"
		}
		if err := logging.Initialize(cfg.Logging.Dir, level); err != nil {
			return fmt.Errorf("failed to initialize logging: %w", err)
		}

		// The console owns the whole terminal; keep stderr quiet for it.
		if cmd.Use == "kitman" && cmd.CalledAs() == "kitman" {
			return nil
		}

		zcfg := zap.NewProductionConfig()
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
		logging.CloseAll()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default behavior: open the interactive console
		return runConsole()
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath(), "Config file path")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Announcement database path (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	// Add commands to root
	rootCmd.AddCommand(announceCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(markupCmd)
	rootCmd.AddCommand(statsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openStore opens the announcement database at the configured path.
func openStore() (*store.AnnouncementStore, error) {
	st, err := store.NewAnnouncementStore(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open announcement database: %w", err)
	}
	return st, nil
}

// parseMarkup runs a raw body through the full pipeline with the configured
// nesting bound.
func parseMarkup(body string) []markup.Node {
	return markup.ParseWithLimit(markup.Preprocess(body), cfg.GetMaxNesting())
}

// resolveActor names the operator for the audit trail.
func resolveActor() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	if name := os.Getenv("USER"); name != "" {
		return name
	}
	return "unknown"
}

// audit records a successful mutation. Audit failures are logged rather than
// returned: the mutation already happened.
func audit(st *store.AnnouncementStore, id, action, detail string) {
	err := st.AppendAudit(types.AuditEntry{
		AnnouncementID: id,
		Action:         action,
		Detail:         detail,
		Actor:          resolveActor(),
	})
	if err != nil && logger != nil {
		logger.Warn("Failed to record audit entry", zap.String("id", id), zap.Error(err))
	}
}
