// Package cli provides the command-line interface for the team journal.
package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"team-journal/internal/api"
	"team-journal/internal/config"
	"team-journal/internal/ids"
	"team-journal/internal/journal"
	"team-journal/internal/logging"
	"team-journal/internal/models"
	"team-journal/internal/security"
	"team-journal/internal/store"
	"team-journal/pkg/utils"
)

// Version information
const (
	Version   = "0.1.0"
	BuildDate = "2024-05-01"
)

// operatorActor is the identity used for local administrative commands run
// without --as. Whoever can run the binary can already open the database.
var operatorActor = models.Actor{UserID: "operator", Role: models.RoleMentor, Active: true}

// App holds the application dependencies. Everything past Config is opened lazily
// so commands like version and config path work without a database.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
	Clock  utils.Clock

	store   store.DataStore
	journal *journal.Service
	tokens  *api.Tokens
	auditor security.Auditor
	closers []io.Closer
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd() *cobra.Command {
	app := &App{Clock: utils.SystemClock{}}
	return newRootCmd(app)
}

func newRootCmd(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "journal",
		Short: "Team trading journal",
		Long: `Team Journal is a role-gated trading journal for a trading team.

Members log trades, mentors review and score them, and a daily risk lock
stops new submissions once a member is down 2R or more for the New York day.

Use 'journal serve' to run the JSON API and the other commands for local administration.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.loadConfig(cmd)
		},
	}

	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/team-journal)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	rootCmd.PersistentFlags().String("as", "", "act as this profile id (default: local operator)")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd(app))
	rootCmd.AddCommand(newServeCmd(app))
	addMemberCommands(rootCmd, app)
	addInsightCommands(rootCmd, app)
	addReviewCommands(rootCmd, app)

	return rootCmd
}

// Execute runs the CLI and returns the process exit code.
func Execute(args []string, stdout, stderr io.Writer) int {
	app := &App{Clock: utils.SystemClock{}}
	defer app.Close()

	rootCmd := newRootCmd(app)
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func (app *App) loadConfig(cmd *cobra.Command) error {
	if app.Config != nil {
		return nil
	}
	dir, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(dir)
	if err != nil {
		return err
	}
	app.Config = cfg

	logCfg := cfg.LogConfig()
	logCfg.ConsoleOut = cmd.ErrOrStderr()
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		logCfg.Level = "debug"
	}
	app.Logger = logging.NewLoggerWithConfig(logCfg)

	if cfg.TemplatePath != "" {
		app.Logger.Info().Str("path", cfg.TemplatePath).Msg("Wrote default configuration")
	}
	return nil
}

// Service opens the store and builds the journal service on first use.
func (app *App) Service() (*journal.Service, error) {
	if app.journal != nil {
		return app.journal, nil
	}
	if app.Config == nil {
		return nil, fmt.Errorf("configuration not loaded")
	}
	cfg := app.Config

	sqlite, err := store.NewSQLiteStoreWithOptions(cfg.Database.Path, store.Options{
		BusyTimeoutMS: cfg.Database.BusyTimeoutMS,
		MaxOpenConns:  cfg.Database.MaxOpenConns,
	})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	app.store = store.NewRetryingStore(sqlite, cfg.Database.RetryAttempts)
	app.closers = append(app.closers, app.store)
	app.Logger.Debug().Str("path", cfg.Database.Path).Msg("SQLite store opened")

	app.auditor = security.NopAuditor{}
	if cfg.Audit.Enabled {
		auditLog, err := security.NewAuditLogger(security.AuditConfig{
			LogDir:     cfg.Audit.Dir,
			MaxSize:    cfg.Audit.MaxSize,
			MaxBackups: cfg.Audit.MaxBackups,
			MaxAge:     cfg.Audit.MaxAge,
			Compress:   true,
		})
		if err != nil {
			return nil, fmt.Errorf("opening audit log: %w", err)
		}
		app.auditor = auditLog
		app.closers = append(app.closers, auditLog)
	}

	app.journal = journal.NewService(app.store, journal.Options{
		Clock:            app.Clock,
		Location:         cfg.Location(),
		QueryTimeout:     cfg.Database.QueryTimeout,
		Auditor:          app.auditor,
		Logger:           &app.Logger,
		StrictValidation: cfg.Security.StrictValidation,
	})
	app.tokens = api.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL, app.Clock)
	return app.journal, nil
}

// Close releases the store and audit log.
func (app *App) Close() {
	for i := len(app.closers) - 1; i >= 0; i-- {
		if err := app.closers[i].Close(); err != nil {
			app.Logger.Warn().Err(err).Msg("Close failed")
		}
	}
	app.closers = nil
}

// actor resolves --as, falling back to the local operator.
func (app *App) actor(ctx context.Context, cmd *cobra.Command) (models.Actor, error) {
	id, _ := cmd.Flags().GetString("as")
	if id == "" {
		return operatorActor, nil
	}
	if !ids.IsProfileID(id) {
		return models.Actor{}, fmt.Errorf("--as %q is not a profile id", id)
	}
	svc, err := app.Service()
	if err != nil {
		return models.Actor{}, err
	}
	return svc.ResolveActor(ctx, id)
}

// location is the configured trading-day zone used for displayed times.
func (app *App) location() *time.Location {
	if app.Config == nil {
		return utils.NewYorkLocation
	}
	return app.Config.Location()
}

// commandContext bounds a one-shot CLI command.
func commandContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		// Skips config loading.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if output.IsJSON() {
				return output.JSON(map[string]string{
					"version":    Version,
					"build_date": BuildDate,
				})
			}
			output.Printf("Team Journal v%s\n", Version)
			output.Dim("Build date: %s", BuildDate)
			return nil
		},
	}
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  "View and validate application configuration.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			redacted := *app.Config
			redacted.Auth.JWTSecret = security.MaskCredential(redacted.Auth.JWTSecret)
			if output.IsJSON() {
				return output.JSON(redacted)
			}
			showConfig(output, &redacted)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			path := config.ConfigPath(app.Config.Dir)
			if output.IsJSON() {
				return output.JSON(map[string]string{"path": path})
			}
			output.Println(path)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := app.Config.Validate(); err != nil {
				output.Error("Configuration validation failed: %v", err)
				return err
			}
			if output.IsJSON() {
				return output.JSON(map[string]bool{"valid": true})
			}
			output.Success("Configuration is valid")
			return nil
		},
	})

	return cmd
}

func showConfig(output *Output, cfg *config.Config) {
	output.Bold("Server")
	output.Printf("  Listen:          %s\n", cfg.ListenAddr())
	output.Printf("  Allowed Origins: %v\n", cfg.Server.AllowedOrigins)
	output.Println()

	output.Bold("Database")
	output.Printf("  Path:            %s\n", cfg.Database.Path)
	output.Printf("  Query Timeout:   %s\n", cfg.Database.QueryTimeout)
	output.Printf("  Retry Attempts:  %d\n", cfg.Database.RetryAttempts)
	output.Println()

	output.Bold("Auth")
	output.Printf("  Issuer:          %s\n", cfg.Auth.Issuer)
	output.Printf("  Token TTL:       %s\n", cfg.Auth.TokenTTL)
	output.Printf("  Secret:          %s\n", cfg.Auth.JWTSecret)
	output.Println()

	output.Bold("Logging & Audit")
	output.Printf("  Level:           %s\n", cfg.Logging.Level)
	output.Printf("  Log File:        %v (%s)\n", cfg.Logging.File, cfg.Logging.FilePath)
	output.Printf("  Audit:           %v (%s)\n", cfg.Audit.Enabled, cfg.Audit.Dir)
	output.Printf("  Strict Input:    %v\n", cfg.Security.StrictValidation)
	output.Println()

	output.Bold("Risk")
	output.Printf("  Trading Day TZ:  %s\n", cfg.Risk.Timezone)
}
