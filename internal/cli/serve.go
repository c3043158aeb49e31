package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"team-journal/internal/api"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the JSON API server",
		Long: `Run the journal JSON API.

The server listens on the configured address until interrupted, then drains
in-flight requests before closing the database.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := app.Service()
			if err != nil {
				return err
			}
			cfg := app.Config

			if port, _ := cmd.Flags().GetInt("port"); port > 0 {
				cfg.Server.Port = port
			}

			srv := api.NewServer(svc, app.tokens, api.Options{
				Addr:           cfg.ListenAddr(),
				ReadTimeout:    cfg.Server.ReadTimeout,
				WriteTimeout:   cfg.Server.WriteTimeout,
				AllowedOrigins: cfg.Server.AllowedOrigins,
				Logger:         &app.Logger,
				Auditor:        app.auditor,
			})

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() { errCh <- srv.Start() }()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			app.Logger.Info().Msg("Shutdown signal received")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				app.Logger.Error().Err(err).Msg("API server shutdown failed")
				return err
			}
			app.Logger.Info().Msg("Server stopped")
			return <-errCh
		},
	}

	cmd.Flags().Int("port", 0, "override the configured listen port")
	return cmd
}
