package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(app *App) *cobra.Command {
	var addr, store string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the webhook server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := app.Config
			if addr != "" {
				cfg.Server.Addr = addr
			}
			if store != "" {
				cfg.Store.Kind = store
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			st, closeStore, err := app.OpenStore(cfg, app.Logger)
			if err != nil {
				return err
			}
			defer closeStore()

			e, err := BuildServer(ctx, cfg, st, app.Logger, app.Version)
			if err != nil {
				return err
			}

			errCh := make(chan error, 1)
			go func() {
				app.Logger.WithFields(log.Fields{"addr": cfg.Server.Addr, "store": cfg.Store.Kind}).Info("listening")
				errCh <- e.Start(cfg.Server.Addr)
			}()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
			}

			app.Logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return e.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides DOCKET_ADDR)")
	cmd.Flags().StringVar(&store, "store", "", "Store backend: sqlite or supabase (overrides DOCKET_STORE)")

	return cmd
}
