package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	adapthttp "weightlog/internal/adapter/http"
	"weightlog/internal/app"

	"github.com/spf13/cobra"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API and web UI",
		RunE: withRuntime(func(cmd *cobra.Command, _ []string, rt *runtime) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			charts := app.NewChartsService(rt.tracker, rt.loc)
			h := adapthttp.New(rt.tracker, charts, rt.metrics, rt.log, rt.cfg.WebDir).Handler()
			srv := &http.Server{
				Addr:              rt.cfg.Addr,
				Handler:           h,
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				rt.log.Info().Str("addr", rt.cfg.Addr).Str("store", rt.cfg.StoreDriver).Msg("listening")
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			rt.log.Info().Msg("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		}),
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the store schema",
		RunE: withRuntime(func(cmd *cobra.Command, _ []string, rt *runtime) error {
			// Opening the store applies the schema.
			rt.out.Fprintf(cmd.OutOrStdout(), "%s store is up to date\n", rt.cfg.StoreDriver)
			return nil
		}),
	}
}
