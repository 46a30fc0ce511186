package commands

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/copilot/internal/logging"
	"github.com/cleared-dev/copilot/internal/tools"
)

func newServeCommand(g *globalFlags) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the metric tools over JSON-RPC on stdio, or HTTP with --http",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := g.load()
			if err != nil {
				return err
			}
			e, err := a.engine()
			if err != nil {
				return err
			}
			rt := a.runtime(e)

			if addr == "" {
				ctx := logging.WithContext(context.Background(), a.log)
				return tools.NewServer(rt, cmd.InOrStdin(), cmd.OutOrStdout()).Serve(ctx)
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := &http.Server{
				Addr:              addr,
				Handler:           tools.NewHandler(rt, a.log),
				ReadHeaderTimeout: 10 * time.Second,
			}
			errs := make(chan error, 1)
			go func() {
				a.log.Info().Str("addr", addr).Msg("starting server")
				errs <- srv.ListenAndServe()
			}()

			select {
			case err := <-errs:
				return err
			case <-ctx.Done():
				a.log.Info().Msg("shutdown initiated")

				// Give outstanding requests a deadline for completion.
				sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				if err := srv.Shutdown(sctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
					a.log.Error().Err(err).Msg("graceful shutdown failed")
					return srv.Close()
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "http", "", "listen address for the HTTP API, e.g. :8080")
	return cmd
}
