package cli

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"captionburn/api"
	"captionburn/storage"

	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand(ctx *commandContext) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP transcode API",
		RunE: func(cmd *cobra.Command, args []string) error {
			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			s, err := ctx.buildServices(runCtx, nil)
			if err != nil {
				return err
			}
			tracker, err := ctx.tracker(runCtx, s)
			if err != nil {
				return err
			}

			deps := api.Deps{
				Transcoder:  s.orchestrator,
				Tracker:     tracker,
				BaseContext: runCtx,
				Logger:      s.logger,
			}
			if local, ok := s.store.(*storage.LocalStore); ok {
				deps.ArtifactDir = local.Dir()
			}

			if addr == "" {
				addr = s.cfg.Addr
			}
			server := &http.Server{Addr: addr, Handler: api.NewRouter(deps)}

			errCh := make(chan error, 1)
			go func() {
				s.logger.Info("api server listening", slog.String("addr", addr), slog.String("storage", s.cfg.Storage.Backend))
				errCh <- server.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-runCtx.Done():
			}

			s.logger.Info("shutting down api server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides config)")
	return cmd
}
