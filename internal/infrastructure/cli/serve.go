package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/featurecraft/internal/infrastructure/prompt"
	"github.com/felixgeelhaar/featurecraft/pkg/infrastructure/web"
)

var (
	serveAddr        string
	serveWatchPrompt bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web UI",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := loadServices()
		if err != nil {
			return MapError(err)
		}

		addr := svc.Config.Server.Addr
		if serveAddr != "" {
			addr = serveAddr
		}

		logger := slog.Default()
		srv, err := web.NewServer(addr, svc.Backlog, svc.Sessions, logger)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if serveWatchPrompt {
			go func() {
				if err := svc.Prompt.Watch(ctx, prompt.DefaultDebounce); err != nil && !errors.Is(err, context.Canceled) {
					logger.Warn("prompt watcher stopped", "error", err)
				}
			}()
		}

		errCh := make(chan error, 1)
		go func() { errCh <- srv.Start() }()

		fmt.Fprintf(cmd.OutOrStdout(), "featurecraft UI listening on %s\n", addr)

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from config, :8501)")
	serveCmd.Flags().BoolVar(&serveWatchPrompt, "watch-prompt", true, "Reload the prompt file when it changes")
	RootCmd.AddCommand(serveCmd)
}
