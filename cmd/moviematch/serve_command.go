package main

import (
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"moviematch/internal/logging"
	"moviematch/internal/web"
)

var errServerRunning = errors.New("another moviematch server is running")

func newServeCommand(ctx *commandContext) *cobra.Command {
	var bind string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the movie browser page and JSON API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := ctx.buildApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			lock := flock.New(a.cfg.Server.LockPath)
			locked, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("acquire server lock: %w", err)
			}
			if !locked {
				return fmt.Errorf("%w (lock held at %s)", errServerRunning, a.cfg.Server.LockPath)
			}
			defer func() {
				if err := lock.Unlock(); err != nil {
					a.logger.Debug("release server lock", logging.Error(err))
				}
			}()

			address := a.cfg.Server.Bind
			if trimmed := strings.TrimSpace(bind); trimmed != "" {
				address = trimmed
			}
			listener, err := net.Listen("tcp", address)
			if err != nil {
				return fmt.Errorf("listen on %s: %w", address, err)
			}

			for _, notice := range a.service.StartupNotices() {
				logging.WarnWithContext(a.logger, notice.Message, "poster_credential_missing",
					logging.String(logging.FieldErrorHint, "set OMDB_API_KEY"),
					logging.String(logging.FieldImpact, "placeholder posters are shown"))
			}

			server := web.New(a.service,
				web.WithLogger(a.logger),
				web.WithRateLimit(a.cfg.Server.RateLimitPerMinute),
				web.WithStylesheet(a.cfg.Server.StylesheetPath),
				web.WithCORS(a.cfg.Server.CORSOrigins))

			fmt.Fprintf(cmd.OutOrStdout(), "Serving moviematch on http://%s\n", listener.Addr())

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return server.Serve(runCtx, listener)
		},
	}

	cmd.Flags().StringVar(&bind, "bind", "", "Override server.bind (host:port)")
	return cmd
}
