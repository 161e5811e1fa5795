package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"inkwell/app/console"
	"inkwell/app/routes"
	"inkwell/app/services"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func (c *cli) serveCommand() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the blog HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				c.cfg.HTTP.Addr = addr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return c.runAppServer(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides http.addr)")
	return cmd
}

// runAppServer serves the API until ctx is cancelled.
func (c *cli) runAppServer(ctx context.Context) error {
	store, err := openStore(c.cfg.Storage, c.logger)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()

	blog := services.NewBlog(store, services.WithLogger(c.logger))
	router := routes.SetupRoutes(blog, routes.Options{
		Logger:         c.logger,
		PermittedHosts: c.cfg.HTTP.PermittedHosts,
	})

	srv := &http.Server{
		Addr:              c.cfg.HTTP.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	c.logger.Info().
		Str("addr", srv.Addr).
		Str("driver", c.cfg.Storage.Driver).
		Strs("permitted_hosts", c.cfg.HTTP.PermittedHosts).
		Msg("Starting blog API")

	return runServer(ctx, srv, c.cfg.HTTP.ShutdownTimeout, c.logger)
}

// runServer runs srv until ctx ends, then shuts it down within timeout.
func runServer(ctx context.Context, srv *http.Server, timeout time.Duration, logger zerolog.Logger) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen on %s: %w", srv.Addr, err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		logger.Info().Msg("Server exited")
		return nil
	})

	return g.Wait()
}

func (c *cli) consoleCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "console",
		Short: "Manage the blog from an interactive menu",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(c.cfg.Storage, c.logger)
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer store.Close()

			// Mutation records would interleave with the menus.
			quiet := c.logger.Level(zerolog.WarnLevel)
			terminal := isatty.IsTerminal(os.Stdout.Fd())

			app := console.New(
				services.NewBlog(store, services.WithLogger(quiet)),
				console.NewPrompter(os.Stdin, os.Stdout),
				os.Stdout,
				console.WithMarkdown(console.NewMarkdown(terminal, 80)),
				console.WithLogger(quiet),
			)
			return app.Run(cmd.Context())
		},
	}
}
