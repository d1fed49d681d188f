package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/warp/division-ops/api"
	"github.com/warp/division-ops/scheduler"
	"golang.org/x/sync/errgroup"
)

// shutdownTimeout bounds the graceful stop of the HTTP server.
const shutdownTimeout = 30 * time.Second

var serveFlags struct {
	addr string
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API, the notification worker and the scheduler",
	Long: `Starts the REST API, a worker delivering queued notifications and the
cron scheduler for reminders and balance resets. All three stop together on
SIGINT/SIGTERM: the server stops accepting connections and waits up to 30s
for active requests.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveFlags.addr, "addr", "", "listen address (overrides config)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := setup(ctx)
	if err != nil {
		return err
	}
	defer a.Close()
	if serveFlags.addr != "" {
		a.cfg.HTTP.Addr = serveFlags.addr
	}

	handler := api.NewHandler(a.svc, a.builder, a.pdf, a.log)
	server := &http.Server{
		Addr:         a.cfg.HTTP.Addr,
		Handler:      api.NewRouter(handler, a.cfg.HTTP.AllowedOrigins),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	sched := scheduler.New(a.svc, scheduler.Specs{
		Reminders:     a.cfg.Schedule.Reminders,
		SickReset:     a.cfg.Schedule.SickReset,
		FloatingReset: a.cfg.Schedule.FloatingReset,
	}, a.log)
	sched.Enabled = a.cfg.Schedule.Enabled
	if sched.Location, err = a.cfg.Schedule.Location(); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.log.Info("server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		a.log.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	g.Go(func() error { return a.worker.Run(gctx) })
	g.Go(func() error { return sched.Run(gctx) })

	if err := g.Wait(); err != nil {
		return err
	}
	a.log.Info("server stopped")
	return nil
}
