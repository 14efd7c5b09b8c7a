package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"survivalboard/middleware"
	"survivalboard/realtime"
)

const (
	shutdownTimeout       = 10 * time.Second
	systemMetricsInterval = 15 * time.Second
	limiterCleanupEvery   = 10 * time.Minute
	changeBuffer          = 256
)

// NewServeCommand creates the serve command
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API with the write auditor and session reaper",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), rootOpts)
		},
	}
}

func serve(parent context.Context, opts *RootOptions) error {
	cfg, log, err := opts.load()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := NewApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer app.Close()

	hub := realtime.NewHub(log.WithField("component", "realtime"))
	limiter := middleware.NewRateLimiter(cfg.RateLimit)

	// Subscribe before serving so no committed write escapes the auditor
	auditChanges, cancelAudit := app.Store.Subscribe(changeBuffer)
	defer cancelAudit()
	boardChanges, cancelBoard := app.Store.Subscribe(changeBuffer)
	defer cancelBoard()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           app.Router(hub, limiter),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		app.Auditor.Run(ctx, auditChanges)
		return nil
	})
	g.Go(func() error {
		app.Reaper.Run(ctx)
		return nil
	})
	g.Go(func() error {
		hub.Run(ctx)
		return nil
	})
	g.Go(func() error {
		app.Leaderboard.Watch(ctx, boardChanges, hub.Broadcast)
		return nil
	})
	g.Go(func() error {
		middleware.UpdateSystemMetrics(ctx, systemMetricsInterval, log)
		return nil
	})
	g.Go(func() error {
		ticker := time.NewTicker(limiterCleanupEvery)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				limiter.Cleanup(limiterCleanupEvery)
			}
		}
	})
	g.Go(func() error {
		log.WithField("addr", srv.Addr).Info("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
