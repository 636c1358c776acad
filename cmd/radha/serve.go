package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/radha-ai/radha/internal/api"
	"github.com/radha-ai/radha/pkg/observability"
)

func newServeCmd() *cobra.Command {
	var listenAddr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the REST API server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			log := newLogger()
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			app, err := buildApp(ctx)
			if err != nil {
				return err
			}
			if listenAddr != "" {
				app.cfg.ListenAddr = listenAddr
			}

			observability.InitMetrics()
			if err := observability.InitTracing(ctx, observability.TracingFromEnv()); err != nil {
				return err
			}

			log.Info().
				Str("version", version).
				Str("default_model", app.cfg.DefaultModel).
				Bool("local_available", app.local.Available()).
				Bool("cloud_available", app.cloud.Available()).
				Msg("starting radha")

			server := api.NewServer(app.cfg.ListenAddr, app.assistant, app.health, log)

			// Runtime gauges are sampled on a fixed schedule rather than
			// per request.
			scheduler := cron.New()
			if _, err := scheduler.AddFunc("@every 15s", func() {
				observability.RefreshRuntimeGauges()
				observability.SetActiveSessions(app.store.Sessions())
			}); err != nil {
				return err
			}
			scheduler.Start()

			g, gctx := errgroup.WithContext(ctx)
			g.Go(server.Start)
			g.Go(func() error {
				<-gctx.Done()
				log.Info().Msg("shutting down")

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				defer cancel()

				<-scheduler.Stop().Done()
				if err := observability.ShutdownTracing(shutdownCtx); err != nil {
					log.Warn().Err(err).Msg("tracing shutdown")
				}
				return server.Shutdown(shutdownCtx)
			})

			if err := g.Wait(); err != nil {
				return err
			}
			log.Info().Msg("stopped")
			return nil
		},
	}

	cmd.Flags().StringVar(&listenAddr, "listen", "", "listen address (overrides config)")
	return cmd
}
