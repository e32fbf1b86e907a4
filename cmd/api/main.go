package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	server "booking_snapshots/internal/adapters/http_server"
	"booking_snapshots/internal/adapters/observability"
	"booking_snapshots/internal/app"
	"booking_snapshots/internal/shared"
	"booking_snapshots/internal/wire"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, "snapshot-api")

	reg := observability.InitRegistry()
	observability.Serve(cfg.MetricsAddr, reg)

	deps, err := wire.New(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("wiring failed")
	}
	defer deps.Close()

	decoder := app.NewSnapshotDecoder(app.WithHashVerification(cfg.VerifySnapshotHash))
	policy := app.NewDegradationPolicy(deps.Locator, decoder)
	orch := app.NewOrchestrator(policy, app.WithWorkers(cfg.FanoutWorkers))
	svc := app.NewBookingSnapshotService(deps.Bookings, orch)

	health := map[string]server.Pinger{}
	for name, p := range deps.Pingers {
		health[name] = p
	}

	srv := server.New(cfg.RequestTimeout)
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{Svc: svc, BatchTimeout: cfg.BatchTimeout, Deps: health})

	httpSrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv.Mux(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	srvErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Int("fanout_workers", cfg.FanoutWorkers).Msg("API listening")
		srvErr <- httpSrv.ListenAndServe()
	}()

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("http server failed")
		}
	case <-stopCtx.Done():
		log.Info().Msg("shutdown signal received")
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error().Err(err).Msg("http shutdown failed")
	}
	log.Info().Msg("API stopped")
}
