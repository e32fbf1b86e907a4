package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	amqpad "booking_snapshots/internal/adapters/amqp"
	"booking_snapshots/internal/adapters/observability"
	"booking_snapshots/internal/app"
	"booking_snapshots/internal/shared"
	"booking_snapshots/internal/wire"
)

func main() {
	cfg := shared.Load()

	// initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, "snapshot-warmer")

	observability.Serve(cfg.MetricsAddr, observability.InitRegistry())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := wire.New(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("wiring failed")
	}
	defer deps.Close()

	warm := app.NewWarmService(deps.Bookings, deps.Locator)

	consumer, err := amqpad.Dial(cfg.AMQPURL, cfg.AMQPQueue, amqpad.WarmKeys)
	if err != nil {
		log.Fatal().Err(err).Msg("amqp setup failed")
	}
	defer consumer.Close()

	log.Info().Int("workers", cfg.WarmWorkers).Msg("warmer starting")

	err = consumer.Run(ctx, cfg.WarmWorkers, func(ctx context.Context, e amqpad.Event) error {
		return warm.Warm(ctx, e.ReservationID)
	})
	if err != nil {
		log.Error().Err(err).Msg("warmer stopped")
		return
	}
	log.Info().Msg("warmer stopped")
}
