package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/dwikikusuma/shoe-store/pkg/config"
	"github.com/dwikikusuma/shoe-store/pkg/kafka"
	"github.com/dwikikusuma/shoe-store/pkg/logger"
	"github.com/dwikikusuma/shoe-store/pkg/outbox"
	"github.com/dwikikusuma/shoe-store/pkg/postgres"
	"github.com/dwikikusuma/shoe-store/pkg/shutdown"
)

// relay drains the Postgres outbox into Kafka. Run it alongside the api when
// the api itself is started without KAFKA_BROKERS.
func main() {
	cfg := config.Load()
	log := logger.New(logger.Options{Service: "relay", Env: cfg.AppEnv, Level: cfg.LogLevel, AddSource: true})

	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	kc := kafka.NewClient(cfg.KafkaBrokers)
	if !kc.Enabled() {
		log.Error("KAFKA_BROKERS is required")
		os.Exit(1)
	}

	pool, err := postgres.Open(ctx, postgres.Config{URL: cfg.DatabaseURL, MaxConns: 4})
	if err != nil {
		log.Error("db open failed", slog.Any("err", err))
		os.Exit(1)
	}
	defer pool.Close()

	pub := kafka.NewPublisher(kc.NewWriter())
	defer pub.Close()

	relay := outbox.NewRelay(outbox.NewPostgresStore(pool, cfg.KafkaTopic), pub, outbox.RelayOptions{
		Interval:  cfg.OutboxPoll,
		BatchSize: cfg.OutboxBatch,
		Logger:    log,
	})

	if err := relay.Run(ctx); err != nil {
		log.Error("relay stopped", slog.Any("err", err))
		os.Exit(1)
	}
	log.Info("bye")
}
