package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"github.com/dwikikusuma/shoe-store/internal/api"
	ordergrpc "github.com/dwikikusuma/shoe-store/internal/order/grpc"
	paymentapp "github.com/dwikikusuma/shoe-store/internal/payment/app"
	"github.com/dwikikusuma/shoe-store/internal/payment/infra/gateway"
	"github.com/dwikikusuma/shoe-store/internal/storage/memory"
	"github.com/dwikikusuma/shoe-store/pkg/config"
	"github.com/dwikikusuma/shoe-store/pkg/idempotency"
	"github.com/dwikikusuma/shoe-store/pkg/kafka"
	"github.com/dwikikusuma/shoe-store/pkg/logger"
	"github.com/dwikikusuma/shoe-store/pkg/outbox"
	"github.com/dwikikusuma/shoe-store/pkg/postgres"
	"github.com/dwikikusuma/shoe-store/pkg/shutdown"
)

func main() {
	cfg := config.Load()
	log := logger.New(logger.Options{Service: "api", Env: cfg.AppEnv, Level: cfg.LogLevel, AddSource: true})

	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("api exited", slog.Any("err", err))
		os.Exit(1)
	}
	log.Info("bye")
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	backend, source, closeStore, err := openBackend(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	idem, closeIdem, err := openIdempotency(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeIdem()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	a := api.New(backend, api.Options{
		Currency:       cfg.Currency,
		Gateway:        paymentGateway(cfg, log),
		Idempotency:    idem,
		Registry:       reg,
		RequestTimeout: cfg.RequestTimeout,
		Logger:         log,
	})

	httpAddr := fmt.Sprintf(":%d", cfg.HTTPPort)
	httpServer := &http.Server{
		Addr:              httpAddr,
		Handler:           a.Handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	grpcAddr := fmt.Sprintf(":%d", cfg.GRPCPort)
	lis, err := net.Listen("tcp", grpcAddr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", grpcAddr, err)
	}
	grpcServer := grpc.NewServer(grpc.UnaryInterceptor(ordergrpc.RequireAdmin))
	ordergrpc.Register(grpcServer, ordergrpc.NewServer(a.Orders, log.With(slog.String("component", "grpc"))))

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("http server starting", slog.String("addr", httpAddr), slog.String("store", cfg.StoreBackend))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		log.Info("grpc starting", slog.String("addr", grpcAddr))
		if err := grpcServer.Serve(lis); err != nil {
			return fmt.Errorf("grpc serve: %w", err)
		}
		return nil
	})

	kc := kafka.NewClient(cfg.KafkaBrokers)
	if kc.Enabled() {
		pub := kafka.NewPublisher(kc.NewWriter())
		defer pub.Close()
		relay := outbox.NewRelay(source, pub, outbox.RelayOptions{
			Interval:  cfg.OutboxPoll,
			BatchSize: cfg.OutboxBatch,
			Logger:    log.With(slog.String("component", "outbox")),
		})
		g.Go(func() error { return relay.Run(gctx) })
	} else {
		log.Info("kafka brokers not configured, outbox relay disabled")
	}

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutdown requested")

		stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer stopCancel()
		if err := httpServer.Shutdown(stopCtx); err != nil {
			log.Error("http shutdown error", slog.Any("err", err))
		}

		if !shutdown.Graceful(10*time.Second, grpcServer.GracefulStop, grpcServer.Stop) {
			log.Warn("graceful stop timeout, forced grpc stop")
		}
		return nil
	})

	return g.Wait()
}

// openBackend returns the stores for cfg.StoreBackend plus the outbox source
// the relay drains.
func openBackend(ctx context.Context, cfg config.Config, log *slog.Logger) (api.Backend, outbox.Source, func(), error) {
	switch cfg.StoreBackend {
	case config.StoreBackendMemory:
		log.Warn("using in-memory store, data is lost on restart")
		db := memory.NewDB(memory.WithTopic(cfg.KafkaTopic))
		return api.MemoryBackend(db), memory.NewOutboxStore(db), func() {}, nil

	case config.StoreBackendPostgres:
		pool, err := postgres.Open(ctx, postgres.Config{URL: cfg.DatabaseURL})
		if err != nil {
			return api.Backend{}, nil, nil, fmt.Errorf("db open: %w", err)
		}
		if cfg.AutoMigrate {
			if err := postgres.Migrate(ctx, pool); err != nil {
				pool.Close()
				return api.Backend{}, nil, nil, fmt.Errorf("db migrate: %w", err)
			}
		}
		return api.PostgresBackend(pool, cfg.KafkaTopic), outbox.NewPostgresStore(pool, cfg.KafkaTopic), pool.Close, nil

	default:
		return api.Backend{}, nil, nil, fmt.Errorf("unknown STORE_BACKEND %q", cfg.StoreBackend)
	}
}

func openIdempotency(ctx context.Context, cfg config.Config, log *slog.Logger) (idempotency.Store, func(), error) {
	if cfg.RedisURL == "" {
		return idempotency.NewMemoryStore(cfg.IdempotencyTTL), func() {}, nil
	}
	client, err := idempotency.OpenRedis(ctx, cfg.RedisURL)
	if err != nil {
		return nil, nil, err
	}
	log.Info("idempotency keys stored in redis")
	return idempotency.NewRedisStore(client, cfg.IdempotencyTTL), func() { _ = client.Close() }, nil
}

func paymentGateway(cfg config.Config, log *slog.Logger) paymentapp.Gateway {
	if cfg.MockPayments || cfg.PaymentURL == "" {
		log.Info("using mock payment gateway")
		return gateway.Mock{}
	}
	return gateway.NewHTTPGateway(cfg.PaymentURL, cfg.RequestTimeout)
}
