package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/PaulPerea/paymentorder/internal/config"
	"github.com/PaulPerea/paymentorder/internal/payment/application"
	"github.com/PaulPerea/paymentorder/internal/payment/domain"
	"github.com/PaulPerea/paymentorder/internal/payment/infrastructure/blob"
	paymenthttp "github.com/PaulPerea/paymentorder/internal/payment/infrastructure/http"
	paymentkafka "github.com/PaulPerea/paymentorder/internal/payment/infrastructure/kafka"
	pg "github.com/PaulPerea/paymentorder/internal/payment/infrastructure/postgres"
	"github.com/PaulPerea/paymentorder/internal/payment/infrastructure/processor"
	"github.com/PaulPerea/paymentorder/internal/payment/infrastructure/redisqueue"
	"github.com/PaulPerea/paymentorder/pkg/logging"
	"github.com/PaulPerea/paymentorder/pkg/metrics"
	"github.com/PaulPerea/paymentorder/pkg/retry"
	"github.com/PaulPerea/paymentorder/pkg/shutdown"
	"github.com/PaulPerea/paymentorder/pkg/tracing"
)

func main() {
	log := logging.New()
	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		log.Error("config load failed", "err", err)
		os.Exit(1)
	}

	if cfg.TracingEnabled {
		tp, err := tracing.Init(ctx, "payment-processor", cfg.OTLPEndpoint, log)
		if err != nil {
			log.Error("otel init failed", "err", err)
			os.Exit(1)
		}
		defer func() { _ = tp.Shutdown(context.Background()) }()
	}

	pool, err := pgxpool.New(ctx, cfg.PostgresURL)
	if err != nil {
		log.Error("pg connect failed", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	repo := pg.NewRepository(log, pool)
	if err := repo.EnsureSchema(ctx); err != nil {
		log.Error("schema setup failed", "err", err)
		os.Exit(1)
	}

	audit, err := buildAuditStore(ctx, cfg, log)
	if err != nil {
		log.Error("audit store setup failed", "err", err)
		os.Exit(1)
	}

	queue, cleanup, err := buildQueue(ctx, cfg, log)
	if err != nil {
		log.Error("queue setup failed", "err", err)
		os.Exit(1)
	}
	defer cleanup()

	retryCfg := retry.Default()
	retryCfg.Attempts = cfg.RetryAttempts
	retryCfg.BaseDelay = cfg.RetryBaseDelay

	met := metrics.New(prometheus.DefaultRegisterer)
	svc := application.NewService(log, domain.NewService(), repo, audit, retryCfg)
	proc := processor.New(log, queue, svc, cfg.PollingInterval, cfg.WorkerCount, met)

	handler := paymenthttp.NewHandler(log, svc)
	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      handler.Routes(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		if err := proc.Run(ctx); err != nil {
			log.Error("processor stopped", "err", err)
			cancel()
		}
	}()

	go func() {
		log.Info("http listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("http server error", "err", err)
			cancel()
		}
	}()

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = srv.Shutdown(shutdownCtx)
	log.Info("payment-processor shutdown complete")
}

func buildAuditStore(ctx context.Context, cfg config.Config, log *slog.Logger) (application.AuditRepository, error) {
	if !cfg.AuditEnabled {
		return blob.NewNoOpAuditStore(log), nil
	}
	store, err := blob.NewAuditStore(log, blob.Options{
		Endpoint:  cfg.BlobEndpoint,
		AccessKey: cfg.BlobAccessKey,
		SecretKey: cfg.BlobSecretKey,
		Bucket:    cfg.BlobBucket,
		UseSSL:    cfg.BlobUseSSL,
	})
	if err != nil {
		return nil, err
	}
	if err := store.EnsureBucket(ctx); err != nil {
		return nil, err
	}
	return store, nil
}

func buildQueue(ctx context.Context, cfg config.Config, log *slog.Logger) (application.OrderQueue, func(), error) {
	switch cfg.QueueDriver {
	case config.QueueDriverKafka:
		q := paymentkafka.New(log, cfg.KafkaBrokers, cfg.KafkaTopic, cfg.KafkaGroup, cfg.KafkaDLQTopic, cfg.BatchSize)
		return q, func() { _ = q.Close() }, nil
	default:
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		q := redisqueue.New(log, rdb, redisqueue.Options{
			Stream:     cfg.RedisStream,
			DLQStream:  cfg.RedisDLQStream,
			Group:      cfg.RedisGroup,
			Consumer:   cfg.RedisConsumer,
			BatchSize:  int64(cfg.BatchSize),
			Visibility: cfg.RedisVisibility,
		})
		if err := q.EnsureGroup(ctx); err != nil {
			return nil, nil, err
		}
		return q, func() { _ = rdb.Close() }, nil
	}
}
