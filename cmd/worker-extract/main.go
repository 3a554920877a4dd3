package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/apflow/invoice-pipeline/internal/adapter"
	"github.com/apflow/invoice-pipeline/internal/blob"
	"github.com/apflow/invoice-pipeline/internal/config"
	"github.com/apflow/invoice-pipeline/internal/domain"
	"github.com/apflow/invoice-pipeline/internal/extraction"
	"github.com/apflow/invoice-pipeline/internal/logger"
	"github.com/apflow/invoice-pipeline/internal/providers/jetstream"
	"github.com/apflow/invoice-pipeline/internal/retry"
	"github.com/apflow/invoice-pipeline/internal/store"
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	envPath    = flag.String("env", "config/", "Path to environment files")
)

func main() {
	flag.Parse()

	// Load configuration
	config.ChdirRepoRoot()
	cfg, err := config.LoadWorkerExtractConfig(*configFile, *envPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize logger with sentry integration
	err = logger.Initialize(logger.Config{
		Debug:           cfg.Debug,
		SentryDSN:       cfg.SentryDSN,
		BreadcrumbLevel: zapcore.InfoLevel,
		Tags: map[string]string{
			"service": "worker-extract",
		},
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)
	logger.InfoCtx(ctx, "Starting extraction worker")

	// Connect to database
	db, err := gorm.Open(postgres.Open(cfg.Database.DSN()), &gorm.Config{})
	if err != nil {
		logger.FatalCtx(ctx, "Failed to connect to database", zap.Error(err))
	}
	if err := store.ConfigureConnectionPool(db, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns, cfg.Database.ConnMaxLifetime, cfg.Database.ConnMaxIdleTime); err != nil {
		logger.FatalCtx(ctx, "Failed to configure connection pool", zap.Error(err))
	}
	logger.InfoCtx(ctx, "Connected to database")

	// Initialize store
	dataStore := store.NewPGStore(db)

	// Initialize adapters
	jsonAdapter := adapter.NewJSON()
	natsJS := adapter.NewNatsJetStream()
	httpClient := adapter.NewHTTPClient(cfg.Extraction.Timeout)

	// Connect to object storage
	blobStore, err := blob.NewGCSStore(ctx, cfg.Blob.Bucket, cfg.Blob.CredentialsFile)
	if err != nil {
		logger.FatalCtx(ctx, "Failed to connect to object storage", zap.Error(err), zap.String("bucket", cfg.Blob.Bucket))
	}
	defer blobStore.Close()

	// Connect publisher for the downstream fields-extracted event
	publisher, err := jetstream.NewPublisher(jetstream.Config{
		URL:            cfg.NATS.URL,
		StreamName:     cfg.NATS.StreamName,
		MaxReconnects:  cfg.NATS.MaxReconnects,
		ReconnectWait:  cfg.NATS.ReconnectWait,
		ConnectionName: "invoice-pipeline-worker-extract-pub",
	}, natsJS, jsonAdapter)
	if err != nil {
		logger.FatalCtx(ctx, "Failed to connect to NATS", zap.Error(err), zap.String("url", cfg.NATS.URL))
	}
	defer publisher.Close()

	// Build the tiered extractor. Tier 2 is optional and only consulted
	// when the first pass comes back below the escalation cutoff.
	tier1 := extraction.NewHTTPExtractor(httpClient, jsonAdapter, cfg.Extraction.Tier1URL, "")
	var extractor extraction.Extractor
	if cfg.Extraction.Tier2URL != "" {
		tier2 := extraction.NewHTTPExtractor(httpClient, jsonAdapter, cfg.Extraction.Tier2URL, cfg.Extraction.Tier2APIKey)
		extractor = extraction.NewTieredExtractor(tier1, tier2, cfg.Extraction.EscalationCutoff)
	} else {
		logger.WarnCtx(ctx, "Tier 2 extraction endpoint not configured, low-confidence results will not be escalated")
		extractor = tier1
	}

	stage := extraction.NewStage(dataStore, blobStore, extractor, publisher, jsonAdapter)

	policy := retry.Policy{
		MaxAttempts: int(cfg.Retry.MaxAttempts),
		BaseDelay:   cfg.Retry.BaseDelay,
		Multiplier:  cfg.Retry.Multiplier,
		MaxDelay:    cfg.Retry.MaxDelay,
	}

	consumer, err := jetstream.NewConsumer(jetstream.ConsumerConfig{
		URL:             cfg.NATS.URL,
		StreamName:      cfg.NATS.StreamName,
		ConsumerName:    cfg.NATS.ConsumerName,
		FilterSubject:   domain.SubjectDocumentIngested,
		MaxReconnects:   cfg.NATS.MaxReconnects,
		ReconnectWait:   cfg.NATS.ReconnectWait,
		ConnectionName:  "invoice-pipeline-worker-extract",
		AckWaitTimeout:  cfg.NATS.AckWait,
		MaxDeliver:      cfg.NATS.MaxDeliver,
		WorkerPoolSize:  cfg.Worker.WorkerPoolSize,
		WorkerQueueSize: cfg.Worker.WorkerQueueSize,
	}, natsJS, dataStore, jsonAdapter, policy, stage.Handle)
	if err != nil {
		logger.FatalCtx(ctx, "Failed to create consumer", zap.Error(err))
	}
	defer consumer.Close()
	logger.InfoCtx(ctx, "Extraction consumer created",
		zap.String("stream", cfg.NATS.StreamName),
		zap.String("consumer", cfg.NATS.ConsumerName))

	// Setup signal handling
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			errCh <- err
		}
	}()

	select {
	case sig := <-sigCh:
		logger.InfoCtx(ctx, "Received shutdown signal", zap.String("signal", sig.String()))
		cancel()
	case err := <-errCh:
		logger.ErrorCtx(ctx, err, zap.String("component", "consumer"))
		cancel()
	}

	logger.Info("Extraction worker stopped")
}
