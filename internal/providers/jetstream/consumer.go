package jetstream

import (
	"context"
	"fmt"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/nats-io/nats.go/jetstream"
	"go.uber.org/zap"

	"github.com/apflow/invoice-pipeline/internal/adapter"
	"github.com/apflow/invoice-pipeline/internal/domain"
	"github.com/apflow/invoice-pipeline/internal/logger"
	"github.com/apflow/invoice-pipeline/internal/messaging"
	"github.com/apflow/invoice-pipeline/internal/retry"
	"github.com/apflow/invoice-pipeline/internal/store"
)

const (
	defaultWorkerPoolSize  = 10
	defaultWorkerQueueSize = 256
)

// ConsumerConfig holds the configuration for a durable stage consumer
type ConsumerConfig struct {
	URL             string
	StreamName      string
	ConsumerName    string
	FilterSubject   string
	MaxReconnects   int
	ReconnectWait   time.Duration
	ConnectionName  string
	AckWaitTimeout  time.Duration
	MaxDeliver      int
	WorkerPoolSize  int
	WorkerQueueSize int
}

// Consumer runs a durable JetStream consumer over a single stage subject
// and drives the StageHandler with at-least-once delivery semantics.
type Consumer interface {
	// Run starts consuming until the context is canceled
	Run(ctx context.Context) error
	// Close closes the connection and cleans up resources
	Close()
}

type consumer struct {
	nc      adapter.NatsConn
	js      adapter.JetStream
	store   store.Store
	json    adapter.JSON
	policy  retry.Policy
	handler messaging.StageHandler
	config  ConsumerConfig
}

// NewConsumer creates a new durable stage consumer
func NewConsumer(
	cfg ConsumerConfig,
	natsJS adapter.NatsJetStream,
	st store.Store,
	jsonAdapter adapter.JSON,
	policy retry.Policy,
	handler messaging.StageHandler,
) (Consumer, error) {
	nc, js, err := connect(cfg.URL, cfg.ConnectionName, cfg.MaxReconnects, cfg.ReconnectWait, natsJS)
	if err != nil {
		return nil, err
	}

	return &consumer{
		nc:      nc,
		js:      js,
		store:   st,
		json:    jsonAdapter,
		policy:  policy,
		handler: handler,
		config:  cfg,
	}, nil
}

// Run starts the consumer loop
func (c *consumer) Run(ctx context.Context) error {
	logger.Info("Starting stage consumer",
		zap.String("stream", c.config.StreamName),
		zap.String("consumer", c.config.ConsumerName),
		zap.String("subject", c.config.FilterSubject))

	consumerConfig := jetstream.ConsumerConfig{
		Durable:       c.config.ConsumerName,
		AckPolicy:     jetstream.AckExplicitPolicy,
		AckWait:       c.config.AckWaitTimeout,
		MaxDeliver:    c.config.MaxDeliver,
		FilterSubject: c.config.FilterSubject,
	}

	jsConsumer, err := c.js.CreateOrUpdateConsumer(ctx, c.config.StreamName, consumerConfig)
	if err != nil {
		return fmt.Errorf("failed to create/update consumer: %w", err)
	}

	consumerInfo, err := jsConsumer.Info(ctx)
	if err != nil {
		return fmt.Errorf("failed to get consumer info: %w", err)
	}
	logger.Info("Consumer created/retrieved", zap.String("consumer", consumerInfo.Name))

	poolSize := c.config.WorkerPoolSize
	if poolSize == 0 {
		poolSize = defaultWorkerPoolSize
	}
	queueSize := c.config.WorkerQueueSize
	if queueSize == 0 {
		queueSize = defaultWorkerQueueSize
	}

	pool := pond.NewPool(
		poolSize,
		pond.WithQueueSize(queueSize),
		pond.WithContext(ctx),
	)
	defer pool.StopAndWait()

	msgChan := make(chan adapter.Message, queueSize)
	sub, err := jsConsumer.Consume(func(msg adapter.Message) {
		msgChan <- msg
	})
	if err != nil {
		return fmt.Errorf("failed to create subscription: %w", err)
	}
	defer sub.Stop()

	logger.Info("Started consuming messages")

	for {
		select {
		case <-ctx.Done():
			logger.Info("Shutting down stage consumer", zap.String("consumer", c.config.ConsumerName))
			return ctx.Err()
		case msg := <-msgChan:
			pool.Submit(func() {
				c.handleMessage(ctx, msg)
			})
		}
	}
}

// handleMessage processes a single delivery and settles it
func (c *consumer) handleMessage(ctx context.Context, msg adapter.Message) {
	metadata, err := msg.Metadata()
	if err != nil {
		logger.ErrorCtx(ctx, err, zap.String("message", "Failed to read message metadata"))
		if err := msg.Nak(); err != nil {
			logger.ErrorCtx(ctx, err, zap.String("message", "Failed to NAK message"))
		}
		return
	}
	delivered := metadata.NumDelivered

	handlerErr := c.handler(ctx, msg.Data())
	if handlerErr == nil {
		// Work is committed; safe to remove from the stream
		if err := msg.Ack(); err != nil {
			logger.ErrorCtx(ctx, err, zap.String("message", "Failed to ACK message"))
		}
		return
	}

	if domain.IsValidationError(handlerErr) {
		logger.ErrorCtx(ctx, handlerErr,
			zap.String("message", "Terminating permanently unprocessable message"),
			zap.Uint64("deliveryCount", delivered))
		if err := msg.Term(); err != nil {
			logger.ErrorCtx(ctx, err, zap.String("message", "Failed to terminate message"))
		}
		return
	}

	if c.policy.Exhausted(delivered) {
		c.failRequest(ctx, msg.Data(), handlerErr)
		// The request is parked as failed; drop the delivery
		if err := msg.Ack(); err != nil {
			logger.ErrorCtx(ctx, err, zap.String("message", "Failed to ACK exhausted message"))
		}
		return
	}

	delay := c.policy.Delay(delivered)
	logger.WarnCtx(ctx, "Transient stage failure, scheduling redelivery",
		zap.Error(handlerErr),
		zap.Uint64("deliveryCount", delivered),
		zap.Duration("delay", delay))
	if err := msg.NakWithDelay(delay); err != nil {
		logger.ErrorCtx(ctx, err, zap.String("message", "Failed to NAK message"))
	}
}

// failRequest parks the request referenced by the payload as failed once
// the retry budget is spent. Every pipeline event carries a request_id.
func (c *consumer) failRequest(ctx context.Context, data []byte, cause error) {
	var envelope struct {
		RequestID string `json:"request_id"`
	}
	if err := c.json.Unmarshal(data, &envelope); err != nil || envelope.RequestID == "" {
		logger.ErrorCtx(ctx, cause, zap.String("message", "Retries exhausted for message without request_id"))
		return
	}

	reason := cause.Error()
	if err := c.store.MarkFailed(ctx, envelope.RequestID, reason); err != nil {
		logger.ErrorCtx(ctx, err,
			zap.String("message", "Failed to park exhausted request"),
			zap.String("requestID", envelope.RequestID))
		return
	}

	logger.WarnCtx(ctx, "Retries exhausted, request parked as failed",
		zap.String("requestID", envelope.RequestID),
		zap.String("reason", reason))
}

// Close closes the consumer and cleans up resources
func (c *consumer) Close() {
	if c.nc == nil {
		return
	}

	c.nc.Close()
}
