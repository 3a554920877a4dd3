package jetstream

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/apflow/invoice-pipeline/internal/adapter"
	"github.com/apflow/invoice-pipeline/internal/domain"
	"github.com/apflow/invoice-pipeline/internal/logger"
	"github.com/apflow/invoice-pipeline/internal/messaging"
)

// Config holds the configuration for NATS JetStream connection
type Config struct {
	URL            string
	StreamName     string
	MaxReconnects  int
	ReconnectWait  time.Duration
	ConnectionName string
}

type publisher struct {
	nc         adapter.NatsConn
	js         adapter.JetStream
	streamName string
	json       adapter.JSON
}

// NewPublisher creates a new NATS JetStream publisher
func NewPublisher(cfg Config, natsJS adapter.NatsJetStream, jsonAdapter adapter.JSON) (messaging.Publisher, error) {
	nc, js, err := connect(cfg.URL, cfg.ConnectionName, cfg.MaxReconnects, cfg.ReconnectWait, natsJS)
	if err != nil {
		return nil, err
	}

	return &publisher{
		nc:         nc,
		js:         js,
		streamName: cfg.StreamName,
		json:       jsonAdapter,
	}, nil
}

// connect dials NATS with the shared reconnect handlers
func connect(url, name string, maxReconnects int, reconnectWait time.Duration, natsJS adapter.NatsJetStream) (adapter.NatsConn, adapter.JetStream, error) {
	opts := []nats.Option{
		nats.Name(name),
		nats.MaxReconnects(maxReconnects),
		nats.ReconnectWait(reconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			if err != nil {
				logger.Error(err, zap.String("message", "Disconnected from NATS"))
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("Reconnected to NATS", zap.String("url", nc.ConnectedUrl()))
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			logger.Info("NATS connection closed")
		}),
	}

	nc, js, err := natsJS.Connect(url, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to NATS and create JetStream: %w", err)
	}
	return nc, js, nil
}

// PublishDocumentIngested publishes a document-ingested event
func (p *publisher) PublishDocumentIngested(ctx context.Context, event *domain.DocumentIngestedEvent) error {
	if err := event.Valid(); err != nil {
		return err
	}
	return p.publish(ctx, domain.SubjectDocumentIngested, event)
}

// PublishFieldsExtracted publishes a fields-extracted event
func (p *publisher) PublishFieldsExtracted(ctx context.Context, event *domain.FieldsExtractedEvent) error {
	if err := event.Valid(); err != nil {
		return err
	}
	return p.publish(ctx, domain.SubjectFieldsExtracted, event)
}

// PublishInvoiceMatched publishes an invoice-matched event
func (p *publisher) PublishInvoiceMatched(ctx context.Context, event *domain.InvoiceMatchedEvent) error {
	if err := event.Valid(); err != nil {
		return err
	}
	return p.publish(ctx, domain.SubjectInvoiceMatched, event)
}

func (p *publisher) publish(ctx context.Context, subject string, event any) error {
	logger.Debug("Publishing Nats event", zap.String("subject", subject), zap.Any("event", event))

	data, err := p.json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if _, err := p.js.Publish(ctx, subject, data); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}

// Close closes the NATS connection
func (p *publisher) Close() {
	if p.nc == nil {
		return
	}

	p.nc.Close()
}
