package messaging

import (
	"context"

	"github.com/apflow/invoice-pipeline/internal/domain"
)

// Publisher defines the interface for publishing pipeline events to the message broker
//
//go:generate mockgen -source=publisher.go -destination=../mocks/publisher.go -package=mocks -mock_names=Publisher=MockPublisher
type Publisher interface {
	// PublishDocumentIngested announces that a raw document landed in blob storage
	PublishDocumentIngested(ctx context.Context, event *domain.DocumentIngestedEvent) error
	// PublishFieldsExtracted announces that structured fields were committed for a request
	PublishFieldsExtracted(ctx context.Context, event *domain.FieldsExtractedEvent) error
	// PublishInvoiceMatched announces the match decision for a request
	PublishInvoiceMatched(ctx context.Context, event *domain.InvoiceMatchedEvent) error
	// Close closes the connection
	Close()
}
