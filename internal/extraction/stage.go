package extraction

import (
	"context"
	"errors"
	"fmt"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/apflow/invoice-pipeline/internal/adapter"
	"github.com/apflow/invoice-pipeline/internal/blob"
	"github.com/apflow/invoice-pipeline/internal/domain"
	"github.com/apflow/invoice-pipeline/internal/logger"
	"github.com/apflow/invoice-pipeline/internal/messaging"
	"github.com/apflow/invoice-pipeline/internal/store"
	"github.com/apflow/invoice-pipeline/internal/store/schema"
)

// Stage consumes document-ingested events and commits extracted fields
type Stage struct {
	store     store.Store
	blobs     blob.Store
	extractor Extractor
	publisher messaging.Publisher
	json      adapter.JSON
}

// NewStage creates the extraction stage
func NewStage(
	st store.Store,
	blobs blob.Store,
	extractor Extractor,
	publisher messaging.Publisher,
	jsonAdapter adapter.JSON,
) *Stage {
	return &Stage{
		store:     st,
		blobs:     blobs,
		extractor: extractor,
		publisher: publisher,
		json:      jsonAdapter,
	}
}

// Handle processes one document-ingested event
func (s *Stage) Handle(ctx context.Context, data []byte) error {
	var event domain.DocumentIngestedEvent
	if err := s.json.Unmarshal(data, &event); err != nil {
		return domain.NewValidationError("unparseable document-ingested event: %v", err)
	}
	if err := event.Valid(); err != nil {
		return err
	}

	logger.InfoCtx(ctx, "Extracting fields",
		zap.String("requestID", event.RequestID),
		zap.String("blobKey", event.BlobKey))

	if err := s.store.MarkProcessing(ctx, event.RequestID); err != nil {
		if errors.Is(err, domain.ErrRequestNotFound) {
			return domain.NewValidationError(
				"event references unknown request %s", event.RequestID)
		}
		return fmt.Errorf("failed to mark request processing: %w", err)
	}

	document, err := s.blobs.Get(ctx, event.BlobKey)
	if err != nil {
		return fmt.Errorf("failed to fetch document %s: %w", event.BlobKey, err)
	}

	fields, err := s.extractor.Extract(ctx, document)
	if err != nil {
		return fmt.Errorf("extraction failed for request %s: %w", event.RequestID, err)
	}

	extracted := &schema.ExtractedInvoice{
		RequestID:     event.RequestID,
		VendorName:    fields.VendorName,
		InvoiceNumber: fields.InvoiceNumber,
		TotalAmount:   fields.TotalAmount,
		PONumbers:     fields.CleanPONumbers(),
		Confidence:    fields.Confidence,
	}
	if !fields.InvoiceDate.IsZero() {
		invoiceDate := fields.InvoiceDate
		extracted.InvoiceDate = &invoiceDate
	}
	if err := s.store.UpsertExtractedInvoice(ctx, extracted); err != nil {
		return fmt.Errorf("failed to commit extracted fields: %w", err)
	}

	next := &domain.FieldsExtractedEvent{
		EventID:   ulid.Make().String(),
		RequestID: event.RequestID,
	}
	if err := s.publisher.PublishFieldsExtracted(ctx, next); err != nil {
		// Redelivery re-runs the stage; the upsert above is idempotent
		return fmt.Errorf("failed to announce extracted fields: %w", err)
	}

	logger.InfoCtx(ctx, "Fields extracted",
		zap.String("requestID", event.RequestID),
		zap.Float64("confidence", fields.Confidence))

	return nil
}
