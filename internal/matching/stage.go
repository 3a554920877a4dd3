package matching

import (
	"context"
	"fmt"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/apflow/invoice-pipeline/internal/adapter"
	"github.com/apflow/invoice-pipeline/internal/domain"
	"github.com/apflow/invoice-pipeline/internal/logger"
	"github.com/apflow/invoice-pipeline/internal/messaging"
	"github.com/apflow/invoice-pipeline/internal/store"
	"github.com/apflow/invoice-pipeline/internal/store/schema"
)

// Config holds match decision configuration
type Config struct {
	TolerancePct float64
}

// Stage consumes fields-extracted events and commits match verdicts
type Stage struct {
	store     store.Store
	publisher messaging.Publisher
	json      adapter.JSON
	clock     adapter.Clock
	config    Config
}

// NewStage creates the matching stage
func NewStage(
	st store.Store,
	publisher messaging.Publisher,
	jsonAdapter adapter.JSON,
	clock adapter.Clock,
	cfg Config,
) *Stage {
	return &Stage{
		store:     st,
		publisher: publisher,
		json:      jsonAdapter,
		clock:     clock,
		config:    cfg,
	}
}

// Handle processes one fields-extracted event
func (s *Stage) Handle(ctx context.Context, data []byte) error {
	var event domain.FieldsExtractedEvent
	if err := s.json.Unmarshal(data, &event); err != nil {
		return domain.NewValidationError("unparseable fields-extracted event: %v", err)
	}
	if err := event.Valid(); err != nil {
		return err
	}

	// The event intentionally carries only the request id; the committed
	// row is the source of truth for the extracted fields.
	extracted, err := s.store.GetExtractedInvoice(ctx, event.RequestID)
	if err != nil {
		return fmt.Errorf("failed to load extracted fields: %w", err)
	}
	if extracted == nil {
		return fmt.Errorf("no extracted fields committed for request %s", event.RequestID)
	}

	fields := &domain.ExtractedFields{
		VendorName:    extracted.VendorName,
		InvoiceNumber: extracted.InvoiceNumber,
		TotalAmount:   extracted.TotalAmount,
		PONumbers:     extracted.PONumbers,
		Confidence:    extracted.Confidence,
	}
	if extracted.InvoiceDate != nil {
		fields.InvoiceDate = *extracted.InvoiceDate
	}

	decision := Decide(ctx, fields, s.lookupPO, s.config.TolerancePct)

	details, err := s.json.Marshal(decision)
	if err != nil {
		return fmt.Errorf("failed to encode decision details: %w", err)
	}

	result := &schema.MatchResult{
		RequestID:       event.RequestID,
		MatchedStatus:   decision.Status,
		MatchedPONumber: decision.MatchedPONumber,
		VariancePct:     decision.VariancePct,
		DecisionDetails: datatypes.JSON(details),
		MatchedAt:       s.clock.Now(),
	}
	if err := s.store.UpsertMatchResult(ctx, result); err != nil {
		return fmt.Errorf("failed to commit match result: %w", err)
	}

	next := &domain.InvoiceMatchedEvent{
		EventID:       ulid.Make().String(),
		RequestID:     event.RequestID,
		MatchedStatus: decision.Status,
	}
	if err := s.publisher.PublishInvoiceMatched(ctx, next); err != nil {
		// Redelivery re-runs the stage; the upsert above is idempotent
		// and a reviewed result is never overwritten
		return fmt.Errorf("failed to announce match verdict: %w", err)
	}

	logger.InfoCtx(ctx, "Invoice matched",
		zap.String("requestID", event.RequestID),
		zap.String("matchedStatus", string(decision.Status)),
		zap.String("reason", string(decision.Reason)))

	return nil
}

func (s *Stage) lookupPO(ctx context.Context, poNumber string) (*domain.PurchaseOrder, error) {
	po, err := s.store.LookupPurchaseOrder(ctx, poNumber)
	if err != nil || po == nil {
		return nil, err
	}
	return &domain.PurchaseOrder{
		PONumber:    po.PONumber,
		OrderDate:   po.OrderDate,
		TotalAmount: po.TotalAmount,
	}, nil
}
