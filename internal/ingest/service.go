package ingest

import (
	"context"
	"fmt"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/apflow/invoice-pipeline/internal/blob"
	"github.com/apflow/invoice-pipeline/internal/domain"
	"github.com/apflow/invoice-pipeline/internal/logger"
	"github.com/apflow/invoice-pipeline/internal/messaging"
	"github.com/apflow/invoice-pipeline/internal/store"
	"github.com/apflow/invoice-pipeline/internal/store/schema"
)

const pdfMimeType = "application/pdf"

// Config holds document intake configuration
type Config struct {
	MaxUploadSize int64
}

// Result is returned to the caller once a document is accepted
type Result struct {
	RequestID string                 `json:"request_id"`
	Status    domain.LifecycleStatus `json:"status"`
}

// Service accepts raw invoice documents and hands them to the pipeline
//
//go:generate mockgen -source=service.go -destination=../mocks/ingest_service.go -package=mocks -mock_names=Service=MockIngestService
type Service interface {
	// Ingest validates and stores a document, then announces it downstream
	Ingest(ctx context.Context, filename string, data []byte) (*Result, error)
}

type service struct {
	store     store.Store
	blobs     blob.Store
	publisher messaging.Publisher
	config    Config
}

// NewService creates a new ingest service
func NewService(st store.Store, blobs blob.Store, publisher messaging.Publisher, cfg Config) Service {
	return &service{
		store:     st,
		blobs:     blobs,
		publisher: publisher,
		config:    cfg,
	}
}

func (s *service) Ingest(ctx context.Context, filename string, data []byte) (*Result, error) {
	if err := s.validate(data); err != nil {
		return nil, err
	}

	requestID := uuid.NewString()
	key := fmt.Sprintf("raw/%s.pdf", requestID)

	if _, err := s.blobs.Put(ctx, key, data); err != nil {
		return nil, fmt.Errorf("failed to store document: %w", err)
	}

	req := &schema.InvoiceRequest{
		RequestID:       requestID,
		BlobKey:         key,
		Filename:        filename,
		LifecycleStatus: domain.LifecyclePending,
	}
	if err := s.store.CreateInvoiceRequest(ctx, req); err != nil {
		return nil, fmt.Errorf("failed to record request: %w", err)
	}

	// The request is durable from here on. A publish failure only delays
	// processing until the sweeper re-announces pending requests, so the
	// caller still gets an accepted response.
	event := &domain.DocumentIngestedEvent{
		EventID:   ulid.Make().String(),
		RequestID: requestID,
		BlobKey:   key,
	}
	if err := s.publisher.PublishDocumentIngested(ctx, event); err != nil {
		logger.ErrorCtx(ctx, err,
			zap.String("message", "Failed to announce ingested document"),
			zap.String("requestID", requestID))
	}

	return &Result{
		RequestID: requestID,
		Status:    domain.LifecyclePending,
	}, nil
}

func (s *service) validate(data []byte) error {
	if len(data) == 0 {
		return domain.NewValidationError("document is empty")
	}
	if s.config.MaxUploadSize > 0 && int64(len(data)) > s.config.MaxUploadSize {
		return domain.NewValidationError(
			"document exceeds maximum size of %d bytes", s.config.MaxUploadSize)
	}

	mtype := mimetype.Detect(data)
	if !mtype.Is(pdfMimeType) {
		return domain.NewValidationError(
			"unsupported document type %q, only PDF is accepted", mtype.String())
	}

	return nil
}
