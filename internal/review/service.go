package review

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/apflow/invoice-pipeline/internal/adapter"
	"github.com/apflow/invoice-pipeline/internal/domain"
	"github.com/apflow/invoice-pipeline/internal/logger"
	"github.com/apflow/invoice-pipeline/internal/store"
)

const maxNotesLength = 2000

// RequestStatus aggregates everything known about one request. Fields
// beyond the lifecycle status are present only once the corresponding
// stage has committed.
type RequestStatus struct {
	RequestID       string                 `json:"request_id"`
	LifecycleStatus domain.LifecycleStatus `json:"lifecycle_status"`
	Filename        string                 `json:"filename,omitempty"`
	FailureReason   *string                `json:"failure_reason,omitempty"`
	CreatedAt       time.Time              `json:"created_at"`
	UpdatedAt       time.Time              `json:"updated_at"`
	Extracted       *ExtractedView         `json:"extracted,omitempty"`
	Match           *MatchView             `json:"match,omitempty"`
}

// ExtractedView is the read model of committed extraction output
type ExtractedView struct {
	VendorName    string     `json:"vendor_name"`
	InvoiceNumber string     `json:"invoice_number"`
	InvoiceDate   *time.Time `json:"invoice_date,omitempty"`
	TotalAmount   float64    `json:"total_amount"`
	PONumbers     []string   `json:"po_numbers"`
	Confidence    float64    `json:"confidence"`
}

// MatchView is the read model of the match verdict and any review action
type MatchView struct {
	MatchedStatus   domain.MatchedStatus `json:"matched_status"`
	MatchedPONumber *string              `json:"matched_po_number,omitempty"`
	VariancePct     *float64             `json:"variance_pct,omitempty"`
	MatchedAt       time.Time            `json:"matched_at"`
	ReviewedBy      *string              `json:"reviewed_by,omitempty"`
	ReviewedAt      *time.Time           `json:"reviewed_at,omitempty"`
	ReviewNotes     *string              `json:"review_notes,omitempty"`
}

// QueuePage is one page of the review queue
type QueuePage struct {
	Items  []store.ReviewQueueItem `json:"items"`
	Total  int64                   `json:"total"`
	Limit  int                     `json:"limit"`
	Offset int                     `json:"offset"`
}

// Stats summarizes the pipeline by lifecycle status
type Stats struct {
	Total    int64                            `json:"total"`
	ByStatus map[domain.LifecycleStatus]int64 `json:"by_status"`
}

// Service exposes the read-only status projection and the external
// review actions. Status never mutates state; Approve and Reject are
// the only paths out of NEEDS_REVIEW.
//
//go:generate mockgen -source=service.go -destination=../mocks/review_service.go -package=mocks -mock_names=Service=MockReviewService
type Service interface {
	// Status aggregates lifecycle, extracted fields and match result for one request
	Status(ctx context.Context, requestID string) (*RequestStatus, error)
	// Queue lists unreviewed requests that need human attention
	Queue(ctx context.Context, limit, offset int) (*QueuePage, error)
	// Approve resolves a NEEDS_REVIEW verdict to AUTO_APPROVED
	Approve(ctx context.Context, requestID, reviewedBy string, notes *string) error
	// Reject resolves a NEEDS_REVIEW verdict to REJECTED; notes are required
	Reject(ctx context.Context, requestID, reviewedBy string, notes string) error
	// Stats counts requests per lifecycle status
	Stats(ctx context.Context) (*Stats, error)
}

type service struct {
	store store.Store
	clock adapter.Clock
}

// NewService creates a new review service
func NewService(st store.Store, clock adapter.Clock) Service {
	return &service{
		store: st,
		clock: clock,
	}
}

func (s *service) Status(ctx context.Context, requestID string) (*RequestStatus, error) {
	req, err := s.store.GetInvoiceRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}

	status := &RequestStatus{
		RequestID:       req.RequestID,
		LifecycleStatus: req.LifecycleStatus,
		Filename:        req.Filename,
		FailureReason:   req.FailureReason,
		CreatedAt:       req.CreatedAt,
		UpdatedAt:       req.UpdatedAt,
	}

	extracted, err := s.store.GetExtractedInvoice(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if extracted != nil {
		status.Extracted = &ExtractedView{
			VendorName:    extracted.VendorName,
			InvoiceNumber: extracted.InvoiceNumber,
			InvoiceDate:   extracted.InvoiceDate,
			TotalAmount:   extracted.TotalAmount,
			PONumbers:     extracted.PONumbers,
			Confidence:    extracted.Confidence,
		}
	}

	match, err := s.store.GetMatchResult(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if match != nil {
		status.Match = &MatchView{
			MatchedStatus:   match.MatchedStatus,
			MatchedPONumber: match.MatchedPONumber,
			VariancePct:     match.VariancePct,
			MatchedAt:       match.MatchedAt,
			ReviewedBy:      match.ReviewedBy,
			ReviewedAt:      match.ReviewedAt,
			ReviewNotes:     match.ReviewNotes,
		}
	}

	return status, nil
}

func (s *service) Queue(ctx context.Context, limit, offset int) (*QueuePage, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	items, total, err := s.store.ListNeedsReview(ctx, limit, offset)
	if err != nil {
		return nil, err
	}

	return &QueuePage{
		Items:  items,
		Total:  total,
		Limit:  limit,
		Offset: offset,
	}, nil
}

func (s *service) Approve(ctx context.Context, requestID, reviewedBy string, notes *string) error {
	if err := validateReviewer(reviewedBy); err != nil {
		return err
	}
	if notes != nil {
		if err := validateNotes(*notes); err != nil {
			return err
		}
	}

	if err := s.store.ApplyReview(ctx, requestID, domain.MatchedAutoApproved, reviewedBy, notes, s.clock.Now()); err != nil {
		return err
	}

	logger.InfoCtx(ctx, "Invoice approved",
		zap.String("requestID", requestID),
		zap.String("reviewedBy", reviewedBy))
	return nil
}

func (s *service) Reject(ctx context.Context, requestID, reviewedBy string, notes string) error {
	if err := validateReviewer(reviewedBy); err != nil {
		return err
	}
	if strings.TrimSpace(notes) == "" {
		return domain.NewValidationError("review notes are required when rejecting")
	}
	if err := validateNotes(notes); err != nil {
		return err
	}

	if err := s.store.ApplyReview(ctx, requestID, domain.MatchedRejected, reviewedBy, &notes, s.clock.Now()); err != nil {
		return err
	}

	logger.InfoCtx(ctx, "Invoice rejected",
		zap.String("requestID", requestID),
		zap.String("reviewedBy", reviewedBy))
	return nil
}

func (s *service) Stats(ctx context.Context) (*Stats, error) {
	counts, err := s.store.CountByLifecycle(ctx)
	if err != nil {
		return nil, err
	}

	stats := &Stats{ByStatus: counts}
	for _, n := range counts {
		stats.Total += n
	}
	return stats, nil
}

func validateReviewer(reviewedBy string) error {
	if strings.TrimSpace(reviewedBy) == "" {
		return domain.NewValidationError("reviewer identity is required")
	}
	return nil
}

func validateNotes(notes string) error {
	if len(notes) > maxNotesLength {
		return domain.NewValidationError(
			"review notes exceed %d characters", maxNotesLength)
	}
	return nil
}
