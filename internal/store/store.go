package store

import (
	"context"
	"time"

	"github.com/apflow/invoice-pipeline/internal/domain"
	"github.com/apflow/invoice-pipeline/internal/store/schema"
)

// ReviewQueueItem is one row of the human review queue, joining the request
// with its extracted fields and match verdict
type ReviewQueueItem struct {
	RequestID     string               `json:"request_id"`
	VendorName    string               `json:"vendor_name"`
	InvoiceNumber string               `json:"invoice_number"`
	TotalAmount   float64              `json:"total_amount"`
	Confidence    float64              `json:"confidence"`
	MatchedStatus domain.MatchedStatus `json:"matched_status"`
	VariancePct   *float64             `json:"variance_pct,omitempty"`
	CreatedAt     time.Time            `json:"created_at"`
}

// Store defines the interface for database operations.
//
// Every write is an upsert or guarded transition keyed by request_id so that
// at-least-once delivery and crash-between-commit-and-ack redelivery are safe
// no-ops.
//
//go:generate mockgen -source=store.go -destination=../mocks/store.go -package=mocks -mock_names=Store=MockStore
type Store interface {
	// CreateInvoiceRequest inserts the initial PENDING row; inserting the same
	// request_id twice is a no-op
	CreateInvoiceRequest(ctx context.Context, req *schema.InvoiceRequest) error
	// GetInvoiceRequest retrieves a request by its request_id
	// Returns domain.ErrRequestNotFound when it does not exist
	GetInvoiceRequest(ctx context.Context, requestID string) (*schema.InvoiceRequest, error)
	// MarkProcessing moves a request to PROCESSING; repeating it, or applying it
	// to a request already past PROCESSING, is a no-op
	MarkProcessing(ctx context.Context, requestID string) error
	// MarkFailed moves a request to FAILED with a reason; a COMPLETED request is
	// left untouched
	MarkFailed(ctx context.Context, requestID string, reason string) error
	// UpsertExtractedInvoice writes the extraction output keyed by request_id;
	// redelivery overwrites with identical data
	UpsertExtractedInvoice(ctx context.Context, extracted *schema.ExtractedInvoice) error
	// GetExtractedInvoice retrieves extracted fields, nil when extraction has not
	// completed for the request
	GetExtractedInvoice(ctx context.Context, requestID string) (*schema.ExtractedInvoice, error)
	// UpsertMatchResult writes the matching verdict and completes the request in
	// one transaction; a result that has been externally reviewed is never
	// overwritten
	UpsertMatchResult(ctx context.Context, result *schema.MatchResult) error
	// GetMatchResult retrieves the match verdict, nil when matching has not run
	GetMatchResult(ctx context.Context, requestID string) (*schema.MatchResult, error)
	// LookupPurchaseOrder retrieves reference data by PO number, nil when absent
	LookupPurchaseOrder(ctx context.Context, poNumber string) (*schema.PurchaseOrder, error)
	// UpsertPurchaseOrder loads or refreshes one purchase order, keyed by PO
	// number; used by the seeding tool
	UpsertPurchaseOrder(ctx context.Context, po *schema.PurchaseOrder) error
	// ListPendingOlderThan returns PENDING requests last touched before the
	// cutoff, oldest first, for the reconciliation sweep
	ListPendingOlderThan(ctx context.Context, cutoff time.Time, limit int) ([]schema.InvoiceRequest, error)
	// ListNeedsReview returns the paginated review queue plus the total count
	ListNeedsReview(ctx context.Context, limit, offset int) ([]ReviewQueueItem, int64, error)
	// ApplyReview moves a NEEDS_REVIEW result to AUTO_APPROVED or REJECTED on
	// behalf of an external reviewer; any other starting state is an error
	ApplyReview(ctx context.Context, requestID string, status domain.MatchedStatus, reviewedBy string, notes *string, reviewedAt time.Time) error
	// CountByLifecycle returns the number of requests per lifecycle status
	CountByLifecycle(ctx context.Context) (map[domain.LifecycleStatus]int64, error)
}
