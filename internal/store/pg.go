package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/apflow/invoice-pipeline/internal/domain"
	"github.com/apflow/invoice-pipeline/internal/store/schema"
)

type pgStore struct {
	db *gorm.DB
}

// NewPGStore creates a new PostgreSQL store instance
func NewPGStore(db *gorm.DB) Store {
	return &pgStore{db: db}
}

// ConfigureConnectionPool configures the connection pool settings for a GORM
// database connection. Zero values fall back to defaults (20 open, 5 idle,
// 5m lifetime, 10m idle time).
func ConfigureConnectionPool(db *gorm.DB, maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	if maxOpenConns == 0 {
		maxOpenConns = 20
	}
	if maxIdleConns == 0 {
		maxIdleConns = 5
	}
	if connMaxLifetime == 0 {
		connMaxLifetime = 5 * time.Minute
	}
	if connMaxIdleTime == 0 {
		connMaxIdleTime = 10 * time.Minute
	}
	if maxIdleConns > maxOpenConns {
		maxIdleConns = maxOpenConns
	}

	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)
	sqlDB.SetConnMaxIdleTime(connMaxIdleTime)

	return nil
}

// AutoMigrate creates or updates the pipeline tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&schema.InvoiceRequest{},
		&schema.ExtractedInvoice{},
		&schema.PurchaseOrder{},
		&schema.MatchResult{},
		&schema.StatusJournal{},
	)
}

// journalMeta marshals journal context, tolerating a nil map
func journalMeta(meta map[string]interface{}) datatypes.JSON {
	if len(meta) == 0 {
		return nil
	}
	data, err := json.Marshal(meta)
	if err != nil {
		return nil
	}
	return datatypes.JSON(data)
}

// appendJournal writes one audit row inside the caller's transaction
func appendJournal(tx *gorm.DB, requestID string, field schema.JournalField, oldValue, newValue string, meta map[string]interface{}) error {
	entry := schema.StatusJournal{
		RequestID: requestID,
		Field:     field,
		OldValue:  oldValue,
		NewValue:  newValue,
		Meta:      journalMeta(meta),
	}
	if err := tx.Create(&entry).Error; err != nil {
		return fmt.Errorf("failed to append status journal: %w", err)
	}
	return nil
}

// CreateInvoiceRequest inserts the initial PENDING row. The unique index on
// request_id plus DoNothing makes a duplicate insert a safe no-op.
func (s *pgStore) CreateInvoiceRequest(ctx context.Context, req *schema.InvoiceRequest) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "request_id"}},
			DoNothing: true,
		}).Create(req)
		if result.Error != nil {
			return fmt.Errorf("failed to create invoice request: %w", result.Error)
		}

		// Journal only the first insert, not redundant replays
		if result.RowsAffected == 0 {
			return nil
		}

		return appendJournal(tx, req.RequestID, schema.JournalFieldLifecycle, "", string(req.LifecycleStatus), map[string]interface{}{
			"filename": req.Filename,
			"blob_key": req.BlobKey,
		})
	})
}

// GetInvoiceRequest retrieves a request by its request_id
func (s *pgStore) GetInvoiceRequest(ctx context.Context, requestID string) (*schema.InvoiceRequest, error) {
	var req schema.InvoiceRequest
	err := s.db.WithContext(ctx).
		Where("request_id = ?", requestID).
		First(&req).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrRequestNotFound
		}
		return nil, fmt.Errorf("failed to get invoice request: %w", err)
	}
	return &req, nil
}

// transitionLifecycle applies a guarded lifecycle transition under a row lock.
// Transitions that are already applied, or that would regress a terminal
// state, are silent no-ops so redelivery stays safe.
func (s *pgStore) transitionLifecycle(ctx context.Context, requestID string, next domain.LifecycleStatus, meta map[string]interface{}, mutate func(req *schema.InvoiceRequest)) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var req schema.InvoiceRequest
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("request_id = ?", requestID).
			First(&req).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrRequestNotFound
			}
			return fmt.Errorf("failed to lock invoice request: %w", err)
		}

		if req.LifecycleStatus == next {
			return nil
		}
		if !req.LifecycleStatus.CanTransitionTo(next) {
			// Late redelivery against a terminal request; leave it alone
			return nil
		}

		old := req.LifecycleStatus
		req.LifecycleStatus = next
		req.UpdatedAt = time.Now()
		if mutate != nil {
			mutate(&req)
		}

		if err := tx.Save(&req).Error; err != nil {
			return fmt.Errorf("failed to update lifecycle status: %w", err)
		}

		return appendJournal(tx, requestID, schema.JournalFieldLifecycle, string(old), string(next), meta)
	})
}

// MarkProcessing moves a request to PROCESSING; repeating it is a no-op
func (s *pgStore) MarkProcessing(ctx context.Context, requestID string) error {
	return s.transitionLifecycle(ctx, requestID, domain.LifecycleProcessing, nil, nil)
}

// MarkFailed moves a request to FAILED with a reason
func (s *pgStore) MarkFailed(ctx context.Context, requestID string, reason string) error {
	return s.transitionLifecycle(ctx, requestID, domain.LifecycleFailed,
		map[string]interface{}{"reason": reason},
		func(req *schema.InvoiceRequest) {
			req.FailureReason = &reason
		})
}

// UpsertExtractedInvoice writes the extraction output keyed by request_id.
// Redelivery carries identical data, so overwriting is safe to repeat.
func (s *pgStore) UpsertExtractedInvoice(ctx context.Context, extracted *schema.ExtractedInvoice) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		extracted.UpdatedAt = time.Now()
		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "request_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"vendor_name", "invoice_number", "invoice_date",
				"total_amount", "po_numbers", "extraction_confidence", "updated_at",
			}),
		}).Clauses(clause.Returning{Columns: []clause.Column{}}).
			Create(extracted).Error; err != nil {
			return fmt.Errorf("failed to upsert extracted invoice: %w", err)
		}

		// Touch the request so the sweeper's staleness window restarts
		if err := tx.Model(&schema.InvoiceRequest{}).
			Where("request_id = ?", extracted.RequestID).
			Update("updated_at", time.Now()).Error; err != nil {
			return fmt.Errorf("failed to touch invoice request: %w", err)
		}

		return nil
	})
}

// GetExtractedInvoice retrieves extracted fields, nil when extraction has not
// completed for the request
func (s *pgStore) GetExtractedInvoice(ctx context.Context, requestID string) (*schema.ExtractedInvoice, error) {
	var extracted schema.ExtractedInvoice
	err := s.db.WithContext(ctx).
		Where("request_id = ?", requestID).
		First(&extracted).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get extracted invoice: %w", err)
	}
	return &extracted, nil
}

// UpsertMatchResult writes the matching verdict and completes the request in
// one transaction. A result an external reviewer has already acted on is
// never overwritten: the pipeline must not re-evaluate a reviewed invoice.
func (s *pgStore) UpsertMatchResult(ctx context.Context, result *schema.MatchResult) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing schema.MatchResult
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("request_id = ?", result.RequestID).
			First(&existing).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to lock match result: %w", err)
		}

		if err == nil && existing.Reviewed() {
			return nil
		}

		result.UpdatedAt = time.Now()
		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "request_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"matched_status", "matched_po_number", "variance_pct",
				"decision_details", "matched_at", "updated_at",
			}),
		}).Clauses(clause.Returning{Columns: []clause.Column{}}).
			Create(result).Error; err != nil {
			return fmt.Errorf("failed to upsert match result: %w", err)
		}

		if err == nil {
			// Redelivery overwrote an identical un-reviewed verdict; the
			// original journal entry already covers it
			return nil
		}

		if err := appendJournal(tx, result.RequestID, schema.JournalFieldMatched, "", string(result.MatchedStatus), map[string]interface{}{
			"matched_po_number": result.MatchedPONumber,
			"variance_pct":      result.VariancePct,
		}); err != nil {
			return err
		}

		return s.completeWithinTx(tx, result.RequestID)
	})
}

// completeWithinTx moves the request to COMPLETED inside an open transaction
func (s *pgStore) completeWithinTx(tx *gorm.DB, requestID string) error {
	var req schema.InvoiceRequest
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("request_id = ?", requestID).
		First(&req).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrRequestNotFound
		}
		return fmt.Errorf("failed to lock invoice request: %w", err)
	}

	if req.LifecycleStatus == domain.LifecycleCompleted ||
		!req.LifecycleStatus.CanTransitionTo(domain.LifecycleCompleted) {
		return nil
	}

	old := req.LifecycleStatus
	req.LifecycleStatus = domain.LifecycleCompleted
	req.UpdatedAt = time.Now()
	if err := tx.Save(&req).Error; err != nil {
		return fmt.Errorf("failed to complete invoice request: %w", err)
	}

	return appendJournal(tx, requestID, schema.JournalFieldLifecycle, string(old), string(domain.LifecycleCompleted), nil)
}

// GetMatchResult retrieves the match verdict, nil when matching has not run
func (s *pgStore) GetMatchResult(ctx context.Context, requestID string) (*schema.MatchResult, error) {
	var result schema.MatchResult
	err := s.db.WithContext(ctx).
		Where("request_id = ?", requestID).
		First(&result).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get match result: %w", err)
	}
	return &result, nil
}

// LookupPurchaseOrder retrieves reference data by PO number, nil when absent
func (s *pgStore) LookupPurchaseOrder(ctx context.Context, poNumber string) (*schema.PurchaseOrder, error) {
	var po schema.PurchaseOrder
	err := s.db.WithContext(ctx).
		Where("po_number = ?", poNumber).
		First(&po).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to lookup purchase order: %w", err)
	}
	return &po, nil
}

// UpsertPurchaseOrder loads or refreshes one row of reference data, keyed by
// PO number. Used by the seeding tool, never by the pipeline itself.
func (s *pgStore) UpsertPurchaseOrder(ctx context.Context, po *schema.PurchaseOrder) error {
	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "po_number"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"order_date", "total_amount",
		}),
	}).Clauses(clause.Returning{Columns: []clause.Column{}}).
		Create(po).Error; err != nil {
		return fmt.Errorf("failed to upsert purchase order: %w", err)
	}
	return nil
}

// ListPendingOlderThan returns PENDING requests last touched before the
// cutoff, oldest first. Used by the reconciliation sweep to re-publish
// ingestion events that never made it to the broker.
func (s *pgStore) ListPendingOlderThan(ctx context.Context, cutoff time.Time, limit int) ([]schema.InvoiceRequest, error) {
	var requests []schema.InvoiceRequest
	err := s.db.WithContext(ctx).
		Where("lifecycle_status = ? AND updated_at < ?", domain.LifecyclePending, cutoff).
		Order("updated_at ASC").
		Limit(limit).
		Find(&requests).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list pending requests: %w", err)
	}
	return requests, nil
}

// ListNeedsReview returns the paginated review queue plus the total count
func (s *pgStore) ListNeedsReview(ctx context.Context, limit, offset int) ([]ReviewQueueItem, int64, error) {
	base := s.db.WithContext(ctx).
		Table("match_results").
		Joins("JOIN invoice_requests ON invoice_requests.request_id = match_results.request_id").
		Joins("LEFT JOIN extracted_invoices ON extracted_invoices.request_id = match_results.request_id").
		Where("match_results.matched_status = ? AND match_results.reviewed_by IS NULL", domain.MatchedNeedsReview)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count review queue: %w", err)
	}

	var items []ReviewQueueItem
	err := base.
		Select(`match_results.request_id,
			COALESCE(extracted_invoices.vendor_name, '') AS vendor_name,
			COALESCE(extracted_invoices.invoice_number, '') AS invoice_number,
			COALESCE(extracted_invoices.total_amount, 0) AS total_amount,
			COALESCE(extracted_invoices.extraction_confidence, 0) AS confidence,
			match_results.matched_status,
			match_results.variance_pct,
			invoice_requests.created_at`).
		Order("invoice_requests.created_at DESC").
		Limit(limit).
		Offset(offset).
		Scan(&items).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list review queue: %w", err)
	}

	return items, total, nil
}

// ApplyReview moves a NEEDS_REVIEW result to AUTO_APPROVED or REJECTED on
// behalf of an external reviewer. This is the only path that leaves
// NEEDS_REVIEW, and it is itself terminal.
func (s *pgStore) ApplyReview(ctx context.Context, requestID string, status domain.MatchedStatus, reviewedBy string, notes *string, reviewedAt time.Time) error {
	if !status.Terminal() {
		return fmt.Errorf("review must resolve to a terminal status, got %q", status)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var result schema.MatchResult
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("request_id = ?", requestID).
			First(&result).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrRequestNotFound
			}
			return fmt.Errorf("failed to lock match result: %w", err)
		}

		if result.Reviewed() {
			return domain.ErrAlreadyReviewed
		}
		if !result.MatchedStatus.Reviewable() {
			return domain.ErrNotReviewable
		}

		old := result.MatchedStatus
		result.MatchedStatus = status
		result.ReviewedBy = &reviewedBy
		result.ReviewedAt = &reviewedAt
		result.ReviewNotes = notes
		result.UpdatedAt = time.Now()

		if err := tx.Save(&result).Error; err != nil {
			return fmt.Errorf("failed to apply review: %w", err)
		}

		return appendJournal(tx, requestID, schema.JournalFieldMatched, string(old), string(status), map[string]interface{}{
			"reviewed_by": reviewedBy,
		})
	})
}

// CountByLifecycle returns the number of requests per lifecycle status
func (s *pgStore) CountByLifecycle(ctx context.Context) (map[domain.LifecycleStatus]int64, error) {
	var rows []struct {
		LifecycleStatus domain.LifecycleStatus
		Count           int64
	}
	err := s.db.WithContext(ctx).
		Model(&schema.InvoiceRequest{}).
		Select("lifecycle_status, COUNT(*) AS count").
		Group("lifecycle_status").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count by lifecycle: %w", err)
	}

	counts := make(map[domain.LifecycleStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.LifecycleStatus] = row.Count
	}
	return counts, nil
}
