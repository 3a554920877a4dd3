package schema

import (
	"time"

	"gorm.io/datatypes"

	"github.com/apflow/invoice-pipeline/internal/domain"
)

// MatchResult represents the match_results table - the matching engine's
// verdict for one request. The pipeline writes it exactly once (upsert by
// request_id, safe under redelivery); the reviewed_* columns are written only
// by an external review action, and once set the row is immutable to the
// pipeline.
type MatchResult struct {
	// ID is the internal database primary key
	ID int64 `gorm:"column:id;primaryKey;autoIncrement"`
	// RequestID correlates to invoice_requests.request_id
	RequestID string `gorm:"column:request_id;not null;uniqueIndex;type:text"`
	// MatchedStatus is AUTO_APPROVED, NEEDS_REVIEW or REJECTED
	MatchedStatus domain.MatchedStatus `gorm:"column:matched_status;not null;type:text;index"`
	// MatchedPONumber is the purchase order the invoice was compared against (nil when none was found)
	MatchedPONumber *string `gorm:"column:matched_po_number;type:text"`
	// VariancePct is the computed fractional variance (nil when no comparison happened)
	VariancePct *float64 `gorm:"column:variance_pct"`
	// DecisionDetails is the full decision record, persisted verbatim for audit replay
	DecisionDetails datatypes.JSON `gorm:"column:decision_details;type:jsonb"`
	// MatchedAt is when the matching engine produced the verdict
	MatchedAt time.Time `gorm:"column:matched_at;not null;type:timestamptz"`
	// ReviewedBy identifies the external reviewer (nil until reviewed)
	ReviewedBy *string `gorm:"column:reviewed_by;type:text"`
	// ReviewedAt is when the review action happened
	ReviewedAt *time.Time `gorm:"column:reviewed_at;type:timestamptz"`
	// ReviewNotes carries the reviewer's notes, required on reject
	ReviewNotes *string `gorm:"column:review_notes;type:text"`
	// CreatedAt is when this row was first written
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
	// UpdatedAt advances on review actions
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the MatchResult model
func (MatchResult) TableName() string {
	return "match_results"
}

// Reviewed reports whether an external reviewer has acted on this result
func (m *MatchResult) Reviewed() bool {
	return m.ReviewedBy != nil
}
