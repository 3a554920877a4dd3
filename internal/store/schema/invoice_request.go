package schema

import (
	"time"

	"github.com/apflow/invoice-pipeline/internal/domain"
)

// InvoiceRequest represents the invoice_requests table - one row per ingested
// document, keyed by the request_id assigned at ingestion. The request_id is
// immutable and is the correlation key for every downstream stage.
type InvoiceRequest struct {
	// ID is the internal database primary key
	ID int64 `gorm:"column:id;primaryKey;autoIncrement"`
	// RequestID is the stable identifier assigned at ingestion, never reused
	RequestID string `gorm:"column:request_id;not null;uniqueIndex;type:text"`
	// BlobKey is the opaque object-storage reference for the original document
	BlobKey string `gorm:"column:blob_key;not null;type:text"`
	// Filename is the original upload filename, kept for operators
	Filename string `gorm:"column:filename;not null;type:text"`
	// LifecycleStatus is the pipeline state machine position (PENDING, PROCESSING, FAILED, COMPLETED)
	LifecycleStatus domain.LifecycleStatus `gorm:"column:lifecycle_status;not null;type:text;index"`
	// FailureReason records why a request was marked FAILED (nil otherwise)
	FailureReason *string `gorm:"column:failure_reason;type:text"`
	// CreatedAt is when the request was ingested
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
	// UpdatedAt advances on every stage transition, monotonic non-decreasing
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now();type:timestamptz"`

	// Associations
	Extracted *ExtractedInvoice `gorm:"foreignKey:RequestID;references:RequestID;constraint:OnDelete:CASCADE"`
	Match     *MatchResult      `gorm:"foreignKey:RequestID;references:RequestID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for the InvoiceRequest model
func (InvoiceRequest) TableName() string {
	return "invoice_requests"
}
