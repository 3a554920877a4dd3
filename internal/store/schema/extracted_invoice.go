package schema

import (
	"time"

	"gorm.io/datatypes"
)

// ExtractedInvoice represents the extracted_invoices table - the structured
// fields produced by the extraction collaborator, one row per request. The
// row exists only after the fields-extracted hop has durably committed;
// redelivery overwrites it with identical data (upsert by request_id).
type ExtractedInvoice struct {
	// ID is the internal database primary key
	ID int64 `gorm:"column:id;primaryKey;autoIncrement"`
	// RequestID correlates to invoice_requests.request_id
	RequestID string `gorm:"column:request_id;not null;uniqueIndex;type:text"`
	// VendorName is the extracted supplier name
	VendorName string `gorm:"column:vendor_name;type:text"`
	// InvoiceNumber is the vendor's own invoice reference
	InvoiceNumber string `gorm:"column:invoice_number;type:text"`
	// InvoiceDate is the date printed on the invoice (nil when not extracted)
	InvoiceDate *time.Time `gorm:"column:invoice_date;type:timestamptz"`
	// TotalAmount is the extracted invoice total
	TotalAmount float64 `gorm:"column:total_amount;not null;type:numeric(14,2)"`
	// PONumbers is the ordered list of purchase-order references found on the invoice, possibly empty
	PONumbers datatypes.JSONSlice[string] `gorm:"column:po_numbers;type:jsonb"`
	// Confidence is the extraction confidence score in [0, 1]
	Confidence float64 `gorm:"column:extraction_confidence;not null"`
	// CreatedAt is when the extraction first committed
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
	// UpdatedAt advances when a redelivery overwrites the row
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the ExtractedInvoice model
func (ExtractedInvoice) TableName() string {
	return "extracted_invoices"
}
