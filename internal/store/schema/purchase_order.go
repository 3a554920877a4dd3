package schema

import (
	"time"
)

// PurchaseOrder represents the purchase_orders table - reference data
// maintained outside the pipeline. The matching engine only reads it,
// so no locking is required.
type PurchaseOrder struct {
	// ID is the internal database primary key
	ID int64 `gorm:"column:id;primaryKey;autoIncrement"`
	// PONumber is the unique purchase-order reference
	PONumber string `gorm:"column:po_number;not null;uniqueIndex;type:text"`
	// OrderDate is when the purchase order was placed
	OrderDate time.Time `gorm:"column:order_date;not null;type:timestamptz"`
	// TotalAmount is the ordered total the invoice is compared against
	TotalAmount float64 `gorm:"column:total_amount;not null;type:numeric(14,2)"`
	// CreatedAt is when this row was loaded
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the PurchaseOrder model
func (PurchaseOrder) TableName() string {
	return "purchase_orders"
}
