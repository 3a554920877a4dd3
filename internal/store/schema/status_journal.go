package schema

import (
	"time"

	"gorm.io/datatypes"
)

// JournalField identifies which part of the request state changed
type JournalField string

const (
	// JournalFieldLifecycle records a lifecycle_status transition
	JournalFieldLifecycle JournalField = "lifecycle_status"
	// JournalFieldMatched records a matched_status transition
	JournalFieldMatched JournalField = "matched_status"
)

// StatusJournal represents the status_journal table - append-only audit log of
// every state transition a request goes through. Terminal records are retained
// indefinitely; nothing in the pipeline deletes from this table.
type StatusJournal struct {
	// Cursor is an auto-incrementing sequence number for ordering and pagination
	Cursor int64 `gorm:"column:\"cursor\";primaryKey;autoIncrement"`
	// RequestID is the request whose state changed
	RequestID string `gorm:"column:request_id;not null;type:text;index"`
	// Field identifies the state machine that moved (lifecycle_status or matched_status)
	Field JournalField `gorm:"column:field;not null;type:text"`
	// OldValue is the state before the transition, empty for the initial write
	OldValue string `gorm:"column:old_value;type:text"`
	// NewValue is the state after the transition
	NewValue string `gorm:"column:new_value;not null;type:text"`
	// ChangedAt is when the transition committed
	ChangedAt time.Time `gorm:"column:changed_at;not null;default:now();type:timestamptz"`
	// Meta carries extra context as JSON (failure reason, reviewer, decision reason)
	Meta datatypes.JSON `gorm:"column:meta;type:jsonb"`
}

// TableName specifies the table name for the StatusJournal model
func (StatusJournal) TableName() string {
	return "status_journal"
}
