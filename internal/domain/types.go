package domain

import (
	"strings"
	"time"
)

// LifecycleStatus represents where an invoice request sits in the automated pipeline
type LifecycleStatus string

const (
	LifecyclePending    LifecycleStatus = "PENDING"
	LifecycleProcessing LifecycleStatus = "PROCESSING"
	LifecycleFailed     LifecycleStatus = "FAILED"
	LifecycleCompleted  LifecycleStatus = "COMPLETED"
)

// Valid checks if a lifecycle status is one of the known values
func (s LifecycleStatus) Valid() bool {
	return s == LifecyclePending ||
		s == LifecycleProcessing ||
		s == LifecycleFailed ||
		s == LifecycleCompleted
}

// Terminal reports whether the automated pipeline is done with the request
func (s LifecycleStatus) Terminal() bool {
	return s == LifecycleFailed || s == LifecycleCompleted
}

// CanTransitionTo reports whether the transition s -> next is allowed.
// Retries operate within a stage; no path re-enters PENDING from a later state.
func (s LifecycleStatus) CanTransitionTo(next LifecycleStatus) bool {
	switch s {
	case LifecyclePending:
		return next == LifecycleProcessing || next == LifecycleFailed
	case LifecycleProcessing:
		return next == LifecycleProcessing || next == LifecycleFailed || next == LifecycleCompleted
	default:
		return false
	}
}

// MatchedStatus represents the outcome of matching an invoice against purchase orders
type MatchedStatus string

const (
	MatchedAutoApproved MatchedStatus = "AUTO_APPROVED"
	MatchedNeedsReview  MatchedStatus = "NEEDS_REVIEW"
	MatchedRejected     MatchedStatus = "REJECTED"
)

// Valid checks if a matched status is one of the known values
func (s MatchedStatus) Valid() bool {
	return s == MatchedAutoApproved || s == MatchedNeedsReview || s == MatchedRejected
}

// Reviewable reports whether an external reviewer may still act on the result
func (s MatchedStatus) Reviewable() bool {
	return s == MatchedNeedsReview
}

// Terminal reports whether the matched status can no longer change.
// AUTO_APPROVED and REJECTED are final; only a review action leaves NEEDS_REVIEW.
func (s MatchedStatus) Terminal() bool {
	return s == MatchedAutoApproved || s == MatchedRejected
}

// DecisionReason explains why the matching engine did not auto-approve
type DecisionReason string

const (
	ReasonNoPOReference   DecisionReason = "no PO reference"
	ReasonPONotFound      DecisionReason = "PO not found"
	ReasonVariance        DecisionReason = "amount variance exceeds tolerance"
	ReasonProcessingError DecisionReason = "processing error"
)

// ExtractedFields is the structured output of the extraction collaborator
type ExtractedFields struct {
	VendorName    string    `json:"vendor_name"`
	InvoiceNumber string    `json:"invoice_number"`
	InvoiceDate   time.Time `json:"invoice_date"`
	TotalAmount   float64   `json:"total_amount"`
	PONumbers     []string  `json:"po_numbers"`
	Confidence    float64   `json:"confidence"`
}

// CleanPONumbers returns the PO references with blanks removed, order preserved
func (f *ExtractedFields) CleanPONumbers() []string {
	out := make([]string, 0, len(f.PONumbers))
	for _, po := range f.PONumbers {
		po = strings.TrimSpace(po)
		if po != "" {
			out = append(out, po)
		}
	}
	return out
}

// PurchaseOrder is reference data maintained outside the pipeline
type PurchaseOrder struct {
	PONumber    string    `json:"po_number"`
	OrderDate   time.Time `json:"order_date"`
	TotalAmount float64   `json:"total_amount"`
}

// Decision is the outcome of the matching rules for one invoice.
// It is a pure function of (extracted fields, purchase orders, tolerance);
// DecisionDetails is persisted verbatim for audit replay.
type Decision struct {
	Status          MatchedStatus  `json:"status"`
	Reason          DecisionReason `json:"reason,omitempty"`
	MatchedPONumber *string        `json:"matched_po_number,omitempty"`
	POAmount        *float64       `json:"po_amount,omitempty"`
	InvoiceAmount   float64        `json:"invoice_amount"`
	VariancePct     *float64       `json:"variance_pct,omitempty"`
	Tolerance       float64        `json:"tolerance"`
}
