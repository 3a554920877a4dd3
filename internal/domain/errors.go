package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrRequestNotFound is returned when an invoice request does not exist
	ErrRequestNotFound = errors.New("invoice request not found")

	// ErrPONotFound is returned when a purchase order does not exist
	ErrPONotFound = errors.New("purchase order not found")

	// ErrNotReviewable is returned when a review action targets a request
	// whose match result is not in NEEDS_REVIEW
	ErrNotReviewable = errors.New("match result is not reviewable")

	// ErrAlreadyReviewed is returned when a review action targets a request
	// that has already been approved or rejected
	ErrAlreadyReviewed = errors.New("invoice already reviewed")
)

// ValidationError rejects an upload before any persistence or publish occurs
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid document: %s", e.Reason)
}

// NewValidationError creates a ValidationError with the given reason
func NewValidationError(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// IsValidationError reports whether err is a ValidationError
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
