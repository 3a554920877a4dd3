package domain

// Broker subjects for the pipeline hops. Each hop is durable and
// independently retryable; no stage calls another synchronously.
const (
	SubjectDocumentIngested = "invoice.document.ingested"
	SubjectFieldsExtracted  = "invoice.fields.extracted"
	SubjectInvoiceMatched   = "invoice.matched"
)

// DocumentIngestedEvent is published after the invoice request row has committed.
// The blob key points at the stored original document.
type DocumentIngestedEvent struct {
	EventID   string `json:"event_id"`
	RequestID string `json:"request_id"`
	BlobKey   string `json:"blob_key"`
}

// Valid rejects events that do not carry everything the consumer needs.
// The returned error is a ValidationError so consumers terminate instead
// of redelivering.
func (e *DocumentIngestedEvent) Valid() error {
	if e.RequestID == "" {
		return NewValidationError("document-ingested event missing request_id")
	}
	if e.BlobKey == "" {
		return NewValidationError("document-ingested event missing blob_key")
	}
	return nil
}

// FieldsExtractedEvent is published after the extracted invoice upsert commits.
// It deliberately carries no field payload: the consumer re-reads the store so
// payload and store can never diverge.
type FieldsExtractedEvent struct {
	EventID   string `json:"event_id"`
	RequestID string `json:"request_id"`
}

func (e *FieldsExtractedEvent) Valid() error {
	if e.RequestID == "" {
		return NewValidationError("fields-extracted event missing request_id")
	}
	return nil
}

// InvoiceMatchedEvent terminates the pipeline for a request.
type InvoiceMatchedEvent struct {
	EventID       string        `json:"event_id"`
	RequestID     string        `json:"request_id"`
	MatchedStatus MatchedStatus `json:"matched_status"`
}

func (e *InvoiceMatchedEvent) Valid() error {
	if e.RequestID == "" {
		return NewValidationError("invoice-matched event missing request_id")
	}
	if !e.MatchedStatus.Valid() {
		return NewValidationError("invoice-matched event has unknown matched_status %q", string(e.MatchedStatus))
	}
	return nil
}
