package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/apflow/invoice-pipeline/internal/domain"
	"github.com/apflow/invoice-pipeline/internal/store/schema"
)

// =============================================================================
// Test Data Builders
// =============================================================================

// buildTestRequest creates a PENDING invoice request row
func buildTestRequest(requestID string) *schema.InvoiceRequest {
	return &schema.InvoiceRequest{
		RequestID:       requestID,
		BlobKey:         "raw/" + requestID + ".pdf",
		Filename:        "invoice.pdf",
		LifecycleStatus: domain.LifecyclePending,
	}
}

// buildTestExtracted creates extraction output for a request
func buildTestExtracted(requestID string) *schema.ExtractedInvoice {
	invoiceDate := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	return &schema.ExtractedInvoice{
		RequestID:     requestID,
		VendorName:    "Acme Corp",
		InvoiceNumber: "INV-1001",
		InvoiceDate:   &invoiceDate,
		TotalAmount:   250.50,
		PONumbers:     datatypes.JSONSlice[string]{"PO-1", "PO-2"},
		Confidence:    0.91,
	}
}

// buildTestMatchResult creates a match verdict for a request
func buildTestMatchResult(requestID string, status domain.MatchedStatus) *schema.MatchResult {
	poNumber := "PO-1"
	variance := 0.02
	return &schema.MatchResult{
		RequestID:       requestID,
		MatchedStatus:   status,
		MatchedPONumber: &poNumber,
		VariancePct:     &variance,
		DecisionDetails: datatypes.JSON(`{"status":"` + string(status) + `"}`),
		MatchedAt:       time.Now().UTC(),
	}
}

// seedProcessedRequest walks a request through ingestion, extraction and
// matching so review tests start from a realistic state
func seedProcessedRequest(t *testing.T, store Store, requestID string, status domain.MatchedStatus) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, store.CreateInvoiceRequest(ctx, buildTestRequest(requestID)))
	require.NoError(t, store.MarkProcessing(ctx, requestID))
	require.NoError(t, store.UpsertExtractedInvoice(ctx, buildTestExtracted(requestID)))
	require.NoError(t, store.UpsertMatchResult(ctx, buildTestMatchResult(requestID, status)))
}

// =============================================================================
// Suite
// =============================================================================

// RunStoreTests runs the full store contract against any Store implementation
func RunStoreTests(t *testing.T, initDB func(t *testing.T) Store) {
	ctx := context.Background()

	t.Run("CreateInvoiceRequest", func(t *testing.T) {
		store := initDB(t)

		req := buildTestRequest("req-create-1")
		require.NoError(t, store.CreateInvoiceRequest(ctx, req))

		got, err := store.GetInvoiceRequest(ctx, "req-create-1")
		require.NoError(t, err)
		assert.Equal(t, "req-create-1", got.RequestID)
		assert.Equal(t, "raw/req-create-1.pdf", got.BlobKey)
		assert.Equal(t, domain.LifecyclePending, got.LifecycleStatus)
		assert.Nil(t, got.FailureReason)
	})

	t.Run("CreateInvoiceRequest duplicate is a no-op", func(t *testing.T) {
		store := initDB(t)

		require.NoError(t, store.CreateInvoiceRequest(ctx, buildTestRequest("req-dup-1")))
		require.NoError(t, store.MarkProcessing(ctx, "req-dup-1"))

		// Replaying the insert must not reset the lifecycle
		require.NoError(t, store.CreateInvoiceRequest(ctx, buildTestRequest("req-dup-1")))

		got, err := store.GetInvoiceRequest(ctx, "req-dup-1")
		require.NoError(t, err)
		assert.Equal(t, domain.LifecycleProcessing, got.LifecycleStatus)
	})

	t.Run("GetInvoiceRequest not found", func(t *testing.T) {
		store := initDB(t)

		_, err := store.GetInvoiceRequest(ctx, "req-missing")
		assert.ErrorIs(t, err, domain.ErrRequestNotFound)
	})

	t.Run("MarkProcessing", func(t *testing.T) {
		store := initDB(t)

		require.NoError(t, store.CreateInvoiceRequest(ctx, buildTestRequest("req-proc-1")))
		require.NoError(t, store.MarkProcessing(ctx, "req-proc-1"))

		got, err := store.GetInvoiceRequest(ctx, "req-proc-1")
		require.NoError(t, err)
		assert.Equal(t, domain.LifecycleProcessing, got.LifecycleStatus)

		// Redelivery repeats the transition as a no-op
		require.NoError(t, store.MarkProcessing(ctx, "req-proc-1"))
	})

	t.Run("MarkProcessing unknown request", func(t *testing.T) {
		store := initDB(t)

		err := store.MarkProcessing(ctx, "req-missing")
		assert.ErrorIs(t, err, domain.ErrRequestNotFound)
	})

	t.Run("MarkFailed", func(t *testing.T) {
		store := initDB(t)

		require.NoError(t, store.CreateInvoiceRequest(ctx, buildTestRequest("req-fail-1")))
		require.NoError(t, store.MarkProcessing(ctx, "req-fail-1"))
		require.NoError(t, store.MarkFailed(ctx, "req-fail-1", "extraction endpoint down"))

		got, err := store.GetInvoiceRequest(ctx, "req-fail-1")
		require.NoError(t, err)
		assert.Equal(t, domain.LifecycleFailed, got.LifecycleStatus)
		require.NotNil(t, got.FailureReason)
		assert.Equal(t, "extraction endpoint down", *got.FailureReason)
	})

	t.Run("MarkFailed leaves a completed request untouched", func(t *testing.T) {
		store := initDB(t)

		seedProcessedRequest(t, store, "req-late-fail", domain.MatchedAutoApproved)

		// A straggling redelivery fails after the request already completed
		require.NoError(t, store.MarkFailed(ctx, "req-late-fail", "late failure"))

		got, err := store.GetInvoiceRequest(ctx, "req-late-fail")
		require.NoError(t, err)
		assert.Equal(t, domain.LifecycleCompleted, got.LifecycleStatus)
		assert.Nil(t, got.FailureReason)
	})

	t.Run("UpsertExtractedInvoice", func(t *testing.T) {
		store := initDB(t)

		require.NoError(t, store.CreateInvoiceRequest(ctx, buildTestRequest("req-ext-1")))
		require.NoError(t, store.UpsertExtractedInvoice(ctx, buildTestExtracted("req-ext-1")))

		got, err := store.GetExtractedInvoice(ctx, "req-ext-1")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "Acme Corp", got.VendorName)
		assert.Equal(t, "INV-1001", got.InvoiceNumber)
		assert.Equal(t, 250.50, got.TotalAmount)
		assert.Equal(t, datatypes.JSONSlice[string]{"PO-1", "PO-2"}, got.PONumbers)
		assert.Equal(t, 0.91, got.Confidence)

		// Redelivery overwrites with fresh data keyed by request_id
		updated := buildTestExtracted("req-ext-1")
		updated.VendorName = "Acme Corporation"
		require.NoError(t, store.UpsertExtractedInvoice(ctx, updated))

		got, err = store.GetExtractedInvoice(ctx, "req-ext-1")
		require.NoError(t, err)
		assert.Equal(t, "Acme Corporation", got.VendorName)
	})

	t.Run("GetExtractedInvoice before extraction", func(t *testing.T) {
		store := initDB(t)

		got, err := store.GetExtractedInvoice(ctx, "req-missing")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("UpsertMatchResult completes the request", func(t *testing.T) {
		store := initDB(t)

		require.NoError(t, store.CreateInvoiceRequest(ctx, buildTestRequest("req-match-1")))
		require.NoError(t, store.MarkProcessing(ctx, "req-match-1"))
		require.NoError(t, store.UpsertMatchResult(ctx, buildTestMatchResult("req-match-1", domain.MatchedAutoApproved)))

		got, err := store.GetMatchResult(ctx, "req-match-1")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, domain.MatchedAutoApproved, got.MatchedStatus)
		require.NotNil(t, got.MatchedPONumber)
		assert.Equal(t, "PO-1", *got.MatchedPONumber)

		req, err := store.GetInvoiceRequest(ctx, "req-match-1")
		require.NoError(t, err)
		assert.Equal(t, domain.LifecycleCompleted, req.LifecycleStatus)
	})

	t.Run("UpsertMatchResult redelivery is idempotent", func(t *testing.T) {
		store := initDB(t)

		require.NoError(t, store.CreateInvoiceRequest(ctx, buildTestRequest("req-match-2")))
		require.NoError(t, store.MarkProcessing(ctx, "req-match-2"))
		require.NoError(t, store.UpsertMatchResult(ctx, buildTestMatchResult("req-match-2", domain.MatchedNeedsReview)))
		require.NoError(t, store.UpsertMatchResult(ctx, buildTestMatchResult("req-match-2", domain.MatchedNeedsReview)))

		got, err := store.GetMatchResult(ctx, "req-match-2")
		require.NoError(t, err)
		assert.Equal(t, domain.MatchedNeedsReview, got.MatchedStatus)
	})

	t.Run("UpsertMatchResult never overwrites a reviewed result", func(t *testing.T) {
		store := initDB(t)

		seedProcessedRequest(t, store, "req-match-3", domain.MatchedNeedsReview)
		require.NoError(t, store.ApplyReview(ctx, "req-match-3", domain.MatchedAutoApproved, "ap-clerk@example.com", nil, time.Now().UTC()))

		// A late redelivery recomputes the original verdict
		require.NoError(t, store.UpsertMatchResult(ctx, buildTestMatchResult("req-match-3", domain.MatchedNeedsReview)))

		got, err := store.GetMatchResult(ctx, "req-match-3")
		require.NoError(t, err)
		assert.Equal(t, domain.MatchedAutoApproved, got.MatchedStatus)
		require.NotNil(t, got.ReviewedBy)
		assert.Equal(t, "ap-clerk@example.com", *got.ReviewedBy)
	})

	t.Run("GetMatchResult before matching", func(t *testing.T) {
		store := initDB(t)

		got, err := store.GetMatchResult(ctx, "req-missing")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("PurchaseOrder lookup and upsert", func(t *testing.T) {
		store := initDB(t)

		got, err := store.LookupPurchaseOrder(ctx, "PO-404")
		require.NoError(t, err)
		assert.Nil(t, got)

		po := &schema.PurchaseOrder{
			PONumber:    "PO-100",
			OrderDate:   time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
			TotalAmount: 1200,
		}
		require.NoError(t, store.UpsertPurchaseOrder(ctx, po))

		got, err = store.LookupPurchaseOrder(ctx, "PO-100")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, 1200.0, got.TotalAmount)

		// Reloading refreshes the amount in place
		refreshed := &schema.PurchaseOrder{
			PONumber:    "PO-100",
			OrderDate:   time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
			TotalAmount: 1350,
		}
		require.NoError(t, store.UpsertPurchaseOrder(ctx, refreshed))

		got, err = store.LookupPurchaseOrder(ctx, "PO-100")
		require.NoError(t, err)
		assert.Equal(t, 1350.0, got.TotalAmount)
	})

	t.Run("ListPendingOlderThan", func(t *testing.T) {
		store := initDB(t)

		require.NoError(t, store.CreateInvoiceRequest(ctx, buildTestRequest("req-sweep-1")))
		require.NoError(t, store.CreateInvoiceRequest(ctx, buildTestRequest("req-sweep-2")))
		require.NoError(t, store.CreateInvoiceRequest(ctx, buildTestRequest("req-sweep-3")))
		require.NoError(t, store.MarkProcessing(ctx, "req-sweep-3"))

		// Everything is younger than a cutoff in the past
		past := time.Now().Add(-time.Hour)
		stuck, err := store.ListPendingOlderThan(ctx, past, 10)
		require.NoError(t, err)
		assert.Empty(t, stuck)

		// A future cutoff catches the two still-PENDING requests only
		future := time.Now().Add(time.Hour)
		stuck, err = store.ListPendingOlderThan(ctx, future, 10)
		require.NoError(t, err)
		require.Len(t, stuck, 2)
		ids := []string{stuck[0].RequestID, stuck[1].RequestID}
		assert.ElementsMatch(t, []string{"req-sweep-1", "req-sweep-2"}, ids)

		// Limit bounds the batch
		stuck, err = store.ListPendingOlderThan(ctx, future, 1)
		require.NoError(t, err)
		assert.Len(t, stuck, 1)
	})

	t.Run("ListNeedsReview", func(t *testing.T) {
		store := initDB(t)

		seedProcessedRequest(t, store, "req-queue-1", domain.MatchedNeedsReview)
		seedProcessedRequest(t, store, "req-queue-2", domain.MatchedNeedsReview)
		seedProcessedRequest(t, store, "req-queue-3", domain.MatchedAutoApproved)

		items, total, err := store.ListNeedsReview(ctx, 10, 0)
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		require.Len(t, items, 2)
		for _, item := range items {
			assert.Equal(t, domain.MatchedNeedsReview, item.MatchedStatus)
			assert.Equal(t, "Acme Corp", item.VendorName)
			assert.Equal(t, "INV-1001", item.InvoiceNumber)
		}

		// Pagination
		items, total, err = store.ListNeedsReview(ctx, 1, 0)
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		assert.Len(t, items, 1)

		// A reviewed request leaves the queue
		require.NoError(t, store.ApplyReview(ctx, "req-queue-1", domain.MatchedRejected, "ap-clerk@example.com", ptr("duplicate"), time.Now().UTC()))
		items, total, err = store.ListNeedsReview(ctx, 10, 0)
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, items, 1)
		assert.Equal(t, "req-queue-2", items[0].RequestID)
	})

	t.Run("ApplyReview approve", func(t *testing.T) {
		store := initDB(t)

		seedProcessedRequest(t, store, "req-review-1", domain.MatchedNeedsReview)

		reviewedAt := time.Now().UTC().Truncate(time.Microsecond)
		require.NoError(t, store.ApplyReview(ctx, "req-review-1", domain.MatchedAutoApproved, "ap-clerk@example.com", nil, reviewedAt))

		got, err := store.GetMatchResult(ctx, "req-review-1")
		require.NoError(t, err)
		assert.Equal(t, domain.MatchedAutoApproved, got.MatchedStatus)
		require.NotNil(t, got.ReviewedBy)
		assert.Equal(t, "ap-clerk@example.com", *got.ReviewedBy)
		require.NotNil(t, got.ReviewedAt)
		assert.WithinDuration(t, reviewedAt, *got.ReviewedAt, time.Second)
		assert.Nil(t, got.ReviewNotes)
	})

	t.Run("ApplyReview reject with notes", func(t *testing.T) {
		store := initDB(t)

		seedProcessedRequest(t, store, "req-review-2", domain.MatchedNeedsReview)

		require.NoError(t, store.ApplyReview(ctx, "req-review-2", domain.MatchedRejected, "ap-clerk@example.com", ptr("amount disputed"), time.Now().UTC()))

		got, err := store.GetMatchResult(ctx, "req-review-2")
		require.NoError(t, err)
		assert.Equal(t, domain.MatchedRejected, got.MatchedStatus)
		require.NotNil(t, got.ReviewNotes)
		assert.Equal(t, "amount disputed", *got.ReviewNotes)
	})

	t.Run("ApplyReview twice", func(t *testing.T) {
		store := initDB(t)

		seedProcessedRequest(t, store, "req-review-3", domain.MatchedNeedsReview)

		require.NoError(t, store.ApplyReview(ctx, "req-review-3", domain.MatchedAutoApproved, "ap-clerk@example.com", nil, time.Now().UTC()))
		err := store.ApplyReview(ctx, "req-review-3", domain.MatchedRejected, "other@example.com", ptr("changed my mind"), time.Now().UTC())
		assert.ErrorIs(t, err, domain.ErrAlreadyReviewed)
	})

	t.Run("ApplyReview on auto-approved result", func(t *testing.T) {
		store := initDB(t)

		seedProcessedRequest(t, store, "req-review-4", domain.MatchedAutoApproved)

		err := store.ApplyReview(ctx, "req-review-4", domain.MatchedRejected, "ap-clerk@example.com", ptr("not allowed"), time.Now().UTC())
		assert.ErrorIs(t, err, domain.ErrNotReviewable)
	})

	t.Run("ApplyReview unknown request", func(t *testing.T) {
		store := initDB(t)

		err := store.ApplyReview(ctx, "req-missing", domain.MatchedAutoApproved, "ap-clerk@example.com", nil, time.Now().UTC())
		assert.ErrorIs(t, err, domain.ErrRequestNotFound)
	})

	t.Run("ApplyReview rejects non-terminal status", func(t *testing.T) {
		store := initDB(t)

		err := store.ApplyReview(ctx, "req-review-5", domain.MatchedNeedsReview, "ap-clerk@example.com", nil, time.Now().UTC())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "terminal status")
	})

	t.Run("CountByLifecycle", func(t *testing.T) {
		store := initDB(t)

		require.NoError(t, store.CreateInvoiceRequest(ctx, buildTestRequest("req-count-1")))
		require.NoError(t, store.CreateInvoiceRequest(ctx, buildTestRequest("req-count-2")))
		require.NoError(t, store.CreateInvoiceRequest(ctx, buildTestRequest("req-count-3")))
		require.NoError(t, store.MarkProcessing(ctx, "req-count-3"))
		require.NoError(t, store.MarkFailed(ctx, "req-count-3", "gave up"))

		counts, err := store.CountByLifecycle(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(2), counts[domain.LifecyclePending])
		assert.Equal(t, int64(1), counts[domain.LifecycleFailed])
	})
}

func ptr(s string) *string {
	return &s
}
