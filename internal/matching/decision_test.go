package matching_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apflow/invoice-pipeline/internal/domain"
	"github.com/apflow/invoice-pipeline/internal/logger"
	"github.com/apflow/invoice-pipeline/internal/matching"
)

func TestMain(m *testing.M) {
	// Initialize logger for tests
	err := logger.Initialize(logger.Config{
		Debug: false,
	})
	if err != nil {
		panic(err)
	}

	code := m.Run()
	os.Exit(code)
}

const tolerance = 0.05

// staticLookup resolves PO numbers against a fixed map; numbers listed in
// failing return a lookup error
func staticLookup(orders map[string]*domain.PurchaseOrder, failing map[string]bool) matching.POLookup {
	return func(ctx context.Context, poNumber string) (*domain.PurchaseOrder, error) {
		if failing[poNumber] {
			return nil, errors.New("reference data unavailable")
		}
		return orders[poNumber], nil
	}
}

func po(number string, amount float64) *domain.PurchaseOrder {
	return &domain.PurchaseOrder{PONumber: number, TotalAmount: amount}
}

func TestDecideNoPOReference(t *testing.T) {
	fields := &domain.ExtractedFields{TotalAmount: 100}

	decision := matching.Decide(context.Background(), fields, staticLookup(nil, nil), tolerance)

	assert.Equal(t, domain.MatchedNeedsReview, decision.Status)
	assert.Equal(t, domain.ReasonNoPOReference, decision.Reason)
	assert.Nil(t, decision.MatchedPONumber)
	assert.Nil(t, decision.VariancePct)
	assert.Equal(t, 100.0, decision.InvoiceAmount)
}

func TestDecideBlankPOReferencesTreatedAsNone(t *testing.T) {
	fields := &domain.ExtractedFields{TotalAmount: 100, PONumbers: []string{"", "   "}}

	decision := matching.Decide(context.Background(), fields, staticLookup(nil, nil), tolerance)

	assert.Equal(t, domain.MatchedNeedsReview, decision.Status)
	assert.Equal(t, domain.ReasonNoPOReference, decision.Reason)
}

func TestDecidePONotFound(t *testing.T) {
	fields := &domain.ExtractedFields{TotalAmount: 100, PONumbers: []string{"PO-1", "PO-2"}}

	decision := matching.Decide(context.Background(), fields, staticLookup(nil, nil), tolerance)

	assert.Equal(t, domain.MatchedNeedsReview, decision.Status)
	assert.Equal(t, domain.ReasonPONotFound, decision.Reason)
}

func TestDecideFirstResolvingPOWins(t *testing.T) {
	orders := map[string]*domain.PurchaseOrder{
		"PO-2": po("PO-2", 100),
		"PO-3": po("PO-3", 999), // would not match; must never be consulted
	}
	fields := &domain.ExtractedFields{TotalAmount: 100, PONumbers: []string{"PO-1", "PO-2", "PO-3"}}

	decision := matching.Decide(context.Background(), fields, staticLookup(orders, nil), tolerance)

	assert.Equal(t, domain.MatchedAutoApproved, decision.Status)
	require.NotNil(t, decision.MatchedPONumber)
	assert.Equal(t, "PO-2", *decision.MatchedPONumber)
	require.NotNil(t, decision.VariancePct)
	assert.Equal(t, 0.0, *decision.VariancePct)
}

func TestDecideLookupErrorDowngradesToProcessingError(t *testing.T) {
	failing := map[string]bool{"PO-1": true}
	fields := &domain.ExtractedFields{TotalAmount: 100, PONumbers: []string{"PO-1", "PO-2"}}

	decision := matching.Decide(context.Background(), fields, staticLookup(nil, failing), tolerance)

	assert.Equal(t, domain.MatchedNeedsReview, decision.Status)
	assert.Equal(t, domain.ReasonProcessingError, decision.Reason)
}

func TestDecideLookupErrorThenLaterPOFound(t *testing.T) {
	orders := map[string]*domain.PurchaseOrder{"PO-2": po("PO-2", 100)}
	failing := map[string]bool{"PO-1": true}
	fields := &domain.ExtractedFields{TotalAmount: 102, PONumbers: []string{"PO-1", "PO-2"}}

	decision := matching.Decide(context.Background(), fields, staticLookup(orders, failing), tolerance)

	// A failed lookup along the way does not block a later match
	assert.Equal(t, domain.MatchedAutoApproved, decision.Status)
	require.NotNil(t, decision.MatchedPONumber)
	assert.Equal(t, "PO-2", *decision.MatchedPONumber)
}

func TestDecideZeroPOAmountReadsAsFullVariance(t *testing.T) {
	orders := map[string]*domain.PurchaseOrder{"PO-1": po("PO-1", 0)}
	fields := &domain.ExtractedFields{TotalAmount: 50, PONumbers: []string{"PO-1"}}

	decision := matching.Decide(context.Background(), fields, staticLookup(orders, nil), tolerance)

	assert.Equal(t, domain.MatchedNeedsReview, decision.Status)
	assert.Equal(t, domain.ReasonVariance, decision.Reason)
	require.NotNil(t, decision.VariancePct)
	assert.Equal(t, 1.0, *decision.VariancePct)
}

func TestDecideVariance(t *testing.T) {
	tests := []struct {
		name          string
		invoiceAmount float64
		poAmount      float64
		wantStatus    domain.MatchedStatus
		wantVariance  float64
	}{
		{
			name:          "exact match",
			invoiceAmount: 100,
			poAmount:      100,
			wantStatus:    domain.MatchedAutoApproved,
			wantVariance:  0,
		},
		{
			name:          "within tolerance above",
			invoiceAmount: 104,
			poAmount:      100,
			wantStatus:    domain.MatchedAutoApproved,
			wantVariance:  0.04,
		},
		{
			name:          "within tolerance below",
			invoiceAmount: 96,
			poAmount:      100,
			wantStatus:    domain.MatchedAutoApproved,
			wantVariance:  -0.04,
		},
		{
			name:          "exactly at tolerance is approved",
			invoiceAmount: 105,
			poAmount:      100,
			wantStatus:    domain.MatchedAutoApproved,
			wantVariance:  0.05,
		},
		{
			name:          "just above tolerance",
			invoiceAmount: 106,
			poAmount:      100,
			wantStatus:    domain.MatchedNeedsReview,
			wantVariance:  0.06,
		},
		{
			name:          "far below tolerance",
			invoiceAmount: 50,
			poAmount:      100,
			wantStatus:    domain.MatchedNeedsReview,
			wantVariance:  -0.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orders := map[string]*domain.PurchaseOrder{"PO-1": po("PO-1", tt.poAmount)}
			fields := &domain.ExtractedFields{TotalAmount: tt.invoiceAmount, PONumbers: []string{"PO-1"}}

			decision := matching.Decide(context.Background(), fields, staticLookup(orders, nil), tolerance)

			assert.Equal(t, tt.wantStatus, decision.Status)
			require.NotNil(t, decision.VariancePct)
			assert.InDelta(t, tt.wantVariance, *decision.VariancePct, 1e-9)
			require.NotNil(t, decision.POAmount)
			assert.Equal(t, tt.poAmount, *decision.POAmount)
			if tt.wantStatus == domain.MatchedNeedsReview {
				assert.Equal(t, domain.ReasonVariance, decision.Reason)
			} else {
				assert.Empty(t, decision.Reason)
			}
		})
	}
}
