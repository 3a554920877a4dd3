package matching

import (
	"context"
	"math"

	"go.uber.org/zap"

	"github.com/apflow/invoice-pipeline/internal/domain"
	"github.com/apflow/invoice-pipeline/internal/logger"
)

// POLookup resolves a purchase-order reference. It returns (nil, nil)
// when no such order exists.
type POLookup func(ctx context.Context, poNumber string) (*domain.PurchaseOrder, error)

// Decide applies the match rules to one invoice and always produces a
// verdict. Rules are evaluated in order, stopping at the first that
// applies:
//
//  1. No PO references on the invoice: needs review.
//  2. The first PO reference that resolves to a known order is the
//     candidate; later references are never scored against it.
//  3. No reference resolved: needs review (a lookup failure along the
//     way downgrades the reason to a processing error so reviewers know
//     the verdict may not reflect reference data).
//  4. A zero PO amount reads as full variance, guarding the division.
//  5. Variance within tolerance (inclusive) auto-approves; anything
//     above needs review with the computed percentage recorded.
//
// The verdict is a pure function of the extracted fields, the PO set
// visible through lookup, and the tolerance.
func Decide(ctx context.Context, fields *domain.ExtractedFields, lookup POLookup, tolerance float64) *domain.Decision {
	decision := &domain.Decision{
		InvoiceAmount: fields.TotalAmount,
		Tolerance:     tolerance,
	}

	poNumbers := fields.CleanPONumbers()
	if len(poNumbers) == 0 {
		decision.Status = domain.MatchedNeedsReview
		decision.Reason = domain.ReasonNoPOReference
		return decision
	}

	var candidate *domain.PurchaseOrder
	var candidateNumber string
	lookupFailed := false
	for _, poNumber := range poNumbers {
		po, err := lookup(ctx, poNumber)
		if err != nil {
			logger.ErrorCtx(ctx, err, zap.String("message", "PO lookup failed"), zap.String("poNumber", poNumber))
			lookupFailed = true
			continue
		}
		if po != nil {
			candidate = po
			candidateNumber = poNumber
			break
		}
	}

	if candidate == nil {
		decision.Status = domain.MatchedNeedsReview
		if lookupFailed {
			decision.Reason = domain.ReasonProcessingError
		} else {
			decision.Reason = domain.ReasonPONotFound
		}
		return decision
	}

	decision.MatchedPONumber = &candidateNumber
	decision.POAmount = &candidate.TotalAmount

	variance := variancePct(fields.TotalAmount, candidate.TotalAmount)
	decision.VariancePct = &variance

	if math.Abs(variance) <= tolerance {
		decision.Status = domain.MatchedAutoApproved
		return decision
	}

	decision.Status = domain.MatchedNeedsReview
	decision.Reason = domain.ReasonVariance
	return decision
}

// variancePct is the signed deviation of the invoice amount from the PO
// amount, as a fraction of the PO amount. A zero PO amount reads as
// full variance.
func variancePct(invoiceAmount, poAmount float64) float64 {
	if poAmount == 0 {
		return 1.0
	}
	return (invoiceAmount - poAmount) / poAmount
}
