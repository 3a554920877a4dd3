package extraction

import (
	"bytes"
	"context"
	"fmt"

	"github.com/apflow/invoice-pipeline/internal/adapter"
	"github.com/apflow/invoice-pipeline/internal/domain"
)

// Extractor turns a raw document into structured invoice fields
//
//go:generate mockgen -source=extractor.go -destination=../mocks/extractor.go -package=mocks -mock_names=Extractor=MockExtractor
type Extractor interface {
	Extract(ctx context.Context, document []byte) (*domain.ExtractedFields, error)
}

// Config holds extraction configuration
type Config struct {
	Tier1URL         string
	Tier2URL         string
	Tier2APIKey      string
	EscalationCutoff float64
	MaxDocumentSize  int64
}

// httpExtractor calls an external extraction endpoint over HTTP
type httpExtractor struct {
	client  adapter.HTTPClient
	json    adapter.JSON
	url     string
	headers map[string]string
}

// NewHTTPExtractor creates an extractor backed by a single HTTP endpoint.
// apiKey is optional; when set it is sent as a bearer token.
func NewHTTPExtractor(client adapter.HTTPClient, jsonAdapter adapter.JSON, url, apiKey string) Extractor {
	var headers map[string]string
	if apiKey != "" {
		headers = map[string]string{"Authorization": "Bearer " + apiKey}
	}
	return &httpExtractor{
		client:  client,
		json:    jsonAdapter,
		url:     url,
		headers: headers,
	}
}

func (e *httpExtractor) Extract(ctx context.Context, document []byte) (*domain.ExtractedFields, error) {
	respBody, err := e.client.Post(ctx, e.url, "application/pdf", e.headers, bytes.NewReader(document))
	if err != nil {
		return nil, fmt.Errorf("extraction request failed: %w", err)
	}

	var fields domain.ExtractedFields
	if err := e.json.Unmarshal(respBody, &fields); err != nil {
		return nil, fmt.Errorf("failed to decode extraction response: %w", err)
	}

	return &fields, nil
}

// tieredExtractor runs the cheap tier first and escalates to the accurate
// tier only when the first pass comes back below the confidence cutoff.
type tieredExtractor struct {
	tier1  Extractor
	tier2  Extractor
	cutoff float64
}

// NewTieredExtractor composes two extractors with confidence-based escalation.
// tier2 may be nil, in which case tier1 results are always final.
func NewTieredExtractor(tier1, tier2 Extractor, cutoff float64) Extractor {
	return &tieredExtractor{
		tier1:  tier1,
		tier2:  tier2,
		cutoff: cutoff,
	}
}

func (e *tieredExtractor) Extract(ctx context.Context, document []byte) (*domain.ExtractedFields, error) {
	first, err := e.tier1.Extract(ctx, document)
	if err != nil {
		return nil, err
	}

	if e.tier2 == nil || first.Confidence >= e.cutoff {
		return first, nil
	}

	second, err := e.tier2.Extract(ctx, document)
	if err != nil {
		// The first pass already produced usable fields; escalation is
		// an improvement attempt, not a requirement.
		return first, nil
	}

	return Merge(first, second), nil
}

// Merge combines a low-confidence first pass with an escalated second pass.
// The second pass wins only where the first pass came back empty; the
// reported confidence is the higher of the two.
func Merge(first, second *domain.ExtractedFields) *domain.ExtractedFields {
	merged := *first

	if merged.VendorName == "" {
		merged.VendorName = second.VendorName
	}
	if merged.InvoiceNumber == "" {
		merged.InvoiceNumber = second.InvoiceNumber
	}
	if merged.InvoiceDate.IsZero() {
		merged.InvoiceDate = second.InvoiceDate
	}
	if merged.TotalAmount == 0 {
		merged.TotalAmount = second.TotalAmount
	}
	if len(merged.CleanPONumbers()) == 0 {
		merged.PONumbers = second.PONumbers
	}
	if second.Confidence > merged.Confidence {
		merged.Confidence = second.Confidence
	}

	return &merged
}
