package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/apflow/invoice-pipeline/internal/store/schema"
)

// poRecord is one entry of the input file
type poRecord struct {
	PONumber    string  `json:"po_number"`
	OrderDate   string  `json:"order_date"` // YYYY-MM-DD
	TotalAmount float64 `json:"total_amount"`
}

// parseOrders decodes and validates the input file. The whole file is
// rejected on the first bad record so a partial load never happens.
func parseOrders(data []byte) ([]schema.PurchaseOrder, error) {
	var records []poRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("input file contains no purchase orders")
	}

	orders := make([]schema.PurchaseOrder, 0, len(records))
	seen := make(map[string]struct{}, len(records))
	for i, r := range records {
		poNumber := strings.TrimSpace(r.PONumber)
		if poNumber == "" {
			return nil, fmt.Errorf("record %d: po_number is required", i)
		}
		if _, dup := seen[poNumber]; dup {
			return nil, fmt.Errorf("record %d: duplicate po_number %q", i, poNumber)
		}
		seen[poNumber] = struct{}{}

		if r.TotalAmount < 0 {
			return nil, fmt.Errorf("record %d: total_amount must not be negative", i)
		}

		orderDate, err := time.Parse("2006-01-02", r.OrderDate)
		if err != nil {
			return nil, fmt.Errorf("record %d: invalid order_date %q: %w", i, r.OrderDate, err)
		}

		orders = append(orders, schema.PurchaseOrder{
			PONumber:    poNumber,
			OrderDate:   orderDate,
			TotalAmount: r.TotalAmount,
		})
	}

	return orders, nil
}
