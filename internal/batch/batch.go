// Package batch decodes a collaborator-supplied JSON batch document
// into the typed rows the pipeline consumes. Transport and encoding of
// the document are the collaborator's problem; this package only maps
// an already-decoded document onto row types.
package batch

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mfreitas/lucre/internal/record"
	"github.com/mfreitas/lucre/internal/report"
)

// flexString accepts both quoted and bare JSON values, since source
// feeds disagree on whether numerics are quoted. Garbage survives here
// and is defused later by normalization.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}

		*f = flexString(s)

		return nil
	}

	if string(b) == "null" {
		*f = ""
		return nil
	}

	*f = flexString(b)

	return nil
}

type transactionRow struct {
	OrderID      string     `json:"order_id"`
	OccurredAt   time.Time  `json:"occurred_at"`
	ProductKey   string     `json:"product_key"`
	UnifiedSKU   string     `json:"unified_sku"`
	Quantity     flexString `json:"quantity"`
	UnitPrice    flexString `json:"unit_price"`
	TotalAmount  flexString `json:"total_amount"`
	Cost         flexString `json:"cost"`
	Fees         flexString `json:"fees"`
	OtherCost    flexString `json:"other_cost"`
	GrossProfit  flexString `json:"gross_profit"`
	Status       string     `json:"status"`
	Fulfillment  string     `json:"fulfillment"`
	SourceSystem string     `json:"source_system"`
}

type inventoryRow struct {
	UnifiedSKU     string          `json:"unified_sku"`
	QuantityOnHand int64           `json:"quantity_on_hand"`
	UnitCost       decimal.Decimal `json:"unit_cost"`
	TotalValue     decimal.Decimal `json:"total_value"`
	LastSoldAt     *time.Time      `json:"last_sold_at"`
	DaysInStock    int             `json:"days_in_stock"`
	ReorderPoint   int64           `json:"reorder_point"`
}

type purchaseRow struct {
	UnifiedSKU  string          `json:"unified_sku"`
	PurchasedAt time.Time       `json:"purchased_at"`
	Quantity    int64           `json:"quantity"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
	TotalCost   decimal.Decimal `json:"total_cost"`
	Supplier    string          `json:"supplier"`
}

type document struct {
	Records   []transactionRow `json:"records"`
	Inventory []inventoryRow   `json:"inventory"`
	Purchases []purchaseRow    `json:"purchases"`
}

// Parse decodes a batch document into pipeline input rows. Targets and
// the reference time are the caller's to fill in.
func Parse(r io.Reader) (report.RunInput, error) {
	var doc document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return report.RunInput{}, fmt.Errorf("decoding batch document: %w", err)
	}

	in := report.RunInput{
		Records:   make([]record.Raw, len(doc.Records)),
		Inventory: make([]record.InventorySnapshot, len(doc.Inventory)),
		Purchases: make([]record.Purchase, len(doc.Purchases)),
	}

	for i, row := range doc.Records {
		in.Records[i] = record.Raw{
			OrderID:      row.OrderID,
			OccurredAt:   row.OccurredAt,
			ProductKey:   row.ProductKey,
			UnifiedSKU:   row.UnifiedSKU,
			Quantity:     string(row.Quantity),
			UnitPrice:    string(row.UnitPrice),
			TotalAmount:  string(row.TotalAmount),
			Cost:         string(row.Cost),
			Fees:         string(row.Fees),
			OtherCost:    string(row.OtherCost),
			GrossProfit:  string(row.GrossProfit),
			Status:       row.Status,
			Fulfillment:  row.Fulfillment,
			SourceSystem: row.SourceSystem,
		}
	}

	for i, row := range doc.Inventory {
		in.Inventory[i] = record.InventorySnapshot{
			UnifiedSKU:     row.UnifiedSKU,
			QuantityOnHand: row.QuantityOnHand,
			UnitCost:       row.UnitCost,
			TotalValue:     row.TotalValue,
			LastSoldAt:     row.LastSoldAt,
			DaysInStock:    row.DaysInStock,
			ReorderPoint:   row.ReorderPoint,
		}
	}

	for i, row := range doc.Purchases {
		in.Purchases[i] = record.Purchase{
			UnifiedSKU:  row.UnifiedSKU,
			PurchasedAt: row.PurchasedAt,
			Quantity:    row.Quantity,
			UnitCost:    row.UnitCost,
			TotalCost:   row.TotalCost,
			Supplier:    row.Supplier,
		}
	}

	return in, nil
}
