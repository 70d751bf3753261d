package record

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Raw is a transaction row as delivered by a data-access collaborator:
// already decoded and field-mapped, but with numeric fields still in
// string form and no invariants enforced.
type Raw struct {
	OrderID      string
	OccurredAt   time.Time
	ProductKey   string
	UnifiedSKU   string
	Quantity     string
	UnitPrice    string
	TotalAmount  string
	Cost         string
	Fees         string
	OtherCost    string
	GrossProfit  string
	Status       string
	Fulfillment  string
	SourceSystem string
}

// ValidationError reports every invariant a single raw row violated.
// It never aborts batch processing; see NormalizeBatch.
type ValidationError struct {
	Fields  []string
	Reasons []string
}

func (e *ValidationError) Error() string {
	return "invalid record: " + strings.Join(e.Reasons, "; ")
}

func (e *ValidationError) add(field, reason string) {
	e.Fields = append(e.Fields, field)
	e.Reasons = append(e.Reasons, reason)
}

// Invalid identifies one rejected row within a batch.
type Invalid struct {
	Index   int      `json:"index"`
	Fields  []string `json:"fields"`
	Reasons []string `json:"reasons"`
}

// Normalize repairs derived numeric fields on a raw row and returns the
// typed transaction. It is pure and deterministic: missing or garbage
// optional numerics become zero, never an error. The returned error is
// always a *ValidationError and means the row must be excluded from
// aggregation.
//
// Repair rules, in order:
//  1. a zero total with a positive unit price and quantity is rebuilt
//     as unitPrice × quantity
//  2. a zero gross profit is treated as unset and re-derived as
//     total − cost − fees − otherCost; a rebuilt total always forces
//     this re-derivation, since the source profit was computed from the
//     untrustworthy total
func Normalize(raw Raw) (Transaction, error) {
	verr := &ValidationError{}

	if strings.TrimSpace(raw.OrderID) == "" {
		verr.add("orderId", "order id is required")
	}

	if strings.TrimSpace(raw.ProductKey) == "" {
		verr.add("productKey", "product key is required")
	}

	tx := Transaction{
		OrderID:      strings.TrimSpace(raw.OrderID),
		OccurredAt:   raw.OccurredAt,
		ProductKey:   strings.TrimSpace(raw.ProductKey),
		UnifiedSKU:   strings.TrimSpace(raw.UnifiedSKU),
		Quantity:     parseInt(raw.Quantity),
		UnitPrice:    parseDecimal(raw.UnitPrice),
		TotalAmount:  parseDecimal(raw.TotalAmount),
		Cost:         parseDecimal(raw.Cost),
		Fees:         parseDecimal(raw.Fees),
		OtherCost:    parseDecimal(raw.OtherCost),
		GrossProfit:  parseDecimal(raw.GrossProfit),
		Status:       parseStatus(raw.Status),
		Fulfillment:  parseFulfillment(raw.Fulfillment),
		SourceSystem: strings.TrimSpace(raw.SourceSystem),
	}

	rebuiltTotal := false

	if tx.TotalAmount.IsZero() && tx.UnitPrice.IsPositive() && tx.Quantity > 0 {
		tx.TotalAmount = tx.UnitPrice.Mul(decimal.NewFromInt(tx.Quantity))
		rebuiltTotal = true
	}

	if tx.GrossProfit.IsZero() || rebuiltTotal {
		tx.GrossProfit = tx.TotalAmount.Sub(tx.Cost).Sub(tx.Fees).Sub(tx.OtherCost)
	}

	switch {
	case tx.Quantity < 0:
		verr.add("quantity", "quantity must not be negative")
	case tx.Quantity == 0 && tx.Status != StatusCancelled && tx.Status != StatusReturned:
		verr.add("quantity", "zero quantity is only valid for cancelled or returned orders")
	}

	if len(verr.Reasons) > 0 {
		return Transaction{}, verr
	}

	return tx, nil
}

// NormalizeBatch normalizes every row, excluding invalid ones instead of
// failing the batch. The Invalid list is indexed against raws so callers
// can always tell "no activity" apart from "all rows rejected".
func NormalizeBatch(raws []Raw) ([]Transaction, []Invalid) {
	txs := make([]Transaction, 0, len(raws))

	var invalid []Invalid

	for i, raw := range raws {
		tx, err := Normalize(raw)
		if err != nil {
			verr := err.(*ValidationError)
			invalid = append(invalid, Invalid{Index: i, Fields: verr.Fields, Reasons: verr.Reasons})

			continue
		}

		txs = append(txs, tx)
	}

	return txs, invalid
}

// parseDecimal reads a monetary field defensively: absent or
// non-numeric values become zero, never an error.
func parseDecimal(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}

	return d
}

func parseInt(s string) int64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}

	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}

	return n
}

func parseStatus(s string) Status {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "shipped", "shipping":
		return StatusShipped
	case "cancelled", "canceled":
		return StatusCancelled
	case "returned", "refunded":
		return StatusReturned
	default:
		return StatusPending
	}
}

func parseFulfillment(s string) Fulfillment {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "platform", "fba":
		return FulfillmentPlatform
	default:
		return FulfillmentSelf
	}
}
