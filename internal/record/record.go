package record

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status represents the fulfilment lifecycle state of a sold batch.
type Status string

const (
	StatusShipped   Status = "shipped"
	StatusPending   Status = "pending"
	StatusCancelled Status = "cancelled"
	StatusReturned  Status = "returned"
)

// Fulfillment represents who ships the order.
type Fulfillment string

const (
	FulfillmentSelf     Fulfillment = "self"
	FulfillmentPlatform Fulfillment = "platform"
)

// Transaction is one sold unit-batch. Instances are built by Normalize
// and are never mutated afterwards.
type Transaction struct {
	OrderID      string
	OccurredAt   time.Time
	ProductKey   string
	UnifiedSKU   string
	Quantity     int64
	UnitPrice    decimal.Decimal
	TotalAmount  decimal.Decimal
	Cost         decimal.Decimal
	Fees         decimal.Decimal
	OtherCost    decimal.Decimal
	GrossProfit  decimal.Decimal
	Status       Status
	Fulfillment  Fulfillment
	SourceSystem string
}

// InventorySnapshot is a point-in-time stock level for one SKU.
type InventorySnapshot struct {
	UnifiedSKU     string
	QuantityOnHand int64
	UnitCost       decimal.Decimal
	TotalValue     decimal.Decimal
	LastSoldAt     *time.Time
	DaysInStock    int
	ReorderPoint   int64
}

// Purchase is one purchase-ledger entry for restocking a SKU.
type Purchase struct {
	UnifiedSKU  string
	PurchasedAt time.Time
	Quantity    int64
	UnitCost    decimal.Decimal
	TotalCost   decimal.Decimal
	Supplier    string
}
