package record_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfreitas/lucre/internal/record"
)

func validRaw() record.Raw {
	return record.Raw{
		OrderID:      "ord-1001",
		OccurredAt:   time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC),
		ProductKey:   "B00TEST01",
		UnifiedSKU:   "SKU-1",
		Quantity:     "2",
		UnitPrice:    "500",
		TotalAmount:  "1000",
		Cost:         "400",
		Fees:         "100",
		OtherCost:    "50",
		GrossProfit:  "450",
		Status:       "shipped",
		Fulfillment:  "platform",
		SourceSystem: "marketplace",
	}
}

func TestNormalize(t *testing.T) {
	type testCase struct {
		name    string
		mutate  func(*record.Raw)
		check   func(t *testing.T, tx record.Transaction)
		wantErr bool
	}

	tests := []testCase{
		{
			name:   "PassThrough",
			mutate: func(*record.Raw) {},
			check: func(t *testing.T, tx record.Transaction) {
				assert.True(t, tx.TotalAmount.Equal(decimal.NewFromInt(1000)))
				assert.True(t, tx.GrossProfit.Equal(decimal.NewFromInt(450)))
				assert.Equal(t, record.StatusShipped, tx.Status)
				assert.Equal(t, record.FulfillmentPlatform, tx.Fulfillment)
			},
		},
		{
			name: "RebuildsZeroTotal",
			mutate: func(r *record.Raw) {
				r.TotalAmount = "0"
				r.UnitPrice = "500"
				r.Quantity = "4"
			},
			check: func(t *testing.T, tx record.Transaction) {
				assert.True(t, tx.TotalAmount.Equal(decimal.NewFromInt(2000)),
					"total should be rebuilt as unit price times quantity, got %s", tx.TotalAmount)
			},
		},
		{
			name: "RebuiltTotalForcesProfitRederivation",
			mutate: func(r *record.Raw) {
				r.TotalAmount = "0"
				r.UnitPrice = "500"
				r.Quantity = "4"
				r.GrossProfit = "450" // derived from the zero total, not trustworthy
			},
			check: func(t *testing.T, tx record.Transaction) {
				// 2000 - 400 - 100 - 50
				assert.True(t, tx.GrossProfit.Equal(decimal.NewFromInt(1450)),
					"got %s", tx.GrossProfit)
			},
		},
		{
			name: "ZeroProfitTreatedAsUnset",
			mutate: func(r *record.Raw) {
				r.GrossProfit = "0"
			},
			check: func(t *testing.T, tx record.Transaction) {
				// 1000 - 400 - 100 - 50
				assert.True(t, tx.GrossProfit.Equal(decimal.NewFromInt(450)), "got %s", tx.GrossProfit)
			},
		},
		{
			name: "GarbageNumericsBecomeZero",
			mutate: func(r *record.Raw) {
				r.Cost = "n/a"
				r.Fees = ""
				r.OtherCost = "---"
			},
			check: func(t *testing.T, tx record.Transaction) {
				assert.True(t, tx.Cost.IsZero())
				assert.True(t, tx.Fees.IsZero())
				assert.True(t, tx.OtherCost.IsZero())
			},
		},
		{
			name:    "MissingOrderID",
			mutate:  func(r *record.Raw) { r.OrderID = "  " },
			wantErr: true,
		},
		{
			name:    "MissingProductKey",
			mutate:  func(r *record.Raw) { r.ProductKey = "" },
			wantErr: true,
		},
		{
			name:    "NegativeQuantity",
			mutate:  func(r *record.Raw) { r.Quantity = "-1" },
			wantErr: true,
		},
		{
			name:    "ZeroQuantityShipped",
			mutate:  func(r *record.Raw) { r.Quantity = "0" },
			wantErr: true,
		},
		{
			name: "ZeroQuantityCancelled",
			mutate: func(r *record.Raw) {
				r.Quantity = "0"
				r.Status = "cancelled"
			},
			check: func(t *testing.T, tx record.Transaction) {
				assert.Equal(t, record.StatusCancelled, tx.Status)
				assert.EqualValues(t, 0, tx.Quantity)
			},
		},
		{
			name: "ZeroQuantityReturned",
			mutate: func(r *record.Raw) {
				r.Quantity = "0"
				r.Status = "returned"
			},
			check: func(t *testing.T, tx record.Transaction) {
				assert.Equal(t, record.StatusReturned, tx.Status)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := validRaw()
			tt.mutate(&raw)

			tx, err := record.Normalize(raw)

			if tt.wantErr {
				require.Error(t, err)

				var verr *record.ValidationError
				require.ErrorAs(t, err, &verr)
				assert.NotEmpty(t, verr.Fields)
				assert.NotEmpty(t, verr.Reasons)

				return
			}

			require.NoError(t, err)

			if tt.check != nil {
				tt.check(t, tx)
			}
		})
	}
}

// Normalizing an already-normalized record must change nothing.
func TestNormalize_Idempotent(t *testing.T) {
	raw := validRaw()
	raw.TotalAmount = "0"
	raw.GrossProfit = "0"

	first, err := record.Normalize(raw)
	require.NoError(t, err)

	second, err := record.Normalize(rawFrom(first))
	require.NoError(t, err)

	assert.True(t, first.TotalAmount.Equal(second.TotalAmount))
	assert.True(t, first.GrossProfit.Equal(second.GrossProfit))
	assert.Equal(t, first.Quantity, second.Quantity)
	assert.Equal(t, first.Status, second.Status)
}

// rawFrom renders a normalized transaction back into raw form, the way
// a feed replaying previously repaired rows would.
func rawFrom(tx record.Transaction) record.Raw {
	return record.Raw{
		OrderID:      tx.OrderID,
		OccurredAt:   tx.OccurredAt,
		ProductKey:   tx.ProductKey,
		UnifiedSKU:   tx.UnifiedSKU,
		Quantity:     decimal.NewFromInt(tx.Quantity).String(),
		UnitPrice:    tx.UnitPrice.String(),
		TotalAmount:  tx.TotalAmount.String(),
		Cost:         tx.Cost.String(),
		Fees:         tx.Fees.String(),
		OtherCost:    tx.OtherCost.String(),
		GrossProfit:  tx.GrossProfit.String(),
		Status:       string(tx.Status),
		Fulfillment:  string(tx.Fulfillment),
		SourceSystem: tx.SourceSystem,
	}
}

func TestNormalizeBatch(t *testing.T) {
	good := validRaw()

	bad := validRaw()
	bad.Quantity = "-3"

	alsoBad := validRaw()
	alsoBad.OrderID = ""

	txs, invalid := record.NormalizeBatch([]record.Raw{good, bad, alsoBad})

	assert.Len(t, txs, 1)
	require.Len(t, invalid, 2)
	assert.Equal(t, 1, invalid[0].Index)
	assert.Equal(t, 2, invalid[1].Index)
	assert.Contains(t, invalid[0].Fields, "quantity")
	assert.Contains(t, invalid[1].Fields, "orderId")
}

func TestNormalizeBatch_AllInvalid(t *testing.T) {
	bad := validRaw()
	bad.ProductKey = ""

	txs, invalid := record.NormalizeBatch([]record.Raw{bad, bad})

	assert.Empty(t, txs)
	assert.Len(t, invalid, 2)
}
