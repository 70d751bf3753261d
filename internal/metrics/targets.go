package metrics

import "github.com/shopspring/decimal"

// Targets holds the configured goals and thresholds every computation
// is measured against. Computations receive it explicitly; there is no
// ambient configuration.
type Targets struct {
	TargetMonthlyProfit   decimal.Decimal
	TargetProfitMarginPct float64
	TargetRoiPct          float64
	MaxInventoryValue     decimal.Decimal
	StagnantDaysThreshold int
	LowStockThreshold     int64
}

// DefaultTargets returns the documented fallback values, used when a
// deployment configures nothing.
func DefaultTargets() Targets {
	return Targets{
		TargetMonthlyProfit:   decimal.NewFromInt(800000),
		TargetProfitMarginPct: 25,
		TargetRoiPct:          30,
		MaxInventoryValue:     decimal.NewFromInt(1000000),
		StagnantDaysThreshold: 60,
		LowStockThreshold:     5,
	}
}
