package metrics

import (
	"log/slog"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mfreitas/lucre/internal/period"
	"github.com/mfreitas/lucre/internal/record"
)

// Snapshot is the metrics roll-up for one aggregation window. Monthly
// snapshots are keyed by their period and persisted in the history
// store; other window shapes are computed on demand and not persisted.
type Snapshot struct {
	PeriodKey                period.Key
	Revenue                  decimal.Decimal
	GrossProfit              decimal.Decimal
	ProfitMarginPct          float64
	RoiPct                   float64
	UnitsSold                int64
	OrderCount               int
	DistinctProducts         int
	AverageOrderValue        decimal.Decimal
	InventoryValue           decimal.Decimal
	InventoryTurnover        float64
	TurnoverDays             float64
	StagnantInventoryRate    float64
	ProfitGoalAchievementPct float64
	ComputedAt               time.Time
}

// Input carries everything Aggregate needs. Records and purchases are
// window-filtered by occurrence date; inventory is a point-in-time
// snapshot and is used whole.
type Input struct {
	Records   []record.Transaction
	Inventory []record.InventorySnapshot
	Purchases []record.Purchase
	Window    period.Window
	Targets   Targets
	Now       time.Time
}

// Aggregate reduces the input collections into one snapshot. It is a
// pure fold: identical inputs always produce identical snapshots, an
// empty window produces an all-zero snapshot, and every
// percentage-of-zero-base computation yields 0 rather than an error.
func Aggregate(in Input) Snapshot {
	var acc struct {
		revenue     decimal.Decimal
		grossProfit decimal.Decimal
		cost        decimal.Decimal
		unitsSold   int64
		orders      int
		products    map[string]struct{}
	}
	acc.products = make(map[string]struct{})

	for _, tx := range in.Records {
		if !in.Window.Contains(tx.OccurredAt) {
			continue
		}

		acc.revenue = acc.revenue.Add(tx.TotalAmount)
		acc.grossProfit = acc.grossProfit.Add(tx.GrossProfit)
		acc.cost = acc.cost.Add(tx.Cost)
		acc.unitsSold += tx.Quantity
		acc.orders++
		acc.products[tx.ProductKey] = struct{}{}
	}

	purchaseCost := decimal.Zero
	for _, p := range in.Purchases {
		if in.Window.Contains(p.PurchasedAt) {
			purchaseCost = purchaseCost.Add(p.TotalCost)
		}
	}

	inventoryValue := decimal.Zero
	stagnant := 0

	for _, inv := range in.Inventory {
		inventoryValue = inventoryValue.Add(inv.TotalValue)

		if inv.DaysInStock > in.Targets.StagnantDaysThreshold {
			stagnant++
		}
	}

	key := period.KeyOf(in.Window.Start)

	// The purchase ledger is the preferred investment base for ROI.
	// When it has no in-window entries the recorded cost of goods on the
	// sales records stands in, so months with an incomplete ledger still
	// produce a usable figure. The two bases are not directly comparable
	// across months, hence the log line.
	investment := purchaseCost
	if investment.IsZero() && !acc.cost.IsZero() {
		investment = acc.cost

		slog.Warn("purchase ledger empty for window, using recorded cost of goods as roi base",
			"period", key, "cost_base", investment)
	}

	snap := Snapshot{
		PeriodKey:                key,
		Revenue:                  acc.revenue,
		GrossProfit:              acc.grossProfit,
		ProfitMarginPct:          pctOf(acc.grossProfit, acc.revenue),
		RoiPct:                   pctOf(acc.grossProfit, investment),
		UnitsSold:                acc.unitsSold,
		OrderCount:               acc.orders,
		DistinctProducts:         len(acc.products),
		InventoryValue:           inventoryValue,
		ProfitGoalAchievementPct: pctOf(acc.grossProfit, in.Targets.TargetMonthlyProfit),
		ComputedAt:               in.Now,
	}

	if acc.orders > 0 {
		snap.AverageOrderValue = acc.revenue.Div(decimal.NewFromInt(int64(acc.orders))).Round(2)
	}

	if len(in.Inventory) > 0 {
		snap.StagnantInventoryRate = 100 * float64(stagnant) / float64(len(in.Inventory))
	}

	// Turnover uses the current inventory value as the average: the
	// store keeps no intra-month valuation history to average over.
	if !inventoryValue.IsZero() {
		snap.InventoryTurnover = acc.revenue.Div(inventoryValue).InexactFloat64()
	}

	if snap.InventoryTurnover > 0 {
		snap.TurnoverDays = float64(in.Window.Days()) / snap.InventoryTurnover
	} else {
		// Unbounded: nothing turned over. Callers rendering this value
		// must special-case the infinity.
		snap.TurnoverDays = math.Inf(1)
	}

	return snap
}

// pctOf returns 100 × num / den, or 0 when the base is zero.
func pctOf(num, den decimal.Decimal) float64 {
	if den.IsZero() {
		return 0
	}

	return num.Div(den).InexactFloat64() * 100
}
