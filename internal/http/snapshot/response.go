package snapshot

import (
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mfreitas/lucre/internal/analytics"
	"github.com/mfreitas/lucre/internal/history"
	"github.com/mfreitas/lucre/internal/metrics"
)

// Response is the wire shape of one snapshot. TurnoverDays is null when
// nothing turned over in the window; the stored sentinel for that case
// is +Inf, which JSON cannot carry.
type Response struct {
	PeriodKey                string          `json:"period_key"`
	Revenue                  decimal.Decimal `json:"revenue"`
	GrossProfit              decimal.Decimal `json:"gross_profit"`
	ProfitMarginPct          float64         `json:"profit_margin_pct"`
	RoiPct                   float64         `json:"roi_pct"`
	UnitsSold                int64           `json:"units_sold"`
	OrderCount               int             `json:"order_count"`
	DistinctProducts         int             `json:"distinct_products"`
	AverageOrderValue        decimal.Decimal `json:"average_order_value"`
	InventoryValue           decimal.Decimal `json:"inventory_value"`
	InventoryTurnover        float64         `json:"inventory_turnover"`
	TurnoverDays             *float64        `json:"turnover_days"`
	StagnantInventoryRate    float64         `json:"stagnant_inventory_rate"`
	ProfitGoalAchievementPct float64         `json:"profit_goal_achievement_pct"`
	ComputedAt               time.Time       `json:"computed_at"`
	CreatedAt                *time.Time      `json:"created_at,omitempty"`
}

// ToResponse maps a computed snapshot to its wire shape.
func ToResponse(s metrics.Snapshot) Response {
	resp := Response{
		PeriodKey:                s.PeriodKey.String(),
		Revenue:                  s.Revenue,
		GrossProfit:              s.GrossProfit,
		ProfitMarginPct:          s.ProfitMarginPct,
		RoiPct:                   s.RoiPct,
		UnitsSold:                s.UnitsSold,
		OrderCount:               s.OrderCount,
		DistinctProducts:         s.DistinctProducts,
		AverageOrderValue:        s.AverageOrderValue,
		InventoryValue:           s.InventoryValue,
		InventoryTurnover:        s.InventoryTurnover,
		StagnantInventoryRate:    s.StagnantInventoryRate,
		ProfitGoalAchievementPct: s.ProfitGoalAchievementPct,
		ComputedAt:               s.ComputedAt,
	}

	if !math.IsInf(s.TurnoverDays, 1) {
		td := s.TurnoverDays
		resp.TurnoverDays = &td
	}

	return resp
}

// ToStoredResponse maps a persisted snapshot, including its creation time.
func ToStoredResponse(s *history.Stored) Response {
	resp := ToResponse(s.Snapshot)
	created := s.CreatedAt
	resp.CreatedAt = &created

	return resp
}

// SeriesEntry is one month in a requested series. Snapshot is null for
// months with no stored data, which is not the same as a snapshot of
// zeros.
type SeriesEntry struct {
	PeriodKey string    `json:"period_key"`
	HasData   bool      `json:"has_data"`
	Snapshot  *Response `json:"snapshot"`
}

func ToSeries(entries []history.Entry) []SeriesEntry {
	out := make([]SeriesEntry, len(entries))

	for i, e := range entries {
		out[i] = SeriesEntry{PeriodKey: e.Key.String(), HasData: e.HasData}

		if e.HasData {
			resp := ToStoredResponse(e.Snapshot)
			out[i].Snapshot = &resp
		}
	}

	return out
}

// DeltaResponse is the wire shape of a comparison. Growth rates are
// null when the anchor value was zero and no rate exists.
type DeltaResponse struct {
	Current              string   `json:"current"`
	Previous             string   `json:"previous"`
	RevenueGrowthPct     *float64 `json:"revenue_growth_pct"`
	GrossProfitGrowthPct *float64 `json:"gross_profit_growth_pct"`
	UnitsSoldGrowthPct   *float64 `json:"units_sold_growth_pct"`
	ProfitMarginPts      float64  `json:"profit_margin_pts"`
	RoiPts               float64  `json:"roi_pts"`
}

// ToDeltaResponse maps a delta set; a nil set (no anchor month) maps to nil.
func ToDeltaResponse(d *analytics.DeltaSet) *DeltaResponse {
	if d == nil {
		return nil
	}

	return &DeltaResponse{
		Current:              d.Current.String(),
		Previous:             d.Previous.String(),
		RevenueGrowthPct:     d.RevenueGrowthPct,
		GrossProfitGrowthPct: d.GrossProfitGrowthPct,
		UnitsSoldGrowthPct:   d.UnitsSoldGrowthPct,
		ProfitMarginPts:      d.ProfitMarginPts,
		RoiPts:               d.RoiPts,
	}
}
