package analytics

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mfreitas/lucre/internal/history"
	"github.com/mfreitas/lucre/internal/metrics"
	"github.com/mfreitas/lucre/internal/period"
)

// DeltaSet compares one snapshot against an earlier anchor month.
//
// Level metrics (revenue, profit, units) carry relative growth rates; a
// nil rate means no comparison is possible because the anchor value was
// zero. Metrics that are already percentages (margin, ROI) carry plain
// percentage-point differences instead, which are always computable.
type DeltaSet struct {
	Current  period.Key
	Previous period.Key

	RevenueGrowthPct     *float64
	GrossProfitGrowthPct *float64
	UnitsSoldGrowthPct   *float64

	ProfitMarginPts float64
	RoiPts          float64
}

type Service struct {
	history *history.Service
}

func NewService(hist *history.Service) *Service {
	return &Service{history: hist}
}

// MonthOverMonth compares the current snapshot against the stored
// snapshot for the preceding month. A missing previous month returns
// nil rather than a zero-delta set: absence is never reported as zero.
func (s *Service) MonthOverMonth(ctx context.Context, current metrics.Snapshot) (*DeltaSet, error) {
	return s.against(ctx, current, current.PeriodKey.Prev())
}

// YearOverYear compares the current snapshot against the same calendar
// month one year earlier, with the same missing-anchor semantics as
// MonthOverMonth.
func (s *Service) YearOverYear(ctx context.Context, current metrics.Snapshot) (*DeltaSet, error) {
	return s.against(ctx, current, current.PeriodKey.SameMonthPriorYear())
}

func (s *Service) against(ctx context.Context, current metrics.Snapshot, anchor period.Key) (*DeltaSet, error) {
	previous, err := s.history.Get(ctx, anchor)
	if err != nil {
		if errors.Is(err, history.ErrNotFound) {
			return nil, nil
		}

		return nil, fmt.Errorf("fetching anchor snapshot %s: %w", anchor, err)
	}

	delta := Compare(current, previous.Snapshot)

	return &delta, nil
}

// Compare builds the delta set between two snapshots. Pure; exported so
// callers holding both snapshots can diff without a store round trip.
func Compare(current, previous metrics.Snapshot) DeltaSet {
	return DeltaSet{
		Current:              current.PeriodKey,
		Previous:             previous.PeriodKey,
		RevenueGrowthPct:     growth(current.Revenue, previous.Revenue),
		GrossProfitGrowthPct: growth(current.GrossProfit, previous.GrossProfit),
		UnitsSoldGrowthPct:   growth(decimal.NewFromInt(current.UnitsSold), decimal.NewFromInt(previous.UnitsSold)),
		ProfitMarginPts:      current.ProfitMarginPct - previous.ProfitMarginPct,
		RoiPts:               current.RoiPct - previous.RoiPct,
	}
}

// growth returns the relative growth rate in percent, or nil when the
// anchor value is zero and no rate exists.
func growth(current, previous decimal.Decimal) *float64 {
	if previous.IsZero() {
		return nil
	}

	g := current.Sub(previous).Div(previous).InexactFloat64() * 100

	return &g
}

// Metric names a snapshot field a moving average can be taken over.
type Metric string

const (
	MetricRevenue           Metric = "revenue"
	MetricGrossProfit       Metric = "gross_profit"
	MetricUnitsSold         Metric = "units_sold"
	MetricProfitMarginPct   Metric = "profit_margin_pct"
	MetricRoiPct            Metric = "roi_pct"
	MetricInventoryValue    Metric = "inventory_value"
	MetricAverageOrderValue Metric = "average_order_value"
)

// ParseMetric validates a metric name supplied by a caller.
func ParseMetric(s string) (Metric, error) {
	switch m := Metric(s); m {
	case MetricRevenue, MetricGrossProfit, MetricUnitsSold,
		MetricProfitMarginPct, MetricRoiPct,
		MetricInventoryValue, MetricAverageOrderValue:
		return m, nil
	default:
		return "", fmt.Errorf("unknown metric %q", s)
	}
}

// Value extracts the named metric from a stored snapshot as a float.
func Value(snap *history.Stored, m Metric) float64 {
	switch m {
	case MetricRevenue:
		return snap.Revenue.InexactFloat64()
	case MetricGrossProfit:
		return snap.GrossProfit.InexactFloat64()
	case MetricUnitsSold:
		return float64(snap.UnitsSold)
	case MetricProfitMarginPct:
		return snap.ProfitMarginPct
	case MetricRoiPct:
		return snap.RoiPct
	case MetricInventoryValue:
		return snap.InventoryValue.InexactFloat64()
	case MetricAverageOrderValue:
		return snap.AverageOrderValue.InexactFloat64()
	}

	return 0
}

// MovingAverage computes a trailing average of one metric over a month
// series, producing one output per input position. The first window−1
// positions are nil (not enough trailing months). Later positions
// average only the months that actually have data, dividing by how many
// there are: a window containing gaps still yields a partial average. A
// window that is entirely gaps yields nil.
func MovingAverage(entries []history.Entry, metric Metric, window int) []*float64 {
	if window <= 0 {
		return make([]*float64, len(entries))
	}

	out := make([]*float64, len(entries))

	for i := window - 1; i < len(entries); i++ {
		var (
			sum     float64
			present int
		)

		for j := i - window + 1; j <= i; j++ {
			if !entries[j].HasData {
				continue
			}

			sum += Value(entries[j].Snapshot, metric)
			present++
		}

		if present == 0 {
			continue
		}

		avg := sum / float64(present)
		out[i] = &avg
	}

	return out
}
