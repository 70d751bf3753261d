package report

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mfreitas/lucre/internal/alert"
	"github.com/mfreitas/lucre/internal/analytics"
	"github.com/mfreitas/lucre/internal/history"
	"github.com/mfreitas/lucre/internal/metrics"
	"github.com/mfreitas/lucre/internal/period"
	"github.com/mfreitas/lucre/internal/record"
)

// Service runs the full monthly pipeline: normalize, aggregate,
// persist, compare against history, evaluate alerts. Everything except
// the history round trips is pure computation over the caller's
// collections.
type Service struct {
	history   *history.Service
	analytics *analytics.Service
}

func NewService(hist *history.Service) *Service {
	return &Service{
		history:   hist,
		analytics: analytics.NewService(hist),
	}
}

// RunInput is one batch of collaborator-supplied data. Records arrive
// raw; the pipeline normalizes them itself so every caller gets the
// same repair and validation behavior.
type RunInput struct {
	Records   []record.Raw
	Inventory []record.InventorySnapshot
	Purchases []record.Purchase
	Targets   metrics.Targets
	Now       time.Time
}

// RunResult always carries the snapshot together with the rejected-row
// list, so a caller can tell an idle month from a batch where every row
// was thrown out.
type RunResult struct {
	BatchID        uuid.UUID
	Snapshot       metrics.Snapshot
	Invalid        []record.Invalid
	MonthOverMonth *analytics.DeltaSet
	YearOverYear   *analytics.DeltaSet
	Alerts         []alert.Event
	LowStock       []alert.Event
}

// Run computes and persists the snapshot for the month containing
// in.Now, then derives comparisons and alerts from it.
func (s *Service) Run(ctx context.Context, in RunInput) (*RunResult, error) {
	batchID := uuid.New()

	txs, invalid := record.NormalizeBatch(in.Records)
	if len(invalid) > 0 {
		slog.Warn("excluded invalid records from aggregation",
			"batch_id", batchID, "rejected", len(invalid), "accepted", len(txs))
	}

	snap := metrics.Aggregate(metrics.Input{
		Records:   txs,
		Inventory: in.Inventory,
		Purchases: in.Purchases,
		Window:    period.MonthOf(in.Now),
		Targets:   in.Targets,
		Now:       in.Now,
	})

	if err := s.history.Save(ctx, snap); err != nil {
		return nil, fmt.Errorf("saving snapshot for %s: %w", snap.PeriodKey, err)
	}

	mom, err := s.analytics.MonthOverMonth(ctx, snap)
	if err != nil {
		return nil, fmt.Errorf("month-over-month for %s: %w", snap.PeriodKey, err)
	}

	yoy, err := s.analytics.YearOverYear(ctx, snap)
	if err != nil {
		return nil, fmt.Errorf("year-over-year for %s: %w", snap.PeriodKey, err)
	}

	result := &RunResult{
		BatchID:        batchID,
		Snapshot:       snap,
		Invalid:        invalid,
		MonthOverMonth: mom,
		YearOverYear:   yoy,
		Alerts:         alert.Evaluate(snap, in.Targets),
		LowStock:       alert.EvaluateInventory(in.Inventory, in.Targets),
	}

	slog.Info("monthly roll-up complete",
		"batch_id", batchID, "period", snap.PeriodKey,
		"orders", snap.OrderCount, "alerts", len(result.Alerts))

	return result, nil
}

// Preview aggregates an arbitrary window without persisting anything.
// Used for current-day and trailing-N-day views, which have no place in
// the monthly history.
func (s *Service) Preview(in RunInput, window period.Window) (metrics.Snapshot, []record.Invalid) {
	txs, invalid := record.NormalizeBatch(in.Records)

	snap := metrics.Aggregate(metrics.Input{
		Records:   txs,
		Inventory: in.Inventory,
		Purchases: in.Purchases,
		Window:    window,
		Targets:   in.Targets,
		Now:       in.Now,
	})

	return snap, invalid
}

// Trend returns the stored series ending at the month of now together
// with a trailing moving average of one metric.
func (s *Service) Trend(ctx context.Context, now time.Time, months int, metric analytics.Metric, window int) ([]history.Entry, []*float64, error) {
	entries, err := s.history.Series(ctx, period.KeyOf(now), months)
	if err != nil {
		return nil, nil, fmt.Errorf("loading snapshot series: %w", err)
	}

	return entries, analytics.MovingAverage(entries, metric, window), nil
}
