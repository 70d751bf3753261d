package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mfreitas/lucre/internal/history"
	"github.com/mfreitas/lucre/internal/metrics"
	"github.com/mfreitas/lucre/internal/period"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

const selectSnapshotColumns = `
	period_key, revenue, gross_profit, profit_margin_pct, roi_pct,
	units_sold, order_count, distinct_products, average_order_value,
	inventory_value, inventory_turnover, turnover_days,
	stagnant_inventory_rate, profit_goal_achievement_pct,
	computed_at, created_at
`

func scanSnapshot(s scanner) (*history.Stored, error) {
	var (
		snap history.Stored
		key  string
	)

	if err := s.Scan(
		&key, &snap.Revenue, &snap.GrossProfit, &snap.ProfitMarginPct, &snap.RoiPct,
		&snap.UnitsSold, &snap.OrderCount, &snap.DistinctProducts, &snap.AverageOrderValue,
		&snap.InventoryValue, &snap.InventoryTurnover, &snap.TurnoverDays,
		&snap.StagnantInventoryRate, &snap.ProfitGoalAchievementPct,
		&snap.ComputedAt, &snap.CreatedAt,
	); err != nil {
		return nil, err
	}

	snap.PeriodKey = period.Key(key)

	return &snap, nil
}

// Upsert writes the snapshot for its period in a single statement:
// a new month inserts with created_at = now(), an existing month
// overwrites every field except created_at. Single-statement writes
// mean a failure leaves the previous row intact.
func (s *Store) Upsert(ctx context.Context, snap metrics.Snapshot) error {
	query := `
		INSERT INTO period_snapshots (
			period_key, revenue, gross_profit, profit_margin_pct, roi_pct,
			units_sold, order_count, distinct_products, average_order_value,
			inventory_value, inventory_turnover, turnover_days,
			stagnant_inventory_rate, profit_goal_achievement_pct,
			computed_at, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, NOW())
		ON CONFLICT (period_key) DO UPDATE SET
			revenue = EXCLUDED.revenue,
			gross_profit = EXCLUDED.gross_profit,
			profit_margin_pct = EXCLUDED.profit_margin_pct,
			roi_pct = EXCLUDED.roi_pct,
			units_sold = EXCLUDED.units_sold,
			order_count = EXCLUDED.order_count,
			distinct_products = EXCLUDED.distinct_products,
			average_order_value = EXCLUDED.average_order_value,
			inventory_value = EXCLUDED.inventory_value,
			inventory_turnover = EXCLUDED.inventory_turnover,
			turnover_days = EXCLUDED.turnover_days,
			stagnant_inventory_rate = EXCLUDED.stagnant_inventory_rate,
			profit_goal_achievement_pct = EXCLUDED.profit_goal_achievement_pct,
			computed_at = EXCLUDED.computed_at
	`

	_, err := s.db.ExecContext(ctx, query,
		snap.PeriodKey.String(),
		snap.Revenue,
		snap.GrossProfit,
		snap.ProfitMarginPct,
		snap.RoiPct,
		snap.UnitsSold,
		snap.OrderCount,
		snap.DistinctProducts,
		snap.AverageOrderValue,
		snap.InventoryValue,
		snap.InventoryTurnover,
		snap.TurnoverDays,
		snap.StagnantInventoryRate,
		snap.ProfitGoalAchievementPct,
		snap.ComputedAt,
	)
	if err != nil {
		return &history.PersistenceError{Op: "upsert", Key: snap.PeriodKey, Err: err}
	}

	return nil
}

func (s *Store) Get(ctx context.Context, key period.Key) (*history.Stored, error) {
	query := `SELECT ` + selectSnapshotColumns + ` FROM period_snapshots WHERE period_key = $1`

	snap, err := scanSnapshot(s.db.QueryRowContext(ctx, query, key.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, history.ErrNotFound
		}

		return nil, &history.PersistenceError{Op: "get", Key: key, Err: err}
	}

	return snap, nil
}

func (s *Store) GetRange(ctx context.Context, keys []period.Key) ([]*history.Stored, error) {
	if len(keys) == 0 {
		return nil, nil
	}

	raw := make([]string, len(keys))
	for i, k := range keys {
		raw[i] = k.String()
	}

	query := `SELECT ` + selectSnapshotColumns + `
		FROM period_snapshots
		WHERE period_key = ANY($1)
		ORDER BY period_key`

	rows, err := s.db.QueryContext(ctx, query, raw)
	if err != nil {
		return nil, fmt.Errorf("querying snapshot range: %w", err)
	}
	defer rows.Close()

	var snaps []*history.Stored

	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning snapshot row: %w", err)
		}

		snaps = append(snaps, snap)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating snapshot rows: %w", err)
	}

	return snaps, nil
}
