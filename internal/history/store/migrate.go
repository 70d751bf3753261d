package store

import (
	"context"
	"database/sql"
	"fmt"
)

// EnsureSchema creates the snapshot table if it does not exist. The
// table is the store's only persisted state: one row per calendar
// month, keyed by period, with created_at fixed at first insert.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	query := `
		CREATE TABLE IF NOT EXISTS period_snapshots (
			period_key                  text PRIMARY KEY,
			revenue                     numeric NOT NULL,
			gross_profit                numeric NOT NULL,
			profit_margin_pct           double precision NOT NULL,
			roi_pct                     double precision NOT NULL,
			units_sold                  bigint NOT NULL,
			order_count                 integer NOT NULL,
			distinct_products           integer NOT NULL,
			average_order_value         numeric NOT NULL,
			inventory_value             numeric NOT NULL,
			inventory_turnover          double precision NOT NULL,
			turnover_days               double precision NOT NULL,
			stagnant_inventory_rate     double precision NOT NULL,
			profit_goal_achievement_pct double precision NOT NULL,
			computed_at                 timestamptz NOT NULL,
			created_at                  timestamptz NOT NULL DEFAULT NOW()
		)
	`

	if _, err := db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("creating period_snapshots table: %w", err)
	}

	return nil
}
