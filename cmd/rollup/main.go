// Command rollup runs the monthly pipeline once over a batch document
// and prints the result as JSON. Meant to be invoked on a schedule by
// whatever delivers the batch file.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/mfreitas/lucre/internal/batch"
	"github.com/mfreitas/lucre/internal/config"
	"github.com/mfreitas/lucre/internal/database"
	"github.com/mfreitas/lucre/internal/alert"
	"github.com/mfreitas/lucre/internal/history"
	historyStore "github.com/mfreitas/lucre/internal/history/store"
	snapshotHandler "github.com/mfreitas/lucre/internal/http/snapshot"
	"github.com/mfreitas/lucre/internal/record"
	"github.com/mfreitas/lucre/internal/report"
)

// output mirrors the API's run response so the scheduled runner and the
// HTTP surface emit the same document shape.
type output struct {
	BatchID        string                         `json:"batch_id"`
	Snapshot       snapshotHandler.Response       `json:"snapshot"`
	Invalid        []record.Invalid               `json:"invalid_records"`
	MonthOverMonth *snapshotHandler.DeltaResponse `json:"month_over_month"`
	YearOverYear   *snapshotHandler.DeltaResponse `json:"year_over_year"`
	Alerts         []alert.Event                  `json:"alerts"`
	LowStock       []alert.Event                  `json:"low_stock"`
}

func main() {
	var (
		file = flag.String("file", "", "path to the batch document (required)")
		asOf = flag.String("as-of", "", "reference time, RFC 3339 (default: now)")
	)

	flag.Parse()

	if *file == "" {
		flag.Usage()
		os.Exit(2)
	}

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	now := time.Now().UTC()

	if *asOf != "" {
		now, err = time.Parse(time.RFC3339, *asOf)
		if err != nil {
			slog.Error("invalid as-of time", "error", err)
			os.Exit(1)
		}
	}

	f, err := os.Open(*file)
	if err != nil {
		slog.Error("failed to open batch file", "error", err)
		os.Exit(1)
	}
	defer f.Close()

	in, err := batch.Parse(f)
	if err != nil {
		slog.Error("failed to parse batch file", "error", err)
		os.Exit(1)
	}

	in.Targets = cfg.MetricsTargets()
	in.Now = now

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx := context.Background()

	if err := historyStore.EnsureSchema(ctx, db); err != nil {
		slog.Error("failed to ensure schema", "error", err)
		os.Exit(1)
	}

	svc := report.NewService(history.NewService(historyStore.New(db)))

	result, err := svc.Run(ctx, in)
	if err != nil {
		slog.Error("roll-up failed", "error", err)
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")

	out := output{
		BatchID:        result.BatchID.String(),
		Snapshot:       snapshotHandler.ToResponse(result.Snapshot),
		Invalid:        result.Invalid,
		MonthOverMonth: snapshotHandler.ToDeltaResponse(result.MonthOverMonth),
		YearOverYear:   snapshotHandler.ToDeltaResponse(result.YearOverYear),
		Alerts:         result.Alerts,
		LowStock:       result.LowStock,
	}

	if err := enc.Encode(out); err != nil {
		slog.Error("failed to encode result", "error", err)
		os.Exit(1)
	}
}
