package report_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/mfreitas/lucre/internal/history"
	"github.com/mfreitas/lucre/internal/metrics"
	"github.com/mfreitas/lucre/internal/period"
	"github.com/mfreitas/lucre/internal/record"
	"github.com/mfreitas/lucre/internal/report"
)

var january15 = time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)

func raw(orderID, total, unitPrice, qty string) record.Raw {
	return record.Raw{
		OrderID:     orderID,
		OccurredAt:  january15,
		ProductKey:  "B00TEST01",
		Quantity:    qty,
		UnitPrice:   unitPrice,
		TotalAmount: total,
		Status:      "shipped",
	}
}

func runInput() report.RunInput {
	return report.RunInput{
		Records: []record.Raw{
			raw("ord-1", "1000", "1000", "1"),
			raw("ord-2", "2000", "1000", "2"),
			// Zero total, rebuilt from unit price and quantity.
			raw("ord-3", "0", "500", "4"),
		},
		Targets: metrics.DefaultTargets(),
		Now:     january15,
	}
}

// noAnchors declares the expected history reads of a run against an
// empty store.
func noAnchors(m *history.MockRepository) {
	m.EXPECT().Get(gomock.Any(), period.Key("2024-12")).Return(nil, history.ErrNotFound)
	m.EXPECT().Get(gomock.Any(), period.Key("2024-01")).Return(nil, history.ErrNotFound)
}

func TestService_Run(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	var saved metrics.Snapshot

	repo := history.NewMockRepository(ctrl)
	repo.EXPECT().
		Upsert(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, snap metrics.Snapshot) error {
			saved = snap
			return nil
		})
	noAnchors(repo)

	svc := report.NewService(history.NewService(repo))

	result, err := svc.Run(context.Background(), runInput())
	require.NoError(t, err)

	assert.NotEqual(t, "00000000-0000-0000-0000-000000000000", result.BatchID.String())
	assert.Equal(t, period.Key("2025-01"), result.Snapshot.PeriodKey)
	assert.True(t, result.Snapshot.Revenue.Equal(decimal.NewFromInt(5000)),
		"rebuilt third record should bring revenue to 5000, got %s", result.Snapshot.Revenue)
	assert.Equal(t, 3, result.Snapshot.OrderCount)
	assert.Empty(t, result.Invalid)

	// The persisted snapshot is the one reported back.
	assert.Equal(t, result.Snapshot, saved)

	// Empty store: comparisons are nil, not zero deltas.
	assert.Nil(t, result.MonthOverMonth)
	assert.Nil(t, result.YearOverYear)
}

func TestService_Run_ComparesAgainstHistory(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	previous := &history.Stored{Snapshot: metrics.Snapshot{
		PeriodKey: "2024-12",
		Revenue:   decimal.NewFromInt(4000),
	}}

	repo := history.NewMockRepository(ctrl)
	repo.EXPECT().Upsert(gomock.Any(), gomock.Any()).Return(nil)
	repo.EXPECT().Get(gomock.Any(), period.Key("2024-12")).Return(previous, nil)
	repo.EXPECT().Get(gomock.Any(), period.Key("2024-01")).Return(nil, history.ErrNotFound)

	svc := report.NewService(history.NewService(repo))

	result, err := svc.Run(context.Background(), runInput())
	require.NoError(t, err)

	require.NotNil(t, result.MonthOverMonth)
	require.NotNil(t, result.MonthOverMonth.RevenueGrowthPct)
	assert.InDelta(t, 25, *result.MonthOverMonth.RevenueGrowthPct, 0.001) // 4000 -> 5000
	assert.Nil(t, result.YearOverYear)
}

func TestService_Run_ReportsInvalidRecords(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	var saved metrics.Snapshot

	repo := history.NewMockRepository(ctrl)
	repo.EXPECT().
		Upsert(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, snap metrics.Snapshot) error {
			saved = snap
			return nil
		})
	noAnchors(repo)

	in := runInput()

	bad := raw("ord-4", "100", "100", "-1")
	in.Records = append(in.Records, bad)

	svc := report.NewService(history.NewService(repo))

	result, err := svc.Run(context.Background(), in)
	require.NoError(t, err)

	// The bad record is excluded, not fatal.
	require.Len(t, result.Invalid, 1)
	assert.Equal(t, 3, result.Invalid[0].Index)
	assert.Equal(t, 3, result.Snapshot.OrderCount)
	assert.True(t, saved.Revenue.Equal(decimal.NewFromInt(5000)))
}

func TestService_Run_AllRecordsInvalid(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := history.NewMockRepository(ctrl)
	repo.EXPECT().Upsert(gomock.Any(), gomock.Any()).Return(nil)
	noAnchors(repo)

	in := runInput()
	for i := range in.Records {
		in.Records[i].OrderID = ""
	}

	svc := report.NewService(history.NewService(repo))

	result, err := svc.Run(context.Background(), in)
	require.NoError(t, err)

	// All-zero snapshot plus a full rejection list: the caller can tell
	// this apart from a genuinely idle month.
	assert.True(t, result.Snapshot.Revenue.IsZero())
	assert.Zero(t, result.Snapshot.OrderCount)
	assert.Len(t, result.Invalid, 3)
}

func TestService_Run_PersistenceFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := history.NewMockRepository(ctrl)
	repo.EXPECT().
		Upsert(gomock.Any(), gomock.Any()).
		Return(&history.PersistenceError{Op: "upsert", Key: "2025-01", Err: assert.AnError})

	svc := report.NewService(history.NewService(repo))

	result, err := svc.Run(context.Background(), runInput())

	require.Error(t, err)
	assert.Nil(t, result)

	var perr *history.PersistenceError
	assert.ErrorAs(t, err, &perr)
}

func TestService_Run_Alerts(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := history.NewMockRepository(ctrl)
	repo.EXPECT().Upsert(gomock.Any(), gomock.Any()).Return(nil)
	noAnchors(repo)

	in := runInput()
	in.Inventory = []record.InventorySnapshot{
		{UnifiedSKU: "S1", TotalValue: decimal.NewFromInt(100000), DaysInStock: 90, QuantityOnHand: 50},
		{UnifiedSKU: "S2", TotalValue: decimal.NewFromInt(100000), DaysInStock: 120, QuantityOnHand: 2},
	}

	svc := report.NewService(history.NewService(repo))

	result, err := svc.Run(context.Background(), in)
	require.NoError(t, err)

	// 100% stagnant plus default-target shortfalls.
	assert.NotEmpty(t, result.Alerts)
	require.NotEmpty(t, result.LowStock)
	assert.Contains(t, result.LowStock[0].Message, "S2")
}

func TestService_Preview(t *testing.T) {
	svc := report.NewService(history.NewService(nil))

	in := runInput()
	window := period.DayOf(january15)

	snap, invalid := svc.Preview(in, window)

	assert.Empty(t, invalid)
	assert.True(t, snap.Revenue.Equal(decimal.NewFromInt(5000)))
}
