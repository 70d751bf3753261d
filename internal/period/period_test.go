package period_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfreitas/lucre/internal/period"
)

func TestKeyOf(t *testing.T) {
	k := period.KeyOf(time.Date(2025, 8, 14, 23, 59, 0, 0, time.UTC))
	assert.Equal(t, period.Key("2025-08"), k)
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    period.Key
		wantErr bool
	}{
		{name: "Valid", input: "2025-01", want: "2025-01"},
		{name: "MissingMonth", input: "2025", wantErr: true},
		{name: "FullDate", input: "2025-01-02", wantErr: true},
		{name: "Garbage", input: "august", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := period.Parse(tt.input)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestKey_AddMonths(t *testing.T) {
	tests := []struct {
		name string
		key  period.Key
		n    int
		want period.Key
	}{
		{name: "WithinYear", key: "2025-03", n: 2, want: "2025-05"},
		{name: "ForwardRollover", key: "2025-11", n: 3, want: "2026-02"},
		{name: "BackwardRollover", key: "2025-01", n: -1, want: "2024-12"},
		{name: "PriorYear", key: "2025-08", n: -12, want: "2024-08"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.key.AddMonths(tt.n))
		})
	}
}

func TestRange(t *testing.T) {
	got := period.Range("2025-02", 4)

	assert.Equal(t, []period.Key{"2024-11", "2024-12", "2025-01", "2025-02"}, got)
}

func TestRange_Empty(t *testing.T) {
	assert.Nil(t, period.Range("2025-02", 0))
}

func TestKey_Window(t *testing.T) {
	w := period.Key("2025-02").Window()

	assert.Equal(t, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), w.Start)
	assert.Equal(t, time.Date(2025, 2, 28, 23, 59, 59, 0, time.UTC), w.End)
	assert.Equal(t, 28, w.Days())
}

func TestWindow_Contains(t *testing.T) {
	w := period.Key("2025-08").Window()

	assert.True(t, w.Contains(w.Start))
	assert.True(t, w.Contains(w.End))
	assert.False(t, w.Contains(w.End.Add(time.Second)))
	assert.False(t, w.Contains(w.Start.Add(-time.Second)))
}

func TestTrailingDays(t *testing.T) {
	now := time.Date(2025, 8, 14, 15, 30, 0, 0, time.UTC)
	w := period.TrailingDays(now, 30)

	assert.Equal(t, time.Date(2025, 7, 16, 0, 0, 0, 0, time.UTC), w.Start)
	assert.Equal(t, time.Date(2025, 8, 14, 23, 59, 59, 0, time.UTC), w.End)
	assert.Equal(t, 30, w.Days())
}

func TestTrailingMonths(t *testing.T) {
	now := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	w := period.TrailingMonths(now, 3)

	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), w.Start)
	assert.Equal(t, time.Date(2025, 3, 31, 23, 59, 59, 0, time.UTC), w.End)
}
