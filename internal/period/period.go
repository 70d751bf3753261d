package period

import (
	"fmt"
	"time"
)

// Key identifies one calendar month, formatted "YYYY-MM".
// It is the primary key of the snapshot history.
type Key string

const keyLayout = "2006-01"

// KeyOf returns the key for the month containing t.
func KeyOf(t time.Time) Key {
	return Key(t.Format(keyLayout))
}

// Parse validates a "YYYY-MM" string and returns it as a Key.
func Parse(s string) (Key, error) {
	if _, err := time.Parse(keyLayout, s); err != nil {
		return "", fmt.Errorf("parsing period key %q: %w", s, err)
	}

	return Key(s), nil
}

func (k Key) String() string {
	return string(k)
}

// Time returns midnight UTC on the first day of the month.
// Invalid keys return the zero time; keys produced by KeyOf or Parse are always valid.
func (k Key) Time() time.Time {
	t, err := time.Parse(keyLayout, string(k))
	if err != nil {
		return time.Time{}
	}

	return t
}

// AddMonths returns the key n months after k (n may be negative).
// Rolls over year boundaries.
func (k Key) AddMonths(n int) Key {
	return KeyOf(k.Time().AddDate(0, n, 0))
}

// Prev returns the immediately preceding month.
func (k Key) Prev() Key {
	return k.AddMonths(-1)
}

// SameMonthPriorYear returns the same calendar month one year earlier.
func (k Key) SameMonthPriorYear() Key {
	return k.AddMonths(-12)
}

// Range returns count consecutive month keys ending at anchor, oldest first.
func Range(anchor Key, count int) []Key {
	if count <= 0 {
		return nil
	}

	keys := make([]Key, count)
	for i := 0; i < count; i++ {
		keys[i] = anchor.AddMonths(i - count + 1)
	}

	return keys
}

// Window is an inclusive time range used to scope aggregation.
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls within the window, bounds included.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// Days returns the window length in whole days, minimum 1.
func (w Window) Days() int {
	d := int(w.End.Sub(w.Start).Hours()/24) + 1
	if d < 1 {
		return 1
	}

	return d
}

// Window returns the full month covered by k, from midnight on the first
// day through the last second of the last day, in UTC.
func (k Key) Window() Window {
	start := k.Time()
	end := start.AddDate(0, 1, 0).Add(-time.Second)

	return Window{Start: start, End: end}
}

// MonthOf returns the month window containing t, in t's location.
func MonthOf(t time.Time) Window {
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	end := start.AddDate(0, 1, 0).Add(-time.Second)

	return Window{Start: start, End: end}
}

// DayOf returns the calendar-day window containing t, in t's location.
func DayOf(t time.Time) Window {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	end := start.AddDate(0, 0, 1).Add(-time.Second)

	return Window{Start: start, End: end}
}

// TrailingDays returns the window covering the n calendar days ending at t's day.
func TrailingDays(t time.Time, n int) Window {
	day := DayOf(t)

	return Window{Start: day.Start.AddDate(0, 0, -(n - 1)), End: day.End}
}

// TrailingMonths returns the window covering the n calendar months ending
// at the month containing t.
func TrailingMonths(t time.Time, n int) Window {
	month := MonthOf(t)

	return Window{Start: month.Start.AddDate(0, -(n - 1), 0), End: month.End}
}
