package history

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mfreitas/lucre/internal/metrics"
	"github.com/mfreitas/lucre/internal/period"
)

// ErrNotFound is returned when no snapshot has been stored for a period.
var ErrNotFound = errors.New("period snapshot not found")

// PersistenceError wraps a storage failure so callers can tell it apart
// from missing data. The store never retries; that belongs to the
// caller. A failed upsert leaves the previously stored row unchanged.
type PersistenceError struct {
	Op  string
	Key period.Key
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("history %s %s: %v", e.Op, e.Key, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Stored is a persisted monthly snapshot. CreatedAt is set on first
// insert and never touched by later upserts of the same period.
type Stored struct {
	metrics.Snapshot

	CreatedAt time.Time
}

// Entry is one position in a requested month series. HasData
// distinguishes "no row stored for this month" from a stored row whose
// metrics happen to all be zero.
type Entry struct {
	Key      period.Key
	HasData  bool
	Snapshot *Stored
}

//go:generate mockgen -source=history.go -destination=repository_mock.go -package=history
type Repository interface {
	Upsert(ctx context.Context, snap metrics.Snapshot) error
	Get(ctx context.Context, key period.Key) (*Stored, error)
	GetRange(ctx context.Context, keys []period.Key) ([]*Stored, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Save upserts the snapshot under its period key. Re-saving the same
// key overwrites every field except the row's creation timestamp.
func (s *Service) Save(ctx context.Context, snap metrics.Snapshot) error {
	return s.repo.Upsert(ctx, snap)
}

func (s *Service) Get(ctx context.Context, key period.Key) (*Stored, error) {
	return s.repo.Get(ctx, key)
}

// Series returns one entry per month for the count consecutive months
// ending at anchor, oldest first. Months with no stored snapshot come
// back as explicit HasData=false placeholders.
func (s *Service) Series(ctx context.Context, anchor period.Key, count int) ([]Entry, error) {
	keys := period.Range(anchor, count)

	stored, err := s.repo.GetRange(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("fetching snapshot range: %w", err)
	}

	byKey := make(map[period.Key]*Stored, len(stored))
	for _, snap := range stored {
		byKey[snap.PeriodKey] = snap
	}

	entries := make([]Entry, len(keys))

	for i, key := range keys {
		if snap, ok := byKey[key]; ok {
			entries[i] = Entry{Key: key, HasData: true, Snapshot: snap}
			continue
		}

		entries[i] = Entry{Key: key}
	}

	return entries, nil
}
