package counts

import (
	"context"
	"fmt"
	"sort"

	"gorm.io/gorm"

	"github.com/hearth-collective/hearth/app/models"
)

// Delta is a sparse map of signed increments keyed by counter name. Zero
// deltas are never sent.
type Delta map[string]int64

// Aggregator applies signed increments to persisted counters. Increments are
// commutative per counter; application across counters in one call is
// best-effort with no cross-counter atomicity.
type Aggregator interface {
	Apply(ctx context.Context, delta Delta) error
	Get(ctx context.Context, name string) (int64, error)
}

// AggregationError wraps a storage failure while applying a counter delta.
type AggregationError struct {
	Counter string
	Err     error
}

func (e *AggregationError) Error() string {
	return fmt.Sprintf("counts: apply %q: %v", e.Counter, e.Err)
}

func (e *AggregationError) Unwrap() error { return e.Err }

type gormAggregator struct {
	db *gorm.DB
}

// NewAggregator creates a counter store backed by the counters table. Each
// increment is a single atomic read-modify-write on its row, created at zero
// when absent.
func NewAggregator(db *gorm.DB) Aggregator {
	return &gormAggregator{db: db}
}

func (a *gormAggregator) Apply(ctx context.Context, delta Delta) error {
	names := make([]string, 0, len(delta))
	for name, d := range delta {
		if d == 0 {
			continue
		}
		names = append(names, name)
	}
	// Stable order keeps concurrent multi-counter applies from deadlocking
	// on row locks.
	sort.Strings(names)

	for _, name := range names {
		err := a.db.WithContext(ctx).Exec(
			"INSERT INTO counters (name, value) VALUES (?, ?) ON DUPLICATE KEY UPDATE value = value + ?",
			name, delta[name], delta[name],
		).Error
		if err != nil {
			return &AggregationError{Counter: name, Err: err}
		}
	}
	return nil
}

func (a *gormAggregator) Get(ctx context.Context, name string) (int64, error) {
	var counter models.Counter
	err := a.db.WithContext(ctx).Where("name = ?", name).First(&counter).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return 0, nil
		}
		return 0, err
	}
	return counter.Value, nil
}

// Reset drops every counter row. Used by the rebuild command before a replay.
func Reset(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).Exec("DELETE FROM counters").Error
}
