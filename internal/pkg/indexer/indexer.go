package indexer

import (
	"context"

	"github.com/hearth-collective/hearth/app/models"
	"github.com/hearth-collective/hearth/internal/pkg/counts"
)

// Indexer projects record mutations into the derived index and hands counter
// deltas to the aggregator. The counter update must succeed before the index
// entry commits: an index entry implying a membership change never lands
// without its counters.
type Indexer struct {
	collectives []string
	entries     EntryStore
	counts      counts.Aggregator
}

func New(collectives []string, entries EntryStore, aggregator counts.Aggregator) *Indexer {
	return &Indexer{
		collectives: collectives,
		entries:     entries,
		counts:      aggregator,
	}
}

// Apply projects one (current, previous) record pair. Records whose type is
// not "user" pass through untouched. An aggregator failure aborts the index
// commit and propagates to the caller.
func (ix *Indexer) Apply(ctx context.Context, curr, prev *models.UserRecord) error {
	if curr == nil || curr.Type != models.RecordTypeUser {
		return nil
	}

	entry, delta := Project(ix.collectives, curr, prev)
	if len(delta) > 0 {
		if err := ix.counts.Apply(ctx, delta); err != nil {
			return err
		}
	}
	return ix.entries.Put(ctx, curr.ID, entry)
}

// FindUserIDs exposes index lookups (e.g. every user with member.<c> true).
func (ix *Indexer) FindUserIDs(ctx context.Context, field, value string) ([]string, error) {
	return ix.entries.FindUserIDs(ctx, field, value)
}

// Entry returns the flattened view for one user.
func (ix *Indexer) Entry(ctx context.Context, userID string) (Entry, error) {
	return ix.entries.Get(ctx, userID)
}
