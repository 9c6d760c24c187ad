package indexer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hearth-collective/hearth/app/models"
	"github.com/hearth-collective/hearth/internal/pkg/counts"
)

type memoryEntryStore struct {
	entries map[string]Entry
	putErr  error
}

func newMemoryEntryStore() *memoryEntryStore {
	return &memoryEntryStore{entries: make(map[string]Entry)}
}

func (s *memoryEntryStore) Put(ctx context.Context, userID string, entry Entry) error {
	if s.putErr != nil {
		return s.putErr
	}
	s.entries[userID] = entry
	return nil
}

func (s *memoryEntryStore) Get(ctx context.Context, userID string) (Entry, error) {
	return s.entries[userID], nil
}

func (s *memoryEntryStore) FindUserIDs(ctx context.Context, field, value string) ([]string, error) {
	var ids []string
	for id, entry := range s.entries {
		if entry[field] == value {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func TestIndexerApply(t *testing.T) {
	store := newMemoryEntryStore()
	agg := counts.NewMemoryAggregator()
	ix := New(testCollectives, store, agg)

	rec := newTestRecord()
	rec.Join("gardening").GrantPrivilege(models.PrivilegeMember)

	require.NoError(t, ix.Apply(context.Background(), rec, nil))

	entry, err := ix.Entry(context.Background(), rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "true", entry["member.gardening"])

	assert.Equal(t, map[string]int64{
		"user":             1,
		"member":           1,
		"user.gardening":   1,
		"member.gardening": 1,
	}, agg.Snapshot())

	ids, err := ix.FindUserIDs(context.Background(), "member.gardening", "true")
	require.NoError(t, err)
	assert.Equal(t, []string{rec.ID}, ids)
}

func TestIndexerSkipsNonUserRecords(t *testing.T) {
	store := newMemoryEntryStore()
	agg := counts.NewMemoryAggregator()
	ix := New(testCollectives, store, agg)

	rec := newTestRecord()
	rec.Type = "banner"

	require.NoError(t, ix.Apply(context.Background(), rec, nil))
	assert.Empty(t, store.entries)
	assert.Empty(t, agg.Snapshot())
}

func TestIndexerCountFailureAbortsIndexCommit(t *testing.T) {
	store := newMemoryEntryStore()
	agg := counts.NewMemoryAggregator()
	agg.FailWith = errors.New("db down")
	ix := New(testCollectives, store, agg)

	rec := newTestRecord()
	err := ix.Apply(context.Background(), rec, nil)

	require.Error(t, err)
	assert.Empty(t, store.entries, "the index entry must not land without its counters")
}

func TestIndexerNoDeltaStillUpdatesEntry(t *testing.T) {
	store := newMemoryEntryStore()
	agg := counts.NewMemoryAggregator()
	ix := New(testCollectives, store, agg)

	prev := newTestRecord()
	curr := *prev
	curr.Name = "renamed"

	require.NoError(t, ix.Apply(context.Background(), prev, nil))
	require.NoError(t, ix.Apply(context.Background(), &curr, prev))

	entry, _ := ix.Entry(context.Background(), prev.ID)
	assert.Equal(t, "renamed", entry["user.name"])
	assert.Equal(t, map[string]int64{"user": 1}, agg.Snapshot(), "a rename moves no counters")
}
