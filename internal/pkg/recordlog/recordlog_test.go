package recordlog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/hearth-collective/hearth/app/models"
)

// newTestDB opens an isolated in-memory database per test so log tests run
// without a MySQL server.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.UserRevision{}))
	return db
}

type feedCall struct {
	curr *models.UserRecord
	prev *models.UserRecord
}

func TestStorePutFeedsAppliersWithPrevious(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	var calls []feedCall
	store := NewStore(db, func(_ context.Context, curr, prev *models.UserRecord) error {
		calls = append(calls, feedCall{curr: curr, prev: prev})
		return nil
	})

	rec := models.NewUserRecord("mara", "mara@example.com")
	rec.Bio = "first"
	require.NoError(t, store.Put(ctx, rec))

	rec.Bio = "second"
	rec.Touch()
	require.NoError(t, store.Put(ctx, rec))

	require.Len(t, calls, 2)
	assert.Nil(t, calls[0].prev)
	assert.Equal(t, "first", calls[0].curr.Bio)
	require.NotNil(t, calls[1].prev)
	assert.Equal(t, "first", calls[1].prev.Bio)
	assert.Equal(t, "second", calls[1].curr.Bio)

	got, err := store.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "second", got.Bio)
}

func TestStorePutSequencesRevisions(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	store := NewStore(db)

	rec := models.NewUserRecord("mara", "mara@example.com")
	for i := 0; i < 3; i++ {
		rec.Touch()
		require.NoError(t, store.Put(ctx, rec))
	}

	var revs []models.UserRevision
	require.NoError(t, db.Order("seq ASC").Find(&revs).Error)
	require.Len(t, revs, 3)
	for i, rev := range revs {
		assert.Equal(t, uint(i+1), rev.Seq)
		assert.Equal(t, uint(i), rev.PrevSeq)
	}
}

// The append is the durability commit point: an applier failure surfaces to
// the caller, but the appended revision stays and the rebuild command brings
// the derived stores back in line.
func TestStorePutKeepsRevisionOnApplierError(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	errBroken := errors.New("counter store down")
	store := NewStore(db, func(_ context.Context, _, _ *models.UserRecord) error {
		return errBroken
	})

	rec := models.NewUserRecord("mara", "mara@example.com")
	rec.Bio = "kept"
	err := store.Put(ctx, rec)
	require.ErrorIs(t, err, errBroken)

	var count int64
	require.NoError(t, db.Model(&models.UserRevision{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	got, err := store.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "kept", got.Bio)
}

func TestStoreReplayPairsPerUser(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	store := NewStore(db)

	alice := models.NewUserRecord("alice", "alice@example.com")
	bob := models.NewUserRecord("bob", "bob@example.com")

	// interleaved appends: a1, b1, a2, b2
	alice.Bio = "a1"
	require.NoError(t, store.Put(ctx, alice))
	bob.Bio = "b1"
	require.NoError(t, store.Put(ctx, bob))
	alice.Bio = "a2"
	require.NoError(t, store.Put(ctx, alice))
	bob.Bio = "b2"
	require.NoError(t, store.Put(ctx, bob))

	var calls []feedCall
	err := store.Replay(ctx, func(_ context.Context, curr, prev *models.UserRecord) error {
		calls = append(calls, feedCall{curr: curr, prev: prev})
		return nil
	})
	require.NoError(t, err)
	require.Len(t, calls, 4)

	// append order, previous tracked per user
	assert.Equal(t, "a1", calls[0].curr.Bio)
	assert.Nil(t, calls[0].prev)
	assert.Equal(t, "b1", calls[1].curr.Bio)
	assert.Nil(t, calls[1].prev)
	assert.Equal(t, "a2", calls[2].curr.Bio)
	require.NotNil(t, calls[2].prev)
	assert.Equal(t, "a1", calls[2].prev.Bio)
	assert.Equal(t, "b2", calls[3].curr.Bio)
	require.NotNil(t, calls[3].prev)
	assert.Equal(t, "b1", calls[3].prev.Bio)
}

func TestStoreReplayStopsOnConsumerError(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	store := NewStore(db)

	rec := models.NewUserRecord("mara", "mara@example.com")
	require.NoError(t, store.Put(ctx, rec))
	rec.Touch()
	require.NoError(t, store.Put(ctx, rec))

	errStop := errors.New("stop")
	calls := 0
	err := store.Replay(ctx, func(_ context.Context, _, _ *models.UserRecord) error {
		calls++
		return errStop
	})
	require.ErrorIs(t, err, errStop)
	assert.Equal(t, 1, calls)
}

func TestStoreGetUnknown(t *testing.T) {
	db := newTestDB(t)
	store := NewStore(db)

	_, err := store.Get(context.Background(), "no-such-id")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStorePutRequiresID(t *testing.T) {
	db := newTestDB(t)
	store := NewStore(db)

	err := store.Put(context.Background(), &models.UserRecord{})
	require.Error(t, err)

	var serr *StorageError
	assert.ErrorAs(t, err, &serr)
}
