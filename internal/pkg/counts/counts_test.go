package counts

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryAggregatorApply(t *testing.T) {
	agg := NewMemoryAggregator()
	ctx := context.Background()

	require.NoError(t, agg.Apply(ctx, Delta{"user": 1, "user.gardening": 1}))
	require.NoError(t, agg.Apply(ctx, Delta{"user": 1, "member": 1}))

	v, err := agg.Get(ctx, "user")
	require.NoError(t, err)
	assert.Equal(t, int64(2), v)

	v, err = agg.Get(ctx, "member")
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)
}

func TestMemoryAggregatorUnknownCounterIsZero(t *testing.T) {
	agg := NewMemoryAggregator()

	v, err := agg.Get(context.Background(), "never-seen")
	require.NoError(t, err)
	assert.Equal(t, int64(0), v)
}

func TestMemoryAggregatorNegativeDeltas(t *testing.T) {
	agg := NewMemoryAggregator()
	ctx := context.Background()

	require.NoError(t, agg.Apply(ctx, Delta{"member.gardening": 1}))
	require.NoError(t, agg.Apply(ctx, Delta{"member.gardening": -1}))

	v, err := agg.Get(ctx, "member.gardening")
	require.NoError(t, err)
	assert.Equal(t, int64(0), v)

	// A lone decrement drives the counter negative; the aggregator does not
	// guard against it, the projector's delta discipline does.
	require.NoError(t, agg.Apply(ctx, Delta{"member.gardening": -1}))
	v, _ = agg.Get(ctx, "member.gardening")
	assert.Equal(t, int64(-1), v)
}

func TestMemoryAggregatorFailure(t *testing.T) {
	agg := NewMemoryAggregator()
	boom := errors.New("boom")
	agg.FailWith = boom

	err := agg.Apply(context.Background(), Delta{"user": 1})
	var ae *AggregationError
	require.ErrorAs(t, err, &ae)
	assert.ErrorIs(t, err, boom)

	assert.Empty(t, agg.Snapshot(), "a failed apply must not change any counter")
}

func TestMemoryAggregatorSkipsZeroDeltas(t *testing.T) {
	agg := NewMemoryAggregator()

	require.NoError(t, agg.Apply(context.Background(), Delta{"user": 0}))
	assert.Empty(t, agg.Snapshot())
}
