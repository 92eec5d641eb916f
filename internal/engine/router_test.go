package engine_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fenrir/internal/engine"
)

func TestRouter_DuplicateSymbolFailsFast(t *testing.T) {
	p1 := engine.NewPartition("p1", []string{"AAA"}, 1, 8)
	p2 := engine.NewPartition("p2", []string{"AAA", "BBB"}, 1, 8)

	_, err := engine.NewRouter([]*engine.Partition{p1, p2})
	assert.ErrorIs(t, err, engine.ErrDuplicateSymbol)
}

func TestRouter_UnknownSymbolReported(t *testing.T) {
	p1 := engine.NewPartition("p1", []string{"AAA"}, 1, 8)
	r, err := engine.NewRouter([]*engine.Partition{p1})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	r.Start(ctx)
	defer r.Shutdown()

	err = r.Route(&engine.Order{ID: 1, Symbol: "ZZZ", Side: engine.Buy, Price: 100, Qty: 1})
	assert.ErrorIs(t, err, engine.ErrUnknownSymbol)
}

func TestRouter_CrossPartitionIsolation(t *testing.T) {
	p1 := engine.NewPartition("p1", []string{"AAA"}, 2, 8)
	p2 := engine.NewPartition("p2", []string{"BBB"}, 2, 8)
	r, err := engine.NewRouter([]*engine.Partition{p1, p2})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	r.Start(ctx)
	defer r.Shutdown()

	eng := engine.New(r)
	_, err = eng.Route("AAA", engine.Buy, 1000, 10)
	require.NoError(t, err)
	_, err = eng.Route("AAA", engine.Sell, 1000, 10)
	require.NoError(t, err)
	_, err = eng.Route("BBB", engine.Buy, 2000, 5)
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		return p1.TotalTrades() == 1 && p2.OrdersRead() == 1 && p2.TotalTrades() == 0
	}, time.Second, time.Millisecond)

	bbbBook, ok := p2.Book("BBB")
	require.True(t, ok)
	snap := bbbBook.SnapshotResting()
	assert.Len(t, snap.Bids, 1)

	aaaBookOwner, ok := p1.Book("AAA")
	require.True(t, ok)
	assert.Empty(t, aaaBookOwner.SnapshotResting().Bids)
	assert.Empty(t, aaaBookOwner.SnapshotResting().Asks)
}
