package engine_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fenrir/internal/engine"
)

func TestPartition_SubmitAndProcess(t *testing.T) {
	p := engine.NewPartition("p1", []string{"AAA", "BBB"}, 2, 16)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p.Start(ctx)
	defer p.Shutdown()

	require.NoError(t, p.Submit(&engine.Order{ID: 1, Symbol: "AAA", Side: engine.Buy, Price: 1000, Qty: 10}))
	require.NoError(t, p.Submit(&engine.Order{ID: 2, Symbol: "AAA", Side: engine.Sell, Price: 1000, Qty: 10}))

	assert.Eventually(t, func() bool {
		return p.TotalTrades() == 1
	}, time.Second, time.Millisecond)
	assert.Eventually(t, func() bool {
		return p.OrdersRead() == 2
	}, time.Second, time.Millisecond)
}

func TestPartition_UnknownSymbolRejected(t *testing.T) {
	p := engine.NewPartition("p1", []string{"AAA"}, 1, 8)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p.Start(ctx)
	defer p.Shutdown()

	err := p.Submit(&engine.Order{ID: 1, Symbol: "ZZZ", Side: engine.Buy, Price: 100, Qty: 1})
	assert.ErrorIs(t, err, engine.ErrUnknownSymbol)
}

func TestPartition_SubmitBeforeStartRejected(t *testing.T) {
	p := engine.NewPartition("p1", []string{"AAA"}, 1, 8)

	err := p.Submit(&engine.Order{ID: 1, Symbol: "AAA", Side: engine.Buy, Price: 1000, Qty: 1})
	assert.ErrorIs(t, err, engine.ErrNotStarted)
}

func TestPartition_EmptyPartitionIsIdle(t *testing.T) {
	p := engine.NewPartition("empty", nil, 0, 0)
	assert.Empty(t, p.Symbols())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p.Start(ctx)
	assert.NoError(t, p.Shutdown())
}

func TestPartition_ShutdownStopsFurtherMatching(t *testing.T) {
	p := engine.NewPartition("p1", []string{"AAA"}, 1, 8)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p.Start(ctx)

	require.NoError(t, p.Submit(&engine.Order{ID: 1, Symbol: "AAA", Side: engine.Buy, Price: 1000, Qty: 10}))
	assert.Eventually(t, func() bool { return p.OrdersRead() == 1 }, time.Second, time.Millisecond)

	require.NoError(t, p.Shutdown())

	// Resting liquidity from before shutdown is still inspectable.
	book, ok := p.Book("AAA")
	require.True(t, ok)
	snap := book.SnapshotResting()
	assert.Len(t, snap.Bids, 1)

	err := p.Submit(&engine.Order{ID: 2, Symbol: "AAA", Side: engine.Sell, Price: 1000, Qty: 10})
	assert.ErrorIs(t, err, engine.ErrShuttingDown)
}
