package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fenrir/internal/engine"
	"fenrir/internal/testsupport"
)

func TestProcess_EmptyBookResting(t *testing.T) {
	book := engine.NewBook("AAA")
	var id uint64
	testsupport.PlaceAll(book, &id, engine.Buy, 2000, 10) // 100.00 = 2000 ticks

	assert.Equal(t, int64(0), book.TotalTrades())

	snap := book.SnapshotResting()
	require.Len(t, snap.Bids, 1)
	assert.Equal(t, engine.Price(2000), snap.Bids[0].Price)
	require.Len(t, snap.Bids[0].Orders, 1)
	assert.EqualValues(t, 10, snap.Bids[0].Orders[0].Qty)
	assert.Empty(t, snap.Asks)
}

func TestProcess_ExactCross(t *testing.T) {
	book := engine.NewBook("AAA")
	var id uint64
	testsupport.PlaceAll(book, &id, engine.Buy, 2000, 10)
	testsupport.PlaceAll(book, &id, engine.Sell, 2000, 10)

	assert.Equal(t, int64(1), book.TotalTrades())
	snap := book.SnapshotResting()
	assert.Empty(t, snap.Bids)
	assert.Empty(t, snap.Asks)
}

func TestProcess_PartialFillResidualRests(t *testing.T) {
	book := engine.NewBook("AAA")
	var id uint64
	testsupport.PlaceAll(book, &id, engine.Sell, 1000, 5) // 50.00
	testsupport.PlaceAll(book, &id, engine.Buy, 1000, 12)

	assert.Equal(t, int64(1), book.TotalTrades())
	snap := book.SnapshotResting()
	assert.Empty(t, snap.Asks)
	require.Len(t, snap.Bids, 1)
	assert.EqualValues(t, 7, snap.Bids[0].Orders[0].Qty)
}

func TestProcess_WalkTheBook(t *testing.T) {
	book := engine.NewBook("AAA")
	var id uint64
	testsupport.PlaceAll(book, &id, engine.Sell, 200, 3)  // 10.00
	testsupport.PlaceAll(book, &id, engine.Sell, 201, 3)  // 10.05
	testsupport.PlaceAll(book, &id, engine.Sell, 202, 3)  // 10.10
	testsupport.PlaceAll(book, &id, engine.Buy, 201, 5)   // crosses 10.00 then 10.05

	assert.Equal(t, int64(2), book.TotalTrades())
	snap := book.SnapshotResting()
	assert.Empty(t, snap.Bids)
	require.Len(t, snap.Asks, 2)
	assert.Equal(t, engine.Price(201), snap.Asks[0].Price)
	assert.EqualValues(t, 1, snap.Asks[0].Orders[0].Qty)
	assert.Equal(t, engine.Price(202), snap.Asks[1].Price)
	assert.EqualValues(t, 3, snap.Asks[1].Orders[0].Qty)
}

func TestProcess_NoCrossAtUnfavorablePrice(t *testing.T) {
	book := engine.NewBook("AAA")
	var id uint64
	testsupport.PlaceAll(book, &id, engine.Sell, 400, 4) // 20.00
	testsupport.PlaceAll(book, &id, engine.Buy, 399, 4)  // 19.95

	assert.Equal(t, int64(0), book.TotalTrades())
	snap := book.SnapshotResting()
	require.Len(t, snap.Asks, 1)
	require.Len(t, snap.Bids, 1)
	assert.Equal(t, engine.Price(400), snap.Asks[0].Price)
	assert.Equal(t, engine.Price(399), snap.Bids[0].Price)
}

func TestProcess_ZeroQuantityIsNoOp(t *testing.T) {
	book := engine.NewBook("AAA")
	book.Process(testsupport.NewOrder(1, "AAA", engine.Buy, 2000, 0))

	assert.Equal(t, int64(0), book.TotalTrades())
	snap := book.SnapshotResting()
	assert.Empty(t, snap.Bids)
	assert.Empty(t, snap.Asks)
}

func TestProcess_NegativePriceOrQuantityDoesNotPanic(t *testing.T) {
	book := engine.NewBook("AAA")
	assert.NotPanics(t, func() {
		book.Process(testsupport.NewOrder(1, "AAA", engine.Buy, -5, 10))
		book.Process(testsupport.NewOrder(2, "AAA", engine.Sell, 100, -3))
	})
	assert.Equal(t, int64(0), book.TotalTrades())
}

func TestProcess_FIFOWithinLevel(t *testing.T) {
	book := engine.NewBook("AAA")
	book.Process(testsupport.NewOrder(1, "AAA", engine.Buy, 1000, 10))
	book.Process(testsupport.NewOrder(2, "AAA", engine.Buy, 1000, 10))

	// An aggressive sell for 5 should consume order 1 first, leaving it
	// partially filled and order 2 untouched.
	book.Process(testsupport.NewOrder(3, "AAA", engine.Sell, 1000, 5))

	snap := book.SnapshotResting()
	require.Len(t, snap.Bids, 1)
	require.Len(t, snap.Bids[0].Orders, 2)
	assert.EqualValues(t, 1, snap.Bids[0].Orders[0].ID)
	assert.EqualValues(t, 5, snap.Bids[0].Orders[0].Qty)
	assert.EqualValues(t, 2, snap.Bids[0].Orders[1].ID)
	assert.EqualValues(t, 10, snap.Bids[0].Orders[1].Qty)
}

func TestProcess_UncrossedAfterEveryCall(t *testing.T) {
	book := engine.NewBook("AAA")
	var id uint64
	assertUncrossed := func() {
		bid, hasBid := book.BestBid()
		ask, hasAsk := book.BestAsk()
		if hasBid && hasAsk {
			assert.Less(t, int64(bid), int64(ask))
		}
	}

	testsupport.PlaceAll(book, &id, engine.Buy, 1000, 10)
	assertUncrossed()
	testsupport.PlaceAll(book, &id, engine.Sell, 1005, 10)
	assertUncrossed()
	testsupport.PlaceAll(book, &id, engine.Buy, 1002, 3)
	assertUncrossed()
}

func TestProcess_TradeCountMonotonic(t *testing.T) {
	book := engine.NewBook("AAA")
	var id uint64
	testsupport.PlaceAll(book, &id, engine.Sell, 1000, 5)

	prev := book.TotalTrades()
	testsupport.PlaceAll(book, &id, engine.Buy, 1000, 1)
	next := book.TotalTrades()
	assert.GreaterOrEqual(t, next, prev)
}

func TestProcess_OnTradeHookFires(t *testing.T) {
	book := engine.NewBook("AAA")
	var trades []engine.Trade
	book.OnTrade = func(tr engine.Trade) { trades = append(trades, tr) }

	var id uint64
	testsupport.PlaceAll(book, &id, engine.Sell, 1000, 5)
	testsupport.PlaceAll(book, &id, engine.Buy, 1000, 5)

	require.Len(t, trades, 1)
	assert.Equal(t, engine.Price(1000), trades[0].Price)
	assert.EqualValues(t, 5, trades[0].Qty)
}
