package engine

import (
	"sync/atomic"

	"github.com/tidwall/btree"
)

// PriceLevel is the FIFO of resting orders at one price on one side of one
// symbol's book. Insertion order within a level is the price-time priority
// tie-breaker.
type PriceLevel struct {
	Price  Price
	Orders []*Order
}

// head returns the level's first (oldest) resting order, or nil if empty.
func (l *PriceLevel) head() *Order {
	if len(l.Orders) == 0 {
		return nil
	}
	return l.Orders[0]
}

// popHead removes the level's first resting order.
func (l *PriceLevel) popHead() {
	l.Orders[0] = nil
	l.Orders = l.Orders[1:]
}

func (l *PriceLevel) empty() bool {
	return len(l.Orders) == 0
}

type priceLevels = btree.BTreeG[*PriceLevel]

// Book is the price-ordered, two-sided ladder for a single symbol. A Book
// is single-writer: the owning Partition guarantees at most one worker ever
// calls Process on it at a time, so Book itself holds no lock.
type Book struct {
	symbol string

	// bids is ordered descending (best/highest first); asks ascending
	// (best/lowest first).
	bids *priceLevels
	asks *priceLevels

	totalOrders int64
	totalTrades int64

	// OnTrade, if set, is invoked once per fill step so a caller can observe
	// individual fills without the book itself persisting a trade log.
	// Must not block or mutate the book.
	OnTrade func(Trade)
}

// NewBook constructs an empty book for symbol.
func NewBook(symbol string) *Book {
	bids := btree.NewBTreeG(func(a, b *PriceLevel) bool {
		return a.Price > b.Price // descending: highest bid first
	})
	asks := btree.NewBTreeG(func(a, b *PriceLevel) bool {
		return a.Price < b.Price // ascending: lowest ask first
	})
	return &Book{
		symbol: symbol,
		bids:   bids,
		asks:   asks,
	}
}

// Symbol returns the symbol this book matches.
func (b *Book) Symbol() string { return b.symbol }

// TotalOrders returns the number of Process calls observed so far. Safe to
// read concurrently with Process; may lag by one increment.
func (b *Book) TotalOrders() int64 { return atomic.LoadInt64(&b.totalOrders) }

// TotalTrades returns the number of fill steps executed so far. Safe to
// read concurrently with Process; may lag by one increment. Never
// decreases.
func (b *Book) TotalTrades() int64 { return atomic.LoadInt64(&b.totalTrades) }

// Process matches an incoming order against the opposing side and rests any
// residual on its own side. It is a no-op (no trades, no insertion) for a
// non-positive price or quantity -- malformed input is rejected silently
// rather than causing a panic.
//
// Process must only ever be called by the single worker owning this book's
// partition sub-queue; see internal/engine/partition.go.
func (b *Book) Process(o *Order) {
	atomic.AddInt64(&b.totalOrders, 1)

	if o.Qty <= 0 || o.Price <= 0 {
		return
	}

	switch o.Side {
	case Buy:
		b.match(o, b.asks, func(levelPrice Price) bool { return levelPrice <= o.Price })
	case Sell:
		b.match(o, b.bids, func(levelPrice Price) bool { return levelPrice >= o.Price })
	}

	if o.Qty > 0 {
		b.rest(o)
	}
}

// match sweeps the opposing side's levels, from best inward, while they
// cross (crossable reports whether a level at the given price still
// crosses the aggressor's limit) and the aggressor still has quantity.
func (b *Book) match(aggressor *Order, opposing *priceLevels, crossable func(Price) bool) {
	for aggressor.Qty > 0 {
		level, ok := opposing.Min()
		if !ok || !crossable(level.Price) {
			return
		}

		for aggressor.Qty > 0 && !level.empty() {
			resting := level.head()
			fill := min(aggressor.Qty, resting.Qty)

			aggressor.Qty -= fill
			resting.Qty -= fill
			atomic.AddInt64(&b.totalTrades, 1)

			if b.OnTrade != nil {
				b.OnTrade(b.tradeFor(aggressor, resting, level.Price, fill))
			}

			if resting.Qty == 0 {
				level.popHead()
			}
		}

		if level.empty() {
			opposing.Delete(level)
		}
	}
}

func (b *Book) tradeFor(aggressor, resting *Order, price Price, qty int64) Trade {
	return Trade{
		Symbol:    b.symbol,
		Price:     price,
		Qty:       qty,
		TakerID:   aggressor.ID,
		TakerSide: aggressor.Side,
		MakerID:   resting.ID,
		MakerSide: resting.Side,
	}
}

// rest inserts o at the tail of the FIFO for its side at its limit price,
// creating the level if it does not yet exist.
func (b *Book) rest(o *Order) {
	var levels *priceLevels
	if o.Side == Buy {
		levels = b.bids
	} else {
		levels = b.asks
	}

	if level, ok := levels.Get(&PriceLevel{Price: o.Price}); ok {
		level.Orders = append(level.Orders, o)
		return
	}
	levels.Set(&PriceLevel{Price: o.Price, Orders: []*Order{o}})
}

// RestingSnapshot is a diagnostic, read-only view of one side's resting
// orders grouped by price level, best price first. Intended for tests and
// introspection only.
type RestingSnapshot struct {
	Bids []PriceLevel
	Asks []PriceLevel
}

// SnapshotResting copies out the current resting orders on both sides.
// Levels and orders are deep-copied so callers cannot mutate live book
// state.
func (b *Book) SnapshotResting() RestingSnapshot {
	return RestingSnapshot{
		Bids: snapshotSide(b.bids),
		Asks: snapshotSide(b.asks),
	}
}

func snapshotSide(levels *priceLevels) []PriceLevel {
	out := make([]PriceLevel, 0, levels.Len())
	levels.Scan(func(l *PriceLevel) bool {
		orders := make([]*Order, len(l.Orders))
		for i, o := range l.Orders {
			cp := *o
			orders[i] = &cp
		}
		out = append(out, PriceLevel{Price: l.Price, Orders: orders})
		return true
	})
	return out
}

// BestBid returns the highest resting bid price and whether one exists.
func (b *Book) BestBid() (Price, bool) {
	l, ok := b.bids.Min()
	if !ok {
		return 0, false
	}
	return l.Price, true
}

// BestAsk returns the lowest resting ask price and whether one exists.
func (b *Book) BestAsk() (Price, bool) {
	l, ok := b.asks.Min()
	if !ok {
		return 0, false
	}
	return l.Price, true
}
