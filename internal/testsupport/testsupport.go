// Package testsupport collects the deterministic builders shared across
// this module's test files, so every internal package's own _test.go files
// can construct orders and populate books without repeating boilerplate.
package testsupport

import (
	"fenrir/internal/engine"
)

// NewOrder builds an order with an explicit id, bypassing an Engine's id
// generator, for tests that need precise control over ordering.
func NewOrder(id uint64, symbol string, side engine.Side, price engine.Price, qty int64) *engine.Order {
	return &engine.Order{
		ID:     id,
		Symbol: symbol,
		Side:   side,
		Price:  price,
		Qty:    qty,
	}
}

// PlaceAll processes one order per quantity, in order, at one price and
// side. Each order takes the next id after *nextID, and *nextID is left at
// the last id used.
func PlaceAll(book *engine.Book, nextID *uint64, side engine.Side, price engine.Price, quantities ...int64) {
	for _, qty := range quantities {
		*nextID++
		book.Process(NewOrder(*nextID, book.Symbol(), side, price, qty))
	}
}

// LevelQuantities extracts the residual quantities of a price level's
// resting orders, in FIFO order, for compact test assertions.
func LevelQuantities(l engine.PriceLevel) []int64 {
	out := make([]int64, len(l.Orders))
	for i, o := range l.Orders {
		out[i] = o.Qty
	}
	return out
}

// Prices extracts the Price of each level in a slice, in the slice's own
// order (the snapshot already sorts best first).
func Prices(levels []engine.PriceLevel) []engine.Price {
	out := make([]engine.Price, len(levels))
	for i, l := range levels {
		out[i] = l.Price
	}
	return out
}
