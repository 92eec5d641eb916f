package engine

import (
	"sync/atomic"
	"time"
)

// Side identifies which side of the book an order rests on.
type Side int

const (
	Buy Side = iota
	Sell
)

func (s Side) String() string {
	if s == Sell {
		return "SELL"
	}
	return "BUY"
}

// Price is a tick count: one tick is 0.05 of the externally quoted decimal
// price. Carrying price as an integer inside the core avoids binary
// floating point representation error and gives exact equality and
// ordering comparisons; conversion to and from a decimal happens only at
// the wire boundary (see internal/wire).
type Price int64

// TickSize is the externally agreed minimum price increment. The book does
// not itself validate that incoming prices are a multiple of a tick -- that
// is enforced at the wire boundary.
const TickSize = 0.05

// IDGenerator hands out monotonically increasing order identifiers, unique
// within the Engine that owns it. It is owned by an Engine instance rather
// than being a package global, so multiple engines can coexist independently
// within the same process (e.g. in tests); ids from different engines may
// coincide.
type IDGenerator struct {
	next uint64
}

// Next returns the next order identifier. Safe for concurrent use.
func (g *IDGenerator) Next() uint64 {
	return atomic.AddUint64(&g.next, 1)
}

// Order is an immutable-on-arrival record save for its residual Qty, which
// decreases monotonically to zero as it fills.
type Order struct {
	ID      uint64
	Symbol  string
	Side    Side
	Price   Price
	Qty     int64
	Arrival time.Time
}

// Done reports whether the order has no residual quantity left and must no
// longer be referenced by any book.
func (o *Order) Done() bool {
	return o.Qty <= 0
}

// Trade records one fill step: one resting order consumed (fully or
// partially) by one aggressor, at the resting order's price. The core
// itself never persists these; Trade exists only as the payload handed to
// an optional Book.OnTrade hook.
type Trade struct {
	Symbol     string
	Price      Price
	Qty        int64
	TakerID    uint64
	TakerSide  Side
	MakerID    uint64
	MakerSide  Side
	OccurredAt time.Time
}
