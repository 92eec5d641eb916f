// Package wire is the external-facing boundary: binary order-ingress
// messages and decimal<->tick price conversion. None of this lives in the
// core matching engine itself: the book only ever sees engine.Price, an
// integer tick count.
package wire

import (
	"fmt"

	"github.com/shopspring/decimal"

	"fenrir/internal/engine"
)

var tickSize = decimal.NewFromFloat(engine.TickSize)

// ErrNotMultipleOfTick is returned when a decimal price does not land on a
// tick boundary.
var ErrNotMultipleOfTick = fmt.Errorf("wire: price is not a multiple of the %v tick size", engine.TickSize)

// ToTicks converts an externally-quoted decimal price into the core's
// integer tick representation. This is the one place in the system a
// decimal price is parsed; keeping every internal comparison on a scaled
// integer avoids floating point representation error in the book.
func ToTicks(price decimal.Decimal) (engine.Price, error) {
	quotient := price.Div(tickSize)
	if !quotient.Equal(quotient.Truncate(0)) {
		return 0, ErrNotMultipleOfTick
	}
	return engine.Price(quotient.IntPart()), nil
}

// FromTicks converts the core's integer tick price back to an externally
// quoted decimal, e.g. for wire serialization or display.
func FromTicks(p engine.Price) decimal.Decimal {
	return decimal.NewFromInt(int64(p)).Mul(tickSize)
}

// ParseDecimal parses a user/wire-supplied price string into ticks,
// combining string parsing and tick validation in one boundary call.
func ParseDecimal(s string) (engine.Price, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("wire: invalid price %q: %w", s, err)
	}
	return ToTicks(d)
}
