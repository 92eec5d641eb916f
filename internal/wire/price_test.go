package wire_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fenrir/internal/engine"
	"fenrir/internal/wire"
)

func TestToTicks_ExactMultiple(t *testing.T) {
	p, err := wire.ToTicks(decimal.NewFromFloat(100.00))
	require.NoError(t, err)
	assert.Equal(t, engine.Price(2000), p)
}

func TestToTicks_RejectsNonTickMultiple(t *testing.T) {
	_, err := wire.ToTicks(decimal.NewFromFloat(100.01))
	assert.ErrorIs(t, err, wire.ErrNotMultipleOfTick)
}

func TestFromTicks_RoundTrip(t *testing.T) {
	d := wire.FromTicks(2001) // 2001 * 0.05
	assert.True(t, d.Equal(decimal.NewFromFloat(100.05)))
}

func TestParseDecimal(t *testing.T) {
	p, err := wire.ParseDecimal("10.05")
	require.NoError(t, err)
	assert.Equal(t, engine.Price(201), p)
}
