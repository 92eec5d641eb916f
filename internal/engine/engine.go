package engine

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// Engine is the lifecycle wrapper tying together the order-id generator, the
// router and its partitions. It owns no matching logic of its own.
type Engine struct {
	ids    IDGenerator
	router *Router
}

// New constructs an Engine from an already-built Router. Construction does
// not start the worker pools; call Start for that.
func New(router *Router) *Engine {
	return &Engine{router: router}
}

// Router exposes the underlying router, e.g. for observability polling.
func (e *Engine) Router() *Router { return e.router }

// SetOnTrade installs fn as the trade hook on every partition's books. Must
// be called before Start.
func (e *Engine) SetOnTrade(fn func(Trade)) {
	for _, p := range e.router.Partitions() {
		p.SetOnTrade(fn)
	}
}

// Start launches every partition's worker pool and logs engine startup.
// Matching itself stays silent; lifecycle logging belongs here, at the
// wrapper that owns startup and shutdown, not inside the hot path.
func (e *Engine) Start(ctx context.Context) {
	log.Info().Int("partitions", len(e.router.Partitions())).Msg("engine starting")
	e.router.Start(ctx)
}

// Shutdown stops every partition and logs completion.
func (e *Engine) Shutdown() error {
	log.Info().Msg("engine shutting down")
	err := e.router.Shutdown()
	if err != nil {
		log.Error().Err(err).Msg("engine shutdown reported an error")
	}
	return err
}

// Route constructs an Order from already-canonicalized fields (price
// already in ticks) and routes it. It returns the assigned order id so a
// caller (e.g. internal/ingress) can attribute later trade reports back to
// the order's owner.
func (e *Engine) Route(symbol string, side Side, price Price, qty int64) (uint64, error) {
	o := &Order{
		ID:      e.ids.Next(),
		Symbol:  symbol,
		Side:    side,
		Price:   price,
		Qty:     qty,
		Arrival: time.Now(),
	}
	return o.ID, e.router.Route(o)
}
