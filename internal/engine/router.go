package engine

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Router performs O(1) static dispatch of an order to its owning partition.
// The symbol -> partition table is built once and never mutated, so Router
// is freely shared across goroutines without synchronization.
type Router struct {
	partitions []*Partition
	table      map[string]*Partition
}

// NewRouter builds the symbol -> partition dispatch table from partitions.
// Fails fast with ErrDuplicateSymbol if two partitions claim the same
// symbol.
func NewRouter(partitions []*Partition) (*Router, error) {
	table := make(map[string]*Partition)
	for _, p := range partitions {
		for _, sym := range p.Symbols() {
			if existing, ok := table[sym]; ok {
				return nil, fmt.Errorf("%w: %q claimed by %q and %q", ErrDuplicateSymbol, sym, existing.Name(), p.Name())
			}
			table[sym] = p
		}
	}
	return &Router{partitions: partitions, table: table}, nil
}

// Partitions returns the router's full partition list.
func (r *Router) Partitions() []*Partition { return r.partitions }

// Route looks up the partition owning order.Symbol and submits the order to
// it. Returns ErrUnknownSymbol if no partition covers the symbol. Route
// itself never blocks other than via the partition's Submit.
func (r *Router) Route(o *Order) error {
	p, ok := r.table[o.Symbol]
	if !ok {
		return ErrUnknownSymbol
	}
	return p.Submit(o)
}

// Start launches every partition's worker pool.
func (r *Router) Start(ctx context.Context) {
	for _, p := range r.partitions {
		p.Start(ctx)
	}
}

// Shutdown stops every partition concurrently and joins them, using
// errgroup in place of a hand-rolled sync.WaitGroup -- the ecosystem's
// standard tool for "run N things, collect the first error."
func (r *Router) Shutdown() error {
	var g errgroup.Group
	for _, p := range r.partitions {
		p := p
		g.Go(p.Shutdown)
	}
	return g.Wait()
}
