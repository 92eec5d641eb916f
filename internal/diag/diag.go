// Package diag is a polled introspection surface: a plain struct snapshot
// of partition and book state, suitable for an HTTP debug handler without
// pulling in a full RPC framework for a read-only status dump.
package diag

import "fenrir/internal/engine"

// BookStats is a diagnostic snapshot of one symbol's book.
type BookStats struct {
	Symbol      string `json:"symbol"`
	TotalOrders int64  `json:"total_orders"`
	TotalTrades int64  `json:"total_trades"`
}

// PartitionStats is a diagnostic snapshot of one partition.
type PartitionStats struct {
	Name       string      `json:"name"`
	OrdersRead int64       `json:"orders_read"`
	Books      []BookStats `json:"books"`
}

// Snapshot polls every partition and book behind router and returns a
// point-in-time diagnostic view, suitable for an HTTP /debug handler.
func Snapshot(router *engine.Router) []PartitionStats {
	out := make([]PartitionStats, 0, len(router.Partitions()))
	for _, p := range router.Partitions() {
		stats := PartitionStats{Name: p.Name(), OrdersRead: p.OrdersRead()}
		for _, sym := range p.Symbols() {
			book, ok := p.Book(sym)
			if !ok {
				continue
			}
			stats.Books = append(stats.Books, BookStats{
				Symbol:      sym,
				TotalOrders: book.TotalOrders(),
				TotalTrades: book.TotalTrades(),
			})
		}
		out = append(out, stats)
	}
	return out
}
