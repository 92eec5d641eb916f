// Package metrics exposes the core's polled counters as Prometheus
// collectors. Prometheus scraping is itself a pull model, so this is a
// direct fit rather than an invented push-based event stream.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"fenrir/internal/engine"
)

// Collector implements prometheus.Collector by polling a Router's
// partitions and books on each scrape, rather than maintaining its own
// counters -- the counters of record stay in internal/engine.
type Collector struct {
	router *engine.Router

	ordersRead  *prometheus.Desc
	totalTrades *prometheus.Desc
	totalOrders *prometheus.Desc
}

// NewCollector builds a Collector polling router at scrape time.
func NewCollector(router *engine.Router) *Collector {
	return &Collector{
		router: router,
		ordersRead: prometheus.NewDesc(
			"fenrir_partition_orders_read_total",
			"Number of orders dequeued by a partition.",
			[]string{"partition"}, nil,
		),
		totalTrades: prometheus.NewDesc(
			"fenrir_partition_trades_total",
			"Number of fill steps executed across a partition's books.",
			[]string{"partition"}, nil,
		),
		totalOrders: prometheus.NewDesc(
			"fenrir_book_orders_total",
			"Number of Process calls observed by a symbol's book.",
			[]string{"partition", "symbol"}, nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.ordersRead
	ch <- c.totalTrades
	ch <- c.totalOrders
}

// Collect implements prometheus.Collector, polling every partition and book
// on demand rather than caching state.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	for _, p := range c.router.Partitions() {
		ch <- prometheus.MustNewConstMetric(c.ordersRead, prometheus.CounterValue, float64(p.OrdersRead()), p.Name())
		ch <- prometheus.MustNewConstMetric(c.totalTrades, prometheus.CounterValue, float64(p.TotalTrades()), p.Name())
		for _, sym := range p.Symbols() {
			book, ok := p.Book(sym)
			if !ok {
				continue
			}
			ch <- prometheus.MustNewConstMetric(c.totalOrders, prometheus.CounterValue, float64(book.TotalOrders()), p.Name(), sym)
		}
	}
}
