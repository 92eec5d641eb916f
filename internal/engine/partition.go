package engine

import (
	"context"
	"hash/fnv"
	"sync/atomic"

	"github.com/rs/zerolog/log"
	tomb "gopkg.in/tomb.v2"
)

// DefaultWorkers is the default number of workers per partition.
const DefaultWorkers = 5

// DefaultQueueSize is the default bound on each worker's sub-queue. The
// queue is deliberately bounded so a stalled consumer applies back-pressure
// to its producer rather than growing without limit; Submit blocks rather
// than drops once it fills.
const DefaultQueueSize = 1024

// Partition owns a disjoint set of symbols and the matching for those
// symbols. Each symbol is statically assigned to exactly one of N workers,
// each with its own sub-queue, so two workers of the same partition never
// contend on the same book and no book lock is needed.
type Partition struct {
	name    string
	symbols []string
	books   map[string]*Book

	nWorkers  int
	queueSize int
	subqueues []chan *Order
	ownerOf   map[string]int // symbol -> subqueue index

	ordersRead int64 // accessed only through sync/atomic

	t *tomb.Tomb
}

// NewPartition constructs a partition owning symbols (which may be empty,
// leaving the partition idle). nWorkers and queueSize fall back to
// DefaultWorkers/DefaultQueueSize when non-positive.
func NewPartition(name string, symbols []string, nWorkers, queueSize int) *Partition {
	if nWorkers <= 0 {
		nWorkers = DefaultWorkers
	}
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	// A symbol count below nWorkers still works correctly (several workers
	// simply own zero symbols and idle); the per-symbol assignment pays off
	// once the symbol count reaches or exceeds nWorkers.
	p := &Partition{
		name:      name,
		symbols:   append([]string(nil), symbols...),
		books:     make(map[string]*Book, len(symbols)),
		nWorkers:  nWorkers,
		queueSize: queueSize,
		ownerOf:   make(map[string]int, len(symbols)),
	}
	p.subqueues = make([]chan *Order, nWorkers)
	for i := range p.subqueues {
		p.subqueues[i] = make(chan *Order, queueSize)
	}
	for _, sym := range symbols {
		p.books[sym] = NewBook(sym)
		p.ownerOf[sym] = p.workerFor(sym)
	}
	return p
}

// workerFor hashes a symbol to its owning worker index. Using a hash rather
// than round-robin keeps the same symbol permanently pinned to the same
// worker across process restarts' reconfiguration of the symbol list order.
func (p *Partition) workerFor(symbol string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(symbol))
	return int(h.Sum32() % uint32(p.nWorkers))
}

// Name returns the partition's configured name.
func (p *Partition) Name() string { return p.name }

// Symbols returns the symbols owned by this partition.
func (p *Partition) Symbols() []string { return append([]string(nil), p.symbols...) }

// HasSymbol reports whether sym is owned by this partition.
func (p *Partition) HasSymbol(sym string) bool {
	_, ok := p.books[sym]
	return ok
}

// SetOnTrade installs a trade hook on every book this partition owns. Must
// be called before Start.
func (p *Partition) SetOnTrade(fn func(Trade)) {
	for _, b := range p.books {
		b.OnTrade = fn
	}
}

// OrdersRead returns the number of orders this partition has dequeued and
// handed to a book. Safe to read concurrently; may lag by one increment.
func (p *Partition) OrdersRead() int64 { return atomic.LoadInt64(&p.ordersRead) }

// TotalTrades sums TotalTrades() across every book this partition owns.
func (p *Partition) TotalTrades() int64 {
	var sum int64
	for _, b := range p.books {
		sum += b.TotalTrades()
	}
	return sum
}

// Book returns the book for sym, if owned by this partition.
func (p *Partition) Book(sym string) (*Book, bool) {
	b, ok := p.books[sym]
	return b, ok
}

// Start launches the worker pool, supervised by a tomb so Shutdown can
// cleanly join every worker. ctx's cancellation also triggers shutdown.
func (p *Partition) Start(ctx context.Context) {
	p.t, ctx = tomb.WithContext(ctx)
	for i := 0; i < p.nWorkers; i++ {
		idx := i
		p.t.Go(func() error {
			return p.runWorker(idx)
		})
	}
}

// runWorker repeatedly dequeues one order from its owned sub-queue and
// processes it against the owning book, until told to shut down.
func (p *Partition) runWorker(idx int) error {
	queue := p.subqueues[idx]
	for {
		select {
		case <-p.t.Dying():
			return nil
		case o, ok := <-queue:
			if !ok {
				return nil
			}
			atomic.AddInt64(&p.ordersRead, 1)
			book := p.books[o.Symbol]
			book.Process(o)
		}
	}
}

// Submit enqueues order for matching. Non-blocking in the common case; it
// blocks only if the owning worker's sub-queue is full (bounded-queue
// back-pressure), and never silently drops an order. Returns
// ErrNotStarted if Start has not yet been called, or ErrShuttingDown if the
// partition has already been told to shut down.
func (p *Partition) Submit(o *Order) error {
	idx, ok := p.ownerOf[o.Symbol]
	if !ok {
		return ErrUnknownSymbol
	}
	if p.t == nil {
		return ErrNotStarted
	}
	select {
	case <-p.t.Dying():
		return ErrShuttingDown
	default:
	}
	select {
	case <-p.t.Dying():
		return ErrShuttingDown
	case p.subqueues[idx] <- o:
		return nil
	}
}

// Shutdown signals every worker to exit and waits for them to finish.
// Already-resting orders remain in their books, inspectable via
// SnapshotResting, but matching stops rather than draining the queue first.
func (p *Partition) Shutdown() error {
	if p.t == nil {
		return nil
	}
	p.t.Kill(nil)
	err := p.t.Wait()
	log.Info().Str("partition", p.name).Msg("partition shut down")
	return err
}
