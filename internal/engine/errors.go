package engine

import "errors"

var (
	// ErrUnknownSymbol is returned by Router.Route when no partition owns
	// the order's symbol.
	ErrUnknownSymbol = errors.New("engine: symbol not covered by any partition")
	// ErrDuplicateSymbol is returned by NewRouter when two partitions claim
	// the same symbol.
	ErrDuplicateSymbol = errors.New("engine: symbol claimed by more than one partition")
	// ErrShuttingDown is returned by Partition.Submit once shutdown has
	// been initiated.
	ErrShuttingDown = errors.New("engine: partition is shutting down")
	// ErrNotStarted is returned by Partition.Submit when called before
	// Start has launched the worker pool.
	ErrNotStarted = errors.New("engine: partition has not been started")
)
