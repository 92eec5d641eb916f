// Package config loads the partition layout and per-symbol price ranges
// consumed only by the driver: the core matching engine never parses
// configuration itself.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"fenrir/internal/engine"
)

var (
	// ErrOverlappingCover is returned when two partitions declare the same
	// symbol.
	ErrOverlappingCover = errors.New("config: symbol declared by more than one partition")
	// ErrIncompleteCover is returned when symbol_ranges names a symbol no
	// partition owns. Silently dropping such a symbol would leave it
	// unroutable at runtime with no diagnostic, so it is rejected at load
	// time instead.
	ErrIncompleteCover = errors.New("config: universe symbol not covered by any partition")
)

// SymbolRange is the min/max price guardrail for one symbol. Consumed only
// by the driver (e.g. a load generator), never by the core book.
type SymbolRange struct {
	MinPrice float64 `yaml:"min_price"`
	MaxPrice float64 `yaml:"max_price"`
}

// PartitionSpec is one entry in the partition layout document.
type PartitionSpec struct {
	Name      string   `yaml:"partition_name"`
	Symbols   []string `yaml:"symbols"`
	Workers   int      `yaml:"workers,omitempty"`
	QueueSize int      `yaml:"queue_size,omitempty"`
}

// Layout is the full partition-layout document: the disjoint union of every
// partition's symbols is the universe.
type Layout struct {
	Partitions   []PartitionSpec        `yaml:"partitions"`
	SymbolRanges map[string]SymbolRange `yaml:"symbol_ranges,omitempty"`
}

// Load reads and validates a partition-layout YAML document from path.
func Load(path string) (Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Layout{}, fmt.Errorf("config: reading %s: %w", path, err)
	}
	return Parse(data)
}

// Parse validates raw YAML bytes into a Layout, checking that the
// partitions' symbol sets are disjoint and that every symbol referenced
// elsewhere in the document is covered by some partition. An incomplete or
// overlapping cover is rejected as a hard error rather than silently
// dropping or double-routing a symbol.
func Parse(data []byte) (Layout, error) {
	var l Layout
	if err := yaml.Unmarshal(data, &l); err != nil {
		return Layout{}, fmt.Errorf("config: parsing layout: %w", err)
	}

	seen := make(map[string]string, len(l.Partitions))
	for _, p := range l.Partitions {
		for _, sym := range p.Symbols {
			if owner, ok := seen[sym]; ok {
				return Layout{}, fmt.Errorf("%w: %q in %q and %q", ErrOverlappingCover, sym, owner, p.Name)
			}
			seen[sym] = p.Name
		}
	}

	for sym := range l.SymbolRanges {
		if _, ok := seen[sym]; !ok {
			return Layout{}, fmt.Errorf("%w: %q", ErrIncompleteCover, sym)
		}
	}

	log.Info().Int("partitions", len(l.Partitions)).Int("symbols", len(seen)).Msg("partition layout loaded")
	return l, nil
}

// BuildPartitions constructs one engine.Partition per PartitionSpec.
func (l Layout) BuildPartitions() []*engine.Partition {
	partitions := make([]*engine.Partition, 0, len(l.Partitions))
	for _, p := range l.Partitions {
		partitions = append(partitions, engine.NewPartition(p.Name, p.Symbols, p.Workers, p.QueueSize))
	}
	return partitions
}
