// Package state keeps the latest provider position snapshots in memory so
// the inquiry surface can answer without touching any gateway.
package state

import (
	"sort"
	"sync"

	"main/internal/schema"
)

type key struct {
	provider string
	symbol   string
}

// PositionBook stores the most recent net position per provider and symbol.
type PositionBook struct {
	mu        sync.RWMutex
	positions map[key]schema.Position
}

func NewPositionBook() *PositionBook {
	return &PositionBook{positions: make(map[key]schema.Position)}
}

// Apply replaces the stored snapshot for the position's provider and symbol.
func (b *PositionBook) Apply(pos schema.Position) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.positions[key{provider: pos.Provider, symbol: pos.Symbol}] = pos
}

// Position returns the stored snapshot for a provider and symbol.
func (b *PositionBook) Position(provider, symbol string) (schema.Position, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	pos, ok := b.positions[key{provider: provider, symbol: symbol}]
	return pos, ok
}

// Snapshot copies all stored positions, ordered by provider then symbol.
func (b *PositionBook) Snapshot() []schema.Position {
	b.mu.RLock()
	out := make([]schema.Position, 0, len(b.positions))
	for _, pos := range b.positions {
		out = append(out, pos)
	}
	b.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Provider != out[j].Provider {
			return out[i].Provider < out[j].Provider
		}
		return out[i].Symbol < out[j].Symbol
	})
	return out
}

// Count returns the number of tracked provider and symbol pairs.
func (b *PositionBook) Count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.positions)
}
