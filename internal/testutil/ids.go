package testutil

import (
	"fmt"
	"sync"
)

// FixedIDGenerator hands out a predetermined list of order ids in order.
//
// Repeating an id in the list simulates an id collision. Once the list is
// exhausted NewOrderID returns an error.
//
// Thread-safety: safe for concurrent use.
type FixedIDGenerator struct {
	mu   sync.Mutex
	ids  []string
	next int
}

// NewFixedIDGenerator creates a generator that returns ids in order.
func NewFixedIDGenerator(ids ...string) *FixedIDGenerator {
	return &FixedIDGenerator{ids: ids}
}

// NewOrderID returns the next id from the list.
func (g *FixedIDGenerator) NewOrderID() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.next >= len(g.ids) {
		return "", fmt.Errorf("fixed id generator exhausted after %d ids", len(g.ids))
	}
	id := g.ids[g.next]
	g.next++
	return id, nil
}

// Issued returns how many ids have been handed out.
func (g *FixedIDGenerator) Issued() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.next
}

// SequenceIDGenerator produces ORD-000000001, ORD-000000002, ... without end.
// Harness scenarios use it so golden traces stay byte-identical.
type SequenceIDGenerator struct {
	mu sync.Mutex
	n  int
}

// NewSequenceIDGenerator creates a generator starting at ORD-000000001.
func NewSequenceIDGenerator() *SequenceIDGenerator {
	return &SequenceIDGenerator{}
}

// NewOrderID returns the next id in the sequence.
func (g *SequenceIDGenerator) NewOrderID() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("ORD-%09d", g.n), nil
}
