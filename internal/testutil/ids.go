package testutil

import (
	"fmt"
	"sync"
)

// SequenceGenerator produces predictable prefixed identifiers: "ev-000001",
// "ev-000002", and so on. It backs golden-trace scenarios, where generated
// document paths must be byte-identical across runs without enumerating
// every id up front.
//
// The zero-padded counter keeps generated ids lexicographically ordered, so
// they behave like time-sortable ids in listings that tie-break on path.
//
// Thread-safety: safe for concurrent use via internal mutex.
type SequenceGenerator struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewSequenceGenerator creates a generator with the given id prefix. An
// empty prefix defaults to "id".
func NewSequenceGenerator(prefix string) *SequenceGenerator {
	if prefix == "" {
		prefix = "id"
	}
	return &SequenceGenerator{prefix: prefix}
}

// Generate returns the next id in the sequence.
func (g *SequenceGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%06d", g.prefix, g.n)
}
