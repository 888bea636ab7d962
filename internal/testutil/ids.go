package testutil

import (
	"fmt"
	"sync"
)

// SequentialIDs returns predictable evaluation ids: "<prefix>-0001",
// "<prefix>-0002", and so on.
//
// Golden traces depend on ids being identical across runs, which UUIDv7
// cannot provide.
//
// Thread-safety: safe for concurrent use via internal mutex.
type SequentialIDs struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewSequentialIDs creates a generator. An empty prefix defaults to "eval".
func NewSequentialIDs(prefix string) *SequentialIDs {
	if prefix == "" {
		prefix = "eval"
	}
	return &SequentialIDs{prefix: prefix}
}

// Generate returns the next id.
func (g *SequentialIDs) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%04d", g.prefix, g.n)
}
