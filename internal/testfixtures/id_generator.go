package testfixtures

import (
	"fmt"
	"sync"
)

// Prefixes for generated identifiers.
const (
	ReservationIDPrefix = "rsv"
	ResourceIDPrefix    = "res"
)

// IDGenerator hands out sequential identifiers such as "rsv-1", "rsv-2".
type IDGenerator struct {
	mu     sync.Mutex
	prefix string
	issued int
}

// NewIDGenerator returns a generator for prefix, or "id" when prefix is empty.
func NewIDGenerator(prefix string) *IDGenerator {
	if prefix == "" {
		prefix = "id"
	}
	return &IDGenerator{prefix: prefix}
}

// Next returns the next identifier.
func (g *IDGenerator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.issued++
	return fmt.Sprintf("%s-%d", g.prefix, g.issued)
}

// NextFunc returns Next for injection into stores and services.
func (g *IDGenerator) NextFunc() func() string {
	if g == nil {
		return func() string { return "" }
	}
	return g.Next
}

// Issued reports how many identifiers have been handed out.
func (g *IDGenerator) Issued() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.issued
}
