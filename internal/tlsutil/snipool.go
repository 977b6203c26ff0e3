package tlsutil

import (
	"math/rand"
	"sync/atomic"
)

const (
	StrategyRandom     = "random"
	StrategyRoundRobin = "round-robin"
)

// SNIPool hands out the server names a client presents in its ClientHello.
// It is immutable after construction and safe for concurrent use.
type SNIPool struct {
	names        []string
	strategy     string
	currentIndex uint64 // atomic counter for round-robin
}

// NewSNIPool creates a pool over a copy of names. An unknown strategy means random.
func NewSNIPool(names []string, strategy string) *SNIPool {
	if strategy != StrategyRoundRobin {
		strategy = StrategyRandom
	}
	p := &SNIPool{
		names:    make([]string, len(names)),
		strategy: strategy,
	}
	copy(p.names, names)
	return p
}

// Next returns the name to use for the next connection, or "" for an empty pool.
func (p *SNIPool) Next() string {
	if len(p.names) == 0 {
		return ""
	}
	if p.strategy == StrategyRoundRobin {
		idx := (atomic.AddUint64(&p.currentIndex, 1) - 1) % uint64(len(p.names))
		return p.names[idx]
	}
	return p.names[rand.Intn(len(p.names))]
}

// Names returns a copy of the pool contents.
func (p *SNIPool) Names() []string {
	out := make([]string, len(p.names))
	copy(out, p.names)
	return out
}

func (p *SNIPool) Strategy() string {
	return p.strategy
}
