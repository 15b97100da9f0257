package sign

import (
	"math/big"
	"sync"
)

// ephemeralGuard remembers every ephemeral a scheme has signed with.
type ephemeralGuard struct {
	mu   sync.Mutex
	used map[string]struct{}
}

func newEphemeralGuard() *ephemeralGuard {
	return &ephemeralGuard{used: make(map[string]struct{})}
}

// reserve marks k as used and reports false if it already was.
func (g *ephemeralGuard) reserve(k *big.Int) bool {
	key := k.String()
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.used[key]; ok {
		return false
	}
	g.used[key] = struct{}{}
	return true
}

// release undoes a reserve whose signature was never produced.
func (g *ephemeralGuard) release(k *big.Int) {
	g.mu.Lock()
	delete(g.used, k.String())
	g.mu.Unlock()
}
