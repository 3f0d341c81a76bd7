package service

import "sync/atomic"

// Guard allows at most one call in flight
type Guard struct {
	busy atomic.Bool
}

// TryAcquire marks the guard busy. The returned release func must be called
// to free it; ok is false when another call holds the guard.
func (g *Guard) TryAcquire() (release func(), ok bool) {
	if !g.busy.CompareAndSwap(false, true) {
		return nil, false
	}
	return func() { g.busy.Store(false) }, true
}

// Busy reports whether a call is in flight
func (g *Guard) Busy() bool {
	return g.busy.Load()
}
