// package session drives the login/logout lifecycle: it owns the current
// mirror store, sync queue, and reconciliation engine, and exposes the
// readiness gate callers wait on before reading the mirror.
package session

import (
	"context"
	"sync"
)

// Gate is a resettable one-shot readiness signal.
//
// It starts resolved (no session means nothing to wait for), is reset to
// pending when a login begins, and resolves once the hydration attempt
// settles, success or failure. Code reading the mirror on a fresh screen
// waits on the gate to avoid a flash of empty state while hydration is in
// flight.
type Gate struct {
	mu sync.Mutex
	ch chan struct{} // closed when resolved
}

// NewGate creates a gate in the resolved state.
func NewGate() *Gate {
	g := &Gate{ch: make(chan struct{})}
	close(g.ch)
	return g
}

// Reset puts the gate back into the pending state. Waiters that arrive after
// the reset block until the next Resolve.
func (g *Gate) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	select {
	case <-g.ch:
		g.ch = make(chan struct{})
	default:
		// Already pending.
	}
}

// Resolve releases all current and future waiters. Resolving a resolved
// gate is a no-op.
func (g *Gate) Resolve() {
	g.mu.Lock()
	defer g.mu.Unlock()
	select {
	case <-g.ch:
	default:
		close(g.ch)
	}
}

// Resolved reports whether the gate is currently resolved.
func (g *Gate) Resolved() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	select {
	case <-g.ch:
		return true
	default:
		return false
	}
}

// Done returns a channel closed once the gate resolves. The channel is only
// valid until the next Reset.
func (g *Gate) Done() <-chan struct{} {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.ch
}

// Wait blocks until the gate resolves or the context ends.
func (g *Gate) Wait(ctx context.Context) error {
	select {
	case <-g.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
