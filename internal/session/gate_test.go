package session

import (
	"context"
	"testing"
	"time"
)

func TestGate_StartsResolved(t *testing.T) {
	g := NewGate()
	if !g.Resolved() {
		t.Error("new gate should start resolved")
	}
	if err := g.Wait(context.Background()); err != nil {
		t.Errorf("Wait() on resolved gate error = %v", err)
	}
}

func TestGate_ResetBlocksWaiters(t *testing.T) {
	g := NewGate()
	g.Reset()

	if g.Resolved() {
		t.Error("gate should be pending after reset")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := g.Wait(ctx); err == nil {
		t.Error("Wait() should block while gate is pending")
	}
}

func TestGate_ResolveReleasesWaiters(t *testing.T) {
	g := NewGate()
	g.Reset()

	released := make(chan error, 1)
	go func() {
		released <- g.Wait(context.Background())
	}()

	g.Resolve()

	select {
	case err := <-released:
		if err != nil {
			t.Errorf("Wait() error = %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("waiter not released after Resolve")
	}
}

func TestGate_ResolveIdempotent(t *testing.T) {
	g := NewGate()
	g.Resolve()
	g.Resolve()
	g.Reset()
	g.Reset() // already pending, stays pending
	if g.Resolved() {
		t.Error("gate should still be pending")
	}
	g.Resolve()
	if !g.Resolved() {
		t.Error("gate should be resolved")
	}
}

func TestGate_ReusableAcrossSessions(t *testing.T) {
	g := NewGate()
	g.Reset()
	g.Resolve()
	g.Reset()
	if g.Resolved() {
		t.Error("second reset should make the gate pending again")
	}
	g.Resolve()
	if err := g.Wait(context.Background()); err != nil {
		t.Errorf("Wait() error = %v", err)
	}
}
