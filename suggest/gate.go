package suggest

import (
	"context"
	"sync"
)

// Gate is a cooperative pause point. The engine waits on it before each
// record, so Pause takes effect at the next record boundary rather than
// mid-request.
type Gate struct {
	mu   sync.Mutex
	open chan struct{}
}

// NewGate returns an open gate.
func NewGate() *Gate {
	g := &Gate{open: make(chan struct{})}
	close(g.open)
	return g
}

// Pause closes the gate. Waiters block until Resume.
func (g *Gate) Pause() {
	g.mu.Lock()
	defer g.mu.Unlock()
	select {
	case <-g.open:
		g.open = make(chan struct{})
	default:
		// already paused
	}
}

// Resume reopens the gate, releasing all waiters.
func (g *Gate) Resume() {
	g.mu.Lock()
	defer g.mu.Unlock()
	select {
	case <-g.open:
		// already open
	default:
		close(g.open)
	}
}

// Toggle flips the gate and reports whether it is now paused.
func (g *Gate) Toggle() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	select {
	case <-g.open:
		g.open = make(chan struct{})
		return true
	default:
		close(g.open)
		return false
	}
}

// Paused reports whether the gate is currently closed.
func (g *Gate) Paused() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	select {
	case <-g.open:
		return false
	default:
		return true
	}
}

// Wait blocks while the gate is paused. It returns early with ctx.Err()
// when the context is cancelled, so a paused run can still quit cleanly.
func (g *Gate) Wait(ctx context.Context) error {
	g.mu.Lock()
	open := g.open
	g.mu.Unlock()

	select {
	case <-open:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
