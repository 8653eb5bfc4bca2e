package core

import (
	"context"
	"sort"
	"sync"
)

// Readiness conditions used by the server.
const (
	ReadyData = "data" // a collection has been committed
	ReadyView = "view" // a presentation layer is mounted and serving
)

// Gate releases waiters once every named condition has been marked.
// It replaces polling for "is the data there yet / is the view up yet":
// deferred initialisation waits on Done instead of retrying on a timer.
type Gate struct {
	mu      sync.Mutex
	pending map[string]bool
	done    chan struct{}
}

// NewGate creates a gate waiting on the given conditions. A gate with no
// conditions is open immediately.
func NewGate(conditions ...string) *Gate {
	g := &Gate{
		pending: make(map[string]bool, len(conditions)),
		done:    make(chan struct{}),
	}
	for _, c := range conditions {
		g.pending[c] = true
	}
	if len(g.pending) == 0 {
		close(g.done)
	}
	return g
}

// Mark records that a condition holds. Marking twice, or marking an unknown
// condition, is a no-op.
func (g *Gate) Mark(condition string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.pending[condition] {
		return
	}
	delete(g.pending, condition)
	if len(g.pending) == 0 {
		close(g.done)
	}
}

// Done returns a channel closed when every condition has been marked.
func (g *Gate) Done() <-chan struct{} {
	return g.done
}

// Wait blocks until the gate opens or ctx ends.
func (g *Gate) Wait(ctx context.Context) error {
	select {
	case <-g.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Pending returns the conditions not yet marked, sorted.
func (g *Gate) Pending() []string {
	g.mu.Lock()
	defer g.mu.Unlock()

	out := make([]string, 0, len(g.pending))
	for c := range g.pending {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Then runs fn once the gate opens, unless ctx ends first.
func (g *Gate) Then(ctx context.Context, fn func()) {
	go func() {
		if g.Wait(ctx) == nil {
			fn()
		}
	}()
}
