// Package watermark serialises watermark updates per layer.
package watermark

import (
	"context"
	"sync"
	"time"

	"github.com/viant/wfsync/layer"
)

// Setter persists a layer watermark.
type Setter interface {
	SetLastModified(ctx context.Context, id layer.ID, ts time.Time) error
}

// Guard wraps a Setter so that writes for the same layer never interleave.
// Different layers proceed independently. Ids are keyed on their normalised
// form, so "v:x1" and "x1" share a lock.
type Guard struct {
	next  Setter
	mu    sync.Mutex
	locks map[layer.ID]*sync.Mutex
}

// NewGuard returns a Guard around next.
func NewGuard(next Setter) *Guard {
	return &Guard{next: next, locks: map[layer.ID]*sync.Mutex{}}
}

// SetLastModified forwards to the wrapped Setter while holding the layer lock.
func (g *Guard) SetLastModified(ctx context.Context, id layer.ID, ts time.Time) error {
	l := g.lock(id.Normalize())
	l.Lock()
	defer l.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	return g.next.SetLastModified(ctx, id, ts)
}

func (g *Guard) lock(key layer.ID) *sync.Mutex {
	g.mu.Lock()
	defer g.mu.Unlock()
	l, ok := g.locks[key]
	if !ok {
		l = &sync.Mutex{}
		g.locks[key] = l
	}
	return l
}
