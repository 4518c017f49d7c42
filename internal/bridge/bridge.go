// Package bridge connects a store to a UI that re-renders from snapshots.
//
// A Bridge keeps the latest state snapshot and, on every committed mutation,
// merges the new tree into it per module and hands the result to a render
// callback. Render runs on the committing goroutine while the commit is
// still in progress, so it may read getters but must not block; wrap slow
// consumers with Async.
package bridge

import (
	"context"
	"maps"
	"sync"
	"sync/atomic"

	"github.com/five82/statekit/internal/store"
)

// Bridge subscribes a render callback to a store.
type Bridge struct {
	store  *store.Store
	render func(store.Tree)

	mu          sync.Mutex
	snapshot    store.Tree
	unsubscribe func()

	mountOnce   sync.Once
	unmountOnce sync.Once
}

// New returns an unmounted bridge.
func New(s *store.Store, render func(store.Tree)) *Bridge {
	if render == nil {
		render = func(store.Tree) {}
	}
	return &Bridge{store: s, render: render}
}

// Mount captures the current state, subscribes to the store and publishes it
// as the process-wide active store. It returns the initial snapshot. Calls
// after the first are no-ops returning the current snapshot.
func (b *Bridge) Mount() store.Tree {
	b.mountOnce.Do(func() {
		b.mu.Lock()
		b.snapshot = b.store.State()
		b.mu.Unlock()
		b.unsubscribe = b.store.Subscribe(b.update)
		publish(b.store)
	})
	return b.Snapshot()
}

func (b *Bridge) update(_ store.MutationRecord, tree store.Tree) {
	b.mu.Lock()
	b.snapshot = b.snapshot.Merge(tree)
	merged := b.snapshot
	b.mu.Unlock()
	b.render(merged)
}

// Snapshot returns the most recent merged state.
func (b *Bridge) Snapshot() store.Tree {
	b.mu.Lock()
	defer b.mu.Unlock()
	return maps.Clone(b.snapshot)
}

// Unmount removes the subscription. It is safe to call more than once, and
// before Mount.
func (b *Bridge) Unmount() {
	b.unmountOnce.Do(func() {
		b.mountOnce.Do(func() {})
		if b.unsubscribe != nil {
			b.unsubscribe()
		}
	})
}

var active atomic.Pointer[store.Store]

// publish records s as the active store unless one is already set.
func publish(s *store.Store) {
	active.CompareAndSwap(nil, s)
}

// Active returns the first store mounted in this process.
func Active() (*store.Store, bool) {
	s := active.Load()
	return s, s != nil
}

type ctxKey struct{}

// WithStore returns a context carrying s.
func WithStore(ctx context.Context, s *store.Store) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the store carried by ctx, falling back to Active.
func FromContext(ctx context.Context) (*store.Store, bool) {
	if s, ok := ctx.Value(ctxKey{}).(*store.Store); ok && s != nil {
		return s, true
	}
	return Active()
}
