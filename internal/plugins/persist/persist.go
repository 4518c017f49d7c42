// Package persist provides a store plugin that writes a slice of the state
// tree to a blob store after every mutation.
//
// Writes happen on one background goroutine. The subscriber serialises the
// slice synchronously, in commit order, and hands it to the writer through a
// single pending slot; a burst of commits collapses into one write of the
// newest value. Storage errors are logged and never reach the store.
package persist

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/five82/statekit/internal/blob"
	"github.com/five82/statekit/internal/store"
)

const defaultWriteTimeout = 5 * time.Second

// Option configures the plugin.
type Option func(*Writer)

// WithLogger sets the logger for write failures. The store's logger is used
// otherwise.
func WithLogger(l *slog.Logger) Option {
	return func(w *Writer) { w.logger = l }
}

// WithFilter persists only after mutations for which keep returns true.
func WithFilter(keep func(store.MutationRecord) bool) Option {
	return func(w *Writer) { w.filter = keep }
}

// WithWriteTimeout bounds each blob write.
func WithWriteTimeout(d time.Duration) Option {
	return func(w *Writer) {
		if d > 0 {
			w.timeout = d
		}
	}
}

// Writer owns the background goroutine that performs blob writes.
type Writer struct {
	blobs   blob.Store
	key     string
	slice   func(store.Tree) any
	filter  func(store.MutationRecord) bool
	logger  *slog.Logger
	timeout time.Duration

	mu         sync.Mutex
	pending    string
	hasPending bool
	closed     bool

	wake    chan struct{}
	flushes chan chan struct{}
	quit    chan struct{}
	done    chan struct{}
	once    sync.Once
}

// New returns the plugin and its writer. slice selects the part of the tree
// to persist; nil persists the whole tree.
func New(blobs blob.Store, key string, slice func(store.Tree) any, opts ...Option) (store.Plugin, *Writer) {
	w := &Writer{
		blobs:   blobs,
		key:     key,
		slice:   slice,
		timeout: defaultWriteTimeout,
		wake:    make(chan struct{}, 1),
		flushes: make(chan chan struct{}),
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.slice == nil {
		w.slice = func(t store.Tree) any { return t }
	}
	go w.run()

	plugin := func(s *store.Store) {
		if w.logger == nil {
			w.logger = s.Logger()
		}
		s.Subscribe(w.observe)
	}
	return plugin, w
}

func (w *Writer) observe(rec store.MutationRecord, tree store.Tree) {
	if w.filter != nil && !w.filter(rec) {
		return
	}
	data, err := json.Marshal(w.slice(tree))
	if err != nil {
		w.log().Warn("persist encode failed", "key", w.key, "mutation", rec.Type, "error", err)
		return
	}

	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.pending = string(data)
	w.hasPending = true
	w.mu.Unlock()

	select {
	case w.wake <- struct{}{}:
	default:
	}
}

func (w *Writer) run() {
	defer close(w.done)
	for {
		select {
		case <-w.wake:
			w.drain()
		case ack := <-w.flushes:
			w.drain()
			close(ack)
		case <-w.quit:
			w.drain()
			return
		}
	}
}

func (w *Writer) drain() {
	w.mu.Lock()
	value, ok := w.pending, w.hasPending
	w.pending, w.hasPending = "", false
	w.mu.Unlock()
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()
	if err := w.blobs.Set(ctx, w.key, value); err != nil {
		w.log().Warn("persist write failed", "key", w.key, "error", err)
	}
}

// Flush blocks until every value enqueued before the call has been written.
func (w *Writer) Flush(ctx context.Context) error {
	ack := make(chan struct{})
	select {
	case w.flushes <- ack:
	case <-w.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-ack:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close writes any pending value and stops the writer. Commits after Close
// are not persisted.
func (w *Writer) Close() {
	w.once.Do(func() {
		w.mu.Lock()
		w.closed = true
		w.mu.Unlock()
		close(w.quit)
	})
	<-w.done
}

func (w *Writer) log() *slog.Logger {
	if w.logger == nil {
		return slog.Default()
	}
	return w.logger
}

// Load reads key from blobs and decodes it into T. A missing key yields the
// zero value and false.
func Load[T any](ctx context.Context, blobs blob.Store, key string) (T, bool, error) {
	var out T
	raw, ok, err := blobs.Get(ctx, key)
	if err != nil || !ok {
		return out, false, err
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return out, false, fmt.Errorf("decode %q: %w", key, err)
	}
	return out, true, nil
}
