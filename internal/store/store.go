package store

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Plugin is installed once at construction. Plugins usually call
// Subscribe or SubscribeAction and keep the returned disposer.
type Plugin func(*Store)

// Config configures a store. The embedded Module is the root module.
type Config[S any] struct {
	Module[S]

	Plugins []Plugin

	// Strict re-checks the state tree before every commit and read and
	// reports writes made outside a commit.
	Strict bool

	Logger *slog.Logger
}

// Empty is the state type of a root module that only hosts child modules.
type Empty struct{}

// MutationRecord describes a committed mutation.
type MutationRecord struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// ReplaceStateType is the record type subscribers see after ReplaceState.
const ReplaceStateType = "@@replaceState"

// Store owns the state tree and the handler tables compiled from the module
// tree. It is safe for concurrent use: commits are serialised by one
// exclusive lock held across the mutation and subscriber notification, and
// every read receives a deep copy of the state.
type Store struct {
	reg    *registry
	strict bool
	logger *slog.Logger

	mu    sync.RWMutex
	owner atomic.Int64 // goroutine holding mu for writing, 0 when free
	phase atomic.Int32

	fpMu         sync.Mutex
	fingerprints map[string]any

	subsMu     sync.Mutex
	subs       []*subscription
	actionSubs []*actionSubscription
}

// New compiles cfg into a store, invokes every state factory once, and
// installs the plugins in order.
func New[S any](cfg Config[S]) (*Store, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{strict: cfg.Strict, logger: logger}
	s.reg = newRegistry(s)
	if err := cfg.Module.register(s.reg, RootPath, ""); err != nil {
		return nil, err
	}
	if s.strict {
		s.fingerprints = s.fingerprintAll()
	}
	for _, plugin := range cfg.Plugins {
		if plugin != nil {
			plugin(s)
		}
	}
	return s, nil
}

// Logger returns the logger the store reports isolated failures to.
func (s *Store) Logger() *slog.Logger { return s.logger }

// Strict reports whether strict mode is enabled.
func (s *Store) Strict() bool { return s.strict }

// Phase reports where the store is in the commit lifecycle.
func (s *Store) Phase() Phase { return Phase(s.phase.Load()) }

// HasMutation reports whether a fully qualified mutation name is registered.
func (s *Store) HasMutation(name string) bool {
	_, ok := s.reg.mutations[name]
	return ok
}

// HasAction reports whether a fully qualified action name is registered.
func (s *Store) HasAction(name string) bool {
	_, ok := s.reg.actions[name]
	return ok
}

// Modules returns the registered module paths in registration order.
func (s *Store) Modules() []string {
	return append([]string(nil), s.reg.order...)
}

// Commit applies the named mutation and notifies subscribers before it
// returns. It never blocks on anything but other commits.
func (s *Store) Commit(name string, payload any) error {
	return s.commit(name, payload)
}

func (s *Store) commit(name string, payload any) error {
	handler, ok := s.reg.mutations[name]
	if !ok {
		return &Error{Op: "commit", Name: name, Err: ErrUnknownMutation}
	}
	if err := s.lock(); err != nil {
		return &Error{Op: "commit", Name: name, Err: err}
	}
	defer s.unlock()

	if err := s.verifyLocked(); err != nil {
		return err
	}

	s.setPhase(PhaseCommitting)
	err := handler(payload)
	s.refreshFingerprints()
	if err != nil {
		return &Error{Op: "commit", Name: name, Err: err}
	}
	s.setPhase(PhaseApplied)

	tree := s.snapshotLocked()
	s.setPhase(PhaseNotifying)
	s.notify(MutationRecord{Type: name, Payload: payload}, tree)
	return nil
}

// Dispatch runs the named action on the calling goroutine and returns its
// result. Dispatches of different actions may run concurrently.
func (s *Store) Dispatch(ctx context.Context, name string, payload any) (any, error) {
	return s.dispatch(ctx, name, payload)
}

// Result is the outcome of an asynchronous dispatch.
type Result struct {
	Value any
	Err   error
}

// DispatchAsync runs the action on a new goroutine. The channel receives
// exactly one Result and is then closed.
func (s *Store) DispatchAsync(ctx context.Context, name string, payload any) <-chan Result {
	out := make(chan Result, 1)
	go func() {
		defer close(out)
		v, err := s.dispatch(ctx, name, payload)
		out <- Result{Value: v, Err: err}
	}()
	return out
}

func (s *Store) dispatch(ctx context.Context, name string, payload any) (any, error) {
	handler, ok := s.reg.actions[name]
	if !ok {
		return nil, &Error{Op: "dispatch", Name: name, Err: ErrUnknownAction}
	}

	rec := ActionRecord{Type: name, Payload: payload}
	observers := s.actionObservers()
	if len(observers) > 0 {
		s.observeBefore(observers, rec)
	}

	start := time.Now()
	result, err := handler(ctx, payload)
	elapsed := time.Since(start)
	if err != nil {
		err = &ActionError{Name: name, Err: err}
		if len(observers) > 0 {
			s.observeError(observers, rec, err, elapsed)
		}
		return nil, err
	}
	if len(observers) > 0 {
		s.observeAfter(observers, rec, result, elapsed)
	}
	return result, nil
}

// State returns a deep copy of the whole state tree.
func (s *Store) State() Tree {
	unlock := s.rlock()
	defer unlock()
	return s.snapshotLocked()
}

// Get resolves a root getter by fully qualified name. It recomputes the
// getter from the current state on every call.
func (s *Store) Get(name string) (any, error) {
	if err := s.Verify(); err != nil {
		return nil, err
	}
	e := &evaluation{store: s, tree: s.State()}
	return e.resolve(name)
}

// Getters returns a root view of the getters that re-reads state on every
// lookup.
func (s *Store) Getters() Getters {
	return getterView{store: s}
}

// ReplaceState swaps module states wholesale, for hydration. Paths missing
// from tree keep their current state. Subscribers see ReplaceStateType.
func (s *Store) ReplaceState(tree Tree) error {
	for _, path := range tree.Paths() {
		node, ok := s.reg.modules[path]
		if !ok {
			return &Error{Op: "replace state", Name: path, Err: ErrUnknownModule}
		}
		if !node.accepts(tree[path]) {
			return &Error{Op: "replace state", Name: path, Err: ErrPayloadType}
		}
	}
	if err := s.lock(); err != nil {
		return &Error{Op: "replace state", Err: err}
	}
	defer s.unlock()

	s.setPhase(PhaseCommitting)
	for _, path := range s.reg.order {
		v, ok := tree[path]
		if !ok {
			continue
		}
		if err := s.reg.modules[path].replace(v); err != nil {
			s.refreshFingerprints()
			return &Error{Op: "replace state", Name: path, Err: err}
		}
	}
	s.refreshFingerprints()
	s.setPhase(PhaseApplied)

	snapshot := s.snapshotLocked()
	s.setPhase(PhaseNotifying)
	s.notify(MutationRecord{Type: ReplaceStateType}, snapshot)
	return nil
}

func (s *Store) snapshotLocked() Tree {
	tree := make(Tree, len(s.reg.order))
	for _, path := range s.reg.order {
		v, err := s.reg.modules[path].snapshot()
		if err != nil {
			s.logger.Error("copy module state", "module", path, "error", err)
			continue
		}
		tree[path] = v
	}
	return tree
}

// lock takes the commit lock. A goroutine that already holds it (a
// mutation or subscriber calling back into Commit) gets ErrReentrantMutation
// instead of deadlocking.
func (s *Store) lock() error {
	me := goroutineID()
	if !s.mu.TryLock() {
		if s.owner.Load() == me {
			return ErrReentrantMutation
		}
		s.mu.Lock()
	}
	s.owner.Store(me)
	return nil
}

func (s *Store) unlock() {
	s.setPhase(PhaseIdle)
	s.owner.Store(0)
	s.mu.Unlock()
}

// rlock takes the state lock for reading. Reads from the goroutine that
// holds the commit lock (subscribers reading state) do not lock again.
func (s *Store) rlock() func() {
	if s.mu.TryRLock() {
		return s.mu.RUnlock
	}
	if s.owner.Load() == goroutineID() {
		return func() {}
	}
	s.mu.RLock()
	return s.mu.RUnlock
}

func (s *Store) setPhase(p Phase) {
	s.phase.Store(int32(p))
}
