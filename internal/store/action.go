package store

import (
	"context"
	"log/slog"
	"time"
)

// ActionContext is what an action sees of the store. Names passed to
// Commit, Dispatch and Getters are resolved inside the action's module
// namespace unless Root is given.
type ActionContext[S any] struct {
	store *Store
	node  *moduleNode[S]
}

// CommitOption modifies how an action's Commit or Dispatch resolves names.
type CommitOption func(*commitOptions)

type commitOptions struct {
	root bool
}

// Root addresses the global namespace instead of the calling module's.
func Root() CommitOption {
	return func(o *commitOptions) { o.root = true }
}

// State returns a copy of the module's local state as of now.
func (ac ActionContext[S]) State() S {
	unlock := ac.store.rlock()
	defer unlock()
	v, err := ac.node.copyState()
	if err != nil {
		ac.store.logger.Error("copy module state", "module", ac.node.path, "error", err)
	}
	return v
}

// RootState returns a copy of the whole tree.
func (ac ActionContext[S]) RootState() Tree {
	return ac.store.State()
}

// Getters returns the module's local getters.
func (ac ActionContext[S]) Getters() Getters {
	return getterView{store: ac.store, namespace: ac.node.namespace}
}

// RootGetters returns the global getters.
func (ac ActionContext[S]) RootGetters() Getters {
	return getterView{store: ac.store}
}

// Logger returns the store's logger.
func (ac ActionContext[S]) Logger() *slog.Logger {
	return ac.store.logger
}

// Commit applies a mutation.
func (ac ActionContext[S]) Commit(name string, payload any, opts ...CommitOption) error {
	return ac.store.commit(ac.qualify(name, opts), payload)
}

// Dispatch runs another action and waits for it.
func (ac ActionContext[S]) Dispatch(ctx context.Context, name string, payload any, opts ...CommitOption) (any, error) {
	return ac.store.dispatch(ctx, ac.qualify(name, opts), payload)
}

func (ac ActionContext[S]) qualify(name string, opts []CommitOption) string {
	var o commitOptions
	for _, opt := range opts {
		opt(&o)
	}
	if o.root {
		return name
	}
	return ac.node.namespace + name
}

func (s *Store) observeBefore(observers []*actionSubscription, rec ActionRecord) {
	tree := s.State()
	for _, sub := range observers {
		if sub.obs.Before != nil {
			s.safely(rec.Type, func() { sub.obs.Before(rec, tree) })
		}
	}
}

func (s *Store) observeAfter(observers []*actionSubscription, rec ActionRecord, result any, elapsed time.Duration) {
	tree := s.State()
	for _, sub := range observers {
		if sub.obs.After != nil {
			s.safely(rec.Type, func() { sub.obs.After(rec, tree, result, elapsed) })
		}
	}
}

func (s *Store) observeError(observers []*actionSubscription, rec ActionRecord, err error, elapsed time.Duration) {
	tree := s.State()
	for _, sub := range observers {
		if sub.obs.Error != nil {
			s.safely(rec.Type, func() { sub.obs.Error(rec, tree, err, elapsed) })
		}
	}
}

func (s *Store) safely(action string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("action observer panicked", "action", action, "panic", r)
		}
	}()
	fn()
}
