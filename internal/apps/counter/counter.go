// Package counter is the counter example store.
package counter

import (
	"context"
	"log/slog"
	"time"

	"github.com/five82/statekit/internal/store"
)

// DefaultAsyncDelay is how long incrementAsync waits before committing.
const DefaultAsyncDelay = time.Second

// State is the counter's root state.
type State struct {
	Count int `json:"count"`
}

// Deps configure a counter store.
type Deps struct {
	Plugins    []store.Plugin
	Strict     bool
	Logger     *slog.Logger
	AsyncDelay time.Duration
}

// New builds the counter store.
func New(deps Deps) (*store.Store, error) {
	delay := deps.AsyncDelay
	if delay <= 0 {
		delay = DefaultAsyncDelay
	}
	commit := func(name string) store.ActionFunc[State] {
		return func(_ context.Context, ac store.ActionContext[State], _ any) (any, error) {
			return nil, ac.Commit(name, nil)
		}
	}
	return store.New(store.Config[State]{
		Module: store.Module[State]{
			State: func() State { return State{} },
			Getters: map[string]store.GetterFunc[State]{
				"evenOrOdd": func(st State, _ store.Getters, _ store.Tree, _ store.Getters) (any, error) {
					if st.Count%2 == 0 {
						return "even", nil
					}
					return "odd", nil
				},
			},
			Mutations: map[string]store.MutationFunc[State]{
				"increment": func(st *State, _ any) error { st.Count++; return nil },
				"decrement": func(st *State, _ any) error { st.Count--; return nil },
			},
			Actions: map[string]store.ActionFunc[State]{
				"increment": commit("increment"),
				"decrement": commit("decrement"),
				"incrementIfOdd": func(_ context.Context, ac store.ActionContext[State], _ any) (any, error) {
					if (ac.State().Count+1)%2 == 0 {
						return nil, ac.Commit("increment", nil)
					}
					return nil, nil
				},
				"incrementAsync": func(ctx context.Context, ac store.ActionContext[State], _ any) (any, error) {
					timer := time.NewTimer(delay)
					defer timer.Stop()
					select {
					case <-ctx.Done():
						return false, ctx.Err()
					case <-timer.C:
					}
					if err := ac.Commit("increment", nil); err != nil {
						return false, err
					}
					return true, nil
				},
			},
		},
		Plugins: deps.Plugins,
		Strict:  deps.Strict,
		Logger:  deps.Logger,
	})
}

// Increment dispatches the increment action.
func Increment(ctx context.Context, s *store.Store) error {
	_, err := s.Dispatch(ctx, "increment", nil)
	return err
}

// Decrement dispatches the decrement action.
func Decrement(ctx context.Context, s *store.Store) error {
	_, err := s.Dispatch(ctx, "decrement", nil)
	return err
}

// IncrementIfOdd increments only when the count is odd.
func IncrementIfOdd(ctx context.Context, s *store.Store) error {
	_, err := s.Dispatch(ctx, "incrementIfOdd", nil)
	return err
}

// IncrementAsync increments after the configured delay and reports whether
// the commit happened.
func IncrementAsync(ctx context.Context, s *store.Store) (bool, error) {
	v, err := s.Dispatch(ctx, "incrementAsync", nil)
	done, _ := v.(bool)
	return done, err
}

// EvenOrOdd reads the evenOrOdd getter.
func EvenOrOdd(s *store.Store) (string, error) {
	return store.GetAs[string](s.Getters(), "evenOrOdd")
}

// Of extracts the counter state from a snapshot.
func Of(tree store.Tree) State {
	st, _ := store.StateOf[State](tree, store.RootPath)
	return st
}
