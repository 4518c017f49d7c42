package todo

import (
	"context"

	"github.com/five82/statekit/internal/store"
)

// Load replaces the list with the persisted one.
func Load(ctx context.Context, s *store.Store) error {
	_, err := s.Dispatch(ctx, "loadTodos", nil)
	return err
}

// Add appends a new open todo and returns it.
func Add(ctx context.Context, s *store.Store, text string) (Todo, error) {
	v, err := s.Dispatch(ctx, "addTodo", text)
	t, _ := v.(Todo)
	return t, err
}

// Remove deletes t.
func Remove(ctx context.Context, s *store.Store, t Todo) error {
	_, err := s.Dispatch(ctx, "removeTodo", t)
	return err
}

// Toggle flips t's done flag.
func Toggle(ctx context.Context, s *store.Store, t Todo) error {
	_, err := s.Dispatch(ctx, "toggleTodo", t)
	return err
}

// EditTodo replaces t's text.
func EditTodo(ctx context.Context, s *store.Store, t Todo, text string) error {
	_, err := s.Dispatch(ctx, "editTodo", EditText{Todo: t, Value: text})
	return err
}

// ToggleAll marks every todo done or open.
func ToggleAll(ctx context.Context, s *store.Store, done bool) error {
	_, err := s.Dispatch(ctx, "toggleAll", done)
	return err
}

// ClearCompleted removes every done todo.
func ClearCompleted(ctx context.Context, s *store.Store) error {
	_, err := s.Dispatch(ctx, "clearCompleted", nil)
	return err
}

// Filtered returns the todos matching f.
func Filtered(ctx context.Context, s *store.Store, f Filter) ([]Todo, error) {
	v, err := s.Dispatch(ctx, "filteredTodos", f)
	if err != nil {
		return nil, err
	}
	todos, _ := v.([]Todo)
	return todos, nil
}

// Remaining reads the number of open todos.
func Remaining(g store.Getters) (int, error) {
	return store.GetAs[int](g, "remaining")
}

// Of extracts the todo state from a snapshot.
func Of(tree store.Tree) State {
	st, _ := store.StateOf[State](tree, store.RootPath)
	return st
}
