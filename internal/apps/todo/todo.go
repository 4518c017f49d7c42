// Package todo is the TodoMVC example store. Todos are loaded from and
// persisted to a blob store under StorageKey.
package todo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/five82/statekit/internal/blob"
	"github.com/five82/statekit/internal/plugins/persist"
	"github.com/five82/statekit/internal/store"
)

// StorageKey is the blob key holding the persisted todo list.
const StorageKey = "todos-vuex"

// ErrNotFound reports a todo id that is not in the list.
var ErrNotFound = errors.New("todo not found")

// Todo is one entry in the list.
type Todo struct {
	ID   string `json:"id"`
	Text string `json:"text"`
	Done bool   `json:"done"`
}

// State is the todo store's root state.
type State struct {
	Todos []Todo `json:"todos"`
}

// Filter names one of the list getters.
type Filter string

const (
	FilterAll       Filter = "all"
	FilterActive    Filter = "active"
	FilterCompleted Filter = "completed"
)

// Edit is the editTodo mutation payload. Nil fields keep the todo's
// current value.
type Edit struct {
	Todo Todo    `json:"todo"`
	Text *string `json:"text,omitempty"`
	Done *bool   `json:"done,omitempty"`
}

// EditText is the editTodo action payload.
type EditText struct {
	Todo  Todo   `json:"todo"`
	Value string `json:"value"`
}

// Deps configure a todo store.
type Deps struct {
	Blobs   blob.Store
	Plugins []store.Plugin
	Strict  bool
	Logger  *slog.Logger
	// NewID generates todo ids; uuid v4 by default.
	NewID func() string
}

// Persistence returns the plugin that writes the todo list to blobs after
// every mutation, and its writer.
func Persistence(blobs blob.Store, opts ...persist.Option) (store.Plugin, *persist.Writer) {
	return persist.New(blobs, StorageKey, func(tree store.Tree) any {
		return Of(tree).Todos
	}, opts...)
}

// New builds the todo store.
func New(deps Deps) (*store.Store, error) {
	if deps.Blobs == nil {
		return nil, fmt.Errorf("todo: blob store is required")
	}
	newID := deps.NewID
	if newID == nil {
		newID = uuid.NewString
	}
	return store.New(store.Config[State]{
		Module: store.Module[State]{
			State:     func() State { return State{Todos: []Todo{}} },
			Getters:   getters(),
			Mutations: mutations(),
			Actions:   actions(deps.Blobs, newID),
		},
		Plugins: deps.Plugins,
		Strict:  deps.Strict,
		Logger:  deps.Logger,
	})
}

func getters() map[string]store.GetterFunc[State] {
	list := func(g store.Getters, name string) ([]Todo, error) {
		return store.GetAs[[]Todo](g, name)
	}
	filter := func(done bool) store.GetterFunc[State] {
		return func(_ State, g store.Getters, _ store.Tree, _ store.Getters) (any, error) {
			all, err := list(g, "all")
			if err != nil {
				return nil, err
			}
			out := []Todo{}
			for _, t := range all {
				if t.Done == done {
					out = append(out, t)
				}
			}
			return out, nil
		}
	}
	return map[string]store.GetterFunc[State]{
		"all": func(st State, _ store.Getters, _ store.Tree, _ store.Getters) (any, error) {
			return st.Todos, nil
		},
		"active":    filter(false),
		"completed": filter(true),
		"allChecked": func(_ State, g store.Getters, _ store.Tree, _ store.Getters) (any, error) {
			all, err := list(g, "all")
			if err != nil {
				return nil, err
			}
			for _, t := range all {
				if !t.Done {
					return false, nil
				}
			}
			return true, nil
		},
		"total": func(_ State, g store.Getters, _ store.Tree, _ store.Getters) (any, error) {
			all, err := list(g, "all")
			return len(all), err
		},
		"remaining": func(_ State, g store.Getters, _ store.Tree, _ store.Getters) (any, error) {
			active, err := list(g, "active")
			return len(active), err
		},
	}
}

func mutations() map[string]store.MutationFunc[State] {
	return map[string]store.MutationFunc[State]{
		"setTodos": store.Mutation(func(st *State, todos []Todo) error {
			st.Todos = append([]Todo{}, todos...)
			return nil
		}),
		"addTodo": store.Mutation(func(st *State, t Todo) error {
			st.Todos = append(st.Todos, t)
			return nil
		}),
		"removeTodo": store.Mutation(func(st *State, t Todo) error {
			i := indexOf(st.Todos, t.ID)
			if i < 0 {
				return fmt.Errorf("remove %q: %w", t.ID, ErrNotFound)
			}
			st.Todos = append(st.Todos[:i], st.Todos[i+1:]...)
			return nil
		}),
		"editTodo": store.Mutation(func(st *State, e Edit) error {
			i := indexOf(st.Todos, e.Todo.ID)
			if i < 0 {
				return fmt.Errorf("edit %q: %w", e.Todo.ID, ErrNotFound)
			}
			next := st.Todos[i]
			if e.Text != nil {
				next.Text = *e.Text
			}
			if e.Done != nil {
				next.Done = *e.Done
			}
			st.Todos[i] = next
			return nil
		}),
	}
}

func actions(blobs blob.Store, newID func() string) map[string]store.ActionFunc[State] {
	return map[string]store.ActionFunc[State]{
		"loadTodos": func(ctx context.Context, ac store.ActionContext[State], _ any) (any, error) {
			todos, _, err := persist.Load[[]Todo](ctx, blobs, StorageKey)
			if err != nil {
				return nil, fmt.Errorf("load todos: %w", err)
			}
			return nil, ac.Commit("setTodos", todos)
		},
		"addTodo": store.Action(func(_ context.Context, ac store.ActionContext[State], text string) (any, error) {
			t := Todo{ID: newID(), Text: text}
			return t, ac.Commit("addTodo", t)
		}),
		"removeTodo": store.Action(func(_ context.Context, ac store.ActionContext[State], t Todo) (any, error) {
			return nil, ac.Commit("removeTodo", t)
		}),
		"toggleTodo": store.Action(func(_ context.Context, ac store.ActionContext[State], t Todo) (any, error) {
			done := !t.Done
			return nil, ac.Commit("editTodo", Edit{Todo: t, Done: &done})
		}),
		"editTodo": store.Action(func(_ context.Context, ac store.ActionContext[State], e EditText) (any, error) {
			text := e.Value
			return nil, ac.Commit("editTodo", Edit{Todo: e.Todo, Text: &text})
		}),
		"toggleAll": store.Action(func(_ context.Context, ac store.ActionContext[State], done bool) (any, error) {
			for _, t := range ac.State().Todos {
				if err := ac.Commit("editTodo", Edit{Todo: t, Done: &done}); err != nil {
					return nil, err
				}
			}
			return nil, nil
		}),
		"clearCompleted": func(_ context.Context, ac store.ActionContext[State], _ any) (any, error) {
			for _, t := range ac.State().Todos {
				if !t.Done {
					continue
				}
				if err := ac.Commit("removeTodo", t); err != nil {
					return nil, err
				}
			}
			return nil, nil
		},
		"filteredTodos": store.Action(func(_ context.Context, ac store.ActionContext[State], f Filter) (any, error) {
			if f == "" {
				f = FilterAll
			}
			return ac.Getters().Get(string(f))
		}),
	}
}

func indexOf(todos []Todo, id string) int {
	for i, t := range todos {
		if t.ID == id {
			return i
		}
	}
	return -1
}
