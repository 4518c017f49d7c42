package store

import (
	"context"
	"fmt"
	"maps"
	"reflect"
	"slices"
	"strings"

	"github.com/huandu/go-clone"
)

// MutationFunc applies a synchronous transition to a module's live state.
// It must not perform I/O or call Commit or Dispatch. A returned error (or a
// panic) aborts the commit; any writes made before it stay in place, so a
// mutation should validate before it writes.
type MutationFunc[S any] func(state *S, payload any) error

// ActionFunc orchestrates work that may block on external collaborators and
// commits zero or more mutations through ac.
type ActionFunc[S any] func(ctx context.Context, ac ActionContext[S], payload any) (any, error)

// GetterFunc derives a value from state. It receives the module's local
// state and getters plus the whole tree and the root getters. Getters are
// recomputed on every access.
type GetterFunc[S any] func(state S, getters Getters, rootState Tree, rootGetters Getters) (any, error)

// Module bundles the state, getters, mutations and actions of one part of
// the tree. Child modules are mounted under their map key.
//
// When Namespaced is set, every handler name is registered as
// "<namespace>/<name>"; otherwise names are merged into the parent's
// namespace and collisions are rejected by New.
type Module[S any] struct {
	Namespaced bool
	State      func() S
	Getters    map[string]GetterFunc[S]
	Mutations  map[string]MutationFunc[S]
	Actions    map[string]ActionFunc[S]
	Modules    map[string]Definition

	// Clone deep-copies a state value. When nil the state is copied by
	// reflection, unexported fields and dynamic types included.
	Clone func(S) S
}

// Definition is any Module[S], whatever its state type.
type Definition interface {
	isNamespaced() bool
	register(r *registry, path, namespace string) error
}

func (m Module[S]) isNamespaced() bool { return m.Namespaced }

func (m Module[S]) register(r *registry, path, namespace string) error {
	if _, exists := r.modules[path]; exists {
		return &Error{Op: "register module", Name: path, Err: ErrDuplicateName}
	}

	var initial S
	if m.State != nil {
		initial = m.State()
	}
	node := &moduleNode[S]{path: path, namespace: namespace, live: &initial, clone: m.Clone}
	if _, err := node.snapshot(); err != nil {
		return &Error{Op: "register module", Name: path, Err: fmt.Errorf("state cannot be copied: %w", err)}
	}
	r.modules[path] = node
	r.order = append(r.order, path)

	for _, name := range sortedKeys(m.Mutations) {
		fn := m.Mutations[name]
		if fn == nil {
			return &Error{Op: "register mutation", Name: namespace + name, Err: fmt.Errorf("nil handler")}
		}
		if err := r.addMutation(namespace+name, node.mutation(fn)); err != nil {
			return err
		}
	}
	for _, name := range sortedKeys(m.Actions) {
		fn := m.Actions[name]
		if fn == nil {
			return &Error{Op: "register action", Name: namespace + name, Err: fmt.Errorf("nil handler")}
		}
		if err := r.addAction(namespace+name, node.action(r.store, fn)); err != nil {
			return err
		}
	}
	for _, name := range sortedKeys(m.Getters) {
		fn := m.Getters[name]
		if fn == nil {
			return &Error{Op: "register getter", Name: namespace + name, Err: fmt.Errorf("nil handler")}
		}
		if err := r.addGetter(namespace+name, node.getter(fn)); err != nil {
			return err
		}
	}

	for _, name := range sortedKeys(m.Modules) {
		child := m.Modules[name]
		if child == nil || strings.Contains(name, "/") || name == "" {
			return &Error{Op: "register module", Name: name, Err: fmt.Errorf("invalid module")}
		}
		childNamespace := namespace
		if child.isNamespaced() {
			childNamespace = namespace + name + "/"
		}
		if err := child.register(r, joinPath(path, name), childNamespace); err != nil {
			return err
		}
	}
	return nil
}

func joinPath(parent, name string) string {
	if parent == RootPath {
		return name
	}
	return parent + "/" + name
}

func sortedKeys[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}

type (
	mutationHandler func(payload any) error
	actionHandler   func(ctx context.Context, payload any) (any, error)
	getterHandler   func(e *evaluation) (any, error)
)

// registry is the flat name→handler table produced once by New.
type registry struct {
	store     *Store
	modules   map[string]stateNode
	order     []string
	mutations map[string]mutationHandler
	actions   map[string]actionHandler
	getters   map[string]getterHandler
}

func newRegistry(s *Store) *registry {
	return &registry{
		store:     s,
		modules:   make(map[string]stateNode),
		mutations: make(map[string]mutationHandler),
		actions:   make(map[string]actionHandler),
		getters:   make(map[string]getterHandler),
	}
}

func (r *registry) addMutation(name string, h mutationHandler) error {
	if _, exists := r.mutations[name]; exists {
		return &Error{Op: "register mutation", Name: name, Err: ErrDuplicateName}
	}
	r.mutations[name] = h
	return nil
}

func (r *registry) addAction(name string, h actionHandler) error {
	if _, exists := r.actions[name]; exists {
		return &Error{Op: "register action", Name: name, Err: ErrDuplicateName}
	}
	r.actions[name] = h
	return nil
}

func (r *registry) addGetter(name string, h getterHandler) error {
	if _, exists := r.getters[name]; exists {
		return &Error{Op: "register getter", Name: name, Err: ErrDuplicateName}
	}
	r.getters[name] = h
	return nil
}

// stateNode is the type-erased view of one module's live state.
type stateNode interface {
	snapshot() (any, error)
	baseline() any
	matches(baseline any) bool
	accepts(v any) bool
	replace(v any) error
}

type moduleNode[S any] struct {
	path      string
	namespace string
	live      *S
	clone     func(S) S
}

func (n *moduleNode[S]) copyState() (S, error) {
	return n.copyOf(*n.live)
}

func (n *moduleNode[S]) copyOf(v S) (out S, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("copy %T: %v", v, r)
		}
	}()
	if n.clone != nil {
		return n.clone(v), nil
	}
	return deepCopy(v), nil
}

func (n *moduleNode[S]) snapshot() (any, error) {
	return n.copyState()
}

// baseline is a private copy of the live state for strict mode to compare
// against later.
func (n *moduleNode[S]) baseline() any {
	b, err := n.copyState()
	if err != nil {
		return nil
	}
	return b
}

func (n *moduleNode[S]) matches(baseline any) bool {
	b, ok := baseline.(S)
	return ok && reflect.DeepEqual(*n.live, b)
}

func (n *moduleNode[S]) accepts(v any) bool {
	_, ok := v.(S)
	return ok
}

func (n *moduleNode[S]) replace(v any) error {
	next, ok := v.(S)
	if !ok {
		var want S
		return fmt.Errorf("%w: got %T, want %T", ErrPayloadType, v, want)
	}
	copied, err := n.copyOf(next)
	if err != nil {
		return err
	}
	*n.live = copied
	return nil
}

func (n *moduleNode[S]) mutation(fn MutationFunc[S]) mutationHandler {
	return func(payload any) (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("%w: %v", ErrMutationPanic, r)
			}
		}()
		return fn(n.live, payload)
	}
}

func (n *moduleNode[S]) action(s *Store, fn ActionFunc[S]) actionHandler {
	return func(ctx context.Context, payload any) (result any, err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("%w: %v", ErrActionPanic, r)
			}
		}()
		return fn(ctx, ActionContext[S]{store: s, node: n}, payload)
	}
}

func (n *moduleNode[S]) getter(fn GetterFunc[S]) getterHandler {
	return func(e *evaluation) (v any, err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("%w: %v", ErrGetterPanic, r)
			}
		}()
		local, _ := StateOf[S](e.tree, n.path)
		return fn(local, e.view(n.namespace), e.tree, e.view(""))
	}
}

// deepCopy copies v by reflection. Interface values keep their dynamic
// type, so an int stored in a map[string]any stays an int.
func deepCopy[S any](v S) S {
	out, _ := clone.Clone(v).(S)
	return out
}
