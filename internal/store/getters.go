package store

import (
	"fmt"
	"strings"
)

// Getters resolves getters by name. Names are relative to the namespace the
// view was created for: inside a namespaced module "cartProducts" resolves
// to "cart/cartProducts".
type Getters interface {
	Get(name string) (any, error)
}

// GetAs resolves a getter and asserts its result type.
func GetAs[T any](g Getters, name string) (T, error) {
	var zero T
	v, err := g.Get(name)
	if err != nil {
		return zero, err
	}
	out, ok := v.(T)
	if !ok {
		return zero, &Error{Op: "getter", Name: name, Err: fmt.Errorf("%w: got %T, want %T", ErrPayloadType, v, zero)}
	}
	return out, nil
}

// evaluation is one top-level getter read: a single tree snapshot shared by
// every nested getter, plus the chain of getters currently being computed.
type evaluation struct {
	store  *Store
	tree   Tree
	active []string
}

func (e *evaluation) view(namespace string) Getters {
	return getterView{store: e.store, namespace: namespace, eval: e}
}

func (e *evaluation) resolve(name string) (any, error) {
	handler, ok := e.store.reg.getters[name]
	if !ok {
		return nil, &Error{Op: "getter", Name: name, Err: ErrUnknownGetter}
	}
	for _, active := range e.active {
		if active == name {
			chain := append(append([]string(nil), e.active...), name)
			return nil, &Error{Op: "getter", Name: name, Err: fmt.Errorf("%w: %s", ErrGetterCycle, strings.Join(chain, " -> "))}
		}
	}
	e.active = append(e.active, name)
	defer func() { e.active = e.active[:len(e.active)-1] }()
	return handler(e)
}

// getterView without an evaluation takes a fresh snapshot on every Get, so
// views held by actions never go stale across commits.
type getterView struct {
	store     *Store
	namespace string
	eval      *evaluation
}

func (v getterView) Get(name string) (any, error) {
	e := v.eval
	if e == nil {
		e = &evaluation{store: v.store, tree: v.store.State()}
	}
	return e.resolve(v.namespace + name)
}
