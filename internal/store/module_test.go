package store

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type itemsState struct {
	Items []string `json:"items"`
}

type stockState struct {
	Stock map[string]int `json:"stock"`
}

func itemsModule(namespaced bool) Module[itemsState] {
	return Module[itemsState]{
		Namespaced: namespaced,
		State:      func() itemsState { return itemsState{Items: []string{}} },
		Mutations: map[string]MutationFunc[itemsState]{
			"setCartItems": Mutation(func(st *itemsState, items []string) error {
				st.Items = append([]string(nil), items...)
				return nil
			}),
		},
	}
}

func TestModules_NamespacedNamesDoNotCollide(t *testing.T) {
	root := Module[itemsState]{
		State: func() itemsState { return itemsState{} },
		Mutations: map[string]MutationFunc[itemsState]{
			"setCartItems": Mutation(func(st *itemsState, items []string) error {
				st.Items = append([]string(nil), items...)
				return nil
			}),
		},
		Modules: map[string]Definition{"cart": itemsModule(true)},
	}
	s, err := New(Config[itemsState]{Module: root})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	if err := s.Commit("cart/setCartItems", []string{"a"}); err != nil {
		t.Fatalf("Commit(cart/setCartItems) returned error: %v", err)
	}
	if err := s.Commit("setCartItems", []string{"root"}); err != nil {
		t.Fatalf("Commit(setCartItems) returned error: %v", err)
	}

	tree := s.State()
	cart, _ := StateOf[itemsState](tree, "cart")
	top, _ := StateOf[itemsState](tree, RootPath)
	if len(cart.Items) != 1 || cart.Items[0] != "a" {
		t.Fatalf("cart items = %v, want [a]", cart.Items)
	}
	if len(top.Items) != 1 || top.Items[0] != "root" {
		t.Fatalf("root items = %v, want [root]", top.Items)
	}
}

func TestModules_FlatCollisionIsRejected(t *testing.T) {
	_, err := New(Config[Empty]{Module: Module[Empty]{
		Modules: map[string]Definition{
			"a": itemsModule(false),
			"b": itemsModule(false),
		},
	}})
	if !errors.Is(err, ErrDuplicateName) {
		t.Fatalf("New error = %v, want ErrDuplicateName", err)
	}
	if !strings.Contains(err.Error(), "setCartItems") {
		t.Fatalf("error %q should name the colliding mutation", err)
	}
}

func TestModules_FlatModuleIsAddressableWithoutPrefix(t *testing.T) {
	s, err := New(Config[Empty]{Module: Module[Empty]{
		Modules: map[string]Definition{"list": itemsModule(false)},
	}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if err := s.Commit("setCartItems", []string{"x", "y"}); err != nil {
		t.Fatalf("Commit returned error: %v", err)
	}
	list, _ := StateOf[itemsState](s.State(), "list")
	if len(list.Items) != 2 {
		t.Fatalf("list items = %v, want 2 entries", list.Items)
	}
}

func TestModules_RootCommitCrossesModules(t *testing.T) {
	stock := Module[stockState]{
		Namespaced: true,
		State:      func() stockState { return stockState{Stock: map[string]int{"apple": 2}} },
		Mutations: map[string]MutationFunc[stockState]{
			"decrement": Mutation(func(st *stockState, id string) error {
				st.Stock[id]--
				return nil
			}),
		},
	}
	basket := Module[itemsState]{
		Namespaced: true,
		State:      func() itemsState { return itemsState{} },
		Getters: map[string]GetterFunc[itemsState]{
			"count": func(st itemsState, _ Getters, _ Tree, _ Getters) (any, error) {
				return len(st.Items), nil
			},
			"inStock": func(st itemsState, _ Getters, root Tree, _ Getters) (any, error) {
				s, _ := StateOf[stockState](root, "stock")
				return s.Stock["apple"], nil
			},
			"summary": func(_ itemsState, local Getters, _ Tree, _ Getters) (any, error) {
				n, err := GetAs[int](local, "count")
				if err != nil {
					return nil, err
				}
				left, err := GetAs[int](local, "inStock")
				if err != nil {
					return nil, err
				}
				return [2]int{n, left}, nil
			},
		},
		Mutations: map[string]MutationFunc[itemsState]{
			"push": Mutation(func(st *itemsState, id string) error {
				st.Items = append(st.Items, id)
				return nil
			}),
		},
		Actions: map[string]ActionFunc[itemsState]{
			"add": Action(func(_ context.Context, ac ActionContext[itemsState], id string) (any, error) {
				if err := ac.Commit("push", id); err != nil {
					return nil, err
				}
				return nil, ac.Commit("stock/decrement", id, Root())
			}),
			"addWithoutRoot": Action(func(_ context.Context, ac ActionContext[itemsState], id string) (any, error) {
				return nil, ac.Commit("stock/decrement", id)
			}),
		},
	}
	s, err := New(Config[Empty]{Module: Module[Empty]{
		Modules: map[string]Definition{"stock": stock, "basket": basket},
	}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	if _, err := s.Dispatch(context.Background(), "basket/add", "apple"); err != nil {
		t.Fatalf("Dispatch(basket/add) returned error: %v", err)
	}
	summary, err := GetAs[[2]int](s, "basket/summary")
	if err != nil {
		t.Fatalf("GetAs(basket/summary) returned error: %v", err)
	}
	if summary != [2]int{1, 1} {
		t.Fatalf("summary = %v, want [1 1]", summary)
	}

	_, err = s.Dispatch(context.Background(), "basket/addWithoutRoot", "apple")
	if !errors.Is(err, ErrUnknownMutation) {
		t.Fatalf("commit without Root error = %v, want ErrUnknownMutation for basket/stock/decrement", err)
	}
}

func TestModules_NestedNamespacesAccumulate(t *testing.T) {
	inner := itemsModule(true)
	outer := Module[Empty]{
		Namespaced: true,
		Modules:    map[string]Definition{"cart": inner},
	}
	s, err := New(Config[Empty]{Module: Module[Empty]{
		Modules: map[string]Definition{"shop": outer},
	}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if !s.HasMutation("shop/cart/setCartItems") {
		t.Fatalf("mutation shop/cart/setCartItems not registered")
	}
	if got := s.Modules(); len(got) != 3 || got[2] != "shop/cart" {
		t.Fatalf("Modules = %v, want [\"\" shop shop/cart]", got)
	}
}

func TestGetters_CycleIsReported(t *testing.T) {
	s, err := New(Config[counterState]{Module: Module[counterState]{
		Getters: map[string]GetterFunc[counterState]{
			"a": func(_ counterState, g Getters, _ Tree, _ Getters) (any, error) { return g.Get("b") },
			"b": func(_ counterState, g Getters, _ Tree, _ Getters) (any, error) { return g.Get("a") },
		},
	}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	_, err = s.Get("a")
	if !errors.Is(err, ErrGetterCycle) {
		t.Fatalf("Get(a) error = %v, want ErrGetterCycle", err)
	}
	if !strings.Contains(err.Error(), "a -> b -> a") {
		t.Fatalf("error %q should show the cycle", err)
	}
}

func TestGetters_RecomputeAfterEveryCommit(t *testing.T) {
	s := newCounter(t)
	for i := 1; i <= 4; i++ {
		if err := s.Commit("increment", nil); err != nil {
			t.Fatalf("Commit returned error: %v", err)
		}
		want := "odd"
		if i%2 == 0 {
			want = "even"
		}
		got, err := s.Getters().Get("evenOrOdd")
		if err != nil {
			t.Fatalf("Get returned error: %v", err)
		}
		if got != want {
			t.Fatalf("after %d increments evenOrOdd = %v, want %s", i, got, want)
		}
	}
}

func TestNew_RejectsInvalidModuleNames(t *testing.T) {
	_, err := New(Config[Empty]{Module: Module[Empty]{
		Modules: map[string]Definition{"a/b": itemsModule(true)},
	}})
	if err == nil {
		t.Fatalf("New returned nil error for module name containing a slash")
	}
}
