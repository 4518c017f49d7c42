package bridge

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/five82/statekit/internal/store"
)

type counter struct {
	Count int `json:"count"`
}

type label struct {
	Text string `json:"text"`
}

func newStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.New(store.Config[counter]{
		Module: store.Module[counter]{
			State: func() counter { return counter{} },
			Getters: map[string]store.GetterFunc[counter]{
				"double": func(st counter, _ store.Getters, _ store.Tree, _ store.Getters) (any, error) {
					return st.Count * 2, nil
				},
			},
			Mutations: map[string]store.MutationFunc[counter]{
				"increment": func(st *counter, _ any) error { st.Count++; return nil },
			},
			Modules: map[string]store.Definition{
				"label": store.Module[label]{
					Namespaced: true,
					State:      func() label { return label{Text: "hi"} },
					Mutations: map[string]store.MutationFunc[label]{
						"set": store.Mutation(func(st *label, text string) error { st.Text = text; return nil }),
					},
				},
			},
		},
	})
	if err != nil {
		t.Fatalf("store.New returned error: %v", err)
	}
	return s
}

func TestBridge_RendersMergedSnapshots(t *testing.T) {
	s := newStore(t)
	var renders []store.Tree
	b := New(s, func(tree store.Tree) { renders = append(renders, tree) })

	initial := b.Mount()
	if c, _ := store.StateOf[counter](initial, store.RootPath); c.Count != 0 {
		t.Fatalf("initial Count = %d, want 0", c.Count)
	}

	if err := s.Commit("increment", nil); err != nil {
		t.Fatalf("Commit returned error: %v", err)
	}
	if err := s.Commit("label/set", "bye"); err != nil {
		t.Fatalf("Commit returned error: %v", err)
	}

	if len(renders) != 2 {
		t.Fatalf("renders = %d, want 2", len(renders))
	}
	last := renders[1]
	if c, _ := store.StateOf[counter](last, store.RootPath); c.Count != 1 {
		t.Fatalf("Count = %d, want 1", c.Count)
	}
	if l, _ := store.StateOf[label](last, "label"); l.Text != "bye" {
		t.Fatalf("Text = %q, want bye", l.Text)
	}
}

func TestBridge_RenderMayReadGetters(t *testing.T) {
	s := newStore(t)
	var got any
	b := New(s, func(store.Tree) {
		v, err := s.Get("double")
		if err != nil {
			t.Errorf("Get(double) returned error: %v", err)
		}
		got = v
	})
	b.Mount()
	defer b.Unmount()

	if err := s.Commit("increment", nil); err != nil {
		t.Fatalf("Commit returned error: %v", err)
	}
	if got != 2 {
		t.Fatalf("double = %v, want 2", got)
	}
}

func TestBridge_UnmountStopsRendering(t *testing.T) {
	s := newStore(t)
	calls := 0
	b := New(s, func(store.Tree) { calls++ })
	b.Mount()

	_ = s.Commit("increment", nil)
	b.Unmount()
	b.Unmount()
	_ = s.Commit("increment", nil)

	if calls != 1 {
		t.Fatalf("renders = %d, want 1", calls)
	}
}

func TestBridge_UnmountBeforeMount(t *testing.T) {
	b := New(newStore(t), nil)
	b.Unmount()
	b.Mount()
}

func TestFromContext(t *testing.T) {
	s := newStore(t)
	ctx := WithStore(context.Background(), s)

	got, ok := FromContext(ctx)
	if !ok || got != s {
		t.Fatalf("FromContext = %p, %v, want %p, true", got, ok, s)
	}
}

func TestActive_FirstMountWins(t *testing.T) {
	first := newStore(t)
	second := newStore(t)

	New(first, nil).Mount()
	New(second, nil).Mount()

	got, ok := Active()
	if !ok {
		t.Fatal("Active returned false after Mount")
	}
	// Other tests in this package may have mounted earlier; only check that
	// the second mount did not replace an existing handle.
	if got == second {
		t.Fatal("Active returned the later store")
	}
	if fallback, _ := FromContext(context.Background()); fallback != got {
		t.Fatal("FromContext without a store did not fall back to Active")
	}
}

func TestAsync_DeliversLatest(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		mu   sync.Mutex
		seen []int
	)
	release := make(chan struct{})
	delivered := make(chan struct{}, 16)
	send := Async(ctx, func(v int) {
		<-release
		mu.Lock()
		seen = append(seen, v)
		mu.Unlock()
		delivered <- struct{}{}
	})

	for i := 1; i <= 5; i++ {
		send(i)
	}
	close(release)

	deadline := time.After(2 * time.Second)
	for {
		mu.Lock()
		n := len(seen)
		last := 0
		if n > 0 {
			last = seen[n-1]
		}
		mu.Unlock()
		if last == 5 {
			break
		}
		select {
		case <-delivered:
		case <-deadline:
			t.Fatalf("last delivered = %d, want 5", last)
		}
	}
	mu.Lock()
	defer mu.Unlock()
	if len(seen) > 2 {
		t.Fatalf("delivered %v, want at most 2 values", seen)
	}
}
