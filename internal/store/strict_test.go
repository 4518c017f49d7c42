package store

import (
	"errors"
	"testing"
)

type aliasState struct {
	Items []int `json:"items"`
}

func newAliasStore(t *testing.T, strict bool) *Store {
	t.Helper()
	s, err := New(Config[aliasState]{
		Module: Module[aliasState]{
			State: func() aliasState { return aliasState{} },
			Mutations: map[string]MutationFunc[aliasState]{
				// Stores the caller's slice as is, which is exactly the
				// aliasing strict mode exists to catch.
				"setItems": Mutation(func(st *aliasState, items []int) error {
					st.Items = items
					return nil
				}),
				"clear": func(st *aliasState, _ any) error {
					st.Items = nil
					return nil
				},
			},
		},
		Strict: strict,
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return s
}

func TestStrict_DetectsWritesOutsideCommit(t *testing.T) {
	s := newAliasStore(t, true)
	items := []int{1, 2}
	if err := s.Commit("setItems", items); err != nil {
		t.Fatalf("Commit returned error: %v", err)
	}
	if err := s.Verify(); err != nil {
		t.Fatalf("Verify after a clean commit returned %v", err)
	}

	items[0] = 42

	err := s.Commit("clear", nil)
	if !errors.Is(err, ErrStrictModeViolation) {
		t.Fatalf("Commit after external write error = %v, want ErrStrictModeViolation", err)
	}
	// The violation is reported once; the store then tracks the new state.
	if err := s.Commit("clear", nil); err != nil {
		t.Fatalf("second Commit returned error: %v", err)
	}
}

func TestStrict_GetterReadReportsViolation(t *testing.T) {
	s := newAliasStore(t, true)
	items := []int{1}
	_ = s.Commit("setItems", items)
	items[0] = 7

	if _, err := s.Get("anything"); !errors.Is(err, ErrStrictModeViolation) {
		t.Fatalf("Get error = %v, want ErrStrictModeViolation", err)
	}
}

func TestStrict_DisabledIgnoresDrift(t *testing.T) {
	s := newAliasStore(t, false)
	items := []int{1}
	_ = s.Commit("setItems", items)
	items[0] = 7

	if err := s.Verify(); err != nil {
		t.Fatalf("Verify with strict off returned %v", err)
	}
	if err := s.Commit("clear", nil); err != nil {
		t.Fatalf("Commit returned error: %v", err)
	}
}
