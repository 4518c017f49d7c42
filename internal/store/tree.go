package store

import (
	"maps"
	"slices"
)

// Tree is a snapshot of the whole state tree. The key "" holds the root
// module's state; every other key is a module path such as "cart" or
// "shop/cart". Values are copies owned by the receiver.
type Tree map[string]any

// RootPath is the Tree key of the root module.
const RootPath = ""

// Root returns the root module's state.
func (t Tree) Root() any {
	return t[RootPath]
}

// Paths returns the module paths in the tree, sorted.
func (t Tree) Paths() []string {
	return slices.Sorted(maps.Keys(t))
}

// Merge returns a new tree holding t's entries overlaid with next's. The
// merge is shallow: a module present in next replaces that module's entry
// wholesale.
func (t Tree) Merge(next Tree) Tree {
	merged := make(Tree, len(t)+len(next))
	maps.Copy(merged, t)
	maps.Copy(merged, next)
	return merged
}

// StateOf returns the state stored under path with its concrete type.
func StateOf[S any](t Tree, path string) (S, bool) {
	v, ok := t[path].(S)
	return v, ok
}
