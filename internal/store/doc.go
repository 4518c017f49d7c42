// Package store implements a centralized reactive state container.
//
// # Overview
//
// A Store owns one state tree. The tree is only ever changed by named
// mutations, read through copies and derived getters, orchestrated by
// actions that may block on external services, and observed by
// subscribers (plugins such as the logger and persistence middleware, and
// the reactive bridge that drives the UI).
//
//	UI event
//	   │
//	   ▼
//	Dispatch("cart/checkout", products)      actions may block on I/O
//	   │
//	   ▼
//	Commit("cart/setCheckoutStatus", ...)    mutations never block
//	   │
//	   ▼
//	mutation applied to live state
//	   │
//	   ▼
//	subscribers notified in order            logger, persist, bridge
//	   │
//	   ▼
//	UI re-reads State() / Get(...)
//
// # Modules
//
// The tree is composed of modules. Every Module[S] contributes a state
// factory, getters, mutations and actions, and may mount child modules.
// Each module's state lives under its path in the Tree:
//
//	tree[""]         root state
//	tree["cart"]     cart state
//	tree["products"] products state
//
// A namespaced module registers its handlers as "<path>/<name>", so
// "cart/setCartItems" and a root "setCartItems" never collide. Handlers of
// modules that are not namespaced merge into the parent namespace; a name
// registered twice is a configuration error reported by New, never silently
// last-write-wins.
//
// An action's Commit, Dispatch and Getters resolve names in the action's
// own namespace. Root() targets the global namespace instead:
//
//	ac.Commit("products/decrementProductInventory", p, store.Root())
//
// Module getters receive the local state and getters plus the root tree
// and root getters, which is the only sanctioned way to read outside a
// module's own subtree.
//
// # Concurrency Model
//
// Commits are serialised by one exclusive lock held across the mutation and
// the notification round, so a mutation runs to completion and every
// subscriber has seen it before the next mutation starts. Actions run on
// the caller's goroutine with no lock of their own; two actions interleave
// freely between their commits. There is no built-in cancellation: an
// action that resumes after it has been superseded still commits, and
// actions that care compare a request token before committing.
//
// A mutation or subscriber that calls Commit on its own goroutine gets
// ErrReentrantMutation instead of a deadlock. Subscribers may read State
// and getters while they are being notified.
//
// # Read-only State
//
// State, StateOf, ActionContext.State and the trees given to subscribers
// and getters are deep copies (Module.Clone, or a reflective copy by
// default that keeps dynamic types and unexported fields). Writing to them
// cannot reach the live tree. Strict mode keeps a private copy of the state
// left by each commit and compares it before every commit and read, which
// catches writes through references a mutation stored from its payload:
//
//	items := []CartItem{{ID: 1, Quantity: 1}}
//	s.Commit("cart/setCartItems", items) // state now aliases items
//	items[0].Quantity = 5                // next commit fails with ErrStrictModeViolation
//
// # Errors
//
// Unknown names fail with ErrUnknownMutation, ErrUnknownAction or
// ErrUnknownGetter. A getter cycle fails with ErrGetterCycle. An action that
// returns an error is wrapped in *ActionError, which matches both
// ErrActionFailure and the cause; mutations it committed before failing
// stand. A failing mutation returns its error and skips notification; the
// engine does not roll back, so mutations validate before they write.
// Panicking subscribers and action observers are logged and skipped.
package store
