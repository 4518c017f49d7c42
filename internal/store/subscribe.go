package store

import (
	"reflect"
	"slices"
	"sync"
	"time"
)

// Subscriber observes committed mutations. tree is the post-mutation state;
// it is shared by all subscribers of one notification round and must be
// treated as read-only.
type Subscriber func(rec MutationRecord, tree Tree)

type subscription struct {
	fn Subscriber
}

// SubscribeOption configures Subscribe.
type SubscribeOption func(*subscribeOptions)

type subscribeOptions struct {
	prepend bool
}

// Prepend places the subscriber ahead of those already registered.
func Prepend() SubscribeOption {
	return func(o *subscribeOptions) { o.prepend = true }
}

// Subscribe registers fn for every subsequent commit. The returned function
// removes it; calling it more than once is a no-op. Removing a subscriber
// while a notification is in flight takes effect from the next commit.
func (s *Store) Subscribe(fn Subscriber, opts ...SubscribeOption) (unsubscribe func()) {
	var o subscribeOptions
	for _, opt := range opts {
		opt(&o)
	}
	sub := &subscription{fn: fn}

	s.subsMu.Lock()
	if o.prepend {
		s.subs = append([]*subscription{sub}, s.subs...)
	} else {
		s.subs = append(s.subs, sub)
	}
	s.subsMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subsMu.Lock()
			defer s.subsMu.Unlock()
			s.subs = slices.DeleteFunc(s.subs, func(x *subscription) bool { return x == sub })
		})
	}
}

func (s *Store) notify(rec MutationRecord, tree Tree) {
	s.subsMu.Lock()
	round := slices.Clone(s.subs)
	s.subsMu.Unlock()

	for _, sub := range round {
		s.deliver(sub, rec, tree)
	}
}

func (s *Store) deliver(sub *subscription, rec MutationRecord, tree Tree) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("subscriber panicked", "mutation", rec.Type, "panic", r)
		}
	}()
	sub.fn(rec, tree)
}

// Watch calls cb whenever a commit changes the value fn derives from the
// state. Values are compared with reflect.DeepEqual.
func (s *Store) Watch(fn func(tree Tree, getters Getters) any, cb func(newValue, oldValue any)) (unwatch func()) {
	derive := func(tree Tree) any {
		e := &evaluation{store: s, tree: tree}
		return fn(tree, e.view(""))
	}
	current := derive(s.State())
	return s.Subscribe(func(_ MutationRecord, tree Tree) {
		next := derive(tree)
		if reflect.DeepEqual(next, current) {
			return
		}
		prev := current
		current = next
		cb(next, prev)
	})
}

// ActionRecord describes a dispatched action.
type ActionRecord struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// ActionObserver hooks into every dispatch. Before runs ahead of the action
// body with the state at that moment; exactly one of After or Error runs
// once it returns. Nil hooks are skipped.
type ActionObserver struct {
	Before func(rec ActionRecord, tree Tree)
	After  func(rec ActionRecord, tree Tree, result any, elapsed time.Duration)
	Error  func(rec ActionRecord, tree Tree, err error, elapsed time.Duration)
}

type actionSubscription struct {
	obs ActionObserver
}

// SubscribeAction registers obs for every subsequent dispatch.
func (s *Store) SubscribeAction(obs ActionObserver) (unsubscribe func()) {
	sub := &actionSubscription{obs: obs}
	s.subsMu.Lock()
	s.actionSubs = append(s.actionSubs, sub)
	s.subsMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subsMu.Lock()
			defer s.subsMu.Unlock()
			s.actionSubs = slices.DeleteFunc(s.actionSubs, func(x *actionSubscription) bool { return x == sub })
		})
	}
}

func (s *Store) actionObservers() []*actionSubscription {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	return slices.Clone(s.actionSubs)
}
