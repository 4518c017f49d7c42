// Package logger provides a store plugin that records every mutation and
// action in human-readable form.
package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/five82/statekit/internal/store"
)

// Options configure the logger plugin. The zero value logs mutations and
// actions to slog.Default in expanded form.
type Options struct {
	Logger *slog.Logger

	// Writer, when set, also receives each formatted record. Write errors
	// are ignored.
	Writer io.Writer

	// Collapsed renders each record on a single line.
	Collapsed bool

	Filter       func(rec store.MutationRecord, prev, next store.Tree) bool
	ActionFilter func(rec store.ActionRecord, tree store.Tree) bool

	Transformer         func(store.Tree) any
	MutationTransformer func(store.MutationRecord) any
	ActionTransformer   func(store.ActionRecord) any

	SkipMutations bool
	SkipActions   bool

	Clock func() time.Time
}

// Elide replaces the state with "..." in records.
func Elide(store.Tree) any { return "..." }

// JSON renders v as a JSON string.
func JSON[T any](v T) any {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}

// New returns the logger plugin.
func New(opts Options) store.Plugin {
	return func(s *store.Store) {
		l := &pluginLogger{opts: opts, prev: s.State()}
		if l.opts.Logger == nil {
			l.opts.Logger = s.Logger()
		}
		if l.opts.Clock == nil {
			l.opts.Clock = time.Now
		}
		if !opts.SkipMutations {
			s.Subscribe(l.mutation)
		}
		if !opts.SkipActions {
			s.SubscribeAction(store.ActionObserver{Before: l.action})
		}
	}
}

type pluginLogger struct {
	opts Options

	mu   sync.Mutex
	prev store.Tree
}

func (l *pluginLogger) mutation(rec store.MutationRecord, next store.Tree) {
	l.mu.Lock()
	prev := l.prev
	l.prev = next
	l.mu.Unlock()

	// A broken transformer or writer must never surface in the commit.
	defer l.recover("mutation", rec.Type)

	if l.opts.Filter != nil && !l.opts.Filter(rec, prev, next) {
		return
	}
	entry := mutationEntry{
		Type:     rec.Type,
		At:       l.opts.Clock(),
		Prev:     render(l.state(prev)),
		Mutation: render(l.mutationValue(rec)),
		Next:     render(l.state(next)),
	}
	l.opts.Logger.Info("mutation",
		"type", entry.Type,
		"mutation", entry.Mutation,
		"prev", entry.Prev,
		"next", entry.Next,
	)
	l.write(entry.format(l.opts.Collapsed))
}

func (l *pluginLogger) action(rec store.ActionRecord, tree store.Tree) {
	defer l.recover("action", rec.Type)

	if l.opts.ActionFilter != nil && !l.opts.ActionFilter(rec, tree) {
		return
	}
	entry := actionEntry{
		Type:   rec.Type,
		At:     l.opts.Clock(),
		Action: render(l.actionValue(rec)),
		State:  render(l.state(tree)),
	}
	l.opts.Logger.Info("action", "type", entry.Type, "action", entry.Action, "state", entry.State)
	l.write(entry.format(l.opts.Collapsed))
}

func (l *pluginLogger) state(t store.Tree) any {
	if l.opts.Transformer != nil {
		return l.opts.Transformer(t)
	}
	return stateView(t)
}

func (l *pluginLogger) mutationValue(rec store.MutationRecord) any {
	if l.opts.MutationTransformer != nil {
		return l.opts.MutationTransformer(rec)
	}
	return rec
}

func (l *pluginLogger) actionValue(rec store.ActionRecord) any {
	if l.opts.ActionTransformer != nil {
		return l.opts.ActionTransformer(rec)
	}
	return rec
}

func (l *pluginLogger) write(text string) {
	if l.opts.Writer == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	_, _ = io.WriteString(l.opts.Writer, text)
}

func (l *pluginLogger) recover(kind, name string) {
	if r := recover(); r != nil {
		l.opts.Logger.Warn("logger plugin failed", "kind", kind, "type", name, "panic", r)
	}
}

// stateView drops the tree wrapper when only the root module exists and
// names the root "root" otherwise.
func stateView(t store.Tree) any {
	if len(t) == 1 {
		if v, ok := t[store.RootPath]; ok {
			return v
		}
	}
	out := make(map[string]any, len(t))
	for path, v := range t {
		if path == store.RootPath {
			if _, empty := v.(store.Empty); empty {
				continue
			}
			path = "root"
		}
		out[path] = v
	}
	return out
}

func render(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%+v", v)
	}
	return string(data)
}

const timeLayout = "15:04:05.000"

type mutationEntry struct {
	Type     string
	At       time.Time
	Prev     string
	Mutation string
	Next     string
}

func (e mutationEntry) format(collapsed bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "mutation %s @ %s", e.Type, e.At.Format(timeLayout))
	if collapsed {
		fmt.Fprintf(&b, " prev=%s mutation=%s next=%s\n", e.Prev, e.Mutation, e.Next)
		return b.String()
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "  prev state: %s\n", e.Prev)
	fmt.Fprintf(&b, "  mutation:   %s\n", e.Mutation)
	fmt.Fprintf(&b, "  next state: %s\n", e.Next)
	return b.String()
}

type actionEntry struct {
	Type   string
	At     time.Time
	Action string
	State  string
}

func (e actionEntry) format(collapsed bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "action %s @ %s", e.Type, e.At.Format(timeLayout))
	if collapsed {
		fmt.Fprintf(&b, " action=%s state=%s\n", e.Action, e.State)
		return b.String()
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "  action:     %s\n", e.Action)
	fmt.Fprintf(&b, "  state:      %s\n", e.State)
	return b.String()
}
