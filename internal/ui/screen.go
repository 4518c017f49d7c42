package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/statekit/internal/store"
)

// screen is one demo's view. Screens are values: update returns the
// replacement, as tea.Model does.
type screen interface {
	// title names the demo in the header.
	title() string
	// init returns the command that loads the demo's initial data.
	init(env env) tea.Cmd
	// project builds the view model for a committed tree. It runs on the
	// committing goroutine and must only read tree and getters.
	project(s *store.Store, tree store.Tree) any
	update(env env, msg tea.Msg) (screen, tea.Cmd)
	view(f frame) string
	// bindings lists the screen's keys for the command bar and help.
	bindings(k keyMap) []key.Binding
	// capturing reports whether a text input has focus, in which case
	// only ctrl+c is handled globally.
	capturing() bool
}

// env carries what screens need to dispatch.
type env struct {
	ctx   context.Context
	store *store.Store
	keys  keyMap
}

// frame carries what screens need to render.
type frame struct {
	theme  Theme
	styles Styles
	width  int
	height int
}

// StateMsg carries a view model projected from a committed state tree.
type StateMsg struct {
	View any
}

// errMsg reports a failed dispatch.
type errMsg struct{ err error }

// noticeMsg is a transient line shown in the header.
type noticeMsg string

// dispatch runs fn in a command so the store is never entered from Update.
func dispatch(e env, fn func(context.Context, *store.Store) error) tea.Cmd {
	return func() tea.Msg {
		if err := fn(e.ctx, e.store); err != nil {
			return errMsg{err: err}
		}
		return nil
	}
}

// dispatchNotice is dispatch with a success notice.
func dispatchNotice(e env, fn func(context.Context, *store.Store) (string, error)) tea.Cmd {
	return func() tea.Msg {
		notice, err := fn(e.ctx, e.store)
		if err != nil {
			return errMsg{err: err}
		}
		if notice == "" {
			return nil
		}
		return noticeMsg(notice)
	}
}

func newScreen(demo string) (screen, error) {
	switch demo {
	case "counter":
		return counterScreen{}, nil
	case "cart":
		return cartScreen{}, nil
	case "todo":
		return newTodoScreen(), nil
	case "chat":
		return newChatScreen(), nil
	default:
		return nil, fmt.Errorf("unknown demo %q", demo)
	}
}

// moveCursor clamps cursor+delta into [0, n).
func moveCursor(cursor, delta, n int) int {
	if n <= 0 {
		return 0
	}
	cursor += delta
	if cursor < 0 {
		return 0
	}
	if cursor >= n {
		return n - 1
	}
	return cursor
}
