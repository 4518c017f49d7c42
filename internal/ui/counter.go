package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/statekit/internal/apps/counter"
	"github.com/five82/statekit/internal/store"
)

type counterView struct {
	Count  int
	Parity string
}

type counterScreen struct {
	vm      counterView
	loaded  bool
	pending int // incrementAsync calls in flight
}

// asyncDoneMsg reports that one incrementAsync call returned.
type asyncDoneMsg struct{}

func (counterScreen) title() string { return "counter" }

func (counterScreen) init(env) tea.Cmd { return nil }

func (counterScreen) project(s *store.Store, tree store.Tree) any {
	parity, err := counter.EvenOrOdd(s)
	if err != nil {
		parity = "?"
	}
	return counterView{Count: counter.Of(tree).Count, Parity: parity}
}

func (c counterScreen) update(e env, msg tea.Msg) (screen, tea.Cmd) {
	switch msg := msg.(type) {
	case StateMsg:
		if vm, ok := msg.View.(counterView); ok {
			c.vm = vm
			c.loaded = true
		}
	case asyncDoneMsg:
		if c.pending > 0 {
			c.pending--
		}
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, e.keys.Increment):
			return c, dispatch(e, counter.Increment)
		case key.Matches(msg, e.keys.Decrement):
			return c, dispatch(e, counter.Decrement)
		case key.Matches(msg, e.keys.IncrementIfOdd):
			return c, dispatch(e, counter.IncrementIfOdd)
		case key.Matches(msg, e.keys.IncrementAsync):
			c.pending++
			return c, incrementAsyncCmd(e)
		}
	}
	return c, nil
}

func incrementAsyncCmd(e env) tea.Cmd {
	return tea.Sequence(
		dispatch(e, func(ctx context.Context, s *store.Store) error {
			_, err := counter.IncrementAsync(ctx, s)
			return err
		}),
		func() tea.Msg { return asyncDoneMsg{} },
	)
}

func (c counterScreen) view(f frame) string {
	styles := f.styles
	var b strings.Builder

	count := styles.Text.Bold(true).Render(fmt.Sprintf("%d", c.vm.Count))
	b.WriteString(styles.MutedText.Render("Clicked: "))
	b.WriteString(count)
	b.WriteString(styles.MutedText.Render(" " + plural(c.vm.Count, "time", "times") + ", count is "))
	b.WriteString(styles.StatusStyle(c.vm.Parity).Render(c.vm.Parity))
	b.WriteString("\n")

	if c.pending > 0 {
		b.WriteString("\n")
		b.WriteString(styles.WarningText.Render(fmt.Sprintf("%d async %s pending", c.pending, plural(c.pending, "increment", "increments"))))
		b.WriteString("\n")
	}
	if !c.loaded {
		return styles.FaintText.Render("Waiting for state...")
	}
	return styles.Panel.Width(maxInt(f.width-2, 20)).Render(strings.TrimRight(b.String(), "\n"))
}

func (counterScreen) bindings(k keyMap) []key.Binding {
	return []key.Binding{k.Increment, k.Decrement, k.IncrementIfOdd, k.IncrementAsync}
}

func (counterScreen) capturing() bool { return false }

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
