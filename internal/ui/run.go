package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/statekit/internal/bridge"
	"github.com/five82/statekit/internal/store"
)

// Run mounts opts.Store on a bridge and runs the Bubble Tea program until
// the user quits or the context is cancelled.
//
// The bridge's render callback runs while a commit holds the store, so it
// only projects the view model and hands it to a latest-wins mailbox; the
// mailbox goroutine performs the blocking Program.Send.
func Run(opts Options) error {
	m, err := New(opts)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(m.ctx)
	defer cancel()
	m.ctx = bridge.WithStore(ctx, opts.Store)

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	send := bridge.Async(ctx, func(msg StateMsg) { p.Send(msg) })
	project := m.screen.project
	b := bridge.New(opts.Store, func(tree store.Tree) {
		send(StateMsg{View: project(opts.Store, tree)})
	})
	initial := b.Mount()
	defer b.Unmount()
	send(StateMsg{View: project(opts.Store, initial)})

	_, err = p.Run()
	if err != nil && ctx.Err() != nil {
		return nil
	}
	return err
}
