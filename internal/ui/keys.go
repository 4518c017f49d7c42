package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all key bindings. Screens pick the subset they use.
type keyMap struct {
	// Global
	Quit       key.Binding
	Help       key.Binding
	CycleTheme key.Binding

	// Navigation
	Up      key.Binding
	Down    key.Binding
	Confirm key.Binding
	Cancel  key.Binding

	// Counter
	Increment      key.Binding
	Decrement      key.Binding
	IncrementIfOdd key.Binding
	IncrementAsync key.Binding

	// Cart
	AddToCart key.Binding
	Checkout  key.Binding

	// Todo
	NewTodo        key.Binding
	EditTodo       key.Binding
	ToggleTodo     key.Binding
	RemoveTodo     key.Binding
	ToggleAll      key.Binding
	ClearCompleted key.Binding
	CycleFilter    key.Binding

	// Chat
	Compose    key.Binding
	OpenThread key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "q"),
			key.WithHelp("q", "Quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "Help"),
		),
		CycleTheme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "Cycle theme"),
		),

		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/up", "Move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/down", "Move down"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Confirm"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "Cancel"),
		),

		Increment: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+", "Increment"),
		),
		Decrement: key.NewBinding(
			key.WithKeys("-"),
			key.WithHelp("-", "Decrement"),
		),
		IncrementIfOdd: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "Increment if odd"),
		),
		IncrementAsync: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "Increment async"),
		),

		AddToCart: key.NewBinding(
			key.WithKeys("enter", " "),
			key.WithHelp("enter", "Add to cart"),
		),
		Checkout: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "Checkout"),
		),

		NewTodo: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "New todo"),
		),
		EditTodo: key.NewBinding(
			key.WithKeys("e", "enter"),
			key.WithHelp("e", "Edit"),
		),
		ToggleTodo: key.NewBinding(
			key.WithKeys(" ", "x"),
			key.WithHelp("space", "Toggle"),
		),
		RemoveTodo: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "Delete"),
		),
		ToggleAll: key.NewBinding(
			key.WithKeys("A"),
			key.WithHelp("A", "Toggle all"),
		),
		ClearCompleted: key.NewBinding(
			key.WithKeys("C"),
			key.WithHelp("C", "Clear completed"),
		),
		CycleFilter: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "Cycle filter"),
		),

		Compose: key.NewBinding(
			key.WithKeys("i", "r"),
			key.WithHelp("i", "Write message"),
		),
		OpenThread: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Open thread"),
		),
	}
}

// ShortHelp returns key bindings for the short help view.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Confirm, k.Cancel},
		{k.CycleTheme, k.Help, k.Quit},
	}
}

// screenHelp combines a screen's bindings with the global ones for the
// help overlay.
type screenHelp struct {
	keys   keyMap
	screen []key.Binding
}

func (h screenHelp) ShortHelp() []key.Binding {
	return append(append([]key.Binding{}, h.screen...), h.keys.ShortHelp()...)
}

func (h screenHelp) FullHelp() [][]key.Binding {
	return append([][]key.Binding{h.screen}, h.keys.FullHelp()...)
}
