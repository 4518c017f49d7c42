package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/statekit/internal/apps/todo"
	"github.com/five82/statekit/internal/store"
)

var todoFilters = []todo.Filter{todo.FilterAll, todo.FilterActive, todo.FilterCompleted}

type todoView struct {
	All        []todo.Todo
	Active     []todo.Todo
	Completed  []todo.Todo
	Remaining  int
	AllChecked bool
}

func (v todoView) list(f todo.Filter) []todo.Todo {
	switch f {
	case todo.FilterActive:
		return v.Active
	case todo.FilterCompleted:
		return v.Completed
	default:
		return v.All
	}
}

type todoScreen struct {
	vm     todoView
	filter todo.Filter
	cursor int

	input   textinput.Model
	editing *todo.Todo // nil while adding
}

func newTodoScreen() todoScreen {
	in := textinput.New()
	in.Placeholder = "What needs to be done?"
	in.CharLimit = 200
	return todoScreen{filter: todo.FilterAll, input: in}
}

func (todoScreen) title() string { return "todos" }

func (todoScreen) init(e env) tea.Cmd {
	return dispatch(e, todo.Load)
}

func (todoScreen) project(s *store.Store, tree store.Tree) any {
	g := s.Getters()
	active, _ := store.GetAs[[]todo.Todo](g, "active")
	completed, _ := store.GetAs[[]todo.Todo](g, "completed")
	allChecked, _ := store.GetAs[bool](g, "allChecked")
	remaining, _ := todo.Remaining(g)
	return todoView{
		All:        todo.Of(tree).Todos,
		Active:     active,
		Completed:  completed,
		Remaining:  remaining,
		AllChecked: allChecked,
	}
}

func (t todoScreen) visible() []todo.Todo {
	return t.vm.list(t.filter)
}

func (t todoScreen) selected() (todo.Todo, bool) {
	items := t.visible()
	if t.cursor < 0 || t.cursor >= len(items) {
		return todo.Todo{}, false
	}
	return items[t.cursor], true
}

func (t todoScreen) update(e env, msg tea.Msg) (screen, tea.Cmd) {
	switch msg := msg.(type) {
	case StateMsg:
		if vm, ok := msg.View.(todoView); ok {
			t.vm = vm
			t.cursor = moveCursor(t.cursor, 0, len(t.visible()))
		}
		return t, nil
	case tea.KeyMsg:
		if t.input.Focused() {
			return t.updateInput(e, msg)
		}
		return t.handleKey(e, msg)
	}
	if t.input.Focused() {
		var cmd tea.Cmd
		t.input, cmd = t.input.Update(msg)
		return t, cmd
	}
	return t, nil
}

func (t todoScreen) handleKey(e env, msg tea.KeyMsg) (screen, tea.Cmd) {
	n := len(t.visible())
	switch {
	case key.Matches(msg, e.keys.Up):
		t.cursor = moveCursor(t.cursor, -1, n)
	case key.Matches(msg, e.keys.Down):
		t.cursor = moveCursor(t.cursor, 1, n)
	case key.Matches(msg, e.keys.NewTodo):
		t.editing = nil
		t.input.SetValue("")
		return t, t.input.Focus()
	case key.Matches(msg, e.keys.EditTodo):
		sel, ok := t.selected()
		if !ok {
			return t, nil
		}
		t.editing = &sel
		t.input.SetValue(sel.Text)
		t.input.CursorEnd()
		return t, t.input.Focus()
	case key.Matches(msg, e.keys.ToggleTodo):
		if sel, ok := t.selected(); ok {
			return t, dispatch(e, func(ctx context.Context, s *store.Store) error {
				return todo.Toggle(ctx, s, sel)
			})
		}
	case key.Matches(msg, e.keys.RemoveTodo):
		if sel, ok := t.selected(); ok {
			return t, dispatch(e, func(ctx context.Context, s *store.Store) error {
				return todo.Remove(ctx, s, sel)
			})
		}
	case key.Matches(msg, e.keys.ToggleAll):
		done := !t.vm.AllChecked
		return t, dispatch(e, func(ctx context.Context, s *store.Store) error {
			return todo.ToggleAll(ctx, s, done)
		})
	case key.Matches(msg, e.keys.ClearCompleted):
		return t, dispatch(e, todo.ClearCompleted)
	case key.Matches(msg, e.keys.CycleFilter):
		t.filter = nextFilter(t.filter)
		t.cursor = moveCursor(t.cursor, 0, len(t.visible()))
	}
	return t, nil
}

func (t todoScreen) updateInput(e env, msg tea.KeyMsg) (screen, tea.Cmd) {
	switch {
	case key.Matches(msg, e.keys.Cancel):
		t.input.Blur()
		t.editing = nil
		return t, nil
	case key.Matches(msg, e.keys.Confirm):
		text := cleanInput(t.input.Value())
		editing := t.editing
		t.input.Blur()
		t.input.SetValue("")
		t.editing = nil
		return t, t.submit(e, editing, text)
	}
	var cmd tea.Cmd
	t.input, cmd = t.input.Update(msg)
	return t, cmd
}

// submit adds a new todo, or edits an existing one. Clearing the text of
// an existing todo removes it.
func (t todoScreen) submit(e env, editing *todo.Todo, text string) tea.Cmd {
	switch {
	case editing == nil && text == "":
		return nil
	case editing == nil:
		return dispatch(e, func(ctx context.Context, s *store.Store) error {
			_, err := todo.Add(ctx, s, text)
			return err
		})
	case text == "":
		target := *editing
		return dispatch(e, func(ctx context.Context, s *store.Store) error {
			return todo.Remove(ctx, s, target)
		})
	case text == editing.Text:
		return nil
	default:
		target := *editing
		return dispatch(e, func(ctx context.Context, s *store.Store) error {
			return todo.EditTodo(ctx, s, target, text)
		})
	}
}

func nextFilter(f todo.Filter) todo.Filter {
	for i, name := range todoFilters {
		if name == f {
			return todoFilters[(i+1)%len(todoFilters)]
		}
	}
	return todo.FilterAll
}

func (t todoScreen) view(f frame) string {
	styles := f.styles
	width := maxInt(f.width-2, 30)
	var b strings.Builder

	prompt := styles.FaintText.Render("n to add a todo")
	if t.input.Focused() {
		label := "New"
		if t.editing != nil {
			label = "Edit"
		}
		prompt = styles.AccentText.Render(label+": ") + t.input.View()
	}
	b.WriteString(prompt)
	b.WriteString("\n\n")

	items := t.visible()
	if len(items) == 0 {
		b.WriteString(styles.FaintText.Render("Nothing here."))
		b.WriteString("\n")
	}
	textWidth := maxInt(width-12, 10)
	for i, item := range items {
		mark, status := "[ ]", "open"
		textStyle := styles.Text
		if item.Done {
			mark, status = "[x]", "done"
			textStyle = styles.FaintText.Strikethrough(true)
		}
		line := mark + " " + truncate(item.Text, textWidth)
		if i == t.cursor && !t.input.Focused() {
			b.WriteString(styles.Selected.Render(padRight(line, textWidth+4)))
		} else {
			b.WriteString(styles.StatusStyle(status).Render(mark))
			b.WriteString(" ")
			b.WriteString(textStyle.Render(truncate(item.Text, textWidth)))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(t.renderFooter(styles))
	return styles.Panel.Width(width).Render(b.String())
}

func (t todoScreen) renderFooter(styles Styles) string {
	left := styles.MutedText.Render(fmt.Sprintf("%d %s left", t.vm.Remaining, plural(t.vm.Remaining, "item", "items")))
	filters := make([]string, 0, len(todoFilters))
	for _, name := range todoFilters {
		label := string(name)
		if name == t.filter {
			filters = append(filters, styles.AccentText.Bold(true).Render(label))
		} else {
			filters = append(filters, styles.FaintText.Render(label))
		}
	}
	footer := left + "   " + strings.Join(filters, styles.FaintText.Render(" / "))
	if done := len(t.vm.Completed); done > 0 {
		footer += "   " + styles.MutedText.Render(fmt.Sprintf("C: clear %d completed", done))
	}
	return footer
}

func (todoScreen) bindings(k keyMap) []key.Binding {
	return []key.Binding{k.NewTodo, k.EditTodo, k.ToggleTodo, k.RemoveTodo, k.ToggleAll, k.ClearCompleted, k.CycleFilter}
}

func (t todoScreen) capturing() bool { return t.input.Focused() }
