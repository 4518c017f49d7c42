package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/statekit/internal/api"
	"github.com/five82/statekit/internal/apps/chat"
	"github.com/five82/statekit/internal/store"
)

const threadPaneWidth = 28

type chatView struct {
	Threads  []chat.Thread
	Current  chat.Thread
	Messages []api.Message
	Unread   int
}

type chatScreen struct {
	vm     chatView
	cursor int

	input    textinput.Model
	messages viewport.Model
}

func newChatScreen() chatScreen {
	in := textinput.New()
	in.Placeholder = "Write a message"
	in.CharLimit = 500
	return chatScreen{input: in, messages: viewport.New(40, 10)}
}

func (chatScreen) title() string { return "chat" }

func (chatScreen) init(e env) tea.Cmd {
	return dispatch(e, chat.GetAllMessages)
}

func (chatScreen) project(s *store.Store, tree store.Tree) any {
	g := s.Getters()
	current, _ := chat.CurrentThread(g)
	msgs, _ := chat.SortedMessages(g)
	unread, _ := chat.UnreadCount(g)
	return chatView{
		Threads:  chat.Threads(tree),
		Current:  current,
		Messages: msgs,
		Unread:   unread,
	}
}

func (c chatScreen) update(e env, msg tea.Msg) (screen, tea.Cmd) {
	switch msg := msg.(type) {
	case StateMsg:
		if vm, ok := msg.View.(chatView); ok {
			prev := c.vm.Current.ID
			c.vm = vm
			if vm.Current.ID != prev {
				c.cursor = c.currentIndex()
			} else {
				c.cursor = moveCursor(c.cursor, 0, len(vm.Threads))
			}
			c.refreshMessages()
		}
		return c, nil
	case tea.WindowSizeMsg:
		c.resize(msg.Width, msg.Height)
		return c, nil
	case tea.KeyMsg:
		if c.input.Focused() {
			return c.updateInput(e, msg)
		}
		return c.handleKey(e, msg)
	}
	if c.input.Focused() {
		var cmd tea.Cmd
		c.input, cmd = c.input.Update(msg)
		return c, cmd
	}
	return c, nil
}

func (c chatScreen) handleKey(e env, msg tea.KeyMsg) (screen, tea.Cmd) {
	switch {
	case key.Matches(msg, e.keys.Up):
		c.cursor = moveCursor(c.cursor, -1, len(c.vm.Threads))
	case key.Matches(msg, e.keys.Down):
		c.cursor = moveCursor(c.cursor, 1, len(c.vm.Threads))
	case key.Matches(msg, e.keys.OpenThread):
		if c.cursor < 0 || c.cursor >= len(c.vm.Threads) {
			return c, nil
		}
		id := c.vm.Threads[c.cursor].ID
		if id == c.vm.Current.ID {
			return c, nil
		}
		return c, dispatch(e, func(ctx context.Context, s *store.Store) error {
			return chat.SwitchThread(ctx, s, id)
		})
	case key.Matches(msg, e.keys.Compose):
		if c.vm.Current.ID == "" {
			return c, nil
		}
		c.input.SetValue("")
		return c, c.input.Focus()
	default:
		var cmd tea.Cmd
		c.messages, cmd = c.messages.Update(msg)
		return c, cmd
	}
	return c, nil
}

func (c chatScreen) updateInput(e env, msg tea.KeyMsg) (screen, tea.Cmd) {
	switch {
	case key.Matches(msg, e.keys.Cancel):
		c.input.Blur()
		return c, nil
	case key.Matches(msg, e.keys.Confirm):
		text := cleanInput(c.input.Value())
		c.input.SetValue("")
		if text == "" {
			return c, nil
		}
		thread := api.ThreadRef{ID: c.vm.Current.ID, Name: c.vm.Current.Name}
		return c, dispatch(e, func(ctx context.Context, s *store.Store) error {
			_, err := chat.SendMessage(ctx, s, text, thread)
			return err
		})
	}
	var cmd tea.Cmd
	c.input, cmd = c.input.Update(msg)
	return c, cmd
}

func (c chatScreen) currentIndex() int {
	for i, t := range c.vm.Threads {
		if t.ID == c.vm.Current.ID {
			return i
		}
	}
	return moveCursor(c.cursor, 0, len(c.vm.Threads))
}

// resize fits the message pane into the space right of the thread list,
// leaving room for the thread name and the input line.
func (c *chatScreen) resize(width, height int) {
	c.messages.Width = maxInt(width-threadPaneWidth-6, 20)
	c.messages.Height = maxInt(height-9, 3)
	c.input.Width = maxInt(c.messages.Width-4, 10)
	c.refreshMessages()
}

func (c *chatScreen) refreshMessages() {
	var b strings.Builder
	for i, m := range c.vm.Messages {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s  %s\n%s\n", m.AuthorName, formatClock(m.Timestamp), m.Text)
	}
	c.messages.SetContent(b.String())
	c.messages.GotoBottom()
}

func (c chatScreen) view(f frame) string {
	styles := f.styles
	threads := styles.Panel.Width(threadPaneWidth).Render(c.renderThreads(f))

	var b strings.Builder
	name := c.vm.Current.Name
	if name == "" {
		name = "Messages"
	}
	b.WriteString(styles.AccentText.Bold(true).Render(name))
	b.WriteString("\n")
	b.WriteString(c.messages.View())
	b.WriteString("\n")
	if c.input.Focused() {
		b.WriteString(c.input.View())
	} else {
		b.WriteString(styles.FaintText.Render("i to write a message"))
	}
	section := styles.FocusPanel.Width(c.messages.Width + 2).Render(b.String())

	return lipgloss.JoinHorizontal(lipgloss.Top, threads, section)
}

func (c chatScreen) renderThreads(f frame) string {
	styles := f.styles
	var b strings.Builder
	b.WriteString(styles.AccentText.Bold(true).Render("Threads"))
	if c.vm.Unread > 0 {
		b.WriteString(" ")
		b.WriteString(styles.StatusStyle("unread").Render(fmt.Sprintf("%d", c.vm.Unread)))
	}
	for i, t := range c.vm.Threads {
		b.WriteString("\n")
		name := truncate(t.Name, threadPaneWidth-6)
		preview := ""
		unread := false
		if t.LastMessage != nil {
			preview = truncate(t.LastMessage.Text, threadPaneWidth-6)
			unread = !t.LastMessage.IsRead
		}
		marker := "  "
		if unread {
			marker = "• "
		}
		switch {
		case i == c.cursor && !c.input.Focused():
			b.WriteString(styles.Selected.Render(padRight(marker+name, threadPaneWidth-4)))
		case t.ID == c.vm.Current.ID:
			b.WriteString(styles.AccentText.Render(marker + name))
		case unread:
			b.WriteString(styles.WarningText.Render(marker + name))
		default:
			b.WriteString(styles.Text.Render(marker + name))
		}
		if preview != "" {
			b.WriteString("\n")
			b.WriteString(styles.FaintText.Render("  " + preview))
		}
	}
	return b.String()
}

func (chatScreen) bindings(k keyMap) []key.Binding {
	return []key.Binding{k.Up, k.Down, k.OpenThread, k.Compose}
}

func (c chatScreen) capturing() bool { return c.input.Focused() }
