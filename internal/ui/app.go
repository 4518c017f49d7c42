// Package ui provides the Bubble Tea front end for the statekit demos.
package ui

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/statekit/internal/prefs"
	"github.com/five82/statekit/internal/store"
)

// Options configures the UI.
type Options struct {
	Context   context.Context
	Demo      string
	Store     *store.Store
	ThemeName string
	PrefsPath string
}

// Model is the root application state for Bubble Tea.
type Model struct {
	ctx       context.Context
	store     *store.Store
	prefsPath string

	theme  Theme
	keys   keyMap
	help   help.Model
	width  int
	height int
	ready  bool

	screen      screen
	updates     int
	lastUpdated time.Time

	showHelp bool
	notice   string
	errText  string
}

// New creates the root model for opts.Demo.
func New(opts Options) (Model, error) {
	if opts.Store == nil {
		return Model{}, errors.New("ui: store is required")
	}
	scr, err := newScreen(opts.Demo)
	if err != nil {
		return Model{}, err
	}

	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	themeName := opts.ThemeName
	if themeName == "" {
		themeName = ThemeNames()[0]
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	return Model{
		ctx:       ctx,
		store:     opts.Store,
		prefsPath: prefsPath,
		theme:     GetTheme(themeName),
		keys:      DefaultKeyMap(),
		help:      help.New(),
		screen:    scr,
	}, nil
}

func (m Model) env() env {
	return env{ctx: m.ctx, store: m.store, keys: m.keys}
}

func (m Model) frame() frame {
	return frame{
		theme:  m.theme,
		styles: m.theme.Styles(),
		width:  m.width,
		height: m.height,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(tea.EnterAltScreen, m.screen.init(m.env()))
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.help.Width = msg.Width
		return m.forward(msg)

	case StateMsg:
		m.updates++
		m.lastUpdated = time.Now()
		m.errText = ""
		return m.forward(msg)

	case errMsg:
		m.errText = msg.err.Error()
		m.notice = ""
		return m, nil

	case noticeMsg:
		m.notice = string(msg)
		return m, nil
	}

	return m.forward(msg)
}

func (m Model) forward(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.screen, cmd = m.screen.update(m.env(), msg)
	return m, cmd
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	return m.renderMain()
}

// handleKey processes keyboard input. Global keys are skipped while the
// screen has a focused text input, except ctrl+c.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}

	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	if m.screen.capturing() {
		return m.forward(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil
	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		if m.prefsPath != "" {
			_ = prefs.SetTheme(m.prefsPath, m.theme.Name)
		}
		return m, nil
	}

	m.notice = ""
	return m.forward(msg)
}
