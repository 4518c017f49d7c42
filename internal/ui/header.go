package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// renderMain renders header, command bar and the active screen.
func (m Model) renderMain() string {
	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderCommandBar())
	b.WriteString("\n")
	b.WriteString(m.screen.view(m.frame()))
	return b.String()
}

// renderHeader renders the status line: demo name, store mode, number of
// state updates seen and the latest notice or error.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	parts := []string{
		bg.Render("statekit", styles.Logo),
		bg.Render(m.screen.title(), styles.Text.Bold(true)),
	}

	if m.store.Strict() {
		parts = append(parts, bg.Render("strict", styles.WarningText))
	}

	parts = append(parts,
		bg.Render("Updates:", styles.MutedText)+bg.Space()+
			bg.Render(fmt.Sprintf("%d", m.updates), styles.Text),
	)

	if !m.lastUpdated.IsZero() {
		parts = append(parts, bg.Render(m.lastUpdated.Format("15:04:05"), styles.MutedText))
	}

	compact := m.width < 100
	limit := 80
	if compact {
		limit = 40
	}
	switch {
	case m.errText != "":
		parts = append(parts,
			bg.Render("ERROR", styles.DangerText.Bold(true))+bg.Space()+
				bg.Render(truncate(m.errText, limit), styles.DangerText),
		)
	case m.notice != "":
		parts = append(parts,
			bg.Render("!", styles.WarningText.Bold(true))+bg.Space()+
				bg.Render(truncate(m.notice, limit), styles.WarningText),
		)
	}

	return lipgloss.NewStyle().
		Background(lipgloss.Color(m.theme.Surface)).
		Foreground(lipgloss.Color(m.theme.Text)).
		Width(m.width).
		Render(bg.Join(parts, "  "))
}

// renderCommandBar renders the key:desc segments for the active screen.
func (m Model) renderCommandBar() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	colon := bg.Sep(":")
	sep := bg.Spaces(2)

	bindings := m.screen.bindings(m.keys)
	segments := make([]string, 0, len(bindings)+2)
	for _, b := range bindings {
		h := b.Help()
		segments = append(segments,
			bg.Render(h.Key, styles.AccentText)+colon+bg.Render(h.Desc, styles.MutedText))
	}
	if m.screen.capturing() {
		segments = []string{
			bg.Render("enter", styles.AccentText) + colon + bg.Render("Save", styles.MutedText),
			bg.Render("esc", styles.AccentText) + colon + bg.Render("Cancel", styles.MutedText),
		}
	} else {
		segments = append(segments,
			bg.Render("?", styles.AccentText)+colon+bg.Render("More", styles.MutedText))
	}

	segments = append(segments,
		bg.Render("T", styles.AccentText)+colon+bg.Render(m.theme.Name, styles.FaintText))

	return styles.Header.Width(m.width).Render(strings.Join(segments, sep))
}
