package section

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"portfolio-terminal/internal/theme"
	"portfolio-terminal/internal/view"
)

// NavHint lists the page keys shown under the name.
const NavHint = "[1] home   [2] open source   [t] theme   [q] quit"

// Header shows the owner's name and the navigation keys.
type Header struct{ base }

func (h Header) Render(p view.Props) view.Region {
	c := h.content()
	th := p.Theme

	nameStyle := view.Foreground(h.style().Bold(true), th, theme.TokenHeaderColor)
	if _, ok := th.Lookup(theme.TokenHeaderColor); !ok {
		nameStyle = h.text(th).Bold(true)
	}

	name := nameStyle.Render("‹ " + c.Profile.Name + " /›")
	lines := []string{name}
	if loc := strings.TrimSpace(c.Profile.Location); loc != "" {
		lines = append(lines, h.muted(th).Render(loc))
	}
	lines = append(lines, h.muted(th).Render(NavHint))

	box := h.style().
		Width(h.width).
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true)
	if v := th.Value(theme.TokenHighlight); v != "" {
		box = box.BorderForeground(lipgloss.Color(v))
	}

	return view.Region{Theme: th, Body: box.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))}
}
