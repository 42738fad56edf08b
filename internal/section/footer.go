package section

import (
	"github.com/charmbracelet/lipgloss"

	"portfolio-terminal/internal/view"
)

// ToggleHint is shown when the footer can switch themes.
const ToggleHint = "[t] or click here to toggle theme"

// Footer shows the credit line. When it receives a toggle callback it
// advertises the toggle and exposes the callback on its region.
type Footer struct{ base }

func (f Footer) Render(p view.Props) view.Region {
	c := f.content()
	th := p.Theme

	who := c.Profile.Nickname
	if who == "" {
		who = c.Profile.Name
	}

	center := f.muted(th).Width(f.width).Align(lipgloss.Center)
	lines := []string{"", center.Render("Made with ♥ by " + who)}
	if p.OnToggle != nil {
		lines = append(lines, center.Render(ToggleHint))
	}

	return view.Region{Theme: th, Body: lipgloss.JoinVertical(lipgloss.Left, lines...), Toggle: p.OnToggle}
}
