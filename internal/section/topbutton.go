package section

import (
	"github.com/charmbracelet/lipgloss"

	"portfolio-terminal/internal/theme"
	"portfolio-terminal/internal/view"
)

// TopButtonLabel is the text of the scroll-to-top button.
const TopButtonLabel = "▲ top [g]"

// TopButton is a right-aligned scroll-to-top affordance.
type TopButton struct{ base }

func (t TopButton) Render(p view.Props) view.Region {
	th := p.Theme
	btn := view.Background(t.text(th).Bold(true).Padding(0, 1), th, theme.TokenHighlight).Render(TopButtonLabel)
	row := t.style().Width(t.width).Align(lipgloss.Right).Render(btn)
	return view.Region{Theme: th, Body: row}
}
