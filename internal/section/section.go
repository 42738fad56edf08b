// Package section implements the portfolio's leaf modules. Each module
// renders a self-contained region from the session theme and the current
// content snapshot; none of them can fail.
package section

import (
	"github.com/charmbracelet/lipgloss"

	"portfolio-terminal/internal/content"
	"portfolio-terminal/internal/theme"
	"portfolio-terminal/internal/view"
)

const defaultWidth = 80

// State colours shared by the charts and the pull request / issue lists.
const (
	colorOpen   = "#28A745"
	colorMerged = "#6F42C1"
	colorClosed = "#D73A49"
)

type base struct {
	src   content.Source
	r     *lipgloss.Renderer
	width int
}

func (b base) content() *content.Content {
	if b.src == nil {
		return &content.Content{}
	}
	if c := b.src.Snapshot(); c != nil {
		return c
	}
	return &content.Content{}
}

func (b base) style() lipgloss.Style { return b.r.NewStyle() }

func (b base) text(th *theme.Theme) lipgloss.Style {
	return view.Foreground(b.style(), th, theme.TokenText)
}

func (b base) muted(th *theme.Theme) lipgloss.Style {
	return view.Foreground(b.style(), th, theme.TokenSecondaryText)
}

func (b base) heading(th *theme.Theme, title string) string {
	return view.Heading(b.r, th, title)
}

func (b base) empty(th *theme.Theme, what string) string {
	return b.muted(th).Italic(true).Render("No " + what + " yet.")
}

func (b base) stateStyle(state string) lipgloss.Style {
	s := b.style().Bold(true)
	switch state {
	case content.StateOpen:
		return s.Foreground(lipgloss.Color(colorOpen))
	case content.StateMerged:
		return s.Foreground(lipgloss.Color(colorMerged))
	case content.StateClosed:
		return s.Foreground(lipgloss.Color(colorClosed))
	}
	return s
}

// New builds the full leaf set for one renderer. width is the usable
// column count; values below 20 fall back to 80.
func New(src content.Source, r *lipgloss.Renderer, width int) view.Leaves {
	if r == nil {
		r = lipgloss.DefaultRenderer()
	}
	if width < 20 {
		width = defaultWidth
	}
	b := base{src: src, r: r, width: width}
	return view.Leaves{
		Renderer:         r,
		Header:           Header{b},
		Footer:           Footer{b},
		Greeting:         newGreeting(b),
		Skills:           Skills{b},
		TopButton:        TopButton{b},
		PullRequestChart: PullRequestChart{b},
		IssueChart:       IssueChart{b},
		Organizations:    Organizations{b},
		PullRequests:     PullRequests{b},
		Issues:           Issues{b},
	}
}
