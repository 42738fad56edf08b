package section

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"portfolio-terminal/internal/content"
	"portfolio-terminal/internal/theme"
	"portfolio-terminal/internal/view"
)

const (
	barGlyph   = "█"
	labelWidth = 8
)

type bar struct {
	label string
	count int
	color string
}

// PullRequestChart draws open/merged/closed pull request counts.
type PullRequestChart struct{ base }

func (c PullRequestChart) Render(p view.Props) view.Region {
	counts := c.content().PullRequestCounts()
	return view.Region{Theme: p.Theme, Body: c.chart(p.Theme, "Pull Requests", "pull requests", counts.Total(), []bar{
		{label: "Open", count: counts.Open, color: colorOpen},
		{label: "Merged", count: counts.Merged, color: colorMerged},
		{label: "Closed", count: counts.Closed, color: colorClosed},
	})}
}

// IssueChart draws open/closed issue counts.
type IssueChart struct{ base }

func (c IssueChart) Render(p view.Props) view.Region {
	counts := c.content().IssueCounts()
	return view.Region{Theme: p.Theme, Body: c.chart(p.Theme, "Issues", "issues", counts.Total(), []bar{
		{label: "Open", count: counts.Open, color: colorOpen},
		{label: "Closed", count: counts.Closed, color: colorClosed},
	})}
}

func (b base) chart(th *theme.Theme, title, what string, total int, bars []bar) string {
	lines := []string{b.text(th).Bold(true).Render(fmt.Sprintf("%s (%d)", title, total))}
	if total == 0 {
		return strings.Join(append(lines, b.empty(th, what), ""), "\n")
	}

	peak := 0
	for _, br := range bars {
		peak = max(peak, br.count)
	}
	room := max(b.width-labelWidth-8, 1)

	label := b.text(th).Width(labelWidth)
	for _, br := range bars {
		n := 0
		if peak > 0 {
			n = br.count * room / peak
		}
		if br.count > 0 && n == 0 {
			n = 1
		}
		fill := b.style().Foreground(lipgloss.Color(br.color)).Render(strings.Repeat(barGlyph, n))
		lines = append(lines, label.Render(br.label)+fill+b.muted(th).Render(fmt.Sprintf(" %d", br.count)))
	}
	return strings.Join(append(lines, ""), "\n")
}

func stateLabel(state string) string {
	switch state {
	case content.StateOpen, content.StateMerged, content.StateClosed:
		return strings.ToUpper(state)
	}
	return "?"
}
