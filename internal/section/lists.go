package section

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"portfolio-terminal/internal/theme"
	"portfolio-terminal/internal/view"
)

// Organizations lists the organizations contributed to.
type Organizations struct{ base }

func (o Organizations) Render(p view.Props) view.Region {
	c := o.content()
	th := p.Theme

	parts := []string{o.heading(th, "Contributed Organizations")}
	if len(c.Organizations) == 0 {
		parts = append(parts, o.empty(th, "organizations"))
		return view.Region{Theme: th, Body: strings.Join(parts, "\n")}
	}

	chip := view.Foreground(o.style().Bold(true).Padding(0, 1), th, theme.TokenText)
	chip = view.Background(chip, th, theme.TokenCompImgHighlight)

	var rows []string
	var row []string
	used := 0
	for _, org := range c.Organizations {
		rendered := chip.Render(org.Login)
		w := lipgloss.Width(rendered) + 1
		if used > 0 && used+w > o.width {
			rows = append(rows, strings.Join(row, " "))
			row, used = nil, 0
		}
		row = append(row, rendered)
		used += w
	}
	if len(row) > 0 {
		rows = append(rows, strings.Join(row, " "))
	}

	return view.Region{Theme: th, Body: strings.Join(append(parts, rows...), "\n")}
}

// PullRequests lists pull requests with their state and size.
type PullRequests struct{ base }

func (l PullRequests) Render(p view.Props) view.Region {
	c := l.content()
	th := p.Theme

	parts := []string{l.heading(th, "Pull Requests")}
	if len(c.PullRequests) == 0 {
		parts = append(parts, l.empty(th, "pull requests"))
		return view.Region{Theme: th, Body: strings.Join(parts, "\n")}
	}

	title := l.text(th).Bold(true)
	meta := l.muted(th).PaddingLeft(9)
	for _, pr := range c.PullRequests {
		badge := l.stateStyle(pr.State).Width(9).Render(stateLabel(pr.State))
		parts = append(parts,
			badge+title.Render(pr.Title),
			meta.Render(fmt.Sprintf("%s#%d  +%d −%d", pr.Repo, pr.Number, pr.Additions, pr.Deletions)),
		)
	}

	return view.Region{Theme: th, Body: strings.Join(parts, "\n")}
}

// Issues lists opened issues with their state.
type Issues struct{ base }

func (l Issues) Render(p view.Props) view.Region {
	c := l.content()
	th := p.Theme

	parts := []string{l.heading(th, "Issues")}
	if len(c.Issues) == 0 {
		parts = append(parts, l.empty(th, "issues"))
		return view.Region{Theme: th, Body: strings.Join(parts, "\n")}
	}

	title := l.text(th).Bold(true)
	meta := l.muted(th).PaddingLeft(9)
	for _, is := range c.Issues {
		badge := l.stateStyle(is.State).Width(9).Render(stateLabel(is.State))
		parts = append(parts,
			badge+title.Render(is.Title),
			meta.Render(fmt.Sprintf("%s#%d", is.Repo, is.Number)),
		)
	}

	return view.Region{Theme: th, Body: strings.Join(parts, "\n")}
}
