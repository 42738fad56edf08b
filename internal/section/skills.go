package section

import (
	"strings"

	"portfolio-terminal/internal/theme"
	"portfolio-terminal/internal/view"
)

// Skills lists each skill area with its bullets and tools.
type Skills struct{ base }

func (s Skills) Render(p view.Props) view.Region {
	c := s.content()
	th := p.Theme

	parts := []string{s.heading(th, "What I Do")}
	if len(c.Skills) == 0 {
		parts = append(parts, s.empty(th, "skills"))
		return view.Region{Theme: th, Body: strings.Join(parts, "\n")}
	}

	title := s.text(th).Bold(true)
	bullet := view.Foreground(s.style().Width(s.width).PaddingLeft(2), th, theme.TokenExpTxtColor)
	tools := view.Foreground(s.style().PaddingLeft(2), th, theme.TokenImageHighlight)

	for i, sk := range c.Skills {
		if i > 0 {
			parts = append(parts, "")
		}
		parts = append(parts, title.Render(sk.Title))
		for _, b := range sk.Bullets {
			parts = append(parts, bullet.Render("⚡ "+b))
		}
		if len(sk.Tools) > 0 {
			parts = append(parts, tools.Render(strings.Join(sk.Tools, " · ")))
		}
	}

	return view.Region{Theme: th, Body: strings.Join(parts, "\n")}
}
