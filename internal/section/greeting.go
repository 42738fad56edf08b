package section

import (
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"

	"portfolio-terminal/internal/theme"
	"portfolio-terminal/internal/view"
)

// Greeting renders the intro title, the markdown subtitle and the resume link.
type Greeting struct {
	base
	md *markdown
}

func newGreeting(b base) Greeting {
	return Greeting{base: b, md: &markdown{}}
}

func (g Greeting) Render(p view.Props) view.Region {
	c := g.content()
	th := p.Theme

	parts := []string{g.heading(th, c.Greeting.Title)}
	if sub := strings.TrimSpace(c.Greeting.Subtitle); sub != "" {
		parts = append(parts, g.md.render(sub, g.markdownStyle(th), g.width))
	}
	if url := strings.TrimSpace(c.Greeting.ResumeURL); url != "" {
		link := view.Foreground(g.style().Underline(true), th, theme.TokenImageHighlight).Render(url)
		parts = append(parts, g.muted(th).Render("Resume: ")+link)
	}
	for _, s := range c.Profile.Socials {
		parts = append(parts, g.muted(th).Render("• "+s.Name+": ")+g.text(th).Render(s.URL))
	}

	return view.Region{Theme: th, Body: strings.Join(parts, "\n")}
}

func (g Greeting) markdownStyle(th *theme.Theme) string {
	if g.r.ColorProfile() == termenv.Ascii {
		return "notty"
	}
	switch th.Name() {
	case theme.NameDark, theme.NameMono:
		return "dark"
	}
	return "light"
}

// markdown caches one glamour renderer per style and width.
type markdown struct {
	mu    sync.Mutex
	style string
	width int
	tr    *glamour.TermRenderer
}

func (m *markdown) render(src, style string, width int) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.tr == nil || m.style != style || m.width != width {
		tr, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(style),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return src
		}
		m.tr, m.style, m.width = tr, style, width
	}

	out, err := m.tr.Render(src)
	if err != nil {
		return src
	}
	return strings.Trim(out, "\n")
}
