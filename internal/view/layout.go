package view

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"portfolio-terminal/internal/theme"
)

// Foreground colours s with a theme token. A missing token leaves the
// style uncoloured instead of failing.
func Foreground(s lipgloss.Style, th *theme.Theme, tok theme.Token) lipgloss.Style {
	if v := th.Value(tok); v != "" {
		return s.Foreground(lipgloss.Color(v))
	}
	return s
}

// Background is Foreground for the background colour.
func Background(s lipgloss.Style, th *theme.Theme, tok theme.Token) lipgloss.Style {
	if v := th.Value(tok); v != "" {
		return s.Background(lipgloss.Color(v))
	}
	return s
}

// Heading renders a bold section title in the theme's text colour.
func Heading(r *lipgloss.Renderer, th *theme.Theme, text string) string {
	if r == nil {
		r = lipgloss.DefaultRenderer()
	}
	return Foreground(r.NewStyle().Bold(true).MarginTop(1).MarginBottom(1), th, theme.TokenText).Render(text)
}

// Span is the half-open line range [Start, End) a region occupies.
type Span struct {
	Name   string
	Start  int
	End    int
	Toggle func()
}

// Page is a region tree stacked into lines.
type Page struct {
	Content string
	Spans   []Span
	lines   int
}

// Height is the number of lines in Content.
func (p Page) Height() int { return p.lines }

// At returns the innermost region covering line.
func (p Page) At(line int) (Span, bool) {
	for _, s := range p.Spans {
		if line >= s.Start && line < s.End {
			return s, true
		}
	}
	return Span{}, false
}

// Find returns the first region with the given name.
func (p Page) Find(name string) (Span, bool) {
	for _, s := range p.Spans {
		if s.Name == name {
			return s, true
		}
	}
	return Span{}, false
}

// Toggle returns the toggle callback exposed by the page, if any.
func (p Page) Toggle() func() {
	for _, s := range p.Spans {
		if s.Toggle != nil {
			return s.Toggle
		}
	}
	return nil
}

// Flatten stacks a region tree top to bottom: each region's own body
// first, then its children. Spans are recorded innermost first.
func Flatten(root Region) Page {
	var (
		lines []string
		spans []Span
	)

	var walk func(Region)
	walk = func(r Region) {
		start := len(lines)
		if r.Body != "" {
			lines = append(lines, strings.Split(r.Body, "\n")...)
		}
		for _, c := range r.Children {
			walk(c)
		}
		spans = append(spans, Span{Name: r.Name, Start: start, End: len(lines), Toggle: r.Toggle})
	}
	walk(root)

	return Page{Content: strings.Join(lines, "\n"), Spans: spans, lines: len(lines)}
}
