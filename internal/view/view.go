// Package view composes the portfolio pages from leaf modules.
//
// Aggregators are pure functions of their props: they forward the theme
// pointer unchanged to every child, in a fixed order, and never inspect
// data. Leaf modules live behind the Component interface.
package view

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"portfolio-terminal/internal/theme"
)

// ErrUnknownView is returned by Render for names outside the page set.
var ErrUnknownView = errors.New("unknown view")

// Name identifies a top-level page.
type Name string

const (
	NameHome       Name = "home"
	NameOpensource Name = "opensource"
)

// Names lists the pages in navigation order.
func Names() []Name { return []Name{NameHome, NameOpensource} }

// Region names produced by the aggregators and leaf modules.
const (
	RegionHome             = "Home"
	RegionOpensource       = "Opensource"
	RegionOpensourceCharts = "OpensourceCharts"
	RegionHeader           = "Header"
	RegionGreeting         = "Greeting"
	RegionSkills           = "Skills"
	RegionFooter           = "Footer"
	RegionTopButton        = "TopButton"
	RegionOrganizations    = "Organizations"
	RegionPullRequests     = "PullRequests"
	RegionIssues           = "Issues"
	RegionPullRequestChart = "PullRequestChart"
	RegionIssueChart       = "IssueChart"
)

// Props is the immutable input of one component invocation.
type Props struct {
	Theme    *theme.Theme
	OnToggle func()
}

// Region is one node of the rendered markup tree.
type Region struct {
	Name     string
	Theme    *theme.Theme
	Body     string
	Children []Region
	// Toggle is set by Footer when it was handed a toggle callback.
	Toggle func()
}

// Component renders a self-contained region from props.
type Component interface {
	Render(Props) Region
}

// ComponentFunc adapts a function to Component.
type ComponentFunc func(Props) Region

func (f ComponentFunc) Render(p Props) Region { return f(p) }

// Leaves is the set of leaf modules the aggregators compose. Renderer
// styles the aggregators' own headings; nil means the lipgloss default.
type Leaves struct {
	Renderer *lipgloss.Renderer

	Header           Component
	Footer           Component
	Greeting         Component
	Skills           Component
	TopButton        Component
	PullRequestChart Component
	IssueChart       Component
	Organizations    Component
	PullRequests     Component
	Issues           Component
}

// Home renders the landing page.
func Home(l Leaves, p Props) Region {
	only := Props{Theme: p.Theme}
	return Region{
		Name:  RegionHome,
		Theme: p.Theme,
		Children: []Region{
			render(l.Header, RegionHeader, only),
			render(l.Greeting, RegionGreeting, only),
			render(l.Skills, RegionSkills, only),
			render(l.Footer, RegionFooter, only),
			render(l.TopButton, RegionTopButton, only),
		},
	}
}

// Opensource renders the open-source contributions page. Its Footer is
// the only component handed the toggle callback.
func Opensource(l Leaves, p Props) Region {
	only := Props{Theme: p.Theme}
	return Region{
		Name:  RegionOpensource,
		Theme: p.Theme,
		Children: []Region{
			render(l.Header, RegionHeader, only),
			render(l.Organizations, RegionOrganizations, only),
			OpensourceCharts(l, only),
			render(l.PullRequests, RegionPullRequests, only),
			render(l.Issues, RegionIssues, only),
			render(l.Footer, RegionFooter, Props{Theme: p.Theme, OnToggle: p.OnToggle}),
			render(l.TopButton, RegionTopButton, only),
		},
	}
}

// ChartsHeading is the title OpensourceCharts puts above the charts.
const ChartsHeading = "Contributions"

// OpensourceCharts renders the contributions heading and both charts.
func OpensourceCharts(l Leaves, p Props) Region {
	only := Props{Theme: p.Theme}
	return Region{
		Name:  RegionOpensourceCharts,
		Theme: p.Theme,
		Body:  Heading(l.Renderer, p.Theme, ChartsHeading),
		Children: []Region{
			render(l.PullRequestChart, RegionPullRequestChart, only),
			render(l.IssueChart, RegionIssueChart, only),
		},
	}
}

// Render dispatches to the named page.
func Render(name Name, l Leaves, p Props) (Region, error) {
	switch name {
	case NameHome:
		return Home(l, p), nil
	case NameOpensource:
		return Opensource(l, p), nil
	default:
		return Region{}, fmt.Errorf("%w: %s", ErrUnknownView, name)
	}
}

// ParseName validates a user-supplied page name.
func ParseName(raw string) (Name, error) {
	for _, n := range Names() {
		if string(n) == raw {
			return n, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownView, raw)
}

// render invokes c, falling back to an empty named region when a leaf is
// not wired. The region name is always the slot name.
func render(c Component, name string, p Props) Region {
	if c == nil {
		return Region{Name: name, Theme: p.Theme}
	}
	r := c.Render(p)
	r.Name = name
	if r.Theme == nil {
		r.Theme = p.Theme
	}
	return r
}
