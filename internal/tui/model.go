package tui

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"portfolio-terminal/internal/content"
	"portfolio-terminal/internal/section"
	"portfolio-terminal/internal/theme"
	"portfolio-terminal/internal/view"
)

const statusBarHeight = 1

// Options configures one session's model.
type Options struct {
	Width      int
	Height     int
	Page       view.Name
	RemoteAddr string
	Source     content.Source
	Renderer   *lipgloss.Renderer
	Switcher   *Switcher
	Select     theme.SelectOptions
}

// Model is the root of the render tree for one terminal session. It
// selects the theme, renders the active page and reacts to input.
type Model struct {
	width  int
	height int

	page     view.Name
	theme    *theme.Theme
	selectBy theme.SelectOptions
	switcher *Switcher

	src      content.Source
	renderer *lipgloss.Renderer
	leaves   view.Leaves
	leavesW  int
	layout   view.Page
	vp       viewport.Model

	observerHash string
}

// New builds the model and performs the first render.
func New(opts Options) Model {
	if opts.Renderer == nil {
		opts.Renderer = lipgloss.DefaultRenderer()
	}
	if opts.Switcher == nil {
		opts.Switcher = NewSwitcher(theme.NameDark, "", nil, nil)
	}
	if _, err := view.ParseName(string(opts.Page)); err != nil {
		opts.Page = view.NameHome
	}

	m := Model{
		width:        opts.Width,
		height:       opts.Height,
		page:         opts.Page,
		selectBy:     opts.Select,
		switcher:     opts.Switcher,
		src:          opts.Source,
		renderer:     opts.Renderer,
		observerHash: deriveObserverHash(opts.RemoteAddr),
		vp:           viewport.New(max(opts.Width, 1), viewportHeight(opts.Height)),
	}
	m.rebuild()
	return m
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.vp.Width = max(msg.Width, 1)
		m.vp.Height = viewportHeight(msg.Height)
		m.rebuild()
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "ctrl+d":
			return m, tea.Quit
		case "1":
			m.show(view.NameHome)
			return m, nil
		case "2":
			m.show(view.NameOpensource)
			return m, nil
		case "tab":
			m.show(nextPage(m.page))
			return m, nil
		case "t":
			m.toggle()
			return m, nil
		case "g", "home":
			m.vp.GotoTop()
			return m, nil
		case "G", "end":
			m.vp.GotoBottom()
			return m, nil
		}
	case tea.MouseMsg:
		if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
			m.click(msg.Y)
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.vp, cmd = m.vp.Update(msg)
	return m, cmd
}

// View renders the scrolled page plus a one-line status bar.
func (m Model) View() string {
	return m.vp.View() + "\n" + m.renderStatus()
}

// Page reports the active page.
func (m Model) Page() view.Name { return m.page }

// Theme reports the theme the current render used.
func (m Model) Theme() *theme.Theme { return m.theme }

// Layout exposes the flattened page for callers that hit-test.
func (m Model) Layout() view.Page { return m.layout }

func (m *Model) show(page view.Name) {
	if page == m.page {
		return
	}
	m.page = page
	m.rebuild()
	m.vp.GotoTop()
}

// toggle prefers the callback the page exposes through its Footer and
// falls back to the switcher on pages without one.
func (m *Model) toggle() {
	if fn := m.layout.Toggle(); fn != nil {
		fn()
	} else {
		m.switcher.Toggle()
	}
	m.rebuild()
}

// click hit-tests a press on screen row y. Rows outside the viewport,
// the status bar included, never reach the layout.
func (m *Model) click(y int) {
	if y < 0 || y >= m.vp.Height {
		return
	}
	span, ok := m.layout.At(y + m.vp.YOffset)
	if !ok {
		return
	}
	switch {
	case span.Toggle != nil:
		span.Toggle()
		m.rebuild()
	case span.Name == view.RegionTopButton:
		m.vp.GotoTop()
	}
}

// rebuild reselects the theme and re-renders the whole tree; there are
// no partial updates.
func (m *Model) rebuild() {
	th, err := theme.Select(m.switcher.Current(), m.selectBy)
	if err != nil {
		th, _ = theme.Get(theme.NameDark)
	}
	m.theme = th

	if w := contentWidth(m.width); m.leaves.Renderer == nil || m.leavesW != w {
		m.leaves = section.New(m.src, m.renderer, w)
		m.leavesW = w
	}
	region, err := view.Render(m.page, m.leaves, view.Props{Theme: th, OnToggle: m.switcher.Toggle})
	if err != nil {
		region = view.Home(m.leaves, view.Props{Theme: th})
	}
	m.layout = view.Flatten(region)

	offset := m.vp.YOffset
	m.vp.SetContent(m.layout.Content)
	m.vp.SetYOffset(offset)
}

func (m Model) renderStatus() string {
	style := view.Foreground(m.renderer.NewStyle().Width(max(m.width, 1)), m.theme, theme.TokenBody)
	style = view.Background(style, m.theme, theme.TokenText)

	left := fmt.Sprintf(" %s · theme %s · visitor %s", m.page, m.theme.Name(), m.observerHash)
	right := fmt.Sprintf("%3.0f%% ", m.vp.ScrollPercent()*100)
	gap := max(m.width-lipgloss.Width(left)-lipgloss.Width(right), 1)
	return style.Render(left + strings.Repeat(" ", gap) + right)
}

func nextPage(current view.Name) view.Name {
	names := view.Names()
	for i, n := range names {
		if n == current {
			return names[(i+1)%len(names)]
		}
	}
	return view.NameHome
}

func viewportHeight(total int) int {
	return max(total-statusBarHeight, 1)
}

func contentWidth(total int) int {
	return min(max(total-2, 0), 100)
}

func normalizeRemoteAddr(remoteAddr string) string {
	trimmed := strings.TrimSpace(remoteAddr)
	if host, _, err := net.SplitHostPort(trimmed); err == nil {
		return host
	}
	return strings.Trim(trimmed, "[]")
}

func deriveObserverHash(remoteAddr string) string {
	sum := sha256.Sum256([]byte(normalizeRemoteAddr(remoteAddr)))
	return strings.ToUpper(hex.EncodeToString(sum[:]))[:12]
}
