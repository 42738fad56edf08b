// Package server runs the SSH front door: it wires config, middleware and
// the per-session TUI into a wish server, plus the optional HTTP preview.
package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/activeterm"
	"github.com/charmbracelet/wish/bubbletea"
	"github.com/charmbracelet/wish/logging"

	"portfolio-terminal/internal/config"
	"portfolio-terminal/internal/content"
	"portfolio-terminal/internal/prefs"
	"portfolio-terminal/internal/router"
	"portfolio-terminal/internal/theme"
	"portfolio-terminal/internal/tui"
)

const (
	version         = "dev"
	rateLimitBurst  = 10
	shutdownTimeout = 10 * time.Second
)

// Watcher is satisfied by content.Store.
type Watcher interface {
	Watch(ctx context.Context) error
}

// Dependencies are the shared services every session reads from.
type Dependencies struct {
	Logger  *log.Logger
	Content content.Source
	Prefs   prefs.Store
	// HTTP is served on cfg.HTTPAddr when both are set.
	HTTP http.Handler
	// Watcher, when set, runs for the lifetime of Run.
	Watcher Watcher
}

// Runtime wires config + middleware + Wish server as a testable unit.
type Runtime struct {
	cfg        config.Config
	deps       Dependencies
	chain      []router.Descriptor
	server     *ssh.Server
	httpServer *http.Server

	newRenderer func(ssh.Session) *lipgloss.Renderer
}

// New builds the runtime. Nothing listens until Run.
func New(cfg config.Config, deps Dependencies) (*Runtime, error) {
	if deps.Logger == nil {
		deps.Logger = log.Default()
	}
	if deps.Content == nil {
		return nil, errors.New("server: content source is required")
	}
	if deps.Prefs == nil {
		deps.Prefs = prefs.NewMemory()
	}

	r := &Runtime{cfg: cfg, deps: deps, newRenderer: bubbletea.MakeRenderer}
	r.chain = r.buildChain()

	// wish applies middleware last to first; the chain is kept outermost first.
	middleware := router.MiddlewareFromDescriptors(r.chain)
	slices.Reverse(middleware)

	sshServer, err := wish.NewServer(
		wish.WithAddress(cfg.Address()),
		wish.WithHostKeyPath(cfg.HostKeyPath),
		wish.WithIdleTimeout(cfg.IdleTimeout),
		wish.WithMiddleware(middleware...),
	)
	if err != nil {
		return nil, err
	}
	r.server = sshServer

	if cfg.HTTPAddr != "" && deps.HTTP != nil {
		r.httpServer = &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           deps.HTTP,
			ReadHeaderTimeout: 5 * time.Second,
		}
	}
	return r, nil
}

func (r *Runtime) buildChain() []router.Descriptor {
	logger := r.deps.Logger
	chain := []router.Descriptor{
		{Name: "logging", Middleware: logging.MiddlewareWithLogger(logger)},
		{Name: "rate-limit", Middleware: RateLimitMiddleware(r.cfg.RateLimitPerMinute, rateLimitBurst, logger)},
		{Name: "max-sessions", Middleware: MaxSessionsMiddleware(r.cfg.MaxSessions, logger)},
		{Name: "active-term", Middleware: activeterm.Middleware()},
	}
	chain = append(chain, router.DefaultChain(logger)...)
	return append(chain, router.Descriptor{Name: "tui", Middleware: bubbletea.Middleware(r.teaHandler)})
}

// MiddlewareIDs reports the chain outermost first.
func (r *Runtime) MiddlewareIDs() []string {
	return router.Names(r.chain)
}

func (r *Runtime) Address() string {
	return r.server.Addr
}

// HTTPAddress is empty when the preview listener is disabled.
func (r *Runtime) HTTPAddress() string {
	if r.httpServer == nil {
		return ""
	}
	return r.httpServer.Addr
}

// Run serves until ctx is cancelled or SIGINT/SIGTERM arrives.
func (r *Runtime) Run(ctx context.Context) error {
	ctx, stopSignals := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	logger := r.deps.Logger
	errs := make(chan error, 2)

	if r.deps.Watcher != nil {
		go func() {
			if err := r.deps.Watcher.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("content watcher stopped", "event", "content_watch_failed", "err", err)
			}
		}()
	}

	if r.httpServer != nil {
		go func() {
			logger.Info("http preview listening", "event", "http_startup", "addr", r.httpServer.Addr)
			if err := r.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errs <- err
			}
		}()
	}

	go func() {
		logger.Info("ssh listening",
			"event", "startup",
			"version", version,
			"addr", r.cfg.Address(),
			"middleware", r.MiddlewareIDs(),
			"host_key_path", r.cfg.HostKeyPath,
			"idle_timeout", r.cfg.IdleTimeout,
			"max_sessions", r.cfg.MaxSessions,
			"rate_limit_per_minute", r.cfg.RateLimitPerMinute,
		)
		if err := r.server.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			errs <- err
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-errs:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := r.server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
		logger.Warn("ssh shutdown incomplete", "event", "shutdown", "err", err)
	}
	if r.httpServer != nil {
		if err := r.httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("http shutdown incomplete", "event", "shutdown", "err", err)
		}
	}
	logger.Info("stopped", "event", "shutdown")
	return runErr
}

// teaHandler builds the per-session model. The session has already
// been routed, so identity is present unless the chain was bypassed.
func (r *Runtime) teaHandler(sess ssh.Session) (tea.Model, []tea.ProgramOption) {
	pty, _, _ := sess.Pty()
	identity, ok := router.IdentityFromContext(sess.Context())
	if !ok {
		identity = router.Identity{Username: sess.User(), Page: router.PageForUser(sess.User())}
	}

	remote := ""
	if addr := sess.RemoteAddr(); addr != nil {
		remote = addr.String()
	}

	switcher := tui.NewSwitcher(r.cfg.Theme, identity.Visitor, r.deps.Prefs, r.deps.Logger)
	model := tui.New(tui.Options{
		Width:      pty.Window.Width,
		Height:     pty.Window.Height,
		Page:       identity.Page,
		RemoteAddr: remote,
		Source:     r.deps.Content,
		Renderer:   r.newRenderer(sess),
		Switcher:   switcher,
		Select: theme.SelectOptions{
			Term:       pty.Term,
			ForceColor: r.cfg.ForceColor,
			ForceMono:  r.cfg.ForceMono,
		},
	})
	if r.cfg.ThemeDebug {
		profile := theme.DetectTermProfile(pty.Term)
		r.deps.Logger.Info("theme selected",
			"event", "theme_selected",
			"requested", switcher.Current(),
			"theme", model.Theme().Name(),
			"term", pty.Term,
			"colors", profile.Colors,
			"truecolor", profile.TrueColor,
			"tty", profile.IsTTY,
			"force_color", r.cfg.ForceColor,
			"force_mono", r.cfg.ForceMono,
		)
	}
	return model, []tea.ProgramOption{tea.WithAltScreen(), tea.WithMouseCellMotion()}
}
