package server

import (
	"context"
	"io"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/ssh"

	"portfolio-terminal/internal/config"
	"portfolio-terminal/internal/content"
	"portfolio-terminal/internal/prefs"
	"portfolio-terminal/internal/router"
	"portfolio-terminal/internal/theme"
	"portfolio-terminal/internal/tui"
	"portfolio-terminal/internal/view"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	return config.Config{
		Host:               "127.0.0.1",
		Port:               2222,
		HostKeyPath:        filepath.Join(t.TempDir(), "host_ed25519"),
		IdleTimeout:        time.Minute,
		RateLimitPerMinute: 60,
		MaxSessions:        4,
		Theme:              theme.NameDark,
	}
}

func testRuntime(t *testing.T, cfg config.Config) *Runtime {
	t.Helper()
	c, err := content.Default()
	if err != nil {
		t.Fatalf("content.Default() error = %v", err)
	}
	runtime, err := New(cfg, Dependencies{
		Logger:  quietLogger(),
		Content: content.NewStaticStore(c),
		Prefs:   prefs.NewMemory(),
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return runtime
}

// gatedHandler composes every middleware except the TUI around final.
func gatedHandler(r *Runtime, final ssh.Handler) ssh.Handler {
	chain := router.MiddlewareFromDescriptors(r.chain[:len(r.chain)-1])
	h := final
	for i := len(chain) - 1; i >= 0; i-- {
		h = chain[i](h)
	}
	return h
}

func TestNewRuntimeStartupPipeline(t *testing.T) {
	runtime := testRuntime(t, testConfig(t))

	if got := runtime.Address(); got != "127.0.0.1:2222" {
		t.Fatalf("Address() = %q, want %q", got, "127.0.0.1:2222")
	}
	if got := runtime.HTTPAddress(); got != "" {
		t.Fatalf("HTTPAddress() = %q, want disabled", got)
	}

	want := []string{"logging", "rate-limit", "max-sessions", "active-term", "username-routing", "session-metadata", "tui"}
	got := runtime.MiddlewareIDs()
	if len(got) != len(want) {
		t.Fatalf("middleware length = %d, want %d (%v)", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("middleware[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestNewRuntimeRequiresContent(t *testing.T) {
	if _, err := New(testConfig(t), Dependencies{Logger: quietLogger()}); err == nil {
		t.Fatal("New() expected error without a content source")
	}
}

func TestChainRejectsSessionWithoutPTY(t *testing.T) {
	runtime := testRuntime(t, testConfig(t))
	sess := newFakeSession(context.Background(), tcpAddr("203.0.113.60"))

	called := false
	gatedHandler(runtime, func(ssh.Session) { called = true })(sess)

	if called {
		t.Fatal("handler reached without a PTY")
	}
	if code, ok := sess.exitCode(); !ok || code != 1 {
		t.Fatalf("expected exit code 1, got (%d, %v)", code, ok)
	}
}

func TestChainRoutesUsernameToPage(t *testing.T) {
	runtime := testRuntime(t, testConfig(t))

	tests := []struct {
		user string
		want view.Name
	}{
		{user: "oss", want: view.NameOpensource},
		{user: "guest", want: view.NameHome},
	}
	for _, tc := range tests {
		t.Run(tc.user, func(t *testing.T) {
			sess := newFakeSession(context.Background(), tcpAddr("203.0.113.61"))
			sess.user = tc.user
			sess.hasPTY = true

			var got router.Identity
			gatedHandler(runtime, func(s ssh.Session) {
				got, _ = router.IdentityFromContext(s.Context())
			})(sess)

			if got.Page != tc.want {
				t.Fatalf("page = %s, want %s", got.Page, tc.want)
			}
		})
	}
}

// Without routing metadata the handler falls back to the username.
func TestTeaHandlerBuildsRoutedModel(t *testing.T) {
	runtime := testRuntime(t, testConfig(t))
	sess := newFakeSession(context.Background(), &net.TCPAddr{IP: net.ParseIP("203.0.113.62"), Port: 4000})
	sess.user = "oss"
	sess.hasPTY = true
	runtime.newRenderer = func(ssh.Session) *lipgloss.Renderer { return lipgloss.NewRenderer(io.Discard) }

	model, opts := runtime.teaHandler(sess)
	m, ok := model.(tui.Model)
	if !ok {
		t.Fatalf("model type = %T, want tui.Model", model)
	}
	if m.Page() != view.NameOpensource {
		t.Fatalf("page = %s, want opensource", m.Page())
	}
	if len(opts) != 2 {
		t.Fatalf("program options = %d, want alt screen and mouse", len(opts))
	}
}

func TestTeaHandlerAppliesThemeOverrides(t *testing.T) {
	tests := []struct {
		name       string
		term       string
		forceColor bool
		forceMono  bool
		want       theme.Name
	}{
		{name: "colour terminal", term: "xterm-256color", want: theme.NameDark},
		{name: "force mono", term: "xterm-256color", forceMono: true, want: theme.NameMono},
		{name: "dumb terminal", term: "dumb", want: theme.NameMono},
		{name: "force colour on dumb terminal", term: "dumb", forceColor: true, want: theme.NameDark},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := testConfig(t)
			cfg.ForceColor = tc.forceColor
			cfg.ForceMono = tc.forceMono
			cfg.ThemeDebug = true
			runtime := testRuntime(t, cfg)
			runtime.newRenderer = func(ssh.Session) *lipgloss.Renderer { return lipgloss.NewRenderer(io.Discard) }

			sess := newFakeSession(context.Background(), tcpAddr("203.0.113.63"))
			sess.hasPTY = true
			sess.term = tc.term

			model, _ := runtime.teaHandler(sess)
			if got := model.(tui.Model).Theme().Name(); got != tc.want {
				t.Fatalf("theme = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	cfg := testConfig(t)
	cfg.Port = freePort(t)
	runtime := testRuntime(t, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- runtime.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run() did not return after cancel")
	}
}

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port
}
