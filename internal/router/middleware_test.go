package router

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"io"
	"net"
	"strings"
	"sync"
	"testing"
	"unicode/utf8"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/google/uuid"
	gossh "golang.org/x/crypto/ssh"

	"portfolio-terminal/internal/view"
)

type fakeContext struct {
	context.Context
	mu     sync.Mutex
	values map[any]any
}

func (f *fakeContext) Lock()                         { f.mu.Lock() }
func (f *fakeContext) Unlock()                       { f.mu.Unlock() }
func (f *fakeContext) User() string                  { return "" }
func (f *fakeContext) SessionID() string             { return "test-session" }
func (f *fakeContext) ClientVersion() string         { return "ssh-test-client" }
func (f *fakeContext) ServerVersion() string         { return "ssh-test-server" }
func (f *fakeContext) RemoteAddr() net.Addr          { return nil }
func (f *fakeContext) LocalAddr() net.Addr           { return nil }
func (f *fakeContext) Permissions() *ssh.Permissions { return &ssh.Permissions{} }
func (f *fakeContext) SetValue(key, value interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values[key] = value
}
func (f *fakeContext) Value(key interface{}) interface{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	if v, ok := f.values[key]; ok {
		return v
	}
	return f.Context.Value(key)
}

type fakeSession struct {
	user   string
	key    ssh.PublicKey
	ctx    *fakeContext
	writes []string
}

func newFakeSession(user string) *fakeSession {
	return &fakeSession{
		user: user,
		ctx:  &fakeContext{Context: context.Background(), values: map[any]any{}},
	}
}

func (f *fakeSession) Read([]byte) (int, error) { return 0, io.EOF }
func (f *fakeSession) Write(p []byte) (int, error) {
	f.writes = append(f.writes, string(p))
	return len(p), nil
}
func (f *fakeSession) Close() error                                   { return nil }
func (f *fakeSession) CloseWrite() error                              { return nil }
func (f *fakeSession) SendRequest(string, bool, []byte) (bool, error) { return false, nil }
func (f *fakeSession) Stderr() io.ReadWriter                          { return &bytes.Buffer{} }
func (f *fakeSession) User() string                                   { return f.user }
func (f *fakeSession) RemoteAddr() net.Addr {
	return &net.TCPAddr{IP: net.ParseIP("203.0.113.7"), Port: 50022}
}
func (f *fakeSession) LocalAddr() net.Addr {
	return &net.TCPAddr{IP: net.ParseIP("127.0.0.1"), Port: 2222}
}
func (f *fakeSession) Environ() []string            { return nil }
func (f *fakeSession) Exit(int) error               { return nil }
func (f *fakeSession) Command() []string            { return nil }
func (f *fakeSession) RawCommand() string           { return "" }
func (f *fakeSession) Subsystem() string            { return "" }
func (f *fakeSession) PublicKey() ssh.PublicKey     { return f.key }
func (f *fakeSession) Context() ssh.Context         { return f.ctx }
func (f *fakeSession) Permissions() ssh.Permissions { return ssh.Permissions{} }
func (f *fakeSession) EmulatedPty() bool            { return false }
func (f *fakeSession) Pty() (ssh.Pty, <-chan ssh.Window, bool) {
	return ssh.Pty{}, nil, false
}
func (f *fakeSession) Signals(chan<- ssh.Signal) {}
func (f *fakeSession) Break(chan<- bool)         {}

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

func chainHandler(chain []Descriptor, final ssh.Handler) ssh.Handler {
	middleware := MiddlewareFromDescriptors(chain)
	h := final
	for i := len(middleware) - 1; i >= 0; i-- {
		h = middleware[i](h)
	}
	return h
}

func TestDefaultChainKeepsIdentityBeforeSessionMetadata(t *testing.T) {
	chain := DefaultChain(quietLogger())
	want := []string{"username-routing", "session-metadata"}
	got := Names(chain)
	if len(got) != len(want) {
		t.Fatalf("chain length = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("chain[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	s := newFakeSession("oss")
	called := false
	chainHandler(chain, func(sess ssh.Session) {
		called = true
		if _, ok := IdentityFromContext(sess.Context()); !ok {
			t.Fatal("expected identity before handler execution")
		}
		info, ok := SessionInfoFromContext(sess.Context())
		if !ok {
			t.Fatal("expected session metadata before handler execution")
		}
		if info.Identity.Page != view.NameOpensource {
			t.Fatalf("metadata identity = %+v, want opensource page", info.Identity)
		}
	})(s)
	if !called {
		t.Fatal("expected next handler to be called")
	}
}

func TestPageForUser(t *testing.T) {
	tests := []struct {
		user string
		want view.Name
	}{
		{user: "opensource", want: view.NameOpensource},
		{user: "OSS", want: view.NameOpensource},
		{user: " open-source ", want: view.NameOpensource},
		{user: "home", want: view.NameHome},
		{user: "guest", want: view.NameHome},
		{user: "", want: view.NameHome},
		{user: "oѕs", want: view.NameHome},
	}
	for _, tc := range tests {
		if got := PageForUser(tc.user); got != tc.want {
			t.Fatalf("PageForUser(%q) = %s, want %s", tc.user, got, tc.want)
		}
	}
}

func TestUsernameRoutingNeverRejects(t *testing.T) {
	for _, user := range []string{"guest", "", strings.Repeat("x", 500)} {
		s := newFakeSession(user)
		called := false
		usernameRouting()(func(ssh.Session) { called = true })(s)
		if !called {
			t.Fatalf("expected next handler for user %q", user)
		}
		if len(s.writes) != 0 {
			t.Fatalf("unexpected writes for user %q: %#v", user, s.writes)
		}
		identity, ok := IdentityFromContext(s.Context())
		if !ok {
			t.Fatalf("identity missing for user %q", user)
		}
		if len(identity.Username) > maxUsernameLength {
			t.Fatalf("username not truncated: %d bytes", len(identity.Username))
		}
	}
}

func TestTruncateUsernameKeepsRunesWhole(t *testing.T) {
	tests := []struct {
		name string
		user string
		want string
	}{
		{name: "short", user: "guest", want: "guest"},
		{name: "ascii at limit", user: strings.Repeat("a", maxUsernameLength), want: strings.Repeat("a", maxUsernameLength)},
		{name: "ascii over limit", user: strings.Repeat("a", 70), want: strings.Repeat("a", maxUsernameLength)},
		// 63 bytes of ASCII then a 3-byte rune straddling the limit.
		{name: "rune straddles limit", user: strings.Repeat("a", 63) + "界界", want: strings.Repeat("a", 63)},
		{name: "all multibyte", user: strings.Repeat("é", 40), want: strings.Repeat("é", 32)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := truncateUsername(tc.user)
			if got != tc.want {
				t.Fatalf("truncateUsername() = %q, want %q", got, tc.want)
			}
			if !utf8.ValidString(got) {
				t.Fatalf("truncateUsername() produced invalid UTF-8: %q", got)
			}
		})
	}

	s := newFakeSession(strings.Repeat("a", 63) + "界")
	usernameRouting()(func(ssh.Session) {})(s)
	identity, _ := IdentityFromContext(s.Context())
	if !utf8.ValidString(identity.Visitor) || identity.Visitor != "user:"+strings.Repeat("a", 63) {
		t.Fatalf("Visitor = %q, want rune-safe truncation", identity.Visitor)
	}
}

func TestVisitorKeyPrefersPublicKeyFingerprint(t *testing.T) {
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	key, err := gossh.NewPublicKey(pub)
	if err != nil {
		t.Fatalf("wrap key: %v", err)
	}

	s := newFakeSession("guest")
	s.key = key
	usernameRouting()(func(ssh.Session) {})(s)

	identity, _ := IdentityFromContext(s.Context())
	if identity.Visitor != gossh.FingerprintSHA256(key) {
		t.Fatalf("Visitor = %q, want fingerprint", identity.Visitor)
	}
	if !strings.HasPrefix(identity.Visitor, "SHA256:") {
		t.Fatalf("Visitor = %q, want SHA256 prefix", identity.Visitor)
	}

	anon := newFakeSession("guest")
	usernameRouting()(func(ssh.Session) {})(anon)
	identity, _ = IdentityFromContext(anon.Context())
	if identity.Visitor != "user:guest" {
		t.Fatalf("Visitor = %q, want user:guest", identity.Visitor)
	}
}

func TestSessionMetadataAssignsUniqueIDs(t *testing.T) {
	mw := sessionMetadata(quietLogger())
	seen := map[string]bool{}
	for i := 0; i < 3; i++ {
		s := newFakeSession("guest")
		mw(func(ssh.Session) {})(s)

		info, ok := SessionInfoFromContext(s.Context())
		if !ok {
			t.Fatal("expected session info")
		}
		if _, err := uuid.Parse(info.ID); err != nil {
			t.Fatalf("session id %q is not a uuid: %v", info.ID, err)
		}
		if seen[info.ID] {
			t.Fatalf("duplicate session id %q", info.ID)
		}
		seen[info.ID] = true
		if info.RemoteAddr != "203.0.113.7:50022" {
			t.Fatalf("RemoteAddr = %q", info.RemoteAddr)
		}
		if info.StartedAt.IsZero() {
			t.Fatal("expected StartedAt to be set")
		}
	}
}

func TestContextAccessorsHandleNil(t *testing.T) {
	if _, ok := IdentityFromContext(nil); ok {
		t.Fatal("expected no identity for nil context")
	}
	if _, ok := SessionInfoFromContext(nil); ok {
		t.Fatal("expected no session info for nil context")
	}
}

func TestMiddlewareFromDescriptorsSkipsNil(t *testing.T) {
	chain := []Descriptor{{Name: "empty"}, {Name: "routing", Middleware: usernameRouting()}}
	if got := len(MiddlewareFromDescriptors(chain)); got != 1 {
		t.Fatalf("middleware length = %d, want 1", got)
	}
}
