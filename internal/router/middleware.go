// Package router resolves who a session belongs to and which page it
// opens on before the TUI starts.
package router

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/google/uuid"
	gossh "golang.org/x/crypto/ssh"

	"portfolio-terminal/internal/view"
)

type contextKey string

const (
	sessionIdentityKey contextKey = "portfolio.identity"
	sessionMetadataKey contextKey = "portfolio.session"

	maxUsernameLength = 64
)

// pageAliases maps SSH usernames to the page a session starts on.
// Anything else lands on home.
var pageAliases = map[string]view.Name{
	"home":        view.NameHome,
	"opensource":  view.NameOpensource,
	"open-source": view.NameOpensource,
	"oss":         view.NameOpensource,
}

// Identity is what routing learned about the connecting visitor.
type Identity struct {
	Username string
	Page     view.Name
	// Visitor keys theme preferences: the public-key fingerprint when the
	// client offered one, else "user:<username>".
	Visitor string
}

// SessionInfo is attached once per session for logs and the TUI.
type SessionInfo struct {
	ID         string
	Identity   Identity
	RemoteAddr string
	StartedAt  time.Time
}

// Descriptor names a middleware so the runtime can report its chain.
type Descriptor struct {
	Name       string
	Middleware wish.Middleware
}

// DefaultChain returns the routing middleware in execution order.
func DefaultChain(logger *log.Logger) []Descriptor {
	if logger == nil {
		logger = log.Default()
	}
	return []Descriptor{
		{Name: "username-routing", Middleware: usernameRouting()},
		{Name: "session-metadata", Middleware: sessionMetadata(logger)},
	}
}

// MiddlewareFromDescriptors unwraps descriptors, preserving order.
func MiddlewareFromDescriptors(chain []Descriptor) []wish.Middleware {
	out := make([]wish.Middleware, 0, len(chain))
	for _, d := range chain {
		if d.Middleware != nil {
			out = append(out, d.Middleware)
		}
	}
	return out
}

// Names lists descriptor names in order.
func Names(chain []Descriptor) []string {
	out := make([]string, 0, len(chain))
	for _, d := range chain {
		out = append(out, d.Name)
	}
	return out
}

// PageForUser resolves the starting page for an SSH username.
func PageForUser(user string) view.Name {
	if page, ok := pageAliases[strings.ToLower(strings.TrimSpace(user))]; ok {
		return page
	}
	return view.NameHome
}

// IdentityFromContext returns the identity set by username routing.
func IdentityFromContext(ctx ssh.Context) (Identity, bool) {
	if ctx == nil {
		return Identity{}, false
	}
	id, ok := ctx.Value(sessionIdentityKey).(Identity)
	return id, ok
}

// SessionInfoFromContext returns the metadata set for the session.
func SessionInfoFromContext(ctx ssh.Context) (SessionInfo, bool) {
	if ctx == nil {
		return SessionInfo{}, false
	}
	info, ok := ctx.Value(sessionMetadataKey).(SessionInfo)
	return info, ok
}

func usernameRouting() wish.Middleware {
	return func(next ssh.Handler) ssh.Handler {
		return func(s ssh.Session) {
			user := truncateUsername(s.User())
			identity := Identity{
				Username: user,
				Page:     PageForUser(user),
				Visitor:  visitorKey(user, s.PublicKey()),
			}
			s.Context().SetValue(sessionIdentityKey, identity)
			next(s)
		}
	}
}

// truncateUsername caps user at maxUsernameLength bytes without
// splitting a rune.
func truncateUsername(user string) string {
	if len(user) <= maxUsernameLength {
		return user
	}
	cut := maxUsernameLength
	for cut > 0 && !utf8.RuneStart(user[cut]) {
		cut--
	}
	return user[:cut]
}

func sessionMetadata(logger *log.Logger) wish.Middleware {
	return func(next ssh.Handler) ssh.Handler {
		return func(s ssh.Session) {
			identity, _ := IdentityFromContext(s.Context())
			info := SessionInfo{
				ID:        uuid.NewString(),
				Identity:  identity,
				StartedAt: time.Now().UTC(),
			}
			if addr := s.RemoteAddr(); addr != nil {
				info.RemoteAddr = addr.String()
			}
			s.Context().SetValue(sessionMetadataKey, info)

			logger.Info("session opened", "event", "session_open", "session_id", info.ID, "user", identity.Username, "page", identity.Page)
			defer func() {
				logger.Info("session closed", "event", "session_close", "session_id", info.ID, "duration", time.Since(info.StartedAt).Round(time.Millisecond))
			}()
			next(s)
		}
	}
}

func visitorKey(user string, key ssh.PublicKey) string {
	if key != nil {
		return gossh.FingerprintSHA256(key)
	}
	if user == "" {
		return ""
	}
	return "user:" + user
}
