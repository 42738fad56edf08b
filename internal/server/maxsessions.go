package server

import (
	"sync"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
)

const maxSessionsMessage = "max sessions exceeded\n"

// MaxSessionsMiddleware caps concurrent sessions. A slot is released
// when the handler returns, panics, or the session context ends,
// whichever comes first, and never more than once.
func MaxSessionsMiddleware(limit int, logger *log.Logger) wish.Middleware {
	if logger == nil {
		logger = log.Default()
	}
	if limit <= 0 {
		limit = 1
	}
	slots := make(chan struct{}, limit)

	return func(next ssh.Handler) ssh.Handler {
		return func(s ssh.Session) {
			select {
			case slots <- struct{}{}:
			default:
				logger.Warn("session rejected", "event", "max_sessions_exceeded", "remote_ip", remoteIP(s), "limit", limit)
				_, _ = s.Write([]byte(maxSessionsMessage))
				_ = s.Exit(1)
				return
			}

			var once sync.Once
			release := func() { once.Do(func() { <-slots }) }

			done := make(chan struct{})
			defer close(done)
			go func() {
				select {
				case <-s.Context().Done():
					release()
				case <-done:
				}
			}()

			defer func() {
				release()
				if r := recover(); r != nil {
					logger.Error("session handler panicked", "event", "session_panic", "remote_ip", remoteIP(s), "panic", r)
				}
			}()
			next(s)
		}
	}
}
