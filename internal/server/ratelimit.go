package server

import (
	"net"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
)

const (
	rateLimitMessage = "rate limit exceeded\n"
	maxTrackedIPs    = 4096
)

type ipBucket struct {
	tokens float64
	last   time.Time
}

// RateLimitMiddleware enforces per-IP connection limits using a token
// bucket refilled at limitPerMinute and capped at burst.
func RateLimitMiddleware(limitPerMinute, burst int, logger *log.Logger) wish.Middleware {
	if logger == nil {
		logger = log.Default()
	}
	if limitPerMinute <= 0 {
		limitPerMinute = 30
	}
	if burst <= 0 {
		burst = 10
	}

	ratePerSecond := float64(limitPerMinute) / 60.0
	refillWindow := time.Duration(float64(burst) / ratePerSecond * float64(time.Second))
	var mu sync.Mutex
	buckets := make(map[string]ipBucket)

	allow := func(ip string, now time.Time) bool {
		mu.Lock()
		defer mu.Unlock()

		if len(buckets) >= maxTrackedIPs {
			pruneBuckets(buckets, now, refillWindow)
		}

		bucket := buckets[ip]
		if bucket.last.IsZero() {
			bucket = ipBucket{tokens: float64(burst), last: now}
		}

		elapsed := now.Sub(bucket.last).Seconds()
		if elapsed > 0 {
			bucket.tokens += elapsed * ratePerSecond
			if bucket.tokens > float64(burst) {
				bucket.tokens = float64(burst)
			}
			bucket.last = now
		}

		if bucket.tokens < 1 {
			buckets[ip] = bucket
			return false
		}

		bucket.tokens--
		buckets[ip] = bucket
		return true
	}

	return func(next ssh.Handler) ssh.Handler {
		return func(s ssh.Session) {
			ip := remoteIP(s)
			if !allow(ip, time.Now().UTC()) {
				logger.Warn("connection throttled", "event", "rate_limit_throttled", "remote_ip", ip)
				_, _ = s.Write([]byte(rateLimitMessage))
				_ = s.Exit(1)
				return
			}
			next(s)
		}
	}
}

// pruneBuckets drops buckets idle for at least a full refill window.
func pruneBuckets(buckets map[string]ipBucket, now time.Time, refillWindow time.Duration) {
	for ip, b := range buckets {
		if now.Sub(b.last) >= refillWindow {
			delete(buckets, ip)
		}
	}
}

func remoteIP(s ssh.Session) string {
	remote := s.RemoteAddr()
	if remote == nil {
		return "unknown"
	}

	host, _, err := net.SplitHostPort(remote.String())
	if err != nil {
		return remote.String()
	}

	if host == "" {
		return "unknown"
	}
	return host
}
