package security

import (
	"net/http"
	"strings"
	"sync"
	"time"
)

// LoginThrottle limits login attempts per client key. Each key gets a
// budget of attempts per window; the budget refills when the window
// elapses. Stale entries are dropped on the fly.
type LoginThrottle struct {
	mu       sync.Mutex
	attempts map[string]*attemptWindow
	limit    int
	window   time.Duration
}

type attemptWindow struct {
	count   int
	started time.Time
}

func NewLoginThrottle(limit int, window time.Duration) *LoginThrottle {
	return &LoginThrottle{
		attempts: make(map[string]*attemptWindow),
		limit:    limit,
		window:   window,
	}
}

// Allow records an attempt for key and reports whether it is within
// the limit
func (t *LoginThrottle) Allow(key string) bool {
	now := time.Now()

	t.mu.Lock()
	defer t.mu.Unlock()

	t.sweep(now)

	w, ok := t.attempts[key]
	if !ok || now.Sub(w.started) >= t.window {
		t.attempts[key] = &attemptWindow{count: 1, started: now}
		return true
	}

	w.count++
	return w.count <= t.limit
}

// Reset clears the attempt history for key, used after a successful
// login so a legitimate user is not penalised for earlier typos
func (t *LoginThrottle) Reset(key string) {
	t.mu.Lock()
	delete(t.attempts, key)
	t.mu.Unlock()
}

// sweep drops expired windows; called with the lock held
func (t *LoginThrottle) sweep(now time.Time) {
	if len(t.attempts) < 1024 {
		return
	}
	for key, w := range t.attempts {
		if now.Sub(w.started) >= t.window {
			delete(t.attempts, key)
		}
	}
}

// ClientIP extracts the originating client IP from a request,
// honouring proxy headers
func ClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		// First hop is the client
		if idx := strings.IndexByte(forwarded, ','); idx >= 0 {
			return strings.TrimSpace(forwarded[:idx])
		}
		return strings.TrimSpace(forwarded)
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	host := r.RemoteAddr
	if idx := strings.LastIndexByte(host, ':'); idx >= 0 {
		return host[:idx]
	}
	return host
}
