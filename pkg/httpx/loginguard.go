package httpx

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/nhifportal/auth/pkg/slogx"
)

// LoginGuardConfig controls the brute-force lockout: after MaxFailures failed
// logins from one origin the route is locked for the remainder of
// LockoutWindow.
type LoginGuardConfig struct {
	MaxFailures   int
	LockoutWindow time.Duration
}

// DefaultLoginGuard matches the portal's historical policy: five failed
// attempts lock an origin out for fifteen minutes.
var DefaultLoginGuard = LoginGuardConfig{
	MaxFailures:   5,
	LockoutWindow: 15 * time.Minute,
}

type lockEntry struct {
	failures    int
	lastFailure time.Time
}

// LoginGuard tracks failed login attempts per origin key and locks the route
// once the budget is exhausted. Unlike the request throttle it only counts
// failures: the handler reports the outcome via Failure and Reset, and a
// successful login clears the origin's slate.
//
// Counters are process-local; a restart forgives outstanding lockouts.
type LoginGuard struct {
	mu      sync.Mutex
	entries map[string]*lockEntry

	maxFailures int
	window      time.Duration

	now func() time.Time
}

// NewLoginGuard constructs a guard with its own counter map. Build one at
// process start and share it between the middleware and the login handler.
func NewLoginGuard(cfg LoginGuardConfig) *LoginGuard {
	if cfg.MaxFailures <= 0 {
		cfg.MaxFailures = DefaultLoginGuard.MaxFailures
	}
	if cfg.LockoutWindow <= 0 {
		cfg.LockoutWindow = DefaultLoginGuard.LockoutWindow
	}

	return &LoginGuard{
		entries:     make(map[string]*lockEntry),
		maxFailures: cfg.MaxFailures,
		window:      cfg.LockoutWindow,
		now:         time.Now,
	}
}

// Check reports whether key is currently locked out and, if so, for how much
// longer. Stale entries are forgotten on sight.
func (g *LoginGuard) Check(key string) (locked bool, retryAfter time.Duration) {
	g.mu.Lock()
	defer g.mu.Unlock()

	e, ok := g.entries[key]
	if !ok {
		return false, 0
	}

	now := g.now()
	if now.Sub(e.lastFailure) >= g.window {
		delete(g.entries, key)
		return false, 0
	}

	if e.failures >= g.maxFailures {
		return true, g.window - now.Sub(e.lastFailure)
	}

	return false, 0
}

// Failure records one failed login attempt for key.
func (g *LoginGuard) Failure(key string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	e, ok := g.entries[key]
	if !ok || now.Sub(e.lastFailure) >= g.window {
		g.entries[key] = &lockEntry{failures: 1, lastFailure: now}
		return
	}

	e.failures++
	e.lastFailure = now
}

// Reset clears the failure count for key after a successful login.
func (g *LoginGuard) Reset(key string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.entries, key)
}

// Middleware rejects requests from locked-out origins before the handler
// runs, and stashes the guard key in the context so the handler can report
// the attempt's outcome against the same key. The rejection message must not
// reveal whether the targeted account exists.
func (g *LoginGuard) Middleware(keyFn KeyExtractor) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := keyFn(r)

			if locked, retryAfter := g.Check(key); locked {
				seconds := max(int(retryAfter.Seconds()), 1)
				w.Header().Set("Retry-After", strconv.Itoa(seconds))

				slogx.FromContext(r.Context()).Warn("login lockout in effect",
					"key", key,
					"retry_after", seconds,
				)

				WriteError(w, http.StatusForbidden,
					fmt.Sprintf("Too many attempts. Try again in %d seconds", seconds))
				return
			}

			ctx := context.WithValue(r.Context(), CtxKeyGuardKey, key)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
