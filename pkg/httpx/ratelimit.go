package httpx

import (
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/nhifportal/auth/pkg/slogx"
)

// RateLimitConfig defines a fixed-window throttle: at most Requests admissions
// per Window for each key.
type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

// Default profiles for the different endpoint classes. Each can be overridden
// via environment variables (see ParseRateLimitFromEnv), which the end-to-end
// tests rely on to avoid throttling themselves.
var (
	// StrictLimit for credential endpoints (register, login, refresh).
	// Override with: RATELIMIT_STRICT_REQUESTS, RATELIMIT_STRICT_WINDOW_SEC
	StrictLimit = RateLimitConfig{Requests: 10, Window: time.Minute}

	// ModerateLimit for authenticated state-changing operations.
	// Override with: RATELIMIT_MODERATE_REQUESTS, RATELIMIT_MODERATE_WINDOW_SEC
	ModerateLimit = RateLimitConfig{Requests: 30, Window: time.Minute}

	// GlobalLimit caps everything a single origin can do, matching the
	// portal-wide 100 requests per 15 minutes budget.
	// Override with: RATELIMIT_GLOBAL_REQUESTS, RATELIMIT_GLOBAL_WINDOW_SEC
	GlobalLimit = RateLimitConfig{Requests: 100, Window: 15 * time.Minute}
)

func init() {
	StrictLimit = ParseRateLimitFromEnv("STRICT", StrictLimit)
	ModerateLimit = ParseRateLimitFromEnv("MODERATE", ModerateLimit)
	GlobalLimit = ParseRateLimitFromEnv("GLOBAL", GlobalLimit)
}

// ParseRateLimitFromEnv reads overrides for a rate limit profile from
// RATELIMIT_{prefix}_REQUESTS and RATELIMIT_{prefix}_WINDOW_SEC.
func ParseRateLimitFromEnv(prefix string, defaults RateLimitConfig) RateLimitConfig {
	config := defaults

	if val := os.Getenv("RATELIMIT_" + prefix + "_REQUESTS"); val != "" {
		if requests, err := strconv.Atoi(val); err == nil && requests > 0 {
			config.Requests = requests
		}
	}

	if val := os.Getenv("RATELIMIT_" + prefix + "_WINDOW_SEC"); val != "" {
		if sec, err := strconv.Atoi(val); err == nil && sec > 0 {
			config.Window = time.Duration(sec) * time.Second
		}
	}

	return config
}

// KeyExtractor derives the throttling key from a request (client IP, IP+route,
// and so on).
type KeyExtractor func(*http.Request) string

// IPKey throttles by originating client address.
func IPKey(r *http.Request) string { return ClientIP(r) }

// IPRouteKey throttles by client address and route, so a noisy origin on one
// endpoint does not consume another endpoint's budget.
func IPRouteKey(r *http.Request) string { return ClientIP(r) + "|" + r.URL.Path }

type windowEntry struct {
	count       int
	windowStart time.Time
}

// FixedWindowLimiter implements the per-key fixed-window counter: the window
// is anchored the first time a key is seen, requests beyond the ceiling are
// rejected with the remaining window time, and the counter restarts on the
// first request after the window has elapsed.
//
// State is process-local and does not survive restarts; the worst case of a
// restart is a brief reset of an attacker's budget.
type FixedWindowLimiter struct {
	mu      sync.Mutex
	entries map[string]*windowEntry

	limit  int
	window time.Duration

	now       func() time.Time
	lastSweep time.Time
}

// NewFixedWindowLimiter constructs a limiter for one config profile. Each
// limiter owns its own counters; construct one per guarded surface at process
// start and share it by reference.
func NewFixedWindowLimiter(cfg RateLimitConfig) *FixedWindowLimiter {
	return &FixedWindowLimiter{
		entries: make(map[string]*windowEntry),
		limit:   cfg.Requests,
		window:  cfg.Window,
		now:     time.Now,
	}
}

// Admit decides whether a request for key fits in the current window. When it
// does not, retryAfter reports the time until the window resets. The
// check-and-increment is atomic per limiter, so concurrent requests for the
// same key cannot sneak past the ceiling.
func (l *FixedWindowLimiter) Admit(key string) (allowed bool, retryAfter time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.maybeSweep(now)

	e, ok := l.entries[key]
	if !ok || now.Sub(e.windowStart) >= l.window {
		l.entries[key] = &windowEntry{count: 1, windowStart: now}
		return true, 0
	}

	if e.count >= l.limit {
		return false, l.window - now.Sub(e.windowStart)
	}

	e.count++
	return true, 0
}

// Reset clears the counter for key. Exposed for tests and for guards layered
// on top.
func (l *FixedWindowLimiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.entries, key)
}

// maybeSweep drops entries whose window has long passed so that one-off keys
// do not accumulate forever. Called with the lock held.
func (l *FixedWindowLimiter) maybeSweep(now time.Time) {
	if now.Sub(l.lastSweep) < 5*l.window {
		return
	}
	l.lastSweep = now

	for key, e := range l.entries {
		if now.Sub(e.windowStart) >= l.window {
			delete(l.entries, key)
		}
	}
}

// RateLimitMiddleware rejects requests over the limiter's budget with 429 and
// a Retry-After hint.
func RateLimitMiddleware(l *FixedWindowLimiter, keyFn KeyExtractor) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log := slogx.FromContext(r.Context())

			key := keyFn(r)
			if key == "" {
				// No key means we cannot attribute the request; allow but flag it.
				log.Warn("rate limit: unable to extract key, allowing request")
				next.ServeHTTP(w, r)
				return
			}

			allowed, retryAfter := l.Admit(key)
			if !allowed {
				seconds := max(int(retryAfter.Seconds()), 1)
				w.Header().Set("Retry-After", strconv.Itoa(seconds))
				w.Header().Set("X-RateLimit-Limit", strconv.Itoa(l.limit))
				w.Header().Set("X-RateLimit-Window", l.window.String())

				log.Warn("rate limit exceeded",
					"key", key,
					"endpoint", r.URL.Path,
					"retry_after", seconds,
				)

				WriteError(w, http.StatusTooManyRequests, "Too many requests, please try again later")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
