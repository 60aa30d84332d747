package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/nhifportal/auth/internal/auth/domain"
	"github.com/nhifportal/auth/internal/auth/service"
	"github.com/nhifportal/auth/internal/auth/store"
	"github.com/nhifportal/auth/pkg/httpx"
	"github.com/nhifportal/auth/pkg/jwtx"
	"github.com/nhifportal/auth/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	verifier     jwtx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store store.Store
	guard *httpx.LoginGuard

	strictLimiter   *httpx.FixedWindowLimiter
	moderateLimiter *httpx.FixedWindowLimiter
	globalLimiter   *httpx.FixedWindowLimiter

	IdentityService *service.IdentityService
	TokenService    *service.TokenService
}

func NewRouter(
	verifier jwtx.Verifier,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		verifier:     verifier,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,

		guard:           httpx.NewLoginGuard(httpx.DefaultLoginGuard),
		strictLimiter:   httpx.NewFixedWindowLimiter(httpx.StrictLimit),
		moderateLimiter: httpx.NewFixedWindowLimiter(httpx.ModerateLimit),
		globalLimiter:   httpx.NewFixedWindowLimiter(httpx.GlobalLimit),
	}

	// Every request passes the access log and the portal-wide origin budget.
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		httpx.RateLimitMiddleware(r.globalLimiter, httpx.IPKey),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerAdmin()
	r.registerSystem()
}

// ServeHTTP implements http.Handler for Router and applies the global
// middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	// POST /register - strict limit; anonymous signup endpoint
	registerHandler := &RegisterHandler{
		IdentityService: r.IdentityService,
		TokenService:    r.TokenService,
	}
	r.Mux.Handle("POST /v1/auth/register",
		httpx.Chain(registerHandler,
			httpx.RateLimitMiddleware(r.strictLimiter, httpx.IPRouteKey),
		),
	)

	// POST /login - lockout guard first so locked origins are rejected
	// before they consume a credential check
	loginHandler := &LoginHandler{
		IdentityService: r.IdentityService,
		TokenService:    r.TokenService,
		Guard:           r.guard,
	}
	r.Mux.Handle("POST /v1/auth/login",
		httpx.Chain(loginHandler,
			r.guard.Middleware(httpx.IPRouteKey),
			httpx.RateLimitMiddleware(r.strictLimiter, httpx.IPRouteKey),
		),
	)

	// POST /refresh - strict limit; the token itself is the credential
	refreshHandler := &RefreshHandler{TokenService: r.TokenService}
	r.Mux.Handle("POST /v1/auth/refresh",
		httpx.Chain(refreshHandler,
			httpx.RateLimitMiddleware(r.strictLimiter, httpx.IPRouteKey),
		),
	)

	// POST /logout - authenticated
	logoutHandler := &LogoutHandler{TokenService: r.TokenService}
	r.Mux.Handle("POST /v1/auth/logout",
		httpx.Chain(logoutHandler,
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitMiddleware(r.moderateLimiter, httpx.IPRouteKey),
		),
	)

	// GET /me - authenticated
	meHandler := &MeHandler{IdentityService: r.IdentityService}
	r.Mux.Handle("GET /v1/auth/me",
		httpx.Chain(meHandler,
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitMiddleware(r.moderateLimiter, httpx.IPRouteKey),
		),
	)
}

func (r *Router) registerAdmin() {
	h := &AdminIdentitiesHandler{IdentityService: r.IdentityService}

	securedList := httpx.Chain(http.HandlerFunc(h.HandleList),
		httpx.AuthnMiddleware(r.verifier),
		httpx.RequireRole(domain.RoleAdmin.String()),
		httpx.RateLimitMiddleware(r.moderateLimiter, httpx.IPRouteKey),
	)
	securedCreate := httpx.Chain(http.HandlerFunc(h.HandleCreate),
		httpx.AuthnMiddleware(r.verifier),
		httpx.RequireRole(domain.RoleAdmin.String()),
		httpx.RateLimitMiddleware(r.moderateLimiter, httpx.IPRouteKey),
	)

	r.Mux.Handle("GET /v1/admin/identities", securedList)
	r.Mux.Handle("POST /v1/admin/identities", securedCreate)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez", LivezHandler(r.startTime, r.buildVersion))
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.startTime, r.buildVersion, r.store))
}
