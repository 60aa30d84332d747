package httpx

import (
	"net/http"

	"github.com/nhifportal/auth/pkg/slogx"
)

// RequireRole is the authorization gate: the authenticated caller must hold
// exactly the given role. It runs after AuthnMiddleware and is independently
// composable with it; the two produce distinguishable log lines even though
// the client only sees 401 vs 403.
//
// An unknown role claim is rejected the same as a mismatch. Roles form a
// closed set, so anything outside it is treated as hostile input.
func RequireRole(required string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			have := RoleFromContext(r.Context())

			if have == "" || have != required {
				slogx.FromContext(r.Context()).Warn("role check failed",
					"required", required,
					"have", have,
					"subject", SubjectFromContext(r.Context()),
				)
				WriteError(w, http.StatusForbidden, "insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
