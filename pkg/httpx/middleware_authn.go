package httpx

import (
	"context"
	"net/http"
	"strings"

	"github.com/nhifportal/auth/pkg/jwtx"
	"github.com/nhifportal/auth/pkg/slogx"
)

// AuthnMiddleware is the authentication gate. It extracts the bearer token,
// verifies it as an access token, and attaches the resolved identity to the
// request context. Missing, malformed, expired and mis-signed tokens all
// surface as the same 401 to the client; the typed verification error is only
// visible in logs.
func AuthnMiddleware(v jwtx.Verifier) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			authz := r.Header.Get("Authorization")
			if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
				writeBearerError(w, "missing bearer token")
				return
			}
			raw := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer"))

			claims, err := v.Verify(raw, jwtx.KindAccess)
			if err != nil {
				log.Warn("access token rejected", "err", err)
				writeBearerError(w, "invalid or expired token")
				return
			}

			ctx = contextWithAuth(ctx, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func contextWithAuth(ctx context.Context, c jwtx.Claims) context.Context {
	ctx = context.WithValue(ctx, CtxKeySubjectID, c.Subject)
	ctx = context.WithValue(ctx, CtxKeyRole, c.Role)
	ctx = context.WithValue(ctx, CtxKeyClaims, c)
	return ctx
}

// RFC 6750-style error response for bearer auth.
func writeBearerError(w http.ResponseWriter, desc string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="`+desc+`"`)
	WriteError(w, http.StatusUnauthorized, desc)
}
