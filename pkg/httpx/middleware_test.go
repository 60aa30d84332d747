package httpx_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/nhifportal/auth/pkg/httpx"
	"github.com/nhifportal/auth/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

const testIssuer = "portal-auth-test"

func newVerifier(t *testing.T) *jwtx.HS256 {
	t.Helper()
	h, err := jwtx.NewHS256([]byte("0123456789abcdef0123456789abcdef"), testIssuer)
	require.NoError(t, err)
	return h
}

func signAccess(t *testing.T, h *jwtx.HS256, subject, role string, ttl time.Duration) string {
	t.Helper()
	token, err := h.Sign(jwtx.NewClaims(subject, role, jwtx.KindAccess, ttl, testIssuer, time.Now().UTC()))
	require.NoError(t, err)
	return token
}

func serve(handler http.Handler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/v1/auth/me", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestAuthnMiddlewareAttachesIdentity(t *testing.T) {
	h := newVerifier(t)

	var subject, role string
	handler := httpx.Chain(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			subject = httpx.SubjectFromContext(r.Context())
			role = httpx.RoleFromContext(r.Context())
			w.WriteHeader(http.StatusOK)
		}),
		httpx.AuthnMiddleware(h),
	)

	rec := serve(handler, signAccess(t, h, "user-42", "STUDENT", time.Minute))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "user-42", subject)
	require.Equal(t, "STUDENT", role)
}

func TestAuthnMiddlewareRejections(t *testing.T) {
	h := newVerifier(t)
	handler := httpx.Chain(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }),
		httpx.AuthnMiddleware(h),
	)

	t.Run("no token", func(t *testing.T) {
		rec := serve(handler, "")
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Contains(t, rec.Header().Get("WWW-Authenticate"), "invalid_token")
	})

	t.Run("garbage token", func(t *testing.T) {
		rec := serve(handler, "not.a.jwt")
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("expired token", func(t *testing.T) {
		expired, err := h.Sign(jwtx.NewClaims("u", "STUDENT", jwtx.KindAccess, time.Minute, testIssuer,
			time.Now().UTC().Add(-time.Hour)))
		require.NoError(t, err)

		rec := serve(handler, expired)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("refresh token presented as access", func(t *testing.T) {
		refresh, err := h.Sign(jwtx.NewClaims("u", "STUDENT", jwtx.KindRefresh, time.Hour, testIssuer,
			time.Now().UTC()))
		require.NoError(t, err)

		rec := serve(handler, refresh)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestRequireRole(t *testing.T) {
	h := newVerifier(t)
	handler := httpx.Chain(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }),
		httpx.AuthnMiddleware(h),
		httpx.RequireRole("ADMIN"),
	)

	t.Run("admin accepted", func(t *testing.T) {
		rec := serve(handler, signAccess(t, h, "admin-1", "ADMIN", time.Minute))
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("student rejected with 403", func(t *testing.T) {
		rec := serve(handler, signAccess(t, h, "student-1", "STUDENT", time.Minute))
		require.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("unknown role rejected with 403", func(t *testing.T) {
		rec := serve(handler, signAccess(t, h, "x", "SUPERUSER", time.Minute))
		require.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("authn failure still 401, not 403", func(t *testing.T) {
		rec := serve(handler, "")
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
