package auth_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/nhifportal/auth/pkg/httpx"
	"github.com/stretchr/testify/require"
)

func TestLoginLockoutAfterRepeatedFailures(t *testing.T) {
	srv := newTestServer(t)
	base := srv.URL

	register(t, base, "victim@example.com", "hunter22")

	// Five failures exhaust the budget.
	for i := 0; i < 5; i++ {
		resp := postJSON(t, base+"/v1/auth/login", "", map[string]string{
			"email": "victim@example.com", "password": "wrong-guess",
		})
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		resp.Body.Close()
	}

	// The sixth attempt is blocked before credentials are even checked,
	// correct password or not.
	resp := postJSON(t, base+"/v1/auth/login", "", map[string]string{
		"email": "victim@example.com", "password": "hunter22",
	})
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	require.NotEmpty(t, resp.Header.Get("Retry-After"))
	body := decodeBody[errorResponse](t, resp)
	require.Contains(t, body.Message, "Too many attempts")
	require.NotContains(t, body.Message, "victim@example.com")
}

func TestLoginSuccessResetsFailureCount(t *testing.T) {
	srv := newTestServer(t)
	base := srv.URL

	register(t, base, "reset@example.com", "hunter22")

	for i := 0; i < 4; i++ {
		resp := postJSON(t, base+"/v1/auth/login", "", map[string]string{
			"email": "reset@example.com", "password": "wrong-guess",
		})
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		resp.Body.Close()
	}

	// A success inside the window clears the slate.
	login(t, base, "reset@example.com", "hunter22")

	// Four more failures fit in the fresh budget without locking.
	for i := 0; i < 4; i++ {
		resp := postJSON(t, base+"/v1/auth/login", "", map[string]string{
			"email": "reset@example.com", "password": "wrong-guess",
		})
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		resp.Body.Close()
	}
}

func TestRegisterEndpointThrottles(t *testing.T) {
	// Tighten the credential-endpoint profile for this server only.
	prev := httpx.StrictLimit
	httpx.StrictLimit = httpx.RateLimitConfig{Requests: 3, Window: time.Minute}
	t.Cleanup(func() { httpx.StrictLimit = prev })

	srv := newTestServer(t)
	base := srv.URL

	for i := 0; i < 3; i++ {
		resp := postJSON(t, base+"/v1/auth/register", "", map[string]string{
			"email": "bad", "password": "x",
		})
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		resp.Body.Close()
	}

	resp := postJSON(t, base+"/v1/auth/register", "", map[string]string{
		"email": "bad", "password": "x",
	})
	require.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	require.NotEmpty(t, resp.Header.Get("Retry-After"))
	body := decodeBody[errorResponse](t, resp)
	require.NotEmpty(t, body.Message)
}
