package auth_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	httpapi "github.com/nhifportal/auth/internal/auth/http"
	"github.com/nhifportal/auth/internal/auth/service"
	"github.com/nhifportal/auth/internal/auth/store/drivers/sqlite"
	"github.com/nhifportal/auth/pkg/cryptox"
	"github.com/nhifportal/auth/pkg/httpx"
	"github.com/nhifportal/auth/pkg/jwtx"
	"github.com/nhifportal/auth/pkg/slogx"
	"github.com/stretchr/testify/require"
)

/*
 * In-process end-to-end tests: a real router, real sqlite store and real
 * signer behind an httptest.Server, driven over HTTP like any client would.
 */

const (
	adminEmail    = "admin@example.com"
	adminPassword = "AdminBoot1!"
	testIssuer    = "portal-auth-e2e"
)

func init() {
	// The flow tests fire dozens of requests from one address; widen the
	// shared profiles so only the dedicated throttling tests hit a ceiling.
	httpx.StrictLimit = httpx.RateLimitConfig{Requests: 1000, Window: time.Minute}
	httpx.ModerateLimit = httpx.RateLimitConfig{Requests: 1000, Window: time.Minute}
	httpx.GlobalLimit = httpx.RateLimitConfig{Requests: 10000, Window: time.Minute}
}

type authResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	SubjectID    string `json:"subjectId"`
	Email        string `json:"email"`
	Role         string `json:"role"`
}

type errorResponse struct {
	Message string `json:"message"`
}

// newTestServer stands up the full service on an ephemeral port with a
// temp-file database and a seeded admin account.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	tmp := t.TempDir()
	cryptox.SetPepperPath(filepath.Join(tmp, "pepper"))

	st, err := sqlite.NewStore(filepath.Join(tmp, "auth.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	signer, err := jwtx.NewHS256([]byte("e2e-secret-0123456789abcdef01234"), testIssuer)
	require.NoError(t, err)

	identities := &service.IdentityService{Store: st}
	tokens := &service.TokenService{
		Signer:     signer,
		Verifier:   signer,
		Store:      st,
		Issuer:     testIssuer,
		AccessTTL:  time.Minute,
		RefreshTTL: time.Hour,
	}

	boot := &service.BootstrapService{
		Identities:    identities,
		AdminEmail:    adminEmail,
		AdminPassword: adminPassword,
	}
	require.NoError(t, boot.EnsureAdmin(context.Background()))

	logger := slogx.New(slogx.Config{
		Service: "portal-auth",
		Version: "test",
		Env:     "test",
		Level:   "error",
		Output:  io.Discard,
	})

	router := httpapi.NewRouter(signer, "test", st, logger)
	router.IdentityService = identities
	router.TokenService = tokens
	router.ApplyRoutes()

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url, bearer string, body any) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req, err := http.NewRequest(http.MethodPost, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func getJSON(t *testing.T, url, bearer string) *http.Response {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, url, nil)
	require.NoError(t, err)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()

	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func register(t *testing.T, base, email, password string) authResponse {
	t.Helper()

	resp := postJSON(t, base+"/v1/auth/register", "", map[string]string{
		"email":    email,
		"fullName": "E2E Student",
		"password": password,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return decodeBody[authResponse](t, resp)
}

func login(t *testing.T, base, email, password string) authResponse {
	t.Helper()

	resp := postJSON(t, base+"/v1/auth/login", "", map[string]string{
		"email":    email,
		"password": password,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return decodeBody[authResponse](t, resp)
}
