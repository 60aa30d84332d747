package http

import (
	"errors"
	"net/http"

	"github.com/nhifportal/auth/internal/auth/service"
	"github.com/nhifportal/auth/pkg/httpx"
	"github.com/nhifportal/auth/pkg/slogx"
)

type LoginHandler struct {
	IdentityService *service.IdentityService
	TokenService    *service.TokenService

	// Guard is the shared brute-force tracker. The lockout middleware checks
	// it before this handler runs; the handler reports each attempt's
	// outcome against the guard key it finds in the context.
	Guard *httpx.LoginGuard
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ServeHTTP checks credentials and issues a token pair. Every failure
// response is the same regardless of whether the account exists.
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)
	guardKey := httpx.GuardKeyFromContext(ctx)

	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if req.Email == "" || req.Password == "" {
		httpx.WriteError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	ident, err := h.IdentityService.Login(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			if guardKey != "" {
				h.Guard.Failure(guardKey)
			}
			httpx.WriteError(w, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		log.Error("login failed", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "Login failed")
		return
	}

	pair, err := h.TokenService.IssuePair(ctx, ident)
	if err != nil {
		log.Error("failed to issue tokens",
			"subject_id", ident.ID.String(), "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "Login failed")
		return
	}

	if guardKey != "" {
		h.Guard.Reset(guardKey)
	}

	httpx.WriteJSON(w, http.StatusOK, authResponse(ident, pair))
}
