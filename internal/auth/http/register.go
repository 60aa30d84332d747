package http

import (
	"errors"
	"net/http"

	"github.com/nhifportal/auth/internal/auth/service"
	"github.com/nhifportal/auth/pkg/httpx"
	"github.com/nhifportal/auth/pkg/slogx"
)

type RegisterHandler struct {
	IdentityService *service.IdentityService
	TokenService    *service.TokenService
}

type registerRequest struct {
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	Password string `json:"password"`
}

// ServeHTTP creates a STUDENT account and signs it in. The role is never
// taken from the request; self-registration always yields a student.
func (h *RegisterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req registerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if !validEmail(req.Email) {
		httpx.WriteError(w, http.StatusBadRequest, "A valid email address is required")
		return
	}
	if !validPassword(req.Password) {
		httpx.WriteError(w, http.StatusBadRequest, "Password must be between 6 and 50 characters")
		return
	}

	ident, err := h.IdentityService.Register(ctx, req.Email, req.FullName, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			httpx.WriteError(w, http.StatusConflict, "An account with this email already exists")
			return
		}
		log.Error("registration failed", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "Registration failed")
		return
	}

	pair, err := h.TokenService.IssuePair(ctx, ident)
	if err != nil {
		log.Error("failed to issue tokens after registration",
			"subject_id", ident.ID.String(), "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "Registration failed")
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, authResponse(ident, pair))
}
