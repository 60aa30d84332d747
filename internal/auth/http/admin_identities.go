package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/nhifportal/auth/internal/auth/domain"
	"github.com/nhifportal/auth/internal/auth/service"
	"github.com/nhifportal/auth/pkg/httpx"
	"github.com/nhifportal/auth/pkg/slogx"
)

// AdminIdentitiesHandler serves the account-administration surface. Every
// route through it sits behind the ADMIN role gate.
type AdminIdentitiesHandler struct {
	IdentityService *service.IdentityService
}

type createIdentityRequest struct {
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type createIdentityResponse struct {
	IdentityResponse

	// GeneratedPassword is set only when the request omitted a password.
	// It is shown exactly once and never stored in recoverable form.
	GeneratedPassword string `json:"generatedPassword,omitempty"`
}

// HandleList returns identities in creation order, paged via limit/offset
// query parameters.
func (h *AdminIdentitiesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	idents, err := h.IdentityService.List(ctx, limit, offset)
	if err != nil {
		log.Error("failed to list identities", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "Failed to list accounts")
		return
	}

	out := make([]IdentityResponse, 0, len(idents))
	for _, ident := range idents {
		out = append(out, identityResponse(ident))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleCreate creates an account with an explicit role. When the password is
// omitted one is generated and returned once in the response.
func (h *AdminIdentitiesHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req createIdentityRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if !validEmail(req.Email) {
		httpx.WriteError(w, http.StatusBadRequest, "A valid email address is required")
		return
	}
	role, err := domain.ParseRole(req.Role)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "Role must be STUDENT or ADMIN")
		return
	}
	if req.Password != "" && !validPassword(req.Password) {
		httpx.WriteError(w, http.StatusBadRequest, "Password must be between 6 and 50 characters")
		return
	}

	generated := req.Password == ""

	ident, password, err := h.IdentityService.CreateWithRole(ctx, req.Email, req.FullName, req.Password, role)
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			httpx.WriteError(w, http.StatusConflict, "An account with this email already exists")
			return
		}
		log.Error("failed to create identity", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "Failed to create account")
		return
	}

	resp := createIdentityResponse{IdentityResponse: identityResponse(ident)}
	if generated {
		resp.GeneratedPassword = password
	}
	httpx.WriteJSON(w, http.StatusCreated, resp)
}
