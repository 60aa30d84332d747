package http

import (
	"net/http"

	"github.com/nhifportal/auth/internal/auth/service"
	"github.com/nhifportal/auth/pkg/httpx"
	"github.com/nhifportal/auth/pkg/idx"
	"github.com/nhifportal/auth/pkg/slogx"
)

type LogoutHandler struct {
	TokenService *service.TokenService
}

// ServeHTTP revokes the caller's refresh session. Requires a valid access
// token; the subject is taken from the token, never from the body, so a user
// can only log themselves out. Idempotent.
func (h *LogoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	subject := httpx.SubjectFromContext(ctx)
	subjectID, err := idx.Parse(subject)
	if err != nil {
		httpx.WriteError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	if err := h.TokenService.Revoke(ctx, subjectID); err != nil {
		log.Error("logout failed", "subject_id", subject, "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "Logout failed")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
