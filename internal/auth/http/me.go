package http

import (
	"errors"
	"net/http"

	"github.com/nhifportal/auth/internal/auth/service"
	"github.com/nhifportal/auth/pkg/httpx"
	"github.com/nhifportal/auth/pkg/idx"
	"github.com/nhifportal/auth/pkg/slogx"
)

type MeHandler struct {
	IdentityService *service.IdentityService
}

// ServeHTTP returns the authenticated caller's profile.
func (h *MeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	subject := httpx.SubjectFromContext(ctx)
	subjectID, err := idx.Parse(subject)
	if err != nil {
		httpx.WriteError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	ident, err := h.IdentityService.Get(ctx, subjectID)
	if err != nil {
		if errors.Is(err, service.ErrIdentityMissing) {
			// Valid token for a deleted account.
			httpx.WriteError(w, http.StatusUnauthorized, "Authentication required")
			return
		}
		log.Error("failed to load identity", "subject_id", subject, "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "Failed to load profile")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, identityResponse(ident))
}
