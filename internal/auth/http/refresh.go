package http

import (
	"errors"
	"net/http"

	"github.com/nhifportal/auth/internal/auth/service"
	"github.com/nhifportal/auth/pkg/httpx"
	"github.com/nhifportal/auth/pkg/slogx"
)

type RefreshHandler struct {
	TokenService *service.TokenService
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// ServeHTTP rotates a refresh token. Expired, forged, wrong-kind and reused
// tokens all collapse into one client-facing message; only the logs know
// which it was.
func (h *RefreshHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req refreshRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.RefreshToken == "" {
		httpx.WriteError(w, http.StatusBadRequest, "refreshToken is required")
		return
	}

	pair, ident, err := h.TokenService.Rotate(ctx, req.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRefreshReuse):
			log.Warn("rejected reused refresh token")
		case errors.Is(err, service.ErrInvalidRefresh):
			// Expiry, bad signature and unknown subjects land here.
		default:
			log.Error("refresh failed", "error", err)
			httpx.WriteError(w, http.StatusInternalServerError, "Token refresh failed")
			return
		}
		httpx.WriteError(w, http.StatusUnauthorized, "Invalid or expired refresh token")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authResponse(ident, pair))
}
