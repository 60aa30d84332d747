package http

import (
	"encoding/json"
	"net/http"
	"regexp"
	"strings"

	"github.com/nhifportal/auth/internal/auth/domain"
	"github.com/nhifportal/auth/pkg/httpx"
)

// AuthResponse is the body returned by register, login and refresh.
type AuthResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	SubjectID    string `json:"subjectId"`
	Email        string `json:"email"`
	Role         string `json:"role"`
}

// IdentityResponse is the profile shape returned by /me and the admin list.
type IdentityResponse struct {
	SubjectID string `json:"subjectId"`
	Email     string `json:"email"`
	FullName  string `json:"fullName"`
	Role      string `json:"role"`
	CreatedAt string `json:"createdAt"`
}

func authResponse(ident domain.Identity, pair domain.TokenPair) AuthResponse {
	return AuthResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		SubjectID:    ident.ID.String(),
		Email:        ident.Email,
		Role:         ident.Role.String(),
	}
}

func identityResponse(ident domain.Identity) IdentityResponse {
	return IdentityResponse{
		SubjectID: ident.ID.String(),
		Email:     ident.Email,
		FullName:  ident.FullName,
		Role:      ident.Role.String(),
		CreatedAt: ident.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
}

// decodeJSON reads a JSON request body into dst, rejecting unknown fields and
// oversized bodies.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func validEmail(email string) bool {
	return emailPattern.MatchString(strings.TrimSpace(email))
}

// Password length bounds enforced at the edge; the hasher itself takes any
// string.
const (
	minPasswordLen = 6
	maxPasswordLen = 50
)

func validPassword(password string) bool {
	return len(password) >= minPasswordLen && len(password) <= maxPasswordLen
}
