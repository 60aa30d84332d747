package httpx

import "context"

type ctxKey string

const (
	CtxKeySubjectID ctxKey = "subject_id"
	CtxKeyRole      ctxKey = "role"
	CtxKeyClaims    ctxKey = "claims"
	CtxKeyGuardKey  ctxKey = "guard_key"
)

// SubjectFromContext returns the authenticated subject id, or "" when the
// request did not pass the authentication gate.
func SubjectFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(CtxKeySubjectID).(string); ok {
		return v
	}
	return ""
}

// RoleFromContext returns the authenticated subject's role claim, or "".
func RoleFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(CtxKeyRole).(string); ok {
		return v
	}
	return ""
}

// GuardKeyFromContext returns the brute-force guard key computed by the
// LoginGuard middleware, so the handler can record failures against the same
// key the gate checks.
func GuardKeyFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(CtxKeyGuardKey).(string); ok {
		return v
	}
	return ""
}
