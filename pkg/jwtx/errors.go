package jwtx

import "errors"

// Typed verification failures. Handlers branch on these for logging only; the
// client always sees the same generic rejection.
var (
	ErrMalformed   = errors.New("jwtx: malformed token")
	ErrInvalidSig  = errors.New("jwtx: invalid signature")
	ErrExpired     = errors.New("jwtx: token expired")
	ErrNotYetValid = errors.New("jwtx: token not yet valid")
	ErrWrongKind   = errors.New("jwtx: wrong token kind")
	ErrIssuer      = errors.New("jwtx: issuer mismatch")
)
