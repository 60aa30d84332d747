package cryptox

import (
	"crypto/sha256"
	"encoding/base64"
)

// FingerprintToken returns a deterministic SHA-256 fingerprint of a token as
// a base64url string (43 chars). Refresh tokens are persisted by fingerprint
// only, so a database leak never yields usable bearer credentials, and
// equality of fingerprints is equality of tokens.
func FingerprintToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
