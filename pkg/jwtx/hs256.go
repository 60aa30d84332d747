package jwtx

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// MinSecretSize is the smallest HMAC secret we accept. Anything shorter makes
// the signatures brute-forceable offline.
const MinSecretSize = 32

// Signer mints signed JWTs from claims.
type Signer interface {
	Sign(Claims) (string, error)
}

// Verifier checks a JWT and returns its claims when, and only when, the
// signature, expiry and token kind all hold.
type Verifier interface {
	Verify(token string, expected TokenKind) (Claims, error)
}

// HS256 signs and verifies tokens with a single process-wide HMAC-SHA256
// secret loaded once at startup. Rotating the secret invalidates every
// outstanding token; that is the accepted tradeoff of symmetric signing and
// doubles as the emergency global-logout switch.
type HS256 struct {
	secret []byte
	issuer string
}

// NewHS256 builds the signer/verifier pair over one secret.
func NewHS256(secret []byte, issuer string) (*HS256, error) {
	if len(secret) < MinSecretSize {
		return nil, fmt.Errorf("jwtx: secret must be at least %d bytes, got %d", MinSecretSize, len(secret))
	}
	if issuer == "" {
		return nil, errors.New("jwtx: issuer must not be empty")
	}
	return &HS256{secret: secret, issuer: issuer}, nil
}

// Sign turns claims into a compact signed JWT string.
func (h *HS256) Sign(claims Claims) (string, error) {
	if !claims.Kind.Valid() {
		return "", ErrWrongKind
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(h.secret)
}

// Verify parses and validates a token, then checks that its kind matches
// expected. Failures are mapped onto the package's typed errors so callers
// can distinguish them in logs; the client-facing response must not.
func (h *HS256) Verify(tokenStr string, expected TokenKind) (Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(h.issuer),
		jwt.WithExpirationRequired(),
	)

	token, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		return h.secret, nil
	})
	if err != nil {
		return Claims{}, mapParseError(err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return Claims{}, ErrMalformed
	}

	if claims.Kind != expected || !claims.Kind.Valid() {
		return Claims{}, ErrWrongKind
	}

	return *claims, nil
}

func mapParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	case errors.Is(err, jwt.ErrTokenNotValidYet):
		return ErrNotYetValid
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrInvalidSig
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return ErrIssuer
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrMalformed
	default:
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
}
