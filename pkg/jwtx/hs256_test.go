package jwtx_test

import (
	"strings"
	"testing"
	"time"

	"github.com/nhifportal/auth/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

const testIssuer = "portal-auth-test"

func newTestHS256(t *testing.T) *jwtx.HS256 {
	t.Helper()
	h, err := jwtx.NewHS256([]byte("0123456789abcdef0123456789abcdef"), testIssuer)
	require.NoError(t, err)
	return h
}

func TestNewHS256RejectsWeakSecret(t *testing.T) {
	_, err := jwtx.NewHS256([]byte("short"), testIssuer)
	require.Error(t, err)

	_, err = jwtx.NewHS256([]byte("0123456789abcdef0123456789abcdef"), "")
	require.Error(t, err)
}

func TestSignVerifyRoundTrip(t *testing.T) {
	h := newTestHS256(t)
	now := time.Now().UTC()

	for _, kind := range []jwtx.TokenKind{jwtx.KindAccess, jwtx.KindRefresh} {
		claims := jwtx.NewClaims("user-1", "STUDENT", kind, time.Minute, testIssuer, now)
		token, err := h.Sign(claims)
		require.NoError(t, err)

		got, err := h.Verify(token, kind)
		require.NoError(t, err)
		require.Equal(t, "user-1", got.Subject)
		require.Equal(t, "STUDENT", got.Role)
		require.Equal(t, kind, got.Kind)
		require.NotEmpty(t, got.ID, "jti must be set")
	}
}

func TestVerifyJTIsAreUnique(t *testing.T) {
	now := time.Now().UTC()
	a := jwtx.NewClaims("u", "STUDENT", jwtx.KindAccess, time.Minute, testIssuer, now)
	b := jwtx.NewClaims("u", "STUDENT", jwtx.KindAccess, time.Minute, testIssuer, now)
	require.NotEqual(t, a.ID, b.ID)
}

func TestVerifyRejectsWrongKind(t *testing.T) {
	h := newTestHS256(t)

	refresh, err := h.Sign(jwtx.NewClaims("user-1", "STUDENT", jwtx.KindRefresh, time.Minute, testIssuer, time.Now().UTC()))
	require.NoError(t, err)

	_, err = h.Verify(refresh, jwtx.KindAccess)
	require.ErrorIs(t, err, jwtx.ErrWrongKind)
}

func TestVerifyRejectsExpired(t *testing.T) {
	h := newTestHS256(t)

	issued := time.Now().UTC().Add(-2 * time.Minute)
	token, err := h.Sign(jwtx.NewClaims("user-1", "STUDENT", jwtx.KindAccess, time.Minute, testIssuer, issued))
	require.NoError(t, err)

	_, err = h.Verify(token, jwtx.KindAccess)
	require.ErrorIs(t, err, jwtx.ErrExpired)
}

func TestVerifyRejectsTamperedSignature(t *testing.T) {
	h := newTestHS256(t)

	token, err := h.Sign(jwtx.NewClaims("user-1", "STUDENT", jwtx.KindAccess, time.Minute, testIssuer, time.Now().UTC()))
	require.NoError(t, err)

	// Flip a character in the signature segment.
	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	_, err = h.Verify(tampered, jwtx.KindAccess)
	require.ErrorIs(t, err, jwtx.ErrInvalidSig)
}

func TestVerifyRejectsForeignSecret(t *testing.T) {
	h := newTestHS256(t)
	other, err := jwtx.NewHS256([]byte("ffffffffffffffffffffffffffffffff"), testIssuer)
	require.NoError(t, err)

	token, err := other.Sign(jwtx.NewClaims("user-1", "ADMIN", jwtx.KindAccess, time.Minute, testIssuer, time.Now().UTC()))
	require.NoError(t, err)

	_, err = h.Verify(token, jwtx.KindAccess)
	require.ErrorIs(t, err, jwtx.ErrInvalidSig)
}

func TestVerifyRejectsWrongIssuer(t *testing.T) {
	h := newTestHS256(t)
	foreign, err := jwtx.NewHS256([]byte("0123456789abcdef0123456789abcdef"), "someone-else")
	require.NoError(t, err)

	token, err := foreign.Sign(jwtx.NewClaims("user-1", "STUDENT", jwtx.KindAccess, time.Minute, "someone-else", time.Now().UTC()))
	require.NoError(t, err)

	_, err = h.Verify(token, jwtx.KindAccess)
	require.ErrorIs(t, err, jwtx.ErrIssuer)
}

func TestVerifyRejectsMalformed(t *testing.T) {
	h := newTestHS256(t)

	for _, in := range []string{"", "garbage", "a.b", "a.b.c.d"} {
		_, err := h.Verify(in, jwtx.KindAccess)
		require.ErrorIs(t, err, jwtx.ErrMalformed, "input %q", in)
	}
}

func TestSignRejectsUnknownKind(t *testing.T) {
	h := newTestHS256(t)
	claims := jwtx.NewClaims("user-1", "STUDENT", jwtx.TokenKind("session"), time.Minute, testIssuer, time.Now().UTC())

	_, err := h.Sign(claims)
	require.ErrorIs(t, err, jwtx.ErrWrongKind)
}
