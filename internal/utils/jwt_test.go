package utils

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func newCodec() *TokenCodec {
	return NewTokenCodec("access-secret", "refresh-secret", 15*time.Minute, 7*24*time.Hour)
}

func TestTokenCodec_RoundTrip(t *testing.T) {
	c := newCodec()
	in := Payload{SubjectID: 42, Username: "alice", Role: "user"}

	for _, kind := range []TokenKind{AccessToken, RefreshToken} {
		tok, err := c.Sign(kind, in)
		require.NoError(t, err)
		out, err := c.Verify(kind, tok)
		require.NoError(t, err, kind.String())
		require.Equal(t, in, out)
	}
}

func TestTokenCodec_TokensAreUnique(t *testing.T) {
	c := newCodec()
	p := Payload{SubjectID: 1, Username: "bob", Role: "admin"}
	a, err := c.Sign(RefreshToken, p)
	require.NoError(t, err)
	b, err := c.Sign(RefreshToken, p)
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}

func TestTokenCodec_SecretsAreIndependent(t *testing.T) {
	c := newCodec()
	p := Payload{SubjectID: 7, Username: "carol", Role: "user"}

	refresh, err := c.Sign(RefreshToken, p)
	require.NoError(t, err)
	_, err = c.Verify(AccessToken, refresh)
	require.ErrorIs(t, err, ErrTokenSignature)

	// Same secrets on both sides: the typ claim still keeps the kinds apart.
	same := NewTokenCodec("s", "s", time.Minute, time.Hour)
	access, err := same.Sign(AccessToken, p)
	require.NoError(t, err)
	_, err = same.Verify(RefreshToken, access)
	require.ErrorIs(t, err, ErrTokenMalformed)
}

func TestTokenCodec_Expired(t *testing.T) {
	c := newCodec()
	issued := time.Now().Add(-time.Hour)
	c.now = func() time.Time { return issued }
	tok, err := c.Sign(AccessToken, Payload{SubjectID: 1, Username: "a", Role: "user"})
	require.NoError(t, err)

	c.now = time.Now
	_, err = c.Verify(AccessToken, tok)
	require.ErrorIs(t, err, ErrTokenExpired)

	var ve *VerificationError
	require.ErrorAs(t, err, &ve)
	require.Equal(t, AccessToken, ve.Kind)
	require.ErrorIs(t, ve.Cause, jwt.ErrTokenExpired)
}

func TestTokenCodec_Malformed(t *testing.T) {
	c := newCodec()
	_, err := c.Verify(RefreshToken, "not-a-jwt")
	require.ErrorIs(t, err, ErrTokenMalformed)

	_, err = c.Verify(RefreshToken, "")
	require.ErrorIs(t, err, ErrTokenMalformed)
}

func TestTokenCodec_TamperedSignature(t *testing.T) {
	c := newCodec()
	tok, err := c.Sign(AccessToken, Payload{SubjectID: 3, Username: "d", Role: "user"})
	require.NoError(t, err)

	parts := strings.Split(tok, ".")
	require.Len(t, parts, 3)
	forged := NewTokenCodec("other", "refresh-secret", time.Minute, time.Hour)
	other, err := forged.Sign(AccessToken, Payload{SubjectID: 3, Username: "d", Role: "admin"})
	require.NoError(t, err)
	otherParts := strings.Split(other, ".")

	_, err = c.Verify(AccessToken, parts[0]+"."+otherParts[1]+"."+parts[2])
	require.ErrorIs(t, err, ErrTokenSignature)
}

func TestTokenCodec_RejectsNoneAlgorithm(t *testing.T) {
	c := newCodec()
	claims := Claims{Type: "access", RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = c.Verify(AccessToken, tok)
	require.Error(t, err)
	var ve *VerificationError
	require.ErrorAs(t, err, &ve)
}

func TestHashRefreshRaw(t *testing.T) {
	d := HashRefreshRaw("token")
	require.Len(t, d, 64)
	require.Equal(t, d, HashRefreshRaw("token"))
	require.NotEqual(t, d, HashRefreshRaw("token2"))
}
