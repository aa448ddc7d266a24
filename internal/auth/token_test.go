package auth_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/patrimonio-app/patrimonio/internal/auth"
)

func TestTokenRoundTrip(t *testing.T) {
	issuer := newIssuer(t, nil)
	token, err := issuer.Issue(auth.User{ID: 42, Username: "admin"})
	require.NoError(t, err)

	id, err := issuer.Verify(token.AccessToken)
	require.NoError(t, err)
	require.EqualValues(t, 42, id)
}

func TestTokenExpired(t *testing.T) {
	past := time.Now().Add(-2 * time.Hour)
	token, err := newIssuer(t, func() time.Time { return past }).Issue(auth.User{ID: 1})
	require.NoError(t, err)

	_, err = newIssuer(t, nil).Verify(token.AccessToken)
	require.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestTokenRejectsForeignSignatures(t *testing.T) {
	issuer := newIssuer(t, nil)
	claims := jwt.RegisteredClaims{
		Subject:   "1",
		Issuer:    "patrimonio",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = issuer.Verify(unsigned)
	require.ErrorIs(t, err, auth.ErrInvalidToken)

	otherKey, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("another-secret"))
	require.NoError(t, err)
	_, err = issuer.Verify(otherKey)
	require.ErrorIs(t, err, auth.ErrInvalidToken)

	claims.Issuer = "someone-else"
	wrongIssuer, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret-please-change-0123456789"))
	require.NoError(t, err)
	_, err = issuer.Verify(wrongIssuer)
	require.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestNewTokenIssuerValidatesConfig(t *testing.T) {
	_, err := auth.NewTokenIssuer(auth.TokenConfig{TTL: time.Hour})
	require.Error(t, err)
	_, err = auth.NewTokenIssuer(auth.TokenConfig{Secret: []byte("x")})
	require.Error(t, err)
}
