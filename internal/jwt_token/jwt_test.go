package jwttoken

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"regionx/pkg/domain"
)

var (
	jwtService = NewJWTService("test-signing-key", "test-issuer")
	account    = domain.AccountID{0xde, 0xad, 0xbe, 0xef}
	expiresIn  = time.Hour
)

func Test_GenerateAccessToken(t *testing.T) {
	token, err := jwtService.GenerateAccessToken(account, expiresIn)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := jwtService.ValidateToken(token)
	require.NoError(t, err)
	got, err := claims.Account()
	require.NoError(t, err)
	assert.Equal(t, account, got)
	assert.NotEmpty(t, claims.ID)
	assert.WithinDuration(t, time.Now().Add(expiresIn), claims.ExpiresAt.Time, time.Minute)
}

func Test_ValidateToken_InvalidToken(t *testing.T) {
	_, err := jwtService.ValidateToken("invalid-token-string")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func Test_ValidateToken_ExpiredToken(t *testing.T) {
	token, err := jwtService.GenerateAccessToken(account, -time.Hour)
	require.NoError(t, err)

	_, err = jwtService.ValidateToken(token)
	require.ErrorIs(t, err, ErrTokenExpired)
}

func Test_ValidateToken_WrongIssuer(t *testing.T) {
	other := NewJWTService("test-signing-key", "someone-else")
	token, err := other.GenerateAccessToken(account, expiresIn)
	require.NoError(t, err)

	_, err = jwtService.ValidateToken(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func Test_ValidateToken_WrongAlgorithm(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject: account.String(),
		Issuer:  "test-issuer",
	}})
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = jwtService.ValidateToken(signed)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func Test_Adapter_RejectsMalformedSubject(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "not-an-account",
		Issuer:    "test-issuer",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}})
	signed, err := token.SignedString([]byte("test-signing-key"))
	require.NoError(t, err)

	_, err = NewJWTServiceAdapter(jwtService).ValidateToken(signed)
	require.ErrorIs(t, err, ErrInvalidToken)

	good, err := jwtService.GenerateAccessToken(account, expiresIn)
	require.NoError(t, err)
	claims, err := NewJWTServiceAdapter(jwtService).ValidateToken(good)
	require.NoError(t, err)
	assert.Equal(t, account, claims.Account)
}
