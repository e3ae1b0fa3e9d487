package jwttoken

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"regionx/pkg/domain"
	dErrors "regionx/pkg/domain-errors"
)

var (
	ErrTokenExpired = dErrors.New(dErrors.CodeUnauthorized, "token has expired")
	ErrInvalidToken = dErrors.New(dErrors.CodeUnauthorized, "invalid token")
)

// Claims are the access token claims. The subject is the signing account in
// its 0x-prefixed hex form.
type Claims struct {
	jwt.RegisteredClaims
}

// JWTService handles JWT creation and validation
type JWTService struct {
	signingKey []byte
	issuer     string
	now        func() time.Time
}

func NewJWTService(signingKey string, issuer string) *JWTService {
	return &JWTService{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		now:        time.Now,
	}
}

// GenerateAccessToken signs a token for account valid for expiresIn.
func (s *JWTService) GenerateAccessToken(account domain.AccountID, expiresIn time.Duration) (string, error) {
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   account.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    s.issuer,
			ID:        uuid.NewString(),
		},
	})
	return token.SignedString(s.signingKey)
}

func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	}, jwt.WithIssuer(s.issuer), jwt.WithTimeFunc(s.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Account parses the subject.
func (c *Claims) Account() (domain.AccountID, error) {
	account, err := domain.ParseAccountID(c.Subject)
	if err != nil {
		return domain.AccountID{}, ErrInvalidToken
	}
	return account, nil
}
