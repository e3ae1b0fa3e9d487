package jwttoken

import (
	authmw "regionx/pkg/platform/middleware/auth"
)

// JWTServiceAdapter lets the auth middleware validate tokens.
type JWTServiceAdapter struct {
	service *JWTService
}

func NewJWTServiceAdapter(service *JWTService) *JWTServiceAdapter {
	return &JWTServiceAdapter{service: service}
}

func (a *JWTServiceAdapter) ValidateToken(tokenString string) (*authmw.JWTClaims, error) {
	claims, err := a.service.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	account, err := claims.Account()
	if err != nil {
		return nil, err
	}
	return &authmw.JWTClaims{Account: account, JTI: claims.ID}, nil
}
