package auth

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"regionx/pkg/domain"
	"regionx/pkg/requestcontext"
)

type stubValidator struct {
	claims *JWTClaims
	err    error
}

func (s stubValidator) ValidateToken(string) (*JWTClaims, error) { return s.claims, s.err }

func TestRequireAuth(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	alice := domain.AccountID{1}

	var caller domain.AccountID
	var signed bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		caller, signed = requestcontext.Caller(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})

	t.Run("valid token sets the caller", func(t *testing.T) {
		h := RequireAuth(stubValidator{claims: &JWTClaims{Account: alice}}, logger)(next)
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.Header.Set("Authorization", "Bearer good")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.True(t, signed)
		assert.Equal(t, alice, caller)
	})

	t.Run("invalid token is rejected", func(t *testing.T) {
		h := RequireAuth(stubValidator{err: errors.New("expired")}, logger)(next)
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.Header.Set("Authorization", "Bearer bad")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "Invalid or expired token")
	})

	t.Run("missing header is rejected", func(t *testing.T) {
		h := RequireAuth(stubValidator{claims: &JWTClaims{Account: alice}}, logger)(next)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
