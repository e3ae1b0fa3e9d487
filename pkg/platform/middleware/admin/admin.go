// Package admin guards operator and relayer routes with a shared token.
package admin

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	request "regionx/pkg/platform/middleware/request"
)

// HeaderToken carries the shared secret.
const HeaderToken = "X-Admin-Token"

func RequireAdminToken(expectedToken string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := r.Header.Get(HeaderToken)
			if expectedToken == "" || subtle.ConstantTimeCompare([]byte(token), []byte(expectedToken)) != 1 {
				ctx := r.Context()
				logger.WarnContext(ctx, "admin token mismatch",
					"request_id", request.GetRequestID(ctx),
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"admin token required"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
