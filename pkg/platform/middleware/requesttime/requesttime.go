// Package requesttime pins one "now" per HTTP request so every timestamp
// written while serving it agrees.
package requesttime

import (
	"net/http"
	"time"

	"regionx/pkg/requestcontext"
)

func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithTime(r.Context(), time.Now())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
