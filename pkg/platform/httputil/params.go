package httputil

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"regionx/pkg/domain"
	dErrors "regionx/pkg/domain-errors"
	"regionx/pkg/requestcontext"
)

// PathParam parses the chi URL parameter name. On failure it writes a 400
// and returns false.
func PathParam[T any](w http.ResponseWriter, r *http.Request, name string, parse func(string) (T, error)) (T, bool) {
	v, err := parse(chi.URLParam(r, name))
	if err != nil {
		var zero T
		WriteError(w, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid "+name))
		return zero, false
	}
	return v, true
}

// ParseOrderID parses a decimal order id.
func ParseOrderID(s string) (domain.OrderID, error) {
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, err
	}
	return domain.OrderID(n), nil
}

// Caller returns the signed caller. Routes reaching it without the auth
// middleware are a wiring bug and answer 500.
func Caller(w http.ResponseWriter, r *http.Request) (domain.AccountID, bool) {
	caller, ok := requestcontext.Caller(r.Context())
	if !ok {
		WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return domain.AccountID{}, false
	}
	return caller, true
}
