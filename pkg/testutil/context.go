package testutil

import (
	"net/http"

	"regionx/pkg/domain"
	"regionx/pkg/requestcontext"
)

// WithCaller adds a signed caller to the request context, the way the auth
// middleware does for requests with a valid bearer token.
func WithCaller(req *http.Request, caller domain.AccountID) *http.Request {
	return req.WithContext(requestcontext.WithCaller(req.Context(), caller))
}

// Account builds a deterministic account whose bytes are all b.
func Account(b byte) domain.AccountID {
	var a domain.AccountID
	for i := range a {
		a[i] = b
	}
	return a
}
