package httputil

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	"regionx/pkg/domain"
	"regionx/pkg/requestcontext"
)

func withParam(r *http.Request, name, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(name, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestPathParam(t *testing.T) {
	t.Run("parses", func(t *testing.T) {
		r := withParam(httptest.NewRequest(http.MethodGet, "/orders/7", nil), "orderID", "7")
		w := httptest.NewRecorder()
		id, ok := PathParam(w, r, "orderID", ParseOrderID)
		assert.True(t, ok)
		assert.Equal(t, domain.OrderID(7), id)
	})

	t.Run("rejects with 400", func(t *testing.T) {
		r := withParam(httptest.NewRequest(http.MethodGet, "/orders/x", nil), "orderID", "x")
		w := httptest.NewRecorder()
		_, ok := PathParam(w, r, "orderID", ParseOrderID)
		assert.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestCaller(t *testing.T) {
	w := httptest.NewRecorder()
	_, ok := Caller(w, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.False(t, ok)
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	alice := domain.AccountID{1}
	r := httptest.NewRequest(http.MethodPost, "/", nil)
	r = r.WithContext(requestcontext.WithCaller(r.Context(), alice))
	got, ok := Caller(httptest.NewRecorder(), r)
	assert.True(t, ok)
	assert.Equal(t, alice, got)
}
