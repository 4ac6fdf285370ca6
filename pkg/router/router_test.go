package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tagged(tag string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Add("X-Chain", tag)
			next.ServeHTTP(w, r)
		})
	}
}

func TestGroup_AppliesMiddlewareInOrder(t *testing.T) {
	r := New()
	admin := r.Group("/admin", tagged("outer"))
	admin.Get("/orders", "admin.orders", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}, tagged("inner"))

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/orders", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, []string{"outer", "inner"}, rec.Header().Values("X-Chain"))
}

func TestParam_WithPattern(t *testing.T) {
	r := New()
	var got string
	r.Get("/add_to_cart/{itemId:[0-9]+}", "cart.add", func(w http.ResponseWriter, req *http.Request) {
		got = Param(req, "itemId")
	})

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/add_to_cart/42", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "42", got)

	rec = httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/add_to_cart/abc", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestURL(t *testing.T) {
	r := New()
	noop := func(http.ResponseWriter, *http.Request) {}
	r.Post("/admin/order/update_status/{orderId:[0-9]+}", "admin.orders.status", noop)

	u, err := r.URL("admin.orders.status", map[string]string{"orderId": "7"})
	require.NoError(t, err)
	assert.Equal(t, "/admin/order/update_status/7", u)

	_, err = r.URL("admin.orders.status", nil)
	assert.Error(t, err)

	_, err = r.URL("missing", nil)
	assert.Error(t, err)
}

func TestRoutes_Sorted(t *testing.T) {
	r := New()
	noop := func(http.ResponseWriter, *http.Request) {}
	r.Post("/login", "login.submit", noop)
	r.Get("/login", "login", noop)
	r.Get("/", "home", noop)
	r.Mount("/storage", http.NotFoundHandler())

	assert.Equal(t, []RouteInfo{
		{Method: http.MethodGet, Path: "/", Name: "home"},
		{Method: http.MethodGet, Path: "/login", Name: "login"},
		{Method: http.MethodPost, Path: "/login", Name: "login.submit"},
		{Method: "*", Path: "/storage/*"},
	}, r.Routes())
}
