package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddleware_LabelsByRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware())
	r.Get("/orders/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	before := testutil.ToFloat64(RequestTotal.WithLabelValues(http.MethodGet, "/orders/{id}", "418"))

	for _, id := range []string{"1", "2"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders/"+id, nil))
		require.Equal(t, http.StatusTeapot, rec.Code)
	}

	after := testutil.ToFloat64(RequestTotal.WithLabelValues(http.MethodGet, "/orders/{id}", "418"))
	assert.Equal(t, 2.0, after-before)
}

func TestHandler_ExposesDomainCounters(t *testing.T) {
	OrdersPlaced.Inc()
	ObserveDBQuery("orders.create", time.Now())

	rec := httptest.NewRecorder()
	Handler()(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "thali_orders_placed_total")
	assert.Contains(t, body, `thali_db_query_duration_seconds_bucket{operation="orders.create"`)
}
