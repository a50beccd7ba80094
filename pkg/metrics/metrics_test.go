package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/dispatch/pkg/metrics"
)

func TestMetrics_Record(t *testing.T) {
	t.Parallel()

	m := metrics.New("test")
	end := m.Begin()
	m.Forward("shop", "Login")
	m.Forward("shop", "Login")
	m.FilterSkipped("admin_acl")
	m.ObserveDispatch("shop", "Checkout", http.StatusOK, 15*time.Millisecond)
	end()

	n, err := testutil.GatherAndCount(m.Registry(),
		"test_dispatch_requests_total",
		"test_dispatch_forwards_total",
		"test_filter_skipped_total",
	)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `test_dispatch_forwards_total{action="Login",module="shop"} 2`)
	assert.Contains(t, body, `test_dispatch_requests_total{action="Checkout",module="shop",status="200"} 1`)
	assert.Contains(t, body, `test_dispatch_inflight_requests 0`)
}

func TestMetrics_NilSafe(t *testing.T) {
	t.Parallel()

	var m *metrics.Metrics
	assert.NotPanics(t, func() {
		m.Begin()()
		m.Forward("a", "B")
		m.FilterSkipped("f")
		m.ObserveDispatch("a", "B", 500, time.Second)
	})
	assert.Nil(t, m.Registry())

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
