package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilCollectorIsNoop(t *testing.T) {
	var c *Collector
	assert.NotPanics(t, func() {
		c.ObserveRequest("/locations", http.MethodGet, 200, time.Millisecond)
		c.ObserveQuery(1, 2)
		c.ObserveLoad("ok", 3)
		c.ObserveGeneration(time.Second)
	})
}

func TestObserve(t *testing.T) {
	c := New()

	c.ObserveRequest("/locations", http.MethodGet, 200, time.Millisecond)
	c.ObserveRequest("/locations", http.MethodGet, 204, time.Millisecond)
	c.ObserveRequest("/locations/:id", http.MethodGet, 404, time.Millisecond)
	c.ObserveLoad("missing", 0)
	c.ObserveLoad("ok", 42)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.HTTPRequestsTotal.WithLabelValues("/locations", http.MethodGet, "2xx")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.HTTPRequestsTotal.WithLabelValues("/locations/:id", http.MethodGet, "4xx")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.StoreLoadsTotal.WithLabelValues("missing")))
	assert.Equal(t, 42.0, testutil.ToFloat64(c.StoreRecords))
}

func TestHandlerExposesRegistry(t *testing.T) {
	c := New()
	c.ObserveLoad("ok", 7)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "kuyua_store_records 7")
	assert.Contains(t, string(body), "go_goroutines")
}

func TestStatusLabel(t *testing.T) {
	assert.Equal(t, "2xx", statusLabel(200))
	assert.Equal(t, "3xx", statusLabel(301))
	assert.Equal(t, "4xx", statusLabel(400))
	assert.Equal(t, "5xx", statusLabel(503))
}
