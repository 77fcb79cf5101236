package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveCompile(t *testing.T) {
	c := New()

	c.ObserveCompile(ResultSuccess, 10, 2, 50*time.Millisecond)
	c.ObserveCompile(ResultCached, 10, 0, time.Millisecond)
	c.ObserveCompile(ResultFailure, 0, 0, time.Millisecond)

	got, err := c.Gather()
	require.NoError(t, err)

	assert.Equal(t, 1.0, got["shapec_compilations_total{result=success}"])
	assert.Equal(t, 1.0, got["shapec_compilations_total{result=cached}"])
	assert.Equal(t, 1.0, got["shapec_compilations_total{result=failure}"])
	assert.Equal(t, 20.0, got["shapec_records_emitted_total"])
	assert.Equal(t, 2.0, got["shapec_record_renames_total"])
	assert.Equal(t, 1.0, got["shapec_cache_hits_total"])
	assert.Equal(t, 3.0, got["shapec_compile_duration_seconds"])
}

func TestCollectorsAreIndependent(t *testing.T) {
	a, b := New(), New()
	a.CacheHits.Inc()

	got, err := b.Gather()
	require.NoError(t, err)
	assert.Zero(t, got["shapec_cache_hits_total"])
}

func TestHandler(t *testing.T) {
	c := New()
	c.RequestsTotal.WithLabelValues("/healthz", "200").Inc()

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `shapec_http_requests_total{route="/healthz",status="200"} 1`)
}
