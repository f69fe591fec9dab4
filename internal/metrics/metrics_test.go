package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveIdP(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveIdP("keycloak", "verify_token", OutcomeRejected, 5*time.Millisecond)
	m.ObserveIdP("keycloak", "verify_token", OutcomeRejected, 5*time.Millisecond)
	m.ObserveIdP("keycloak", "verify_token", OutcomeUnreachable, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.IdPRequestsTotal.WithLabelValues("keycloak", "verify_token", OutcomeRejected)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.IdPRequestsTotal.WithLabelValues("keycloak", "verify_token", OutcomeUnreachable)))
}

func TestObserveIdP_NilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveIdP("keycloak", "get_users", OutcomeSuccess, time.Millisecond)
	})
}

func TestGinMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := New(prometheus.NewRegistry())

	r := gin.New()
	r.Use(m.GinMiddleware())
	r.GET("/users", func(c *gin.Context) { c.Status(http.StatusTeapot) })
	r.GET("/metrics", gin.WrapH(m.Handler()))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users", nil))
	require.Equal(t, http.StatusTeapot, rec.Code)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/users", "418")))

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "identity_http_requests_total")
}
