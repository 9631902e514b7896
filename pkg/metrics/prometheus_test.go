package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func TestComputeApproximateRequestSize(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "http://example.com/api/v1/order/create", strings.NewReader(`{"plan":"annual"}`))
	req.Header.Set("Content-Type", "application/json")

	size := computeApproximateRequestSize(req)
	expected := len("/api/v1/order/create") + len(http.MethodPost) + len(req.Proto) +
		len("Content-Type") + len("application/json") + len(req.Host) + int(req.ContentLength)
	require.Equal(t, expected, size)
}

func TestComputeApproximateRequestSize_UnknownContentLength(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "http://example.com/healthz", nil)
	req.ContentLength = -1

	size := computeApproximateRequestSize(req)
	require.Equal(t, len("/healthz")+len(http.MethodGet)+len(req.Proto)+len(req.Host), size)
}

func TestMillisecondsSince(t *testing.T) {
	start := time.Now().Add(-250 * time.Millisecond)
	elapsed := MillisecondsSince(start)
	require.GreaterOrEqual(t, elapsed, 250.0)
	require.Less(t, elapsed, 10000.0)
}

func TestPrometheusHandler_ServesExposition(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/metrics", prometheusHandler())

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "go_goroutines")
}
