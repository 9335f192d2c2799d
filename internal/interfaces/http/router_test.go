package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/garnet-screening/internal/application/screening"
	"github.com/turtacn/garnet-screening/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/garnet-screening/internal/interfaces/http/handlers"
	"github.com/turtacn/garnet-screening/internal/interfaces/http/middleware"
	"github.com/turtacn/garnet-screening/internal/testutil"
)

func newTestRouter(t *testing.T, limiter middleware.RateLimiter) (*gin.Engine, *testutil.MockLogger) {
	t.Helper()
	logger := testutil.NewMockLogger()
	collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{Namespace: "routertest"}, logger)
	require.NoError(t, err)
	metrics := prometheus.NewScreeningMetrics(collector)

	svc := screening.NewService(testutil.ElementTable(t), logger, screening.WithMetrics(metrics))
	r := NewRouter(RouterConfig{
		ScreeningHandler: handlers.NewScreeningHandler(svc, nil, logger),
		HealthHandler: handlers.NewHealthHandler("test",
			handlers.NewCheck("table", func(context.Context) error { return nil })),
		Logger:           logger,
		MetricsCollector: collector,
		Metrics:          metrics,
		RateLimiter:      limiter,
		Mode:             gin.TestMode,
		MaxBodySize:      1 << 10,
	})
	return r, logger
}

func serve(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	}
	req.RemoteAddr = "192.0.2.1:1234"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestNewRouter_Routes(t *testing.T) {
	r, _ := newTestRouter(t, nil)

	cases := []struct {
		method, path string
		status       int
	}{
		{http.MethodGet, "/healthz", http.StatusOK},
		{http.MethodGet, "/readyz", http.StatusOK},
		{http.MethodGet, "/healthz/detail", http.StatusOK},
		{http.MethodGet, "/api/v1/elements", http.StatusOK},
		{http.MethodGet, "/api/v1/elements/Nb", http.StatusOK},
		{http.MethodGet, "/api/v1/species/O2-", http.StatusOK},
		{http.MethodPost, "/api/v1/screen", http.StatusOK},
		{http.MethodGet, "/api/v2/screen", http.StatusNotFound},
	}
	for _, tc := range cases {
		w := serve(r, tc.method, tc.path, "")
		assert.Equal(t, tc.status, w.Code, "%s %s", tc.method, tc.path)
		assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
	}
}

func TestNewRouter_MetricsEndpoint(t *testing.T) {
	r, _ := newTestRouter(t, nil)
	serve(r, http.MethodPost, "/api/v1/screen", "")

	w := serve(r, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `routertest_http_requests_total{method="POST",path="/api/v1/screen",status="200"} 1`)
	assert.Contains(t, body, `routertest_runs_total`)
}

func TestNewRouter_RateLimitOnlyOnAPI(t *testing.T) {
	r, _ := newTestRouter(t, middleware.NewTokenBucketLimiter(0.001, 1, 0))

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/api/v1/elements", "").Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(r, http.MethodGet, "/api/v1/elements", "").Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/healthz", "").Code)
}

func TestNewRouter_BodyLimit(t *testing.T) {
	r, _ := newTestRouter(t, nil)
	big := `{"rank":"` + strings.Repeat("x", 2048) + `"}`
	assert.Equal(t, http.StatusRequestEntityTooLarge, serve(r, http.MethodPost, "/api/v1/screen", big).Code)
}

func TestNewRouter_RecoversPanics(t *testing.T) {
	r, logger := newTestRouter(t, nil)
	r.GET("/panic", func(*gin.Context) { panic(errors.New("kaboom")) })

	w := serve(r, http.MethodGet, "/panic", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.True(t, logger.HasMessage("error", "Panic recovered"))
}

func TestNewRouter_NilHandlers(t *testing.T) {
	r := NewRouter(RouterConfig{Mode: gin.TestMode})
	assert.Equal(t, http.StatusNotFound, serve(r, http.MethodGet, "/healthz", "").Code)
}
