package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/garnet-screening/internal/application/screening"
	"github.com/turtacn/garnet-screening/internal/bootstrap"
	"github.com/turtacn/garnet-screening/internal/config"
	"github.com/turtacn/garnet-screening/internal/infrastructure/monitoring/logging"
	httpserver "github.com/turtacn/garnet-screening/internal/interfaces/http"
	"github.com/turtacn/garnet-screening/internal/interfaces/http/handlers"
	"github.com/turtacn/garnet-screening/internal/interfaces/http/middleware"
	"github.com/turtacn/garnet-screening/internal/testutil"
)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Server.Mode = gin.TestMode
	cfg.Screening.WorkerCount = 2
	return cfg
}

func buildRouter(t *testing.T, cfg *config.Config, limiter *middleware.TokenBucketLimiter) (*gin.Engine, *handlers.ScreeningHandler) {
	t.Helper()
	c, err := bootstrap.Build(cfg, nil, bootstrap.Options{Table: testutil.ElementTable(t)})
	require.NoError(t, err)
	t.Cleanup(c.Close)

	sh := handlers.NewScreeningHandler(c.Service, screening.RequestFromConfig(cfg.Screening), nil)
	hh := handlers.NewHealthHandler("test", handlers.ChecksFromMap(c.HealthChecks)...)
	return httpserver.NewRouter(routerConfig(cfg, c, sh, hh, limiter, logging.NewNopLogger())), sh
}

func screen(t *testing.T, r http.Handler) screening.Result {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/screen", nil))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var res screening.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	return res
}

func TestRouterConfig_ServesMetricsWhenEnabled(t *testing.T) {
	r, _ := buildRouter(t, testConfig(), nil)
	assert.Equal(t, 4, screen(t, r).Counts.Stable)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "gscreen_runs_total")
}

func TestRouterConfig_NilLimiterDisablesRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.Metrics.Enabled = false
	r, _ := buildRouter(t, cfg, nil)
	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/elements", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("X-RateLimit-Limit"))
	}
}

func TestRouterConfig_Limiter(t *testing.T) {
	cfg := testConfig()
	cfg.Metrics.Enabled = false
	limiter := middleware.NewTokenBucketLimiter(0.001, 1, 0)
	defer limiter.Stop()
	r, _ := buildRouter(t, cfg, limiter)

	codes := make([]int, 2)
	for i := range codes {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/elements", nil))
		codes[i] = w.Code
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestReloader_AppliesScreeningSection(t *testing.T) {
	cfg := testConfig()
	cfg.Metrics.Enabled = false
	r, sh := buildRouter(t, cfg, nil)
	require.Equal(t, 6, screen(t, r).Counts.Unique)

	edited := testConfig()
	edited.Screening.SpeciesUnique = false
	edited.Screening.ToleranceBand.Enabled = false
	logger := testutil.NewMockLogger()
	newReloader(sh, logger).Apply(edited)

	res := screen(t, r)
	assert.Equal(t, 5, res.Counts.Unique)
	assert.Equal(t, 5, res.Counts.Stable)
	assert.False(t, logger.HasMessage("info", "Log level updated"))
}
