package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHealthEngine(checks map[string]func(context.Context) error) *gin.Engine {
	r := gin.New()
	NewHealthHandler("v1.2.3", ChecksFromMap(checks)...).RegisterRoutes(r)
	return r
}

func TestLiveness(t *testing.T) {
	r := newHealthEngine(map[string]func(context.Context) error{
		"postgres": func(context.Context) error { return errors.New("down") },
	})

	w := send(r, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, w.Code)
	var resp LivenessResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "alive", resp.Status)
	assert.Equal(t, "v1.2.3", resp.Version)
}

func TestReadiness_NoCheckers(t *testing.T) {
	w := send(newHealthEngine(nil), http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ready"}`, w.Body.String())
}

func TestReadiness_AllHealthy(t *testing.T) {
	r := newHealthEngine(map[string]func(context.Context) error{
		"redis":    func(context.Context) error { return nil },
		"postgres": func(context.Context) error { return nil },
	})

	w := send(r, http.MethodGet, "/readyz", "")
	require.Equal(t, http.StatusOK, w.Code)
	var resp ReadinessResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ready", resp.Status)
	assert.Len(t, resp.Components, 2)
	assert.Equal(t, "healthy", resp.Components["redis"].Status)
}

func TestReadiness_Unhealthy(t *testing.T) {
	r := newHealthEngine(map[string]func(context.Context) error{
		"redis": func(context.Context) error { return nil },
		"minio": func(context.Context) error { return errors.New("bucket gscreen-exports missing") },
	})

	w := send(r, http.MethodGet, "/readyz", "")
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	var resp ReadinessResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "not_ready", resp.Status)
	assert.Equal(t, "unhealthy", resp.Components["minio"].Status)
	assert.Contains(t, resp.Components["minio"].Error, "missing")

	w = send(r, http.MethodGet, "/healthz/detail", "")
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	var detail DetailedResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &detail))
	assert.Equal(t, "degraded", detail.Status)
	assert.Equal(t, "v1.2.3", detail.Version)
}

func TestChecksFromMap_Sorted(t *testing.T) {
	noop := func(context.Context) error { return nil }
	checks := ChecksFromMap(map[string]func(context.Context) error{"redis": noop, "kafka": noop, "minio": noop})
	require.Len(t, checks, 3)
	assert.Equal(t, "kafka", checks[0].Name())
	assert.Equal(t, "redis", checks[2].Name())
}
