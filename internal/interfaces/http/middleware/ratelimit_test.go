package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newLimitedEngine(l RateLimiter) *gin.Engine {
	r := gin.New()
	r.Use(RateLimit(l, DefaultRateLimitConfig()))
	r.GET("/api/v1/elements", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func do(r http.Handler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.RemoteAddr = "10.0.0.7:5555"
	r.ServeHTTP(w, req)
	return w
}

func TestTokenBucketLimiter_BurstThenRefill(t *testing.T) {
	l := NewTokenBucketLimiter(2, 2, 0)
	now := time.Unix(1_700_000_000, 0)
	l.now = func() time.Time { return now }

	ok, info := l.Allow("a")
	assert.True(t, ok)
	assert.Equal(t, 1, info.Remaining)
	ok, _ = l.Allow("a")
	assert.True(t, ok)
	ok, info = l.Allow("a")
	assert.False(t, ok)
	assert.Zero(t, info.Remaining)
	assert.Equal(t, 2, info.Limit)

	// Other keys have their own bucket.
	ok, _ = l.Allow("b")
	assert.True(t, ok)

	now = now.Add(500 * time.Millisecond)
	ok, _ = l.Allow("a")
	assert.True(t, ok)
}

func TestTokenBucketLimiter_Cleanup(t *testing.T) {
	l := NewTokenBucketLimiter(1, 1, 0)
	now := time.Unix(1_700_000_000, 0)
	l.now = func() time.Time { return now }
	l.cleanupInterval = time.Minute

	l.Allow("a")
	l.Allow("b")
	require.Equal(t, 2, l.BucketCount())

	now = now.Add(2 * time.Minute)
	l.Allow("b")
	l.cleanup()
	assert.Equal(t, 1, l.BucketCount())

	l.Stop()
	l.Stop()
}

func TestRateLimit_Rejects(t *testing.T) {
	r := newLimitedEngine(NewTokenBucketLimiter(0.01, 1, 0))

	w := do(r, "/api/v1/elements")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))

	w = do(r, "/api/v1/elements")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), "RATE_LIMITED")
}

func TestRateLimit_SkipsProbes(t *testing.T) {
	r := newLimitedEngine(NewTokenBucketLimiter(0.01, 1, 0))
	for i := 0; i < 3; i++ {
		w := do(r, "/healthz")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("X-RateLimit-Limit"))
	}
}
