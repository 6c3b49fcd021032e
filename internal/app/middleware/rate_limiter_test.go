package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestTokenBucketBurstAndRefill(t *testing.T) {
	tb := NewTokenBucket(10, 3)

	// The bucket starts full and drains on the burst.
	assert.True(t, tb.Allow())
	assert.True(t, tb.Allow())
	assert.True(t, tb.Allow())
	assert.False(t, tb.Allow())

	// At 10 tokens/s a short wait refills at least one.
	time.Sleep(150 * time.Millisecond)
	assert.True(t, tb.Allow())
}

func TestCombinedRateLimiterKeysPerRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/tight", CombinedRateLimiter(1, 1), func(c *gin.Context) { c.Status(http.StatusOK) })
	r.POST("/loose", CombinedRateLimiter(1, 3), func(c *gin.Context) { c.Status(http.StatusOK) })

	do := func(path string) int {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, path, nil))
		return w.Code
	}

	// Exhausting one route's bucket must not consume the other's,
	// even though both requests come from the same client IP.
	assert.Equal(t, http.StatusOK, do("/tight"))
	assert.Equal(t, http.StatusTooManyRequests, do("/tight"))

	assert.Equal(t, http.StatusOK, do("/loose"))
	assert.Equal(t, http.StatusOK, do("/loose"))
	assert.Equal(t, http.StatusOK, do("/loose"))
	assert.Equal(t, http.StatusTooManyRequests, do("/loose"))
}

func TestTokenBucketCapsAtCapacity(t *testing.T) {
	tb := NewTokenBucket(1000, 2)

	time.Sleep(50 * time.Millisecond)

	// However long it refills, only capacity tokens are available.
	assert.True(t, tb.Allow())
	assert.True(t, tb.Allow())
	assert.False(t, tb.Allow())
}
