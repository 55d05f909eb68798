package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AnshRaj112/authgate-backend/pkg/clientip"
)

func newTestLimiter(t *testing.T, limit int) (*RateLimiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRateLimiter(client, "auth", limit, time.Minute, writeError, nil), mr
}

func hit(h http.Handler, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/sign-in", nil)
	req.RemoteAddr = ip + ":5555"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRateLimiter_BlocksAfterLimit(t *testing.T) {
	limiter, mr := newTestLimiter(t, 2)
	h := limiter.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	first := hit(h, "198.51.100.1")
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "2", first.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Remaining"))

	assert.Equal(t, http.StatusOK, hit(h, "198.51.100.1").Code)

	blocked := hit(h, "198.51.100.1")
	assert.Equal(t, http.StatusTooManyRequests, blocked.Code)
	assert.Equal(t, "0", blocked.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, blocked.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusOK, hit(h, "198.51.100.2").Code, "other clients have their own budget")

	ttl := mr.TTL(RateLimitKeyPrefix + "auth:198.51.100.1")
	assert.True(t, ttl > 0 && ttl <= time.Minute)

	mr.FastForward(time.Minute)
	assert.Equal(t, http.StatusOK, hit(h, "198.51.100.1").Code, "a new window starts")
}

func TestRateLimiter_FailsOpen(t *testing.T) {
	limiter, mr := newTestLimiter(t, 1)
	h := limiter.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	mr.Close()

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, hit(h, "198.51.100.1").Code)
	}
}

func TestRateLimiter_IgnoresForwardedFor(t *testing.T) {
	limiter, _ := newTestLimiter(t, 2)
	h := limiter.Handler(okHandler)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/sign-in", nil)
		req.RemoteAddr = "203.0.113.9:5555"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("10.0.0.%d", i))
		req.Header.Set("X-Real-IP", fmt.Sprintf("10.0.1.%d", i))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes,
		"one peer shares one budget whatever headers it sends")
}

func TestRateLimiter_BehindTrustedProxy(t *testing.T) {
	limiter, _ := newTestLimiter(t, 1)
	proxies, err := clientip.ParseTrustedProxies([]string{"10.0.0.0/8"})
	require.NoError(t, err)
	h := RealIP(proxies)(limiter.Handler(okHandler))

	send := func(remote, xff string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/sign-in", nil)
		req.RemoteAddr = remote
		req.Header.Set("X-Forwarded-For", xff)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, send("10.0.0.2:5555", "198.51.100.1"))
	assert.Equal(t, http.StatusOK, send("10.0.0.2:5555", "198.51.100.2"), "clients behind the proxy are told apart")
	assert.Equal(t, http.StatusTooManyRequests, send("10.0.0.3:5555", "1.2.3.4, 198.51.100.1"), "spoofed left entries do not reset the budget")
	assert.Equal(t, http.StatusOK, send("203.0.113.9:5555", "198.51.100.9"))
	assert.Equal(t, http.StatusTooManyRequests, send("203.0.113.9:5555", "198.51.100.10"), "untrusted peers cannot pick a key")
}

func TestRateLimiter_RearmsCounterWithoutExpiry(t *testing.T) {
	limiter, mr := newTestLimiter(t, 2)
	h := limiter.Handler(okHandler)
	key := RateLimitKeyPrefix + "auth:198.51.100.1"

	// A counter left behind by a lost EXPIRE.
	require.NoError(t, mr.Set(key, "7"))
	require.Zero(t, mr.TTL(key))

	assert.Equal(t, http.StatusTooManyRequests, hit(h, "198.51.100.1").Code)
	ttl := mr.TTL(key)
	assert.True(t, ttl > 0 && ttl <= time.Minute, "the window is armed again, got %v", ttl)

	mr.FastForward(time.Minute)
	assert.Equal(t, http.StatusOK, hit(h, "198.51.100.1").Code, "the client recovers once the window passes")
}
