package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestSecurityHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	SecurityHeaders(okHandler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Contains(t, rec.Header().Get("Strict-Transport-Security"), "max-age=")
}

func TestHostCheck(t *testing.T) {
	tests := []struct {
		name    string
		allowed string
		host    string
		want    int
	}{
		{name: "disabled", allowed: "", host: "evil.example", want: http.StatusOK},
		{name: "match", allowed: "api.example.com", host: "api.example.com", want: http.StatusOK},
		{name: "match with port", allowed: "api.example.com", host: "API.example.com:443", want: http.StatusOK},
		{name: "mismatch", allowed: "api.example.com", host: "evil.example", want: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Host = tt.host
			rec := httptest.NewRecorder()

			HostCheck(tt.allowed)(okHandler).ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestIPRateLimiter(t *testing.T) {
	limiter := NewIPRateLimiter(rate.Every(time.Hour), 2, writeError)
	h := limiter.Handler(okHandler)

	assert.Equal(t, http.StatusOK, hit(h, "203.0.113.1").Code)
	assert.Equal(t, http.StatusOK, hit(h, "203.0.113.1").Code)
	assert.Equal(t, http.StatusTooManyRequests, hit(h, "203.0.113.1").Code)
	assert.Equal(t, http.StatusOK, hit(h, "203.0.113.2").Code)

	limiter.Prune(-time.Second)
	assert.Empty(t, limiter.entries)
	assert.Equal(t, http.StatusOK, hit(h, "203.0.113.1").Code, "pruned buckets start full")
}
