package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/AnshRaj112/authgate-backend/internal/apperr"
	"github.com/AnshRaj112/authgate-backend/pkg/clientip"
)

const RateLimitKeyPrefix = "ratelimit:"

// RateLimiter is a fixed window request counter per client IP kept in Redis,
// so every instance of the server shares the same budget.
type RateLimiter struct {
	client  *redis.Client
	name    string
	limit   int
	window  time.Duration
	onError ErrorResponder
	log     *zap.Logger
}

// NewRateLimiter allows limit requests per window for each IP. name scopes
// the counters so several limiters can share one Redis.
func NewRateLimiter(client *redis.Client, name string, limit int, window time.Duration, onError ErrorResponder, log *zap.Logger) *RateLimiter {
	if log == nil {
		log = zap.NewNop()
	}
	return &RateLimiter{
		client:  client,
		name:    name,
		limit:   limit,
		window:  window,
		onError: onError,
		log:     log,
	}
}

func (l *RateLimiter) key(ip string) string {
	return RateLimitKeyPrefix + l.name + ":" + ip
}

func (l *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientip.RealClientIP(r)
		key := l.key(ip)
		ctx := r.Context()

		var incr *redis.IntCmd
		var pttl *redis.DurationCmd
		_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			incr = pipe.Incr(ctx, key)
			pttl = pipe.PTTL(ctx, key)
			return nil
		})
		var count int64
		var reset time.Duration
		if err == nil {
			count, reset = incr.Val(), pttl.Val()
			// A counter without expiry would block the IP forever. Arm it on
			// the first hit and re-arm it if an earlier EXPIRE was lost.
			if reset < 0 {
				reset = l.window
				err = l.client.Expire(ctx, key, l.window).Err()
			}
		}
		if err != nil {
			// Fail open when Redis is unavailable.
			l.log.Warn("rate limiter unavailable", zap.String("limiter", l.name), zap.Error(err))
			next.ServeHTTP(w, r)
			return
		}

		remaining := l.limit - int(count)
		if remaining < 0 {
			remaining = 0
		}
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(l.limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(reset).Unix(), 10))

		if int(count) > l.limit {
			w.Header().Set("Retry-After", strconv.Itoa(int(reset.Seconds()+0.5)))
			l.log.Info("rate limit exceeded", zap.String("limiter", l.name), zap.String("ip", ip))
			l.onError(w, r, apperr.RateLimited("Too many requests. Please try again later."))
			return
		}

		next.ServeHTTP(w, r)
	})
}
