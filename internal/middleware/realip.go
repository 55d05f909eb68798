package middleware

import (
	"net"
	"net/http"

	"github.com/AnshRaj112/authgate-backend/pkg/clientip"
)

// RealIP rewrites r.RemoteAddr to the client address reported by a trusted
// proxy. Requests from any other peer pass through unchanged, so
// X-Forwarded-For cannot be used to pick a rate limit key.
func RealIP(proxies clientip.TrustedProxies) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !proxies.Enabled() {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if ip := proxies.ClientIP(r); ip != clientip.RealClientIP(r) {
				r.RemoteAddr = net.JoinHostPort(ip, "0")
			}
			next.ServeHTTP(w, r)
		})
	}
}
