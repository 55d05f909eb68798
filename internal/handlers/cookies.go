package handlers

import (
	"net/http"
	"time"

	"github.com/AnshRaj112/authgate-backend/internal/middleware"
)

type CookieConfig struct {
	Secure        bool
	AccessMaxAge  time.Duration
	RefreshMaxAge time.Duration
}

// NewCookieConfig returns the session cookie settings: access cookies live
// one day, refresh cookies seven. Cookies are Secure in production.
func NewCookieConfig(production bool) CookieConfig {
	return CookieConfig{
		Secure:        production,
		AccessMaxAge:  24 * time.Hour,
		RefreshMaxAge: 7 * 24 * time.Hour,
	}
}

func (c CookieConfig) cookie(name, value string, maxAge time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteStrictMode,
	}
}

func (c CookieConfig) Access(token string) *http.Cookie {
	return c.cookie(middleware.AccessTokenCookie, token, c.AccessMaxAge)
}

func (c CookieConfig) Refresh(token string) *http.Cookie {
	return c.cookie(middleware.RefreshTokenCookie, token, c.RefreshMaxAge)
}

// Clear returns cookies that remove both session cookies.
func (c CookieConfig) Clear() []*http.Cookie {
	access := c.cookie(middleware.AccessTokenCookie, "", 0)
	access.MaxAge = -1
	refresh := c.cookie(middleware.RefreshTokenCookie, "", 0)
	refresh.MaxAge = -1
	return []*http.Cookie{access, refresh}
}
