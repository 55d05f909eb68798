package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/AnshRaj112/authgate-backend/internal/apperr"
	"github.com/AnshRaj112/authgate-backend/internal/models"
	"github.com/AnshRaj112/authgate-backend/internal/services"
)

const (
	AccessTokenCookie  = "accessToken"
	RefreshTokenCookie = "refreshToken"
)

// ErrorResponder writes err to the client in the API error envelope.
type ErrorResponder func(w http.ResponseWriter, r *http.Request, err error)

// AccountAuthenticator resolves the account behind a token.
type AccountAuthenticator interface {
	Authenticate(ctx context.Context, token string, typ services.TokenType) (*models.Account, error)
}

type accountKey struct{}

// WithAccount returns a copy of ctx carrying acc.
func WithAccount(ctx context.Context, acc *models.Account) context.Context {
	return context.WithValue(ctx, accountKey{}, acc)
}

// AccountFromContext returns the account attached by Authenticator.Require.
func AccountFromContext(ctx context.Context) (*models.Account, bool) {
	acc, ok := ctx.Value(accountKey{}).(*models.Account)
	return acc, ok && acc != nil
}

type Authenticator struct {
	auth    AccountAuthenticator
	onError ErrorResponder
}

func NewAuthenticator(auth AccountAuthenticator, onError ErrorResponder) *Authenticator {
	return &Authenticator{auth: auth, onError: onError}
}

// Require rejects requests without a valid session. The token is taken from
// the refreshToken cookie, then the accessToken cookie, then the
// Authorization header. Every failure produces the same 401.
func (a *Authenticator) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, typ := ExtractToken(r)
		if token == "" {
			a.onError(w, r, apperr.Authentication(services.MsgUnauthorized))
			return
		}

		acc, err := a.auth.Authenticate(r.Context(), token, typ)
		if err != nil {
			if !apperr.IsKind(err, apperr.KindDependency) && !apperr.IsKind(err, apperr.KindInternal) {
				err = apperr.Authentication(services.MsgUnauthorized)
			}
			a.onError(w, r, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithAccount(r.Context(), acc)))
	})
}

// ExtractToken returns the session token of r and the secret it is signed
// with, which follows from where it was found.
func ExtractToken(r *http.Request) (string, services.TokenType) {
	if c, err := r.Cookie(RefreshTokenCookie); err == nil && c.Value != "" {
		return c.Value, services.TokenTypeRefresh
	}
	if c, err := r.Cookie(AccessTokenCookie); err == nil && c.Value != "" {
		return c.Value, services.TokenTypeAccess
	}
	header := r.Header.Get("Authorization")
	if scheme, token, ok := strings.Cut(header, " "); ok && strings.EqualFold(scheme, "Bearer") {
		return strings.TrimSpace(token), services.TokenTypeAccess
	}
	return "", services.TokenTypeAccess
}
