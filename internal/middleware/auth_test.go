package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/AnshRaj112/authgate-backend/internal/apperr"
	"github.com/AnshRaj112/authgate-backend/internal/models"
	"github.com/AnshRaj112/authgate-backend/internal/services"
)

// writeError is a minimal ErrorResponder for tests.
func writeError(w http.ResponseWriter, _ *http.Request, err error) {
	appErr := apperr.From(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.Kind.Status())
	_ = json.NewEncoder(w).Encode(map[string]any{"message": appErr.Message})
}

type stubAuthenticator struct {
	accounts map[string]*models.Account
	err      error
	gotType  services.TokenType
}

func (s *stubAuthenticator) Authenticate(_ context.Context, token string, typ services.TokenType) (*models.Account, error) {
	s.gotType = typ
	if s.err != nil {
		return nil, s.err
	}
	acc, ok := s.accounts[token]
	if !ok {
		return nil, apperr.Authentication("token expired")
	}
	return acc, nil
}

func TestExtractToken(t *testing.T) {
	tests := []struct {
		name      string
		refresh   string
		access    string
		header    string
		wantToken string
		wantType  services.TokenType
	}{
		{name: "refresh cookie wins", refresh: "r", access: "a", header: "Bearer h", wantToken: "r", wantType: services.TokenTypeRefresh},
		{name: "access cookie before header", access: "a", header: "Bearer h", wantToken: "a", wantType: services.TokenTypeAccess},
		{name: "bearer header", header: "Bearer h", wantToken: "h", wantType: services.TokenTypeAccess},
		{name: "scheme is case insensitive", header: "bearer h", wantToken: "h", wantType: services.TokenTypeAccess},
		{name: "other scheme", header: "Basic dXNlcjpwYXNz", wantToken: ""},
		{name: "nothing", wantToken: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.refresh != "" {
				req.AddCookie(&http.Cookie{Name: RefreshTokenCookie, Value: tt.refresh})
			}
			if tt.access != "" {
				req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: tt.access})
			}
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			token, typ := ExtractToken(req)
			assert.Equal(t, tt.wantToken, token)
			if tt.wantToken != "" {
				assert.Equal(t, tt.wantType, typ)
			}
		})
	}
}

func TestAuthenticator_Require(t *testing.T) {
	acc := &models.Account{ID: primitive.NewObjectID(), Email: "a@example.com"}
	stub := &stubAuthenticator{accounts: map[string]*models.Account{"good": acc}}
	authn := NewAuthenticator(stub, writeError)

	var seen *models.Account
	protected := authn.Require(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = AccountFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	t.Run("valid refresh cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: RefreshTokenCookie, Value: "good"})
		rec := httptest.NewRecorder()

		protected.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, acc, seen)
		assert.Equal(t, services.TokenTypeRefresh, stub.gotType)
	})

	for _, name := range []string{"missing", "invalid"} {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if name == "invalid" {
				req.Header.Set("Authorization", "Bearer bad")
			}
			rec := httptest.NewRecorder()

			protected.ServeHTTP(rec, req)
			require.Equal(t, http.StatusUnauthorized, rec.Code)
			var body map[string]string
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.Equal(t, services.MsgUnauthorized, body["message"], "the reason is never revealed")
		})
	}

	t.Run("store failure is not a 401", func(t *testing.T) {
		failing := NewAuthenticator(&stubAuthenticator{err: apperr.Dependency("Failed to look up account", errors.New("timeout"))}, writeError)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer good")
		rec := httptest.NewRecorder()

		failing.Require(http.NotFoundHandler()).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestAccountFromContext(t *testing.T) {
	_, ok := AccountFromContext(context.Background())
	assert.False(t, ok)

	acc := &models.Account{Email: "a@example.com"}
	got, ok := AccountFromContext(WithAccount(context.Background(), acc))
	assert.True(t, ok)
	assert.Same(t, acc, got)
}
