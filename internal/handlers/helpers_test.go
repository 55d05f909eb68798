package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	"github.com/AnshRaj112/authgate-backend/internal/apperr"
	"github.com/AnshRaj112/authgate-backend/internal/handlers"
	"github.com/AnshRaj112/authgate-backend/internal/middleware"
	"github.com/AnshRaj112/authgate-backend/internal/mocks"
	"github.com/AnshRaj112/authgate-backend/internal/models"
	"github.com/AnshRaj112/authgate-backend/internal/repository"
	"github.com/AnshRaj112/authgate-backend/internal/routes"
	"github.com/AnshRaj112/authgate-backend/internal/services"
	"github.com/AnshRaj112/authgate-backend/internal/validation"
)

const testPassword = "Sup3r$ecret"

type envelope struct {
	StatusCode int                 `json:"statusCode"`
	Success    bool                `json:"success"`
	Message    string              `json:"message"`
	Data       json.RawMessage     `json:"data"`
	Errors     []apperr.FieldError `json:"errors"`
	Cause      string              `json:"cause"`
}

func (e envelope) decode(t *testing.T, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(e.Data, dst))
}

type testServer struct {
	router   http.Handler
	store    *repository.MemoryAccountStore
	notifier *mocks.MockNotifier
	avatars  *mocks.MockAvatarStorage
	pings    map[string]handlers.Pinger
	// limited records the paths that passed through the auth limiter.
	limited []string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ctrl := gomock.NewController(t)

	v := validation.New()
	store := repository.NewMemoryAccountStore(v)
	tokens, err := services.NewTokenIssuer(services.TokenConfig{
		AccessSecret:  "access-secret-for-tests",
		RefreshSecret: "refresh-secret-for-tests",
		AccessTTL:     time.Hour,
		RefreshTTL:    7 * 24 * time.Hour,
	})
	require.NoError(t, err)

	s := &testServer{
		store:    store,
		notifier: mocks.NewMockNotifier(ctrl),
		avatars:  mocks.NewMockAvatarStorage(ctrl),
		pings: map[string]handlers.Pinger{
			"mongo": func(context.Context) error { return nil },
		},
	}

	auth := services.NewAuthService(services.AuthDeps{
		Store:    store,
		Tokens:   tokens,
		Notifier: s.notifier,
	}, services.AuthConfig{
		ClientURL: "https://app.example.com",
		Lockout:   services.LockoutPolicy{MaxAttempts: 5, LockDuration: 15 * time.Minute},
	})
	profiles := services.NewProfileService(store, s.avatars, nil)

	responder := handlers.NewResponder(nil, false)
	cookies := handlers.NewCookieConfig(false)
	r := chi.NewRouter()
	routes.SetupRoutes(r, routes.Deps{
		Responder:     responder,
		Auth:          handlers.NewAuthHandler(auth, v, cookies),
		Profile:       handlers.NewProfileHandler(profiles, v),
		Health:        handlers.NewHealthHandler(s.pings),
		Authenticator: middleware.NewAuthenticator(auth, responder.Error),
		AuthLimiter: func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				s.limited = append(s.limited, r.URL.Path)
				next.ServeHTTP(w, r)
			})
		},
	})
	s.router = r
	return s
}

// jar keeps the cookies a browser would send back.
type jar map[string]*http.Cookie

func (j jar) update(resp *http.Response) {
	for _, c := range resp.Cookies() {
		if c.MaxAge < 0 {
			delete(j, c.Name)
			continue
		}
		j[c.Name] = c
	}
}

func (s *testServer) send(t *testing.T, req *http.Request, cookies jar) (*http.Response, envelope) {
	t.Helper()
	req.RemoteAddr = "203.0.113.7:40000"
	for _, c := range cookies {
		req.AddCookie(&http.Cookie{Name: c.Name, Value: c.Value})
	}

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	resp := rec.Result()
	if cookies != nil {
		cookies.update(resp)
	}

	var env envelope
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(body, &env), string(body))
	require.Equal(t, resp.StatusCode, env.StatusCode)
	require.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	return resp, env
}

func (s *testServer) do(t *testing.T, method, path string, body any, cookies jar) (*http.Response, envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	return s.send(t, newJSONRequest(method, path, reader), cookies)
}

func newJSONRequest(method, path string, body io.Reader) *http.Request {
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func (s *testServer) seedAccount(t *testing.T, email, userName string) *models.Account {
	t.Helper()
	acc := models.NewAccount(email, userName, models.ProviderLocal)
	acc.SetPassword(testPassword)
	acc.IsEmailVerified = true
	require.NoError(t, s.store.Create(context.Background(), acc))
	return acc
}

// signIn signs in a seeded account and returns its cookies.
func (s *testServer) signIn(t *testing.T, email string) jar {
	t.Helper()
	cookies := jar{}
	resp, env := s.do(t, http.MethodPost, "/api/v1/auth/sign-in",
		map[string]string{"email": email, "password": testPassword}, cookies)
	require.Equal(t, http.StatusOK, resp.StatusCode, env.Message)
	return cookies
}

func cookieByName(resp *http.Response, name string) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}
