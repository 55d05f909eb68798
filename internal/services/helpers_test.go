package services_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	"github.com/AnshRaj112/authgate-backend/internal/mocks"
	"github.com/AnshRaj112/authgate-backend/internal/models"
	"github.com/AnshRaj112/authgate-backend/internal/repository"
	"github.com/AnshRaj112/authgate-backend/internal/services"
	"github.com/AnshRaj112/authgate-backend/internal/validation"
)

const (
	testPassword = "Sup3r$ecret"
	testUA       = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

var testClient = services.ClientInfo{IP: "203.0.113.7", UserAgent: testUA}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type recordingAuditor struct {
	mu     sync.Mutex
	events []services.LoginEvent
}

func (a *recordingAuditor) Record(_ context.Context, ev services.LoginEvent) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, ev)
	return nil
}

func (a *recordingAuditor) outcomes() []services.LoginOutcome {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]services.LoginOutcome, 0, len(a.events))
	for _, ev := range a.events {
		out = append(out, ev.Outcome)
	}
	return out
}

type fixture struct {
	ctx      context.Context
	clock    *fakeClock
	store    *repository.MemoryAccountStore
	tokens   *services.TokenIssuer
	notifier *mocks.MockNotifier
	google   *mocks.MockIDTokenVerifier
	auditor  *recordingAuditor
	svc      *services.AuthService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)

	clock := newFakeClock()
	store := repository.NewMemoryAccountStore(validation.New()).WithClock(clock.Now)
	tokens, err := services.NewTokenIssuer(services.TokenConfig{
		AccessSecret:  "access-secret-for-tests",
		RefreshSecret: "refresh-secret-for-tests",
		AccessTTL:     time.Hour,
		RefreshTTL:    7 * 24 * time.Hour,
	})
	require.NoError(t, err)
	tokens.WithClock(clock.Now)

	f := &fixture{
		ctx:      context.Background(),
		clock:    clock,
		store:    store,
		tokens:   tokens,
		notifier: mocks.NewMockNotifier(ctrl),
		google:   mocks.NewMockIDTokenVerifier(ctrl),
		auditor:  &recordingAuditor{},
	}
	f.svc = services.NewAuthService(services.AuthDeps{
		Store:    store,
		Tokens:   tokens,
		Notifier: f.notifier,
		Google:   f.google,
		Auditor:  f.auditor,
	}, services.AuthConfig{
		ClientURL:     "https://app.example.com/",
		OTPTTL:        24 * time.Hour,
		ResetTokenTTL: 20 * time.Minute,
		Lockout:       services.LockoutPolicy{MaxAttempts: 5, LockDuration: 15 * time.Minute},
	}).WithClock(clock.Now)
	return f
}

// seedAccount stores a local account with testPassword.
func (f *fixture) seedAccount(t *testing.T, email, userName string, verified bool) *models.Account {
	t.Helper()
	acc := models.NewAccount(email, userName, models.ProviderLocal)
	acc.SetPassword(testPassword)
	acc.IsEmailVerified = verified
	require.NoError(t, f.store.Create(f.ctx, acc))
	return acc
}

func (f *fixture) reload(t *testing.T, acc *models.Account) *models.Account {
	t.Helper()
	got, err := f.store.FindByID(f.ctx, acc.ID.Hex())
	require.NoError(t, err)
	return got
}
