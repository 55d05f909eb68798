package services_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AnshRaj112/authgate-backend/internal/apperr"
	"github.com/AnshRaj112/authgate-backend/internal/models"
	"github.com/AnshRaj112/authgate-backend/internal/services"
)

func attempt(f *fixture, acc *models.Account, password string) *services.LoginAttempt {
	return &services.LoginAttempt{Account: acc, Password: password, Now: f.clock.Now()}
}

func rejectedBy(t *testing.T, err error) string {
	t.Helper()
	var gerr *services.GuardError
	require.True(t, errors.As(err, &gerr), "expected a guard error, got %v", err)
	return gerr.Guard
}

func TestLoginGuard_Order(t *testing.T) {
	f := newFixture(t)

	var names []string
	for _, g := range f.svc.Guard().Guards() {
		names = append(names, g.Name)
	}
	assert.Equal(t, []string{
		services.GuardUnlockExpired,
		services.GuardNotLocked,
		services.GuardLocalCredential,
		services.GuardPasswordMatch,
		services.GuardEmailVerified,
		services.GuardStatusActive,
	}, names)

	_, ok := f.svc.Guard().Guard(services.GuardPasswordMatch)
	assert.True(t, ok)
	_, ok = f.svc.Guard().Guard("nope")
	assert.False(t, ok)
}

func TestLoginGuard_AcceptsValidAttempt(t *testing.T) {
	f := newFixture(t)
	acc := f.seedAccount(t, "ok@example.com", "okuser", true)

	err := f.svc.Guard().Evaluate(f.ctx, attempt(f, acc, testPassword))
	assert.NoError(t, err)
}

func TestLoginGuard_Rejections(t *testing.T) {
	tests := []struct {
		name      string
		setup     func(f *fixture, t *testing.T) *models.Account
		password  string
		wantGuard string
		wantKind  apperr.Kind
		wantMsg   string
	}{
		{
			name: "wrong password",
			setup: func(f *fixture, t *testing.T) *models.Account {
				return f.seedAccount(t, "a@example.com", "auser", true)
			},
			password:  "Wrong$pass1",
			wantGuard: services.GuardPasswordMatch,
			wantKind:  apperr.KindAuthentication,
			wantMsg:   services.MsgInvalidCredentials,
		},
		{
			name: "social account has no password",
			setup: func(f *fixture, t *testing.T) *models.Account {
				acc := models.NewAccount("g@example.com", "guser", models.ProviderGoogle)
				acc.IsEmailVerified = true
				require.NoError(t, f.store.Create(f.ctx, acc))
				return acc
			},
			password:  testPassword,
			wantGuard: services.GuardLocalCredential,
			wantKind:  apperr.KindAuthentication,
			wantMsg:   services.MsgInvalidCredentials,
		},
		{
			name: "unverified email",
			setup: func(f *fixture, t *testing.T) *models.Account {
				return f.seedAccount(t, "u@example.com", "uuser", false)
			},
			password:  testPassword,
			wantGuard: services.GuardEmailVerified,
			wantKind:  apperr.KindAuthentication,
			wantMsg:   "Please verify your email before logging in.",
		},
		{
			name: "banned",
			setup: func(f *fixture, t *testing.T) *models.Account {
				acc := f.seedAccount(t, "b@example.com", "buser", true)
				acc.Status = models.StatusBanned
				require.NoError(t, f.store.Save(f.ctx, acc))
				return acc
			},
			password:  testPassword,
			wantGuard: services.GuardStatusActive,
			wantKind:  apperr.KindAuthorization,
		},
		{
			name: "locked",
			setup: func(f *fixture, t *testing.T) *models.Account {
				acc := f.seedAccount(t, "l@example.com", "luser", true)
				until := f.clock.Now().Add(10 * time.Minute)
				acc.IsAccountLocked = true
				acc.BlockedUntil = &until
				require.NoError(t, f.store.Save(f.ctx, acc))
				return acc
			},
			password:  testPassword,
			wantGuard: services.GuardNotLocked,
			wantKind:  apperr.KindAuthorization,
			wantMsg:   "Account is locked. Try again in 10 minute(s).",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			acc := tt.setup(f, t)

			err := f.svc.Guard().Evaluate(f.ctx, attempt(f, acc, tt.password))
			require.Error(t, err)
			assert.Equal(t, tt.wantGuard, rejectedBy(t, err))
			assert.True(t, apperr.IsKind(err, tt.wantKind), "kind of %v", err)
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, apperr.From(err).Message)
			}
		})
	}
}

func TestLoginGuard_LocksAfterMaxAttempts(t *testing.T) {
	f := newFixture(t)
	acc := f.seedAccount(t, "lock@example.com", "lockme", true)
	guard := f.svc.Guard()

	for i := 1; i <= 4; i++ {
		err := guard.Evaluate(f.ctx, attempt(f, f.reload(t, acc), "Wrong$pass1"))
		require.True(t, apperr.IsKind(err, apperr.KindAuthentication), "attempt %d: %v", i, err)
	}
	assert.Equal(t, 4, f.reload(t, acc).LoginAttempts)

	err := guard.Evaluate(f.ctx, attempt(f, f.reload(t, acc), "Wrong$pass1"))
	require.True(t, apperr.IsKind(err, apperr.KindAuthorization))
	assert.Equal(t, "Too many failed login attempts. Account locked for 15 minutes.", apperr.From(err).Message)

	locked := f.reload(t, acc)
	assert.True(t, locked.IsAccountLocked)
	assert.True(t, locked.IsLocked(f.clock.Now()))

	// The correct password does not get through while the lock holds and
	// the counter does not move.
	err = guard.Evaluate(f.ctx, attempt(f, locked, testPassword))
	assert.Equal(t, services.GuardNotLocked, rejectedBy(t, err))
	assert.Equal(t, 5, f.reload(t, acc).LoginAttempts)

	f.clock.Advance(15 * time.Minute)
	a := attempt(f, f.reload(t, acc), testPassword)
	require.NoError(t, guard.Evaluate(f.ctx, a))

	opened := f.reload(t, acc)
	assert.False(t, opened.IsAccountLocked)
	assert.Zero(t, opened.LoginAttempts)
	assert.Nil(t, opened.BlockedUntil)
}

func TestLoginGuard_ExpiredLockAllowsFreshCount(t *testing.T) {
	f := newFixture(t)
	acc := f.seedAccount(t, "again@example.com", "again", true)
	until := f.clock.Now().Add(time.Minute)
	acc.IsAccountLocked = true
	acc.BlockedUntil = &until
	acc.LoginAttempts = 5
	require.NoError(t, f.store.Save(f.ctx, acc))

	f.clock.Advance(2 * time.Minute)
	err := f.svc.Guard().Evaluate(f.ctx, attempt(f, f.reload(t, acc), "Wrong$pass1"))
	assert.Equal(t, services.GuardPasswordMatch, rejectedBy(t, err))
	assert.True(t, apperr.IsKind(err, apperr.KindAuthentication))

	got := f.reload(t, acc)
	assert.Equal(t, 1, got.LoginAttempts)
	assert.False(t, got.IsAccountLocked)
}
