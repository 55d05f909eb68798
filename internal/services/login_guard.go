package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/AnshRaj112/authgate-backend/internal/apperr"
	"github.com/AnshRaj112/authgate-backend/internal/models"
	"github.com/AnshRaj112/authgate-backend/internal/repository"
)

const (
	GuardUnlockExpired   = "unlock-expired"
	GuardNotLocked       = "not-locked"
	GuardLocalCredential = "local-credential"
	GuardPasswordMatch   = "password-match"
	GuardEmailVerified   = "email-verified"
	GuardStatusActive    = "status-active"
)

const MsgInvalidCredentials = "Invalid email or password"

// LoginAttempt is the input every guard inspects.
type LoginAttempt struct {
	Account  *models.Account
	Password string
	Now      time.Time
}

// Guard is one named step of the sign-in policy. Check returns nil to let
// the attempt continue to the next guard.
type Guard struct {
	Name  string
	Check func(ctx context.Context, a *LoginAttempt) error
}

// GuardError reports which guard rejected an attempt.
type GuardError struct {
	Guard string
	Err   error
}

func (e *GuardError) Error() string { return e.Guard + ": " + e.Err.Error() }
func (e *GuardError) Unwrap() error { return e.Err }

type LockoutPolicy struct {
	MaxAttempts  int
	LockDuration time.Duration
}

// LoginGuard decides whether a password sign-in may proceed and maintains the
// lockout state of the account. Failed attempts are only counted when the
// password check is reachable, so a locked account never extends its lock.
type LoginGuard struct {
	store  repository.AccountStore
	policy LockoutPolicy
	guards []Guard
}

func NewLoginGuard(store repository.AccountStore, policy LockoutPolicy) *LoginGuard {
	if policy.MaxAttempts <= 0 {
		policy.MaxAttempts = 5
	}
	if policy.LockDuration <= 0 {
		policy.LockDuration = 15 * time.Minute
	}
	g := &LoginGuard{store: store, policy: policy}
	g.guards = []Guard{
		{Name: GuardUnlockExpired, Check: g.unlockExpired},
		{Name: GuardNotLocked, Check: g.notLocked},
		{Name: GuardLocalCredential, Check: g.localCredential},
		{Name: GuardPasswordMatch, Check: g.passwordMatch},
		{Name: GuardEmailVerified, Check: g.emailVerified},
		{Name: GuardStatusActive, Check: g.statusActive},
	}
	return g
}

// Guards returns the guards in evaluation order.
func (g *LoginGuard) Guards() []Guard {
	out := make([]Guard, len(g.guards))
	copy(out, g.guards)
	return out
}

// Guard returns the guard with the given name.
func (g *LoginGuard) Guard(name string) (Guard, bool) {
	for _, guard := range g.guards {
		if guard.Name == name {
			return guard, true
		}
	}
	return Guard{}, false
}

// Evaluate runs every guard in order and stops at the first rejection.
// a.Account is updated in place with any state the guards persisted.
func (g *LoginGuard) Evaluate(ctx context.Context, a *LoginAttempt) error {
	for _, guard := range g.guards {
		if err := guard.Check(ctx, a); err != nil {
			return &GuardError{Guard: guard.Name, Err: err}
		}
	}
	return nil
}

// unlockExpired moves an account whose lock window has elapsed back to open.
func (g *LoginGuard) unlockExpired(ctx context.Context, a *LoginAttempt) error {
	acc := a.Account
	if !acc.IsAccountLocked || acc.IsLocked(a.Now) {
		return nil
	}
	acc.ClearLockout()
	if err := g.store.Save(ctx, acc, repository.SkipValidation()); err != nil {
		return apperr.Dependency("Failed to update account", err)
	}
	return nil
}

func (g *LoginGuard) notLocked(_ context.Context, a *LoginAttempt) error {
	if !a.Account.IsLocked(a.Now) {
		return nil
	}
	return apperr.Authorization(fmt.Sprintf(
		"Account is locked. Try again in %d minute(s).",
		remainingMinutes(*a.Account.BlockedUntil, a.Now),
	))
}

func (g *LoginGuard) localCredential(_ context.Context, a *LoginAttempt) error {
	if a.Account.Provider != models.ProviderLocal || a.Account.Password == "" {
		return apperr.Authentication(MsgInvalidCredentials)
	}
	return nil
}

func (g *LoginGuard) passwordMatch(ctx context.Context, a *LoginAttempt) error {
	if a.Account.IsPasswordMatch(a.Password) {
		return nil
	}

	lockUntil := a.Now.Add(g.policy.LockDuration)
	updated, err := g.store.RecordFailedLogin(ctx, a.Account.ID.Hex(), g.policy.MaxAttempts, lockUntil)
	if err != nil {
		return apperr.Dependency("Failed to update account", err)
	}
	a.Account = updated

	if updated.IsLocked(a.Now) {
		return apperr.Authorization(fmt.Sprintf(
			"Too many failed login attempts. Account locked for %d minutes.",
			int(g.policy.LockDuration.Minutes()),
		))
	}
	return apperr.Authentication(MsgInvalidCredentials)
}

func (g *LoginGuard) emailVerified(_ context.Context, a *LoginAttempt) error {
	if a.Account.IsEmailVerified {
		return nil
	}
	return apperr.Authentication("Please verify your email before logging in.")
}

func (g *LoginGuard) statusActive(_ context.Context, a *LoginAttempt) error {
	switch a.Account.Status {
	case models.StatusBanned:
		return apperr.Authorization("This account has been banned.")
	case models.StatusInactive:
		return apperr.Authorization("This account is inactive.")
	}
	return nil
}

func remainingMinutes(until, now time.Time) int {
	m := int(math.Ceil(until.Sub(now).Minutes()))
	if m < 1 {
		return 1
	}
	return m
}
