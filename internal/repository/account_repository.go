// Package repository persists accounts.
package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/AnshRaj112/authgate-backend/internal/models"
)

var (
	ErrNotFound       = errors.New("account not found")
	ErrDuplicateEmail = errors.New("email already registered")
	ErrDuplicateName  = errors.New("username already taken")
)

// AccountStore is the credential store. Create and Save hash a password
// staged with Account.SetPassword before writing.
type AccountStore interface {
	FindByEmail(ctx context.Context, email string) (*models.Account, error)
	FindByID(ctx context.Context, id string) (*models.Account, error)
	FindByUserName(ctx context.Context, userName string) (*models.Account, error)
	// FindByOTP and FindByResetToken only match while the secret is unexpired.
	FindByOTP(ctx context.Context, otpHash string, now time.Time) (*models.Account, error)
	FindByResetToken(ctx context.Context, tokenHash string, now time.Time) (*models.Account, error)
	FindByRefreshToken(ctx context.Context, tokenHash string) (*models.Account, error)

	Create(ctx context.Context, acc *models.Account) error
	Save(ctx context.Context, acc *models.Account, opts ...SaveOption) error
	Delete(ctx context.Context, id string) error

	// RecordFailedLogin atomically increments the failure counter and locks
	// the account once threshold is reached. It returns the updated account.
	RecordFailedLogin(ctx context.Context, id string, threshold int, lockUntil time.Time) (*models.Account, error)

	// RecordFailedOTP atomically counts a wrong verification code and clears
	// the code once maxAttempts is reached. It returns the updated account.
	RecordFailedOTP(ctx context.Context, id string, maxAttempts int) (*models.Account, error)
}

type saveOptions struct {
	skipValidation bool
}

type SaveOption func(*saveOptions)

// SkipValidation saves without validating the whole document. Use it for
// partial updates of bookkeeping fields.
func SkipValidation() SaveOption {
	return func(o *saveOptions) { o.skipValidation = true }
}

func applySaveOptions(opts []SaveOption) saveOptions {
	var o saveOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Validator checks an account before it is written.
type Validator interface {
	Struct(s any) error
}

// prepare runs the shared pre-write steps for every store implementation.
func prepare(acc *models.Account, v Validator, validate bool, now time.Time) error {
	if validate && v != nil {
		if err := v.Struct(acc); err != nil {
			return err
		}
	}
	if err := acc.HashPendingPassword(now); err != nil {
		return err
	}
	if acc.CreatedAt.IsZero() {
		acc.CreatedAt = now
	}
	acc.UpdatedAt = now
	return nil
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
