package repository

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/AnshRaj112/authgate-backend/internal/models"
)

// MemoryAccountStore keeps accounts in process memory. It enforces the same
// uniqueness and expiry rules as the Mongo store and is used by tests and
// local runs without a database.
type MemoryAccountStore struct {
	mu        sync.Mutex
	accounts  map[primitive.ObjectID]models.Account
	validator Validator
	now       func() time.Time
}

func NewMemoryAccountStore(v Validator) *MemoryAccountStore {
	return &MemoryAccountStore{
		accounts:  make(map[primitive.ObjectID]models.Account),
		validator: v,
		now:       time.Now,
	}
}

// WithClock replaces the clock used for createdAt, updatedAt and
// passwordChangedAt stamps.
func (s *MemoryAccountStore) WithClock(now func() time.Time) *MemoryAccountStore {
	s.now = now
	return s
}

func (s *MemoryAccountStore) find(match func(*models.Account) bool) (*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, acc := range s.accounts {
		if match(&acc) {
			out := acc
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryAccountStore) FindByEmail(_ context.Context, email string) (*models.Account, error) {
	email = normalize(email)
	return s.find(func(a *models.Account) bool { return a.Email == email })
}

func (s *MemoryAccountStore) FindByID(_ context.Context, id string) (*models.Account, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[oid]
	if !ok {
		return nil, ErrNotFound
	}
	return &acc, nil
}

func (s *MemoryAccountStore) FindByUserName(_ context.Context, userName string) (*models.Account, error) {
	userName = normalize(userName)
	return s.find(func(a *models.Account) bool { return a.UserName == userName })
}

func (s *MemoryAccountStore) FindByOTP(_ context.Context, otpHash string, now time.Time) (*models.Account, error) {
	if otpHash == "" {
		return nil, ErrNotFound
	}
	return s.find(func(a *models.Account) bool {
		return a.OTP == otpHash && a.OTPExpires != nil && a.OTPExpires.After(now)
	})
}

func (s *MemoryAccountStore) FindByResetToken(_ context.Context, tokenHash string, now time.Time) (*models.Account, error) {
	if tokenHash == "" {
		return nil, ErrNotFound
	}
	return s.find(func(a *models.Account) bool {
		return a.ForgotPasswordToken == tokenHash && a.ForgotPasswordTokenExpiry != nil && a.ForgotPasswordTokenExpiry.After(now)
	})
}

func (s *MemoryAccountStore) FindByRefreshToken(_ context.Context, tokenHash string) (*models.Account, error) {
	if tokenHash == "" {
		return nil, ErrNotFound
	}
	return s.find(func(a *models.Account) bool { return a.RefreshToken == tokenHash })
}

func (s *MemoryAccountStore) Create(_ context.Context, acc *models.Account) error {
	if err := prepare(acc, s.validator, true, s.now()); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkUnique(acc); err != nil {
		return err
	}
	if acc.ID.IsZero() {
		acc.ID = primitive.NewObjectID()
	}
	s.accounts[acc.ID] = *acc
	return nil
}

func (s *MemoryAccountStore) Save(_ context.Context, acc *models.Account, opts ...SaveOption) error {
	o := applySaveOptions(opts)
	if err := prepare(acc, s.validator, !o.skipValidation, s.now()); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[acc.ID]; !ok {
		return ErrNotFound
	}
	if err := s.checkUnique(acc); err != nil {
		return err
	}
	s.accounts[acc.ID] = *acc
	return nil
}

func (s *MemoryAccountStore) Delete(_ context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[oid]; !ok {
		return ErrNotFound
	}
	delete(s.accounts, oid)
	return nil
}

func (s *MemoryAccountStore) RecordFailedLogin(_ context.Context, id string, threshold int, lockUntil time.Time) (*models.Account, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[oid]
	if !ok {
		return nil, ErrNotFound
	}
	acc.LoginAttempts++
	if acc.LoginAttempts >= threshold && !acc.IsAccountLocked {
		acc.IsAccountLocked = true
		acc.BlockedUntil = &lockUntil
	}
	acc.UpdatedAt = s.now()
	s.accounts[oid] = acc
	return &acc, nil
}

func (s *MemoryAccountStore) RecordFailedOTP(_ context.Context, id string, maxAttempts int) (*models.Account, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[oid]
	if !ok {
		return nil, ErrNotFound
	}
	acc.OTPAttempts++
	if acc.OTPAttempts >= maxAttempts {
		acc.OTP = ""
		acc.OTPExpires = nil
	}
	acc.UpdatedAt = s.now()
	s.accounts[oid] = acc
	return &acc, nil
}

// Len returns the number of stored accounts.
func (s *MemoryAccountStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.accounts)
}

func (s *MemoryAccountStore) checkUnique(acc *models.Account) error {
	for id, other := range s.accounts {
		if id == acc.ID {
			continue
		}
		if other.Email == acc.Email {
			return ErrDuplicateEmail
		}
		if other.UserName == acc.UserName {
			return ErrDuplicateName
		}
	}
	return nil
}
