package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/AnshRaj112/authgate-backend/pkg/utils"
)

type Provider string

const (
	ProviderLocal    Provider = "local"
	ProviderGoogle   Provider = "google"
	ProviderFacebook Provider = "facebook"
	ProviderGithub   Provider = "github"
)

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleTeacher Role = "teacher"
	RoleStaff   Role = "staff"
	RoleUser    Role = "user"
)

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
	StatusBanned   Status = "banned"
)

type Avatar struct {
	URL      string `bson:"url" json:"url"`
	PublicID string `bson:"publicId" json:"-"`
}

// LoginMeta describes the client of the last successful sign-in.
type LoginMeta struct {
	IP        string `bson:"ip" json:"ip"`
	UserAgent string `bson:"userAgent" json:"userAgent"`
	Browser   string `bson:"browser" json:"browser"`
	OS        string `bson:"os" json:"os"`
	Device    string `bson:"device" json:"device"`
}

// Account is the only persisted entity. Secret fields never leave the
// service: they are excluded from JSON and only their hashes are stored.
type Account struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`

	Email       string `bson:"email" json:"email" validate:"required,email"`
	UserName    string `bson:"userName" json:"userName" validate:"required,username"`
	FullName    string `bson:"fullName,omitempty" json:"fullName,omitempty" validate:"omitempty,max=80"`
	PhoneNumber string `bson:"phoneNumber,omitempty" json:"phoneNumber,omitempty" validate:"omitempty,e164"`
	Gender      string `bson:"gender,omitempty" json:"gender,omitempty" validate:"omitempty,oneof=male female other"`
	Avatar      Avatar `bson:"avatar" json:"avatar"`

	Password string   `bson:"password,omitempty" json:"-"`
	Provider Provider `bson:"provider" json:"provider" validate:"required,oneof=local google facebook github"`
	Role     Role     `bson:"role" json:"role" validate:"required,oneof=admin manager teacher staff user"`
	Status   Status   `bson:"status" json:"status" validate:"required,oneof=active inactive banned"`

	IsEmailVerified bool       `bson:"isEmailVerified" json:"isEmailVerified"`
	OTP             string     `bson:"otp,omitempty" json:"-"`
	OTPExpires      *time.Time `bson:"otpExpires,omitempty" json:"-"`
	OTPAttempts     int        `bson:"otpAttempts" json:"-"`

	ForgotPasswordToken       string     `bson:"forgotPasswordToken,omitempty" json:"-"`
	ForgotPasswordTokenExpiry *time.Time `bson:"forgotPasswordTokenExpiry,omitempty" json:"-"`

	RefreshToken       string     `bson:"refreshToken,omitempty" json:"-"`
	RefreshTokenExpiry *time.Time `bson:"refreshTokenExpiry,omitempty" json:"-"`

	LoginAttempts   int        `bson:"loginAttempts" json:"-"`
	IsAccountLocked bool       `bson:"isAccountLocked" json:"-"`
	BlockedUntil    *time.Time `bson:"blockedUntil,omitempty" json:"-"`

	LastLoginAt       *time.Time `bson:"lastLoginAt,omitempty" json:"lastLoginAt,omitempty"`
	LastLoginMeta     LoginMeta  `bson:"lastLoginMeta" json:"lastLoginMeta"`
	PasswordChangedAt *time.Time `bson:"passwordChangedAt,omitempty" json:"-"`

	pendingPassword *string
}

// NewAccount returns an account with the default role, status and login meta.
func NewAccount(email, userName string, provider Provider) *Account {
	return &Account{
		Email:         utils.NormalizeEmail(email),
		UserName:      utils.NormalizeUsername(userName),
		Provider:      provider,
		Role:          RoleUser,
		Status:        StatusActive,
		LastLoginMeta: DefaultLoginMeta(),
	}
}

func DefaultLoginMeta() LoginMeta {
	return LoginMeta{
		IP:        "Unknown",
		UserAgent: "Unknown",
		Browser:   "Unknown",
		OS:        "Unknown",
		Device:    "Desktop",
	}
}

// SetPassword stages a new plaintext password. The store replaces it with a
// hash on the next Create or Save.
func (a *Account) SetPassword(plain string) {
	a.pendingPassword = &plain
}

// HasPendingPassword reports whether SetPassword was called since the last save.
func (a *Account) HasPendingPassword() bool {
	return a.pendingPassword != nil
}

// HashPendingPassword hashes a staged password into Password. Replacing an
// existing password stamps PasswordChangedAt. It is a no-op when nothing is
// staged.
func (a *Account) HashPendingPassword(now time.Time) error {
	if a.pendingPassword == nil {
		return nil
	}
	hash, err := utils.HashPassword(*a.pendingPassword)
	if err != nil {
		return err
	}
	if a.Password != "" {
		a.PasswordChangedAt = &now
	}
	a.Password = hash
	a.pendingPassword = nil
	return nil
}

// IsPasswordMatch compares candidate against the stored hash in constant time.
func (a *Account) IsPasswordMatch(candidate string) bool {
	if a.Password == "" {
		return false
	}
	ok, err := utils.VerifyPassword(candidate, a.Password)
	return err == nil && ok
}

// IsLocked reports whether the account is inside an active lockout window.
func (a *Account) IsLocked(now time.Time) bool {
	return a.IsAccountLocked && a.BlockedUntil != nil && now.Before(*a.BlockedUntil)
}

// ClearLockout moves the account back to the open state.
func (a *Account) ClearLockout() {
	a.LoginAttempts = 0
	a.IsAccountLocked = false
	a.BlockedUntil = nil
}

// SetOTP stores a new verification code hash and restarts its attempt count.
func (a *Account) SetOTP(hash string, expires time.Time) {
	a.OTP = hash
	a.OTPExpires = &expires
	a.OTPAttempts = 0
}

func (a *Account) ClearOTP() {
	a.OTP = ""
	a.OTPExpires = nil
	a.OTPAttempts = 0
}

func (a *Account) ClearResetToken() {
	a.ForgotPasswordToken = ""
	a.ForgotPasswordTokenExpiry = nil
}

func (a *Account) ClearRefreshToken() {
	a.RefreshToken = ""
	a.RefreshTokenExpiry = nil
}

// IssuedBeforePasswordChange reports whether a token issued at iat may
// predate the last password change. Token iat has whole-second precision, so
// a token from the same second as the change is treated as older.
func (a *Account) IssuedBeforePasswordChange(iat time.Time) bool {
	if a.PasswordChangedAt == nil {
		return false
	}
	return iat.Unix() <= a.PasswordChangedAt.Unix()
}
