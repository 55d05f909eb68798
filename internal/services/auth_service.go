package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/AnshRaj112/authgate-backend/internal/apperr"
	"github.com/AnshRaj112/authgate-backend/internal/models"
	"github.com/AnshRaj112/authgate-backend/internal/repository"
	"github.com/AnshRaj112/authgate-backend/pkg/utils"
)

const (
	MsgUnauthorized      = "Unauthorized request"
	MsgInvalidOTP        = "Invalid or expired verification code"
	MsgInvalidResetToken = "Invalid or expired reset token"
)

//go:generate mockgen -destination=../mocks/mock_notifier.go -package=mocks github.com/AnshRaj112/authgate-backend/internal/services Notifier

// Notifier sends the account emails of every flow.
type Notifier interface {
	SendVerificationCode(ctx context.Context, acc *models.Account, code string) error
	SendWelcome(ctx context.Context, acc *models.Account) error
	SendPasswordReset(ctx context.Context, acc *models.Account, resetURL string) error
	SendPasswordResetSuccess(ctx context.Context, acc *models.Account) error
	SendPasswordChanged(ctx context.Context, acc *models.Account) error
}

// ClientInfo identifies the caller of a request.
type ClientInfo struct {
	IP        string
	UserAgent string
}

type AuthResult struct {
	Account *models.Account
	Tokens  *TokenPair
}

type SignUpInput struct {
	Email    string
	UserName string
	FullName string
	Password string
}

type SocialLoginInput struct {
	Email        string
	UserName     string
	ProfileImage string
	Provider     models.Provider
}

type AuthConfig struct {
	ClientURL     string
	OTPTTL        time.Duration
	ResetTokenTTL time.Duration
	// MaxOTPAttempts wrong codes for one email void its current code.
	MaxOTPAttempts int
	Lockout        LockoutPolicy
}

type AuthDeps struct {
	Store    repository.AccountStore
	Tokens   *TokenIssuer
	Notifier Notifier
	Google   IDTokenVerifier // nil disables Google login
	Auditor  LoginAuditor
	Logger   *zap.Logger
}

type AuthService struct {
	store    repository.AccountStore
	tokens   *TokenIssuer
	guard    *LoginGuard
	notifier Notifier
	google   IDTokenVerifier
	auditor  LoginAuditor
	log      *zap.Logger
	cfg      AuthConfig
	now      func() time.Time
}

func NewAuthService(deps AuthDeps, cfg AuthConfig) *AuthService {
	if cfg.OTPTTL <= 0 {
		cfg.OTPTTL = 24 * time.Hour
	}
	if cfg.ResetTokenTTL <= 0 {
		cfg.ResetTokenTTL = 20 * time.Minute
	}
	if cfg.MaxOTPAttempts <= 0 {
		cfg.MaxOTPAttempts = 5
	}
	cfg.ClientURL = strings.TrimRight(cfg.ClientURL, "/")

	auditor := deps.Auditor
	if auditor == nil {
		auditor = NopAuditor{}
	}
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return &AuthService{
		store:    deps.Store,
		tokens:   deps.Tokens,
		guard:    NewLoginGuard(deps.Store, cfg.Lockout),
		notifier: deps.Notifier,
		google:   deps.Google,
		auditor:  auditor,
		log:      log,
		cfg:      cfg,
		now:      time.Now,
	}
}

// WithClock replaces the service clock. Used by tests.
func (s *AuthService) WithClock(now func() time.Time) *AuthService {
	s.now = now
	return s
}

func (s *AuthService) Guard() *LoginGuard { return s.guard }

func (s *AuthService) Tokens() *TokenIssuer { return s.tokens }

// SignUp creates an unverified local account, mails it a verification code
// and signs it in. The account is removed again if the code cannot be sent.
func (s *AuthService) SignUp(ctx context.Context, in SignUpInput) (*AuthResult, error) {
	email := utils.NormalizeEmail(in.Email)

	if _, err := s.store.FindByEmail(ctx, email); err == nil {
		return nil, apperr.Conflict("User with this email already exists")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.Dependency("Failed to look up account", err)
	}
	if _, err := s.store.FindByUserName(ctx, in.UserName); err == nil {
		return nil, apperr.Conflict("Username is already taken")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.Dependency("Failed to look up account", err)
	}

	acc := models.NewAccount(email, in.UserName, models.ProviderLocal)
	acc.ID = primitive.NewObjectID()
	acc.FullName = strings.TrimSpace(in.FullName)
	acc.SetPassword(in.Password)

	otp, err := s.newUniqueOTP(ctx)
	if err != nil {
		return nil, apperr.Internal("Failed to generate verification code", err)
	}
	acc.SetOTP(otp.Hash, otp.ExpiresAt)

	pair, err := s.attachSession(acc)
	if err != nil {
		return nil, err
	}

	if err := s.store.Create(ctx, acc); err != nil {
		return nil, storeWriteError(err)
	}

	if err := s.notifier.SendVerificationCode(ctx, acc, otp.Plain); err != nil {
		if delErr := s.store.Delete(ctx, acc.ID.Hex()); delErr != nil {
			s.log.Error("failed to roll back account after email failure",
				zap.String("account_id", acc.ID.Hex()), zap.Error(delErr))
		}
		return nil, apperr.Dependency("Failed to send verification email", err)
	}

	s.log.Info("account created", zap.String("account_id", acc.ID.Hex()))
	return &AuthResult{Account: acc, Tokens: pair}, nil
}

// newUniqueOTP avoids handing out a code another account can still redeem.
func (s *AuthService) newUniqueOTP(ctx context.Context) (*TemporarySecret, error) {
	for i := 0; i < 5; i++ {
		otp, err := s.tokens.NewOTP(s.cfg.OTPTTL)
		if err != nil {
			return nil, err
		}
		_, err = s.store.FindByOTP(ctx, otp.Hash, s.now())
		if errors.Is(err, repository.ErrNotFound) {
			return otp, nil
		}
		if err != nil {
			return nil, err
		}
	}
	return nil, errors.New("could not generate an unused verification code")
}

// VerifyEmail consumes a verification code. When email is given the code is
// only checked against that account.
func (s *AuthService) VerifyEmail(ctx context.Context, code, email string) (*models.Account, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, apperr.Validation(MsgInvalidOTP)
	}
	hash := HashSecret(code)
	now := s.now()

	var acc *models.Account
	var err error
	if email != "" {
		acc, err = s.store.FindByEmail(ctx, email)
		if err == nil && !otpMatches(acc, hash, now) {
			if err := s.recordFailedOTP(ctx, acc, now); err != nil {
				return nil, err
			}
			err = repository.ErrNotFound
		}
	} else {
		acc, err = s.store.FindByOTP(ctx, hash, now)
	}
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.Validation(MsgInvalidOTP)
	}
	if err != nil {
		return nil, apperr.Dependency("Failed to look up account", err)
	}

	acc.IsEmailVerified = true
	acc.ClearOTP()
	if err := s.store.Save(ctx, acc, repository.SkipValidation()); err != nil {
		return nil, storeWriteError(err)
	}

	if err := s.notifier.SendWelcome(ctx, acc); err != nil {
		s.log.Warn("failed to send welcome email", zap.String("account_id", acc.ID.Hex()), zap.Error(err))
	}
	return acc, nil
}

// recordFailedOTP counts a wrong guess against a live code.
func (s *AuthService) recordFailedOTP(ctx context.Context, acc *models.Account, now time.Time) error {
	if acc.OTP == "" || acc.OTPExpires == nil || !now.Before(*acc.OTPExpires) {
		return nil
	}
	updated, err := s.store.RecordFailedOTP(ctx, acc.ID.Hex(), s.cfg.MaxOTPAttempts)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return apperr.Dependency("Failed to record verification attempt", err)
	}
	if err == nil && updated.OTP == "" {
		s.log.Info("verification code voided after repeated failures", zap.String("account_id", acc.ID.Hex()))
	}
	return nil
}

func otpMatches(acc *models.Account, hash string, now time.Time) bool {
	if acc.OTP == "" || acc.OTPExpires == nil || !now.Before(*acc.OTPExpires) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(acc.OTP), []byte(hash)) == 1
}

// ResendVerification issues a new code to an unverified local account.
// Unknown or already verified emails succeed silently.
func (s *AuthService) ResendVerification(ctx context.Context, email string) error {
	acc, err := s.store.FindByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return apperr.Dependency("Failed to look up account", err)
	}
	if acc.IsEmailVerified || acc.Provider != models.ProviderLocal {
		return nil
	}

	otp, err := s.newUniqueOTP(ctx)
	if err != nil {
		return apperr.Internal("Failed to generate verification code", err)
	}
	acc.SetOTP(otp.Hash, otp.ExpiresAt)
	if err := s.store.Save(ctx, acc, repository.SkipValidation()); err != nil {
		return storeWriteError(err)
	}

	if err := s.notifier.SendVerificationCode(ctx, acc, otp.Plain); err != nil {
		return apperr.Dependency("Failed to send verification email", err)
	}
	return nil
}

// SignIn authenticates with email and password through the login guard.
func (s *AuthService) SignIn(ctx context.Context, email, password string, client ClientInfo) (*AuthResult, error) {
	email = utils.NormalizeEmail(email)
	now := s.now()

	acc, err := s.store.FindByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		dummyPasswordCheck(password)
		s.audit(ctx, nil, email, OutcomeInvalidCredentials, client)
		return nil, apperr.Authentication(MsgInvalidCredentials)
	}
	if err != nil {
		return nil, apperr.Dependency("Failed to look up account", err)
	}

	attempt := &LoginAttempt{Account: acc, Password: password, Now: now}
	if err := s.guard.Evaluate(ctx, attempt); err != nil {
		s.audit(ctx, attempt.Account, email, outcomeFor(err), client)
		return nil, err
	}

	acc = attempt.Account
	acc.ClearLockout()
	result, err := s.completeLogin(ctx, acc, client)
	if err != nil {
		return nil, err
	}
	s.audit(ctx, acc, email, OutcomeSuccess, client)
	return result, nil
}

// completeLogin issues a session and records the login on the account.
func (s *AuthService) completeLogin(ctx context.Context, acc *models.Account, client ClientInfo) (*AuthResult, error) {
	pair, err := s.attachSession(acc)
	if err != nil {
		return nil, err
	}
	now := s.now()
	acc.LastLoginAt = &now
	acc.LastLoginMeta = ParseLoginMeta(client.IP, client.UserAgent)

	if err := s.store.Save(ctx, acc, repository.SkipValidation()); err != nil {
		return nil, storeWriteError(err)
	}
	return &AuthResult{Account: acc, Tokens: pair}, nil
}

// attachSession issues a token pair and stores the refresh token hash,
// replacing any previous session of the account.
func (s *AuthService) attachSession(acc *models.Account) (*TokenPair, error) {
	pair, err := s.tokens.IssuePair(acc)
	if err != nil {
		return nil, apperr.Internal("Failed to issue tokens", err)
	}
	acc.RefreshToken = HashSecret(pair.RefreshToken)
	acc.RefreshTokenExpiry = &pair.RefreshExpiresAt
	return pair, nil
}

// SignOut revokes the session of refreshToken. Unknown or empty tokens are
// ignored so sign-out can be repeated.
func (s *AuthService) SignOut(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	acc, err := s.store.FindByRefreshToken(ctx, HashSecret(refreshToken))
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return apperr.Dependency("Failed to look up account", err)
	}

	acc.ClearRefreshToken()
	if err := s.store.Save(ctx, acc, repository.SkipValidation()); err != nil {
		return storeWriteError(err)
	}
	return nil
}

// RefreshAccessToken mints a new access token from a valid, unrevoked
// refresh token.
func (s *AuthService) RefreshAccessToken(ctx context.Context, refreshToken string) (string, time.Time, error) {
	acc, err := s.Authenticate(ctx, refreshToken, TokenTypeRefresh)
	if err != nil {
		return "", time.Time{}, err
	}
	token, exp, err := s.tokens.IssueAccess(acc)
	if err != nil {
		return "", time.Time{}, apperr.Internal("Failed to issue tokens", err)
	}
	return token, exp, nil
}

// Authenticate resolves the account behind a bearer token. Every failure is
// reported with the same generic error.
func (s *AuthService) Authenticate(ctx context.Context, token string, typ TokenType) (*models.Account, error) {
	unauthorized := apperr.Authentication(MsgUnauthorized)

	claims, err := s.tokens.Verify(token, typ)
	if err != nil {
		return nil, unauthorized
	}

	acc, err := s.store.FindByID(ctx, claims.AccountID())
	if errors.Is(err, repository.ErrNotFound) {
		return nil, unauthorized
	}
	if err != nil {
		return nil, apperr.Dependency("Failed to look up account", err)
	}

	now := s.now()
	switch typ {
	case TokenTypeRefresh:
		if !refreshMatches(acc, token, now) {
			return nil, unauthorized
		}
	default:
		if claims.IssuedAt == nil || acc.IssuedBeforePasswordChange(claims.IssuedAt.Time) {
			return nil, unauthorized
		}
	}

	if acc.IsLocked(now) || acc.Status != models.StatusActive {
		return nil, unauthorized
	}
	return acc, nil
}

func refreshMatches(acc *models.Account, token string, now time.Time) bool {
	if acc.RefreshToken == "" {
		return false
	}
	if acc.RefreshTokenExpiry != nil && !now.Before(*acc.RefreshTokenExpiry) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(acc.RefreshToken), []byte(HashSecret(token))) == 1
}

// ChangePassword replaces the password of a signed-in local account and
// revokes its refresh token.
func (s *AuthService) ChangePassword(ctx context.Context, acc *models.Account, oldPassword, newPassword string) error {
	if acc.Password == "" {
		return apperr.Validation("Password change is only available for email sign-in accounts")
	}
	if !acc.IsPasswordMatch(oldPassword) {
		return apperr.Authentication("Old password is incorrect")
	}
	if oldPassword == newPassword {
		return apperr.Validation("New password must be different from the old password")
	}

	acc.SetPassword(newPassword)
	acc.ClearRefreshToken()
	if err := s.store.Save(ctx, acc, repository.SkipValidation()); err != nil {
		return storeWriteError(err)
	}

	if err := s.notifier.SendPasswordChanged(ctx, acc); err != nil {
		s.log.Warn("failed to send password changed email", zap.String("account_id", acc.ID.Hex()), zap.Error(err))
	}
	return nil
}

// ForgotPassword mails a reset link to a verified local account. Unknown
// emails succeed silently. If the mail cannot be sent the stored token is
// cleared again.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	acc, err := s.store.FindByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return apperr.Dependency("Failed to look up account", err)
	}
	if !acc.IsEmailVerified || acc.Provider != models.ProviderLocal {
		s.log.Info("password reset skipped", zap.String("account_id", acc.ID.Hex()),
			zap.Bool("verified", acc.IsEmailVerified), zap.String("provider", string(acc.Provider)))
		return nil
	}

	secret, err := s.tokens.NewTemporarySecret(s.cfg.ResetTokenTTL)
	if err != nil {
		return apperr.Internal("Failed to generate reset token", err)
	}
	acc.ForgotPasswordToken = secret.Hash
	acc.ForgotPasswordTokenExpiry = &secret.ExpiresAt
	if err := s.store.Save(ctx, acc, repository.SkipValidation()); err != nil {
		return storeWriteError(err)
	}

	resetURL := fmt.Sprintf("%s/reset-password/%s", s.cfg.ClientURL, secret.Plain)
	if err := s.notifier.SendPasswordReset(ctx, acc, resetURL); err != nil {
		acc.ClearResetToken()
		if saveErr := s.store.Save(ctx, acc, repository.SkipValidation()); saveErr != nil {
			s.log.Error("failed to roll back reset token", zap.String("account_id", acc.ID.Hex()), zap.Error(saveErr))
		}
		return apperr.Dependency("Failed to send password reset email", err)
	}
	return nil
}

// ResetPassword consumes a reset token and sets a new password. Existing
// sessions are revoked and any lockout is lifted.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return apperr.Validation(MsgInvalidResetToken)
	}

	acc, err := s.store.FindByResetToken(ctx, HashSecret(token), s.now())
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.Validation(MsgInvalidResetToken)
	}
	if err != nil {
		return apperr.Dependency("Failed to look up account", err)
	}

	acc.SetPassword(newPassword)
	acc.ClearResetToken()
	acc.ClearRefreshToken()
	acc.ClearLockout()
	if err := s.store.Save(ctx, acc, repository.SkipValidation()); err != nil {
		return storeWriteError(err)
	}

	if err := s.notifier.SendPasswordResetSuccess(ctx, acc); err != nil {
		s.log.Warn("failed to send reset confirmation email", zap.String("account_id", acc.ID.Hex()), zap.Error(err))
	}
	return nil
}

// UserNameAvailable reports whether name is a valid username nobody holds.
func (s *AuthService) UserNameAvailable(ctx context.Context, name string) (bool, error) {
	if err := utils.ValidateUsername(name); err != nil {
		return false, apperr.Validation(err.Error(), apperr.FieldError{Path: "userName", Message: err.Error()})
	}
	_, err := s.store.FindByUserName(ctx, name)
	if errors.Is(err, repository.ErrNotFound) {
		return true, nil
	}
	if err != nil {
		return false, apperr.Dependency("Failed to look up account", err)
	}
	return false, nil
}

// LoginActivity summarises the recorded sign-in attempts of acc.
type LoginActivity struct {
	Events         []LoginEvent `json:"events"`
	RecentFailures int          `json:"recentFailures"`
}

const loginActivityLimit = 20

// LoginActivity returns the latest sign-in attempts of acc and the number of
// failures in the last 24 hours. Without an audit store it is empty.
func (s *AuthService) LoginActivity(ctx context.Context, acc *models.Account) (*LoginActivity, error) {
	out := &LoginActivity{Events: []LoginEvent{}}
	history, ok := s.auditor.(LoginHistory)
	if !ok {
		return out, nil
	}

	events, err := history.History(ctx, acc.ID.Hex(), loginActivityLimit)
	if err != nil {
		return nil, apperr.Dependency("Failed to load login history", err)
	}
	failures, err := history.RecentFailures(ctx, acc.Email, s.now().Add(-24*time.Hour))
	if err != nil {
		return nil, apperr.Dependency("Failed to load login history", err)
	}
	if events != nil {
		out.Events = events
	}
	out.RecentFailures = failures
	return out, nil
}

// SocialLogin signs in with an identity already established by an OAuth
// provider callback. Accounts are found or created by email; an account
// registered with another provider is not taken over.
func (s *AuthService) SocialLogin(ctx context.Context, in SocialLoginInput, client ClientInfo) (*AuthResult, error) {
	switch in.Provider {
	case models.ProviderGoogle, models.ProviderFacebook, models.ProviderGithub:
	default:
		return nil, apperr.Validation("Unsupported provider",
			apperr.FieldError{Path: "provider", Message: "provider must be one of: google facebook github"})
	}

	acc, err := s.store.FindByEmail(ctx, in.Email)
	switch {
	case err == nil:
		if acc.Provider != in.Provider {
			return nil, apperr.Conflict("An account with this email already exists. Sign in with your original method.")
		}
	case errors.Is(err, repository.ErrNotFound):
		acc, err = s.createExternalAccount(ctx, in.Email, in.UserName, "", in.ProfileImage, in.Provider)
		if err != nil {
			return nil, err
		}
	default:
		return nil, apperr.Dependency("Failed to look up account", err)
	}

	return s.externalLogin(ctx, acc, client)
}

// GoogleLogin verifies a Google ID token and signs the matching account in,
// creating it on first use. Google proves ownership of the email, so an
// existing account with that email is linked and marked verified.
func (s *AuthService) GoogleLogin(ctx context.Context, idToken string, client ClientInfo) (*AuthResult, error) {
	if s.google == nil {
		return nil, apperr.Dependency("Google login is not configured", nil)
	}

	identity, err := s.google.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, apperr.Authentication("Invalid Google token")
	}
	if !identity.EmailVerified {
		return nil, apperr.Authentication("Google account email is not verified")
	}

	acc, err := s.store.FindByEmail(ctx, identity.Email)
	switch {
	case err == nil:
		acc.IsEmailVerified = true
		acc.ClearOTP()
		if acc.FullName == "" {
			acc.FullName = identity.Name
		}
		if acc.Avatar.URL == "" {
			acc.Avatar.URL = identity.Picture
		}
	case errors.Is(err, repository.ErrNotFound):
		seed := strings.SplitN(identity.Email, "@", 2)[0]
		acc, err = s.createExternalAccount(ctx, identity.Email, seed, identity.Name, identity.Picture, models.ProviderGoogle)
		if err != nil {
			return nil, err
		}
	default:
		return nil, apperr.Dependency("Failed to look up account", err)
	}

	return s.externalLogin(ctx, acc, client)
}

func (s *AuthService) externalLogin(ctx context.Context, acc *models.Account, client ClientInfo) (*AuthResult, error) {
	now := s.now()
	if acc.IsLocked(now) {
		s.audit(ctx, acc, acc.Email, OutcomeLocked, client)
		return nil, apperr.Authorization(fmt.Sprintf(
			"Account is locked. Try again in %d minute(s).", remainingMinutes(*acc.BlockedUntil, now)))
	}
	if acc.Status != models.StatusActive {
		s.audit(ctx, acc, acc.Email, OutcomeInactive, client)
		return nil, apperr.Authorization("This account is not active.")
	}

	acc.ClearLockout()
	result, err := s.completeLogin(ctx, acc, client)
	if err != nil {
		return nil, err
	}
	s.audit(ctx, acc, acc.Email, OutcomeSuccess, client)
	return result, nil
}

func (s *AuthService) createExternalAccount(ctx context.Context, email, userNameSeed, fullName, picture string, provider models.Provider) (*models.Account, error) {
	userName, err := s.uniqueUserName(ctx, userNameSeed)
	if err != nil {
		return nil, err
	}

	acc := models.NewAccount(email, userName, provider)
	acc.IsEmailVerified = true
	acc.FullName = strings.TrimSpace(fullName)
	acc.Avatar.URL = picture

	if err := s.store.Create(ctx, acc); err != nil {
		return nil, storeWriteError(err)
	}
	s.log.Info("account created", zap.String("account_id", acc.ID.Hex()), zap.String("provider", string(provider)))
	return acc, nil
}

// uniqueUserName turns seed into a valid username that is not taken yet.
func (s *AuthService) uniqueUserName(ctx context.Context, seed string) (string, error) {
	base := sanitizeUserName(seed)
	candidate := base
	for i := 0; i < 5; i++ {
		_, err := s.store.FindByUserName(ctx, candidate)
		if errors.Is(err, repository.ErrNotFound) {
			return candidate, nil
		}
		if err != nil {
			return "", apperr.Dependency("Failed to look up account", err)
		}
		suffix, err := s.tokens.NewOTP(0)
		if err != nil {
			return "", apperr.Internal("Failed to generate username", err)
		}
		candidate = base + "_" + suffix.Plain[:4]
	}
	return "", apperr.Conflict("Could not generate a unique username")
}

func sanitizeUserName(seed string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(seed) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' {
			b.WriteRune(r)
		}
	}
	name := strings.TrimLeft(b.String(), "_")
	if len(name) > 15 {
		name = name[:15]
	}
	if len(name) < utils.MinUsernameLength {
		name = "user" + name
	}
	return name
}

func (s *AuthService) audit(ctx context.Context, acc *models.Account, email string, outcome LoginOutcome, client ClientInfo) {
	ev := LoginEvent{
		Email:     email,
		Outcome:   outcome,
		IP:        client.IP,
		UserAgent: client.UserAgent,
		CreatedAt: s.now(),
	}
	if acc != nil {
		ev.AccountID = acc.ID.Hex()
	}
	if err := s.auditor.Record(ctx, ev); err != nil {
		s.log.Warn("failed to record login event", zap.String("outcome", string(outcome)), zap.Error(err))
	}
}

func outcomeFor(err error) LoginOutcome {
	var gerr *GuardError
	if !errors.As(err, &gerr) {
		return OutcomeError
	}
	switch gerr.Guard {
	case GuardNotLocked:
		return OutcomeLocked
	case GuardPasswordMatch:
		if apperr.IsKind(err, apperr.KindAuthorization) {
			return OutcomeLocked
		}
		if apperr.IsKind(err, apperr.KindAuthentication) {
			return OutcomeInvalidCredentials
		}
		return OutcomeError
	case GuardLocalCredential:
		return OutcomeInvalidCredentials
	case GuardEmailVerified:
		return OutcomeUnverified
	case GuardStatusActive:
		return OutcomeInactive
	}
	return OutcomeError
}

func storeWriteError(err error) error {
	switch {
	case errors.Is(err, repository.ErrDuplicateEmail):
		return apperr.Conflict("User with this email already exists")
	case errors.Is(err, repository.ErrDuplicateName):
		return apperr.Conflict("Username is already taken")
	case errors.Is(err, repository.ErrNotFound):
		return apperr.NotFound("Account not found")
	}
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return apperr.Dependency("Failed to save account", err)
}

var (
	dummyHashOnce sync.Once
	dummyHash     string
)

// dummyPasswordCheck spends the same work as a real comparison so unknown
// emails cannot be told apart by response time.
func dummyPasswordCheck(password string) {
	dummyHashOnce.Do(func() {
		dummyHash, _ = utils.HashPassword("dummy-password-for-timing")
	})
	_, _ = utils.VerifyPassword(password, dummyHash)
}
