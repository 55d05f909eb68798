package services

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/AnshRaj112/authgate-backend/internal/models"
)

var (
	ErrMissingSigningKey = errors.New("token signing keys are not configured")
	ErrInvalidToken      = errors.New("invalid token")
)

type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// AccountClaims is the payload of access and refresh tokens.
type AccountClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// AccountID returns the subject, the hex id of the account.
func (c *AccountClaims) AccountID() string { return c.Subject }

type TokenConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

// TokenPair is handed to the client after a successful authentication.
type TokenPair struct {
	AccessToken      string    `json:"accessToken"`
	RefreshToken     string    `json:"refreshToken"`
	AccessExpiresAt  time.Time `json:"accessTokenExpiresAt"`
	RefreshExpiresAt time.Time `json:"refreshTokenExpiresAt"`
}

// TemporarySecret is a one-time value: Plain goes to the user, Hash is stored.
type TemporarySecret struct {
	Plain     string
	Hash      string
	ExpiresAt time.Time
}

type TokenIssuer struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

func NewTokenIssuer(cfg TokenConfig) (*TokenIssuer, error) {
	if cfg.AccessSecret == "" || cfg.RefreshSecret == "" {
		return nil, ErrMissingSigningKey
	}
	if cfg.AccessSecret == cfg.RefreshSecret {
		return nil, errors.New("access and refresh secrets must differ")
	}
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = time.Hour
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = 7 * 24 * time.Hour
	}
	return &TokenIssuer{
		accessSecret:  []byte(cfg.AccessSecret),
		refreshSecret: []byte(cfg.RefreshSecret),
		accessTTL:     cfg.AccessTTL,
		refreshTTL:    cfg.RefreshTTL,
		now:           time.Now,
	}, nil
}

// WithClock replaces the issuer's clock. Used by tests.
func (t *TokenIssuer) WithClock(now func() time.Time) *TokenIssuer {
	t.now = now
	return t
}

func (t *TokenIssuer) AccessTTL() time.Duration  { return t.accessTTL }
func (t *TokenIssuer) RefreshTTL() time.Duration { return t.refreshTTL }

// IssuePair signs a fresh access and refresh token for acc.
func (t *TokenIssuer) IssuePair(acc *models.Account) (*TokenPair, error) {
	access, accessExp, err := t.sign(acc, TokenTypeAccess)
	if err != nil {
		return nil, err
	}
	refresh, refreshExp, err := t.sign(acc, TokenTypeRefresh)
	if err != nil {
		return nil, err
	}
	return &TokenPair{
		AccessToken:      access,
		RefreshToken:     refresh,
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
	}, nil
}

// IssueAccess signs an access token only.
func (t *TokenIssuer) IssueAccess(acc *models.Account) (string, time.Time, error) {
	return t.sign(acc, TokenTypeAccess)
}

func (t *TokenIssuer) sign(acc *models.Account, typ TokenType) (string, time.Time, error) {
	secret, ttl := t.accessSecret, t.accessTTL
	if typ == TokenTypeRefresh {
		secret, ttl = t.refreshSecret, t.refreshTTL
	}

	now := t.now()
	exp := now.Add(ttl)
	claims := AccountClaims{
		Role: string(acc.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   acc.ID.Hex(),
			ID:        uuid.New().String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign %s token: %w", typ, err)
	}
	return signed, exp, nil
}

func (t *TokenIssuer) VerifyAccess(token string) (*AccountClaims, error) {
	return t.verify(token, t.accessSecret)
}

func (t *TokenIssuer) VerifyRefresh(token string) (*AccountClaims, error) {
	return t.verify(token, t.refreshSecret)
}

// Verify checks token with the secret matching typ.
func (t *TokenIssuer) Verify(token string, typ TokenType) (*AccountClaims, error) {
	if typ == TokenTypeRefresh {
		return t.VerifyRefresh(token)
	}
	return t.VerifyAccess(token)
}

func (t *TokenIssuer) verify(token string, secret []byte) (*AccountClaims, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}

	claims := &AccountClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(tok *jwt.Token) (interface{}, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", tok.Header["alg"])
		}
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(t.now),
		jwt.WithIssuedAt(),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !parsed.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// NewTemporarySecret returns 20 random bytes hex-encoded together with their
// sha256 hash and an expiry ttl from now.
func (t *TokenIssuer) NewTemporarySecret(ttl time.Duration) (*TemporarySecret, error) {
	buf := make([]byte, 20)
	if _, err := rand.Read(buf); err != nil {
		return nil, err
	}
	plain := hex.EncodeToString(buf)
	return &TemporarySecret{
		Plain:     plain,
		Hash:      HashSecret(plain),
		ExpiresAt: t.now().Add(ttl),
	}, nil
}

// NewOTP returns a six digit numeric code with its hash and expiry.
func (t *TokenIssuer) NewOTP(ttl time.Duration) (*TemporarySecret, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return nil, err
	}
	code := fmt.Sprintf("%06d", n.Int64())
	return &TemporarySecret{
		Plain:     code,
		Hash:      HashSecret(code),
		ExpiresAt: t.now().Add(ttl),
	}, nil
}

// HashSecret is the one-way hash used for every secret stored at rest.
func HashSecret(plain string) string {
	sum := sha256.Sum256([]byte(plain))
	return hex.EncodeToString(sum[:])
}
