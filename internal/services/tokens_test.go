package services

import (
	"regexp"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/AnshRaj112/authgate-backend/internal/models"
)

func testIssuer(t *testing.T) *TokenIssuer {
	t.Helper()
	issuer, err := NewTokenIssuer(TokenConfig{
		AccessSecret:  "test-access-secret-key-123",
		RefreshSecret: "test-refresh-secret-key-456",
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    7 * 24 * time.Hour,
	})
	require.NoError(t, err)
	return issuer
}

func TestNewTokenIssuer(t *testing.T) {
	tests := []struct {
		name    string
		cfg     TokenConfig
		wantErr bool
	}{
		{name: "valid", cfg: TokenConfig{AccessSecret: "a", RefreshSecret: "r"}},
		{name: "missing access secret", cfg: TokenConfig{RefreshSecret: "r"}, wantErr: true},
		{name: "missing refresh secret", cfg: TokenConfig{AccessSecret: "a"}, wantErr: true},
		{name: "shared secret", cfg: TokenConfig{AccessSecret: "same", RefreshSecret: "same"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			issuer, err := NewTokenIssuer(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, issuer)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, time.Hour, issuer.AccessTTL())
			assert.Equal(t, 7*24*time.Hour, issuer.RefreshTTL())
		})
	}
}

func TestTokenIssuer_IssueAndVerify(t *testing.T) {
	issuer := testIssuer(t)
	acc := &models.Account{ID: primitive.NewObjectID(), Role: models.RoleManager}

	pair, err := issuer.IssuePair(acc)
	require.NoError(t, err)
	assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)

	claims, err := issuer.VerifyAccess(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, acc.ID.Hex(), claims.AccountID())
	assert.Equal(t, "manager", claims.Role)
	assert.NotEmpty(t, claims.ID)

	claims, err = issuer.VerifyRefresh(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, acc.ID.Hex(), claims.AccountID())

	t.Run("secrets are not interchangeable", func(t *testing.T) {
		_, err := issuer.VerifyAccess(pair.RefreshToken)
		assert.ErrorIs(t, err, ErrInvalidToken)
		_, err = issuer.VerifyRefresh(pair.AccessToken)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("tokens issued in the same second differ", func(t *testing.T) {
		other, err := issuer.IssuePair(acc)
		require.NoError(t, err)
		assert.NotEqual(t, pair.RefreshToken, other.RefreshToken)
	})
}

func TestTokenIssuer_Expiry(t *testing.T) {
	now := time.Now()
	issuer := testIssuer(t).WithClock(func() time.Time { return now })
	acc := &models.Account{ID: primitive.NewObjectID(), Role: models.RoleUser}

	token, exp, err := issuer.IssueAccess(acc)
	require.NoError(t, err)
	assert.Equal(t, now.Add(15*time.Minute), exp)

	issuer.WithClock(func() time.Time { return now.Add(16 * time.Minute) })
	_, err = issuer.VerifyAccess(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenIssuer_RejectsOtherAlgorithms(t *testing.T) {
	issuer := testIssuer(t)
	claims := AccountClaims{
		Role: "user",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   primitive.NewObjectID().Hex(),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = issuer.VerifyAccess(unsigned)
	assert.ErrorIs(t, err, ErrInvalidToken)

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("test-access-secret-key-123"))
	require.NoError(t, err)
	_, err = issuer.VerifyAccess(hs512)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = issuer.VerifyAccess("")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenIssuer_TemporarySecret(t *testing.T) {
	now := time.Now()
	issuer := testIssuer(t).WithClock(func() time.Time { return now })

	secret, err := issuer.NewTemporarySecret(20 * time.Minute)
	require.NoError(t, err)
	assert.Len(t, secret.Plain, 40)
	assert.Equal(t, HashSecret(secret.Plain), secret.Hash)
	assert.NotEqual(t, secret.Plain, secret.Hash)
	assert.Equal(t, now.Add(20*time.Minute), secret.ExpiresAt)

	other, err := issuer.NewTemporarySecret(20 * time.Minute)
	require.NoError(t, err)
	assert.NotEqual(t, secret.Plain, other.Plain)
}

func TestTokenIssuer_OTP(t *testing.T) {
	issuer := testIssuer(t)
	digits := regexp.MustCompile(`^\d{6}$`)

	for i := 0; i < 20; i++ {
		otp, err := issuer.NewOTP(24 * time.Hour)
		require.NoError(t, err)
		assert.Regexp(t, digits, otp.Plain)
		assert.Equal(t, HashSecret(otp.Plain), otp.Hash)
	}
}
