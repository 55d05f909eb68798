package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/AnshRaj112/authgate-backend/pkg/clientip"
)

type Config struct {
	Environment    string // ENV: production, development, etc.
	Port           string
	Host           string // Raw HOST env (e.g. https://api.example.com)
	AllowedHost    string // Hostname only for strict host check (production only)
	ClientURL      string // Frontend base used in reset links
	AllowedOrigins []string
	TrustedProxies []string // TRUSTED_PROXIES: IPs or CIDRs allowed to set X-Forwarded-For
	AppName        string

	MongoURI      string
	MongoDatabase string
	RedisURI      string
	PostgresURI   string // optional; enables the login audit trail

	JWT      JWTConfig
	Security SecurityConfig

	GoogleClientID string

	CloudinaryName      string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string

	ResendAPIKey string
	MailFrom     string

	SentryDSN string
	LogLevel  string
	LogDev    bool
}

type JWTConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	ResetTokenTTL time.Duration
	OTPTTL        time.Duration
}

type SecurityConfig struct {
	MaxLoginAttempts int
	LockDuration     time.Duration
	MaxOTPAttempts   int
	AuthRateLimit    int
	AuthRateWindow   time.Duration
}

func Load() *Config {
	env := strings.ToLower(strings.TrimSpace(getEnv("ENV", "development")))
	host := getEnv("HOST", "http://localhost:8080")
	clientURL := strings.TrimRight(getEnv("CLIENT_URL", "http://localhost:5173"), "/")

	// AllowedHost is only set in production; host check is skipped in development
	var allowedHost string
	if env == "production" {
		allowedHost = bareHost(host)
	}

	allowedOrigins := parseOrigins(getEnv("ALLOWED_ORIGINS", ""))
	if !containsOrigin(allowedOrigins, clientURL) {
		allowedOrigins = append(allowedOrigins, clientURL)
	}

	return &Config{
		Environment:    env,
		Port:           getEnv("PORT", "8080"),
		Host:           host,
		AllowedHost:    allowedHost,
		ClientURL:      clientURL,
		AllowedOrigins: allowedOrigins,
		TrustedProxies: parseOrigins(getEnv("TRUSTED_PROXIES", "")),
		AppName:        getEnv("APP_NAME", "Authgate"),

		MongoURI:      getEnv("MONGODB_URI", getEnv("MONGO_URI", "mongodb://localhost:27017/authgate")),
		MongoDatabase: getEnv("MONGODB_DATABASE", ""),
		RedisURI:      getEnv("REDIS_URI", "redis://localhost:6379/0"),
		PostgresURI:   getEnv("POSTGRES_URI", ""),

		JWT: JWTConfig{
			AccessSecret:  getEnv("JWT_SECRET", ""),
			RefreshSecret: getEnv("REFRESH_TOKEN_SECRET", ""),
			AccessTTL:     getDurationEnv("JWT_EXPIRES_IN", time.Hour),
			RefreshTTL:    getDurationEnv("REFRESH_TOKEN_EXPIRES_IN", 7*24*time.Hour),
			ResetTokenTTL: getDurationEnv("RESET_TOKEN_EXPIRES_IN", 20*time.Minute),
			OTPTTL:        getDurationEnv("OTP_EXPIRES_IN", 24*time.Hour),
		},
		Security: SecurityConfig{
			MaxLoginAttempts: getIntEnv("MAX_LOGIN_ATTEMPTS", 5),
			LockDuration:     getDurationEnv("LOCK_DURATION", 15*time.Minute),
			MaxOTPAttempts:   getIntEnv("MAX_OTP_ATTEMPTS", 5),
			AuthRateLimit:    getIntEnv("AUTH_RATE_LIMIT", 5),
			AuthRateWindow:   getDurationEnv("AUTH_RATE_WINDOW", time.Minute),
		},

		GoogleClientID: getEnv("GOOGLE_CLIENT_ID", ""),

		CloudinaryName:      getEnv("CLOUDINARY_CLOUD_NAME", ""),
		CloudinaryAPIKey:    getEnv("CLOUDINARY_API_KEY", ""),
		CloudinaryAPISecret: getEnv("CLOUDINARY_API_SECRET", ""),

		ResendAPIKey: getEnv("RESEND_API_KEY", ""),
		MailFrom:     getEnv("MAIL_FROM", "Authgate <no-reply@authgate.dev>"),

		SentryDSN: getEnv("SENTRY_DSN", ""),
		LogLevel:  getEnv("LOG_LEVEL", ""),
		LogDev:    getEnv("LOG_DEV", "") == "1",
	}
}

// Validate reports configuration that must stop the server from starting.
func (c *Config) Validate() error {
	var errs []error
	if c.JWT.AccessSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.JWT.RefreshSecret == "" {
		errs = append(errs, errors.New("REFRESH_TOKEN_SECRET is required"))
	}
	if c.JWT.AccessSecret != "" && c.JWT.AccessSecret == c.JWT.RefreshSecret {
		errs = append(errs, errors.New("JWT_SECRET and REFRESH_TOKEN_SECRET must differ"))
	}
	if c.Security.MaxLoginAttempts < 1 {
		errs = append(errs, errors.New("MAX_LOGIN_ATTEMPTS must be positive"))
	}
	if c.Security.MaxOTPAttempts < 1 {
		errs = append(errs, errors.New("MAX_OTP_ATTEMPTS must be positive"))
	}
	if _, err := clientip.ParseTrustedProxies(c.TrustedProxies); err != nil {
		errs = append(errs, fmt.Errorf("TRUSTED_PROXIES: %w", err))
	}
	if c.IsProduction() && c.ResendAPIKey == "" {
		errs = append(errs, errors.New("RESEND_API_KEY is required in production"))
	}
	return errors.Join(errs...)
}

// IsProduction returns true when ENV is set to "production".
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// CloudinaryEnabled reports whether all Cloudinary credentials are present.
func (c *Config) CloudinaryEnabled() bool {
	return c.CloudinaryName != "" && c.CloudinaryAPIKey != "" && c.CloudinaryAPISecret != ""
}

func bareHost(host string) string {
	for _, prefix := range []string{"https://", "http://"} {
		host = strings.TrimPrefix(host, prefix)
	}
	if idx := strings.Index(host, "/"); idx != -1 {
		host = host[:idx]
	}
	if idx := strings.Index(host, ":"); idx != -1 {
		host = host[:idx]
	}
	return strings.TrimSpace(host)
}

func parseOrigins(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func containsOrigin(list []string, o string) bool {
	o = strings.TrimSpace(strings.ToLower(o))
	for _, v := range list {
		if strings.TrimSpace(strings.ToLower(v)) == o {
			return true
		}
	}
	return false
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// ParseDuration accepts everything time.ParseDuration does plus a whole
// number of days with a "d" suffix, e.g. "7d".
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if days, ok := strings.CutSuffix(s, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil {
			return 0, err
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	return time.ParseDuration(s)
}
