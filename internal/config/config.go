package config

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/event-planner-api/internal/pkg/duration"
)

const (
	EnvLocal       = "local"
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// OTP store backends.
const (
	OTPStoreMemory = "memory"
	OTPStoreDynamo = "dynamo"
	OTPStoreRedis  = "redis"
)

const (
	devJWTSecret        = "secret"
	devJWTRefreshSecret = "refreshSecret"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort string
	AppEnv  string

	JWTSecret        string
	JWTRefreshSecret string
	JWTExpiry        time.Duration
	JWTRefreshExpiry time.Duration
	Cookie           CookieConfig
	RegistrationOTP  bool
	OTPStore         string
	OTPTTL           time.Duration
	OTPSMSEnabled    bool
	RedisURL         string

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	DynamoTables   DynamoTables

	SMTPHost     string
	SMTPPort     int
	SMTPFrom     string
	SMTPUsername string
	SMTPPassword string
	SNSRegion    string

	AllowedOrigins []string // CORS allowed origins
	// TrustProxy takes the client IP from X-Forwarded-For / X-Real-IP.
	// Enable only behind a proxy that overwrites those headers.
	TrustProxy bool
}

// CookieConfig controls the attributes of the auth cookies. Max-Age is not
// configured here: it always follows JWTExpiry and JWTRefreshExpiry.
type CookieConfig struct {
	Secure   bool
	SameSite http.SameSite
	Domain   string
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	Users                string
	Events               string
	PendingRegistrations string
}

// Load reads all configuration from environment variables.
func Load() (*Config, error) {
	jwtExpiry, err := duration.Parse(getEnv("JWT_EXPIRES_IN", "15m"))
	if err != nil {
		return nil, fmt.Errorf("JWT_EXPIRES_IN: %w", err)
	}
	refreshExpiry, err := duration.Parse(getEnv("JWT_REFRESH_EXPIRES_IN", "7d"))
	if err != nil {
		return nil, fmt.Errorf("JWT_REFRESH_EXPIRES_IN: %w", err)
	}
	otpTTL, err := duration.Parse(getEnv("OTP_TTL", "10m"))
	if err != nil {
		return nil, fmt.Errorf("OTP_TTL: %w", err)
	}
	sameSite, err := parseSameSite(getEnv("COOKIE_SAMESITE", "lax"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		AppPort:          getEnv("APP_PORT", "3001"),
		AppEnv:           getEnv("APP_ENV", EnvLocal),
		JWTSecret:        getEnv("JWT_SECRET", ""),
		JWTRefreshSecret: getEnv("JWT_REFRESH_SECRET", ""),
		JWTExpiry:        jwtExpiry,
		JWTRefreshExpiry: refreshExpiry,
		Cookie: CookieConfig{
			Secure:   getEnvBool("COOKIE_SECURE", false),
			SameSite: sameSite,
			Domain:   getEnv("COOKIE_DOMAIN", ""),
		},
		RegistrationOTP: getEnvBool("REGISTRATION_OTP", false),
		OTPStore:        getEnv("OTP_STORE", OTPStoreMemory),
		OTPTTL:          otpTTL,
		OTPSMSEnabled:   getEnvBool("OTP_SMS_ENABLED", false),
		RedisURL:        getEnv("REDIS_URL", "redis://localhost:6379/0"),

		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DynamoTables: DynamoTables{
			Users:                getEnv("DYNAMO_TABLE_USERS", "users"),
			Events:               getEnv("DYNAMO_TABLE_EVENTS", "events"),
			PendingRegistrations: getEnv("DYNAMO_TABLE_PENDING_REGISTRATIONS", "pending_registrations"),
		},

		SMTPHost:     getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:     getEnvInt("SMTP_PORT", 587),
		SMTPFrom:     getEnv("SMTP_FROM", getEnv("SMTP_USER", "noreply@example.com")),
		SMTPUsername: getEnv("SMTP_USER", ""),
		SMTPPassword: getEnv("SMTP_PASS", ""),
		SNSRegion:    getEnv("SNS_REGION", "us-east-1"),

		AllowedOrigins: splitList(getEnv("FRONTEND_URL", "http://localhost:5173")),
		TrustProxy:     getEnvBool("TRUST_PROXY", false),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate fills development defaults for the JWT secrets and rejects
// configurations that cannot run safely.
func (c *Config) Validate() error {
	if c.AppEnv == EnvProduction {
		if c.JWTSecret == "" || c.JWTRefreshSecret == "" {
			return errors.New("JWT_SECRET and JWT_REFRESH_SECRET are required in production")
		}
	}
	if c.JWTSecret == "" {
		c.JWTSecret = devJWTSecret
	}
	if c.JWTRefreshSecret == "" {
		c.JWTRefreshSecret = devJWTRefreshSecret
	}
	if c.JWTSecret == c.JWTRefreshSecret {
		return errors.New("JWT_SECRET and JWT_REFRESH_SECRET must differ")
	}
	switch c.OTPStore {
	case OTPStoreMemory, OTPStoreDynamo, OTPStoreRedis:
	default:
		return fmt.Errorf("unknown OTP_STORE %q", c.OTPStore)
	}
	return nil
}

func parseSameSite(v string) (http.SameSite, error) {
	switch strings.ToLower(v) {
	case "lax":
		return http.SameSiteLaxMode, nil
	case "strict":
		return http.SameSiteStrictMode, nil
	case "none":
		return http.SameSiteNoneMode, nil
	}
	return 0, fmt.Errorf("COOKIE_SAMESITE must be lax, strict or none, got %q", v)
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
