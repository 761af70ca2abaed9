// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package config

import (
	"fmt"
	"strings"
	"time"

	altsrc "github.com/urfave/cli-altsrc/v3"
	"github.com/urfave/cli-altsrc/v3/toml"
	"github.com/urfave/cli/v3"
)

var configFile = altsrc.StringSourcer("config.toml")

type Config struct { //nolint:govet // fieldalignment not critical for config structs
	Server    ServerConfig
	Log       LogConfig
	Database  DatabaseConfig
	Cache     CacheConfig
	SMTP      SMTPConfig
	Auth      AuthConfig
	Reset     ResetConfig
	RateLimit RateLimitConfig
}

type ServerConfig struct { //nolint:govet // fieldalignment not critical for config structs
	Host        string
	Port        int
	BaseURL     string
	MaxBodySize int  // in MB
	TrustProxy  bool // take the client IP from X-Forwarded-For / X-Real-IP
	CORSOrigins []string
}

type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // text, json
}

type DatabaseConfig struct {
	DSN string
}

type CacheConfig struct {
	Backend  string // memory, redis
	RedisURL string // redis://host:port/db or host:port
}

type SMTPConfig struct { //nolint:govet // fieldalignment not critical for config structs
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
	TLS      bool
}

type AuthConfig struct { //nolint:govet // fieldalignment not critical for config structs
	JWTSecret         string
	AccessTokenTTL    time.Duration
	RefreshTokenTTL   time.Duration
	MinPasswordLength int
	AdminEmail        string // bootstrap superuser, created when none exists
	AdminPassword     string
}

type ResetConfig struct {
	FrontendURL string        // origin of the admin frontend, used in reset links
	TokenTTL    time.Duration // validity of password-reset links
	OTPTTL      time.Duration // validity of one-time codes
}

// RateLimitConfig holds rules in "N/unit" form, e.g. "5/h".
type RateLimitConfig struct {
	LoginIP         string
	LoginIdentifier string
	ResetIP         string
	ResetEmail      string
	ResetConfirmIP  string
	OTPIP           string
	OTPEmail        string
	OTPConfirmIP    string
}

func NewFromCLI(cmd *cli.Command) *Config {
	cfg := &Config{
		Server: ServerConfig{
			Host:        cmd.String("host"),
			Port:        int(cmd.Int("port")),
			BaseURL:     cmd.String("base-url"),
			MaxBodySize: int(cmd.Int("max-body-size")),
			TrustProxy:  cmd.Bool("trust-proxy"),
			CORSOrigins: splitList(cmd.String("cors-origins")),
		},
		Log: LogConfig{
			Level:  cmd.String("log-level"),
			Format: cmd.String("log-format"),
		},
		Database: DatabaseConfig{
			DSN: cmd.String("database-dsn"),
		},
		Cache: CacheConfig{
			Backend:  strings.ToLower(cmd.String("cache-backend")),
			RedisURL: cmd.String("redis-url"),
		},
		SMTP: SMTPConfig{
			Host:     cmd.String("smtp-host"),
			Port:     int(cmd.Int("smtp-port")),
			Username: cmd.String("smtp-username"),
			Password: cmd.String("smtp-password"),
			From:     cmd.String("smtp-from"),
			FromName: cmd.String("smtp-from-name"),
			TLS:      cmd.Bool("smtp-tls"),
		},
		Auth: AuthConfig{
			JWTSecret:         cmd.String("jwt-secret"),
			AccessTokenTTL:    time.Duration(cmd.Int("jwt-access-ttl")) * time.Minute,
			RefreshTokenTTL:   time.Duration(cmd.Int("jwt-refresh-ttl")) * time.Minute,
			MinPasswordLength: int(cmd.Int("min-password-length")),
			AdminEmail:        cmd.String("admin-email"),
			AdminPassword:     cmd.String("admin-password"),
		},
		Reset: ResetConfig{
			FrontendURL: cmd.String("frontend-url"),
			TokenTTL:    time.Duration(cmd.Int("reset-token-ttl")) * time.Hour,
			OTPTTL:      time.Duration(cmd.Int("otp-ttl")) * time.Second,
		},
		RateLimit: RateLimitConfig{
			LoginIP:         cmd.String("ratelimit-login-ip"),
			LoginIdentifier: cmd.String("ratelimit-login-identifier"),
			ResetIP:         cmd.String("ratelimit-reset-ip"),
			ResetEmail:      cmd.String("ratelimit-reset-email"),
			ResetConfirmIP:  cmd.String("ratelimit-reset-confirm-ip"),
			OTPIP:           cmd.String("ratelimit-otp-ip"),
			OTPEmail:        cmd.String("ratelimit-otp-email"),
			OTPConfirmIP:    cmd.String("ratelimit-otp-confirm-ip"),
		},
	}

	if cfg.Server.BaseURL == "" {
		cfg.Server.BaseURL = buildBaseURL(cfg)
	}

	applyResetDefaults(cfg)

	return cfg
}

// applyResetDefaults points reset links at the first CORS origin (the admin
// frontend) and falls back to the API base URL.
func applyResetDefaults(cfg *Config) {
	if cfg.Reset.FrontendURL == "" && len(cfg.Server.CORSOrigins) > 0 {
		cfg.Reset.FrontendURL = cfg.Server.CORSOrigins[0]
	}
	if cfg.Reset.FrontendURL == "" {
		cfg.Reset.FrontendURL = cfg.Server.BaseURL
	}
	cfg.Reset.FrontendURL = strings.TrimSuffix(cfg.Reset.FrontendURL, "/")
}

func buildBaseURL(cfg *Config) string {
	host := cfg.Server.Host
	port := cfg.Server.Port

	if port == 80 {
		return fmt.Sprintf("http://%s", host)
	}
	return fmt.Sprintf("http://%s:%d", host, port)
}

// IsLocalhost checks if the host is a localhost address.
func IsLocalhost(host string) bool {
	switch host {
	case "", "localhost", "127.0.0.1", "::1":
		return true
	}
	// Check for *.localhost subdomains (e.g., app.localhost)
	return strings.HasSuffix(host, ".localhost")
}

func splitList(s string) []string {
	var out []string
	for part := range strings.SplitSeq(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func source(env, key string) cli.ValueSourceChain {
	return cli.NewValueSourceChain(cli.EnvVar(env), toml.TOML(key, configFile))
}

// Flags returns the flags shared by every subcommand.
func Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "log-level",
			Value:   "info",
			Usage:   "Log level (debug, info, warn, error)",
			Sources: source("LOG_LEVEL", "log.level"),
		},
		&cli.StringFlag{
			Name:    "log-format",
			Value:   "text",
			Usage:   "Log format (text, json)",
			Sources: source("LOG_FORMAT", "log.format"),
		},
		&cli.StringFlag{
			Name:    "database-dsn",
			Value:   "./data/moto.db",
			Usage:   "Database DSN",
			Sources: source("DATABASE_DSN", "database.dsn"),
		},
		&cli.IntFlag{
			Name:    "min-password-length",
			Value:   8,
			Usage:   "Minimum password length",
			Sources: source("MIN_PASSWORD_LENGTH", "auth.min_password_length"),
		},
	}
}

// ServeFlags returns the flags of the serve command.
func ServeFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "host",
			Value:   "localhost",
			Usage:   "Host to bind to",
			Sources: source("HOST", "server.host"),
		},
		&cli.IntFlag{
			Name:    "port",
			Value:   8080,
			Usage:   "Port to listen on",
			Sources: source("PORT", "server.port"),
		},
		&cli.StringFlag{
			Name:    "base-url",
			Usage:   "Base URL for the application",
			Sources: source("BASE_URL", "server.base_url"),
		},
		&cli.IntFlag{
			Name:    "max-body-size",
			Value:   1,
			Usage:   "Maximum request body size in MB",
			Sources: source("MAX_BODY_SIZE", "server.max_body_size"),
		},
		&cli.BoolFlag{
			Name:    "trust-proxy",
			Usage:   "Resolve client IPs from X-Forwarded-For / X-Real-IP",
			Sources: source("TRUST_PROXY", "server.trust_proxy"),
		},
		&cli.StringFlag{
			Name:    "cors-origins",
			Usage:   "Comma-separated list of allowed CORS origins",
			Sources: source("CORS_ALLOWED_ORIGINS", "server.cors_origins"),
		},
		&cli.StringFlag{
			Name:    "cache-backend",
			Value:   "memory",
			Usage:   "Cache backend (memory, redis)",
			Sources: source("CACHE_BACKEND", "cache.backend"),
		},
		&cli.StringFlag{
			Name:    "redis-url",
			Value:   "redis://localhost:6379/0",
			Usage:   "Redis URL for the redis cache backend",
			Sources: source("REDIS_URL", "cache.redis_url"),
		},
		// SMTP flags
		&cli.StringFlag{
			Name:    "smtp-host",
			Usage:   "SMTP host (emails are logged when empty)",
			Sources: source("SMTP_HOST", "smtp.host"),
		},
		&cli.IntFlag{
			Name:    "smtp-port",
			Value:   587,
			Usage:   "SMTP port",
			Sources: source("SMTP_PORT", "smtp.port"),
		},
		&cli.StringFlag{
			Name:    "smtp-username",
			Usage:   "SMTP username",
			Sources: source("SMTP_USERNAME", "smtp.username"),
		},
		&cli.StringFlag{
			Name:    "smtp-password",
			Usage:   "SMTP password",
			Sources: source("SMTP_PASSWORD", "smtp.password"),
		},
		&cli.StringFlag{
			Name:    "smtp-from",
			Value:   "noreply@agdemoto.com",
			Usage:   "Sender address",
			Sources: source("SMTP_FROM", "smtp.from"),
		},
		&cli.StringFlag{
			Name:    "smtp-from-name",
			Value:   "Agde Moto",
			Usage:   "Sender display name",
			Sources: source("SMTP_FROM_NAME", "smtp.from_name"),
		},
		&cli.BoolFlag{
			Name:    "smtp-tls",
			Value:   true,
			Usage:   "Require TLS for SMTP",
			Sources: source("SMTP_TLS", "smtp.tls"),
		},
		// Auth flags
		&cli.StringFlag{
			Name:    "jwt-secret",
			Usage:   "Secret used to sign tokens (random per process when empty)",
			Sources: source("JWT_SECRET_KEY", "auth.jwt_secret"),
		},
		&cli.IntFlag{
			Name:    "jwt-access-ttl",
			Value:   15,
			Usage:   "Access token lifetime in minutes",
			Sources: source("JWT_ACCESS_TOKEN_LIFETIME", "auth.access_ttl"),
		},
		&cli.IntFlag{
			Name:    "jwt-refresh-ttl",
			Value:   1440,
			Usage:   "Refresh token lifetime in minutes",
			Sources: source("JWT_REFRESH_TOKEN_LIFETIME", "auth.refresh_ttl"),
		},
		&cli.StringFlag{
			Name:    "admin-email",
			Usage:   "Email of the superuser created at startup when none exists",
			Sources: source("ADMIN_EMAIL", "auth.admin_email"),
		},
		&cli.StringFlag{
			Name:    "admin-password",
			Usage:   "Password of the bootstrap superuser",
			Sources: source("ADMIN_PASSWORD", "auth.admin_password"),
		},
		// Reset flags
		&cli.StringFlag{
			Name:    "frontend-url",
			Usage:   "Frontend origin used in password reset links (defaults to the first CORS origin)",
			Sources: source("FRONTEND_URL", "reset.frontend_url"),
		},
		&cli.IntFlag{
			Name:    "reset-token-ttl",
			Value:   24,
			Usage:   "Password reset link lifetime in hours",
			Sources: source("RESET_TOKEN_TTL", "reset.token_ttl"),
		},
		&cli.IntFlag{
			Name:    "otp-ttl",
			Value:   600,
			Usage:   "One-time code lifetime in seconds",
			Sources: source("OTP_TTL", "reset.otp_ttl"),
		},
		// Rate limit flags
		&cli.StringFlag{
			Name:    "ratelimit-login-ip",
			Value:   "5/m",
			Usage:   "Login attempts per client IP",
			Sources: source("RATELIMIT_LOGIN_IP", "ratelimit.login_ip"),
		},
		&cli.StringFlag{
			Name:    "ratelimit-login-identifier",
			Value:   "3/m",
			Usage:   "Login attempts per submitted username or email",
			Sources: source("RATELIMIT_LOGIN_IDENTIFIER", "ratelimit.login_identifier"),
		},
		&cli.StringFlag{
			Name:    "ratelimit-reset-ip",
			Value:   "5/h",
			Usage:   "Password reset requests per client IP",
			Sources: source("RATELIMIT_RESET_IP", "ratelimit.reset_ip"),
		},
		&cli.StringFlag{
			Name:    "ratelimit-reset-email",
			Value:   "3/h",
			Usage:   "Password reset requests per submitted email",
			Sources: source("RATELIMIT_RESET_EMAIL", "ratelimit.reset_email"),
		},
		&cli.StringFlag{
			Name:    "ratelimit-reset-confirm-ip",
			Value:   "10/h",
			Usage:   "Password reset confirmations per client IP",
			Sources: source("RATELIMIT_RESET_CONFIRM_IP", "ratelimit.reset_confirm_ip"),
		},
		&cli.StringFlag{
			Name:    "ratelimit-otp-ip",
			Value:   "10/h",
			Usage:   "OTP requests per client IP",
			Sources: source("RATELIMIT_OTP_IP", "ratelimit.otp_ip"),
		},
		&cli.StringFlag{
			Name:    "ratelimit-otp-email",
			Value:   "5/h",
			Usage:   "OTP requests per submitted email",
			Sources: source("RATELIMIT_OTP_EMAIL", "ratelimit.otp_email"),
		},
		&cli.StringFlag{
			Name:    "ratelimit-otp-confirm-ip",
			Value:   "20/h",
			Usage:   "OTP confirmations per client IP",
			Sources: source("RATELIMIT_OTP_CONFIRM_IP", "ratelimit.otp_confirm_ip"),
		},
	}
}
