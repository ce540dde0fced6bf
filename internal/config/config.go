package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

type SMTP struct {
	Host      string
	Port      int
	Username  string
	Password  string
	TLSMode   string
	FromName  string
	FromEmail string
}

type Config struct {
	Env        string
	Addr       string
	PublicURL  *url.URL
	DBDSN      string
	JWTSecret  string
	JWTTTL     time.Duration
	LogLevel   string
	CORSOrigin string

	GoogleClientID string
	AppleServiceID string

	SMTP SMTP
}

func Load() (Config, error) {
	return LoadFromEnv(os.Getenv)
}

func LoadFromEnv(getenv func(string) string) (Config, error) {
	cfg := Config{
		Env:            getenv("APP_ENV"),
		Addr:           getenv("APP_ADDR"),
		DBDSN:          getenv("APP_DB_DSN"),
		JWTSecret:      getenv("APP_JWT_SECRET"),
		LogLevel:       getenv("APP_LOG_LEVEL"),
		CORSOrigin:     getenv("APP_CORS_ORIGIN"),
		GoogleClientID: strings.TrimSpace(getenv("APP_GOOGLE_CLIENT_ID")),
		AppleServiceID: strings.TrimSpace(getenv("APP_APPLE_SERVICE_ID")),
	}

	if cfg.Env == "" {
		cfg.Env = "dev"
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8080"
	}

	publicURLRaw := getenv("APP_PUBLIC_URL")
	if publicURLRaw != "" {
		parsed, err := url.Parse(publicURLRaw)
		if err != nil {
			return Config{}, fmt.Errorf("APP_PUBLIC_URL: %w", err)
		}
		if !parsed.IsAbs() || parsed.Host == "" {
			return Config{}, errors.New("APP_PUBLIC_URL: must be an absolute URL")
		}
		switch parsed.Scheme {
		case "http", "https":
		default:
			return Config{}, errors.New("APP_PUBLIC_URL: scheme must be http or https")
		}
		cfg.PublicURL = parsed
	}

	ttlRaw := getenv("APP_JWT_TTL")
	if ttlRaw == "" {
		cfg.JWTTTL = 90 * 24 * time.Hour
	} else {
		ttl, err := time.ParseDuration(ttlRaw)
		if err != nil {
			return Config{}, fmt.Errorf("APP_JWT_TTL: %w", err)
		}
		if ttl <= 0 {
			return Config{}, errors.New("APP_JWT_TTL: must be > 0")
		}
		cfg.JWTTTL = ttl
	}

	switch cfg.Env {
	case "dev", "prod", "test":
	default:
		return Config{}, errors.New("APP_ENV: must be one of dev, test, prod")
	}

	smtp, err := loadSMTP(getenv)
	if err != nil {
		return Config{}, err
	}
	cfg.SMTP = smtp

	if cfg.IsProd() {
		if cfg.PublicURL == nil {
			return Config{}, errors.New("APP_PUBLIC_URL: required in prod")
		}
		if cfg.DBDSN == "" {
			return Config{}, errors.New("APP_DB_DSN: required in prod")
		}
		if len(cfg.JWTSecret) < 32 {
			return Config{}, errors.New("APP_JWT_SECRET: must be at least 32 bytes in prod")
		}
	}

	return cfg, nil
}

func loadSMTP(getenv func(string) string) (SMTP, error) {
	smtp := SMTP{
		Host:      getenv("APP_SMTP_HOST"),
		Username:  getenv("APP_SMTP_USERNAME"),
		Password:  getenv("APP_SMTP_PASSWORD"),
		TLSMode:   getenv("APP_SMTP_TLS"),
		FromName:  getenv("APP_SMTP_FROM_NAME"),
		FromEmail: strings.TrimSpace(strings.ToLower(getenv("APP_SMTP_FROM_EMAIL"))),
	}

	portRaw := getenv("APP_SMTP_PORT")
	if portRaw == "" {
		smtp.Port = 587
	} else {
		port, err := strconv.Atoi(portRaw)
		if err != nil || port <= 0 || port > 65535 {
			return SMTP{}, errors.New("APP_SMTP_PORT: must be a valid port")
		}
		smtp.Port = port
	}

	switch smtp.TLSMode {
	case "", "starttls", "tls", "none":
	default:
		return SMTP{}, errors.New("APP_SMTP_TLS: must be one of starttls, tls, none")
	}

	if smtp.Host != "" && smtp.FromEmail == "" {
		return SMTP{}, errors.New("APP_SMTP_FROM_EMAIL: required when APP_SMTP_HOST is set")
	}

	return smtp, nil
}

func (c Config) IsProd() bool { return c.Env == "prod" }

func (c Config) EmailEnabled() bool { return c.SMTP.Host != "" }

// CookieSecure decides the Secure flag on the jwt cookie: https public URL,
// or prod behind a TLS-terminating proxy.
func (c Config) CookieSecure() bool {
	if c.PublicURL != nil {
		return c.PublicURL.Scheme == "https"
	}
	return c.IsProd()
}
