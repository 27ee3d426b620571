// Package settings holds the process-wide configuration. A Settings value is
// built once at startup and handed to constructors; nothing below cmd/ reads
// the environment directly.
package settings

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/devphaseX/voltvista-payments/internal/env"
)

type Settings struct {
	Addr    string
	Env     string
	AppName string
	// BaseURL is the public origin used to build provider return targets.
	BaseURL string

	ProviderTimeout time.Duration
	RateLimit       string

	DB     DB
	Redis  Redis
	Stripe Stripe
	PayPal PayPal
	SMTP   SMTP
}

type DB struct {
	DSN          string
	MaxOpenConns int
	MaxIdleConns int
	MaxIdleTime  string
}

type Redis struct {
	Addr     string
	Password string
	DB       int
}

type Stripe struct {
	SecretKey        string
	WebhookSecret    string
	Currency         string
	DepositAmount    float64
	APIBase          string
	WebhookTolerance time.Duration
}

// Enabled reports whether the card provider has the credentials it needs to
// both create sessions and verify webhooks.
func (s Stripe) Enabled() bool {
	return s.SecretKey != "" && s.WebhookSecret != ""
}

type PayPal struct {
	ClientID      string
	ClientSecret  string
	Environment   string
	APIBase       string
	Currency      string
	DepositAmount float64
}

func (p PayPal) Enabled() bool {
	return p.ClientID != "" && p.ClientSecret != ""
}

func (p PayPal) Live() bool {
	return strings.EqualFold(p.Environment, "live")
}

type SMTP struct {
	Host         string
	Port         int
	Username     string
	Password     string
	From         string
	OwnerAddress string
}

func (s SMTP) Enabled() bool {
	return s.Host != "" && s.Username != "" && s.Password != "" && s.OwnerAddress != ""
}

// Load reads the environment.
func Load() Settings {
	return Settings{
		Addr:            env.GetString("ADDR", ":8080"),
		Env:             env.GetString("ENV", "development"),
		AppName:         env.GetString("APP_NAME", "Voltvista Electric"),
		BaseURL:         strings.TrimRight(env.GetString("BASE_URL", "http://127.0.0.1:8080"), "/"),
		ProviderTimeout: env.GetDuration("PROVIDER_TIMEOUT", 20*time.Second),
		RateLimit:       env.GetString("RATE_LIMIT", "10-M"),
		DB: DB{
			DSN:          env.GetString("DB_DSN", ""),
			MaxOpenConns: env.GetInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: env.GetInt("DB_MAX_IDLE_CONNS", 25),
			MaxIdleTime:  env.GetString("DB_MAX_IDLE_TIME", "15m"),
		},
		Redis: Redis{
			Addr:     env.GetString("REDIS_ADDR", ""),
			Password: env.GetString("REDIS_PASSWORD", ""),
			DB:       env.GetInt("REDIS_DB", 0),
		},
		Stripe: Stripe{
			SecretKey:        env.GetString("STRIPE_SECRET_KEY", ""),
			WebhookSecret:    env.GetString("STRIPE_WEBHOOK_SECRET", ""),
			Currency:         env.GetString("STRIPE_CURRENCY", "usd"),
			DepositAmount:    env.GetFloat("STRIPE_DEPOSIT_AMOUNT", 99.00),
			APIBase:          env.GetString("STRIPE_API_BASE", ""),
			WebhookTolerance: env.GetDuration("STRIPE_WEBHOOK_TOLERANCE", 5*time.Minute),
		},
		PayPal: PayPal{
			ClientID:      env.GetString("PAYPAL_CLIENT_ID", ""),
			ClientSecret:  env.GetString("PAYPAL_CLIENT_SECRET", ""),
			Environment:   env.GetString("PAYPAL_ENV", "sandbox"),
			APIBase:       env.GetString("PAYPAL_API_BASE", ""),
			Currency:      env.GetString("PAYPAL_CURRENCY", "USD"),
			DepositAmount: env.GetFloat("PAYPAL_DEPOSIT_AMOUNT", 99.00),
		},
		SMTP: SMTP{
			Host:         env.GetString("SMTP_HOST", ""),
			Port:         env.GetInt("SMTP_PORT", 587),
			Username:     env.GetString("SMTP_USER", ""),
			Password:     env.GetString("SMTP_PASS", ""),
			From:         env.GetString("SMTP_FROM", env.GetString("SMTP_USER", "")),
			OwnerAddress: env.GetString("EMAIL_TO_OWNER", ""),
		},
	}
}

func (s Settings) Validate() error {
	var errs []error

	u, err := url.Parse(s.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("BASE_URL %q must be an absolute url", s.BaseURL))
	}

	if s.Stripe.DepositAmount <= 0 {
		errs = append(errs, errors.New("STRIPE_DEPOSIT_AMOUNT must be greater than zero"))
	}

	if s.PayPal.DepositAmount <= 0 {
		errs = append(errs, errors.New("PAYPAL_DEPOSIT_AMOUNT must be greater than zero"))
	}

	if s.ProviderTimeout <= 0 {
		errs = append(errs, errors.New("PROVIDER_TIMEOUT must be positive"))
	}

	return errors.Join(errs...)
}
