package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Development bool
	Server      ServerConfig
	Database    DatabaseConfig
	Auth        AuthConfig
	Stripe      StripeConfig
	SMTP        SMTPConfig
	Notifier    NotifierConfig
	Reconcile   ReconcileConfig
}

type ServerConfig struct {
	Port int
}

type DatabaseConfig struct {
	URL         string
	AutoMigrate bool
}

type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
	// Currency is fixed for every donation (ISO 4217, lower case as Stripe expects).
	Currency   string
	SuccessURL string
	CancelURL  string
}

type SMTPConfig struct {
	Host       string
	Port       int
	Username   string
	Password   string
	From       string
	FromName   string
	UseSSL     bool
	RequireTLS bool
	Timeout    time.Duration
	AppName    string
	AppBaseURL string
}

type NotifierConfig struct {
	QueueSize int
	Workers   int
}

type ReconcileConfig struct {
	Timeout time.Duration
	// How long a final confirm status is served without asking the provider again.
	ConfirmCacheTTL time.Duration
}

// Load reads .env (if present) and the process environment, then validates.
func Load() (Config, error) {
	cfg := Read()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Read is Load without validation, for callers that still apply overrides.
func Read() Config {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("development", false)
	v.SetDefault("port", 8080)
	v.SetDefault("postgres_url", "")
	v.SetDefault("db_auto_migrate", true)
	v.SetDefault("jwt_secret", "")
	v.SetDefault("jwt_ttl", "1h")
	v.SetDefault("stripe_secret_key", "")
	v.SetDefault("stripe_webhook_secret", "")
	v.SetDefault("stripe_currency", "eur")
	v.SetDefault("stripe_success_url", "http://localhost:3000/donar/gracias")
	v.SetDefault("stripe_cancel_url", "http://localhost:3000/donar")
	v.SetDefault("smtp_host", "smtp.gmail.com")
	v.SetDefault("smtp_port", 587)
	v.SetDefault("smtp_username", "")
	v.SetDefault("smtp_password", "")
	v.SetDefault("smtp_from", "")
	v.SetDefault("smtp_from_name", "Colabora")
	v.SetDefault("smtp_use_ssl", false)
	v.SetDefault("smtp_require_tls", true)
	v.SetDefault("smtp_timeout", "30s")
	v.SetDefault("app_name", "Colabora")
	v.SetDefault("app_base_url", "http://localhost:3000")
	v.SetDefault("notifier_queue_size", 256)
	v.SetDefault("notifier_workers", 2)
	v.SetDefault("reconcile_timeout", "15s")
	v.SetDefault("confirm_cache_ttl", "10m")

	cfg := Config{
		Development: v.GetBool("development"),
		Server:      ServerConfig{Port: v.GetInt("port")},
		Database: DatabaseConfig{
			URL:         strings.TrimSpace(v.GetString("postgres_url")),
			AutoMigrate: v.GetBool("db_auto_migrate"),
		},
		Auth: AuthConfig{
			JWTSecret: v.GetString("jwt_secret"),
			TokenTTL:  v.GetDuration("jwt_ttl"),
		},
		Stripe: StripeConfig{
			SecretKey:     strings.TrimSpace(v.GetString("stripe_secret_key")),
			WebhookSecret: strings.TrimSpace(v.GetString("stripe_webhook_secret")),
			Currency:      strings.ToLower(strings.TrimSpace(v.GetString("stripe_currency"))),
			SuccessURL:    v.GetString("stripe_success_url"),
			CancelURL:     v.GetString("stripe_cancel_url"),
		},
		SMTP: SMTPConfig{
			Host:       v.GetString("smtp_host"),
			Port:       v.GetInt("smtp_port"),
			Username:   v.GetString("smtp_username"),
			Password:   v.GetString("smtp_password"),
			From:       v.GetString("smtp_from"),
			FromName:   v.GetString("smtp_from_name"),
			UseSSL:     v.GetBool("smtp_use_ssl"),
			RequireTLS: v.GetBool("smtp_require_tls"),
			Timeout:    v.GetDuration("smtp_timeout"),
			AppName:    v.GetString("app_name"),
			AppBaseURL: v.GetString("app_base_url"),
		},
		Notifier: NotifierConfig{
			QueueSize: v.GetInt("notifier_queue_size"),
			Workers:   v.GetInt("notifier_workers"),
		},
		Reconcile: ReconcileConfig{
			Timeout:         v.GetDuration("reconcile_timeout"),
			ConfirmCacheTTL: v.GetDuration("confirm_cache_ttl"),
		},
	}

	if cfg.Notifier.QueueSize <= 0 {
		cfg.Notifier.QueueSize = 256
	}
	if cfg.Notifier.Workers <= 0 {
		cfg.Notifier.Workers = 1
	}
	if cfg.Reconcile.Timeout <= 0 {
		cfg.Reconcile.Timeout = 15 * time.Second
	}
	if cfg.Development && cfg.Auth.JWTSecret == "" {
		cfg.Auth.JWTSecret = "colabora-local-dev"
	}
	return cfg
}

// Validate checks that all required configuration fields are properly set
func (c Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid PORT: %d", c.Server.Port)
	}
	if c.Database.URL == "" {
		return fmt.Errorf("POSTGRES_URL is required")
	}
	if len(c.Stripe.Currency) != 3 {
		return fmt.Errorf("invalid STRIPE_CURRENCY: %q", c.Stripe.Currency)
	}
	if c.Development {
		return nil
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.Stripe.SecretKey == "" {
		return fmt.Errorf("STRIPE_SECRET_KEY is required")
	}
	if c.Stripe.WebhookSecret == "" {
		return fmt.Errorf("STRIPE_WEBHOOK_SECRET is required")
	}
	return nil
}
