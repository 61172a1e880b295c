// SPDX-License-Identifier: GPL-3.0-only

package commons

import (
	"errors"
	"fmt"
	"net/mail"
	"net/url"
	"regexp"
	"strings"
	"time"
)

var defaultAllowedOrigins = []string{
	"http://localhost:3000",
	"http://localhost:5173",
	"http://127.0.0.1:5173",
}

var sqlIdentifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// IsSQLIdentifier reports whether name is a plain, optionally schema
// qualified, SQL identifier that is safe to splice into a statement.
func IsSQLIdentifier(name string) bool {
	return sqlIdentifier.MatchString(name)
}

type DBConfig struct {
	Dialect     string
	Path        string
	PostgresDSN string
	MySQLDSN    string
}

type IdentityConfig struct {
	Provider       string
	SupabaseURL    string
	AnonKey        string
	ServiceRoleKey string
}

type MailConfig struct {
	Provider     string
	From         string
	ResendAPIKey string
	ResendAPIURL string
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
}

type HooksConfig struct {
	CleanupRPCName  string
	CleanupRPCParam string
	AMQPURL         string
	AMQPExchange    string
}

type ThrottleConfig struct {
	RedisAddr string
	Limit     int
	Window    time.Duration
}

// Config is assembled once at startup by LoadConfig and never mutated.
type Config struct {
	Port           string
	SiteBaseURL    string
	ConfirmPath    string
	AllowedOrigins []string
	DB             DBConfig
	Identity       IdentityConfig
	Mail           MailConfig
	Hooks          HooksConfig
	Throttle       ThrottleConfig
}

func LoadConfig() (Config, error) {
	cfg := Config{
		Port:           GetEnv("PORT", "8080"),
		SiteBaseURL:    strings.TrimRight(GetEnv("SITE_BASE_URL", "http://localhost:5173"), "/"),
		ConfirmPath:    GetEnv("CONFIRM_PATH", "/account-deletion-confirm.html"),
		AllowedOrigins: SplitList(GetEnv("CORS_ALLOWED_ORIGINS")),
		DB: DBConfig{
			Dialect:     strings.ToLower(GetEnv("DB_DIALECT", "sqlite")),
			Path:        GetEnv("DB_PATH", "deletions.db"),
			PostgresDSN: GetEnv("POSTGRES_DSN"),
			MySQLDSN:    GetEnv("MYSQL_DSN"),
		},
		Identity: IdentityConfig{
			Provider:       strings.ToLower(GetEnv("IDENTITY_PROVIDER", "local")),
			SupabaseURL:    strings.TrimRight(GetEnv("SUPABASE_URL"), "/"),
			AnonKey:        GetEnv("SUPABASE_ANON_KEY"),
			ServiceRoleKey: GetEnv("SUPABASE_SERVICE_ROLE_KEY"),
		},
		Mail: MailConfig{
			Provider:     strings.ToLower(GetEnv("MAIL_PROVIDER", "mock")),
			From:         GetEnv("MAIL_FROM", "Accounts <no-reply@example.com>"),
			ResendAPIKey: GetEnv("RESEND_API_KEY"),
			ResendAPIURL: strings.TrimRight(GetEnv("RESEND_API_URL", "https://api.resend.com"), "/"),
			SMTPHost:     GetEnv("SMTP_HOST"),
			SMTPUsername: GetEnv("SMTP_USERNAME"),
			SMTPPassword: GetEnv("SMTP_PASSWORD"),
		},
		Hooks: HooksConfig{
			CleanupRPCName:  GetEnv("DB_DELETE_RPC_NAME"),
			CleanupRPCParam: GetEnv("DB_DELETE_RPC_PARAM", "p_user_id"),
			AMQPURL:         GetEnv("AMQP_URL"),
			AMQPExchange:    GetEnv("AMQP_EXCHANGE", "account.events"),
		},
		Throttle: ThrottleConfig{
			RedisAddr: GetEnv("REDIS_ADDR"),
		},
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = append([]string(nil), defaultAllowedOrigins...)
	}
	if cfg.Port[0] != ':' {
		cfg.Port = ":" + cfg.Port
	}

	var err error
	if cfg.Mail.SMTPPort, err = GetEnvInt("SMTP_PORT", 587); err != nil {
		return Config{}, err
	}
	if cfg.Throttle.Limit, err = GetEnvInt("ISSUE_LIMIT", 3); err != nil {
		return Config{}, err
	}
	if cfg.Throttle.Window, err = GetEnvDuration("ISSUE_WINDOW", 10*time.Minute); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks every setting that would otherwise fail per request.
func (c Config) Validate() error {
	var errs []error

	if _, err := ParseFromAddress(c.Mail.From); err != nil {
		errs = append(errs, err)
	}

	u, err := url.Parse(c.SiteBaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("SITE_BASE_URL must be an absolute http(s) URL, got %q", c.SiteBaseURL))
	}
	if !strings.HasPrefix(c.ConfirmPath, "/") {
		errs = append(errs, fmt.Errorf("CONFIRM_PATH must start with '/', got %q", c.ConfirmPath))
	}

	switch c.DB.Dialect {
	case "sqlite":
	case "postgres":
		if c.DB.PostgresDSN == "" {
			errs = append(errs, errors.New("POSTGRES_DSN is required for postgres dialect"))
		}
	case "mysql":
		if c.DB.MySQLDSN == "" {
			errs = append(errs, errors.New("MYSQL_DSN is required for mysql dialect"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported DB_DIALECT %q", c.DB.Dialect))
	}

	switch c.Identity.Provider {
	case "local":
	case "gotrue":
		if c.Identity.SupabaseURL == "" || c.Identity.AnonKey == "" || c.Identity.ServiceRoleKey == "" {
			errs = append(errs, errors.New("SUPABASE_URL, SUPABASE_ANON_KEY and SUPABASE_SERVICE_ROLE_KEY are required for gotrue identity provider"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported IDENTITY_PROVIDER %q", c.Identity.Provider))
	}

	switch c.Mail.Provider {
	case "mock":
	case "resend":
		if c.Mail.ResendAPIKey == "" {
			errs = append(errs, errors.New("RESEND_API_KEY is required for resend mail provider"))
		}
	case "smtp":
		if c.Mail.SMTPHost == "" || c.Mail.SMTPUsername == "" || c.Mail.SMTPPassword == "" {
			errs = append(errs, errors.New("SMTP_HOST, SMTP_USERNAME and SMTP_PASSWORD are required for smtp mail provider"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported MAIL_PROVIDER %q", c.Mail.Provider))
	}

	if c.Hooks.CleanupRPCName != "" {
		if !IsSQLIdentifier(c.Hooks.CleanupRPCName) || !IsSQLIdentifier(c.Hooks.CleanupRPCParam) {
			errs = append(errs, errors.New("DB_DELETE_RPC_NAME and DB_DELETE_RPC_PARAM must be plain SQL identifiers"))
		}
	}

	if c.Throttle.RedisAddr != "" && (c.Throttle.Limit <= 0 || c.Throttle.Window <= 0) {
		errs = append(errs, errors.New("ISSUE_LIMIT and ISSUE_WINDOW must be positive when REDIS_ADDR is set"))
	}

	return errors.Join(errs...)
}

// ParseFromAddress accepts "addr@host" or "Display Name <addr@host>".
func ParseFromAddress(from string) (*mail.Address, error) {
	if strings.TrimSpace(from) == "" {
		return nil, errors.New("MAIL_FROM is required")
	}
	addr, err := mail.ParseAddress(from)
	if err != nil {
		return nil, fmt.Errorf("MAIL_FROM %q is not a valid address: %w", from, err)
	}
	return addr, nil
}
