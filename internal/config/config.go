package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Tenant resolution modes.
const (
	TenantModeSingle = "single"
	TenantModeMulti  = "multi"
)

// Notification dispatch disciplines.
const (
	DispatchDetached = "detached"
	DispatchBlocking = "blocking"
)

// Email providers.
const (
	ProviderSMTP  = "smtp"
	ProviderBrevo = "brevo"
)

const defaultRecaptchaVerifyURL = "https://www.google.com/recaptcha/api/siteverify"

type Config struct {
	AppEnv             string
	AppAddr            string
	CORSAllowedOrigins []string
	ShutdownTimeout    time.Duration

	TenantMode  string // single | multi
	ClientsFile string

	RecaptchaSecret    string
	RecaptchaDisabled  bool
	RecaptchaVerifyURL string
	RecaptchaTimeout   time.Duration

	EmailProvider string // smtp | brevo
	SMTPHost      string
	SMTPPort      int
	SMTPUsername  string
	SMTPPassword  string
	MailFromName  string
	AdminEmail    string
	BrevoAPIURL   string

	DispatchMode    string // detached | blocking
	DispatchTimeout time.Duration
}

func Load() (Config, error) {
	c := Config{}

	c.AppEnv = getEnv("APP_ENV", "development")
	c.AppAddr = getEnv("APP_ADDR", ":"+getEnv("PORT", "3000"))
	c.CORSAllowedOrigins = splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*"))
	c.ShutdownTimeout = getDuration("SHUTDOWN_TIMEOUT", 10*time.Second)

	c.TenantMode = strings.ToLower(getEnv("TENANT_MODE", TenantModeSingle))
	c.ClientsFile = getEnv("CLIENTS_FILE", "clients.json")

	c.RecaptchaSecret = getEnv("RECAPTCHA_SECRET", "")
	c.RecaptchaDisabled = getBool("DISABLE_RECAPTCHA", false)
	c.RecaptchaVerifyURL = getEnv("RECAPTCHA_VERIFY_URL", defaultRecaptchaVerifyURL)
	c.RecaptchaTimeout = getDuration("RECAPTCHA_TIMEOUT", 5*time.Second)

	c.EmailProvider = strings.ToLower(getEnv("EMAIL_PROVIDER", ProviderSMTP))
	c.SMTPHost = getEnv("SMTP_HOST", "smtp.gmail.com")
	c.SMTPPort = getInt("SMTP_PORT", 587)
	c.SMTPUsername = getEnv("GMAIL_USER", "")
	c.SMTPPassword = getEnv("GMAIL_APP_PASS", "")
	c.MailFromName = getEnv("MAIL_FROM_NAME", "Formingo")
	c.AdminEmail = getEnv("ADMIN_EMAIL", c.SMTPUsername)
	c.BrevoAPIURL = getEnv("BREVO_API_URL", "https://api.brevo.com/v3/smtp/email")

	c.DispatchMode = strings.ToLower(getEnv("DISPATCH_MODE", DispatchDetached))
	c.DispatchTimeout = getDuration("DISPATCH_TIMEOUT", 15*time.Second)

	switch c.TenantMode {
	case TenantModeSingle, TenantModeMulti:
	default:
		return c, fmt.Errorf("invalid TENANT_MODE %q (want single or multi)", c.TenantMode)
	}
	switch c.DispatchMode {
	case DispatchDetached, DispatchBlocking:
	default:
		return c, fmt.Errorf("invalid DISPATCH_MODE %q (want detached or blocking)", c.DispatchMode)
	}
	switch c.EmailProvider {
	case ProviderSMTP, ProviderBrevo:
	default:
		return c, fmt.Errorf("invalid EMAIL_PROVIDER %q (want smtp or brevo)", c.EmailProvider)
	}

	return c, nil
}

// MultiTenant reports whether requests must carry a tenant credential.
func (c Config) MultiTenant() bool { return c.TenantMode == TenantModeMulti }

// Blocking reports whether notifications are part of the success contract.
func (c Config) Blocking() bool { return c.DispatchMode == DispatchBlocking }

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err == nil && d > 0 {
			return d
		}
	}
	return def
}

// getBool only treats a parseable value as set; DISABLE_RECAPTCHA=yes stays false.
func getBool(key string, def bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	res := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			res = append(res, p)
		}
	}
	if len(res) == 0 {
		return []string{"*"}
	}
	return res
}

func (c Config) String() string {
	return fmt.Sprintf("env=%s addr=%s tenants=%s dispatch=%s provider=%s recaptcha_disabled=%t",
		c.AppEnv, c.AppAddr, c.TenantMode, c.DispatchMode, c.EmailProvider, c.RecaptchaDisabled)
}
