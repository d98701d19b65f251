package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Erick01081/ComisionTecni/utils"
)

type Config struct {
	Port string

	DatabaseURL string

	JWTSecret    string
	JWTExpiry    time.Duration
	CookieSecure bool

	CORSOrigins []string
	AdminEmails []string

	LogLevel    string
	LogFormat   string
	SlowRequest time.Duration

	Location *time.Location

	Digest DigestConfig
}

// DigestConfig drives the daily summary sent to admins.
type DigestConfig struct {
	Schedule         string
	Recipients       []string
	TwilioAccountSID string
	TwilioAuthToken  string
	FromNumber       string
	WhatsAppNumber   string
}

// Enabled is true when there is someone to send the digest to.
func (d DigestConfig) Enabled() bool {
	return len(d.Recipients) > 0
}

func GetOrDefault(key string, defaultValue string) string {
	value, ok := os.LookupEnv(key)
	if !ok {
		return defaultValue
	}
	return value
}

// Load reads the configuration from the environment. A .env file, if any,
// must already have been loaded by the caller.
func Load() (Config, error) {
	var cfg Config
	var err error

	cfg.Port = GetOrDefault("PORT", "8080")
	cfg.DatabaseURL = os.Getenv("DB_URL")
	if cfg.DatabaseURL == "" {
		return cfg, errors.New("DB_URL not set")
	}

	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		return cfg, errors.New("JWT_SECRET not set")
	}
	expiryHours, err := strconv.Atoi(GetOrDefault("JWT_EXPIRY_HOURS", "24"))
	if err != nil || expiryHours <= 0 {
		return cfg, errors.New("JWT_EXPIRY_HOURS must be a positive integer")
	}
	cfg.JWTExpiry = time.Duration(expiryHours) * time.Hour

	if cfg.CookieSecure, err = strconv.ParseBool(GetOrDefault("COOKIE_SECURE", "true")); err != nil {
		return cfg, errors.New("COOKIE_SECURE must be a boolean")
	}

	cfg.CORSOrigins = utils.SplitList(GetOrDefault("CORS_ORIGINS", "http://localhost:3000"))
	for _, email := range utils.SplitList(os.Getenv("ADMIN_EMAILS")) {
		cfg.AdminEmails = append(cfg.AdminEmails, strings.ToLower(email))
	}

	cfg.LogLevel = strings.ToLower(GetOrDefault("LOG_LEVEL", "info"))
	cfg.LogFormat = strings.ToLower(GetOrDefault("LOG_FORMAT", "json"))
	slowMs, err := strconv.Atoi(GetOrDefault("SLOW_REQUEST_MS", "200"))
	if err != nil || slowMs <= 0 {
		return cfg, errors.New("SLOW_REQUEST_MS must be a positive integer")
	}
	cfg.SlowRequest = time.Duration(slowMs) * time.Millisecond

	if cfg.Location, err = time.LoadLocation(GetOrDefault("TIMEZONE", "America/Bogota")); err != nil {
		return cfg, errors.New("TIMEZONE is not a valid IANA zone")
	}

	cfg.Digest = DigestConfig{
		Schedule:         GetOrDefault("DIGEST_CRON", "0 7 * * *"),
		TwilioAccountSID: os.Getenv("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:  os.Getenv("TWILIO_AUTH_TOKEN"),
		FromNumber:       os.Getenv("TWILIO_FROM_NUMBER"),
		WhatsAppNumber:   os.Getenv("TWILIO_WHATSAPP_NUMBER"),
	}
	for _, raw := range utils.SplitList(os.Getenv("DIGEST_RECIPIENTS")) {
		phone := utils.NormalizePhone(raw)
		if !utils.ValidatePhone(phone) {
			return cfg, errors.New("DIGEST_RECIPIENTS contains an invalid phone number: " + raw)
		}
		cfg.Digest.Recipients = append(cfg.Digest.Recipients, phone)
	}

	return cfg, nil
}
