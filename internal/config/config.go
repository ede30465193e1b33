package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Provider exposes configuration values to the rest of the application.
// Components depend on this interface rather than on *Config so tests can
// substitute a partial implementation.
type Provider interface {
	GetDBURL() string
	GetDBUser() string
	GetDBPass() string
	GetDBNs() string
	GetDBDb() string
	GetDBQueryTimeout() time.Duration
	GetDBExecuteTimeout() time.Duration

	GetPort() string
	GetAppBaseURL() string
	GetSessionSecret() string
	GetSessionDir() string

	GetEmailProvider() string
	GetEmailSender() string
	GetEmailAPIKey() string
	GetSMTPHost() string
	GetSMTPPort() string
	GetEmailUser() string
	GetEmailPass() string
	GetMailTimeout() time.Duration

	GetBcryptCost() int
	GetResetTokenTTL() time.Duration
}

// Config holds all configuration for the application.
type Config struct {
	DBUrl            string
	DBUser           string
	DBPass           string
	DBNs             string
	DBDb             string
	DBQueryTimeout   time.Duration
	DBExecuteTimeout time.Duration

	Port          string
	AppBaseURL    string
	SessionSecret string
	SessionDir    string

	EmailProvider string
	EmailSender   string
	EmailAPIKey   string
	SMTPHost      string
	SMTPPort      string
	EmailUser     string
	EmailPass     string
	MailTimeout   time.Duration

	BcryptCost    int
	ResetTokenTTL time.Duration
}

var _ Provider = (*Config)(nil)

// New loads configuration from the environment, reading a .env file first
// when one is present.
func New() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}
	return FromEnv()
}

// FromEnv builds a Config from the current process environment without
// touching any .env file.
func FromEnv() *Config {
	port := envOr("PORT", "8000")
	emailUser := os.Getenv("EMAIL_USER")

	return &Config{
		DBUrl:            os.Getenv("SURREAL_URL"),
		DBUser:           os.Getenv("SURREAL_USER"),
		DBPass:           os.Getenv("SURREAL_PASS"),
		DBNs:             os.Getenv("SURREAL_NS"),
		DBDb:             os.Getenv("SURREAL_DB"),
		DBQueryTimeout:   durationOr("DB_QUERY_TIMEOUT", 5*time.Second),
		DBExecuteTimeout: durationOr("DB_EXECUTE_TIMEOUT", 10*time.Second),

		Port:          port,
		AppBaseURL:    strings.TrimRight(envOr("APP_BASE_URL", "http://localhost:"+port), "/"),
		SessionSecret: os.Getenv("SESSION_SECRET"),
		SessionDir:    envOr("SESSION_DIR", os.TempDir()),

		EmailProvider: envOr("EMAIL_PROVIDER", "smtp"),
		EmailSender:   envOr("EMAIL_SENDER", emailUser),
		EmailAPIKey:   os.Getenv("EMAIL_API_KEY"),
		SMTPHost:      envOr("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:      envOr("SMTP_PORT", "587"),
		EmailUser:     emailUser,
		EmailPass:     os.Getenv("EMAIL_PASS"),
		MailTimeout:   durationOr("MAIL_TIMEOUT", 10*time.Second),

		BcryptCost:    intOr("BCRYPT_COST", 10),
		ResetTokenTTL: durationOr("RESET_TOKEN_TTL", time.Hour),
	}
}

// Validate reports every required setting that is missing.
func (c *Config) Validate() error {
	var errs []error
	if c.DBUrl == "" {
		errs = append(errs, errors.New("SURREAL_URL is not set"))
	}
	if c.DBNs == "" {
		errs = append(errs, errors.New("SURREAL_NS is not set"))
	}
	if c.DBDb == "" {
		errs = append(errs, errors.New("SURREAL_DB is not set"))
	}
	if c.SessionSecret == "" {
		errs = append(errs, errors.New("SESSION_SECRET is not set"))
	}
	if c.ResetTokenTTL <= 0 {
		errs = append(errs, fmt.Errorf("RESET_TOKEN_TTL must be positive, got %s", c.ResetTokenTTL))
	}
	return errors.Join(errs...)
}

func (c *Config) GetDBURL() string                   { return c.DBUrl }
func (c *Config) GetDBUser() string                  { return c.DBUser }
func (c *Config) GetDBPass() string                  { return c.DBPass }
func (c *Config) GetDBNs() string                    { return c.DBNs }
func (c *Config) GetDBDb() string                    { return c.DBDb }
func (c *Config) GetDBQueryTimeout() time.Duration   { return c.DBQueryTimeout }
func (c *Config) GetDBExecuteTimeout() time.Duration { return c.DBExecuteTimeout }
func (c *Config) GetPort() string                    { return c.Port }
func (c *Config) GetAppBaseURL() string              { return c.AppBaseURL }
func (c *Config) GetSessionSecret() string           { return c.SessionSecret }
func (c *Config) GetSessionDir() string              { return c.SessionDir }
func (c *Config) GetEmailProvider() string           { return c.EmailProvider }
func (c *Config) GetEmailSender() string             { return c.EmailSender }
func (c *Config) GetEmailAPIKey() string             { return c.EmailAPIKey }
func (c *Config) GetSMTPHost() string                { return c.SMTPHost }
func (c *Config) GetSMTPPort() string                { return c.SMTPPort }
func (c *Config) GetEmailUser() string               { return c.EmailUser }
func (c *Config) GetEmailPass() string               { return c.EmailPass }
func (c *Config) GetMailTimeout() time.Duration      { return c.MailTimeout }
func (c *Config) GetBcryptCost() int                 { return c.BcryptCost }
func (c *Config) GetResetTokenTTL() time.Duration    { return c.ResetTokenTTL }

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationOr(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("Invalid duration for %s (%q), using default %s", key, v, fallback)
		return fallback
	}
	return d
}

func intOr(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("Invalid integer for %s (%q), using default %d", key, v, fallback)
		return fallback
	}
	return n
}
