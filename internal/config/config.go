package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Storage drivers.
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// Notifier backends.
const (
	NotifierSMTP = "smtp"
	NotifierLog  = "log"
)

// Config holds runtime configuration sourced from env vars.
type Config struct {
	Port          string `env:"PORT" envDefault:"8080"`
	StorageDriver string `env:"STORAGE_DRIVER" envDefault:"postgres"`
	DatabaseURL   string `env:"DATABASE_URL"`

	JWTSecret     string   `env:"JWT_SECRET,required,notEmpty"`
	JWTIssuer     string   `env:"JWT_ISSUER" envDefault:"cybersafe-auth"`
	JWTTTLMinutes int      `env:"JWT_TTL_MINUTES" envDefault:"60"`
	CORSOrigins   []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`

	PasswordHashAlgorithm string `env:"PASSWORD_HASH_ALGORITHM" envDefault:"bcrypt"`
	BcryptCost            int    `env:"BCRYPT_COST" envDefault:"10"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	Notifier        string        `env:"NOTIFIER" envDefault:"log"`
	NotifierTimeout time.Duration `env:"NOTIFIER_TIMEOUT" envDefault:"5s"`
	NotifierRetries uint64        `env:"NOTIFIER_RETRIES" envDefault:"2"`

	SMTP SMTP `envPrefix:"SMTP_"`
}

// SMTP describes the outgoing mail relay.
type SMTP struct {
	Host     string `env:"HOST"`
	Port     int    `env:"PORT" envDefault:"587"`
	Username string `env:"USERNAME"`
	Password string `env:"PASSWORD"`
	From     string `env:"FROM"`
}

// Load reads configuration from the environment and validates it.
func Load() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.normalize()
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// HTTPAddress returns the host:port pair for the HTTP server to bind to.
func (c Config) HTTPAddress() string {
	return fmt.Sprintf(":%s", c.Port)
}

// JWTTTL returns the lifetime of issued session tokens.
func (c Config) JWTTTL() time.Duration {
	if c.JWTTTLMinutes <= 0 {
		return 60 * time.Minute
	}
	return time.Duration(c.JWTTTLMinutes) * time.Minute
}

func (c *Config) normalize() {
	c.StorageDriver = strings.ToLower(strings.TrimSpace(c.StorageDriver))
	c.Notifier = strings.ToLower(strings.TrimSpace(c.Notifier))
	c.DatabaseURL = strings.TrimSpace(c.DatabaseURL)
	c.JWTSecret = strings.TrimSpace(c.JWTSecret)

	origins := make([]string, 0, len(c.CORSOrigins))
	for _, origin := range c.CORSOrigins {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c.CORSOrigins = origins
}

func (c Config) validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}

	switch c.StorageDriver {
	case StoragePostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required")
		}
	case StorageMemory:
	default:
		return fmt.Errorf("unsupported STORAGE_DRIVER %q", c.StorageDriver)
	}

	switch c.Notifier {
	case NotifierSMTP:
		if c.SMTP.Host == "" || c.SMTP.From == "" {
			return errors.New("SMTP_HOST and SMTP_FROM are required for the smtp notifier")
		}
	case NotifierLog:
	default:
		return fmt.Errorf("unsupported NOTIFIER %q", c.Notifier)
	}

	return nil
}
