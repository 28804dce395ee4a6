// Package config loads process-wide settings once at startup. The resulting
// Config is treated as immutable and passed by reference to the components
// that need it.
package config

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
)

// ErrMissingJWTSecret is returned when JWT_SECRET is not configured
var ErrMissingJWTSecret = errors.New("JWT_SECRET environment variable is required")

type Database struct {
	URL      string `env:"DATABASE_URL"`
	Host     string `env:"DB_HOST,default=localhost"`
	Port     string `env:"DB_PORT,default=5432"`
	User     string `env:"DB_USER,default=postgres"`
	Password string `env:"DB_PASSWORD,default=postgres"`
	Name     string `env:"DB_NAME,default=postgres"`
	SSLMode  string `env:"DB_SSLMODE,default=disable"`
}

// DSN returns DATABASE_URL when set, otherwise a postgres URL built from the DB_* parts
func (d Database) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     d.Host + ":" + d.Port,
		Path:     "/" + d.Name,
		RawQuery: "sslmode=" + d.SSLMode,
	}
	return u.String()
}

type Config struct {
	Port      string `env:"PORT,default=8080"`
	GinMode   string `env:"GIN_MODE,default=debug"`
	JWTSecret string `env:"JWT_SECRET"`

	// Semicolon separated
	CORSOrigins []string `env:"CORS_ALLOWED_ORIGINS,default=http://localhost:5173;http://127.0.0.1:5173"`

	LogLevel  string `env:"LOG_LEVEL,default=info"`
	LogFormat string `env:"LOG_FORMAT,default=text"` // text or json

	AuthRateLimitRPS   float64 `env:"AUTH_RATE_LIMIT_RPS,default=5"`
	AuthRateLimitBurst int     `env:"AUTH_RATE_LIMIT_BURST,default=10"`

	DB Database
}

// Load reads an optional dotenv file and decodes the environment into a Config
func Load(envFile string) (*Config, bool, error) {
	envLoaded := godotenv.Load(envFile) == nil

	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil {
		return nil, envLoaded, fmt.Errorf("failed to decode environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, envLoaded, err
	}
	return &cfg, envLoaded, nil
}

func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return ErrMissingJWTSecret
	}
	if c.AuthRateLimitRPS <= 0 || c.AuthRateLimitBurst <= 0 {
		return errors.New("auth rate limit values must be positive")
	}
	return nil
}

// Signing key used for access tokens
func (c *Config) SigningKey() []byte {
	return []byte(c.JWTSecret)
}
