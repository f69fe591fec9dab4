package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	AppPort string `env:"APP_PORT" envDefault:"5000"`

	Keycloak KeycloakConfig `envPrefix:"KEYCLOAK_"`

	// DatabaseDSN enables the admin audit trail when set.
	DatabaseDSN string `env:"DATABASE_DSN"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`

	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

type KeycloakConfig struct {
	URL          string `env:"URL" envDefault:"http://localhost:8080/"`
	Realm        string `env:"REALM" envDefault:"clara"`
	ClientID     string `env:"CLIENT_ID" envDefault:"clara-backend"`
	ClientSecret string `env:"CLIENT_SECRET"`

	// Admin operations are disabled unless both are set.
	AdminUser     string `env:"ADMIN_USER"`
	AdminPassword string `env:"ADMIN_PASSWORD"`
}

// Load reads an optional .env file from the working directory and then
// parses the process environment. Variables already set in the environment
// win over the file.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("config: load .env: %w", err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse env: %w", err)
	}

	return cfg, nil
}
