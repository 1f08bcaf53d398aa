package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/aussiebroadwan/albumhub/pkg/jwtx"
)

var (
	ErrMissingSecret = errors.New("JWT_SECRET is required")
	ErrWeakSecret    = fmt.Errorf("JWT_SECRET must be at least %d bytes", jwtx.MinSecretLength)
)

type Config struct {
	// JWTSecret is the HS256 key; at least 32 bytes.
	JWTSecret  string        `env:"JWT_SECRET"`
	Issuer     string        `env:"JWT_ISSUER" envDefault:"albumhub"`
	AccessTTL  time.Duration `env:"JWT_ACCESS_TTL" envDefault:"5m"`
	RefreshTTL time.Duration `env:"JWT_REFRESH_TTL" envDefault:"168h"`

	// Per-user token bucket: capacity requests every refill period.
	RateLimitCapacity     int           `env:"RATE_LIMIT_CAPACITY" envDefault:"10"`
	RateLimitRefillPeriod time.Duration `env:"RATE_LIMIT_REFILL_PERIOD" envDefault:"1m"`

	DatabaseFile string `env:"DATABASE_FILE" envDefault:"albumhub.db"`
	PepperFile   string `env:"PEPPER_FILE" envDefault:"pepper"` // created on first start if missing

	// Admin seed, applied only while the user table is empty. An empty
	// password is generated and logged once.
	AdminUsername string `env:"ADMIN_USERNAME"`
	AdminPassword string `env:"ADMIN_PASSWORD"`
	AdminEmail    string `env:"ADMIN_EMAIL"`

	Env                  string        `env:"ENV" envDefault:"dev"`
	LogLevel             string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat            string        `env:"LOG_FORMAT" envDefault:"json"`
	Port                 int           `env:"PORT" envDefault:"8080"`
	ShutdownGracePeriod  time.Duration `env:"SHUTDOWN_GRACE_PERIOD" envDefault:"10s"`
	HousekeepingInterval time.Duration `env:"HOUSEKEEPING_INTERVAL" envDefault:"1h"`
}

// LoadConfig reads a .env file if one exists, then the environment.
func LoadConfig() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch {
	case c.JWTSecret == "":
		return ErrMissingSecret
	case len(c.JWTSecret) < jwtx.MinSecretLength:
		return ErrWeakSecret
	case c.AccessTTL <= 0:
		return errors.New("JWT_ACCESS_TTL must be positive")
	case c.RefreshTTL <= 0:
		return errors.New("JWT_REFRESH_TTL must be positive")
	case c.RateLimitCapacity <= 0:
		return errors.New("RATE_LIMIT_CAPACITY must be positive")
	case c.RateLimitRefillPeriod <= 0:
		return errors.New("RATE_LIMIT_REFILL_PERIOD must be positive")
	case c.Port <= 0 || c.Port > 65535:
		return fmt.Errorf("PORT %d out of range", c.Port)
	}
	return nil
}
