package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix  = "LEDGER"
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	Env         string `envconfig:"APP_ENV" default:"dev"`
	HTTPPort    string `envconfig:"HTTP_PORT" default:"8080"`
	DatabaseURL string `envconfig:"DATABASE_URL"`
	Migrate     bool   `envconfig:"MIGRATE" default:"false"`

	RedisURL     string `envconfig:"REDIS_URL"`
	RedisChannel string `envconfig:"REDIS_CHANNEL" default:"ledger:changes"`

	JWTAccessSecret  string        `envconfig:"JWT_ACCESS_SECRET" default:"changeme-access"`
	JWTRefreshSecret string        `envconfig:"JWT_REFRESH_SECRET" default:"changeme-refresh"`
	JWTIssuer        string        `envconfig:"JWT_ISSUER" default:"bumdes-ledger"`
	AccessTTL        time.Duration `envconfig:"ACCESS_TTL" default:"15m"`
	RefreshTTL       time.Duration `envconfig:"REFRESH_TTL" default:"168h"`
	RateRPS          int           `envconfig:"RATE_RPS" default:"100"`

	// username:role:bcrypt-hash[:display name], comma separated
	Users       []string `envconfig:"USERS"`
	DevPassword string   `envconfig:"DEV_PASSWORD" default:"changeme"`

	OrgName            string `envconfig:"ORG_NAME" default:"BUMDESa Margajaya"`
	RecentLimit        int    `envconfig:"RECENT_LIMIT" default:"10"`
	PublicHistoryLimit int    `envconfig:"PUBLIC_HISTORY_LIMIT" default:"50"`
	Workers            int    `envconfig:"WORKERS" default:"4"`
	SeedOpeningBalance int64  `envconfig:"SEED_OPENING_BALANCE" default:"0"`
}

// Load reads .env when present, then the LEDGER_* environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("loading .env: %w", err)
	}
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) IsDev() bool  { return strings.EqualFold(c.Env, AppEnvDev) }
func (c Config) IsProd() bool { return strings.EqualFold(c.Env, AppEnvProd) }

func (c Config) Validate() error {
	if !c.IsDev() && !c.IsProd() {
		return fmt.Errorf("LEDGER_APP_ENV must be %q or %q, got %q", AppEnvDev, AppEnvProd, c.Env)
	}
	if c.IsProd() {
		if strings.HasPrefix(c.JWTAccessSecret, "changeme") || strings.HasPrefix(c.JWTRefreshSecret, "changeme") {
			return errors.New("jwt secrets must be set in prod")
		}
		if len(c.Users) == 0 {
			return errors.New("LEDGER_USERS must be set in prod")
		}
		if c.DatabaseURL == "" {
			return errors.New("LEDGER_DATABASE_URL must be set in prod")
		}
	}
	if c.AccessTTL <= 0 || c.RefreshTTL <= 0 {
		return errors.New("token ttls must be positive")
	}
	return nil
}
