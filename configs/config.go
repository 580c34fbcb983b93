package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

type R2 struct {
	AccountID  string `env:"R2_ACCOUNT_ID"`
	AccessKey  string `env:"R2_ACCESS_KEY"`
	SecretKey  string `env:"R2_SECRET_KEY"`
	BucketName string `env:"R2_BUCKET_NAME"`
	PublicURL  string `env:"R2_PUBLIC_URL"`
}

type Config struct {
	Port                 string        `env:"PORT"                   envDefault:"3000"`
	PostgresURI          string        `env:"POSTGRES_URI"`
	RedisURI             string        `env:"REDIS_URI"              envDefault:"localhost:6379"`
	CorsOrigin           string        `env:"CORS_ORIGIN"            envDefault:"*"`
	BodyLimitMB          int           `env:"BODY_LIMIT_MB"          envDefault:"10"`
	AccessTokenSecret    string        `env:"ACCESS_TOKEN_SECRET"`
	RefreshTokenSecret   string        `env:"REFRESH_TOKEN_SECRET"`
	AccessTokenExpiry    time.Duration `env:"ACCESS_TOKEN_EXPIRY"    envDefault:"15m"`
	RefreshTokenExpiry   time.Duration `env:"REFRESH_TOKEN_EXPIRY"   envDefault:"168h"`
	BcryptCost           int           `env:"BCRYPT_COST"            envDefault:"10"`
	AdminUsernames       []string      `env:"ADMIN_USERNAMES"        envSeparator:","`
	SessionSweepSchedule string        `env:"SESSION_SWEEP_SCHEDULE" envDefault:"@every 1h"`
	WorkerConcurrency    int           `env:"WORKER_CONCURRENCY"     envDefault:"5"`
	R2                   R2
}

const minBcryptCost = 10

var ErrMissingSecret = errors.New("ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET must be set")

func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		slog.Error("unable to parse environment", "error", err)
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if strings.TrimSpace(cfg.AccessTokenSecret) == "" || strings.TrimSpace(cfg.RefreshTokenSecret) == "" {
		return nil, ErrMissingSecret
	}
	cfg.normalize()
	return &cfg, nil
}

func (c *Config) normalize() {
	if c.BcryptCost < minBcryptCost {
		c.BcryptCost = minBcryptCost
	}
	if c.AccessTokenExpiry <= 0 {
		c.AccessTokenExpiry = 15 * time.Minute
	}
	if c.RefreshTokenExpiry <= 0 {
		c.RefreshTokenExpiry = 7 * 24 * time.Hour
	}
	if c.BodyLimitMB <= 0 {
		c.BodyLimitMB = 10
	}

	admins := make([]string, 0, len(c.AdminUsernames))
	for _, name := range c.AdminUsernames {
		if name = strings.ToLower(strings.TrimSpace(name)); name != "" {
			admins = append(admins, name)
		}
	}
	c.AdminUsernames = admins
}

// IsAdminUsername reports whether username is bootstrapped as an administrator.
func (c *Config) IsAdminUsername(username string) bool {
	for _, name := range c.AdminUsernames {
		if name == username {
			return true
		}
	}
	return false
}
