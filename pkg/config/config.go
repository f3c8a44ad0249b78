package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "COEX"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	JWT           JWTConfig
	Uploads       UploadsConfig
	AuthRateLimit AuthRateLimitConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"COEX_APP_ENV" default:"dev"`
	Port         string `envconfig:"COEX_APP_PORT" default:"5001"`
	LogLevel     string `envconfig:"COEX_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"COEX_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// DBConfig points GORM at the in-memory SQLite database. The default DSN
// keeps every connection on the same shared in-memory store for the life
// of the process; no file is ever written.
type DBConfig struct {
	DSN string `envconfig:"COEX_DB_DSN" default:"file:coex?mode=memory&cache=shared"`
}

type JWTConfig struct {
	Secret            string `envconfig:"COEX_JWT_SECRET" default:"coex-pharmacy-jwt-secret"`
	Issuer            string `envconfig:"COEX_JWT_ISSUER" default:"coex"`
	ExpirationMinutes int    `envconfig:"COEX_JWT_EXPIRATION_MINUTES" default:"1440"`
}

type UploadsConfig struct {
	Dir         string `envconfig:"COEX_UPLOADS_DIR" default:"uploads"`
	MaxUploadMB int    `envconfig:"COEX_MAX_UPLOAD_MB" default:"5"`
}

// MaxUploadBytes returns the upload cap in bytes.
func (u UploadsConfig) MaxUploadBytes() int64 {
	if u.MaxUploadMB <= 0 {
		return 5 << 20
	}
	return int64(u.MaxUploadMB) << 20
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"COEX_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"COEX_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"COEX_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"COEX_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"COEX_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"COEX_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}
