package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	base "github.com/thinkful-ei-bee/thingful/libs/config"
)

type DBConfig struct {
	URL      string
	Host     string
	Port     int
	Name     string
	User     string
	Password string
	SSLMode  string
}

// DSN prefers DATABASE_URL and otherwise assembles a postgres URL from parts.
func (c DBConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     c.Name,
		RawQuery: "sslmode=" + url.QueryEscape(c.SSLMode),
	}
	return u.String()
}

type Config struct {
	App           base.AppConfig
	JWTSecret     string
	JWTExpiry     time.Duration
	DB            DBConfig
	AutoMigrate   bool
	ShutdownGrace time.Duration
}

func Load() (*Config, error) {
	appCfg, err := base.Load(os.Getenv("THINGFUL_CONFIG"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		App:       *appCfg,
		JWTSecret: envString("THINGFUL_JWT_SECRET", ""),
		JWTExpiry: envDuration("THINGFUL_JWT_EXPIRY", 3*time.Hour),
		DB: DBConfig{
			URL:      envString("DATABASE_URL", ""),
			Host:     envString("POSTGRES_HOST", "localhost"),
			Port:     envInt("POSTGRES_PORT", 5432),
			Name:     envString("POSTGRES_DB", "thingful"),
			User:     envString("POSTGRES_USER", "thingful"),
			Password: envString("POSTGRES_PASSWORD", "thingful"),
			SSLMode:  envString("POSTGRES_SSLMODE", "disable"),
		},
		AutoMigrate:   envBool("THINGFUL_AUTO_MIGRATE", true),
		ShutdownGrace: envDuration("THINGFUL_SHUTDOWN_GRACE", 10*time.Second),
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("THINGFUL_JWT_SECRET must be set")
	}

	return cfg, nil
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
