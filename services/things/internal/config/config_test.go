package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRequiresSecret(t *testing.T) {
	t.Setenv("THINGFUL_CONFIG", filepath.Join(t.TempDir(), "none.yaml"))
	t.Setenv("THINGFUL_JWT_SECRET", "")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("THINGFUL_CONFIG", filepath.Join(t.TempDir(), "none.yaml"))
	t.Setenv("THINGFUL_JWT_SECRET", "s3cret")
	t.Setenv("THINGFUL_JWT_EXPIRY", "15m")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("POSTGRES_HOST", "db")
	t.Setenv("POSTGRES_PORT", "6543")
	t.Setenv("POSTGRES_USER", "app")
	t.Setenv("POSTGRES_PASSWORD", "p@ss")
	t.Setenv("POSTGRES_DB", "things")
	t.Setenv("THINGFUL_AUTO_MIGRATE", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "s3cret", cfg.JWTSecret)
	assert.Equal(t, 15*time.Minute, cfg.JWTExpiry)
	assert.False(t, cfg.AutoMigrate)
	assert.Equal(t, "postgres://app:p%40ss@db:6543/things?sslmode=disable", cfg.DB.DSN())
}

func TestDSNPrefersURL(t *testing.T) {
	db := DBConfig{URL: "postgres://x@y/z", Host: "ignored"}
	assert.Equal(t, "postgres://x@y/z", db.DSN())
}
