package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsAndSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("PORT", "9090")

	cfg, envLoaded, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.False(t, envLoaded)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "localhost", cfg.DB.Host)
	assert.Equal(t, []string{"http://localhost:5173", "http://127.0.0.1:5173"}, cfg.CORSOrigins)
	assert.Equal(t, 10, cfg.AuthRateLimitBurst)
	assert.Equal(t, []byte("s3cret"), cfg.SigningKey())
}

func TestLoad_ReadsDotenvFile(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("JWT_SECRET=from-file\nDB_NAME=purchases\n"), 0o600))
	// godotenv never overrides variables that are already present
	t.Setenv("JWT_SECRET", "")
	require.NoError(t, os.Unsetenv("JWT_SECRET"))
	t.Setenv("DB_NAME", "")
	require.NoError(t, os.Unsetenv("DB_NAME"))

	cfg, envLoaded, err := Load(envFile)
	require.NoError(t, err)
	assert.True(t, envLoaded)
	assert.Equal(t, "from-file", cfg.JWTSecret)
	assert.Equal(t, "purchases", cfg.DB.Name)
}

func TestValidate_MissingSecret(t *testing.T) {
	cfg := &Config{AuthRateLimitRPS: 1, AuthRateLimitBurst: 1}
	assert.ErrorIs(t, cfg.Validate(), ErrMissingJWTSecret)
}

func TestDatabaseDSN(t *testing.T) {
	d := Database{Host: "db", Port: "5433", User: "app", Password: "p@ss", Name: "purchases", SSLMode: "require"}
	assert.Equal(t, "postgres://app:p%40ss@db:5433/purchases?sslmode=require", d.DSN())

	d.URL = "postgres://override"
	assert.Equal(t, "postgres://override", d.DSN())
}
