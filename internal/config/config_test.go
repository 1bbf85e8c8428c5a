package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ENVIRONMENT", "development")
	t.Setenv("DB_DRIVER", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "mapexe.com", cfg.Store.EmailDomain)
	assert.Equal(t, 24, cfg.JWT.AccessTokenTTL)
	assert.Equal(t, "admin", cfg.Seed.AdminUsername)
	assert.Contains(t, cfg.Uploads.AllowedExts, ".png")
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://mapexe.com, https://admin.mapexe.com")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("SEED_ON_START", "TRUE")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, []string{"https://mapexe.com", "https://admin.mapexe.com"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 2.5, cfg.RateLimit.GeneralPerSecond)
	assert.True(t, cfg.Seed.OnStart)
}

func TestValidate(t *testing.T) {
	cfg := &Config{
		Environment: "production",
		Database:    DatabaseConfig{Driver: "postgres", Password: "secret"},
		JWT:         JWTConfig{SecretKey: defaultJWTSecret},
	}
	assert.Error(t, cfg.Validate())

	cfg.JWT.SecretKey = "real-secret"
	assert.NoError(t, cfg.Validate())

	cfg.Database.Password = ""
	assert.Error(t, cfg.Validate())

	cfg.Database.URL = "postgres://u:p@db/mapexe"
	assert.NoError(t, cfg.Validate())

	cfg.Database.Driver = "mysql"
	assert.Error(t, cfg.Validate())
}

func TestDSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: "5432", User: "u", Password: "p", Database: "mapexe", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=mapexe sslmode=disable", d.DSN())

	d.URL = "postgres://x"
	assert.Equal(t, "postgres://x", d.DSN())
}
