package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadBuildsDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("PSQL_HOST", "db")
	t.Setenv("PSQL_PORT", "6543")
	t.Setenv("PSQL_USER", "solifin")
	t.Setenv("PSQL_PASSWORD", "secret")
	t.Setenv("PSQL_DB_NAME", "pages")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example,")

	cfg := Load()
	assert.Equal(t, "postgres://solifin:secret@db:6543/pages?sslmode=disable", cfg.DatabaseURL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	assert.False(t, cfg.SMTP.Enabled())
}

func TestLoadPrefersDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://x@y/z")
	t.Setenv("SMTP_HOST", "smtp.example")
	t.Setenv("SMTP_FROM", "noreply@solifin.example")
	t.Setenv("ENVIRONMENT", "production")

	cfg := Load()
	assert.Equal(t, "postgres://x@y/z", cfg.DatabaseURL)
	assert.True(t, cfg.SMTP.Enabled())
	assert.True(t, cfg.IsProduction())
}
