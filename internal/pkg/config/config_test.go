package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("defaults with required secrets", func(t *testing.T) {
		t.Setenv("POSTGRES_PASSWORD", "pgpass")
		t.Setenv("JWT_SECRET_KEY", "secret")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "localhost", cfg.Repositories.Postgres.Host)
		assert.Equal(t, "nopaper", cfg.Repositories.Postgres.DB)
		assert.Equal(t, 24*time.Hour, cfg.JWT.AccessTokenTTL)
		assert.Equal(t, "nopaper", cfg.JWT.Issuer)
		assert.Equal(t, "shop@upi", cfg.UPI.PayeeVPA)
		assert.Equal(t, 587, cfg.SMTP.Port)
		assert.Equal(t, "8000", cfg.ServerPort)
	})

	t.Run("missing postgres password", func(t *testing.T) {
		t.Setenv("POSTGRES_PASSWORD", "")
		t.Setenv("JWT_SECRET_KEY", "secret")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "POSTGRES_PASSWORD")
	})

	t.Run("missing jwt secret", func(t *testing.T) {
		t.Setenv("POSTGRES_PASSWORD", "pgpass")
		t.Setenv("JWT_SECRET_KEY", "")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "JWT_SECRET_KEY")
	})

	t.Run("environment overrides", func(t *testing.T) {
		t.Setenv("POSTGRES_PASSWORD", "pgpass")
		t.Setenv("JWT_SECRET_KEY", "secret")
		t.Setenv("JWT_ACCESS_TTL", "2h")
		t.Setenv("UPI_PAYEE_VPA", "books@okbank")
		t.Setenv("SMTP_PORT", "2525")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, 2*time.Hour, cfg.JWT.AccessTokenTTL)
		assert.Equal(t, "books@okbank", cfg.UPI.PayeeVPA)
		assert.Equal(t, 2525, cfg.SMTP.Port)
	})

	t.Run("bad numeric override falls back to default", func(t *testing.T) {
		t.Setenv("POSTGRES_PASSWORD", "pgpass")
		t.Setenv("JWT_SECRET_KEY", "secret")
		t.Setenv("SMTP_PORT", "not-a-number")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, 587, cfg.SMTP.Port)
	})
}
