package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ENV", "")
	t.Setenv("DATABASE_URI", "memory://")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("JWT_EXPIRY", "")
	t.Setenv("DB_AUTO_MIGRATE", "")
	t.Setenv("DB_TLS_SKIP_VERIFY", "")
	t.Setenv("PASSWORD_ALGORITHM", "")
	t.Setenv("PORT", "")
	t.Setenv("ARGON2_MEMORY_KB", "")
	t.Setenv("BCRYPT_COST", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, time.Hour, cfg.JWTExpiry)
	assert.True(t, cfg.DBAutoMigrate)
	assert.False(t, cfg.DBTLSSkipVerify)
	assert.Equal(t, "argon2id", cfg.Password.Algorithm)
	assert.Equal(t, uint32(64*1024), cfg.Password.Argon2MemoryKB)
	assert.Equal(t, 10, cfg.Password.BcryptCost)
}

func TestLoadProductionDefaults(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("DATABASE_URI", "postgres://db/app")
	t.Setenv("JWT_SECRET", "a-real-secret")
	t.Setenv("DB_AUTO_MIGRATE", "")
	t.Setenv("DB_TLS_SKIP_VERIFY", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.False(t, cfg.DBAutoMigrate)
	assert.True(t, cfg.DBTLSSkipVerify)
}

func TestLoadRejectsDevSecretInProduction(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("DATABASE_URI", "postgres://db/app")
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestLoadRequiresDatabaseURI(t *testing.T) {
	t.Setenv("ENV", "")
	t.Setenv("DATABASE_URI", "")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"bad expiry", "JWT_EXPIRY", "soon"},
		{"negative expiry", "JWT_EXPIRY", "-1h"},
		{"bad bool", "DB_AUTO_MIGRATE", "maybe"},
		{"bad algorithm", "PASSWORD_ALGORITHM", "md5"},
		{"parallelism overflow", "ARGON2_PARALLELISM", "300"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("ENV", "")
			t.Setenv("DATABASE_URI", "memory://")
			t.Setenv(tt.key, tt.val)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}
