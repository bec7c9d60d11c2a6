package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DB_DSN", "postgres://localhost/slotswap")
	t.Setenv("TELEGRAM_TOKEN", "123:abc")
}

func TestFromEnv_Defaults(t *testing.T) {
	setRequired(t)
	for _, key := range []string{"ENV", "LOG_LEVEL", "MIGRATIONS_DIR", "DB_TIMEOUT", "COMPENSATION_RETRIES", "COMPENSATION_BACKOFF", "AUDIT_INTERVAL"} {
		t.Setenv(key, "")
	}

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, ".", cfg.MigrationsDir)
	assert.Equal(t, 5*time.Second, cfg.DBTimeout)
	assert.Equal(t, uint64(5), cfg.CompensationRetries)
	assert.Equal(t, 50*time.Millisecond, cfg.CompensationBackoff)
	assert.Equal(t, 15*time.Minute, cfg.AuditInterval)
}

func TestFromEnv_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("ENV", "production")
	t.Setenv("DB_TIMEOUT", "2s")
	t.Setenv("COMPENSATION_RETRIES", "8")
	t.Setenv("COMPENSATION_BACKOFF", "100ms")
	t.Setenv("AUDIT_INTERVAL", "1m")

	cfg, err := FromEnv()
	require.NoError(t, err)

	swap := cfg.SwapConfig()
	assert.Equal(t, 2*time.Second, swap.OpTimeout)
	assert.Equal(t, uint64(8), swap.CompensationRetries)
	assert.Equal(t, 100*time.Millisecond, swap.CompensationBackoff)
	assert.NotZero(t, swap.CompensationTimeout)
	assert.Equal(t, time.Minute, cfg.AuditInterval)
}

func TestFromEnv_Errors(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"missing dsn", "DB_DSN", ""},
		{"missing token", "TELEGRAM_TOKEN", ""},
		{"bad timeout", "DB_TIMEOUT", "soon"},
		{"negative backoff", "COMPENSATION_BACKOFF", "-1s"},
		{"bad retries", "COMPENSATION_RETRIES", "-3"},
		{"zero audit interval", "AUDIT_INTERVAL", "0s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequired(t)
			t.Setenv(tt.key, tt.val)

			_, err := FromEnv()
			require.Error(t, err)
		})
	}
}
