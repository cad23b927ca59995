package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/kanban/domain"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APP_ENV", "JWT_SECRET", "BOARD_PIPELINE", "DATABASE_URL",
		"ADMIN_EMAIL", "ADMIN_PASSWORD", "BOARD_TICK_INTERVAL", "SYNC_INTERVAL_SECONDS",
		"DB_HOST", "DB_PORT", "DB_NAME", "DB_USER", "DB_PASSWORD", "DB_SSLMODE",
		"SERVER_HOST", "SERVER_PORT",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "dev-secret", cfg.JWT.Secret)
	assert.Equal(t, domain.DefaultPipeline(), cfg.Board.Pipeline)
	assert.Equal(t, time.Minute, cfg.Board.TickInterval)
	assert.Equal(t, "postgres://kanban:@localhost:5432/kanban?sslmode=disable", cfg.Database.URL)
	assert.Equal(t, "0.0.0.0:8080", cfg.Address())
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("BOARD_PIPELINE", "backlog, in-progress ,done")
	t.Setenv("BOARD_TICK_INTERVAL", "90")
	t.Setenv("SYNC_INTERVAL_SECONDS", "2m")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/x")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, domain.Pipeline{"backlog", domain.ColumnInProgress, domain.ColumnDone}, cfg.Board.Pipeline)
	assert.Equal(t, 90*time.Second, cfg.Board.TickInterval)
	assert.Equal(t, 2*time.Minute, cfg.Buffer.SyncInterval)
	assert.Equal(t, "postgres://u:p@db:5432/x", cfg.Database.URL)
}

func TestLoadRejectsInvalidSettings(t *testing.T) {
	t.Run("production without secret", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("APP_ENV", "production")
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("single column pipeline", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("BOARD_PIPELINE", "todo")
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("pipeline without the done stage", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("BOARD_PIPELINE", "backlog,doing,finished")
		_, err := Load()
		assert.ErrorContains(t, err, "BOARD_PIPELINE")
	})

	t.Run("admin email without password", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("ADMIN_EMAIL", "admin@example.com")
		_, err := Load()
		assert.Error(t, err)
	})
}
