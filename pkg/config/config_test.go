package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/bitbattle")
	t.Setenv("JWT_SECRET", testSecret)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.Addr())
	assert.Equal(t, 10, cfg.DBMaxConns)
	assert.Equal(t, 15*time.Minute, cfg.AccessTokenExpiry)
	assert.Equal(t, 7*24*time.Hour, cfg.RefreshTokenExpiry)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORSOrigins)
	assert.False(t, cfg.AIProblemsEnabled)
	assert.Equal(t, "gpt-4o-mini", cfg.LLMModel)
	assert.Equal(t, 300*time.Second, cfg.AITick)
	assert.Equal(t, "bitbattle-sandbox:latest", cfg.SandboxImage)
	assert.Equal(t, 5*time.Minute, cfg.RoomIdleTTL)
}

func TestLoadRequiredKeys(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", testSecret)
	_, err := Load()
	require.ErrorContains(t, err, "DATABASE_URL")

	t.Setenv("DATABASE_URL", "postgres://localhost:5432/bitbattle")
	t.Setenv("JWT_SECRET", "")
	_, err = Load()
	require.ErrorContains(t, err, "JWT_SECRET")

	t.Setenv("JWT_SECRET", "short")
	_, err = Load()
	require.ErrorContains(t, err, "32 characters")
}

func TestLoadOverridesAndLists(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/bitbattle")
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("PORT", "4000")
	t.Setenv("CORS_ORIGINS", "https://a.example.com, https://b.example.com")
	t.Setenv("AI_POOL_HARD", "7")
	t.Setenv("LOG_JSON", "true")
	t.Setenv("ROOM_IDLE_MINUTES", "2")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 4000, cfg.Port)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORSOrigins)
	assert.Equal(t, 7, cfg.AIPoolFloor("hard"))
	assert.Equal(t, 10, cfg.AIPoolFloor("easy"))
	assert.True(t, cfg.LogJSON)
	assert.Equal(t, 2*time.Minute, cfg.RoomIdleTTL)
}
