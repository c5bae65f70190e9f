package config

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 0, cfg.HistoryLimit)
	assert.Equal(t, slog.LevelInfo, cfg.SlogLevel())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("HISTORY_LIMIT", "50")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("ALLOWED_ORIGINS", "https://easel.example, http://localhost:5173 ,")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, 50, cfg.HistoryLimit)
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
	assert.Equal(t, []string{"https://easel.example", "http://localhost:5173"}, cfg.Origins())
	assert.Equal(t, []string{"easel.example", "localhost:5173"}, cfg.OriginPatterns())
}

func TestLoadRejectsNegativeHistory(t *testing.T) {
	t.Setenv("HISTORY_LIMIT", "-1")
	_, err := Load()
	assert.Error(t, err)
}
