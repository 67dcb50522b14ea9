package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig_Defaults(t *testing.T) {
	for _, key := range []string{"DB_NAME", "NATS_URL", "MATRIX_WORKER_TICK", "MATRIX_AUTO_REFRESH", "LOG_LEVEL"} {
		t.Setenv(key, "")
	}

	cfg := LoadConfig()

	assert.Equal(t, "krankenhaus_matrix", cfg.Database.Database)
	assert.Empty(t, cfg.NATS.URL)
	assert.Equal(t, 30*time.Second, cfg.Matrix.WorkerTick)
	assert.True(t, cfg.Matrix.AutoRefresh)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "System", cfg.Matrix.SystemUser)
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("NATS_URL", "nats://leitstelle:4222")
	t.Setenv("MATRIX_WORKER_TICK", "5s")
	t.Setenv("MATRIX_AUTO_REFRESH", "false")
	t.Setenv("ALLOWED_ORIGINS", " https://leitstelle.example , ,https://kh.example")

	cfg := LoadConfig()

	assert.Equal(t, "nats://leitstelle:4222", cfg.NATS.URL)
	assert.Equal(t, 5*time.Second, cfg.Matrix.WorkerTick)
	assert.False(t, cfg.Matrix.AutoRefresh)
	assert.Equal(t, []string{"https://leitstelle.example", "https://kh.example"}, cfg.CORS.AllowedOrigins)
}

func TestParseDuration_Fallback(t *testing.T) {
	assert.Equal(t, time.Minute, parseDuration("soon", time.Minute))
	assert.Equal(t, time.Minute, parseDuration("-5s", time.Minute))
	assert.Equal(t, 2*time.Hour, parseDuration("2h", time.Minute))
}

func TestParseOrigins_Empty(t *testing.T) {
	assert.Equal(t, []string{}, parseOrigins(""))
}
