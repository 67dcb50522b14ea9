package logger_test

import (
	"testing"

	"krankenhaus-matrix/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew_Levels(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"info":    zapcore.InfoLevel,
		"warn":    zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"verbose": zapcore.InfoLevel,
	}
	for level, want := range cases {
		log, err := logger.New(level, "json", "krankenhaus-matrix")
		require.NoError(t, err)
		assert.True(t, log.Core().Enabled(want), "level=%s", level)
		if want > zapcore.DebugLevel {
			assert.False(t, log.Core().Enabled(want-1), "level=%s", level)
		}
	}
}

func TestNew_Console(t *testing.T) {
	log, err := logger.New("debug", "console", "")
	require.NoError(t, err)
	assert.True(t, log.Core().Enabled(zapcore.DebugLevel))
}
