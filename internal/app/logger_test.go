package app

import (
	"bytes"
	"encoding/json"
	"io"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adanyl0v/todo-reminders/internal/config"
)

func TestNewApplicationLogger_Levels(t *testing.T) {
	cases := []struct {
		env   string
		level zerolog.Level
	}{
		{env: config.EnvDev, level: zerolog.DebugLevel},
		{env: config.EnvProd, level: zerolog.InfoLevel},
		{env: config.EnvLocal, level: zerolog.TraceLevel},
	}
	for _, tc := range cases {
		t.Run(tc.env, func(t *testing.T) {
			logger, err := newApplicationLogger(newDefaultLogger(io.Discard), tc.env, io.Discard)
			require.NoError(t, err)
			assert.Equal(t, tc.level, logger.GetLevel())
		})
	}
}

func TestNewApplicationLogger_UnknownEnv(t *testing.T) {
	_, err := newApplicationLogger(newDefaultLogger(io.Discard), "staging", io.Discard)
	assert.ErrorContains(t, err, "unknown env: staging")
}

func TestNewApplicationLogger_ProdWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := newApplicationLogger(newDefaultLogger(io.Discard), config.EnvProd, &buf)
	require.NoError(t, err)

	logger.Debug().Msg("dropped")
	logger.Info().Msg("kept")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "kept", entry["message"])
	assert.Equal(t, config.EnvProd, entry["env"])
	assert.Equal(t, serviceName, entry["service"])
}

func TestNewApplicationLogger_LocalWritesConsole(t *testing.T) {
	var buf bytes.Buffer
	logger, err := newApplicationLogger(newDefaultLogger(io.Discard), config.EnvLocal, &buf)
	require.NoError(t, err)

	logger.Info().Msg("hello")
	assert.Contains(t, buf.String(), "hello")
	assert.Contains(t, buf.String(), "env=local")
	assert.NotContains(t, buf.String(), `"message"`)
}

func TestComponentLogger(t *testing.T) {
	var buf bytes.Buffer
	prev := globalLogger
	t.Cleanup(func() { globalLogger = prev })
	globalLogger = zerolog.New(&buf)

	logger := componentLogger("monitor")
	logger.Info().Msg("tick")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "monitor", entry["component"])
}
