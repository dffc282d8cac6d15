package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerProductionWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(&buf, "production", "warn", "visa-leads-api")

	log.Info().Msg("dropped")
	log.Warn().Str("lead_id", "1").Msg("kept")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "kept", line["message"])
	assert.Equal(t, "visa-leads-api", line["service"])
	assert.Equal(t, "1", line["lead_id"])
}

func TestNewLoggerBadLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(&buf, "production", "loud", "svc")

	log.Debug().Msg("hidden")
	assert.Empty(t, buf.String())

	log.Info().Msg("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestNewLoggerDevelopmentIsHumanReadable(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(&buf, "development", "info", "svc")
	log.Info().Msg("hello")

	assert.Contains(t, buf.String(), "hello")
	assert.False(t, json.Valid(bytes.TrimSpace(buf.Bytes())))
}
