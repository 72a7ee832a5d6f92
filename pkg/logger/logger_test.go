package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigureJSON(t *testing.T) {
	var buf bytes.Buffer
	Configure("json", &buf)
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.TraceLevel) })

	log.Info().Str("batch_number", "B-1").Msg("assessed")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "assessed", line["message"])
	assert.Equal(t, "B-1", line["batch_number"])
	assert.Equal(t, "info", line["level"])
}

func TestSetLevel(t *testing.T) {
	var buf bytes.Buffer
	Configure("json", &buf)
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.TraceLevel) })

	SetLevel("warn")
	Log.Info().Msg("hidden")
	assert.Zero(t, buf.Len())

	Log.Warn().Msg("shown")
	assert.Contains(t, buf.String(), "shown")

	buf.Reset()
	SetLevel("nonsense")
	assert.Contains(t, buf.String(), "invalid log level")
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}
