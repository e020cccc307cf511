package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithWriter_JSON(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewWithWriter(&buf, "INFO", false)
	require.NoError(t, err)

	log.Debug().Msg("hidden")
	log.Info().Str("engine", "google").Msg("dispatched")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "dispatched", line["message"])
	assert.Equal(t, "google", line["engine"])
	assert.Equal(t, "simtran", line["service"])
}

func TestNewWithWriter_Console(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewWithWriter(&buf, "debug", true)
	require.NoError(t, err)

	log.Debug().Msg("hello")
	assert.Contains(t, buf.String(), "hello")
	assert.False(t, json.Valid(buf.Bytes()))
}

func TestNewWithWriter_BadLevel(t *testing.T) {
	_, err := NewWithWriter(&bytes.Buffer{}, "loud", false)
	assert.Error(t, err)
}
