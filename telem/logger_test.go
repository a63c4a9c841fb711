package telem

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerWritesToSinks(t *testing.T) {
	var sink bytes.Buffer
	log := NewLogger("cravewave", "test", "debug", &sink)

	log.Debug().Str("order_id", "o1").Msg("order placed")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(sink.Bytes(), &entry))
	assert.Equal(t, "cravewave", entry["service"])
	assert.Equal(t, "test", entry["env"])
	assert.Equal(t, "debug", entry["level"])
	assert.Equal(t, "o1", entry["order_id"])
	assert.Equal(t, "order placed", entry["message"])
}

func TestNewLoggerLevel(t *testing.T) {
	assert.Equal(t, zerolog.WarnLevel, NewLogger("s", "test", "WARN").GetLevel())
	assert.Equal(t, zerolog.InfoLevel, NewLogger("s", "test", "loud").GetLevel())
	assert.Equal(t, zerolog.InfoLevel, NewLogger("s", "test", "").GetLevel())
}
