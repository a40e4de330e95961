package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/jackc/pgx/v5/tracelog"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	l := setup(&buf, "warn", false)
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	l.Info().Msg("dropped")
	l.Warn().Str("pin", "1").Msg("kept")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "kept", entry["message"])
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "1", entry["pin"])
}

func TestSetup_InvalidLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	setup(&buf, "loud", false)
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}

func TestPgxTraceLevel(t *testing.T) {
	tests := []struct {
		level    zerolog.Level
		expected tracelog.LogLevel
	}{
		{zerolog.TraceLevel, tracelog.LogLevelDebug},
		{zerolog.DebugLevel, tracelog.LogLevelDebug},
		{zerolog.InfoLevel, tracelog.LogLevelError},
		{zerolog.WarnLevel, tracelog.LogLevelError},
		{zerolog.ErrorLevel, tracelog.LogLevelError},
	}

	for _, tt := range tests {
		t.Run(tt.level.String(), func(t *testing.T) {
			assert.Equal(t, tt.expected, PgxTraceLevel(tt.level))
		})
	}
}
