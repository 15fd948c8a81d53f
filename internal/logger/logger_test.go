package logger

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
		{"WARN", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"fatal", zerolog.FatalLevel},
		{"  Info  ", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		lvl, err := parseLevel(tt.input)
		require.NoError(t, err, "level %q", tt.input)
		assert.Equal(t, tt.want, lvl)
	}
}

func TestParseLevel_Unknown(t *testing.T) {
	_, err := parseLevel("verbose")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown log level")
}

func TestNew_DefaultsToInfoOnBadLevel(t *testing.T) {
	logger := New("not-a-level", false)
	assert.Equal(t, zerolog.InfoLevel, logger.GetLevel())
}
