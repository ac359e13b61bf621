// SPDX-License-Identifier: EPL-2.0

package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"none":  zerolog.Disabled,
		"error": zerolog.ErrorLevel,
		"warn":  zerolog.WarnLevel,
		"info":  zerolog.InfoLevel,
		"":      zerolog.InfoLevel,
		"debug": zerolog.DebugLevel,
	}
	for in, want := range tests {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLevel("verbose")
	assert.ErrorIs(t, err, ErrUnknownLevel)
}

func TestNew_FileWritesJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "voxswitch.log")

	log, closer, err := New(Config{Level: "warn", File: path})
	require.NoError(t, err)

	clog := Component(log, "controller")
	clog.Info().Msg("filtered out")
	clog.Warn().Str("owner", "music").Msg("busy")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "controller", entry["component"])
	assert.Equal(t, "music", entry["owner"])
	assert.Equal(t, "busy", entry["message"])
}

func TestNew_None(t *testing.T) {
	log, closer, err := New(Config{Level: "none"})
	require.NoError(t, err)
	assert.NotNil(t, closer)
	assert.Equal(t, zerolog.Disabled, log.GetLevel())
}

func TestNew_BadFile(t *testing.T) {
	_, closer, err := New(Config{Level: "info", File: filepath.Join(t.TempDir(), "missing", "x.log")})
	assert.Error(t, err)
	assert.NotNil(t, closer)
}

func TestNew_UnknownLevel(t *testing.T) {
	_, _, err := New(Config{Level: "loud"})
	assert.ErrorIs(t, err, ErrUnknownLevel)
}
