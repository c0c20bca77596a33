package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/roomperms/internal/config"
)

func restoreGlobals(t *testing.T) {
	t.Helper()
	prevLogger := log.Logger
	prevLevel := zerolog.GlobalLevel()
	prevMarshaler := zerolog.ErrorStackMarshaler
	t.Cleanup(func() {
		log.Logger = prevLogger
		zerolog.SetGlobalLevel(prevLevel)
		zerolog.ErrorStackMarshaler = prevMarshaler //nolint:reassign
	})
}

func TestInitWritesToFile(t *testing.T) {
	restoreGlobals(t)
	file := filepath.Join(t.TempDir(), "nested", "roomperms.log")

	closer, err := Init(Options{Level: "debug", File: file, MaxSizeMB: 1})
	require.NoError(t, err)

	log.Debug().Str("room", "!abc:example.org").Msg("hello")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"room":"!abc:example.org"`)
	assert.Contains(t, string(data), `"message":"hello"`)
}

func TestInitConsoleWriter(t *testing.T) {
	restoreGlobals(t)
	var buf bytes.Buffer

	closer, err := Init(Options{Level: "info", Console: true, ConsoleOut: &buf})
	require.NoError(t, err)
	defer closer.Close()

	log.Debug().Msg("hidden")
	log.Info().Msg("shown")

	assert.Contains(t, buf.String(), "shown")
	assert.NotContains(t, buf.String(), "hidden")
}

func TestInitRejectsUnknownLevel(t *testing.T) {
	restoreGlobals(t)
	_, err := Init(Options{Level: "chatty"})
	assert.ErrorContains(t, err, "loglevel chatty is not supported")
}

func TestInitTraceEnablesStacks(t *testing.T) {
	restoreGlobals(t)
	zerolog.ErrorStackMarshaler = nil //nolint:reassign

	closer, err := Init(Options{Level: "trace"})
	require.NoError(t, err)
	defer closer.Close()

	assert.NotNil(t, zerolog.ErrorStackMarshaler)
	assert.Equal(t, zerolog.TraceLevel, zerolog.GlobalLevel())
}

func TestFromConfig(t *testing.T) {
	cfg := config.Log{Level: "warn", Dir: "/tmp/rp", File: "x.log", MaxBackups: 2}

	opts := FromConfig(cfg, true)
	assert.Equal(t, "/tmp/rp/x.log", opts.File)
	assert.Equal(t, "warn", opts.Level)
	assert.Equal(t, 2, opts.MaxBackups)
	assert.True(t, opts.Console)
}
