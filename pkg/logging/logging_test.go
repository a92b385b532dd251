package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbbroberg/obsidian-dotfile-backup/pkg/paths"
)

func TestSetupLogger(t *testing.T) {
	tests := []struct {
		name      string
		verbosity int
		wantLevel zerolog.Level
	}{
		{"default warn level", 0, zerolog.WarnLevel},
		{"info level", 1, zerolog.InfoLevel},
		{"debug level", 2, zerolog.DebugLevel},
		{"trace level", 3, zerolog.TraceLevel},
		{"high verbosity defaults to trace", 5, zerolog.TraceLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stateDir := t.TempDir()
			t.Setenv(paths.EnvStateDir, stateDir)

			var console bytes.Buffer
			SetupLoggerWithOutput(tt.verbosity, &console)

			assert.Equal(t, tt.wantLevel, zerolog.GlobalLevel())

			_, err := os.Stat(filepath.Join(stateDir, paths.LogFileName))
			assert.NoError(t, err, "log file should be created")
		})
	}
}

func TestSetupLoggerWritesToConsoleAndFile(t *testing.T) {
	stateDir := t.TempDir()
	t.Setenv(paths.EnvStateDir, stateDir)

	var console bytes.Buffer
	SetupLoggerWithOutput(0, &console)

	log.Warn().Msg("cross-device link refused")

	assert.Contains(t, console.String(), "cross-device link refused")

	content, err := os.ReadFile(filepath.Join(stateDir, paths.LogFileName))
	require.NoError(t, err)
	assert.Contains(t, string(content), "cross-device link refused")
}

func TestSetupLoggerUnwritableStateDir(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0644))
	// A regular file in place of the state directory makes MkdirAll fail.
	t.Setenv(paths.EnvStateDir, filepath.Join(blocker, "state"))

	var console bytes.Buffer
	SetupLoggerWithOutput(0, &console)

	assert.Contains(t, console.String(), "Failed to create log file")
}

func TestGetLogger(t *testing.T) {
	var buf bytes.Buffer
	log.Logger = zerolog.New(&buf)
	zerolog.SetGlobalLevel(zerolog.DebugLevel)

	logger := GetLogger("hardlink")
	logger.Info().Msg("hello")

	assert.Contains(t, buf.String(), `"component":"hardlink"`)
	assert.Contains(t, buf.String(), "hello")
}

func TestLogOperationStart(t *testing.T) {
	var buf bytes.Buffer
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	logger := zerolog.New(&buf)

	done := LogOperationStart(logger, "archive")
	done()

	output := buf.String()
	assert.Contains(t, output, "Operation started")
	assert.Contains(t, output, "Operation completed")
	assert.Contains(t, output, `"operation":"archive"`)
	assert.Contains(t, output, "duration")
}
