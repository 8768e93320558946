package logger_test

import (
	"os"
	"path/filepath"
	"testing"

	logpkg "github.com/maxviazov/fusion-resource-service/internal/logger"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name        string
		config      *logpkg.LoggerConfig
		expectError bool
		wantLevel   zerolog.Level
	}{
		{
			name: "valid production environment",
			config: &logpkg.LoggerConfig{
				ServiceName:    "test-service",
				ServiceVersion: "1.0.0",
				Env:            "prod",
				Level:          "info",
				TimeField:      "timestamp",
				TimeFormat:     "unix",
				Fields:         map[string]interface{}{"key": "value"},
			},
			wantLevel: zerolog.InfoLevel,
		},
		{
			name: "invalid configuration - wrong env",
			config: &logpkg.LoggerConfig{
				ServiceName: "bad-service",
				Env:         "wrong-env",
				Level:       "debug",
			},
			expectError: true,
		},
		{
			name: "invalid log level",
			config: &logpkg.LoggerConfig{
				Env:   "prod",
				Level: "invalid-level",
			},
			expectError: true,
		},
		{
			name: "valid staging environment",
			config: &logpkg.LoggerConfig{
				Env:        "staging",
				Level:      "warn",
				TimeFormat: "rfc3339",
				Stacktrace: true,
			},
			wantLevel: zerolog.WarnLevel,
		},
		{
			name: "test environment on stderr",
			config: &logpkg.LoggerConfig{
				Env:          "test",
				Level:        "error",
				OutputTarget: "stderr",
				WithCaller:   true,
			},
			wantLevel: zerolog.ErrorLevel,
		},
		{
			name:      "nil config falls back to defaults",
			config:    nil,
			wantLevel: zerolog.InfoLevel,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			l, err := logpkg.New(test.config)
			if test.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, test.wantLevel, zerolog.GlobalLevel())
			assert.Equal(t, test.wantLevel, l.GetLevel())
		})
	}

	t.Run("dev debug tees into debug file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "logs", "debug.log")
		l, err := logpkg.New(&logpkg.LoggerConfig{Env: "dev", Level: "debug", DebugFile: path})
		require.NoError(t, err)
		l.Debug().Msg("hello")

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), "hello")
	})
}
