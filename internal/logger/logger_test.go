package logger

import (
	"context"
	"log/slog"
	"testing"

	"github.com/marketplace-wallet-ledger/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	testCases := []struct {
		name              string
		logLevel          string
		expectedSlogLevel slog.Level
	}{
		{"DebugLevel", "debug", slog.LevelDebug},
		{"InfoLevel", "info", slog.LevelInfo},
		{"WarnLevel", "warn", slog.LevelWarn},
		{"ErrorLevel", "error", slog.LevelError},
		{"MixedCase", "WARN", slog.LevelWarn},
		{"DefaultToInfo", "unknown", slog.LevelInfo},
		{"EmptyToInfo", "", slog.LevelInfo},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := &config.Config{
				Logging: config.LoggingConfig{
					Level: tc.logLevel,
				},
			}

			logger := NewLogger(cfg)
			require.NotNil(t, logger)

			assert.True(t, logger.Enabled(context.Background(), tc.expectedSlogLevel),
				"Logger should be enabled for level "+tc.expectedSlogLevel.String())

			if tc.expectedSlogLevel > slog.LevelDebug {
				assert.False(t, logger.Enabled(context.Background(), slog.LevelDebug),
					"Logger should not emit below its configured level")
			}
		})
	}
}
