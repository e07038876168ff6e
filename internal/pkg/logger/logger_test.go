package logger_test

import (
	"testing"

	"marketplace/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	t.Run("json_with_requested_level", func(t *testing.T) {
		l, err := logger.New(logger.Options{Level: "WARN", ServiceName: "marketplace"})

		require.NoError(t, err)
		assert.False(t, l.Core().Enabled(zapcore.InfoLevel))
		assert.True(t, l.Core().Enabled(zapcore.WarnLevel))
	})

	t.Run("unknown_level_falls_back_to_info", func(t *testing.T) {
		l, err := logger.New(logger.Options{Level: "chatty", Encoding: "console"})

		require.NoError(t, err)
		assert.True(t, l.Core().Enabled(zapcore.InfoLevel))
		assert.False(t, l.Core().Enabled(zapcore.DebugLevel))
	})
}

func TestOrNop(t *testing.T) {
	assert.NotNil(t, logger.OrNop(nil))
}
