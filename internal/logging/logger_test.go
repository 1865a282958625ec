package logging_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/njchilds90/mathgrade/internal/logging"
)

func TestNew_Levels(t *testing.T) {
	logger, err := logging.New(logging.DefaultConfig())
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))
	assert.True(t, logger.Core().Enabled(zapcore.InfoLevel))

	logger, err = logging.New(logging.DevelopmentConfig())
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))
}

func TestNew_BadLevel(t *testing.T) {
	cfg := logging.DefaultConfig()
	cfg.Level = "loud"
	_, err := logging.New(cfg)
	assert.Error(t, err)

	assert.NotNil(t, logging.NewOrNop(cfg))
}
