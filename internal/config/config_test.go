package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/mathgrade"
	"github.com/njchilds90/mathgrade/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
	assert.Equal(t, mathgrade.DefaultConfig(), cfg.Engine.Normalizer())
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("MATHGRADE_PORT", "9090")
	t.Setenv("MATHGRADE_TIMEOUT", "750ms")
	t.Setenv("MATHGRADE_NUMERIC_PROBE", "false")
	t.Setenv("MATHGRADE_RATE_LIMIT_RPS", "5")
	t.Setenv("MATHGRADE_LOG_LEVEL", "debug")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "0.0.0.0:9090", cfg.Addr())
	assert.Equal(t, 750*time.Millisecond, cfg.Engine.Timeout)
	assert.False(t, cfg.Engine.NumericProbe)
	assert.Equal(t, 5, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("MATHGRADE_CACHE_SIZE", "lots")

	_, err := config.Load()
	assert.Error(t, err)
}
