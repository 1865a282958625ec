package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/njchilds90/mathgrade"
)

// envPrefix is prepended to every variable name, e.g. MATHGRADE_PORT.
const envPrefix = "MATHGRADE"

// Config holds all application configuration.
type Config struct {
	Engine    EngineConfig
	Server    ServerConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
}

// EngineConfig holds the normalizer limits.
type EngineConfig struct {
	Timeout         time.Duration `envconfig:"TIMEOUT" default:"2s"`
	MaxInputLength  int           `envconfig:"MAX_INPUT_LENGTH" default:"2000"`
	MaxNesting      int           `envconfig:"MAX_NESTING" default:"64"`
	MaxExpandTerms  int           `envconfig:"MAX_EXPAND_TERMS" default:"512"`
	MaxExpandDegree int           `envconfig:"MAX_EXPAND_DEGREE" default:"12"`
	CacheSize       int           `envconfig:"CACHE_SIZE" default:"1024"`
	NumericProbe    bool          `envconfig:"NUMERIC_PROBE" default:"true"`
	ProbeSamples    int           `envconfig:"PROBE_SAMPLES" default:"8"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8080"`
	Host string `envconfig:"HOST" default:"0.0.0.0"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"50"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"100"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// Load loads configuration from MATHGRADE_* environment variables. Sections
// share the prefix, so the port is MATHGRADE_PORT, not MATHGRADE_SERVER_PORT.
func Load() (*Config, error) {
	var cfg Config
	for _, section := range []interface{}{&cfg.Engine, &cfg.Server, &cfg.Logging, &cfg.RateLimit} {
		if err := envconfig.Process(envPrefix, section); err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}
	return &cfg, nil
}

// Default returns default configuration.
func Default() *Config {
	engine := mathgrade.DefaultConfig()
	return &Config{
		Engine: EngineConfig{
			Timeout:         engine.Timeout,
			MaxInputLength:  engine.MaxInputLength,
			MaxNesting:      engine.MaxNesting,
			MaxExpandTerms:  engine.MaxExpandTerms,
			MaxExpandDegree: engine.MaxExpandDegree,
			CacheSize:       engine.CacheSize,
			NumericProbe:    engine.NumericProbe,
			ProbeSamples:    engine.ProbeSamples,
		},
		Server: ServerConfig{
			Port: "8080",
			Host: "0.0.0.0",
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 50,
			Burst:             100,
			Enabled:           true,
		},
	}
}

// Addr returns the listen address.
func (c *Config) Addr() string { return c.Server.Host + ":" + c.Server.Port }

// Normalizer converts the engine section to the normalizer's limits.
func (e EngineConfig) Normalizer() mathgrade.Config {
	return mathgrade.Config{
		Timeout:         e.Timeout,
		MaxInputLength:  e.MaxInputLength,
		MaxNesting:      e.MaxNesting,
		MaxExpandTerms:  e.MaxExpandTerms,
		MaxExpandDegree: e.MaxExpandDegree,
		CacheSize:       e.CacheSize,
		NumericProbe:    e.NumericProbe,
		ProbeSamples:    e.ProbeSamples,
	}
}
