package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Port     int           `env:"TEST_LOADER_PORT" envDefault:"8080"`
	Host     string        `env:"TEST_LOADER_HOST" envDefault:"localhost"`
	Brokers  []string      `env:"TEST_LOADER_BROKERS" envDefault:"localhost:9092" envSeparator:","`
	Interval time.Duration `env:"TEST_LOADER_INTERVAL" envDefault:"30s"`
}

func TestLoad_Defaults(t *testing.T) {
	var cfg testConfig
	err := Load(&cfg)

	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "localhost", cfg.Host)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Brokers)
	assert.Equal(t, 30*time.Second, cfg.Interval)
}

func TestLoad_FromEnvVars(t *testing.T) {
	t.Setenv("TEST_LOADER_PORT", "9090")
	t.Setenv("TEST_LOADER_HOST", "0.0.0.0")
	t.Setenv("TEST_LOADER_BROKERS", "kafka-1:9092,kafka-2:9092")
	t.Setenv("TEST_LOADER_INTERVAL", "2m")

	var cfg testConfig
	err := Load(&cfg)

	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "0.0.0.0", cfg.Host)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Brokers)
	assert.Equal(t, 2*time.Minute, cfg.Interval)
}

type requiredConfig struct {
	Secret string `env:"TEST_LOADER_SECRET,required"`
}

func TestLoad_RequiredFieldMissing(t *testing.T) {
	var cfg requiredConfig
	err := Load(&cfg)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}

func TestLoad_RequiredFieldPresent(t *testing.T) {
	t.Setenv("TEST_LOADER_SECRET", "super-secret")

	var cfg requiredConfig
	err := Load(&cfg)

	require.NoError(t, err)
	assert.Equal(t, "super-secret", cfg.Secret)
}

func TestLoad_InvalidType(t *testing.T) {
	t.Setenv("TEST_LOADER_PORT", "not-a-number")

	var cfg testConfig
	err := Load(&cfg)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}
