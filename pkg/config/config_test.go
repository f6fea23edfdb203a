package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/muhammadchandra19/orderbook/pkg/redis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	var cfg Config
	require.NoError(t, Load(&cfg))

	assert.Equal(t, "BTC-USD", cfg.Pair)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 5*time.Second, cfg.Engine.SnapshotInterval)
	assert.Equal(t, 10, cfg.Engine.SnapshotDepth)
	assert.Equal(t, 1024, cfg.Engine.TradeBuffer)
	assert.False(t, cfg.Kafka.Enabled)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, redis.Standalone, cfg.Redis.Mode)
	assert.Equal(t, "orderbook:", cfg.Redis.PrefixKey)
	assert.NoError(t, cfg.Redis.Validate())
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("PAIR", "ETH-USD")
	t.Setenv("ENGINE_SNAPSHOT_DEPTH", "3")
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("REDIS_ADDRS", "r1:6379")
	t.Setenv("REDIS_MODE", "cluster")

	var cfg Config
	require.NoError(t, Load(&cfg))

	assert.Equal(t, "ETH-USD", cfg.Pair)
	assert.Equal(t, 3, cfg.Engine.SnapshotDepth)
	assert.True(t, cfg.Kafka.Enabled)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, []string{"r1:6379"}, cfg.Redis.Addrs)
	assert.Equal(t, redis.Cluster, cfg.Redis.Mode)
}

func TestLoad_DotEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("LOG_LEVEL=debug\nKAFKA_TOPIC=fills\n"), 0o600))
	t.Cleanup(func() {
		os.Unsetenv("LOG_LEVEL")
		os.Unsetenv("KAFKA_TOPIC")
	})

	var cfg Config
	require.NoError(t, Load(&cfg, path))

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "fills", cfg.Kafka.Topic)
}

func TestLoad_MissingDotEnvFile(t *testing.T) {
	var cfg Config
	assert.Error(t, Load(&cfg, filepath.Join(t.TempDir(), "missing.env")))
}
