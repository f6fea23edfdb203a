package redis

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/muhammadchandra19/orderbook/pkg/errors"
	"github.com/muhammadchandra19/orderbook/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Validate(t *testing.T) {
	testCases := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "default config", mutate: func(c *Config) {}},
		{name: "cluster mode", mutate: func(c *Config) { c.Mode = Cluster }},
		{name: "empty addrs", mutate: func(c *Config) { c.Addrs = nil }, wantErr: true},
		{name: "unknown mode", mutate: func(c *Config) { c.Mode = "sentinel" }, wantErr: true},
		{name: "zero connect timeout", mutate: func(c *Config) { c.ConnectTimeout = 0 }, wantErr: true},
		{name: "zero pool size", mutate: func(c *Config) { c.PoolSize = 0 }, wantErr: true},
		{name: "negative idle conns", mutate: func(c *Config) { c.MaxIdleConns = -1 }, wantErr: true},
		{name: "zero max lifetime", mutate: func(c *Config) { c.ConnMaxLifetime = 0 }, wantErr: true},
		{name: "zero pool timeout", mutate: func(c *Config) { c.PoolTimeout = 0 }, wantErr: true},
		{name: "negative retries", mutate: func(c *Config) { c.MaxRetries = -1 }, wantErr: true},
		{name: "negative backoff", mutate: func(c *Config) { c.MinRetryBackoff = -time.Second }, wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)

			err := cfg.Validate()
			if !tc.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.ErrorCodeEquals(err, string(errors.RedisConfigError)))
		})
	}
}

func TestClient_ConnectRejectsInvalidConfig(t *testing.T) {
	t.Run("nil config", func(t *testing.T) {
		c := NewClient(logger.NewNopLogger(), nil)
		err := c.Connect(context.Background())
		assert.True(t, errors.ErrorCodeEquals(err, string(errors.RedisConfigError)))
	})

	t.Run("invalid config", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Addrs = nil
		c := NewClient(logger.NewNopLogger(), cfg)
		err := c.Connect(context.Background())
		var details *errors.ErrorDetails
		require.True(t, stderrors.As(err, &details))
		assert.Equal(t, "Redis addresses are empty", details.Message)
	})

	t.Run("disconnect before connect", func(t *testing.T) {
		c := NewClient(logger.NewNopLogger(), DefaultConfig())
		assert.NoError(t, c.Disconnect(context.Background()))
	})
}
