package config

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/muhammadchandra19/orderbook/pkg/redis"
)

// MustLoad loads the configuration from environment variables and .env file.
func MustLoad[T any](cfg T) {
	_ = godotenv.Load() // .env is optional

	env.Must(cfg, env.Parse(cfg))
}

// Load loads the configuration from environment variables and the given .env files.
// A missing .env file is not an error.
func Load[T any](cfg T, files ...string) error {
	if len(files) > 0 {
		if err := godotenv.Load(files...); err != nil {
			return err
		}
	} else {
		_ = godotenv.Load()
	}

	return env.Parse(cfg)
}

// Config holds the configuration for the orderbook binary.
type Config struct {
	Pair     string       `env:"PAIR" envDefault:"BTC-USD"`
	LogLevel string       `env:"LOG_LEVEL" envDefault:"info"`
	HTTPAddr string       `env:"HTTP_ADDR" envDefault:":8080"`
	Engine   EngineConfig `envPrefix:"ENGINE_"`
	Kafka    KafkaConfig  `envPrefix:"KAFKA_"`
	Redis    RedisConfig  `envPrefix:"REDIS_"`
}

// EngineConfig holds the knobs of the engine wrapping the book.
type EngineConfig struct {
	SnapshotInterval time.Duration `env:"SNAPSHOT_INTERVAL" envDefault:"5s"`
	SnapshotDepth    int           `env:"SNAPSHOT_DEPTH" envDefault:"10"`
	TradeBuffer      int           `env:"TRADE_BUFFER" envDefault:"1024"`
}

// KafkaConfig holds the configuration for the trade event producer.
type KafkaConfig struct {
	Enabled bool     `env:"ENABLED" envDefault:"false"`
	Topic   string   `env:"TOPIC" envDefault:"trades"`
	Brokers []string `env:"BROKERS" envDefault:"localhost:9092"`
}

// RedisConfig holds the configuration for the depth store.
type RedisConfig struct {
	Enabled      bool `env:"ENABLED" envDefault:"false"`
	redis.Config      // connection settings, same REDIS_ prefix
}
