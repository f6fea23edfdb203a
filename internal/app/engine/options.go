package engine

import (
	"time"

	"github.com/muhammadchandra19/orderbook/pkg/config"
)

// Options represents configuration options for the Engine.
type Options struct {
	SnapshotInterval time.Duration
	SnapshotDepth    int
	TradeBuffer      int
}

// DefaultEngineOptions returns the default engine options.
func DefaultEngineOptions() *Options {
	return &Options{
		SnapshotInterval: 5 * time.Second,
		SnapshotDepth:    10,
		TradeBuffer:      1024,
	}
}

// OptionsFromConfig builds Options from the engine config, keeping defaults
// for unset values.
func OptionsFromConfig(cfg config.EngineConfig) *Options {
	opts := DefaultEngineOptions()
	if cfg.SnapshotInterval > 0 {
		opts.SnapshotInterval = cfg.SnapshotInterval
	}
	if cfg.SnapshotDepth > 0 {
		opts.SnapshotDepth = cfg.SnapshotDepth
	}
	if cfg.TradeBuffer > 0 {
		opts.TradeBuffer = cfg.TradeBuffer
	}
	return opts
}
