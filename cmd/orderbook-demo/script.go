package main

import (
	"context"

	"github.com/muhammadchandra19/orderbook/internal/app/engine"
	orderbookv1 "github.com/muhammadchandra19/orderbook/internal/domain/orderbook/v1"
	"github.com/muhammadchandra19/orderbook/pkg/logger"
)

type step struct {
	name string
	run  func(ctx context.Context, e *engine.Engine) error
}

func add(id uint64, side orderbookv1.Side, price float64, quantity uint64) func(context.Context, *engine.Engine) error {
	return func(ctx context.Context, e *engine.Engine) error {
		_, err := e.PlaceOrder(ctx, orderbookv1.NewOrder(id, side, price, quantity, 0))
		return err
	}
}

func sequence(fns ...func(context.Context, *engine.Engine) error) func(context.Context, *engine.Engine) error {
	return func(ctx context.Context, e *engine.Engine) error {
		for _, fn := range fns {
			if err := fn(ctx, e); err != nil {
				return err
			}
		}
		return nil
	}
}

// demoScript adds a resting book, amends, cancels, adds more liquidity and
// finally sends a marketable sell through the bids.
func demoScript() []step {
	return []step{
		{
			name: "Adding orders",
			run: sequence(
				add(1, orderbookv1.Buy, 101.0, 100),
				add(2, orderbookv1.Buy, 100.0, 50),
				add(3, orderbookv1.Sell, 102.0, 70),
				add(4, orderbookv1.Sell, 103.0, 30),
				add(5, orderbookv1.Buy, 101.0, 150),
			),
		},
		{
			name: "Amending order #2 (quantity 200)",
			run: func(ctx context.Context, e *engine.Engine) error {
				_, _, err := e.AmendOrder(ctx, 2, 100.0, 200)
				return err
			},
		},
		{
			name: "Canceling order #3",
			run: func(ctx context.Context, e *engine.Engine) error {
				e.CancelOrder(ctx, 3)
				return nil
			},
		},
		{
			name: "Adding more orders",
			run: sequence(
				add(6, orderbookv1.Buy, 99.0, 80),
				add(7, orderbookv1.Sell, 104.0, 20),
				add(8, orderbookv1.Sell, 102.0, 10),
			),
		},
		{
			name: "Selling through the bids",
			run:  add(9, orderbookv1.Sell, 100.0, 300),
		},
	}
}

// runScript executes the steps and logs the book after each one.
func runScript(ctx context.Context, e *engine.Engine, steps []step, depth int, log *logger.Logger) error {
	for _, s := range steps {
		if err := s.run(ctx, e); err != nil {
			log.ErrorContext(ctx, err, logger.Field{Key: "step", Value: s.name})
			return err
		}

		bids, asks := e.Snapshot(depth)
		log.InfoContext(ctx, s.name,
			logger.Field{Key: "bids", Value: bids},
			logger.Field{Key: "asks", Value: asks},
			logger.Field{Key: "totalTrades", Value: e.GetTotalTrades()},
		)
	}
	return nil
}
