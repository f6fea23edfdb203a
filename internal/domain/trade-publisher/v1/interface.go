package tradepublisherv1

import (
	"context"

	orderbookv1 "github.com/muhammadchandra19/orderbook/internal/domain/orderbook/v1"
)

// Publisher delivers executed trades downstream.
//
//go:generate mockgen -source interface.go -destination=mock/interface_mock.go -package=tradepublisherv1_mock
type Publisher interface {
	// Publish is called once per trade, in execution order.
	Publish(ctx context.Context, trade orderbookv1.Trade) error
}
