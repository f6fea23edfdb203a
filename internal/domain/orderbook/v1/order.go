package orderbookv1

import (
	"math"

	"github.com/muhammadchandra19/orderbook/pkg/errors"
)

// Side is the side of the book an order rests on.
type Side uint8

const (
	// Buy is a bid.
	Buy Side = iota + 1
	// Sell is an ask.
	Sell
)

func (s Side) String() string {
	switch s {
	case Buy:
		return "buy"
	case Sell:
		return "sell"
	default:
		return "unknown"
	}
}

// Valid reports whether s is Buy or Sell.
func (s Side) Valid() bool {
	return s == Buy || s == Sell
}

// Order represents a single limit order in the order book.
type Order struct {
	ID        uint64  `json:"id"`
	Side      Side    `json:"side"`
	Price     float64 `json:"price"`
	Quantity  uint64  `json:"quantity"` // remaining, never 0 while live
	Timestamp uint64  `json:"timestamp"`
}

// NewOrder creates a new order with the given parameters.
func NewOrder(id uint64, side Side, price float64, quantity, timestamp uint64) Order {
	return Order{
		ID:        id,
		Side:      side,
		Price:     price,
		Quantity:  quantity,
		Timestamp: timestamp,
	}
}

// IsBid checks if the order is a bid (buy) order.
func (o Order) IsBid() bool {
	return o.Side == Buy
}

// IsAsk checks if the order is an ask (sell) order.
func (o Order) IsAsk() bool {
	return o.Side == Sell
}

// Validate checks the side, price and quantity of an order before it enters the book.
func (o Order) Validate() error {
	var details []*errors.ErrorDetails
	if !o.Side.Valid() {
		details = append(details, ErrInvalidSide.WithObject(o.ID))
	}
	details = append(details, checkPriceQuantity(o.ID, o.Price, o.Quantity)...)

	if len(details) == 0 {
		return nil
	}
	return errors.NewBaseError(details...)
}

// ValidateAmend checks the new price and quantity of an amend request.
func ValidateAmend(id uint64, price float64, quantity uint64) error {
	details := checkPriceQuantity(id, price, quantity)
	if len(details) == 0 {
		return nil
	}
	return errors.NewBaseError(details...)
}

func checkPriceQuantity(id uint64, price float64, quantity uint64) []*errors.ErrorDetails {
	var details []*errors.ErrorDetails
	if !(price > 0) || math.IsInf(price, 0) {
		details = append(details, ErrInvalidPrice.WithObject(id))
	}
	if quantity == 0 {
		details = append(details, ErrInvalidQuantity.WithObject(id))
	}
	return details
}
