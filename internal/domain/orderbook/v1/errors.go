package orderbookv1

import "github.com/muhammadchandra19/orderbook/pkg/errors"

// Sentinel errors returned by the order book. Compare with errors.Is.
var (
	ErrOrderNotFound   = errors.NewErrorDetails("order not found", string(errors.OrderNotFoundError), "id")
	ErrDuplicateOrder  = errors.NewErrorDetails("order id is already live", string(errors.OrderDuplicateError), "id")
	ErrInvalidPrice    = errors.NewErrorDetails("price must be a positive finite number", string(errors.OrderInvalidPriceError), "price")
	ErrInvalidQuantity = errors.NewErrorDetails("quantity must be positive", string(errors.OrderInvalidQuantityError), "quantity")
	ErrInvalidSide     = errors.NewErrorDetails("side must be buy or sell", string(errors.OrderInvalidSideError), "side")
)
