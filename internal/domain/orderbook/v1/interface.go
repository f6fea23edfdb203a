package orderbookv1

// Orderbook defines a single-instrument limit order book with price-time priority.
// Implementations are not safe for concurrent use.
type Orderbook interface {
	Add(order Order) error
	Cancel(id uint64) bool
	Amend(id uint64, price float64, quantity uint64) (bool, error)
	Snapshot(depth int) (bids, asks []PriceLevel)

	Order(id uint64) (Order, bool)
	Orders(side Side) []Order
	BestBid() (PriceLevel, bool)
	BestAsk() (PriceLevel, bool)
	Spread() (float64, bool)
	Len() int
}

// TradeHandler receives every trade exactly once, in execution order.
// OnTrade runs inside the book operation and must not call back into the book.
type TradeHandler interface {
	OnTrade(trade Trade)
}

// TradeHandlerFunc adapts a function to TradeHandler.
type TradeHandlerFunc func(trade Trade)

// OnTrade calls f(trade).
func (f TradeHandlerFunc) OnTrade(trade Trade) {
	f(trade)
}

// Clock supplies arrival timestamps in nanoseconds.
type Clock interface {
	Now() uint64
}
