package orderbookv1

// Trade is one execution between the best bid and the best ask.
type Trade struct {
	BuyOrderID  uint64  `json:"buyOrderID"`
	SellOrderID uint64  `json:"sellOrderID"`
	Price       float64 `json:"price"`
	Quantity    uint64  `json:"quantity"`
	// Sequence numbers trades in execution order, starting at 1 for a fresh book.
	Sequence uint64 `json:"sequence"`
}

// Notional returns price times quantity.
func (t Trade) Notional() float64 {
	return t.Price * float64(t.Quantity)
}

// PriceLevel is the total resting quantity at one price on one side.
type PriceLevel struct {
	Price    float64 `json:"price"`
	Quantity uint64  `json:"quantity"`
}
