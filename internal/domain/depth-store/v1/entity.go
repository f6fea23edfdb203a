package depthstorev1

import (
	"time"

	orderbookv1 "github.com/muhammadchandra19/orderbook/internal/domain/orderbook/v1"
	"github.com/shopspring/decimal"
)

// Level is one aggregated price level. Price is serialized as an exact
// decimal string.
type Level struct {
	Price    decimal.Decimal `json:"price"`
	Quantity uint64          `json:"quantity"`
}

// DepthView is a point-in-time, depth-limited view of both sides of the book.
// It is a reporting artifact and is never loaded back into the book.
type DepthView struct {
	Pair       string    `json:"pair"`
	Depth      int       `json:"depth"`
	Bids       []Level   `json:"bids"`
	Asks       []Level   `json:"asks"`
	TradeCount int64     `json:"tradeCount"`
	Timestamp  time.Time `json:"timestamp"`
}

// NewDepthView converts aggregated book levels into a DepthView.
func NewDepthView(pair string, depth int, bids, asks []orderbookv1.PriceLevel, tradeCount int64, ts time.Time) *DepthView {
	return &DepthView{
		Pair:       pair,
		Depth:      depth,
		Bids:       toLevels(bids),
		Asks:       toLevels(asks),
		TradeCount: tradeCount,
		Timestamp:  ts.UTC(),
	}
}

func toLevels(levels []orderbookv1.PriceLevel) []Level {
	out := make([]Level, 0, len(levels))
	for _, l := range levels {
		out = append(out, Level{Price: decimal.NewFromFloat(l.Price), Quantity: l.Quantity})
	}
	return out
}

// BestBid returns the first bid level.
func (v *DepthView) BestBid() (Level, bool) {
	if len(v.Bids) == 0 {
		return Level{}, false
	}
	return v.Bids[0], true
}

// BestAsk returns the first ask level.
func (v *DepthView) BestAsk() (Level, bool) {
	if len(v.Asks) == 0 {
		return Level{}, false
	}
	return v.Asks[0], true
}

// Spread returns best ask minus best bid.
func (v *DepthView) Spread() (decimal.Decimal, bool) {
	bid, okBid := v.BestBid()
	ask, okAsk := v.BestAsk()
	if !okBid || !okAsk {
		return decimal.Zero, false
	}
	return ask.Price.Sub(bid.Price), true
}
