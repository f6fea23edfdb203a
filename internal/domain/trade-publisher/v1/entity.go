package tradepublisherv1

import (
	"encoding/json"
	"time"

	orderbookv1 "github.com/muhammadchandra19/orderbook/internal/domain/orderbook/v1"
	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
)

// TradeEvent is the published form of an executed trade.
type TradeEvent struct {
	EventID     string          `json:"eventID"`
	Pair        string          `json:"pair"`
	Sequence    uint64          `json:"sequence"`
	BuyOrderID  uint64          `json:"buyOrderID"`
	SellOrderID uint64          `json:"sellOrderID"`
	Price       decimal.Decimal `json:"price"`
	Quantity    uint64          `json:"quantity"`
	Timestamp   time.Time       `json:"timestamp"`
}

// CreateFromTrade creates a trade event with a fresh ULID event id.
func CreateFromTrade(pair string, trade orderbookv1.Trade, ts time.Time) *TradeEvent {
	return &TradeEvent{
		EventID:     ulid.MustNew(ulid.Timestamp(ts), ulid.DefaultEntropy()).String(),
		Pair:        pair,
		Sequence:    trade.Sequence,
		BuyOrderID:  trade.BuyOrderID,
		SellOrderID: trade.SellOrderID,
		Price:       decimal.NewFromFloat(trade.Price),
		Quantity:    trade.Quantity,
		Timestamp:   ts.UTC(),
	}
}

// ToBytes converts the trade event to a byte array.
func (e *TradeEvent) ToBytes() ([]byte, error) {
	return json.Marshal(e)
}

// FromBytes converts a byte array to a trade event.
func FromBytes(data []byte) (*TradeEvent, error) {
	var event TradeEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, err
	}
	return &event, nil
}
