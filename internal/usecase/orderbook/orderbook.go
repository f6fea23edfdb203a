package orderbook

import (
	"fmt"

	"github.com/google/btree"
	orderbookv1 "github.com/muhammadchandra19/orderbook/internal/domain/orderbook/v1"
	"github.com/muhammadchandra19/orderbook/pkg/clock"
)

// Orderbook is a single-instrument limit order book. Every mutating call runs
// the crossing loop to quiescence before it returns. Not safe for concurrent use.
type Orderbook struct {
	clock   orderbookv1.Clock
	handler orderbookv1.TradeHandler

	arena  arena
	lookup map[uint64]handle // orderID -> slot
	bids   *btree.BTreeG[indexKey]
	asks   *btree.BTreeG[indexKey]

	tradeSeq uint64
}

var _ orderbookv1.Orderbook = (*Orderbook)(nil)

// NewOrderbook creates an empty book. clock mints arrivals for orders added
// without a timestamp and for price amendments; a nil clock uses wall time.
// handler receives trades; nil discards them.
func NewOrderbook(clk orderbookv1.Clock, handler orderbookv1.TradeHandler) *Orderbook {
	if clk == nil {
		clk = clock.NewMonotonic()
	}
	if handler == nil {
		handler = orderbookv1.TradeHandlerFunc(func(orderbookv1.Trade) {})
	}
	return &Orderbook{
		clock:   clk,
		handler: handler,
		lookup:  make(map[uint64]handle),
		bids:    newIndex(orderbookv1.Buy),
		asks:    newIndex(orderbookv1.Sell),
	}
}

// Add places a limit order and crosses the book. An order with a zero
// timestamp is stamped from the clock.
func (ob *Orderbook) Add(order orderbookv1.Order) error {
	if err := order.Validate(); err != nil {
		return err
	}
	if _, exists := ob.lookup[order.ID]; exists {
		return orderbookv1.ErrDuplicateOrder.WithObject(order.ID)
	}
	if order.Timestamp == 0 {
		order.Timestamp = ob.clock.Now()
	}

	ob.insert(order)
	ob.cross()
	return nil
}

// Cancel removes a live order. It returns false when id is not live.
func (ob *Orderbook) Cancel(id uint64) bool {
	h, ok := ob.lookup[id]
	if !ok {
		return false
	}
	ob.remove(h)
	return true
}

// Amend changes the price and quantity of a live order. A new price forfeits
// time priority: the order is re-inserted with a fresh arrival. The same
// price keeps the arrival and only replaces the quantity.
// It returns false, nil when id is not live.
func (ob *Orderbook) Amend(id uint64, price float64, quantity uint64) (bool, error) {
	if err := orderbookv1.ValidateAmend(id, price, quantity); err != nil {
		return false, err
	}
	h, ok := ob.lookup[id]
	if !ok {
		return false, nil
	}

	current := ob.arena.get(h)
	if current.Price != price {
		order := *current
		ob.remove(h)
		order.Price = price
		order.Quantity = quantity
		order.Timestamp = ob.nextArrival(order.Timestamp)
		ob.insert(order)
	} else {
		current.Quantity = quantity
	}

	ob.cross()
	return true, nil
}

// nextArrival returns a clock reading strictly greater than prev.
func (ob *Orderbook) nextArrival(prev uint64) uint64 {
	if ts := ob.clock.Now(); ts > prev {
		return ts
	}
	return prev + 1
}

func (ob *Orderbook) index(side orderbookv1.Side) *btree.BTreeG[indexKey] {
	if side == orderbookv1.Buy {
		return ob.bids
	}
	return ob.asks
}

func (ob *Orderbook) insert(order orderbookv1.Order) {
	h := ob.arena.alloc(order)
	ob.lookup[order.ID] = h
	if _, replaced := ob.index(order.Side).ReplaceOrInsert(keyOf(order, h)); replaced {
		panic(fmt.Sprintf("orderbook: order %d collides with a live %s index key", order.ID, order.Side))
	}
}

// remove drops the order at h from its index, the lookup table and the arena.
func (ob *Orderbook) remove(h handle) {
	order := *ob.arena.get(h)
	if _, ok := ob.index(order.Side).Delete(keyOf(order, h)); !ok {
		panic(fmt.Sprintf("orderbook: order %d is in the lookup table but not in the %s index", order.ID, order.Side))
	}
	delete(ob.lookup, order.ID)
	ob.arena.release(h)
}

// cross executes trades while the best bid is at or above the best ask.
// The trade price is always the ask price.
func (ob *Orderbook) cross() {
	for {
		bestBid, ok := ob.bids.Min()
		if !ok {
			return
		}
		bestAsk, ok := ob.asks.Min()
		if !ok {
			return
		}
		if bestBid.price < bestAsk.price {
			return
		}

		bid := ob.arena.get(bestBid.slot)
		ask := ob.arena.get(bestAsk.slot)
		quantity := min(bid.Quantity, ask.Quantity)
		bid.Quantity -= quantity
		ask.Quantity -= quantity

		ob.tradeSeq++
		trade := orderbookv1.Trade{
			BuyOrderID:  bid.ID,
			SellOrderID: ask.ID,
			Price:       ask.Price,
			Quantity:    quantity,
			Sequence:    ob.tradeSeq,
		}

		if bid.Quantity == 0 {
			ob.remove(bestBid.slot)
		}
		if ask.Quantity == 0 {
			ob.remove(bestAsk.slot)
		}

		ob.handler.OnTrade(trade)
	}
}
