package orderbook

import (
	"github.com/google/btree"
	orderbookv1 "github.com/muhammadchandra19/orderbook/internal/domain/orderbook/v1"
)

// aggregate walks one index best-first and sums consecutive orders sharing a
// price into levels, stopping after depth levels.
func (ob *Orderbook) aggregate(index *btree.BTreeG[indexKey], depth int) []orderbookv1.PriceLevel {
	levels := make([]orderbookv1.PriceLevel, 0, max(0, min(depth, index.Len())))
	if depth <= 0 {
		return levels
	}

	index.Ascend(func(k indexKey) bool {
		quantity := ob.arena.get(k.slot).Quantity
		if n := len(levels); n > 0 && levels[n-1].Price == k.price {
			levels[n-1].Quantity += quantity
			return true
		}
		if len(levels) == depth {
			return false
		}
		levels = append(levels, orderbookv1.PriceLevel{Price: k.price, Quantity: quantity})
		return true
	})
	return levels
}

// Snapshot returns up to depth aggregated levels per side, best price first.
func (ob *Orderbook) Snapshot(depth int) (bids, asks []orderbookv1.PriceLevel) {
	return ob.aggregate(ob.bids, depth), ob.aggregate(ob.asks, depth)
}

// Order returns a copy of a live order.
func (ob *Orderbook) Order(id uint64) (orderbookv1.Order, bool) {
	h, ok := ob.lookup[id]
	if !ok {
		return orderbookv1.Order{}, false
	}
	return *ob.arena.get(h), true
}

// Orders returns copies of the live orders of one side in priority order.
func (ob *Orderbook) Orders(side orderbookv1.Side) []orderbookv1.Order {
	index := ob.index(side)
	orders := make([]orderbookv1.Order, 0, index.Len())
	index.Ascend(func(k indexKey) bool {
		orders = append(orders, *ob.arena.get(k.slot))
		return true
	})
	return orders
}

// BestBid returns the highest bid level.
func (ob *Orderbook) BestBid() (orderbookv1.PriceLevel, bool) {
	return first(ob.aggregate(ob.bids, 1))
}

// BestAsk returns the lowest ask level.
func (ob *Orderbook) BestAsk() (orderbookv1.PriceLevel, bool) {
	return first(ob.aggregate(ob.asks, 1))
}

// Spread returns best ask minus best bid when both sides are present.
func (ob *Orderbook) Spread() (float64, bool) {
	bid, okBid := ob.BestBid()
	ask, okAsk := ob.BestAsk()
	if !okBid || !okAsk {
		return 0, false
	}
	return ask.Price - bid.Price, true
}

// Len returns the number of live orders.
func (ob *Orderbook) Len() int {
	return len(ob.lookup)
}

func first(levels []orderbookv1.PriceLevel) (orderbookv1.PriceLevel, bool) {
	if len(levels) == 0 {
		return orderbookv1.PriceLevel{}, false
	}
	return levels[0], true
}
