package orderbook

import (
	"github.com/google/btree"
	orderbookv1 "github.com/muhammadchandra19/orderbook/internal/domain/orderbook/v1"
)

const indexBTreeDegree = 32

// handle addresses a slot in the arena. Indices and the lookup table hold
// handles, only the arena holds orders.
type handle int

// indexKey is the composite sort key of a resting order. It is fixed at
// insertion time: price changes go through remove and insert.
type indexKey struct {
	price   float64
	arrival uint64
	id      uint64
	slot    handle
}

func keyOf(o orderbookv1.Order, h handle) indexKey {
	return indexKey{price: o.Price, arrival: o.Timestamp, id: o.ID, slot: h}
}

// bidLess orders bids by price descending, then arrival, then id.
func bidLess(a, b indexKey) bool {
	if a.price != b.price {
		return a.price > b.price
	}
	if a.arrival != b.arrival {
		return a.arrival < b.arrival
	}
	return a.id < b.id
}

// askLess orders asks by price ascending, then arrival, then id.
func askLess(a, b indexKey) bool {
	if a.price != b.price {
		return a.price < b.price
	}
	if a.arrival != b.arrival {
		return a.arrival < b.arrival
	}
	return a.id < b.id
}

func newIndex(side orderbookv1.Side) *btree.BTreeG[indexKey] {
	if side == orderbookv1.Buy {
		return btree.NewG(indexBTreeDegree, bidLess)
	}
	return btree.NewG(indexBTreeDegree, askLess)
}

type slot struct {
	order orderbookv1.Order
	live  bool
}

// arena owns every live order. Released slots are reused.
type arena struct {
	slots []slot
	free  []handle
}

func (a *arena) alloc(o orderbookv1.Order) handle {
	if n := len(a.free); n > 0 {
		h := a.free[n-1]
		a.free = a.free[:n-1]
		a.slots[h] = slot{order: o, live: true}
		return h
	}
	a.slots = append(a.slots, slot{order: o, live: true})
	return handle(len(a.slots) - 1)
}

func (a *arena) get(h handle) *orderbookv1.Order {
	s := &a.slots[h]
	if !s.live {
		panic("orderbook: access to released slot")
	}
	return &s.order
}

func (a *arena) release(h handle) {
	a.slots[h] = slot{}
	a.free = append(a.free, h)
}
