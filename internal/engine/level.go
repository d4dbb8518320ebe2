package engine

import (
	"container/list"

	"github.com/efreitasn/limitbook/internal/domain"
)

// priceLevel holds the resting orders at one price in arrival order,
// plus incrementally maintained aggregates. A level exists only while
// at least one order rests at its price.
type priceLevel struct {
	price         int64
	orders        *list.List // of *domain.Order, front = earliest arrival
	totalQuantity int64      // sum of remaining quantities
}

func newPriceLevel(price int64) *priceLevel {
	return &priceLevel{
		price:  price,
		orders: list.New(),
	}
}

// add appends an order at the back of the FIFO queue and returns its
// position handle for later O(1) removal.
func (l *priceLevel) add(o *domain.Order) *list.Element {
	l.totalQuantity += o.RemainingQuantity
	return l.orders.PushBack(o)
}

// remove erases an order via its position handle. The order's current
// remaining quantity leaves the aggregate with it.
func (l *priceLevel) remove(elem *list.Element) {
	o := elem.Value.(*domain.Order)
	l.totalQuantity -= o.RemainingQuantity
	l.orders.Remove(elem)
}

// reduce records qty traded out of this level without dequeuing.
func (l *priceLevel) reduce(qty int64) {
	l.totalQuantity -= qty
}

// front returns the earliest-arrived resting order, or nil when the
// queue is empty.
func (l *priceLevel) front() *list.Element {
	return l.orders.Front()
}

func (l *priceLevel) empty() bool {
	return l.orders.Len() == 0
}

// info builds the aggregate snapshot row for this level.
func (l *priceLevel) info() domain.LevelInfo {
	return domain.LevelInfo{
		Price:    l.price,
		Quantity: l.totalQuantity,
		Orders:   l.orders.Len(),
	}
}

// bidLevelLess orders the bid ladder by price descending, so Min()
// returns the best (highest) bid.
func bidLevelLess(a, b *priceLevel) bool {
	return a.price > b.price
}

// askLevelLess orders the ask ladder by price ascending, so Min()
// returns the best (lowest) ask.
func askLevelLess(a, b *priceLevel) bool {
	return a.price < b.price
}
