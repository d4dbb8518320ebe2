package domain

import (
	"fmt"
	"time"
)

// Side indicates whether an order buys or sells.
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// Opposite returns the side an order of this side trades against.
func (s Side) Opposite() Side {
	if s == SideBuy {
		return SideSell
	}
	return SideBuy
}

// OrderType is the time-in-force variant of an order.
type OrderType string

const (
	OrderTypeGoodTillCancel OrderType = "good_till_cancel"
	OrderTypeFillAndKill    OrderType = "fill_and_kill"
	OrderTypeFillOrKill     OrderType = "fill_or_kill"
	OrderTypeMarket         OrderType = "market"
	OrderTypeGoodForDay     OrderType = "good_for_day"
)

// MarketPrice is the price carried by a market order before admission.
// The engine rewrites it to a real price when the order is accepted.
const MarketPrice int64 = -1

// Order is a single instruction submitted to the book. Prices are in
// cents. Once accepted, an Order is owned and mutated exclusively by
// the engine.
type Order struct {
	ID                uint64
	Side              Side
	Price             int64
	Type              OrderType
	InitialQuantity   int64
	RemainingQuantity int64
	CreatedAt         time.Time
}

// NewOrder creates a limit-style order (any type except market).
func NewOrder(id uint64, side Side, price, quantity int64, typ OrderType, createdAt time.Time) *Order {
	return &Order{
		ID:                id,
		Side:              side,
		Price:             price,
		Type:              typ,
		InitialQuantity:   quantity,
		RemainingQuantity: quantity,
		CreatedAt:         createdAt,
	}
}

// NewMarketOrder creates a market order. The price is the MarketPrice
// sentinel until the engine converts the order at admission.
func NewMarketOrder(id uint64, side Side, quantity int64, createdAt time.Time) *Order {
	return &Order{
		ID:                id,
		Side:              side,
		Price:             MarketPrice,
		Type:              OrderTypeMarket,
		InitialQuantity:   quantity,
		RemainingQuantity: quantity,
		CreatedAt:         createdAt,
	}
}

// FilledQuantity returns how much of the order has traded so far.
func (o *Order) FilledQuantity() int64 {
	return o.InitialQuantity - o.RemainingQuantity
}

// IsFilled reports whether the order has no remaining quantity.
func (o *Order) IsFilled() bool {
	return o.RemainingQuantity == 0
}

// Fill reduces the remaining quantity by qty. Filling more than the
// remaining quantity is an invariant breach in the matching algorithm,
// never a runtime condition, so it panics.
func (o *Order) Fill(qty int64) {
	if qty > o.RemainingQuantity {
		panic(fmt.Sprintf("order %d: fill quantity %d exceeds remaining %d", o.ID, qty, o.RemainingQuantity))
	}
	o.RemainingQuantity -= qty
}

// ToGoodTillCancel pins a market order at price and turns it into a
// good-till-cancel order. This is the only place an order's type
// changes after creation.
func (o *Order) ToGoodTillCancel(price int64) {
	o.Price = price
	o.Type = OrderTypeGoodTillCancel
}
