package domain

import "time"

// TradeInfo identifies one side of a trade: the resting order that
// participated, the price its level was keyed at, and the quantity
// crossed.
type TradeInfo struct {
	OrderID  uint64 `json:"order_id"`
	Price    int64  `json:"price"`
	Quantity int64  `json:"quantity"`
}

// Trade pairs one bid-side and one ask-side fill. A single incoming
// order sweeping several resting orders produces one Trade per cross.
// Trades are immutable once constructed and owned by the caller.
type Trade struct {
	TradeID    string    `json:"trade_id"`
	Bid        TradeInfo `json:"bid"`
	Ask        TradeInfo `json:"ask"`
	ExecutedAt time.Time `json:"executed_at"`
}

// LevelInfo is the aggregate view of a price level: the price, the sum
// of remaining quantities of its resting orders, and how many orders
// rest there.
type LevelInfo struct {
	Price    int64 `json:"price"`
	Quantity int64 `json:"quantity"`
	Orders   int   `json:"orders"`
}
