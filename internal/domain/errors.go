package domain

import "errors"

// Sentinel errors for queries against the book. Mutating operations
// never return these: unknown ids and unmarketable orders are silent
// no-ops.
var (
	ErrEmptySide     = errors.New("empty_side")
	ErrOrderNotFound = errors.New("order_not_found")
)
