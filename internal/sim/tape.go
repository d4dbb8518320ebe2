package sim

import (
	"sync"

	"github.com/efreitasn/limitbook/internal/domain"
)

// Tape is a thread-safe append-only record of the trades the
// simulator's orders produced, in execution order.
type Tape struct {
	mu     sync.RWMutex
	trades []*domain.Trade
}

// NewTape creates an empty Tape.
func NewTape() *Tape {
	return &Tape{}
}

// Append records trades at the end of the tape.
func (t *Tape) Append(trades ...*domain.Trade) {
	if len(trades) == 0 {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.trades = append(t.trades, trades...)
}

// Trades returns all recorded trades in execution order. The returned
// slice is a copy so callers cannot mutate the tape.
func (t *Tape) Trades() []*domain.Trade {
	t.mu.RLock()
	defer t.mu.RUnlock()

	result := make([]*domain.Trade, len(t.trades))
	copy(result, t.trades)
	return result
}

// Len returns the number of recorded trades.
func (t *Tape) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.trades)
}
