package engine

import (
	"time"

	"go.uber.org/zap"

	"github.com/efreitasn/limitbook/internal/domain"
)

// pruneGoodForDayOrders runs for the lifetime of the book. Each cycle
// it computes the next trading-day cutoff against the injected clock,
// blocks on a single cancellable timed wait, then cancels every
// resting good-for-day order.
func (b *OrderBook) pruneGoodForDayOrders() {
	defer b.wg.Done()

	for {
		select {
		case <-b.done:
			return
		case <-b.clock.After(b.untilNextCutoff()):
		}

		ids := b.goodForDayIDs()
		b.CancelOrders(ids)

		if len(ids) > 0 {
			b.log.Info("pruned good-for-day orders", zap.Int("count", len(ids)))
		}
	}
}

// untilNextCutoff returns the duration until the next occurrence of
// the cutoff hour in the clock's location, padded by the prune buffer.
func (b *OrderBook) untilNextCutoff() time.Duration {
	now := b.clock.Now()
	cutoff := time.Date(now.Year(), now.Month(), now.Day(), b.pruneHour, 0, 0, 0, now.Location())
	if !now.Before(cutoff) {
		cutoff = cutoff.AddDate(0, 0, 1)
	}
	return cutoff.Sub(now) + b.pruneBuffer
}

// goodForDayIDs collects the ids of all resting good-for-day orders.
func (b *OrderBook) goodForDayIDs() []uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	var ids []uint64
	for id, entry := range b.orders {
		if entry.order.Type == domain.OrderTypeGoodForDay {
			ids = append(ids, id)
		}
	}
	return ids
}
