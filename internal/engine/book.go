package engine

import (
	"container/list"
	"sync"
	"time"

	"github.com/google/btree"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/efreitasn/limitbook/internal/domain"
)

const btreeDegree = 32

// orderEntry ties a resting order to its level and its position in the
// level's FIFO queue, giving O(1) removal without scanning.
type orderEntry struct {
	order *domain.Order
	level *priceLevel
	elem  *list.Element
}

// ModifyOrder describes a cancel-and-replace request. The replacement
// keeps the original order's type but re-enters at the back of its new
// price level.
type ModifyOrder struct {
	ID       uint64
	Side     domain.Side
	Price    int64
	Quantity int64
}

// Options configures an OrderBook. Zero values get sensible defaults.
type Options struct {
	// InitialPrice seeds the mid price before any order arrives.
	InitialPrice int64
	// PruneHour is the local hour (0-23) at which good-for-day orders
	// expire. Defaults to 16.
	PruneHour int
	// PruneBuffer pads the timed wait past the cutoff so a wake exactly
	// at the boundary lands after it. Defaults to 100ms.
	PruneBuffer time.Duration
	Clock       Clock
	Logger      *zap.Logger
}

// OrderBook is a single-instrument limit order book with price-time
// priority. One mutex serializes every operation, including the full
// matching pass that runs inside AddOrder, so the book behaves as a
// monitor. A single background goroutine prunes good-for-day orders at
// the trading-day cutoff; Close stops and joins it.
type OrderBook struct {
	mu       sync.Mutex
	bids     *btree.BTreeG[*priceLevel] // price descending
	asks     *btree.BTreeG[*priceLevel] // price ascending
	orders   map[uint64]*orderEntry
	midPrice int64

	clock       Clock
	log         *zap.Logger
	pruneHour   int
	pruneBuffer time.Duration

	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// NewOrderBook creates an order book and starts its pruning goroutine.
func NewOrderBook(opts Options) *OrderBook {
	if opts.Clock == nil {
		opts.Clock = RealClock{}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.PruneHour == 0 {
		opts.PruneHour = 16
	}
	if opts.PruneBuffer == 0 {
		opts.PruneBuffer = 100 * time.Millisecond
	}

	b := &OrderBook{
		bids:        btree.NewG(btreeDegree, bidLevelLess),
		asks:        btree.NewG(btreeDegree, askLevelLess),
		orders:      make(map[uint64]*orderEntry),
		midPrice:    opts.InitialPrice,
		clock:       opts.Clock,
		log:         opts.Logger,
		pruneHour:   opts.PruneHour,
		pruneBuffer: opts.PruneBuffer,
		done:        make(chan struct{}),
	}

	b.wg.Add(1)
	go b.pruneGoodForDayOrders()

	return b
}

// Close signals shutdown and joins the pruning goroutine. Idempotent.
func (b *OrderBook) Close() {
	b.closeOnce.Do(func() {
		close(b.done)
	})
	b.wg.Wait()
}

// AddOrder admits an order, matches the book, and returns the trades
// produced. Duplicate ids, fill-and-kill orders that cannot cross,
// fill-or-kill orders that cannot fill entirely, and market orders with
// no opposite liquidity are all silent no-ops returning nil.
func (b *OrderBook) AddOrder(order *domain.Order) []*domain.Trade {
	b.mu.Lock()
	defer b.mu.Unlock()

	trades := b.addOrderLocked(order)

	b.log.Debug("order processed",
		zap.Uint64("order_id", order.ID),
		zap.String("side", string(order.Side)),
		zap.String("type", string(order.Type)),
		zap.Int64("price", order.Price),
		zap.Int64("remaining", order.RemainingQuantity),
		zap.Int("trades", len(trades)),
	)

	return trades
}

func (b *OrderBook) addOrderLocked(order *domain.Order) []*domain.Trade {
	if _, exists := b.orders[order.ID]; exists {
		return nil
	}

	switch order.Type {
	case domain.OrderTypeFillAndKill:
		// FAK must be marketable on arrival; the check precedes resting.
		if !b.canMatchLocked(order.Side, order.Price) {
			return nil
		}
	case domain.OrderTypeFillOrKill:
		// Dry-run feasibility scan; no partial fill may ever happen.
		if !b.canFullyFillLocked(order.Side, order.Price, order.RemainingQuantity) {
			return nil
		}
	case domain.OrderTypeMarket:
		opposite, ok := b.bestLevelLocked(order.Side.Opposite())
		if !ok {
			return nil
		}
		order.ToGoodTillCancel(opposite.price)
	}

	level := b.levelForLocked(order.Side, order.Price)
	elem := level.add(order)
	b.orders[order.ID] = &orderEntry{order: order, level: level, elem: elem}

	return b.matchOrdersLocked()
}

// matchOrdersLocked runs the crossing loop over the whole book: while
// the best bid price is at or above the best ask price, the front
// orders of the two levels trade min(remaining). It is not limited to
// a just-added order because prior state may already be crossable.
func (b *OrderBook) matchOrdersLocked() []*domain.Trade {
	var trades []*domain.Trade

	for {
		bidLevel, ok := b.bids.Min()
		if !ok {
			break
		}
		askLevel, ok := b.asks.Min()
		if !ok {
			break
		}
		if bidLevel.price < askLevel.price {
			break
		}

		for !bidLevel.empty() && !askLevel.empty() {
			bidElem := bidLevel.front()
			askElem := askLevel.front()
			bid := bidElem.Value.(*domain.Order)
			ask := askElem.Value.(*domain.Order)

			qty := min(bid.RemainingQuantity, ask.RemainingQuantity)

			bid.Fill(qty)
			ask.Fill(qty)
			bidLevel.reduce(qty)
			askLevel.reduce(qty)

			if bid.IsFilled() {
				bidLevel.orders.Remove(bidElem)
				delete(b.orders, bid.ID)
			}
			if ask.IsFilled() {
				askLevel.orders.Remove(askElem)
				delete(b.orders, ask.ID)
			}

			trades = append(trades, &domain.Trade{
				TradeID:    uuid.New().String(),
				Bid:        domain.TradeInfo{OrderID: bid.ID, Price: bidLevel.price, Quantity: qty},
				Ask:        domain.TradeInfo{OrderID: ask.ID, Price: askLevel.price, Quantity: qty},
				ExecutedAt: b.clock.Now(),
			})
		}

		if bidLevel.empty() {
			b.bids.Delete(bidLevel)
		}
		if askLevel.empty() {
			b.asks.Delete(askLevel)
		}
	}

	// A fill-and-kill order left unfilled at the top of either side is
	// discarded; FAK never rests.
	b.purgeTopFillAndKillLocked(b.bids)
	b.purgeTopFillAndKillLocked(b.asks)

	b.recalcMidPriceLocked()

	return trades
}

func (b *OrderBook) purgeTopFillAndKillLocked(tree *btree.BTreeG[*priceLevel]) {
	level, ok := tree.Min()
	if !ok {
		return
	}
	elem := level.front()
	if elem == nil {
		return
	}
	order := elem.Value.(*domain.Order)
	if order.Type != domain.OrderTypeFillAndKill || order.RemainingQuantity == 0 {
		return
	}
	level.remove(elem)
	delete(b.orders, order.ID)
	if level.empty() {
		tree.Delete(level)
	}
}

// CancelOrder removes a resting order. Unknown ids are a no-op.
func (b *OrderBook) CancelOrder(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cancelOrderLocked(id)
}

// CancelOrders removes a batch of resting orders under a single lock
// acquisition. Unknown ids are skipped.
func (b *OrderBook) CancelOrders(ids []uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, id := range ids {
		b.cancelOrderLocked(id)
	}
}

func (b *OrderBook) cancelOrderLocked(id uint64) {
	entry, ok := b.orders[id]
	if !ok {
		return
	}
	delete(b.orders, id)

	entry.level.remove(entry.elem)
	if entry.level.empty() {
		b.side(entry.order.Side).Delete(entry.level)
	}

	b.recalcMidPriceLocked()
}

// ModifyOrder cancels the order and re-adds it with the new side,
// price, and quantity but the original type. The replacement loses its
// queue position: FIFO reset on modify is intentional. Unknown ids
// return nil.
func (b *OrderBook) ModifyOrder(mod ModifyOrder) []*domain.Trade {
	b.mu.Lock()
	defer b.mu.Unlock()

	entry, ok := b.orders[mod.ID]
	if !ok {
		return nil
	}
	typ := entry.order.Type

	b.cancelOrderLocked(mod.ID)

	replacement := domain.NewOrder(mod.ID, mod.Side, mod.Price, mod.Quantity, typ, b.clock.Now())
	return b.addOrderLocked(replacement)
}

// CanMatch reports whether an order on side at price could cross at
// least one resting opposite order.
func (b *OrderBook) CanMatch(side domain.Side, price int64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.canMatchLocked(side, price)
}

func (b *OrderBook) canMatchLocked(side domain.Side, price int64) bool {
	opposite, ok := b.bestLevelLocked(side.Opposite())
	if !ok {
		return false
	}
	if side == domain.SideBuy {
		return price >= opposite.price
	}
	return price <= opposite.price
}

// CanFullyFill reports whether quantity could be filled entirely at or
// inside price. It is a read-only aggregation walk with no side
// effects, used to gate fill-or-kill admission.
func (b *OrderBook) CanFullyFill(side domain.Side, price, quantity int64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.canFullyFillLocked(side, price, quantity)
}

func (b *OrderBook) canFullyFillLocked(side domain.Side, price, quantity int64) bool {
	if !b.canMatchLocked(side, price) {
		return false
	}

	remaining := quantity
	b.side(side.Opposite()).Ascend(func(level *priceLevel) bool {
		if side == domain.SideBuy && level.price > price {
			return false
		}
		if side == domain.SideSell && level.price < price {
			return false
		}
		remaining -= level.totalQuantity
		return remaining > 0
	})

	return remaining <= 0
}

// LevelInfos returns the aggregated snapshot of both sides, bids in
// descending and asks in ascending price order.
func (b *OrderBook) LevelInfos() (bids, asks []domain.LevelInfo) {
	b.mu.Lock()
	defer b.mu.Unlock()

	bids = make([]domain.LevelInfo, 0, b.bids.Len())
	asks = make([]domain.LevelInfo, 0, b.asks.Len())
	b.bids.Ascend(func(level *priceLevel) bool {
		bids = append(bids, level.info())
		return true
	})
	b.asks.Ascend(func(level *priceLevel) bool {
		asks = append(asks, level.info())
		return true
	})
	return bids, asks
}

// BestPrice returns the most aggressive resting price on side. It
// fails with domain.ErrEmptySide when the side has no orders.
func (b *OrderBook) BestPrice(side domain.Side) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	level, ok := b.bestLevelLocked(side)
	if !ok {
		return 0, domain.ErrEmptySide
	}
	return level.price, nil
}

// Spread returns best ask minus best bid. It fails with
// domain.ErrEmptySide when either side is empty.
func (b *OrderBook) Spread() (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	bid, okBid := b.bids.Min()
	ask, okAsk := b.asks.Min()
	if !okBid || !okAsk {
		return 0, domain.ErrEmptySide
	}
	return ask.price - bid.price, nil
}

// SideQuantity returns the total resting quantity on side.
func (b *OrderBook) SideQuantity(side domain.Side) int64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	var total int64
	b.side(side).Ascend(func(level *priceLevel) bool {
		total += level.totalQuantity
		return true
	})
	return total
}

// LevelQuantity returns the resting quantity at price on side, or 0
// when no level exists there.
func (b *OrderBook) LevelQuantity(side domain.Side, price int64) int64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	level, ok := b.side(side).Get(&priceLevel{price: price})
	if !ok {
		return 0
	}
	return level.totalQuantity
}

// Size returns the number of resting orders.
func (b *OrderBook) Size() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.orders)
}

// IsEmpty reports whether no orders rest on either side.
func (b *OrderBook) IsEmpty() bool {
	return b.Size() == 0
}

// MidPrice returns the midpoint of the best bid and ask. With one side
// empty it is that side's best; with both empty the last known value
// survives (seeded by Options.InitialPrice).
func (b *OrderBook) MidPrice() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.midPrice
}

// Order returns a copy of a resting order, or domain.ErrOrderNotFound.
func (b *OrderBook) Order(id uint64) (domain.Order, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	entry, ok := b.orders[id]
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	return *entry.order, nil
}

func (b *OrderBook) side(s domain.Side) *btree.BTreeG[*priceLevel] {
	if s == domain.SideBuy {
		return b.bids
	}
	return b.asks
}

func (b *OrderBook) bestLevelLocked(s domain.Side) (*priceLevel, bool) {
	return b.side(s).Min()
}

func (b *OrderBook) levelForLocked(s domain.Side, price int64) *priceLevel {
	tree := b.side(s)
	if level, ok := tree.Get(&priceLevel{price: price}); ok {
		return level
	}
	level := newPriceLevel(price)
	tree.ReplaceOrInsert(level)
	return level
}

func (b *OrderBook) recalcMidPriceLocked() {
	bid, okBid := b.bids.Min()
	ask, okAsk := b.asks.Min()
	switch {
	case okBid && okAsk:
		b.midPrice = (bid.price + ask.price) / 2
	case okBid:
		b.midPrice = bid.price
	case okAsk:
		b.midPrice = ask.price
	}
	// Both sides empty: keep the last known value.
}
