// Package sim generates synthetic market activity against an order
// book. It is a pure producer: it submits orders, cancels, and
// modifies through the book's public operations and reads back only
// through its read-only queries.
package sim

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/efreitasn/limitbook/internal/domain"
	"github.com/efreitasn/limitbook/internal/engine"
)

// Params tune the generated order flow. Each ranges 1-5.
type Params struct {
	OrderFrequency  int // arrival rate multiplier
	OrderVolume     int // order size multiplier
	PriceVolatility int // price dispersion around the mid, in ticks
}

// Mode selects how orders are generated.
type Mode string

const (
	// ModeNormal draws sides uniformly.
	ModeNormal Mode = "normal"
	// ModeReactive skews the side mix toward the market state.
	ModeReactive Mode = "reactive"
)

// MarketState classifies the book's current imbalance.
type MarketState string

const (
	MarketStateBull   MarketState = "bull"
	MarketStateBear   MarketState = "bear"
	MarketStateStable MarketState = "stable"
)

// Report is an aggregate snapshot of the simulated market.
type Report struct {
	CurrentPrice     int64       `json:"current_price"`
	TotalBidQuantity int64       `json:"total_bid_quantity"`
	TotalAskQuantity int64       `json:"total_ask_quantity"`
	BidLevels        int         `json:"bid_levels"`
	AskLevels        int         `json:"ask_levels"`
	Trades           int         `json:"trades"`
	State            MarketState `json:"state"`
}

// maxTracked caps how many resting order ids the simulator remembers
// as modify/cancel candidates.
const maxTracked = 256

// Options configures a Simulator.
type Options struct {
	Book     *engine.OrderBook
	Params   Params
	Mode     Mode
	TickSize int64
	Seed     int64
	Clock    engine.Clock
	Logger   *zap.Logger
}

// Simulator drives random order flow through an OrderBook.
type Simulator struct {
	book   *engine.OrderBook
	params Params
	mode   Mode
	tick   int64
	tape   *Tape
	clock  engine.Clock
	log    *zap.Logger

	mu     sync.Mutex
	rng    *rand.Rand
	state  MarketState
	nextID uint64
	recent []uint64 // resting ids eligible for modify/cancel
}

// New creates a Simulator. Zero options get defaults; a zero seed is
// replaced by the clock so repeated runs differ.
func New(opts Options) *Simulator {
	if opts.Mode == "" {
		opts.Mode = ModeNormal
	}
	if opts.Params.OrderFrequency == 0 {
		opts.Params.OrderFrequency = 1
	}
	if opts.Params.OrderVolume == 0 {
		opts.Params.OrderVolume = 1
	}
	if opts.Params.PriceVolatility == 0 {
		opts.Params.PriceVolatility = 1
	}
	if opts.TickSize == 0 {
		opts.TickSize = 1
	}
	if opts.Clock == nil {
		opts.Clock = engine.RealClock{}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Seed == 0 {
		opts.Seed = opts.Clock.Now().UnixNano()
	}

	return &Simulator{
		book:   opts.Book,
		params: opts.Params,
		mode:   opts.Mode,
		tick:   opts.TickSize,
		tape:   NewTape(),
		clock:  opts.Clock,
		log:    opts.Logger,
		rng:    rand.New(rand.NewSource(opts.Seed)),
		state:  MarketStateStable,
	}
}

// Run submits orders with Poisson inter-arrival delays until ctx is
// cancelled.
func (s *Simulator) Run(ctx context.Context) {
	s.log.Info("simulator starting",
		zap.Int("order_frequency", s.params.OrderFrequency),
		zap.Int("order_volume", s.params.OrderVolume),
		zap.Int("price_volatility", s.params.PriceVolatility),
		zap.String("mode", string(s.mode)),
	)

	for {
		select {
		case <-ctx.Done():
			s.log.Info("simulator stopped", zap.Int("trades", s.tape.Len()))
			return
		case <-s.clock.After(s.nextArrival()):
		}
		s.Step()
	}
}

// Step performs one generation action: an add, or a modify/cancel of a
// tracked resting order. Exported so tests can drive the simulator
// synchronously.
func (s *Simulator) Step() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.rng.Intn(2) == 1 && !s.book.IsEmpty() {
		s.modifyOrCancelLocked()
	} else {
		s.addLocked()
	}
	s.updateMarketStateLocked()
}

// Report aggregates the current book and tape state.
func (s *Simulator) Report() Report {
	bids, asks := s.book.LevelInfos()

	var bidQty, askQty int64
	for _, l := range bids {
		bidQty += l.Quantity
	}
	for _, l := range asks {
		askQty += l.Quantity
	}

	s.mu.Lock()
	state := s.state
	s.mu.Unlock()

	return Report{
		CurrentPrice:     s.book.MidPrice(),
		TotalBidQuantity: bidQty,
		TotalAskQuantity: askQty,
		BidLevels:        len(bids),
		AskLevels:        len(asks),
		Trades:           s.tape.Len(),
		State:            state,
	}
}

// Tape returns the simulator's trade tape.
func (s *Simulator) Tape() *Tape {
	return s.tape
}

// nextArrival draws an exponential inter-arrival delay, the waiting
// time of a Poisson arrival process whose rate scales with
// OrderFrequency.
func (s *Simulator) nextArrival() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	mean := float64(time.Second) / float64(s.params.OrderFrequency)
	d := time.Duration(s.rng.ExpFloat64() * mean)
	if d < time.Millisecond {
		d = time.Millisecond
	}
	return d
}

func (s *Simulator) addLocked() {
	s.nextID++
	id := s.nextID
	side := s.drawSideLocked()
	qty := s.drawQuantityLocked()

	var trades []*domain.Trade
	if s.rng.Intn(2) == 0 {
		trades = s.book.AddOrder(domain.NewMarketOrder(id, side, qty, s.clock.Now()))
	} else {
		price := s.drawPriceLocked()
		typ := limitTypes[s.rng.Intn(len(limitTypes))]
		trades = s.book.AddOrder(domain.NewOrder(id, side, price, qty, typ, s.clock.Now()))
		if typ == domain.OrderTypeGoodTillCancel || typ == domain.OrderTypeGoodForDay {
			s.trackLocked(id)
		}
	}
	s.tape.Append(trades...)
}

var limitTypes = []domain.OrderType{
	domain.OrderTypeGoodTillCancel,
	domain.OrderTypeFillAndKill,
	domain.OrderTypeFillOrKill,
	domain.OrderTypeGoodForDay,
}

func (s *Simulator) modifyOrCancelLocked() {
	id, ok := s.pickTrackedLocked()
	if !ok {
		return
	}

	order, err := s.book.Order(id)
	if err != nil {
		// Filled, cancelled, or pruned since we last saw it.
		s.forgetLocked(id)
		return
	}

	if s.rng.Intn(2) == 0 {
		trades := s.book.ModifyOrder(engine.ModifyOrder{
			ID:       id,
			Side:     order.Side,
			Price:    s.drawPriceLocked(),
			Quantity: s.drawQuantityLocked(),
		})
		s.tape.Append(trades...)
	} else {
		s.book.CancelOrder(id)
		s.forgetLocked(id)
	}
}

// drawSideLocked picks a side. Reactive mode leans with the market
// state; normal mode is uniform.
func (s *Simulator) drawSideLocked() domain.Side {
	buyChance := 50
	if s.mode == ModeReactive {
		switch s.state {
		case MarketStateBull:
			buyChance = 70
		case MarketStateBear:
			buyChance = 30
		}
	}
	if s.rng.Intn(100) < buyChance {
		return domain.SideBuy
	}
	return domain.SideSell
}

// drawPriceLocked fluctuates around the book's mid price with a normal
// deviation of one tick per volatility point, floored at one tick.
func (s *Simulator) drawPriceLocked() int64 {
	base := s.book.MidPrice()
	sigma := float64(s.tick) * float64(s.params.PriceVolatility)
	price := base + int64(math.Round(s.rng.NormFloat64()*sigma))
	if price < s.tick {
		price = s.tick
	}
	return price
}

func (s *Simulator) drawQuantityLocked() int64 {
	return 1 + s.rng.Int63n(int64(s.params.OrderVolume)*100)
}

// updateMarketStateLocked classifies the book imbalance: a side with
// at least 20% more resting quantity than the other makes the market.
func (s *Simulator) updateMarketStateLocked() {
	bidQty := s.book.SideQuantity(domain.SideBuy)
	askQty := s.book.SideQuantity(domain.SideSell)

	switch {
	case bidQty*5 > askQty*6:
		s.state = MarketStateBull
	case askQty*5 > bidQty*6:
		s.state = MarketStateBear
	default:
		s.state = MarketStateStable
	}
}

func (s *Simulator) trackLocked(id uint64) {
	s.recent = append(s.recent, id)
	if len(s.recent) > maxTracked {
		s.recent = s.recent[len(s.recent)-maxTracked:]
	}
}

func (s *Simulator) pickTrackedLocked() (uint64, bool) {
	if len(s.recent) == 0 {
		return 0, false
	}
	return s.recent[s.rng.Intn(len(s.recent))], true
}

func (s *Simulator) forgetLocked(id uint64) {
	for i, v := range s.recent {
		if v == id {
			s.recent = append(s.recent[:i], s.recent[i+1:]...)
			return
		}
	}
}
