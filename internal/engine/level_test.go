package engine

import (
	"testing"

	"github.com/efreitasn/limitbook/internal/domain"
)

func TestBidLevelLess_PriceDescending(t *testing.T) {
	high := newPriceLevel(200)
	low := newPriceLevel(100)
	// The best (highest) bid must sort first.
	if !bidLevelLess(high, low) {
		t.Error("expected higher price to be less on bid side")
	}
	if bidLevelLess(low, high) {
		t.Error("expected lower price to not be less on bid side")
	}
}

func TestAskLevelLess_PriceAscending(t *testing.T) {
	high := newPriceLevel(200)
	low := newPriceLevel(100)
	if !askLevelLess(low, high) {
		t.Error("expected lower price to be less on ask side")
	}
	if askLevelLess(high, low) {
		t.Error("expected higher price to not be less on ask side")
	}
}

func TestPriceLevel_Aggregates(t *testing.T) {
	level := newPriceLevel(100)

	first := domain.NewOrder(1, domain.SideBuy, 100, 10, domain.OrderTypeGoodTillCancel, testStart)
	second := domain.NewOrder(2, domain.SideBuy, 100, 5, domain.OrderTypeGoodTillCancel, testStart)
	firstElem := level.add(first)
	level.add(second)

	if level.totalQuantity != 15 {
		t.Errorf("expected total 15, got %d", level.totalQuantity)
	}
	if got := level.info(); got.Orders != 2 || got.Quantity != 15 || got.Price != 100 {
		t.Errorf("unexpected level info: %+v", got)
	}

	level.reduce(4)
	if level.totalQuantity != 11 {
		t.Errorf("expected total 11 after reduce, got %d", level.totalQuantity)
	}

	first.RemainingQuantity = 6
	level.remove(firstElem)
	if level.totalQuantity != 5 {
		t.Errorf("expected total 5 after remove, got %d", level.totalQuantity)
	}
	if level.empty() {
		t.Error("level should not be empty")
	}
}

func TestPriceLevel_FIFOOrder(t *testing.T) {
	level := newPriceLevel(100)
	level.add(domain.NewOrder(1, domain.SideBuy, 100, 1, domain.OrderTypeGoodTillCancel, testStart))
	level.add(domain.NewOrder(2, domain.SideBuy, 100, 1, domain.OrderTypeGoodTillCancel, testStart))

	front := level.front().Value.(*domain.Order)
	if front.ID != 1 {
		t.Errorf("expected earliest order at the front, got id %d", front.ID)
	}
}
