package book

import (
	"testing"
)

func limitOrder(t *testing.T, id uint64, side Side, price, qty int64) *Order {
	t.Helper()
	o, err := NewOrder(id, Limit, side, price, qty, id)
	if err != nil {
		t.Fatalf("NewOrder failed: %v", err)
	}
	return o
}

func TestNewOrderValidation(t *testing.T) {
	if _, err := NewOrder(1, Limit, Buy, 0, 10, 1); err != ErrPriceRequired {
		t.Errorf("limit without price: expected ErrPriceRequired, got %v", err)
	}
	if _, err := NewOrder(1, Market, Buy, 10000, 10, 1); err != ErrMarketPrice {
		t.Errorf("market with price: expected ErrMarketPrice, got %v", err)
	}
	if _, err := NewOrder(1, Limit, Buy, 10000, 0, 1); err != ErrBadQuantity {
		t.Errorf("zero quantity: expected ErrBadQuantity, got %v", err)
	}
	if _, err := NewOrder(1, Limit, Sell, 10000, -5, 1); err != ErrBadQuantity {
		t.Errorf("negative quantity: expected ErrBadQuantity, got %v", err)
	}
	if _, err := NewOrder(1, Market, Sell, 0, 5, 1); err != nil {
		t.Errorf("valid market order rejected: %v", err)
	}
}

func TestBestPriceEmpty(t *testing.T) {
	b := New()
	if _, ok := b.BestPrice(Buy); ok {
		t.Error("expected no best bid on empty book")
	}
	if _, ok := b.BestPrice(Sell); ok {
		t.Error("expected no best ask on empty book")
	}
}

func TestBestPriceOrdering(t *testing.T) {
	b := New()
	b.Add(limitOrder(t, 1, Buy, 9900, 10))
	b.Add(limitOrder(t, 2, Buy, 10000, 10))
	b.Add(limitOrder(t, 3, Buy, 9800, 10))
	b.Add(limitOrder(t, 4, Sell, 10200, 10))
	b.Add(limitOrder(t, 5, Sell, 10100, 10))

	if price, _ := b.BestPrice(Buy); price != 10000 {
		t.Errorf("expected best bid 10000, got %d", price)
	}
	if price, _ := b.BestPrice(Sell); price != 10100 {
		t.Errorf("expected best ask 10100, got %d", price)
	}
}

func TestPopBestSweepsPriceOrder(t *testing.T) {
	b := New()
	b.Add(limitOrder(t, 1, Sell, 10200, 10))
	b.Add(limitOrder(t, 2, Sell, 10000, 10))
	b.Add(limitOrder(t, 3, Sell, 10100, 10))

	want := []int64{10000, 10100, 10200}
	for i, price := range want {
		o := b.PopBest(Sell)
		if o == nil {
			t.Fatalf("pop %d: expected order, got nil", i)
		}
		if o.Price != price {
			t.Errorf("pop %d: expected price %d, got %d", i, price, o.Price)
		}
	}
	if o := b.PopBest(Sell); o != nil {
		t.Errorf("expected empty side, popped order %d", o.ID)
	}
}

func TestPopBestFIFOWithinLevel(t *testing.T) {
	b := New()
	b.Add(limitOrder(t, 1, Buy, 10000, 10))
	b.Add(limitOrder(t, 2, Buy, 10000, 20))
	b.Add(limitOrder(t, 3, Buy, 10000, 30))

	for want := uint64(1); want <= 3; want++ {
		o := b.PopBest(Buy)
		if o == nil || o.ID != want {
			t.Fatalf("expected order %d next, got %+v", want, o)
		}
	}
}

func TestPopBestRemovesEmptyLevel(t *testing.T) {
	b := New()
	b.Add(limitOrder(t, 1, Sell, 10000, 10))
	b.Add(limitOrder(t, 2, Sell, 10100, 10))

	b.PopBest(Sell)
	// 10000 level is gone; the next best must be 10100.
	if price, ok := b.BestPrice(Sell); !ok || price != 10100 {
		t.Errorf("expected best ask 10100 after level drained, got %d (ok=%v)", price, ok)
	}
	snap := b.Depth()
	if len(snap.Asks) != 1 {
		t.Errorf("expected 1 ask level, got %d", len(snap.Asks))
	}
}

func TestPopEmptyIsIdempotent(t *testing.T) {
	b := New()
	for i := 0; i < 3; i++ {
		if o := b.PopBest(Buy); o != nil {
			t.Fatalf("expected nil popping empty bids, got order %d", o.ID)
		}
	}
	if b.Len() != 0 {
		t.Errorf("expected empty book, got %d orders", b.Len())
	}
}

func TestAddToTailOfLevel(t *testing.T) {
	b := New()
	b.Add(limitOrder(t, 1, Sell, 10000, 10))
	b.Add(limitOrder(t, 2, Sell, 10000, 10))

	// Re-adding a popped order puts it behind order 2.
	first := b.PopBest(Sell)
	b.Add(first)

	if o := b.PopBest(Sell); o.ID != 2 {
		t.Errorf("expected order 2 at the front, got %d", o.ID)
	}
	if o := b.PopBest(Sell); o.ID != 1 {
		t.Errorf("expected re-added order 1 at the tail, got %d", o.ID)
	}
}

func TestDepthSnapshot(t *testing.T) {
	b := New()
	b.Add(limitOrder(t, 1, Buy, 9900, 10))
	b.Add(limitOrder(t, 2, Buy, 10000, 5))
	b.Add(limitOrder(t, 3, Buy, 10000, 7))
	b.Add(limitOrder(t, 4, Sell, 10100, 3))

	snap := b.Depth()
	if len(snap.Bids) != 2 || len(snap.Asks) != 1 {
		t.Fatalf("expected 2 bid / 1 ask levels, got %d/%d", len(snap.Bids), len(snap.Asks))
	}
	// Bids best-first.
	if snap.Bids[0].Price != 10000 || snap.Bids[0].Quantity != 12 || snap.Bids[0].Orders != 2 {
		t.Errorf("unexpected top bid level: %+v", snap.Bids[0])
	}
	if snap.Bids[1].Price != 9900 {
		t.Errorf("expected second bid level 9900, got %d", snap.Bids[1].Price)
	}
	if snap.Asks[0].Price != 10100 || snap.Asks[0].Quantity != 3 {
		t.Errorf("unexpected ask level: %+v", snap.Asks[0])
	}
	if b.Len() != 4 {
		t.Errorf("expected 4 resting orders, got %d", b.Len())
	}
}
