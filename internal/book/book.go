package book

import "github.com/tidwall/btree"

// level is the FIFO queue of resting orders at one price.
type level struct {
	price int64
	queue []*Order
}

// Book holds the resting limit orders for a single instrument, one ordered
// price map per side. All matching goes through BestPrice and PopBest; Add is
// the only way an order enters the book. A price level exists if and only if
// its queue is non-empty.
//
// The Book is not safe for concurrent use; the matching engine serializes
// access to it.
type Book struct {
	bids btree.Map[int64, *level]
	asks btree.Map[int64, *level]
}

func New() *Book {
	return &Book{}
}

func (b *Book) side(s Side) *btree.Map[int64, *level] {
	if s == Buy {
		return &b.bids
	}
	return &b.asks
}

// Add appends a resting limit order to the tail of its price level, creating
// the level if needed. Callers must only pass limit orders with remaining
// quantity; the engine validates this before any order reaches the book.
func (b *Book) Add(o *Order) {
	m := b.side(o.Side)
	lv, ok := m.Get(o.Price)
	if !ok {
		lv = &level{price: o.Price}
		m.Set(o.Price, lv)
	}
	lv.queue = append(lv.queue, o)
}

// BestPrice returns the most competitive resting price on a side: the highest
// bid or the lowest ask. ok is false when the side is empty.
func (b *Book) BestPrice(s Side) (price int64, ok bool) {
	if s == Buy {
		price, _, ok = b.bids.Max()
	} else {
		price, _, ok = b.asks.Min()
	}
	return price, ok
}

// PopBest removes and returns the earliest-queued order at the best price on
// a side, or nil if the side is empty. A level whose queue empties is removed
// with it.
func (b *Book) PopBest(s Side) *Order {
	m := b.side(s)
	var lv *level
	var ok bool
	if s == Buy {
		_, lv, ok = m.Max()
	} else {
		_, lv, ok = m.Min()
	}
	if !ok {
		return nil
	}
	o := lv.queue[0]
	lv.queue = lv.queue[1:]
	if len(lv.queue) == 0 {
		m.Delete(lv.price)
	}
	return o
}

// Len returns the total number of resting orders on both sides.
func (b *Book) Len() int {
	var n int
	b.bids.Scan(func(_ int64, lv *level) bool {
		n += len(lv.queue)
		return true
	})
	b.asks.Scan(func(_ int64, lv *level) bool {
		n += len(lv.queue)
		return true
	})
	return n
}

type LevelSnapshot struct {
	Price    int64 `json:"price"`
	Quantity int64 `json:"quantity"`
	Orders   int   `json:"orders"`
}

type Snapshot struct {
	Bids []LevelSnapshot `json:"bids"`
	Asks []LevelSnapshot `json:"asks"`
}

func (lv *level) snapshot() LevelSnapshot {
	s := LevelSnapshot{Price: lv.price, Orders: len(lv.queue)}
	for _, o := range lv.queue {
		s.Quantity += o.Quantity
	}
	return s
}

// Depth returns the aggregated book state, bids best-first (descending) and
// asks best-first (ascending).
func (b *Book) Depth() Snapshot {
	snap := Snapshot{
		Bids: make([]LevelSnapshot, 0, b.bids.Len()),
		Asks: make([]LevelSnapshot, 0, b.asks.Len()),
	}
	b.bids.Reverse(func(_ int64, lv *level) bool {
		snap.Bids = append(snap.Bids, lv.snapshot())
		return true
	})
	b.asks.Scan(func(_ int64, lv *level) bool {
		snap.Asks = append(snap.Asks, lv.snapshot())
		return true
	})
	return snap
}
