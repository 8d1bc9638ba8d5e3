package engine

import (
	"sync"
	"time"

	"matchd/internal/book"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Trade is one execution between an incoming (taker) order and a resting
// (maker) order. Price is the resting order's price in cents.
type Trade struct {
	ID           string    `json:"id"`
	TakerSide    book.Side `json:"taker_side"`
	TakerKind    book.Kind `json:"taker_kind"`
	Price        int64     `json:"price"`
	Quantity     int64     `json:"quantity"`
	TakerOrderID uint64    `json:"taker_order_id"`
	MakerOrderID uint64    `json:"maker_order_id"`
	ExecutedAt   time.Time `json:"executed_at"`
}

// Unfilled reports the remainder of a market order that ran out of opposite
// liquidity. The remainder is discarded; market orders never rest.
type Unfilled struct {
	OrderID  uint64    `json:"order_id"`
	Side     book.Side `json:"side"`
	Quantity int64     `json:"quantity"`
}

// Result is the synchronous outcome of one submission.
type Result struct {
	OrderID  uint64  `json:"order_id"`
	Trades   []Trade `json:"trades"`
	Unfilled int64   `json:"unfilled,omitempty"`
	Rested   bool    `json:"rested"`
}

// Engine owns the order book and the order id counter. Submissions are
// serialized by an internal mutex: one order is fully matched and/or rested
// before the next is accepted.
type Engine struct {
	mu         sync.Mutex
	book       *book.Book
	nextID     uint64
	nextSeq    uint64
	log        *zap.Logger
	onTrade    []func(Trade)
	onUnfilled []func(Unfilled)
}

func New(log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		book: book.New(),
		log:  log,
	}
}

// OnTrade registers a callback invoked for every execution, in execution
// order. Callbacks run on the submitting goroutine and must not call back
// into the engine.
func (e *Engine) OnTrade(fn func(Trade)) {
	e.onTrade = append(e.onTrade, fn)
}

// OnUnfilled registers a callback invoked when a market order exhausts the
// opposite side with quantity remaining.
func (e *Engine) OnUnfilled(fn func(Unfilled)) {
	e.onUnfilled = append(e.onUnfilled, fn)
}

// Submit runs one order through the matching loop. Limit orders may rest any
// remainder on the book; market orders report it as unfilled. Invalid
// submissions (limit without a price, market with one, non-positive quantity)
// are rejected before the book is touched, though they still consume an
// order id.
func (e *Engine) Submit(kind book.Kind, side book.Side, price, quantity int64) (*Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.nextID++
	e.nextSeq++
	order, err := book.NewOrder(e.nextID, kind, side, price, quantity, e.nextSeq)
	if err != nil {
		return nil, err
	}

	res := &Result{OrderID: order.ID, Trades: []Trade{}}
	if kind == book.Market {
		e.matchMarket(order, res)
	} else {
		e.matchLimit(order, res)
	}
	return res, nil
}

// matchMarket consumes opposite liquidity until the order fills or the
// opposite side is empty. The unmatched remainder is reported and discarded.
func (e *Engine) matchMarket(order *book.Order, res *Result) {
	opposite := order.Side.Opposite()

	for order.Quantity > 0 {
		best, ok := e.book.BestPrice(opposite)
		if !ok {
			e.reportUnfilled(order, res)
			return
		}
		e.execute(order, best, res)
	}
}

// matchLimit consumes opposite liquidity while the best opposite price
// crosses the order's limit, then rests any remainder on the book.
func (e *Engine) matchLimit(order *book.Order, res *Result) {
	opposite := order.Side.Opposite()

	for order.Quantity > 0 {
		best, ok := e.book.BestPrice(opposite)
		if !ok {
			break
		}
		crosses := best <= order.Price
		if order.Side == book.Sell {
			crosses = best >= order.Price
		}
		// The book is price-ordered, so no deeper level can cross either.
		if !crosses {
			break
		}
		e.execute(order, best, res)
	}

	if order.Quantity > 0 {
		e.book.Add(order)
		res.Rested = true
	}
}

// execute pops the best opposite order, trades the overlapping quantity at
// the resting price, and reinserts the maker if it still has size. The
// reinsertion lands at the tail of its price level.
func (e *Engine) execute(order *book.Order, price int64, res *Result) {
	maker := e.book.PopBest(order.Side.Opposite())
	qty := min(order.Quantity, maker.Quantity)

	order.Quantity -= qty
	maker.Quantity -= qty
	if maker.Quantity > 0 {
		e.book.Add(maker)
	}

	t := Trade{
		ID:           uuid.New().String(),
		TakerSide:    order.Side,
		TakerKind:    order.Kind,
		Price:        price,
		Quantity:     qty,
		TakerOrderID: order.ID,
		MakerOrderID: maker.ID,
		ExecutedAt:   time.Now(),
	}
	res.Trades = append(res.Trades, t)

	e.log.Info("trade",
		zap.String("taker_side", t.TakerSide.String()),
		zap.String("taker_kind", t.TakerKind.String()),
		zap.Int64("price", t.Price),
		zap.Int64("quantity", t.Quantity),
		zap.Uint64("taker_order", t.TakerOrderID),
		zap.Uint64("maker_order", t.MakerOrderID),
	)
	for _, fn := range e.onTrade {
		fn(t)
	}
}

func (e *Engine) reportUnfilled(order *book.Order, res *Result) {
	u := Unfilled{OrderID: order.ID, Side: order.Side, Quantity: order.Quantity}
	res.Unfilled = order.Quantity

	e.log.Info("market order not fully filled",
		zap.Uint64("order", u.OrderID),
		zap.String("side", u.Side.String()),
		zap.Int64("remaining", u.Quantity),
	)
	for _, fn := range e.onUnfilled {
		fn(u)
	}
}

// Depth returns an aggregated snapshot of the resting book.
func (e *Engine) Depth() book.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.book.Depth()
}

// BestBid returns the highest resting bid price, if any.
func (e *Engine) BestBid() (int64, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.book.BestPrice(book.Buy)
}

// BestAsk returns the lowest resting ask price, if any.
func (e *Engine) BestAsk() (int64, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.book.BestPrice(book.Sell)
}
