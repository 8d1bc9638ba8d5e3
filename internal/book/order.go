package book

import (
	"encoding/json"
	"errors"
)

type Side int

const (
	Buy Side = iota
	Sell
)

func (s Side) String() string {
	if s == Buy {
		return "buy"
	}
	return "sell"
}

// Opposite returns the side an incoming order matches against.
func (s Side) Opposite() Side {
	if s == Buy {
		return Sell
	}
	return Buy
}

func (s Side) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

func (s *Side) UnmarshalJSON(data []byte) error {
	var v string
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	parsed, err := ParseSide(v)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseSide parses "buy" or "sell".
func ParseSide(v string) (Side, error) {
	switch v {
	case "buy":
		return Buy, nil
	case "sell":
		return Sell, nil
	}
	return 0, errors.New(`side must be "buy" or "sell"`)
}

type Kind int

const (
	Limit Kind = iota
	Market
)

func (k Kind) String() string {
	if k == Limit {
		return "limit"
	}
	return "market"
}

func (k Kind) MarshalJSON() ([]byte, error) {
	return []byte(`"` + k.String() + `"`), nil
}

func (k *Kind) UnmarshalJSON(data []byte) error {
	var v string
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	parsed, err := ParseKind(v)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ParseKind parses "limit" or "market".
func ParseKind(v string) (Kind, error) {
	switch v {
	case "limit":
		return Limit, nil
	case "market":
		return Market, nil
	}
	return 0, errors.New(`type must be "limit" or "market"`)
}

var (
	ErrPriceRequired = errors.New("limit order requires a price")
	ErrMarketPrice   = errors.New("market order cannot carry a price")
	ErrBadQuantity   = errors.New("quantity must be positive")
)

// Order is a single trading intent. Price is in cents and is meaningful only
// for limit orders. Quantity is the remaining (unfilled) size and only ever
// decreases. Seq is the arrival sequence number; it breaks ties among orders
// resting at the same price and is never compared across prices.
type Order struct {
	ID       uint64 `json:"id"`
	Side     Side   `json:"side"`
	Kind     Kind   `json:"kind"`
	Price    int64  `json:"price,omitempty"`
	Quantity int64  `json:"quantity"`
	Seq      uint64 `json:"-"`
}

// NewOrder validates the kind/price/quantity combination and builds an order.
// A limit order must carry a positive price; a market order must carry none.
func NewOrder(id uint64, kind Kind, side Side, price, quantity int64, seq uint64) (*Order, error) {
	if quantity <= 0 {
		return nil, ErrBadQuantity
	}
	switch kind {
	case Limit:
		if price <= 0 {
			return nil, ErrPriceRequired
		}
	case Market:
		if price != 0 {
			return nil, ErrMarketPrice
		}
	}
	return &Order{
		ID:       id,
		Side:     side,
		Kind:     kind,
		Price:    price,
		Quantity: quantity,
		Seq:      seq,
	}, nil
}
