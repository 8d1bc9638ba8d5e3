package store

import "time"

// Trade is one row of the executed trade tape.
type Trade struct {
	ID           string    `json:"id"`
	TakerSide    string    `json:"taker_side"`
	TakerKind    string    `json:"taker_kind"`
	Price        int64     `json:"price"`
	Quantity     int64     `json:"quantity"`
	TakerOrderID uint64    `json:"taker_order_id"`
	MakerOrderID uint64    `json:"maker_order_id"`
	ExecutedAt   time.Time `json:"executed_at"`
}

// RecordTrade appends an execution to the tape.
func (s *Store) RecordTrade(t Trade) error {
	_, err := s.db.Exec(
		`INSERT INTO trades (id, taker_side, taker_kind, price, quantity, taker_order_id, maker_order_id, executed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.TakerSide, t.TakerKind, t.Price, t.Quantity, t.TakerOrderID, t.MakerOrderID, t.ExecutedAt,
	)
	return err
}

// RecentTrades returns up to limit trades, most recent first.
func (s *Store) RecentTrades(limit int) ([]Trade, error) {
	rows, err := s.db.Query(
		`SELECT id, taker_side, taker_kind, price, quantity, taker_order_id, maker_order_id, executed_at
		 FROM trades ORDER BY executed_at DESC, id LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	trades := make([]Trade, 0, limit)
	for rows.Next() {
		var t Trade
		if err := rows.Scan(&t.ID, &t.TakerSide, &t.TakerKind, &t.Price, &t.Quantity,
			&t.TakerOrderID, &t.MakerOrderID, &t.ExecutedAt); err != nil {
			return nil, err
		}
		trades = append(trades, t)
	}
	return trades, rows.Err()
}
