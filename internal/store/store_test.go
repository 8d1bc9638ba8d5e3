package store

import (
	"testing"
	"time"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestCreateUser(t *testing.T) {
	s := setupTestStore(t)

	user, err := s.CreateUser("alice", "password123")
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if user.ID == "" {
		t.Error("expected user ID to be set")
	}
	if user.Username != "alice" {
		t.Errorf("expected username 'alice', got '%s'", user.Username)
	}
	if user.PasswordHash == "password123" || user.PasswordHash == "" {
		t.Error("expected password to be hashed")
	}

	// Duplicate username rejected.
	if _, err := s.CreateUser("alice", "other"); err != ErrUserExists {
		t.Errorf("expected ErrUserExists, got %v", err)
	}
}

func TestAuthenticateUser(t *testing.T) {
	s := setupTestStore(t)
	s.CreateUser("bob", "hunter22")

	user, err := s.AuthenticateUser("bob", "hunter22")
	if err != nil {
		t.Fatalf("AuthenticateUser failed: %v", err)
	}
	if user.Username != "bob" {
		t.Errorf("expected bob, got %s", user.Username)
	}

	if _, err := s.AuthenticateUser("bob", "wrong"); err != ErrInvalidPassword {
		t.Errorf("expected ErrInvalidPassword, got %v", err)
	}
	if _, err := s.AuthenticateUser("nobody", "hunter22"); err != ErrUserNotFound {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}

func TestSessions(t *testing.T) {
	s := setupTestStore(t)
	user, _ := s.CreateUser("carol", "password123")

	if err := s.CreateSession("tok1", user.ID, time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	session, err := s.GetSession("tok1")
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if session == nil || session.UserID != user.ID {
		t.Fatalf("unexpected session: %+v", session)
	}

	// Unknown token.
	if session, _ := s.GetSession("nope"); session != nil {
		t.Error("expected nil for unknown token")
	}

	// Expired token is dropped on lookup.
	s.CreateSession("tok2", user.ID, time.Now().Add(-time.Minute))
	if session, _ := s.GetSession("tok2"); session != nil {
		t.Error("expected nil for expired token")
	}

	if err := s.DeleteSession("tok1"); err != nil {
		t.Fatalf("DeleteSession failed: %v", err)
	}
	if session, _ := s.GetSession("tok1"); session != nil {
		t.Error("expected nil after delete")
	}
}

func TestTradeTape(t *testing.T) {
	s := setupTestStore(t)

	base := time.Now().Add(-time.Minute)
	for i := 0; i < 3; i++ {
		err := s.RecordTrade(Trade{
			ID:           string(rune('a' + i)),
			TakerSide:    "buy",
			TakerKind:    "market",
			Price:        10000 + int64(i),
			Quantity:     5,
			TakerOrderID: uint64(10 + i),
			MakerOrderID: uint64(i),
			ExecutedAt:   base.Add(time.Duration(i) * time.Second),
		})
		if err != nil {
			t.Fatalf("RecordTrade failed: %v", err)
		}
	}

	trades, err := s.RecentTrades(2)
	if err != nil {
		t.Fatalf("RecentTrades failed: %v", err)
	}
	if len(trades) != 2 {
		t.Fatalf("expected 2 trades, got %d", len(trades))
	}
	// Most recent first.
	if trades[0].Price != 10002 || trades[1].Price != 10001 {
		t.Errorf("unexpected ordering: %d, %d", trades[0].Price, trades[1].Price)
	}
	if trades[0].TakerSide != "buy" || trades[0].TakerKind != "market" {
		t.Errorf("unexpected row: %+v", trades[0])
	}
}
