package api

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"matchd/internal/store"
)

const sessionTTL = 24 * time.Hour

// SessionStore hands out bearer tokens backed by the sqlite sessions table.
type SessionStore struct {
	store  *store.Store
	stopCh chan struct{}
}

func NewSessionStore(s *store.Store) *SessionStore {
	ss := &SessionStore{
		store:  s,
		stopCh: make(chan struct{}),
	}
	go ss.cleanupLoop()
	return ss
}

func (ss *SessionStore) cleanupLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			ss.store.CleanupExpiredSessions()
		case <-ss.stopCh:
			return
		}
	}
}

// Stop halts the cleanup goroutine.
func (ss *SessionStore) Stop() {
	close(ss.stopCh)
}

func (ss *SessionStore) Create(userID string) (*store.Session, error) {
	token := generateToken()
	expiresAt := time.Now().Add(sessionTTL)
	if err := ss.store.CreateSession(token, userID, expiresAt); err != nil {
		return nil, err
	}
	return &store.Session{Token: token, UserID: userID, ExpiresAt: expiresAt}, nil
}

func (ss *SessionStore) Get(token string) *store.Session {
	session, err := ss.store.GetSession(token)
	if err != nil {
		return nil
	}
	return session
}

func generateToken() string {
	b := make([]byte, 32)
	rand.Read(b)
	return hex.EncodeToString(b)
}

type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Token    string `json:"token"`
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if len(req.Username) < 3 || len(req.Username) > 32 {
		http.Error(w, "username must be 3-32 characters", http.StatusBadRequest)
		return
	}
	if len(req.Password) < 6 {
		http.Error(w, "password must be at least 6 characters", http.StatusBadRequest)
		return
	}

	user, err := s.store.CreateUser(req.Username, req.Password)
	if err == store.ErrUserExists {
		http.Error(w, "username already taken", http.StatusConflict)
		return
	}
	if err != nil {
		http.Error(w, "failed to create user", http.StatusInternalServerError)
		return
	}

	session, err := s.sessions.Create(user.ID)
	if err != nil {
		http.Error(w, "failed to create session", http.StatusInternalServerError)
		return
	}

	writeJSON(w, AuthResponse{Token: session.Token, UserID: user.ID, Username: user.Username})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	user, err := s.store.AuthenticateUser(req.Username, req.Password)
	if err == store.ErrUserNotFound || err == store.ErrInvalidPassword {
		http.Error(w, "invalid username or password", http.StatusUnauthorized)
		return
	}
	if err != nil {
		http.Error(w, "authentication failed", http.StatusInternalServerError)
		return
	}

	session, err := s.sessions.Create(user.ID)
	if err != nil {
		http.Error(w, "failed to create session", http.StatusInternalServerError)
		return
	}

	writeJSON(w, AuthResponse{Token: session.Token, UserID: user.ID, Username: user.Username})
}

func (s *Server) getSession(r *http.Request) *store.Session {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return nil
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil
	}
	return s.sessions.Get(parts[1])
}
