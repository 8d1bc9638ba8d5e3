package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"matchd/internal/book"
	"matchd/internal/engine"
	"matchd/internal/metrics"
	"matchd/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Server exposes the matching engine over HTTP and fans trade events out to
// websocket subscribers.
type Server struct {
	engine      *engine.Engine
	store       *store.Store
	sessions    *SessionStore
	hub         *Hub
	rateLimiter *RateLimiter
	upgrader    websocket.Upgrader
	log         *zap.Logger
	corsOrigins []string
}

func NewServer(eng *engine.Engine, st *store.Store, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{
		engine:      eng,
		store:       st,
		sessions:    NewSessionStore(st),
		hub:         NewHub(log.Named("hub")),
		rateLimiter: NewRateLimiter(300, time.Minute),
		log:         log,
	}
	s.upgrader = websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return s.originAllowed(r.Header.Get("Origin"))
		},
	}
	return s
}

// SetCORSOrigins restricts cross-origin requests to the given origins.
// An empty slice allows all origins (development mode).
func (s *Server) SetCORSOrigins(origins []string) {
	s.corsOrigins = origins
}

func (s *Server) originAllowed(origin string) bool {
	if len(s.corsOrigins) == 0 || origin == "" {
		return true
	}
	for _, allowed := range s.corsOrigins {
		if origin == allowed {
			return true
		}
	}
	return false
}

// Shutdown stops the server's background goroutines.
func (s *Server) Shutdown() {
	s.sessions.Stop()
	s.rateLimiter.Stop()
	s.hub.Close()
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(s.rateLimiter.Middleware)

	allowedOrigins := s.corsOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", s.handleRegister)
		r.Post("/auth/login", s.handleLogin)

		r.Post("/orders", s.submitOrder)
		r.Get("/book", s.getBook)
		r.Get("/trades", s.getTrades)
	})

	r.Get("/ws", s.handleWebSocket)
	r.Method("GET", "/metrics", metrics.Handler())

	return r
}

type OrderRequest struct {
	Side     string `json:"side"`            // "buy" or "sell"
	Type     string `json:"type"`            // "limit" or "market"
	Price    int64  `json:"price,omitempty"` // in cents; required iff limit
	Quantity int64  `json:"quantity"`
}

func (s *Server) submitOrder(w http.ResponseWriter, r *http.Request) {
	if s.getSession(r) == nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req OrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	side, err := book.ParseSide(req.Side)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	kind, err := book.ParseKind(req.Type)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	res, err := s.engine.Submit(kind, side, req.Price, req.Quantity)
	if err != nil {
		metrics.OrdersRejected.Inc()
		switch {
		case errors.Is(err, book.ErrPriceRequired),
			errors.Is(err, book.ErrMarketPrice),
			errors.Is(err, book.ErrBadQuantity):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			http.Error(w, "order submission failed", http.StatusInternalServerError)
		}
		return
	}

	metrics.OrdersTotal.WithLabelValues(kind.String(), side.String()).Inc()
	s.updateBookGauges()

	writeJSON(w, res)
}

func (s *Server) getBook(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.engine.Depth())
}

func (s *Server) getTrades(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 500 {
			http.Error(w, "limit must be between 1 and 500", http.StatusBadRequest)
			return
		}
		limit = n
	}

	trades, err := s.store.RecentTrades(limit)
	if err != nil {
		s.log.Error("trade tape query failed", zap.Error(err))
		http.Error(w, "failed to load trades", http.StatusInternalServerError)
		return
	}
	writeJSON(w, trades)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	s.hub.Attach(conn)
}

// HandleTrade publishes an execution to websocket subscribers. Wired to
// engine.OnTrade in main.
func (s *Server) HandleTrade(t engine.Trade) {
	s.hub.Broadcast(Event{Type: "trade", Data: t})
}

// HandleUnfilled publishes an exhausted market order to subscribers.
func (s *Server) HandleUnfilled(u engine.Unfilled) {
	s.hub.Broadcast(Event{Type: "unfilled", Data: u})
}

func (s *Server) updateBookGauges() {
	snap := s.engine.Depth()
	metrics.BookLevels.WithLabelValues("buy").Set(float64(len(snap.Bids)))
	metrics.BookLevels.WithLabelValues("sell").Set(float64(len(snap.Asks)))
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
