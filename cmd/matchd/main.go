package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"matchd/internal/api"
	"matchd/internal/engine"
	"matchd/internal/metrics"
	"matchd/internal/repl"
	"matchd/internal/store"

	"go.uber.org/zap"
)

func main() {
	port := flag.String("port", "8088", "server port")
	dbPath := flag.String("db", "matchd.db", "SQLite database path")
	corsOrigins := flag.String("cors", "", "comma-separated allowed CORS origins (empty = allow all for dev)")
	interactive := flag.Bool("repl", false, "run the interactive submission loop instead of the HTTP server")
	debug := flag.Bool("debug", false, "verbose development logging")
	flag.Parse()

	logger, err := newLogger(*debug)
	if err != nil {
		os.Exit(1)
	}
	defer logger.Sync()

	st, err := store.New(*dbPath)
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}

	eng := engine.New(logger.Named("engine"))

	server := api.NewServer(eng, st, logger.Named("api"))

	// Every execution goes to the tape, the websocket feed, and the counters.
	eng.OnTrade(func(t engine.Trade) {
		if err := st.RecordTrade(store.Trade{
			ID:           t.ID,
			TakerSide:    t.TakerSide.String(),
			TakerKind:    t.TakerKind.String(),
			Price:        t.Price,
			Quantity:     t.Quantity,
			TakerOrderID: t.TakerOrderID,
			MakerOrderID: t.MakerOrderID,
			ExecutedAt:   t.ExecutedAt,
		}); err != nil {
			logger.Error("failed to record trade", zap.String("trade", t.ID), zap.Error(err))
		}
		metrics.TradesTotal.Inc()
		metrics.TradedVolume.Add(float64(t.Quantity))
		server.HandleTrade(t)
	})
	eng.OnUnfilled(func(u engine.Unfilled) {
		metrics.UnfilledTotal.Inc()
		server.HandleUnfilled(u)
	})

	if *interactive {
		if err := repl.Run(eng, os.Stdin, os.Stdout); err != nil {
			logger.Fatal("repl failed", zap.Error(err))
		}
		st.Close()
		return
	}

	if *corsOrigins != "" {
		origins := strings.Split(*corsOrigins, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		server.SetCORSOrigins(origins)
		logger.Info("CORS restricted", zap.Strings("origins", origins))
	}

	addr := ":" + *port
	httpServer := &http.Server{
		Addr:    addr,
		Handler: server.Router(),
	}

	go func() {
		logger.Info("starting matchd",
			zap.String("addr", addr),
			zap.String("db", *dbPath),
		)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	server.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("HTTP server shutdown error", zap.Error(err))
	}

	if err := st.Close(); err != nil {
		logger.Error("database close error", zap.Error(err))
	}
	logger.Info("shutdown complete")
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
