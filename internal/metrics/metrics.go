// Package metrics exposes prometheus instrumentation for the matching
// service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	OrdersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "matchd_orders_total",
		Help: "Accepted order submissions by kind and side.",
	}, []string{"kind", "side"})

	OrdersRejected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "matchd_orders_rejected_total",
		Help: "Submissions rejected before touching the book.",
	})

	TradesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "matchd_trades_total",
		Help: "Executed trades.",
	})

	TradedVolume = promauto.NewCounter(prometheus.CounterOpts{
		Name: "matchd_traded_volume_total",
		Help: "Total traded quantity.",
	})

	UnfilledTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "matchd_unfilled_total",
		Help: "Market orders that exhausted opposite liquidity.",
	})

	BookLevels = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "matchd_book_levels",
		Help: "Resting price levels per side.",
	}, []string{"side"})
)

// Handler returns the /metrics endpoint handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
