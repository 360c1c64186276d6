// internal/service/stock/application/metrics.go
package application

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	reservationsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bazaar_stock_reservations_created_total",
		Help: "Number of stock reservations successfully created.",
	})
	reservationsRejected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bazaar_stock_reservations_rejected_total",
		Help: "Number of reservation attempts rejected for insufficient stock.",
	})
	reservationsCommitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bazaar_stock_reservations_committed_total",
		Help: "Number of reservations committed (stock physically deducted).",
	})
	reservationsReleased = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bazaar_stock_reservations_released_total",
		Help: "Number of reservations released back to available stock.",
	})
	holdsExpired = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bazaar_stock_holds_expired_total",
		Help: "Number of stale holds released by the expiry sweeper.",
	})
	sweepFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bazaar_stock_sweep_failures_total",
		Help: "Number of expiry sweep cycles that ended with an error.",
	})
)
