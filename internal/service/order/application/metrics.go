// internal/service/order/application/metrics.go
package application

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	checkoutsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bazaar_order_checkouts_total",
		Help: "Total number of successful checkouts.",
	})
	checkoutsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bazaar_order_checkouts_failed_total",
		Help: "Total number of failed checkouts (after compensation).",
	})
	transitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bazaar_order_transitions_total",
		Help: "Order state transitions by target status.",
	}, []string{"to"})
	transitionsRejected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bazaar_order_transitions_rejected_total",
		Help: "Order state transitions rejected as invalid.",
	})
)
