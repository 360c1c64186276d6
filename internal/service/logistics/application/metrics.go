// internal/service/logistics/application/metrics.go
package application

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	deliveriesCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bazaar_logistics_deliveries_created_total",
		Help: "Total number of deliveries created.",
	})
	deliveriesAdvanced = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bazaar_logistics_deliveries_advanced_total",
		Help: "Delivery status advancements by target status.",
	}, []string{"to"})
	advancesRejected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bazaar_logistics_advances_rejected_total",
		Help: "Delivery status advancements rejected as invalid.",
	})
	locationReports = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bazaar_logistics_location_reports_total",
		Help: "Total number of carrier location reports.",
	})
)
