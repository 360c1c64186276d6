// cmd/logistics-service/main.go
package main

import (
	"log"
	"os"

	"go.opentelemetry.io/otel"

	"bazaar/internal/pkg/bootstrap"
	"bazaar/internal/pkg/database"
	"bazaar/internal/pkg/mq"

	"bazaar/internal/service/logistics/application"
	"bazaar/internal/service/logistics/domain"
	"bazaar/internal/service/logistics/infrastructure"
	"bazaar/internal/service/logistics/infrastructure/adapter"
	"bazaar/internal/service/logistics/interfaces"
)

const (
	serviceName = "logistics-service"

	deliverySyncTopic = "delivery-status-sync"
	locationTopic     = "delivery-locations"
)

// main 函数是应用的"组装根" (Composition Root)
func main() {
	bootstrap.Init()
	cfg := bootstrap.GetCurrentConfig()

	tracer := otel.Tracer(serviceName)

	var (
		deliveries domain.DeliveryRepository
		carriers   domain.CarrierRepository
		locations  domain.LocationRepository
	)
	if getEnv("STORAGE_DRIVER", "mysql") == "mysql" {
		db, err := database.Open(cfg.Infra.Mysql.DSN)
		if err != nil {
			log.Fatalf("failed to open mysql: %v", err)
		}
		if err := db.AutoMigrate(
			&infrastructure.DeliveryModel{},
			&infrastructure.CarrierModel{},
			&infrastructure.LocationReportModel{},
		); err != nil {
			log.Fatalf("failed to migrate schema: %v", err)
		}
		deliveries = infrastructure.NewGormDeliveryRepository(db)
		carriers = infrastructure.NewGormCarrierRepository(db)
		locations = infrastructure.NewGormLocationRepository(db)
	} else {
		deliveries = infrastructure.NewMemoryDeliveryRepository()
		carriers = infrastructure.NewMemoryCarrierRepository()
		locations = infrastructure.NewMemoryLocationRepository()
	}

	syncWriter := mq.NewKafkaWriter(cfg.Infra.Kafka.Brokers, deliverySyncTopic)
	defer syncWriter.Close()
	locationWriter := mq.NewKafkaWriter(cfg.Infra.Kafka.Brokers, locationTopic)
	defer locationWriter.Close()

	coordinator := application.NewDeliveryCoordinator(
		deliveries,
		carriers,
		locations,
		adapter.NewOrderSyncKafkaAdapter(syncWriter),
		adapter.NewLocationKafkaAdapter(locationWriter),
		tracer,
	)

	bootstrap.StartService(bootstrap.AppInfo{
		ServiceName: serviceName,
		Port:        8083,
		RegisterHandlers: func(appCtx bootstrap.AppCtx) {
			interfaces.NewDeliveryHandler(coordinator).RegisterRoutes(appCtx.Mux)
		},
	})
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
