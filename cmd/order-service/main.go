// cmd/order-service/main.go
package main

import (
	"context"
	"log"
	"os"
	"time"

	"go.opentelemetry.io/otel"

	"bazaar/internal/pkg/bootstrap"
	"bazaar/internal/pkg/database"
	"bazaar/internal/pkg/httpclient"
	"bazaar/internal/pkg/mq"
	"bazaar/internal/pkg/redis"
	"bazaar/internal/zookeeper"

	cartapp "bazaar/internal/service/cart/application"
	cartdomain "bazaar/internal/service/cart/domain"
	cartinfra "bazaar/internal/service/cart/infrastructure"
	cartadapter "bazaar/internal/service/cart/infrastructure/adapter"
	cartport "bazaar/internal/service/cart/domain/port"
	cartifaces "bazaar/internal/service/cart/interfaces"

	stockapp "bazaar/internal/service/stock/application"
	stockdomain "bazaar/internal/service/stock/domain"
	stockinfra "bazaar/internal/service/stock/infrastructure"
	stockport "bazaar/internal/service/stock/domain/port"
	stockifaces "bazaar/internal/service/stock/interfaces"

	orderapp "bazaar/internal/service/order/application"
	orderdomain "bazaar/internal/service/order/domain"
	orderinfra "bazaar/internal/service/order/infrastructure"
	orderadapter "bazaar/internal/service/order/infrastructure/adapter"
	"bazaar/internal/service/order/infrastructure/rule"
	orderifaces "bazaar/internal/service/order/interfaces"
)

const (
	serviceName = "order-service"

	notificationTopic           = "order-notifications"
	deliverySyncTopic           = "delivery-status-sync"
	deliverySyncConsumerGroupID = "order-delivery-sync-group"
)

// main 函数是应用的"组装根" (Composition Root)
// 它的核心职责是：创建并组装所有依赖项，然后启动应用。
func main() {
	bootstrap.Init()
	cfg := bootstrap.GetCurrentConfig()

	tracer := otel.Tracer(serviceName)
	httpClient := httpclient.NewClient(tracer)

	// --- 存储层: mysql 或内存实现（本地开发、测试） ---
	var (
		stockRepo stockdomain.StockRepository
		resRepo   stockdomain.ReservationRepository
		cartRepo  cartdomain.CartRepository
		orderRepo orderdomain.OrderRepository
	)
	if getEnv("STORAGE_DRIVER", "mysql") == "mysql" {
		db, err := database.Open(cfg.Infra.Mysql.DSN)
		if err != nil {
			log.Fatalf("failed to open mysql: %v", err)
		}
		if err := db.AutoMigrate(
			&stockinfra.StockRecordModel{}, &stockinfra.ReservationModel{},
			&cartinfra.CartModel{}, &cartinfra.CartItemModel{},
			&orderinfra.OrderModel{}, &orderinfra.OrderItemModel{},
		); err != nil {
			log.Fatalf("failed to migrate schema: %v", err)
		}
		stockRepo = stockinfra.NewGormStockRepository(db)
		resRepo = stockinfra.NewGormReservationRepository(db)
		cartRepo = cartinfra.NewGormCartRepository(db)
		orderRepo = orderinfra.NewGormOrderRepository(db)
	} else {
		stockRepo = stockinfra.NewMemoryStockRepository()
		resRepo = stockinfra.NewMemoryReservationRepository()
		cartRepo = cartinfra.NewMemoryCartRepository()
		orderRepo = orderinfra.NewMemoryOrderRepository()
	}

	// --- 库存键锁: 多实例部署用 ZooKeeper，单实例退化为进程内锁 ---
	var locker stockport.KeyLocker = stockinfra.NewLocalKeyLocker()
	if os.Getenv("ZOOKEEPER_ADDRS") != "" {
		zkConn, err := zookeeper.Connect(cfg.Infra.Zookeeper.Addrs, 5*time.Second)
		if err != nil {
			log.Fatalf("failed to connect to zookeeper: %v", err)
		}
		defer zkConn.Close()
		locker = stockinfra.NewZkKeyLocker(zkConn)
	}

	// --- 可售量缓存: redis 不可用时直接查账本，只是慢一点 ---
	var cache stockport.AvailabilityCache
	var redisCache *stockinfra.RedisAvailabilityCache
	if redisClient, err := redis.NewClient(cfg.Infra.Redis.Addrs); err != nil {
		log.Printf("WARN: redis unavailable, availability cache disabled: %v", err)
	} else {
		defer redisClient.Close()
		redisCache, err = stockinfra.NewRedisAvailabilityCache(redisClient)
		if err != nil {
			log.Fatalf("failed to load availability scripts: %v", err)
		}
		cache = redisCache
	}

	// --- 库存账本 ---
	ledger := stockapp.NewLedgerService(stockRepo, resRepo, locker, cache, cfg.App.HoldTimeout, tracer)
	sweeper := stockapp.NewHoldSweeper(ledger, cfg.App.SweepInterval)

	// --- 购物车 ---
	cartCatalog := cartadapter.NewCatalogHTTPAdapter(httpClient, cfg.Infra.Services.CatalogURL)
	var availability cartport.AvailabilityChecker
	if redisCache != nil {
		availability = cartadapter.NewCachedAvailabilityAdapter(redisCache, ledger)
	} else {
		availability = cartadapter.NewLedgerAvailabilityAdapter(ledger)
	}
	cartService := cartapp.NewCartService(cartRepo, cartCatalog, availability, tracer)

	// --- 订单引擎 ---
	policies, err := rule.NewCELPolicyEngine(cfg.App.Policies.RestockOnReturn, cfg.App.Policies.CancelOnDeliveryFailure)
	if err != nil {
		log.Fatalf("failed to compile policy expressions: %v", err)
	}

	notificationWriter := mq.NewKafkaWriter(cfg.Infra.Kafka.Brokers, notificationTopic)
	defer notificationWriter.Close()
	notifier := orderadapter.NewNotificationKafkaAdapter(notificationWriter)

	orderService := orderapp.NewOrderApplicationService(
		orderRepo,
		orderadapter.NewCatalogHTTPAdapter(httpClient, cfg.Infra.Services.CatalogURL),
		ledger,
		orderadapter.NewCartLocalAdapter(cartService),
		orderadapter.NewPaymentHTTPAdapter(httpClient, cfg.Infra.Services.PaymentURL),
		orderadapter.NewDeliveryHTTPAdapter(httpClient, cfg.Infra.Services.LogisticsURL),
		notifier,
		policies,
		cfg.App.ReturnWindow,
		tracer,
	)

	// --- 配送状态同步消费者 ---
	syncReader := mq.NewKafkaReader(cfg.Infra.Kafka.Brokers, deliverySyncTopic, deliverySyncConsumerGroupID)
	syncConsumer := orderifaces.NewDeliverySyncConsumerAdapter(syncReader, orderService)

	bootstrap.StartService(bootstrap.AppInfo{
		ServiceName: serviceName,
		Port:        8081,
		RegisterHandlers: func(appCtx bootstrap.AppCtx) {
			orderifaces.NewOrderHandler(orderService).RegisterRoutes(appCtx.Mux)
			cartifaces.NewCartHandler(cartService).RegisterRoutes(appCtx.Mux)
			stockifaces.NewStockHandler(ledger).RegisterRoutes(appCtx.Mux)
		},
		BackgroundTasks: []func(ctx context.Context) error{
			sweeper.Run,
			func(ctx context.Context) error {
				if err := syncConsumer.Start(ctx); err != nil {
					return err
				}
				<-ctx.Done()
				syncConsumer.Stop(context.Background())
				return ctx.Err()
			},
		},
	})
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
