package application

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"

	cartapp "bazaar/internal/service/cart/application"
	cartadapter "bazaar/internal/service/cart/infrastructure/adapter"
	cartinfra "bazaar/internal/service/cart/infrastructure"
	cartport "bazaar/internal/service/cart/domain/port"

	logisticsapp "bazaar/internal/service/logistics/application"
	logisticsdomain "bazaar/internal/service/logistics/domain"
	logisticsinfra "bazaar/internal/service/logistics/infrastructure"

	stockapp "bazaar/internal/service/stock/application"
	stockinfra "bazaar/internal/service/stock/infrastructure"

	"bazaar/internal/service/order/domain"
	"bazaar/internal/service/order/domain/port"
	"bazaar/internal/service/order/infrastructure"
	orderadapter "bazaar/internal/service/order/infrastructure/adapter"
)

// 全链路用例: 购物车 → 订单 → 库存 → 物流走完一个完整生命周期。
// Kafka 被进程内桥接替换——物流的同步命令直接调用订单侧的处理入口，
// 配送创建直接调用物流协调器，其余全部是真实实现。

type cartCatalogStub struct{}

func (cartCatalogStub) GetProduct(ctx context.Context, productID string) (*cartport.ProductInfo, error) {
	if productID != "prod-a" {
		return nil, errors.Errorf("product not found: %s", productID)
	}
	return &cartport.ProductInfo{ProductID: "prod-a", Name: "Дрель", UnitPrice: 100.0, Currency: "RUB", SellerID: "seller-1"}, nil
}

// localDeliveryRequester 把订单侧的配送请求进程内转发给物流协调器。
type localDeliveryRequester struct {
	coordinator *logisticsapp.DeliveryCoordinator
}

func (a *localDeliveryRequester) RequestDelivery(ctx context.Context, req *port.DeliveryRequest) (string, error) {
	delivery, err := a.coordinator.CreateDelivery(ctx, req.OrderID,
		logisticsdomain.Address{
			Street: req.PickupAddress.Street, House: req.PickupAddress.House,
			City: req.PickupAddress.City, Country: req.PickupAddress.Country,
		},
		logisticsdomain.Address{
			Street: req.DeliveryAddress.Street, House: req.DeliveryAddress.House,
			City: req.DeliveryAddress.City, Country: req.DeliveryAddress.Country,
		},
		req.Currency,
	)
	if err != nil {
		return "", err
	}
	return delivery.ID, nil
}

// localSyncBridge 把物流的同步命令直接交给订单应用服务。
type localSyncBridge struct {
	orders *OrderApplicationService
}

func (b *localSyncBridge) SendStatusSync(ctx context.Context, cmd *logisticsdomain.DeliveryStatusSynced) error {
	return b.orders.HandleDeliveryStatusSync(ctx, &domain.DeliveryStatusSynced{
		DeliveryID: cmd.DeliveryID,
		OrderID:    cmd.OrderID,
		Status:     cmd.Status,
		Reason:     cmd.Reason,
		OccurredAt: cmd.OccurredAt,
	})
}

func TestFullLifecycle_CartToDelivered(t *testing.T) {
	ctx := context.Background()
	tracer := otel.Tracer("test")

	// --- 库存 ---
	stockRepo := stockinfra.NewMemoryStockRepository()
	ledger := stockapp.NewLedgerService(
		stockRepo,
		stockinfra.NewMemoryReservationRepository(),
		stockinfra.NewLocalKeyLocker(),
		nil,
		30*time.Minute,
		tracer,
	)
	if err := ledger.AdjustStock(ctx, "prod-a", "wh-1", 5); err != nil {
		t.Fatalf("seed stock: %v", err)
	}

	// --- 购物车 ---
	cartService := cartapp.NewCartService(
		cartinfra.NewMemoryCartRepository(),
		cartCatalogStub{},
		cartadapter.NewLedgerAvailabilityAdapter(ledger),
		tracer,
	)

	// --- 物流 + 订单,通过进程内桥接互相连通 ---
	bridge := &localSyncBridge{}
	coordinator := logisticsapp.NewDeliveryCoordinator(
		logisticsinfra.NewMemoryDeliveryRepository(),
		logisticsinfra.NewMemoryCarrierRepository(),
		logisticsinfra.NewMemoryLocationRepository(),
		bridge,
		nil,
		tracer,
	)
	requester := &localDeliveryRequester{coordinator: coordinator}

	orders := NewOrderApplicationService(
		infrastructure.NewMemoryOrderRepository(),
		newMockCatalog(),
		ledger,
		orderadapter.NewCartLocalAdapter(cartService),
		&mockPayment{},
		requester,
		&mockNotifier{},
		&mockPolicies{},
		14*24*time.Hour,
		tracer,
	)
	bridge.orders = orders

	// 1. 加购 2 件 prod-a 并结算
	if _, err := cartService.AddItem(ctx, "cust-1", "prod-a", "wh-1", 2); err != nil {
		t.Fatalf("add to cart: %v", err)
	}
	view, err := orders.CheckoutCart(ctx, &CheckoutCartRequest{
		CustomerID:     "cust-1",
		DeliveryMethod: string(domain.DeliveryCourier),
		PaymentMethod:  string(domain.PaymentMethodCard),
		Currency:       "RUB",
		DeliveryAddress: domain.Address{
			Street: "Тверская", House: "1", City: "Москва", Country: "RU",
		},
	})
	if err != nil {
		t.Fatalf("checkout cart: %v", err)
	}
	if view.Status != domain.StatusPending {
		t.Fatalf("expected PENDING after checkout, got %s", view.Status)
	}
	if available, _ := ledger.Availability(ctx, "prod-a", "wh-1"); available != 3 {
		t.Errorf("expected available 3 after reserve, got %d", available)
	}
	if cart, err := cartService.GetCart(ctx, "cust-1"); err != nil {
		t.Fatalf("get cart: %v", err)
	} else if len(cart.Items) != 0 {
		t.Errorf("expected cart cleared after checkout, got %d items", len(cart.Items))
	}

	// 2. 支付确认、备货
	if _, err := orders.Confirm(ctx, view.OrderID); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if _, err := orders.StartProcessing(ctx, view.OrderID); err != nil {
		t.Fatalf("start processing: %v", err)
	}

	// 3. 备货完成触发配送单创建
	if _, err := orders.MarkReady(ctx, view.OrderID, domain.Address{
		Street: "Складская", House: "7", City: "Москва", Country: "RU",
	}); err != nil {
		t.Fatalf("mark ready: %v", err)
	}
	delivery, err := coordinator.GetDeliveryByOrder(ctx, view.OrderID)
	if err != nil {
		t.Fatalf("expected delivery created for order: %v", err)
	}
	if delivery.Status != logisticsdomain.StatusPending {
		t.Fatalf("expected delivery PENDING, got %s", delivery.Status)
	}

	// 4. 指派承运商并推进到送达
	carrier, err := coordinator.RegisterCarrier(ctx, "Иванов", "+7-900-000-00-00", "van")
	if err != nil {
		t.Fatalf("register carrier: %v", err)
	}
	if _, err := coordinator.AssignCarrier(ctx, delivery.ID, carrier.ID,
		time.Now().Add(time.Hour), time.Now().Add(4*time.Hour), 350); err != nil {
		t.Fatalf("assign carrier: %v", err)
	}
	for _, status := range []logisticsdomain.Status{
		logisticsdomain.StatusPickupScheduled,
		logisticsdomain.StatusInTransit,
		logisticsdomain.StatusOutForDelivery,
		logisticsdomain.StatusDelivered,
	} {
		if _, err := coordinator.AdvanceStatus(ctx, delivery.ID, status); err != nil {
			t.Fatalf("advance delivery to %s: %v", status, err)
		}
	}

	// 5. 终态同步驱动订单到 DELIVERED,预占被提交
	final, err := orders.GetOrder(ctx, view.OrderID)
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if final.Status != domain.StatusDelivered {
		t.Fatalf("expected order DELIVERED after sync, got %s", final.Status)
	}

	record, err := stockRepo.Get(ctx, "prod-a", "wh-1")
	if err != nil {
		t.Fatalf("read stock record: %v", err)
	}
	if record.Quantity != 3 {
		t.Errorf("expected physical quantity 3 after commit, got %d", record.Quantity)
	}
	if record.Reserved != 0 {
		t.Errorf("expected reserved 0 after commit, got %d", record.Reserved)
	}
}
