package application

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"

	stockapp "bazaar/internal/service/stock/application"
	stockinfra "bazaar/internal/service/stock/infrastructure"

	"bazaar/internal/service/order/domain"
	"bazaar/internal/service/order/domain/port"
	"bazaar/internal/service/order/infrastructure"
)

// Mock ProductCatalog
type mockCatalog struct {
	mu       sync.Mutex
	products map[string]*port.ProductInfo
}

func newMockCatalog() *mockCatalog {
	return &mockCatalog{products: map[string]*port.ProductInfo{
		"prod-a": {ProductID: "prod-a", Name: "Дрель", UnitPrice: 100.0, Currency: "RUB", SellerID: "seller-1"},
		"prod-b": {ProductID: "prod-b", Name: "Перфоратор", UnitPrice: 200.0, Currency: "RUB", SellerID: "seller-1"},
		"prod-c": {ProductID: "prod-c", Name: "Шуруповёрт", UnitPrice: 300.0, Currency: "RUB", SellerID: "seller-2"},
	}}
}

func (m *mockCatalog) GetProduct(ctx context.Context, productID string) (*port.ProductInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	product, ok := m.products[productID]
	if !ok {
		return nil, errors.Errorf("product not found: %s", productID)
	}
	return product, nil
}

// Mock PaymentGateway
type mockPayment struct {
	mu   sync.Mutex
	fail bool
}

func (m *mockPayment) ConfirmPayment(ctx context.Context, orderID string, amount float64, currency string, method string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errors.New("payment declined")
	}
	return nil
}

// Mock DeliveryRequester
type mockDelivery struct {
	mu       sync.Mutex
	requests []*port.DeliveryRequest
}

func (m *mockDelivery) RequestDelivery(ctx context.Context, req *port.DeliveryRequest) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)
	return "delivery-1", nil
}

// Mock NotificationProducer
type mockNotifier struct {
	mu     sync.Mutex
	events []*domain.OrderStatusChanged
}

func (m *mockNotifier) SendStatusChanged(ctx context.Context, event *domain.OrderStatusChanged) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

// Mock PolicyEngine
type mockPolicies struct {
	mu       sync.Mutex
	restock  bool
	reaction port.FailureReaction
}

func (m *mockPolicies) ShouldRestockOnReturn(ctx context.Context, fact port.PolicyFact) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.restock, nil
}

func (m *mockPolicies) ReactOnDeliveryFailure(ctx context.Context, fact port.PolicyFact) (port.FailureReaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.reaction == "" {
		return port.ReactionReopen, nil
	}
	return m.reaction, nil
}

// Mock CartProvider
type mockCart struct {
	mu      sync.Mutex
	lines   []port.CartLine
	cleared bool
}

func (m *mockCart) GetLines(ctx context.Context, customerID string) ([]port.CartLine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]port.CartLine(nil), m.lines...), nil
}

func (m *mockCart) Clear(ctx context.Context, customerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cleared = true
	return nil
}

type fixture struct {
	svc      *OrderApplicationService
	ledger   *stockapp.LedgerService
	payment  *mockPayment
	delivery *mockDelivery
	notifier *mockNotifier
	policies *mockPolicies
	cart     *mockCart
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	tracer := otel.Tracer("test")
	ledger := stockapp.NewLedgerService(
		stockinfra.NewMemoryStockRepository(),
		stockinfra.NewMemoryReservationRepository(),
		stockinfra.NewLocalKeyLocker(),
		nil,
		15*time.Minute,
		tracer,
	)
	f := &fixture{
		ledger:   ledger,
		payment:  &mockPayment{},
		delivery: &mockDelivery{},
		notifier: &mockNotifier{},
		policies: &mockPolicies{},
		cart:     &mockCart{},
	}
	f.svc = NewOrderApplicationService(
		infrastructure.NewMemoryOrderRepository(),
		newMockCatalog(),
		ledger,
		f.cart,
		f.payment,
		f.delivery,
		f.notifier,
		f.policies,
		14*24*time.Hour,
		tracer,
	)
	return f
}

func (f *fixture) seed(t *testing.T, productID, warehouseID string, quantity int64) {
	t.Helper()
	if err := f.ledger.AdjustStock(context.Background(), productID, warehouseID, quantity); err != nil {
		t.Fatalf("seed stock %s: %v", productID, err)
	}
}

func (f *fixture) available(t *testing.T, productID, warehouseID string) int64 {
	t.Helper()
	available, err := f.ledger.Availability(context.Background(), productID, warehouseID)
	if err != nil {
		t.Fatalf("availability %s: %v", productID, err)
	}
	return available
}

func checkoutRequest(lines ...port.CartLine) *CheckoutRequest {
	return &CheckoutRequest{
		CustomerID:     "cust-1",
		Lines:          lines,
		DeliveryMethod: string(domain.DeliveryCourier),
		PaymentMethod:  string(domain.PaymentMethodCard),
		Currency:       "RUB",
		DeliveryAddress: domain.Address{
			Street: "Тверская", House: "1", City: "Москва", Country: "RU",
		},
	}
}

func TestCheckout_Success(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "prod-a", "wh-1", 5)

	view, err := f.svc.Checkout(context.Background(), checkoutRequest(
		port.CartLine{ProductID: "prod-a", WarehouseID: "wh-1", Quantity: 2},
	))
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if view.Status != domain.StatusPending {
		t.Errorf("expected PENDING, got %s", view.Status)
	}
	if view.TotalAmount != 200.0 {
		t.Errorf("expected total 200, got %.2f", view.TotalAmount)
	}
	if view.Items[0].ReservationID == "" {
		t.Error("expected reservation id on order item")
	}
	if got := f.available(t, "prod-a", "wh-1"); got != 3 {
		t.Errorf("expected available 3 after reserve, got %d", got)
	}
}

func TestCheckout_PartialFailureReleasesAll(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "prod-a", "wh-1", 5)
	f.seed(t, "prod-b", "wh-1", 5)
	f.seed(t, "prod-c", "wh-1", 1) // 不够,整单必须失败

	_, err := f.svc.Checkout(context.Background(), checkoutRequest(
		port.CartLine{ProductID: "prod-a", WarehouseID: "wh-1", Quantity: 2},
		port.CartLine{ProductID: "prod-b", WarehouseID: "wh-1", Quantity: 2},
		port.CartLine{ProductID: "prod-c", WarehouseID: "wh-1", Quantity: 3},
	))
	if !errors.Is(err, domain.ErrOutOfStock) {
		t.Fatalf("expected ErrOutOfStock, got %v", err)
	}

	// 补偿之后库存水位与结算前完全一致
	for _, productID := range []string{"prod-a", "prod-b"} {
		if got := f.available(t, productID, "wh-1"); got != 5 {
			t.Errorf("%s: expected available 5 after rollback, got %d", productID, got)
		}
	}
	if got := f.available(t, "prod-c", "wh-1"); got != 1 {
		t.Errorf("prod-c: expected available 1 after rollback, got %d", got)
	}
}

// cancellingOrderRepo 模拟持久化失败的同时请求上下文被取消（客户端断开）。
type cancellingOrderRepo struct {
	cancel context.CancelFunc
}

func (r *cancellingOrderRepo) Save(ctx context.Context, order *domain.Order) error {
	r.cancel()
	return errors.New("connection reset")
}

func (r *cancellingOrderRepo) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	return nil, domain.ErrNotFound
}

func (r *cancellingOrderRepo) Search(ctx context.Context, query domain.SearchQuery) ([]*domain.Order, int64, error) {
	return nil, 0, nil
}

func TestCheckout_CancelledRequestStillRollsBack(t *testing.T) {
	tracer := otel.Tracer("test")

	// 取消与补偿之间存在竞态,单次通过说明不了问题,多跑几轮
	for i := 0; i < 25; i++ {
		ledger := stockapp.NewLedgerService(
			stockinfra.NewMemoryStockRepository(),
			stockinfra.NewMemoryReservationRepository(),
			stockinfra.NewLocalKeyLocker(),
			nil,
			15*time.Minute,
			tracer,
		)
		if err := ledger.AdjustStock(context.Background(), "prod-a", "wh-1", 5); err != nil {
			t.Fatalf("seed stock: %v", err)
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		svc := NewOrderApplicationService(
			&cancellingOrderRepo{cancel: cancel},
			newMockCatalog(),
			ledger,
			&mockCart{},
			&mockPayment{},
			&mockDelivery{},
			&mockNotifier{},
			&mockPolicies{},
			14*24*time.Hour,
			tracer,
		)

		_, err := svc.Checkout(ctx, checkoutRequest(
			port.CartLine{ProductID: "prod-a", WarehouseID: "wh-1", Quantity: 2},
		))
		if err == nil {
			t.Fatal("expected checkout to fail on persist")
		}

		// 即使请求上下文已取消,预占也必须全部回滚
		available, availErr := ledger.Availability(context.Background(), "prod-a", "wh-1")
		if availErr != nil {
			t.Fatalf("availability: %v", availErr)
		}
		if available != 5 {
			t.Fatalf("round %d: expected available 5 after rollback under cancelled context, got %d", i, available)
		}
	}
}

func TestCheckout_EmptyLines(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Checkout(context.Background(), checkoutRequest())
	if !errors.Is(err, domain.ErrEmptyOrder) {
		t.Fatalf("expected ErrEmptyOrder, got %v", err)
	}
}

func TestCheckoutCart_ClearsCartAfterOrderDurable(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "prod-a", "wh-1", 5)
	f.cart.lines = []port.CartLine{{ProductID: "prod-a", WarehouseID: "wh-1", Quantity: 2}}

	view, err := f.svc.CheckoutCart(context.Background(), &CheckoutCartRequest{
		CustomerID:     "cust-1",
		DeliveryMethod: string(domain.DeliveryCourier),
		PaymentMethod:  string(domain.PaymentMethodCard),
		Currency:       "RUB",
	})
	if err != nil {
		t.Fatalf("checkout cart: %v", err)
	}
	if !f.cart.cleared {
		t.Error("expected cart cleared after successful checkout")
	}
	if view.Status != domain.StatusPending {
		t.Errorf("expected PENDING, got %s", view.Status)
	}
}

func TestCheckoutCart_FailureLeavesCartIntact(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "prod-a", "wh-1", 1)
	f.cart.lines = []port.CartLine{{ProductID: "prod-a", WarehouseID: "wh-1", Quantity: 3}}

	_, err := f.svc.CheckoutCart(context.Background(), &CheckoutCartRequest{
		CustomerID:     "cust-1",
		DeliveryMethod: string(domain.DeliveryCourier),
		PaymentMethod:  string(domain.PaymentMethodCard),
		Currency:       "RUB",
	})
	if !errors.Is(err, domain.ErrOutOfStock) {
		t.Fatalf("expected ErrOutOfStock, got %v", err)
	}
	if f.cart.cleared {
		t.Error("cart must stay intact when checkout fails")
	}
}

func TestConfirm_PaymentDeclined(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "prod-a", "wh-1", 5)
	view, err := f.svc.Checkout(context.Background(), checkoutRequest(
		port.CartLine{ProductID: "prod-a", WarehouseID: "wh-1", Quantity: 1},
	))
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}

	f.payment.fail = true
	if _, err := f.svc.Confirm(context.Background(), view.OrderID); err == nil {
		t.Fatal("expected confirm to fail when payment is declined")
	}

	got, err := f.svc.GetOrder(context.Background(), view.OrderID)
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if got.Status != domain.StatusPending {
		t.Errorf("order must stay PENDING after declined payment, got %s", got.Status)
	}
}

func TestTransition_ConfirmedToDeliveredRejected(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "prod-a", "wh-1", 5)
	view, err := f.svc.Checkout(context.Background(), checkoutRequest(
		port.CartLine{ProductID: "prod-a", WarehouseID: "wh-1", Quantity: 1},
	))
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if _, err := f.svc.Confirm(context.Background(), view.OrderID); err != nil {
		t.Fatalf("confirm: %v", err)
	}

	_, err = f.svc.MarkDelivered(context.Background(), view.OrderID, time.Now())
	if !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestCancel_ReleasesReservations(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "prod-a", "wh-1", 5)
	view, err := f.svc.Checkout(context.Background(), checkoutRequest(
		port.CartLine{ProductID: "prod-a", WarehouseID: "wh-1", Quantity: 2},
	))
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if got := f.available(t, "prod-a", "wh-1"); got != 3 {
		t.Fatalf("expected available 3 with hold, got %d", got)
	}

	cancelled, err := f.svc.Cancel(context.Background(), view.OrderID, "передумал")
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if cancelled.Status != domain.StatusCancelled {
		t.Errorf("expected CANCELLED, got %s", cancelled.Status)
	}
	if cancelled.CancellationReason != "передумал" {
		t.Errorf("expected reason recorded, got %q", cancelled.CancellationReason)
	}
	if got := f.available(t, "prod-a", "wh-1"); got != 5 {
		t.Errorf("expected available 5 after release, got %d", got)
	}
}

func TestCancel_DeliveredRejected(t *testing.T) {
	f := newFixture(t)
	order := f.fullLifecycleToDelivered(t)

	_, err := f.svc.Cancel(context.Background(), order, "поздно")
	if !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

// fullLifecycleToDelivered 把一张 2x prod-a 的订单推进到 DELIVERED，返回订单 ID。
func (f *fixture) fullLifecycleToDelivered(t *testing.T) string {
	t.Helper()
	f.seed(t, "prod-a", "wh-1", 5)
	view, err := f.svc.Checkout(context.Background(), checkoutRequest(
		port.CartLine{ProductID: "prod-a", WarehouseID: "wh-1", Quantity: 2},
	))
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	steps := []func() error{
		func() error { _, err := f.svc.Confirm(context.Background(), view.OrderID); return err },
		func() error { _, err := f.svc.StartProcessing(context.Background(), view.OrderID); return err },
		func() error {
			_, err := f.svc.MarkReady(context.Background(), view.OrderID, domain.Address{City: "Москва", Country: "RU"})
			return err
		},
		func() error { _, err := f.svc.MarkInDelivery(context.Background(), view.OrderID); return err },
		func() error { _, err := f.svc.MarkDelivered(context.Background(), view.OrderID, time.Now()); return err },
	}
	for i, step := range steps {
		if err := step(); err != nil {
			t.Fatalf("lifecycle step %d: %v", i, err)
		}
	}
	return view.OrderID
}

func TestLifecycle_DeliveredCommitsStock(t *testing.T) {
	f := newFixture(t)
	orderID := f.fullLifecycleToDelivered(t)

	view, err := f.svc.GetOrder(context.Background(), orderID)
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if view.Status != domain.StatusDelivered {
		t.Errorf("expected DELIVERED, got %s", view.Status)
	}
	if len(f.delivery.requests) != 1 {
		t.Errorf("expected exactly one delivery request, got %d", len(f.delivery.requests))
	}
	// 提交之后: 物理库存 5-2=3,预占归零,可售量仍是 3
	if got := f.available(t, "prod-a", "wh-1"); got != 3 {
		t.Errorf("expected available 3 after commit, got %d", got)
	}
}

func TestReturn_RestockPolicy(t *testing.T) {
	f := newFixture(t)
	f.policies.restock = true
	orderID := f.fullLifecycleToDelivered(t)

	view, err := f.svc.Return(context.Background(), orderID)
	if err != nil {
		t.Fatalf("return: %v", err)
	}
	if view.Status != domain.StatusReturned {
		t.Errorf("expected RETURNED, got %s", view.Status)
	}
	// 回仓策略开启: 2 件退回可售池, 3+2=5
	if got := f.available(t, "prod-a", "wh-1"); got != 5 {
		t.Errorf("expected available 5 after restock, got %d", got)
	}
}

func TestReturn_NoRestockByDefault(t *testing.T) {
	f := newFixture(t)
	orderID := f.fullLifecycleToDelivered(t)

	if _, err := f.svc.Return(context.Background(), orderID); err != nil {
		t.Fatalf("return: %v", err)
	}
	if got := f.available(t, "prod-a", "wh-1"); got != 3 {
		t.Errorf("expected available 3 without restock, got %d", got)
	}
}

func TestHandleDeliveryStatusSync_Delivered(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "prod-a", "wh-1", 5)
	view, err := f.svc.Checkout(context.Background(), checkoutRequest(
		port.CartLine{ProductID: "prod-a", WarehouseID: "wh-1", Quantity: 2},
	))
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	for _, step := range []func() (*OrderView, error){
		func() (*OrderView, error) { return f.svc.Confirm(context.Background(), view.OrderID) },
		func() (*OrderView, error) { return f.svc.StartProcessing(context.Background(), view.OrderID) },
		func() (*OrderView, error) {
			return f.svc.MarkReady(context.Background(), view.OrderID, domain.Address{City: "Москва"})
		},
		func() (*OrderView, error) { return f.svc.MarkInDelivery(context.Background(), view.OrderID) },
	} {
		if _, err := step(); err != nil {
			t.Fatalf("lifecycle: %v", err)
		}
	}

	err = f.svc.HandleDeliveryStatusSync(context.Background(), &domain.DeliveryStatusSynced{
		DeliveryID: "delivery-1",
		OrderID:    view.OrderID,
		Status:     domain.SyncDelivered,
		OccurredAt: time.Now().Unix(),
	})
	if err != nil {
		t.Fatalf("sync: %v", err)
	}

	got, _ := f.svc.GetOrder(context.Background(), view.OrderID)
	if got.Status != domain.StatusDelivered {
		t.Errorf("expected DELIVERED after sync, got %s", got.Status)
	}
}

func TestHandleDeliveryFailure_ReopensByDefault(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "prod-a", "wh-1", 5)
	view, err := f.svc.Checkout(context.Background(), checkoutRequest(
		port.CartLine{ProductID: "prod-a", WarehouseID: "wh-1", Quantity: 1},
	))
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	for _, step := range []func() (*OrderView, error){
		func() (*OrderView, error) { return f.svc.Confirm(context.Background(), view.OrderID) },
		func() (*OrderView, error) { return f.svc.StartProcessing(context.Background(), view.OrderID) },
		func() (*OrderView, error) {
			return f.svc.MarkReady(context.Background(), view.OrderID, domain.Address{City: "Москва"})
		},
		func() (*OrderView, error) { return f.svc.MarkInDelivery(context.Background(), view.OrderID) },
	} {
		if _, err := step(); err != nil {
			t.Fatalf("lifecycle: %v", err)
		}
	}

	err = f.svc.HandleDeliveryStatusSync(context.Background(), &domain.DeliveryStatusSynced{
		OrderID: view.OrderID,
		Status:  domain.SyncFailed,
		Reason:  "курьер не доехал",
	})
	if err != nil {
		t.Fatalf("sync: %v", err)
	}

	got, _ := f.svc.GetOrder(context.Background(), view.OrderID)
	if got.Status != domain.StatusProcessing {
		t.Errorf("expected reopened to PROCESSING, got %s", got.Status)
	}
}

func TestHandleDeliveryFailure_CancelPolicy(t *testing.T) {
	f := newFixture(t)
	f.policies.reaction = port.ReactionCancel
	f.seed(t, "prod-a", "wh-1", 5)
	view, err := f.svc.Checkout(context.Background(), checkoutRequest(
		port.CartLine{ProductID: "prod-a", WarehouseID: "wh-1", Quantity: 2},
	))
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	for _, step := range []func() (*OrderView, error){
		func() (*OrderView, error) { return f.svc.Confirm(context.Background(), view.OrderID) },
		func() (*OrderView, error) { return f.svc.StartProcessing(context.Background(), view.OrderID) },
		func() (*OrderView, error) {
			return f.svc.MarkReady(context.Background(), view.OrderID, domain.Address{City: "Москва"})
		},
	} {
		if _, err := step(); err != nil {
			t.Fatalf("lifecycle: %v", err)
		}
	}

	err = f.svc.HandleDeliveryStatusSync(context.Background(), &domain.DeliveryStatusSynced{
		OrderID: view.OrderID,
		Status:  domain.SyncFailed,
		Reason:  "адрес не существует",
	})
	if err != nil {
		t.Fatalf("sync: %v", err)
	}

	got, _ := f.svc.GetOrder(context.Background(), view.OrderID)
	if got.Status != domain.StatusCancelled {
		t.Errorf("expected CANCELLED per policy, got %s", got.Status)
	}
	// 取消之后预占回到可售池
	if avail := f.available(t, "prod-a", "wh-1"); avail != 5 {
		t.Errorf("expected available 5 after cancel, got %d", avail)
	}
}

func TestSearchOrders_ByCustomerAndStatus(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "prod-a", "wh-1", 50)

	for i := 0; i < 3; i++ {
		if _, err := f.svc.Checkout(context.Background(), checkoutRequest(
			port.CartLine{ProductID: "prod-a", WarehouseID: "wh-1", Quantity: 1},
		)); err != nil {
			t.Fatalf("checkout %d: %v", i, err)
		}
	}
	other := checkoutRequest(port.CartLine{ProductID: "prod-a", WarehouseID: "wh-1", Quantity: 1})
	other.CustomerID = "cust-2"
	if _, err := f.svc.Checkout(context.Background(), other); err != nil {
		t.Fatalf("checkout other: %v", err)
	}

	result, err := f.svc.SearchOrders(context.Background(), domain.SearchQuery{
		CustomerID: "cust-1",
		Status:     domain.StatusPending,
	})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if result.Total != 3 {
		t.Errorf("expected 3 orders for cust-1, got %d", result.Total)
	}
	for _, order := range result.Orders {
		if order.CustomerID != "cust-1" {
			t.Errorf("unexpected customer %s in results", order.CustomerID)
		}
	}
}

func TestTransitions_SerializedPerOrder(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "prod-a", "wh-1", 5)
	view, err := f.svc.Checkout(context.Background(), checkoutRequest(
		port.CartLine{ProductID: "prod-a", WarehouseID: "wh-1", Quantity: 1},
	))
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}

	// 并发取消同一张订单: 恰好一个成功,其余都撞上 InvalidTransition
	const workers = 8
	var wg sync.WaitGroup
	okCount := make(chan struct{}, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.svc.Cancel(context.Background(), view.OrderID, "race"); err == nil {
				okCount <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(okCount)

	succeeded := 0
	for range okCount {
		succeeded++
	}
	if succeeded != 1 {
		t.Fatalf("expected exactly 1 successful cancel, got %d", succeeded)
	}
	if got := f.available(t, "prod-a", "wh-1"); got != 5 {
		t.Errorf("expected available 5 after single release, got %d", got)
	}
}
