package application

import (
	"context"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"

	"bazaar/internal/service/cart/domain"
	"bazaar/internal/service/cart/domain/port"
	"bazaar/internal/service/cart/infrastructure"
)

// Mock ProductCatalog
type mockCatalog struct {
	mu       sync.Mutex
	products map[string]*port.ProductInfo
	calls    int
}

func newMockCatalog() *mockCatalog {
	return &mockCatalog{products: map[string]*port.ProductInfo{
		"prod-1": {ProductID: "prod-1", Name: "Дрель", UnitPrice: 100.0, Currency: "RUB", SellerID: "seller-1"},
		"prod-2": {ProductID: "prod-2", Name: "Перфоратор", UnitPrice: 250.0, Currency: "RUB", SellerID: "seller-1"},
	}}
}

func (m *mockCatalog) GetProduct(ctx context.Context, productID string) (*port.ProductInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	product, ok := m.products[productID]
	if !ok {
		return nil, errors.Errorf("product not found: %s", productID)
	}
	return product, nil
}

// Mock AvailabilityChecker
type mockAvailability struct {
	mu    sync.Mutex
	stock map[string]int64 // key: productID/warehouseID
}

func newMockAvailability() *mockAvailability {
	return &mockAvailability{stock: make(map[string]int64)}
}

func (m *mockAvailability) set(productID, warehouseID string, qty int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stock[productID+"/"+warehouseID] = qty
}

func (m *mockAvailability) CheckAvailable(ctx context.Context, productID, warehouseID string, quantity int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stock[productID+"/"+warehouseID] >= quantity, nil
}

func newTestCartService(t *testing.T) (*CartService, *mockAvailability) {
	t.Helper()
	availability := newMockAvailability()
	svc := NewCartService(
		infrastructure.NewMemoryCartRepository(),
		newMockCatalog(),
		availability,
		otel.Tracer("test"),
	)
	return svc, availability
}

func TestAddItem_CreatesCartAndMergesPairs(t *testing.T) {
	svc, availability := newTestCartService(t)
	availability.set("prod-1", "wh-1", 10)

	view, err := svc.AddItem(context.Background(), "cust-1", "prod-1", "wh-1", 2)
	if err != nil {
		t.Fatalf("first add: %v", err)
	}
	if len(view.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(view.Items))
	}

	// 同一 (product, warehouse) 再次加购: 数量合并而不是新增条目
	view, err = svc.AddItem(context.Background(), "cust-1", "prod-1", "wh-1", 3)
	if err != nil {
		t.Fatalf("second add: %v", err)
	}
	if len(view.Items) != 1 {
		t.Fatalf("expected merged single item, got %d items", len(view.Items))
	}
	if view.Items[0].Quantity != 5 {
		t.Errorf("expected merged quantity 5, got %d", view.Items[0].Quantity)
	}
	if view.TotalAmount != 500.0 {
		t.Errorf("expected total 500, got %.2f", view.TotalAmount)
	}
}

func TestAddItem_OutOfStock(t *testing.T) {
	svc, availability := newTestCartService(t)
	availability.set("prod-1", "wh-1", 1)

	_, err := svc.AddItem(context.Background(), "cust-1", "prod-1", "wh-1", 2)
	if !errors.Is(err, domain.ErrOutOfStock) {
		t.Fatalf("expected ErrOutOfStock, got %v", err)
	}
}

func TestAddItem_MergedQuantityChecked(t *testing.T) {
	svc, availability := newTestCartService(t)
	availability.set("prod-1", "wh-1", 3)

	if _, err := svc.AddItem(context.Background(), "cust-1", "prod-1", "wh-1", 2); err != nil {
		t.Fatalf("first add: %v", err)
	}
	// 购物车里已有 2 件，再加 2 件就超过可售量 3
	_, err := svc.AddItem(context.Background(), "cust-1", "prod-1", "wh-1", 2)
	if !errors.Is(err, domain.ErrOutOfStock) {
		t.Fatalf("expected ErrOutOfStock for merged quantity, got %v", err)
	}
}

func TestUpdateItemQuantity_InvalidQuantity(t *testing.T) {
	svc, availability := newTestCartService(t)
	availability.set("prod-1", "wh-1", 10)

	view, err := svc.AddItem(context.Background(), "cust-1", "prod-1", "wh-1", 2)
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	_, err = svc.UpdateItemQuantity(context.Background(), "cust-1", view.Items[0].ItemID, 0)
	if !errors.Is(err, domain.ErrInvalidQuantity) {
		t.Fatalf("expected ErrInvalidQuantity, got %v", err)
	}
}

func TestRemoveItem_ThenTotalRecomputed(t *testing.T) {
	svc, availability := newTestCartService(t)
	availability.set("prod-1", "wh-1", 10)
	availability.set("prod-2", "wh-1", 10)

	if _, err := svc.AddItem(context.Background(), "cust-1", "prod-1", "wh-1", 1); err != nil {
		t.Fatalf("add prod-1: %v", err)
	}
	view, err := svc.AddItem(context.Background(), "cust-1", "prod-2", "wh-1", 2)
	if err != nil {
		t.Fatalf("add prod-2: %v", err)
	}
	if view.TotalAmount != 600.0 {
		t.Fatalf("expected total 600, got %.2f", view.TotalAmount)
	}

	var prod2Item string
	for _, item := range view.Items {
		if item.ProductID == "prod-2" {
			prod2Item = item.ItemID
		}
	}
	view, err = svc.RemoveItem(context.Background(), "cust-1", prod2Item)
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if view.TotalAmount != 100.0 {
		t.Errorf("expected total 100 after removal, got %.2f", view.TotalAmount)
	}
}

func TestClear_EmptyCartIsNoop(t *testing.T) {
	svc, _ := newTestCartService(t)

	// 从未创建过购物车的客户: 清空不是错误
	if err := svc.Clear(context.Background(), "cust-unknown"); err != nil {
		t.Fatalf("clear of absent cart should be a no-op, got %v", err)
	}
}
