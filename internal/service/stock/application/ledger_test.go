package application

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"

	"bazaar/internal/service/stock/domain"
	"bazaar/internal/service/stock/infrastructure"
)

func newTestLedger(t *testing.T, holdTimeout time.Duration) (*LedgerService, *infrastructure.MemoryStockRepository) {
	t.Helper()
	stocks := infrastructure.NewMemoryStockRepository()
	reservations := infrastructure.NewMemoryReservationRepository()
	locker := infrastructure.NewLocalKeyLocker()
	return NewLedgerService(stocks, reservations, locker, nil, holdTimeout, otel.Tracer("test")), stocks
}

func seedStock(t *testing.T, ledger *LedgerService, productID, warehouseID string, qty int64) {
	t.Helper()
	if err := ledger.AdjustStock(context.Background(), productID, warehouseID, qty); err != nil {
		t.Fatalf("seed stock: %v", err)
	}
}

func TestReserve_Success(t *testing.T) {
	ledger, _ := newTestLedger(t, time.Hour)
	seedStock(t, ledger, "prod-1", "wh-1", 5)

	resID, err := ledger.Reserve(context.Background(), "prod-1", "wh-1", 2, "order-1")
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if resID == "" {
		t.Fatal("expected non-empty reservation id")
	}

	available, err := ledger.Availability(context.Background(), "prod-1", "wh-1")
	if err != nil {
		t.Fatalf("availability: %v", err)
	}
	if available != 3 {
		t.Errorf("expected available 3, got %d", available)
	}
}

func TestReserve_InsufficientStock(t *testing.T) {
	ledger, stocks := newTestLedger(t, time.Hour)
	seedStock(t, ledger, "prod-1", "wh-1", 5)

	_, err := ledger.Reserve(context.Background(), "prod-1", "wh-1", 6, "order-1")
	if !errors.Is(err, domain.ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}

	// 失败的预占不应改变任何库存数字
	record, _ := stocks.Get(context.Background(), "prod-1", "wh-1")
	if record.Quantity != 5 || record.Reserved != 0 {
		t.Errorf("stock mutated by failed reserve: quantity=%d reserved=%d", record.Quantity, record.Reserved)
	}
}

func TestReserve_UnknownProduct(t *testing.T) {
	ledger, _ := newTestLedger(t, time.Hour)

	_, err := ledger.Reserve(context.Background(), "ghost", "wh-1", 1, "order-1")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCommit_DeductsPhysicalStock(t *testing.T) {
	ledger, stocks := newTestLedger(t, time.Hour)
	seedStock(t, ledger, "prod-1", "wh-1", 5)

	resID, _ := ledger.Reserve(context.Background(), "prod-1", "wh-1", 2, "order-1")
	if err := ledger.Commit(context.Background(), resID); err != nil {
		t.Fatalf("commit: %v", err)
	}

	record, _ := stocks.Get(context.Background(), "prod-1", "wh-1")
	if record.Quantity != 3 || record.Reserved != 0 {
		t.Errorf("expected quantity=3 reserved=0, got quantity=%d reserved=%d", record.Quantity, record.Reserved)
	}

	// 重复提交是幂等空操作
	if err := ledger.Commit(context.Background(), resID); err != nil {
		t.Errorf("repeated commit should be a no-op, got %v", err)
	}
	record, _ = stocks.Get(context.Background(), "prod-1", "wh-1")
	if record.Quantity != 3 {
		t.Errorf("repeated commit changed stock: quantity=%d", record.Quantity)
	}
}

func TestRelease_Idempotent(t *testing.T) {
	ledger, stocks := newTestLedger(t, time.Hour)
	seedStock(t, ledger, "prod-1", "wh-1", 5)

	resID, _ := ledger.Reserve(context.Background(), "prod-1", "wh-1", 2, "order-1")
	if err := ledger.Release(context.Background(), resID); err != nil {
		t.Fatalf("release: %v", err)
	}
	if err := ledger.Release(context.Background(), resID); err != nil {
		t.Errorf("second release should be a no-op, got %v", err)
	}

	record, _ := stocks.Get(context.Background(), "prod-1", "wh-1")
	if record.Quantity != 5 || record.Reserved != 0 {
		t.Errorf("expected quantity=5 reserved=0, got quantity=%d reserved=%d", record.Quantity, record.Reserved)
	}
}

func TestRelease_AfterCommitFails(t *testing.T) {
	ledger, _ := newTestLedger(t, time.Hour)
	seedStock(t, ledger, "prod-1", "wh-1", 5)

	resID, _ := ledger.Reserve(context.Background(), "prod-1", "wh-1", 2, "order-1")
	if err := ledger.Commit(context.Background(), resID); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if err := ledger.Release(context.Background(), resID); !errors.Is(err, domain.ErrInvalidState) {
		t.Errorf("expected ErrInvalidState releasing a committed reservation, got %v", err)
	}
}

// 并发预占总量超过可售量时，成功的预占数量必须恰好等于放得下的数量。
func TestReserve_ConcurrentOvercommit(t *testing.T) {
	ledger, stocks := newTestLedger(t, time.Hour)
	seedStock(t, ledger, "prod-1", "wh-1", 1)

	const attempts = 16
	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := ledger.Reserve(context.Background(), "prod-1", "wh-1", 1, "order-x")
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			} else if !errors.Is(err, domain.ErrInsufficientStock) {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if succeeded != 1 {
		t.Fatalf("expected exactly 1 successful reserve, got %d", succeeded)
	}
	record, _ := stocks.Get(context.Background(), "prod-1", "wh-1")
	if record.Reserved > record.Quantity {
		t.Fatalf("invariant violated: reserved=%d > quantity=%d", record.Reserved, record.Quantity)
	}
}

func TestExpireStaleHolds_Boundary(t *testing.T) {
	const timeout = 10 * time.Minute
	ledger, _ := newTestLedger(t, timeout)
	seedStock(t, ledger, "prod-1", "wh-1", 5)

	resID, _ := ledger.Reserve(context.Background(), "prod-1", "wh-1", 2, "order-1")
	created := time.Now()

	// 超时前 1 秒: 不释放
	released, err := ledger.ExpireStaleHolds(context.Background(), created.Add(timeout-time.Second))
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if released != 0 {
		t.Errorf("hold released before timeout, released=%d", released)
	}

	// 超时后 1 秒: 释放
	released, err = ledger.ExpireStaleHolds(context.Background(), created.Add(timeout+time.Second))
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if released != 1 {
		t.Errorf("expected 1 hold released, got %d", released)
	}

	available, _ := ledger.Availability(context.Background(), "prod-1", "wh-1")
	if available != 5 {
		t.Errorf("expected available back to 5, got %d", available)
	}

	// 已释放的 Hold 不会被再次清理
	if err := ledger.Release(context.Background(), resID); err != nil {
		t.Errorf("release of expired hold should be a no-op, got %v", err)
	}
}

func TestAdjustStock_BelowReservedRejected(t *testing.T) {
	ledger, _ := newTestLedger(t, time.Hour)
	seedStock(t, ledger, "prod-1", "wh-1", 5)
	if _, err := ledger.Reserve(context.Background(), "prod-1", "wh-1", 3, "order-1"); err != nil {
		t.Fatalf("reserve: %v", err)
	}

	err := ledger.AdjustStock(context.Background(), "prod-1", "wh-1", 2)
	if !errors.Is(err, domain.ErrInvalidQuantity) {
		t.Errorf("expected ErrInvalidQuantity, got %v", err)
	}
}
