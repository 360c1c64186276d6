// internal/service/stock/infrastructure/memory.go
package infrastructure

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"

	"bazaar/internal/service/stock/domain"
)

// MemoryStockRepository 是 StockRepository 的内存实现，
// 用于测试和本地开发。所有方法返回副本，避免调用方绕过锁直接改共享状态。
type MemoryStockRepository struct {
	mu      sync.RWMutex
	records map[string]*domain.StockRecord // key: productID/warehouseID
}

func NewMemoryStockRepository() *MemoryStockRepository {
	return &MemoryStockRepository{records: make(map[string]*domain.StockRecord)}
}

func stockKey(productID, warehouseID string) string {
	return productID + "/" + warehouseID
}

func (r *MemoryStockRepository) Get(ctx context.Context, productID, warehouseID string) (*domain.StockRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	record, ok := r.records[stockKey(productID, warehouseID)]
	if !ok {
		return nil, errors.Wrapf(domain.ErrNotFound, "stock %s/%s", productID, warehouseID)
	}
	copied := *record
	return &copied, nil
}

func (r *MemoryStockRepository) Save(ctx context.Context, record *domain.StockRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *record
	r.records[stockKey(record.ProductID, record.WarehouseID)] = &copied
	return nil
}

// MemoryReservationRepository 是 ReservationRepository 的内存实现。
type MemoryReservationRepository struct {
	mu           sync.RWMutex
	reservations map[string]*domain.Reservation
}

func NewMemoryReservationRepository() *MemoryReservationRepository {
	return &MemoryReservationRepository{reservations: make(map[string]*domain.Reservation)}
}

func (r *MemoryReservationRepository) Get(ctx context.Context, id string) (*domain.Reservation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	reservation, ok := r.reservations[id]
	if !ok {
		return nil, errors.Wrapf(domain.ErrNotFound, "reservation %s", id)
	}
	copied := *reservation
	return &copied, nil
}

func (r *MemoryReservationRepository) Save(ctx context.Context, reservation *domain.Reservation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *reservation
	r.reservations[reservation.ID] = &copied
	return nil
}

func (r *MemoryReservationRepository) FindByOrder(ctx context.Context, orderID string) ([]*domain.Reservation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []*domain.Reservation
	for _, reservation := range r.reservations {
		if reservation.OrderID == orderID {
			copied := *reservation
			result = append(result, &copied)
		}
	}
	return result, nil
}

func (r *MemoryReservationRepository) FindStaleHeld(ctx context.Context, olderThan time.Time) ([]*domain.Reservation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []*domain.Reservation
	for _, reservation := range r.reservations {
		if reservation.State == domain.StateHeld && reservation.CreatedAt.Before(olderThan) {
			copied := *reservation
			result = append(result, &copied)
		}
	}
	return result, nil
}
