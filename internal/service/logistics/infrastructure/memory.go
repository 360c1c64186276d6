// internal/service/logistics/infrastructure/memory.go
package infrastructure

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"bazaar/internal/service/logistics/domain"
)

// MemoryDeliveryRepository 是 DeliveryRepository 的内存实现。
type MemoryDeliveryRepository struct {
	mu         sync.RWMutex
	deliveries map[string]*domain.Delivery
	byOrder    map[string]string
}

func NewMemoryDeliveryRepository() *MemoryDeliveryRepository {
	return &MemoryDeliveryRepository{
		deliveries: make(map[string]*domain.Delivery),
		byOrder:    make(map[string]string),
	}
}

func (r *MemoryDeliveryRepository) Save(ctx context.Context, delivery *domain.Delivery) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	// 一张订单只允许一张配送单
	if existingID, ok := r.byOrder[delivery.OrderID]; ok && existingID != delivery.ID {
		return errors.Errorf("order %s already has delivery %s", delivery.OrderID, existingID)
	}
	clone := *delivery
	r.deliveries[delivery.ID] = &clone
	r.byOrder[delivery.OrderID] = delivery.ID
	return nil
}

func (r *MemoryDeliveryRepository) FindByID(ctx context.Context, id string) (*domain.Delivery, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	delivery, ok := r.deliveries[id]
	if !ok {
		return nil, errors.Wrapf(domain.ErrNotFound, "delivery %s", id)
	}
	clone := *delivery
	return &clone, nil
}

func (r *MemoryDeliveryRepository) FindByOrder(ctx context.Context, orderID string) (*domain.Delivery, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byOrder[orderID]
	if !ok {
		return nil, errors.Wrapf(domain.ErrNotFound, "delivery for order %s", orderID)
	}
	clone := *r.deliveries[id]
	return &clone, nil
}

// MemoryCarrierRepository 是 CarrierRepository 的内存实现。
type MemoryCarrierRepository struct {
	mu       sync.RWMutex
	carriers map[string]*domain.Carrier
}

func NewMemoryCarrierRepository() *MemoryCarrierRepository {
	return &MemoryCarrierRepository{carriers: make(map[string]*domain.Carrier)}
}

func (r *MemoryCarrierRepository) Save(ctx context.Context, carrier *domain.Carrier) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *carrier
	r.carriers[carrier.ID] = &clone
	return nil
}

func (r *MemoryCarrierRepository) FindByID(ctx context.Context, id string) (*domain.Carrier, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	carrier, ok := r.carriers[id]
	if !ok {
		return nil, errors.Wrapf(domain.ErrNotFound, "carrier %s", id)
	}
	clone := *carrier
	return &clone, nil
}

func (r *MemoryCarrierRepository) List(ctx context.Context) ([]*domain.Carrier, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	carriers := make([]*domain.Carrier, 0, len(r.carriers))
	for _, carrier := range r.carriers {
		clone := *carrier
		carriers = append(carriers, &clone)
	}
	return carriers, nil
}

// MemoryLocationRepository 是 LocationRepository 的内存实现。
type MemoryLocationRepository struct {
	mu      sync.RWMutex
	reports map[string][]*domain.LocationReport
}

func NewMemoryLocationRepository() *MemoryLocationRepository {
	return &MemoryLocationRepository{reports: make(map[string][]*domain.LocationReport)}
}

func (r *MemoryLocationRepository) Append(ctx context.Context, report *domain.LocationReport) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *report
	r.reports[report.DeliveryID] = append(r.reports[report.DeliveryID], &clone)
	return nil
}

func (r *MemoryLocationRepository) ListByDelivery(ctx context.Context, deliveryID string) ([]*domain.LocationReport, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	reports := make([]*domain.LocationReport, 0, len(r.reports[deliveryID]))
	for _, report := range r.reports[deliveryID] {
		clone := *report
		reports = append(reports, &clone)
	}
	return reports, nil
}
