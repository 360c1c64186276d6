// internal/service/order/infrastructure/memory.go
package infrastructure

import (
	"context"
	"sort"
	"sync"

	"github.com/pkg/errors"

	"bazaar/internal/service/order/domain"
)

// MemoryOrderRepository 是 OrderRepository 的内存实现，
// 用于测试和本地单进程部署。
type MemoryOrderRepository struct {
	mu     sync.RWMutex
	orders map[string]*domain.Order
}

func NewMemoryOrderRepository() *MemoryOrderRepository {
	return &MemoryOrderRepository{orders: make(map[string]*domain.Order)}
}

func (r *MemoryOrderRepository) Save(ctx context.Context, order *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *order
	clone.Items = append([]domain.OrderItem(nil), order.Items...)
	r.orders[order.ID] = &clone
	return nil
}

func (r *MemoryOrderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	order, ok := r.orders[id]
	if !ok {
		return nil, errors.Wrapf(domain.ErrNotFound, "order %s", id)
	}
	clone := *order
	clone.Items = append([]domain.OrderItem(nil), order.Items...)
	return &clone, nil
}

func (r *MemoryOrderRepository) Search(ctx context.Context, query domain.SearchQuery) ([]*domain.Order, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]*domain.Order, 0)
	for _, order := range r.orders {
		if !matches(order, query) {
			continue
		}
		clone := *order
		clone.Items = append([]domain.OrderItem(nil), order.Items...)
		matched = append(matched, &clone)
	}

	sort.Slice(matched, func(a, b int) bool {
		if query.SortDesc {
			return matched[a].CreatedAt.After(matched[b].CreatedAt)
		}
		return matched[a].CreatedAt.Before(matched[b].CreatedAt)
	})

	total := int64(len(matched))
	offset := (query.Page - 1) * query.Limit
	if offset >= len(matched) {
		return nil, total, nil
	}
	end := offset + query.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

func matches(order *domain.Order, query domain.SearchQuery) bool {
	if query.CustomerID != "" && order.CustomerID != query.CustomerID {
		return false
	}
	if query.Status != "" && order.Status != query.Status {
		return false
	}
	if query.SellerID != "" {
		found := false
		for _, item := range order.Items {
			if item.SellerID == query.SellerID {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if !query.DateFrom.IsZero() && order.CreatedAt.Before(query.DateFrom) {
		return false
	}
	if !query.DateTo.IsZero() && order.CreatedAt.After(query.DateTo) {
		return false
	}
	return true
}
