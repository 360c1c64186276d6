// internal/service/cart/infrastructure/memory.go
package infrastructure

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"bazaar/internal/service/cart/domain"
)

// MemoryCartRepository 是 CartRepository 的内存实现，用于测试和本地开发。
type MemoryCartRepository struct {
	mu    sync.RWMutex
	carts map[string]*domain.Cart // key: customerID
}

func NewMemoryCartRepository() *MemoryCartRepository {
	return &MemoryCartRepository{carts: make(map[string]*domain.Cart)}
}

func (r *MemoryCartRepository) FindByCustomer(ctx context.Context, customerID string) (*domain.Cart, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cart, ok := r.carts[customerID]
	if !ok {
		return nil, errors.Wrapf(domain.ErrNotFound, "cart for customer %s", customerID)
	}
	copied := *cart
	copied.Items = append([]domain.CartItem(nil), cart.Items...)
	return &copied, nil
}

func (r *MemoryCartRepository) Save(ctx context.Context, cart *domain.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *cart
	copied.Items = append([]domain.CartItem(nil), cart.Items...)
	r.carts[cart.CustomerID] = &copied
	return nil
}

func (r *MemoryCartRepository) DeleteByCustomer(ctx context.Context, customerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.carts, customerID)
	return nil
}
