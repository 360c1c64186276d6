// internal/service/cart/infrastructure/adapter/availability_adapter.go
package adapter

import (
	"context"

	stockapp "bazaar/internal/service/stock/application"
	stockinfra "bazaar/internal/service/stock/infrastructure"
)

// CachedAvailabilityAdapter 实现了 port.AvailabilityChecker。
// 优先走 Redis 可售量缓存，未命中时回源库存台账并不做回填——
// 回填由台账在下一次变更时自然完成，避免读路径写缓存的竞态。
type CachedAvailabilityAdapter struct {
	cache  *stockinfra.RedisAvailabilityCache
	ledger *stockapp.LedgerService
}

func NewCachedAvailabilityAdapter(cache *stockinfra.RedisAvailabilityCache, ledger *stockapp.LedgerService) *CachedAvailabilityAdapter {
	return &CachedAvailabilityAdapter{cache: cache, ledger: ledger}
}

func (a *CachedAvailabilityAdapter) CheckAvailable(ctx context.Context, productID, warehouseID string, quantity int64) (bool, error) {
	if a.cache != nil {
		code, err := a.cache.CheckAvailable(ctx, productID, warehouseID, quantity)
		if err == nil && code >= 0 {
			return code == 1, nil
		}
		// 缓存不可用或未命中都回源台账
	}
	available, err := a.ledger.Availability(ctx, productID, warehouseID)
	if err != nil {
		return false, err
	}
	return available >= quantity, nil
}

// LedgerAvailabilityAdapter 是直连台账的检查器，单体部署和测试用。
type LedgerAvailabilityAdapter struct {
	ledger *stockapp.LedgerService
}

func NewLedgerAvailabilityAdapter(ledger *stockapp.LedgerService) *LedgerAvailabilityAdapter {
	return &LedgerAvailabilityAdapter{ledger: ledger}
}

func (a *LedgerAvailabilityAdapter) CheckAvailable(ctx context.Context, productID, warehouseID string, quantity int64) (bool, error) {
	available, err := a.ledger.Availability(ctx, productID, warehouseID)
	if err != nil {
		return false, err
	}
	return available >= quantity, nil
}
