// internal/service/stock/domain/repository.go
package domain

import (
	"context"
	"time"
)

// StockRepository 定义了库存记录的持久化接口。
// 它位于领域层，但由基础设施层实现。
type StockRepository interface {
	// Get 按 (productID, warehouseID) 查找库存记录，不存在时返回 ErrNotFound。
	Get(ctx context.Context, productID, warehouseID string) (*StockRecord, error)

	// Save 保存一条库存记录（用于创建或更新）。
	Save(ctx context.Context, record *StockRecord) error
}

// ReservationRepository 定义了预占记录的持久化接口。
type ReservationRepository interface {
	Get(ctx context.Context, id string) (*Reservation, error)
	Save(ctx context.Context, reservation *Reservation) error

	// FindByOrder 返回一个订单名下的全部预占。
	FindByOrder(ctx context.Context, orderID string) ([]*Reservation, error)

	// FindStaleHeld 返回创建时间早于 olderThan 且仍处于 HELD 状态的预占，
	// 供过期清理任务使用。
	FindStaleHeld(ctx context.Context, olderThan time.Time) ([]*Reservation, error)
}
