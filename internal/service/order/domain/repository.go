// internal/service/order/domain/repository.go
package domain

import (
	"context"
	"time"
)

// SearchQuery 描述订单检索的过滤与分页条件。零值字段不参与过滤。
type SearchQuery struct {
	CustomerID string
	SellerID   string
	Status     Status
	DateFrom   time.Time
	DateTo     time.Time
	Page       int
	Limit      int
	SortDesc   bool // 按创建时间倒序
}

// OrderRepository 定义了订单聚合的持久化接口。
// 位于领域层，由基础设施层实现。
type OrderRepository interface {
	// Save 保存订单聚合（创建或更新，含条目快照）。
	Save(ctx context.Context, order *Order) error

	// FindByID 根据 ID 查找订单。
	FindByID(ctx context.Context, id string) (*Order, error)

	// Search 按条件分页检索订单，返回当前页和总条数。
	Search(ctx context.Context, query SearchQuery) ([]*Order, int64, error)
}
