// internal/service/cart/domain/repository.go
package domain

import "context"

// CartRepository 定义了购物车的持久化接口。
// 一个客户同一时刻只有一个活跃购物车，所以查询键是 customerID。
type CartRepository interface {
	// FindByCustomer 返回客户的活跃购物车，不存在时返回 ErrNotFound。
	FindByCustomer(ctx context.Context, customerID string) (*Cart, error)

	// Save 保存购物车（创建或整体更新）。
	Save(ctx context.Context, cart *Cart) error

	// DeleteByCustomer 删除客户的购物车。购物车不存在时静默成功。
	DeleteByCustomer(ctx context.Context, customerID string) error
}
