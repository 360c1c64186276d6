// internal/service/order/domain/port/cart.go
package port

import "context"

// CartLine 是购物车里的一行，订单侧只关心要买什么、买多少。
type CartLine struct {
	ProductID   string
	WarehouseID string
	Quantity    int64
}

// CartProvider 是订单侧对购物车的出站端口。
// Clear 只在订单与预占都已落库之后调用——顺序决定崩溃一致性。
type CartProvider interface {
	GetLines(ctx context.Context, customerID string) ([]CartLine, error)
	Clear(ctx context.Context, customerID string) error
}
