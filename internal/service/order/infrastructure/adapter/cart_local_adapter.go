// internal/service/order/infrastructure/adapter/cart_local_adapter.go
package adapter

import (
	"context"

	cartapp "bazaar/internal/service/cart/application"

	"bazaar/internal/service/order/domain/port"
)

// CartLocalAdapter 实现了 port.CartProvider，
// 购物车与订单部署在同一进程时直接进程内调用。
type CartLocalAdapter struct {
	carts *cartapp.CartService
}

func NewCartLocalAdapter(carts *cartapp.CartService) *CartLocalAdapter {
	return &CartLocalAdapter{carts: carts}
}

func (a *CartLocalAdapter) GetLines(ctx context.Context, customerID string) ([]port.CartLine, error) {
	cart, err := a.carts.GetActiveCart(ctx, customerID)
	if err != nil {
		return nil, err
	}
	lines := make([]port.CartLine, 0, len(cart.Items))
	for _, item := range cart.Items {
		lines = append(lines, port.CartLine{
			ProductID:   item.ProductID,
			WarehouseID: item.WarehouseID,
			Quantity:    item.Quantity,
		})
	}
	return lines, nil
}

func (a *CartLocalAdapter) Clear(ctx context.Context, customerID string) error {
	return a.carts.Clear(ctx, customerID)
}
