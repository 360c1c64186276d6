// internal/service/cart/infrastructure/mapper.go
package infrastructure

import (
	"bazaar/internal/service/cart/domain"
)

// ToDomainCart 将数据库模型转换为领域模型
func ToDomainCart(model *CartModel) *domain.Cart {
	if model == nil {
		return nil
	}
	cart := &domain.Cart{
		ID:         model.CartID,
		CustomerID: model.CustomerID,
		Currency:   model.Currency,
		CreatedAt:  model.CreatedAt,
		UpdatedAt:  model.UpdatedAt,
	}
	for _, item := range model.Items {
		cart.Items = append(cart.Items, domain.CartItem{
			ID:          item.ItemID,
			ProductID:   item.ProductID,
			WarehouseID: item.WarehouseID,
			Quantity:    item.Quantity,
		})
	}
	return cart
}

// FromDomainCart 将领域模型转换为数据库模型
func FromDomainCart(dmn *domain.Cart) *CartModel {
	if dmn == nil {
		return nil
	}
	model := &CartModel{
		CartID:     dmn.ID,
		CustomerID: dmn.CustomerID,
		Currency:   dmn.Currency,
		CreatedAt:  dmn.CreatedAt,
		UpdatedAt:  dmn.UpdatedAt,
	}
	for _, item := range dmn.Items {
		model.Items = append(model.Items, CartItemModel{
			ItemID:      item.ID,
			CartID:      dmn.ID,
			ProductID:   item.ProductID,
			WarehouseID: item.WarehouseID,
			Quantity:    item.Quantity,
		})
	}
	return model
}
