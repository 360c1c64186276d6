// internal/service/cart/domain/cart.go
package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Cart 是购物车聚合根。每个客户同一时刻只有一个活跃购物车，
// 仓储按 customerID 做 upsert 语义。
type Cart struct {
	ID         string
	CustomerID string
	Items      []CartItem
	Currency   string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// CartItem 是购物车中的一行。金额不在这里缓存，
// 读取时总是按目录现价重新计算。
type CartItem struct {
	ID          string
	ProductID   string
	WarehouseID string
	Quantity    int64
}

// NewCart 工厂函数，为客户创建一个空购物车。
func NewCart(customerID, currency string) *Cart {
	now := time.Now()
	return &Cart{
		ID:         uuid.New().String(),
		CustomerID: customerID,
		Currency:   currency,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// MergeItem 向购物车加入商品。同一 (productID, warehouseID) 的条目
// 数量累加而不是重复出现。返回合并后的条目。
func (c *Cart) MergeItem(productID, warehouseID string, quantity int64) (*CartItem, error) {
	if quantity <= 0 {
		return nil, errors.Wrapf(ErrInvalidQuantity, "add quantity %d", quantity)
	}
	for i := range c.Items {
		if c.Items[i].ProductID == productID && c.Items[i].WarehouseID == warehouseID {
			c.Items[i].Quantity += quantity
			c.UpdatedAt = time.Now()
			return &c.Items[i], nil
		}
	}
	item := CartItem{
		ID:          uuid.New().String(),
		ProductID:   productID,
		WarehouseID: warehouseID,
		Quantity:    quantity,
	}
	c.Items = append(c.Items, item)
	c.UpdatedAt = time.Now()
	return &c.Items[len(c.Items)-1], nil
}

// UpdateItemQuantity 修改某一行的数量。数量必须为正，删除请走 RemoveItem。
func (c *Cart) UpdateItemQuantity(itemID string, quantity int64) (*CartItem, error) {
	if quantity <= 0 {
		return nil, errors.Wrapf(ErrInvalidQuantity, "update quantity %d, use remove instead", quantity)
	}
	for i := range c.Items {
		if c.Items[i].ID == itemID {
			c.Items[i].Quantity = quantity
			c.UpdatedAt = time.Now()
			return &c.Items[i], nil
		}
	}
	return nil, errors.Wrapf(ErrNotFound, "cart item %s", itemID)
}

// RemoveItem 删除一行。条目不存在时返回 ErrNotFound。
func (c *Cart) RemoveItem(itemID string) error {
	for i := range c.Items {
		if c.Items[i].ID == itemID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			c.UpdatedAt = time.Now()
			return nil
		}
	}
	return errors.Wrapf(ErrNotFound, "cart item %s", itemID)
}

// Clear 清空购物车。清空一个已经为空的购物车不是错误。
func (c *Cart) Clear() {
	c.Items = nil
	c.UpdatedAt = time.Now()
}

// IsEmpty 判断购物车是否为空。
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}
