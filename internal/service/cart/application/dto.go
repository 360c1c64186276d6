// internal/service/cart/application/dto.go
package application

import "time"

// CartItemView 是带价格的购物车条目视图。
// 价格永远是读取时按目录现价算出来的，不落库。
type CartItemView struct {
	ItemID      string  `json:"itemId"`
	ProductID   string  `json:"productId"`
	ProductName string  `json:"productName"`
	WarehouseID string  `json:"warehouseId"`
	Quantity    int64   `json:"quantity"`
	UnitPrice   float64 `json:"unitPrice"`
	TotalPrice  float64 `json:"totalPrice"`
	SellerID    string  `json:"sellerId"`
}

// CartView 是返回给接口层的购物车视图。
type CartView struct {
	CartID      string         `json:"cartId"`
	CustomerID  string         `json:"customerId"`
	Items       []CartItemView `json:"items"`
	TotalAmount float64        `json:"totalAmount"`
	Currency    string         `json:"currency"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}
